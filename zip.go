package pulse

import "sync"

// Pair is the output of a two-branch Zip, fields in branch-index order.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Triple is the output of a three-branch Zip3.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// zipState2 buffers one FIFO queue per branch and emits a pair once both
// queues are non-empty, popping exactly one value from each. Pairing is
// strictly oldest-first per branch, never nearest-in-time. A fast branch
// accumulates unbounded backlog while the slow branch lags; no capacity
// bound is imposed.
type zipState2[A, B any] struct {
	mu  sync.Mutex
	qa  []A
	qb  []B
	out *node[Pair[A, B]]
}

func (z *zipState2[A, B]) pushFirst(v A) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.qa = append(z.qa, v)
	z.tryEmit()
}

func (z *zipState2[A, B]) pushSecond(v B) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.qb = append(z.qb, v)
	z.tryEmit()
}

// tryEmit pops the front of every queue and forwards the tuple. A single
// incoming value can trigger at most one emission, since only one queue
// grew. Caller must hold z.mu.
func (z *zipState2[A, B]) tryEmit() {
	if len(z.qa) == 0 || len(z.qb) == 0 {
		return
	}
	p := Pair[A, B]{First: z.qa[0], Second: z.qb[0]}
	z.qa = z.qa[1:]
	z.qb = z.qb[1:]
	z.out.forward(p)
}

// Zip joins two independently paced branches. On receiving a value on
// either branch it is queued; once every branch has a pending value, the
// oldest value of each is popped and emitted as a Pair.
//
// Transform failures downstream of the zip are reported to the first
// branch's error sink.
func Zip[A, B any](a *Stream[A], b *Stream[B]) *Stream[Pair[A, B]] {
	z := &zipState2[A, B]{out: &node[Pair[A, B]]{}}
	a.n.attach(z.pushFirst)
	b.n.attach(z.pushSecond)
	return &Stream[Pair[A, B]]{n: z.out, errs: a.errs}
}

type zipState3[A, B, C any] struct {
	mu  sync.Mutex
	qa  []A
	qb  []B
	qc  []C
	out *node[Triple[A, B, C]]
}

func (z *zipState3[A, B, C]) pushFirst(v A) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.qa = append(z.qa, v)
	z.tryEmit()
}

func (z *zipState3[A, B, C]) pushSecond(v B) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.qb = append(z.qb, v)
	z.tryEmit()
}

func (z *zipState3[A, B, C]) pushThird(v C) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.qc = append(z.qc, v)
	z.tryEmit()
}

func (z *zipState3[A, B, C]) tryEmit() {
	if len(z.qa) == 0 || len(z.qb) == 0 || len(z.qc) == 0 {
		return
	}
	t := Triple[A, B, C]{First: z.qa[0], Second: z.qb[0], Third: z.qc[0]}
	z.qa = z.qa[1:]
	z.qb = z.qb[1:]
	z.qc = z.qc[1:]
	z.out.forward(t)
}

// Zip3 is Zip over three branches.
func Zip3[A, B, C any](a *Stream[A], b *Stream[B], c *Stream[C]) *Stream[Triple[A, B, C]] {
	z := &zipState3[A, B, C]{out: &node[Triple[A, B, C]]{}}
	a.n.attach(z.pushFirst)
	b.n.attach(z.pushSecond)
	c.n.attach(z.pushThird)
	return &Stream[Triple[A, B, C]]{n: z.out, errs: a.errs}
}
