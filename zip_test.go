package pulse

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestZip(t *testing.T) {
	t.Run("pairs oldest-first per branch", func(t *testing.T) {
		left := NewSource[string]()
		right := NewSource[int]()

		var pairs []Pair[string, int]
		Zip(left.Stream(), right.Stream()).Sink(func(p Pair[string, int]) {
			pairs = append(pairs, p)
		})

		left.Emit("a1")
		left.Emit("a2")
		right.Emit(1)
		left.Emit("a3")
		right.Emit(2)

		assert.Equal(t, []Pair[string, int]{
			{First: "a1", Second: 1},
			{First: "a2", Second: 2},
		}, pairs)
	})

	t.Run("third pair waits for the lagging branch", func(t *testing.T) {
		left := NewSource[int]()
		right := NewSource[int]()

		var pairs []Pair[int, int]
		Zip(left.Stream(), right.Stream()).Sink(func(p Pair[int, int]) {
			pairs = append(pairs, p)
		})

		left.Emit(1)
		left.Emit(2)
		left.Emit(3)
		right.Emit(10)
		right.Emit(20)
		assert.Equal(t, 2, len(pairs))

		right.Emit(30)
		assert.Equal(t, 3, len(pairs))
		assert.Equal(t, Pair[int, int]{First: 3, Second: 30}, pairs[2])
	})

	t.Run("pairing is independent of arrival interleaving", func(t *testing.T) {
		left := NewSource[int]()
		right := NewSource[int]()

		var pairs []Pair[int, int]
		Zip(left.Stream(), right.Stream()).Sink(func(p Pair[int, int]) {
			pairs = append(pairs, p)
		})

		right.Emit(10)
		right.Emit(20)
		left.Emit(1)
		left.Emit(2)

		assert.Equal(t, []Pair[int, int]{
			{First: 1, Second: 10},
			{First: 2, Second: 20},
		}, pairs)
	})

	t.Run("one emission per incoming value", func(t *testing.T) {
		left := NewSource[int]()
		right := NewSource[int]()

		var emissions int
		Zip(left.Stream(), right.Stream()).Sink(func(Pair[int, int]) { emissions++ })

		left.Emit(1)
		left.Emit(2)
		assert.Equal(t, 0, emissions)
		right.Emit(10)
		assert.Equal(t, 1, emissions)
	})

	t.Run("fast branch accumulates unbounded backlog and drains in order", func(t *testing.T) {
		fast := NewSource[int]()
		slow := NewSource[int]()

		var pairs []Pair[int, int]
		Zip(fast.Stream(), slow.Stream()).Sink(func(p Pair[int, int]) {
			pairs = append(pairs, p)
		})

		for i := 0; i < 100; i++ {
			fast.Emit(i)
		}
		for i := 0; i < 100; i++ {
			slow.Emit(i * 10)
		}

		assert.Equal(t, 100, len(pairs))
		for i, p := range pairs {
			assert.Equal(t, i, p.First)
			assert.Equal(t, i*10, p.Second)
		}
	})
}

func TestZip3(t *testing.T) {
	a := NewSource[int]()
	b := NewSource[string]()
	c := NewSource[bool]()

	var triples []Triple[int, string, bool]
	Zip3(a.Stream(), b.Stream(), c.Stream()).Sink(func(tr Triple[int, string, bool]) {
		triples = append(triples, tr)
	})

	a.Emit(1)
	b.Emit("x")
	assert.Equal(t, 0, len(triples))

	c.Emit(true)
	assert.Equal(t, []Triple[int, string, bool]{{First: 1, Second: "x", Third: true}}, triples)

	c.Emit(false)
	a.Emit(2)
	assert.Equal(t, 1, len(triples))
	b.Emit("y")
	assert.Equal(t, 2, len(triples))
	assert.Equal(t, Triple[int, string, bool]{First: 2, Second: "y", Third: false}, triples[1])
}

func TestZipDownstreamOperators(t *testing.T) {
	t.Run("zip output composes with further stages", func(t *testing.T) {
		left := NewSource[int]()
		right := NewSource[int]()

		var sums []int
		zipped := Zip(left.Stream(), right.Stream())
		Map(zipped, func(p Pair[int, int]) int { return p.First + p.Second }).Sink(func(v int) {
			sums = append(sums, v)
		})

		left.Emit(1)
		right.Emit(2)
		assert.Equal(t, []int{3}, sums)
	})
}
