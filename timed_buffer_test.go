package pulse

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestBufferTimed(t *testing.T) {
	t.Run("flush forwards the batch in arrival order and clears it", func(t *testing.T) {
		src := NewSource[int]()
		buf, err := BufferTimed(src.Stream(), time.Second)
		assert.NoError(t, err)

		var batches [][]int
		buf.Stream().Sink(func(b []int) { batches = append(batches, b) })

		src.Emit(1)
		src.Emit(2)
		src.Emit(3)
		assert.Equal(t, 3, buf.Len())

		buf.Flush()
		assert.Equal(t, [][]int{{1, 2, 3}}, batches)
		assert.Equal(t, 0, buf.Len())
	})

	t.Run("empty batch is skipped at tick time", func(t *testing.T) {
		src := NewSource[int]()
		buf, err := BufferTimed(src.Stream(), time.Second)
		assert.NoError(t, err)

		var flushes int
		buf.Stream().Sink(func([]int) { flushes++ })

		buf.Flush()
		buf.Flush()
		assert.Equal(t, 0, flushes)

		src.Emit(1)
		buf.Flush()
		buf.Flush()
		assert.Equal(t, 1, flushes)
	})

	t.Run("batches restart after each flush", func(t *testing.T) {
		src := NewSource[int]()
		buf, err := BufferTimed(src.Stream(), time.Second)
		assert.NoError(t, err)

		var batches [][]int
		buf.Stream().Sink(func(b []int) { batches = append(batches, b) })

		src.Emit(1)
		buf.Flush()
		src.Emit(2)
		src.Emit(3)
		buf.Flush()

		assert.Equal(t, [][]int{{1}, {2, 3}}, batches)
	})

	t.Run("non-positive interval fails at construction", func(t *testing.T) {
		src := NewSource[int]()
		_, err := BufferTimed(src.Stream(), 0)
		assert.True(t, errors.Is(err, ErrInvalidInterval))

		_, err = BufferTimed(src.Stream(), -time.Second)
		assert.True(t, errors.Is(err, ErrInvalidInterval))
	})

	t.Run("interval is exposed for the engine ticker", func(t *testing.T) {
		src := NewSource[int]()
		buf, err := BufferTimed(src.Stream(), 250*time.Millisecond)
		assert.NoError(t, err)
		assert.Equal(t, 250*time.Millisecond, buf.Interval())
	})
}

func TestBufferTimedConcurrent(t *testing.T) {
	t.Run("ticks are serialized with appends, no value lost or split", func(t *testing.T) {
		const (
			emitters = 4
			perEmit  = 500
		)

		src := NewSource[int]()
		buf, err := BufferTimed(src.Stream(), time.Second)
		assert.NoError(t, err)

		var mu sync.Mutex
		var total int
		buf.Stream().Sink(func(b []int) {
			mu.Lock()
			total += len(b)
			mu.Unlock()
		})

		var wg sync.WaitGroup
		stop := make(chan struct{})
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					buf.Flush()
				}
			}
		}()

		var emitWg sync.WaitGroup
		for i := 0; i < emitters; i++ {
			emitWg.Add(1)
			go func() {
				defer emitWg.Done()
				for j := 0; j < perEmit; j++ {
					src.Emit(j)
				}
			}()
		}
		emitWg.Wait()
		close(stop)
		wg.Wait()
		buf.Flush()

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, emitters*perEmit, total)
	})
}
