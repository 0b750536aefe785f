package ring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchcore/internal/arena"
)

func newTestRing(t *testing.T, capacity int) *Ring[int] {
	t.Helper()
	a := arena.New(1 << 20)
	return New[int](a, capacity)
}

// S6 - ring back-pressure, capacity 4.
func TestBackPressure(t *testing.T) {
	r := newTestRing(t, 4)

	for i := 0; i < 4; i++ {
		require.True(t, r.Push(i))
	}
	assert.False(t, r.Push(4))

	v, ok := r.Pop()
	require.True(t, ok)
	assert.Equal(t, 0, v)

	assert.True(t, r.Push(4))

	var popped []int
	for {
		v, ok := r.Pop()
		if !ok {
			break
		}
		popped = append(popped, v)
	}
	assert.Equal(t, []int{1, 2, 3, 4}, popped)
}

func TestEmptyPopLeavesStateUnchanged(t *testing.T) {
	r := newTestRing(t, 4)
	_, ok := r.Pop()
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestCapacityRejectsNonPowerOfTwo(t *testing.T) {
	a := arena.New(1 << 10)
	assert.Panics(t, func() {
		New[int](a, 3)
	})
}

// Property: for any interleaving of a single pusher and single popper, the
// sequence popped equals a prefix of the sequence pushed.
func TestConcurrentSPSCOrdering(t *testing.T) {
	const n = 200_000
	r := newTestRing(t, 1024)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			for !r.Push(i) {
			}
		}
	}()

	popped := make([]int, 0, n)
	go func() {
		defer wg.Done()
		for len(popped) < n {
			if v, ok := r.Pop(); ok {
				popped = append(popped, v)
			}
		}
	}()

	wg.Wait()

	require.Len(t, popped, n)
	for i, v := range popped {
		require.Equal(t, i, v)
	}
}

func BenchmarkPushPop(b *testing.B) {
	a := arena.New(1 << 20)
	r := New[int](a, 1024)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.Push(i)
		r.Pop()
	}
}
