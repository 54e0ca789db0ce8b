package fetchguard

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_FirstCallOnly(t *testing.T) {
	g := NewGuard()
	assert.True(t, g.ShouldFetch("S1"))
	assert.False(t, g.ShouldFetch("S1"))
	assert.False(t, g.ShouldFetch("S1"))
	assert.True(t, g.ShouldFetch("S2"))

	g.Reset("S1")
	assert.True(t, g.ShouldFetch("S1"), "a failed fetch must not poison the id")
}

func TestCache_MemoizesSuccess(t *testing.T) {
	c := NewCache[string]()
	var calls int32
	fn := func(context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "I1", nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrStart(context.Background(), "S1", fn)
		require.NoError(t, err)
		assert.Equal(t, "I1", v)
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Equal(t, 1, c.Starts())

	v, ok := c.Peek("S1")
	assert.True(t, ok)
	assert.Equal(t, "I1", v)
}

func TestCache_ConcurrentCallersShareOneFetch(t *testing.T) {
	c := NewCache[int]()
	release := make(chan struct{})
	var calls int32
	fn := func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 7, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.GetOrStart(context.Background(), "S1", fn)
			if err == nil {
				results[i] = v
			}
		}(i)
	}
	// Let the goroutines pile up on the in-flight call before releasing it.
	for atomic.LoadInt32(&calls) == 0 {
		runtime.Gosched()
	}
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	for _, v := range results {
		assert.Equal(t, 7, v)
	}
}

func TestCache_FailureIsNotMemoized(t *testing.T) {
	c := NewCache[string]()
	fail := true
	fn := func(context.Context) (string, error) {
		if fail {
			return "", errors.New("backend down")
		}
		return "I1", nil
	}

	_, err := c.GetOrStart(context.Background(), "S1", fn)
	require.Error(t, err)

	fail = false
	v, err := c.GetOrStart(context.Background(), "S1", fn)
	require.NoError(t, err)
	assert.Equal(t, "I1", v)
	assert.Equal(t, 2, c.Starts())
}

func TestCache_ResolutionAfterCloseIsDiscarded(t *testing.T) {
	c := NewCache[string]()
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		_, err := c.GetOrStart(context.Background(), "S1", func(context.Context) (string, error) {
			close(started)
			<-release
			return "I1", nil
		})
		done <- err
	}()

	<-started
	c.Close()
	close(release)

	assert.ErrorIs(t, <-done, ErrUnmounted)
	_, ok := c.Peek("S1")
	assert.False(t, ok)

	_, err := c.GetOrStart(context.Background(), "S2", func(context.Context) (string, error) { return "x", nil })
	assert.ErrorIs(t, err, ErrUnmounted)
}

func TestCache_Forget(t *testing.T) {
	c := NewCache[string]()
	fn := func(context.Context) (string, error) { return "v", nil }
	_, _ = c.GetOrStart(context.Background(), "a", fn)
	c.Forget("a")
	_, _ = c.GetOrStart(context.Background(), "a", fn)
	assert.Equal(t, 2, c.Starts())
}
