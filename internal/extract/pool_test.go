package extract

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_BoundsConcurrency(t *testing.T) {
	p := NewPool(2)
	defer p.Close()

	var inFlight, peak atomic.Int32
	var mu sync.Mutex
	for i := 0; i < 10; i++ {
		require.NoError(t, p.Submit(func(context.Context) {
			n := inFlight.Add(1)
			mu.Lock()
			if n > peak.Load() {
				peak.Store(n)
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
		}))
	}
	p.Wait()

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Equal(t, int32(0), inFlight.Load())
}

func TestPool_DefaultSize(t *testing.T) {
	p := NewPool(0)
	defer p.Close()
	assert.Equal(t, DefaultPoolSize, p.Size())
}

func TestPool_SubmitAfterClose(t *testing.T) {
	p := NewPool(1)
	p.Close()
	p.Close()

	assert.ErrorIs(t, p.Submit(func(context.Context) {}), ErrPoolClosed)
}

func TestPool_CloseCancelsRunningTasks(t *testing.T) {
	p := NewPool(1)
	started := make(chan struct{})
	var sawCancel atomic.Bool
	require.NoError(t, p.Submit(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		sawCancel.Store(true)
	}))
	<-started

	p.Close()
	assert.True(t, sawCancel.Load())
}
