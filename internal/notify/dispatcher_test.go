package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher(t *testing.T) {
	t.Run("should run accepted jobs", func(t *testing.T) {
		d := NewDispatcher(4, time.Second)
		var ran atomic.Int32

		for i := 0; i < 3; i++ {
			assert.True(t, d.Go("count", func(ctx context.Context) error {
				ran.Add(1)
				return nil
			}))
		}
		d.Wait()

		assert.Equal(t, int32(3), ran.Load())
	})

	t.Run("should drop jobs when saturated instead of blocking", func(t *testing.T) {
		d := NewDispatcher(1, time.Second)
		release := make(chan struct{})

		assert.True(t, d.Go("blocker", func(ctx context.Context) error {
			<-release
			return nil
		}))
		assert.False(t, d.Go("dropped", func(ctx context.Context) error {
			t.Error("dropped job must not run")
			return nil
		}))

		close(release)
		d.Wait()

		assert.True(t, d.Go("after", func(ctx context.Context) error { return nil }))
		d.Wait()
	})

	t.Run("should swallow job errors and panics", func(t *testing.T) {
		d := NewDispatcher(2, time.Second)

		d.Go("fails", func(ctx context.Context) error { return errors.New("insight unavailable") })
		d.Go("panics", func(ctx context.Context) error { panic("boom") })
		d.Wait()
	})

	t.Run("should bound each job with the timeout", func(t *testing.T) {
		d := NewDispatcher(1, 20*time.Millisecond)
		var deadlineHit atomic.Bool

		d.Go("slow", func(ctx context.Context) error {
			<-ctx.Done()
			deadlineHit.Store(errors.Is(ctx.Err(), context.DeadlineExceeded))
			return ctx.Err()
		})
		d.Wait()

		assert.True(t, deadlineHit.Load())
	})
}

func TestDispatcherBatch(t *testing.T) {
	t.Run("should run every job in order on one slot", func(t *testing.T) {
		d := NewDispatcher(1, time.Second)
		var (
			mu    sync.Mutex
			order []int
		)

		jobs := make([]Job, 20)
		for i := range jobs {
			jobs[i] = func(ctx context.Context) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				return nil
			}
		}
		assert.True(t, d.Batch(context.Background(), "import", jobs))
		d.Wait()

		require.Len(t, order, 20)
		for i, got := range order {
			assert.Equal(t, i, got)
		}
	})

	t.Run("should give each job its own timeout", func(t *testing.T) {
		d := NewDispatcher(1, 30*time.Millisecond)
		var completed atomic.Int32

		job := func(ctx context.Context) error {
			select {
			case <-time.After(20 * time.Millisecond):
				completed.Add(1)
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		d.Batch(context.Background(), "slow batch", []Job{job, job, job})
		d.Wait()

		assert.Equal(t, int32(3), completed.Load())
	})

	t.Run("should wait for a slot instead of dropping", func(t *testing.T) {
		d := NewDispatcher(1, time.Second)
		release := make(chan struct{})
		var ran atomic.Bool

		assert.True(t, d.Go("blocker", func(ctx context.Context) error {
			<-release
			return nil
		}))
		go func() {
			time.Sleep(20 * time.Millisecond)
			close(release)
		}()

		assert.True(t, d.Batch(context.Background(), "queued", []Job{func(ctx context.Context) error {
			ran.Store(true)
			return nil
		}}))
		d.Wait()

		assert.True(t, ran.Load())
	})

	t.Run("should give up when the context ends first", func(t *testing.T) {
		d := NewDispatcher(1, time.Second)
		release := make(chan struct{})
		d.Go("blocker", func(ctx context.Context) error {
			<-release
			return nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		assert.False(t, d.Batch(ctx, "late", []Job{func(ctx context.Context) error {
			t.Error("a batch without a slot must not run")
			return nil
		}}))

		close(release)
		d.Wait()
	})
}
