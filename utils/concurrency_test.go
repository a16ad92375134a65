package utils

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestAllPreservesTaskOrder(t *testing.T) {
	delays := []time.Duration{30 * time.Millisecond, 0, 10 * time.Millisecond}
	tasks := make([]Task[int], len(delays))
	for i, d := range delays {
		i, d := i, d
		tasks[i] = func(ctx context.Context) (int, error) {
			time.Sleep(d)
			return i, nil
		}
	}

	got, err := All(context.Background(), 0, tasks...)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestAllRunsConcurrently(t *testing.T) {
	const n = 3
	var started int32
	release := make(chan struct{})

	tasks := make([]Task[struct{}], n)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) (struct{}, error) {
			if atomic.AddInt32(&started, 1) == n {
				close(release)
			}
			select {
			case <-release:
				return struct{}{}, nil
			case <-time.After(2 * time.Second):
				return struct{}{}, errors.New("tasks were not started concurrently")
			}
		}
	}

	_, err := All(context.Background(), 0, tasks...)
	require.NoError(t, err)
}

func TestAllFailsIfAnyFails(t *testing.T) {
	boom := errors.New("boom")
	var finished int32

	tasks := []Task[string]{
		func(ctx context.Context) (string, error) {
			atomic.AddInt32(&finished, 1)
			return "a", nil
		},
		func(ctx context.Context) (string, error) {
			atomic.AddInt32(&finished, 1)
			return "", boom
		},
		func(ctx context.Context) (string, error) {
			<-ctx.Done()
			atomic.AddInt32(&finished, 1)
			return "", ctx.Err()
		},
	}

	got, err := All(context.Background(), 0, tasks...)
	require.ErrorIs(t, err, boom)
	assert.Nil(t, got)
	assert.Equal(t, int32(3), atomic.LoadInt32(&finished), "All must wait for every task")
}

func TestAllRespectsLimit(t *testing.T) {
	var running, peak int32
	tasks := make([]Task[int], 6)
	for i := range tasks {
		i := i
		tasks[i] = func(ctx context.Context) (int, error) {
			cur := atomic.AddInt32(&running, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return i, nil
		}
	}

	_, err := All(context.Background(), 2, tasks...)
	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestAllWithNoTasks(t *testing.T) {
	got, err := All[int](context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWorkerPoolRunsEveryJob(t *testing.T) {
	var done int64
	pool := NewWorkerPool(3)
	for i := 0; i < 20; i++ {
		pool.Submit(func() {
			atomic.AddInt64(&done, 1)
		})
	}
	pool.Wait()

	assert.Equal(t, int64(20), atomic.LoadInt64(&done))
}
