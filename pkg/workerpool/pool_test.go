package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_Submit(t *testing.T) {
	p := New(&Config{MaxWorkers: 4, QueueSize: 16}, nil)
	defer p.Shutdown(context.Background())

	var ran atomic.Int32
	err := p.Submit(context.Background(), func(ctx context.Context) error {
		ran.Add(1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), ran.Load())
}

func TestPool_SubmitError(t *testing.T) {
	p := New(nil, nil)
	defer p.Shutdown(context.Background())

	want := errors.New("boom")
	err := p.Submit(context.Background(), func(ctx context.Context) error {
		return want
	})
	assert.ErrorIs(t, err, want)
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	p := New(&Config{MaxWorkers: 2, QueueSize: 4}, nil)
	require.NoError(t, p.Shutdown(context.Background()))

	err := p.Submit(context.Background(), func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrWorkerPoolClosed)
}

func TestPool_QueueFull(t *testing.T) {
	p := New(&Config{MaxWorkers: 1, QueueSize: 1}, nil)
	defer p.Shutdown(context.Background())

	block := make(chan struct{})
	// 占住唯一 worker
	_ = p.SubmitAsync(context.Background(), func(ctx context.Context) error {
		<-block
		return nil
	})
	// 占满队列
	_ = p.SubmitAsync(context.Background(), func(ctx context.Context) error { return nil })

	var full bool
	for i := 0; i < 10; i++ {
		if err := p.SubmitAsync(context.Background(), func(ctx context.Context) error { return nil }); errors.Is(err, ErrWorkerPoolFull) {
			full = true
			break
		}
		time.Sleep(time.Millisecond)
	}
	close(block)
	assert.True(t, full)
}

func TestPool_ConcurrentFanOut(t *testing.T) {
	p := New(&Config{MaxWorkers: 8, QueueSize: 64}, nil)
	defer p.Shutdown(context.Background())

	var done atomic.Int32
	errCh := make(chan error, 32)
	for i := 0; i < 32; i++ {
		go func() {
			errCh <- p.Submit(context.Background(), func(ctx context.Context) error {
				done.Add(1)
				return nil
			})
		}()
	}
	for i := 0; i < 32; i++ {
		require.NoError(t, <-errCh)
	}
	assert.Equal(t, int32(32), done.Load())
}

// 提交方因上下文取消提前返回后，已入队的任务仍归池所有且恰好执行一次
func TestPool_SubmitCancelKeepsTaskOwnership(t *testing.T) {
	p := New(&Config{MaxWorkers: 1, QueueSize: 4}, nil)
	defer p.Shutdown(context.Background())

	var runs atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	err := p.Submit(ctx, func(ctx context.Context) error {
		close(started)
		runs.Add(1)
		<-release
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)

	close(release)
	require.Eventually(t, func() bool { return p.ActiveCount() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}
