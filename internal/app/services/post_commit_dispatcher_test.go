package services

import (
	"context"
	stdErrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostCommitDispatcher_RunsJobs(t *testing.T) {
	d := StartPostCommitDispatcher(2, 16, time.Second)
	defer d.Shutdown(context.Background())

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		require.True(t, d.Dispatch("count", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		}))
	}
	d.Flush()
	assert.Equal(t, int32(10), ran.Load())
}

func TestPostCommitDispatcher_SurvivesFailures(t *testing.T) {
	d := StartPostCommitDispatcher(1, 4, time.Second)
	defer d.Shutdown(context.Background())

	d.Dispatch("fails", func(ctx context.Context) error { return stdErrors.New("boom") })
	d.Dispatch("panics", func(ctx context.Context) error { panic("boom") })

	var ran atomic.Bool
	d.Dispatch("after", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	d.Flush()
	assert.True(t, ran.Load())
}

func TestPostCommitDispatcher_DropsWhenFull(t *testing.T) {
	d := StartPostCommitDispatcher(1, 1, time.Second)
	defer d.Shutdown(context.Background())

	release := make(chan struct{})
	started := make(chan struct{})
	require.True(t, d.Dispatch("blocker", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started

	require.True(t, d.Dispatch("queued", func(ctx context.Context) error { return nil }))
	assert.False(t, d.Dispatch("dropped", func(ctx context.Context) error { return nil }))

	close(release)
	d.Flush()
}

func TestPostCommitDispatcher_JobTimeout(t *testing.T) {
	d := StartPostCommitDispatcher(1, 1, 20*time.Millisecond)
	defer d.Shutdown(context.Background())

	var deadline atomic.Bool
	d.Dispatch("slow", func(ctx context.Context) error {
		<-ctx.Done()
		deadline.Store(stdErrors.Is(ctx.Err(), context.DeadlineExceeded))
		return ctx.Err()
	})
	d.Flush()
	assert.True(t, deadline.Load())
}

func TestPostCommitDispatcher_Shutdown(t *testing.T) {
	d := StartPostCommitDispatcher(1, 8, time.Second)

	var ran atomic.Int32
	for i := 0; i < 3; i++ {
		d.Dispatch("drain", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}
	require.NoError(t, d.Shutdown(context.Background()))
	assert.Equal(t, int32(3), ran.Load())

	assert.False(t, d.Dispatch("late", func(ctx context.Context) error { return nil }))
	require.NoError(t, d.Shutdown(context.Background()))
}
