package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScheduler_AddJobIgnoresNonPositiveInterval(t *testing.T) {
	s := NewScheduler(discardLogger())
	s.AddJob("never", 0, func(ctx context.Context) error { return nil })
	s.AddJob("hourly", time.Hour, func(ctx context.Context) error { return nil })

	assert.Len(t, s.jobs, 1)
	assert.Equal(t, "hourly", s.jobs[0].Name)
}

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler(discardLogger())

	var order []string
	s.AddJob("first", time.Hour, func(ctx context.Context) error {
		order = append(order, "first")
		return errors.New("boom")
	})
	s.AddJob("second", time.Hour, func(ctx context.Context) error {
		order = append(order, "second")
		return nil
	})

	s.RunOnce(context.Background())
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestScheduler_StartRunsImmediatelyAndStops(t *testing.T) {
	s := NewScheduler(discardLogger())

	var runs atomic.Int32
	started := make(chan struct{}, 1)
	s.AddJob("tick", time.Hour, func(ctx context.Context) error {
		runs.Add(1)
		select {
		case started <- struct{}{}:
		default:
		}
		return nil
	})

	s.Start()
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
	s.Stop()

	require.Equal(t, int32(1), runs.Load())
	assert.Error(t, s.ctx.Err())
}
