package schedule

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/stockmap/pkg/errors"
)

// every fires at a fixed sub-second interval.
type every time.Duration

func (e every) Next(t time.Time) time.Time { return t.Add(time.Duration(e)) }

func TestAddRejectsBadSpec(t *testing.T) {
	logger := zerolog.Nop()
	s := New(&logger)
	err := s.Add("not a spec", "run", func(context.Context) error { return nil })
	assert.True(t, errors.IsValidationError(err))
	require.NoError(t, s.Add("@every 2h", "run", func(context.Context) error { return nil }))
	require.NoError(t, s.Add("0 6 * * 1-5", "run", func(context.Context) error { return nil }))
}

func TestRunSkipsOverlap(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	s := New(&logger)

	var running, maxRunning, runs atomic.Int32
	s.AddSchedule(every(10*time.Millisecond), "slow", func(ctx context.Context) error {
		n := running.Add(1)
		defer running.Add(-1)
		if n > maxRunning.Load() {
			maxRunning.Store(n)
		}
		runs.Add(1)
		select {
		case <-time.After(80 * time.Millisecond):
		case <-ctx.Done():
		}
		return errors.New("boom")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	require.NoError(t, s.Run(ctx))

	assert.Equal(t, int32(1), maxRunning.Load())
	assert.GreaterOrEqual(t, runs.Load(), int32(1))
	assert.Zero(t, running.Load(), "Run waits for the job to return")
	assert.Contains(t, buf.String(), "Scheduled run failed")
}
