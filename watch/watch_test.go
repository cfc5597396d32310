package watch

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// scriptedProbe answers from a fixed script and then reports the marker present
func scriptedProbe(answers ...bool) ProbeFunc {
	var calls atomic.Int32
	return func(ctx context.Context) (bool, error) {
		i := int(calls.Add(1)) - 1
		if i < len(answers) {
			return answers[i], nil
		}
		return true, nil
	}
}

func collect(t *testing.T, ch <-chan Signal, n int) []Signal {
	t.Helper()
	var got []Signal
	timeout := time.After(2 * time.Second)
	for len(got) < n {
		select {
		case s, ok := <-ch:
			require.True(t, ok, "channel closed after %d signals", len(got))
			got = append(got, s)
		case <-timeout:
			t.Fatalf("timed out after %d signals", len(got))
		}
	}
	return got
}

func TestPollingSource_PageReadyFirst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source := &PollingSource{Probe: scriptedProbe(true, false, true, false), Interval: 5 * time.Millisecond}
	got := collect(t, source.Signals(ctx), 3)

	assert.Equal(t, PageReady, got[0].Reason)
	assert.Equal(t, MarkerMissing, got[1].Reason)
	assert.Equal(t, MarkerMissing, got[2].Reason)
	assert.False(t, got[0].At.IsZero())
}

func TestPollingSource_SkipsProbeErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	probe := func(ctx context.Context) (bool, error) {
		if calls.Add(1) == 1 {
			return false, errors.New("tab crashed")
		}
		return false, nil
	}

	source := &PollingSource{Probe: probe, Interval: 5 * time.Millisecond, Logger: testLogger()}
	got := collect(t, source.Signals(ctx), 2)

	assert.Equal(t, MarkerMissing, got[1].Reason)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestPollingSource_ClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	source := &PollingSource{Probe: scriptedProbe(), Interval: 5 * time.Millisecond}
	ch := source.Signals(ctx)
	collect(t, ch, 1)
	cancel()

	select {
	case _, ok := <-ch:
		for ok {
			_, ok = <-ch
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel was not closed")
	}
}

func TestPollingSource_Restartable(t *testing.T) {
	source := &PollingSource{Probe: scriptedProbe(), Interval: time.Hour}

	for i := 0; i < 2; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		got := collect(t, source.Signals(ctx), 1)
		assert.Equal(t, PageReady, got[0].Reason)
		cancel()
	}
}

// staticSource replays a fixed list of signals
type staticSource []Signal

func (s staticSource) Signals(ctx context.Context) <-chan Signal {
	ch := make(chan Signal, len(s))
	for _, signal := range s {
		ch <- signal
	}
	close(ch)
	return ch
}

func TestRunner_RunsSequentially(t *testing.T) {
	source := staticSource{{Reason: PageReady}, {Reason: MarkerMissing}, {Reason: MarkerMissing}}

	var running, overlaps atomic.Int32
	var reasons []Reason
	scan := func(ctx context.Context, signal Signal) error {
		if running.Add(1) > 1 {
			overlaps.Add(1)
		}
		defer running.Add(-1)
		reasons = append(reasons, signal.Reason)
		if len(reasons) == 2 {
			return errors.New("no product")
		}
		return nil
	}

	err := NewRunner(testLogger()).Run(context.Background(), source, scan)
	require.NoError(t, err)

	assert.Equal(t, []Reason{PageReady, MarkerMissing, MarkerMissing}, reasons)
	assert.Zero(t, overlaps.Load())
}

func TestRunner_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	source := &PollingSource{Probe: scriptedProbe(false, false, false), Interval: 5 * time.Millisecond}

	var scans atomic.Int32
	err := NewRunner(testLogger()).Run(ctx, source, func(ctx context.Context, signal Signal) error {
		if scans.Add(1) == 2 {
			cancel()
		}
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, scans.Load(), int32(2))
}
