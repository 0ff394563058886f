package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/glucobar/internal/fetcher"
)

type countingRefresher struct {
	calls atomic.Int32
}

func (r *countingRefresher) Refresh(ctx context.Context) fetcher.Outcome {
	r.calls.Add(1)
	return fetcher.OutcomeThrottled
}

func TestStartPoller_TicksUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &countingRefresher{}

	done := StartPoller(ctx, r, 5*time.Millisecond, nil)

	deadline := time.After(2 * time.Second)
	for r.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("poller made %d calls, want >= 3", r.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop after cancel")
	}

	stopped := r.calls.Load()
	time.Sleep(20 * time.Millisecond)
	if r.calls.Load() != stopped {
		t.Fatalf("poller kept calling after stop: %d -> %d", stopped, r.calls.Load())
	}
}

func TestStartPoller_RefreshesImmediately(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &countingRefresher{}

	// A long interval proves the first call does not wait for a tick.
	StartPoller(ctx, r, time.Hour, nil)

	deadline := time.After(2 * time.Second)
	for r.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("poller did not refresh on start")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestStartPoller_DefaultInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &countingRefresher{}
	done := StartPoller(ctx, r, 0, nil)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller with default interval did not stop")
	}
}
