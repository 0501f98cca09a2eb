package scrape

import (
	"context"
	"testing"
	"time"

	"github.com/chromedp/cdproto/network"
)

func newIdleTracker() *settleTracker {
	return &settleTracker{
		inflight: make(map[network.RequestID]struct{}),
		lastBusy: time.Now().Add(-time.Second),
	}
}

func TestSettleTracker_WaitReturnsWhenQuiet(t *testing.T) {
	t.Parallel()

	tr := newIdleTracker()

	start := time.Now()
	tr.Wait(context.Background(), 5*time.Second)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Wait on an idle tracker took %v", elapsed)
	}
}

func TestSettleTracker_WaitHonorsBudget(t *testing.T) {
	t.Parallel()

	tr := newIdleTracker()
	tr.track("req-1") // never finishes

	start := time.Now()
	tr.Wait(context.Background(), 300*time.Millisecond)
	elapsed := time.Since(start)
	if elapsed < 250*time.Millisecond || elapsed > 2*time.Second {
		t.Fatalf("Wait with a stuck request took %v, want about the budget", elapsed)
	}
}

func TestSettleTracker_WaitZeroBudget(t *testing.T) {
	t.Parallel()

	tr := newIdleTracker()
	tr.track("req-1")

	start := time.Now()
	tr.Wait(context.Background(), 0)
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("zero budget must not wait, took %v", elapsed)
	}
}

func TestSettleTracker_WaitHonorsContext(t *testing.T) {
	t.Parallel()

	tr := newIdleTracker()
	tr.track("req-1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	tr.Wait(ctx, 5*time.Second)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Wait on a cancelled context took %v", elapsed)
	}
}

func TestSettleTracker_TrackUntrack(t *testing.T) {
	t.Parallel()

	tr := newIdleTracker()
	tr.track("a")
	tr.track("b")
	if quiet, _ := tr.quietSince(); quiet {
		t.Fatal("two requests in flight, tracker should be busy")
	}
	tr.untrack("a")
	tr.untrack("b")
	if quiet, _ := tr.quietSince(); !quiet {
		t.Fatal("all requests finished, tracker should be quiet")
	}
}
