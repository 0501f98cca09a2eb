package scrape

import "sync"

// frontier is the URL queue for the browser runner. It deduplicates,
// enforces the total request budget, and closes itself once every admitted
// URL has been fully processed, which is what lets the worker pool drain
// and exit.
type frontier struct {
	mu       sync.Mutex
	visited  map[string]struct{}
	queue    chan string
	budget   int
	taken    int
	inflight int
	closed   bool
}

func newFrontier(budget int) *frontier {
	size := budget
	if size <= 0 {
		size = 1024
	}
	return &frontier{
		visited: make(map[string]struct{}),
		queue:   make(chan string, size),
		budget:  budget,
	}
}

// Add admits a URL unless it was already seen, the budget is spent, or the
// queue is full. Returns whether the URL was admitted.
func (f *frontier) Add(raw string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	if _, seen := f.visited[raw]; seen {
		return false
	}
	if f.budget > 0 && f.taken >= f.budget {
		return false
	}
	select {
	case f.queue <- raw:
		f.visited[raw] = struct{}{}
		f.taken++
		f.inflight++
		return true
	default:
		return false
	}
}

// Next blocks for the next URL; ok is false once the frontier has drained.
func (f *frontier) Next() (string, bool) {
	raw, ok := <-f.queue
	return raw, ok
}

// Done marks one popped URL as fully processed. Must be called exactly once
// per successful Next, after any links it produced were Added.
func (f *frontier) Done() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inflight--
	if f.inflight == 0 && !f.closed {
		f.closed = true
		close(f.queue)
	}
}
