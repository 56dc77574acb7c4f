package reload

import (
	"sort"
	"sync"
	"time"
)

// Queue is a de-duplicated set of changed paths. A path becomes ready once no new change has been
// pushed for it within the debounce window, so a burst of writes yields a single reload.
// Push may be called from any goroutine; Drain is called by the host loop between frames.
type Queue struct {
	mu       sync.Mutex
	pending  map[string]time.Time
	debounce time.Duration
	now      func() time.Time
}

// NewQueue creates an empty Queue.
//
// Parameters:
//   - debounce: how long a path must stay quiet before Drain returns it
//
// Returns:
//   - *Queue: the new queue
func NewQueue(debounce time.Duration) *Queue {
	return &Queue{
		pending:  make(map[string]time.Time),
		debounce: debounce,
		now:      time.Now,
	}
}

// Push records a change to path, restarting its debounce window.
func (q *Queue) Push(path string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending[path] = q.now()
}

// Drain removes and returns every path whose debounce window has elapsed, sorted.
func (q *Queue) Drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	var ready []string
	for path, at := range q.pending {
		if now.Sub(at) >= q.debounce {
			ready = append(ready, path)
			delete(q.pending, path)
		}
	}
	sort.Strings(ready)
	return ready
}

// Len returns the number of paths waiting, ready or not.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
