package cache

import "sync"

// Task is the cancellation handle returned by every Loader operation. After
// Cancel returns no completion is delivered for that operation; the store
// operation itself is not interrupted and still runs to its end.
type Task struct {
	mu        sync.Mutex
	cancelled bool
}

func (t *Task) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelled = true
}

func (t *Task) deliver(fn func()) {
	t.mu.Lock()
	cancelled := t.cancelled
	t.mu.Unlock()

	if cancelled {
		return
	}
	fn()
}
