package enumerate

import (
	"sync"
)

// mruCap bounds the recency list; anything older than the 50 most recently
// used applications ranks the same as never-seen.
const mruCap = 50

// ProcessEventKind tags a process lifecycle notification.
type ProcessEventKind int

const (
	ProcessActivated ProcessEventKind = iota
	ProcessTerminated
)

// ProcessEvent is one activation or termination notification.
type ProcessEvent struct {
	PID  int
	Kind ProcessEventKind
}

// ProcessEventSource delivers process lifecycle notifications.
type ProcessEventSource interface {
	Subscribe() (<-chan ProcessEvent, error)
	Close()
}

// Recency tracks most-recently-used process ids for ranking. It lives for
// the whole process: created once at startup, fed by Observe, and read by
// the enumerator on every activation. Notifications arrive on the source's
// goroutine, so the list is guarded by a mutex with plain get/set access
// only (no compound read-modify-write crosses the lock).
type Recency struct {
	mu   sync.Mutex
	pids []int

	src  ProcessEventSource
	once sync.Once
}

func NewRecency() *Recency {
	return &Recency{}
}

// Observe subscribes to src and applies its events until Stop.
func (r *Recency) Observe(src ProcessEventSource) error {
	events, err := src.Subscribe()
	if err != nil {
		return err
	}
	r.src = src
	go func() {
		for ev := range events {
			switch ev.Kind {
			case ProcessActivated:
				r.Touch(ev.PID)
			case ProcessTerminated:
				r.Drop(ev.PID)
			}
		}
	}()
	return nil
}

// Stop closes the underlying subscription. Idempotent.
func (r *Recency) Stop() {
	r.once.Do(func() {
		if r.src != nil {
			r.src.Close()
		}
	})
}

// Touch moves pid to the front, inserting it if absent and truncating to
// the cap.
func (r *Recency) Touch(pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pids = remove(r.pids, pid)
	r.pids = append([]int{pid}, r.pids...)
	if len(r.pids) > mruCap {
		r.pids = r.pids[:mruCap]
	}
}

// Drop removes pid if present.
func (r *Recency) Drop(pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pids = remove(r.pids, pid)
}

// Rank returns pid's position in the recency order, most recent first.
// The second result is false for pids not on the list.
func (r *Recency) Rank(pid int) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.pids {
		if p == pid {
			return i, true
		}
	}
	return 0, false
}

// Snapshot copies the current order, most recent first.
func (r *Recency) Snapshot() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.pids))
	copy(out, r.pids)
	return out
}

func remove(pids []int, pid int) []int {
	for i, p := range pids {
		if p == pid {
			return append(pids[:i], pids[i+1:]...)
		}
	}
	return pids
}
