// Package intercept owns the global switch hotkey and the low-level input
// tap, reporting events to the state machine over buffered channels.
package intercept

import "sync"

// Key identifies one of the active-only secondary keys.
type Key int

const (
	KeyNone Key = iota
	KeyDismiss
	KeyAccept
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHide
	KeyQuit
)

// Point is a pointer location in screen coordinates.
type Point struct {
	X, Y int
}

// CursorFunc reports the current pointer position. Implementations may
// return an error when the position cannot be queried.
type CursorFunc func() (Point, error)

// Service registers the system-wide primary hotkey and taps modifier and
// pointer input. Start fails with a diagnostic error when the OS denies
// registration; the service is then inert and must not be used further.
// Stop is idempotent.
//
// The active-only hotkey tier (dismiss, accept, navigate, hide, quit) is
// registered only while the overlay shows, so the same shortcuts keep
// working in other applications while idle.
type Service interface {
	Start() error
	Stop()

	RegisterActiveHotkeys() error
	UnregisterActiveHotkeys()

	PrimaryHotkey() <-chan struct{}
	SecondaryKey() <-chan Key
	ModifierReleased() <-chan struct{}
	SecondaryModifierPressed() <-chan struct{}
	PointerDown() <-chan Point
}

// ActiveFlag mirrors the state machine's Active state for the event
// delivery goroutines. Implementations set it true before handing the
// primary-hotkey event to the owning loop, so a key event processed right
// after activation never observes a stale flag. Only plain get/set cross
// the lock; no compound read-modify-write spans both contexts.
type ActiveFlag struct {
	mu     sync.Mutex
	active bool
}

func (f *ActiveFlag) Set(v bool) {
	f.mu.Lock()
	f.active = v
	f.mu.Unlock()
}

func (f *ActiveFlag) Get() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}
