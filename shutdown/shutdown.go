// Package shutdown funnels every exit path through one set of cleanup
// hooks. The native-hotkey restore registers here so it runs on normal
// quit, termination signals, and panics alike.
package shutdown

import (
	"sync"
)

var (
	mu    sync.Mutex
	hooks []func()
	once  sync.Once
)

// OnExit registers fn to run exactly once when the process winds down.
// Hooks run in reverse registration order.
func OnExit(fn func()) {
	mu.Lock()
	hooks = append(hooks, fn)
	mu.Unlock()
}

// RunHooks executes the registered hooks. Safe to call from multiple exit
// paths; only the first call runs anything.
func RunHooks() {
	once.Do(func() {
		mu.Lock()
		fns := make([]func(), len(hooks))
		copy(fns, hooks)
		mu.Unlock()
		for i := len(fns) - 1; i >= 0; i-- {
			fns[i]()
		}
	})
}
