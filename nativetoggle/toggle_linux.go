//go:build linux

package nativetoggle

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

const (
	schema      = "org.gnome.desktop.wm.keybindings"
	keyForward  = "switch-applications"
	keyBackward = "switch-applications-backward"
)

// gsettingsToggle blanks the GNOME switch-applications bindings and puts
// the previous values back on Restore. On compositors that do not read
// GNOME settings (Hyprland without a default Alt+Tab bind) both calls are
// harmless.
type gsettingsToggle struct {
	mu    sync.Mutex
	saved map[string]string
}

func newToggle() Toggle {
	return &gsettingsToggle{}
}

func (t *gsettingsToggle) Suppress() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.saved != nil {
		return nil
	}
	saved := make(map[string]string)
	for _, key := range []string{keyForward, keyBackward} {
		out, err := exec.Command("gsettings", "get", schema, key).Output()
		if err != nil {
			return fmt.Errorf("reading %s: %w", key, err)
		}
		saved[key] = strings.TrimSpace(string(out))
	}
	for _, key := range []string{keyForward, keyBackward} {
		if err := exec.Command("gsettings", "set", schema, key, "[]").Run(); err != nil {
			return fmt.Errorf("clearing %s: %w", key, err)
		}
	}
	t.saved = saved
	return nil
}

func (t *gsettingsToggle) Restore() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.saved == nil {
		return nil
	}
	var firstErr error
	for key, val := range t.saved {
		if err := exec.Command("gsettings", "set", schema, key, val).Run(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("restoring %s: %w", key, err)
		}
	}
	t.saved = nil
	return firstErr
}
