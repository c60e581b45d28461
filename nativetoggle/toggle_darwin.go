//go:build darwin

package nativetoggle

import (
	"fmt"
	"os/exec"
	"sync"
)

// Symbolic hotkey id for the window-cycling shortcut in
// com.apple.symbolichotkeys.
const cycleWindowsID = "27"

type symbolicToggle struct {
	mu         sync.Mutex
	suppressed bool
}

func newToggle() Toggle {
	return &symbolicToggle{}
}

func (t *symbolicToggle) Suppress() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.suppressed {
		return nil
	}
	if err := setEnabled(false); err != nil {
		return err
	}
	t.suppressed = true
	return nil
}

func (t *symbolicToggle) Restore() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.suppressed {
		return nil
	}
	if err := setEnabled(true); err != nil {
		return err
	}
	t.suppressed = false
	return nil
}

func setEnabled(on bool) error {
	state := "<false/>"
	if on {
		state = "<true/>"
	}
	plist := fmt.Sprintf("<dict><key>enabled</key>%s</dict>", state)
	if err := exec.Command("defaults", "write", "com.apple.symbolichotkeys",
		"AppleSymbolicHotKeys", "-dict-add", cycleWindowsID, plist).Run(); err != nil {
		return fmt.Errorf("writing symbolic hotkey: %w", err)
	}
	// Preference daemons cache the domain; nudge them so it takes effect.
	exec.Command("killall", "cfprefsd").Run()
	return nil
}
