// Package tray shows a small status item with an enabled toggle,
// copy-last-switch, and quit. Menu bar support exists on darwin only; the
// other builds are inert.
package tray

import (
	"sync"
)

var (
	quitCh    = make(chan struct{})
	closeOnce sync.Once

	copyLastFn func()
	enabledCb  func(bool)

	altIcons bool
	lastName string
)

// SetIconVariant selects the alternate icon style. Read once at startup,
// before Init.
func SetIconVariant(alt bool) { altIcons = alt }

// OnCopyLast registers the handler for the copy-last-switch item.
func OnCopyLast(fn func()) { copyLastFn = fn }

// OnEnabled registers the handler for the enabled checkbox.
func OnEnabled(fn func(bool)) { enabledCb = fn }

// SetLastSwitch updates the copy-last item with the most recent target.
// The name is retained so a menu built after the first switch still shows
// it.
func SetLastSwitch(name string) {
	lastName = name
	updateCopyLastTitle(copyLastTitle())
}

func copyLastTitle() string {
	if lastName == "" {
		return ""
	}
	return "Copy Last App (" + lastName + ")"
}

// SetActive flips the icon while the overlay is showing.
func SetActive(on bool) { updateActiveIcon(on) }

func Quit() {
	closeOnce.Do(func() { close(quitCh) })
}
