//go:build windows

package nativetoggle

// No per-user setting controls the native switcher here; suppression would
// need a low-level keyboard hook, which the interception service already
// provides. Both calls are no-ops.
type nopToggle struct{}

func newToggle() Toggle        { return nopToggle{} }
func (nopToggle) Suppress() error { return nil }
func (nopToggle) Restore() error  { return nil }
