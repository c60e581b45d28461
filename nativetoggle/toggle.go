// Package nativetoggle suppresses the OS's built-in switch shortcut while
// the custom one is in charge, and restores it afterwards. The setting is
// process-external and outlives us, so Restore must run on every exit
// path; that wiring lives in the lifecycle glue, not here.
package nativetoggle

// Toggle flips the native switch shortcut off and back on.
type Toggle interface {
	Suppress() error
	Restore() error
}

func New() Toggle {
	return newToggle()
}
