package enumerate

import "strconv"

// ActivationPolicy classifies how a process may take the foreground.
type ActivationPolicy int

const (
	// PolicyRegular processes can own windows and appear in the switcher.
	PolicyRegular ActivationPolicy = iota
	// PolicyAccessory processes show panels but never a main window.
	PolicyAccessory
	// PolicyBackground processes never take the foreground.
	PolicyBackground
)

// ProcessInfo is one running application as reported by the process registry.
type ProcessInfo struct {
	PID      int
	Name     string
	BundleID string
	Icon     string // opaque icon handle (path or theme name); never rendered here
	Policy   ActivationPolicy
	Hidden   bool
}

// Rect is a window rectangle in screen coordinates.
type Rect struct {
	X, Y          int
	Width, Height int
}

// WindowInfo is one window descriptor as reported by the window registry.
type WindowInfo struct {
	OwnerPID int
	Layer    int
	Bounds   Rect
	OnScreen bool
}

// CandidateApp is one application eligible for the switcher overlay.
// Produced fresh on every activation; callers treat it as read-only.
type CandidateApp struct {
	PID   int
	Name  string
	Icon  string
	Badge string
}

// ProcessRegistry lists running applications.
type ProcessRegistry interface {
	Processes() ([]ProcessInfo, error)
}

// WindowRegistry lists on-screen window descriptors.
type WindowRegistry interface {
	Windows() ([]WindowInfo, error)
}

// DockBadges maps bundle identifiers to raw dock status labels.
type DockBadges interface {
	Badges() (map[string]string, error)
}

// FormatBadge normalizes a raw dock status label. Numeric badges above 99
// render as "99+"; anything else passes through unchanged.
func FormatBadge(raw string) string {
	if raw == "" {
		return ""
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 99 {
		return "99+"
	}
	return raw
}
