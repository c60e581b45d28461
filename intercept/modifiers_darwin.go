//go:build darwin

package intercept

import "golang.design/x/hotkey"

// Option rather than Command: the native switcher keeps Cmd+Tab until the
// user suppresses it, so the two never race for the same chord.
var (
	primaryMods = []hotkey.Modifier{hotkey.ModOption}
	reverseMods = []hotkey.Modifier{hotkey.ModOption, hotkey.ModShift}
)
