//go:build windows

package intercept

import "golang.design/x/hotkey"

var (
	primaryMods = []hotkey.Modifier{hotkey.ModAlt}
	reverseMods = []hotkey.Modifier{hotkey.ModAlt, hotkey.ModShift}
)
