//go:build !darwin

package tray

func Init() <-chan struct{}        { return quitCh }
func updateActiveIcon(bool)        {}
func updateCopyLastTitle(string)   {}
