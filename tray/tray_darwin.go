//go:build darwin

package tray

import (
	"github.com/energye/systray"
	"golang.design/x/hotkey/mainthread"
)

var (
	mCopy    *systray.MenuItem
	mEnabled *systray.MenuItem
)

func Init() <-chan struct{} {
	start, _ := systray.RunWithExternalLoop(onReady, onExit)
	done := make(chan struct{})
	mainthread.Call(func() {
		start()
		close(done)
	})
	<-done
	return quitCh
}

func onReady() {
	systray.SetTemplateIcon(iconIdle, iconIdle)
	systray.SetTooltip("switcher")

	mCopy = systray.AddMenuItem("Copy Last App", "Copy the last switch target's name")
	if t := copyLastTitle(); t != "" {
		mCopy.SetTitle(t)
	} else {
		mCopy.Disable()
	}
	mCopy.Click(func() {
		if copyLastFn != nil {
			copyLastFn()
		}
	})

	systray.AddSeparator()

	mEnabled = systray.AddMenuItemCheckbox("Enabled", "Intercept the switch hotkey", true)
	mEnabled.Click(func() {
		if mEnabled.Checked() {
			mEnabled.Uncheck()
		} else {
			mEnabled.Check()
		}
		if enabledCb != nil {
			enabledCb(mEnabled.Checked())
		}
	})

	systray.AddSeparator()

	mQuit := systray.AddMenuItem("Quit", "Quit switcher")
	mQuit.Click(func() { Quit() })
}

func onExit() {}

func updateActiveIcon(on bool) {
	if on {
		systray.SetIcon(iconActive)
	} else {
		systray.SetTemplateIcon(iconIdle, iconIdle)
	}
}

func updateCopyLastTitle(title string) {
	if mCopy != nil {
		mCopy.SetTitle(title)
		mCopy.Enable()
	}
}
