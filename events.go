package main

import (
	"switcher/enumerate"
	"switcher/grid"
	"switcher/tray"
)

// tuiSink forwards state machine events to the Bubble Tea program and the
// status tray. Calls arrive on the machine goroutine; tea.Program.Send and
// the tray setters are safe from there.
type tuiSink struct{}

func (tuiSink) send(msg interface{}) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (s tuiSink) OverlayShown(rows [][]enumerate.CandidateApp, cur grid.Cursor) {
	s.send(OverlayShownMsg{Rows: rows, Cursor: cur})
	tray.SetActive(true)
}

func (s tuiSink) CursorMoved(cur grid.Cursor) {
	s.send(CursorMsg{Cursor: cur})
}

func (s tuiSink) GridChanged(rows [][]enumerate.CandidateApp, cur grid.Cursor) {
	s.send(GridMsg{Rows: rows, Cursor: cur})
}

func (s tuiSink) OverlayHidden() {
	s.send(OverlayHiddenMsg{})
	tray.SetActive(false)
}

func (s tuiSink) Committed(app enumerate.CandidateApp) {
	s.send(CommittedMsg{Name: app.Name})
	tray.SetLastSwitch(app.Name)
}
