// Package machine is the switcher's orchestrator: it consumes interception
// events on a single owning goroutine, enumerates candidates, drives the
// selection grid, and requests activation, hide, and terminate actions.
package machine

import (
	"sync"

	"switcher/enumerate"
	"switcher/grid"
	"switcher/intercept"
	"switcher/log"
)

// State is the machine's activation state.
type State int

const (
	Idle State = iota
	Active
)

// CandidateSource yields a fresh ranked candidate list per activation.
type CandidateSource interface {
	Candidates() []enumerate.CandidateApp
}

// ProcessActions is the boundary for foreground, hide, and terminate
// requests. Failures are logged and otherwise ignored: the overlay always
// advances as though the request succeeded, so it never sticks on a dead
// entry.
type ProcessActions interface {
	Activate(pid int) error
	Hide(pid int) error
	Terminate(pid int) error
}

// EventSink receives overlay-facing notifications. Calls arrive on the
// machine's owning goroutine and must not block.
type EventSink interface {
	OverlayShown(rows [][]enumerate.CandidateApp, cur grid.Cursor)
	CursorMoved(cur grid.Cursor)
	GridChanged(rows [][]enumerate.CandidateApp, cur grid.Cursor)
	OverlayHidden()
	Committed(app enumerate.CandidateApp)
}

type nopSink struct{}

func (nopSink) OverlayShown([][]enumerate.CandidateApp, grid.Cursor) {}
func (nopSink) CursorMoved(grid.Cursor)                              {}
func (nopSink) GridChanged([][]enumerate.CandidateApp, grid.Cursor)  {}
func (nopSink) OverlayHidden()                                       {}
func (nopSink) Committed(enumerate.CandidateApp)                     {}

// Config carries the overlay geometry the grid needs for hit-testing.
type Config struct {
	Columns int
	Metrics grid.Metrics
	// Cursor reports the pointer position at overlay build time, for the
	// spurious-hover suppression threshold. May be nil.
	Cursor intercept.CursorFunc
}

type Machine struct {
	svc     intercept.Service
	source  CandidateSource
	actions ProcessActions
	sink    EventSink
	flag    *intercept.ActiveFlag
	cfg     Config

	g    *grid.Grid
	stop chan struct{}
	once sync.Once

	// mu guards fields read from outside the owning goroutine.
	mu       sync.Mutex
	state    State
	last     string
	switches int
	disabled bool
}

func New(svc intercept.Service, source CandidateSource, actions ProcessActions, sink EventSink, flag *intercept.ActiveFlag, cfg Config) *Machine {
	if sink == nil {
		sink = nopSink{}
	}
	if cfg.Columns < 1 {
		cfg.Columns = 5
	}
	return &Machine{
		svc:     svc,
		source:  source,
		actions: actions,
		sink:    sink,
		flag:    flag,
		cfg:     cfg,
		stop:    make(chan struct{}),
	}
}

// State reports the current activation state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastCommitted returns the display name of the most recently committed
// candidate, or "" before the first commit.
func (m *Machine) LastCommitted() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Switches returns the number of commits this session.
func (m *Machine) Switches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.switches
}

// SetEnabled pauses or resumes the switcher without tearing down the
// interception service. While disabled, primary-hotkey presses are
// consumed as no-ops.
func (m *Machine) SetEnabled(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disabled = !on
}

func (m *Machine) enabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.disabled
}

// Run processes interception events until Stop. All grid and state
// mutation happens here; events other than the primary hotkey are ignored
// while idle.
func (m *Machine) Run() {
	for {
		select {
		case <-m.stop:
			return
		case <-m.svc.PrimaryHotkey():
			m.onPrimary()
		case k := <-m.svc.SecondaryKey():
			m.onKey(k)
		case <-m.svc.ModifierReleased():
			if m.active() {
				m.commit()
			}
		case <-m.svc.SecondaryModifierPressed():
			if m.active() {
				m.g.Previous()
				m.sink.CursorMoved(m.g.Cursor())
			}
		case p := <-m.svc.PointerDown():
			m.onPointer(p)
		}
	}
}

// Stop terminates Run. Idempotent.
func (m *Machine) Stop() {
	m.once.Do(func() { close(m.stop) })
}

func (m *Machine) active() bool {
	return m.State() == Active
}

func (m *Machine) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

func (m *Machine) onPrimary() {
	if !m.enabled() {
		m.flag.Set(false)
		return
	}
	if m.active() {
		// Repeat press cycles the cursor; no re-enumeration.
		m.g.Next()
		m.sink.CursorMoved(m.g.Cursor())
		return
	}

	cands := m.source.Candidates()
	if len(cands) == 0 {
		// No-op activation: the interception side already raised the
		// flag, take it back down.
		m.flag.Set(false)
		log.Info("activation skipped: no candidates")
		return
	}

	var pointer grid.Point
	if m.cfg.Cursor != nil {
		if p, err := m.cfg.Cursor(); err == nil {
			pointer = grid.Point{X: p.X, Y: p.Y}
		}
	}
	m.g = grid.Build(cands, m.cfg.Columns, m.cfg.Metrics, pointer)

	// The front of the rank order is the app the user is already in;
	// starting on the second makes press+release a switch-back gesture.
	idx := 0
	if len(cands) > 1 {
		idx = 1
	}
	m.g.SetCursorIndex(idx)

	if err := m.svc.RegisterActiveHotkeys(); err != nil {
		log.Warnf("active hotkey tier unavailable: %v", err)
	}
	m.setState(Active)
	log.Shown(len(cands))
	m.sink.OverlayShown(m.g.Rows(), m.g.Cursor())
}

func (m *Machine) onKey(k intercept.Key) {
	if !m.active() {
		return
	}
	switch k {
	case intercept.KeyDismiss:
		m.cancel()
	case intercept.KeyAccept:
		m.commit()
	case intercept.KeyLeft:
		m.g.Previous()
		m.sink.CursorMoved(m.g.Cursor())
	case intercept.KeyRight:
		m.g.Next()
		m.sink.CursorMoved(m.g.Cursor())
	case intercept.KeyUp:
		m.g.Up()
		m.sink.CursorMoved(m.g.Cursor())
	case intercept.KeyDown:
		m.g.Down()
		m.sink.CursorMoved(m.g.Cursor())
	case intercept.KeyHide:
		m.removeCurrent(m.actions.Hide, "hide")
	case intercept.KeyQuit:
		m.removeCurrent(m.actions.Terminate, "terminate")
	}
}

func (m *Machine) onPointer(p intercept.Point) {
	if !m.active() {
		return
	}
	gp := grid.Point{X: p.X, Y: p.Y}
	if c, ok := m.g.SelectAt(gp); ok {
		m.g.SetCursor(c)
		m.commit()
		return
	}
	if m.g.Contains(gp) {
		m.commit()
		return
	}
	m.cancel()
}

func (m *Machine) removeCurrent(action func(int) error, what string) {
	app := m.g.Current()
	remain := m.g.Remove()
	if err := action(app.PID); err != nil {
		log.Warnf("%s pid %d failed: %v", what, app.PID, err)
	}
	if !remain {
		m.toIdle()
		return
	}
	m.sink.GridChanged(m.g.Rows(), m.g.Cursor())
}

func (m *Machine) commit() {
	app := m.g.Current()
	if err := m.actions.Activate(app.PID); err != nil {
		log.Warnf("activate pid %d failed: %v", app.PID, err)
	}
	m.mu.Lock()
	m.last = app.Name
	m.switches++
	m.mu.Unlock()
	log.Committed(app.PID, app.Name)
	m.sink.Committed(app)
	m.toIdle()
}

func (m *Machine) cancel() {
	log.Info("activation cancelled")
	m.toIdle()
}

func (m *Machine) toIdle() {
	m.svc.UnregisterActiveHotkeys()
	m.flag.Set(false)
	m.g = nil
	m.setState(Idle)
	m.sink.OverlayHidden()
}
