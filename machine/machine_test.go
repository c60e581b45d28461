package machine

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"switcher/enumerate"
	"switcher/grid"
	"switcher/intercept"
)

type fakeSource struct {
	cands []enumerate.CandidateApp
}

func (s *fakeSource) Candidates() []enumerate.CandidateApp {
	out := make([]enumerate.CandidateApp, len(s.cands))
	copy(out, s.cands)
	return out
}

type fakeActions struct {
	activated chan int
	hidden    chan int
	killed    chan int
	err       error
}

func newFakeActions() *fakeActions {
	return &fakeActions{
		activated: make(chan int, 8),
		hidden:    make(chan int, 8),
		killed:    make(chan int, 8),
	}
}

func (a *fakeActions) Activate(pid int) error {
	a.activated <- pid
	return a.err
}
func (a *fakeActions) Hide(pid int) error {
	a.hidden <- pid
	return a.err
}
func (a *fakeActions) Terminate(pid int) error {
	a.killed <- pid
	return a.err
}

// recordSink turns sink callbacks into channel events tests can wait on.
type recordSink struct {
	shown     chan grid.Cursor
	moved     chan grid.Cursor
	changed   chan grid.Cursor
	hidden    chan struct{}
	committed chan enumerate.CandidateApp
}

func newRecordSink() *recordSink {
	return &recordSink{
		shown:     make(chan grid.Cursor, 8),
		moved:     make(chan grid.Cursor, 8),
		changed:   make(chan grid.Cursor, 8),
		hidden:    make(chan struct{}, 8),
		committed: make(chan enumerate.CandidateApp, 8),
	}
}

func (s *recordSink) OverlayShown(rows [][]enumerate.CandidateApp, cur grid.Cursor) {
	s.shown <- cur
}
func (s *recordSink) CursorMoved(cur grid.Cursor) { s.moved <- cur }
func (s *recordSink) GridChanged(rows [][]enumerate.CandidateApp, cur grid.Cursor) {
	s.changed <- cur
}
func (s *recordSink) OverlayHidden()                      { s.hidden <- struct{}{} }
func (s *recordSink) Committed(app enumerate.CandidateApp) { s.committed <- app }

type harness struct {
	m      *Machine
	svc    *intercept.FakeService
	flag   *intercept.ActiveFlag
	src    *fakeSource
	acts   *fakeActions
	sink   *recordSink
}

func newHarness(t *testing.T, n int) *harness {
	t.Helper()
	var cands []enumerate.CandidateApp
	for i := 0; i < n; i++ {
		cands = append(cands, enumerate.CandidateApp{PID: 100 + i, Name: fmt.Sprintf("app%d", i)})
	}
	var flag intercept.ActiveFlag
	svc := intercept.NewFake(&flag)
	src := &fakeSource{cands: cands}
	acts := newFakeActions()
	sink := newRecordSink()

	m := New(svc, src, acts, sink, &flag, Config{
		Columns: 3,
		Metrics: grid.Metrics{CellWidth: 100, CellHeight: 100},
	})
	go m.Run()
	t.Cleanup(m.Stop)

	return &harness{m: m, svc: svc, flag: &flag, src: src, acts: acts, sink: sink}
}

func waitCursor(t *testing.T, ch chan grid.Cursor, what string) grid.Cursor {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for %s", what)
		return grid.Cursor{}
	}
}

func waitStruct(t *testing.T, ch chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for %s", what)
	}
}

func waitPID(t *testing.T, ch chan int, what string) int {
	t.Helper()
	select {
	case pid := <-ch:
		return pid
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for %s", what)
		return 0
	}
}

func TestActivationStartsOnSecondCandidate(t *testing.T) {
	h := newHarness(t, 3)
	h.svc.SimPrimary()

	cur := waitCursor(t, h.sink.shown, "overlay shown")
	if cur != (grid.Cursor{Row: 0, Col: 1}) {
		t.Fatalf("expected initial cursor (0,1), got %v", cur)
	}
	if h.m.State() != Active {
		t.Fatal("machine should be active")
	}
	if !h.svc.ActiveHotkeysRegistered() {
		t.Fatal("active hotkey tier should be registered")
	}
}

func TestSingleCandidateStartsOnFirst(t *testing.T) {
	h := newHarness(t, 1)
	h.svc.SimPrimary()

	cur := waitCursor(t, h.sink.shown, "overlay shown")
	if cur != (grid.Cursor{Row: 0, Col: 0}) {
		t.Fatalf("expected cursor (0,0), got %v", cur)
	}
}

func TestNoCandidatesResetsFlag(t *testing.T) {
	h := newHarness(t, 0)
	h.svc.SimPrimary()

	deadline := time.After(2 * time.Second)
	for h.flag.Get() {
		select {
		case <-deadline:
			t.Fatal("flag never reset after empty activation")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if h.m.State() != Idle {
		t.Fatal("machine should stay idle")
	}
	if h.svc.ActiveHotkeysRegistered() {
		t.Fatal("active tier must not register without an overlay")
	}
}

func TestRepeatPrimaryAdvancesCursor(t *testing.T) {
	h := newHarness(t, 3)
	h.svc.SimPrimary()
	waitCursor(t, h.sink.shown, "overlay shown")

	h.svc.SimPrimary()
	cur := waitCursor(t, h.sink.moved, "cursor move")
	if cur != (grid.Cursor{Row: 0, Col: 2}) {
		t.Fatalf("expected (0,2), got %v", cur)
	}

	// Wraps from the last cell back to the front.
	h.svc.SimPrimary()
	cur = waitCursor(t, h.sink.moved, "cursor move")
	if cur != (grid.Cursor{Row: 0, Col: 0}) {
		t.Fatalf("expected wrap to (0,0), got %v", cur)
	}
}

func TestSecondaryModifierMovesBackward(t *testing.T) {
	h := newHarness(t, 3)
	h.svc.SimPrimary()
	waitCursor(t, h.sink.shown, "overlay shown")

	h.svc.SimSecondaryModifier()
	cur := waitCursor(t, h.sink.moved, "cursor move")
	if cur != (grid.Cursor{Row: 0, Col: 0}) {
		t.Fatalf("expected (0,0), got %v", cur)
	}
}

func TestModifierReleaseCommits(t *testing.T) {
	h := newHarness(t, 3)
	h.svc.SimPrimary()
	waitCursor(t, h.sink.shown, "overlay shown")

	h.svc.SimModifierReleased()
	if pid := waitPID(t, h.acts.activated, "activation"); pid != 101 {
		t.Fatalf("expected pid 101 activated, got %d", pid)
	}
	waitStruct(t, h.sink.hidden, "overlay hidden")

	if h.m.State() != Idle {
		t.Fatal("machine should return to idle")
	}
	if h.flag.Get() {
		t.Fatal("flag should be down after commit")
	}
	if h.svc.ActiveHotkeysRegistered() {
		t.Fatal("active tier should be unregistered after commit")
	}
	if h.m.LastCommitted() != "app1" {
		t.Fatalf("LastCommitted = %q", h.m.LastCommitted())
	}
	if h.m.Switches() != 1 {
		t.Fatalf("Switches = %d", h.m.Switches())
	}
}

func TestDismissCancelsWithoutActivation(t *testing.T) {
	h := newHarness(t, 3)
	h.svc.SimPrimary()
	waitCursor(t, h.sink.shown, "overlay shown")

	h.svc.SimKey(intercept.KeyDismiss)
	waitStruct(t, h.sink.hidden, "overlay hidden")

	select {
	case pid := <-h.acts.activated:
		t.Fatalf("dismiss activated pid %d", pid)
	default:
	}
	if h.m.State() != Idle {
		t.Fatal("machine should be idle after dismiss")
	}
	if h.m.Switches() != 0 {
		t.Fatal("dismiss must not count as a switch")
	}
}

func TestAcceptKeyCommits(t *testing.T) {
	h := newHarness(t, 3)
	h.svc.SimPrimary()
	waitCursor(t, h.sink.shown, "overlay shown")

	h.svc.SimKey(intercept.KeyRight)
	waitCursor(t, h.sink.moved, "cursor move")

	h.svc.SimKey(intercept.KeyAccept)
	if pid := waitPID(t, h.acts.activated, "activation"); pid != 102 {
		t.Fatalf("expected pid 102, got %d", pid)
	}
}

func TestArrowNavigation(t *testing.T) {
	h := newHarness(t, 5) // rows: 3 + 2
	h.svc.SimPrimary()
	waitCursor(t, h.sink.shown, "overlay shown")

	h.svc.SimKey(intercept.KeyDown)
	cur := waitCursor(t, h.sink.moved, "down")
	if cur != (grid.Cursor{Row: 1, Col: 1}) {
		t.Fatalf("expected (1,1), got %v", cur)
	}
	h.svc.SimKey(intercept.KeyUp)
	cur = waitCursor(t, h.sink.moved, "up")
	if cur != (grid.Cursor{Row: 0, Col: 1}) {
		t.Fatalf("expected (0,1), got %v", cur)
	}
	h.svc.SimKey(intercept.KeyLeft)
	cur = waitCursor(t, h.sink.moved, "left")
	if cur != (grid.Cursor{Row: 0, Col: 0}) {
		t.Fatalf("expected (0,0), got %v", cur)
	}
}

func TestHideRemovesCandidate(t *testing.T) {
	h := newHarness(t, 3)
	h.svc.SimPrimary()
	waitCursor(t, h.sink.shown, "overlay shown")

	h.svc.SimKey(intercept.KeyHide)
	if pid := waitPID(t, h.acts.hidden, "hide"); pid != 101 {
		t.Fatalf("expected pid 101 hidden, got %d", pid)
	}
	cur := waitCursor(t, h.sink.changed, "grid change")
	if cur != (grid.Cursor{Row: 0, Col: 1}) {
		t.Fatalf("cursor should stay at (0,1) over the next app, got %v", cur)
	}
	if h.m.State() != Active {
		t.Fatal("overlay should stay up while candidates remain")
	}
}

func TestQuitLastCandidateClosesOverlay(t *testing.T) {
	h := newHarness(t, 1)
	h.svc.SimPrimary()
	waitCursor(t, h.sink.shown, "overlay shown")

	h.svc.SimKey(intercept.KeyQuit)
	if pid := waitPID(t, h.acts.killed, "terminate"); pid != 100 {
		t.Fatalf("expected pid 100 terminated, got %d", pid)
	}
	waitStruct(t, h.sink.hidden, "overlay hidden")
	if h.m.State() != Idle {
		t.Fatal("emptied overlay should go idle")
	}
}

func TestPointerInsideCommits(t *testing.T) {
	h := newHarness(t, 3)
	h.svc.SimPrimary()
	waitCursor(t, h.sink.shown, "overlay shown")

	// Cell (0,2) at 100px cells; pointer starts at (0,0) so the threshold
	// is already exceeded.
	h.svc.SimPointerDown(intercept.Point{X: 250, Y: 50})
	if pid := waitPID(t, h.acts.activated, "activation"); pid != 102 {
		t.Fatalf("expected pid 102, got %d", pid)
	}
}

func TestPointerOutsideCancels(t *testing.T) {
	h := newHarness(t, 3)
	h.svc.SimPrimary()
	waitCursor(t, h.sink.shown, "overlay shown")

	h.svc.SimPointerDown(intercept.Point{X: 5000, Y: 5000})
	waitStruct(t, h.sink.hidden, "overlay hidden")

	select {
	case pid := <-h.acts.activated:
		t.Fatalf("outside click activated pid %d", pid)
	default:
	}
	if h.m.State() != Idle {
		t.Fatal("machine should be idle after outside click")
	}
}

func TestIdleIgnoresActiveTierEvents(t *testing.T) {
	h := newHarness(t, 3)

	h.svc.SimKey(intercept.KeyAccept)
	h.svc.SimModifierReleased()
	h.svc.SimPointerDown(intercept.Point{X: 50, Y: 50})

	select {
	case pid := <-h.acts.activated:
		t.Fatalf("idle machine activated pid %d", pid)
	case <-time.After(50 * time.Millisecond):
	}
	if h.m.State() != Idle {
		t.Fatal("machine should stay idle")
	}
}

func TestDisabledSkipsActivation(t *testing.T) {
	h := newHarness(t, 3)
	h.m.SetEnabled(false)

	h.svc.SimPrimary()
	deadline := time.After(2 * time.Second)
	for h.flag.Get() {
		select {
		case <-deadline:
			t.Fatal("flag never reset while disabled")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if h.m.State() != Idle {
		t.Fatal("disabled machine must not activate")
	}

	h.m.SetEnabled(true)
	h.svc.SimPrimary()
	waitCursor(t, h.sink.shown, "overlay shown after re-enable")
}

func TestActivateErrorStillCompletes(t *testing.T) {
	h := newHarness(t, 2)
	h.acts.err = errors.New("window gone")

	h.svc.SimPrimary()
	waitCursor(t, h.sink.shown, "overlay shown")
	h.svc.SimModifierReleased()

	waitPID(t, h.acts.activated, "activation attempt")
	waitStruct(t, h.sink.hidden, "overlay hidden")
	if h.m.State() != Idle {
		t.Fatal("failed activation should still end the session")
	}
}

func TestFreshEnumerationPerActivation(t *testing.T) {
	h := newHarness(t, 2)

	h.svc.SimPrimary()
	waitCursor(t, h.sink.shown, "first overlay")
	h.svc.SimKey(intercept.KeyDismiss)
	waitStruct(t, h.sink.hidden, "overlay hidden")

	// The candidate set changes between activations.
	h.src.cands = []enumerate.CandidateApp{{PID: 900, Name: "newapp"}}
	h.svc.SimPrimary()
	waitCursor(t, h.sink.shown, "second overlay")
	h.svc.SimModifierReleased()
	if pid := waitPID(t, h.acts.activated, "activation"); pid != 900 {
		t.Fatalf("expected fresh candidate pid 900, got %d", pid)
	}
}
