package enumerate

import (
	"errors"
	"testing"
)

func regularProc(pid int, name string) ProcessInfo {
	return ProcessInfo{PID: pid, Name: name, BundleID: "app." + name, Policy: PolicyRegular}
}

func normalWindow(pid int) WindowInfo {
	return WindowInfo{OwnerPID: pid, Layer: 0, OnScreen: true, Bounds: Rect{Width: 800, Height: 600}}
}

func newTestEnum(procs []ProcessInfo, wins []WindowInfo, badges map[string]string, rec *Recency) *Enumerator {
	if rec == nil {
		rec = NewRecency()
	}
	return New(
		&FakeProcesses{List: procs},
		&FakeWindows{List: wins},
		&FakeBadges{Map: badges},
		rec,
		1, // self pid
	)
}

func names(cands []CandidateApp) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.Name
	}
	return out
}

func TestCandidatesRankedByRecency(t *testing.T) {
	rec := NewRecency()
	rec.Touch(100)
	rec.Touch(300) // most recent

	e := newTestEnum(
		[]ProcessInfo{regularProc(100, "editor"), regularProc(200, "browser"), regularProc(300, "term")},
		[]WindowInfo{normalWindow(100), normalWindow(200), normalWindow(300)},
		nil, rec,
	)

	got := names(e.Candidates())
	want := []string{"term", "editor", "browser"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestNeverActivatedKeepDiscoveryOrder(t *testing.T) {
	e := newTestEnum(
		[]ProcessInfo{regularProc(100, "a"), regularProc(200, "b"), regularProc(300, "c")},
		[]WindowInfo{normalWindow(100), normalWindow(200), normalWindow(300)},
		nil, nil,
	)

	got := names(e.Candidates())
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestBadgeOnlyCandidate(t *testing.T) {
	// chat has no visible window but carries a badge; it still qualifies.
	e := newTestEnum(
		[]ProcessInfo{regularProc(100, "editor"), regularProc(200, "chat")},
		[]WindowInfo{normalWindow(100)},
		map[string]string{"app.chat": "3"},
		nil,
	)

	cands := e.Candidates()
	if len(cands) != 2 {
		t.Fatalf("expected 2 candidates, got %v", names(cands))
	}
	var chat *CandidateApp
	for i := range cands {
		if cands[i].Name == "chat" {
			chat = &cands[i]
		}
	}
	if chat == nil {
		t.Fatalf("badge-only app missing: %v", names(cands))
	}
	if chat.Badge != "3" {
		t.Fatalf("expected badge 3, got %q", chat.Badge)
	}
}

func TestWindowFiltering(t *testing.T) {
	wins := []WindowInfo{
		{OwnerPID: 100, Layer: 0, OnScreen: false, Bounds: Rect{Width: 800, Height: 600}},
		{OwnerPID: 200, Layer: 5, OnScreen: true, Bounds: Rect{Width: 800, Height: 600}},
		{OwnerPID: 300, Layer: 0, OnScreen: true, Bounds: Rect{Width: 10, Height: 10}},
		{OwnerPID: 400, Layer: 2, OnScreen: true, Bounds: Rect{Width: 100, Height: 100}},
	}
	procs := []ProcessInfo{
		regularProc(100, "offscreen"),
		regularProc(200, "chrome"),
		regularProc(300, "tiny"),
		regularProc(400, "floating"),
	}
	e := newTestEnum(procs, wins, nil, nil)

	got := names(e.Candidates())
	if len(got) != 1 || got[0] != "floating" {
		t.Fatalf("expected only the layer-2 real window, got %v", got)
	}
}

func TestProcessFiltering(t *testing.T) {
	hidden := regularProc(200, "hidden")
	hidden.Hidden = true
	accessory := ProcessInfo{PID: 300, Name: "helper", BundleID: "app.helper", Policy: PolicyAccessory}
	self := regularProc(1, "switcher")

	e := newTestEnum(
		[]ProcessInfo{regularProc(100, "editor"), hidden, accessory, self},
		[]WindowInfo{normalWindow(100), normalWindow(200), normalWindow(300), normalWindow(1)},
		nil, nil,
	)

	got := names(e.Candidates())
	if len(got) != 1 || got[0] != "editor" {
		t.Fatalf("expected only editor, got %v", got)
	}
}

func TestQueryFailuresDegrade(t *testing.T) {
	rec := NewRecency()
	e := New(
		&FakeProcesses{List: []ProcessInfo{regularProc(100, "editor")}},
		&FakeWindows{Err: errors.New("compositor gone")},
		&FakeBadges{Err: errors.New("no dock")},
		rec, 1,
	)
	// No windows and no badges mean no candidates, but no panic either.
	if got := e.Candidates(); len(got) != 0 {
		t.Fatalf("expected no candidates, got %v", names(got))
	}

	e = New(
		&FakeProcesses{Err: errors.New("ps failed")},
		&FakeWindows{List: []WindowInfo{normalWindow(100)}},
		&FakeBadges{},
		rec, 1,
	)
	if got := e.Candidates(); got != nil {
		t.Fatalf("expected nil on process query failure, got %v", names(got))
	}
}

func TestFormatBadge(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"", ""},
		{"7", "7"},
		{"99", "99"},
		{"100", "99+"},
		{"1500", "99+"},
		{"new", "new"},
	}
	for _, c := range cases {
		if got := FormatBadge(c.in); got != c.want {
			t.Errorf("FormatBadge(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
