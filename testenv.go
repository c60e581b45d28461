package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"switcher/enumerate"
	"switcher/grid"
	"switcher/intercept"
	"switcher/log"
	"switcher/machine"
)

// printSink writes machine events to stdout so a driving script can
// assert on them.
type printSink struct{}

func (printSink) OverlayShown(rows [][]enumerate.CandidateApp, cur grid.Cursor) {
	fmt.Printf("SHOWN %s cursor=%d,%d\n", flattenNames(rows), cur.Row, cur.Col)
}
func (printSink) CursorMoved(cur grid.Cursor) {
	fmt.Printf("CURSOR %d,%d\n", cur.Row, cur.Col)
}
func (printSink) GridChanged(rows [][]enumerate.CandidateApp, cur grid.Cursor) {
	fmt.Printf("GRID %s cursor=%d,%d\n", flattenNames(rows), cur.Row, cur.Col)
}
func (printSink) OverlayHidden() {
	fmt.Println("HIDDEN")
}
func (printSink) Committed(app enumerate.CandidateApp) {
	fmt.Printf("COMMITTED %d %s\n", app.PID, app.Name)
}

func flattenNames(rows [][]enumerate.CandidateApp) string {
	var parts []string
	for _, row := range rows {
		var names []string
		for _, app := range row {
			names = append(names, app.Name)
		}
		parts = append(parts, strings.Join(names, ","))
	}
	return strings.Join(parts, "|")
}

// printActions logs activation requests instead of touching any window
// system.
type printActions struct{}

func (printActions) Activate(pid int) error {
	fmt.Printf("ACTIVATE %d\n", pid)
	return nil
}
func (printActions) Hide(pid int) error {
	fmt.Printf("HIDE %d\n", pid)
	return nil
}
func (printActions) Terminate(pid int) error {
	fmt.Printf("TERMINATE %d\n", pid)
	return nil
}

// testDriver interprets one stdin command per line against the fakes.
type testDriver struct {
	procs  *enumerate.FakeProcesses
	wins   *enumerate.FakeWindows
	badges *enumerate.FakeBadges
	events *enumerate.FakeEvents
	svc    *intercept.FakeService
	m      *machine.Machine
}

// exec runs one driver line. Malformed lines (unknown command, missing
// arguments) are ignored. Returns false for QUIT.
func (d *testDriver) exec(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return true
	}
	fields := strings.Fields(line)
	switch fields[0] {
	case "APPS":
		// APPS pid:name[:badge] ...
		d.procs.List = d.procs.List[:0]
		d.wins.List = d.wins.List[:0]
		d.badges.Map = map[string]string{}
		for _, entry := range fields[1:] {
			parts := strings.SplitN(entry, ":", 3)
			if len(parts) < 2 {
				continue
			}
			pid, _ := strconv.Atoi(parts[0])
			bundle := "app." + parts[1]
			d.procs.List = append(d.procs.List, enumerate.ProcessInfo{
				PID: pid, Name: parts[1], BundleID: bundle,
				Policy: enumerate.PolicyRegular,
			})
			d.wins.List = append(d.wins.List, enumerate.WindowInfo{
				OwnerPID: pid, OnScreen: true,
				Bounds: enumerate.Rect{Width: 800, Height: 600},
			})
			if len(parts) == 3 {
				d.badges.Map[bundle] = parts[2]
			}
		}
	case "ACTIVATED":
		if len(fields) < 2 {
			return true
		}
		if pid, err := strconv.Atoi(fields[1]); err == nil {
			d.events.SimActivated(pid)
		}
	case "TERMINATED":
		if len(fields) < 2 {
			return true
		}
		if pid, err := strconv.Atoi(fields[1]); err == nil {
			d.events.SimTerminated(pid)
		}
	case "PRIMARY":
		d.svc.SimPrimary()
	case "RELEASE":
		d.svc.SimModifierReleased()
	case "SHIFTMOD":
		d.svc.SimSecondaryModifier()
	case "KEY":
		if len(fields) < 2 {
			return true
		}
		if k, ok := keyNames[fields[1]]; ok {
			d.svc.SimKey(k)
		}
	case "POINTER":
		if len(fields) < 3 {
			return true
		}
		x, _ := strconv.Atoi(fields[1])
		y, _ := strconv.Atoi(fields[2])
		d.svc.SimPointerDown(intercept.Point{X: x, Y: y})
	case "STATE":
		if d.m.State() == machine.Active {
			fmt.Println("STATE active")
		} else {
			fmt.Println("STATE idle")
		}
	case "SLEEP":
		if len(fields) < 2 {
			return true
		}
		if ms, err := strconv.Atoi(fields[1]); err == nil {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		}
	case "QUIT":
		return false
	}
	return true
}

func runTestMode(columns int) {
	defer log.Close()

	var flag intercept.ActiveFlag
	svc := intercept.NewFake(&flag)
	svc.Start()

	procs := &enumerate.FakeProcesses{}
	wins := &enumerate.FakeWindows{}
	badges := &enumerate.FakeBadges{}
	events := enumerate.NewFakeEvents()

	rec := enumerate.NewRecency()
	if err := rec.Observe(events); err != nil {
		fmt.Fprintf(os.Stderr, "Error observing events: %v\n", err)
		os.Exit(1)
	}

	enum := enumerate.New(procs, wins, badges, rec, 0)

	m := machine.New(svc, enum, printActions{}, printSink{}, &flag, machine.Config{
		Columns: columns,
		Metrics: grid.Metrics{CellWidth: 100, CellHeight: 100},
	})

	log.SessionStart("test", columns)

	d := &testDriver{procs: procs, wins: wins, badges: badges, events: events, svc: svc, m: m}

	// Stdin driver in background -- simulates input events, handles SLEEP/QUIT
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if !d.exec(scanner.Text()) {
				break
			}
		}
		log.SessionEnd(m.Switches())
		os.Exit(0)
	}()

	m.Run()
}

var keyNames = map[string]intercept.Key{
	"DISMISS": intercept.KeyDismiss,
	"ACCEPT":  intercept.KeyAccept,
	"LEFT":    intercept.KeyLeft,
	"RIGHT":   intercept.KeyRight,
	"UP":      intercept.KeyUp,
	"DOWN":    intercept.KeyDown,
	"HIDE":    intercept.KeyHide,
	"QUIT":    intercept.KeyQuit,
}
