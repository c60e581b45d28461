// Package enumerate produces the ranked list of switchable applications.
//
// A process qualifies when it owns at least one normal-layer on-screen
// window of real size, or when its dock item carries a badge. Candidates
// are ordered by recency of activation; ties keep discovery order. Every
// underlying query degrades to an empty partial result on failure, so
// enumeration itself never fails.
package enumerate

import (
	"math"
	"sort"

	"switcher/log"
)

const (
	// Window stacking layers accepted as user-switchable. Layer 0 is the
	// normal application layer; floating utility windows sit a step or two
	// above it, anything higher is system chrome.
	layerNormal        = 0
	layerMaxSwitchable = 2

	// Windows smaller than this are decorative surfaces, not app windows.
	minWindowWidth  = 64
	minWindowHeight = 64
)

type Enumerator struct {
	procs ProcessRegistry
	wins  WindowRegistry
	dock  DockBadges
	rec   *Recency
	self  int
}

// New builds an enumerator over the given OS boundaries. self is the
// switcher's own pid, excluded from results.
func New(procs ProcessRegistry, wins WindowRegistry, dock DockBadges, rec *Recency, self int) *Enumerator {
	return &Enumerator{procs: procs, wins: wins, dock: dock, rec: rec, self: self}
}

// Candidates returns the ranked applications for one activation.
func (e *Enumerator) Candidates() []CandidateApp {
	visible := e.visibleSet()
	badges := e.badgeSet()

	procs, err := e.procs.Processes()
	if err != nil {
		log.Warnf("process query failed: %v", err)
		return nil
	}

	var cands []CandidateApp
	for _, p := range procs {
		if p.PID == e.self || p.Policy != PolicyRegular || p.Hidden {
			continue
		}
		badge := FormatBadge(badges[p.BundleID])
		if !visible[p.PID] && badge == "" {
			continue
		}
		cands = append(cands, CandidateApp{
			PID:   p.PID,
			Name:  p.Name,
			Icon:  p.Icon,
			Badge: badge,
		})
	}

	// Stable sort keeps discovery order for equal ranks, including the
	// never-activated tail.
	sort.SliceStable(cands, func(i, j int) bool {
		return e.rank(cands[i].PID) < e.rank(cands[j].PID)
	})
	return cands
}

func (e *Enumerator) visibleSet() map[int]bool {
	wins, err := e.wins.Windows()
	if err != nil {
		log.Warnf("window query failed: %v", err)
		return nil
	}
	visible := make(map[int]bool)
	for _, w := range wins {
		if !w.OnScreen {
			continue
		}
		if w.Layer < layerNormal || w.Layer > layerMaxSwitchable {
			continue
		}
		if w.Bounds.Width < minWindowWidth || w.Bounds.Height < minWindowHeight {
			continue
		}
		visible[w.OwnerPID] = true
	}
	return visible
}

func (e *Enumerator) badgeSet() map[string]string {
	badges, err := e.dock.Badges()
	if err != nil {
		log.Warnf("badge query failed: %v", err)
		return nil
	}
	return badges
}

func (e *Enumerator) rank(pid int) float64 {
	if r, ok := e.rec.Rank(pid); ok {
		return float64(r)
	}
	return math.Inf(1)
}
