// Package grid arranges ranked candidates into rows and implements cursor
// navigation, removal, and pointer hit-testing for the switcher overlay.
package grid

import (
	"time"

	"switcher/enumerate"
)

// Point is a pointer location in screen coordinates.
type Point struct {
	X, Y int
}

// Cursor addresses one cell of the ragged grid.
type Cursor struct {
	Row, Col int
}

// Metrics describes the overlay's cell geometry in screen coordinates,
// used only for pointer hit-testing.
type Metrics struct {
	OriginX, OriginY      int
	CellWidth, CellHeight int
}

const (
	// Pointer must travel this far from its build-time position before
	// hover selection applies. Suppresses a cursor that happened to rest
	// over the overlay when it appeared.
	pointerThreshold = 8

	// Hover stays insensitive this long after a removal reshuffles cells.
	removeQuiet = 100 * time.Millisecond
)

// Grid holds the ragged candidate layout plus the selection cursor.
// Invariant while in use: non-empty, and the cursor indexes a valid cell.
type Grid struct {
	rows    [][]enumerate.CandidateApp
	cur     Cursor
	metrics Metrics

	buildPointer Point
	pointerMoved bool
	quietUntil   time.Time

	now func() time.Time
}

// Build packs candidates into rows of at most itemsPerRow, last row ragged.
// pointer is the pointer position at build time. Returns nil for an empty
// candidate list.
func Build(cands []enumerate.CandidateApp, itemsPerRow int, m Metrics, pointer Point) *Grid {
	if len(cands) == 0 {
		return nil
	}
	if itemsPerRow < 1 {
		itemsPerRow = 1
	}
	g := &Grid{
		metrics:      m,
		buildPointer: pointer,
		now:          time.Now,
	}
	for start := 0; start < len(cands); start += itemsPerRow {
		end := start + itemsPerRow
		if end > len(cands) {
			end = len(cands)
		}
		row := make([]enumerate.CandidateApp, end-start)
		copy(row, cands[start:end])
		g.rows = append(g.rows, row)
	}
	return g
}

func (g *Grid) Len() int {
	n := 0
	for _, row := range g.rows {
		n += len(row)
	}
	return n
}

// Rows exposes the layout for rendering. Callers must not mutate it.
func (g *Grid) Rows() [][]enumerate.CandidateApp { return g.rows }

func (g *Grid) Cursor() Cursor { return g.cur }

// Current returns the candidate under the cursor.
func (g *Grid) Current() enumerate.CandidateApp {
	return g.rows[g.cur.Row][g.cur.Col]
}

// SetCursorIndex positions the cursor at the i-th candidate in rank order,
// clamping to the last cell.
func (g *Grid) SetCursorIndex(i int) {
	if i < 0 {
		i = 0
	}
	for r, row := range g.rows {
		if i < len(row) {
			g.cur = Cursor{Row: r, Col: i}
			return
		}
		i -= len(row)
	}
	last := len(g.rows) - 1
	g.cur = Cursor{Row: last, Col: len(g.rows[last]) - 1}
}

// SetCursor moves the cursor to c, which must index a valid cell.
func (g *Grid) SetCursor(c Cursor) { g.cur = c }

// Next advances one column, flowing to the next row and wrapping from the
// last cell to (0,0).
func (g *Grid) Next() {
	g.cur.Col++
	if g.cur.Col < len(g.rows[g.cur.Row]) {
		return
	}
	g.cur.Col = 0
	g.cur.Row++
	if g.cur.Row >= len(g.rows) {
		g.cur.Row = 0
	}
}

// Previous is the mirror of Next, wrapping from (0,0) to the last cell of
// the last row.
func (g *Grid) Previous() {
	g.cur.Col--
	if g.cur.Col >= 0 {
		return
	}
	g.cur.Row--
	if g.cur.Row < 0 {
		g.cur.Row = len(g.rows) - 1
	}
	g.cur.Col = len(g.rows[g.cur.Row]) - 1
}

// Up moves one row toward the top, wrapping to the bottom and clamping the
// column to the target row's width.
func (g *Grid) Up() { g.moveRow(-1) }

// Down moves one row toward the bottom, wrapping to the top.
func (g *Grid) Down() { g.moveRow(1) }

func (g *Grid) moveRow(delta int) {
	if len(g.rows) < 2 {
		return
	}
	g.cur.Row += delta
	if g.cur.Row < 0 {
		g.cur.Row = len(g.rows) - 1
	}
	if g.cur.Row >= len(g.rows) {
		g.cur.Row = 0
	}
	if max := len(g.rows[g.cur.Row]) - 1; g.cur.Col > max {
		g.cur.Col = max
	}
}

// Remove deletes the candidate under the cursor, dropping its row when it
// empties, and re-clamps the cursor. Reports whether any candidates remain.
func (g *Grid) Remove() bool {
	row := g.rows[g.cur.Row]
	g.rows[g.cur.Row] = append(row[:g.cur.Col], row[g.cur.Col+1:]...)
	if len(g.rows[g.cur.Row]) == 0 {
		g.rows = append(g.rows[:g.cur.Row], g.rows[g.cur.Row+1:]...)
	}
	if len(g.rows) == 0 {
		return false
	}
	if g.cur.Row >= len(g.rows) {
		g.cur.Row = len(g.rows) - 1
	}
	if max := len(g.rows[g.cur.Row]) - 1; g.cur.Col > max {
		g.cur.Col = max
	}
	g.quietUntil = g.now().Add(removeQuiet)
	return true
}

// SelectAt maps a pointer location to the cell under it. Selection stays
// inert until the pointer has moved past the build-time threshold, and for
// a short quiet window after a removal.
func (g *Grid) SelectAt(p Point) (Cursor, bool) {
	if !g.pointerMoved {
		dx := p.X - g.buildPointer.X
		dy := p.Y - g.buildPointer.Y
		if dx*dx+dy*dy <= pointerThreshold*pointerThreshold {
			return Cursor{}, false
		}
		g.pointerMoved = true
	}
	if g.now().Before(g.quietUntil) {
		return Cursor{}, false
	}
	for r, row := range g.rows {
		for c := range row {
			if g.cellRect(r, c).contains(p) {
				return Cursor{Row: r, Col: c}, true
			}
		}
	}
	return Cursor{}, false
}

// Contains reports whether p falls inside the grid's overall bounds.
func (g *Grid) Contains(p Point) bool {
	widest := 0
	for _, row := range g.rows {
		if len(row) > widest {
			widest = len(row)
		}
	}
	bounds := rect{
		x: g.metrics.OriginX,
		y: g.metrics.OriginY,
		w: widest * g.metrics.CellWidth,
		h: len(g.rows) * g.metrics.CellHeight,
	}
	return bounds.contains(p)
}

type rect struct {
	x, y, w, h int
}

func (g *Grid) cellRect(row, col int) rect {
	return rect{
		x: g.metrics.OriginX + col*g.metrics.CellWidth,
		y: g.metrics.OriginY + row*g.metrics.CellHeight,
		w: g.metrics.CellWidth,
		h: g.metrics.CellHeight,
	}
}

func (r rect) contains(p Point) bool {
	return p.X >= r.x && p.X < r.x+r.w && p.Y >= r.y && p.Y < r.y+r.h
}
