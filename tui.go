package main

import (
	"fmt"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"switcher/enumerate"
	"switcher/grid"
)

// TUI message types
type OverlayShownMsg struct {
	Rows   [][]enumerate.CandidateApp
	Cursor grid.Cursor
}
type CursorMsg struct{ Cursor grid.Cursor }
type GridMsg struct {
	Rows   [][]enumerate.CandidateApp
	Cursor grid.Cursor
}
type OverlayHiddenMsg struct{}
type CommittedMsg struct{ Name string }
type LogMsg struct{ Text string }

type tuiModel struct {
	visible       bool
	rows          [][]enumerate.CandidateApp
	cursor        grid.Cursor
	lastSwitch    string
	switchCount   int
	lastLog       string
	width, height int
}

var (
	tuiProgram   *tea.Program
	tuiMu        sync.Mutex
	tuiReady     = make(chan struct{})
	tuiReadyOnce sync.Once
)

// Pre-computed styles, the View runs on every cursor move
var (
	cellStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("250"))
	cellCursorStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Bold(true).
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("62"))
	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
)

func NewTUIProgram() *tea.Program {
	m := tuiModel{}
	return tea.NewProgram(m, tea.WithAltScreen())
}

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		tuiReadyOnce.Do(func() { close(tuiReady) })

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case OverlayShownMsg:
		m.visible = true
		m.rows = msg.Rows
		m.cursor = msg.Cursor

	case CursorMsg:
		m.cursor = msg.Cursor

	case GridMsg:
		m.rows = msg.Rows
		m.cursor = msg.Cursor

	case OverlayHiddenMsg:
		m.visible = false
		m.rows = nil

	case CommittedMsg:
		m.lastSwitch = msg.Name
		m.switchCount++

	case LogMsg:
		m.lastLog = msg.Text
	}
	return m, nil
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("switcher"))
	b.WriteString("\n\n")

	if m.visible {
		b.WriteString(renderGrid(m.rows, m.cursor))
	} else {
		b.WriteString(dimStyle.Render("idle, hold Alt and press Tab"))
	}
	b.WriteString("\n\n")

	if m.lastSwitch != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("last: %s (%d this session)", m.lastSwitch, m.switchCount)))
		b.WriteString("\n")
	}
	if m.lastLog != "" {
		b.WriteString(dimStyle.Render(m.lastLog))
		b.WriteString("\n")
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, b.String())
}

func renderGrid(rows [][]enumerate.CandidateApp, cur grid.Cursor) string {
	var lines []string
	for r, row := range rows {
		var cells []string
		for c, app := range row {
			label := app.Name
			if app.Badge != "" {
				label += " " + badgeStyle.Render("("+app.Badge+")")
			}
			if r == cur.Row && c == cur.Col {
				cells = append(cells, cellCursorStyle.Render(label))
			} else {
				cells = append(cells, cellStyle.Render(label))
			}
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func logToTUI(format string, args ...interface{}) {
	tuiMu.Lock()
	p := tuiProgram
	tuiMu.Unlock()

	if p != nil {
		msg := fmt.Sprintf(format, args...)
		p.Send(LogMsg{Text: msg})
	}
}
