// Package inspect is an interactive terminal browser for decoded packet
// trees, built on Bubble Tea.
package inspect

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/pktdecode/internal/packet"
	"github.com/muurk/pktdecode/internal/ui"
)

// chromeHeight is the number of lines used by the title, detail pane and help.
const chromeHeight = 6

// row is one visible line of the flattened tree.
type row struct {
	pkt    packet.Packet
	depth  int
	parent int // index of the parent row, -1 for top-level packets
}

// Model is the inspector's Bubble Tea model.
type Model struct {
	title     string
	roots     []packet.Packet
	collapsed map[packet.Packet]bool
	rows      []row
	cursor    int

	viewport viewport.Model
	help     help.Model
	keys     keyMap
	ready    bool
}

// NewModel creates an inspector over the given top-level packets, fully
// expanded, with the cursor on the first packet.
func NewModel(title string, roots []packet.Packet) Model {
	m := Model{
		title:     title,
		roots:     roots,
		collapsed: make(map[packet.Packet]bool),
		viewport:  viewport.New(ui.MinTerminalWidth, 10),
		help:      help.New(),
		keys:      defaultKeyMap(),
	}
	m.rebuild()
	return m
}

// Run starts the inspector on the alternate screen and blocks until the user
// quits. Extra options are passed to the program, e.g. tea.WithInputTTY when
// stdin carried the transmission.
func Run(title string, roots []packet.Packet, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	if _, err := tea.NewProgram(NewModel(title, roots), opts...).Run(); err != nil {
		return fmt.Errorf("inspector failed: %w", err)
	}
	return nil
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeHeight, 1)
		m.help.Width = msg.Width
		m.ready = true

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Toggle):
			if p := m.Selected(); isOperator(p) {
				m.setCollapsed(p, !m.collapsed[p])
			}
		case key.Matches(msg, m.keys.Collapse):
			p := m.Selected()
			if isOperator(p) && !m.collapsed[p] {
				m.setCollapsed(p, true)
			} else if len(m.rows) > 0 && m.rows[m.cursor].parent >= 0 {
				m.cursor = m.rows[m.cursor].parent
			}
		case key.Matches(msg, m.keys.Expand):
			if p := m.Selected(); isOperator(p) {
				m.setCollapsed(p, false)
			}
		case key.Matches(msg, m.keys.ExpandAll):
			m.setAll(false)
		case key.Matches(msg, m.keys.CollapseAll):
			m.setAll(true)
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}

	m.refresh()
	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(ui.OperatorStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n\n")
	b.WriteString(m.details())
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// Selected returns the packet under the cursor, or nil for an empty tree.
func (m Model) Selected() packet.Packet {
	if len(m.rows) == 0 {
		return nil
	}
	return m.rows[m.cursor].pkt
}

// Visible returns the number of rows currently shown.
func (m Model) Visible() int {
	return len(m.rows)
}

func (m *Model) setCollapsed(p packet.Packet, collapsed bool) {
	if collapsed {
		m.collapsed[p] = true
	} else {
		delete(m.collapsed, p)
	}
	m.rebuildKeeping(p)
}

func (m *Model) setAll(collapsed bool) {
	selected := m.Selected()
	m.collapsed = make(map[packet.Packet]bool)
	if collapsed {
		for _, root := range m.roots {
			packet.Walk(root, func(p packet.Packet, _ int) bool {
				if isOperator(p) {
					m.collapsed[p] = true
				}
				return true
			})
		}
		// The selection may now be hidden; fall back to its top-level packet.
		selected = nil
	}
	m.rebuildKeeping(selected)
}

// rebuildKeeping rebuilds the rows and moves the cursor back onto p.
func (m *Model) rebuildKeeping(p packet.Packet) {
	m.rebuild()
	for i, r := range m.rows {
		if r.pkt == p {
			m.cursor = i
			return
		}
	}
	m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
	for m.cursor > 0 && m.rows[m.cursor].parent >= 0 {
		m.cursor = m.rows[m.cursor].parent
	}
}

// rebuild flattens the expanded part of the forest into rows.
func (m *Model) rebuild() {
	m.rows = m.rows[:0]
	for _, root := range m.roots {
		parents := map[packet.Packet]int{}
		packet.Walk(root, func(p packet.Packet, depth int) bool {
			parent := -1
			if idx, ok := parents[p]; ok {
				parent = idx
			}
			m.rows = append(m.rows, row{pkt: p, depth: depth, parent: parent})
			if m.collapsed[p] {
				return false
			}
			if op, ok := p.(*packet.Operator); ok {
				for _, child := range op.Children {
					parents[child] = len(m.rows) - 1
				}
			}
			return true
		})
	}
	m.refresh()
}

// refresh re-renders the rows into the viewport and keeps the cursor visible.
func (m *Model) refresh() {
	lines := make([]string, len(m.rows))
	for i, r := range m.rows {
		marker := ui.LeafMarker
		if isOperator(r.pkt) {
			marker = ui.ExpandedMarker
			if m.collapsed[r.pkt] {
				marker = ui.CollapsedMarker
			}
		}
		line := strings.Repeat("  ", r.depth) + marker + " " + ui.RenderPacketLine(r.pkt)
		if i == m.cursor {
			line = ui.SelectedStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		lines[i] = line
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))

	if m.cursor < m.viewport.YOffset {
		m.viewport.SetYOffset(m.cursor)
	} else if m.viewport.Height > 0 && m.cursor >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

// details describes the selected packet's subtree.
func (m Model) details() string {
	p := m.Selected()
	if p == nil {
		return ui.ExtentStyle.Render("no packets")
	}

	var value string
	if v, err := packet.Evaluate(p); err != nil {
		value = ui.ErrorMessageStyle.Render(err.Error())
	} else {
		value = fmt.Sprintf("%d", v)
	}

	return fmt.Sprintf("%s\nvalue: %s   version sum: %d   expr: %s",
		packet.Describe(p), value, packet.SumVersions(p), packet.FormatCompact(p))
}

func isOperator(p packet.Packet) bool {
	_, ok := p.(*packet.Operator)
	return ok
}
