package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/btlive/pkg/viewer"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
)

// =============================================================================
// NodeListModel - Interactive collapse control
// =============================================================================

// Toggler flips the collapse state of a node.
type Toggler interface {
	Toggle(ctx context.Context, id string) (collapsed, changed bool, err error)
}

// snapshotMsg carries a new controller state into the program.
type snapshotMsg viewer.Snapshot

// toggledMsg reports the result of a toggle.
type toggledMsg struct {
	id        string
	collapsed bool
	changed   bool
	err       error
}

// NodeListModel is the bubbletea model listing the visible nodes of the
// tree. Enter collapses or expands the node under the cursor.
type NodeListModel struct {
	ctx     context.Context
	toggler Toggler

	Snapshot viewer.Snapshot
	Cursor   int
	Height   int
	Offset   int
	Message  string
}

// NewNodeListModel creates a node list showing snap.
func NewNodeListModel(ctx context.Context, t Toggler, snap viewer.Snapshot) NodeListModel {
	return NodeListModel{
		ctx:      ctx,
		toggler:  t,
		Snapshot: snap,
		Height:   15,
	}
}

// Rows returns the nodes currently listed: every node not hidden under a
// collapsed ancestor.
func (m NodeListModel) Rows() []viewer.NodeInfo {
	rows := make([]viewer.NodeInfo, 0, len(m.Snapshot.Nodes))
	for _, n := range m.Snapshot.Nodes {
		if !n.Hidden {
			rows = append(rows, n)
		}
	}
	return rows
}

func (m NodeListModel) Init() tea.Cmd {
	return nil
}

func (m NodeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		// keep the cursor on the same node when rows shift
		var current string
		if rows := m.Rows(); m.Cursor < len(rows) {
			current = rows[m.Cursor].ID
		}
		m.Snapshot = viewer.Snapshot(msg)
		rows := m.Rows()
		m.Cursor = min(m.Cursor, max(len(rows)-1, 0))
		for i, n := range rows {
			if n.ID == current {
				m.Cursor = i
				break
			}
		}
		m.clampOffset()
	case toggledMsg:
		switch {
		case msg.err != nil:
			m.Message = msg.err.Error()
		case !msg.changed:
			m.Message = msg.id + " has no children"
		case msg.collapsed:
			m.Message = "collapsed " + msg.id
		default:
			m.Message = "expanded " + msg.id
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.Rows())-1 {
				m.Cursor++
			}
		case "enter", " ":
			rows := m.Rows()
			if m.Cursor >= len(rows) {
				return m, nil
			}
			return m, m.toggle(rows[m.Cursor].ID)
		}
		m.clampOffset()
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
		m.clampOffset()
	}
	return m, nil
}

func (m *NodeListModel) clampOffset() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m NodeListModel) toggle(id string) tea.Cmd {
	ctx, t := m.ctx, m.toggler
	return func() tea.Msg {
		collapsed, changed, err := t.Toggle(ctx, id)
		return toggledMsg{id: id, collapsed: collapsed, changed: changed, err: err}
	}
}

func (m NodeListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Behavior Tree"))
	b.WriteString("  ")
	b.WriteString(listStatusStyle.Render(m.Snapshot.Status))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ collapse/expand  q quit"))
	b.WriteString("\n\n")

	all := m.Rows()
	end := min(m.Offset+m.Height, len(all))
	visible := all[min(m.Offset, end):end]

	rows := make([][]string, 0, len(visible))
	for i, n := range visible {
		cursor := "  "
		if m.Offset+i == m.Cursor {
			cursor = "▸ "
		}
		marker := " "
		switch {
		case n.Collapsed:
			marker = "+"
		case n.HasChildren:
			marker = "-"
		}
		name := strings.Repeat("  ", n.Depth) + marker + " " + n.Label
		rows = append(rows, []string{cursor, name, "■", n.ID})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "", "ID").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < 0 || row >= len(visible) {
				return lipgloss.NewStyle()
			}
			n := visible[row]
			base := lipgloss.NewStyle()
			switch col {
			case 2:
				return base.Foreground(lipgloss.Color(n.Color))
			case 3:
				base = base.Foreground(colorDim)
			}
			if m.Offset+row == m.Cursor {
				return base.Bold(true).Foreground(colorCyan)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %d collapsed", min(m.Cursor+1, len(all)), len(all), len(m.Snapshot.Collapsed))))
	if m.Message != "" {
		b.WriteString("  ")
		b.WriteString(m.Message)
	}
	return b.String()
}

// runNodeList runs the node list until the user quits or ctx is done.
func runNodeList(ctx context.Context, ctrl *viewer.Controller) error {
	p := tea.NewProgram(
		NewNodeListModel(ctx, ctrl, ctrl.Snapshot()),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	ctrl.Listen(func(s viewer.Snapshot) { p.Send(snapshotMsg(s)) })
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
