package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/deps"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/task"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/viewstate"
)

func (m Model) renderBoard() string {
	if len(m.eng.Tasks()) == 0 {
		hint := labelStyle.Render("No tasks in view.")
		if m.view.QueryString() != "" {
			hint += labelStyle.Render(" Filters are active.")
		}
		return hint + "\n" + subtitleStyle.Render("[n] new task  [r] refresh")
	}

	innerW := m.width/len(task.AllStatuses) - 4
	if innerW < 12 {
		innerW = 12
	}
	maxCards := m.cardsPerColumn()

	cols := make([]string, 0, len(task.AllStatuses))
	for i, st := range task.AllStatuses {
		cols = append(cols, m.renderColumn(i, st, innerW, maxCards))
	}
	board := lipgloss.JoinHorizontal(lipgloss.Top, cols...)

	if insights := m.renderInsights(); insights != "" {
		return lipgloss.JoinVertical(lipgloss.Left, board, insights)
	}
	return board
}

func (m Model) cardsPerColumn() int {
	linesPer := 2
	if m.view.Density() == viewstate.DensityCompact {
		linesPer = 1
	}
	available := m.height - 14
	if available < 6 {
		available = 6
	}
	return available / linesPer
}

func (m Model) renderColumn(idx int, st task.Status, innerW, maxCards int) string {
	tasks := m.columnTasks(st)

	style := columnStyle
	if idx == m.col {
		style = columnFocusedStyle
		if m.drag != nil {
			if m.drag.CanDrop(st) {
				style = columnDropStyle
			} else {
				style = columnNoDropStyle
			}
		}
	}

	title := statusStyle(st).Bold(true).Render(st.Label()) +
		labelStyle.Render(fmt.Sprintf(" %d", len(tasks)))

	lines := []string{title}
	for i, t := range tasks {
		if i >= maxCards {
			lines = append(lines, labelStyle.Render(fmt.Sprintf("+%d more", len(tasks)-maxCards)))
			break
		}
		lines = append(lines, m.renderCard(t, idx == m.col && i == m.row, innerW))
	}
	if len(tasks) == 0 {
		lines = append(lines, labelStyle.Render("—"))
	}

	return style.Width(innerW).Render(strings.Join(lines, "\n"))
}

func (m Model) renderCard(t task.Task, focused bool, width int) string {
	marker := "  "
	if m.bulkMode {
		if m.view.Selection().Has(t.ID) {
			marker = "☑ "
		} else {
			marker = "☐ "
		}
	} else if focused {
		marker = "› "
	}

	name := ansi.Truncate(t.Name, max(1, width-ansi.StringWidth(marker)), "…")
	nameStyle := lipgloss.NewStyle().Foreground(colorFg)
	switch {
	case m.drag != nil && m.drag.ID == t.ID:
		nameStyle = cardCarriedStyle
	case focused:
		nameStyle = cardSelectedStyle
	}
	line := marker + nameStyle.Render(name)

	var notes []string
	if m.eng.Pending(t.ID) {
		notes = append(notes, pendingStyle.Render("…saving"))
	}
	if n := deps.IncompleteCount(t); n > 0 {
		notes = append(notes, blockedMarkStyle.Render(fmt.Sprintf("⛔%d", n)))
	}

	if m.view.Density() == viewstate.DensityCompact {
		if len(notes) > 0 {
			line += " " + strings.Join(notes, " ")
		}
		return line
	}

	var meta []string
	if t.DueDate != nil {
		meta = append(meta, t.DueDate.Format("Jan 2"))
	}
	if t.Owner != "" {
		meta = append(meta, t.Owner)
	}
	metaLine := "  " + labelStyle.Render(ansi.Truncate(strings.Join(meta, " • "), max(1, width-2), "…"))
	if len(notes) > 0 {
		metaLine += " " + strings.Join(notes, " ")
	}
	return line + "\n" + metaLine
}

func (m Model) renderInsights() string {
	ins := m.eng.Insights()
	if len(ins.Blocked) == 0 && len(ins.TopBlockers) == 0 {
		return ""
	}

	panelW := m.width/2 - 4
	if panelW < 20 {
		panelW = 20
	}

	blockedLines := []string{subtitleStyle.Render("Blocked, due soonest")}
	for _, t := range ins.Blocked {
		due := "no due date"
		if t.DueDate != nil {
			due = t.DueDate.Format("Jan 2")
		}
		name := ansi.Truncate(t.Name, max(1, panelW-16), "…")
		blockedLines = append(blockedLines, fmt.Sprintf("%s %s",
			name,
			labelStyle.Render(fmt.Sprintf("%s • %d open", due, deps.IncompleteCount(t)))))
	}
	if len(ins.Blocked) == 0 {
		blockedLines = append(blockedLines, labelStyle.Render("none"))
	}

	blockerLines := []string{subtitleStyle.Render("Top blockers")}
	for _, t := range ins.TopBlockers {
		name := ansi.Truncate(t.Name, max(1, panelW-16), "…")
		blockerLines = append(blockerLines, fmt.Sprintf("%s %s",
			name,
			labelStyle.Render(fmt.Sprintf("%d dependent", len(t.DependentDetails)))))
	}
	if len(ins.TopBlockers) == 0 {
		blockerLines = append(blockerLines, labelStyle.Render("none"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Width(panelW).Render(strings.Join(blockedLines, "\n")),
		" ",
		panelStyle.Width(panelW).Render(strings.Join(blockerLines, "\n")),
	)
}
