package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/task"
)

func renderMarkdown(input string, width int) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", nil
	}
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithWordWrap(width),
		glamour.WithStandardStyle("dark"),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(input)
}

func (m Model) renderDetail() string {
	t, ok := m.eng.Get(m.detailID)
	if !ok {
		return labelStyle.Render("Task is no longer in view. esc closes.")
	}

	width := m.width - 6
	if width < 30 {
		width = 30
	}

	header := titleStyle.Render(t.Name) + "  " +
		statusStyle(t.Status).Bold(true).Render(t.Status.Label())
	if m.eng.Pending(t.ID) {
		header += " " + pendingStyle.Render("…saving")
	}

	var meta []string
	if t.Owner != "" {
		meta = append(meta, "owner "+t.Owner)
	}
	if t.Assignee != "" {
		meta = append(meta, "assignee "+t.Assignee)
	}
	if t.Department != "" {
		meta = append(meta, t.Department)
	}
	if t.DueDate != nil {
		meta = append(meta, "due "+t.DueDate.Format("Jan 2, 2006"))
	}
	if t.FileCount > 0 {
		meta = append(meta, fmt.Sprintf("%d files", t.FileCount))
	}

	lines := []string{header}
	if len(meta) > 0 {
		lines = append(lines, labelStyle.Render(strings.Join(meta, " • ")))
	}

	if body, err := renderMarkdown(t.Description, width); err == nil && body != "" {
		lines = append(lines, "", strings.TrimRight(body, "\n"))
	}

	if len(t.DependencyDetails) > 0 {
		lines = append(lines, "", subtitleStyle.Render("Depends on"))
		for _, d := range t.DependencyDetails {
			lines = append(lines, renderEdge(d))
		}
	}
	if len(t.DependentDetails) > 0 {
		lines = append(lines, "", subtitleStyle.Render("Blocks"))
		for _, d := range t.DependentDetails {
			lines = append(lines, renderEdge(d))
		}
	}

	lines = append(lines, "", helpDescStyle.Render("esc closes"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(1, 2).
		Width(width)
	return box.Render(strings.Join(lines, "\n"))
}

func renderEdge(s task.Summary) string {
	line := "  " + statusStyle(s.Status).Render("●") + " " + s.Name
	detail := s.Status.Label()
	if s.DueDate != nil {
		detail += ", due " + s.DueDate.Format("Jan 2")
	}
	return line + " " + labelStyle.Render("("+detail+")")
}
