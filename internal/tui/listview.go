package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/sahilm/fuzzy"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/deps"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/task"
)

// taskItem adapts a cached task for the list surface.
type taskItem struct {
	t       task.Task
	pending bool
}

func (i taskItem) Title() string {
	title := i.t.Name
	if i.pending {
		title += " …saving"
	}
	return title
}

func (i taskItem) Description() string {
	parts := []string{i.t.Status.Label()}
	if i.t.Owner != "" {
		parts = append(parts, i.t.Owner)
	}
	if i.t.Department != "" {
		parts = append(parts, i.t.Department)
	}
	if i.t.DueDate != nil {
		parts = append(parts, "due "+i.t.DueDate.Format("Jan 2"))
	}
	if n := deps.IncompleteCount(i.t); n > 0 {
		parts = append(parts, fmt.Sprintf("blocked by %d", n))
	}
	return strings.Join(parts, " • ")
}

func (i taskItem) FilterValue() string {
	return i.t.Name + " " + i.t.Owner + " " + i.t.Department
}

func fuzzyFilter(term string, targets []string) []list.Rank {
	matches := fuzzy.Find(term, targets)
	ranks := make([]list.Rank, len(matches))
	for i, match := range matches {
		ranks[i] = list.Rank{Index: match.Index, MatchedIndexes: match.MatchedIndexes}
	}
	return ranks
}

func (m *Model) syncList() {
	tasks := m.eng.Tasks()
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, taskItem{t: t, pending: m.eng.Pending(t.ID)})
	}
	m.taskList.SetItems(items)
}
