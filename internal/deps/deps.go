// Package deps derives dependency-blocking state from the denormalized
// one-hop snapshots carried on each task. It never walks the graph beyond
// that single hop and never mutates its input.
package deps

import (
	"sort"
	"time"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/task"
)

// maxInsight caps both ranked lists.
const maxInsight = 5

// IsBlocked reports whether any upstream dependency is incomplete.
func IsBlocked(t task.Task) bool {
	for _, d := range t.DependencyDetails {
		if d.Status != task.StatusComplete {
			return true
		}
	}
	return false
}

// IncompleteCount returns the number of incomplete upstream dependencies.
func IncompleteCount(t task.Task) int {
	n := 0
	for _, d := range t.DependencyDetails {
		if d.Status != task.StatusComplete {
			n++
		}
	}
	return n
}

// Insights holds the two ranked panels derived from a task collection.
type Insights struct {
	// Blocked lists blocked tasks, soonest due first, capped at 5.
	Blocked []task.Task
	// TopBlockers lists tasks with the most downstream dependents, capped at 5.
	TopBlockers []task.Task
}

// Derive recomputes both insight lists for a collection. Tasks without a due
// date sort after dated ones; ties keep the collection's original order.
func Derive(tasks []task.Task) Insights {
	var blocked []task.Task
	var blockers []task.Task
	for _, t := range tasks {
		if IsBlocked(t) {
			blocked = append(blocked, t)
		}
		if len(t.DependentDetails) > 0 {
			blockers = append(blockers, t)
		}
	}

	sort.SliceStable(blocked, func(i, j int) bool {
		return dueBefore(blocked[i].DueDate, blocked[j].DueDate)
	})
	sort.SliceStable(blockers, func(i, j int) bool {
		return len(blockers[i].DependentDetails) > len(blockers[j].DependentDetails)
	})

	return Insights{
		Blocked:     cap5(blocked),
		TopBlockers: cap5(blockers),
	}
}

func cap5(ts []task.Task) []task.Task {
	if len(ts) > maxInsight {
		return ts[:maxInsight]
	}
	return ts
}

// dueBefore orders due dates ascending with nil treated as infinitely late.
func dueBefore(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.Before(*b)
}
