// Package viewstate owns the filter, density, and quick-edit state behind
// the board and list surfaces. The two quick filters (My Tasks, My Reviews)
// are mutually exclusive and modeled as an explicit state machine rather
// than a pair of booleans.
package viewstate

import (
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/selection"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/task"
)

// Quick identifies which quick filter is active.
type Quick int

const (
	QuickNone Quick = iota
	QuickMine
	QuickReview
)

// Density controls how much detail each board card shows.
type Density string

const (
	DensityComfortable Density = "comfortable"
	DensityCompact     Density = "compact"
)

// DensityKey is the preference key the density setting persists under.
const DensityKey = "task_view_density"

// Prefs persists view preferences across sessions.
type Prefs interface {
	Get(key string) (string, bool)
	Set(key, value string) error
}

// Controller holds the view state and enforces its invariants. It owns the
// selection set so filter changes can clear it before stale rows are acted on.
type Controller struct {
	quick      Quick
	remembered task.Status

	status     task.Status
	department string
	periodID   int64
	limit      int

	density   Density
	quickEdit bool
	highlight int64

	sel   *selection.Set
	prefs Prefs
}

// New builds a controller, reading the persisted density preference.
// An absent or unrecognized value falls back to comfortable.
func New(prefs Prefs, sel *selection.Set) *Controller {
	c := &Controller{
		quick:   QuickNone,
		density: DensityComfortable,
		sel:     sel,
		prefs:   prefs,
	}
	if prefs != nil {
		if v, ok := prefs.Get(DensityKey); ok {
			if d := Density(v); d == DensityComfortable || d == DensityCompact {
				c.density = d
			}
		}
	}
	return c
}

// Quick returns the active quick filter.
func (c *Controller) Quick() Quick { return c.quick }

// MineActive reports whether the My Tasks quick filter is on.
func (c *Controller) MineActive() bool { return c.quick == QuickMine }

// ReviewActive reports whether the My Reviews quick filter is on.
func (c *Controller) ReviewActive() bool { return c.quick == QuickReview }

// Status returns the explicit status filter ("" means all).
func (c *Controller) Status() task.Status { return c.status }

// Department returns the department filter ("" means all).
func (c *Controller) Department() string { return c.department }

// PeriodID returns the active close period.
func (c *Controller) PeriodID() int64 { return c.periodID }

// Selection returns the selection set the controller guards.
func (c *Controller) Selection() *selection.Set { return c.sel }

// Filters assembles the listing options for the current view.
func (c *Controller) Filters() task.Filters {
	return task.Filters{
		PeriodID:   c.periodID,
		Department: c.department,
		Status:     c.status,
		Mine:       c.quick == QuickMine,
		Limit:      c.limit,
	}
}

// ToggleMine flips the My Tasks quick filter. Switching over from My Reviews
// first undoes the review entry's status override.
func (c *Controller) ToggleMine() {
	switch c.quick {
	case QuickMine:
		c.quick = QuickNone
	case QuickReview:
		c.leaveReview()
		c.quick = QuickMine
	default:
		c.quick = QuickMine
	}
}

// ToggleReview flips the My Reviews quick filter. Entering remembers the
// current status filter and forces status=review; leaving restores the
// remembered value, or clears the status filter if none was set.
func (c *Controller) ToggleReview() {
	if c.quick == QuickReview {
		c.leaveReview()
		c.quick = QuickNone
		return
	}
	c.remembered = c.status
	c.status = task.StatusReview
	c.quick = QuickReview
}

// leaveReview restores the status filter captured on entry. The remembered
// value is a single slot, overwritten by each entry.
func (c *Controller) leaveReview() {
	c.status = c.remembered
	c.remembered = ""
}

// SetStatus changes the explicit status filter and clears the selection,
// since the visible rows are about to change. Same-value calls are no-ops.
func (c *Controller) SetStatus(s task.Status) {
	if s == c.status {
		return
	}
	c.status = s
	c.sel.Clear()
}

// CycleStatus advances the status filter through all statuses and back to
// unfiltered.
func (c *Controller) CycleStatus() {
	if c.status == "" {
		c.SetStatus(task.AllStatuses[0])
		return
	}
	for i, s := range task.AllStatuses {
		if s == c.status {
			if i == len(task.AllStatuses)-1 {
				c.SetStatus("")
			} else {
				c.SetStatus(task.AllStatuses[i+1])
			}
			return
		}
	}
	c.SetStatus("")
}

// SetDepartment changes the department filter and clears the selection.
// Same-value calls are no-ops.
func (c *Controller) SetDepartment(d string) {
	if d == c.department {
		return
	}
	c.department = d
	c.sel.Clear()
}

// SetPeriod switches the active close period.
func (c *Controller) SetPeriod(id int64) { c.periodID = id }

// SetLimit caps how many tasks a listing requests.
func (c *Controller) SetLimit(n int) { c.limit = n }

// Density returns the active card density.
func (c *Controller) Density() Density { return c.density }

// ToggleDensity flips between comfortable and compact and persists the
// choice. The write is best-effort; a failed save keeps the in-memory value.
func (c *Controller) ToggleDensity() error {
	if c.density == DensityCompact {
		c.density = DensityComfortable
	} else {
		c.density = DensityCompact
	}
	if c.prefs == nil {
		return nil
	}
	return c.prefs.Set(DensityKey, string(c.density))
}

// QuickEdit reports whether quick-edit mode is on. The toggle is
// session-only and never persisted.
func (c *Controller) QuickEdit() bool { return c.quickEdit }

// ToggleQuickEdit flips quick-edit mode.
func (c *Controller) ToggleQuickEdit() { c.quickEdit = !c.quickEdit }

// Highlight returns the task id an arriving link asked to open, 0 if none.
func (c *Controller) Highlight() int64 { return c.highlight }

// SetHighlight records a task id to auto-open.
func (c *Controller) SetHighlight(id int64) { c.highlight = id }

// ClearHighlight drops the auto-open request once consumed.
func (c *Controller) ClearHighlight() { c.highlight = 0 }
