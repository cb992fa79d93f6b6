// Package engine coordinates the task cache and status transitions against
// the tracker. Mutations are optimistic: the engine records pending marks
// synchronously before any network call, and settlement always clears the
// mark and invalidates the cache, success or failure, so one refresh cycle
// returns the view to server truth.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/api"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/deps"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/selection"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/task"
)

// Op is a staged network operation. Staging records the optimistic state
// (pending marks, carried-status rewrites) before the Op is returned; running
// the Op performs the call and settles. Ops are safe to run from any
// goroutine; a discarded result still settles.
type Op func(ctx context.Context) error

var (
	// ErrTransitionPending rejects a second transition for a task whose
	// previous one has not settled.
	ErrTransitionPending = errors.New("transition still pending")
	// ErrBulkPending enforces one bulk request in flight at a time.
	ErrBulkPending = errors.New("bulk update already in flight")
	// ErrEmptyBulk reports a bulk request with nothing selected. No network
	// call is made and the selection is left as-is.
	ErrEmptyBulk = errors.New("no tasks selected")
	// ErrSameStatus rejects a drop onto the column the card already occupies.
	ErrSameStatus = errors.New("task already has that status")
	// ErrUnknownTask reports an id absent from the current view.
	ErrUnknownTask = errors.New("task not in current view")
)

// Engine owns the fetched task collection and all transition state.
type Engine struct {
	svc api.Service
	sel *selection.Set

	mu           sync.Mutex
	tasks        []task.Task
	insights     deps.Insights
	stale        bool
	pending      map[int64]bool
	bulkInFlight bool
}

// New builds an engine over the given tracker service. The cache starts
// stale so the first render triggers a fetch.
func New(svc api.Service, sel *selection.Set) *Engine {
	return &Engine{
		svc:     svc,
		sel:     sel,
		stale:   true,
		pending: make(map[int64]bool),
	}
}

// Tasks returns the cached collection in fetch order.
func (e *Engine) Tasks() []task.Task {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tasks
}

// Get looks a task up in the cache.
func (e *Engine) Get(id int64) (task.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range e.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}

// Insights returns the derived blocked and top-blocker panels.
func (e *Engine) Insights() deps.Insights {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.insights
}

// Pending reports whether a transition for the task is in flight.
func (e *Engine) Pending(id int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending[id]
}

// BulkInFlight reports whether a bulk update is in flight.
func (e *Engine) BulkInFlight() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bulkInFlight
}

// Stale reports whether the cache must be refetched before the next render.
func (e *Engine) Stale() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stale
}

// Invalidate discards the cache. Only settlement and filter changes call
// this; presentation never does.
func (e *Engine) Invalidate() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stale = true
}

// Refresh stages a fetch for the given filters. Running the Op replaces the
// cache, reconciles the selection against the new visible ids, and
// recomputes the insight panels.
func (e *Engine) Refresh(f task.Filters, reviewQueue bool) Op {
	return func(ctx context.Context) error {
		var (
			got []task.Task
			err error
		)
		if reviewQueue {
			got, err = e.svc.ListReviewQueue(ctx, f)
		} else {
			got, err = e.svc.ListTasks(ctx, f)
		}
		if err != nil {
			return fmt.Errorf("refresh tasks: %w", err)
		}
		e.replace(got)
		return nil
	}
}

func (e *Engine) replace(ts []task.Task) {
	e.mu.Lock()
	e.tasks = ts
	e.insights = deps.Derive(ts)
	e.stale = false
	e.mu.Unlock()

	ids := make([]int64, 0, len(ts))
	for _, t := range ts {
		ids = append(ids, t.ID)
	}
	e.sel.Reconcile(ids)
}

// RequestTransition stages a single-task status change. The pending mark is
// set before this returns, so the caller can render it immediately. A task
// with an unsettled transition is rejected with ErrTransitionPending. The
// engine does not reject same-status requests; suppressing those is the
// caller's concern outside the drop path.
func (e *Engine) RequestTransition(id int64, to task.Status) (Op, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending[id] {
		return nil, fmt.Errorf("task %d: %w", id, ErrTransitionPending)
	}
	e.pending[id] = true
	return func(ctx context.Context) error {
		_, err := e.svc.UpdateTaskStatus(ctx, id, to)
		e.settleTransition(id)
		if err != nil {
			return fmt.Errorf("update task %d: %w", id, err)
		}
		return nil
	}, nil
}

func (e *Engine) settleTransition(id int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.pending, id)
	e.stale = true
}

// RequestBulkTransition stages one status change for every id. Empty input
// and an in-flight bulk request both stage nothing. Settlement invalidates
// the cache either way; the selection is cleared only on success so a failed
// batch can be retried.
func (e *Engine) RequestBulkTransition(ids []int64, to task.Status) (Op, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(ids) == 0 {
		return nil, ErrEmptyBulk
	}
	if e.bulkInFlight {
		return nil, ErrBulkPending
	}
	e.bulkInFlight = true
	batch := make([]int64, len(ids))
	copy(batch, ids)
	return func(ctx context.Context) error {
		// The tracker skips ids it no longer knows; the refetch reconciles,
		// so the returned count is not checked here.
		_, err := e.svc.BulkUpdateStatus(ctx, batch, to)
		e.settleBulk(err == nil)
		if err != nil {
			return fmt.Errorf("bulk update %d tasks: %w", len(batch), err)
		}
		return nil
	}, nil
}

func (e *Engine) settleBulk(ok bool) {
	e.mu.Lock()
	e.bulkInFlight = false
	e.stale = true
	e.mu.Unlock()
	if ok {
		e.sel.Clear()
	}
}

// RequestCreate stages a task creation. Settlement invalidates the cache so
// the new task appears on the next fetch.
func (e *Engine) RequestCreate(d task.Draft) Op {
	return func(ctx context.Context) error {
		_, err := e.svc.CreateTask(ctx, d)
		e.Invalidate()
		if err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		return nil
	}
}
