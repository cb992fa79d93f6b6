package engine

import "github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/task"

// Drag is the snapshot a pick-up gesture carries across the board. The
// status field is rewritten on each accepted drop, never by settlement or
// refresh, so repeat drops within one gesture compare against what the
// gesture already did.
type Drag struct {
	ID     int64
	Status task.Status
}

// StartDrag captures a task's id and current status at pick-up.
func (e *Engine) StartDrag(id int64) (*Drag, error) {
	t, ok := e.Get(id)
	if !ok {
		return nil, ErrUnknownTask
	}
	return &Drag{ID: t.ID, Status: t.Status}, nil
}

// CanDrop reports whether the carried card may land on the target column.
func (d *Drag) CanDrop(target task.Status) bool {
	return d != nil && target != d.Status
}

// Drop accepts the gesture: the carried status and the cached card are
// rewritten to the target immediately, then the transition is staged. The
// rewrite is a transient optimistic marker; a failed transition is not
// rolled back here, the post-settlement refetch reconciles it.
func (e *Engine) Drop(d *Drag, target task.Status) (Op, error) {
	if !d.CanDrop(target) {
		return nil, ErrSameStatus
	}
	d.Status = target

	e.mu.Lock()
	for i := range e.tasks {
		if e.tasks[i].ID == d.ID {
			e.tasks[i].Status = target
			break
		}
	}
	e.mu.Unlock()

	return e.RequestTransition(d.ID, target)
}
