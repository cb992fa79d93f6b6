// Package api speaks to the close tracker service over HTTP/JSON.
package api

import (
	"context"
	"errors"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/task"
)

// ErrNotFound reports a task id unknown to the service.
var ErrNotFound = errors.New("task not found")

// Service is the tracker capability the engine consumes. The board talks to
// the real tracker through Client; tests substitute their own.
type Service interface {
	// ListTasks returns tasks matching the filters.
	ListTasks(ctx context.Context, f task.Filters) ([]task.Task, error)
	// ListReviewQueue returns tasks awaiting the current user's approval.
	// Status and mine filters do not apply; the queue defines both.
	ListReviewQueue(ctx context.Context, f task.Filters) ([]task.Task, error)
	// UpdateTaskStatus transitions one task and returns its new state.
	UpdateTaskStatus(ctx context.Context, id int64, s task.Status) (task.Task, error)
	// BulkUpdateStatus transitions many tasks at once and returns how many
	// were updated. The service rejects an empty id list.
	BulkUpdateStatus(ctx context.Context, ids []int64, s task.Status) (int, error)
	// CreateTask adds a task to the active period.
	CreateTask(ctx context.Context, d task.Draft) (task.Task, error)
	// ListPeriods returns the known close periods.
	ListPeriods(ctx context.Context) ([]task.Period, error)
}
