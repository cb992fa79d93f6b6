// Package feed broadcasts task-change events so close-process monitors can
// follow the board without polling. The board itself never consumes the
// feed; its refresh cycle stays driven by cache invalidation.
package feed

import (
	"time"

	"github.com/google/uuid"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/task"
)

// EventType identifies the category of change.
type EventType string

const (
	EventTaskCreated       EventType = "task_created"
	EventStatusChanged     EventType = "status_changed"
	EventBulkStatusChanged EventType = "bulk_status_changed"
	EventSeedReloaded      EventType = "seed_reloaded"
)

// Event describes one change to the tracked close process.
type Event struct {
	ID       string      `json:"id"`
	Type     EventType   `json:"type"`
	TaskID   int64       `json:"task_id,omitempty"`
	TaskName string      `json:"task_name,omitempty"`
	From     task.Status `json:"from,omitempty"`
	To       task.Status `json:"to,omitempty"`
	Count    int         `json:"count,omitempty"`
	Actor    string      `json:"actor,omitempty"`
	At       time.Time   `json:"at"`
}

// StatusChanged records a single-task transition.
func StatusChanged(t task.Task, from task.Status, actor string) Event {
	return Event{
		ID:       uuid.NewString(),
		Type:     EventStatusChanged,
		TaskID:   t.ID,
		TaskName: t.Name,
		From:     from,
		To:       t.Status,
		Actor:    actor,
		At:       time.Now().UTC(),
	}
}

// TaskCreated records a new task.
func TaskCreated(t task.Task, actor string) Event {
	return Event{
		ID:       uuid.NewString(),
		Type:     EventTaskCreated,
		TaskID:   t.ID,
		TaskName: t.Name,
		To:       t.Status,
		Actor:    actor,
		At:       time.Now().UTC(),
	}
}

// BulkStatusChanged records a bulk transition.
func BulkStatusChanged(count int, to task.Status, actor string) Event {
	return Event{
		ID:    uuid.NewString(),
		Type:  EventBulkStatusChanged,
		To:    to,
		Count: count,
		Actor: actor,
		At:    time.Now().UTC(),
	}
}

// SeedReloaded records a fixture reload on the dev tracker.
func SeedReloaded(count int) Event {
	return Event{
		ID:    uuid.NewString(),
		Type:  EventSeedReloaded,
		Count: count,
		At:    time.Now().UTC(),
	}
}
