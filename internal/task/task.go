package task

import (
	"fmt"
	"time"
)

// Status represents the workflow state of a close task.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusBlocked    Status = "blocked"
	StatusComplete   Status = "complete"
)

// AllStatuses lists every status in board column order.
var AllStatuses = []Status{
	StatusNotStarted,
	StatusInProgress,
	StatusReview,
	StatusBlocked,
	StatusComplete,
}

// ParseStatus validates a raw status string.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// Valid reports whether the status is one of the known workflow states.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusReview, StatusBlocked, StatusComplete:
		return true
	}
	return false
}

// Label returns the display name for the status.
func (s Status) Label() string {
	switch s {
	case StatusNotStarted:
		return "Not Started"
	case StatusInProgress:
		return "In Progress"
	case StatusReview:
		return "Review"
	case StatusBlocked:
		return "Blocked"
	case StatusComplete:
		return "Complete"
	}
	return string(s)
}

// Summary is the denormalized one-hop view of a related task. The service
// embeds these on both sides of a dependency edge so the client never walks
// the graph itself.
type Summary struct {
	ID      int64      `json:"id"`
	Name    string     `json:"name"`
	Status  Status     `json:"status"`
	DueDate *time.Time `json:"due_date,omitempty"`
}

// Task represents a single close-process task as served by the tracker.
type Task struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Owner       string     `json:"owner,omitempty"`
	Assignee    string     `json:"assignee,omitempty"`
	PeriodID    int64      `json:"period_id"`
	Department  string     `json:"department,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	FileCount   int        `json:"file_count"`

	// One-hop dependency snapshots, maintained server-side.
	DependencyDetails []Summary `json:"dependency_details,omitempty"`
	DependentDetails  []Summary `json:"dependent_details,omitempty"`
}

// Draft is the payload for creating a task.
type Draft struct {
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Owner       string     `json:"owner,omitempty"`
	PeriodID    int64      `json:"period_id"`
	Department  string     `json:"department,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// Period represents a close period (one month being closed).
type Period struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Month    int    `json:"month"`
	Year     int    `json:"year"`
	Status   string `json:"status"`
	IsActive bool   `json:"is_active"`
}

// Filters narrows a task listing. Zero values mean "no filter".
type Filters struct {
	PeriodID   int64
	Department string
	Status     Status
	Mine       bool
	Limit      int
}
