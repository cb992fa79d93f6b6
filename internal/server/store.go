package server

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/task"
)

// Store is the dev tracker's sqlite backing.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the tracker database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
-- Close periods
CREATE TABLE IF NOT EXISTS periods (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  month INTEGER NOT NULL,
  year INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'open',
  is_active INTEGER NOT NULL DEFAULT 0
);

-- Close tasks
CREATE TABLE IF NOT EXISTS tasks (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL DEFAULT 'not_started',
  owner TEXT NOT NULL DEFAULT '',
  assignee TEXT NOT NULL DEFAULT '',
  period_id INTEGER NOT NULL REFERENCES periods(id) ON DELETE CASCADE,
  department TEXT NOT NULL DEFAULT '',
  due_date TEXT,
  file_count INTEGER NOT NULL DEFAULT 0,
  started_at TEXT,
  completed_at TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);

-- One-hop dependency edges
CREATE TABLE IF NOT EXISTS task_dependencies (
  task_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
  depends_on_id INTEGER NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
  PRIMARY KEY (task_id, depends_on_id)
);

-- Status-change audit trail
CREATE TABLE IF NOT EXISTS audit_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  task_id INTEGER NOT NULL,
  actor TEXT NOT NULL DEFAULT '',
  action TEXT NOT NULL,
  detail TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_period ON tasks(period_id);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee);
CREATE INDEX IF NOT EXISTS idx_deps_depends_on ON task_dependencies(depends_on_id);
CREATE INDEX IF NOT EXISTS idx_audit_task ON audit_log(task_id);
`)
	return err
}

// ListOptions narrows a task listing server-side.
type ListOptions struct {
	PeriodID   int64
	Status     task.Status
	Department string
	// User filters to tasks owned by or assigned to this identity.
	User  string
	Limit int
}

// ListTasks returns tasks ordered by due date (undated last), with the
// one-hop dependency summaries hydrated.
func (s *Store) ListTasks(opt ListOptions) ([]task.Task, error) {
	where := []string{"1=1"}
	var args []any
	if opt.PeriodID != 0 {
		where = append(where, "period_id = ?")
		args = append(args, opt.PeriodID)
	}
	if opt.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(opt.Status))
	}
	if opt.Department != "" {
		where = append(where, "department = ?")
		args = append(args, opt.Department)
	}
	if opt.User != "" {
		where = append(where, "(owner = ? OR assignee = ?)")
		args = append(args, opt.User, opt.User)
	}
	q := `SELECT id, name, description, status, owner, assignee, period_id, department, due_date, file_count
FROM tasks WHERE ` + strings.Join(where, " AND ") + `
ORDER BY due_date IS NULL, due_date, id`
	if opt.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opt.Limit)
	}
	return s.queryTasks(q, args...)
}

// ReviewQueue returns tasks in review assigned to user, soonest due first.
func (s *Store) ReviewQueue(user string, opt ListOptions) ([]task.Task, error) {
	where := []string{"status = ?", "assignee = ?"}
	args := []any{string(task.StatusReview), user}
	if opt.PeriodID != 0 {
		where = append(where, "period_id = ?")
		args = append(args, opt.PeriodID)
	}
	if opt.Department != "" {
		where = append(where, "department = ?")
		args = append(args, opt.Department)
	}
	q := `SELECT id, name, description, status, owner, assignee, period_id, department, due_date, file_count
FROM tasks WHERE ` + strings.Join(where, " AND ") + `
ORDER BY due_date IS NULL, due_date, id`
	if opt.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opt.Limit)
	}
	return s.queryTasks(q, args...)
}

func (s *Store) queryTasks(q string, args ...any) ([]task.Task, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if err := s.hydrateEdges(&out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(r rowScanner) (task.Task, error) {
	var t task.Task
	var due sql.NullString
	if err := r.Scan(&t.ID, &t.Name, &t.Description, &t.Status, &t.Owner, &t.Assignee, &t.PeriodID, &t.Department, &due, &t.FileCount); err != nil {
		return task.Task{}, err
	}
	t.DueDate = parseTime(due)
	return t, nil
}

func parseTime(v sql.NullString) *time.Time {
	if !v.Valid || v.String == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339, v.String)
	if err != nil {
		return nil
	}
	return &ts
}

func (s *Store) hydrateEdges(t *task.Task) error {
	deps, err := s.querySummaries(`SELECT t.id, t.name, t.status, t.due_date
FROM task_dependencies d JOIN tasks t ON t.id = d.depends_on_id
WHERE d.task_id = ? ORDER BY t.id`, t.ID)
	if err != nil {
		return err
	}
	t.DependencyDetails = deps

	dependents, err := s.querySummaries(`SELECT t.id, t.name, t.status, t.due_date
FROM task_dependencies d JOIN tasks t ON t.id = d.task_id
WHERE d.depends_on_id = ? ORDER BY t.id`, t.ID)
	if err != nil {
		return err
	}
	t.DependentDetails = dependents
	return nil
}

func (s *Store) querySummaries(q string, id int64) ([]task.Summary, error) {
	rows, err := s.db.Query(q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []task.Summary
	for rows.Next() {
		var sum task.Summary
		var due sql.NullString
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Status, &due); err != nil {
			return nil, err
		}
		sum.DueDate = parseTime(due)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// GetTask loads one task with its dependency summaries.
func (s *Store) GetTask(id int64) (task.Task, error) {
	row := s.db.QueryRow(`SELECT id, name, description, status, owner, assignee, period_id, department, due_date, file_count
FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		return task.Task{}, err
	}
	if err := s.hydrateEdges(&t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// UpdateStatus transitions one task, stamping started/completed times the
// way the close process expects: first move out of not_started stamps
// started_at, entering complete stamps completed_at, leaving complete
// clears it.
func (s *Store) UpdateStatus(id int64, to task.Status, actor string) (task.Task, task.Status, error) {
	var prev task.Status
	err := s.db.QueryRow(`SELECT status FROM tasks WHERE id = ?`, id).Scan(&prev)
	if err != nil {
		return task.Task{}, "", err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(`UPDATE tasks SET
  status = ?,
  started_at = CASE WHEN started_at IS NULL AND ? != 'not_started' THEN ? ELSE started_at END,
  completed_at = CASE WHEN ? = 'complete' THEN ? ELSE NULL END,
  updated_at = ?
WHERE id = ?`, string(to), string(to), now, string(to), now, now, id)
	if err != nil {
		return task.Task{}, "", err
	}

	s.audit(id, actor, "status_changed", fmt.Sprintf("%s -> %s", prev, to))

	t, err := s.GetTask(id)
	if err != nil {
		return task.Task{}, "", err
	}
	return t, prev, nil
}

// BulkUpdateStatus applies one status to every listed task. Unknown ids are
// skipped; the count of actually-updated tasks is returned.
func (s *Store) BulkUpdateStatus(ids []int64, to task.Status, actor string) (int, error) {
	updated := 0
	for _, id := range ids {
		var exists int
		if err := s.db.QueryRow(`SELECT COUNT(1) FROM tasks WHERE id = ?`, id).Scan(&exists); err != nil {
			return updated, err
		}
		if exists == 0 {
			continue
		}
		if _, _, err := s.UpdateStatus(id, to, actor); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// CreateTask inserts a task into its period.
func (s *Store) CreateTask(d task.Draft) (task.Task, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	var due any
	if d.DueDate != nil {
		due = d.DueDate.UTC().Format(time.RFC3339)
	}
	res, err := s.db.Exec(`INSERT INTO tasks (name, description, status, owner, period_id, department, due_date, created_at, updated_at)
VALUES (?, ?, 'not_started', ?, ?, ?, ?, ?, ?)`,
		d.Name, d.Description, d.Owner, d.PeriodID, d.Department, due, now, now)
	if err != nil {
		return task.Task{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return task.Task{}, err
	}
	s.audit(id, d.Owner, "created", d.Name)
	return s.GetTask(id)
}

// AddDependency records that taskID depends on dependsOnID.
func (s *Store) AddDependency(taskID, dependsOnID int64) error {
	_, err := s.db.Exec(`INSERT OR IGNORE INTO task_dependencies (task_id, depends_on_id) VALUES (?, ?)`, taskID, dependsOnID)
	return err
}

// ListPeriods returns all periods, newest first.
func (s *Store) ListPeriods() ([]task.Period, error) {
	rows, err := s.db.Query(`SELECT id, name, month, year, status, is_active FROM periods ORDER BY year DESC, month DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []task.Period
	for rows.Next() {
		var p task.Period
		if err := rows.Scan(&p.ID, &p.Name, &p.Month, &p.Year, &p.Status, &p.IsActive); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ActivePeriod returns the id of the period flagged active.
func (s *Store) ActivePeriod() (int64, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM periods WHERE is_active = 1 ORDER BY year DESC, month DESC LIMIT 1`).Scan(&id)
	return id, err
}

// CreatePeriod inserts a close period.
func (s *Store) CreatePeriod(p task.Period) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO periods (name, month, year, status, is_active) VALUES (?, ?, ?, ?, ?)`,
		p.Name, p.Month, p.Year, p.Status, p.IsActive)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Wipe clears all rows, used when reloading a seed fixture.
func (s *Store) Wipe() error {
	for _, stmt := range []string{
		`DELETE FROM task_dependencies`,
		`DELETE FROM audit_log`,
		`DELETE FROM tasks`,
		`DELETE FROM periods`,
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) audit(taskID int64, actor, action, detail string) {
	_, _ = s.db.Exec(`INSERT INTO audit_log (task_id, actor, action, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		taskID, actor, action, detail, time.Now().UTC().Format(time.RFC3339))
}

// AuditCount returns how many audit rows a task has accumulated.
func (s *Store) AuditCount(taskID int64) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(1) FROM audit_log WHERE task_id = ?`, taskID).Scan(&n)
	return n, err
}
