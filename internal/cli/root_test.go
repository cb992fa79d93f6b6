package cli

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/feed"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/server"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/task"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/tui"
)

func newTracker(t *testing.T) (*httptest.Server, *server.Store) {
	t.Helper()
	store, err := server.OpenStore(filepath.Join(t.TempDir(), "tracker.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := server.NewServer(store, feed.NewBroker(), logger)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func seedTracker(t *testing.T, store *server.Store) (bankID, cashID int64) {
	t.Helper()
	pid, err := store.CreatePeriod(task.Period{Name: "July 2025", Month: 7, Year: 2025, Status: "open", IsActive: true})
	if err != nil {
		t.Fatal(err)
	}
	due := time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)
	bank, err := store.CreateTask(task.Draft{Name: "Bank reconciliation", Owner: "alex", PeriodID: pid, Department: "accounting", DueDate: &due})
	if err != nil {
		t.Fatal(err)
	}
	cash, err := store.CreateTask(task.Draft{Name: "Cash flow statement", Owner: "sam", PeriodID: pid, Department: "accounting"})
	if err != nil {
		t.Fatal(err)
	}
	return bank.ID, cash.ID
}

func writeConfig(t *testing.T, baseURL string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := fmt.Sprintf("[api]\nbase_url = %q\nuser = \"alex\"\n\n[board]\nstate_path = %q\n",
		baseURL, filepath.Join(dir, "state.json"))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRoot("")
	cmd.SetArgs(args)
	buf := bytes.NewBuffer(nil)
	cmd.SetOut(buf)
	cmd.SetErr(bytes.NewBuffer(nil))
	err := cmd.Execute()
	return buf.String(), err
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func TestRootCommandWiring(t *testing.T) {
	cmd := NewRoot("")
	if cmd == nil || cmd.Use != "closeboard" {
		t.Fatalf("expected root command")
	}
	want := map[string]bool{"tasks": false, "serve": false, "watch": false}
	for _, sub := range cmd.Commands() {
		if _, ok := want[sub.Name()]; ok {
			want[sub.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Fatalf("expected %s command", name)
		}
	}
}

func TestRootOpensBoardAgainstTracker(t *testing.T) {
	ts, store := newTracker(t)
	seedTracker(t, store)
	cfgPath := writeConfig(t, ts.URL)

	var captured tui.Model
	origRun := runTUI
	runTUI = func(m tui.Model) error {
		captured = m
		return nil
	}
	defer func() { runTUI = origRun }()

	cmd := NewRoot("build abc1234")
	cmd.SetArgs([]string{"--config", cfgPath, "--view", "mine=1"})
	cmd.SetOut(bytes.NewBuffer(nil))
	cmd.SetErr(bytes.NewBuffer(nil))
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	model, _ := captured.Update(tea.WindowSizeMsg{Width: 140, Height: 44})
	m := model.(tui.Model)
	model, refreshCmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = model.(tui.Model)
	if refreshCmd == nil {
		t.Fatal("expected a refresh command")
	}
	model, _ = m.Update(refreshCmd())
	m = model.(tui.Model)

	view := ansi.Strip(m.View())
	if !strings.Contains(view, "Bank reconciliation") {
		t.Fatalf("expected owned task on the board, got:\n%s", view)
	}
	if strings.Contains(view, "Cash flow statement") {
		t.Fatalf("mine=1 should hide sam's task, got:\n%s", view)
	}
	if !strings.Contains(view, "MINE") {
		t.Fatalf("expected MINE badge, got:\n%s", view)
	}
	if !strings.Contains(view, "July 2025") {
		t.Fatalf("expected active period in the footer, got:\n%s", view)
	}
}

func TestRootRejectsMalformedView(t *testing.T) {
	ts, store := newTracker(t)
	seedTracker(t, store)
	cfgPath := writeConfig(t, ts.URL)

	origRun := runTUI
	runTUI = func(m tui.Model) error { return nil }
	defer func() { runTUI = origRun }()

	cmd := NewRoot("")
	cmd.SetArgs([]string{"--config", cfgPath, "--view", "mine=%zz"})
	cmd.SetOut(bytes.NewBuffer(nil))
	cmd.SetErr(bytes.NewBuffer(nil))
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "parse --view") {
		t.Fatalf("expected view parse error, got %v", err)
	}
}

func TestTasksListOutput(t *testing.T) {
	ts, store := newTracker(t)
	bankID, _ := seedTracker(t, store)
	cfgPath := writeConfig(t, ts.URL)
	if _, _, err := store.UpdateStatus(bankID, task.StatusInProgress, "seed"); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "tasks", "list", "--config", cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Bank reconciliation") || !strings.Contains(out, "Cash flow statement") {
		t.Fatalf("expected both tasks, got %q", out)
	}
	if !strings.Contains(out, "2025-07-03") {
		t.Fatalf("expected due date column, got %q", out)
	}

	out, err = execute(t, "tasks", "list", "--config", cfgPath, "--status", "in_progress")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Bank reconciliation") || strings.Contains(out, "Cash flow statement") {
		t.Fatalf("expected status filter to keep only the moved task, got %q", out)
	}

	out, err = execute(t, "tasks", "list", "--config", cfgPath, "--mine")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Bank reconciliation") || strings.Contains(out, "Cash flow statement") {
		t.Fatalf("expected mine filter to keep only alex's task, got %q", out)
	}
}

func TestTasksListRejectsUnknownStatus(t *testing.T) {
	ts, store := newTracker(t)
	seedTracker(t, store)
	cfgPath := writeConfig(t, ts.URL)

	_, err := execute(t, "tasks", "list", "--config", cfgPath, "--status", "bogus")
	if err == nil || !strings.Contains(err.Error(), "unknown status") {
		t.Fatalf("expected status parse error, got %v", err)
	}
}

func TestTasksSetStatus(t *testing.T) {
	ts, store := newTracker(t)
	bankID, _ := seedTracker(t, store)
	cfgPath := writeConfig(t, ts.URL)

	out, err := execute(t, "tasks", "set-status", itoa(bankID), "review", "--config", cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "set to review") {
		t.Fatalf("expected confirmation, got %q", out)
	}
	got, err := store.GetTask(bankID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != task.StatusReview {
		t.Fatalf("expected review, got %s", got.Status)
	}
}

func TestTasksBulkStatusReportsSkipped(t *testing.T) {
	ts, store := newTracker(t)
	bankID, cashID := seedTracker(t, store)
	cfgPath := writeConfig(t, ts.URL)

	out, err := execute(t, "tasks", "bulk-status", "complete", itoa(bankID), itoa(cashID), "9999", "--config", cfgPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "updated 2 of 3 tasks") {
		t.Fatalf("expected skip report, got %q", out)
	}
}

func TestTasksCreate(t *testing.T) {
	ts, store := newTracker(t)
	seedTracker(t, store)
	cfgPath := writeConfig(t, ts.URL)

	out, err := execute(t, "tasks", "create", "Accrue", "bonuses",
		"--config", cfgPath, "--user", "bob", "--department", "accounting", "--due", "2025-07-08")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "created task") {
		t.Fatalf("expected confirmation, got %q", out)
	}

	tasks, err := store.ListTasks(server.ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	var created *task.Task
	for i := range tasks {
		if tasks[i].Name == "Accrue bonuses" {
			created = &tasks[i]
			break
		}
	}
	if created == nil {
		t.Fatalf("expected created task in store")
	}
	if created.Owner != "bob" {
		t.Fatalf("expected caller as owner, got %q", created.Owner)
	}
	if created.DueDate == nil || created.DueDate.Format("2006-01-02") != "2025-07-08" {
		t.Fatalf("expected due date, got %v", created.DueDate)
	}
}

func TestTasksCreateRejectsBadDueDate(t *testing.T) {
	ts, store := newTracker(t)
	seedTracker(t, store)
	cfgPath := writeConfig(t, ts.URL)

	_, err := execute(t, "tasks", "create", "Accruals", "--config", cfgPath, "--due", "July 8")
	if err == nil || !strings.Contains(err.Error(), "due date") {
		t.Fatalf("expected due date parse error, got %v", err)
	}
}

func TestFormatEvent(t *testing.T) {
	at := time.Date(2025, 7, 2, 9, 30, 0, 0, time.UTC)
	cases := []struct {
		ev   feed.Event
		want string
	}{
		{feed.Event{Type: feed.EventStatusChanged, TaskName: "Bank reconciliation", From: task.StatusNotStarted, To: task.StatusReview, Actor: "alex", At: at},
			`alex moved "Bank reconciliation" not_started -> review`},
		{feed.Event{Type: feed.EventTaskCreated, TaskName: "Payroll accrual", Actor: "sam", At: at},
			`sam created "Payroll accrual"`},
		{feed.Event{Type: feed.EventBulkStatusChanged, Count: 4, To: task.StatusComplete, Actor: "alex", At: at},
			"alex moved 4 tasks to complete"},
		{feed.Event{Type: feed.EventSeedReloaded, Count: 12, At: at},
			"seed reloaded, 12 tasks"},
	}
	for _, tc := range cases {
		got := formatEvent(tc.ev)
		if !strings.Contains(got, tc.want) {
			t.Fatalf("formatEvent(%s) = %q, want fragment %q", tc.ev.Type, got, tc.want)
		}
	}
}
