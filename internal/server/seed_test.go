package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/task"
)

const fixtureYAML = `periods:
  - name: July 2025
    month: 7
    year: 2025
    active: true

tasks:
  - ref: bank-rec
    name: Bank reconciliation
    owner: alex
    period: July 2025
    department: accounting
    status: in_progress
    due: 2025-07-03

  - ref: cash-flow
    name: Cash flow statement
    owner: sam
    assignee: alex
    period: July 2025
    department: accounting
    status: review
    depends_on: [bank-rec]

  - ref: payroll
    name: Payroll accrual
    owner: sam
    period: July 2025
    department: hr
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "close.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestApplySeedBuildsFixture(t *testing.T) {
	s := openTestStore(t)
	seed, err := LoadSeed(writeFixture(t, fixtureYAML))
	if err != nil {
		t.Fatal(err)
	}

	n, err := s.ApplySeed(seed)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected 3 tasks loaded, got %d", n)
	}

	periods, err := s.ListPeriods()
	if err != nil {
		t.Fatal(err)
	}
	if len(periods) != 1 || !periods[0].IsActive {
		t.Fatalf("expected one active period, got %+v", periods)
	}

	tasks, err := s.ListTasks(ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}

	byName := map[string]task.Task{}
	for _, tk := range tasks {
		byName[tk.Name] = tk
	}

	if got := byName["Bank reconciliation"]; got.Status != task.StatusInProgress {
		t.Fatalf("seeded status not applied, got %s", got.Status)
	}
	if got := byName["Bank reconciliation"]; got.DueDate == nil || got.DueDate.Day() != 3 {
		t.Fatalf("seeded due date not applied, got %v", got.DueDate)
	}
	if got := byName["Payroll accrual"]; got.Status != task.StatusNotStarted {
		t.Fatalf("tasks without a status should stay not_started, got %s", got.Status)
	}

	cashFlow := byName["Cash flow statement"]
	if cashFlow.Assignee != "alex" {
		t.Fatalf("assignee not applied, got %q", cashFlow.Assignee)
	}
	if len(cashFlow.DependencyDetails) != 1 || cashFlow.DependencyDetails[0].Name != "Bank reconciliation" {
		t.Fatalf("dependency ref not resolved, got %+v", cashFlow.DependencyDetails)
	}
}

func TestApplySeedUnknownDependencyRef(t *testing.T) {
	s := openTestStore(t)
	seed, err := LoadSeed(writeFixture(t, `periods:
  - name: July 2025
    month: 7
    year: 2025
    active: true

tasks:
  - ref: a
    name: A
    period: July 2025
    depends_on: [nope]
`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.ApplySeed(seed); err == nil {
		t.Fatal("expected error for unknown depends_on ref")
	}
}

func TestApplySeedUnknownPeriod(t *testing.T) {
	s := openTestStore(t)
	seed, err := LoadSeed(writeFixture(t, `periods:
  - name: July 2025
    month: 7
    year: 2025

tasks:
  - ref: a
    name: A
    period: August 2025
`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.ApplySeed(seed); err == nil {
		t.Fatal("expected error for unknown period name")
	}
}

func TestApplySeedReplacesPreviousContents(t *testing.T) {
	s := openTestStore(t)
	seed, err := LoadSeed(writeFixture(t, fixtureYAML))
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if _, err := s.ApplySeed(seed); err != nil {
			t.Fatal(err)
		}
	}

	tasks, err := s.ListTasks(ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 3 {
		t.Fatalf("reapplying a seed should not duplicate tasks, got %d", len(tasks))
	}
	periods, err := s.ListPeriods()
	if err != nil {
		t.Fatal(err)
	}
	if len(periods) != 1 {
		t.Fatalf("reapplying a seed should not duplicate periods, got %d", len(periods))
	}
}
