package server

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/task"
)

// Seed is a YAML fixture describing a close period and its tasks. Tasks
// reference each other by ref, so fixtures stay readable without ids.
type Seed struct {
	Periods []SeedPeriod `yaml:"periods"`
	Tasks   []SeedTask   `yaml:"tasks"`
}

type SeedPeriod struct {
	Name   string `yaml:"name"`
	Month  int    `yaml:"month"`
	Year   int    `yaml:"year"`
	Status string `yaml:"status"`
	Active bool   `yaml:"active"`
}

type SeedTask struct {
	Ref         string   `yaml:"ref"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Status      string   `yaml:"status"`
	Owner       string   `yaml:"owner"`
	Assignee    string   `yaml:"assignee"`
	Period      string   `yaml:"period"`
	Department  string   `yaml:"department"`
	Due         string   `yaml:"due"`
	DependsOn   []string `yaml:"depends_on"`
}

// LoadSeed parses a fixture file.
func LoadSeed(path string) (Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	var s Seed
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	return s, nil
}

// ApplySeed replaces the store contents with the fixture. Returns the number
// of tasks loaded.
func (s *Store) ApplySeed(seed Seed) (int, error) {
	if err := s.Wipe(); err != nil {
		return 0, fmt.Errorf("wipe store: %w", err)
	}

	periodIDs := make(map[string]int64, len(seed.Periods))
	var activePeriod int64
	for _, p := range seed.Periods {
		status := p.Status
		if status == "" {
			status = "open"
		}
		id, err := s.CreatePeriod(task.Period{
			Name: p.Name, Month: p.Month, Year: p.Year, Status: status, IsActive: p.Active,
		})
		if err != nil {
			return 0, fmt.Errorf("seed period %q: %w", p.Name, err)
		}
		periodIDs[p.Name] = id
		if p.Active || activePeriod == 0 {
			activePeriod = id
		}
	}
	if activePeriod == 0 {
		return 0, fmt.Errorf("seed defines no periods")
	}

	taskIDs := make(map[string]int64, len(seed.Tasks))
	for _, st := range seed.Tasks {
		periodID := activePeriod
		if st.Period != "" {
			id, ok := periodIDs[st.Period]
			if !ok {
				return 0, fmt.Errorf("task %q references unknown period %q", st.Name, st.Period)
			}
			periodID = id
		}

		var due *time.Time
		if st.Due != "" {
			d, err := parseDue(st.Due)
			if err != nil {
				return 0, fmt.Errorf("task %q: %w", st.Name, err)
			}
			due = &d
		}

		created, err := s.CreateTask(task.Draft{
			Name:        st.Name,
			Description: st.Description,
			Owner:       st.Owner,
			PeriodID:    periodID,
			Department:  st.Department,
			DueDate:     due,
		})
		if err != nil {
			return 0, fmt.Errorf("seed task %q: %w", st.Name, err)
		}

		if st.Assignee != "" {
			if _, err := s.db.Exec(`UPDATE tasks SET assignee = ? WHERE id = ?`, st.Assignee, created.ID); err != nil {
				return 0, err
			}
		}
		if st.Status != "" && st.Status != string(task.StatusNotStarted) {
			status, err := task.ParseStatus(st.Status)
			if err != nil {
				return 0, fmt.Errorf("task %q: %w", st.Name, err)
			}
			if _, _, err := s.UpdateStatus(created.ID, status, "seed"); err != nil {
				return 0, err
			}
		}
		if st.Ref != "" {
			taskIDs[st.Ref] = created.ID
		}
	}

	// Edges resolve in a second pass so a task can depend on a later entry.
	for _, st := range seed.Tasks {
		if len(st.DependsOn) == 0 {
			continue
		}
		from, ok := taskIDs[st.Ref]
		if !ok {
			return 0, fmt.Errorf("task %q has dependencies but no ref", st.Name)
		}
		for _, ref := range st.DependsOn {
			to, ok := taskIDs[ref]
			if !ok {
				return 0, fmt.Errorf("task %q depends on unknown ref %q", st.Name, ref)
			}
			if err := s.AddDependency(from, to); err != nil {
				return 0, err
			}
		}
	}

	return len(seed.Tasks), nil
}

func parseDue(v string) (time.Time, error) {
	if d, err := time.Parse("2006-01-02", v); err == nil {
		return d.UTC(), nil
	}
	d, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad due date %q (want YYYY-MM-DD)", v)
	}
	return d.UTC(), nil
}
