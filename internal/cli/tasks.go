package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/task"
)

func tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect and update close tasks from the shell",
	}
	cmd.AddCommand(
		tasksListCmd(),
		tasksSetStatusCmd(),
		tasksBulkStatusCmd(),
		tasksCreateCmd(),
	)
	return cmd
}

func tasksListCmd() *cobra.Command {
	var (
		status     string
		department string
		mine       bool
		review     bool
		periodID   int64
		limit      int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List close tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			client := newClient(cfg)

			f := task.Filters{
				PeriodID:   periodID,
				Department: department,
				Mine:       mine,
				Limit:      limit,
			}
			if status != "" {
				st, err := task.ParseStatus(status)
				if err != nil {
					return err
				}
				f.Status = st
			}

			var ts []task.Task
			if review {
				ts, err = client.ListReviewQueue(cmd.Context(), f)
			} else {
				ts, err = client.ListTasks(cmd.Context(), f)
			}
			if err != nil {
				return err
			}
			for _, t := range ts {
				due := "-"
				if t.DueDate != nil {
					due = t.DueDate.Format("2006-01-02")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Status, due, t.Owner, t.Name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&department, "department", "", "Filter by department")
	cmd.Flags().BoolVar(&mine, "mine", false, "Only tasks owned by or assigned to you")
	cmd.Flags().BoolVar(&review, "review", false, "Your review queue instead of the task list")
	cmd.Flags().Int64Var(&periodID, "period", 0, "Close period id (0 for all)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum rows (0 for server default)")
	return cmd
}

func tasksSetStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-status <task-id> <status>",
		Short: "Move one task to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("task id %q: %w", args[0], err)
			}
			st, err := task.ParseStatus(args[1])
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			updated, err := newClient(cfg).UpdateTaskStatus(cmd.Context(), id, st)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %d set to %s\n", updated.ID, updated.Status)
			return nil
		},
	}
	return cmd
}

func tasksBulkStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk-status <status> <task-id>...",
		Short: "Move several tasks to one status",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := task.ParseStatus(args[0])
			if err != nil {
				return err
			}
			ids := make([]int64, 0, len(args)-1)
			for _, raw := range args[1:] {
				id, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					return fmt.Errorf("task id %q: %w", raw, err)
				}
				ids = append(ids, id)
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			updated, err := newClient(cfg).BulkUpdateStatus(cmd.Context(), ids, st)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d of %d tasks\n", updated, len(ids))
			return nil
		},
	}
	return cmd
}

func tasksCreateCmd() *cobra.Command {
	var (
		owner       string
		department  string
		due         string
		periodID    int64
		description string
	)
	cmd := &cobra.Command{
		Use:   "create <name>...",
		Short: "Add a task to the close",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			d := task.Draft{
				Name:        strings.Join(args, " "),
				Description: description,
				Owner:       owner,
				PeriodID:    periodID,
				Department:  department,
			}
			if due != "" {
				t, err := time.Parse("2006-01-02", due)
				if err != nil {
					return fmt.Errorf("due date %q: %w", due, err)
				}
				d.DueDate = &t
			}
			created, err := newClient(cfg).CreateTask(cmd.Context(), d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created task %d: %s\n", created.ID, created.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Owner (defaults to you)")
	cmd.Flags().StringVar(&department, "department", "", "Department")
	cmd.Flags().StringVar(&due, "due", "", "Due date as YYYY-MM-DD")
	cmd.Flags().Int64Var(&periodID, "period", 0, "Close period id (0 uses the active period)")
	cmd.Flags().StringVar(&description, "description", "", "Markdown description")
	return cmd
}
