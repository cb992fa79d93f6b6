// Package cli wires the closeboard commands. The bare command opens the
// board TUI; subcommands cover scripted task updates, the dev tracker, and
// the event tail.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/api"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/config"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/engine"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/prefs"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/selection"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/tui"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/viewstate"
)

func Execute(buildInfo string) error {
	return NewRoot(buildInfo).Execute()
}

var runTUI = func(m tui.Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func NewRoot(buildInfo string) *cobra.Command {
	var (
		viewQuery string
		periodID  int64
	)
	root := &cobra.Command{
		Use:   "closeboard",
		Short: "Kanban board for the month-end close",
		Long: `Closeboard renders the month-end close as a kanban board in the
terminal. Run with no arguments to open the board against the
tracker configured in ~/.config/closeboard/config.toml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			// Suppress logs in TUI mode to avoid interfering with display
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelError,
			})))

			client := newClient(cfg)
			store := prefs.Open(cfg.Board.StatePath)
			sel := selection.NewSet()
			view := viewstate.New(store, sel)
			if cfg.Board.Limit > 0 {
				view.SetLimit(cfg.Board.Limit)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			periods, err := client.ListPeriods(ctx)
			if err != nil {
				// The board still opens; the first refresh surfaces the error.
				periods = nil
			}
			switch {
			case periodID != 0:
				view.SetPeriod(periodID)
			case cfg.Board.PeriodID != 0:
				view.SetPeriod(cfg.Board.PeriodID)
			default:
				for _, p := range periods {
					if p.IsActive {
						view.SetPeriod(p.ID)
						break
					}
				}
			}
			if viewQuery != "" {
				if err := view.ApplyString(viewQuery); err != nil {
					return fmt.Errorf("parse --view: %w", err)
				}
			}

			eng := engine.New(client, sel)
			m := tui.New(eng, view, tui.Config{
				User:      cfg.API.User,
				BuildInfo: buildInfo,
				Periods:   periods,
			})
			return runTUI(m)
		},
	}
	root.PersistentFlags().String("config", "", "Path to config file")
	root.PersistentFlags().String("server", "", "Tracker base URL (overrides config)")
	root.PersistentFlags().String("user", "", "Identity sent as X-User (overrides config)")
	root.Flags().StringVar(&viewQuery, "view", "", "Initial view as a query string, e.g. \"mine=1\" or \"status=review&highlight=42\"")
	root.Flags().Int64Var(&periodID, "period", 0, "Pin a close period id (0 follows the active period)")
	root.AddCommand(
		tasksCmd(),
		serveCmd(),
		watchCmd(),
	)
	return root
}

// loadConfig resolves the config file plus the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("server"); v != "" {
		cfg.API.BaseURL = v
	}
	if v, _ := cmd.Flags().GetString("user"); v != "" {
		cfg.API.User = v
	}
	return cfg, nil
}

func newClient(cfg *config.Config) *api.Client {
	c := api.NewClient(cfg.API.BaseURL).WithUser(cfg.API.User)
	if cfg.API.TimeoutSeconds > 0 {
		c = c.WithTimeout(time.Duration(cfg.API.TimeoutSeconds) * time.Second)
	}
	return c
}
