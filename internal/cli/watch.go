package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/api"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/feed"
)

func watchCmd() *cobra.Command {
	var rawTypes []string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Tail tracker events",
		Long: `Watch streams task changes from the tracker as they happen, one line
per event. Useful next to a board someone else is driving.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			types := make([]feed.EventType, 0, len(rawTypes))
			for _, raw := range rawTypes {
				types = append(types, feed.EventType(strings.TrimSpace(raw)))
			}

			sub, err := api.NewSubscriber(cfg.API.BaseURL, types)
			if err != nil {
				return err
			}
			defer sub.Close()

			out := cmd.OutOrStdout()
			sub.OnEvent(func(ev feed.Event) {
				fmt.Fprintln(out, formatEvent(ev))
			})
			if err := sub.Connect(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (ctrl+c stops)\n", cfg.API.BaseURL)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			select {
			case <-ctx.Done():
				return nil
			case <-sub.Done():
				return errors.New("connection closed by tracker")
			}
		},
	}
	cmd.Flags().StringSliceVar(&rawTypes, "types", nil, "Event types to follow (default all)")
	return cmd
}

// formatEvent renders one feed event as a log line.
func formatEvent(ev feed.Event) string {
	stamp := ev.At.Local().Format("15:04:05")
	switch ev.Type {
	case feed.EventStatusChanged:
		return fmt.Sprintf("%s  %s moved %q %s -> %s", stamp, ev.Actor, ev.TaskName, ev.From, ev.To)
	case feed.EventTaskCreated:
		return fmt.Sprintf("%s  %s created %q", stamp, ev.Actor, ev.TaskName)
	case feed.EventBulkStatusChanged:
		return fmt.Sprintf("%s  %s moved %d tasks to %s", stamp, ev.Actor, ev.Count, ev.To)
	case feed.EventSeedReloaded:
		return fmt.Sprintf("%s  seed reloaded, %d tasks", stamp, ev.Count)
	default:
		return fmt.Sprintf("%s  %s", stamp, ev.Type)
	}
}
