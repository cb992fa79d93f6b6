package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/feed"
	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/server"
)

func serveCmd() *cobra.Command {
	var (
		addr     string
		dbPath   string
		seedPath string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local dev tracker (local-only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Serve.Addr
			}
			if dbPath == "" {
				dbPath = cfg.Serve.DB
			}
			if seedPath == "" {
				seedPath = cfg.Serve.Seed
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}))
			slog.SetDefault(logger)

			if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
				return err
			}
			store, err := server.OpenStore(dbPath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer store.Close()

			srv := server.NewServer(store, feed.NewBroker(), logger)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if seedPath != "" {
				seed, err := server.LoadSeed(seedPath)
				if err != nil {
					return fmt.Errorf("load seed: %w", err)
				}
				n, err := store.ApplySeed(seed)
				if err != nil {
					return fmt.Errorf("apply seed: %w", err)
				}
				logger.Info("seed applied", "tasks", n, "path", seedPath)
				go func() {
					if err := srv.WatchSeed(ctx, seedPath); err != nil {
						logger.Error("seed watcher stopped", "error", err)
					}
				}()
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-quit
				logger.Info("shutting down")
				cancel()
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "closeboard tracker listening on %s\n", addr)
			if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP bind address (loopback only)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path")
	cmd.Flags().StringVar(&seedPath, "seed", "", "YAML fixture; applied at start and reloaded on change")
	return cmd
}
