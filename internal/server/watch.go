package server

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/feed"
)

// WatchSeed reloads the seed fixture whenever it changes on disk, wiping and
// repopulating the store. Editors replace files via rename, so the watch
// covers the parent directory and filters by name.
func (s *Server) WatchSeed(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	// Debounce bursts: editors fire several events per save.
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(evt.Name) != abs {
				continue
			}
			pending = time.After(250 * time.Millisecond)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("seed watch", "error", err)
		case <-pending:
			pending = nil
			s.reloadSeed(abs)
		}
	}
}

func (s *Server) reloadSeed(path string) {
	seed, err := LoadSeed(path)
	if err != nil {
		s.logger.Error("seed reload", "path", path, "error", err)
		return
	}
	n, err := s.store.ApplySeed(seed)
	if err != nil {
		s.logger.Error("seed apply", "path", path, "error", err)
		return
	}
	s.broker.Publish(feed.SeedReloaded(n))
	s.logger.Info("seed reloaded", "path", path, "tasks", n)
}
