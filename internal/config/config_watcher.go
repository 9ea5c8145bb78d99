package config

import (
	"context"
	"path/filepath"
	"time"

	"learnify-go/internal/constants"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

const debounceDuration = 100 * time.Millisecond

// Watch reloads the configuration whenever the file changes, until ctx is
// done. It uses fsnotify and falls back to polling.
func (m *Manager) Watch(ctx context.Context) error {
	path := m.Path()
	if path == "" {
		<-ctx.Done()
		return ctx.Err()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.WithError(err).Warn("failed to create file watcher, falling back to polling")
		return m.poll(ctx, constants.ConfigPollInterval)
	}
	defer watcher.Close()

	// Watch the directory so atomic rename-style writes are seen too.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		log.WithError(err).WithField("dir", dir).Warn("failed to watch config directory, falling back to polling")
		return m.poll(ctx, constants.ConfigPollInterval)
	}
	log.WithField("path", path).Info("file watcher started using fsnotify")

	target := filepath.Clean(path)
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDuration, func() { m.Reload() })
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("file watcher error")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (m *Manager) poll(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.WithField("interval", interval.String()).Info("file watcher started using polling")
	for {
		select {
		case <-ticker.C:
			m.Reload()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
