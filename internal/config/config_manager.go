package config

import (
	"context"
	"os"
	"sync"
	"time"

	"learnify-go/internal/events"
	"learnify-go/internal/monitoring"

	log "github.com/sirupsen/logrus"
)

// Manager holds the live configuration and reloads it when the file changes.
type Manager struct {
	mu        sync.RWMutex
	config    *Config
	path      string
	lastMod   time.Time
	onChange  []func(*Config)
	publisher events.Publisher
}

// NewManager loads the configuration from path (see Load).
func NewManager(path string) (*Manager, error) {
	cfg, resolved, err := Load(path)
	if err != nil {
		return nil, err
	}
	m := &Manager{config: cfg, path: resolved}
	if resolved != "" {
		if info, err := os.Stat(resolved); err == nil {
			m.lastMod = info.ModTime()
		}
		log.WithField("path", resolved).Info("configuration loaded")
	} else {
		log.Warn("using default configuration (no config file found)")
	}
	return m, nil
}

// NewStaticManager wraps cfg without a backing file.
func NewStaticManager(cfg *Config) *Manager {
	if cfg == nil {
		cfg = Default()
	}
	return &Manager{config: cfg}
}

// Path returns the backing file, empty when there is none.
func (m *Manager) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

// Get returns a copy of the current configuration
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := *m.config
	return &cfg
}

// OnChange registers a callback for configuration changes
func (m *Manager) OnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = append(m.onChange, fn)
}

// SetEventPublisher wires the event hub used to broadcast config updates.
func (m *Manager) SetEventPublisher(p events.Publisher) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publisher = p
}

// Reload re-reads the file if it changed since the last load. An invalid
// file is logged and the previous configuration stays active.
func (m *Manager) Reload() bool {
	path := m.Path()
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	m.mu.RLock()
	unchanged := !info.ModTime().After(m.lastMod)
	m.mu.RUnlock()
	if unchanged {
		return false
	}

	cfg, _, err := Load(path)
	if err != nil {
		monitoring.ConfigReloadsTotal.WithLabelValues("error").Inc()
		log.WithError(err).WithField("path", path).Warn("failed to reload config")
		return false
	}

	m.mu.Lock()
	old := m.config
	m.config = cfg
	m.lastMod = info.ModTime()
	m.mu.Unlock()

	monitoring.ConfigReloadsTotal.WithLabelValues("ok").Inc()
	logConfigChanges(old, cfg)
	m.emitChange(old, cfg)
	return true
}

func (m *Manager) listenersSnapshot() ([]func(*Config), events.Publisher, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	callbacks := make([]func(*Config), len(m.onChange))
	copy(callbacks, m.onChange)
	return callbacks, m.publisher, m.path
}

func (m *Manager) emitChange(oldCfg, newCfg *Config) {
	callbacks, publisher, path := m.listenersSnapshot()
	for _, fn := range callbacks {
		fn(newCfg)
	}
	if publisher != nil {
		event := ChangeEvent{Path: path, UpdatedAt: time.Now().UTC(), Config: *newCfg}
		if oldCfg != nil {
			prev := *oldCfg
			event.Previous = &prev
		}
		publisher.Publish(context.Background(), events.TopicConfigUpdated, event, nil)
	}
}

// ChangeEvent is the payload broadcast when configuration changes.
type ChangeEvent struct {
	Path      string    `json:"path"`
	UpdatedAt time.Time `json:"updated_at"`
	Config    Config    `json:"config"`
	Previous  *Config   `json:"previous,omitempty"`
}

func logConfigChanges(old, new *Config) {
	if old == nil || new == nil {
		return
	}
	changed := func(field string, a, b interface{}) {
		log.WithFields(log.Fields{"field": field, "old": a, "new": b}).Info("config changed")
	}
	if old.Stream.TargetChunks != new.Stream.TargetChunks {
		changed("stream.target_chunks", old.Stream.TargetChunks, new.Stream.TargetChunks)
	}
	if old.Stream.MinDelay != new.Stream.MinDelay || old.Stream.MaxDelay != new.Stream.MaxDelay {
		changed("stream.delay", old.Stream.MinDelay.String()+"-"+old.Stream.MaxDelay.String(), new.Stream.MinDelay.String()+"-"+new.Stream.MaxDelay.String())
	}
	if old.Stream.RepairDiagrams != new.Stream.RepairDiagrams {
		changed("stream.repair_diagrams", old.Stream.RepairDiagrams, new.Stream.RepairDiagrams)
	}
	if old.Diagram.RendererURL != new.Diagram.RendererURL {
		changed("diagram.renderer_url", old.Diagram.RendererURL, new.Diagram.RendererURL)
	}
	if old.Logging.Level != new.Logging.Level {
		changed("logging.level", old.Logging.Level, new.Logging.Level)
	}
	if old.Server.Addr != new.Server.Addr {
		log.WithFields(log.Fields{"old": old.Server.Addr, "new": new.Server.Addr}).Warn("server.addr changed; restart required")
	}
}
