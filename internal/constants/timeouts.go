package constants

import "time"

const (
	// StreamTimeout bounds a single simulated or relayed stream.
	StreamTimeout = 5 * time.Minute
	// RenderTimeout bounds one diagram render attempt.
	RenderTimeout = 15 * time.Second
	// ConfigPollInterval is the fallback interval when fsnotify is unavailable.
	ConfigPollInterval = 5 * time.Second
	// ServerShutdownTimeout bounds graceful HTTP server shutdown.
	ServerShutdownTimeout = 30 * time.Second
	// ServerGracefulWait defines the wait for background tasks after the HTTP server stops.
	ServerGracefulWait = 2 * time.Second
	// WebSocketWriteTimeout bounds a single websocket frame write.
	WebSocketWriteTimeout = 10 * time.Second
)
