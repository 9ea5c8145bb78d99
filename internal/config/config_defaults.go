package config

import (
	"time"

	"learnify-go/internal/constants"
)

// Default returns the configuration used when no file or env var says otherwise.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: Duration(constants.ServerShutdownTimeout),
			ErrorFormat:     "simple",
		},
		Stream: StreamConfig{
			TargetChunks:        15,
			SessionTargetChunks: 10,
			InitialDelay:        Duration(50 * time.Millisecond),
			MinDelay:            Duration(30 * time.Millisecond),
			MaxDelay:            Duration(60 * time.Millisecond),
			SessionDelay:        Duration(50 * time.Millisecond),
			Timeout:             Duration(constants.StreamTimeout),
			MaxTextBytes:        constants.MaxStreamTextBytes,
			RepairDiagrams:      true,
		},
		Diagram: DiagramConfig{
			RenderTimeout: Duration(constants.RenderTimeout),
			MaxLevel:      2,
		},
		Cache: CacheConfig{
			Backend:       "memory",
			TTL:           Duration(constants.RenderCacheTTL),
			MaxEntries:    constants.RenderCacheMaxEntries,
			SweepInterval: Duration(constants.CacheSweepInterval),
			RedisPrefix:   constants.RenderCacheKeyPrefix,
		},
		RateLimit: RateLimitConfig{
			Enabled:       true,
			RPS:           5,
			Burst:         10,
			SweepInterval: Duration(time.Minute),
			IdleTTL:       Duration(10 * time.Minute),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
