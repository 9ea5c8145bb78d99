package config

// ApplyEnv overlays LEARNIFY_* environment variables onto c.
func (c *Config) ApplyEnv() {
	setStringFromEnv("ADDR", func(v string) { c.Server.Addr = v })
	setStringFromEnv("BASE_PATH", func(v string) { c.Server.BasePath = v })
	setListFromEnv("CORS_ORIGINS", ",", func(v []string) { c.Server.CORSOrigins = v })
	setToggleFromEnv("REQUEST_LOG", func(v bool) { c.Server.RequestLog = v })
	setDurationFromEnv("SHUTDOWN_TIMEOUT", func(v Duration) { c.Server.ShutdownTimeout = v })
	setStringFromEnv("ERROR_FORMAT", func(v string) { c.Server.ErrorFormat = v })
	setToggleFromEnv("PPROF", func(v bool) { c.Server.Pprof = v })

	setIntFromEnv("TARGET_CHUNKS", func(v int) { c.Stream.TargetChunks = v })
	setIntFromEnv("SESSION_TARGET_CHUNKS", func(v int) { c.Stream.SessionTargetChunks = v })
	setDurationFromEnv("INITIAL_DELAY", func(v Duration) { c.Stream.InitialDelay = v })
	setDurationFromEnv("MIN_DELAY", func(v Duration) { c.Stream.MinDelay = v })
	setDurationFromEnv("MAX_DELAY", func(v Duration) { c.Stream.MaxDelay = v })
	setDurationFromEnv("SESSION_DELAY", func(v Duration) { c.Stream.SessionDelay = v })
	setDurationFromEnv("STREAM_TIMEOUT", func(v Duration) { c.Stream.Timeout = v })
	setIntFromEnv("MAX_TEXT_BYTES", func(v int) { c.Stream.MaxTextBytes = v })
	setToggleFromEnv("REPAIR_DIAGRAMS", func(v bool) { c.Stream.RepairDiagrams = v })

	setStringFromEnv("RENDERER_URL", func(v string) { c.Diagram.RendererURL = v })
	setDurationFromEnv("RENDER_TIMEOUT", func(v Duration) { c.Diagram.RenderTimeout = v })
	setIntFromEnv("REPAIR_MAX_LEVEL", func(v int) { c.Diagram.MaxLevel = v })

	setStringFromEnv("AGENT_COMMAND", func(v string) { c.Agent.Command = v })
	setListFromEnv("AGENT_ARGS", " ", func(v []string) { c.Agent.Args = v })
	setStringFromEnv("AGENT_DIR", func(v string) { c.Agent.Dir = v })

	setStringFromEnv("CACHE_BACKEND", func(v string) { c.Cache.Backend = v })
	setDurationFromEnv("CACHE_TTL", func(v Duration) { c.Cache.TTL = v })
	setIntFromEnv("CACHE_MAX_ENTRIES", func(v int) { c.Cache.MaxEntries = v })
	setStringFromEnv("REDIS_ADDR", func(v string) { c.Cache.RedisAddr = v })
	setStringFromEnv("REDIS_PASSWORD", func(v string) { c.Cache.RedisPassword = v })
	setIntFromEnv("REDIS_DB", func(v int) { c.Cache.RedisDB = v })
	setStringFromEnv("REDIS_PREFIX", func(v string) { c.Cache.RedisPrefix = v })

	setToggleFromEnv("RATE_LIMIT", func(v bool) { c.RateLimit.Enabled = v })
	setFloatFromEnv("RATE_LIMIT_RPS", func(v float64) { c.RateLimit.RPS = v })
	setIntFromEnv("RATE_LIMIT_BURST", func(v int) { c.RateLimit.Burst = v })

	setStringFromEnv("LOG_LEVEL", func(v string) { c.Logging.Level = v })
	setStringFromEnv("LOG_FORMAT", func(v string) { c.Logging.Format = v })
	setStringFromEnv("LOG_FILE", func(v string) { c.Logging.File = v })

	c.Server.BasePath = normalizeBasePath(c.Server.BasePath)
}
