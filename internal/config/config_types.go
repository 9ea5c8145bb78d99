package config

// Config is the full runtime configuration. The same structure is read
// from YAML or JSON files.
type Config struct {
	Server    ServerConfig    `yaml:"server" json:"server"`
	Stream    StreamConfig    `yaml:"stream" json:"stream"`
	Diagram   DiagramConfig   `yaml:"diagram" json:"diagram"`
	Agent     AgentConfig     `yaml:"agent" json:"agent"`
	Cache     CacheConfig     `yaml:"cache" json:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// ServerConfig holds listener and HTTP surface settings.
type ServerConfig struct {
	Addr            string   `yaml:"addr" json:"addr"`
	BasePath        string   `yaml:"base_path" json:"base_path"`
	CORSOrigins     []string `yaml:"cors_origins" json:"cors_origins"`
	RequestLog      bool     `yaml:"request_log" json:"request_log"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	// ErrorFormat is "simple" or "detailed".
	ErrorFormat string `yaml:"error_format" json:"error_format"`
	Pprof       bool   `yaml:"pprof" json:"pprof"`
}

// StreamConfig tunes the simulated streaming routes.
type StreamConfig struct {
	TargetChunks        int      `yaml:"target_chunks" json:"target_chunks"`
	SessionTargetChunks int      `yaml:"session_target_chunks" json:"session_target_chunks"`
	InitialDelay        Duration `yaml:"initial_delay" json:"initial_delay"`
	MinDelay            Duration `yaml:"min_delay" json:"min_delay"`
	MaxDelay            Duration `yaml:"max_delay" json:"max_delay"`
	SessionDelay        Duration `yaml:"session_delay" json:"session_delay"`
	Timeout             Duration `yaml:"timeout" json:"timeout"`
	MaxTextBytes        int      `yaml:"max_text_bytes" json:"max_text_bytes"`
	// RepairDiagrams runs the targeted repair on mermaid fences before streaming.
	RepairDiagrams bool `yaml:"repair_diagrams" json:"repair_diagrams"`
}

// DiagramConfig configures the diagram renderer.
type DiagramConfig struct {
	RendererURL   string   `yaml:"renderer_url" json:"renderer_url"`
	RenderTimeout Duration `yaml:"render_timeout" json:"render_timeout"`
	MaxLevel      int      `yaml:"max_level" json:"max_level"`
}

// AgentConfig describes the external tutor agent process.
type AgentConfig struct {
	Command string   `yaml:"command" json:"command"`
	Args    []string `yaml:"args" json:"args"`
	Dir     string   `yaml:"dir" json:"dir"`
	Env     []string `yaml:"env" json:"env"`
}

// CacheConfig selects the render cache backend.
type CacheConfig struct {
	Backend       string   `yaml:"backend" json:"backend"` // memory, redis, none
	TTL           Duration `yaml:"ttl" json:"ttl"`
	MaxEntries    int      `yaml:"max_entries" json:"max_entries"`
	SweepInterval Duration `yaml:"sweep_interval" json:"sweep_interval"`
	RedisAddr     string   `yaml:"redis_addr" json:"redis_addr"`
	RedisPassword string   `yaml:"redis_password" json:"redis_password"`
	RedisDB       int      `yaml:"redis_db" json:"redis_db"`
	RedisPrefix   string   `yaml:"redis_prefix" json:"redis_prefix"`
}

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	Enabled       bool     `yaml:"enabled" json:"enabled"`
	RPS           float64  `yaml:"rps" json:"rps"`
	Burst         int      `yaml:"burst" json:"burst"`
	SweepInterval Duration `yaml:"sweep_interval" json:"sweep_interval"`
	IdleTTL       Duration `yaml:"idle_ttl" json:"idle_ttl"`
}

// LoggingConfig configures logrus.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"` // json or text
	File   string `yaml:"file" json:"file"`
}
