package config

import (
	"fmt"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s=%s]: %s", e.Field, e.Value, e.Message)
}

// ValidationResult holds the results of configuration validation
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
	Valid    bool
}

// AddError adds a validation error
func (r *ValidationResult) AddError(field, value, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: message})
	r.Valid = false
}

// AddWarning adds a validation warning
func (r *ValidationResult) AddWarning(field, value, message string) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: message})
}

// Err joins all errors into one, or returns nil.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

// Validate checks c and logs warnings.
func (c *Config) Validate() ValidationResult {
	res := ValidationResult{Valid: true}

	if strings.TrimSpace(c.Server.Addr) == "" {
		res.AddError("server.addr", c.Server.Addr, "listen address is required")
	}
	switch c.Server.ErrorFormat {
	case "", "simple", "detailed":
	default:
		res.AddError("server.error_format", c.Server.ErrorFormat, "must be simple or detailed")
	}

	if c.Stream.TargetChunks < 1 {
		res.AddError("stream.target_chunks", fmt.Sprint(c.Stream.TargetChunks), "must be at least 1")
	}
	if c.Stream.SessionTargetChunks < 1 {
		res.AddError("stream.session_target_chunks", fmt.Sprint(c.Stream.SessionTargetChunks), "must be at least 1")
	}
	if c.Stream.MinDelay < 0 || c.Stream.MaxDelay < c.Stream.MinDelay {
		res.AddError("stream.max_delay", c.Stream.MaxDelay.String(), "delay range must satisfy 0 <= min <= max")
	}
	if c.Stream.InitialDelay < 0 || c.Stream.SessionDelay < 0 {
		res.AddError("stream.initial_delay", c.Stream.InitialDelay.String(), "delays must not be negative")
	}
	if c.Stream.MaxTextBytes <= 0 {
		res.AddError("stream.max_text_bytes", fmt.Sprint(c.Stream.MaxTextBytes), "must be positive")
	}

	if c.Diagram.RendererURL != "" {
		if u, err := url.Parse(c.Diagram.RendererURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			res.AddError("diagram.renderer_url", c.Diagram.RendererURL, "must be an absolute http(s) URL")
		}
	} else {
		res.AddWarning("diagram.renderer_url", "", "no renderer configured; /api/diagrams/render is disabled")
	}
	if c.Diagram.MaxLevel < 1 || c.Diagram.MaxLevel > 2 {
		res.AddError("diagram.max_level", fmt.Sprint(c.Diagram.MaxLevel), "must be 1 or 2")
	}

	switch c.Cache.Backend {
	case "memory", "none", "":
	case "redis":
		if c.Cache.RedisAddr == "" {
			res.AddError("cache.redis_addr", "", "required when cache.backend is redis")
		}
	default:
		res.AddError("cache.backend", c.Cache.Backend, "must be memory, redis or none")
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1) {
		res.AddError("rate_limit.rps", fmt.Sprint(c.RateLimit.RPS), "rps and burst must be positive when enabled")
	}

	if _, err := log.ParseLevel(firstNonEmpty(c.Logging.Level, "info")); err != nil {
		res.AddError("logging.level", c.Logging.Level, "unknown log level")
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		res.AddError("logging.format", c.Logging.Format, "must be json or text")
	}

	for _, w := range res.Warnings {
		log.WithFields(log.Fields{"field": w.Field}).Warn(w.Message)
	}
	return res
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
