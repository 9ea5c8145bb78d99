package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadFile reads path over the defaults. The format follows the extension;
// unknown extensions try YAML and then JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			cfg = Default()
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file (tried YAML and JSON)")
			}
		}
	}
	return cfg, nil
}

// Load resolves the config file, applies env overrides and validates the
// result. An empty path searches the usual locations; no file at all means
// defaults plus env.
func Load(path string) (*Config, string, error) {
	path = resolvePath(path)
	cfg := Default()
	if path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, path, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if err := cfg.Validate().Err(); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

func resolvePath(path string) string {
	if path == "" {
		path = getenv("CONFIG", "")
	}
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	if path != "" {
		return path
	}
	for _, loc := range []string{"config.yaml", "config.yml", "config.json", "/etc/learnify/config.yaml"} {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}
