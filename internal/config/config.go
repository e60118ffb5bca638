// Package config loads playground settings from a YAML file, PYPLAY_*
// environment variables and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds playground configuration.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string
	// WASMPath points at the RustPython WASI binary.
	WASMPath string
	// Locale is the default message language for new workspaces.
	Locale string
	// ExecLimit is the run ceiling.
	ExecLimit        time.Duration
	AutosaveInterval time.Duration
	// MemoryLimit is one of 16mb, 64mb, 256mb, 1gb or empty for the runtime
	// default.
	MemoryLimit string
	DiskCache   bool
	CacheDir    string
	StoreDriver string
	StorePath   string
	// SessionTTL is how long an idle service session survives.
	SessionTTL     time.Duration
	AllowedOrigins []string
	Debug          bool
	LogLevel       string
}

// Overrides optionally overrides values from the file and environment.
//
// A nil pointer means "use the file/environment/default value".
type Overrides struct {
	Addr        *string
	WASMPath    *string
	Locale      *string
	ExecLimit   *time.Duration
	MemoryLimit *string
	DiskCache   *bool
	StoreDriver *string
	StorePath   *string
	Debug       *bool
	LogLevel    *string
}

// fileConfig is the YAML shape. Durations are Go duration strings.
type fileConfig struct {
	Addr             string      `yaml:"addr"`
	WASMPath         string      `yaml:"wasm"`
	Locale           string      `yaml:"locale"`
	ExecLimit        string      `yaml:"exec_limit"`
	AutosaveInterval string      `yaml:"autosave_interval"`
	MemoryLimit      string      `yaml:"memory_limit"`
	DiskCache        *bool       `yaml:"disk_cache"`
	CacheDir         string      `yaml:"cache_dir"`
	Store            storeConfig `yaml:"store"`
	SessionTTL       string      `yaml:"session_ttl"`
	AllowedOrigins   []string    `yaml:"allowed_origins"`
	Debug            *bool       `yaml:"debug"`
	LogLevel         string      `yaml:"log_level"`
}

type storeConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

// Defaults.
const (
	DefaultAddr             = ":3005"
	DefaultLocale           = "ko"
	DefaultExecLimit        = 60 * time.Second
	DefaultAutosaveInterval = 10 * time.Second
	DefaultSessionTTL       = 30 * time.Minute
	DefaultStoreDriver      = "file"
)

// EnvConfigPath names the variable consulted when Load gets no path.
const EnvConfigPath = "PYPLAY_CONFIG"

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:             DefaultAddr,
		Locale:           DefaultLocale,
		ExecLimit:        DefaultExecLimit,
		AutosaveInterval: DefaultAutosaveInterval,
		DiskCache:        true,
		StoreDriver:      DefaultStoreDriver,
		StorePath:        defaultStorePath(),
		SessionTTL:       DefaultSessionTTL,
		AllowedOrigins:   []string{"*"},
		LogLevel:         "info",
	}
}

// Load builds the configuration from defaults, the YAML file at path (or
// $PYPLAY_CONFIG), PYPLAY_* environment variables and explicit overrides, in
// that order. A missing file is only an error when path was given
// explicitly.
func Load(path string, overrides Overrides) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyOverrides(overrides)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&c.Addr, fc.Addr)
	setString(&c.WASMPath, fc.WASMPath)
	setString(&c.Locale, fc.Locale)
	setString(&c.MemoryLimit, fc.MemoryLimit)
	setString(&c.CacheDir, fc.CacheDir)
	setString(&c.StoreDriver, fc.Store.Driver)
	setString(&c.StorePath, fc.Store.Path)
	setString(&c.LogLevel, fc.LogLevel)
	if fc.DiskCache != nil {
		c.DiskCache = *fc.DiskCache
	}
	if fc.Debug != nil {
		c.Debug = *fc.Debug
	}
	if len(fc.AllowedOrigins) > 0 {
		c.AllowedOrigins = fc.AllowedOrigins
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"exec_limit", fc.ExecLimit, &c.ExecLimit},
		{"autosave_interval", fc.AutosaveInterval, &c.AutosaveInterval},
		{"session_ttl", fc.SessionTTL, &c.SessionTTL},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("config %s: %w", d.key, err)
		}
		*d.dst = v
	}
	return nil
}

func (c *Config) applyEnv() error {
	if portStr := os.Getenv("PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			c.Addr = fmt.Sprintf(":%d", p)
		}
	}
	setString(&c.Addr, os.Getenv("PYPLAY_ADDR"))
	setString(&c.WASMPath, os.Getenv("PYPLAY_WASM"))
	setString(&c.Locale, os.Getenv("PYPLAY_LOCALE"))
	setString(&c.MemoryLimit, os.Getenv("PYPLAY_MEMORY_LIMIT"))
	setString(&c.CacheDir, os.Getenv("PYPLAY_CACHE_DIR"))
	setString(&c.StoreDriver, os.Getenv("PYPLAY_STORE"))
	setString(&c.StorePath, os.Getenv("PYPLAY_STORE_PATH"))
	setString(&c.LogLevel, os.Getenv("PYPLAY_LOG_LEVEL"))

	if origins := os.Getenv("PYPLAY_ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = splitList(origins)
	}
	if debugStr := os.Getenv("PYPLAY_DEBUG"); debugStr == "true" || debugStr == "1" {
		c.Debug = true
	}

	durations := []struct {
		env string
		dst *time.Duration
	}{
		{"PYPLAY_EXEC_LIMIT", &c.ExecLimit},
		{"PYPLAY_AUTOSAVE", &c.AutosaveInterval},
		{"PYPLAY_SESSION_TTL", &c.SessionTTL},
	}
	for _, d := range durations {
		raw := os.Getenv(d.env)
		if raw == "" {
			continue
		}
		v, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", d.env, err)
		}
		*d.dst = v
	}
	return nil
}

func (c *Config) applyOverrides(o Overrides) {
	if o.Addr != nil {
		c.Addr = *o.Addr
	}
	if o.WASMPath != nil {
		c.WASMPath = *o.WASMPath
	}
	if o.Locale != nil {
		c.Locale = *o.Locale
	}
	if o.ExecLimit != nil {
		c.ExecLimit = *o.ExecLimit
	}
	if o.MemoryLimit != nil {
		c.MemoryLimit = *o.MemoryLimit
	}
	if o.DiskCache != nil {
		c.DiskCache = *o.DiskCache
	}
	if o.StoreDriver != nil {
		c.StoreDriver = *o.StoreDriver
	}
	if o.StorePath != nil {
		c.StorePath = *o.StorePath
	}
	if o.Debug != nil {
		c.Debug = *o.Debug
	}
	if o.LogLevel != nil {
		c.LogLevel = *o.LogLevel
	}
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.ExecLimit <= 0 {
		return fmt.Errorf("exec limit must be positive, got %v", c.ExecLimit)
	}
	if c.AutosaveInterval <= 0 {
		return fmt.Errorf("autosave interval must be positive, got %v", c.AutosaveInterval)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %v", c.SessionTTL)
	}
	switch strings.ToLower(c.MemoryLimit) {
	case "", "16mb", "64mb", "256mb", "1gb":
	default:
		return fmt.Errorf("invalid memory limit %q (use 16mb, 64mb, 256mb or 1gb)", c.MemoryLimit)
	}
	switch strings.ToLower(c.StoreDriver) {
	case "memory", "file", "sqlite":
	default:
		return fmt.Errorf("invalid store driver %q", c.StoreDriver)
	}
	return nil
}

func defaultStorePath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "pyplay", "slots.json")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "pyplay", "slots.json")
	}
	return "pyplay-slots.json"
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
