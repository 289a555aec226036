package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvConfigFile    = "RDPCORE_CONFIG"
	EnvLogLevel      = "RDPCORE_LOG_LEVEL"
	EnvRetryInterval = "RDPCORE_RETRY_INTERVAL"
	EnvReadyTimeout  = "RDPCORE_READY_TIMEOUT"
)

// Library holds settings for the shared library entry points. JPEG quality
// and subsampling are fixed in the encoder.
type Library struct {
	LogLevel      string        `yaml:"log_level"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	// ReadyTimeout bounds the not-ready wait. Zero waits forever.
	ReadyTimeout time.Duration `yaml:"ready_timeout"`
}

// DefaultLibrary returns the built-in settings.
func DefaultLibrary() Library {
	return Library{
		LogLevel:      "warn",
		RetryInterval: 5 * time.Millisecond,
	}
}

// Load returns the defaults, overlaid with the YAML file named by
// RDPCORE_CONFIG (if set), overlaid with individual environment variables.
func Load() (Library, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Library, error) {
	cfg := DefaultLibrary()

	if path, ok := lookup(EnvConfigFile); ok && path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if err := durationEnv(lookup, EnvRetryInterval, &cfg.RetryInterval); err != nil {
		return cfg, err
	}
	if err := durationEnv(lookup, EnvReadyTimeout, &cfg.ReadyTimeout); err != nil {
		return cfg, err
	}

	if cfg.RetryInterval <= 0 {
		return cfg, fmt.Errorf("retry_interval must be positive, got %s", cfg.RetryInterval)
	}
	if cfg.ReadyTimeout < 0 {
		return cfg, fmt.Errorf("ready_timeout must not be negative, got %s", cfg.ReadyTimeout)
	}
	return cfg, nil
}

func durationEnv(lookup func(string) (string, bool), key string, dst *time.Duration) error {
	v, ok := lookup(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

// GrabConfig holds flags for the grab binary.
type GrabConfig struct {
	Library
	Out     string
	Width   int
	Height  int
	Preview bool
	Remote  string
	Code    string
}

// ParseGrabFlags parses flags for the grab binary on top of Load.
func ParseGrabFlags() (*GrabConfig, error) {
	lib, err := Load()
	if err != nil {
		return nil, err
	}
	cfg := &GrabConfig{Library: lib}
	flag.StringVar(&cfg.Out, "out", "screen.jpg", "Output file (- for stdout)")
	flag.IntVar(&cfg.Width, "width", 0, "Target width (0 = native)")
	flag.IntVar(&cfg.Height, "height", 0, "Target height (0 = native)")
	flag.BoolVar(&cfg.Preview, "preview", false, "Show the captured frame in a window")
	flag.StringVar(&cfg.Remote, "remote", "", "Snapshot service URL, e.g. ws://host:8080/capture (empty = local display)")
	flag.StringVar(&cfg.Code, "code", "", "Session code for the snapshot service")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (trace, debug, info, warn, error)")
	flag.DurationVar(&cfg.ReadyTimeout, "ready-timeout", cfg.ReadyTimeout, "Give up waiting for a frame after this long (0 = never)")
	flag.Parse()

	if cfg.Width < 0 || cfg.Height < 0 {
		return nil, fmt.Errorf("width and height must not be negative")
	}
	return cfg, nil
}

// SnapdConfig holds flags for the snapshot service.
type SnapdConfig struct {
	Library
	Addr string
	Code string
}

// ParseSnapdFlags parses flags for the snapd binary on top of Load.
func ParseSnapdFlags() (*SnapdConfig, error) {
	lib, err := Load()
	if err != nil {
		return nil, err
	}
	cfg := &SnapdConfig{Library: lib}
	flag.StringVar(&cfg.Addr, "addr", ":8080", "Listen address")
	flag.StringVar(&cfg.Code, "code", os.Getenv("SESSION_CODE"), "Session code clients must present (empty = open)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (trace, debug, info, warn, error)")
	flag.DurationVar(&cfg.ReadyTimeout, "ready-timeout", cfg.ReadyTimeout, "Give up waiting for a frame after this long (0 = never)")
	flag.Parse()
	return cfg, nil
}
