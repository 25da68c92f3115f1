// Package config loads and validates the emulator's JSON configuration,
// per spec.md §6.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// MemoryConfig controls the unified memory map and its protection model.
type MemoryConfig struct {
	TotalSize        int  `json:"totalSize"`
	EnableProtection bool `json:"enableProtection"`
}

// CPUConfig controls CPU timing and diagnostics. Frequency is informational
// only: it is reported to callers but never consulted by the core, which
// has no notion of wall-clock time.
type CPUConfig struct {
	Frequency     int  `json:"frequency"`
	EnableTracing bool `json:"enableTracing"`
}

// LoggingConfig controls where and how verbosely the emulator logs.
type LoggingConfig struct {
	MinimumLevel  string `json:"minimumLevel"`
	EnableConsole bool   `json:"enableConsole"`
	EnableFile    bool   `json:"enableFile"`
	FilePath      string `json:"filePath"`
}

// Config is the root configuration document, serialized field-for-field
// per spec.md §6 so existing configuration files load unchanged.
type Config struct {
	Memory  MemoryConfig  `json:"memory"`
	CPU     CPUConfig     `json:"cpu"`
	Logging LoggingConfig `json:"logging"`
}

// Defaults returns the documented default configuration.
func Defaults() Config {
	return Config{
		Memory: MemoryConfig{
			TotalSize:        65536,
			EnableProtection: true,
		},
		CPU: CPUConfig{
			Frequency:     1_000_000,
			EnableTracing: false,
		},
		Logging: LoggingConfig{
			MinimumLevel:  "info",
			EnableConsole: true,
			EnableFile:    false,
			FilePath:      "",
		},
	}
}

// LoadFile reads and validates a JSON configuration file at path, starting
// from Defaults and overwriting only the fields present in the document.
// Unknown fields are rejected, matching the teacher's preference for loud
// failure over silently-ignored typos in hand-edited config.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	cfg := Defaults()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the documented constraints on a Config: positive memory
// size bounded by the 64 KiB address space, and a recognized log level.
func (c Config) Validate() error {
	if c.Memory.TotalSize <= 0 || c.Memory.TotalSize > 65536 {
		return fmt.Errorf("config: memory.totalSize %d out of range (0, 65536]", c.Memory.TotalSize)
	}

	switch c.Logging.MinimumLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: logging.minimumLevel %q is not one of debug, info, warn, error", c.Logging.MinimumLevel)
	}

	if c.Logging.EnableFile && c.Logging.FilePath == "" {
		return fmt.Errorf("config: logging.enableFile is true but logging.filePath is empty")
	}

	return nil
}
