package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultsValidate(tt *testing.T) {
	if err := Defaults().Validate(); err != nil {
		tt.Fatalf("Defaults() should validate: %v", err)
	}
}

func TestLoadFileRoundTrip(tt *testing.T) {
	dir := tt.TempDir()
	path := filepath.Join(dir, "config.json")

	doc := `{
		"memory": {"totalSize": 32768, "enableProtection": false},
		"cpu": {"frequency": 8000000, "enableTracing": true},
		"logging": {"minimumLevel": "debug", "enableConsole": true, "enableFile": false, "filePath": ""}
	}`

	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		tt.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		tt.Fatalf("LoadFile: %v", err)
	}

	if cfg.Memory.TotalSize != 32768 {
		tt.Errorf("Memory.TotalSize: want 32768, got %d", cfg.Memory.TotalSize)
	}

	if cfg.Memory.EnableProtection {
		tt.Error("Memory.EnableProtection: want false")
	}

	if !cfg.CPU.EnableTracing {
		tt.Error("CPU.EnableTracing: want true")
	}

	if cfg.Logging.MinimumLevel != "debug" {
		tt.Errorf("Logging.MinimumLevel: want debug, got %s", cfg.Logging.MinimumLevel)
	}
}

func TestLoadFileRejectsUnknownFields(tt *testing.T) {
	dir := tt.TempDir()
	path := filepath.Join(dir, "config.json")

	doc := `{"memory": {"totalSize": 1024, "enableProtection": true, "bogusField": 1}}`

	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		tt.Fatal(err)
	}

	if _, err := LoadFile(path); err == nil {
		tt.Error("LoadFile should reject an unknown field")
	}
}

func TestValidateRejectsOutOfRangeMemory(tt *testing.T) {
	cfg := Defaults()
	cfg.Memory.TotalSize = 0

	if err := cfg.Validate(); err == nil {
		tt.Error("Validate should reject a non-positive totalSize")
	}

	cfg.Memory.TotalSize = 70000

	if err := cfg.Validate(); err == nil {
		tt.Error("Validate should reject a totalSize beyond the 64 KiB address space")
	}
}

func TestValidateRejectsUnknownLogLevel(tt *testing.T) {
	cfg := Defaults()
	cfg.Logging.MinimumLevel = "verbose"

	if err := cfg.Validate(); err == nil {
		tt.Error("Validate should reject an unrecognized logging.minimumLevel")
	}
}

func TestValidateRejectsFileLoggingWithoutPath(tt *testing.T) {
	cfg := Defaults()
	cfg.Logging.EnableFile = true
	cfg.Logging.FilePath = ""

	if err := cfg.Validate(); err == nil {
		tt.Error("Validate should reject logging.enableFile without a filePath")
	}
}
