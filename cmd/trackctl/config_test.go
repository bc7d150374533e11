package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeLaunchConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadLaunchConfigDefaults(t *testing.T) {
	path := writeLaunchConfig(t, "")

	cfg, err := loadLaunchConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SchemaCmd != "schemactl" {
		t.Fatalf("unexpected schema cmd: %q", cfg.SchemaCmd)
	}
	if cfg.ServerCmd != "trackd" {
		t.Fatalf("unexpected server cmd: %q", cfg.ServerCmd)
	}
	if cfg.Workers != 4 || cfg.TimeoutSeconds != 120 {
		t.Fatalf("unexpected workers/timeout: %d/%d", cfg.Workers, cfg.TimeoutSeconds)
	}
}

func TestLoadLaunchConfigOverrides(t *testing.T) {
	path := writeLaunchConfig(t, `
schema_cmd = "bin/schemactl"
schema_args = ["-with-demo=false", "  ", "-reset"]
server_cmd = "bin/trackd"
workers = 2
timeout = "30s"
`)

	cfg, err := loadLaunchConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SchemaCmd != "bin/schemactl" || cfg.ServerCmd != "bin/trackd" {
		t.Fatalf("unexpected commands: %q/%q", cfg.SchemaCmd, cfg.ServerCmd)
	}
	if len(cfg.SchemaArgs) != 2 || cfg.SchemaArgs[0] != "-with-demo=false" || cfg.SchemaArgs[1] != "-reset" {
		t.Fatalf("unexpected schema args: %+v", cfg.SchemaArgs)
	}
	if cfg.Workers != 2 || cfg.TimeoutSeconds != 30 {
		t.Fatalf("unexpected workers/timeout: %d/%d", cfg.Workers, cfg.TimeoutSeconds)
	}
}

func TestLoadLaunchConfigTimeoutSeconds(t *testing.T) {
	path := writeLaunchConfig(t, `
timeout_seconds = 45
`)

	cfg, err := loadLaunchConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.TimeoutSeconds != 45 {
		t.Fatalf("unexpected timeout: %d", cfg.TimeoutSeconds)
	}
}

func TestLoadLaunchConfigBadDuration(t *testing.T) {
	path := writeLaunchConfig(t, `
timeout = "abc"
`)

	if _, err := loadLaunchConfig(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadLaunchConfigRejectsInvalidWorkers(t *testing.T) {
	path := writeLaunchConfig(t, `
workers = 0
`)

	if _, err := loadLaunchConfig(path); err == nil {
		t.Fatalf("expected validation error")
	}
}
