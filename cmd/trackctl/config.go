package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/movexa/trackctl/internal/launcher"
)

type fileConfig struct {
	SchemaCmd      string   `toml:"schema_cmd"`
	SchemaArgs     []string `toml:"schema_args"`
	ServerCmd      string   `toml:"server_cmd"`
	Workers        int      `toml:"workers"`
	Timeout        string   `toml:"timeout"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

func loadLaunchConfig(path string) (launcher.Config, error) {
	cfg := launcher.DefaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return launcher.Config{}, fmt.Errorf("load launcher config: %w", err)
	}

	if meta.IsDefined("schema_cmd") {
		if v := strings.TrimSpace(raw.SchemaCmd); v != "" {
			cfg.SchemaCmd = v
		}
	}

	if meta.IsDefined("schema_args") {
		cfg.SchemaArgs = normalizeArgs(raw.SchemaArgs)
	}

	if meta.IsDefined("server_cmd") {
		if v := strings.TrimSpace(raw.ServerCmd); v != "" {
			cfg.ServerCmd = v
		}
	}

	if meta.IsDefined("workers") {
		cfg.Workers = raw.Workers
	}

	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return launcher.Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.TimeoutSeconds = int(d / time.Second)
	}

	if meta.IsDefined("timeout_seconds") {
		cfg.TimeoutSeconds = raw.TimeoutSeconds
	}

	if err := launcher.ValidateConfig(cfg); err != nil {
		return launcher.Config{}, err
	}
	return cfg, nil
}

func normalizeArgs(in []string) []string {
	if len(in) == 0 {
		return []string{}
	}
	out := make([]string, 0, len(in))
	for _, arg := range in {
		v := strings.TrimSpace(arg)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
