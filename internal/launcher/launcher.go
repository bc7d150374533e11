// Package launcher implements the production boot sequence: run schema
// setup to completion, then hand the process over to the application
// server. There is no retry and no partial recovery; the first failing
// step aborts the launch and its exit code becomes the launcher's.
package launcher

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/movexa/trackctl/internal/tools"
)

const EnvPort = "PORT"

var (
	ErrPortRequired      = errors.New("launcher: PORT environment variable is required")
	ErrPortInvalid       = errors.New("launcher: PORT must be numeric in 1..65535")
	ErrSchemaSetupFailed = errors.New("launcher: schema setup failed")
	ErrServerExited      = errors.New("launcher: server exited")
)

// Config selects the two commands the launcher orchestrates.
type Config struct {
	SchemaCmd      string
	SchemaArgs     []string
	ServerCmd      string
	Workers        int
	TimeoutSeconds int
}

func DefaultConfig() Config {
	return Config{
		SchemaCmd:      "schemactl",
		ServerCmd:      "trackd",
		Workers:        4,
		TimeoutSeconds: 120,
	}
}

func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.SchemaCmd) == "" {
		return fmt.Errorf("launcher config missing schema command")
	}
	if strings.TrimSpace(cfg.ServerCmd) == "" {
		return fmt.Errorf("launcher config missing server command")
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("launcher config workers must be >= 1, got %d", cfg.Workers)
	}
	if cfg.TimeoutSeconds < 1 {
		return fmt.Errorf("launcher config timeout must be >= 1, got %d", cfg.TimeoutSeconds)
	}
	return nil
}

// ResolvePort validates the PORT environment value before anything is
// spawned, so a malformed bind address can never reach the server command.
func ResolvePort(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, ErrPortRequired
	}
	port, err := strconv.Atoi(trimmed)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("%w: %q", ErrPortInvalid, raw)
	}
	return port, nil
}

// Launcher runs the two-step boot sequence.
type Launcher struct {
	cfg    Config
	schema tools.CommandRunner
	server tools.ProcessRunner
}

func New(cfg Config) *Launcher {
	return NewWithRunners(cfg, tools.ExecRunner{}, tools.ExecRunner{})
}

func NewWithRunners(cfg Config, schema tools.CommandRunner, server tools.ProcessRunner) *Launcher {
	if schema == nil {
		schema = tools.ExecRunner{}
	}
	if server == nil {
		server = tools.ExecRunner{}
	}
	return &Launcher{cfg: cfg, schema: schema, server: server}
}

// ServerArgs builds the server command line for a validated port.
func (l *Launcher) ServerArgs(port int) []string {
	return []string{
		"--bind", fmt.Sprintf("0.0.0.0:%d", port),
		"--workers", strconv.Itoa(l.cfg.Workers),
		"--timeout", strconv.Itoa(l.cfg.TimeoutSeconds),
	}
}

// Launch executes schema setup, then the server. The returned exit code is
// the failing child's code, or the server's code once it terminates. The
// server is never started when schema setup fails.
func (l *Launcher) Launch(port int) (int32, error) {
	if err := ValidateConfig(l.cfg); err != nil {
		return 1, err
	}

	log.Info().
		Str("cmd", l.cfg.SchemaCmd).
		Strs("args", l.cfg.SchemaArgs).
		Msg("running schema setup")
	stdout, stderr, exitCode, err := l.schema.Run(l.cfg.SchemaCmd, l.cfg.SchemaArgs...)
	if err != nil {
		if exitCode == 0 {
			exitCode = 1
		}
		log.Error().
			Int32("exit", exitCode).
			Str("stdout", strings.TrimSpace(string(stdout))).
			Str("stderr", strings.TrimSpace(string(stderr))).
			Err(err).
			Msg("schema setup failed, aborting launch")
		return exitCode, fmt.Errorf("%w: %v", ErrSchemaSetupFailed, err)
	}
	log.Info().Msg("schema setup complete")

	args := l.ServerArgs(port)
	log.Info().
		Str("cmd", l.cfg.ServerCmd).
		Strs("args", args).
		Msg("starting server")
	exitCode, err = l.server.RunForeground(l.cfg.ServerCmd, args...)
	if err != nil {
		return exitCode, fmt.Errorf("%w: %v", ErrServerExited, err)
	}
	return exitCode, nil
}
