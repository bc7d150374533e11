package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/movexa/trackctl/internal/auth"
	"github.com/movexa/trackctl/internal/config"
	"github.com/movexa/trackctl/internal/logging"
	"github.com/movexa/trackctl/internal/server"
	"github.com/movexa/trackctl/internal/store"
)

func main() {
	_ = godotenv.Load()
	logging.ConfigureRuntime()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "trackd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		bind       = flag.String("bind", "", "listen address (host:port)")
		workers    = flag.Int("workers", 0, "max concurrent requests")
		timeout    = flag.Int("timeout", 0, "request timeout in seconds")
		configPath = flag.String("config", "", "optional service config (TOML)")
	)
	flag.Parse()

	cfg := config.DefaultServiceConfig()
	if *configPath != "" {
		loaded, err := config.LoadServiceConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	config.ApplyEnv(&cfg)

	// Flags win over file and env; this is how the launcher hands down the
	// bind address, worker cap, and timeout.
	if *bind != "" {
		cfg.Bind = *bind
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *timeout > 0 {
		cfg.TimeoutSeconds = *timeout
	}
	if err := config.ValidateServiceConfig(cfg); err != nil {
		return err
	}

	admin := auth.FromEnv()
	if cfg.AdminUsername != "" {
		admin.Username = cfg.AdminUsername
	}
	if cfg.AdminPassword != "" {
		admin.Password = cfg.AdminPassword
	}

	st, err := store.Open(cfg.DSN())
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := server.New(server.Config{
		Name:        cfg.Name,
		Bind:        cfg.Bind,
		CorsOrigins: cfg.CorsOrigins,
		Workers:     cfg.Workers,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		Admin:       admin,
	}, st)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}
