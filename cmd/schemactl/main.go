// schemactl creates or migrates the tracking database schema. The launcher
// runs it to completion before the server is allowed to start.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/movexa/trackctl/internal/config"
	"github.com/movexa/trackctl/internal/observability"
	"github.com/movexa/trackctl/internal/store"
)

func main() {
	_ = godotenv.Load()
	logger := observability.InitLogger("schemactl")

	if err := run(logger); err != nil {
		fmt.Fprintf(os.Stderr, "schemactl: %v\n", err)
		os.Exit(1)
	}
}

func run(logger zerolog.Logger) error {
	var (
		dbFile   = flag.String("db", config.DefaultDatabaseFile, "sqlite database file (ignored when DATABASE_URL is set)")
		reset    = flag.Bool("reset", false, "drop and recreate the schema")
		withDemo = flag.Bool("with-demo", true, "seed the demo shipment")
	)
	flag.Parse()

	dsn := os.Getenv(config.EnvDatabaseURL)
	if dsn == "" {
		dsn = *dbFile
	}

	st, err := store.Open(dsn)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	if *reset {
		logger.Warn().Msg("dropping existing tables")
		if err := st.Reset(ctx); err != nil {
			return err
		}
	}

	if err := st.Setup(ctx); err != nil {
		return err
	}
	logger.Info().Str("driver", string(st.Driver())).Msg("schema ready")

	if *withDemo {
		if err := st.SeedDemo(ctx, time.Now()); err != nil {
			return err
		}
		logger.Info().Msg("demo shipment present")
	}

	logger.Info().Msg("database setup complete")
	return nil
}
