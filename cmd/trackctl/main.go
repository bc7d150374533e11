package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/movexa/trackctl/internal/launcher"
	"github.com/movexa/trackctl/internal/logging"
)

func main() {
	_ = godotenv.Load()
	logging.ConfigureRuntime()

	configPath := flag.String("config", "", "optional launcher config (TOML)")
	flag.Parse()

	cfg := launcher.DefaultConfig()
	if *configPath != "" {
		loaded, err := loadLaunchConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "trackctl: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	port, err := launcher.ResolvePort(os.Getenv(launcher.EnvPort))
	if err != nil {
		fmt.Fprintf(os.Stderr, "trackctl: %v\n", err)
		os.Exit(2)
	}

	code, err := launcher.New(cfg).Launch(port)
	if err != nil {
		fmt.Fprintf(os.Stderr, "trackctl: %v\n", err)
		if code == 0 {
			code = 1
		}
	}
	os.Exit(int(code))
}
