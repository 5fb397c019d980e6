package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/kadro/pricing-estimator/internal/client"
	"github.com/kadro/pricing-estimator/internal/tui"
	"github.com/kadro/pricing-estimator/pkg/config"
)

func main() {
	var configPath, baseURL string
	flag.StringVar(&configPath, "config", "", "Path to optional config file (env vars take precedence)")
	flag.StringVar(&baseURL, "url", "", "Estimator server URL (overrides ESTIMATOR_URL)")
	flag.Parse()

	// The TUI owns the terminal, so a missing .env is not worth reporting.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if baseURL == "" {
		baseURL = cfg.Client.BaseURL
	}

	if err := tui.Run(client.New(baseURL)); err != nil {
		fmt.Fprintf(os.Stderr, "estimator: %v\n", err)
		os.Exit(1)
	}
}
