package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kadro/pricing-estimator/internal/api"
	"github.com/kadro/pricing-estimator/internal/catalog"
	"github.com/kadro/pricing-estimator/internal/storage"
	"github.com/kadro/pricing-estimator/pkg/config"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to optional config file (env vars take precedence)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	backend, err := storage.Open(cfg.Storage.Driver, cfg.Storage.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize %s storage: %v", cfg.Storage.Driver, err)
	}
	defer backend.Close()

	ctx := context.Background()
	cat, err := catalog.Open(ctx, backend)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	switch cfg.Server.GinMode {
	case gin.ReleaseMode, gin.DebugMode, gin.TestMode:
		gin.SetMode(cfg.Server.GinMode)
	default:
		log.Printf("Unknown GIN_MODE %q, defaulting to debug", cfg.Server.GinMode)
		gin.SetMode(gin.DebugMode)
	}

	router := api.SetupRouter(cat, cfg.Server.StaticDir)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting estimator server on %s", server.Addr)
		log.Printf("Storage: %s (%s)", cfg.Storage.Driver, cfg.Storage.DataDir)
		if cfg.Server.StaticDir != "" {
			log.Printf("Serving client app from %s", cfg.Server.StaticDir)
		}
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
