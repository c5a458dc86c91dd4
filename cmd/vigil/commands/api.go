package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/hseo/vigil/internal/api"
	"github.com/hseo/vigil/internal/api/handlers"
	"github.com/hseo/vigil/internal/assessment"
	"github.com/hseo/vigil/internal/dqsi"
	"github.com/hseo/vigil/pkg/config"
	"github.com/hseo/vigil/pkg/database"
	"github.com/hseo/vigil/pkg/logger"
	"github.com/hseo/vigil/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the DQSI API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                        - Health check
  POST /api/dqsi/assess               - Role-aware assessment
  POST /api/dqsi/fallback             - Degraded-mode assessment
  GET  /api/dqsi/assessments/latest   - Latest stored assessment
  GET  /api/dqsi/assessments          - Recent assessments
  GET  /api/dqsi/roles                - Configured role profiles
  GET  /api/dqsi/config               - Active scoring configuration

Example:
  go run ./cmd/vigil api
  go run ./cmd/vigil api --port 8084`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}
	if dqsiConfigFile != "" {
		cfg.DQSIConfigPath = dqsiConfigFile
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Load scoring configuration
	dqsiCfg, err := dqsi.Load(cfg.DQSIConfigPath)
	if err != nil {
		return fmt.Errorf("load dqsi config: %w", err)
	}
	for _, w := range dqsi.Warn(dqsiCfg) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	calc := dqsi.NewCalculator(dqsiCfg)
	log.WithField("config_hash", calc.ConfigHash()).Info("DQSI configuration loaded")

	// 4. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	log.Info("Connected to database")

	repo := assessment.NewRepository(db.Pool)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = repo.EnsureSchema(ctx)
	cancel()
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	// 5. Connect to redis (optional)
	redisClient, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, caching disabled")
	}
	var cache *redis.Cache
	if redisClient != nil {
		defer redisClient.Close()
		cache = redis.NewCache(redisClient, "vigil")
	}

	// 6. Create handler, router, server
	dqsiHandler := handlers.NewDQSIHandler(calc, repo, cache, log)
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	router := api.NewRouter(dqsiHandler, log, limiter)
	server := api.New(cfg, log, router)

	// 7. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
