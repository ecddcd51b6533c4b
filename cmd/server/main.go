// Package main provides the geomagnetic field API HTTP server.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"go.ngs.io/geomag-api/internal/adapter/geoid"
	"go.ngs.io/geomag-api/internal/adapter/store/shc"
	httpHandler "go.ngs.io/geomag-api/internal/http"
	"go.ngs.io/geomag-api/internal/logger"
	"go.ngs.io/geomag-api/internal/usecase"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("geomag-api version %s\n", version)
		return
	}

	_ = godotenv.Load(".env")
	l := logger.Setup()

	// Load configuration from environment.
	port := getEnv("PORT", "8080")
	modelsDir := getEnv("MODELS_DIR", "./data/models")
	geoidPath := getEnv("GEOID_EGM2008_PATH", "")

	cfg := usecase.DefaultConfig()
	cfg.DefaultModel = getEnv("DEFAULT_MODEL", cfg.DefaultModel)
	cfg.Strict = getEnvBool("STRICT_DATES", false)
	cfg.Workers = getEnvInt("WORKERS", cfg.Workers)

	l.Info("server_config",
		"version", version,
		"port", port,
		"models_dir", modelsDir,
		"default_model", cfg.DefaultModel,
		"strict_dates", cfg.Strict,
		"workers", cfg.Workers,
	)

	// Initialize stores.
	modelStore := shc.NewStore(modelsDir)
	if table, err := modelStore.Load(cfg.DefaultModel); err != nil {
		l.Error("model_load_error", "model", cfg.DefaultModel, "err", err)
	} else {
		l.Info("model_load_ok",
			"model", table.Name(),
			"first_epoch", table.FirstEpoch(),
			"last_epoch", table.LastEpoch(),
			"max_degree", table.MaxDegree(),
		)
	}

	// Initialize geoid store (optional, for MSL heights).
	var geoidLookup usecase.GeoidLookup
	if geoidPath != "" {
		geoidLookup = geoid.NewStore(geoidPath)
		l.Info("geoid_enabled", "path", geoidPath)
	} else {
		l.Info("geoid_disabled")
	}

	// Initialize use case.
	fieldUC := usecase.NewFieldUseCase(modelStore, geoidLookup, cfg)

	// Setup router.
	router := httpHandler.SetupRouter(fieldUC)

	// Start server.
	addr := fmt.Sprintf(":%s", port)
	l.Info("server_listen", "addr", addr)

	if err := router.Run(addr); err != nil {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Geomagnetic Field API Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  geomag-api [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES (also read from .env):")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  MODELS_DIR              Directory of SHC coefficient files (default: ./data/models)")
	fmt.Println("  DEFAULT_MODEL           Model used when a request names none (default: IGRF14)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println("  GEOID_EGM2008_PATH      Path to EGM2008 geoid NetCDF file (optional, enables height_ref=msl)")
	fmt.Println("  WORKERS                 Evaluation goroutines per request (default: GOMAXPROCS)")
	fmt.Println("  STRICT_DATES            Reject dates outside the model epochs (default: false)")
	fmt.Println("  LOG_LEVEL               debug, info, warn or error (default: info)")
	fmt.Println("  LOG_FORMAT              text or json (default: text)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start server with default settings")
	fmt.Println("  geomag-api")
	fmt.Println()
	fmt.Println("  # Start server on custom port with IGRF13 as default")
	fmt.Println("  PORT=3000 DEFAULT_MODEL=IGRF13 geomag-api")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET /health                    Health check")
	fmt.Println("  GET /v1/models                 List coefficient models")
	fmt.Println("  GET /v1/field                  Field at one date and position")
	fmt.Println("  GET /v1/field/series           Yearly field values at one position")
	fmt.Println("  GET /v1/field/grid             Field over a latitude/longitude grid")
	fmt.Println("  GET /metrics                   Prometheus metrics")
	fmt.Println()
}
