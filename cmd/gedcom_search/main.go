package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gcbaptista/gedcom-search/api"
	"github.com/gcbaptista/gedcom-search/config"
	"github.com/gcbaptista/gedcom-search/internal/engine"
	logpkg "github.com/gcbaptista/gedcom-search/internal/logger"
	"github.com/gcbaptista/gedcom-search/internal/metrics"
	"github.com/gcbaptista/gedcom-search/internal/persistence"
	"github.com/gcbaptista/gedcom-search/internal/version"
	"github.com/gcbaptista/gedcom-search/services"
)

const (
	maxRequestBodySize = 32 << 20
	shutdownTimeout    = 10 * time.Second
)

func main() {
	// Define command-line flags
	var (
		help         = flag.Bool("help", false, "Show help message")
		showVersion  = flag.Bool("version", false, "Show version information")
		port         = flag.String("port", "8080", "Port to run the server on")
		dataDir      = flag.String("data-dir", "./search_data", "Directory to store records and weight updates (empty = in memory)")
		settingsPath = flag.String("settings", "", "Engine settings file (YAML)")
		weightsPath  = flag.String("weights", "", "Weight override file (YAML or JSON)")
		recordsPath  = flag.String("records", "", "Records file to import (YAML or JSON)")
		query        = flag.String("query", "", "Run one search, print the result as JSON and exit")
		limit        = flag.Int("limit", 0, "Number of results for -query (default from settings)")
		env          = flag.String("env", "dev", "Logging environment: prod, dev or test")
		logLevel     = flag.String("log-level", "", "Log level override: debug, info, warn, error")
	)

	flag.Parse()

	if *help {
		fmt.Printf("GEDCOM Search - fuzzy and phonetic search over genealogical records\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s                                        # Start server on default port 8080\n", os.Args[0])
		fmt.Printf("  %s --port 9000 --weights weights.yaml     # Custom port and weights\n", os.Args[0])
		fmt.Printf("  %s --records tree.json --query \"jon smith\" # One-off search, no server\n", os.Args[0])
		return
	}

	if *showVersion {
		fmt.Printf("GEDCOM Search %s (%s)\n", version.Version, version.Commit)
		return
	}

	logger, err := logpkg.NewLogger(*env, *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	settings := config.EngineSettings{}
	if *settingsPath != "" {
		settings, err = config.LoadEngineSettings(*settingsPath)
		if err != nil {
			logger.Fatal("Failed to load settings", zap.Error(err))
		}
	}
	if *weightsPath != "" {
		settings.WeightsFile = *weightsPath
	}

	if *query != "" {
		if err := runQuery(logger, settings, *recordsPath, *query, *limit); err != nil {
			logger.Fatal("Search failed", zap.Error(err))
		}
		return
	}

	metrics.Register()

	searchEngine, err := engine.NewEngine(*dataDir, settings, logger)
	if err != nil {
		logger.Fatal("Failed to create engine", zap.Error(err))
	}
	defer searchEngine.Close()
	if *recordsPath != "" {
		if err := importRecords(searchEngine, *recordsPath); err != nil {
			logger.Fatal("Failed to import records", zap.Error(err))
		}
		logger.Info("Records imported", zap.String("path", *recordsPath))
	}

	if *env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.CORSMiddleware(), api.RequestSizeLimitMiddleware(maxRequestBodySize))
	api.SetupRoutes(router, searchEngine, searchEngine.Settings(), logger)

	srv := &http.Server{
		Addr:              ":" + *port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr), zap.String("version", version.Version))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
}

// runQuery searches an in-memory engine loaded from recordsPath and prints
// the result to stdout.
func runQuery(logger *zap.Logger, settings config.EngineSettings, recordsPath, queryString string, limit int) error {
	if recordsPath == "" {
		return fmt.Errorf("-query needs -records")
	}

	searchEngine, err := engine.NewEngine("", settings, logger)
	if err != nil {
		return err
	}
	defer searchEngine.Close()
	if err := importRecords(searchEngine, recordsPath); err != nil {
		return err
	}

	if limit == 0 {
		limit = searchEngine.Settings().DefaultResultsLimit
	}
	result, err := searchEngine.Search(context.Background(), services.SearchQuery{QueryString: queryString, Limit: limit})
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func importRecords(searchEngine *engine.Engine, path string) error {
	records, err := persistence.LoadRecordFile(path)
	if err != nil {
		return err
	}
	return searchEngine.AddRecords(records)
}
