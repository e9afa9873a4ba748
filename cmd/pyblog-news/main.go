package main

import (
	"log"
	"os"

	"pyblog-news-parser/internal/app"
	"pyblog-news-parser/internal/browser"
	"pyblog-news-parser/internal/config"
	"pyblog-news-parser/internal/export"
	"pyblog-news-parser/internal/observability"
	"pyblog-news-parser/internal/scraper"
	"pyblog-news-parser/internal/storage"
	"pyblog-news-parser/internal/storage/mssql"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := "configs/config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return 1
	}

	logger := observability.NewLogger(cfg.Observability.LogPath, cfg.Observability.LogLevel)
	defer func() { _ = logger.Close() }()

	logger.Info("Starting Python Insider news parser",
		"config", configPath,
		"engine", cfg.Browser.Engine,
		"max_pages", cfg.Pagination.MaxPages,
	)

	// Загружаем селекторы
	profiles, err := cfg.LoadProfiles()
	if err != nil {
		logger.Error("Failed to load selectors", "error", err.Error())
		return 1
	}

	opener, err := browser.NewOpener(cfg.Browser.Engine, cfg.BrowserOptions())
	if err != nil {
		logger.Error("Failed to configure browser", "error", err.Error())
		return 1
	}

	sinks := []export.Sink{export.NewCSVSink(cfg.Output.CSVPath)}

	// БД опциональна, CSV пишется всегда
	if cfg.Storage.Enabled {
		repo, err := mssql.NewRepository(cfg.Storage.DSN, cfg.GetCommandTimeout(), logger)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err.Error())
			return 1
		}
		defer func() { _ = repo.Close() }()

		dp := scraper.NewDateParser(cfg.Output.UnknownDate)
		sinks = append(sinks, storage.NewRecordSink(repo, dp, logger))
	}

	runner := app.NewRunner(
		cfg,
		logger,
		opener,
		*profiles,
		sinks,
		export.NewTransfer(cfg.Output.TransferDir),
	)

	ctx, cancel := app.GracefulShutdown(logger, cfg.GetRunTimeout())
	defer cancel()

	res, err := runner.Run(ctx)
	if err != nil {
		logger.Error("Run failed", "error", err.Error())
		return 1
	}

	logger.Info("Run completed",
		"variant", res.Variant.String(),
		"records", len(res.Records),
		"pages", res.Stats.TotalPages,
		"stopped", res.Stats.StoppedReason,
		"csv", cfg.Output.CSVPath,
	)
	return 0
}
