// Command analyze runs the two-phase verse-analysis generation pipeline
// over the configured surah range. Every phase step is checkpointed, so
// interrupting and re-running the command is always safe: completed work is
// never regenerated.
//
// Configuration comes from CONFIG_PATH (or -config) plus environment
// overrides; see internal/config.
//
// Exit codes: 0 = every verse completed or was already done,
// 1 = setup error or at least one verse failed (see analysis/_errors.log).
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/saifaddin/tadabbur-backend/internal/app"
	"github.com/saifaddin/tadabbur-backend/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (overrides CONFIG_PATH)")
	flag.Parse()

	// Bootstrap logger for failures before the configured logger exists.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *configPath != "" {
		if err := os.Setenv("CONFIG_PATH", *configPath); err != nil {
			logger.Error("set config path", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger = app.NewLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("build application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer application.Close()

	summary, err := application.Pipeline.Run(ctx, cfg.Range.StartSurah, cfg.Range.EndSurah)
	if err != nil {
		logger.Error("run aborted", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if summary.Failed > 0 {
		logger.Error("run finished with failures",
			slog.Int("failed", summary.Failed),
			slog.String("hint", "see analysis/_errors.log, then re-run to retry failed verses"),
		)
		os.Exit(1)
	}
}
