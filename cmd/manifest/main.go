// Command manifest inspects or rebuilds the analysis manifest.
//
// By default it prints a summary of the stored manifest. With -rebuild it
// scans the artifact storage and regenerates the manifest from what is
// actually there — the recovery path when the manifest has drifted from
// storage (it is only ever a cache of that scan).
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/saifaddin/tadabbur-backend/internal/adapter/storage"
	"github.com/saifaddin/tadabbur-backend/internal/app"
	"github.com/saifaddin/tadabbur-backend/internal/app/analyzer"
	"github.com/saifaddin/tadabbur-backend/internal/config"
	"github.com/saifaddin/tadabbur-backend/internal/domain"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (overrides CONFIG_PATH)")
	rebuild := flag.Bool("rebuild", false, "rebuild the manifest from a storage scan")
	flag.Parse()

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
	ctx := context.Background()

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Error("build storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	tracker := analyzer.NewTracker(store)

	var m domain.Manifest
	if *rebuild {
		m, err = tracker.Rebuild(ctx)
		if err != nil {
			logger.Error("rebuild manifest", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("manifest rebuilt", slog.Int("verses", len(m.VerseIDs)))
	} else {
		m, err = tracker.Load(ctx)
		if err != nil {
			logger.Error("load manifest", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	fmt.Printf("verses: %d\n", len(m.VerseIDs))
	if len(m.VerseIDs) > 0 {
		fmt.Printf("first:  %s\n", m.VerseIDs[0])
		fmt.Printf("last:   %s\n", m.VerseIDs[len(m.VerseIDs)-1])
	}
	if !m.GeneratedAt.IsZero() {
		fmt.Printf("generated at: %s\n", m.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	}
}
