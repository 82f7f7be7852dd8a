package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saifaddin/tadabbur-backend/internal/adapter/llm"
	"github.com/saifaddin/tadabbur-backend/internal/adapter/storage"
	"github.com/saifaddin/tadabbur-backend/internal/app/analyzer"
	"github.com/saifaddin/tadabbur-backend/internal/config"
	"github.com/saifaddin/tadabbur-backend/internal/corpus"
)

// App is the composition root: the corpus, the store, the generation
// client, and the pipeline wired from one configuration.
type App struct {
	Library  *corpus.Library
	Store    storage.Store
	LLM      llm.Client
	Pipeline *analyzer.Pipeline
}

// Build constructs the application from configuration. The caller owns
// Close.
func Build(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	log.Info("building application",
		slog.String("version", BuildVersion()),
		slog.String("storage_backend", cfg.Storage.Backend),
		slog.String("llm_backend", cfg.LLM.Backend),
	)

	library := corpus.New(cfg.Corpus.Dir)

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("build storage: %w", err)
	}

	client, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build llm client: %w", err)
	}

	return &App{
		Library:  library,
		Store:    store,
		LLM:      client,
		Pipeline: analyzer.New(library, store, client, log),
	}, nil
}

// Close releases held resources.
func (a *App) Close() error {
	return a.Store.Close()
}
