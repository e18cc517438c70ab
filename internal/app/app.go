// Package app wires configuration, clients and services into a runnable scraper.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"github.com/Lllllllleong/secfilingflow/internal/api"
	"github.com/Lllllllleong/secfilingflow/internal/config"
	"github.com/Lllllllleong/secfilingflow/internal/extractor"
	"github.com/Lllllllleong/secfilingflow/internal/gcp"
	"github.com/Lllllllleong/secfilingflow/internal/metrics"
	"github.com/Lllllllleong/secfilingflow/internal/services"
	"github.com/Lllllllleong/secfilingflow/internal/store"
	"github.com/Lllllllleong/secfilingflow/internal/validation"
	"github.com/prometheus/client_golang/prometheus"
)

// Version is reported by the root endpoint. Set at build time with -ldflags.
var Version = "dev"

// App holds the wired components.
type App struct {
	Config  *config.Config
	Store   store.Store
	Scraper *services.ExtractionFunction
	Server  *api.Server
	Metrics *metrics.Metrics

	closers []func() error
}

// ConfigureLogging installs a JSON slog handler at the configured level.
func ConfigureLogging(cfg *config.Config) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
}

// New builds every component described by cfg. Close releases the clients.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	reg := prometheus.NewRegistry()
	a.Metrics = metrics.New(reg)

	st, err := a.newStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = st

	ext, err := a.newExtractor(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	var notifier services.SessionNotifier
	if cfg.WorkflowID != "" {
		client, err := gcp.NewExecutionsClient(ctx)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		notifier, err = services.NewWorkflowNotifier(client, cfg.ProjectID, cfg.WorkflowLocation, cfg.WorkflowID)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	a.Scraper, err = services.NewExtraction(services.ExtractionDeps{
		Extractor: ext,
		Store:     st,
		Validator: validation.NewValidator(nil),
		Metrics:   a.Metrics,
		Notifier:  notifier,
	}, services.ExtractionConfig{
		DisplayLimit:   cfg.DisplayLimit,
		Concurrency:    cfg.ExtractionConcurrency,
		SectionTimeout: cfg.SectionTimeout,
		CommitTimeout:  cfg.CommitTimeout,
		AllowedHosts:   cfg.AllowedHosts,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Server, err = api.NewServer(a.Scraper, st, a.Metrics.Handler(), &api.Config{
		Port:         cfg.Port,
		Version:      Version,
		DisplayLimit: cfg.DisplayLimit,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	slog.Info("Scraper initialised.",
		"storeBackend", cfg.StoreBackend,
		"extractorProvider", cfg.ExtractorProvider,
		"contentArchive", cfg.ContentBucket != "",
		"workflowNotifier", notifier != nil,
	)
	return a, nil
}

func (a *App) newStore(ctx context.Context) (store.Store, error) {
	cfg := a.Config
	if cfg.StoreBackend == config.StoreMemory {
		return store.NewMemoryStore(), nil
	}

	fsClient, err := gcp.NewFirestoreClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, fsClient.Close)

	fsConfig := store.FirestoreConfig{
		Collection:  cfg.FilingsCollection,
		InlineLimit: cfg.ContentInlineLimit,
	}
	if cfg.ContentBucket != "" {
		storageClient, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		a.closers = append(a.closers, storageClient.Close)
		archive, err := store.NewGCSArchive(storageClient, cfg.ContentBucket)
		if err != nil {
			return nil, err
		}
		fsConfig.Archive = archive
	}
	fsStore, err := store.NewFirestoreStore(fsClient, fsConfig)
	if err != nil {
		return nil, err
	}
	return fsStore, nil
}

func (a *App) newExtractor(ctx context.Context) (extractor.Extractor, error) {
	cfg := a.Config
	switch cfg.ExtractorProvider {
	case config.ExtractorVertex:
		vertexClient, err := gcp.NewVertexClient(ctx, cfg.ProjectID, cfg.VertexAIRegion, cfg.VertexModel)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, vertexClient.Close)
		ext, err := extractor.NewVertexExtractor(vertexClient)
		if err != nil {
			return nil, err
		}
		return ext, nil
	default:
		// Section timeouts bound each call; the client timeout is a backstop.
		httpClient := &http.Client{Timeout: cfg.SectionTimeout + 5*time.Second}
		ext, err := extractor.NewSECAPIExtractor(cfg.SECAPIKey, cfg.SECAPIBaseURL, httpClient)
		if err != nil {
			return nil, err
		}
		return ext, nil
	}
}

// Close releases every client in reverse creation order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
