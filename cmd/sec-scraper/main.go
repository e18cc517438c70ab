package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/Lllllllleong/secfilingflow/internal/app"
	"github.com/Lllllllleong/secfilingflow/internal/config"
	cloudevents "github.com/cloudevents/sdk-go/v2"
)

var (
	scraperApp *app.App
	once       sync.Once
	initErr    error
)

func init() {
	// --- Set up structured logging ---
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// "HandleSECScraper" and "ExtractOnMessage" are the entry point names configured in GCP.
	functions.HTTP("HandleSECScraper", handleSECScraper)
	functions.CloudEvent("ExtractOnMessage", extractOnMessage)
}

// main runs the Functions Framework locally; deployed functions only use init.
func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := funcframework.Start(port); err != nil {
		slog.Error("Functions Framework exited", "error", err)
		os.Exit(1)
	}
}

// initialize loads configuration and wires the scraper exactly once per instance.
func initialize() error {
	once.Do(func() {
		var cfg *config.Config
		cfg, initErr = config.Load()
		if initErr != nil {
			return
		}
		app.ConfigureLogging(cfg)
		scraperApp, initErr = app.New(context.Background(), cfg)
	})
	return initErr
}

// handleSECScraper serves the whole HTTP API through one function.
func handleSECScraper(w http.ResponseWriter, r *http.Request) {
	if err := initialize(); err != nil {
		slog.Error("Critical: scraper initialization failed", "error", err)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}
	scraperApp.Server.Handler().ServeHTTP(w, r)
}

// extractOnMessage runs one extraction session per Pub/Sub message.
func extractOnMessage(ctx context.Context, e cloudevents.Event) error {
	if err := initialize(); err != nil {
		slog.Error("Critical: scraper initialization failed", "error", err)
		return err
	}
	return scraperApp.Scraper.ProcessEvent(ctx, e)
}
