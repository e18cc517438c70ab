package gcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"cloud.google.com/go/firestore"
)

// emulatorHostEnv is read by the Firestore client library itself.
const emulatorHostEnv = "FIRESTORE_EMULATOR_HOST"

// NewFirestoreClient opens the filing store for projectID. When
// FIRESTORE_EMULATOR_HOST is set the client talks to the local emulator, which
// the store tests and local `secscrape serve` runs rely on.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID is required for the firestore store backend")
	}

	if host := os.Getenv(emulatorHostEnv); host != "" {
		slog.Info("Using Firestore emulator.", "emulatorHost", host, "projectId", projectID)
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client for project %s: %w", projectID, err)
	}
	return client, nil
}
