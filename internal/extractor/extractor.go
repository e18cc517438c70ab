// Package extractor fetches the text of one named section of an SEC filing
// from an external extraction provider.
package extractor

import (
	"context"
	"errors"
)

// ErrNoContent is returned when the provider answered but produced no text.
var ErrNoContent = errors.New("no content found")

// Extractor returns the plain text of one section of the filing at reference.
// An empty string with a nil error is a legitimate "section not present" answer.
type Extractor interface {
	Extract(ctx context.Context, reference, sectionID string) (string, error)
}

// Func adapts a plain function to the Extractor interface.
type Func func(ctx context.Context, reference, sectionID string) (string, error)

// Extract calls f.
func (f Func) Extract(ctx context.Context, reference, sectionID string) (string, error) {
	return f(ctx, reference, sectionID)
}
