// Package services runs extraction sessions and reacts to committed ones.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Lllllllleong/secfilingflow/internal/extractor"
	"github.com/Lllllllleong/secfilingflow/internal/filing"
	"github.com/Lllllllleong/secfilingflow/internal/metrics"
	"github.com/Lllllllleong/secfilingflow/internal/models"
	"github.com/Lllllllleong/secfilingflow/internal/store"
	"github.com/Lllllllleong/secfilingflow/internal/validation"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultDisplayLimit is the number of characters kept in a display copy.
	DefaultDisplayLimit = 500
	// MaxSectionsPerRequest keeps one session inside a single Firestore transaction.
	MaxSectionsPerRequest = 100

	ellipsis = "..."

	errMismatchedContent = "provider returned mismatched section content"
)

// ErrInvalidRequest is returned by Process for requests that are rejected
// before any extraction is attempted.
var ErrInvalidRequest = errors.New("invalid request")

// ExtractionConfig holds the tunables of the extraction service.
type ExtractionConfig struct {
	DisplayLimit   int
	Concurrency    int
	SectionTimeout time.Duration
	CommitTimeout  time.Duration
	// AllowedHosts restricts filing URLs. Empty allows any host.
	AllowedHosts []string
}

// ExtractionDeps are the collaborators of the extraction service. Metrics and
// Notifier are optional.
type ExtractionDeps struct {
	Extractor extractor.Extractor
	Store     store.Store
	Validator *validation.Validator
	Metrics   *metrics.Metrics
	Notifier  SessionNotifier
}

// ExtractionFunction runs one extraction session: it extracts and validates
// each requested section, then records the run in the store.
type ExtractionFunction struct {
	extractor extractor.Extractor
	store     store.Store
	validator *validation.Validator
	metrics   *metrics.Metrics
	notifier  SessionNotifier
	config    ExtractionConfig
}

// NewExtraction creates a new ExtractionFunction instance.
func NewExtraction(deps ExtractionDeps, config ExtractionConfig) (*ExtractionFunction, error) {
	if deps.Extractor == nil {
		return nil, fmt.Errorf("an extractor must be provided")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("a store must be provided")
	}
	if deps.Validator == nil {
		deps.Validator = validation.NewValidator(nil)
	}
	if config.DisplayLimit <= 0 {
		config.DisplayLimit = DefaultDisplayLimit
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	hosts := make([]string, 0, len(config.AllowedHosts))
	for _, h := range config.AllowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts = append(hosts, h)
		}
	}
	config.AllowedHosts = hosts

	return &ExtractionFunction{
		extractor: deps.Extractor,
		store:     deps.Store,
		validator: deps.Validator,
		metrics:   deps.Metrics,
		notifier:  deps.Notifier,
		config:    config,
	}, nil
}

// Process handles one scrape request. Per-section failures are reported in
// the results; a failed commit is reported through Saved and SaveError. The
// returned error is non-nil only for rejected requests.
func (f *ExtractionFunction) Process(ctx context.Context, req *models.ScrapeRequest) (*models.ScrapeResponse, error) {
	reference, kind, sections, err := f.validateRequest(req)
	if err != nil {
		return nil, err
	}

	logCtx := slog.With("filingUrl", reference, "filingType", kind)
	logCtx.Info("Starting extraction session.", "sectionCount", len(sections))

	outcomes := f.extractAll(ctx, logCtx, reference, kind, sections)

	resp := &models.ScrapeResponse{
		FilingURL:  reference,
		FilingType: string(kind),
		Results:    make([]models.SectionResult, len(outcomes)),
		Summary:    models.ScrapeSummary{Requested: len(outcomes)},
	}
	for i, o := range outcomes {
		resp.Results[i] = f.displayResult(o)
		if o.Success {
			resp.Summary.Succeeded++
		} else {
			resp.Summary.Failed++
		}
	}

	if err := ctx.Err(); err != nil {
		logCtx.Warn("Request cancelled before commit; session not saved.", "error", err)
		resp.SaveError = fmt.Sprintf("session not saved: %v", err)
		f.metrics.ObserveCommit(metrics.CommitSkipped, 0)
		return resp, nil
	}

	result, err := f.commit(ctx, store.CommitRequest{
		FilingURL:  reference,
		FilingType: kind,
		Requested:  sections,
		Outcomes:   outcomes,
	})
	if err != nil {
		logCtx.Error("Extraction finished but the session was not durably recorded", "error", err)
		resp.SaveError = fmt.Sprintf("session not saved: %v", err)
		return resp, nil
	}

	resp.FilingID = &result.FilingID
	resp.SessionID = &result.SessionID
	resp.NewFiling = result.NewFiling
	resp.Saved = true

	logCtx = logCtx.With("filingId", result.FilingID, "sessionId", result.SessionID)
	logCtx.Info("Extraction session complete.",
		"succeeded", resp.Summary.Succeeded,
		"failed", resp.Summary.Failed,
		"newFiling", result.NewFiling,
	)

	if f.notifier != nil {
		if err := f.notifier.SessionCommitted(ctx, models.SessionCommittedEvent{
			FilingID:           result.FilingID,
			SessionID:          result.SessionID,
			FilingURL:          reference,
			FilingType:         string(kind),
			SessionCount:       result.SessionCount,
			UniqueSectionCount: result.UniqueSectionCount,
		}); err != nil {
			logCtx.Error("Failed to notify session commit", "error", err)
		}
	}
	return resp, nil
}

// ProcessEvent handles a Pub/Sub message-published CloudEvent whose message
// data is a JSON scrape request. Malformed or rejected requests are logged
// and acknowledged; an unsaved session returns an error so the message is
// redelivered.
func (f *ExtractionFunction) ProcessEvent(ctx context.Context, e cloudevents.Event) error {
	logCtx := slog.With("eventId", e.ID(), "eventType", e.Type())

	var msg models.MessagePublishedData
	if err := e.DataAs(&msg); err != nil {
		logCtx.Error("Failed to decode event data", "error", err)
		return nil
	}
	var req models.ScrapeRequest
	if err := json.Unmarshal(msg.Message.Data, &req); err != nil {
		logCtx.Error("Failed to unmarshal scrape request from message", "error", err, "messageId", msg.Message.MessageID)
		return nil
	}

	resp, err := f.Process(ctx, &req)
	if errors.Is(err, ErrInvalidRequest) {
		logCtx.Warn("Dropping invalid scrape request", "error", err, "messageId", msg.Message.MessageID)
		return nil
	}
	if err != nil {
		return err
	}
	if !resp.Saved {
		return fmt.Errorf("session for %s was not saved: %s", resp.FilingURL, resp.SaveError)
	}
	return nil
}

func (f *ExtractionFunction) validateRequest(req *models.ScrapeRequest) (string, filing.Kind, []string, error) {
	if req == nil {
		return "", "", nil, fmt.Errorf("%w: empty request", ErrInvalidRequest)
	}
	reference := strings.TrimSpace(req.FilingURL)
	if reference == "" {
		return "", "", nil, fmt.Errorf("%w: filing_url is required", ErrInvalidRequest)
	}
	if len(req.Sections) == 0 {
		return "", "", nil, fmt.Errorf("%w: at least one section is required", ErrInvalidRequest)
	}
	if len(req.Sections) > MaxSectionsPerRequest {
		return "", "", nil, fmt.Errorf("%w: at most %d sections per request", ErrInvalidRequest, MaxSectionsPerRequest)
	}

	u, err := url.Parse(reference)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", "", nil, fmt.Errorf("%w: filing_url must be an http(s) URL", ErrInvalidRequest)
	}
	if !f.hostAllowed(u.Hostname()) {
		return "", "", nil, fmt.Errorf("%w: host %q is not an allowed SEC host", ErrInvalidRequest, u.Hostname())
	}

	// Ids are stored in the vocabulary's spelling so "1a" and "1A" are one section.
	kind := filing.DetectKind(reference)
	sections := make([]string, len(req.Sections))
	for i, s := range req.Sections {
		id := strings.TrimSpace(s)
		if err := store.ValidateSectionID(id); err != nil {
			return "", "", nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		sections[i] = filing.CanonicalSectionID(kind, id)
	}
	return reference, kind, sections, nil
}

func (f *ExtractionFunction) hostAllowed(host string) bool {
	if len(f.config.AllowedHosts) == 0 {
		return true
	}
	host = strings.ToLower(host)
	for _, h := range f.config.AllowedHosts {
		if host == h {
			return true
		}
	}
	return false
}

// extractAll processes every section with at most Concurrency provider calls
// in flight. Outcomes are indexed by request position.
func (f *ExtractionFunction) extractAll(ctx context.Context, logCtx *slog.Logger, reference string, kind filing.Kind, sections []string) []models.SectionOutcome {
	outcomes := make([]models.SectionOutcome, len(sections))

	var eg errgroup.Group
	eg.SetLimit(f.config.Concurrency)
	for i, sectionID := range sections {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				outcomes[i] = models.SectionOutcome{SectionID: sectionID, Error: err.Error()}
				return nil
			}
			outcomes[i] = f.extractSection(ctx, logCtx, reference, kind, sectionID)
			return nil
		})
	}
	_ = eg.Wait()
	return outcomes
}

func (f *ExtractionFunction) extractSection(ctx context.Context, logCtx *slog.Logger, reference string, kind filing.Kind, sectionID string) models.SectionOutcome {
	if f.config.SectionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.config.SectionTimeout)
		defer cancel()
	}

	start := time.Now()
	text, err := f.extractor.Extract(ctx, reference, sectionID)
	took := time.Since(start)

	out := models.SectionOutcome{SectionID: sectionID}
	switch {
	case err != nil && !errors.Is(err, extractor.ErrNoContent):
		logCtx.Warn("Section extraction failed", "sectionId", sectionID, "error", err)
		out.Error = err.Error()
		f.metrics.ObserveSection(string(kind), metrics.OutcomeError, took)
	case strings.TrimSpace(text) == "":
		logCtx.Info("Provider returned no content", "sectionId", sectionID)
		out.Error = extractor.ErrNoContent.Error()
		f.metrics.ObserveSection(string(kind), metrics.OutcomeEmpty, took)
	case !f.validator.Validate(text, sectionID, kind):
		logCtx.Warn("Provider content does not match the requested section", "sectionId", sectionID)
		out.Error = errMismatchedContent
		f.metrics.ObserveSection(string(kind), metrics.OutcomeMismatch, took)
	default:
		out.Success = true
		out.Content = text
		f.metrics.ObserveSection(string(kind), metrics.OutcomeSuccess, took)
	}
	return out
}

func (f *ExtractionFunction) commit(ctx context.Context, req store.CommitRequest) (*store.CommitResult, error) {
	if f.config.CommitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.config.CommitTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := f.store.Commit(ctx, req)
	if err != nil {
		f.metrics.ObserveCommit(metrics.CommitFailed, time.Since(start))
		return nil, err
	}
	f.metrics.ObserveCommit(metrics.CommitCommitted, time.Since(start))
	return result, nil
}

// displayResult builds the caller-facing copy of an outcome.
func (f *ExtractionFunction) displayResult(o models.SectionOutcome) models.SectionResult {
	if !o.Success {
		return models.SectionResult{SectionID: o.SectionID, Error: o.Error}
	}
	return models.SectionResult{
		SectionID:     o.SectionID,
		Success:       true,
		Content:       Truncate(o.Content, f.config.DisplayLimit),
		ContentLength: utf8.RuneCountInString(o.Content),
	}
}

// Truncate returns the first limit characters of s followed by "..." when s
// is longer than limit.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + ellipsis
		}
		n++
	}
	return s
}
