// Package store persists extraction sessions in a Filing -> Session -> Section
// hierarchy and keeps the per-filing set of successfully extracted sections.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Lllllllleong/secfilingflow/internal/filing"
	"github.com/Lllllllleong/secfilingflow/internal/models"
	"github.com/google/uuid"
)

const (
	// DefaultPageSize is used when a list call passes a non-positive limit.
	DefaultPageSize = 20
	// MaxPageSize bounds every list call.
	MaxPageSize = 100
)

var (
	// ErrNotFound is returned by read-back operations for missing records.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCommit is returned when a commit request cannot be stored.
	ErrInvalidCommit = errors.New("invalid commit request")
)

// Store is the durable Filing/Session/Section model.
type Store interface {
	// Commit atomically records one session under the filing of req.FilingURL.
	Commit(ctx context.Context, req CommitRequest) (*CommitResult, error)
	// ListFilings returns filings, most recently active first.
	ListFilings(ctx context.Context, limit int) ([]models.Filing, error)
	// ListSessions returns the sessions of a filing, most recent first.
	ListSessions(ctx context.Context, filingID string, limit int) ([]models.Session, error)
	// ListSections returns the section records of one session ordered by section id.
	ListSections(ctx context.Context, filingID, sessionID string) ([]models.SectionRecord, error)
	// GetSection returns one section record with its full content.
	GetSection(ctx context.Context, filingID, sessionID, sectionID string) (*models.SectionRecord, error)
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

// CommitRequest carries the outcome of one extraction run.
type CommitRequest struct {
	FilingURL  string
	FilingType filing.Kind
	// Requested is the caller's list, in order, duplicates included.
	Requested []string
	Outcomes  []models.SectionOutcome
}

// CommitResult identifies the committed session.
type CommitResult struct {
	NewFiling          bool
	FilingID           string
	SessionID          string
	SessionCount       int
	UniqueSectionCount int
}

// commitPlan is the backend independent part of a commit.
type commitPlan struct {
	filingID   string
	now        time.Time
	session    models.Session
	records    []models.SectionRecord
	successIDs []string
}

func newCommitPlan(req CommitRequest, now time.Time) (*commitPlan, error) {
	ref := strings.TrimSpace(req.FilingURL)
	if ref == "" {
		return nil, fmt.Errorf("%w: filing url is empty", ErrInvalidCommit)
	}
	kind := req.FilingType
	if kind == "" {
		kind = filing.DetectKind(ref)
	}
	now = now.UTC()

	records := make([]models.SectionRecord, 0, len(req.Outcomes))
	index := make(map[string]int, len(req.Outcomes))
	for _, o := range req.Outcomes {
		if err := ValidateSectionID(o.SectionID); err != nil {
			return nil, err
		}
		rec := models.SectionRecord{
			SectionID:   o.SectionID,
			Success:     o.Success,
			ExtractedAt: now,
		}
		if o.Success {
			rec.Content = o.Content
			rec.ContentLength = utf8.RuneCountInString(o.Content)
		} else {
			rec.Error = o.Error
		}
		// A repeated id overwrites the earlier record in place.
		if i, dup := index[o.SectionID]; dup {
			records[i] = rec
			continue
		}
		index[o.SectionID] = len(records)
		records = append(records, rec)
	}

	var successIDs []string
	var failed int
	for _, rec := range records {
		if rec.Success {
			successIDs = append(successIDs, rec.SectionID)
		} else {
			failed++
		}
	}

	filingID := filing.ID(ref)
	requested := make([]string, len(req.Requested))
	copy(requested, req.Requested)

	return &commitPlan{
		filingID: filingID,
		now:      now,
		session: models.Session{
			SessionID:         NewSessionID(now),
			FilingID:          filingID,
			FilingURL:         ref,
			FilingType:        string(kind),
			CreatedAt:         now,
			RequestedSections: requested,
			SuccessCount:      len(successIDs),
			FailureCount:      failed,
		},
		records:    records,
		successIDs: successIDs,
	}, nil
}

// filingUpdate is the merged filing state after this plan's session.
func (p *commitPlan) filingUpdate(prior *models.Filing, priorUnique []string) models.Filing {
	unique := MergeUnique(priorUnique, p.successIDs)
	f := models.Filing{
		FilingID:           p.filingID,
		FilingURL:          p.session.FilingURL,
		FilingType:         p.session.FilingType,
		CreatedAt:          p.now,
		LastUpdated:        p.now,
		LatestSessionID:    p.session.SessionID,
		SessionCount:       1,
		UniqueSections:     unique,
		UniqueSectionCount: len(unique),
	}
	if prior != nil {
		f.CreatedAt = prior.CreatedAt
		f.SessionCount = prior.SessionCount + 1
	}
	return f
}

// NewSessionID returns an identifier whose lexical order follows creation time.
func NewSessionID(createdAt time.Time) string {
	return createdAt.UTC().Format("20060102T150405.000000Z") + "-" + uuid.NewString()[:8]
}

// MergeUnique returns the sorted union of a and b without duplicates.
func MergeUnique(a, b []string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		set[s] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ValidateSectionID rejects ids that cannot be used as a document id.
func ValidateSectionID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("%w: empty section id", ErrInvalidCommit)
	case strings.Contains(id, "/"), id == ".", id == "..":
		return fmt.Errorf("%w: section id %q is not a valid document id", ErrInvalidCommit, id)
	case len(id) > 64:
		return fmt.Errorf("%w: section id %q is too long", ErrInvalidCommit, id)
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
