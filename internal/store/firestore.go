package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/secfilingflow/internal/models"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	sessionsCollection = "sessions"
	sectionsCollection = "sections"

	// DefaultFilingsCollection is the root collection name.
	DefaultFilingsCollection = "filings"

	archiveCleanupTimeout = 30 * time.Second
)

// FirestoreConfig configures a FirestoreStore.
type FirestoreConfig struct {
	Collection string
	// Archive receives bodies longer than InlineLimit bytes. When nil every
	// body is stored inline.
	Archive     ContentArchive
	InlineLimit int
}

// FirestoreStore keeps filings in Cloud Firestore:
//
//	filings/{filingId}/sessions/{sessionId}/sections/{sectionId}
type FirestoreStore struct {
	client *firestore.Client
	config FirestoreConfig
	now    func() time.Time
}

// NewFirestoreStore creates a store on an existing client.
func NewFirestoreStore(client *firestore.Client, config FirestoreConfig) (*FirestoreStore, error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client must be provided")
	}
	if config.Collection == "" {
		config.Collection = DefaultFilingsCollection
	}
	if config.InlineLimit <= 0 {
		config.InlineLimit = DefaultInlineLimit
	}
	return &FirestoreStore{client: client, config: config, now: time.Now}, nil
}

func (s *FirestoreStore) filingRef(filingID string) *firestore.DocumentRef {
	return s.client.Collection(s.config.Collection).Doc(filingID)
}

func (s *FirestoreStore) sessionRef(filingID, sessionID string) *firestore.DocumentRef {
	return s.filingRef(filingID).Collection(sessionsCollection).Doc(sessionID)
}

// Commit records one session inside a single transaction. Firestore retries
// the transaction on contention, so concurrent commits against one filing
// each observe the other's merged section set.
func (s *FirestoreStore) Commit(ctx context.Context, req CommitRequest) (*CommitResult, error) {
	plan, err := newCommitPlan(req, s.now())
	if err != nil {
		return nil, err
	}
	logCtx := slog.With("filingId", plan.filingID, "sessionId", plan.session.SessionID)

	archived, err := s.archiveLargeBodies(ctx, plan)
	if err != nil {
		logCtx.Error("Failed to archive section bodies", "error", err)
		discardArchived(ctx, s.config.Archive, archived)
		return nil, err
	}

	filingRef := s.filingRef(plan.filingID)
	sessionRef := filingRef.Collection(sessionsCollection).Doc(plan.session.SessionID)

	var result *CommitResult
	err = s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		prior, priorUnique, err := s.loadFilingTx(tx, filingRef)
		if err != nil {
			return err
		}

		updated := plan.filingUpdate(prior, priorUnique)
		if err := tx.Set(filingRef, filingFields(updated, prior == nil), firestore.MergeAll); err != nil {
			return fmt.Errorf("failed to upsert filing: %w", err)
		}
		if err := tx.Create(sessionRef, plan.session); err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		for _, rec := range plan.records {
			if err := tx.Create(sessionRef.Collection(sectionsCollection).Doc(rec.SectionID), rec); err != nil {
				return fmt.Errorf("failed to create section %s: %w", rec.SectionID, err)
			}
		}

		result = &CommitResult{
			NewFiling:          prior == nil,
			FilingID:           plan.filingID,
			SessionID:          plan.session.SessionID,
			SessionCount:       updated.SessionCount,
			UniqueSectionCount: updated.UniqueSectionCount,
		}
		return nil
	})
	if err != nil {
		logCtx.Error("Session commit failed", "error", err, "archivedObjects", archived)
		discardArchived(ctx, s.config.Archive, archived)
		return nil, fmt.Errorf("failed to commit session: %w", err)
	}

	logCtx.Info("Session committed.",
		"newFiling", result.NewFiling,
		"sessionCount", result.SessionCount,
		"uniqueSectionCount", result.UniqueSectionCount,
		"sectionCount", len(plan.records),
	)
	return result, nil
}

// loadFilingTx reads the filing and its unique-section set. Filings written
// before the set was persisted are reconciled from their section records.
func (s *FirestoreStore) loadFilingTx(tx *firestore.Transaction, filingRef *firestore.DocumentRef) (*models.Filing, []string, error) {
	snap, err := tx.Get(filingRef)
	if status.Code(err) == codes.NotFound {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read filing: %w", err)
	}

	var f models.Filing
	if err := snap.DataTo(&f); err != nil {
		return nil, nil, fmt.Errorf("failed to decode filing: %w", err)
	}
	// Firestore decodes an empty array as a nil slice, so the presence of the
	// field decides whether the persisted set can be trusted.
	_, fieldErr := snap.DataAt("uniqueSections")
	if !needsSectionScan(f.SessionCount, fieldErr == nil) {
		return &f, f.UniqueSections, nil
	}

	unique, err := scanSuccessfulSections(tx, filingRef)
	if err != nil {
		return nil, nil, err
	}
	return &f, unique, nil
}

// needsSectionScan reports whether a filing's unique-section set has to be
// rebuilt from its section records.
func needsSectionScan(sessionCount int, setPersisted bool) bool {
	return sessionCount > 0 && !setPersisted
}

// scanSuccessfulSections unions the successful section ids of every session.
func scanSuccessfulSections(tx *firestore.Transaction, filingRef *firestore.DocumentRef) ([]string, error) {
	sessions, err := tx.Documents(filingRef.Collection(sessionsCollection)).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	var ids []string
	for _, sess := range sessions {
		docs, err := tx.Documents(sess.Ref.Collection(sectionsCollection).Where("success", "==", true)).GetAll()
		if err != nil {
			return nil, fmt.Errorf("failed to list sections of session %s: %w", sess.Ref.ID, err)
		}
		for _, d := range docs {
			ids = append(ids, d.Ref.ID)
		}
	}
	return MergeUnique(nil, ids), nil
}

// filingFields is the merge payload; createdAt is written only on creation.
func filingFields(f models.Filing, created bool) map[string]interface{} {
	fields := map[string]interface{}{
		"filingId":           f.FilingID,
		"filingUrl":          f.FilingURL,
		"filingType":         f.FilingType,
		"lastUpdated":        f.LastUpdated,
		"latestSessionId":    f.LatestSessionID,
		"sessionCount":       f.SessionCount,
		"uniqueSections":     f.UniqueSections,
		"uniqueSectionCount": f.UniqueSectionCount,
	}
	if created {
		fields["createdAt"] = f.CreatedAt
	}
	return fields
}

// archiveLargeBodies moves oversized bodies to the archive and returns the URIs
// written, including those written before a failure.
func (s *FirestoreStore) archiveLargeBodies(ctx context.Context, plan *commitPlan) ([]string, error) {
	if s.config.Archive == nil {
		return nil, nil
	}
	var uris []string
	for i := range plan.records {
		rec := &plan.records[i]
		if !rec.Success || len(rec.Content) <= s.config.InlineLimit {
			continue
		}
		uri, err := s.config.Archive.Put(ctx, plan.filingID, plan.session.SessionID, rec.SectionID, rec.Content)
		if err != nil {
			return uris, err
		}
		uris = append(uris, uri)
		rec.ContentURI = uri
		rec.Content = ""
	}
	return uris, nil
}

// discardArchived deletes bodies archived for a session that was never
// committed. It runs detached from ctx, which may already be done.
func discardArchived(ctx context.Context, archive ContentArchive, uris []string) {
	if archive == nil || len(uris) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveCleanupTimeout)
	defer cancel()
	for _, uri := range uris {
		if err := archive.Delete(ctx, uri); err != nil {
			slog.Warn("Failed to delete orphaned section body", "uri", uri, "error", err)
		}
	}
}

// ListFilings returns filings, most recently active first.
func (s *FirestoreStore) ListFilings(ctx context.Context, limit int) ([]models.Filing, error) {
	it := s.client.Collection(s.config.Collection).
		OrderBy("lastUpdated", firestore.Desc).
		Limit(clampLimit(limit)).
		Documents(ctx)
	defer it.Stop()

	var out []models.Filing
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list filings: %w", err)
		}
		var f models.Filing
		if err := doc.DataTo(&f); err != nil {
			return nil, fmt.Errorf("failed to decode filing %s: %w", doc.Ref.ID, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// ListSessions returns the sessions of a filing, most recent first.
func (s *FirestoreStore) ListSessions(ctx context.Context, filingID string, limit int) ([]models.Session, error) {
	if err := s.exists(ctx, s.filingRef(filingID)); err != nil {
		return nil, err
	}

	it := s.filingRef(filingID).Collection(sessionsCollection).
		OrderBy("createdAt", firestore.Desc).
		Limit(clampLimit(limit)).
		Documents(ctx)
	defer it.Stop()

	var out []models.Session
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list sessions of %s: %w", filingID, err)
		}
		var sess models.Session
		if err := doc.DataTo(&sess); err != nil {
			return nil, fmt.Errorf("failed to decode session %s: %w", doc.Ref.ID, err)
		}
		out = append(out, sess)
	}
	return out, nil
}

// ListSections returns the section records of one session ordered by id.
// Archived bodies are not resolved here; use GetSection for full content.
func (s *FirestoreStore) ListSections(ctx context.Context, filingID, sessionID string) ([]models.SectionRecord, error) {
	sessionRef := s.sessionRef(filingID, sessionID)
	if err := s.exists(ctx, sessionRef); err != nil {
		return nil, err
	}

	it := sessionRef.Collection(sectionsCollection).Documents(ctx)
	defer it.Stop()

	var out []models.SectionRecord
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list sections of %s/%s: %w", filingID, sessionID, err)
		}
		var rec models.SectionRecord
		if err := doc.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode section %s: %w", doc.Ref.ID, err)
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SectionID < out[j].SectionID })
	return out, nil
}

// GetSection returns one section record with its full content.
func (s *FirestoreStore) GetSection(ctx context.Context, filingID, sessionID, sectionID string) (*models.SectionRecord, error) {
	snap, err := s.sessionRef(filingID, sessionID).Collection(sectionsCollection).Doc(sectionID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("section %s/%s/%s: %w", filingID, sessionID, sectionID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read section: %w", err)
	}

	var rec models.SectionRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode section: %w", err)
	}
	if rec.ContentURI != "" && s.config.Archive != nil {
		content, err := s.config.Archive.Get(ctx, rec.ContentURI)
		if err != nil {
			return nil, fmt.Errorf("failed to load archived content: %w", err)
		}
		rec.Content = content
	}
	return &rec, nil
}

// Ping issues a minimal query against the filings collection.
func (s *FirestoreStore) Ping(ctx context.Context) error {
	_, err := s.client.Collection(s.config.Collection).Limit(1).Documents(ctx).GetAll()
	return err
}

func (s *FirestoreStore) exists(ctx context.Context, ref *firestore.DocumentRef) error {
	_, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s: %w", ref.Path, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", ref.Path, err)
	}
	return nil
}
