package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Lllllllleong/secfilingflow/internal/models"
)

// CommitStage names a step of a staged in-memory commit.
type CommitStage string

const (
	StageFiling   CommitStage = "filing"
	StageSession  CommitStage = "session"
	StageSections CommitStage = "sections"
)

// MemoryStore is an in-process Store used for local runs and tests. Commits
// are serialized by a mutex and staged: nothing becomes visible unless every
// stage succeeds.
type MemoryStore struct {
	mu      sync.RWMutex
	filings map[string]*memFiling
	now     func() time.Time
	hook    func(CommitStage) error
}

type memFiling struct {
	filing   models.Filing
	sessions map[string]*memSession
}

type memSession struct {
	session  models.Session
	sections map[string]models.SectionRecord
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		filings: make(map[string]*memFiling),
		now:     time.Now,
	}
}

// SetClock overrides the time source.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// SetCommitHook installs a function called after each commit stage is
// staged. A non-nil error aborts the commit.
func (m *MemoryStore) SetCommitHook(hook func(CommitStage) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hook = hook
}

func (m *MemoryStore) stage(s CommitStage) error {
	if m.hook == nil {
		return nil
	}
	if err := m.hook(s); err != nil {
		return fmt.Errorf("commit aborted at %s stage: %w", s, err)
	}
	return nil
}

// Commit records one session.
func (m *MemoryStore) Commit(ctx context.Context, req CommitRequest) (*CommitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	plan, err := newCommitPlan(req, m.now())
	if err != nil {
		return nil, err
	}

	existing, found := m.filings[plan.filingID]
	var prior *models.Filing
	var priorUnique []string
	if found {
		prior = &existing.filing
		priorUnique = existing.filing.UniqueSections
	}

	updated := plan.filingUpdate(prior, priorUnique)
	if err := m.stage(StageFiling); err != nil {
		return nil, err
	}

	session := &memSession{session: plan.session, sections: make(map[string]models.SectionRecord, len(plan.records))}
	if err := m.stage(StageSession); err != nil {
		return nil, err
	}

	for _, rec := range plan.records {
		session.sections[rec.SectionID] = rec
	}
	if err := m.stage(StageSections); err != nil {
		return nil, err
	}

	if !found {
		existing = &memFiling{sessions: make(map[string]*memSession)}
		m.filings[plan.filingID] = existing
	}
	existing.filing = updated
	existing.sessions[plan.session.SessionID] = session

	return &CommitResult{
		NewFiling:          !found,
		FilingID:           plan.filingID,
		SessionID:          plan.session.SessionID,
		SessionCount:       updated.SessionCount,
		UniqueSectionCount: updated.UniqueSectionCount,
	}, nil
}

// GetFiling returns one filing record.
func (m *MemoryStore) GetFiling(_ context.Context, filingID string) (*models.Filing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.filings[filingID]
	if !ok {
		return nil, fmt.Errorf("filing %s: %w", filingID, ErrNotFound)
	}
	out := copyFiling(f.filing)
	return &out, nil
}

// ListFilings returns filings, most recently active first.
func (m *MemoryStore) ListFilings(_ context.Context, limit int) ([]models.Filing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Filing, 0, len(m.filings))
	for _, f := range m.filings {
		out = append(out, copyFiling(f.filing))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastUpdated.Equal(out[j].LastUpdated) {
			return out[i].LastUpdated.After(out[j].LastUpdated)
		}
		return out[i].FilingID < out[j].FilingID
	})
	if n := clampLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// ListSessions returns the sessions of a filing, most recent first.
func (m *MemoryStore) ListSessions(_ context.Context, filingID string, limit int) ([]models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.filings[filingID]
	if !ok {
		return nil, fmt.Errorf("filing %s: %w", filingID, ErrNotFound)
	}
	out := make([]models.Session, 0, len(f.sessions))
	for _, s := range f.sessions {
		sess := s.session
		sess.RequestedSections = append([]string(nil), s.session.RequestedSections...)
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].SessionID > out[j].SessionID
	})
	if n := clampLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// ListSections returns the section records of one session ordered by id.
func (m *MemoryStore) ListSections(_ context.Context, filingID, sessionID string) ([]models.SectionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, err := m.session(filingID, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]models.SectionRecord, 0, len(s.sections))
	for _, rec := range s.sections {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SectionID < out[j].SectionID })
	return out, nil
}

// GetSection returns one section record.
func (m *MemoryStore) GetSection(_ context.Context, filingID, sessionID, sectionID string) (*models.SectionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, err := m.session(filingID, sessionID)
	if err != nil {
		return nil, err
	}
	rec, ok := s.sections[sectionID]
	if !ok {
		return nil, fmt.Errorf("section %s/%s/%s: %w", filingID, sessionID, sectionID, ErrNotFound)
	}
	return &rec, nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) session(filingID, sessionID string) (*memSession, error) {
	f, ok := m.filings[filingID]
	if !ok {
		return nil, fmt.Errorf("filing %s: %w", filingID, ErrNotFound)
	}
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s/%s: %w", filingID, sessionID, ErrNotFound)
	}
	return s, nil
}

func copyFiling(f models.Filing) models.Filing {
	f.UniqueSections = append([]string(nil), f.UniqueSections...)
	return f
}
