package store

import (
	"strings"
	"testing"
	"time"

	"github.com/Lllllllleong/secfilingflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionID(t *testing.T) {
	t1 := time.Date(2026, 10, 18, 9, 30, 0, 123456000, time.UTC)
	t2 := t1.Add(time.Microsecond)

	id1 := NewSessionID(t1)
	id2 := NewSessionID(t2)
	assert.True(t, strings.HasPrefix(id1, "20261018T093000.123456Z-"))
	assert.Len(t, id1, len("20261018T093000.123456Z-")+8)
	assert.Less(t, id1, id2)
	assert.NotEqual(t, id1, NewSessionID(t1), "same instant must still be unique")
}

func TestMergeUnique(t *testing.T) {
	assert.Equal(t, []string{"1A", "2", "7"}, MergeUnique([]string{"7", "1A"}, []string{"2", "1A", "7"}))
	assert.Equal(t, []string{}, MergeUnique(nil, nil))
}

func TestValidateSectionID(t *testing.T) {
	for _, id := range []string{"1A", "part2item1a", "1-1", "signature"} {
		assert.NoError(t, ValidateSectionID(id), id)
	}
	for _, id := range []string{"", "  ", "a/b", ".", "..", strings.Repeat("x", 65)} {
		assert.ErrorIs(t, ValidateSectionID(id), ErrInvalidCommit, id)
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultPageSize, clampLimit(0))
	assert.Equal(t, DefaultPageSize, clampLimit(-3))
	assert.Equal(t, 7, clampLimit(7))
	assert.Equal(t, MaxPageSize, clampLimit(MaxPageSize+1))
}

func TestNewCommitPlan(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.FixedZone("EST", -5*3600))
	plan, err := newCommitPlan(CommitRequest{
		FilingURL: " https://www.sec.gov/x/form8-k.htm ",
		Requested: []string{"2-2", "9-1", "2-2"},
		Outcomes: []models.SectionOutcome{
			{SectionID: "2-2", Success: true, Content: "Item 2.02 Résultats"},
			{SectionID: "9-1", Error: "no content found"},
			{SectionID: "2-2", Success: true, Content: "Item 2.02 Results"},
		},
	}, now)
	require.NoError(t, err)

	assert.Equal(t, "8-K", plan.session.FilingType, "kind is detected when not supplied")
	assert.Equal(t, "https://www.sec.gov/x/form8-k.htm", plan.session.FilingURL)
	assert.Equal(t, time.UTC, plan.now.Location())
	require.Len(t, plan.records, 2)
	assert.Equal(t, "2-2", plan.records[0].SectionID)
	assert.Equal(t, "Item 2.02 Results", plan.records[0].Content)
	assert.Equal(t, 17, plan.records[0].ContentLength)
	assert.Equal(t, "no content found", plan.records[1].Error)
	assert.Equal(t, []string{"2-2"}, plan.successIDs)
	assert.Equal(t, 1, plan.session.SuccessCount)
	assert.Equal(t, 1, plan.session.FailureCount)
	assert.Equal(t, []string{"2-2", "9-1", "2-2"}, plan.session.RequestedSections)

	created := plan.filingUpdate(nil, nil)
	assert.Equal(t, 1, created.SessionCount)
	assert.Equal(t, plan.now, created.CreatedAt)

	prior := models.Filing{CreatedAt: now.Add(-time.Hour), SessionCount: 4}
	merged := plan.filingUpdate(&prior, []string{"1-1", "2-2"})
	assert.Equal(t, 5, merged.SessionCount)
	assert.Equal(t, prior.CreatedAt, merged.CreatedAt)
	assert.Equal(t, []string{"1-1", "2-2"}, merged.UniqueSections)
	assert.Equal(t, 2, merged.UniqueSectionCount)
}
