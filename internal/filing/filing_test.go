package filing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID(t *testing.T) {
	t.Run("is deterministic", func(t *testing.T) {
		ref := "https://www.sec.gov/Archives/edgar/data/1318605/000156459021004599/tsla-10k_20201231.htm"
		assert.Equal(t, ID(ref), ID(ref))
		assert.Len(t, ID(ref), idLength)
	})

	t.Run("is stable across processes", func(t *testing.T) {
		// md5("https://www.sec.gov/test.htm") truncated to 12 hex characters.
		assert.Equal(t, "06ae161b5a42", ID("https://www.sec.gov/test.htm"))
	})

	t.Run("ignores surrounding whitespace", func(t *testing.T) {
		assert.Equal(t, ID("https://www.sec.gov/a.htm"), ID("  https://www.sec.gov/a.htm\n"))
	})

	t.Run("distinct references differ", func(t *testing.T) {
		seen := make(map[string]string)
		for _, ref := range []string{
			"https://www.sec.gov/a-10k.htm",
			"https://www.sec.gov/b-10k.htm",
			"https://www.sec.gov/a-10q.htm",
			"https://www.sec.gov/form8-k.htm",
		} {
			id := ID(ref)
			prev, dup := seen[id]
			require.False(t, dup, "collision between %s and %s", prev, ref)
			seen[id] = ref
		}
	})
}

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want Kind
	}{
		{"10-K non hyphenated", "https://www.sec.gov/Archives/edgar/data/1318605/000156459021004599/tsla-10k_20201231.htm", Kind10K},
		{"10-K hyphenated upper", "https://www.sec.gov/ACME-10-K.htm", Kind10K},
		{"10-Q", "https://www.sec.gov/Archives/edgar/data/1/aapl-10q_20230701.htm", Kind10Q},
		{"10-Q hyphenated", "https://www.sec.gov/x/10-Q.htm", Kind10Q},
		{"8-K", "https://www.sec.gov/Archives/edgar/data/66600/000149315222016468/form8-k.htm", Kind8K},
		{"8-K non hyphenated", "https://www.sec.gov/x/acme8K.htm", Kind8K},
		{"unrecognized falls back", "https://www.sec.gov/Archives/edgar/data/1318605/000095017022006034/tsla-20220331.htm", DefaultKind},
		{"empty falls back", "", DefaultKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectKind(tt.ref))
			assert.Equal(t, tt.want, DetectKind(tt.ref), "classification must be repeatable")
		})
	}
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind(" 10k ")
	assert.True(t, ok)
	assert.Equal(t, Kind10K, k)

	k, ok = ParseKind("8-K")
	assert.True(t, ok)
	assert.Equal(t, Kind8K, k)

	_, ok = ParseKind("S-1")
	assert.False(t, ok)
}

func TestSections(t *testing.T) {
	for _, kind := range Kinds() {
		assert.NotEmpty(t, Sections(kind), "kind %s", kind)
	}
	assert.Nil(t, Sections(Kind("S-1")))

	vocab := Vocabulary()
	assert.Len(t, vocab, 3)
	assert.Equal(t, "1A", vocab["10-K"][1].ID)

	// Callers must not be able to mutate the shared table.
	items := Sections(Kind10K)
	items[0].ID = "changed"
	assert.Equal(t, "1", Sections(Kind10K)[0].ID)
}

func TestCanonicalSectionID(t *testing.T) {
	tests := []struct {
		kind Kind
		id   string
		want string
	}{
		{Kind10K, "1a", "1A"},
		{Kind10K, "1A", "1A"},
		{Kind10K, "9b", "9B"},
		{Kind10Q, "PART2ITEM1A", "part2item1a"},
		{Kind8K, "Signature", "signature"},
		{Kind10K, "9z", "9z"},
		{Kind10K, "part2item1a", "part2item1a"},
		{Kind("S-1"), "1a", "1a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalSectionID(tt.kind, tt.id), "%s %s", tt.kind, tt.id)
	}
}
