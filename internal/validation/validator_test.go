package validation

import (
	"testing"

	"github.com/Lllllllleong/secfilingflow/internal/filing"
	"github.com/stretchr/testify/assert"
)

func TestValidator_Validate(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		name    string
		text    string
		section string
		kind    filing.Kind
		want    bool
	}{
		{"risk factors header", "ITEM 1A. RISK FACTORS\nOur business is subject to...", "1A", filing.Kind10K, true},
		{"lower case text still matches", "item 1a. risk factors", "1A", filing.Kind10K, true},
		{"lower case section id", "ITEM 1A. Risk Factors", "1a", filing.Kind10K, true},
		{"mdna returned for 1A", "ITEM 7. MANAGEMENT'S DISCUSSION AND ANALYSIS", "1A", filing.Kind10K, false},
		{"item 1 does not match item 1A", "ITEM 1A. Something", "1", filing.Kind10K, false},
		{"item 7 does not match item 7A", "ITEM 7A. Market risk", "7", filing.Kind10K, false},
		{"item 7 with curly apostrophe", "Management’s Discussion and Analysis", "7", filing.Kind10K, true},
		{"8-K earnings", "Item 2.02 Results of Operations and Financial Condition", "2-2", filing.Kind8K, true},
		{"8-K wrong item", "Item 9.01 Financial Statements and Exhibits", "2-2", filing.Kind8K, false},
		{"10-Q risk factors", "Part II. Item 1A. Risk Factors", "part2item1a", filing.Kind10Q, true},
		{"no rule is permissive", "anything at all", "9Z", filing.Kind10K, true},
		{"no rule for kind is permissive", "anything", "3-1", filing.Kind8K, true},
		{"empty never validates", "", "9Z", filing.Kind10K, false},
		{"whitespace never validates", " \n\t ", "1A", filing.Kind10K, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Validate(tt.text, tt.section, tt.kind))
		})
	}
}

func TestNewValidator_CustomRules(t *testing.T) {
	v := NewValidator(Rules{
		filing.Kind10K: {"x1": {"special marker"}},
	})

	assert.True(t, v.HasRule("X1", filing.Kind10K))
	assert.True(t, v.Validate("has a Special Marker inside", "x1", filing.Kind10K))
	assert.False(t, v.Validate("nothing relevant", "X1", filing.Kind10K))
	// Default rules are replaced, not merged.
	assert.False(t, v.HasRule("1A", filing.Kind10K))
	assert.True(t, v.Validate("ITEM 7.", "1A", filing.Kind10K))
}
