// Package validation checks that text returned by an extraction provider
// plausibly belongs to the section that was requested.
package validation

import (
	"strings"

	"github.com/Lllllllleong/secfilingflow/internal/filing"
)

// Rules maps a filing kind and section id to header markers. Section ids are
// matched case-insensitively; markers must be upper case.
type Rules map[filing.Kind]map[string][]string

// Validator applies a rule table to extracted text.
type Validator struct {
	rules Rules
}

// NewValidator creates a Validator for rules. A nil table uses DefaultRules.
func NewValidator(rules Rules) *Validator {
	if rules == nil {
		rules = DefaultRules()
	}
	normalized := make(Rules, len(rules))
	for kind, sections := range rules {
		m := make(map[string][]string, len(sections))
		for id, markers := range sections {
			upper := make([]string, len(markers))
			for i, marker := range markers {
				upper[i] = strings.ToUpper(marker)
			}
			m[strings.ToUpper(id)] = upper
		}
		normalized[kind] = m
	}
	return &Validator{rules: normalized}
}

// Validate reports whether text looks like section sectionID of a filing of
// the given kind. Blank text never validates. Sections without a rule accept
// any non-blank text.
func (v *Validator) Validate(text, sectionID string, kind filing.Kind) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	markers, ok := v.rules[kind][strings.ToUpper(strings.TrimSpace(sectionID))]
	if !ok || len(markers) == 0 {
		return true
	}
	upper := strings.ToUpper(text)
	for _, marker := range markers {
		if strings.Contains(upper, marker) {
			return true
		}
	}
	return false
}

// HasRule reports whether the table holds explicit markers for the pair.
func (v *Validator) HasRule(sectionID string, kind filing.Kind) bool {
	_, ok := v.rules[kind][strings.ToUpper(strings.TrimSpace(sectionID))]
	return ok
}
