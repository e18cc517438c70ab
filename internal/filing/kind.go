package filing

import "strings"

// Kind is the closed set of filing types the scraper understands.
type Kind string

const (
	Kind10K Kind = "10-K"
	Kind10Q Kind = "10-Q"
	Kind8K  Kind = "8-K"

	// DefaultKind is returned when a reference matches no pattern.
	DefaultKind = Kind10K
)

// kindPatterns is tested in order; the first kind with a matching variant wins.
var kindPatterns = []struct {
	kind     Kind
	variants []string
}{
	{Kind10K, []string{"10-k", "10k"}},
	{Kind10Q, []string{"10-q", "10q"}},
	{Kind8K, []string{"8-k", "8k"}},
}

// Kinds lists every supported kind in detection order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindPatterns))
	for _, p := range kindPatterns {
		kinds = append(kinds, p.kind)
	}
	return kinds
}

// DetectKind classifies a filing reference. It never fails: unrecognized
// references yield DefaultKind.
func DetectKind(reference string) Kind {
	lower := strings.ToLower(reference)
	for _, p := range kindPatterns {
		for _, v := range p.variants {
			if strings.Contains(lower, v) {
				return p.kind
			}
		}
	}
	return DefaultKind
}

// ParseKind maps a user supplied kind name such as "10k" or "8-K" onto a Kind.
func ParseKind(s string) (Kind, bool) {
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, p := range kindPatterns {
		for _, v := range p.variants {
			if lower == v {
				return p.kind, true
			}
		}
	}
	return "", false
}
