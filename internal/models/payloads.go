package models

// These structs define the JSON payloads exchanged with callers of the
// scraper, over HTTP or via a Pub/Sub triggered CloudEvent.

// ScrapeRequest is the input for one extraction session.
type ScrapeRequest struct {
	FilingURL string   `json:"filing_url"`
	Sections  []string `json:"sections"`
}

// SectionResult is the caller-facing outcome for one requested section.
// Content is the display copy, capped to the configured length.
type SectionResult struct {
	SectionID     string `json:"section_id"`
	Success       bool   `json:"success"`
	Content       string `json:"content,omitempty"`
	ContentLength int    `json:"content_length,omitempty"`
	Error         string `json:"error,omitempty"`
}

// ScrapeSummary counts the results of one session, one per requested
// occurrence. A repeated section id is counted each time it appears, while the
// stored session keeps one record per id, so its SuccessCount and FailureCount
// can be lower.
type ScrapeSummary struct {
	Requested int `json:"requested"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// ScrapeResponse is the output of one extraction session. FilingID and
// SessionID are null when the session was not durably recorded.
type ScrapeResponse struct {
	FilingURL  string          `json:"filing_url"`
	FilingType string          `json:"filing_type"`
	FilingID   *string         `json:"filing_id"`
	SessionID  *string         `json:"session_id"`
	NewFiling  bool            `json:"new_filing"`
	Saved      bool            `json:"saved"`
	SaveError  string          `json:"save_error,omitempty"`
	Results    []SectionResult `json:"results"`
	Summary    ScrapeSummary   `json:"summary"`
}

// DetectFilingTypeRequest is the input for filing type detection.
type DetectFilingTypeRequest struct {
	FilingURL string `json:"filing_url"`
}

// DetectFilingTypeResponse is the output of filing type detection.
type DetectFilingTypeResponse struct {
	FilingURL  string `json:"filing_url"`
	FilingType string `json:"filing_type"`
	FilingID   string `json:"filing_id"`
}

// MessagePublishedData is the CloudEvent payload delivered by a Pub/Sub
// trigger. Message.Data carries a JSON encoded ScrapeRequest.
type MessagePublishedData struct {
	Message struct {
		Data       []byte            `json:"data"`
		Attributes map[string]string `json:"attributes,omitempty"`
		MessageID  string            `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// SessionCommittedEvent is the argument passed to the post-commit workflow.
type SessionCommittedEvent struct {
	FilingID           string `json:"filingId"`
	SessionID          string `json:"sessionId"`
	FilingURL          string `json:"filingUrl"`
	FilingType         string `json:"filingType"`
	SessionCount       int    `json:"sessionCount"`
	UniqueSectionCount int    `json:"uniqueSectionCount"`
}
