package models

import "time"

// Filing is the top-level Firestore record for one SEC filing reference.
// It is upserted (merged) on every committed session; CreatedAt is written
// only once.
type Filing struct {
	FilingID           string    `firestore:"filingId" json:"filing_id"`
	FilingURL          string    `firestore:"filingUrl" json:"filing_url"`
	FilingType         string    `firestore:"filingType" json:"filing_type"`
	CreatedAt          time.Time `firestore:"createdAt" json:"created_at"`
	LastUpdated        time.Time `firestore:"lastUpdated" json:"last_updated"`
	LatestSessionID    string    `firestore:"latestSessionId" json:"latest_session_id"`
	SessionCount       int       `firestore:"sessionCount" json:"session_count"`
	UniqueSections     []string  `firestore:"uniqueSections" json:"unique_sections"`
	UniqueSectionCount int       `firestore:"uniqueSectionCount" json:"unique_section_count"`
}

// Session is the immutable record of one extraction run against a Filing.
type Session struct {
	SessionID         string    `firestore:"sessionId" json:"session_id"`
	FilingID          string    `firestore:"filingId" json:"filing_id"`
	FilingURL         string    `firestore:"filingUrl" json:"filing_url"`
	FilingType        string    `firestore:"filingType" json:"filing_type"`
	CreatedAt         time.Time `firestore:"createdAt" json:"created_at"`
	RequestedSections []string  `firestore:"requestedSections" json:"requested_sections"`
	SuccessCount      int       `firestore:"successCount" json:"success_count"`
	FailureCount      int       `firestore:"failureCount" json:"failure_count"`
}

// SectionRecord is the write-once outcome for one section id within a Session.
// Content always holds the full extracted text unless the body was archived
// to object storage, in which case ContentURI points at it.
type SectionRecord struct {
	SectionID     string    `firestore:"sectionId" json:"section_id"`
	Success       bool      `firestore:"success" json:"success"`
	Content       string    `firestore:"content,omitempty" json:"content,omitempty"`
	ContentLength int       `firestore:"contentLength" json:"content_length"`
	ContentURI    string    `firestore:"contentUri,omitempty" json:"content_uri,omitempty"`
	Error         string    `firestore:"error,omitempty" json:"error,omitempty"`
	ExtractedAt   time.Time `firestore:"extractedAt" json:"extracted_at"`
}

// SectionOutcome is the in-memory result of extracting one requested section.
type SectionOutcome struct {
	SectionID string
	Success   bool
	Content   string
	Error     string
}
