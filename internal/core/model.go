package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultSubject is used when a message carries no Subject header.
const DefaultSubject = "(No Subject)"

// DefaultSender is used when a message carries no From header.
const DefaultSender = "Unknown"

// EmailRecord is one fetched message summary
type EmailRecord struct {
	ID          string `json:"id"`
	Sender      string `json:"from"`
	Subject     string `json:"subject"`
	Snippet     string `json:"snippet"`
	SenderCount int    `json:"sender_count"`
}

// Category is one label of a CategoryAssignment with the records the model placed in it
type Category struct {
	Label  string
	Emails []EmailRecord
}

// CategoryAssignment maps category labels to records. Label order follows the
// model's reply and is kept when encoded to JSON.
type CategoryAssignment struct {
	Categories []Category
}

// Len returns the number of categories
func (a CategoryAssignment) Len() int {
	return len(a.Categories)
}

// Get returns the records for a label
func (a CategoryAssignment) Get(label string) ([]EmailRecord, bool) {
	for _, c := range a.Categories {
		if c.Label == label {
			return c.Emails, true
		}
	}
	return nil, false
}

// Labels returns the labels in order
func (a CategoryAssignment) Labels() []string {
	labels := make([]string, 0, len(a.Categories))
	for _, c := range a.Categories {
		labels = append(labels, c.Label)
	}
	return labels
}

// Total returns the number of categorized records
func (a CategoryAssignment) Total() int {
	n := 0
	for _, c := range a.Categories {
		n += len(c.Emails)
	}
	return n
}

// add appends records to a label, creating the label on first use
func (a *CategoryAssignment) add(label string, emails ...EmailRecord) {
	for i := range a.Categories {
		if a.Categories[i].Label == label {
			a.Categories[i].Emails = append(a.Categories[i].Emails, emails...)
			return
		}
	}
	a.Categories = append(a.Categories, Category{Label: label, Emails: append([]EmailRecord{}, emails...)})
}

// MarshalJSON encodes the assignment as an object whose keys keep their order
func (a CategoryAssignment) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range a.Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Label)
		if err != nil {
			return nil, err
		}
		emails := c.Emails
		if emails == nil {
			emails = []EmailRecord{}
		}
		value, err := json.Marshal(emails)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of label -> records, keeping key order
func (a *CategoryAssignment) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("category assignment must be a JSON object")
	}
	a.Categories = nil
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		label, _ := tok.(string)
		var emails []EmailRecord
		if err := dec.Decode(&emails); err != nil {
			return fmt.Errorf("failed to decode category %q: %w", label, err)
		}
		a.add(label, emails...)
	}
	_, err = dec.Token()
	return err
}

// SkippedMessage is a message the Fetch Aggregator could not turn into a record
type SkippedMessage struct {
	ID     string
	Reason string
}

// FetchResult is the output of the Fetch Aggregator
type FetchResult struct {
	Records []EmailRecord
	Skipped []SkippedMessage
}

// DroppedOrdinal is an entry of the model reply that did not resolve to a record
type DroppedOrdinal struct {
	Label  string `json:"label"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

// Reasons an ordinal is dropped
const (
	DropReasonNotNumeric   = "not_numeric"
	DropReasonOutOfRange   = "out_of_range"
	DropReasonDuplicate    = "duplicate"
	DropReasonUnknownLabel = "unknown_label"
)

// CategorizationOutcome is the output of the Categorization Engine. Failure is
// set when the model call or reply parsing failed; Assignment is then empty.
type CategorizationOutcome struct {
	Assignment CategoryAssignment
	Dropped    []DroppedOrdinal
	Unassigned []EmailRecord
	Failure    error
	ModelUsed  string
}

// StoredResult is the latest assignment held for a session
type StoredResult struct {
	SessionID  string
	Assignment CategoryAssignment
	StoredAt   time.Time
	ExpiresAt  time.Time // zero means no expiry
}

// Credential is the token material returned by the authorization handshake
type Credential struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
}

// RunReport summarizes one pipeline run
type RunReport struct {
	SessionID      string
	Fetch          *FetchResult
	Categorization *CategorizationOutcome
	Duration       time.Duration
}
