// Package documents holds the categorized, tagged document collection the
// dashboard browses, searches and visualizes.
package documents

import (
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-docgraph/pkg/validation"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrInvalidDocument = errors.New("invalid document")
)

// Document is a processed text with its classification
type Document struct {
	ID           string    `json:"_id"`
	Text         string    `json:"document"`
	Category     string    `json:"category"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"createdAt"`
	OriginalText string    `json:"originalDocument"`
}

// Clone returns a copy that shares no slices with d
func (d Document) Clone() Document {
	d.Tags = append([]string(nil), d.Tags...)
	return d
}

// HasTag reports whether tag is one of the document's tags
func (d *Document) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// NewDocument is what an upload supplies; the store assigns ID and CreatedAt
type NewDocument struct {
	Text         string
	Category     string
	Tags         []string
	OriginalText string
}

// Validate checks the upload against the shared validation rules
func (n NewDocument) Validate() error {
	req := &validation.DocumentRequest{
		Text:         n.Text,
		Category:     n.Category,
		Tags:         n.Tags,
		OriginalText: n.OriginalText,
	}
	if err := validation.ValidateDocumentRequest(req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return nil
}

// Filter selects documents. Empty fields match everything; Tags matches
// documents carrying any of the listed tags.
type Filter struct {
	Text     string
	Category string
	Tags     []string
}

// Stats summarizes the collection
type Stats struct {
	TotalDocuments int      `json:"totalDocuments"`
	Categories     []string `json:"categories"`
	Tags           []string `json:"tags"`
}

// LogEntry is one line of the upload log
type LogEntry struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"documentId"`
	Action     string    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
}

// RecalculateResult reports the outcome of a recalculation run
type RecalculateResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	RunID   string `json:"runId"`
}
