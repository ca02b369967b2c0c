package documents

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-docgraph/pkg/activity"
	"github.com/dd0wney/cluso-docgraph/pkg/logging"
	"github.com/dd0wney/cluso-docgraph/pkg/metrics"
)

const (
	logActionUploaded    = "Uploaded document"
	recalculateCompleted = "Recalculation completed successfully"
)

// Store is the document collection as seen by the dashboard.
// Every call may block for a simulated round trip and honors ctx.
type Store interface {
	List(ctx context.Context) ([]Document, error)
	GetByID(ctx context.Context, id string) (*Document, bool, error)
	Get(ctx context.Context, id string) (*Document, error)
	Add(ctx context.Context, doc NewDocument) (*Document, error)
	Query(ctx context.Context, filter Filter) ([]Document, error)
	Stats(ctx context.Context) (*Stats, error)
	Logs(ctx context.Context) ([]LogEntry, error)
	Recalculate(ctx context.Context) (*RecalculateResult, error)
	Recent(ctx context.Context, n int) ([]Document, error)
}

// Latencies is the simulated delay per operation
type Latencies struct {
	List        time.Duration `yaml:"list"`
	Get         time.Duration `yaml:"get"`
	Add         time.Duration `yaml:"add"`
	Query       time.Duration `yaml:"query"`
	Stats       time.Duration `yaml:"stats"`
	Logs        time.Duration `yaml:"logs"`
	Recalculate time.Duration `yaml:"recalculate"`
}

// DefaultLatencies mirrors the feel of a remote document service
func DefaultLatencies() Latencies {
	return Latencies{
		List:        700 * time.Millisecond,
		Get:         500 * time.Millisecond,
		Add:         800 * time.Millisecond,
		Query:       700 * time.Millisecond,
		Stats:       500 * time.Millisecond,
		Logs:        600 * time.Millisecond,
		Recalculate: 1500 * time.Millisecond,
	}
}

// StoreOptions wires the store's collaborators. All fields are optional.
type StoreOptions struct {
	Latency  Latencies
	Logger   logging.Logger
	Metrics  *metrics.Registry
	Activity *activity.Recorder
	Now      func() time.Time
}

// MemoryStore keeps documents in process memory
type MemoryStore struct {
	docs     []Document
	latency  Latencies
	logger   logging.Logger
	metrics  *metrics.Registry
	activity *activity.Recorder
	now      func() time.Time
	mu       sync.RWMutex
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store holding a copy of docs
func NewMemoryStore(docs []Document, opts StoreOptions) *MemoryStore {
	s := &MemoryStore{
		docs:     make([]Document, 0, len(docs)),
		latency:  opts.Latency,
		logger:   logging.OrNop(opts.Logger).With(logging.Component(logging.ComponentDocuments)),
		metrics:  opts.Metrics,
		activity: opts.Activity,
		now:      opts.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	for _, d := range docs {
		s.docs = append(s.docs, d.Clone())
	}
	s.metrics.SetDocumentCount(len(s.docs))
	return s
}

// wait simulates the round trip for one operation
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// begin waits out the latency and starts the operation's timer
func (s *MemoryStore) begin(ctx context.Context, op string, d time.Duration, fields ...logging.Field) (*logging.TimedOperation, error) {
	timer := logging.StartTimer(s.logger, op, append(fields, logging.Operation(op))...)
	if err := wait(ctx, d); err != nil {
		s.finish(op, timer, err)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return timer, nil
}

func (s *MemoryStore) finish(op string, timer *logging.TimedOperation, err error, extra ...logging.Field) {
	if err != nil {
		s.metrics.RecordStoreOperation(op, "error", timer.EndError(err))
		return
	}
	s.metrics.RecordStoreOperation(op, "success", timer.End(extra...))
}

// List returns every document in insertion order
func (s *MemoryStore) List(ctx context.Context) ([]Document, error) {
	timer, err := s.begin(ctx, "list", s.latency.List)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	out := cloneAll(s.docs)
	s.mu.RUnlock()

	s.finish("list", timer, nil, logging.Count(len(out)))
	return out, nil
}

// GetByID returns the document with id, or false when there is none
func (s *MemoryStore) GetByID(ctx context.Context, id string) (*Document, bool, error) {
	timer, err := s.begin(ctx, "get", s.latency.Get, logging.DocumentID(id))
	if err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.docs {
		if s.docs[i].ID == id {
			d := s.docs[i].Clone()
			s.finish("get", timer, nil)
			return &d, true, nil
		}
	}
	s.finish("get", timer, nil, logging.Bool("found", false))
	return nil, false, nil
}

// Get is GetByID with absence reported as ErrNotFound
func (s *MemoryStore) Get(ctx context.Context, id string) (*Document, error) {
	d, ok, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return d, nil
}

// Add validates and stores a new document
func (s *MemoryStore) Add(ctx context.Context, nd NewDocument) (*Document, error) {
	if err := nd.Validate(); err != nil {
		s.metrics.RecordStoreOperation("add", "invalid", 0)
		s.record(&activity.Event{Action: activity.ActionUpload, Status: activity.StatusFailure, Message: err.Error()})
		return nil, err
	}

	timer, err := s.begin(ctx, "add", s.latency.Add)
	if err != nil {
		return nil, err
	}

	original := nd.OriginalText
	if original == "" {
		original = nd.Text
	}

	s.mu.Lock()
	doc := Document{
		ID:           fmt.Sprintf("doc_%d", len(s.docs)+1),
		Text:         nd.Text,
		Category:     nd.Category,
		Tags:         append([]string{}, nd.Tags...),
		CreatedAt:    s.now(),
		OriginalText: original,
	}
	s.docs = append(s.docs, doc)
	total := len(s.docs)
	s.mu.Unlock()

	s.metrics.SetDocumentCount(total)
	s.finish("add", timer, nil, logging.DocumentID(doc.ID))
	s.record(&activity.Event{
		Action:     activity.ActionUpload,
		DocumentID: doc.ID,
		Message:    doc.Category,
	})

	out := doc.Clone()
	return &out, nil
}

// Query returns the documents matching every set field of filter
func (s *MemoryStore) Query(ctx context.Context, filter Filter) ([]Document, error) {
	timer, err := s.begin(ctx, "query", s.latency.Query)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(filter.Text)

	s.mu.RLock()
	var out []Document
	for _, d := range s.docs {
		if needle != "" &&
			!strings.Contains(strings.ToLower(d.Text), needle) &&
			!strings.Contains(strings.ToLower(d.OriginalText), needle) {
			continue
		}
		if filter.Category != "" && d.Category != filter.Category {
			continue
		}
		if len(filter.Tags) > 0 && !hasAnyTag(&d, filter.Tags) {
			continue
		}
		out = append(out, d.Clone())
	}
	s.mu.RUnlock()

	s.finish("query", timer, nil, logging.Count(len(out)))
	s.record(&activity.Event{
		Action:  activity.ActionQuery,
		Message: fmt.Sprintf("%d results", len(out)),
		Metadata: map[string]any{
			"text":     filter.Text,
			"category": filter.Category,
			"tags":     filter.Tags,
		},
	})
	return out, nil
}

func hasAnyTag(d *Document, tags []string) bool {
	for _, t := range tags {
		if d.HasTag(t) {
			return true
		}
	}
	return false
}

// Stats counts documents and lists categories and tags in first-seen order
func (s *MemoryStore) Stats(ctx context.Context) (*Stats, error) {
	timer, err := s.begin(ctx, "stats", s.latency.Stats)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	stats := summarize(s.docs)
	s.mu.RUnlock()

	s.finish("stats", timer, nil, logging.Count(stats.TotalDocuments))
	return stats, nil
}

func summarize(docs []Document) *Stats {
	stats := &Stats{TotalDocuments: len(docs), Categories: []string{}, Tags: []string{}}
	seenCategory := make(map[string]bool)
	seenTag := make(map[string]bool)
	for _, d := range docs {
		if !seenCategory[d.Category] {
			seenCategory[d.Category] = true
			stats.Categories = append(stats.Categories, d.Category)
		}
		for _, t := range d.Tags {
			if !seenTag[t] {
				seenTag[t] = true
				stats.Tags = append(stats.Tags, t)
			}
		}
	}
	return stats
}

// Logs returns one upload entry per document, newest first
func (s *MemoryStore) Logs(ctx context.Context) ([]LogEntry, error) {
	timer, err := s.begin(ctx, "logs", s.latency.Logs)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	logs := make([]LogEntry, len(s.docs))
	for i, d := range s.docs {
		logs[i] = LogEntry{
			ID:         fmt.Sprintf("log_%d", i+1),
			DocumentID: d.ID,
			Action:     logActionUploaded,
			Timestamp:  d.CreatedAt,
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})

	s.finish("logs", timer, nil, logging.Count(len(logs)))
	return logs, nil
}

// Recalculate runs a (simulated) reprocessing pass over the collection
func (s *MemoryStore) Recalculate(ctx context.Context) (*RecalculateResult, error) {
	runID := uuid.New().String()
	timer, err := s.begin(ctx, "recalculate", s.latency.Recalculate, logging.String("run_id", runID))
	if err != nil {
		s.record(&activity.Event{
			Action:   activity.ActionRecalculate,
			Status:   activity.StatusFailure,
			Message:  err.Error(),
			Metadata: map[string]any{"run_id": runID},
		})
		return nil, err
	}

	result := &RecalculateResult{
		Success: true,
		Message: recalculateCompleted,
		RunID:   runID,
	}
	s.finish("recalculate", timer, nil)
	s.record(&activity.Event{
		Action:   activity.ActionRecalculate,
		Message:  result.Message,
		Metadata: map[string]any{"run_id": runID},
	})
	return result, nil
}

// Recent returns the n most recently created documents, newest first.
// It is served from memory without simulated latency.
func (s *MemoryStore) Recent(ctx context.Context, n int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	docs := cloneAll(s.docs)
	s.mu.RUnlock()

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	if n >= 0 && n < len(docs) {
		docs = docs[:n]
	}
	return docs, nil
}

// Len returns the number of stored documents
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

func (s *MemoryStore) record(e *activity.Event) {
	if s.activity != nil {
		s.activity.Record(e)
	}
}

func cloneAll(docs []Document) []Document {
	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = d.Clone()
	}
	return out
}
