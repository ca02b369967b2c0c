package visualization

import (
	"testing"
	"time"

	"github.com/dd0wney/cluso-docgraph/pkg/documents"
)

var testViewport = Viewport{Width: 800, Height: 600}

func doc(id, category string, tags ...string) documents.Document {
	if tags == nil {
		tags = []string{}
	}
	return documents.Document{
		ID:           id,
		Text:         "Processed document " + id + " for " + category,
		Category:     category,
		Tags:         tags,
		CreatedAt:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		OriginalText: "Original " + id,
	}
}

// draftScenario: one category, three documents, two of them tagged Draft
func draftScenario() []documents.Document {
	return []documents.Document{
		doc("doc_1", "Finance", "Draft"),
		doc("doc_2", "Finance", "Draft"),
		doc("doc_3", "Finance", "Urgent", "Final"),
	}
}

func mixedDocs() []documents.Document {
	return []documents.Document{
		doc("doc_1", "Finance", "Draft", "Important"),
		doc("doc_2", "Legal", "Final"),
		doc("doc_3", "Marketing"),
		doc("doc_4", "Finance", "Final", "Urgent"),
		doc("doc_5", "HR", "Draft"),
		doc("doc_6", "Technical", "Reviewed", "Approved", "Archived"),
		doc("doc_7", "Legal", "Confidential"),
		doc("doc_8", "Finance", "Urgent"),
	}
}

func newTestSimulator(t *testing.T, docs []documents.Document) (*Simulator, *ManualScheduler) {
	t.Helper()
	sched := NewManualScheduler()
	sim, err := NewSimulator(BuildGraph(docs), SimulatorOptions{
		Config:    DefaultLayoutConfig(testViewport),
		Scheduler: sched,
	})
	if err != nil {
		t.Fatalf("NewSimulator() error = %v", err)
	}
	return sim, sched
}

func nodePos(t *testing.T, sim *Simulator, id string) Position {
	t.Helper()
	p, ok := sim.Positions()[id]
	if !ok {
		t.Fatalf("no position for %s", id)
	}
	return p
}
