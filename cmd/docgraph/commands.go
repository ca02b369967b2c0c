package main

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/cluso-docgraph/pkg/activity"
	"github.com/dd0wney/cluso-docgraph/pkg/documents"
)

// storeTimeout bounds every store round trip started from the UI
const storeTimeout = 10 * time.Second

type dashboardMsg struct {
	stats  *documents.Stats
	recent []documents.Document
	err    error
}

type documentsMsg struct {
	docs []documents.Document
	err  error
}

type detailMsg struct {
	doc *documents.Document
	err error
}

type queryMsg struct {
	filter documents.Filter
	docs   []documents.Document
	err    error
}

type uploadMsg struct {
	doc *documents.Document
	err error
}

type logsMsg struct {
	entries []documents.LogEntry
	err     error
}

type recalcMsg struct {
	result *documents.RecalculateResult
	err    error
}

// graphDocsMsg carries the document set for a new graph. seq discards
// answers to requests that a later one replaced.
type graphDocsMsg struct {
	seq  int
	docs []documents.Document
	err  error
}

// activityMsg carries one event from the activity feed
type activityMsg struct {
	event activity.Event
	ok    bool
}

type tickMsg time.Time

// frameMsg asks the model to run the next queued simulation frame
type frameMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForActivity blocks until the feed yields an event or closes
func waitForActivity(feed <-chan activity.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-feed
		return activityMsg{event: e, ok: ok}
	}
}

func withStore(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		return fn(ctx)
	}
}

func loadDashboard(store documents.Store, recentCount int) tea.Cmd {
	return withStore(func(ctx context.Context) tea.Msg {
		stats, err := store.Stats(ctx)
		if err != nil {
			return dashboardMsg{err: err}
		}
		recent, err := store.Recent(ctx, recentCount)
		return dashboardMsg{stats: stats, recent: recent, err: err}
	})
}

func loadDocuments(store documents.Store) tea.Cmd {
	return withStore(func(ctx context.Context) tea.Msg {
		docs, err := store.List(ctx)
		return documentsMsg{docs: docs, err: err}
	})
}

func loadDetail(store documents.Store, id string) tea.Cmd {
	return withStore(func(ctx context.Context) tea.Msg {
		doc, err := store.Get(ctx, id)
		return detailMsg{doc: doc, err: err}
	})
}

func runQuery(store documents.Store, filter documents.Filter) tea.Cmd {
	return withStore(func(ctx context.Context) tea.Msg {
		docs, err := store.Query(ctx, filter)
		return queryMsg{filter: filter, docs: docs, err: err}
	})
}

func uploadDocument(store documents.Store, nd documents.NewDocument) tea.Cmd {
	return withStore(func(ctx context.Context) tea.Msg {
		doc, err := store.Add(ctx, nd)
		return uploadMsg{doc: doc, err: err}
	})
}

func loadLogs(store documents.Store) tea.Cmd {
	return withStore(func(ctx context.Context) tea.Msg {
		entries, err := store.Logs(ctx)
		return logsMsg{entries: entries, err: err}
	})
}

func recalculate(store documents.Store) tea.Cmd {
	return withStore(func(ctx context.Context) tea.Msg {
		result, err := store.Recalculate(ctx)
		return recalcMsg{result: result, err: err}
	})
}

// loadGraphDocs fetches the graph's document set: the whole collection,
// or the last query's filter re-run against it
func loadGraphDocs(store documents.Store, seq int, filter *documents.Filter) tea.Cmd {
	return withStore(func(ctx context.Context) tea.Msg {
		var (
			docs []documents.Document
			err  error
		)
		if filter == nil {
			docs, err = store.List(ctx)
		} else {
			docs, err = store.Query(ctx, *filter)
		}
		return graphDocsMsg{seq: seq, docs: docs, err: err}
	})
}

// splitTags turns "a, b,,c" into [a b c]
func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
