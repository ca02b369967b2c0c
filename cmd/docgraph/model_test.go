package main

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-docgraph/pkg/activity"
	"github.com/dd0wney/cluso-docgraph/pkg/canvas"
	"github.com/dd0wney/cluso-docgraph/pkg/config"
	"github.com/dd0wney/cluso-docgraph/pkg/documents"
	"github.com/dd0wney/cluso-docgraph/pkg/health"
	"github.com/dd0wney/cluso-docgraph/pkg/logging"
	"github.com/dd0wney/cluso-docgraph/pkg/visualization"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func fixtureStore() *documents.MemoryStore {
	docs := []documents.Document{
		{ID: "doc_1", Text: "Quarterly revenue summary", Category: "Finance", Tags: []string{"Draft"}, CreatedAt: baseTime},
		{ID: "doc_2", Text: "Vendor contract renewal", Category: "Legal", Tags: []string{"Urgent", "Draft"}, CreatedAt: baseTime.Add(time.Hour)},
		{ID: "doc_3", Text: "Budget forecast", Category: "Finance", Tags: []string{"Final"}, CreatedAt: baseTime.Add(2 * time.Hour)},
	}
	return documents.NewMemoryStore(docs, documents.StoreOptions{})
}

func newTestModel(t *testing.T) (model, *documents.MemoryStore) {
	t.Helper()
	store := fixtureStore()
	m := newModel(modelDeps{
		Store:    store,
		Recorder: activity.NewRecorder(16),
		Logger:   logging.NopLogger{},
		Config:   config.Default(),
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 50})
	return updated.(model), store
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	updated, _ := m.Update(msg)
	return updated.(model)
}

// settle runs queued frames until the layout goes cold
func settle(p *graphPane, max int) {
	for i := 0; i < max && p.sched.Pending() > 0; i++ {
		p.frame()
	}
}

// openGraph switches to the graph view and delivers its document set
func openGraph(t *testing.T, m model, store documents.Store) model {
	t.Helper()
	cmd := m.switchView(graphView)
	require.NotNil(t, cmd)
	m = update(t, m, loadGraphDocs(store, m.graph.seq, m.graph.filter)())
	require.NotNil(t, m.graph.sim)
	return m
}

func screenOf(t *testing.T, p *graphPane, id string) (x, y int) {
	t.Helper()
	pos, ok := p.sim.Positions()[id]
	require.True(t, ok, "node %s", id)
	col, row := canvas.ViewportToCell(pos.X, pos.Y)
	return col, row + graphTop
}

func TestSplitTags(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitTags(" a, b,,c ,"))
	assert.Nil(t, splitTags(" , "))
}

func TestOneLine(t *testing.T) {
	assert.Equal(t, "a b", oneLine("a\n  b", 10))
	assert.Equal(t, "abcd…", oneLine("abcdefgh", 5))
}

func TestTabCyclesViews(t *testing.T) {
	m, _ := newTestModel(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, documentsView, m.currentView)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, graphView, m.currentView)
}

func TestJumpKeys(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("6")})
	assert.Equal(t, recalculateView, m.currentView)
}

func TestEditingKeepsLetters(t *testing.T) {
	m, _ := newTestModel(t)
	m.switchView(uploadView)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q1")})
	assert.Equal(t, uploadView, m.currentView)
	assert.Equal(t, "q1", m.uploadText.Value())
}

func TestUploadFlow(t *testing.T) {
	m, store := newTestModel(t)
	m.switchView(uploadView)
	m.uploadText.SetValue("Office lease")
	m.uploadInputs[0].SetValue("Legal")
	m.uploadInputs[1].SetValue("Draft, Important")

	m = update(t, m, uploadDocument(store, m.uploadForm())())
	require.NoError(t, m.err)
	assert.Equal(t, "Uploaded doc_4", m.message)
	assert.Empty(t, m.uploadText.Value())
	assert.Equal(t, 4, store.Len())

	doc, err := store.Get(t.Context(), "doc_4")
	require.NoError(t, err)
	assert.Equal(t, []string{"Draft", "Important"}, doc.Tags)
}

func TestUploadValidationError(t *testing.T) {
	m, store := newTestModel(t)
	m.switchView(uploadView)

	m = update(t, m, uploadDocument(store, m.uploadForm())())
	require.ErrorIs(t, m.err, documents.ErrInvalidDocument)
	assert.Empty(t, m.message)
	assert.Contains(t, m.View(), "✗")
}

func TestQueryThenGraphResults(t *testing.T) {
	m, store := newTestModel(t)
	m.switchView(queryView)
	m.queryInputs[queryCategory].SetValue("Finance")

	m = update(t, m, runQuery(store, m.queryFilter())())
	require.NotNil(t, m.lastQuery)
	assert.Equal(t, "2 documents match", m.message)
	assert.Len(t, m.queryTable.Rows(), 2)

	cmd := m.graphQuery()
	require.NotNil(t, cmd)
	assert.Equal(t, graphView, m.currentView)
	m = update(t, m, loadGraphDocs(store, m.graph.seq, m.graph.filter)())

	// one category, two documents, two tags
	assert.Equal(t, 5, m.graph.sim.Graph().Len())
	assert.Contains(t, m.graph.title(), "Finance")
}

func TestGraphQueryNeedsQuery(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Nil(t, m.graphQuery())
	assert.Error(t, m.err)
}

func TestRecalculateFlow(t *testing.T) {
	m, store := newTestModel(t)
	m.switchView(recalculateView)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.recalcRunning)

	m = update(t, m, recalculate(store)())
	assert.False(t, m.recalcRunning)
	require.NotNil(t, m.recalcResult)
	assert.True(t, m.recalcResult.Success)
	assert.Contains(t, m.View(), m.recalcResult.RunID)
}

func TestDetailFromDocuments(t *testing.T) {
	m, store := newTestModel(t)
	m.switchView(documentsView)
	m = update(t, m, loadDocuments(store)())
	require.Len(t, m.docTable.Rows(), 3)

	m.detailFrom = documentsView
	m = update(t, m, loadDetail(store, "doc_2")())
	assert.Equal(t, detailView, m.currentView)
	assert.Equal(t, documentsView, m.tab())
	assert.Contains(t, m.View(), "Vendor contract renewal")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, documentsView, m.currentView)
}

func TestGraphSettlesOnCanvas(t *testing.T) {
	m, store := newTestModel(t)
	m = openGraph(t, m, store)

	settle(m.graph, 2000)
	assert.Equal(t, visualization.StateCold, m.graph.sim.State())
	assert.Contains(t, m.graph.canvas.Plain(), "◉")
	assert.Contains(t, m.View(), "all documents")
}

func TestSmallTerminalHaltsGraph(t *testing.T) {
	m, store := newTestModel(t)
	m = openGraph(t, m, store)
	require.NotEqual(t, visualization.StateCold, m.graph.sim.State())

	// 24 rows leave an 11-row canvas
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	assert.True(t, m.graph.tooSmall())
	assert.Equal(t, visualization.StateCold, m.graph.sim.State())
	assert.Contains(t, m.View(), "Terminal too small")
	assert.Nil(t, m.graph.reheat())

	ticks := m.graph.sim.Ticks()
	settle(m.graph, 10)
	assert.Equal(t, ticks, m.graph.sim.Ticks())

	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 50})
	require.False(t, m.graph.tooSmall())
	assert.NotEqual(t, visualization.StateCold, m.graph.sim.State())

	settle(m.graph, 2000)
	assert.Equal(t, visualization.StateCold, m.graph.sim.State())
	assert.NotContains(t, m.View(), "Terminal too small")
}

func TestSmallTerminalDefersGraphStart(t *testing.T) {
	m, store := newTestModel(t)
	m = update(t, m, tea.WindowSizeMsg{Width: 50, Height: 20})
	m = openGraph(t, m, store)
	assert.Equal(t, visualization.StateCold, m.graph.sim.State())
	assert.Zero(t, m.graph.sim.Ticks())

	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.NotEqual(t, visualization.StateCold, m.graph.sim.State())
}

func TestLeavingGraphStopsSimulation(t *testing.T) {
	m, store := newTestModel(t)
	m = openGraph(t, m, store)
	require.NotEqual(t, visualization.StateCold, m.graph.sim.State())

	m.switchView(dashboardView)
	assert.Equal(t, visualization.StateCold, m.graph.sim.State())

	// Frames left in the queue are no-ops
	ticks := m.graph.sim.Ticks()
	settle(m.graph, 10)
	assert.Equal(t, ticks, m.graph.sim.Ticks())
}

func TestGraphResumesSameDocumentSet(t *testing.T) {
	m, store := newTestModel(t)
	m = openGraph(t, m, store)
	sim := m.graph.sim

	m.switchView(dashboardView)
	m = openGraph(t, m, store)
	assert.Same(t, sim, m.graph.sim)
}

func TestDocumentSetChangeSupersedesGraph(t *testing.T) {
	m, store := newTestModel(t)
	m = openGraph(t, m, store)
	old := m.graph.sim

	m.switchView(uploadView)
	_, err := store.Add(t.Context(), documents.NewDocument{Text: "Hiring plan", Category: "HR"})
	require.NoError(t, err)

	m = openGraph(t, m, store)
	assert.NotSame(t, old, m.graph.sim)
	assert.Equal(t, visualization.StateCold, old.State())
	assert.NotNil(t, m.graph.sim.Graph().Node("category:HR"))
}

func TestStaleGraphDocsIgnored(t *testing.T) {
	m, store := newTestModel(t)
	m.switchView(graphView)
	stale := loadGraphDocs(store, m.graph.seq, nil)()

	m.switchView(dashboardView)
	m = update(t, m, stale)
	assert.Nil(t, m.graph.sim)
}

func TestMouseDragPinsNode(t *testing.T) {
	m, store := newTestModel(t)
	m = openGraph(t, m, store)
	settle(m.graph, 2000)

	const id = "category:Finance"
	x, y := screenOf(t, m.graph, id)
	m = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.Equal(t, id, m.graph.dragging)
	assert.Equal(t, 1, m.graph.ic.Active())
	assert.NotEqual(t, visualization.StateCold, m.graph.sim.State())

	// Move toward the canvas center so the pin is not clamped
	cols, rows := m.graph.canvas.Size()
	tx, ty := cols/2, rows/2
	m = update(t, m, tea.MouseMsg{X: tx, Y: ty + graphTop, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	wantX, wantY := canvas.CellToViewport(tx, ty)
	n := m.graph.sim.Graph().Node(id)
	require.NotNil(t, n.Pin)
	assert.InDelta(t, wantX, n.Pin.X, 1e-9)
	assert.InDelta(t, wantY, n.Pin.Y, 1e-9)

	m = update(t, m, tea.MouseMsg{X: tx, Y: ty + graphTop, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	assert.Empty(t, m.graph.dragging)
	assert.Nil(t, n.Pin)
	assert.Zero(t, m.graph.sim.AlphaTarget())
}

func TestHoverShowsDocumentCard(t *testing.T) {
	m, store := newTestModel(t)
	m = openGraph(t, m, store)
	settle(m.graph, 2000)

	x, y := screenOf(t, m.graph, "document:doc_3")
	m = update(t, m, tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion})
	require.NotNil(t, m.graph.hover)
	assert.Equal(t, "doc_3", m.graph.hover.ID)
	assert.Contains(t, m.View(), "Budget forecast")

	m = update(t, m, tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionMotion})
	assert.Nil(t, m.graph.hover)
}

func TestMouseIgnoredOutsideGraphView(t *testing.T) {
	m, _ := newTestModel(t)
	m = update(t, m, tea.MouseMsg{X: 10, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	assert.Empty(t, m.graph.dragging)
}

func TestCheckerSeesCurrentGraph(t *testing.T) {
	m, store := newTestModel(t)
	checker := newChecker(m.started, store, m.recorder, m.graph.simulator)

	resp := checker.Check(t.Context())
	require.Equal(t, health.StatusHealthy, resp.Status)
	assert.Equal(t, "No graph", resp.Checks["simulation"].Message)

	m = openGraph(t, m, store)
	resp = checker.Check(t.Context())
	assert.Equal(t, m.graph.sim.State().String(), resp.Checks["simulation"].Message)
	assert.Equal(t, health.StatusHealthy, checker.CheckReadiness(t.Context()).Status)
}

func TestUploadActivityReloadsGraph(t *testing.T) {
	m, store := newTestModel(t)
	m = openGraph(t, m, store)
	seq := m.graph.seq

	m = update(t, m, activityMsg{event: activity.Event{Action: activity.ActionQuery, Status: activity.StatusSuccess}, ok: true})
	assert.Equal(t, seq, m.graph.seq)

	m = update(t, m, activityMsg{event: activity.Event{Action: activity.ActionUpload, Status: activity.StatusSuccess}, ok: true})
	assert.Equal(t, seq+1, m.graph.seq)
	assert.True(t, m.graph.loading)
}
