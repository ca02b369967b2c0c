package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-docgraph/pkg/activity"
	"github.com/dd0wney/cluso-docgraph/pkg/config"
	"github.com/dd0wney/cluso-docgraph/pkg/documents"
	"github.com/dd0wney/cluso-docgraph/pkg/logging"
	"github.com/dd0wney/cluso-docgraph/pkg/metrics"
)

type view int

const (
	dashboardView view = iota
	documentsView
	queryView
	uploadView
	logsView
	recalculateView
	graphView
	// detailView is reached from a table, not from the tab bar
	detailView
)

var tabNames = []string{"Dashboard", "Documents", "Query", "Upload", "Logs", "Recalculate", "Graph"}

const (
	queryText = iota
	queryCategory
	queryTags
	queryResults
)

const (
	uploadText = iota
	uploadCategory
	uploadTags
	uploadFields
)

type model struct {
	store    documents.Store
	recorder *activity.Recorder
	feed     <-chan activity.Event
	metrics  *metrics.Registry
	logger   logging.Logger
	ui       config.UIConfig
	started  time.Time

	currentView view
	detailFrom  view
	width       int
	height      int

	help    help.Model
	spinner spinner.Model
	pending int

	stats  *documents.Stats
	recent []documents.Document

	docTable table.Model
	detail   *documents.Document

	queryInputs []textinput.Model
	queryFocus  int
	queryTable  table.Model
	lastQuery   *documents.Filter

	uploadText   textarea.Model
	uploadInputs []textinput.Model
	uploadFocus  int

	logTable table.Model

	recalcRunning bool
	recalcResult  *documents.RecalculateResult

	graph *graphPane

	message string
	err     error
}

type modelDeps struct {
	Store    documents.Store
	Recorder *activity.Recorder
	// Feed, when set, delivers activity as it is recorded
	Feed     <-chan activity.Event
	Metrics  *metrics.Registry
	Logger   logging.Logger
	Config   *config.Config
}

func newModel(d modelDeps) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#9b87f5"))

	text := textinput.New()
	text.Placeholder = "text contains..."
	text.CharLimit = 200
	text.Width = 40
	category := textinput.New()
	category.Placeholder = strings.Join(documents.SeedCategories, " / ")
	category.CharLimit = 50
	category.Width = 40
	tags := textinput.New()
	tags.Placeholder = "Draft, Urgent"
	tags.CharLimit = 200
	tags.Width = 40

	body := textarea.New()
	body.Placeholder = "Document text"
	body.CharLimit = 10000
	body.SetWidth(70)
	body.SetHeight(6)
	upCategory := textinput.New()
	upCategory.Placeholder = "Category"
	upCategory.CharLimit = 50
	upCategory.Width = 40
	upTags := textinput.New()
	upTags.Placeholder = "comma-separated tags"
	upTags.CharLimit = 200
	upTags.Width = 40

	return model{
		store:        d.Store,
		recorder:     d.Recorder,
		feed:         d.Feed,
		metrics:      d.Metrics,
		logger:       d.Logger,
		ui:           d.Config.UI,
		started:      time.Now(),
		help:         help.New(),
		spinner:      sp,
		pending:      1, // the dashboard load started by Init
		docTable:     newDocTable(),
		queryInputs:  []textinput.Model{text, category, tags},
		queryTable:   newDocTable(),
		uploadText:   body,
		uploadInputs: []textinput.Model{upCategory, upTags},
		logTable:     newLogTable(),
		graph:        newGraphPane(d.Config.Layout, d.Config.UI.FrameInterval, d.Logger, d.Metrics),
	}
}

func newDocTable() table.Model {
	return table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 8},
			{Title: "Category", Width: 10},
			{Title: "Tags", Width: 30},
			{Title: "Created", Width: 16},
			{Title: "Text", Width: 40},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
}

func newLogTable() table.Model {
	return table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 8},
			{Title: "Document", Width: 10},
			{Title: "Action", Width: 20},
			{Title: "Time", Width: 20},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)
}

func docRows(docs []documents.Document) []table.Row {
	rows := make([]table.Row, len(docs))
	for i, d := range docs {
		rows[i] = table.Row{
			d.ID,
			d.Category,
			strings.Join(d.Tags, ", "),
			d.CreatedAt.Local().Format("2006-01-02 15:04"),
			oneLine(d.Text, 40),
		}
	}
	return rows
}

// oneLine flattens s and cuts it to n runes
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(),
		m.spinner.Tick,
		loadDashboard(m.store, m.ui.RecentCount),
	}
	if m.feed != nil {
		cmds = append(cmds, waitForActivity(m.feed))
	}
	return tea.Batch(cmds...)
}

// call counts a store round trip so the spinner runs while it is in flight
func (m *model) call(cmd tea.Cmd) tea.Cmd {
	m.pending++
	if m.pending == 1 {
		return tea.Batch(cmd, m.spinner.Tick)
	}
	return cmd
}

func (m *model) done() {
	if m.pending > 0 {
		m.pending--
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, m.graph.resize(msg.Width, msg.Height, m.currentView == graphView)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.currentView != graphView {
			return m, nil
		}
		return m, m.graph.mouse(msg)

	case tickMsg:
		m.metrics.UpdateSystemMetrics(m.started)
		return m, tickCmd()

	case frameMsg:
		return m, m.graph.frame()

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case dashboardMsg:
		m.done()
		if m.setErr(msg.err) {
			return m, nil
		}
		m.stats, m.recent = msg.stats, msg.recent
		m.metrics.SetDocumentCount(msg.stats.TotalDocuments)
		return m, nil

	case documentsMsg:
		m.done()
		if m.setErr(msg.err) {
			return m, nil
		}
		m.docTable.SetRows(docRows(msg.docs))
		m.metrics.SetDocumentCount(len(msg.docs))
		return m, nil

	case detailMsg:
		m.done()
		if m.setErr(msg.err) {
			return m, nil
		}
		m.detail = msg.doc
		m.currentView = detailView
		return m, nil

	case queryMsg:
		m.done()
		if m.setErr(msg.err) {
			return m, nil
		}
		filter := msg.filter
		m.lastQuery = &filter
		m.queryTable.SetRows(docRows(msg.docs))
		m.queryTable.GotoTop()
		m.message = fmt.Sprintf("%d documents match", len(msg.docs))
		return m, nil

	case uploadMsg:
		m.done()
		if m.setErr(msg.err) {
			return m, nil
		}
		m.message = "Uploaded " + msg.doc.ID
		m.uploadText.Reset()
		for i := range m.uploadInputs {
			m.uploadInputs[i].SetValue("")
		}
		return m, m.focusUpload(uploadText)

	case logsMsg:
		m.done()
		if m.setErr(msg.err) {
			return m, nil
		}
		rows := make([]table.Row, len(msg.entries))
		for i, e := range msg.entries {
			rows[i] = table.Row{e.ID, e.DocumentID, e.Action, e.Timestamp.Local().Format("2006-01-02 15:04:05")}
		}
		m.logTable.SetRows(rows)
		return m, nil

	case recalcMsg:
		m.done()
		m.recalcRunning = false
		if m.setErr(msg.err) {
			return m, nil
		}
		m.recalcResult = msg.result
		return m, nil

	case graphDocsMsg:
		m.done()
		return m, m.graph.receive(msg)

	case activityMsg:
		if !msg.ok {
			return m, nil
		}
		return m, tea.Batch(waitForActivity(m.feed), m.onActivity(msg.event))
	}

	// Cursor blinks and other widget messages go to the focused input
	return m.updateFocused(msg)
}

// onActivity refreshes what a successful upload changes on screen: a graph
// on display is superseded by one including the new document
func (m *model) onActivity(e activity.Event) tea.Cmd {
	if e.Action != activity.ActionUpload || e.Status != activity.StatusSuccess {
		return nil
	}
	switch m.currentView {
	case graphView:
		return m.call(m.graph.request(m.store, m.graph.filter))
	case dashboardView:
		return m.call(loadDashboard(m.store, m.ui.RecentCount))
	}
	return nil
}

// setErr records err for display and reports whether there was one
func (m *model) setErr(err error) bool {
	m.err = err
	if err != nil {
		m.message = ""
		return true
	}
	return false
}

// editing reports whether keystrokes belong to a text field
func (m model) editing() bool {
	switch m.currentView {
	case queryView:
		return m.queryFocus < queryResults
	case uploadView:
		return true
	}
	return false
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.graph.stop()
		return m, tea.Quit
	}

	switch {
	case key.Matches(msg, keys.Tab):
		return m, m.switchView(view((int(m.tab()) + 1) % len(tabNames)))
	case key.Matches(msg, keys.ShiftTab):
		return m, m.switchView(view((int(m.tab()) + len(tabNames) - 1) % len(tabNames)))
	}

	if m.editing() {
		return m.handleEditingKey(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		m.graph.stop()
		return m, tea.Quit
	case key.Matches(msg, keys.Jump):
		return m, m.switchView(view(msg.String()[0] - '1'))
	}

	switch m.currentView {
	case dashboardView:
		if key.Matches(msg, keys.Refresh) {
			return m, m.call(loadDashboard(m.store, m.ui.RecentCount))
		}

	case documentsView:
		switch {
		case key.Matches(msg, keys.Enter):
			return m, m.openDetail(m.docTable)
		case key.Matches(msg, keys.Refresh):
			return m, m.call(loadDocuments(m.store))
		}
		var cmd tea.Cmd
		m.docTable, cmd = m.docTable.Update(msg)
		return m, cmd

	case queryView:
		switch {
		case key.Matches(msg, keys.Enter):
			return m, m.openDetail(m.queryTable)
		case key.Matches(msg, keys.Back), key.Matches(msg, keys.PrevField):
			return m, m.focusQuery(queryTags)
		case key.Matches(msg, keys.NextField):
			return m, m.focusQuery(queryText)
		case key.Matches(msg, keys.GraphIt):
			return m, m.graphQuery()
		}
		var cmd tea.Cmd
		m.queryTable, cmd = m.queryTable.Update(msg)
		return m, cmd

	case detailView:
		if key.Matches(msg, keys.Back) {
			from := m.detailFrom
			m.currentView = from
			if from == queryView {
				return m, m.focusQuery(queryResults)
			}
		}

	case logsView:
		if key.Matches(msg, keys.Refresh) {
			return m, m.call(loadLogs(m.store))
		}
		var cmd tea.Cmd
		m.logTable, cmd = m.logTable.Update(msg)
		return m, cmd

	case recalculateView:
		if key.Matches(msg, keys.Enter) && !m.recalcRunning {
			m.recalcRunning = true
			m.recalcResult = nil
			m.err = nil
			return m, m.call(recalculate(m.store))
		}

	case graphView:
		switch {
		case key.Matches(msg, keys.Reheat):
			return m, m.graph.reheat()
		case key.Matches(msg, keys.AllDocs):
			return m, m.call(m.graph.request(m.store, nil))
		case key.Matches(msg, keys.Back):
			return m, m.switchView(dashboardView)
		}
	}
	return m, nil
}

func (m model) handleEditingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.currentView {
	case queryView:
		switch {
		case key.Matches(msg, keys.Enter):
			m.err, m.message = nil, ""
			return m, m.call(runQuery(m.store, m.queryFilter()))
		case key.Matches(msg, keys.NextField):
			return m, m.focusQuery(m.queryFocus + 1)
		case key.Matches(msg, keys.PrevField):
			return m, m.focusQuery((m.queryFocus + queryResults) % (queryResults + 1))
		case key.Matches(msg, keys.Back):
			return m, m.focusQuery(queryResults)
		case key.Matches(msg, keys.GraphIt):
			return m, m.graphQuery()
		}

	case uploadView:
		switch {
		case key.Matches(msg, keys.Submit):
			m.err, m.message = nil, ""
			return m, m.call(uploadDocument(m.store, m.uploadForm()))
		case key.Matches(msg, keys.NextField):
			return m, m.focusUpload((m.uploadFocus + 1) % uploadFields)
		case key.Matches(msg, keys.PrevField):
			return m, m.focusUpload((m.uploadFocus + uploadFields - 1) % uploadFields)
		case key.Matches(msg, keys.Enter) && m.uploadFocus != uploadText:
			return m, m.focusUpload((m.uploadFocus + 1) % uploadFields)
		}
	}
	return m.updateFocused(msg)
}

func (m model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.editing() {
		return m, nil
	}
	var cmd tea.Cmd
	switch m.currentView {
	case queryView:
		m.queryInputs[m.queryFocus], cmd = m.queryInputs[m.queryFocus].Update(msg)
	case uploadView:
		if m.uploadFocus == uploadText {
			m.uploadText, cmd = m.uploadText.Update(msg)
		} else {
			i := m.uploadFocus - uploadCategory
			m.uploadInputs[i], cmd = m.uploadInputs[i].Update(msg)
		}
	}
	return m, cmd
}

// tab is the tab-bar position of the current view
func (m model) tab() view {
	if m.currentView == detailView {
		return m.detailFrom
	}
	return m.currentView
}

// switchView leaves the current view, stopping the layout when the graph
// loses the screen, and loads what the new view shows
func (m *model) switchView(v view) tea.Cmd {
	if v < 0 || int(v) >= len(tabNames) {
		return nil
	}
	if m.currentView == graphView && v != graphView {
		m.graph.stop()
	}
	m.currentView = v
	m.err, m.message = nil, ""
	m.blurAll()

	switch v {
	case dashboardView:
		return m.call(loadDashboard(m.store, m.ui.RecentCount))
	case documentsView:
		return m.call(loadDocuments(m.store))
	case queryView:
		return m.focusQuery(m.queryFocus)
	case uploadView:
		return m.focusUpload(m.uploadFocus)
	case logsView:
		return m.call(loadLogs(m.store))
	case graphView:
		return m.call(m.graph.request(m.store, m.graph.filter))
	}
	return nil
}

func (m *model) blurAll() {
	for i := range m.queryInputs {
		m.queryInputs[i].Blur()
	}
	for i := range m.uploadInputs {
		m.uploadInputs[i].Blur()
	}
	m.uploadText.Blur()
}

func (m *model) focusQuery(i int) tea.Cmd {
	if i < 0 || i > queryResults {
		i = queryText
	}
	m.queryFocus = i
	var cmd tea.Cmd
	for j := range m.queryInputs {
		if j == i {
			cmd = m.queryInputs[j].Focus()
		} else {
			m.queryInputs[j].Blur()
		}
	}
	if i == queryResults {
		m.queryTable.Focus()
	} else {
		m.queryTable.Blur()
	}
	return cmd
}

func (m *model) focusUpload(i int) tea.Cmd {
	m.uploadFocus = i
	m.uploadText.Blur()
	for j := range m.uploadInputs {
		m.uploadInputs[j].Blur()
	}
	if i == uploadText {
		return m.uploadText.Focus()
	}
	return m.uploadInputs[i-uploadCategory].Focus()
}

func (m model) queryFilter() documents.Filter {
	return documents.Filter{
		Text:     strings.TrimSpace(m.queryInputs[queryText].Value()),
		Category: strings.TrimSpace(m.queryInputs[queryCategory].Value()),
		Tags:     splitTags(m.queryInputs[queryTags].Value()),
	}
}

func (m model) uploadForm() documents.NewDocument {
	return documents.NewDocument{
		Text:     strings.TrimSpace(m.uploadText.Value()),
		Category: strings.TrimSpace(m.uploadInputs[uploadCategory-uploadCategory].Value()),
		Tags:     splitTags(m.uploadInputs[uploadTags-uploadCategory].Value()),
	}
}

// graphQuery lays out the last query's result set
func (m *model) graphQuery() tea.Cmd {
	if m.lastQuery == nil {
		m.err = errors.New("run a query first")
		return nil
	}
	m.graph.filter = m.lastQuery
	return m.switchView(graphView)
}

func (m *model) openDetail(t table.Model) tea.Cmd {
	row := t.SelectedRow()
	if row == nil {
		return nil
	}
	m.detailFrom = m.currentView
	return m.call(loadDetail(m.store, row[0]))
}
