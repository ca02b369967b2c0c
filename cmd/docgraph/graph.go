package main

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/cluso-docgraph/pkg/canvas"
	"github.com/dd0wney/cluso-docgraph/pkg/documents"
	"github.com/dd0wney/cluso-docgraph/pkg/logging"
	"github.com/dd0wney/cluso-docgraph/pkg/metrics"
	"github.com/dd0wney/cluso-docgraph/pkg/visualization"
)

const (
	// graphTop is the screen row of the canvas' first line: title, tabs,
	// blank line, status line
	graphTop = 4
	// graphFooter leaves room for the detail card and help below the canvas
	graphFooter = 9

	// A smaller canvas cannot hold a dozen documents without overlap, so
	// the simulation waits for the terminal to grow
	minCanvasCols = 60
	minCanvasRows = 20
)

// graphPane owns the simulator for the graph view. Frames are queued on a
// ManualScheduler and run one per frameMsg, so every step happens on the
// bubbletea goroutine.
type graphPane struct {
	canvas *canvas.Canvas
	sched  *visualization.ManualScheduler
	sim    *visualization.Simulator
	ic     *visualization.InteractionController
	// current mirrors sim for readers outside the bubbletea goroutine
	current atomic.Pointer[visualization.Simulator]

	layout   visualization.LayoutConfig
	interval time.Duration
	logger   logging.Logger
	metrics  *metrics.Registry

	// filter selects the document set; nil means every document
	filter    *documents.Filter
	signature string
	seq       int
	loading   bool

	dragging     string
	hover        *documents.Document
	framePending bool
	err          error
}

func newGraphPane(layout visualization.LayoutConfig, interval time.Duration, logger logging.Logger, reg *metrics.Registry) *graphPane {
	return &graphPane{
		canvas:   canvas.New(1, 1),
		sched:    visualization.NewManualScheduler(),
		layout:   layout,
		interval: interval,
		logger:   logger,
		metrics:  reg,
	}
}

// simulator returns the live simulator; safe from any goroutine
func (p *graphPane) simulator() *visualization.Simulator {
	return p.current.Load()
}

// title names the current document set
func (p *graphPane) title() string {
	if p.filter == nil {
		return "all documents"
	}
	var parts []string
	if p.filter.Text != "" {
		parts = append(parts, fmt.Sprintf("text %q", p.filter.Text))
	}
	if p.filter.Category != "" {
		parts = append(parts, "category "+p.filter.Category)
	}
	if len(p.filter.Tags) > 0 {
		parts = append(parts, "tags "+strings.Join(p.filter.Tags, ","))
	}
	if len(parts) == 0 {
		return "query: everything"
	}
	return "query: " + strings.Join(parts, ", ")
}

// resize fits the canvas to the terminal and tells the simulator. Below
// the minimum canvas the simulation is halted; when active and the
// terminal grows back it resumes.
func (p *graphPane) resize(width, height int, active bool) tea.Cmd {
	cols := max(width, 1)
	rows := max(height-graphTop-graphFooter, 1)
	p.canvas.Resize(cols, rows)
	if p.sim == nil {
		return nil
	}
	if p.tooSmall() {
		p.release()
		p.sim.Stop()
		return nil
	}
	if err := p.sim.Resize(p.canvas.Viewport()); err != nil {
		p.err = err
		return nil
	}
	if !active {
		p.sim.Redraw()
		return nil
	}
	p.resume()
	return p.nextFrame()
}

// tooSmall reports whether the canvas is below the size the layout needs
func (p *graphPane) tooSmall() bool {
	cols, rows := p.canvas.Size()
	return cols < minCanvasCols || rows < minCanvasRows
}

// sizeHint names the terminal size the graph view needs
func (p *graphPane) sizeHint(width, height int) string {
	return fmt.Sprintf("Terminal too small for the graph: need %dx%d, have %dx%d",
		minCanvasCols, minCanvasRows+graphTop+graphFooter, width, height)
}

// request starts loading the document set for filter
func (p *graphPane) request(store documents.Store, filter *documents.Filter) tea.Cmd {
	p.filter = filter
	p.seq++
	p.loading = true
	return loadGraphDocs(store, p.seq, filter)
}

// receive builds a new graph from msg unless a newer request superseded it
// or the set is unchanged, in which case the current layout resumes.
func (p *graphPane) receive(msg graphDocsMsg) tea.Cmd {
	if msg.seq != p.seq {
		return nil
	}
	p.loading = false
	if msg.err != nil {
		p.err = msg.err
		return nil
	}
	p.err = nil

	sig := signature(msg.docs)
	if p.sim != nil && sig == p.signature {
		p.resume()
		return p.nextFrame()
	}
	if err := p.replace(msg.docs); err != nil {
		p.err = err
		return nil
	}
	p.signature = sig
	return p.nextFrame()
}

// replace swaps in a simulator for docs; the old one is superseded
func (p *graphPane) replace(docs []documents.Document) error {
	p.release()
	if p.sim != nil {
		p.sim.Supersede()
	}

	g := visualization.BuildGraph(docs)
	cfg := p.layout
	cfg.Viewport = p.canvas.Viewport()
	// A frameMsg already in flight serves the new scheduler
	p.sched = visualization.NewManualScheduler()

	sim, err := visualization.NewSimulator(g, visualization.SimulatorOptions{
		Config:    cfg,
		Scheduler: p.sched,
		Renderer:  p.canvas,
		Logger:    p.logger,
		Metrics:   p.metrics,
	})
	if err != nil {
		p.sim, p.ic = nil, nil
		p.current.Store(nil)
		return fmt.Errorf("building graph: %w", err)
	}
	p.sim = sim
	p.current.Store(sim)
	p.ic = visualization.NewInteractionController(sim)
	p.hover = nil
	p.canvas.SetHighlight("")
	p.logger.Info("graph replaced",
		logging.Count(g.Len()),
		logging.String("set", p.title()))

	sim.Redraw()
	if p.tooSmall() {
		return nil
	}
	return sim.Start()
}

// resume continues a layout that was interrupted by leaving the view. A
// settled layout is only redrawn.
func (p *graphPane) resume() {
	if p.sim == nil {
		return
	}
	if !p.tooSmall() && p.sim.Alpha() >= p.sim.Config().AlphaMin {
		if err := p.sim.Start(); err != nil {
			p.err = err
		}
	}
	p.sim.Redraw()
}

// stop ends any drag, drops an outstanding load and halts the frame loop
func (p *graphPane) stop() {
	p.release()
	p.seq++
	p.loading = false
	if p.sim != nil {
		p.sim.Stop()
	}
}

func (p *graphPane) release() {
	if p.ic != nil {
		p.ic.CancelAll()
	}
	p.dragging = ""
}

func (p *graphPane) reheat() tea.Cmd {
	if p.sim == nil || p.tooSmall() {
		return nil
	}
	p.sim.Reheat()
	return p.nextFrame()
}

// nextFrame schedules a frameMsg when frames are queued and none is in flight
func (p *graphPane) nextFrame() tea.Cmd {
	if p.framePending || p.sched.Pending() == 0 {
		return nil
	}
	p.framePending = true
	return tea.Tick(p.interval, func(time.Time) tea.Msg { return frameMsg{} })
}

// frame runs one queued frame and asks for the next
func (p *graphPane) frame() tea.Cmd {
	p.framePending = false
	p.sched.RunNext()
	return p.nextFrame()
}

// cellAt converts a screen position to a canvas cell
func (p *graphPane) cellAt(x, y int) (col, row int, ok bool) {
	cols, rows := p.canvas.Size()
	col, row = x, y-graphTop
	return col, row, col >= 0 && row >= 0 && col < cols && row < rows
}

// mouse handles presses, drags, releases and hover on the canvas
func (p *graphPane) mouse(msg tea.MouseMsg) tea.Cmd {
	if p.sim == nil || p.tooSmall() {
		return nil
	}
	col, row, inside := p.cellAt(msg.X, msg.Y)
	x, y := canvas.CellToViewport(col, row)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inside {
			return nil
		}
		n, ok := p.ic.Pick(x, y)
		if !ok {
			return nil
		}
		if err := p.ic.OnDragStart(n.ID); err != nil {
			p.err = err
			return nil
		}
		p.dragging = n.ID
		p.canvas.SetHighlight(n.ID)

	case tea.MouseActionMotion:
		if p.dragging != "" {
			// Positions outside the canvas are clamped by the controller
			if err := p.ic.OnDragMove(p.dragging, x, y); err != nil && !errors.Is(err, visualization.ErrNotDragging) {
				p.err = err
			}
			break
		}
		p.hoverAt(x, y, inside)

	case tea.MouseActionRelease:
		if p.dragging == "" {
			return nil
		}
		if err := p.ic.OnDragEnd(p.dragging); err != nil {
			p.err = err
		}
		p.dragging = ""
	}

	if p.sim.State() == visualization.StateCold {
		p.sim.Redraw()
	}
	return p.nextFrame()
}

func (p *graphPane) hoverAt(x, y float64, inside bool) {
	var (
		id  string
		doc *documents.Document
	)
	if inside {
		if n, ok := p.ic.Pick(x, y); ok {
			id = n.ID
			if n.Document != nil {
				d := n.Document.Clone()
				doc = &d
			}
		}
	}
	p.hover = doc
	p.canvas.SetHighlight(id)
}

// signature identifies a document set by its ids in order
func signature(docs []documents.Document) string {
	ids := make([]string, len(docs))
	for i := range docs {
		ids[i] = docs[i].ID
	}
	return strings.Join(ids, "\x00")
}
