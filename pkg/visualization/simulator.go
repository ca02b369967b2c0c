package visualization

import (
	"fmt"
	"sync"
	"time"

	"github.com/dd0wney/cluso-docgraph/pkg/logging"
	"github.com/dd0wney/cluso-docgraph/pkg/metrics"
)

// State is the simulator's lifecycle state
type State int

const (
	// StateCold: no frame loop; positions are final until restarted
	StateCold State = iota
	// StateRunning: alpha is decaying toward zero
	StateRunning
	// StateReheating: a non-zero alpha target holds the layout warm
	StateReheating
)

func (s State) String() string {
	switch s {
	case StateCold:
		return "cold"
	case StateRunning:
		return "running"
	case StateReheating:
		return "reheating"
	default:
		return "unknown"
	}
}

// SimulatorOptions configures a Simulator. Only Config is required.
type SimulatorOptions struct {
	Config    LayoutConfig
	Scheduler Scheduler
	Renderer  RenderAdapter
	Logger    logging.Logger
	Metrics   *metrics.Registry

	// KeepPositions skips initial placement for graphs that already carry positions
	KeepPositions bool
}

// Simulator owns a Graph and advances its layout one tick per scheduled frame.
// All methods are safe for concurrent use.
type Simulator struct {
	mu sync.Mutex

	graph *Graph
	topo  *Topology
	cfg   LayoutConfig

	alpha       float64
	alphaTarget float64
	ticks       uint64
	state       State

	// live gates every frame; generation invalidates frames queued by an
	// earlier loop
	live       bool
	generation uint64

	scheduler Scheduler
	renderer  RenderAdapter
	logger    logging.Logger
	metrics   *metrics.Registry
}

// NewSimulator places g's nodes and prepares a cold simulation
func NewSimulator(g *Graph, opts SimulatorOptions) (*Simulator, error) {
	cfg := opts.Config
	if cfg.Viewport.Area() == 0 {
		return nil, &GraphError{Op: "NewSimulator", Cause: ErrEmptyViewport}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout config: %w", err)
	}
	if g == nil {
		g, _ = NewGraph(nil, nil)
	}

	s := &Simulator{
		graph:     g,
		topo:      NewTopology(g),
		cfg:       cfg,
		alpha:     1,
		state:     StateCold,
		scheduler: opts.Scheduler,
		renderer:  opts.Renderer,
		logger:    logging.OrNop(opts.Logger).With(logging.Component(logging.ComponentSimulator)),
		metrics:   opts.Metrics,
	}
	if s.scheduler == nil {
		s.scheduler = NewManualScheduler()
	}
	if s.renderer == nil {
		s.renderer = nopRenderer{}
	}

	if !opts.KeepPositions {
		placement, err := NewPlacement(cfg.Placement, cfg)
		if err != nil {
			return nil, err
		}
		placement.Place(g, cfg.Viewport)
	}

	s.metrics.SetGraphSize(g.Len(), len(g.edges))
	s.logger.Debug("simulator created",
		logging.Count(g.Len()),
		logging.Int("edges", len(g.edges)),
		logging.String("placement", cfg.Placement))
	return s, nil
}

// Start begins the frame loop. Starting a running simulator does nothing;
// starting a settled one re-energizes it.
func (s *Simulator) Start() error {
	s.mu.Lock()
	if s.cfg.Viewport.Area() == 0 {
		s.mu.Unlock()
		return &GraphError{Op: "Start", Cause: ErrEmptyViewport}
	}
	gen, ok := s.startLocked(true)
	s.mu.Unlock()

	if ok {
		s.scheduler.Schedule(s.frame(gen))
	}
	return nil
}

func (s *Simulator) startLocked(energize bool) (uint64, bool) {
	if s.live {
		return 0, false
	}
	if energize && s.alpha < s.cfg.AlphaMin {
		s.alpha = 1
	}
	s.live = true
	s.generation++
	s.setStateLocked(s.warmStateLocked())
	return s.generation, true
}

func (s *Simulator) warmStateLocked() State {
	if s.alphaTarget > s.cfg.AlphaMin {
		return StateReheating
	}
	return StateRunning
}

func (s *Simulator) setStateLocked(st State) {
	if st == s.state {
		return
	}
	s.logger.Info("simulation state changed",
		logging.String("from", s.state.String()),
		logging.String("to", st.String()),
		logging.Alpha(s.alpha),
		logging.Tick(s.ticks))
	s.state = st
}

// frame returns the callback for one scheduled frame of loop gen
func (s *Simulator) frame(gen uint64) func() {
	return func() {
		s.mu.Lock()
		if !s.live || gen != s.generation {
			s.mu.Unlock()
			return
		}
		more := s.tickLocked()
		s.mu.Unlock()

		if more {
			s.scheduler.Schedule(s.frame(gen))
		}
	}
}

// Tick advances one step if the simulation is running and reports whether
// it is still running afterwards.
func (s *Simulator) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live {
		return false
	}
	return s.tickLocked()
}

func (s *Simulator) tickLocked() bool {
	start := time.Now()
	next := Step(s.snapshotLocked(), s.topo, s.cfg)
	s.applyLocked(next)
	s.metrics.RecordTick(time.Since(start), s.alpha)

	converged := next.Converged(s.cfg)
	if converged {
		s.live = false
		s.setStateLocked(StateCold)
		s.metrics.RecordSimulationRun(metrics.OutcomeConverged)
		s.logger.Debug("simulation converged", logging.Tick(s.ticks))
	}

	s.renderLocked()
	return !converged
}

func (s *Simulator) renderLocked() {
	s.renderer.Render(RenderFrame{
		Graph:    s.graph,
		Alpha:    s.alpha,
		Tick:     s.ticks,
		State:    s.state,
		Viewport: s.cfg.Viewport,
	})
}

// Redraw renders the current positions without advancing the simulation
func (s *Simulator) Redraw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renderLocked()
}

func (s *Simulator) snapshotLocked() Frame {
	f := Frame{
		Bodies:      make([]Body, len(s.graph.nodes)),
		Alpha:       s.alpha,
		AlphaTarget: s.alphaTarget,
		Ticks:       s.ticks,
	}
	for i, n := range s.graph.nodes {
		f.Bodies[i] = Body{X: n.X, Y: n.Y, VX: n.VX, VY: n.VY, Pin: n.Pin}
	}
	return f
}

func (s *Simulator) applyLocked(f Frame) {
	for i, n := range s.graph.nodes {
		b := f.Bodies[i]
		n.X, n.Y, n.VX, n.VY = b.X, b.Y, b.VX, b.VY
	}
	s.alpha = f.Alpha
	s.ticks = f.Ticks
}

// Stop halts the frame loop. Frames already queued become no-ops. Stop is
// safe to call in any state, any number of times.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(metrics.OutcomeStopped)
}

// Supersede stops a simulation whose graph has been replaced by a newer one
func (s *Simulator) Supersede() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked(metrics.OutcomeSuperseded)
}

func (s *Simulator) stopLocked(outcome string) {
	if !s.live {
		return
	}
	s.live = false
	s.generation++
	s.setStateLocked(StateCold)
	s.metrics.RecordSimulationRun(outcome)
}

// SetAlphaTarget sets the energy alpha decays toward. A target above
// AlphaMin starts a cold simulation without resetting alpha.
func (s *Simulator) SetAlphaTarget(target float64) {
	s.mu.Lock()
	s.alphaTarget = target
	var gen uint64
	var schedule bool
	switch {
	case s.live:
		s.setStateLocked(s.warmStateLocked())
	case target > s.cfg.AlphaMin && s.cfg.Viewport.Area() > 0:
		gen, schedule = s.startLocked(false)
	}
	s.mu.Unlock()

	if schedule {
		s.scheduler.Schedule(s.frame(gen))
	}
}

// Reheat restores full energy and makes sure the frame loop is running
func (s *Simulator) Reheat() {
	s.mu.Lock()
	if s.cfg.Viewport.Area() == 0 {
		s.mu.Unlock()
		return
	}
	s.alpha = 1
	gen, schedule := s.startLocked(false)
	s.mu.Unlock()

	if schedule {
		s.scheduler.Schedule(s.frame(gen))
	}
}

// Resize changes the viewport. A zero-area viewport stops the simulation
// and returns ErrEmptyViewport; Start fails until a usable size arrives.
func (s *Simulator) Resize(vp Viewport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg.Viewport = vp
	if vp.Area() == 0 {
		s.stopLocked(metrics.OutcomeStopped)
		return &GraphError{Op: "Resize", Cause: ErrEmptyViewport}
	}
	return nil
}

// RunUntilCold ticks synchronously until the simulation settles or maxTicks
// steps have run, starting it first if needed. It returns the steps taken.
func (s *Simulator) RunUntilCold(maxTicks int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.live {
		if s.cfg.Viewport.Area() == 0 {
			return 0
		}
		s.startLocked(true)
	}
	n := 0
	for n < maxTicks && s.live {
		s.tickLocked()
		n++
	}
	return n
}

func (s *Simulator) Alpha() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alpha
}

func (s *Simulator) AlphaTarget() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alphaTarget
}

func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ticks returns the number of steps taken so far
func (s *Simulator) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

func (s *Simulator) Config() LayoutConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Graph returns the simulated graph. Positions change while the simulation
// runs; use View for a consistent read.
func (s *Simulator) Graph() *Graph {
	return s.graph
}

// View calls fn with the graph while no tick can run. fn runs under the
// simulator's lock and must not call any Simulator method.
func (s *Simulator) View(fn func(g *Graph)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.graph)
}

// Layout exports the current positions and viewport in one consistent read
func (s *Simulator) Layout() Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Export(s.graph, s.cfg.Viewport)
}

// Positions returns a copy of every node's current position
func (s *Simulator) Positions() map[string]Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Position, len(s.graph.nodes))
	for _, n := range s.graph.nodes {
		out[n.ID] = n.Position()
	}
	return out
}
