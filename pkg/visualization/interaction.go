package visualization

import (
	"sync"

	"github.com/dd0wney/cluso-docgraph/pkg/logging"
)

// InteractionController turns pointer drags into pins on the simulator's
// nodes. Drags on different nodes are independent; the simulation stays
// warm while at least one is active.
type InteractionController struct {
	sim      *Simulator
	dragging map[string]bool
	mu       sync.Mutex
}

func NewInteractionController(sim *Simulator) *InteractionController {
	return &InteractionController{
		sim:      sim,
		dragging: make(map[string]bool),
	}
}

// Pick returns the topmost node whose circle contains (x, y). Later nodes
// are drawn on top of earlier ones.
func (c *InteractionController) Pick(x, y float64) (*Node, bool) {
	c.sim.mu.Lock()
	defer c.sim.mu.Unlock()

	nodes := c.sim.graph.nodes
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].Contains(x, y) {
			return nodes[i], true
		}
	}
	return nil, false
}

// OnDragStart pins the node where it stands. The first concurrent drag
// raises the alpha target so the rest of the graph reacts.
func (c *InteractionController) OnDragStart(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sim.mu.Lock()
	n := c.sim.graph.Node(id)
	if n == nil {
		c.sim.mu.Unlock()
		return &GraphError{Op: "OnDragStart", ID: id, Cause: ErrUnknownNode}
	}
	if c.dragging[id] {
		c.sim.mu.Unlock()
		return nil
	}
	n.PinAt(n.X, n.Y)
	target := c.sim.cfg.ReheatTarget
	c.sim.mu.Unlock()

	first := len(c.dragging) == 0
	c.dragging[id] = true
	if first {
		c.sim.SetAlphaTarget(target)
	}

	c.sim.metrics.RecordDrag()
	c.sim.logger.Debug("drag started", logging.NodeID(id), logging.Count(len(c.dragging)))
	return nil
}

// OnDragMove moves the node's pin to the pointer, kept inside the viewport
func (c *InteractionController) OnDragMove(id string, x, y float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sim.mu.Lock()
	defer c.sim.mu.Unlock()

	n := c.sim.graph.Node(id)
	if n == nil {
		return &GraphError{Op: "OnDragMove", ID: id, Cause: ErrUnknownNode}
	}
	if !c.dragging[id] {
		return &GraphError{Op: "OnDragMove", ID: id, Cause: ErrNotDragging}
	}
	p := c.sim.cfg.Viewport.Clamp(Position{X: x, Y: y}, n.Radius)
	n.PinAt(p.X, p.Y)
	return nil
}

// OnDragEnd releases the pin. When the last drag ends the alpha target
// returns to zero and the layout settles again.
func (c *InteractionController) OnDragEnd(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sim.mu.Lock()
	n := c.sim.graph.Node(id)
	if n == nil {
		c.sim.mu.Unlock()
		return &GraphError{Op: "OnDragEnd", ID: id, Cause: ErrUnknownNode}
	}
	if !c.dragging[id] {
		c.sim.mu.Unlock()
		return &GraphError{Op: "OnDragEnd", ID: id, Cause: ErrNotDragging}
	}
	n.Unpin()
	c.sim.mu.Unlock()

	delete(c.dragging, id)
	if len(c.dragging) == 0 {
		c.sim.SetAlphaTarget(0)
	}
	c.sim.logger.Debug("drag ended", logging.NodeID(id), logging.Count(len(c.dragging)))
	return nil
}

// Active returns the number of drags in progress
func (c *InteractionController) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.dragging)
}

// Dragging reports whether id is being dragged
func (c *InteractionController) Dragging(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dragging[id]
}

// CancelAll ends every drag, for example when the view loses focus
func (c *InteractionController) CancelAll() {
	c.mu.Lock()
	ids := make([]string, 0, len(c.dragging))
	for id := range c.dragging {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	for _, id := range ids {
		_ = c.OnDragEnd(id)
	}
}
