package visualization

// RenderFrame is handed to the renderer after every tick. Graph is the
// simulator's live graph: read it during Render, do not keep it.
type RenderFrame struct {
	Graph    *Graph
	Alpha    float64
	Tick     uint64
	State    State
	Viewport Viewport
}

// RenderAdapter draws the graph. Render is called with the simulator
// locked, so it must not call back into the Simulator or an
// InteractionController bound to it.
type RenderAdapter interface {
	Render(f RenderFrame)
}

// RenderFunc adapts a function to the RenderAdapter interface
type RenderFunc func(f RenderFrame)

func (fn RenderFunc) Render(f RenderFrame) {
	fn(f)
}

type nopRenderer struct{}

func (nopRenderer) Render(RenderFrame) {}
