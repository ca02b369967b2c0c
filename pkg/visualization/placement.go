package visualization

import (
	"fmt"
	"math"
)

// Placement assigns starting positions before the first tick
type Placement interface {
	Place(g *Graph, vp Viewport)
}

// NewPlacement returns the placement registered under name
func NewPlacement(name string, cfg LayoutConfig) (Placement, error) {
	switch name {
	case "", PlacementSpiral:
		return &SpiralPlacement{Radius: cfg.InitialRadius}, nil
	case PlacementCircular:
		return &CircularPlacement{Padding: 50}, nil
	case PlacementLayered:
		return &LayeredPlacement{Padding: 50}, nil
	default:
		return nil, fmt.Errorf("unknown placement %q", name)
	}
}

var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// SpiralPlacement packs nodes on a phyllotaxis spiral around the center
type SpiralPlacement struct {
	Radius float64
}

func (sp *SpiralPlacement) Place(g *Graph, vp Viewport) {
	c := vp.Center()
	for i, n := range g.nodes {
		r := sp.Radius * math.Sqrt(0.5+float64(i))
		angle := float64(i) * goldenAngle
		place(n, vp, c.X+r*math.Cos(angle), c.Y+r*math.Sin(angle))
	}
}

// CircularPlacement arranges nodes in a circle
type CircularPlacement struct {
	Padding float64
}

func (cp *CircularPlacement) Place(g *Graph, vp Viewport) {
	if g.Len() == 0 {
		return
	}
	c := vp.Center()
	radius := math.Max(math.Min(c.X, c.Y)-cp.Padding, 0)
	angleStep := 2 * math.Pi / float64(g.Len())

	for i, n := range g.nodes {
		angle := float64(i) * angleStep
		place(n, vp, c.X+radius*math.Cos(angle), c.Y+radius*math.Sin(angle))
	}
}

// LayeredPlacement stacks nodes in horizontal bands by their distance from
// a root (a node with no incoming edges): categories, then documents, then tags.
type LayeredPlacement struct {
	Padding float64
}

func (lp *LayeredPlacement) Place(g *Graph, vp Viewport) {
	if g.Len() == 0 {
		return
	}

	incoming := make([]int, g.Len())
	outgoing := make([][]int, g.Len())
	for _, e := range g.edges {
		s, t := g.index[e.Source], g.index[e.Target]
		incoming[t]++
		outgoing[s] = append(outgoing[s], t)
	}

	var roots []int
	for i := range g.nodes {
		if incoming[i] == 0 {
			roots = append(roots, i)
		}
	}
	if len(roots) == 0 {
		roots = []int{0}
	}

	// Build levels using BFS
	var levels [][]int
	visited := make([]bool, g.Len())
	for _, r := range roots {
		visited[r] = true
	}
	for current := roots; len(current) > 0; {
		levels = append(levels, current)
		var next []int
		for _, i := range current {
			for _, j := range outgoing[i] {
				if !visited[j] {
					visited[j] = true
					next = append(next, j)
				}
			}
		}
		current = next
	}
	for i := range g.nodes {
		if !visited[i] {
			levels[len(levels)-1] = append(levels[len(levels)-1], i)
		}
	}

	levelHeight := (vp.Height - 2*lp.Padding) / float64(len(levels))
	for li, level := range levels {
		y := lp.Padding + float64(li)*levelHeight + levelHeight/2
		spacing := (vp.Width - 2*lp.Padding) / float64(len(level)+1)
		for k, i := range level {
			place(g.nodes[i], vp, lp.Padding+spacing*float64(k+1), y)
		}
	}
}

// place sets an unpinned node's starting position and clears its velocity
func place(n *Node, vp Viewport, x, y float64) {
	n.VX, n.VY = 0, 0
	if n.Pin != nil {
		n.X, n.Y = n.Pin.X, n.Pin.Y
		return
	}
	p := vp.Clamp(Position{X: x, Y: y}, n.Radius)
	n.X, n.Y = p.X, p.Y
}
