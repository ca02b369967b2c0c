// Package visualization lays out the document/category/tag graph with an
// interactive force simulation.
package visualization

import (
	"math"

	"github.com/dd0wney/cluso-docgraph/pkg/documents"
)

// NodeKind distinguishes the three node families
type NodeKind int

const (
	KindCategory NodeKind = iota
	KindDocument
	KindTag
)

func (k NodeKind) String() string {
	switch k {
	case KindCategory:
		return "category"
	case KindDocument:
		return "document"
	case KindTag:
		return "tag"
	default:
		return "unknown"
	}
}

// Radius is the drawn size of a node of this kind
func (k NodeKind) Radius() float64 {
	switch k {
	case KindCategory:
		return 40
	case KindDocument:
		return 25
	default:
		return 15
	}
}

// EdgeKind distinguishes the two relationship types
type EdgeKind int

const (
	EdgeCategoryDocument EdgeKind = iota
	EdgeDocumentTag
)

func (k EdgeKind) String() string {
	if k == EdgeCategoryDocument {
		return "category-document"
	}
	return "document-tag"
}

// Position represents a 2D coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between p and q
func (p Position) Distance(q Position) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Viewport is the drawing area; the origin is the top-left corner
type Viewport struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

func (v Viewport) Area() float64 {
	if v.Width <= 0 || v.Height <= 0 {
		return 0
	}
	return v.Width * v.Height
}

func (v Viewport) Center() Position {
	return Position{X: v.Width / 2, Y: v.Height / 2}
}

// Clamp moves p so a circle of radius r centered on it stays inside v
func (v Viewport) Clamp(p Position, r float64) Position {
	return Position{
		X: math.Max(r, math.Min(v.Width-r, p.X)),
		Y: math.Max(r, math.Min(v.Height-r, p.Y)),
	}
}

// Node is a category, document or tag. X, Y, VX and VY belong to the
// simulator; Pin, when set, overrides integration.
type Node struct {
	ID     string
	Kind   NodeKind
	Label  string
	Radius float64

	X, Y   float64
	VX, VY float64
	Pin    *Position

	// Document is set for KindDocument nodes only
	Document *documents.Document
}

func (n *Node) Position() Position {
	return Position{X: n.X, Y: n.Y}
}

func (n *Node) Pinned() bool {
	return n.Pin != nil
}

// PinAt fixes the node at (x, y) and moves it there immediately
func (n *Node) PinAt(x, y float64) {
	n.Pin = &Position{X: x, Y: y}
	n.X, n.Y = x, y
	n.VX, n.VY = 0, 0
}

// Unpin returns the node to normal integration
func (n *Node) Unpin() {
	n.Pin = nil
}

// Contains reports whether (x, y) falls inside the node's circle
func (n *Node) Contains(x, y float64) bool {
	dx, dy := x-n.X, y-n.Y
	return dx*dx+dy*dy <= n.Radius*n.Radius
}

// Edge references its endpoints by node ID
type Edge struct {
	Kind   EdgeKind
	Source string
	Target string
}

// Graph is a fixed topology; only node positions change after construction
type Graph struct {
	nodes []*Node
	index map[string]int
	edges []Edge
}

// NewGraph validates and indexes nodes and edges
func NewGraph(nodes []*Node, edges []Edge) (*Graph, error) {
	g := &Graph{
		nodes: make([]*Node, 0, len(nodes)),
		index: make(map[string]int, len(nodes)),
		edges: make([]Edge, 0, len(edges)),
	}

	for _, n := range nodes {
		if _, dup := g.index[n.ID]; dup {
			return nil, &GraphError{Op: "NewGraph", ID: n.ID, Cause: ErrDuplicateNode}
		}
		if !(n.Radius > 0) {
			return nil, &GraphError{Op: "NewGraph", ID: n.ID, Cause: ErrInvalidRadius}
		}
		g.index[n.ID] = len(g.nodes)
		g.nodes = append(g.nodes, n)
	}

	for _, e := range edges {
		if _, ok := g.index[e.Source]; !ok {
			return nil, &GraphError{Op: "NewGraph", ID: e.Source, Cause: ErrUnknownEndpoint}
		}
		if _, ok := g.index[e.Target]; !ok {
			return nil, &GraphError{Op: "NewGraph", ID: e.Target, Cause: ErrUnknownEndpoint}
		}
		g.edges = append(g.edges, e)
	}

	return g, nil
}

// Node returns the node with id, or nil
func (g *Graph) Node(id string) *Node {
	if i, ok := g.index[id]; ok {
		return g.nodes[i]
	}
	return nil
}

func (g *Graph) indexOf(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Nodes returns the nodes in draw order
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

func (g *Graph) Edges() []Edge {
	return g.edges
}

func (g *Graph) Len() int {
	return len(g.nodes)
}

// IDs returns node IDs in draw order
func (g *Graph) IDs() []string {
	ids := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		ids[i] = n.ID
	}
	return ids
}
