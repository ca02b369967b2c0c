package visualization

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/golang/snappy"
)

// LayoutNode is a positioned node in an exported layout
type LayoutNode struct {
	ID         string  `json:"id"`
	Kind       string  `json:"kind"`
	Label      string  `json:"label"`
	Radius     float64 `json:"radius"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Pinned     bool    `json:"pinned,omitempty"`
	DocumentID string  `json:"documentId,omitempty"`
}

// LayoutEdge is an exported edge
type LayoutEdge struct {
	Kind   string `json:"kind"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Layout is a snapshot of a graph and its positions
type Layout struct {
	Viewport Viewport     `json:"viewport"`
	Nodes    []LayoutNode `json:"nodes"`
	Edges    []LayoutEdge `json:"edges"`
}

// Export captures g's current positions. For a running simulation use
// Simulator.Layout; inside Simulator.View, pass a viewport read beforehand.
func Export(g *Graph, vp Viewport) Layout {
	l := Layout{
		Viewport: vp,
		Nodes:    make([]LayoutNode, 0, g.Len()),
		Edges:    make([]LayoutEdge, 0, len(g.edges)),
	}
	for _, n := range g.nodes {
		ln := LayoutNode{
			ID:     n.ID,
			Kind:   n.Kind.String(),
			Label:  n.Label,
			Radius: n.Radius,
			X:      n.X,
			Y:      n.Y,
			Pinned: n.Pinned(),
		}
		if n.Document != nil {
			ln.DocumentID = n.Document.ID
		}
		l.Nodes = append(l.Nodes, ln)
	}
	for _, e := range g.edges {
		l.Edges = append(l.Edges, LayoutEdge{Kind: e.Kind.String(), Source: e.Source, Target: e.Target})
	}
	return l
}

// Position returns the exported position of node id
func (l Layout) Position(id string) (Position, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return Position{X: n.X, Y: n.Y}, true
		}
	}
	return Position{}, false
}

// WriteLayout writes l as JSON, snappy-compressed when compress is set
func WriteLayout(w io.Writer, l Layout, compress bool) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	if compress {
		data = snappy.Encode(nil, data)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}
	return nil
}

// ReadLayout reads a layout written by WriteLayout
func ReadLayout(r io.Reader, compressed bool) (Layout, error) {
	var l Layout
	data, err := io.ReadAll(r)
	if err != nil {
		return l, fmt.Errorf("read layout: %w", err)
	}
	if compressed {
		if data, err = snappy.Decode(nil, data); err != nil {
			return l, fmt.Errorf("decompress layout: %w", err)
		}
	}
	if err := json.Unmarshal(data, &l); err != nil {
		return l, fmt.Errorf("unmarshal layout: %w", err)
	}
	return l, nil
}
