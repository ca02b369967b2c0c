package visualization

import (
	"errors"
	"testing"
)

func TestNodeKindRadius(t *testing.T) {
	tests := []struct {
		kind   NodeKind
		name   string
		radius float64
	}{
		{KindCategory, "category", 40},
		{KindDocument, "document", 25},
		{KindTag, "tag", 15},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
		if got := tt.kind.Radius(); got != tt.radius {
			t.Errorf("%s Radius() = %v, want %v", tt.name, got, tt.radius)
		}
	}
}

func TestNewGraphRejectsDuplicateNode(t *testing.T) {
	nodes := []*Node{
		{ID: "tag:a", Kind: KindTag, Radius: 15},
		{ID: "tag:a", Kind: KindTag, Radius: 15},
	}
	_, err := NewGraph(nodes, nil)
	if !errors.Is(err, ErrDuplicateNode) {
		t.Fatalf("error = %v, want ErrDuplicateNode", err)
	}

	var gerr *GraphError
	if !errors.As(err, &gerr) || gerr.ID != "tag:a" {
		t.Errorf("expected GraphError naming tag:a, got %v", err)
	}
}

func TestNewGraphRejectsUnknownEndpoint(t *testing.T) {
	nodes := []*Node{{ID: "document:1", Kind: KindDocument, Radius: 25}}
	edges := []Edge{{Kind: EdgeDocumentTag, Source: "document:1", Target: "tag:missing"}}

	_, err := NewGraph(nodes, edges)
	if !errors.Is(err, ErrUnknownEndpoint) {
		t.Fatalf("error = %v, want ErrUnknownEndpoint", err)
	}
}

func TestNewGraphRejectsNonPositiveRadius(t *testing.T) {
	_, err := NewGraph([]*Node{{ID: "tag:a", Kind: KindTag}}, nil)
	if !errors.Is(err, ErrInvalidRadius) {
		t.Fatalf("error = %v, want ErrInvalidRadius", err)
	}
}

func TestViewportClamp(t *testing.T) {
	vp := Viewport{Width: 800, Height: 600}

	tests := []struct {
		name string
		in   Position
		r    float64
		want Position
	}{
		{"top-left corner", Position{0, 0}, 25, Position{25, 25}},
		{"bottom-right corner", Position{900, 700}, 25, Position{775, 575}},
		{"inside untouched", Position{400, 300}, 40, Position{400, 300}},
		{"left edge only", Position{-10, 300}, 15, Position{15, 300}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vp.Clamp(tt.in, tt.r); got != tt.want {
				t.Errorf("Clamp(%v, %v) = %v, want %v", tt.in, tt.r, got, tt.want)
			}
		})
	}
}

func TestViewportArea(t *testing.T) {
	if (Viewport{Width: 0, Height: 600}).Area() != 0 {
		t.Error("zero width should have zero area")
	}
	if (Viewport{Width: -5, Height: 600}).Area() != 0 {
		t.Error("negative width should have zero area")
	}
	if got := testViewport.Area(); got != 480000 {
		t.Errorf("Area() = %v, want 480000", got)
	}
}

func TestNodePinning(t *testing.T) {
	n := &Node{ID: "document:1", Kind: KindDocument, Radius: 25, X: 10, Y: 20, VX: 3, VY: 4}

	n.PinAt(100, 200)
	if !n.Pinned() {
		t.Fatal("node should be pinned")
	}
	if n.X != 100 || n.Y != 200 || n.VX != 0 || n.VY != 0 {
		t.Errorf("PinAt should move the node and clear velocity, got %+v", n)
	}

	n.Unpin()
	if n.Pinned() {
		t.Error("node should be unpinned")
	}
	if n.X != 100 || n.Y != 200 {
		t.Error("Unpin should not move the node")
	}
}
