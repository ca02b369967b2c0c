package visualization

import (
	"math"
	"testing"
)

func TestCircularPlacement(t *testing.T) {
	g := BuildGraph(mixedDocs())
	(&CircularPlacement{Padding: 50}).Place(g, Viewport{Width: 400, Height: 400})

	// All distances should be approximately equal (within 5% tolerance)
	c := Position{X: 200, Y: 200}
	first := g.Nodes()[0].Position().Distance(c)
	for _, n := range g.Nodes() {
		ratio := n.Position().Distance(c) / first
		if ratio < 0.95 || ratio > 1.05 {
			t.Errorf("Circular layout not uniform: distance ratio %f", ratio)
		}
	}
}

func TestLayeredPlacement(t *testing.T) {
	g := BuildGraph(draftScenario())
	(&LayeredPlacement{Padding: 50}).Place(g, Viewport{Width: 600, Height: 400})

	catY := g.Node("category:Finance").Y
	docY := g.Node("document:doc_1").Y
	tagY := g.Node("tag:Draft").Y
	if !(catY < docY && docY < tagY) {
		t.Errorf("levels out of order: category %v document %v tag %v", catY, docY, tagY)
	}
	if math.Abs(g.Node("document:doc_2").Y-docY) > 1 {
		t.Error("documents not at the same level")
	}
}

func TestSpiralPlacementIsCompactAndDistinct(t *testing.T) {
	g := BuildGraph(mixedDocs())
	(&SpiralPlacement{Radius: 10}).Place(g, testViewport)

	seen := make(map[Position]bool)
	c := testViewport.Center()
	for i, n := range g.Nodes() {
		want := 10 * math.Sqrt(0.5+float64(i))
		if d := n.Position().Distance(c); math.Abs(d-want) > 1e-9 {
			t.Errorf("node %d at radius %v, want %v", i, d, want)
		}
		if seen[n.Position()] {
			t.Errorf("node %d shares a position", i)
		}
		seen[n.Position()] = true
	}
}

func TestPlacementKeepsPins(t *testing.T) {
	g := BuildGraph(draftScenario())
	g.Node("tag:Draft").PinAt(33, 44)
	(&SpiralPlacement{Radius: 10}).Place(g, testViewport)

	if p := g.Node("tag:Draft").Position(); p.X != 33 || p.Y != 44 {
		t.Errorf("pinned node placed at %v", p)
	}
}

func TestNewPlacement(t *testing.T) {
	cfg := DefaultLayoutConfig(testViewport)
	for _, name := range []string{"", PlacementSpiral, PlacementCircular, PlacementLayered} {
		if _, err := NewPlacement(name, cfg); err != nil {
			t.Errorf("NewPlacement(%q) error = %v", name, err)
		}
	}
	if _, err := NewPlacement("grid", cfg); err == nil {
		t.Error("expected error for unknown placement")
	}
}
