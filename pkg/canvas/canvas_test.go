package canvas

import (
	"strings"
	"testing"

	"github.com/dd0wney/cluso-docgraph/pkg/documents"
	"github.com/dd0wney/cluso-docgraph/pkg/visualization"
)

// at returns layout coordinates at the center of a cell
func at(col, row int) (float64, float64) {
	return CellToViewport(col, row)
}

func testGraph(t *testing.T) *visualization.Graph {
	t.Helper()
	g := visualization.BuildGraph([]documents.Document{
		{ID: "doc_1", Text: "Budget", Category: "Finance", Tags: []string{"Draft"}},
	})
	place := func(id string, col, row int) {
		g.Node(id).X, g.Node(id).Y = at(col, row)
	}
	place("category:Finance", 2, 2)
	place("document:doc_1", 12, 2)
	place("tag:Draft", 12, 8)
	return g
}

func TestCellConversion(t *testing.T) {
	x, y := CellToViewport(3, 4)
	if x != 28 || y != 72 {
		t.Errorf("CellToViewport(3, 4) = (%v, %v), want (28, 72)", x, y)
	}
	if col, row := ViewportToCell(x, y); col != 3 || row != 4 {
		t.Errorf("ViewportToCell round trip = (%d, %d)", col, row)
	}
	if col, row := ViewportToCell(-1, -1); col != -1 || row != -1 {
		t.Errorf("negative coordinates should map outside the grid, got (%d, %d)", col, row)
	}
}

func TestViewportMatchesGrid(t *testing.T) {
	c := New(100, 30)
	vp := c.Viewport()
	if vp.Width != 800 || vp.Height != 480 {
		t.Errorf("Viewport() = %+v, want 800x480", vp)
	}
}

func TestRenderDrawsNodesEdgesAndLabels(t *testing.T) {
	c := New(40, 12)
	c.Render(visualization.RenderFrame{Graph: testGraph(t)})

	if got := c.At(2, 2); got != GlyphCategory {
		t.Errorf("category glyph = %q", got)
	}
	if got := c.At(12, 2); got != GlyphDocument {
		t.Errorf("document glyph = %q", got)
	}
	if got := c.At(12, 8); got != GlyphTag {
		t.Errorf("tag glyph = %q", got)
	}

	// Category to document runs along row 2, interrupted by the category label
	if got := c.At(11, 2); got != '─' {
		t.Errorf("category edge glyph = %q, want ─", got)
	}
	// Document to tag runs down column 12
	if got := c.At(12, 5); got != GlyphTagEdge {
		t.Errorf("tag edge glyph = %q, want %q", got, GlyphTagEdge)
	}

	plain := c.Plain()
	lines := strings.Split(plain, "\n")
	if len(lines) != 12 {
		t.Fatalf("rendered %d rows, want 12", len(lines))
	}
	if !strings.Contains(lines[2], "Finance") {
		t.Errorf("category label missing: %q", lines[2])
	}
	if !strings.Contains(lines[8], "Draft") {
		t.Errorf("tag label missing: %q", lines[8])
	}
	if strings.Contains(plain, "Budget") {
		t.Error("document labels are only drawn when highlighted")
	}
}

func TestRenderHighlightShowsDocumentLabel(t *testing.T) {
	c := New(40, 12)
	c.SetHighlight("document:doc_1")
	c.Render(visualization.RenderFrame{Graph: testGraph(t)})

	if !strings.Contains(c.Plain(), "Budget") {
		t.Error("highlighted document label missing")
	}
}

func TestRenderPinnedGlyph(t *testing.T) {
	g := testGraph(t)
	n := g.Node("tag:Draft")
	n.PinAt(n.X, n.Y)

	c := New(40, 12)
	c.Render(visualization.RenderFrame{Graph: g})
	if got := c.At(12, 8); got != GlyphPinned {
		t.Errorf("pinned glyph = %q, want %q", got, GlyphPinned)
	}
}

func TestRenderClipsOutsideGrid(t *testing.T) {
	g := testGraph(t)
	g.Node("tag:Draft").X, g.Node("tag:Draft").Y = at(100, 100)

	c := New(20, 10)
	c.Render(visualization.RenderFrame{Graph: g})

	if got := len(strings.Split(c.Plain(), "\n")); got != 10 {
		t.Errorf("rows = %d, want 10", got)
	}
	if c.At(100, 100) != 0 {
		t.Error("At outside the grid should return 0")
	}
}

func TestRenderEmptyFrame(t *testing.T) {
	c := New(5, 2)
	c.Render(visualization.RenderFrame{})
	if got := c.Plain(); got != "     \n     " {
		t.Errorf("empty frame = %q", got)
	}
}

func TestCanvasAsSimulatorRenderer(t *testing.T) {
	c := New(100, 37)
	sim, err := visualization.NewSimulator(
		visualization.BuildGraph([]documents.Document{
			{ID: "doc_1", Text: "a", Category: "HR", Tags: []string{"Draft"}},
			{ID: "doc_2", Text: "b", Category: "HR", Tags: []string{"Final"}},
		}),
		visualization.SimulatorOptions{
			Config:   visualization.DefaultLayoutConfig(c.Viewport()),
			Renderer: c,
		})
	if err != nil {
		t.Fatal(err)
	}

	sim.RunUntilCold(1000)
	plain := c.Plain()
	counts := map[rune]int{GlyphCategory: 1, GlyphDocument: 2, GlyphTag: 2}
	for glyph, want := range counts {
		if got := strings.Count(plain, string(glyph)); got != want {
			t.Errorf("%q drawn %d times, want %d\n%s", glyph, got, want, plain)
		}
	}
}
