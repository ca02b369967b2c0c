// Package canvas rasterizes a layout frame onto a grid of terminal cells.
package canvas

import (
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-docgraph/pkg/visualization"
)

// Viewport units covered by one terminal cell. Cells are about twice as tall
// as they are wide, so circles stay round on screen.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

const maxLabelRunes = 14

const (
	GlyphCategory = '◉'
	GlyphDocument = '●'
	GlyphTag      = '•'
	GlyphPinned   = '◆'
	GlyphTagEdge  = '·'
)

type ink int

const (
	inkNone ink = iota
	inkEdge
	inkCategory
	inkDocument
	inkTag
	inkLabel
	inkHighlight
)

var styles = map[ink]lipgloss.Style{
	inkEdge:      lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")),
	inkCategory:  lipgloss.NewStyle().Foreground(lipgloss.Color("#9b87f5")).Bold(true),
	inkDocument:  lipgloss.NewStyle().Foreground(lipgloss.Color("#6E59A5")),
	inkTag:       lipgloss.NewStyle().Foreground(lipgloss.Color("#F97316")),
	inkLabel:     lipgloss.NewStyle().Foreground(lipgloss.Color("#BBBBBB")),
	inkHighlight: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true),
}

type cell struct {
	r   rune
	ink ink
}

// Canvas is a RenderAdapter that keeps the last frame as text
type Canvas struct {
	cols, rows int
	cells      []cell
	highlight  string
	last       string
	plain      string
	mu         sync.Mutex
}

var _ visualization.RenderAdapter = (*Canvas)(nil)

func New(cols, rows int) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows)
	return c
}

// Resize changes the grid and clears it
func (c *Canvas) Resize(cols, rows int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cols, c.rows = max(cols, 0), max(rows, 0)
	c.cells = make([]cell, c.cols*c.rows)
	c.last, c.plain = "", ""
}

func (c *Canvas) Size() (cols, rows int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cols, c.rows
}

// Viewport is the layout area the grid shows
func (c *Canvas) Viewport() visualization.Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return visualization.Viewport{
		Width:  float64(c.cols) * CellWidth,
		Height: float64(c.rows) * CellHeight,
	}
}

// SetHighlight draws node id, and its label, emphasized from the next frame on
func (c *Canvas) SetHighlight(id string) {
	c.mu.Lock()
	c.highlight = id
	c.mu.Unlock()
}

// CellToViewport returns the layout coordinates at the center of a cell
func CellToViewport(col, row int) (x, y float64) {
	return (float64(col) + 0.5) * CellWidth, (float64(row) + 0.5) * CellHeight
}

// ViewportToCell returns the cell containing layout point (x, y)
func ViewportToCell(x, y float64) (col, row int) {
	return int(math.Floor(x / CellWidth)), int(math.Floor(y / CellHeight))
}

// Render draws edges first, then nodes, then labels where there is room
func (c *Canvas) Render(f visualization.RenderFrame) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.cells {
		c.cells[i] = cell{}
	}
	if f.Graph == nil || len(c.cells) == 0 {
		c.last, c.plain = c.compose()
		return
	}

	g := f.Graph
	for _, e := range g.Edges() {
		s, t := g.Node(e.Source), g.Node(e.Target)
		if s == nil || t == nil {
			continue
		}
		c.line(s.X, s.Y, t.X, t.Y, e.Kind)
	}

	var highlighted *visualization.Node
	for _, n := range g.Nodes() {
		col, row := ViewportToCell(n.X, n.Y)
		c.set(col, row, nodeGlyph(n), nodeInk(n.Kind))
		if n.ID == c.highlight {
			highlighted = n
		}
	}

	for _, n := range g.Nodes() {
		if n.Kind != visualization.KindDocument {
			c.label(n, inkLabel)
		}
	}
	if highlighted != nil {
		col, row := ViewportToCell(highlighted.X, highlighted.Y)
		c.set(col, row, nodeGlyph(highlighted), inkHighlight)
		c.label(highlighted, inkHighlight)
	}

	c.last, c.plain = c.compose()
}

// String returns the last frame with colors
func (c *Canvas) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Plain returns the last frame without styling
func (c *Canvas) Plain() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plain
}

// At returns the rune drawn at a cell in the last frame
func (c *Canvas) At(col, row int) rune {
	c.mu.Lock()
	defer c.mu.Unlock()
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return 0
	}
	if r := c.cells[row*c.cols+col].r; r != 0 {
		return r
	}
	return ' '
}

func nodeGlyph(n *visualization.Node) rune {
	if n.Pinned() {
		return GlyphPinned
	}
	switch n.Kind {
	case visualization.KindCategory:
		return GlyphCategory
	case visualization.KindDocument:
		return GlyphDocument
	default:
		return GlyphTag
	}
}

func nodeInk(k visualization.NodeKind) ink {
	switch k {
	case visualization.KindCategory:
		return inkCategory
	case visualization.KindDocument:
		return inkDocument
	default:
		return inkTag
	}
}

func (c *Canvas) set(col, row int, r rune, k ink) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	c.cells[row*c.cols+col] = cell{r: r, ink: k}
}

func (c *Canvas) free(col, row int) bool {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return false
	}
	k := c.cells[row*c.cols+col].ink
	return k == inkNone || k == inkEdge
}

// line draws a Bresenham line between two layout points, leaving the end
// cells for the node glyphs
func (c *Canvas) line(x0, y0, x1, y1 float64, kind visualization.EdgeKind) {
	c0, r0 := ViewportToCell(x0, y0)
	c1, r1 := ViewportToCell(x1, y1)
	glyph := edgeGlyph(kind, c1-c0, r1-r0)

	dx, dy := abs(c1-c0), -abs(r1-r0)
	sx, sy := sign(c1-c0), sign(r1-r0)
	e := dx + dy
	col, row := c0, r0
	for {
		if (col != c0 || row != r0) && (col != c1 || row != r1) && c.free(col, row) {
			c.set(col, row, glyph, inkEdge)
		}
		if col == c1 && row == r1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			col += sx
		}
		if e2 <= dx {
			e += dx
			row += sy
		}
	}
}

func edgeGlyph(kind visualization.EdgeKind, dc, dr int) rune {
	if kind == visualization.EdgeDocumentTag {
		return GlyphTagEdge
	}
	switch {
	case dr == 0 || abs(dc) > 2*abs(dr):
		return '─'
	case dc == 0 || abs(dr) > 2*abs(dc):
		return '│'
	case (dc > 0) == (dr > 0):
		return '╲'
	default:
		return '╱'
	}
}

// label writes the node's label after its glyph if the cells are free
func (c *Canvas) label(n *visualization.Node, k ink) {
	text := []rune(n.Label)
	if len(text) > maxLabelRunes {
		text = append(text[:maxLabelRunes-1], '…')
	}
	col, row := ViewportToCell(n.X, n.Y)
	start := col + 2
	for i := range text {
		if !c.free(start+i, row) && k != inkHighlight {
			return
		}
	}
	for i, r := range text {
		c.set(start+i, row, r, k)
	}
}

// compose joins the cells into styled and plain text, styling runs of equal ink together
func (c *Canvas) compose() (styled, plain string) {
	var sb, pb strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
			pb.WriteByte('\n')
		}
		var run []rune
		runInk := inkNone
		flush := func() {
			if len(run) == 0 {
				return
			}
			if st, ok := styles[runInk]; ok {
				sb.WriteString(st.Render(string(run)))
			} else {
				sb.WriteString(string(run))
			}
			run = run[:0]
		}
		for col := 0; col < c.cols; col++ {
			cl := c.cells[row*c.cols+col]
			r := cl.r
			if r == 0 {
				r = ' '
			}
			if cl.ink != runInk {
				flush()
				runInk = cl.ink
			}
			run = append(run, r)
			pb.WriteRune(r)
		}
		flush()
	}
	return sb.String(), pb.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
