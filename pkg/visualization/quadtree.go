package visualization

import "math"

const maxQuadDepth = 32

// quadNode is one square of a point-region quadtree. Leaves hold point
// indices; points that cannot be separated share a leaf at maxQuadDepth.
type quadNode struct {
	x0, y0, x1, y1 float64
	children       [4]*quadNode
	points         []int

	// Aggregates filled in by finalize
	count  int
	cx, cy float64
	maxR   float64
}

// quadtree indexes a set of positions for Barnes-Hut and neighbor queries
type quadtree struct {
	root *quadNode
	xs   []float64
	ys   []float64
	r    []float64
}

func newQuadtree(xs, ys, radii []float64) *quadtree {
	qt := &quadtree{xs: xs, ys: ys, r: radii}
	if len(xs) == 0 {
		return qt
	}

	x0, y0 := math.Inf(1), math.Inf(1)
	x1, y1 := math.Inf(-1), math.Inf(-1)
	for i := range xs {
		x0, x1 = math.Min(x0, xs[i]), math.Max(x1, xs[i])
		y0, y1 = math.Min(y0, ys[i]), math.Max(y1, ys[i])
	}
	side := math.Max(math.Max(x1-x0, y1-y0), 1)
	qt.root = &quadNode{x0: x0, y0: y0, x1: x0 + side, y1: y0 + side}

	for i := range xs {
		qt.insert(qt.root, i, 0)
	}
	qt.finalize(qt.root)
	return qt
}

func (n *quadNode) leaf() bool {
	return n.children == [4]*quadNode{}
}

func (n *quadNode) quadrant(x, y float64) int {
	mx, my := (n.x0+n.x1)/2, (n.y0+n.y1)/2
	q := 0
	if x >= mx {
		q |= 1
	}
	if y >= my {
		q |= 2
	}
	return q
}

func (qt *quadtree) child(n *quadNode, q int) *quadNode {
	if n.children[q] == nil {
		mx, my := (n.x0+n.x1)/2, (n.y0+n.y1)/2
		c := &quadNode{x0: n.x0, y0: n.y0, x1: mx, y1: my}
		if q&1 != 0 {
			c.x0, c.x1 = mx, n.x1
		}
		if q&2 != 0 {
			c.y0, c.y1 = my, n.y1
		}
		n.children[q] = c
	}
	return n.children[q]
}

func (qt *quadtree) insert(n *quadNode, i, depth int) {
	if !n.leaf() {
		qt.insert(qt.child(n, n.quadrant(qt.xs[i], qt.ys[i])), i, depth+1)
		return
	}
	if len(n.points) == 0 || depth >= maxQuadDepth {
		n.points = append(n.points, i)
		return
	}

	// Split: push the existing points down, then retry
	existing := n.points
	n.points = nil
	for _, j := range existing {
		qt.insert(qt.child(n, n.quadrant(qt.xs[j], qt.ys[j])), j, depth+1)
	}
	qt.insert(qt.child(n, n.quadrant(qt.xs[i], qt.ys[i])), i, depth+1)
}

func (qt *quadtree) finalize(n *quadNode) {
	if n.leaf() {
		for _, i := range n.points {
			n.cx += qt.xs[i]
			n.cy += qt.ys[i]
			n.maxR = math.Max(n.maxR, qt.r[i])
		}
		n.count = len(n.points)
	} else {
		for _, c := range n.children {
			if c == nil {
				continue
			}
			qt.finalize(c)
			n.count += c.count
			n.cx += c.cx * float64(c.count)
			n.cy += c.cy * float64(c.count)
			n.maxR = math.Max(n.maxR, c.maxR)
		}
	}
	if n.count > 0 {
		n.cx /= float64(n.count)
		n.cy /= float64(n.count)
	}
}

// visit walks the tree depth-first; returning true from fn skips the children
func (qt *quadtree) visit(fn func(n *quadNode) bool) {
	if qt.root == nil {
		return
	}
	stack := []*quadNode{qt.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.count == 0 || fn(n) {
			continue
		}
		for q := 3; q >= 0; q-- {
			if c := n.children[q]; c != nil {
				stack = append(stack, c)
			}
		}
	}
}
