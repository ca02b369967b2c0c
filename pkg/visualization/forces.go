package visualization

import "math"

// Link is an edge resolved to body indices with its degree-derived weights
type Link struct {
	Source, Target int
	Strength       float64
	Bias           float64
}

// Topology is the fixed, per-graph input to Step
type Topology struct {
	Radii []float64
	Links []Link
}

// NewTopology resolves g's edges to indices. A link's strength is the
// reciprocal of its endpoints' smaller degree; its bias moves the
// lower-degree endpoint more.
func NewTopology(g *Graph) *Topology {
	t := &Topology{
		Radii: make([]float64, g.Len()),
		Links: make([]Link, 0, len(g.edges)),
	}
	for i, n := range g.nodes {
		t.Radii[i] = n.Radius
	}

	degree := make([]int, g.Len())
	for _, e := range g.edges {
		degree[g.index[e.Source]]++
		degree[g.index[e.Target]]++
	}
	for _, e := range g.edges {
		s, tg := g.index[e.Source], g.index[e.Target]
		t.Links = append(t.Links, Link{
			Source:   s,
			Target:   tg,
			Strength: 1 / float64(min(degree[s], degree[tg])),
			Bias:     float64(degree[s]) / float64(degree[s]+degree[tg]),
		})
	}
	return t
}

// forceInput is the frame snapshot every force reads from
type forceInput struct {
	xs, ys   []float64
	vxs, vys []float64
	pinned   []bool
	alpha    float64
	tick     uint64
}

func newForceInput(f Frame, alpha float64) *forceInput {
	n := len(f.Bodies)
	in := &forceInput{
		xs:     make([]float64, n),
		ys:     make([]float64, n),
		vxs:    make([]float64, n),
		vys:    make([]float64, n),
		pinned: make([]bool, n),
		alpha:  alpha,
		tick:   f.Ticks,
	}
	for i, b := range f.Bodies {
		if b.Pin != nil {
			in.xs[i], in.ys[i] = b.Pin.X, b.Pin.Y
			in.pinned[i] = true
			continue
		}
		in.xs[i], in.ys[i] = b.X, b.Y
		in.vxs[i], in.vys[i] = b.VX, b.VY
	}
	return in
}

// applyCenter nudges unpinned bodies so their centroid drifts to the viewport center
func applyCenter(in *forceInput, cfg LayoutConfig, dvx, dvy []float64) {
	if cfg.CenterStrength == 0 {
		return
	}
	var sx, sy float64
	n := 0
	for i := range in.xs {
		if !in.pinned[i] {
			sx += in.xs[i]
			sy += in.ys[i]
			n++
		}
	}
	if n == 0 {
		return
	}

	c := cfg.Viewport.Center()
	k := cfg.CenterStrength * in.alpha
	sx = (c.X - sx/float64(n)) * k
	sy = (c.Y - sy/float64(n)) * k
	for i := range in.xs {
		if !in.pinned[i] {
			dvx[i] += sx
			dvy[i] += sy
		}
	}
}

// applyCharge is Barnes-Hut many-body repulsion (attraction for positive strength)
func applyCharge(in *forceInput, topo *Topology, cfg LayoutConfig, dvx, dvy []float64) {
	if cfg.ChargeStrength == 0 || len(in.xs) < 2 {
		return
	}

	qt := newQuadtree(in.xs, in.ys, topo.Radii)
	theta2 := cfg.Theta * cfg.Theta
	dmin2 := cfg.DistanceMin * cfg.DistanceMin
	k := cfg.ChargeStrength * in.alpha

	for i := range in.xs {
		x, y := in.xs[i], in.ys[i]
		qt.visit(func(q *quadNode) bool {
			dx, dy := q.cx-x, q.cy-y
			l := dx*dx + dy*dy
			w := q.x1 - q.x0
			if w*w/theta2 < l {
				if l < dmin2 {
					l = math.Sqrt(dmin2 * l)
				}
				f := k * float64(q.count) / l
				dvx[i] += dx * f
				dvy[i] += dy * f
				return true
			}
			if !q.leaf() {
				return false
			}
			for _, j := range q.points {
				if j == i {
					continue
				}
				dx, dy := in.xs[j]-x, in.ys[j]-y
				if dx == 0 {
					dx = jiggle(in.tick, i, j, 0)
				}
				if dy == 0 {
					dy = jiggle(in.tick, i, j, 1)
				}
				l := dx*dx + dy*dy
				if l < dmin2 {
					l = math.Sqrt(dmin2 * l)
				}
				f := k / l
				dvx[i] += dx * f
				dvy[i] += dy * f
			}
			return true
		})
	}
}

// applyCollision separates overlapping circles using predicted positions.
// Each pair is pushed apart in proportion to the other's squared radius.
// Collision is not scaled by alpha.
func applyCollision(in *forceInput, topo *Topology, cfg LayoutConfig, dvx, dvy []float64) {
	n := len(in.xs)
	if cfg.CollisionStrength == 0 || n < 2 {
		return
	}

	px := make([]float64, n)
	py := make([]float64, n)
	radii := make([]float64, n)
	for i := range px {
		px[i] = in.xs[i] + in.vxs[i]
		py[i] = in.ys[i] + in.vys[i]
		radii[i] = topo.Radii[i] + cfg.CollisionPadding/2
	}
	qt := newQuadtree(px, py, radii)

	for i := range px {
		xi, yi, ri := px[i], py[i], radii[i]
		ri2 := ri * ri
		qt.visit(func(q *quadNode) bool {
			reach := ri + q.maxR
			if q.x0 > xi+reach || q.x1 < xi-reach || q.y0 > yi+reach || q.y1 < yi-reach {
				return true
			}
			if !q.leaf() {
				return false
			}
			for _, j := range q.points {
				if j <= i {
					continue
				}
				rj := radii[j]
				r := ri + rj
				dx, dy := xi-px[j], yi-py[j]
				l := dx*dx + dy*dy
				if l >= r*r {
					continue
				}
				if dx == 0 {
					dx = jiggle(in.tick, i, j, 2)
					l += dx * dx
				}
				if dy == 0 {
					dy = jiggle(in.tick, i, j, 3)
					l += dy * dy
				}
				l = math.Sqrt(l)
				l = (r - l) / l * cfg.CollisionStrength
				dx *= l
				dy *= l
				w := rj * rj / (ri2 + rj*rj)
				dvx[i] += dx * w
				dvy[i] += dy * w
				dvx[j] -= dx * (1 - w)
				dvy[j] -= dy * (1 - w)
			}
			return true
		})
	}
}

// applyLinks pulls linked bodies toward LinkDistance apart
func applyLinks(in *forceInput, topo *Topology, cfg LayoutConfig, dvx, dvy []float64) {
	for _, lk := range topo.Links {
		s, t := lk.Source, lk.Target
		dx := in.xs[t] + in.vxs[t] - in.xs[s] - in.vxs[s]
		dy := in.ys[t] + in.vys[t] - in.ys[s] - in.vys[s]
		if dx == 0 {
			dx = jiggle(in.tick, s, t, 4)
		}
		if dy == 0 {
			dy = jiggle(in.tick, s, t, 5)
		}
		l := math.Sqrt(dx*dx + dy*dy)
		l = (l - cfg.LinkDistance) / l * in.alpha * lk.Strength
		dx *= l
		dy *= l
		dvx[t] -= dx * lk.Bias
		dvy[t] -= dy * lk.Bias
		dvx[s] += dx * (1 - lk.Bias)
		dvy[s] += dy * (1 - lk.Bias)
	}
}

// jiggle separates coincident bodies by a tiny deterministic offset.
// It is antisymmetric in (i, j) so a pair is pushed in opposite directions.
func jiggle(tick uint64, i, j int, salt uint64) float64 {
	sign := 1.0
	if i > j {
		i, j = j, i
		sign = -1
	}
	h := splitmix64(tick*0x9e3779b97f4a7c15 ^ uint64(i)<<32 ^ uint64(j)<<4 ^ salt)
	u := float64(h>>11) / (1 << 53)
	if u == 0.5 {
		u = 0.75
	}
	return sign * (u - 0.5) * 1e-6
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
