package visualization

// Body is the simulated state of one node
type Body struct {
	X, Y   float64
	VX, VY float64
	Pin    *Position
}

// Frame is the complete simulation state between two ticks
type Frame struct {
	Bodies      []Body
	Alpha       float64
	AlphaTarget float64
	Ticks       uint64
}

// Step advances frame by one tick. Bodies must be in topo's index order.
//
// Alpha first moves toward AlphaTarget by AlphaDecay. Every force then reads
// the incoming frame only and the accumulated velocity changes are applied
// together: v = (v+dv)*(1-VelocityDecay), x += v, followed by a clamp of the
// body's circle into the viewport. Pinned bodies sit on their pin with zero
// velocity. Step never mutates frame.
func Step(frame Frame, topo *Topology, cfg LayoutConfig) Frame {
	n := len(frame.Bodies)
	alpha := frame.Alpha + (frame.AlphaTarget-frame.Alpha)*cfg.AlphaDecay
	next := Frame{
		Bodies:      make([]Body, n),
		Alpha:       alpha,
		AlphaTarget: frame.AlphaTarget,
		Ticks:       frame.Ticks + 1,
	}

	in := newForceInput(frame, alpha)
	dvx := make([]float64, n)
	dvy := make([]float64, n)

	applyCenter(in, cfg, dvx, dvy)
	applyCharge(in, topo, cfg, dvx, dvy)
	applyCollision(in, topo, cfg, dvx, dvy)
	applyLinks(in, topo, cfg, dvx, dvy)

	keep := 1 - cfg.VelocityDecay
	for i, b := range frame.Bodies {
		if b.Pin != nil {
			pin := *b.Pin
			next.Bodies[i] = Body{X: pin.X, Y: pin.Y, Pin: &pin}
			continue
		}
		vx := (b.VX + dvx[i]) * keep
		vy := (b.VY + dvy[i]) * keep
		p := cfg.Viewport.Clamp(Position{X: b.X + vx, Y: b.Y + vy}, topo.Radii[i])
		next.Bodies[i] = Body{X: p.X, Y: p.Y, VX: vx, VY: vy}
	}
	return next
}

// Converged reports whether alpha has decayed below the stopping threshold
func (f Frame) Converged(cfg LayoutConfig) bool {
	return f.Alpha < cfg.AlphaMin
}
