package visualization

import (
	"math"

	"github.com/dd0wney/cluso-docgraph/pkg/validation"
)

// Initial placement strategies
const (
	PlacementSpiral   = "spiral"
	PlacementCircular = "circular"
	PlacementLayered  = "layered"
)

// LayoutConfig configures the force simulation
type LayoutConfig struct {
	Viewport Viewport `yaml:"viewport"`

	// Many-body repulsion; negative values repel
	ChargeStrength float64 `yaml:"charge_strength"`
	Theta          float64 `yaml:"theta"`
	DistanceMin    float64 `yaml:"distance_min"`

	LinkDistance float64 `yaml:"link_distance"`

	// Two circles must end at least rA+rB+CollisionPadding apart
	CollisionPadding  float64 `yaml:"collision_padding"`
	CollisionStrength float64 `yaml:"collision_strength"`

	CenterStrength float64 `yaml:"center_strength"`

	AlphaMin      float64 `yaml:"alpha_min"`
	AlphaDecay    float64 `yaml:"alpha_decay"`
	VelocityDecay float64 `yaml:"velocity_decay"`
	ReheatTarget  float64 `yaml:"reheat_target"`

	Placement     string  `yaml:"placement"`
	InitialRadius float64 `yaml:"initial_radius"`
}

// DefaultLayoutConfig settles in roughly 300 ticks
func DefaultLayoutConfig(vp Viewport) LayoutConfig {
	const alphaMin = 0.001
	return LayoutConfig{
		Viewport:          vp,
		ChargeStrength:    -200,
		Theta:             0.9,
		DistanceMin:       1,
		LinkDistance:      100,
		CollisionPadding:  20,
		CollisionStrength: 1,
		CenterStrength:    0.5,
		AlphaMin:          alphaMin,
		AlphaDecay:        1 - math.Pow(alphaMin, 1.0/300),
		VelocityDecay:     0.4,
		ReheatTarget:      0.3,
		Placement:         PlacementSpiral,
		InitialRadius:     10,
	}
}

// Validate checks every tunable. A zero-area viewport is allowed here and
// refused by NewSimulator, since the viewport is often measured later.
func (c LayoutConfig) Validate() error {
	return validation.NewConfigValidator("LayoutConfig").
		NonNegativeFloat("Viewport.Width", c.Viewport.Width).
		NonNegativeFloat("Viewport.Height", c.Viewport.Height).
		RangeFloat("ChargeStrength", c.ChargeStrength, -10000, 10000).
		PositiveFloat("Theta", c.Theta).
		PositiveFloat("DistanceMin", c.DistanceMin).
		NonNegativeFloat("LinkDistance", c.LinkDistance).
		NonNegativeFloat("CollisionPadding", c.CollisionPadding).
		RangeFloat("CollisionStrength", c.CollisionStrength, 0, 1).
		RangeFloat("CenterStrength", c.CenterStrength, 0, 1).
		OpenRangeFloat("AlphaMin", c.AlphaMin, 0, 1).
		OpenRangeFloat("AlphaDecay", c.AlphaDecay, 0, 1).
		RangeFloat("VelocityDecay", c.VelocityDecay, 0, 1).
		RangeFloat("ReheatTarget", c.ReheatTarget, 0, 1).
		OneOf("Placement", c.Placement, []string{PlacementSpiral, PlacementCircular, PlacementLayered}).
		PositiveFloat("InitialRadius", c.InitialRadius).
		Validate()
}
