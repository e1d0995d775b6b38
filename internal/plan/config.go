// Package plan turns extracted regions into an ordered, color-grouped stitch
// plan with count estimates and machine capacity warnings.
package plan

import "fmt"

// Config consolidates every stitch tunable in one place, threaded through
// planning and generation instead of scattered constants.
type Config struct {
	FillDensity          float64 `json:"fill_density"`           // stitches per mm
	StitchLengthTarget   float64 `json:"stitch_length_target"`   // mm
	StitchLengthMin      float64 `json:"stitch_length_min"`      // mm, tight curves
	StitchLengthMax      float64 `json:"stitch_length_max"`      // mm, straight runs
	UnderlayThresholdMM2 float64 `json:"underlay_threshold_mm2"` // underlay fills above this
	UnderlayDensityRatio float64 `json:"underlay_density_ratio"`
	UnderlayAngleOffset  float64 `json:"underlay_angle_offset"` // degrees from fill angle
	DetailDensityRatio   float64 `json:"detail_density_ratio"`
	BeanRepeat           int     `json:"bean_repeat"` // outline passes
	SoftStitchLimit      int     `json:"soft_stitch_limit"`
	HardStitchLimit      int     `json:"hard_stitch_limit"`
	MaxColors            int     `json:"max_colors"`
	StitchesPerMinute    float64 `json:"stitches_per_minute"`
}

// DefaultConfig returns the hobbyist-machine defaults the pipeline is tuned
// for.
func DefaultConfig() Config {
	return Config{
		FillDensity:          5.0,
		StitchLengthTarget:   2.0,
		StitchLengthMin:      1.0,
		StitchLengthMax:      3.5,
		UnderlayThresholdMM2: 50,
		UnderlayDensityRatio: 0.5,
		UnderlayAngleOffset:  90,
		DetailDensityRatio:   0.8,
		BeanRepeat:           3,
		SoftStitchLimit:      15000,
		HardStitchLimit:      20000,
		MaxColors:            10,
		StitchesPerMinute:    400,
	}
}

// WithDensity returns a copy with a different fill density.
func (c Config) WithDensity(density float64) Config {
	c.FillDensity = density
	return c
}

// WithLimits returns a copy with different machine stitch limits.
func (c Config) WithLimits(soft, hard int) Config {
	c.SoftStitchLimit = soft
	c.HardStitchLimit = hard
	return c
}

// Preset selects a quality/speed trade-off.
type Preset string

const (
	PresetFast     Preset = "fast"
	PresetBalanced Preset = "balanced"
	PresetQuality  Preset = "quality"
)

// presetEffect is the density multiplier and underlay toggle for a preset.
type presetEffect struct {
	density  float64
	underlay bool
}

var presets = map[Preset]presetEffect{
	PresetFast:     {density: 0.8, underlay: false},
	PresetBalanced: {density: 1.0, underlay: true},
	PresetQuality:  {density: 1.2, underlay: true},
}

// ParsePreset validates a preset identifier.
func ParsePreset(s string) (Preset, error) {
	p := Preset(s)
	if _, ok := presets[p]; !ok {
		return "", fmt.Errorf("unknown quality preset %q", s)
	}
	return p, nil
}
