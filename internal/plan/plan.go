package plan

import (
	"fmt"
	"image/color"
	"math"

	"github.com/JimmiFriborg/embroidery-palette/internal/region"
)

// OpType identifies a stitch operation kind.
type OpType string

const (
	OpFill     OpType = "fill"
	OpUnderlay OpType = "underlay"
	OpOutline  OpType = "outline"
	OpDetail   OpType = "detail"
)

// Operation is one contiguous set of stitches for a region. Immutable once
// built.
type Operation struct {
	Type           OpType           `json:"type"`
	Region         *region.Region   `json:"-"`
	Contour        region.Contour   `json:"-"`
	Holes          []region.Contour `json:"-"`
	AngleDeg       float64          `json:"angle"`
	Density        float64          `json:"density"`       // stitches per mm
	StitchLengthMM float64          `json:"stitch_length"` // target
	Estimated      int              `json:"estimated_stitches"`
}

// Thread is catalog metadata for one thread color.
type Thread struct {
	CatalogID string     `json:"catalog_id"`
	Name      string     `json:"name"`
	RGB       color.RGBA `json:"-"`
}

// Layer holds all operations stitched in one thread color before a change.
type Layer struct {
	ColorHex   string      `json:"color"`
	ColorRGB   color.RGBA  `json:"-"`
	ThreadID   string      `json:"thread_id,omitempty"`
	ThreadName string      `json:"thread_name,omitempty"`
	Operations []Operation `json:"operations"`
	Estimated  int         `json:"estimated_stitches"`
}

// Plan is the complete stitch plan for a design.
type Plan struct {
	Layers           []Layer  `json:"layers"`
	TotalStitches    int      `json:"total_stitches"`
	EstimatedMinutes float64  `json:"estimated_time_minutes"`
	Preset           Preset   `json:"quality_preset"`
	HoopName         string   `json:"hoop"`
	Warnings         []string `json:"warnings,omitempty"`
	Config           Config   `json:"config"`
}

// Options configures planning.
type Options struct {
	HoopName          string
	Preset            Preset
	DensityMultiplier float64           // additional scaling on top of the preset, 0 = 1.0
	Threads           map[string]Thread // hex color -> thread metadata
	Config            Config
}

// Build creates a stitch plan from extracted regions. Layer order follows
// the first-encountered color order of the region list, which the extractor
// already sorted by area; no re-sorting happens here.
func Build(regions []region.Region, opts Options) (*Plan, error) {
	effect, ok := presets[opts.Preset]
	if !ok {
		return nil, fmt.Errorf("unknown quality preset %q", opts.Preset)
	}
	mult := opts.DensityMultiplier
	if mult == 0 {
		mult = 1.0
	}
	if mult < 0 {
		return nil, fmt.Errorf("density multiplier must be positive, got %v", mult)
	}
	cfg := opts.Config
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	if cfg.FillDensity <= 0 || cfg.StitchLengthTarget <= 0 {
		return nil, fmt.Errorf("non-positive density or stitch length")
	}

	density := cfg.FillDensity * effect.density * mult

	p := &Plan{
		Preset:   opts.Preset,
		HoopName: opts.HoopName,
		Config:   cfg,
	}

	// Group regions by color in first-encountered order.
	layerIndex := map[string]int{}
	for i := range regions {
		r := &regions[i]
		idx, ok := layerIndex[r.Hex]
		if !ok {
			idx = len(p.Layers)
			layerIndex[r.Hex] = idx
			layer := Layer{ColorHex: r.Hex, ColorRGB: r.Color}
			if t, ok := opts.Threads[r.Hex]; ok {
				layer.ThreadID = t.CatalogID
				layer.ThreadName = t.Name
			}
			p.Layers = append(p.Layers, layer)
		}

		for _, op := range regionOperations(r, density, effect.underlay, cfg) {
			p.Layers[idx].Operations = append(p.Layers[idx].Operations, op)
			p.Layers[idx].Estimated += op.Estimated
		}
	}

	// Drop layers that planned nothing stitchable.
	layers := p.Layers[:0]
	for _, l := range p.Layers {
		if len(l.Operations) > 0 {
			layers = append(layers, l)
		}
	}
	p.Layers = layers

	for _, l := range p.Layers {
		p.TotalStitches += l.Estimated
	}
	p.EstimatedMinutes = float64(p.TotalStitches) / cfg.StitchesPerMinute
	p.Warnings = capacityWarnings(p.TotalStitches, len(p.Layers), cfg)

	return p, nil
}

// regionOperations plans the operation sequence for one region. Each
// blob of the region gets its own sequence so holes only mask the blob
// that owns them: fill blobs get [underlay?] fill + outline, outline
// regions a bean stitch pass only, detail blobs a light fill + outline.
func regionOperations(r *region.Region, density float64, underlay bool, cfg Config) []Operation {
	var ops []Operation
	for i := range r.Shapes {
		s := &r.Shapes[i]
		if len(s.Outer) < 3 {
			continue
		}
		switch r.Type {
		case region.TypeFill:
			if underlay && s.AreaMM2 > cfg.UnderlayThresholdMM2 {
				ops = append(ops, underlayOperation(r, s, density, cfg))
			}
			ops = append(ops, fillOperation(r, s, density, cfg))
			ops = append(ops, outlineOperation(r, s, cfg))

		case region.TypeOutline:
			ops = append(ops, outlineOperation(r, s, cfg))

		case region.TypeDetail:
			ops = append(ops, fillOperation(r, s, density*cfg.DetailDensityRatio, cfg))
			ops = append(ops, outlineOperation(r, s, cfg))
		}
	}
	return ops
}

func fillOperation(r *region.Region, s *region.Shape, density float64, cfg Config) Operation {
	op := Operation{
		Type:           OpFill,
		Region:         r,
		Contour:        s.Outer,
		Holes:          s.Holes,
		AngleDeg:       r.PrincipalAngle,
		Density:        density,
		StitchLengthMM: cfg.StitchLengthTarget,
		Estimated:      estimateFill(s.AreaMM2, density, cfg.StitchLengthTarget),
	}
	if r.Type == region.TypeDetail {
		op.Type = OpDetail
	}
	return op
}

func underlayOperation(r *region.Region, s *region.Shape, baseDensity float64, cfg Config) Operation {
	return Operation{
		Type:           OpUnderlay,
		Region:         r,
		Contour:        s.Outer,
		Holes:          s.Holes,
		AngleDeg:       math.Mod(r.PrincipalAngle+cfg.UnderlayAngleOffset, 180),
		Density:        baseDensity * cfg.UnderlayDensityRatio,
		StitchLengthMM: cfg.StitchLengthMax,
		Estimated:      estimateFill(s.AreaMM2, baseDensity*cfg.UnderlayDensityRatio, cfg.StitchLengthTarget),
	}
}

func outlineOperation(r *region.Region, s *region.Shape, cfg Config) Operation {
	return Operation{
		Type:           OpOutline,
		Region:         r,
		Contour:        s.Outer,
		StitchLengthMM: cfg.StitchLengthTarget,
		Estimated:      estimateOutline(s.PerimeterMM, cfg),
	}
}

// estimateFill approximates fill stitch count: scanline count scales with
// sqrt(area) x density, stitches per scanline with sqrt(area) / target
// length. Planning uses this estimate, not a generation dry run.
func estimateFill(areaMM2, density, targetLen float64) int {
	sqrtArea := math.Sqrt(areaMM2)
	return int(sqrtArea * density * (sqrtArea / targetLen))
}

func estimateOutline(perimeterMM float64, cfg Config) int {
	return int(perimeterMM / cfg.StitchLengthTarget * float64(cfg.BeanRepeat))
}

// capacityWarnings produces machine capacity advisories. The plan is always
// returned; callers decide whether to reject.
func capacityWarnings(totalStitches, colorCount int, cfg Config) []string {
	var warnings []string
	if totalStitches > cfg.HardStitchLimit {
		warnings = append(warnings, fmt.Sprintf(
			"stitch count %d exceeds machine limit of %d; reduce complexity",
			totalStitches, cfg.HardStitchLimit))
	} else if totalStitches > cfg.SoftStitchLimit {
		warnings = append(warnings, fmt.Sprintf(
			"high stitch count %d; consider reducing density or simplifying",
			totalStitches))
	}
	if colorCount > cfg.MaxColors {
		warnings = append(warnings, fmt.Sprintf(
			"%d thread colors require many changes; consider reducing colors",
			colorCount))
	}
	return warnings
}
