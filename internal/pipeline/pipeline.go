// Package pipeline chains the digitizing stages (preprocess, region
// extraction, stitch planning, stitch generation) into one run, and defines
// the contracts of the external collaborators that feed and consume it.
package pipeline

import (
	"errors"
	"fmt"
	"image"

	"github.com/JimmiFriborg/embroidery-palette/internal/hoop"
	"github.com/JimmiFriborg/embroidery-palette/internal/plan"
	"github.com/JimmiFriborg/embroidery-palette/internal/preprocess"
	"github.com/JimmiFriborg/embroidery-palette/internal/region"
	"github.com/JimmiFriborg/embroidery-palette/internal/stitch"
	"github.com/JimmiFriborg/embroidery-palette/pkg/geometry"
)

// ErrInvalidInput marks structurally invalid input: the run produces no
// output. Everything past input validation degrades gracefully instead.
var ErrInvalidInput = errors.New("invalid input")

// Params configures one digitizing run.
type Params struct {
	Hoop             string  // hoop identifier
	Colors           int     // target thread colors, 1-20
	Quality          string  // fast | balanced | quality
	Density          float64 // optional density multiplier, 0 = default
	RemoveBackground bool
	Threads          map[string]plan.Thread // hex color -> thread metadata
	Coarse           bool                   // use the degraded pure-Go extraction strategies
	Workers          int
}

// Summary is the caller-facing digest of a run.
type Summary struct {
	TotalStitches    int            `json:"total_stitches"`
	EstimatedMinutes float64        `json:"estimated_time_minutes"`
	Layers           []LayerSummary `json:"layers"`
	Warnings         []string       `json:"warnings,omitempty"`
	Segmentation     string         `json:"segmentation"` // preprocessing method used
	ExtractionMode   string         `json:"extraction_mode"`
	Hoop             string         `json:"hoop"`
	Quality          string         `json:"quality"`
}

// LayerSummary reports one thread layer.
type LayerSummary struct {
	Color      string `json:"color"`
	ThreadID   string `json:"thread_id,omitempty"`
	ThreadName string `json:"thread_name,omitempty"`
	Stitches   int    `json:"stitches"`
	Operations int    `json:"operations"`
}

// Result is the immutable output graph of one run.
type Result struct {
	Preprocessed *preprocess.Result
	Extraction   *region.Extraction
	Plan         *plan.Plan
	Layers       []stitch.Layer
	Summary      Summary
}

// Run executes the full pipeline on a raw image.
func Run(img image.Image, p Params) (*Result, error) {
	profile, preset, err := validate(img, p)
	if err != nil {
		return nil, err
	}

	pre, err := preprocess.Run(img, preprocessOptions(profile, p))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return runStages(pre, profile, preset, p)
}

// RunPreprocessed executes extraction, planning and generation on an
// already preprocessed result. Callers holding cleaned assets can skip the
// preprocessing stage.
func RunPreprocessed(pre *preprocess.Result, p Params) (*Result, error) {
	if pre == nil || pre.Image == nil {
		return nil, fmt.Errorf("%w: nil preprocessed result", ErrInvalidInput)
	}
	profile, preset, err := validate(pre.Image, p)
	if err != nil {
		return nil, err
	}
	return runStages(pre, profile, preset, p)
}

func runStages(pre *preprocess.Result, profile hoop.Profile, preset plan.Preset, p Params) (*Result, error) {
	opts := region.DefaultOptions(p.Colors)
	if p.Workers > 0 {
		opts.Workers = p.Workers
	}

	var extractor *region.Extractor
	if p.Coarse {
		extractor = region.NewCoarse(opts)
	} else {
		extractor = region.New(opts)
	}

	extraction, err := extractor.Extract(pre.Image, pre.Mask)
	if err != nil {
		return nil, fmt.Errorf("extract regions: %w", err)
	}

	stitchPlan, err := plan.Build(extraction.Regions, plan.Options{
		HoopName:          profile.Name,
		Preset:            preset,
		DensityMultiplier: p.Density,
		Threads:           p.Threads,
		Config:            plan.DefaultConfig(),
	})
	if err != nil {
		return nil, fmt.Errorf("plan stitches: %w", err)
	}

	canvasW, canvasH := profile.CanvasPx()
	layers := stitch.Generate(stitchPlan, stitch.Options{
		PxPerMM: hoop.PxPerMM,
		Offset:  geometry.Point2D{X: float64(canvasW) / 2, Y: float64(canvasH) / 2},
		Workers: p.Workers,
	})

	return &Result{
		Preprocessed: pre,
		Extraction:   extraction,
		Plan:         stitchPlan,
		Layers:       layers,
		Summary:      summarize(pre, extraction, stitchPlan, p),
	}, nil
}

func validate(img image.Image, p Params) (hoop.Profile, plan.Preset, error) {
	if img == nil {
		return hoop.Profile{}, "", fmt.Errorf("%w: nil image", ErrInvalidInput)
	}
	if img.Bounds().Dx() <= 0 || img.Bounds().Dy() <= 0 {
		return hoop.Profile{}, "", fmt.Errorf("%w: degenerate image", ErrInvalidInput)
	}

	profile, err := hoop.ByName(p.Hoop)
	if err != nil {
		return hoop.Profile{}, "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if p.Colors < 1 || p.Colors > 20 {
		return hoop.Profile{}, "", fmt.Errorf("%w: color count %d outside 1-20", ErrInvalidInput, p.Colors)
	}

	preset, err := plan.ParsePreset(p.Quality)
	if err != nil {
		return hoop.Profile{}, "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if p.Density < 0 {
		return hoop.Profile{}, "", fmt.Errorf("%w: density multiplier must be positive", ErrInvalidInput)
	}

	return profile, preset, nil
}

func preprocessOptions(profile hoop.Profile, p Params) preprocess.Options {
	opts := preprocess.DefaultOptions(profile)
	opts.RemoveBackground = p.RemoveBackground
	return opts
}

func summarize(pre *preprocess.Result, ext *region.Extraction, sp *plan.Plan, p Params) Summary {
	s := Summary{
		TotalStitches:    sp.TotalStitches,
		EstimatedMinutes: sp.EstimatedMinutes,
		Warnings:         sp.Warnings,
		Segmentation:     string(pre.Method),
		ExtractionMode:   ext.Mode,
		Hoop:             sp.HoopName,
		Quality:          string(sp.Preset),
	}
	for _, l := range sp.Layers {
		s.Layers = append(s.Layers, LayerSummary{
			Color:      l.ColorHex,
			ThreadID:   l.ThreadID,
			ThreadName: l.ThreadName,
			Stitches:   l.Estimated,
			Operations: len(l.Operations),
		})
	}
	return s
}
