// Package preprocess cleans and sizes raw artwork for digitizing: edge
// preserving smoothing, background segmentation, morphological cleanup, and
// placement on a hoop-sized canvas at the fixed working scale.
package preprocess

import (
	"errors"
	"image"

	"github.com/JimmiFriborg/embroidery-palette/internal/hoop"
)

// Method identifies which background segmentation heuristic produced the
// foreground mask.
type Method string

const (
	// MethodEdges is the default edge-closing segmentation.
	MethodEdges Method = "edges"
	// MethodContrast is the luminance fallback used when edge coverage
	// fails its sanity bounds.
	MethodContrast Method = "contrast"
	// MethodNone means no usable segmentation; the mask is all-foreground.
	MethodNone Method = "none"
)

// Options configures preprocessing.
type Options struct {
	Hoop             hoop.Profile
	RemoveBackground bool
	CloseSize        int // mask close kernel size
	OpenSize         int // mask open kernel size
	CropPad          int // padding around content bbox, pixels
}

// DefaultOptions returns preprocessing defaults for a hoop.
func DefaultOptions(h hoop.Profile) Options {
	return Options{
		Hoop:             h,
		RemoveBackground: true,
		CloseSize:        5,
		OpenSize:         3,
		CropPad:          5,
	}
}

// Dimensions records the physical size of the placed artwork and its hoop.
type Dimensions struct {
	WidthMM      float64 `json:"width_mm"`
	HeightMM     float64 `json:"height_mm"`
	SafeWidthMM  float64 `json:"safe_width_mm"`
	SafeHeightMM float64 `json:"safe_height_mm"`
	HoopWidthMM  float64 `json:"hoop_width_mm"`
	HoopHeightMM float64 `json:"hoop_height_mm"`
	PxPerMM      float64 `json:"px_per_mm"`
}

// Result is the immutable output of preprocessing: the cleaned artwork and
// its foreground mask, both centered on the full hoop canvas.
type Result struct {
	Image      *image.RGBA
	Mask       *image.Gray
	Dimensions Dimensions
	Method     Method
}

// ErrEmptyImage is returned for nil or zero-sized inputs.
var ErrEmptyImage = errors.New("empty input image")

// Run executes the preprocessing pipeline on a raw image.
func Run(src image.Image, opts Options) (*Result, error) {
	if src == nil {
		return nil, ErrEmptyImage
	}
	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, ErrEmptyImage
	}

	smoothed, mask, method := cleanAndSegment(src, opts)

	cropped, croppedMask := cropToContent(smoothed, mask, opts.CropPad)

	safeW, safeH := opts.Hoop.SafePx()
	resized, resizedMask := fitWithin(cropped, croppedMask, safeW, safeH)

	hoopW, hoopH := opts.Hoop.CanvasPx()
	centered, centeredMask := centerOnCanvas(resized, resizedMask, hoopW, hoopH)

	return &Result{
		Image: centered,
		Mask:  centeredMask,
		Dimensions: Dimensions{
			WidthMM:      float64(resized.Bounds().Dx()) / hoop.PxPerMM,
			HeightMM:     float64(resized.Bounds().Dy()) / hoop.PxPerMM,
			SafeWidthMM:  opts.Hoop.SafeWidthMM,
			SafeHeightMM: opts.Hoop.SafeHeightMM,
			HoopWidthMM:  opts.Hoop.WidthMM,
			HoopHeightMM: opts.Hoop.HeightMM,
			PxPerMM:      hoop.PxPerMM,
		},
		Method: method,
	}, nil
}
