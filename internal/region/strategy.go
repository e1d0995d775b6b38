package region

import (
	"image"
	"image/color"
)

// TracedShape is one connected blob: an outer boundary polygon plus the hole
// polygons nested directly inside it.
type TracedShape struct {
	Outer Contour
	Holes []Contour
}

// Quantizer reduces an image to a fixed-size color palette. The returned
// quantized image maps every pixel to its palette entry.
type Quantizer interface {
	Quantize(img *image.RGBA, mask *image.Gray, colors int) (*image.RGBA, []color.RGBA, error)
}

// ContourTracer extracts the boundary polygons of a binary mask.
// Implementations differ in fidelity; Mode identifies which one ran so
// callers can tell a degraded extraction from a precise one.
type ContourTracer interface {
	Trace(mask *image.Gray) []TracedShape
	Mode() string
}

var (
	_ Quantizer     = KMeansQuantizer{}
	_ Quantizer     = MedianCutQuantizer{}
	_ ContourTracer = HierarchyTracer{}
	_ ContourTracer = CoarseTracer{}
)
