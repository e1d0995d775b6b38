// Package region decomposes a preprocessed image into color regions with the
// geometric properties stitch planning needs: quantized palette, per-color
// contours with holes, area/perimeter, classification, and principal angle.
package region

import (
	"image/color"
	"math"

	"github.com/JimmiFriborg/embroidery-palette/pkg/geometry"
)

// Type classifies how a region should be stitched.
type Type string

const (
	// TypeFill marks large compact areas stitched with scanline fill.
	TypeFill Type = "fill"
	// TypeOutline marks thin strokes stitched as bean-stitch runs.
	TypeOutline Type = "outline"
	// TypeDetail marks small elements stitched with a lighter fill.
	TypeDetail Type = "detail"
)

// Contour is a closed polygon in canvas pixel coordinates.
type Contour []geometry.Point2D

// Shape is one connected blob of a region: an outer contour together with
// the hole contours it owns. Holes never migrate between blobs; a fill
// stitched for one outer contour must not react to another blob's holes.
type Shape struct {
	Outer       Contour   `json:"outer"`
	Holes       []Contour `json:"holes,omitempty"`
	AreaMM2     float64   `json:"area_mm2"`     // net of holes
	PerimeterMM float64   `json:"perimeter_mm"` // outer contour only
}

// Region is one color region of the design. Regions are built once by the
// extractor and never mutated afterwards.
type Region struct {
	Color          color.RGBA       `json:"-"`
	Hex            string           `json:"color"`
	Type           Type             `json:"type"`
	Shapes         []Shape          `json:"shapes"`
	AreaMM2        float64          `json:"area_mm2"`
	PerimeterMM    float64          `json:"perimeter_mm"`
	Bounds         geometry.Rect    `json:"bounds"`
	AspectRatio    float64          `json:"aspect_ratio"`
	Compactness    float64          `json:"compactness"`
	PrincipalAngle float64          `json:"principal_angle"`
	Centroid       geometry.Point2D `json:"centroid"`
}

// HasHoles reports whether any blob carries hole contours.
func (r *Region) HasHoles() bool {
	for _, s := range r.Shapes {
		if len(s.Holes) > 0 {
			return true
		}
	}
	return false
}

// classify decides the stitch strategy for a region from its shape metrics.
// Thin slivers and elongated strokes become outlines, small elements become
// detail, everything else is a fill.
func classify(areaMM2, compactness, aspectRatio float64) Type {
	switch {
	case compactness < 0.1:
		return TypeOutline
	case aspectRatio > 8:
		return TypeOutline
	case areaMM2 < 5.0:
		return TypeDetail
	default:
		return TypeFill
	}
}

func round(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}
