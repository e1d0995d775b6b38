package stitch

import (
	"math"
	"sort"

	"github.com/JimmiFriborg/embroidery-palette/internal/plan"
	"github.com/JimmiFriborg/embroidery-palette/pkg/geometry"
)

// fillPoints generates scanline fill stitches for a polygon with holes.
//
// The polygon is rotated about its centroid so the planned stitch angle
// lies horizontal, scanlines are spaced at 1/density mm across the rotated
// bounding box, and each even-odd span is subdivided into stitches no
// longer than the target length. Scanline direction alternates to minimize
// travel, then everything is rotated back to canvas space.
func fillPoints(op plan.Operation, pxPerMM float64) []geometry.Point2D {
	if op.Density <= 0 || op.StitchLengthMM <= 0 {
		return nil
	}

	center := geometry.Centroid(op.Contour)
	angleRad := -op.AngleDeg * math.Pi / 180
	rotate := geometry.RotationAbout(angleRad, center)
	unrotate := geometry.RotationAbout(-angleRad, center)

	rings := make([][]geometry.Point2D, 0, 1+len(op.Holes))
	rings = append(rings, rotate.ApplyAll(op.Contour))
	for _, hole := range op.Holes {
		if len(hole) >= 3 {
			rings = append(rings, rotate.ApplyAll(hole))
		}
	}

	var minY, maxY float64
	first := true
	for _, ring := range rings {
		for _, p := range ring {
			if first || p.Y < minY {
				minY = p.Y
			}
			if first || p.Y > maxY {
				maxY = p.Y
			}
			first = false
		}
	}

	spacing := pxPerMM / op.Density
	maxStitchPx := op.StitchLengthMM * pxPerMM

	var out []geometry.Point2D
	forward := true
	for y := minY + spacing/2; y <= maxY; y += spacing {
		xs := crossings(rings, y)
		if len(xs) < 2 {
			forward = !forward
			continue
		}
		sort.Float64s(xs)

		// Even-odd pairing: (xs[0],xs[1]) is inside, (xs[2],xs[3]) inside...
		for i := 0; i+1 < len(xs); i += 2 {
			out = append(out, spanStitches(xs[i], xs[i+1], y, maxStitchPx, forward)...)
		}
		forward = !forward
	}

	return unrotate.ApplyAll(out)
}

// crossings finds all x coordinates where the horizontal line at y crosses
// a ring edge. The half-open rule on y keeps vertex touches from counting
// twice.
func crossings(rings [][]geometry.Point2D, y float64) []float64 {
	var xs []float64
	for _, ring := range rings {
		n := len(ring)
		for i := 0; i < n; i++ {
			a := ring[i]
			b := ring[(i+1)%n]
			if (a.Y <= y && y < b.Y) || (b.Y <= y && y < a.Y) {
				t := (y - a.Y) / (b.Y - a.Y)
				xs = append(xs, a.X+t*(b.X-a.X))
			}
		}
	}
	return xs
}

// spanStitches subdivides one fill span into stitches no longer than
// maxLen, always including both endpoints.
func spanStitches(x1, x2, y, maxLen float64, forward bool) []geometry.Point2D {
	length := x2 - x1
	if length < 0 {
		x1, x2 = x2, x1
		length = -length
	}

	segments := int(math.Ceil(length / maxLen))
	if segments < 1 {
		segments = 1
	}

	points := make([]geometry.Point2D, segments+1)
	for i := 0; i <= segments; i++ {
		t := float64(i) / float64(segments)
		if !forward {
			t = 1 - t
		}
		points[i] = geometry.Point2D{X: x1 + t*length, Y: y}
	}
	return points
}

// beanPoints generates a bean-stitch outline: the contour resampled at even
// stitch-length spacing, emitted passes times with alternating direction
// (forward, backward, forward) for a reinforced line.
func beanPoints(op plan.Operation, pxPerMM float64, passes int) []geometry.Point2D {
	if op.StitchLengthMM <= 0 {
		return nil
	}

	resampled := geometry.ResampleClosed(op.Contour, op.StitchLengthMM*pxPerMM)
	if len(resampled) < 2 {
		return nil
	}

	out := make([]geometry.Point2D, 0, passes*len(resampled))
	for pass := 0; pass < passes; pass++ {
		if pass%2 == 0 {
			out = append(out, resampled...)
		} else {
			for i := len(resampled) - 1; i >= 0; i-- {
				out = append(out, resampled[i])
			}
		}
	}
	return out
}
