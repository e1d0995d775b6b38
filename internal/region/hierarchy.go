package region

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/JimmiFriborg/embroidery-palette/pkg/geometry"
)

// HierarchyTracer is the baseline contour strategy: OpenCV border following
// with two-level connected-component retrieval, so every outer boundary
// carries the hole contours nested directly inside it.
type HierarchyTracer struct{}

// Mode identifies this strategy in extraction results.
func (HierarchyTracer) Mode() string { return "hierarchy" }

// Trace extracts outer contours and their holes from a binary mask.
func (HierarchyTracer) Trace(mask *image.Gray) []TracedShape {
	mat := grayToMat(mask)
	defer mat.Close()

	hierarchy := gocv.NewMat()
	defer hierarchy.Close()
	contours := gocv.FindContoursWithParams(mat, &hierarchy, gocv.RetrievalCComp, gocv.ChainApproxSimple)
	defer contours.Close()

	n := contours.Size()
	if n == 0 {
		return nil
	}

	// Hierarchy entries are [next, previous, firstChild, parent]. With
	// RetrievalCComp, parent == -1 marks an outer boundary and its child
	// chain holds the holes.
	var shapes []TracedShape
	for i := 0; i < n; i++ {
		rel := hierarchy.GetVeciAt(0, i)
		if rel[3] != -1 {
			continue
		}

		shape := TracedShape{Outer: contourPoints(contours.At(i))}
		for child := rel[2]; child != -1; child = hierarchy.GetVeciAt(0, int(child))[0] {
			shape.Holes = append(shape.Holes, contourPoints(contours.At(int(child))))
		}
		shapes = append(shapes, shape)
	}

	return shapes
}

func contourPoints(pv gocv.PointVector) Contour {
	points := make(Contour, pv.Size())
	for i := 0; i < pv.Size(); i++ {
		pt := pv.At(i)
		points[i] = geometry.Point2D{X: float64(pt.X), Y: float64(pt.Y)}
	}
	return points
}

func grayToMat(mask *image.Gray) gocv.Mat {
	bounds := mask.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8U)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mat.SetUCharAt(y, x, mask.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
		}
	}
	return mat
}
