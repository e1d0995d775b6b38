package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// SignedArea computes the signed area of a closed polygon using the shoelace
// formula. Counter-clockwise polygons have positive area.
func SignedArea(polygon []Point2D) float64 {
	if len(polygon) < 3 {
		return 0
	}

	var sum float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += polygon[i].X*polygon[j].Y - polygon[j].X*polygon[i].Y
	}
	return sum / 2
}

// Area computes the absolute area of a closed polygon.
func Area(polygon []Point2D) float64 {
	return math.Abs(SignedArea(polygon))
}

// Perimeter computes the perimeter of a closed polygon, including the
// closing segment from the last vertex back to the first.
func Perimeter(polygon []Point2D) float64 {
	if len(polygon) < 2 {
		return 0
	}

	var total float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		total += polygon[i].Distance(polygon[(i+1)%n])
	}
	return total
}

// Centroid computes the centroid (average position) of a set of points.
func Centroid(points []Point2D) Point2D {
	if len(points) == 0 {
		return Point2D{}
	}
	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	n := float64(len(points))
	return Point2D{X: sumX / n, Y: sumY / n}
}

// BoundingBox computes the axis-aligned bounding box of a set of points.
func BoundingBox(points []Point2D) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// PointInPolygon tests if a point is inside a polygon using ray casting.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// Simplify reduces the number of vertices using the Douglas-Peucker
// algorithm with the given distance tolerance.
func Simplify(path []Point2D, epsilon float64) []Point2D {
	if len(path) <= 2 {
		return path
	}

	// Find point with maximum distance from line between first and last points
	dmax := 0.0
	index := 0
	end := len(path) - 1

	for i := 1; i < end; i++ {
		d := perpendicularDistance(path[i], path[0], path[end])
		if d > dmax {
			dmax = d
			index = i
		}
	}

	if dmax > epsilon {
		left := Simplify(path[:index+1], epsilon)
		right := Simplify(path[index:], epsilon)

		// Avoid duplicating the split point
		result := make([]Point2D, 0, len(left)+len(right)-1)
		result = append(result, left[:len(left)-1]...)
		result = append(result, right...)
		return result
	}

	return []Point2D{path[0], path[end]}
}

// perpendicularDistance calculates the perpendicular distance from point p to line a-b.
func perpendicularDistance(p, a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y

	if dx == 0 && dy == 0 {
		return p.Distance(a)
	}

	num := math.Abs(dy*p.X - dx*p.Y + b.X*a.Y - b.Y*a.X)
	den := math.Sqrt(dx*dx + dy*dy)
	return num / den
}

// ResampleClosed resamples a closed contour at even arc-length intervals of
// approximately the given spacing. The first input vertex is always the
// first output vertex. Returns at least 3 points for any valid contour.
func ResampleClosed(polygon []Point2D, spacing float64) []Point2D {
	if len(polygon) < 3 || spacing <= 0 {
		return polygon
	}

	perimeter := Perimeter(polygon)
	if perimeter == 0 {
		return polygon
	}

	count := int(perimeter / spacing)
	if count < 3 {
		count = 3
	}
	step := perimeter / float64(count)

	result := make([]Point2D, 0, count)
	result = append(result, polygon[0])

	n := len(polygon)
	traveled := 0.0
	next := step
	for i := 0; i < n && len(result) < count; i++ {
		a := polygon[i]
		b := polygon[(i+1)%n]
		segment := a.Distance(b)
		if segment == 0 {
			continue
		}

		for next < traveled+segment && len(result) < count {
			t := (next - traveled) / segment
			result = append(result, Point2D{
				X: a.X + t*(b.X-a.X),
				Y: a.Y + t*(b.Y-a.Y),
			})
			next += step
		}
		traveled += segment
	}

	return result
}

// PrincipalAngle computes the dominant-axis orientation of a point set as
// the eigenvector of the covariance matrix with the larger eigenvalue.
// Returns the angle in degrees, normalized to [0, 180).
func PrincipalAngle(points []Point2D) float64 {
	if len(points) < 3 {
		return 0
	}

	c := Centroid(points)
	var sxx, sxy, syy float64
	for _, p := range points {
		dx := p.X - c.X
		dy := p.Y - c.Y
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	n := float64(len(points) - 1)

	cov := mat.NewSymDense(2, []float64{sxx / n, sxy / n, sxy / n, syy / n})
	var eig mat.EigenSym
	if !eig.Factorize(cov, true) {
		return 0
	}

	// EigenSym returns eigenvalues in ascending order; the principal axis is
	// the last column.
	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	angle := math.Atan2(vecs.At(1, 1), vecs.At(0, 1)) * 180 / math.Pi

	angle = math.Mod(angle, 180)
	if angle < 0 {
		angle += 180
	}
	return angle
}
