package region

import "image"

// CoarseTracer is the degraded contour strategy for builds without the
// vision stack: each connected component becomes its bounding-box rectangle,
// with no hole fidelity. Extraction results produced through it are tagged
// so callers can see the lower-fidelity mode was used.
type CoarseTracer struct {
	// MinPixels discards components smaller than this many pixels before
	// they ever reach region filtering.
	MinPixels int
}

// Mode identifies this strategy in extraction results.
func (CoarseTracer) Mode() string { return "coarse" }

// Trace finds 4-connected components and emits one rectangular contour per
// component.
func (t CoarseTracer) Trace(mask *image.Gray) []TracedShape {
	bounds := mask.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	visited := make([]bool, w*h)

	at := func(x, y int) bool {
		return mask.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y > 127
	}

	var shapes []TracedShape
	var queue []image.Point

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if visited[y*w+x] || !at(x, y) {
				continue
			}

			// Flood fill this component, tracking its bounding box.
			minX, minY, maxX, maxY := x, y, x, y
			count := 0
			visited[y*w+x] = true
			queue = append(queue[:0], image.Point{X: x, Y: y})

			for len(queue) > 0 {
				p := queue[len(queue)-1]
				queue = queue[:len(queue)-1]
				count++

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

				for _, d := range [4]image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
					nx, ny := p.X+d.X, p.Y+d.Y
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					if visited[ny*w+nx] || !at(nx, ny) {
						continue
					}
					visited[ny*w+nx] = true
					queue = append(queue, image.Point{X: nx, Y: ny})
				}
			}

			if count < t.MinPixels {
				continue
			}

			shapes = append(shapes, TracedShape{Outer: Contour{
				{X: float64(minX), Y: float64(minY)},
				{X: float64(maxX + 1), Y: float64(minY)},
				{X: float64(maxX + 1), Y: float64(maxY + 1)},
				{X: float64(minX), Y: float64(maxY + 1)},
			}})
		}
	}

	return shapes
}
