package region

import (
	"errors"
	"image"
	"image/color"
	"math"
	"sort"
	"sync"

	"github.com/JimmiFriborg/embroidery-palette/internal/hoop"
	"github.com/JimmiFriborg/embroidery-palette/pkg/colorutil"
	"github.com/JimmiFriborg/embroidery-palette/pkg/geometry"
)

// Options configures region extraction.
type Options struct {
	Colors         int     // palette size, 1-20
	MinAreaMM2     float64 // regions below this are dropped
	MinPerimeterMM float64 // perimeter floor for contours
	SimplifyMM     float64 // polygon reduction tolerance
	ColorTolerance int     // per-channel match tolerance for color masks
	PxPerMM        float64
	Workers        int // concurrent per-color workers
}

// DefaultOptions returns standard extraction settings.
func DefaultOptions(colors int) Options {
	return Options{
		Colors:         colors,
		MinAreaMM2:     2.0,
		MinPerimeterMM: 3.0,
		SimplifyMM:     0.3,
		ColorTolerance: 10,
		PxPerMM:        hoop.PxPerMM,
		Workers:        4,
	}
}

// Extraction is the immutable output of region extraction.
type Extraction struct {
	Regions   []Region
	Quantized *image.RGBA
	Palette   []color.RGBA
	Mode      string // contour strategy that produced the regions
}

// Extractor runs quantization and contour tracing with pluggable strategies.
type Extractor struct {
	Quantizer Quantizer
	Tracer    ContourTracer
	Opts      Options
}

// New returns an extractor using the baseline vision strategies.
func New(opts Options) *Extractor {
	return &Extractor{
		Quantizer: DefaultKMeansQuantizer(),
		Tracer:    HierarchyTracer{},
		Opts:      opts,
	}
}

// NewCoarse returns an extractor using the pure-Go degraded strategies.
func NewCoarse(opts Options) *Extractor {
	return &Extractor{
		Quantizer: MedianCutQuantizer{},
		Tracer:    CoarseTracer{MinPixels: 4},
		Opts:      opts,
	}
}

// Extract quantizes the image and builds the ordered region list.
func (e *Extractor) Extract(img *image.RGBA, mask *image.Gray) (*Extraction, error) {
	if img == nil || img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		return nil, errors.New("empty image")
	}

	quantized, palette, err := e.Quantizer.Quantize(img, mask, e.Opts.Colors)
	if err != nil {
		return nil, err
	}

	// Paint masked-out pixels white so background never matches a palette
	// color during mask building.
	if mask != nil {
		whitenBackground(quantized, mask)
	}

	// One candidate region per palette color, built concurrently. Results
	// land in palette order so the outcome is independent of scheduling.
	results := make([]*Region, len(palette))
	workers := e.Opts.Workers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, c := range palette {
		if colorutil.NearWhite(c) {
			continue
		}
		wg.Add(1)
		go func(i int, c color.RGBA) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = e.buildRegion(quantized, mask, c)
		}(i, c)
	}
	wg.Wait()

	regions := make([]Region, 0, len(results))
	for _, r := range results {
		if r != nil {
			regions = append(regions, *r)
		}
	}

	regions = pruneNested(regions)

	// Large shapes stitch first.
	sort.SliceStable(regions, func(i, j int) bool {
		if regions[i].AreaMM2 != regions[j].AreaMM2 {
			return regions[i].AreaMM2 > regions[j].AreaMM2
		}
		return regions[i].Hex < regions[j].Hex
	})

	return &Extraction{
		Regions:   regions,
		Quantized: quantized,
		Palette:   palette,
		Mode:      e.Tracer.Mode(),
	}, nil
}

// buildRegion traces one palette color and computes region properties.
// Returns nil when nothing of stitchable size remains; that is expected for
// speckle colors and not an error.
func (e *Extractor) buildRegion(quantized *image.RGBA, mask *image.Gray, c color.RGBA) *Region {
	colorMask := e.colorMask(quantized, mask, c)
	shapes := e.Tracer.Trace(colorMask)
	if len(shapes) == 0 {
		return nil
	}

	pxPerMM := e.Opts.PxPerMM
	minAreaPx := e.Opts.MinAreaMM2 * pxPerMM * pxPerMM
	minPerimPx := e.Opts.MinPerimeterMM * pxPerMM
	simplifyPx := e.Opts.SimplifyMM * pxPerMM

	var kept []Shape
	var areaPx, perimPx float64

	for _, shape := range shapes {
		outerArea := geometry.Area(shape.Outer)
		if outerArea < minAreaPx {
			continue
		}
		perim := geometry.Perimeter(shape.Outer)
		if perim < minPerimPx {
			continue
		}

		simplified := Contour(geometry.Simplify(shape.Outer, simplifyPx))
		if len(simplified) < 3 {
			continue
		}

		// Holes stay attached to the blob that owns them; a disjoint
		// blob of the same color must never see them.
		s := Shape{Outer: simplified}
		netArea := outerArea
		for _, hole := range shape.Holes {
			sh := Contour(geometry.Simplify(hole, simplifyPx))
			if len(sh) < 3 {
				continue
			}
			s.Holes = append(s.Holes, sh)
			netArea -= geometry.Area(hole)
		}
		if netArea < 0 {
			netArea = 0
		}

		s.AreaMM2 = round(netArea/(pxPerMM*pxPerMM), 2)
		s.PerimeterMM = round(perim/pxPerMM, 2)
		kept = append(kept, s)
		areaPx += netArea
		perimPx += perim
	}
	if len(kept) == 0 {
		return nil
	}
	// The outer-contour filter above does not account for holes; an
	// annulus can fall below the stitchable floor on net area alone.
	if areaPx < minAreaPx {
		return nil
	}

	var all []geometry.Point2D
	for _, s := range kept {
		all = append(all, s.Outer...)
	}

	areaMM2 := areaPx / (pxPerMM * pxPerMM)
	perimMM := perimPx / pxPerMM
	bounds := geometry.BoundingBox(all)
	aspect := bounds.AspectRatio()

	compactness := 0.0
	if perimMM > 0 {
		compactness = 4 * math.Pi * areaMM2 / (perimMM * perimMM)
	}

	return &Region{
		Color:          c,
		Hex:            colorutil.Hex(c),
		Type:           classify(areaMM2, compactness, aspect),
		Shapes:         kept,
		AreaMM2:        round(areaMM2, 2),
		PerimeterMM:    round(perimMM, 2),
		Bounds:         bounds,
		AspectRatio:    round(aspect, 2),
		Compactness:    round(compactness, 3),
		PrincipalAngle: round(geometry.PrincipalAngle(all), 1),
		Centroid:       geometry.Centroid(all),
	}
}

// colorMask builds a binary mask of pixels matching the palette color within
// tolerance, intersected with the foreground mask.
func (e *Extractor) colorMask(quantized *image.RGBA, mask *image.Gray, c color.RGBA) *image.Gray {
	bounds := quantized.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	tol := e.Opts.ColorTolerance
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if mask != nil && mask.GrayAt(x, y).Y <= 127 {
				continue
			}
			p := quantized.RGBAAt(x, y)
			if absDiff(p.R, c.R) <= tol && absDiff(p.G, c.G) <= tol && absDiff(p.B, c.B) <= tol {
				out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: 255})
			}
		}
	}
	return out
}

// pruneNested drops regions whose bounding box is at least 80% contained in
// a strictly larger region's bounding box. Quantization tends to leave
// speckle regions nested inside large fills.
func pruneNested(regions []Region) []Region {
	keep := make([]Region, 0, len(regions))
	for i, r := range regions {
		box := r.Bounds
		boxArea := box.Area()
		nested := false
		if boxArea > 0 {
			for j, other := range regions {
				if i == j || other.AreaMM2 <= r.AreaMM2 {
					continue
				}
				overlap := box.Intersect(other.Bounds).Area()
				if overlap/boxArea >= 0.8 {
					nested = true
					break
				}
			}
		}
		if !nested {
			keep = append(keep, r)
		}
	}
	return keep
}

func whitenBackground(img *image.RGBA, mask *image.Gray) {
	bounds := img.Bounds()
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if mask.GrayAt(x, y).Y <= 127 {
				img.SetRGBA(x, y, white)
			}
		}
	}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
