package region

import (
	"errors"
	"image"
	"image/color"
	"sort"

	"gocv.io/x/gocv"

	"github.com/JimmiFriborg/embroidery-palette/pkg/colorutil"
)

// KMeansQuantizer clusters pixel colors with OpenCV k-means in CIE Lab
// space, which keeps cluster distances perceptually meaningful. This is the
// baseline quantization strategy.
type KMeansQuantizer struct {
	// MaxSamples caps the training set; larger images are subsampled with a
	// fixed stride so repeated runs see the same pixels.
	MaxSamples int
	Attempts   int
}

// DefaultKMeansQuantizer returns the standard k-means configuration.
func DefaultKMeansQuantizer() KMeansQuantizer {
	return KMeansQuantizer{MaxSamples: 50000, Attempts: 3}
}

type labColor struct {
	l, a, b float64
}

// Quantize clusters foreground pixels into the requested number of colors
// and maps every pixel to its nearest cluster.
func (q KMeansQuantizer) Quantize(img *image.RGBA, mask *image.Gray, colors int) (*image.RGBA, []color.RGBA, error) {
	if colors < 1 {
		return nil, nil, errors.New("color count must be at least 1")
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Collect foreground Lab samples; fall back to the whole frame when the
	// mask is empty.
	labs := make([]labColor, 0, w*h)
	pixels := make([]labColor, 0, w*h)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			l, a, b := colorutil.RGBToLab(c.R, c.G, c.B)
			lab := labColor{l, a, b}
			pixels = append(pixels, lab)
			if mask == nil || mask.GrayAt(x, y).Y > 127 {
				labs = append(labs, lab)
			}
		}
	}
	if len(labs) == 0 {
		labs = pixels
	}

	samples := labs
	if q.MaxSamples > 0 && len(labs) > q.MaxSamples {
		stride := len(labs)/q.MaxSamples + 1
		samples = make([]labColor, 0, q.MaxSamples)
		for i := 0; i < len(labs); i += stride {
			samples = append(samples, labs[i])
		}
	}
	if colors > len(samples) {
		colors = len(samples)
	}

	centroids, err := q.cluster(samples, colors)
	if err != nil {
		return nil, nil, err
	}

	// Stable palette order regardless of cluster initialization.
	sort.Slice(centroids, func(i, j int) bool {
		if centroids[i].l != centroids[j].l {
			return centroids[i].l < centroids[j].l
		}
		if centroids[i].a != centroids[j].a {
			return centroids[i].a < centroids[j].a
		}
		return centroids[i].b < centroids[j].b
	})

	palette := make([]color.RGBA, len(centroids))
	for i, c := range centroids {
		r, g, b := colorutil.LabToRGB(c.l, c.a, c.b)
		palette[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}

	quantized := image.NewRGBA(image.Rect(0, 0, w, h))
	idx := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			quantized.SetRGBA(x, y, palette[nearestCentroid(pixels[idx], centroids)])
			idx++
		}
	}

	return quantized, palette, nil
}

// cluster runs OpenCV k-means over the Lab samples.
func (q KMeansQuantizer) cluster(samples []labColor, k int) ([]labColor, error) {
	data := gocv.NewMatWithSize(len(samples), 3, gocv.MatTypeCV32F)
	defer data.Close()
	for i, s := range samples {
		data.SetFloatAt(i, 0, float32(s.l))
		data.SetFloatAt(i, 1, float32(s.a))
		data.SetFloatAt(i, 2, float32(s.b))
	}

	labels := gocv.NewMat()
	defer labels.Close()
	centers := gocv.NewMat()
	defer centers.Close()

	criteria := gocv.NewTermCriteria(gocv.EPS+gocv.MaxIter, 20, 1.0)
	gocv.KMeans(data, k, &labels, criteria, q.Attempts, gocv.KMeansPPCenters, &centers)

	if centers.Rows() < k {
		return nil, errors.New("k-means produced too few clusters")
	}

	centroids := make([]labColor, k)
	for i := 0; i < k; i++ {
		centroids[i] = labColor{
			l: float64(centers.GetFloatAt(i, 0)),
			a: float64(centers.GetFloatAt(i, 1)),
			b: float64(centers.GetFloatAt(i, 2)),
		}
	}
	return centroids, nil
}

func nearestCentroid(p labColor, centroids []labColor) int {
	best := 0
	bestDist := colorutil.DistLab(p.l, p.a, p.b, centroids[0].l, centroids[0].a, centroids[0].b)
	for i := 1; i < len(centroids); i++ {
		d := colorutil.DistLab(p.l, p.a, p.b, centroids[i].l, centroids[i].a, centroids[i].b)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}
