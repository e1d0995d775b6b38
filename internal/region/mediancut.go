package region

import (
	"errors"
	"image"
	"image/color"
	"sort"
)

// MedianCutQuantizer is the pure-Go fallback quantization strategy for
// builds without the vision stack. It splits the RGB color cloud along its
// widest channel until the requested palette size is reached. Lower fidelity
// than Lab k-means but fully deterministic.
type MedianCutQuantizer struct{}

type rgbPixel [3]uint8

// Quantize reduces the foreground colors with median-cut splitting.
func (MedianCutQuantizer) Quantize(img *image.RGBA, mask *image.Gray, colors int) (*image.RGBA, []color.RGBA, error) {
	if colors < 1 {
		return nil, nil, errors.New("color count must be at least 1")
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	pixels := make([]rgbPixel, 0, w*h)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if mask != nil && mask.GrayAt(x, y).Y <= 127 {
				continue
			}
			c := img.RGBAAt(x, y)
			pixels = append(pixels, rgbPixel{c.R, c.G, c.B})
		}
	}
	if len(pixels) == 0 {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				c := img.RGBAAt(x, y)
				pixels = append(pixels, rgbPixel{c.R, c.G, c.B})
			}
		}
	}

	boxes := [][]rgbPixel{pixels}
	for len(boxes) < colors {
		// Split the box with the widest channel range.
		widest, channel := -1, 0
		widestRange := 0
		for i, box := range boxes {
			if len(box) < 2 {
				continue
			}
			ch, rng := widestChannel(box)
			if rng > widestRange {
				widestRange = rng
				widest = i
				channel = ch
			}
		}
		if widest < 0 {
			break
		}

		box := boxes[widest]
		sort.SliceStable(box, func(i, j int) bool {
			return box[i][channel] < box[j][channel]
		})
		mid := splitIndex(box, channel)
		boxes[widest] = box[:mid]
		boxes = append(boxes, box[mid:])
	}

	palette := make([]color.RGBA, 0, len(boxes))
	for _, box := range boxes {
		palette = append(palette, averageColor(box))
	}
	sort.Slice(palette, func(i, j int) bool {
		if palette[i].R != palette[j].R {
			return palette[i].R < palette[j].R
		}
		if palette[i].G != palette[j].G {
			return palette[i].G < palette[j].G
		}
		return palette[i].B < palette[j].B
	})

	quantized := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			quantized.SetRGBA(x-bounds.Min.X, y-bounds.Min.Y, nearestRGB(c, palette))
		}
	}

	return quantized, palette, nil
}

// splitIndex picks the cut point for a sorted box: the value boundary nearest
// the count median, so identical channel values never straddle two boxes.
func splitIndex(box []rgbPixel, channel int) int {
	mid := len(box) / 2

	lo := mid
	for lo > 1 && box[lo][channel] == box[lo-1][channel] {
		lo--
	}
	hi := mid
	for hi < len(box)-1 && box[hi][channel] == box[hi-1][channel] {
		hi++
	}

	if box[lo][channel] != box[lo-1][channel] && mid-lo <= hi-mid {
		return lo
	}
	if box[hi][channel] != box[hi-1][channel] {
		return hi
	}
	return mid
}

func widestChannel(box []rgbPixel) (channel, rng int) {
	var lo, hi [3]int
	for c := 0; c < 3; c++ {
		lo[c], hi[c] = 255, 0
	}
	for _, p := range box {
		for c := 0; c < 3; c++ {
			v := int(p[c])
			if v < lo[c] {
				lo[c] = v
			}
			if v > hi[c] {
				hi[c] = v
			}
		}
	}
	for c := 0; c < 3; c++ {
		if hi[c]-lo[c] > rng {
			rng = hi[c] - lo[c]
			channel = c
		}
	}
	return channel, rng
}

func averageColor(box []rgbPixel) color.RGBA {
	if len(box) == 0 {
		return color.RGBA{A: 255}
	}
	var r, g, b int
	for _, p := range box {
		r += int(p[0])
		g += int(p[1])
		b += int(p[2])
	}
	n := len(box)
	return color.RGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n), A: 255}
}

func nearestRGB(c color.RGBA, palette []color.RGBA) color.RGBA {
	best := palette[0]
	bestDist := 1 << 30
	for _, p := range palette {
		dr := int(c.R) - int(p.R)
		dg := int(c.G) - int(p.G)
		db := int(c.B) - int(p.B)
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			bestDist = d
			best = p
		}
	}
	return best
}
