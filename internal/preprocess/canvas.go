package preprocess

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// allForeground returns a mask marking every pixel as subject.
func allForeground(bounds image.Rectangle) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for i := range mask.Pix {
		mask.Pix[i] = 255
	}
	return mask
}

// cropToContent crops image and mask to the mask's bounding box plus padding.
// Returns the inputs unchanged if the mask is empty.
func cropToContent(img *image.RGBA, mask *image.Gray, pad int) (*image.RGBA, *image.Gray) {
	b := mask.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if mask.GrayAt(x, y).Y > 127 {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}
	if maxX < minX || maxY < minY {
		return img, mask
	}

	crop := image.Rect(minX-pad, minY-pad, maxX+1+pad, maxY+1+pad).Intersect(b)

	outImg := image.NewRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	draw.Draw(outImg, outImg.Bounds(), img, crop.Min, draw.Src)
	outMask := image.NewGray(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	draw.Draw(outMask, outMask.Bounds(), mask, crop.Min, draw.Src)

	return outImg, outMask
}

// fitWithin downscales image and mask to fit within maxW x maxH, preserving
// aspect ratio. Images already inside the bounds are never upscaled.
func fitWithin(img *image.RGBA, mask *image.Gray, maxW, maxH int) (*image.RGBA, *image.Gray) {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if w == 0 || h == 0 {
		return img, mask
	}

	scale := minf(float64(maxW)/float64(w), float64(maxH)/float64(h))
	if scale >= 1.0 {
		return img, mask
	}

	newW := max(1, int(float64(w)*scale))
	newH := max(1, int(float64(h)*scale))

	outImg := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(outImg, outImg.Bounds(), img, img.Bounds(), draw.Src, nil)

	// The mask must stay binary, so nearest-neighbor only.
	outMask := image.NewGray(image.Rect(0, 0, newW, newH))
	draw.NearestNeighbor.Scale(outMask, outMask.Bounds(), mask, mask.Bounds(), draw.Src, nil)

	return outImg, outMask
}

// centerOnCanvas places image and mask centered on a white canvas of the
// given size; the mask is zero outside the placed region.
func centerOnCanvas(img *image.RGBA, mask *image.Gray, canvasW, canvasH int) (*image.RGBA, *image.Gray) {
	canvas := image.NewRGBA(image.Rect(0, 0, canvasW, canvasH))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)
	maskCanvas := image.NewGray(image.Rect(0, 0, canvasW, canvasH))

	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	offX := (canvasW - w) / 2
	offY := (canvasH - h) / 2

	dst := image.Rect(offX, offY, offX+w, offY+h).Intersect(canvas.Bounds())
	src := image.Point{X: dst.Min.X - offX, Y: dst.Min.Y - offY}

	draw.Draw(canvas, dst, img, src, draw.Src)
	draw.Draw(maskCanvas, dst, mask, src, draw.Src)

	return canvas, maskCanvas
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
