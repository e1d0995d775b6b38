package preprocess

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// cleanAndSegment runs the OpenCV half of preprocessing: bilateral smoothing
// and background segmentation. It returns the smoothed image, the foreground
// mask (255 = foreground), and the segmentation method that produced it.
func cleanAndSegment(src image.Image, opts Options) (*image.RGBA, *image.Gray, Method) {
	mat := imageToMat(src)
	defer mat.Close()

	smoothed := gocv.NewMat()
	defer smoothed.Close()
	gocv.BilateralFilter(mat, &smoothed, 9, 75, 75)

	img := matToRGBA(smoothed)

	if !opts.RemoveBackground {
		return img, allForeground(img.Bounds()), MethodNone
	}

	mask, method := segment(smoothed)
	defer mask.Close()

	cleaned := cleanupMask(mask, opts.CloseSize, opts.OpenSize)
	defer cleaned.Close()

	// An empty mask is not an error: fall back to all-foreground so the
	// rest of the pipeline still runs.
	if gocv.CountNonZero(cleaned) == 0 {
		return img, allForeground(img.Bounds()), MethodNone
	}

	return img, matToGray(cleaned), method
}

// segment separates subject from background. The default heuristic closes
// strong edges into a foreground blob; if the resulting coverage is outside
// sane bounds (under 5% or over 95%) it falls back to a luminance-contrast
// threshold against the border.
func segment(img gocv.Mat) (gocv.Mat, Method) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	mask := segmentByEdges(gray)

	total := mask.Rows() * mask.Cols()
	coverage := float64(gocv.CountNonZero(mask)) / float64(total)
	if coverage >= 0.05 && coverage <= 0.95 {
		return mask, MethodEdges
	}
	mask.Close()

	return segmentByContrast(gray), MethodContrast
}

// segmentByEdges detects strong gradients, dilates and closes them into
// connected boundaries, then fills the enclosed regions.
func segmentByEdges(gray gocv.Mat) gocv.Mat {
	gx := gocv.NewMat()
	defer gx.Close()
	gy := gocv.NewMat()
	defer gy.Close()
	gocv.Sobel(gray, &gx, gocv.MatTypeCV16S, 1, 0, 3, 1, 0, gocv.BorderDefault)
	gocv.Sobel(gray, &gy, gocv.MatTypeCV16S, 0, 1, 3, 1, 0, gocv.BorderDefault)

	agx := gocv.NewMat()
	defer agx.Close()
	agy := gocv.NewMat()
	defer agy.Close()
	gocv.ConvertScaleAbs(gx, &agx, 1, 0)
	gocv.ConvertScaleAbs(gy, &agy, 1, 0)

	mag := gocv.NewMat()
	defer mag.Close()
	gocv.AddWeighted(agx, 0.5, agy, 0.5, 0, &mag)

	mean, std := meanStdDev(mag)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Threshold(mag, &edges, float32(mean+std), 255, gocv.ThresholdBinary)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{3, 3})
	defer kernel.Close()

	for i := 0; i < 3; i++ {
		gocv.Dilate(edges, &edges, kernel)
	}
	for i := 0; i < 2; i++ {
		gocv.MorphologyEx(edges, &edges, gocv.MorphClose, kernel)
	}

	return fillRegions(edges)
}

// segmentByContrast compares center luminance against the border to decide
// subject polarity, then thresholds the whole frame.
func segmentByContrast(gray gocv.Mat) gocv.Mat {
	rows, cols := gray.Rows(), gray.Cols()
	margin := min(rows, cols) / 10
	if margin < 1 {
		margin = 1
	}

	var centerSum, centerN, borderSum, borderN float64
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := float64(gray.GetUCharAt(y, x))
			if y == 0 || y == rows-1 || x == 0 || x == cols-1 {
				borderSum += v
				borderN++
			}
			if y >= margin && y < rows-margin && x >= margin && x < cols-margin {
				centerSum += v
				centerN++
			}
		}
	}
	if centerN == 0 || borderN == 0 {
		return fillRegions(gray)
	}

	centerMean := centerSum / centerN
	borderMean := borderSum / borderN

	mask := gocv.NewMat()
	if centerMean < borderMean {
		// Dark subject on light background
		gocv.Threshold(gray, &mask, float32(borderMean-25), 255, gocv.ThresholdBinaryInv)
	} else {
		gocv.Threshold(gray, &mask, float32(borderMean+25), 255, gocv.ThresholdBinary)
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{3, 3})
	defer kernel.Close()
	for i := 0; i < 3; i++ {
		gocv.MorphologyEx(mask, &mask, gocv.MorphClose, kernel)
	}

	filled := fillRegions(mask)
	mask.Close()
	return filled
}

// cleanupMask applies close-then-open to remove speckle and bridge gaps.
func cleanupMask(mask gocv.Mat, closeSize, openSize int) gocv.Mat {
	cleaned := mask.Clone()

	closeKernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{closeSize, closeSize})
	defer closeKernel.Close()
	openKernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{openSize, openSize})
	defer openKernel.Close()

	gocv.MorphologyEx(cleaned, &cleaned, gocv.MorphClose, closeKernel)
	gocv.MorphologyEx(cleaned, &cleaned, gocv.MorphOpen, openKernel)

	return cleaned
}

// fillRegions redraws every external contour filled, closing interior holes.
func fillRegions(mask gocv.Mat) gocv.Mat {
	filled := gocv.NewMatWithSize(mask.Rows(), mask.Cols(), gocv.MatTypeCV8U)
	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for i := 0; i < contours.Size(); i++ {
		gocv.DrawContours(&filled, contours, i, white, -1)
	}

	return filled
}

// meanStdDev computes mean and standard deviation of a single-channel mat.
func meanStdDev(m gocv.Mat) (mean, std float64) {
	rows, cols := m.Rows(), m.Cols()
	n := float64(rows * cols)
	if n == 0 {
		return 0, 0
	}

	var sum float64
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			sum += float64(m.GetUCharAt(y, x))
		}
	}
	mean = sum / n

	var sq float64
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			d := float64(m.GetUCharAt(y, x)) - mean
			sq += d * d
		}
	}
	return mean, math.Sqrt(sq / n)
}

// imageToMat converts a Go image.Image to a gocv.Mat in BGR format.
func imageToMat(img image.Image) gocv.Mat {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}

	return mat
}

// matToRGBA converts a BGR gocv.Mat to an *image.RGBA.
func matToRGBA(mat gocv.Mat) *image.RGBA {
	h, w := mat.Rows(), mat.Cols()
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{
				B: mat.GetUCharAt(y, x*3+0),
				G: mat.GetUCharAt(y, x*3+1),
				R: mat.GetUCharAt(y, x*3+2),
				A: 255,
			})
		}
	}

	return img
}

// matToGray converts a single-channel gocv.Mat to an *image.Gray.
func matToGray(mat gocv.Mat) *image.Gray {
	h, w := mat.Rows(), mat.Cols()
	img := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, color.Gray{Y: mat.GetUCharAt(y, x)})
		}
	}

	return img
}
