// Package preview renders SVG previews of a digitized design: the generated
// stitch paths per thread color, and vector traces of binary masks for
// inspecting extraction.
package preview

import (
	"fmt"
	"image"
	"io"

	svg "github.com/ajstarks/svgo"
	"github.com/gotranspile/gotrace"

	"github.com/JimmiFriborg/embroidery-palette/internal/hoop"
	"github.com/JimmiFriborg/embroidery-palette/internal/stitch"
)

// PlanSVG writes an SVG preview of the generated stitch layers. The canvas
// uses output units (10 per mm) with the hoop centered at the origin, the
// same frame the stitch records live in.
func PlanSVG(w io.Writer, layers []stitch.Layer, profile hoop.Profile) {
	width := int(profile.WidthMM * stitch.UnitsPerMM)
	height := int(profile.HeightMM * stitch.UnitsPerMM)

	canvas := svg.New(w)
	canvas.Startview(width, height, -width/2, -height/2, width, height)
	canvas.Rect(-width/2, -height/2, width, height, "fill:white")

	for _, layer := range layers {
		xs := make([]int, 0, len(layer.Records))
		ys := make([]int, 0, len(layer.Records))
		for _, rec := range layer.Records {
			if rec.Flag != stitch.FlagStitch && rec.Flag != stitch.FlagMove {
				continue
			}
			xs = append(xs, rec.X)
			ys = append(ys, rec.Y)
		}
		if len(xs) < 2 {
			continue
		}
		style := fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", layer.ColorHex)
		canvas.Polyline(xs, ys, style)
	}

	canvas.End()
}

// MaskSVG vector-traces a binary mask and writes it as SVG. Useful for
// inspecting what segmentation or a color mask actually captured.
func MaskSVG(w io.Writer, mask *image.Gray) error {
	bm := gotrace.BitmapFromGray(mask, nil)

	paths, err := gotrace.Trace(bm, nil)
	if err != nil {
		return err
	}

	sz := mask.Bounds().Size()
	return gotrace.Render("svg", nil, w, paths, sz.X, sz.Y)
}
