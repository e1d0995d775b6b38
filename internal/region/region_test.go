package region

import (
	"image"
	"image/color"
	"reflect"
	"testing"

	"github.com/JimmiFriborg/embroidery-palette/pkg/geometry"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		areaMM2     float64
		compactness float64
		aspectRatio float64
		want        Type
	}{
		{"compact circle", 10, 0.98, 1, TypeFill},
		{"thin sliver", 10, 0.05, 2, TypeOutline},
		{"elongated stroke", 20, 0.14, 20, TypeOutline},
		{"small element", 3, 0.8, 1.5, TypeDetail},
		{"large blob", 400, 0.6, 1.2, TypeFill},
		{"compactness boundary", 10, 0.1, 2, TypeFill},
		{"aspect boundary", 10, 0.5, 8, TypeFill},
		{"area boundary", 5, 0.5, 1, TypeFill},
		{"just under area", 4.99, 0.5, 1, TypeDetail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.areaMM2, tt.compactness, tt.aspectRatio)
			if got != tt.want {
				t.Errorf("classify(%v, %v, %v) = %v, want %v",
					tt.areaMM2, tt.compactness, tt.aspectRatio, got, tt.want)
			}
		})
	}
}

func TestMedianCutQuantizer(t *testing.T) {
	// Left half red, right half blue.
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	red := color.RGBA{255, 0, 0, 255}
	blue := color.RGBA{0, 0, 255, 255}
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			if x < 4 {
				img.SetRGBA(x, y, red)
			} else {
				img.SetRGBA(x, y, blue)
			}
		}
	}

	quantized, palette, err := MedianCutQuantizer{}.Quantize(img, nil, 2)
	if err != nil {
		t.Fatalf("Quantize() error: %v", err)
	}
	if len(palette) != 2 {
		t.Fatalf("palette size = %d, want 2", len(palette))
	}

	// Palette is sorted by RGB, so blue precedes red.
	if palette[0] != blue || palette[1] != red {
		t.Errorf("palette = %v, want [blue red]", palette)
	}
	if got := quantized.RGBAAt(1, 1); got != red {
		t.Errorf("left pixel = %v, want red", got)
	}
	if got := quantized.RGBAAt(6, 2); got != blue {
		t.Errorf("right pixel = %v, want blue", got)
	}
}

func TestMedianCutUniformImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	gray := color.RGBA{90, 90, 90, 255}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, gray)
		}
	}

	_, palette, err := MedianCutQuantizer{}.Quantize(img, nil, 5)
	if err != nil {
		t.Fatalf("Quantize() error: %v", err)
	}
	if len(palette) != 1 {
		t.Errorf("palette size = %d, want 1 for a uniform image", len(palette))
	}
}

func TestMedianCutInvalidColorCount(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if _, _, err := (MedianCutQuantizer{}).Quantize(img, nil, 0); err == nil {
		t.Error("Quantize(colors=0) succeeded, want error")
	}
}

func TestCoarseTracer(t *testing.T) {
	mask := image.NewGray(image.Rect(0, 0, 20, 20))
	fill := func(x0, y0, x1, y1 int) {
		for y := y0; y < y1; y++ {
			for x := x0; x < x1; x++ {
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	fill(2, 2, 5, 5)    // 3x3 blob
	fill(10, 10, 14, 14) // 4x4 blob
	mask.SetGray(0, 18, color.Gray{Y: 255}) // single-pixel speck

	tracer := CoarseTracer{MinPixels: 4}
	if tracer.Mode() != "coarse" {
		t.Errorf("Mode() = %q, want coarse", tracer.Mode())
	}

	shapes := tracer.Trace(mask)
	if len(shapes) != 2 {
		t.Fatalf("Trace() found %d shapes, want 2 (speck below MinPixels)", len(shapes))
	}

	wantFirst := Contour{{X: 2, Y: 2}, {X: 5, Y: 2}, {X: 5, Y: 5}, {X: 2, Y: 5}}
	if !reflect.DeepEqual(shapes[0].Outer, wantFirst) {
		t.Errorf("first shape = %v, want %v", shapes[0].Outer, wantFirst)
	}
	if len(shapes[0].Holes) != 0 {
		t.Errorf("coarse shapes should not carry holes")
	}
}

func TestPruneNested(t *testing.T) {
	big := Region{
		Hex:     "#cc0000",
		AreaMM2: 80,
		Bounds:  geometry.Rect{X: 0, Y: 0, Width: 100, Height: 100},
	}
	nested := Region{
		Hex:     "#00cc00",
		AreaMM2: 3,
		Bounds:  geometry.Rect{X: 10, Y: 10, Width: 20, Height: 20},
	}
	separate := Region{
		Hex:     "#0000cc",
		AreaMM2: 3,
		Bounds:  geometry.Rect{X: 200, Y: 0, Width: 20, Height: 20},
	}

	got := pruneNested([]Region{big, nested, separate})
	if len(got) != 2 {
		t.Fatalf("pruneNested() kept %d regions, want 2", len(got))
	}
	for _, r := range got {
		if r.Hex == nested.Hex {
			t.Errorf("nested region survived pruning")
		}
	}
}

func redSquareInput() (*image.RGBA, *image.Gray) {
	img := image.NewRGBA(image.Rect(0, 0, 300, 300))
	mask := image.NewGray(image.Rect(0, 0, 300, 300))
	white := color.RGBA{255, 255, 255, 255}
	red := color.RGBA{255, 0, 0, 255}
	for y := 0; y < 300; y++ {
		for x := 0; x < 300; x++ {
			img.SetRGBA(x, y, white)
			mask.SetGray(x, y, color.Gray{Y: 255})
			if x >= 100 && x < 200 && y >= 100 && y < 200 {
				img.SetRGBA(x, y, red)
			}
		}
	}
	return img, mask
}

func TestExtractCoarse(t *testing.T) {
	img, mask := redSquareInput()
	ext := NewCoarse(DefaultOptions(2))

	got, err := ext.Extract(img, mask)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if got.Mode != "coarse" {
		t.Errorf("Mode = %q, want coarse", got.Mode)
	}
	if len(got.Regions) != 1 {
		t.Fatalf("Extract() found %d regions, want 1 (white background skipped)", len(got.Regions))
	}

	r := got.Regions[0]
	if r.Hex != "#ff0000" {
		t.Errorf("region color = %s, want #ff0000", r.Hex)
	}
	if r.Type != TypeFill {
		t.Errorf("region type = %s, want fill", r.Type)
	}
	if len(r.Shapes) != 1 {
		t.Errorf("region has %d shapes, want 1", len(r.Shapes))
	}

	// 100x100 px at 10 px/mm is a 10x10 mm square.
	if r.AreaMM2 < 95 || r.AreaMM2 > 105 {
		t.Errorf("AreaMM2 = %v, want ~100", r.AreaMM2)
	}
	if r.PerimeterMM < 38 || r.PerimeterMM > 42 {
		t.Errorf("PerimeterMM = %v, want ~40", r.PerimeterMM)
	}
	if r.Compactness < 0.7 || r.Compactness > 0.85 {
		t.Errorf("Compactness = %v, want ~0.785", r.Compactness)
	}
}

// ringTracer feeds Extract a fixed set of traced shapes so hole
// handling can be exercised without a real tracer.
type ringTracer struct {
	shapes []TracedShape
}

func (r ringTracer) Trace(*image.Gray) []TracedShape { return r.shapes }
func (ringTracer) Mode() string                      { return "ring" }

func rect(x0, y0, x1, y1 float64) Contour {
	return Contour{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
}

func TestExtractNetAreaFloor(t *testing.T) {
	// A thin annulus clears the outer-contour area filter but its net
	// area after subtracting the hole is below the stitchable minimum.
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	mask := image.NewGray(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.SetRGBA(x, y, color.RGBA{255, 0, 0, 255})
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	tests := []struct {
		name        string
		shape       TracedShape
		wantRegions int
		wantAreaMM2 float64
	}{
		{
			"thin annulus dropped",
			TracedShape{Outer: rect(0, 0, 20, 20), Holes: []Contour{rect(1, 1, 19, 19)}},
			0, 0,
		},
		{
			"wide annulus kept",
			TracedShape{Outer: rect(0, 0, 100, 100), Holes: []Contour{rect(25, 25, 75, 75)}},
			1, 75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext := &Extractor{
				Quantizer: MedianCutQuantizer{},
				Tracer:    ringTracer{shapes: []TracedShape{tt.shape}},
				Opts:      DefaultOptions(2),
			}
			got, err := ext.Extract(img, mask)
			if err != nil {
				t.Fatalf("Extract() error: %v", err)
			}
			if len(got.Regions) != tt.wantRegions {
				t.Fatalf("Extract() found %d regions, want %d", len(got.Regions), tt.wantRegions)
			}
			if tt.wantRegions == 0 {
				return
			}
			r := got.Regions[0]
			if r.AreaMM2 != tt.wantAreaMM2 {
				t.Errorf("AreaMM2 = %v, want %v", r.AreaMM2, tt.wantAreaMM2)
			}
			if len(r.Shapes) != 1 || len(r.Shapes[0].Holes) != 1 {
				t.Errorf("Shapes = %+v, want one shape owning one hole", r.Shapes)
			}
		})
	}
}

func TestExtractAreaBound(t *testing.T) {
	// The summed region area must not exceed the foreground area by more
	// than rounding slack, even with multiple colors in play.
	img := image.NewRGBA(image.Rect(0, 0, 300, 300))
	mask := image.NewGray(image.Rect(0, 0, 300, 300))
	white := color.RGBA{255, 255, 255, 255}
	for y := 0; y < 300; y++ {
		for x := 0; x < 300; x++ {
			img.SetRGBA(x, y, white)
			switch {
			case x >= 20 && x < 120 && y >= 20 && y < 120:
				img.SetRGBA(x, y, color.RGBA{255, 0, 0, 255})
				mask.SetGray(x, y, color.Gray{Y: 255})
			case x >= 150 && x < 230 && y >= 150 && y < 230:
				img.SetRGBA(x, y, color.RGBA{0, 0, 255, 255})
				mask.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}

	ext := NewCoarse(DefaultOptions(3))
	got, err := ext.Extract(img, mask)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(got.Regions) != 2 {
		t.Fatalf("Extract() found %d regions, want 2", len(got.Regions))
	}

	// Foreground is a 10x10 mm square plus an 8x8 mm square.
	const foregroundMM2 = 164.0
	var sum float64
	for _, r := range got.Regions {
		sum += r.AreaMM2
	}
	if sum > foregroundMM2*1.05 {
		t.Errorf("summed region area %v exceeds foreground %v by more than 5%%", sum, foregroundMM2)
	}
	if sum < foregroundMM2*0.9 {
		t.Errorf("summed region area %v undershoots foreground %v", sum, foregroundMM2)
	}
}

func TestExtractDeterministic(t *testing.T) {
	img, mask := redSquareInput()
	ext := NewCoarse(DefaultOptions(4))

	first, err := ext.Extract(img, mask)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	second, err := ext.Extract(img, mask)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if !reflect.DeepEqual(first.Regions, second.Regions) {
		t.Error("repeated extraction produced different regions")
	}
	if !reflect.DeepEqual(first.Palette, second.Palette) {
		t.Error("repeated extraction produced different palettes")
	}
}

func TestExtractEmptyImage(t *testing.T) {
	ext := NewCoarse(DefaultOptions(2))
	if _, err := ext.Extract(nil, nil); err == nil {
		t.Error("Extract(nil) succeeded, want error")
	}
	if _, err := ext.Extract(image.NewRGBA(image.Rect(0, 0, 0, 0)), nil); err == nil {
		t.Error("Extract(empty) succeeded, want error")
	}
}
