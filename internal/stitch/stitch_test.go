package stitch

import (
	"image/color"
	"math"
	"testing"

	"github.com/JimmiFriborg/embroidery-palette/internal/plan"
	"github.com/JimmiFriborg/embroidery-palette/internal/region"
	"github.com/JimmiFriborg/embroidery-palette/pkg/geometry"
)

// squarePx returns a square contour with the given side in pixels.
func squarePx(side float64) region.Contour {
	return region.Contour{
		{X: 0, Y: 0}, {X: side, Y: 0}, {X: side, Y: side}, {X: 0, Y: side},
	}
}

func TestBeanPoints(t *testing.T) {
	op := plan.Operation{
		Type:           plan.OpOutline,
		Contour:        squarePx(100), // 10 mm square, 40 mm perimeter
		StitchLengthMM: 2,
	}

	got := beanPoints(op, 10, 3)

	// 40 mm at 2 mm spacing is 20 points per pass, three passes.
	if len(got) != 60 {
		t.Fatalf("beanPoints() = %d points, want 60", len(got))
	}

	// Pass two retraces pass one in reverse; pass three repeats pass one.
	if got[20] != got[19] {
		t.Errorf("second pass starts at %v, want last point of first pass %v", got[20], got[19])
	}
	for i := 0; i < 20; i++ {
		if got[40+i] != got[i] {
			t.Fatalf("third pass point %d = %v, want %v", i, got[40+i], got[i])
		}
		if got[20+i] != got[19-i] {
			t.Fatalf("second pass point %d = %v, want reversed %v", i, got[20+i], got[19-i])
		}
	}
}

func TestFillCoverage(t *testing.T) {
	// 20x20 mm square at density 5/mm: one scanline every 0.4 mm across
	// 20 mm gives 100 scanlines.
	op := plan.Operation{
		Type:           plan.OpFill,
		Contour:        squarePx(200),
		AngleDeg:       0,
		Density:        5,
		StitchLengthMM: 2,
	}

	got := fillPoints(op, 10)
	if len(got) == 0 {
		t.Fatal("fillPoints() produced no stitches")
	}

	rows := map[float64]bool{}
	for _, p := range got {
		rows[math.Round(p.Y*100)/100] = true
		if p.X < -0.5 || p.X > 200.5 || p.Y < -0.5 || p.Y > 200.5 {
			t.Fatalf("stitch %v escapes the region bounds", p)
		}
	}
	if n := len(rows); n < 99 || n > 101 {
		t.Errorf("fill produced %d scanlines, want 100 (+-1)", n)
	}
}

func TestFillAlternatesDirection(t *testing.T) {
	op := plan.Operation{
		Type:           plan.OpFill,
		Contour:        squarePx(200),
		AngleDeg:       0,
		Density:        5,
		StitchLengthMM: 2,
	}

	got := fillPoints(op, 10)

	// Each scanline spans 20 mm, subdivided into 10 segments of 2 mm, so
	// 11 points per line.
	const perLine = 11
	if len(got) < 2*perLine {
		t.Fatalf("too few points: %d", len(got))
	}

	line1 := got[:perLine]
	line2 := got[perLine : 2*perLine]
	if line1[0].X >= line1[perLine-1].X {
		t.Errorf("first scanline runs %v -> %v, want left to right", line1[0], line1[perLine-1])
	}
	if line2[0].X <= line2[perLine-1].X {
		t.Errorf("second scanline runs %v -> %v, want right to left", line2[0], line2[perLine-1])
	}

	// The return pass starts where the previous line ended, minimizing
	// travel.
	if math.Abs(line2[0].X-line1[perLine-1].X) > 1e-6 {
		t.Errorf("second line starts at x=%v, previous ended at x=%v",
			line2[0].X, line1[perLine-1].X)
	}
}

func TestFillRespectsHoles(t *testing.T) {
	op := plan.Operation{
		Type:    plan.OpFill,
		Contour: squarePx(200),
		Holes: []region.Contour{{
			{X: 50, Y: 50}, {X: 150, Y: 50}, {X: 150, Y: 150}, {X: 50, Y: 150},
		}},
		AngleDeg:       0,
		Density:        5,
		StitchLengthMM: 2,
	}

	got := fillPoints(op, 10)
	if len(got) == 0 {
		t.Fatal("fillPoints() produced no stitches")
	}
	for _, p := range got {
		if p.X > 50.5 && p.X < 149.5 && p.Y > 50.5 && p.Y < 149.5 {
			t.Fatalf("stitch %v lands inside the hole", p)
		}
	}
}

func TestFillHoleOwnership(t *testing.T) {
	// Two disjoint blobs of one color. The second blob owns a hole; its
	// spans must skip it, and the first blob's spans must not be carved
	// by a hole that belongs to a blob it never touches.
	r := region.Region{
		Color: color.RGBA{204, 0, 0, 255},
		Hex:   "#cc0000",
		Type:  region.TypeFill,
		Shapes: []region.Shape{
			{
				Outer:       squarePx(100),
				AreaMM2:     100,
				PerimeterMM: 40,
			},
			{
				Outer: region.Contour{{X: 200, Y: 0}, {X: 300, Y: 0}, {X: 300, Y: 100}, {X: 200, Y: 100}},
				Holes: []region.Contour{{
					{X: 220, Y: 20}, {X: 280, Y: 20}, {X: 280, Y: 80}, {X: 220, Y: 80},
				}},
				AreaMM2:     64,
				PerimeterMM: 40,
			},
		},
		AreaMM2:     164,
		PerimeterMM: 80,
	}

	p, err := plan.Build([]region.Region{r}, plan.Options{Preset: plan.PresetBalanced})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	var fills []plan.Operation
	for _, l := range p.Layers {
		for _, op := range l.Operations {
			if op.Type == plan.OpFill {
				fills = append(fills, op)
			}
		}
	}
	if len(fills) != 2 {
		t.Fatalf("got %d fill operations, want 2", len(fills))
	}

	first := fillPoints(fills[0], 10)
	if len(first) == 0 {
		t.Fatal("first blob produced no stitches")
	}
	for _, pt := range first {
		if pt.X > 100.5 {
			t.Fatalf("first blob stitch %v reaches into the second blob", pt)
		}
	}

	second := fillPoints(fills[1], 10)
	if len(second) == 0 {
		t.Fatal("second blob produced no stitches")
	}
	for _, pt := range second {
		if pt.X < 199.5 {
			t.Fatalf("second blob stitch %v escapes its outer contour", pt)
		}
		if pt.X > 220.5 && pt.X < 279.5 && pt.Y > 20.5 && pt.Y < 79.5 {
			t.Fatalf("second blob stitch %v lands inside its hole", pt)
		}
	}
}

func TestFillRotatedStaysInBounds(t *testing.T) {
	op := plan.Operation{
		Type:           plan.OpFill,
		Contour:        squarePx(200),
		AngleDeg:       45,
		Density:        5,
		StitchLengthMM: 2,
	}

	got := fillPoints(op, 10)
	if len(got) == 0 {
		t.Fatal("fillPoints() produced no stitches")
	}
	for _, p := range got {
		if p.X < -1 || p.X > 201 || p.Y < -1 || p.Y > 201 {
			t.Fatalf("rotated fill stitch %v escapes the region bounds", p)
		}
	}
}

func TestToRecordScale(t *testing.T) {
	opts := Options{PxPerMM: 10, Offset: geometry.Point2D{X: 100, Y: 100}}

	got := toRecord(geometry.Point2D{X: 110, Y: 90}, opts)
	want := Record{X: 10, Y: -10}
	if got.X != want.X || got.Y != want.Y {
		t.Errorf("toRecord() = %+v, want %+v", got, want)
	}

	// One pixel at 10 px/mm is 0.1 mm, which is one output unit.
	got = toRecord(geometry.Point2D{X: 101, Y: 100}, opts)
	if got.X != 1 || got.Y != 0 {
		t.Errorf("toRecord() = %+v, want {1 0}", got)
	}
}

func buildTwoColorPlan(t *testing.T) *plan.Plan {
	t.Helper()
	regions := []region.Region{
		{
			Color:       color.RGBA{204, 0, 0, 255},
			Hex:         "#cc0000",
			Type:        region.TypeFill,
			Shapes:      []region.Shape{{Outer: squarePx(100), AreaMM2: 100, PerimeterMM: 40}},
			AreaMM2:     100,
			PerimeterMM: 40,
		},
		{
			Color:       color.RGBA{0, 0, 204, 255},
			Hex:         "#0000cc",
			Type:        region.TypeOutline,
			Shapes:      []region.Shape{{Outer: squarePx(60), AreaMM2: 36, PerimeterMM: 24}},
			AreaMM2:     36,
			PerimeterMM: 24,
		},
	}
	p, err := plan.Build(regions, plan.Options{Preset: plan.PresetBalanced})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return p
}

func TestGenerateFraming(t *testing.T) {
	p := buildTwoColorPlan(t)
	layers := Generate(p, Options{PxPerMM: 10, Workers: 2})
	if len(layers) != 2 {
		t.Fatalf("Generate() returned %d layers, want 2", len(layers))
	}

	first := layers[0]
	if first.ColorHex != "#cc0000" {
		t.Errorf("first layer color = %s, want #cc0000", first.ColorHex)
	}
	if len(first.Records) < 3 {
		t.Fatalf("first layer has %d records", len(first.Records))
	}
	if first.Records[0].Flag != FlagMove {
		t.Errorf("layer starts with %v, want move", first.Records[0].Flag)
	}
	for _, r := range first.Records[1 : len(first.Records)-1] {
		if r.Flag != FlagStitch {
			t.Fatalf("mid-layer record has flag %v, want stitch", r.Flag)
		}
	}

	change := first.Records[len(first.Records)-1]
	prev := first.Records[len(first.Records)-2]
	if change.Flag != FlagColorChange {
		t.Errorf("layer ends with %v, want color-change", change.Flag)
	}
	if change.X != prev.X || change.Y != prev.Y {
		t.Errorf("color change at (%d,%d), want needle position (%d,%d)",
			change.X, change.Y, prev.X, prev.Y)
	}

	last := layers[1]
	n := len(last.Records)
	if n < 2 || last.Records[n-2].Flag != FlagColorChange || last.Records[n-1].Flag != FlagEnd {
		t.Errorf("design does not end with color-change then end")
	}

	if got := first.StitchCount(); got != len(first.Records)-2 {
		t.Errorf("StitchCount() = %d, want %d", got, len(first.Records)-2)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	p := buildTwoColorPlan(t)
	first := Generate(p, Options{PxPerMM: 10, Workers: 4})
	second := Generate(p, Options{PxPerMM: 10, Workers: 1})

	if len(first) != len(second) {
		t.Fatalf("layer counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if len(first[i].Records) != len(second[i].Records) {
			t.Fatalf("layer %d record counts differ", i)
		}
		for j := range first[i].Records {
			if first[i].Records[j] != second[i].Records[j] {
				t.Fatalf("layer %d record %d differs: %+v vs %+v",
					i, j, first[i].Records[j], second[i].Records[j])
			}
		}
	}
}

func TestGenerateSkipsDegenerateOperations(t *testing.T) {
	p := &plan.Plan{
		Layers: []plan.Layer{{
			ColorHex: "#cc0000",
			Operations: []plan.Operation{{
				Type:    plan.OpOutline,
				Contour: region.Contour{{X: 0, Y: 0}, {X: 10, Y: 10}},
			}},
		}},
		Config: plan.DefaultConfig(),
	}

	layers := Generate(p, Options{PxPerMM: 10})
	if len(layers) != 1 {
		t.Fatalf("Generate() returned %d layers, want 1", len(layers))
	}
	// No sewable points, only the control framing remains.
	recs := layers[0].Records
	if len(recs) != 2 || recs[0].Flag != FlagColorChange || recs[1].Flag != FlagEnd {
		t.Errorf("records = %+v, want color-change then end", recs)
	}
}

func TestGenerateNilPlan(t *testing.T) {
	if got := Generate(nil, Options{PxPerMM: 10}); got != nil {
		t.Errorf("Generate(nil) = %v, want nil", got)
	}
	if got := Generate(&plan.Plan{}, Options{}); got != nil {
		t.Errorf("Generate with zero scale = %v, want nil", got)
	}
}
