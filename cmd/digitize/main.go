// Command digitize converts a raster image into an embroidery stitch plan
// and per-layer stitch streams, with SVG previews.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/tiff"

	"github.com/JimmiFriborg/embroidery-palette/internal/hoop"
	"github.com/JimmiFriborg/embroidery-palette/internal/pipeline"
	"github.com/JimmiFriborg/embroidery-palette/internal/preview"
	"github.com/JimmiFriborg/embroidery-palette/internal/stitch"
)

func main() {
	imagePath := flag.String("image", "", "Path to source image (PNG, JPEG, or TIFF)")
	hoopName := flag.String("hoop", "100x100", "Hoop size: 100x100 or 70x70")
	colors := flag.Int("colors", 6, "Target thread color count (1-20)")
	quality := flag.String("quality", "balanced", "Quality preset: fast, balanced, or quality")
	density := flag.Float64("density", 0, "Density multiplier override (0 = preset default)")
	keepBG := flag.Bool("keep-background", false, "Skip background removal")
	coarse := flag.Bool("coarse", false, "Use the degraded pure-Go extraction strategies")
	outDir := flag.String("out", ".", "Output directory")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: digitize -image <path> [-hoop 100x100] [-colors 6] [-quality balanced] [-out dir]")
		os.Exit(1)
	}

	f, err := os.Open(*imagePath)
	if err != nil {
		fatalf("Failed to open image: %v", err)
	}
	img, format, err := image.Decode(f)
	f.Close()
	if err != nil {
		fatalf("Failed to decode image: %v", err)
	}

	bounds := img.Bounds()
	fmt.Printf("Loaded %s image: %dx%d pixels\n", format, bounds.Dx(), bounds.Dy())

	result, err := pipeline.Run(img, pipeline.Params{
		Hoop:             *hoopName,
		Colors:           *colors,
		Quality:          *quality,
		Density:          *density,
		RemoveBackground: !*keepBG,
		Coarse:           *coarse,
	})
	if err != nil {
		fatalf("Digitizing failed: %v", err)
	}

	s := result.Summary
	fmt.Printf("Segmentation: %s, extraction: %s\n", s.Segmentation, s.ExtractionMode)
	fmt.Printf("Regions: %d, layers: %d\n", len(result.Extraction.Regions), len(result.Layers))
	fmt.Printf("Estimated stitches: %d (~%.1f min)\n", s.TotalStitches, s.EstimatedMinutes)
	for _, w := range s.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fatalf("Failed to create output directory: %v", err)
	}

	if err := writeJSON(filepath.Join(*outDir, "plan.json"), result.Plan); err != nil {
		fatalf("Failed to write plan: %v", err)
	}
	if err := writeJSON(filepath.Join(*outDir, "summary.json"), s); err != nil {
		fatalf("Failed to write summary: %v", err)
	}

	for i, layer := range result.Layers {
		path := filepath.Join(*outDir, fmt.Sprintf("stitches-%02d.txt", i+1))
		if err := writeLayer(path, layer); err != nil {
			fatalf("Failed to write %s: %v", path, err)
		}
	}

	profile, _ := hoop.ByName(*hoopName)
	if err := writePreview(filepath.Join(*outDir, "preview.svg"), result, profile); err != nil {
		fatalf("Failed to write preview: %v", err)
	}
	if err := writeMaskTrace(filepath.Join(*outDir, "mask.svg"), result); err != nil {
		fatalf("Failed to write mask trace: %v", err)
	}

	fmt.Printf("Wrote outputs to %s\n", *outDir)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// writeLayer writes one stitch stream as "flag x y" lines.
func writeLayer(path string, layer stitch.Layer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# color %s stitches %d\n", layer.ColorHex, layer.StitchCount())
	for _, rec := range layer.Records {
		fmt.Fprintf(w, "%s %d %d\n", rec.Flag, rec.X, rec.Y)
	}
	return w.Flush()
}

func writePreview(path string, result *pipeline.Result, profile hoop.Profile) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	preview.PlanSVG(f, result.Layers, profile)
	return nil
}

func writeMaskTrace(path string, result *pipeline.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return preview.MaskSVG(f, result.Preprocessed.Mask)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
