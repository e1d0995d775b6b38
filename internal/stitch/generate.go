package stitch

import (
	"math"
	"sync"

	"github.com/JimmiFriborg/embroidery-palette/internal/plan"
	"github.com/JimmiFriborg/embroidery-palette/pkg/geometry"
)

// Options configures stitch generation.
type Options struct {
	PxPerMM float64          // scale of the plan's pixel coordinates
	Offset  geometry.Point2D // canvas point mapped to output origin
	Workers int              // concurrent layer workers
}

// Generate produces the per-layer stitch record streams for a plan.
// Layer point computation runs concurrently, but the output keeps plan
// order and record framing is assembled sequentially, so identical plans
// always yield identical streams.
//
// Cross-operation travel optimization and tie-off stitches are known gaps,
// deferred deliberately.
func Generate(p *plan.Plan, opts Options) []Layer {
	if p == nil || opts.PxPerMM <= 0 {
		return nil
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	// points[i][j] holds the stitch coordinates for operation j of layer i.
	points := make([][][]geometry.Point2D, len(p.Layers))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := range p.Layers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			layer := &p.Layers[i]
			ops := make([][]geometry.Point2D, len(layer.Operations))
			for j, op := range layer.Operations {
				ops[j] = operationPoints(op, opts.PxPerMM, p.Config.BeanRepeat)
			}
			points[i] = ops
		}(i)
	}
	wg.Wait()

	layers := make([]Layer, 0, len(p.Layers))
	for i := range p.Layers {
		src := &p.Layers[i]
		layer := Layer{
			ColorHex:   src.ColorHex,
			R:          src.ColorRGB.R,
			G:          src.ColorRGB.G,
			B:          src.ColorRGB.B,
			ThreadID:   src.ThreadID,
			ThreadName: src.ThreadName,
		}

		first := true
		for _, ops := range points[i] {
			for _, pt := range ops {
				rec := toRecord(pt, opts)
				if first {
					// Reach the layer start without sewing.
					rec.Flag = FlagMove
					first = false
				} else {
					rec.Flag = FlagStitch
				}
				layer.Records = append(layer.Records, rec)
			}
		}

		last := toRecordEnd(layer.Records)
		layer.Records = append(layer.Records, Record{X: last.X, Y: last.Y, Flag: FlagColorChange})
		layers = append(layers, layer)
	}

	if n := len(layers); n > 0 {
		last := toRecordEnd(layers[n-1].Records)
		layers[n-1].Records = append(layers[n-1].Records, Record{X: last.X, Y: last.Y, Flag: FlagEnd})
	}

	return layers
}

// operationPoints computes the raw stitch coordinates for one operation in
// canvas pixel space. An operation whose contour has no usable points
// yields no stitches; the layer and plan continue without it.
func operationPoints(op plan.Operation, pxPerMM float64, beanRepeat int) []geometry.Point2D {
	if len(op.Contour) < 3 {
		return nil
	}
	if beanRepeat < 1 {
		beanRepeat = 1
	}

	switch op.Type {
	case plan.OpFill, plan.OpUnderlay, plan.OpDetail:
		return fillPoints(op, pxPerMM)
	case plan.OpOutline:
		return beanPoints(op, pxPerMM, beanRepeat)
	default:
		return nil
	}
}

func toRecord(p geometry.Point2D, opts Options) Record {
	return Record{
		X: int(math.Round((p.X - opts.Offset.X) * UnitsPerMM / opts.PxPerMM)),
		Y: int(math.Round((p.Y - opts.Offset.Y) * UnitsPerMM / opts.PxPerMM)),
	}
}

// toRecordEnd returns the last record, or a zero record for empty layers so
// control records still carry a coordinate.
func toRecordEnd(records []Record) Record {
	if len(records) == 0 {
		return Record{}
	}
	return records[len(records)-1]
}
