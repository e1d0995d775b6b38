// Package stitch turns a stitch plan into ordered physical stitch
// coordinates per thread layer: scanline fills in rotated frames, triple
// pass bean-stitch outlines, and the move/color-change/end record framing
// an embroidery encoder consumes.
package stitch

import "fmt"

// UnitsPerMM is the physical output scale: 10 units per millimeter.
const UnitsPerMM = 10.0

// Flag marks what a stitch record does.
type Flag uint8

const (
	// FlagMove positions the needle without sewing.
	FlagMove Flag = iota
	// FlagStitch sews at the coordinate.
	FlagStitch
	// FlagColorChange requests the next thread color.
	FlagColorChange
	// FlagEnd terminates the design.
	FlagEnd
)

func (f Flag) String() string {
	switch f {
	case FlagMove:
		return "move"
	case FlagStitch:
		return "stitch"
	case FlagColorChange:
		return "color-change"
	case FlagEnd:
		return "end"
	default:
		return fmt.Sprintf("flag(%d)", uint8(f))
	}
}

// Record is one output coordinate in physical units. Never mutated after
// creation.
type Record struct {
	X    int  `json:"x"`
	Y    int  `json:"y"`
	Flag Flag `json:"flag"`
}

// Layer is the ordered stitch stream for one thread color, together with
// the thread metadata an encoder needs.
type Layer struct {
	ColorHex   string   `json:"color"`
	R, G, B    uint8    `json:"-"`
	ThreadID   string   `json:"thread_id,omitempty"`
	ThreadName string   `json:"thread_name,omitempty"`
	Records    []Record `json:"records"`
}

// StitchCount returns the number of sewing records in the layer.
func (l Layer) StitchCount() int {
	n := 0
	for _, r := range l.Records {
		if r.Flag == FlagStitch {
			n++
		}
	}
	return n
}
