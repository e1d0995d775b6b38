// Package hoop provides embroidery hoop profile definitions.
package hoop

import "fmt"

// PxPerMM is the fixed working resolution of the pipeline: every
// preprocessed canvas is rendered at 10 pixels per millimeter, which also
// matches the 10-units-per-mm convention of the stitch output.
const PxPerMM = 10.0

// Profile describes a physical hoop: the stitchable canvas and the inset
// safe area designs are fitted into.
type Profile struct {
	Name         string  `json:"name"`
	WidthMM      float64 `json:"width_mm"`
	HeightMM     float64 `json:"height_mm"`
	SafeWidthMM  float64 `json:"safe_width_mm"`
	SafeHeightMM float64 `json:"safe_height_mm"`
}

// CanvasPx returns the full hoop canvas size in pixels.
func (p Profile) CanvasPx() (w, h int) {
	return int(p.WidthMM * PxPerMM), int(p.HeightMM * PxPerMM)
}

// SafePx returns the safe area size in pixels.
func (p Profile) SafePx() (w, h int) {
	return int(p.SafeWidthMM * PxPerMM), int(p.SafeHeightMM * PxPerMM)
}

// Square100 returns the 100x100mm hoop profile (5mm margin each side).
func Square100() Profile {
	return Profile{
		Name:         "100x100",
		WidthMM:      100,
		HeightMM:     100,
		SafeWidthMM:  90,
		SafeHeightMM: 90,
	}
}

// Square70 returns the 70x70mm hoop profile.
func Square70() Profile {
	return Profile{
		Name:         "70x70",
		WidthMM:      70,
		HeightMM:     70,
		SafeWidthMM:  62,
		SafeHeightMM: 62,
	}
}

// Profiles returns all known hoop profiles.
func Profiles() []Profile {
	return []Profile{Square100(), Square70()}
}

// ByName looks up a hoop profile by its identifier.
func ByName(name string) (Profile, error) {
	for _, p := range Profiles() {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("unknown hoop %q", name)
}
