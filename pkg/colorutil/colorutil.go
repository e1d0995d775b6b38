// Package colorutil provides shared color utilities for the digitizing
// pipeline: sRGB to CIE Lab conversion for perceptual clustering, and hex
// color formatting for palette bookkeeping.
package colorutil

import (
	"fmt"
	"image/color"
	"math"
)

// D65 reference white in XYZ.
const (
	refX = 0.95047
	refY = 1.00000
	refZ = 1.08883
)

// RGBToLab converts 8-bit sRGB to CIE Lab (D65).
// L is in 0-100, a and b roughly -128 to 127.
func RGBToLab(r, g, b uint8) (l, a, bb float64) {
	// sRGB to linear
	rl := srgbToLinear(float64(r) / 255.0)
	gl := srgbToLinear(float64(g) / 255.0)
	bl := srgbToLinear(float64(b) / 255.0)

	// Linear RGB to XYZ
	x := 0.4124564*rl + 0.3575761*gl + 0.1804375*bl
	y := 0.2126729*rl + 0.7151522*gl + 0.0721750*bl
	z := 0.0193339*rl + 0.1191920*gl + 0.9503041*bl

	fx := labF(x / refX)
	fy := labF(y / refY)
	fz := labF(z / refZ)

	l = 116*fy - 16
	a = 500 * (fx - fy)
	bb = 200 * (fy - fz)
	return l, a, bb
}

// LabToRGB converts CIE Lab (D65) back to 8-bit sRGB, clamping out-of-gamut
// values.
func LabToRGB(l, a, b float64) (uint8, uint8, uint8) {
	fy := (l + 16) / 116
	fx := fy + a/500
	fz := fy - b/200

	x := refX * labFInv(fx)
	y := refY * labFInv(fy)
	z := refZ * labFInv(fz)

	rl := 3.2404542*x - 1.5371385*y - 0.4985314*z
	gl := -0.9692660*x + 1.8760108*y + 0.0415560*z
	bl := 0.0556434*x - 0.2040259*y + 1.0572252*z

	return clamp8(linearToSRGB(rl)), clamp8(linearToSRGB(gl)), clamp8(linearToSRGB(bl))
}

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func linearToSRGB(c float64) float64 {
	if c <= 0.0031308 {
		return 12.92 * c
	}
	return 1.055*math.Pow(c, 1/2.4) - 0.055
}

func labF(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta*delta*delta {
		return math.Cbrt(t)
	}
	return t/(3*delta*delta) + 4.0/29.0
}

func labFInv(t float64) float64 {
	const delta = 6.0 / 29.0
	if t > delta {
		return t * t * t
	}
	return 3 * delta * delta * (t - 4.0/29.0)
}

func clamp8(c float64) uint8 {
	v := math.Round(c * 255)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Hex formats a color as a lowercase #rrggbb string.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// NearWhite reports whether a color is close enough to white to be treated
// as canvas background (all channels above 240).
func NearWhite(c color.RGBA) bool {
	return c.R > 240 && c.G > 240 && c.B > 240
}

// DistLab returns the squared Euclidean distance between two Lab colors.
func DistLab(l1, a1, b1, l2, a2, b2 float64) float64 {
	dl := l1 - l2
	da := a1 - a2
	db := b1 - b2
	return dl*dl + da*da + db*db
}
