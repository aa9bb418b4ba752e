// Package colorutil provides shared color conversions for the plant
// identification pipeline. Conventions follow OpenCV so that values agree
// with the gocv-based extraction path.
package colorutil

import (
	"math"
)

// RGBToHSV converts RGB (0-255) to HSV (OpenCV convention: H 0-180, S 0-255, V 0-255).
func RGBToHSV(r, g, b float64) (h, s, v float64) {
	r /= 255.0
	g /= 255.0
	b /= 255.0

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	diff := maxC - minC

	v = maxC * 255.0 // V in 0-255

	if maxC == 0 {
		s = 0
	} else {
		s = (diff / maxC) * 255.0 // S in 0-255
	}

	if diff == 0 {
		h = 0
	} else if maxC == r {
		h = 60 * math.Mod((g-b)/diff, 6)
	} else if maxC == g {
		h = 60 * ((b-r)/diff + 2)
	} else {
		h = 60 * ((r-g)/diff + 4)
	}

	if h < 0 {
		h += 360
	}

	h = h / 2 // Convert to OpenCV's 0-180 range

	return h, s, v
}

// D65 white point normalization used by OpenCV's RGB→Lab conversion.
const (
	labXn = 0.950456
	labZn = 1.088754
)

// RGBToLab converts RGB (0-255) to CIE Lab in the floating-point
// convention: L in 0-100, a and b signed around zero. Black maps to
// (0, 0, 0), with no 8-bit channel offset applied.
func RGBToLab(r, g, b float64) (l, a, bb float64) {
	r /= 255.0
	g /= 255.0
	b /= 255.0

	// Linear RGB -> XYZ (OpenCV matrix, D65)
	x := 0.412453*r + 0.357580*g + 0.180423*b
	y := 0.212671*r + 0.715160*g + 0.072169*b
	z := 0.019334*r + 0.119193*g + 0.950227*b

	x /= labXn
	z /= labZn

	if y > 0.008856 {
		l = 116.0*math.Cbrt(y) - 16.0
	} else {
		l = 903.3 * y
	}

	a = 500.0 * (labF(x) - labF(y))
	bb = 200.0 * (labF(y) - labF(z))

	return l, a, bb
}

func labF(t float64) float64 {
	if t > 0.008856 {
		return math.Cbrt(t)
	}
	return 7.787*t + 16.0/116.0
}

// RGBToGray converts RGB (0-255) to a single luma value using OpenCV's
// BGR2GRAY weights.
func RGBToGray(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}
