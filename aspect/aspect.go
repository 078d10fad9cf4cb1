// Package aspect computes pixel dimensions for aspect ratios under a
// model's pixel budget, plus the resolution fix-up some models need at
// the /64 boundary.
package aspect

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxDimensions returns the largest width and height for the given aspect
// ratio that fit within totalPixels, with both dimensions a multiple of
// multiple. Small deviations from the exact ratio are allowed to maximize
// resolution while staying under the budget.
//
// The ideal floating-point dimensions are snapped down to the nearest
// multiple, then shrunk one step at a time (longer side first) while the
// area still exceeds the budget.
func MaxDimensions(aspectW, aspectH float64, totalPixels, multiple int) (int, int) {
	scale := math.Sqrt(float64(totalPixels) / (aspectW * aspectH))
	idealW := aspectW * scale
	idealH := aspectH * scale

	width := int(idealW) - int(idealW)%multiple
	height := int(idealH) - int(idealH)%multiple

	for width*height > totalPixels && width > 0 && height > 0 {
		if width >= height {
			width -= multiple
		} else {
			height -= multiple
		}
	}
	return width, height
}

// Pixels resolves an aspect argument into pixel dimensions.
//
// Three forms are accepted:
//   - "WxH": exact pixel dimensions, returned as-is
//   - "X:Y": an aspect ratio, fitted into a side*side pixel budget with
//     both dimensions a multiple of rounding
//   - anything else: treated as 1:1
func Pixels(ratio string, side, rounding int) (int, int, error) {
	if strings.Contains(ratio, "x") {
		parts := strings.SplitN(ratio, "x", 2)
		width, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, 0, fmt.Errorf("aspect: bad width in '%s': %w", ratio, err)
		}
		height, err := strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, fmt.Errorf("aspect: bad height in '%s': %w", ratio, err)
		}
		return width, height, nil
	}

	aw, ah := 1.0, 1.0
	if strings.Contains(ratio, ":") {
		parts := strings.SplitN(ratio, ":", 2)
		var err error
		if aw, err = strconv.ParseFloat(parts[0], 64); err != nil {
			return 0, 0, fmt.Errorf("aspect: bad ratio '%s': %w", ratio, err)
		}
		if ah, err = strconv.ParseFloat(parts[1], 64); err != nil {
			return 0, 0, fmt.Errorf("aspect: bad ratio '%s': %w", ratio, err)
		}
	}

	width, height := MaxDimensions(aw, ah, side*side, rounding)
	return width, height, nil
}

// ParseSidelength parses a "pixels/divisor" argument like "1024/64" into
// its side length and rounding divisor. A bare number keeps the default
// divisor of 64.
func ParseSidelength(arg string) (side, rounding int, err error) {
	rounding = 64
	text := arg
	if strings.Contains(arg, "/") {
		parts := strings.SplitN(arg, "/", 2)
		text = parts[0]
		if rounding, err = strconv.Atoi(parts[1]); err != nil {
			return 0, 0, fmt.Errorf("aspect: bad divisor in '%s': %w", arg, err)
		}
	}
	if side, err = strconv.Atoi(text); err != nil {
		return 0, 0, fmt.Errorf("aspect: bad sidelength '%s': %w", arg, err)
	}
	return side, rounding, nil
}

// Crop is a pixel bounding box, left/top inclusive, right/bottom
// exclusive.
type Crop struct {
	X0, Y0, X1, Y1 int
}

// IsZero reports whether no crop is needed.
func (c Crop) IsZero() bool {
	return c == Crop{}
}

// Scaled returns the crop box with every coordinate multiplied by mul.
// Used when a refiner upscale enlarges the rendered image before the crop
// is applied.
func (c Crop) Scaled(mul float64) Crop {
	return Crop{
		X0: int(mul * float64(c.X0)),
		Y0: int(mul * float64(c.Y0)),
		X1: int(mul * float64(c.X1)),
		Y1: int(mul * float64(c.Y1)),
	}
}

// FixResolution rounds the requested dimensions up to the next multiple of
// 64 and returns the centered crop box that recovers the original size
// after generation. Some models produce edge artifacts at non-/64
// resolutions; generating slightly larger and cropping avoids them.
//
// When both dimensions are already multiples of 64 the input is returned
// with a zero crop.
func FixResolution(width, height int) (newW, newH int, crop Crop) {
	newW, newH = width, height
	if width%64 > 0 {
		newW = (width/64 + 1) * 64
	}
	if height%64 > 0 {
		newH = (height/64 + 1) * 64
	}
	if newW > width || newH > height {
		deltaW := (newW - width) / 2
		deltaH := (newH - height) / 2
		crop = Crop{X0: deltaW, Y0: deltaH, X1: width + deltaW, Y1: height + deltaH}
	}
	return newW, newH, crop
}
