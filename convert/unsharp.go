// Package convert applies client-side post-processing to generated
// images: crop, percentage resize, unsharp mask, and JPEG conversion,
// with the generation metadata carried across into the saved file.
package convert

import (
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"
)

// Unsharp holds unsharp-mask parameters: gaussian radius, effect
// strength as a percentage, and the minimum brightness delta a pixel
// needs before it is sharpened.
type Unsharp struct {
	Radius    float64
	Percent   int
	Threshold int
}

// DefaultUnsharp is tuned for mild edge enhancement on generated images.
var DefaultUnsharp = Unsharp{Radius: 0.65, Percent: 65, Threshold: 5}

// ParseUnsharp parses a radius/percent/threshold argument like
// "0.65/65/5".
func ParseUnsharp(arg string) (Unsharp, error) {
	parts := strings.Split(arg, "/")
	if len(parts) != 3 {
		return Unsharp{}, fmt.Errorf("convert: unsharp parameters must be radius/percent/threshold, got '%s'", arg)
	}
	radius, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Unsharp{}, fmt.Errorf("convert: bad unsharp radius '%s': %w", parts[0], err)
	}
	percent, err := strconv.Atoi(parts[1])
	if err != nil {
		return Unsharp{}, fmt.Errorf("convert: bad unsharp percent '%s': %w", parts[1], err)
	}
	threshold, err := strconv.Atoi(parts[2])
	if err != nil {
		return Unsharp{}, fmt.Errorf("convert: bad unsharp threshold '%s': %w", parts[2], err)
	}
	return Unsharp{Radius: radius, Percent: percent, Threshold: threshold}, nil
}

// UnsharpMask sharpens an image: each pixel is pushed away from its
// gaussian-blurred neighborhood by Percent, but only where the difference
// exceeds Threshold. Alpha is preserved.
func UnsharpMask(src *image.NRGBA, u Unsharp) *image.NRGBA {
	if u.Radius <= 0 || u.Percent == 0 {
		return src
	}
	blurred := gaussianBlur(src, u.Radius)
	bounds := src.Bounds()
	out := image.NewNRGBA(bounds)

	amount := float64(u.Percent) / 100.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i := src.PixOffset(x, y)
			for c := 0; c < 3; c++ {
				orig := float64(src.Pix[i+c])
				diff := orig - float64(blurred.Pix[i+c])
				if math.Abs(diff) >= float64(u.Threshold) {
					out.Pix[i+c] = clampByte(orig + amount*diff)
				} else {
					out.Pix[i+c] = src.Pix[i+c]
				}
			}
			out.Pix[i+3] = src.Pix[i+3]
		}
	}
	return out
}

// gaussianBlur applies a separable gaussian with sigma=radius.
func gaussianBlur(src *image.NRGBA, radius float64) *image.NRGBA {
	kernel := gaussianKernel(radius)
	half := len(kernel) / 2
	bounds := src.Bounds()

	horizontal := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			var sum [4]float64
			for k, weight := range kernel {
				sx := clampInt(x+k-half, bounds.Min.X, bounds.Max.X-1)
				i := src.PixOffset(sx, y)
				for c := 0; c < 4; c++ {
					sum[c] += weight * float64(src.Pix[i+c])
				}
			}
			i := horizontal.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				horizontal.Pix[i+c] = clampByte(sum[c])
			}
		}
	}

	out := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			var sum [4]float64
			for k, weight := range kernel {
				sy := clampInt(y+k-half, bounds.Min.Y, bounds.Max.Y-1)
				i := horizontal.PixOffset(x, sy)
				for c := 0; c < 4; c++ {
					sum[c] += weight * float64(horizontal.Pix[i+c])
				}
			}
			i := out.PixOffset(x, y)
			for c := 0; c < 4; c++ {
				out.Pix[i+c] = clampByte(sum[c])
			}
		}
	}
	return out
}

func gaussianKernel(sigma float64) []float64 {
	half := int(math.Ceil(sigma * 3))
	if half < 1 {
		half = 1
	}
	kernel := make([]float64, 2*half+1)
	var total float64
	for i := range kernel {
		d := float64(i - half)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		total += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= total
	}
	return kernel
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
