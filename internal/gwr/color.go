package gwr

import (
	"fmt"
	"math"
	"strconv"
)

// hueScale converts HSV degrees into the 16-bit-ish hue range the upstream
// clients expose (360 * 182 ≈ 65520).
const hueScale = 182

// parseHexColor decodes a 6-hex-digit RGB string.
func parseHexColor(color string) (r, g, b int, err error) {
	if len(color) != 6 {
		return 0, 0, 0, fmt.Errorf("color %q is not a 6-digit hex string", color)
	}
	rv, err := strconv.ParseInt(color[0:2], 16, 32)
	if err != nil {
		return 0, 0, 0, err
	}
	gv, err := strconv.ParseInt(color[2:4], 16, 32)
	if err != nil {
		return 0, 0, 0, err
	}
	bv, err := strconv.ParseInt(color[4:6], 16, 32)
	if err != nil {
		return 0, 0, 0, err
	}
	return int(rv), int(gv), int(bv), nil
}

// rgbToHue returns the HSV hue in degrees (0-360) for 0-255 channel values.
func rgbToHue(r, g, b int) float64 {
	rf := float64(r) / 255.0
	gf := float64(g) / 255.0
	bf := float64(b) / 255.0

	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	delta := max - min
	if delta == 0 {
		return 0
	}

	var h float64
	switch max {
	case rf:
		h = math.Mod((gf-bf)/delta, 6)
	case gf:
		h = (bf-rf)/delta + 2
	default:
		h = (rf-gf)/delta + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	return h
}

// colorToHue converts a room's hex color into a scaled hue reading.
//
// The upstream client assigns the blue channel to both G and B before
// converting, skewing every hue reading. Consumers may depend on the skewed
// output, so compat keeps that behavior; accurate mode uses the real green
// channel.
func colorToHue(color string, compat bool) (int, error) {
	r, g, b, err := parseHexColor(color)
	if err != nil {
		return 0, err
	}
	if compat {
		g = b
	}
	return int(rgbToHue(r, g, b) * hueScale), nil
}
