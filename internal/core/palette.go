package core

import (
	"fmt"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	paletteSaturation = 70
	paletteLightness  = 60
)

// Hue returns the evenly spaced hue for position i out of n categories.
func Hue(i, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(i) * 360 / float64(n)
}

// Palette returns one CSS hsl() color per category, indexed by feed position.
func Palette(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("hsl(%s, %d%%, %d%%)",
			strconv.FormatFloat(Hue(i, n), 'f', -1, 64), paletteSaturation, paletteLightness)
	}
	return out
}

// PaletteHex is Palette converted to #rrggbb for renderers that cannot take hsl().
func PaletteHex(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = colorful.Hsl(Hue(i, n), paletteSaturation/100.0, paletteLightness/100.0).Hex()
	}
	return out
}
