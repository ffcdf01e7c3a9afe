package palette

import (
	"fmt"
	"image/color"
	"math"

	"MandelbrotExplorer/misc"
)

// HSV is a colour in the hexagonal hue, saturation, value model. H is in degrees, S and V in [0, 1].
type HSV struct {
	H float64
	S float64
	V float64
}

func (c HSV) String() string {
	return fmt.Sprintf("{HSV H: %.1f S: %.3f V: %.3f}", c.H, c.S, c.V)
}

// Normalize wraps the hue into [0, 360) and clamps saturation and value into [0, 1].
func (c HSV) Normalize() HSV {
	h := math.Mod(c.H, 360)
	if h < 0 {
		h += 360
	}
	return HSV{
		H: h,
		S: misc.Clamp(c.S, 0, 1),
		V: misc.Clamp(c.V, 0, 1),
	}
}

func HSVToRGB(c HSV) color.RGBA {
	c = c.Normalize()
	if c.S == 0 {
		g := channel(c.V)
		return color.RGBA{R: g, G: g, B: g, A: 255}
	}

	sector := c.H / 60
	i := math.Floor(sector)
	f := sector - i
	p := c.V * (1 - c.S)
	q := c.V * (1 - c.S*f)
	t := c.V * (1 - c.S*(1-f))

	var r, g, b float64
	switch int(i) {
	case 0:
		r, g, b = c.V, t, p
	case 1:
		r, g, b = q, c.V, p
	case 2:
		r, g, b = p, c.V, t
	case 3:
		r, g, b = p, q, c.V
	case 4:
		r, g, b = t, p, c.V
	default:
		r, g, b = c.V, p, q
	}
	return color.RGBA{R: channel(r), G: channel(g), B: channel(b), A: 255}
}

// RGBToHSV returns hue 0 for grays, where hue is undefined.
func RGBToHSV(c color.RGBA) HSV {
	r := float64(c.R) / 255
	g := float64(c.G) / 255
	b := float64(c.B) / 255
	high := math.Max(r, math.Max(g, b))
	low := math.Min(r, math.Min(g, b))
	delta := high - low

	out := HSV{V: high}
	if high == 0 || delta == 0 {
		return out
	}
	out.S = delta / high

	switch high {
	case r:
		out.H = 60 * math.Mod((g-b)/delta, 6)
	case g:
		out.H = 60 * ((b-r)/delta + 2)
	default:
		out.H = 60 * ((r-g)/delta + 4)
	}
	if out.H < 0 {
		out.H += 360
	}
	return out
}

func channel(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
