package palette

import (
	"fmt"
	"image/color"
	"strings"

	"MandelbrotExplorer/misc"
)

const (
	MinGradientBits uint = 2
	MaxGradientBits uint = 8
)

// Ramp is a linear blend from StartColor to EndColor over NumberColors entries, both ends included.
type Ramp struct {
	StartColor   color.RGBA
	EndColor     color.RGBA
	NumberColors int
}

func (r *Ramp) Generate() []color.RGBA {
	colors := make([]color.RGBA, 0, r.NumberColors)
	for j := 0; j < r.NumberColors; j++ {
		fraction := 0.0
		if r.NumberColors > 1 {
			fraction = float64(j) / float64(r.NumberColors-1)
		}
		colors = append(colors, color.RGBA{
			R: misc.LerpUint8(r.StartColor.R, r.EndColor.R, fraction),
			G: misc.LerpUint8(r.StartColor.G, r.EndColor.G, fraction),
			B: misc.LerpUint8(r.StartColor.B, r.EndColor.B, fraction),
			A: 255,
		})
	}
	return colors
}

// Preset is a fixed table of a power of two number of colours. Counts are masked by the view's gradient bits before
// lookup, which bands the image more coarsely the fewer bits are kept.
type Preset struct {
	name   string
	colors []color.RGBA
}

func NewPreset(name string, colors []color.RGBA) Preset {
	return Preset{name: name, colors: colors}
}

func (p Preset) Name() string {
	return p.name
}

func (p Preset) Len() int {
	return len(p.colors)
}

func (p Preset) Lookup(count uint32, _ uint32, gradientBits uint) color.RGBA {
	return p.ColorFor(count, gradientBits)
}

func (p Preset) ColorFor(count uint32, gradientBits uint) color.RGBA {
	if count == 0 || len(p.colors) == 0 {
		return black
	}
	return p.colors[count&GradientMask(len(p.colors), gradientBits)]
}

// GradientMask keeps the gradientBits high bits of an index into a table of size entries.
func GradientMask(size int, gradientBits uint) uint32 {
	gradientBits = max(MinGradientBits, min(MaxGradientBits, gradientBits))
	mask := uint32(size - 1)
	return (mask << (MaxGradientBits - gradientBits)) & mask
}

// GradientBand rounds count down to the first count of its band. Bands are 1 << (8-gradientBits) counts wide and
// start at 1, so an escaped count never bands to the never escaped 0.
func GradientBand(count uint32, gradientBits uint) uint32 {
	if count == 0 {
		return 0
	}
	gradientBits = max(MinGradientBits, min(MaxGradientBits, gradientBits))
	width := uint32(1) << (MaxGradientBits - gradientBits)
	return count - (count-1)%width
}

var presetRamps = []struct {
	name string
	ramp Ramp
}{
	{"grey", Ramp{rgb(0, 0, 0), rgb(255, 255, 255), 256}},
	{"red", Ramp{rgb(0, 0, 0), rgb(255, 0, 0), 256}},
	{"purple-blue", Ramp{rgb(255, 0, 0), rgb(0, 0, 255), 256}},
	{"blue", Ramp{rgb(255, 0, 255), rgb(0, 0, 255), 256}},
	{"green", Ramp{rgb(0, 0, 0), rgb(0, 255, 0), 256}},
	{"emerald", Ramp{rgb(0, 0, 0), rgb(0, 255, 0), 256}},
	{"yellow", Ramp{rgb(0, 0, 0), rgb(255, 255, 0), 256}},
	{"purple", Ramp{rgb(0, 0, 0), rgb(255, 0, 255), 256}},
}

func rgb(r, g, b uint8) color.RGBA {
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Presets returns the built in palettes in cycling order.
func Presets() []Preset {
	presets := make([]Preset, 0, len(presetRamps))
	for _, p := range presetRamps {
		presets = append(presets, NewPreset(p.name, p.ramp.Generate()))
	}
	return presets
}

func PresetByName(name string) (Preset, error) {
	for _, p := range presetRamps {
		if strings.EqualFold(p.name, name) {
			return NewPreset(p.name, p.ramp.Generate()), nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrUnknown, name)
}
