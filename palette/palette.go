package palette

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"sync"

	"MandelbrotExplorer/misc"
)

var (
	ErrControlIndex = errors.New("control index out of range")
	ErrUnknown      = errors.New("unknown palette")
)

var black = color.RGBA{A: 255}

// Lookup maps an escape count to a colour. Count 0, the never escaped sentinel, is black for every Lookup.
type Lookup interface {
	Name() string
	Lookup(count uint32, iterationCap uint32, gradientBits uint) color.RGBA
}

// Palette blends four control colours with a cubic Bezier in HSV space and caches the result in a lookup table sized
// for the largest iteration cap seen so far.
type Palette struct {
	controls [4]HSV
	dirty    bool
	mutex    sync.Mutex
	rebuilds uint64
	table    []color.RGBA
}

func NewPalette(controls [4]HSV) *Palette {
	p := &Palette{dirty: true}
	for i, c := range controls {
		p.controls[i] = c.Normalize()
	}
	return p
}

func DefaultControls() [4]HSV {
	return [4]HSV{
		{H: 230, S: 0.9, V: 0.25},
		{H: 190, S: 0.8, V: 0.95},
		{H: 45, S: 0.9, V: 1.0},
		{H: 350, S: 0.85, V: 0.55},
	}
}

func (p *Palette) Name() string {
	return Bezier
}

func (p *Palette) Control(i int) (HSV, error) {
	if i < 0 || i >= len(p.controls) {
		return HSV{}, fmt.Errorf("%w: %d", ErrControlIndex, i)
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.controls[i], nil
}

// SetControl replaces one control colour and invalidates the lookup table.
func (p *Palette) SetControl(i int, c HSV) error {
	if i < 0 || i >= len(p.controls) {
		return fmt.Errorf("%w: %d", ErrControlIndex, i)
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	c = c.Normalize()
	if p.controls[i] != c {
		p.controls[i] = c
		p.dirty = true
	}
	return nil
}

// Lookup bands count by gradientBits before the table lookup, so fewer bits give wider bands of one colour.
func (p *Palette) Lookup(count uint32, iterationCap uint32, gradientBits uint) color.RGBA {
	return p.ColorFor(GradientBand(count, gradientBits), iterationCap)
}

// ColorFor returns the colour for count under iterationCap. The table grows when iterationCap exceeds it. A smaller cap
// samples the existing table more coarsely instead of rebuilding it.
func (p *Palette) ColorFor(count uint32, iterationCap uint32) color.RGBA {
	if count == 0 {
		return black
	}

	p.mutex.Lock()
	defer p.mutex.Unlock()

	size := len(p.table)
	if p.dirty || int(iterationCap) > size {
		p.regenerate(max(size, int(iterationCap)))
		size = len(p.table)
	}

	index := uint64(count)
	if iterationCap > 0 && int(iterationCap) < size {
		index = index * uint64(size) / uint64(iterationCap)
	}
	if index >= uint64(size) {
		index = uint64(size) - 1
	}
	return p.table[index]
}

// Size is the current length of the lookup table.
func (p *Palette) Size() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return len(p.table)
}

// Rebuilds counts how often the lookup table has been generated.
func (p *Palette) Rebuilds() uint64 {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.rebuilds
}

func (p *Palette) regenerate(size int) {
	if size < 1 {
		size = 1
	}
	if cap(p.table) >= size {
		p.table = p.table[:size]
	} else {
		p.table = make([]color.RGBA, size)
	}
	for i := range p.table {
		p.table[i] = HSVToRGB(p.sample(float64(i) / float64(size)))
	}
	p.dirty = false
	p.rebuilds++
}

// sample evaluates the Bezier at u. Hues are unwrapped along the shortest arc between neighbouring controls so the
// curve never takes the long way round the colour wheel.
func (p *Palette) sample(u float64) HSV {
	var hues [4]float64
	hues[0] = p.controls[0].H
	for i := 1; i < len(hues); i++ {
		d := math.Mod(p.controls[i].H-p.controls[i-1].H, 360)
		if d > 180 {
			d -= 360
		} else if d <= -180 {
			d += 360
		}
		hues[i] = hues[i-1] + d
	}

	c := p.controls
	return HSV{
		H: misc.CubicBezier(hues[0], hues[1], hues[2], hues[3], u),
		S: misc.CubicBezier(c[0].S, c[1].S, c[2].S, c[3].S, u),
		V: misc.CubicBezier(c[0].V, c[1].V, c[2].V, c[3].V, u),
	}.Normalize()
}
