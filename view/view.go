package view

import (
	"fmt"

	"MandelbrotExplorer/mandelbrot"
)

const (
	MinGradientBits uint   = 2
	MaxGradientBits uint   = 8
	MinIterationCap uint32 = 64
	maxIterationCap uint32 = 1 << 30
)

// View is one navigable viewport and the pixel buffer computed for it. The buffer is owned by the view and dropped
// when the view leaves the stack.
type View struct {
	parked []byte

	CenterX      float64
	CenterY      float64
	Computed     bool
	GradientBits uint
	Height       int
	IterationCap uint32
	Pixels       []uint32
	Width        int
	Zoom         float64
}

func New(frame mandelbrot.Frame, gradientBits uint) *View {
	return &View{
		CenterX:      frame.CenterX,
		CenterY:      frame.CenterY,
		GradientBits: max(MinGradientBits, min(MaxGradientBits, gradientBits)),
		Height:       frame.Height,
		IterationCap: frame.IterationCap,
		Pixels:       make([]uint32, frame.Width*frame.Height),
		Width:        frame.Width,
		Zoom:         frame.Zoom,
	}
}

func (v *View) String() string {
	output := "{View "
	output += fmt.Sprintf("Center: (%.16g, %.16g) ", v.CenterX, v.CenterY)
	output += fmt.Sprintf("Zoom: %g ", v.Zoom)
	output += fmt.Sprintf("IterationCap: %d ", v.IterationCap)
	output += fmt.Sprintf("GradientBits: %d}", v.GradientBits)
	return output
}

func (v *View) Frame() mandelbrot.Frame {
	return mandelbrot.Frame{
		CenterX:      v.CenterX,
		CenterY:      v.CenterY,
		Zoom:         v.Zoom,
		IterationCap: v.IterationCap,
		Width:        v.Width,
		Height:       v.Height,
	}
}

// Copy duplicates the view's parameters with a fresh, zeroed pixel buffer.
func (v *View) Copy() *View {
	return &View{
		CenterX:      v.CenterX,
		CenterY:      v.CenterY,
		GradientBits: v.GradientBits,
		Height:       v.Height,
		IterationCap: v.IterationCap,
		Pixels:       make([]uint32, v.Width*v.Height),
		Width:        v.Width,
		Zoom:         v.Zoom,
	}
}

// Release drops the pixel buffer, parked or not.
func (v *View) Release() {
	v.Pixels = nil
	v.parked = nil
	v.Computed = false
}

// Parked reports whether the pixel buffer is currently held compressed.
func (v *View) Parked() bool {
	return v.parked != nil
}

func (v *View) park() {
	if v.Pixels == nil {
		return
	}
	v.parked = packPixels(v.Pixels)
	v.Pixels = nil
}

func (v *View) unpark() error {
	if v.parked == nil {
		if v.Pixels == nil {
			v.Pixels = make([]uint32, v.Width*v.Height)
			v.Computed = false
		}
		return nil
	}
	pixels, err := unpackPixels(v.parked, v.Width*v.Height)
	v.parked = nil
	if err != nil {
		v.Pixels = make([]uint32, v.Width*v.Height)
		v.Computed = false
		return err
	}
	v.Pixels = pixels
	return nil
}

// DoubleIterationCap reports whether the cap changed.
func (v *View) DoubleIterationCap() bool {
	if v.IterationCap >= maxIterationCap {
		return false
	}
	v.IterationCap *= 2
	v.Computed = false
	return true
}

// HalveIterationCap never takes the cap below MinIterationCap.
func (v *View) HalveIterationCap() bool {
	if v.IterationCap <= MinIterationCap {
		return false
	}
	v.IterationCap = max(MinIterationCap, v.IterationCap/2)
	v.Computed = false
	return true
}

func (v *View) IncreaseGradient() bool {
	if v.GradientBits >= MaxGradientBits {
		return false
	}
	v.GradientBits++
	return true
}

func (v *View) DecreaseGradient() bool {
	if v.GradientBits <= MinGradientBits {
		return false
	}
	v.GradientBits--
	return true
}
