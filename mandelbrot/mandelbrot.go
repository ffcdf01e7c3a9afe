package mandelbrot

import (
	"errors"
	"fmt"
	"image"
	"math/big"
	"strings"
)

const (
	// BaseSpan is the width of the complex plane covered by a frame at zoom 1.
	BaseSpan = 3.0
	// Boundary is the squared magnitude an orbit has to exceed to count as escaped.
	Boundary = 100.0
	// DefaultPrecision is the mantissa width in bits used by the arbitrary precision kernel.
	DefaultPrecision uint = 128
)

var (
	ErrUnknownMode  = errors.New("unknown render mode")
	ErrNoCPUKernel  = errors.New("render mode has no cpu kernel")
	ErrInvalidFrame = errors.New("invalid frame")
)

const (
	DoublePrecision Mode = iota
	ArbitraryPrecision
	GpuOffload
)

type Mode int

func (m Mode) String() string {
	if m < DoublePrecision || m > GpuOffload {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return []string{
		"Double", "Arbitrary", "GPU",
	}[m]
}

func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "d", "double":
		return DoublePrecision, nil
	case "m", "arbitrary", "big", "mpf":
		return ArbitraryPrecision, nil
	case "c", "gpu", "opencl":
		return GpuOffload, nil
	}
	return DoublePrecision, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// Frame is everything the kernels need to know about the view being rendered.
type Frame struct {
	CenterX      float64
	CenterY      float64
	Zoom         float64
	IterationCap uint32
	Width        int
	Height       int
}

func (f Frame) String() string {
	output := "{Frame "
	output += fmt.Sprintf("Center: (%.16g, %.16g) ", f.CenterX, f.CenterY)
	output += fmt.Sprintf("Zoom: %g ", f.Zoom)
	output += fmt.Sprintf("IterationCap: %d ", f.IterationCap)
	output += fmt.Sprintf("Resolution: %dx%d}", f.Width, f.Height)
	return output
}

func (f Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

func (f Frame) Verify() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("%w: resolution %dx%d", ErrInvalidFrame, f.Width, f.Height)
	}
	if !(f.Zoom > 0) {
		return fmt.Errorf("%w: zoom %g", ErrInvalidFrame, f.Zoom)
	}
	return nil
}

// PixelOffset is the unscaled distance of pixel (px, py) from the frame center.
func (f Frame) PixelOffset(px, py int) (float64, float64) {
	ox := BaseSpan * (float64(px)/float64(f.Width) - 0.5)
	oy := BaseSpan * (float64(py)/float64(f.Height) - 0.5)
	return ox, oy
}

// PlaneCoordinate converts pixel (px, py) to the point on the complex plane it samples.
func (f Frame) PlaneCoordinate(px, py int) (float64, float64) {
	ox, oy := f.PixelOffset(px, py)
	return f.CenterX + ox/f.Zoom, f.CenterY + oy/f.Zoom
}

// Kernel fills a rectangle of a frame's pixel buffer with escape counts.
type Kernel interface {
	Mode() Mode
	Fill(pixels []uint32, stride int, rect image.Rectangle)
}

// NewKernel returns the cpu kernel for mode. It is chosen once per frame and shared by every job of that frame.
func NewKernel(frame Frame, mode Mode, precision uint) (Kernel, error) {
	if err := frame.Verify(); err != nil {
		return nil, err
	}
	switch mode {
	case DoublePrecision:
		return doubleKernel{frame: frame}, nil
	case ArbitraryPrecision:
		return newBigKernel(frame, precision), nil
	case GpuOffload:
		return nil, fmt.Errorf("%w: %s", ErrNoCPUKernel, mode)
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(mode))
}

type doubleKernel struct {
	frame Frame
}

func (k doubleKernel) Mode() Mode {
	return DoublePrecision
}

func (k doubleKernel) Fill(pixels []uint32, stride int, rect image.Rectangle) {
	for py := rect.Min.Y; py < rect.Max.Y; py++ {
		row := pixels[py*stride : py*stride+rect.Max.X]
		for px := rect.Min.X; px < rect.Max.X; px++ {
			cx, cy := k.frame.PlaneCoordinate(px, py)
			row[px] = EscapeTime(cx, cy, k.frame.IterationCap)
		}
	}
}

type bigKernel struct {
	centerX   *big.Float
	centerY   *big.Float
	frame     Frame
	precision uint
	zoom      *big.Float
}

func newBigKernel(frame Frame, precision uint) bigKernel {
	if precision == 0 {
		precision = DefaultPrecision
	}
	return bigKernel{
		centerX:   new(big.Float).SetPrec(precision).SetFloat64(frame.CenterX),
		centerY:   new(big.Float).SetPrec(precision).SetFloat64(frame.CenterY),
		frame:     frame,
		precision: precision,
		zoom:      new(big.Float).SetPrec(precision).SetFloat64(frame.Zoom),
	}
}

func (k bigKernel) Mode() Mode {
	return ArbitraryPrecision
}

// Fill owns its scratch values, so concurrent calls on disjoint rectangles are safe.
func (k bigKernel) Fill(pixels []uint32, stride int, rect image.Rectangle) {
	s := newBigScratch(k.precision)
	cx := new(big.Float).SetPrec(k.precision)
	cy := new(big.Float).SetPrec(k.precision)
	for py := rect.Min.Y; py < rect.Max.Y; py++ {
		row := pixels[py*stride : py*stride+rect.Max.X]
		for px := rect.Min.X; px < rect.Max.X; px++ {
			k.planeCoordinate(px, py, cx, cy)
			row[px] = s.escape(cx, cy, k.frame.IterationCap)
		}
	}
}

func (k bigKernel) planeCoordinate(px, py int, cx, cy *big.Float) {
	ox, oy := k.frame.PixelOffset(px, py)
	cx.SetFloat64(ox)
	cx.Quo(cx, k.zoom).Add(cx, k.centerX)
	cy.SetFloat64(oy)
	cy.Quo(cy, k.zoom).Add(cy, k.centerY)
}
