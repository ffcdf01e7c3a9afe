package mandelbrot

import (
	"fmt"
	"math"

	"github.com/BrugadaSyndrome/bslogger"
)

// Settings describe the root view the explorer starts from.
type Settings struct {
	logger bslogger.Logger

	CenterX       float64
	CenterY       float64
	GradientBits  uint
	Height        int
	MaxIterations uint32
	Precision     uint
	Width         int
	Zoom          float64
}

func (s *Settings) String() string {
	output := "\nMandelbrot settings\n"
	output += fmt.Sprintf("Center: (%.16g, %.16g)\n", s.CenterX, s.CenterY)
	output += fmt.Sprintf("Zoom: %g\n", s.Zoom)
	output += fmt.Sprintf("Max Iterations: %d\n", s.MaxIterations)
	output += fmt.Sprintf("Gradient Bits: %d\n", s.GradientBits)
	output += fmt.Sprintf("Resolution: %dx%d\n", s.Width, s.Height)
	output += fmt.Sprintf("Precision: %d bits\n", s.Precision)
	return output
}

func (s *Settings) Verify() error {
	s.logger = bslogger.NewLogger("MandelbrotSettings", bslogger.Normal, nil)

	if s.CenterX > 4.0 || s.CenterX < -4.0 || math.IsNaN(s.CenterX) {
		s.CenterX = -0.7
	}
	if s.CenterY > 4.0 || s.CenterY < -4.0 || math.IsNaN(s.CenterY) {
		s.CenterY = 0.0
	}
	if s.GradientBits == 0 {
		s.GradientBits = 4
	}
	if s.GradientBits < 2 || s.GradientBits > 8 {
		s.logger.Warningf("Gradient bits %d out of range, using 4", s.GradientBits)
		s.GradientBits = 4
	}
	if s.Height <= 0 {
		s.Height = 1024
	}
	if s.MaxIterations == 0 {
		s.MaxIterations = 255
	}
	if s.Precision == 0 {
		s.Precision = DefaultPrecision
	}
	if s.Width <= 0 {
		s.Width = 1024
	}
	if !(s.Zoom > 0) || math.IsInf(s.Zoom, 0) {
		s.Zoom = 1
	}
	return nil
}

// Frame is the frame of the root view.
func (s *Settings) Frame() Frame {
	return Frame{
		CenterX:      s.CenterX,
		CenterY:      s.CenterY,
		Zoom:         s.Zoom,
		IterationCap: s.MaxIterations,
		Width:        s.Width,
		Height:       s.Height,
	}
}
