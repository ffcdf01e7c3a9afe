package mandelbrot

import "math/big"

// EscapeTime returns the first iteration k in [1, iterationCap) at which the orbit of (cx, cy) leaves the boundary,
// or 0 when it stays bounded.
func EscapeTime(cx float64, cy float64, iterationCap uint32) uint32 {
	// The float64 conversions stop the compiler from fusing multiply-adds, keeping counts identical across
	// architectures.
	x, y, xx, yy := 0.0, 0.0, 0.0, 0.0
	for k := uint32(1); k < iterationCap; k++ {
		xy := float64(x * y)
		x = float64(xx-yy) + cx
		y = float64(2*xy) + cy
		xx = float64(x * x)
		yy = float64(y * y)
		if xx+yy > Boundary {
			return k
		}
	}
	return 0
}

// EscapeTimeBig is EscapeTime evaluated with precision bit mantissas.
func EscapeTimeBig(cx *big.Float, cy *big.Float, iterationCap uint32, precision uint) uint32 {
	if precision == 0 {
		precision = DefaultPrecision
	}
	return newBigScratch(precision).escape(cx, cy, iterationCap)
}

type bigScratch struct {
	boundary *big.Float
	mag      *big.Float
	x        *big.Float
	xx       *big.Float
	xy       *big.Float
	y        *big.Float
	yy       *big.Float
}

func newBigScratch(precision uint) *bigScratch {
	f := func() *big.Float {
		return new(big.Float).SetPrec(precision)
	}
	return &bigScratch{
		boundary: f().SetFloat64(Boundary),
		mag:      f(),
		x:        f(),
		xx:       f(),
		xy:       f(),
		y:        f(),
		yy:       f(),
	}
}

func (s *bigScratch) escape(cx *big.Float, cy *big.Float, iterationCap uint32) uint32 {
	s.x.SetInt64(0)
	s.y.SetInt64(0)
	s.xx.SetInt64(0)
	s.yy.SetInt64(0)
	for k := uint32(1); k < iterationCap; k++ {
		s.xy.Mul(s.x, s.y)
		s.x.Sub(s.xx, s.yy).Add(s.x, cx)
		s.y.Add(s.xy, s.xy).Add(s.y, cy)
		s.xx.Mul(s.x, s.x)
		s.yy.Mul(s.y, s.y)
		if s.mag.Add(s.xx, s.yy).Cmp(s.boundary) > 0 {
			return k
		}
	}
	return 0
}
