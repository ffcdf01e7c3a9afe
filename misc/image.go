package misc

import (
	"bytes"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/bmp"
)

func LerpFloat64(v1 float64, v2 float64, fraction float64) float64 {
	return v1 + (v2-v1)*fraction
}

func LerpUint8(v1 uint8, v2 uint8, fraction float64) uint8 {
	return uint8(math.Round(LerpFloat64(float64(v1), float64(v2), fraction)))
}

// CubicBezier evaluates a one dimensional cubic Bezier with control values p0..p3 at t using de Casteljau's
// construction.
func CubicBezier(p0, p1, p2, p3, t float64) float64 {
	a := LerpFloat64(p0, p1, t)
	b := LerpFloat64(p1, p2, t)
	c := LerpFloat64(p2, p3, t)
	d := LerpFloat64(a, b, t)
	e := LerpFloat64(b, c, t)
	return LerpFloat64(d, e, t)
}

func Clamp(v, low, high float64) float64 {
	return math.Max(low, math.Min(high, v))
}

// SaveImage writes img as an uncompressed 24 bit bitmap.
func SaveImage(fileName string, img image.Image) (int, error) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, img); err != nil {
		return 0, fmt.Errorf("unable to encode %s - %w", fileName, err)
	}
	return WriteFile(fileName, buf.Bytes())
}

// ExportName builds the file name used for a view export, e.g. Mandelbrot_neg_0.7_0_1.bmp.
func ExportName(centerX, centerY, zoom float64) string {
	return fmt.Sprintf("Mandelbrot_%s_%s_%s.bmp", signed(centerX), signed(centerY), signed(zoom))
}

func signed(v float64) string {
	if v < 0 {
		return fmt.Sprintf("neg_%.16g", math.Abs(v))
	}
	return fmt.Sprintf("%.16g", v)
}
