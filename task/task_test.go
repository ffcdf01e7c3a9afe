package task

import (
	"image"
	"testing"
)

func TestSplitCoversEveryPixelOnce(t *testing.T) {
	bounds := image.Rect(0, 0, 10, 7)
	for _, g := range []Generation{Row, Column, Tile, Image} {
		t.Run(g.String(), func(t *testing.T) {
			rects := Split(bounds, g, 4)
			if len(rects) != Count(bounds, g, 4) {
				t.Errorf("len(Split()) = %d, want Count() = %d", len(rects), Count(bounds, g, 4))
			}
			hits := make([]int, bounds.Dx()*bounds.Dy())
			for _, r := range rects {
				for y := r.Min.Y; y < r.Max.Y; y++ {
					for x := r.Min.X; x < r.Max.X; x++ {
						hits[y*bounds.Dx()+x]++
					}
				}
			}
			for i, h := range hits {
				if h != 1 {
					t.Errorf("pixel %d covered %d times, want 1", i, h)
				}
			}
		})
	}
}

func TestSplitRowCount(t *testing.T) {
	rects := Split(image.Rect(0, 0, 4, 4), Row, 0)
	if len(rects) != 4 {
		t.Fatalf("len(Split(Row)) = %d, want 4", len(rects))
	}
	if rects[2] != image.Rect(0, 2, 4, 3) {
		t.Errorf("Split(Row)[2] = %v, want (0,2)-(4,3)", rects[2])
	}
}

func TestGenerationString(t *testing.T) {
	if Tile.String() != "Tile" {
		t.Errorf("Tile.String() = %q, want Tile", Tile.String())
	}
	if Generation(9).String() != "Generation(9)" {
		t.Errorf("Generation(9).String() = %q", Generation(9).String())
	}
}
