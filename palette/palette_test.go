package palette

import (
	"errors"
	"image/color"
	"sync"
	"testing"
)

func TestHSVToRGB(t *testing.T) {
	tests := []struct {
		in   HSV
		want color.RGBA
	}{
		{HSV{0, 1, 1}, color.RGBA{R: 255, A: 255}},
		{HSV{120, 1, 1}, color.RGBA{G: 255, A: 255}},
		{HSV{240, 1, 1}, color.RGBA{B: 255, A: 255}},
		{HSV{60, 1, 1}, color.RGBA{R: 255, G: 255, A: 255}},
		{HSV{300, 1, 0.5}, color.RGBA{R: 128, B: 128, A: 255}},
		{HSV{-60, 1, 1}, color.RGBA{R: 255, B: 255, A: 255}},
		{HSV{200, 0, 0.5}, color.RGBA{R: 128, G: 128, B: 128, A: 255}},
		{HSV{10, 0.5, 0}, color.RGBA{A: 255}},
	}
	for _, test := range tests {
		if got := HSVToRGB(test.in); got != test.want {
			t.Errorf("HSVToRGB(%s) = %v, want %v", test.in, got, test.want)
		}
	}
}

func TestRGBToHSVRoundTrip(t *testing.T) {
	for _, c := range []color.RGBA{
		{R: 255, A: 255},
		{R: 12, G: 200, B: 99, A: 255},
		{R: 250, G: 128, B: 3, A: 255},
		{R: 77, G: 77, B: 77, A: 255},
		{R: 0, G: 0, B: 0, A: 255},
	} {
		if got := HSVToRGB(RGBToHSV(c)); got != c {
			t.Errorf("HSVToRGB(RGBToHSV(%v)) = %v", c, got)
		}
	}
	if h := RGBToHSV(color.RGBA{R: 77, G: 77, B: 77, A: 255}); h.S != 0 || h.H != 0 {
		t.Errorf("RGBToHSV(gray) = %s, want zero hue and saturation", h)
	}
}

func TestColorForZeroIsBlack(t *testing.T) {
	p := NewPalette(DefaultControls())
	for _, iterationCap := range []uint32{0, 1, 64, 4096} {
		if got := p.ColorFor(0, iterationCap); got != black {
			t.Errorf("ColorFor(0, %d) = %v, want black", iterationCap, got)
		}
	}
	for _, preset := range Presets() {
		if got := preset.ColorFor(0, 4); got != black {
			t.Errorf("%s ColorFor(0) = %v, want black", preset.Name(), got)
		}
	}
}

func TestColorForDoesNotRebuild(t *testing.T) {
	p := NewPalette(DefaultControls())
	first := p.ColorFor(17, 256)
	if p.Rebuilds() != 1 || p.Size() != 256 {
		t.Fatalf("Rebuilds() = %d Size() = %d, want 1 and 256", p.Rebuilds(), p.Size())
	}
	second := p.ColorFor(17, 256)
	if first != second {
		t.Errorf("ColorFor(17, 256) = %v then %v", first, second)
	}
	if p.Rebuilds() != 1 {
		t.Errorf("Rebuilds() = %d after repeated lookup, want 1", p.Rebuilds())
	}
}

func TestColorForGrowsAndRescales(t *testing.T) {
	p := NewPalette(DefaultControls())
	p.ColorFor(1, 256)
	p.ColorFor(1, 1024)
	if p.Size() != 1024 || p.Rebuilds() != 2 {
		t.Fatalf("Size() = %d Rebuilds() = %d, want 1024 and 2", p.Size(), p.Rebuilds())
	}

	// A smaller cap reuses the table: count 10 of 256 lands on entry 40 of 1024.
	want := p.ColorFor(40, 1024)
	if got := p.ColorFor(10, 256); got != want {
		t.Errorf("ColorFor(10, 256) = %v, want entry 40 %v", got, want)
	}
	if p.Size() != 1024 || p.Rebuilds() != 2 {
		t.Errorf("Size() = %d Rebuilds() = %d after shrink, want 1024 and 2", p.Size(), p.Rebuilds())
	}
}

func TestSetControlInvalidates(t *testing.T) {
	p := NewPalette(DefaultControls())
	p.ColorFor(1, 64)
	if err := p.SetControl(0, HSV{H: 0, S: 0, V: 1}); err != nil {
		t.Fatalf("SetControl() error: %v", err)
	}
	if got := p.ColorFor(1, 64); p.Rebuilds() != 2 {
		t.Errorf("Rebuilds() = %d after SetControl, want 2 (color %v)", p.Rebuilds(), got)
	}

	// Setting the same colour again leaves the table alone.
	if err := p.SetControl(0, HSV{H: 0, S: 0, V: 1}); err != nil {
		t.Fatalf("SetControl() error: %v", err)
	}
	p.ColorFor(1, 64)
	if p.Rebuilds() != 2 {
		t.Errorf("Rebuilds() = %d after a no-op SetControl, want 2", p.Rebuilds())
	}

	if err := p.SetControl(4, HSV{}); !errors.Is(err, ErrControlIndex) {
		t.Errorf("SetControl(4) error = %v, want ErrControlIndex", err)
	}
	if _, err := p.Control(-1); !errors.Is(err, ErrControlIndex) {
		t.Errorf("Control(-1) error = %v, want ErrControlIndex", err)
	}
}

func TestBezierEndpoints(t *testing.T) {
	controls := [4]HSV{{H: 0, S: 1, V: 1}, {H: 90, S: 1, V: 1}, {H: 180, S: 1, V: 1}, {H: 240, S: 1, V: 1}}
	p := NewPalette(controls)
	if got := p.sample(0); got != controls[0] {
		t.Errorf("sample(0) = %s, want %s", got, controls[0])
	}
	if got := p.sample(1); got.H != 240 {
		t.Errorf("sample(1) hue = %g, want 240", got.H)
	}
}

func TestBezierHueTakesShortArc(t *testing.T) {
	controls := [4]HSV{{H: 350, S: 1, V: 1}, {H: 350, S: 1, V: 1}, {H: 10, S: 1, V: 1}, {H: 10, S: 1, V: 1}}
	p := NewPalette(controls)
	h := p.sample(0.5).H
	if h > 10 && h < 350 {
		t.Errorf("sample(0.5) hue = %g, want it between 350 and 10 through 0", h)
	}
}

func TestPresetMasking(t *testing.T) {
	grey, err := PresetByName("GREY")
	if err != nil {
		t.Fatalf("PresetByName() error: %v", err)
	}
	if grey.Len() != 256 {
		t.Fatalf("Len() = %d, want 256", grey.Len())
	}
	if got := grey.ColorFor(0x37, 8); got.R != 0x37 {
		t.Errorf("ColorFor(0x37, 8).R = %#x, want 0x37", got.R)
	}
	if got := grey.ColorFor(0x37, 4); got.R != 0x30 {
		t.Errorf("ColorFor(0x37, 4).R = %#x, want 0x30", got.R)
	}
	if got := GradientMask(256, 2); got != 0xc0 {
		t.Errorf("GradientMask(256, 2) = %#x, want 0xc0", got)
	}
	if got := GradientMask(256, 20); got != 0xff {
		t.Errorf("GradientMask(256, 20) = %#x, want 0xff", got)
	}
	if _, err := PresetByName("plaid"); !errors.Is(err, ErrUnknown) {
		t.Errorf("PresetByName(plaid) error = %v, want ErrUnknown", err)
	}
	if len(Presets()) != 8 {
		t.Errorf("len(Presets()) = %d, want 8", len(Presets()))
	}
}

func TestColorForConcurrent(t *testing.T) {
	p := NewPalette(DefaultControls())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for c := uint32(1); c < 512; c++ {
				p.ColorFor(c, uint32(256*(1+i%2)))
			}
		}(i)
	}
	wg.Wait()
	if p.Size() != 512 {
		t.Errorf("Size() = %d, want 512", p.Size())
	}
}

func TestSettingsLookup(t *testing.T) {
	s := Settings{}
	if err := s.Verify(); err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	lookup, err := s.Lookup()
	if err != nil || lookup.Name() != Bezier {
		t.Errorf("Lookup() = %v, %v, want the bezier palette", lookup, err)
	}
	s = Settings{Name: "Yellow"}
	if err := s.Verify(); err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if lookup, err = s.Lookup(); err != nil || lookup.Name() != "yellow" {
		t.Errorf("Lookup() = %v, %v, want yellow", lookup, err)
	}
	s = Settings{Name: "plaid"}
	if err := s.Verify(); !errors.Is(err, ErrUnknown) {
		t.Errorf("Verify() error = %v, want ErrUnknown", err)
	}
}

func TestGradientBand(t *testing.T) {
	tests := []struct {
		count uint32
		bits  uint
		want  uint32
	}{
		{0, 4, 0},
		{1, 4, 1},
		{16, 4, 1},
		{17, 4, 17},
		{40, 4, 33},
		{9, 5, 9},
		{8, 5, 1},
		{9, 8, 9},
		{200, 2, 193},
		{5, 0, 1},
		{5, 12, 5},
	}
	for _, test := range tests {
		if got := GradientBand(test.count, test.bits); got != test.want {
			t.Errorf("GradientBand(%d, %d) = %d, want %d", test.count, test.bits, got, test.want)
		}
	}
}

func TestLookupBandsByGradient(t *testing.T) {
	p := NewPalette(DefaultControls())
	if got, want := p.Lookup(9, 256, 4), p.Lookup(1, 256, 4); got != want {
		t.Errorf("Lookup(9, 256, 4) = %v, want the band start %v", got, want)
	}
	if p.Lookup(9, 256, 8) == p.Lookup(1, 256, 8) {
		t.Error("Lookup(9, 256, 8) equals Lookup(1, 256, 8), want distinct colours")
	}
	if got := p.Lookup(0, 256, 2); got != black {
		t.Errorf("Lookup(0, 256, 2) = %v, want black", got)
	}
}
