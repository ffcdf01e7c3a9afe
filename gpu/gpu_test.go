package gpu

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"MandelbrotExplorer/mandelbrot"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
)

func TestDefaultKernelCompiles(t *testing.T) {
	if DefaultKernel == "" {
		t.Fatal("escape kernel source is empty")
	}
	spirv, err := naga.Compile(DefaultKernel)
	if err != nil {
		t.Fatalf("failed to compile escape kernel: %v", err)
	}
	if magic := binary.LittleEndian.Uint32(spirv); magic != 0x07230203 {
		t.Errorf("invalid SPIR-V magic: 0x%08X, want 0x07230203", magic)
	}
	if err := ValidateKernel(DefaultKernel); err != nil {
		t.Errorf("ValidateKernel(default) error: %v", err)
	}
}

func TestValidateKernelRejects(t *testing.T) {
	for _, source := range []string{"", "fn main( {"} {
		if err := ValidateKernel(source); !errors.Is(err, ErrKernel) {
			t.Errorf("ValidateKernel(%q) error = %v, want ErrKernel", source, err)
		}
	}
}

func TestNewBackendRejectsBrokenKernel(t *testing.T) {
	_, err := NewBackend(Config{KernelSource: "@compute fn broken("})
	if !errors.Is(err, ErrKernel) {
		t.Errorf("NewBackend() error = %v, want ErrKernel", err)
	}
}

func TestPackFrame(t *testing.T) {
	frame := mandelbrot.Frame{CenterX: -0.75, CenterY: 0.125, Zoom: 4, IterationCap: 255, Width: 640, Height: 480}
	record := packFrame(frame)
	if len(record) != frameRecordSize {
		t.Fatalf("len(packFrame()) = %d, want %d", len(record), frameRecordSize)
	}
	floats := []float64{-0.75, 0.125, 4}
	for i, want := range floats {
		if got := math.Float64frombits(binary.LittleEndian.Uint64(record[8*i:])); got != want {
			t.Errorf("record float %d = %g, want %g", i, got, want)
		}
	}
	uints := []uint32{640, 480, 255, 0, 0, 0}
	for i, want := range uints {
		if got := binary.LittleEndian.Uint32(record[24+4*i:]); got != want {
			t.Errorf("record uint %d = %d, want %d", i, got, want)
		}
	}
}

func TestUnpackCounts(t *testing.T) {
	raw := make([]byte, 12)
	for i, v := range []uint32{7, 0, 4096} {
		binary.LittleEndian.PutUint32(raw[4*i:], v)
	}
	dst := make([]uint32, 3)
	if err := unpackCounts(raw, dst); err != nil {
		t.Fatalf("unpackCounts() error: %v", err)
	}
	if dst[0] != 7 || dst[1] != 0 || dst[2] != 4096 {
		t.Errorf("unpackCounts() = %v, want [7 0 4096]", dst)
	}
	if err := unpackCounts(raw[:8], dst); err == nil {
		t.Error("unpackCounts() with a short buffer returned no error")
	}
}

func TestWorkgroups(t *testing.T) {
	tests := map[int]uint32{1: 1, 8: 1, 9: 2, 1024: 128, 1025: 129}
	for n, want := range tests {
		if got := workgroups(n); got != want {
			t.Errorf("workgroups(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestPreferredAdapter(t *testing.T) {
	adapters := []gputypes.AdapterInfo{
		{Name: "Intel(R) UHD Graphics", Vendor: "Intel"},
		{Name: "NVIDIA GeForce RTX 4090", Vendor: "NVIDIA"},
	}
	tests := []struct {
		preference string
		want       int
	}{
		{"NVIDIA", 1},
		{"nvidia", 1},
		{"geforce", 1},
		{"AMD", 0},
		{"", 0},
	}
	for _, test := range tests {
		if got := preferredAdapter(adapters, test.preference); got != test.want {
			t.Errorf("preferredAdapter(%q) = %d, want %d", test.preference, got, test.want)
		}
	}
	if got := preferredAdapter(nil, "NVIDIA"); got != -1 {
		t.Errorf("preferredAdapter(nil) = %d, want -1", got)
	}
}

func TestSameAdapter(t *testing.T) {
	device := gputypes.AdapterInfo{Name: "NVIDIA GeForce RTX 4090", Vendor: "NVIDIA", VendorID: 0x10de, DeviceID: 0x2684}
	tests := []struct {
		other gputypes.AdapterInfo
		want  bool
	}{
		{device, true},
		{gputypes.AdapterInfo{Name: device.Name, Vendor: device.Vendor, VendorID: device.VendorID, DeviceID: 0x2704}, false},
		{gputypes.AdapterInfo{Name: "Intel(R) UHD Graphics", Vendor: "Intel", VendorID: 0x8086, DeviceID: 0x9bc4}, false},
	}
	for i, test := range tests {
		if got := sameAdapter(device, test.other); got != test.want {
			t.Errorf("sameAdapter() case %d = %v, want %v", i, got, test.want)
		}
	}
}

func TestRequireFloat64(t *testing.T) {
	if err := requireFloat64(0); !errors.Is(err, ErrKernel) {
		t.Errorf("requireFloat64(none) error = %v, want ErrKernel", err)
	}
	var features gputypes.Features
	features.Insert(gputypes.FeatureShaderF16)
	if err := requireFloat64(features); !errors.Is(err, ErrKernel) {
		t.Errorf("requireFloat64(f16 only) error = %v, want ErrKernel", err)
	}
	features.Insert(gputypes.FeatureShaderFloat64)
	if err := requireFloat64(features); err != nil {
		t.Errorf("requireFloat64(f64) error = %v, want nil", err)
	}
}

func TestPackFrameKeepsDoublePrecision(t *testing.T) {
	// Not representable in float32
	frame := mandelbrot.Frame{CenterX: -0.7436438870371587, CenterY: 0.13182590420531198, Zoom: 1e5, IterationCap: 256, Width: 64, Height: 64}
	record := packFrame(frame)
	for i, want := range []float64{frame.CenterX, frame.CenterY, frame.Zoom} {
		if got := math.Float64frombits(binary.LittleEndian.Uint64(record[8*i:])); got != want {
			t.Errorf("record float %d = %.17g, want %.17g", i, got, want)
		}
	}
	if !strings.Contains(DefaultKernel, "center_x: f64") {
		t.Error("default kernel does not read the frame in f64")
	}
}

func TestConfigVerify(t *testing.T) {
	c := Config{}
	c.Verify()
	if c.VendorPreference != "NVIDIA" || !strings.Contains(c.KernelSource, "@compute") {
		t.Errorf("Verify() = %+v, want NVIDIA and the default kernel", c)
	}
}
