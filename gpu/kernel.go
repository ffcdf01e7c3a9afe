package gpu

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"MandelbrotExplorer/mandelbrot"
	"github.com/gogpu/naga"
)

// WorkgroupSize is the edge of the square workgroup declared by the escape kernel.
const WorkgroupSize = 8

// frameRecordSize is the size of the kernel's Frame uniform: three f64 fields, three u32 fields, and padding to a
// multiple of 16 bytes.
const frameRecordSize = 48

var (
	ErrKernel    = errors.New("escape kernel rejected")
	ErrNoAdapter = errors.New("no gpu adapter available")
)

//go:embed shaders/escape.wgsl
var DefaultKernel string

// ValidateKernel compiles source to SPIR-V so a broken kernel is reported before any device work happens.
func ValidateKernel(source string) error {
	if source == "" {
		return fmt.Errorf("%w: empty source", ErrKernel)
	}
	spirv, err := naga.Compile(source)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrKernel, err)
	}
	if len(spirv) < 4 || binary.LittleEndian.Uint32(spirv) != 0x07230203 {
		return fmt.Errorf("%w: compiler produced no SPIR-V module", ErrKernel)
	}
	return nil
}

// packFrame lays out the kernel's input record.
func packFrame(frame mandelbrot.Frame) []byte {
	record := make([]byte, frameRecordSize)
	binary.LittleEndian.PutUint64(record[0:], math.Float64bits(frame.CenterX))
	binary.LittleEndian.PutUint64(record[8:], math.Float64bits(frame.CenterY))
	binary.LittleEndian.PutUint64(record[16:], math.Float64bits(frame.Zoom))
	binary.LittleEndian.PutUint32(record[24:], uint32(frame.Width))
	binary.LittleEndian.PutUint32(record[28:], uint32(frame.Height))
	binary.LittleEndian.PutUint32(record[32:], frame.IterationCap)
	return record
}

func unpackCounts(raw []byte, dst []uint32) error {
	if len(raw) < 4*len(dst) {
		return fmt.Errorf("read back %d bytes, want %d", len(raw), 4*len(dst))
	}
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint32(raw[4*i:])
	}
	return nil
}

// workgroups is the number of workgroups needed to cover n invocations.
func workgroups(n int) uint32 {
	return uint32((n + WorkgroupSize - 1) / WorkgroupSize)
}
