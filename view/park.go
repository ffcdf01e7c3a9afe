package view

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var encoders = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(
			nil,
			zstd.WithEncoderConcurrency(1),
			zstd.WithEncoderLevel(zstd.SpeedFastest),
			zstd.WithLowerEncoderMem(true),
		)
		if err != nil {
			panic(err)
		}
		return enc
	},
}

var decoders = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(
			nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(true),
		)
		if err != nil {
			panic(err)
		}
		return dec
	},
}

// packPixels compresses a buffer of escape counts. Neighbouring pixels mostly share counts, so frames shrink well.
func packPixels(pixels []uint32) []byte {
	raw := make([]byte, 0, 4*len(pixels))
	for _, p := range pixels {
		raw = binary.LittleEndian.AppendUint32(raw, p)
	}

	enc := encoders.Get().(*zstd.Encoder)
	out := enc.EncodeAll(raw, nil)
	encoders.Put(enc)
	return out
}

func unpackPixels(data []byte, count int) ([]uint32, error) {
	dec := decoders.Get().(*zstd.Decoder)
	raw, err := dec.DecodeAll(data, make([]byte, 0, 4*count))
	decoders.Put(dec)
	if err != nil {
		return nil, fmt.Errorf("unable to unpack pixels - %w", err)
	}
	if len(raw) != 4*count {
		return nil, fmt.Errorf("unable to unpack pixels - got %d bytes, want %d", len(raw), 4*count)
	}

	pixels := make([]uint32, count)
	for i := range pixels {
		pixels[i] = binary.LittleEndian.Uint32(raw[4*i:])
	}
	return pixels, nil
}
