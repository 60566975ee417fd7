package lut

import (
	"encoding/binary"
	"fmt"
	"math"
)

// msLutMagic opens every .MS-LUT container, padding included.
const msLutMagic = ".MS-LUT "

// msLutHeaderLen covers the twelve little-endian uint32 header fields
// (the first two of which hold the magic bytes).
const msLutHeaderLen = 48

// DecodeMSLUT parses a binary ".MS-LUT" container as shipped in
// vendor filter packs: a fixed header followed by a per-axis ramp
// block and a uint8 color payload, one byte per channel. The header's
// order flag selects the payload's texel ordering: 1 means red varies
// fastest (already canonical), 0 means blue varies fastest, requiring
// an axis transpose. Channel bytes are R,G,B in both layouts; either
// way the returned lattice follows the canonical red-fastest order.
func DecodeMSLUT(data []byte) (*Lattice, error) {
	if len(data) < msLutHeaderLen || string(data[:len(msLutMagic)]) != msLutMagic {
		return nil, fmt.Errorf("%w: missing .MS-LUT magic", ErrNoSizeDirective)
	}

	// Header fields of interest, as uint32 indices into the header:
	// [3] cube size, [6] order flag, [8] axis block offset,
	// [10] payload offset.
	field := func(i int) int {
		return int(binary.LittleEndian.Uint32(data[i*4 : i*4+4]))
	}
	size := field(3)
	orderFlag := field(6)
	axisOffset := field(8)
	dataOffset := field(10)

	if size < 2 {
		return nil, fmt.Errorf("%w: cube size %d", ErrBadDimensions, size)
	}
	if axisEnd := axisOffset + size*4; axisEnd < 0 || axisEnd > len(data) {
		return nil, fmt.Errorf("lut: mslut axis block truncated")
	}
	payloadLen := size * size * size * 3
	if end := dataOffset + payloadLen; dataOffset < 0 || end > len(data) {
		return nil, fmt.Errorf("lut: mslut payload truncated: want %d bytes at offset %d, file has %d",
			payloadLen, dataOffset, len(data))
	}

	payload := data[dataOffset : dataOffset+payloadLen]
	table := make([]float32, payloadLen)
	if orderFlag != 0 {
		for i, v := range payload {
			table[i] = float32(v) / 255
		}
		return NewLattice(size, table)
	}

	// Blue-fastest payload: cell (r,g,b) lives at texel b + g*N + r*N².
	n2 := size * size
	out := 0
	for b := 0; b < size; b++ {
		for g := 0; g < size; g++ {
			for r := 0; r < size; r++ {
				src := (b + g*size + r*n2) * 3
				table[out] = float32(payload[src]) / 255
				table[out+1] = float32(payload[src+1]) / 255
				table[out+2] = float32(payload[src+2]) / 255
				out += 3
			}
		}
	}
	return NewLattice(size, table)
}

// DecodeRawRGBA parses a headerless RGBA8 volume whose texel count is
// a perfect cube. The alpha byte is discarded.
func DecodeRawRGBA(data []byte) (*Lattice, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: raw volume length %d is not RGBA8", ErrBadDimensions, len(data))
	}
	texels := len(data) / 4
	size := int(math.Round(math.Cbrt(float64(texels))))
	if size < 2 || size*size*size != texels {
		return nil, fmt.Errorf("%w: %d texels is not a perfect cube", ErrBadDimensions, texels)
	}

	table := make([]float32, 0, texels*3)
	for i := 0; i < len(data); i += 4 {
		table = append(table,
			float32(data[i])/255,
			float32(data[i+1])/255,
			float32(data[i+2])/255)
	}
	return NewLattice(size, table)
}
