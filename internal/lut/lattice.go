// Package lut models 3D color lookup tables: the in-memory lattice,
// the text and binary file formats that describe one, and trilinear
// sampling of the color transform it encodes.
package lut

import (
	"errors"
	"fmt"
)

// Parse failure taxonomy. All format decoders report through these so
// callers can treat any of them as "no transform available".
var (
	ErrNoSizeDirective = errors.New("lut: missing or invalid LUT_3D_SIZE directive")
	ErrEmptyLattice    = errors.New("lut: no data lines")
	ErrBadDimensions   = errors.New("lut: table length does not match declared size")
)

// Lattice is a dense N×N×N cube of output colors. Table holds
// 3*N*N*N float32 values; the triple for grid cell (r,g,b) starts at
// ((b*N+g)*N+r)*3, so the red axis varies fastest. A Lattice is
// immutable after construction and safe to share across goroutines.
type Lattice struct {
	Size  int
	Title string
	Table []float32
}

// NewLattice validates the cube dimensions against the table length.
// No lattice is ever returned partially populated.
func NewLattice(size int, table []float32) (*Lattice, error) {
	if size < 2 {
		return nil, fmt.Errorf("%w: size %d", ErrBadDimensions, size)
	}
	if want := 3 * size * size * size; len(table) != want {
		return nil, fmt.Errorf("%w: size %d wants %d values, have %d",
			ErrBadDimensions, size, want, len(table))
	}
	return &Lattice{Size: size, Table: table}, nil
}

// index returns the Table offset of the triple at grid cell (r,g,b).
func (l *Lattice) index(r, g, b int) int {
	return ((b*l.Size+g)*l.Size + r) * 3
}

// Identity returns an N-point lattice that maps every color to itself.
func Identity(size int) *Lattice {
	table := make([]float32, 0, 3*size*size*size)
	step := 1.0 / float32(size-1)
	for b := 0; b < size; b++ {
		for g := 0; g < size; g++ {
			for r := 0; r < size; r++ {
				table = append(table, float32(r)*step, float32(g)*step, float32(b)*step)
			}
		}
	}
	return &Lattice{Size: size, Table: table}
}
