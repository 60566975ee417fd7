package lut

import (
	"fmt"
	"image"
	"image/color"
)

// HALD-CLUT level-8 geometry: a 512×512 image holding a 64³ cube as
// an 8×8 grid of 64×64 tiles. Within a tile x advances red and y
// advances green; the tile index advances blue.
const (
	haldImageDim    = 512
	haldCubeSize    = 64
	haldTilesPerRow = 8
)

// DecodeHald converts a HALD-CLUT identity-layout image into a
// lattice. Only the common 512×512 (64-point) variant is accepted.
func DecodeHald(img image.Image) (*Lattice, error) {
	bounds := img.Bounds()
	if bounds.Dx() != haldImageDim || bounds.Dy() != haldImageDim {
		return nil, fmt.Errorf("%w: hald image is %dx%d, want %dx%d",
			ErrBadDimensions, bounds.Dx(), bounds.Dy(), haldImageDim, haldImageDim)
	}

	table := make([]float32, 0, 3*haldCubeSize*haldCubeSize*haldCubeSize)
	for b := 0; b < haldCubeSize; b++ {
		baseX := bounds.Min.X + (b%haldTilesPerRow)*haldCubeSize
		baseY := bounds.Min.Y + (b/haldTilesPerRow)*haldCubeSize
		for g := 0; g < haldCubeSize; g++ {
			for r := 0; r < haldCubeSize; r++ {
				px := color.NRGBAModel.Convert(img.At(baseX+r, baseY+g)).(color.NRGBA)
				table = append(table,
					float32(px.R)/255,
					float32(px.G)/255,
					float32(px.B)/255)
			}
		}
	}
	return NewLattice(haldCubeSize, table)
}
