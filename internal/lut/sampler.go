package lut

import "github.com/chewxy/math32"

// Sample evaluates the color transform at the continuous input color
// (r,g,b), each channel in [0,1], by trilinear interpolation of the
// eight surrounding lattice cells. Blending runs along the red axis
// first, then green, then blue.
//
// Inputs must already be clamped to [0,1] by the caller; only the
// derived lattice indices are clamped here, so the top edge of the
// cube never reads out of range.
func (l *Lattice) Sample(r, g, b float32) (float32, float32, float32) {
	n := l.Size
	scale := float32(n - 1)

	pr := r * scale
	pg := g * scale
	pb := b * scale

	r0 := lowerIndex(pr, n)
	g0 := lowerIndex(pg, n)
	b0 := lowerIndex(pb, n)

	fr := pr - float32(r0)
	fg := pg - float32(g0)
	fb := pb - float32(b0)

	// Offsets of the eight corners (r0|r1, g0|g1, b0|b1).
	i000 := l.index(r0, g0, b0)
	i100 := l.index(r0+1, g0, b0)
	i010 := l.index(r0, g0+1, b0)
	i110 := l.index(r0+1, g0+1, b0)
	i001 := l.index(r0, g0, b0+1)
	i101 := l.index(r0+1, g0, b0+1)
	i011 := l.index(r0, g0+1, b0+1)
	i111 := l.index(r0+1, g0+1, b0+1)

	t := l.Table
	var out [3]float32
	for c := 0; c < 3; c++ {
		c00 := lerp(t[i000+c], t[i100+c], fr)
		c10 := lerp(t[i010+c], t[i110+c], fr)
		c01 := lerp(t[i001+c], t[i101+c], fr)
		c11 := lerp(t[i011+c], t[i111+c], fr)

		c0 := lerp(c00, c10, fg)
		c1 := lerp(c01, c11, fg)

		out[c] = lerp(c0, c1, fb)
	}
	return out[0], out[1], out[2]
}

// lowerIndex floors the continuous lattice position and clamps to
// [0, n-2] so index+1 stays valid.
func lowerIndex(pos float32, n int) int {
	i := int(math32.Floor(pos))
	if i < 0 {
		return 0
	}
	if i > n-2 {
		return n - 2
	}
	return i
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
