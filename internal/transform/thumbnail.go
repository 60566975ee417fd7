package transform

import (
	"image"

	"golang.org/x/image/draw"
)

// Thumbnail downscales src so its longest side is at most maxDim,
// preserving aspect ratio. Images already within bounds are copied as
// is so callers always own the result.
func Thumbnail(src *image.RGBA, maxDim int) *image.RGBA {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w <= maxDim && h <= maxDim {
		dst := image.NewRGBA(bounds)
		draw.Copy(dst, bounds.Min, src, bounds, draw.Src, nil)
		return dst
	}

	if w >= h {
		h = max(h*maxDim/w, 1)
		w = maxDim
	} else {
		w = max(w*maxDim/h, 1)
		h = maxDim
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return dst
}
