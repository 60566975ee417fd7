// Package transform applies 3D LUT color transforms to RGBA pixel
// buffers. Full-resolution buffers are processed as fixed-height
// horizontal strips so working state stays bounded regardless of
// image height, with each strip split into parallel chunks sized to
// the workload.
package transform

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sync"

	"github.com/chewxy/math32"

	"film-lut-studio/internal/lut"
)

const (
	// stripRows bounds how many rows are in flight at once.
	stripRows = 512

	// Chunk-count tiers by strip pixel count. Tuning values, not
	// correctness: small strips run on one goroutine so dispatch
	// overhead never dominates.
	smallStripPixels  = 10_000
	mediumStripPixels = 100_000
	maxChunks         = 8
	mediumChunks      = 4
)

// Request describes one full-resolution transform. Source is never
// mutated; Intensity is clamped to [0,1], where 0 returns a copy of
// the source and 1 applies the lattice mapping in full.
type Request struct {
	Source    *image.RGBA
	Lattice   *lut.Lattice
	Intensity float64
}

// Transformer applies LUT transforms. It is stateless apart from its
// logger and safe for concurrent use.
type Transformer struct {
	logger *slog.Logger
}

func NewTransformer(logger *slog.Logger) *Transformer {
	return &Transformer{logger: logger}
}

// Apply runs the striped, chunk-parallel transform and returns a
// freshly allocated buffer of identical dimensions. Alpha is copied
// through unchanged. Any chunk failure aborts the whole transform;
// no partial output is returned.
func (t *Transformer) Apply(req Request) (*image.RGBA, error) {
	src := req.Source
	if src == nil {
		return nil, errors.New("transform: nil source buffer")
	}
	if req.Lattice == nil {
		return nil, errors.New("transform: nil lattice")
	}

	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)

	intensity := clamp01(req.Intensity)
	if intensity <= 0 {
		copyRows(dst, src, bounds.Min.Y, bounds.Max.Y)
		return dst, nil
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y += stripRows {
		end := min(y+stripRows, bounds.Max.Y)
		if err := applyStrip(dst, src, req.Lattice, intensity, y, end); err != nil {
			t.logger.Error("transform aborted",
				"strip_start", y, "strip_end", end, "error", err)
			return nil, err
		}
	}

	t.logger.Debug("transform complete",
		"width", bounds.Dx(), "height", bounds.Dy(), "intensity", intensity)
	return dst, nil
}

// ApplyLowRes is the thumbnail path: full intensity, single pass, no
// strip or chunk machinery. Alpha is copied through unchanged.
func (t *Transformer) ApplyLowRes(src *image.RGBA, lat *lut.Lattice) (*image.RGBA, error) {
	if src == nil {
		return nil, errors.New("transform: nil source buffer")
	}
	if lat == nil {
		return nil, errors.New("transform: nil lattice")
	}
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	transformRows(dst, src, lat, 1, bounds.Min.Y, bounds.Max.Y)
	return dst, nil
}

// applyStrip processes rows [y0,y1) with chunk-level parallelism.
// Chunks write disjoint row ranges of dst, so they need no locking;
// the WaitGroup is the per-strip completion barrier. The next strip
// starts only after this one has fully committed.
func applyStrip(dst, src *image.RGBA, lat *lut.Lattice, intensity float64, y0, y1 int) error {
	rows := y1 - y0
	chunks := chunkCount(rows * src.Bounds().Dx())
	if chunks == 1 {
		return runChunk(dst, src, lat, intensity, y0, y1)
	}

	rowsPerChunk := (rows + chunks - 1) / chunks
	errs := make(chan error, chunks)
	var wg sync.WaitGroup
	for start := y0; start < y1; start += rowsPerChunk {
		stop := min(start+rowsPerChunk, y1)
		wg.Add(1)
		go func(start, stop int) {
			defer wg.Done()
			if err := runChunk(dst, src, lat, intensity, start, stop); err != nil {
				errs <- err
			}
		}(start, stop)
	}
	wg.Wait()

	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}

// runChunk wraps the pixel loop so a numeric fault in any chunk
// surfaces as an error instead of tearing down the process.
func runChunk(dst, src *image.RGBA, lat *lut.Lattice, intensity float64, y0, y1 int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transform: chunk rows [%d,%d): %v", y0, y1, r)
		}
	}()
	transformRows(dst, src, lat, intensity, y0, y1)
	return nil
}

// transformRows maps rows [y0,y1) of src into dst. It is a pure
// function of its arguments: no captured state, safe to invoke from
// any number of goroutines on disjoint row ranges.
func transformRows(dst, src *image.RGBA, lat *lut.Lattice, intensity float64, y0, y1 int) {
	bounds := src.Bounds()
	width := bounds.Dx()
	blend := intensity < 1
	t := float32(intensity)

	for y := y0; y < y1; y++ {
		si := src.PixOffset(bounds.Min.X, y)
		di := dst.PixOffset(bounds.Min.X, y)
		for x := 0; x < width; x++ {
			r := src.Pix[si]
			g := src.Pix[si+1]
			b := src.Pix[si+2]
			a := src.Pix[si+3]

			mr, mg, mb := lat.Sample(float32(r)/255, float32(g)/255, float32(b)/255)
			qr := quantize(mr)
			qg := quantize(mg)
			qb := quantize(mb)

			if blend {
				qr = blend8(r, qr, t)
				qg = blend8(g, qg, t)
				qb = blend8(b, qb, t)
			}

			dst.Pix[di] = qr
			dst.Pix[di+1] = qg
			dst.Pix[di+2] = qb
			dst.Pix[di+3] = a

			si += 4
			di += 4
		}
	}
}

// chunkCount picks the parallel width for a strip of the given pixel
// count, capped by available parallelism.
func chunkCount(pixels int) int {
	var n int
	switch {
	case pixels < smallStripPixels:
		n = 1
	case pixels < mediumStripPixels:
		n = mediumChunks
	default:
		n = maxChunks
	}
	if p := runtime.GOMAXPROCS(0); n > p {
		n = p
	}
	return max(n, 1)
}

// quantize maps a normalized channel to 8-bit with round-to-nearest
// and clamping.
func quantize(v float32) uint8 {
	return uint8(math32.Min(math32.Max(math32.Round(v*255), 0), 255))
}

// blend8 mixes the original and mapped 8-bit channels by t. The
// result is a convex combination, so it needs no clamping.
func blend8(orig, mapped uint8, t float32) uint8 {
	return uint8(math32.Round(float32(orig) + t*(float32(mapped)-float32(orig))))
}

// copyRows duplicates rows [y0,y1) of src into dst, tolerating
// differing strides (sub-image sources).
func copyRows(dst, src *image.RGBA, y0, y1 int) {
	bounds := src.Bounds()
	rowLen := bounds.Dx() * 4
	for y := y0; y < y1; y++ {
		si := src.PixOffset(bounds.Min.X, y)
		di := dst.PixOffset(bounds.Min.X, y)
		copy(dst.Pix[di:di+rowLen], src.Pix[si:si+rowLen])
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
