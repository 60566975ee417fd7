package transform

import (
	"image"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"film-lut-studio/internal/lut"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// randomImage fills a w×h buffer with deterministic pseudo-random
// pixels, alpha included.
func randomImage(t *testing.T, w, h int, seed int64) *image.RGBA {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(rng.Intn(256))
	}
	return img
}

// warmLattice is an arbitrary non-identity grading cube.
func warmLattice(t *testing.T) *lut.Lattice {
	t.Helper()
	size := 4
	table := make([]float32, 0, 3*size*size*size)
	step := 1.0 / float32(size-1)
	for b := 0; b < size; b++ {
		for g := 0; g < size; g++ {
			for r := 0; r < size; r++ {
				rr := min32(float32(r)*step*1.1, 1)
				gg := float32(g) * step * 0.9
				bb := float32(b) * step * 0.8
				table = append(table, rr, gg, bb)
			}
		}
	}
	lat, err := lut.NewLattice(size, table)
	require.NoError(t, err)
	return lat
}

func min32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// reference computes the expected output pixel-by-pixel with no strip
// or chunk machinery.
func reference(src *image.RGBA, lat *lut.Lattice, intensity float64) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	transformRows(dst, src, lat, intensity, bounds.Min.Y, bounds.Max.Y)
	return dst
}

func TestApplyZeroIntensityIsIdentity(t *testing.T) {
	tr := NewTransformer(testLogger())
	src := randomImage(t, 33, 21, 1)

	out, err := tr.Apply(Request{Source: src, Lattice: warmLattice(t), Intensity: 0})
	require.NoError(t, err)
	assert.Equal(t, src.Pix, out.Pix)
}

func TestApplyFullIntensityMatchesSampler(t *testing.T) {
	tr := NewTransformer(testLogger())
	src := randomImage(t, 17, 11, 2)
	lat := warmLattice(t)

	out, err := tr.Apply(Request{Source: src, Lattice: lat, Intensity: 1})
	require.NoError(t, err)

	for i := 0; i < len(src.Pix); i += 4 {
		mr, mg, mb := lat.Sample(
			float32(src.Pix[i])/255,
			float32(src.Pix[i+1])/255,
			float32(src.Pix[i+2])/255)
		assert.Equal(t, quantize(mr), out.Pix[i])
		assert.Equal(t, quantize(mg), out.Pix[i+1])
		assert.Equal(t, quantize(mb), out.Pix[i+2])
		assert.Equal(t, src.Pix[i+3], out.Pix[i+3], "alpha must pass through")
	}
}

func TestApplyBlendLinearity(t *testing.T) {
	tr := NewTransformer(testLogger())
	src := randomImage(t, 9, 9, 3)
	lat := warmLattice(t)

	for _, intensity := range []float64{0.25, 0.5, 0.8} {
		out, err := tr.Apply(Request{Source: src, Lattice: lat, Intensity: intensity})
		require.NoError(t, err)

		ti := float32(intensity)
		for i := 0; i < len(src.Pix); i += 4 {
			mr, mg, mb := lat.Sample(
				float32(src.Pix[i])/255,
				float32(src.Pix[i+1])/255,
				float32(src.Pix[i+2])/255)
			assert.Equal(t, blend8(src.Pix[i], quantize(mr), ti), out.Pix[i])
			assert.Equal(t, blend8(src.Pix[i+1], quantize(mg), ti), out.Pix[i+1])
			assert.Equal(t, blend8(src.Pix[i+2], quantize(mb), ti), out.Pix[i+2])
			assert.Equal(t, src.Pix[i+3], out.Pix[i+3])
		}
	}
}

func TestApplyIdentityLattice(t *testing.T) {
	tr := NewTransformer(testLogger())
	src := randomImage(t, 25, 19, 4)

	out, err := tr.Apply(Request{Source: src, Lattice: lut.Identity(8), Intensity: 1})
	require.NoError(t, err)

	// Identity cube leaves pixels unchanged up to rounding.
	for i := range src.Pix {
		diff := int(out.Pix[i]) - int(src.Pix[i])
		if diff < 0 {
			diff = -diff
		}
		assert.LessOrEqual(t, diff, 1, "pixel byte %d", i)
	}
}

func TestApplyStripBoundaryEquivalence(t *testing.T) {
	tr := NewTransformer(testLogger())
	lat := warmLattice(t)

	// Heights straddling the strip size must match a non-strided
	// whole-image reference exactly.
	for _, h := range []int{stripRows - 1, stripRows, stripRows + 1} {
		src := randomImage(t, 8, h, int64(h))
		out, err := tr.Apply(Request{Source: src, Lattice: lat, Intensity: 0.7})
		require.NoError(t, err)
		want := reference(src, lat, 0.7)
		assert.Equal(t, want.Pix, out.Pix, "height %d", h)
	}
}

func TestApplyParallelChunksMatchReference(t *testing.T) {
	tr := NewTransformer(testLogger())
	lat := warmLattice(t)

	// Large enough for the 4- and 8-chunk tiers.
	for _, dims := range [][2]int{{200, 80}, {400, 300}} {
		src := randomImage(t, dims[0], dims[1], int64(dims[0]))
		out, err := tr.Apply(Request{Source: src, Lattice: lat, Intensity: 1})
		require.NoError(t, err)
		assert.Equal(t, reference(src, lat, 1).Pix, out.Pix, "%dx%d", dims[0], dims[1])
	}
}

func TestApplyIntensityClamped(t *testing.T) {
	tr := NewTransformer(testLogger())
	src := randomImage(t, 6, 6, 5)
	lat := warmLattice(t)

	under, err := tr.Apply(Request{Source: src, Lattice: lat, Intensity: -3})
	require.NoError(t, err)
	assert.Equal(t, src.Pix, under.Pix)

	over, err := tr.Apply(Request{Source: src, Lattice: lat, Intensity: 7})
	require.NoError(t, err)
	full, err := tr.Apply(Request{Source: src, Lattice: lat, Intensity: 1})
	require.NoError(t, err)
	assert.Equal(t, full.Pix, over.Pix)
}

func TestApplyNilInputs(t *testing.T) {
	tr := NewTransformer(testLogger())

	_, err := tr.Apply(Request{Source: nil, Lattice: lut.Identity(2), Intensity: 1})
	assert.Error(t, err)

	_, err = tr.Apply(Request{Source: randomImage(t, 2, 2, 6), Lattice: nil, Intensity: 1})
	assert.Error(t, err)
}

func TestApplyLowResMatchesFullIntensity(t *testing.T) {
	tr := NewTransformer(testLogger())
	src := randomImage(t, 12, 10, 7)
	lat := warmLattice(t)

	low, err := tr.ApplyLowRes(src, lat)
	require.NoError(t, err)
	full, err := tr.Apply(Request{Source: src, Lattice: lat, Intensity: 1})
	require.NoError(t, err)
	assert.Equal(t, full.Pix, low.Pix)
}

func TestChunkCountTiers(t *testing.T) {
	// Tiers are capped by GOMAXPROCS, so assert upper bounds only.
	assert.Equal(t, 1, chunkCount(100))
	assert.Equal(t, 1, chunkCount(smallStripPixels-1))
	assert.LessOrEqual(t, chunkCount(smallStripPixels), mediumChunks)
	assert.LessOrEqual(t, chunkCount(mediumStripPixels), maxChunks)
	assert.GreaterOrEqual(t, chunkCount(mediumStripPixels), 1)
}

func TestThumbnailBounds(t *testing.T) {
	src := randomImage(t, 400, 200, 8)

	thumb := Thumbnail(src, 100)
	assert.Equal(t, 100, thumb.Bounds().Dx())
	assert.Equal(t, 50, thumb.Bounds().Dy())

	tall := randomImage(t, 100, 300, 9)
	thumb = Thumbnail(tall, 90)
	assert.Equal(t, 30, thumb.Bounds().Dx())
	assert.Equal(t, 90, thumb.Bounds().Dy())

	small := randomImage(t, 20, 10, 10)
	thumb = Thumbnail(small, 100)
	assert.Equal(t, small.Bounds(), thumb.Bounds())
	assert.Equal(t, small.Pix, thumb.Pix)

	// The copy is independent of the source.
	thumb.Pix[0]++
	assert.NotEqual(t, small.Pix[0], thumb.Pix[0])
}
