// Package engine coordinates LUT parsing, color transforms, and the
// bounded caches that feed the presentation layer. All expensive work
// runs on worker goroutines; only cache publication happens under a
// lock, so the UI-facing surface never blocks on parsing or
// transforming.
package engine

import (
	"bytes"
	"context"
	"image"
	"log/slog"
	"sync"

	"film-lut-studio/internal/cache"
	"film-lut-studio/internal/lut"
	"film-lut-studio/internal/transform"
)

// Cache capacities. Lattices are small and source-independent;
// thumbnails are larger and tied to the current reference image.
const (
	latticeCacheCap   = 20
	thumbnailCacheCap = 50
)

// Engine owns the lattice and thumbnail caches and the transformer.
// Construct with New; instances are safe for concurrent use.
type Engine struct {
	logger      *slog.Logger
	transformer *transform.Transformer

	lattices   *cache.Cache[string, *lut.Lattice]
	thumbnails *cache.Cache[string, *image.RGBA]

	mu         sync.Mutex // guards the pre-load fields below
	cancel     context.CancelFunc
	generation uint64
	refThumb   *image.RGBA
	onBatch    func(completed []string)
}

func New(logger *slog.Logger) *Engine {
	return &Engine{
		logger:      logger,
		transformer: transform.NewTransformer(logger),
		lattices:    cache.New[string, *lut.Lattice](latticeCacheCap),
		thumbnails:  cache.New[string, *image.RGBA](thumbnailCacheCap),
	}
}

// ParseLut parses raw .cube text into a lattice without touching the
// caches.
func (e *Engine) ParseLut(data []byte) (*lut.Lattice, error) {
	return lut.ParseCube(bytes.NewReader(data))
}

// LatticeFor returns the lattice for the asset at path, parsing and
// caching it on first use. Parsing happens outside the cache lock;
// racing parses for one path converge on the first published
// instance. Failed parses never populate the cache.
func (e *Engine) LatticeFor(path string) (*lut.Lattice, error) {
	if lat, ok := e.lattices.Get(path); ok {
		return lat, nil
	}

	lat, err := lut.ParseCubeFile(path)
	if err != nil {
		e.logger.Warn("lut parse failed", "path", path, "error", err)
		return nil, err
	}

	published, existed := e.lattices.GetOrPut(path, lat)
	if existed {
		e.logger.Debug("lut parse race lost, reusing cached lattice", "path", path)
	} else {
		e.logger.Debug("lut cached", "path", path, "size", lat.Size, "title", lat.Title)
	}
	return published, nil
}

// ApplyFullRes is the export path: striped, chunk-parallel transform
// at the given blend intensity.
func (e *Engine) ApplyFullRes(src *image.RGBA, lat *lut.Lattice, intensity float64) (*image.RGBA, error) {
	return e.transformer.Apply(transform.Request{
		Source:    src,
		Lattice:   lat,
		Intensity: intensity,
	})
}

// ApplyLowRes is the thumbnail path: single pass at full intensity.
func (e *Engine) ApplyLowRes(src *image.RGBA, lat *lut.Lattice) (*image.RGBA, error) {
	return e.transformer.ApplyLowRes(src, lat)
}

// ThumbnailFor returns the pre-computed thumbnail for path, if the
// pre-loader has produced one.
func (e *Engine) ThumbnailFor(path string) (*image.RGBA, bool) {
	return e.thumbnails.Get(path)
}

// SetBatchCallback registers the notification invoked once per
// completed pre-load batch with the asset paths that batch covered.
// The callback runs on a worker goroutine; presentation layers must
// marshal to their own thread.
func (e *Engine) SetBatchCallback(fn func(completed []string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onBatch = fn
}

// InvalidateAll drops both caches and stops any in-flight pre-load.
func (e *Engine) InvalidateAll() {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.generation++
	e.refThumb = nil
	e.mu.Unlock()

	e.lattices.Clear()
	e.thumbnails.Clear()
	e.logger.Info("caches invalidated")
}

// Close releases background work. The engine must not be used after
// Close.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.generation++
}
