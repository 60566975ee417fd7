package engine

import (
	"context"
	"image"
	"runtime"
	"sync"
)

// preloadBatchSize caps how many assets one batch works on.
const preloadBatchSize = 4

// WarmCache schedules background pre-loading: for every asset path it
// parses the missing lattice and renders its thumbnail against ref,
// populating both caches. Work proceeds in fixed-size batches with
// one notification per completed batch.
//
// A new call supersedes any in-flight pre-load: the previous
// generation stops scheduling before its next batch, though a batch
// already dispatched runs to completion (its results remain valid and
// still land in the caches). Passing a different ref than the
// previous call invalidates the thumbnail cache; lattices are
// source-independent and survive.
func (e *Engine) WarmCache(paths []string, ref *image.RGBA) {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.generation++
	gen := e.generation
	if ref != e.refThumb {
		e.refThumb = ref
		e.thumbnails.Clear()
	}
	e.mu.Unlock()

	e.logger.Info("pre-load scheduled", "assets", len(paths), "generation", gen)
	go e.preload(ctx, gen, paths, ref)
}

func (e *Engine) preload(ctx context.Context, gen uint64, paths []string, ref *image.RGBA) {
	batchSize := min(preloadBatchSize, runtime.GOMAXPROCS(0))
	batchSize = max(batchSize, 1)

	for start := 0; start < len(paths); start += batchSize {
		if ctx.Err() != nil || e.currentGeneration() != gen {
			e.logger.Debug("pre-load superseded", "generation", gen, "remaining", len(paths)-start)
			return
		}

		batch := paths[start:min(start+batchSize, len(paths))]
		var wg sync.WaitGroup
		for _, path := range batch {
			wg.Add(1)
			go func(path string) {
				defer wg.Done()
				e.preloadOne(path, ref)
			}(path)
		}
		wg.Wait()

		// Stale generations skip the notification; their cache
		// inserts above are still valid.
		if e.currentGeneration() != gen {
			return
		}
		e.mu.Lock()
		notify := e.onBatch
		e.mu.Unlock()
		if notify != nil {
			notify(batch)
		}
	}
	e.logger.Info("pre-load complete", "assets", len(paths), "generation", gen)
}

// preloadOne fills both caches for a single asset. Failures are
// logged and swallowed so one bad asset never aborts its batch, and
// nothing failed is ever cached.
func (e *Engine) preloadOne(path string, ref *image.RGBA) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("pre-load item panicked", "path", path, "panic", r)
		}
	}()

	// The lattice comes first: its cache is smaller than the
	// thumbnail cache, so an evicted lattice can coexist with a
	// still-cached thumbnail and must be re-parsed on re-warm.
	lat, err := e.LatticeFor(path)
	if err != nil {
		e.logger.Warn("pre-load skipping asset", "path", path, "error", err)
		return
	}

	if _, ok := e.thumbnails.Get(path); ok {
		return
	}
	if ref == nil {
		return
	}

	thumb, err := e.transformer.ApplyLowRes(ref, lat)
	if err != nil {
		e.logger.Warn("pre-load thumbnail failed", "path", path, "error", err)
		return
	}
	e.thumbnails.Put(path, thumb)
}

func (e *Engine) currentGeneration() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}
