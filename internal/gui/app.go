// Package gui is the fyne presentation layer: a LUT gallery fed by
// the engine's pre-loaded thumbnails, a preview canvas, and an
// intensity slider. All engine work runs off the event thread; engine
// callbacks are marshaled back with fyne.Do.
package gui

import (
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"film-lut-studio/internal/assets"
	"film-lut-studio/internal/engine"
	"film-lut-studio/internal/imgio"
	"film-lut-studio/internal/transform"
)

const referenceThumbDim = 96

// Application wires the engine, loader, and asset catalog into the
// main window.
type Application struct {
	app    fyne.App
	window fyne.Window
	logger *slog.Logger

	engine *engine.Engine
	loader *imgio.Loader
	assets []assets.Asset

	source    *image.RGBA
	refThumb  *image.RGBA
	result    *image.RGBA
	selected  string
	intensity float64

	gallery *Gallery
	preview *canvas.Image
	slider  *widget.Slider
	status  *widget.Label
}

func NewApplication(app fyne.App, logger *slog.Logger, eng *engine.Engine, loader *imgio.Loader, lutDir, imagePath string) *Application {
	window := app.NewWindow("Film LUT Studio")
	window.Resize(fyne.NewSize(1280, 860))
	window.CenterOnScreen()

	a := &Application{
		app:       app,
		window:    window,
		logger:    logger,
		engine:    eng,
		loader:    loader,
		intensity: 1,
	}

	a.initializeState(lutDir, imagePath)
	a.initializeGUI()
	a.setupLayout()
	a.setupCallbacks()

	return a
}

func (a *Application) initializeState(lutDir, imagePath string) {
	found, err := assets.Scan(lutDir)
	if err != nil {
		a.logger.Error("asset scan failed", "dir", lutDir, "error", err)
	}
	a.assets = found
	a.logger.Info("assets discovered", "dir", lutDir, "count", len(found))

	if imagePath == "" {
		return
	}
	src, err := a.loader.LoadRGBA(imagePath)
	if err != nil {
		a.logger.Error("source image load failed", "path", imagePath, "error", err)
		return
	}
	a.source = src

	thumb, err := a.loader.LoadThumbnail(imagePath, referenceThumbDim)
	if err != nil {
		a.logger.Warn("reference thumbnail load failed, scaling in memory",
			"path", imagePath, "error", err)
		thumb = transform.Thumbnail(src, referenceThumbDim)
	}
	a.refThumb = thumb
}

func (a *Application) initializeGUI() {
	a.preview = canvas.NewImageFromImage(a.source)
	a.preview.FillMode = canvas.ImageFillContain

	a.slider = widget.NewSlider(0, 1)
	a.slider.Step = 0.05
	a.slider.Value = 1

	a.status = widget.NewLabel("Pick a look from the gallery")

	a.gallery = NewGallery(a.assets, a.engine, a.onAssetSelected)
}

func (a *Application) setupLayout() {
	controls := container.NewBorder(nil, nil,
		widget.NewLabel("Intensity"),
		widget.NewButton("Export", a.onExport),
		a.slider)

	right := container.NewBorder(controls, a.status, nil, nil, a.preview)
	split := container.NewHSplit(a.gallery.Object(), right)
	split.SetOffset(0.28)

	a.window.SetContent(split)
}

func (a *Application) setupCallbacks() {
	// Batch notifications arrive on worker goroutines.
	a.engine.SetBatchCallback(func(completed []string) {
		a.logger.Debug("thumbnail batch ready", "count", len(completed))
		fyne.Do(func() {
			a.gallery.Refresh()
		})
	})

	a.slider.OnChangeEnded = func(v float64) {
		a.intensity = v
		a.applySelected()
	}
}

// ShowAndRun kicks off pre-loading and enters the fyne event loop.
func (a *Application) ShowAndRun() {
	paths := make([]string, len(a.assets))
	for i, asset := range a.assets {
		paths[i] = asset.Path
	}
	a.engine.WarmCache(paths, a.refThumb)

	a.window.ShowAndRun()
	a.engine.Close()
}

func (a *Application) onAssetSelected(asset assets.Asset) {
	a.selected = asset.Path
	a.status.SetText(fmt.Sprintf("Applying %s…", asset.Name))
	a.applySelected()
}

// applySelected runs the full-resolution transform off the event
// thread and swaps the preview when it lands.
func (a *Application) applySelected() {
	if a.selected == "" || a.source == nil {
		return
	}
	path := a.selected
	intensity := a.intensity

	go func() {
		lat, err := a.engine.LatticeFor(path)
		if err != nil {
			a.showError(fmt.Errorf("no transform available for this look: %w", err))
			return
		}
		out, err := a.engine.ApplyFullRes(a.source, lat, intensity)
		if err != nil {
			a.showError(err)
			return
		}
		fyne.Do(func() {
			a.result = out
			a.preview.Image = out
			a.preview.Refresh()
			a.status.SetText(fmt.Sprintf("Applied %s at %.0f%%", filepath.Base(path), intensity*100))
		})
	}()
}

func (a *Application) onExport() {
	if a.result == nil {
		a.status.SetText("Nothing to export yet")
		return
	}
	result := a.result
	name := exportName(a.selected)

	go func() {
		if err := a.loader.SaveRGBA(name, result); err != nil {
			a.showError(err)
			return
		}
		fyne.Do(func() {
			a.status.SetText("Exported " + name)
		})
	}()
}

func (a *Application) showError(err error) {
	a.logger.Error("ui operation failed", "error", err)
	fyne.Do(func() {
		dialog.ShowError(err, a.window)
		a.status.SetText("Something went wrong")
	})
}

func exportName(lutPath string) string {
	base := strings.TrimSuffix(filepath.Base(lutPath), filepath.Ext(lutPath))
	if base == "" {
		base = "graded"
	}
	return base + "_graded.jpg"
}
