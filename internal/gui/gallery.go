package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"film-lut-studio/internal/assets"
	"film-lut-studio/internal/engine"
)

const galleryThumbSize = 72

// Gallery lists the discovered LUT assets with their pre-loaded
// thumbnails. Items whose thumbnail batch has not landed yet show a
// placeholder icon; Refresh repaints the list after each batch
// notification.
type Gallery struct {
	list   *widget.List
	assets []assets.Asset
}

// NewGallery builds the asset list. onSelect fires on the fyne event
// thread when the user picks an asset.
func NewGallery(items []assets.Asset, eng *engine.Engine, onSelect func(assets.Asset)) *Gallery {
	g := &Gallery{assets: items}

	g.list = widget.NewList(
		func() int { return len(g.assets) },
		func() fyne.CanvasObject {
			thumb := canvas.NewImageFromResource(theme.FileImageIcon())
			thumb.FillMode = canvas.ImageFillContain
			thumb.SetMinSize(fyne.NewSize(galleryThumbSize, galleryThumbSize))
			name := widget.NewLabel("asset")
			genre := widget.NewLabel("genre")
			genre.TextStyle = fyne.TextStyle{Italic: true}
			return container.NewBorder(nil, nil, thumb, nil,
				container.NewVBox(name, genre))
		},
		func(id widget.ListItemID, item fyne.CanvasObject) {
			if id >= len(g.assets) {
				return
			}
			asset := g.assets[id]
			// Border containers order the center objects before the edges.
			row := item.(*fyne.Container)
			labels := row.Objects[0].(*fyne.Container)
			thumb := row.Objects[1].(*canvas.Image)
			labels.Objects[0].(*widget.Label).SetText(asset.Name)
			labels.Objects[1].(*widget.Label).SetText(asset.Genre)

			if img, ok := eng.ThumbnailFor(asset.Path); ok {
				thumb.Resource = nil
				thumb.Image = img
			} else {
				thumb.Image = nil
				thumb.Resource = theme.FileImageIcon()
			}
			thumb.Refresh()
		},
	)

	g.list.OnSelected = func(id widget.ListItemID) {
		if id < len(g.assets) {
			onSelect(g.assets[id])
		}
	}

	return g
}

// Refresh repaints the list, picking up newly cached thumbnails.
func (g *Gallery) Refresh() {
	g.list.Refresh()
}

// Object returns the renderable list for layout composition.
func (g *Gallery) Object() fyne.CanvasObject {
	return g.list
}
