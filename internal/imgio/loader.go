// Package imgio handles image file loading and saving through OpenCV,
// converting between Mats at the file boundary and the *image.RGBA
// buffers the transform engine works on.
package imgio

import (
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
)

// Loader handles image file operations.
type Loader struct {
	logger *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	return &Loader{logger: logger}
}

var supportedExtensions = []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp"}

func isSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range supportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// LoadRGBA reads the image at path into a freshly allocated RGBA
// buffer.
func (l *Loader) LoadRGBA(path string) (*image.RGBA, error) {
	l.logger.Debug("loading image", "path", path)

	if !isSupportedFormat(path) {
		return nil, fmt.Errorf("imgio: unsupported image format: %s", path)
	}

	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		return nil, fmt.Errorf("imgio: failed to load image: %s", path)
	}
	defer mat.Close()

	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("imgio: converting %s: %w", path, err)
	}

	rgba := toRGBA(img)
	l.logger.Info("image loaded",
		"path", path,
		"width", rgba.Bounds().Dx(),
		"height", rgba.Bounds().Dy())
	return rgba, nil
}

// LoadThumbnail reads the image at path downscaled so its longest
// side is at most maxDim, for use as the pre-load reference
// thumbnail.
func (l *Loader) LoadThumbnail(path string, maxDim int) (*image.RGBA, error) {
	if !isSupportedFormat(path) {
		return nil, fmt.Errorf("imgio: unsupported image format: %s", path)
	}

	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		return nil, fmt.Errorf("imgio: failed to load image: %s", path)
	}
	defer mat.Close()

	w, h := mat.Cols(), mat.Rows()
	if w > maxDim || h > maxDim {
		if w >= h {
			h = max(h*maxDim/w, 1)
			w = maxDim
		} else {
			w = max(w*maxDim/h, 1)
			h = maxDim
		}
		scaled := gocv.NewMat()
		defer scaled.Close()
		if err := gocv.Resize(mat, &scaled, image.Pt(w, h), 0, 0, gocv.InterpolationArea); err != nil {
			return nil, fmt.Errorf("imgio: resizing %s: %w", path, err)
		}
		img, err := scaled.ToImage()
		if err != nil {
			return nil, fmt.Errorf("imgio: converting %s: %w", path, err)
		}
		return toRGBA(img), nil
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("imgio: converting %s: %w", path, err)
	}
	return toRGBA(img), nil
}

// SaveRGBA writes the buffer to path, format selected by extension.
func (l *Loader) SaveRGBA(path string, img *image.RGBA) error {
	l.logger.Debug("saving image", "path", path)

	if !isSupportedFormat(path) {
		return fmt.Errorf("imgio: unsupported image format: %s", path)
	}
	if img == nil || img.Bounds().Empty() {
		return fmt.Errorf("imgio: cannot save empty image")
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return fmt.Errorf("imgio: converting for save: %w", err)
	}
	defer mat.Close()

	// ImageToMatRGB leaves channels in RGB order; IMWrite expects BGR.
	bgr := gocv.NewMat()
	defer bgr.Close()
	if err := gocv.CvtColor(mat, &bgr, gocv.ColorBGRToRGB); err != nil {
		return fmt.Errorf("imgio: converting for save: %w", err)
	}

	if ok := gocv.IMWrite(path, bgr); !ok {
		return fmt.Errorf("imgio: failed to save image: %s", path)
	}

	l.logger.Info("image saved",
		"path", path,
		"width", img.Bounds().Dx(),
		"height", img.Bounds().Dy())
	return nil
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Src)
	return dst
}
