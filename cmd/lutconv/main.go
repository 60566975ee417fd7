// lutconv converts vendor LUT assets to Adobe .cube text: .MS-LUT
// binary containers, raw RGBA8 volumes, and HALD-CLUT images.

package main

import (
	"bytes"
	"flag"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"film-lut-studio/internal/lut"
)

func main() {
	in := flag.String("in", "", "Input LUT file (.bin/.MS-LUT container, raw RGBA volume, or HALD png/jpg)")
	out := flag.String("out", "", "Output .cube path (default: input name with .cube extension)")
	title := flag.String("title", "", "TITLE to embed (default: input file name)")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if *in == "" {
		logger.Fatal("missing -in")
	}
	dest := *out
	if dest == "" {
		dest = strings.TrimSuffix(*in, filepath.Ext(*in)) + ".cube"
	}

	lat, err := decode(*in)
	if err != nil {
		logger.WithError(err).Fatal("decode failed")
	}
	if *title != "" {
		lat.Title = *title
	} else {
		lat.Title = strings.TrimSuffix(filepath.Base(*in), filepath.Ext(*in))
	}

	f, err := os.Create(dest)
	if err != nil {
		logger.WithError(err).Fatal("create failed")
	}
	defer f.Close()

	if err := lut.EncodeCube(f, lat); err != nil {
		logger.WithError(err).Fatal("encode failed")
	}

	logger.WithFields(logrus.Fields{
		"input":  *in,
		"output": dest,
		"size":   lat.Size,
	}).Info("converted")
}

func decode(path string) (*lut.Lattice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png", ".jpg", ".jpeg":
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		return lut.DecodeHald(img)
	default:
		if lat, err := lut.DecodeMSLUT(data); err == nil {
			return lat, nil
		}
		return lut.DecodeRawRGBA(data)
	}
}
