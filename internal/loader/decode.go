// Gradeprep - Tiled Biopsy Dataset Preparation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/gradeprep

package loader

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF
	_ "image/jpeg" // register JPEG
	_ "image/png"  // register PNG
	"io/fs"

	_ "golang.org/x/image/bmp" // register BMP
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP

	"github.com/tomtom215/gradeprep/internal/logging"
)

// decodeTile opens and decodes one tile file and scales it to h x w when
// its size differs.
func decodeTile(fsys fs.FS, imageID, name string, h, w int) (image.Image, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, &MissingAssetError{ImageID: imageID, File: name, Err: err}
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logging.Warn().Err(closeErr).Str("image_id", imageID).Str("file", name).Msg("Error closing tile file")
		}
	}()

	img, _, err := image.Decode(f)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &MissingAssetError{ImageID: imageID, File: name, Err: err}
		}
		return nil, fmt.Errorf("%w: sample %q tile %q: %v", ErrCorruptAsset, imageID, name, err)
	}

	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst, nil
}

// pixelWriter stores the normalized value of channel ch at (y, x).
type pixelWriter func(y, x, ch int, v float32)

// writePixels normalizes img to [0,1] and emits each channel value.
// One channel yields luminance; three yield RGB.
func writePixels(img image.Image, channels int, put pixelWriter) {
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			if channels == 1 {
				g := color.Gray16Model.Convert(c).(color.Gray16)
				put(y, x, 0, float32(g.Y)/0xffff)
				continue
			}
			r, gr, bl, _ := c.RGBA()
			put(y, x, 0, float32(r)/0xffff)
			put(y, x, 1, float32(gr)/0xffff)
			put(y, x, 2, float32(bl)/0xffff)
		}
	}
}
