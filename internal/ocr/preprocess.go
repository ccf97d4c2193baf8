package ocr

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// preprocessPage rewrites a rendered page in place so tesseract sees
// darker glyphs on a flat background.
func preprocessPage(path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, 20)
	out = imaging.Sharpen(out, 1.0)
	return imaging.Save(out, path)
}
