package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/sunshineplan/imgconv"
	pdf2 "github.com/sunshineplan/pdf"
)

// minOCRWidth is the width below which embedded scans are upscaled before OCR.
const minOCRWidth = 1500

// embeddedImagesOCR pulls the raster images out of the PDF in pure Go and
// runs tesseract over each one. It covers scans when pdftoppm is missing.
func (e *Extractor) embeddedImagesOCR(ctx context.Context, path string) (string, int, float32, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", 0, 0, nil, err
	}
	images, err := decodeEmbedded(data)
	if err != nil {
		return "", 0, 0, nil, fmt.Errorf("embedded images: %w", err)
	}
	if len(images) == 0 {
		return "", 0, 0, nil, errors.New("no embedded images")
	}
	if e.cfg.MaxPages > 0 && len(images) > e.cfg.MaxPages {
		images = images[:e.cfg.MaxPages]
	}

	tmpDir, err := os.MkdirTemp("", "ckz-img-*")
	if err != nil {
		return "", 0, 0, nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", rmErr)
		}
	}()

	var b strings.Builder
	var warns []string
	var confs []float32
	for i, img := range images {
		if ctx.Err() != nil {
			warns = append(warns, "ocr cancelled: "+ctx.Err().Error())
			break
		}
		if bounds := img.Bounds(); bounds.Dx() > 0 && bounds.Dx() < minOCRWidth {
			img = imgconv.Resize(img, &imgconv.ResizeOption{Width: bounds.Dx() * 2, Height: bounds.Dy() * 2})
		}
		file := filepath.Join(tmpDir, fmt.Sprintf("img-%d.png", i+1))
		if err := imaging.Save(img, file); err != nil {
			warns = append(warns, err.Error())
			continue
		}
		if e.cfg.Preprocess {
			if err := preprocessPage(file); err != nil {
				warns = append(warns, "preprocess: "+err.Error())
			}
		}
		pageCtx, cancel := context.WithTimeout(ctx, e.cfg.PageTimeout)
		txt, c, w, err := e.tesseractOCR(pageCtx, file)
		cancel()
		warns = append(warns, w...)
		if err != nil {
			warns = append(warns, fmt.Sprintf("image %d: %v", i+1, err))
			continue
		}
		appendPage(&b, txt)
		confs = append(confs, c)
	}
	if len(confs) == 0 {
		return "", 0, 0, warns, errors.New("no embedded image could be read by ocr")
	}
	return b.String(), len(confs), mean(confs), warns, nil
}

// decodeEmbedded guards against panics inside the pdf decoder on
// malformed streams.
func decodeEmbedded(data []byte) (images []image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf decoder panic: %v", r)
		}
	}()
	return pdf2.DecodeAll(bytes.NewReader(data))
}
