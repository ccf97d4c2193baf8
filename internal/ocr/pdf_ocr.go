package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// pdfToOCR rasterizes each page with pdftoppm and reads it with tesseract.
// Every page gets its own timeout; a page that exceeds it is skipped with a
// warning and the text of the other pages is still returned.
func (e *Extractor) pdfToOCR(ctx context.Context, path string, pages int) (text string, done int, conf float32, warnings []string, err error) {
	tmpDir, err := os.MkdirTemp("", "ckz-pp-*")
	if err != nil {
		return "", 0, 0, nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", rmErr)
		}
	}()

	if pages <= 0 {
		return e.ocrAllPages(ctx, path, tmpDir)
	}
	if e.cfg.MaxPages > 0 && pages > e.cfg.MaxPages {
		pages = e.cfg.MaxPages
	}

	var b strings.Builder
	var confs []float32
	for n := 1; n <= pages; n++ {
		if ctx.Err() != nil {
			warnings = append(warnings, "ocr cancelled: "+ctx.Err().Error())
			break
		}
		pageText, c, w, pageErr := e.ocrPage(ctx, path, tmpDir, n)
		warnings = append(warnings, w...)
		if pageErr != nil {
			e.logger.Warn("ocr page skipped", "page", n, "error", pageErr)
			warnings = append(warnings, fmt.Sprintf("page %d: %v", n, pageErr))
			continue
		}
		appendPage(&b, pageText)
		confs = append(confs, c)
		done++
	}
	if done == 0 {
		return "", 0, 0, warnings, errors.New("no page could be read by ocr")
	}
	return b.String(), done, mean(confs), warnings, nil
}

func (e *Extractor) ocrPage(ctx context.Context, path, tmpDir string, n int) (string, float32, []string, error) {
	pageCtx, cancel := context.WithTimeout(ctx, e.cfg.PageTimeout)
	defer cancel()

	prefix := filepath.Join(tmpDir, "page-"+strconv.Itoa(n))
	// pdftoppm -r 300 -png -f n -l n -singlefile <in.pdf> <tmp/page-n>
	_, errb, err := e.runner.Run(pageCtx, e.cfg.Pdftoppm,
		"-r", strconv.Itoa(e.cfg.DPI), "-png", "-f", strconv.Itoa(n), "-l", strconv.Itoa(n), "-singlefile", path, prefix)
	if err != nil {
		return "", 0, stderrWarning(errb), fmt.Errorf("pdftoppm: %w", err)
	}
	img := prefix + ".png"
	var warns []string
	if e.cfg.Preprocess {
		if err := preprocessPage(img); err != nil {
			warns = append(warns, "preprocess: "+err.Error())
		}
	}
	txt, c, w, err := e.tesseractOCR(pageCtx, img)
	warns = append(warns, w...)
	if err != nil {
		return "", 0, warns, err
	}
	return txt, c, warns, nil
}

// ocrAllPages is used when the page count is unknown: one pdftoppm call
// renders everything and the overall context bounds it.
func (e *Extractor) ocrAllPages(ctx context.Context, path, tmpDir string) (string, int, float32, []string, error) {
	prefix := filepath.Join(tmpDir, "page")
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", strconv.Itoa(e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", 0, 0, stderrWarning(errb), fmt.Errorf("pdftoppm: %w", err)
	}
	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Slice(matches, func(i, j int) bool { return pageNumber(matches[i]) < pageNumber(matches[j]) })
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, 0, []string{"pdftoppm produced no images"}, errors.New("no pages rendered")
	}
	var b strings.Builder
	var warns []string
	var confs []float32
	for _, img := range matches {
		pageCtx, cancel := context.WithTimeout(ctx, e.cfg.PageTimeout)
		if e.cfg.Preprocess {
			if err := preprocessPage(img); err != nil {
				warns = append(warns, "preprocess: "+err.Error())
			}
		}
		txt, c, w, err := e.tesseractOCR(pageCtx, img)
		cancel()
		warns = append(warns, w...)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		appendPage(&b, txt)
		confs = append(confs, c)
	}
	return b.String(), len(matches), mean(confs), warns, nil
}

func appendPage(b *strings.Builder, txt string) {
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}
	b.WriteString(txt)
}

// pageNumber reads N from ".../page-N.png" so page 10 sorts after page 9.
func pageNumber(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), ".png")
	i := strings.LastIndex(base, "-")
	n, _ := strconv.Atoi(base[i+1:])
	return n
}

func mean(vs []float32) float32 {
	if len(vs) == 0 {
		return 0
	}
	var sum float32
	for _, v := range vs {
		sum += v
	}
	return sum / float32(len(vs))
}
