package ocr

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/credit-report-kz/internal/common"
)

// validate opens the file with pdfcpu in relaxed mode and returns its page
// count. Any failure here means the file is not a usable PDF.
func (e *Extractor) validate(path string) (pages int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, common.ExtractionFailed("cannot open file", err)
	}
	defer f.Close()
	defer func() {
		if rec := recover(); rec != nil {
			pages, err = 0, common.ExtractionFailed("pdf is corrupt", fmt.Errorf("pdfcpu panic: %v", rec))
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return 0, common.ExtractionFailed("pdf is unreadable", err)
	}
	if e.cfg.MaxPages > 0 && ctx.PageCount > e.cfg.MaxPages {
		e.logger.Warn("pdf exceeds page limit, ocr will be truncated", "pages", ctx.PageCount, "max_pages", e.cfg.MaxPages)
	}
	return ctx.PageCount, nil
}
