package ocr

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var reBoxNoise = regexp.MustCompile(`(?m)^\s*[_\-|]{3,}\s*$`)

func (e *Extractor) tesseractArgs(path string, extra ...string) []string {
	args := []string{path, "stdout", "-l", e.lang()}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return append(args, extra...)
}

// tesseractOCR runs tesseract once in TSV mode. The page text is rebuilt
// from the word rows and the confidence is the mean word conf in 0..1.
func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, float32, []string, error) {
	// tesseract <file> stdout -l rus+kaz tsv
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.tesseractArgs(path, "tsv")...)
	if err != nil {
		return "", 0, stderrWarning(errb), fmt.Errorf("tesseract: %w", err)
	}
	text, conf := parseTSV(string(out))
	// table rulings come out as lines of dashes
	return reBoxNoise.ReplaceAllString(text, ""), conf, nil, nil
}

// parseTSV rebuilds page text from tesseract TSV rows: words on one line are
// joined by a space, or by two when the horizontal gap is wider than the word
// height (a table column break), lines by a newline and paragraphs by a blank line.
func parseTSV(tsv string) (string, float32) {
	var (
		b               strings.Builder
		sum, n          float64
		prevPar, prevLn string
		prevRight       int
	)
	for i, ln := range strings.Split(tsv, "\n") {
		if i == 0 || ln == "" {
			continue
		} // header
		cols := strings.Split(strings.TrimRight(ln, "\r"), "\t")
		if len(cols) < 12 {
			continue
		}
		// conf is the 11th column; text follows it
		if conf := cols[10]; conf != "" && !strings.HasPrefix(conf, "-1") {
			if v, err := strconv.ParseFloat(conf, 64); err == nil {
				sum += v
				n++
			}
		}
		word := strings.TrimSpace(cols[11])
		if cols[0] != "5" || word == "" {
			continue
		}
		left, _ := strconv.Atoi(cols[6])
		width, _ := strconv.Atoi(cols[8])
		height, _ := strconv.Atoi(cols[9])
		par := cols[1] + "/" + cols[2] + "/" + cols[3]
		line := par + "/" + cols[4]
		switch {
		case b.Len() == 0:
		case par != prevPar:
			b.WriteString("\n\n")
		case line != prevLn:
			b.WriteString("\n")
		case height > 0 && left-prevRight > height:
			b.WriteString("  ")
		default:
			b.WriteString(" ")
		}
		b.WriteString(word)
		prevPar, prevLn, prevRight = par, line, left+width
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	if n == 0 {
		return b.String(), 0
	}
	return b.String(), float32(sum / n / 100.0)
}
