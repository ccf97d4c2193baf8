package ocr

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LayoutParams tune how glyph runs are assembled into lines. Margins are
// fractions of the font size.
type LayoutParams struct {
	Name       string
	CharMargin float64 // horizontal gap above which a column break is emitted
	LineMargin float64 // vertical distance within which glyphs share a line
	WordMargin float64 // horizontal gap above which a space is emitted
	BoxesFlow  float64 // in [-1, 1]; higher values keep more lines in one paragraph
}

// LayoutPresets are tried in order. The first suits the bureau's tabular
// reports; the others are the denser, looser and minimal retries.
var LayoutPresets = []LayoutParams{
	{Name: "tuned", CharMargin: 2.0, LineMargin: 0.3, WordMargin: 0.1, BoxesFlow: 0.5},
	{Name: "denser", CharMargin: 1.0, LineMargin: 0.2, WordMargin: 0.05, BoxesFlow: 0.5},
	{Name: "looser", CharMargin: 3.0, LineMargin: 0.5, WordMargin: 0.2, BoxesFlow: 0.8},
	{Name: "minimal", CharMargin: 0.5, LineMargin: 0.1, WordMargin: 0.1, BoxesFlow: 0},
}

// layoutExtract reads every page of the PDF through ledongthuc/pdf and lays
// out its glyph runs with p. The file is closed before returning.
func layoutExtract(path string, p LayoutParams) (text string, pages int, err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	defer func() {
		// malformed content streams make the reader panic
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("layout extraction panicked: %v", rec)
		}
	}()

	var b strings.Builder
	pages = r.NumPage()
	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText := layoutText(page.Content().Text, p)
		if pageText == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(pageText)
	}
	return b.String(), pages, nil
}

// layoutText orders glyph runs top to bottom and left to right. Gaps wider
// than the char margin become a two-space column separator.
func layoutText(texts []pdf.Text, p LayoutParams) string {
	runs := make([]pdf.Text, 0, len(texts))
	for _, t := range texts {
		if t.S != "" {
			runs = append(runs, t)
		}
	}
	if len(runs) == 0 {
		return ""
	}
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Y != runs[j].Y {
			return runs[i].Y > runs[j].Y
		}
		return runs[i].X < runs[j].X
	})

	type line struct {
		y    float64
		size float64
		runs []pdf.Text
	}
	var lines []line
	for _, t := range runs {
		size := fontSize(t)
		if n := len(lines); n > 0 && math.Abs(lines[n-1].y-t.Y) <= p.LineMargin*size {
			lines[n-1].runs = append(lines[n-1].runs, t)
			continue
		}
		lines = append(lines, line{y: t.Y, size: size, runs: []pdf.Text{t}})
	}

	var b strings.Builder
	for i, ln := range lines {
		if i > 0 {
			b.WriteString("\n")
			if gap := lines[i-1].y - ln.y; gap > (2-p.BoxesFlow)*ln.size {
				b.WriteString("\n")
			}
		}
		sort.SliceStable(ln.runs, func(a, c int) bool { return ln.runs[a].X < ln.runs[c].X })
		var row strings.Builder
		end := ln.runs[0].X
		for j, t := range ln.runs {
			if j > 0 {
				gap := t.X - end
				size := fontSize(t)
				switch {
				case gap > p.CharMargin*size:
					row.WriteString("  ")
				case gap > p.WordMargin*size && !strings.HasSuffix(row.String(), " ") && !strings.HasPrefix(t.S, " "):
					row.WriteString(" ")
				}
			}
			row.WriteString(t.S)
			end = math.Max(end, t.X+t.W)
		}
		b.WriteString(strings.TrimRight(row.String(), " "))
	}
	return b.String()
}

func fontSize(t pdf.Text) float64 {
	if t.FontSize > 0 {
		return t.FontSize
	}
	return 10
}
