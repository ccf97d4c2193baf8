package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate   = regexp.MustCompile(`\b\d{2}\.\d{2}\.\d{4}\b`)
	reCurr   = regexp.MustCompile(`(?i)\bkzt\b|тенге|теңге|₸`)
	reAmount = regexp.MustCompile(`\b\d{1,3}(?:[ \x{00A0}]\d{3})+(?:[.,]\d{2})?\b`)
)

func hasDatePattern(s string) bool     { return reDate.MatchString(s) }
func hasCurrencyPattern(s string) bool { return reCurr.MatchString(s) }
func hasAmountPattern(s string) bool   { return reAmount.MatchString(s) }

// heuristicConfidence scores text without a tesseract confidence: each
// credit-report artifact found (dates, tenge, grouped amounts, keywords)
// raises the score.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if hasDatePattern(txtL) {
		score += 0.2
	}
	if hasCurrencyPattern(txtL) {
		score += 0.15
	}
	if hasAmountPattern(txtL) {
		score += 0.15
	}
	for _, k := range DefaultKeywords {
		if strings.Contains(txtL, k) {
			score += 0.1
			break
		}
	}
	if len([]rune(txt)) > 500 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
