// Package textscan holds the label and block helpers shared by the report parsers
// and the collateral extractor.
package textscan

import (
	"regexp"
	"strings"
	"time"

	"github.com/joseph-ayodele/credit-report-kz/internal/numparse"
)

// Block is a slice of text introduced by a marker line.
type Block struct {
	Marker string
	Text   string
}

// Split cuts text at every match of marker. Text before the first marker is dropped.
func Split(text string, marker *regexp.Regexp) []Block {
	locs := marker.FindAllStringIndex(text, -1)
	blocks := make([]Block, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		blocks = append(blocks, Block{
			Marker: strings.TrimSpace(text[loc[0]:loc[1]]),
			Text:   text[loc[0]:end],
		})
	}
	return blocks
}

// Section returns the text between the first occurrence of start and the
// earliest following occurrence of any of ends. ok is false when start is absent.
func Section(text, start string, ends ...string) (string, bool) {
	i := strings.Index(text, start)
	if i < 0 {
		return "", false
	}
	body := text[i+len(start):]
	cut := len(body)
	for _, e := range ends {
		if j := strings.Index(body, e); j >= 0 && j < cut {
			cut = j
		}
	}
	return body[:cut], true
}

// LabelValue returns the value printed after the first label found. The value
// is the rest of the label's line, or the next non-empty line when the label
// ends its line.
func LabelValue(text string, labels ...string) string {
	for _, label := range labels {
		i := strings.Index(text, label)
		if i < 0 {
			continue
		}
		rest := text[i+len(label):]
		line, tail, _ := strings.Cut(rest, "\n")
		if v := cleanValue(line); v != "" {
			return v
		}
		for _, next := range strings.Split(tail, "\n") {
			if v := cleanValue(next); v != "" {
				if looksLikeLabel(v) {
					break
				}
				return v
			}
		}
	}
	return ""
}

func cleanValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, ":№ ")
	return strings.TrimSpace(s)
}

// looksLikeLabel is true for lines that start with their own "Label:" prefix.
func looksLikeLabel(s string) bool {
	head, _, found := strings.Cut(s, ":")
	if !found || strings.TrimSpace(head) == "" {
		return false
	}
	return !strings.ContainsAny(head, "0123456789")
}

var reNumberToken = regexp.MustCompile(`\d+(?:[ \x{00A0}]\d{3})*(?:[.,]\d+)*`)

// Amount reads the first number in s through the shared number reader.
func Amount(s string) float64 {
	tok := reNumberToken.FindString(s)
	if tok == "" {
		return 0
	}
	return numparse.Parse(tok)
}

// LabelAmount is Amount applied to LabelValue.
func LabelAmount(text string, labels ...string) float64 {
	for _, label := range labels {
		if v := LabelValue(text, label); v != "" {
			if a := Amount(v); a > 0 {
				return a
			}
		}
	}
	return 0
}

// LabelInt reads an integer count such as overdue days.
func LabelInt(text string, labels ...string) int {
	return int(LabelAmount(text, labels...))
}

// FirstMatch returns the first capture group of the first pattern that matches.
func FirstMatch(text string, patterns ...*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); len(m) > 1 {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// ContainsAny reports whether text contains one of subs.
func ContainsAny(text string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// CountPresent counts how many of subs occur in text.
func CountPresent(text string, subs ...string) int {
	n := 0
	for _, s := range subs {
		if strings.Contains(text, s) {
			n++
		}
	}
	return n
}

var reDate = regexp.MustCompile(`\b(\d{2}[./-]\d{2}[./-]\d{4}|\d{4}-\d{2}-\d{2})\b`)

var dateLayouts = []string{"02.01.2006", "02/01/2006", "02-01-2006", "2006-01-02"}

// Date finds the first date in s and prints it as DD.MM.YYYY. Empty when none parses.
func Date(s string) string {
	for _, m := range reDate.FindAllString(s, -1) {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, m); err == nil {
				return t.Format("02.01.2006")
			}
		}
	}
	return ""
}

// LabelDate is Date applied to LabelValue for the first label that yields one.
func LabelDate(text string, labels ...string) string {
	for _, label := range labels {
		if d := Date(LabelValue(text, label)); d != "" {
			return d
		}
	}
	return ""
}

// StripDates removes every date from s.
func StripDates(s string) string {
	return reDate.ReplaceAllString(s, " ")
}

// Lines splits text into trimmed non-empty lines.
func Lines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
