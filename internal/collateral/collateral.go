// Package collateral finds pledged assets in report text and separates
// significant pledges from pawn-shop and low-value ones.
package collateral

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/credit-report-kz/internal/entity"
	"github.com/joseph-ayodele/credit-report-kz/internal/textscan"
)

const DefaultThresholdKZT = 1_000_000

var DefaultPawnshopKeywords = []string{"ломбард", "lombard", "pawnshop", "залог", "заложи", "золото", "ювели"}

// Classifier decides whether a pledge counts toward the procedure choice.
type Classifier struct {
	ThresholdKZT float64
	Keywords     []string
}

func NewClassifier(thresholdKZT float64, keywords []string) Classifier {
	if len(keywords) == 0 {
		keywords = DefaultPawnshopKeywords
	}
	lower := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lower = append(lower, k)
		}
	}
	return Classifier{ThresholdKZT: thresholdKZT, Keywords: lower}
}

// IsPawnshop reports whether the creditor name matches a pawn-shop keyword.
func (c Classifier) IsPawnshop(creditor string) bool {
	name := strings.ToLower(creditor)
	for _, k := range c.Keywords {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

// IsExcluded is true for pawn-shop pledges and pledges under the threshold.
func (c Classifier) IsExcluded(col entity.Collateral) bool {
	return c.IsPawnshop(col.Creditor) || col.MarketValueKZT < c.ThresholdKZT
}

// Partition splits list preserving source order inside each part.
func (c Classifier) Partition(list []entity.Collateral) entity.Collaterals {
	out := entity.Collaterals{
		Significant: []entity.Collateral{},
		Excluded:    []entity.Collateral{},
	}
	for _, col := range list {
		if c.IsExcluded(col) {
			out.Excluded = append(out.Excluded, col)
		} else {
			out.Significant = append(out.Significant, col)
		}
	}
	return out
}

var reObligationMarker = regexp.MustCompile(`(?m)^[ \t]*(?:Обязательство|ОБЯЗАТЕЛЬСТВО|КОНТРАКТ|Контракт|Міндеттеме)\s+№?\s*\d+`)

var (
	kindLabels     = []string{"Вид обеспечения:", "Тип обеспечения:", "Вид залога:", "Кепілдік түрі:"}
	valueLabels    = []string{"Стоимость обеспечения / валюта:", "Стоимость обеспечения/валюта:", "Стоимость обеспечения:", "Рыночная стоимость:", "Кепілдік құны:"}
	creditorLabels = []string{"Кредитор:"}
)

// Extractor scans raw report text for pledge blocks.
type Extractor struct {
	classifier Classifier
	logger     *slog.Logger
}

func NewExtractor(classifier Classifier, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{classifier: classifier, logger: logger}
}

// Extract returns one Collateral per obligation block that names a pledge
// kind, a creditor and a non-zero value. Duplicates are kept.
func (e *Extractor) Extract(text string) []entity.Collateral {
	var out []entity.Collateral
	for _, b := range textscan.Split(text, reObligationMarker) {
		kind := textscan.LabelValue(b.Text, kindLabels...)
		if kind == "" || isNone(kind) {
			continue
		}
		creditor := textscan.LabelValue(b.Text, creditorLabels...)
		if creditor == "" {
			continue
		}
		value := textscan.LabelAmount(b.Text, valueLabels...)
		if value <= 0 {
			e.logger.Debug("collateral block without value dropped", "block", b.Marker, "kind", kind)
			continue
		}
		out = append(out, entity.Collateral{Creditor: creditor, Kind: kind, MarketValueKZT: value})
	}
	return out
}

// ExtractPartitioned runs Extract and classifies the result.
func (e *Extractor) ExtractPartitioned(text string) entity.Collaterals {
	res := e.classifier.Partition(e.Extract(text))
	e.logger.Debug("collaterals extracted", "significant", len(res.Significant), "excluded", len(res.Excluded))
	return res
}

func isNone(kind string) bool {
	k := strings.ToLower(strings.TrimSpace(kind))
	return k == "-" || k == "нет" || k == "без обеспечения" || k == "отсутствует" || k == "жоқ"
}
