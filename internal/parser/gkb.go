package parser

import (
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/credit-report-kz/constants"
	"github.com/joseph-ayodele/credit-report-kz/internal/entity"
	"github.com/joseph-ayodele/credit-report-kz/internal/textscan"
)

var gkbMarkers = []string{
	"Государственное кредитное бюро",
	"Персональный кредитный отчет",
	"Номер договора:",
	"Дата начала срока действия контракта:",
	"Обязательство 1",
}

// reserveThreshold is the block count below which GKB segmentation by
// obligation label is distrusted.
const reserveThreshold = 10

// GKBParser reads reports of the state credit bureau. It is the only dialect
// with reliable contract numbers and debt origin dates.
type GKBParser struct {
	logger *slog.Logger
}

func NewGKBParser(logger *slog.Logger) *GKBParser {
	return &GKBParser{logger: logger}
}

func (p *GKBParser) Name() string { return "gkb" }

func (p *GKBParser) Recognizes(text string) bool {
	if textscan.ContainsAny(text, headingPKBFull, labelTotals) {
		return false
	}
	return textscan.CountPresent(text, gkbMarkers...) >= 3
}

func (p *GKBParser) Extract(text string) *entity.NormalizedReport {
	r := newReport(text, constants.DialectGKB, "russian")
	section := activeSection(text, headingActiveDetailed)

	blocks := textscan.Split(section, reObligationRU)
	reserve := false
	if len(blocks) < reserveThreshold {
		if alt := textscan.Split(section, reCreditorLine); len(alt) >= len(blocks) && len(alt) > 0 {
			p.logger.Debug("gkb reserve segmentation", "primary_blocks", len(blocks), "reserve_blocks", len(alt))
			blocks = alt
			reserve = true
		}
	}

	seen := make(map[string]struct{}, len(blocks))
	for _, b := range blocks {
		f := readContract(b.Text, russianLabels)
		debt := firstNonZero(f.Unpaid, f.Upcoming, f.ContractSum, f.OverdueAmount)
		if reserve {
			if f.ContractNumber == "" && debt == 0 {
				continue
			}
			key := strings.ToLower(f.Creditor) + "|" + f.ContractNumber
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		r.Obligations = append(r.Obligations, f.obligation(debt, constants.StatusActive))
	}
	r.ParseQuality = gradeBlocks(r)
	p.logger.Debug("gkb extracted", "obligations", len(r.Obligations), "reserve", reserve, "quality", r.ParseQuality)
	return r
}
