package bankruptcy

import (
	"github.com/joseph-ayodele/credit-report-kz/internal/collateral"
	"github.com/joseph-ayodele/credit-report-kz/internal/common"
)

// Config holds the statutory constants. MRP and the multiplier change yearly.
type Config struct {
	MRPValue               float64
	ThresholdMRPMultiplier float64
	MinOverdueDays         int
	CollateralThresholdKZT float64
	PawnshopKeywords       []string
}

func DefaultConfig() Config {
	return Config{
		MRPValue:               3932,
		ThresholdMRPMultiplier: 1600,
		MinOverdueDays:         365,
		CollateralThresholdKZT: collateral.DefaultThresholdKZT,
		PawnshopKeywords:       collateral.DefaultPawnshopKeywords,
	}
}

// ConfigFrom copies the engine section of the application config.
func ConfigFrom(c common.EngineConfig) Config {
	return Config{
		MRPValue:               c.MRPValue,
		ThresholdMRPMultiplier: c.ThresholdMRPMultiplier,
		MinOverdueDays:         c.MinOverdueDays,
		CollateralThresholdKZT: c.CollateralThresholdKZT,
		PawnshopKeywords:       c.PawnshopKeywords,
	}
}

// Threshold is the debt limit for the extrajudicial procedure.
func (c Config) Threshold() float64 {
	return c.MRPValue * c.ThresholdMRPMultiplier
}

func (c Config) validate() error {
	v := common.NewValidator().
		Field("mrp_value", c.MRPValue, common.Positive).
		Field("threshold_mrp_multiplier", c.ThresholdMRPMultiplier, common.Positive).
		Field("min_overdue_days", c.MinOverdueDays, common.NonNegative).
		Field("collateral_significance_threshold_kzt", c.CollateralThresholdKZT, common.NonNegative)
	return common.ValidateAndReturnError(v, common.CodeConfig)
}
