package entity

// Collateral is one pledged asset found in the report.
type Collateral struct {
	Creditor       string  `json:"creditor"`
	Kind           string  `json:"kind"`
	MarketValueKZT float64 `json:"market_value_kzt"`
}

// Collaterals are split into those that matter for the procedure choice and
// pawn-shop or low-value pledges that do not.
type Collaterals struct {
	Significant []Collateral `json:"significant"`
	Excluded    []Collateral `json:"excluded"`
}

// TotalValue sums market values.
func TotalValue(list []Collateral) float64 {
	var sum float64
	for _, x := range list {
		sum += x.MarketValueKZT
	}
	return sum
}
