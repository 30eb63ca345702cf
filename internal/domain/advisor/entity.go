package advisor

// ValuationRequest holds the animal characteristics a farmer supplies for a
// market-value estimate.
type ValuationRequest struct {
	Breed     string  `json:"breed"`
	AgeYears  float64 `json:"age"`
	MilkYield float64 `json:"milkYield"`
	Health    string  `json:"health"`
	Location  string  `json:"location"`
}

// Valuation is the generated estimate. The value is a formatted INR range
// rather than a number; the model explains itself through the factors list.
type Valuation struct {
	EstimatedMarketValueINR string   `json:"estimated_market_value_inr"`
	ValuationFactors        []string `json:"valuation_factors"`
}
