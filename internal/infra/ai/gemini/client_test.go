package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pashudrishti/pashu-sahayak/internal/domain/analysis"
)

func TestParseValuation(t *testing.T) {
	raw := `Sure, here is the estimate:
{"estimated_market_value_inr": "₹60,000 – ₹85,000", "valuation_factors": ["breed demand", "lactation stage"]}
Let me know if you need anything else.`

	v, err := parseValuation(raw)
	require.NoError(t, err)
	assert.Equal(t, "₹60,000 – ₹85,000", v.EstimatedMarketValueINR)
	assert.Equal(t, []string{"breed demand", "lactation stage"}, v.ValuationFactors)
}

func TestParseValuation_NoObject(t *testing.T) {
	_, err := parseValuation("I cannot value this animal.")
	assert.ErrorIs(t, err, analysis.ErrUpstreamUnavailable)
}

func TestParseValuation_MissingEstimate(t *testing.T) {
	_, err := parseValuation(`{"valuation_factors": ["age"]}`)
	assert.ErrorIs(t, err, analysis.ErrUpstreamUnavailable)
}
