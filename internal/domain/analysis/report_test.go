package analysis

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullReportJSON = `{
  "advanced_breed_detector": {
    "primary_breed": "Gir",
    "confidence_score": 0.92,
    "breed_origin": "Gujarat, India",
    "breed_formation": "Indigenous zebu breed",
    "key_identifiers": ["domed forehead", "long pendulous ears"],
    "secondary_breeds": [{"breed": "Sahiwal", "confidence_score": 0.31}]
  },
  "hyper_local_advisor": {
    "language": "English",
    "feeding_tip": "Supplement green fodder with mineral mixture.",
    "housing_tip": "Ensure shaded, ventilated housing.",
    "seasonal_tip": "Increase water access during summer."
  }
}`

func TestParseReport_Full(t *testing.T) {
	rep, err := ParseReport(fullReportJSON)
	require.NoError(t, err)
	assert.Equal(t, "Gir", rep.BreedDetector.PrimaryBreed)
	assert.Equal(t, 0.92, rep.BreedDetector.ConfidenceScore)
	assert.Len(t, rep.BreedDetector.KeyIdentifiers, 2)
	assert.Equal(t, "English", rep.LocalAdvisor.Language)
}

func TestParseReport_ToleratesSurroundingText(t *testing.T) {
	raw := "Here is the JSON you asked for:\n" + fullReportJSON + "\nThanks!"
	rep, err := ParseReport(raw)
	require.NoError(t, err)
	assert.Equal(t, "Gir", rep.BreedDetector.PrimaryBreed)
}

func TestParseReport_ToleratesCodeFences(t *testing.T) {
	raw := "```json\n" + fullReportJSON + "\n```"
	rep, err := ParseReport(raw)
	require.NoError(t, err)
	assert.Equal(t, "Gir", rep.BreedDetector.PrimaryBreed)
}

func TestParseReport_RejectionVariant(t *testing.T) {
	rep, err := ParseReport(`{"error": "Image does not contain cattle."}`)
	assert.Nil(t, rep)

	var rej *RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "Image does not contain cattle.", rej.Reason)
	assert.False(t, errors.Is(err, ErrUpstreamUnavailable))
}

func TestParseReport_NoObject(t *testing.T) {
	_, err := ParseReport("I could not process that image, sorry.")
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestParseReport_InvalidJSON(t *testing.T) {
	_, err := ParseReport(`{"advanced_breed_detector": `)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestParseReport_MissingBlocks(t *testing.T) {
	cases := map[string]string{
		"advisor only":   `{"hyper_local_advisor": {"language": "English"}}`,
		"detector only":  `{"advanced_breed_detector": {"primary_breed": "Gir"}}`,
		"empty breed":    `{"advanced_breed_detector": {"primary_breed": " "}, "hyper_local_advisor": {"language": "English"}}`,
		"unrelated keys": `{"foo": 1}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseReport(raw)
			assert.ErrorIs(t, err, ErrUpstreamUnavailable)
		})
	}
}

func TestExtractJSONObject_PicksOuterBraces(t *testing.T) {
	got, err := ExtractJSONObject(`noise {"a": {"b": 1}} trailing`)
	require.NoError(t, err)
	assert.Equal(t, `{"a": {"b": 1}}`, got)
}
