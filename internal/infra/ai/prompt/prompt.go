package prompt

import (
	"fmt"
	"strings"

	"github.com/pashudrishti/pashu-sahayak/internal/domain/advisor"
)

// Report builds the hybrid-report instruction. The error-variant contract in
// here is load-bearing: the parser on the other side keys off the single
// "error" field for non-cattle images.
func Report(location, language, breedHint string) string {
	hint := "My custom vision model did not provide an initial detection."
	if breedHint != "" {
		hint = fmt.Sprintf("My custom vision model has detected the breed as '%s'. Please verify this.", breedHint)
	}
	if language == "" {
		language = "English"
	}

	var b strings.Builder
	b.WriteString(`You are 'Pashu Sahayak AI', an expert AI for the Indian subcontinent. Your task is to analyze the provided image and generate a report.

CRITICAL INSTRUCTION: First, verify if the image contains cattle, a cow, or a buffalo.
- If it DOES NOT, you MUST return a simple JSON object with only one key: {"error": "Image does not contain cattle."}.
- If it DOES, you MUST generate a full report in a single, valid JSON object with the following top-level keys and nothing else: "advanced_breed_detector" and "hyper_local_advisor".

DETAILED REQUIREMENTS:
- "advanced_breed_detector": MUST contain "primary_breed", "confidence_score", "breed_origin", "breed_formation", an array of strings called "key_identifiers", and an array "secondary_breeds" of {"breed", "confidence_score"} objects.
- "hyper_local_advisor": MUST contain "feeding_tip", "housing_tip", "seasonal_tip", and the "language".

`)
	fmt.Fprintf(&b, "CONTEXT: %s\n", hint)
	fmt.Fprintf(&b, "LOCATION: %s, India\n", location)
	fmt.Fprintf(&b, "LANGUAGE: %s\n", language)
	return b.String()
}

// Valuation builds the market-value instruction.
func Valuation(req advisor.ValuationRequest) string {
	return fmt.Sprintf(`Calculate the fair market value for a livestock animal with these characteristics:
- Breed: %s, Age: %g years, Peak Milk Yield: %g liters/day, Health Condition: %s, Location: %s.
Provide a realistic price range in INR and list the key valuation factors.
The output must be a single, valid JSON object with exactly two keys:
"estimated_market_value_inr" (string) and "valuation_factors" (array of strings).`,
		req.Breed, req.AgeYears, req.MilkYield, req.Health, req.Location)
}

// AssistantSystem is the standing instruction for the conversational model.
const AssistantSystem = `You are an expert AI assistant for farmers in India named "Pashu Mitra AI". Provide helpful, safe, and practical advice on cattle and buffalo care, focusing on breed information, nutrition, and general well-being. If a user asks about a serious health issue, advise them to consult a qualified local veterinarian immediately. Keep answers concise and easy to understand.`
