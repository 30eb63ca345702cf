package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSONObject cuts the first '{' .. last '}' substring out of raw model
// output. Generative models wrap their JSON in commentary often enough that
// parsing the full body directly is not workable.
func ExtractJSONObject(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end < start {
		return "", fmt.Errorf("no JSON object in model output: %w", ErrUpstreamUnavailable)
	}
	return raw[start : end+1], nil
}

// reportPayload is the raw tagged variant as the generator emits it: either
// the two report blocks or a lone "error" key.
type reportPayload struct {
	Error         string          `json:"error"`
	BreedDetector *BreedDetection `json:"advanced_breed_detector"`
	LocalAdvisor  *LocalAdvisory  `json:"hyper_local_advisor"`
}

// ParseReport interprets raw generator output into the Report variant.
// Outcomes: (*Report, nil) on a full report, (nil, *RejectionError) on an
// explicit refusal, or an ErrUpstreamUnavailable-wrapped error when the body
// holds neither.
func ParseReport(raw string) (*Report, error) {
	obj, err := ExtractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var p reportPayload
	if err := json.Unmarshal([]byte(obj), &p); err != nil {
		return nil, fmt.Errorf("malformed report payload: %v: %w", err, ErrUpstreamUnavailable)
	}

	if p.Error != "" {
		return nil, &RejectionError{Reason: p.Error}
	}
	if p.BreedDetector == nil || p.LocalAdvisor == nil {
		return nil, fmt.Errorf("report payload missing required blocks: %w", ErrUpstreamUnavailable)
	}
	if strings.TrimSpace(p.BreedDetector.PrimaryBreed) == "" {
		return nil, fmt.Errorf("report payload missing primary breed: %w", ErrUpstreamUnavailable)
	}

	return &Report{
		BreedDetector: *p.BreedDetector,
		LocalAdvisor:  *p.LocalAdvisor,
	}, nil
}
