package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/pashudrishti/pashu-sahayak/internal/domain/advisor"
	"github.com/pashudrishti/pashu-sahayak/internal/domain/analysis"
)

// Service fronts the two advisory use-cases: market valuation and the
// conversational vet assistant.
type Service struct {
	Valuer    advisor.Valuer
	Assistant advisor.Assistant
}

func NewService(valuer advisor.Valuer, assistant advisor.Assistant) *Service {
	return &Service{Valuer: valuer, Assistant: assistant}
}

// Valuate estimates a fair market value for the described animal.
func (s *Service) Valuate(ctx context.Context, req advisor.ValuationRequest) (*advisor.Valuation, error) {
	if strings.TrimSpace(req.Breed) == "" || strings.TrimSpace(req.Location) == "" {
		return nil, fmt.Errorf("breed and location are required: %w", analysis.ErrInvalidInput)
	}
	return s.Valuer.Valuate(ctx, req)
}

// Ask forwards a free-text question (optionally about a photo) to the
// assistant model.
func (s *Service) Ask(ctx context.Context, message, imageBase64 string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("message is required: %w", analysis.ErrInvalidInput)
	}
	return s.Assistant.Ask(ctx, message, imageBase64)
}
