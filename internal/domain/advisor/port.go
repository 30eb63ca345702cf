package advisor

import "context"

// Valuer port for the market-value model
type Valuer interface {
	Valuate(ctx context.Context, req ValuationRequest) (*Valuation, error)
}

// Assistant port for the conversational vet-assistant model. ImageBase64 is
// optional; when present the model answers about the photo.
type Assistant interface {
	Ask(ctx context.Context, message, imageBase64 string) (string, error)
}
