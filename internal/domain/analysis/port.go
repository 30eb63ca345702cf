package analysis

import "context"

// Repository port (interface for persistence). Save assigns the record id and
// creation timestamp when unset and returns the stored record.
type Repository interface {
	Save(ctx context.Context, rec *Record) (*Record, error)
	Get(ctx context.Context, ownerID string, id RecordID) (*Record, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*Record, error)
}

// Detector port for the local vision model. An empty slice is a valid answer;
// it means the model saw nothing it recognizes.
type Detector interface {
	Detect(ctx context.Context, image []byte, mimeType string) ([]DetectionCandidate, error)
}

// GenerateRequest is the generator input. BreedHint is empty when local
// detection produced nothing.
type GenerateRequest struct {
	ImageBytes []byte
	MimeType   string
	Location   string
	Language   string
	BreedHint  string
}

// Generator port for the generative report model. A semantic refusal comes
// back as *RejectionError so callers must handle both branches explicitly.
type Generator interface {
	GenerateReport(ctx context.Context, req GenerateRequest) (*Report, error)
}

// ImageStore port for photo persistence; returns the stored object URL.
type ImageStore interface {
	UploadImage(ctx context.Context, data []byte, contentType, key string) (string, error)
}
