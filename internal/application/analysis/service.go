package analysis

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/pashudrishti/pashu-sahayak/internal/application"
	domain "github.com/pashudrishti/pashu-sahayak/internal/domain/analysis"
)

// Service implements the analysis use-cases. It owns no state of its own;
// every attempt is an independent pass over the injected collaborators, so
// concurrent use is safe.
type Service struct {
	Repo      domain.Repository
	Detector  domain.Detector
	Generator domain.Generator
	Images    domain.ImageStore
	Clock     application.Clock
}

// Run drives one analysis attempt through the fixed stage order:
// detection (advisory) -> report generation (required) -> persistence.
// Exactly one store write happens, and only on full success. Failures map to
// the outcome taxonomy in the domain package and are never retried here;
// generation is too expensive to repeat without the caller asking for it.
func (s *Service) Run(ctx context.Context, ownerID string, req domain.Request) (*domain.Record, error) {
	if len(req.ImageBytes) == 0 {
		return nil, fmt.Errorf("empty image: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Location) == "" {
		return nil, fmt.Errorf("blank location: %w", domain.ErrInvalidInput)
	}

	// Stage 1: local detection. Best effort only; the generator verifies
	// animal presence on its own, so a dead detector degrades to "no hint"
	// instead of aborting the attempt.
	detections, err := s.Detector.Detect(ctx, req.ImageBytes, req.MimeType)
	if err != nil {
		detections = nil
	}
	hint := topCandidate(detections)

	// Stage 2: report generation. Required. A *RejectionError or transport
	// failure from the generator ends the attempt with nothing written.
	report, err := s.Generator.GenerateReport(ctx, domain.GenerateRequest{
		ImageBytes: req.ImageBytes,
		MimeType:   req.MimeType,
		Location:   req.Location,
		Language:   req.Language,
		BreedHint:  hint,
	})
	if err != nil {
		return nil, err
	}

	// Stage 3: persistence. The photo goes to object storage first so the
	// record always points at a stored image; either failure surfaces as
	// persistence failure and the caller decides whether to rerun.
	key := imageKey(ownerID, req.MimeType)
	imageURL, err := s.Images.UploadImage(ctx, req.ImageBytes, req.MimeType, key)
	if err != nil {
		return nil, fmt.Errorf("image upload: %v: %w", err, domain.ErrPersistenceFailed)
	}

	rec := &domain.Record{
		OwnerID:    ownerID,
		ImageURL:   imageURL,
		Location:   strings.TrimSpace(req.Location),
		Report:     *report,
		Detections: detections,
		CreatedAt:  s.Clock.Now(),
	}
	saved, err := s.Repo.Save(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("save record: %v: %w", err, domain.ErrPersistenceFailed)
	}
	return saved, nil
}

// Detect exposes the local model on its own, for the quick-preview endpoint.
// Unlike inside Run, a detector failure here is the caller's problem.
func (s *Service) Detect(ctx context.Context, image []byte, mimeType string) ([]domain.DetectionCandidate, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("empty image: %w", domain.ErrInvalidInput)
	}
	out, err := s.Detector.Detect(ctx, image, mimeType)
	if err != nil {
		return nil, fmt.Errorf("detector: %v: %w", err, domain.ErrUpstreamUnavailable)
	}
	return out, nil
}

// Get fetches one record for its owner. Not-found and not-owned collapse into
// the single not-accessible outcome inside the repository's owner-scoped query.
func (s *Service) Get(ctx context.Context, ownerID string, id domain.RecordID) (*domain.Record, error) {
	return s.Repo.Get(ctx, ownerID, id)
}

// History lists the owner's records, newest first.
func (s *Service) History(ctx context.Context, ownerID string, limit int) ([]*domain.Record, error) {
	return s.Repo.ListByOwner(ctx, ownerID, limit)
}

// topCandidate picks the highest-confidence breed. Candidates normally arrive
// ordered, but the detector contract does not promise it.
func topCandidate(detections []domain.DetectionCandidate) string {
	if len(detections) == 0 {
		return ""
	}
	top := detections[0]
	for _, d := range detections[1:] {
		if d.Confidence > top.Confidence {
			top = d
		}
	}
	return top.Breed
}

func imageKey(ownerID, mimeType string) string {
	ext := ".jpg"
	switch mimeType {
	case "image/png":
		ext = ".png"
	case "image/webp":
		ext = ".webp"
	}
	return path.Join(ownerID, uuid.New().String()+ext)
}
