package analysis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/pashudrishti/pashu-sahayak/internal/domain/analysis"
)

// ---- collaborator fakes ----

type fakeDetector struct {
	calls      int
	candidates []domain.DetectionCandidate
	err        error
}

func (f *fakeDetector) Detect(_ context.Context, _ []byte, _ string) ([]domain.DetectionCandidate, error) {
	f.calls++
	return f.candidates, f.err
}

type fakeGenerator struct {
	calls   int
	gotHint string
	gotLang string
	report  *domain.Report
	err     error
}

func (f *fakeGenerator) GenerateReport(_ context.Context, req domain.GenerateRequest) (*domain.Report, error) {
	f.calls++
	f.gotHint = req.BreedHint
	f.gotLang = req.Language
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

type fakeRepo struct {
	saves  int
	nextID int
	err    error
	last   *domain.Record
}

func (f *fakeRepo) Save(_ context.Context, rec *domain.Record) (*domain.Record, error) {
	f.saves++
	if f.err != nil {
		return nil, f.err
	}
	stored := *rec
	f.nextID++
	if f.nextID == 1 {
		stored.ID = "abc123"
	} else {
		stored.ID = domain.RecordID(fmt.Sprintf("abc123-%d", f.nextID))
	}
	f.last = &stored
	return &stored, nil
}

func (f *fakeRepo) Get(_ context.Context, _ string, _ domain.RecordID) (*domain.Record, error) {
	return nil, domain.ErrNotAccessible
}

func (f *fakeRepo) ListByOwner(_ context.Context, _ string, _ int) ([]*domain.Record, error) {
	return nil, nil
}

type fakeImages struct {
	calls int
	err   error
}

func (f *fakeImages) UploadImage(_ context.Context, _ []byte, _, key string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "http://minio.local/analyses/" + key, nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// ---- harness ----

func girReport() *domain.Report {
	return &domain.Report{
		BreedDetector: domain.BreedDetection{
			PrimaryBreed:    "Gir",
			ConfidenceScore: 0.92,
			BreedOrigin:     "Gujarat, India",
			BreedFormation:  "Indigenous zebu breed",
			KeyIdentifiers:  []string{"domed forehead"},
		},
		LocalAdvisor: domain.LocalAdvisory{
			Language:    "English",
			FeedingTip:  "feed",
			HousingTip:  "house",
			SeasonalTip: "season",
		},
	}
}

func newService(det *fakeDetector, gen *fakeGenerator, repo *fakeRepo, img *fakeImages) *Service {
	return &Service{
		Repo:      repo,
		Detector:  det,
		Generator: gen,
		Images:    img,
		Clock:     fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}
}

func validRequest() domain.Request {
	return domain.Request{
		ImageBytes: []byte("jpeg-bytes"),
		MimeType:   "image/jpeg",
		Location:   "Anand, Gujarat",
		Language:   "English",
	}
}

// ---- contract tests ----

func TestRun_InvalidInputMakesNoExternalCalls(t *testing.T) {
	cases := map[string]domain.Request{
		"empty image":    {ImageBytes: nil, MimeType: "image/jpeg", Location: "Anand, Gujarat"},
		"blank location": {ImageBytes: []byte("x"), MimeType: "image/jpeg", Location: "   "},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			det := &fakeDetector{}
			gen := &fakeGenerator{report: girReport()}
			repo := &fakeRepo{}
			img := &fakeImages{}

			_, err := newService(det, gen, repo, img).Run(context.Background(), "user-1", req)

			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Zero(t, det.calls)
			assert.Zero(t, gen.calls)
			assert.Zero(t, img.calls)
			assert.Zero(t, repo.saves)
		})
	}
}

func TestRun_DetectorEmptyDegradesToNoHint(t *testing.T) {
	det := &fakeDetector{candidates: nil}
	gen := &fakeGenerator{report: girReport()}
	repo := &fakeRepo{}

	rec, err := newService(det, gen, repo, &fakeImages{}).Run(context.Background(), "user-1", validRequest())

	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
	assert.Empty(t, gen.gotHint)
	assert.Empty(t, rec.Detections)
}

func TestRun_DetectorFailureDegradesToNoHint(t *testing.T) {
	det := &fakeDetector{err: errors.New("connection refused")}
	gen := &fakeGenerator{report: girReport()}
	repo := &fakeRepo{}

	rec, err := newService(det, gen, repo, &fakeImages{}).Run(context.Background(), "user-1", validRequest())

	require.NoError(t, err)
	assert.Equal(t, 1, det.calls)
	assert.Equal(t, 1, gen.calls)
	assert.Empty(t, gen.gotHint)
	assert.Empty(t, rec.Detections)
}

func TestRun_HighestConfidenceCandidateWins(t *testing.T) {
	det := &fakeDetector{candidates: []domain.DetectionCandidate{
		{Breed: "Gir", Confidence: 0.8},
		{Breed: "Sahiwal", Confidence: 0.6},
	}}
	gen := &fakeGenerator{report: girReport()}

	_, err := newService(det, gen, &fakeRepo{}, &fakeImages{}).Run(context.Background(), "user-1", validRequest())

	require.NoError(t, err)
	assert.Equal(t, "Gir", gen.gotHint)
}

func TestRun_HintPicksTopEvenWhenUnordered(t *testing.T) {
	det := &fakeDetector{candidates: []domain.DetectionCandidate{
		{Breed: "Sahiwal", Confidence: 0.6},
		{Breed: "Gir", Confidence: 0.8},
	}}
	gen := &fakeGenerator{report: girReport()}

	_, err := newService(det, gen, &fakeRepo{}, &fakeImages{}).Run(context.Background(), "user-1", validRequest())

	require.NoError(t, err)
	assert.Equal(t, "Gir", gen.gotHint)
}

func TestRun_RejectionWritesNothing(t *testing.T) {
	gen := &fakeGenerator{err: &domain.RejectionError{Reason: "Image does not contain cattle."}}
	repo := &fakeRepo{}
	img := &fakeImages{}

	_, err := newService(&fakeDetector{}, gen, repo, img).Run(context.Background(), "user-1", validRequest())

	var rej *domain.RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "Image does not contain cattle.", rej.Reason)
	assert.Zero(t, img.calls)
	assert.Zero(t, repo.saves)
}

func TestRun_GeneratorTransportFailure(t *testing.T) {
	gen := &fakeGenerator{err: fmt.Errorf("gemini timeout: %w", domain.ErrUpstreamUnavailable)}
	repo := &fakeRepo{}

	_, err := newService(&fakeDetector{}, gen, repo, &fakeImages{}).Run(context.Background(), "user-1", validRequest())

	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Zero(t, repo.saves)
}

func TestRun_StoreFailureIsPersistenceFailedWithSingleAttempt(t *testing.T) {
	repo := &fakeRepo{err: errors.New("deadlock")}
	gen := &fakeGenerator{report: girReport()}

	_, err := newService(&fakeDetector{}, gen, repo, &fakeImages{}).Run(context.Background(), "user-1", validRequest())

	assert.ErrorIs(t, err, domain.ErrPersistenceFailed)
	assert.Equal(t, 1, repo.saves)
	assert.Equal(t, 1, gen.calls)
}

func TestRun_ImageUploadFailureIsPersistenceFailed(t *testing.T) {
	img := &fakeImages{err: errors.New("bucket gone")}
	repo := &fakeRepo{}
	gen := &fakeGenerator{report: girReport()}

	_, err := newService(&fakeDetector{}, gen, repo, img).Run(context.Background(), "user-1", validRequest())

	assert.ErrorIs(t, err, domain.ErrPersistenceFailed)
	assert.Zero(t, repo.saves)
}

func TestRun_EndToEnd(t *testing.T) {
	det := &fakeDetector{candidates: []domain.DetectionCandidate{{Breed: "Gir", Confidence: 0.91}}}
	gen := &fakeGenerator{report: girReport()}
	repo := &fakeRepo{}
	img := &fakeImages{}

	rec, err := newService(det, gen, repo, img).Run(context.Background(), "user-1", validRequest())

	require.NoError(t, err)
	assert.Equal(t, domain.RecordID("abc123"), rec.ID)
	assert.Equal(t, "user-1", rec.OwnerID)
	assert.Equal(t, "Gir", rec.Report.BreedDetector.PrimaryBreed)
	assert.Equal(t, "Anand, Gujarat", rec.Location)
	assert.Equal(t, "English", gen.gotLang)
	assert.Contains(t, rec.ImageURL, "http://minio.local/analyses/user-1/")
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Len(t, rec.Detections, 1)
}

func TestRun_RepeatedRunsAreIndependent(t *testing.T) {
	det := &fakeDetector{candidates: []domain.DetectionCandidate{{Breed: "Gir", Confidence: 0.91}}}
	gen := &fakeGenerator{report: girReport()}
	repo := &fakeRepo{}
	svc := newService(det, gen, repo, &fakeImages{})

	first, err := svc.Run(context.Background(), "user-1", validRequest())
	require.NoError(t, err)
	second, err := svc.Run(context.Background(), "user-1", validRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, repo.saves)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestDetect_EmptyImageRejected(t *testing.T) {
	det := &fakeDetector{}
	svc := newService(det, &fakeGenerator{}, &fakeRepo{}, &fakeImages{})

	_, err := svc.Detect(context.Background(), nil, "image/jpeg")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, det.calls)
}

func TestDetect_SurfacesDetectorFailure(t *testing.T) {
	det := &fakeDetector{err: errors.New("boom")}
	svc := newService(det, &fakeGenerator{}, &fakeRepo{}, &fakeImages{})

	_, err := svc.Detect(context.Background(), []byte("x"), "image/jpeg")

	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}
