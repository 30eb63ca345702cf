package analysis

import (
	"time"
)

// RecordID identifier type for a saved analysis
type RecordID string

// Request carries one user-submitted analysis attempt. It is never persisted
// as such; only the resulting Record is.
type Request struct {
	ImageBytes []byte
	MimeType   string
	Location   string
	Language   string
}

// DetectionCandidate is a single guess from the local vision model.
// Ephemeral: used as a hint for the generator, persisted only alongside a Record.
type DetectionCandidate struct {
	Breed       string    `json:"breed"`
	Confidence  float64   `json:"confidence"`
	BoundingBox []float64 `json:"bounding_box,omitempty"`
}

// SecondaryBreed value object inside the generated report
type SecondaryBreed struct {
	Breed           string  `json:"breed"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// BreedDetection is the breed identification block of a report.
type BreedDetection struct {
	PrimaryBreed    string           `json:"primary_breed"`
	ConfidenceScore float64          `json:"confidence_score"`
	BreedOrigin     string           `json:"breed_origin"`
	BreedFormation  string           `json:"breed_formation"`
	KeyIdentifiers  []string         `json:"key_identifiers"`
	SecondaryBreeds []SecondaryBreed `json:"secondary_breeds,omitempty"`
}

// LocalAdvisory is the husbandry advice block, localized to the caller's
// language and region.
type LocalAdvisory struct {
	Language    string `json:"language"`
	FeedingTip  string `json:"feeding_tip"`
	HousingTip  string `json:"housing_tip"`
	SeasonalTip string `json:"seasonal_tip"`
}

// Report is the authoritative output of the generator, immutable once produced.
// The generator may instead refuse the image entirely; that branch is carried
// as a RejectionError, never as a half-filled Report.
type Report struct {
	BreedDetector BreedDetection `json:"advanced_breed_detector"`
	LocalAdvisor  LocalAdvisory  `json:"hyper_local_advisor"`
}

// Aggregate root: one persisted analysis, owned by a single user.
// Records are write-once; there is no update path.
type Record struct {
	ID         RecordID             `json:"id"`
	OwnerID    string               `json:"owner_id"`
	ImageURL   string               `json:"image"`
	Location   string               `json:"location"`
	Report     Report               `json:"report"`
	Detections []DetectionCandidate `json:"detections,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}
