package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	domain "github.com/pashudrishti/pashu-sahayak/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save inserts one analysis record, assigning id and creation time when unset.
func (r *AnalysisRepository) Save(ctx context.Context, rec *domain.Record) (*domain.Record, error) {
	stored := *rec
	if stored.ID == "" {
		stored.ID = domain.RecordID(uuid.New().String())
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	reportJSON, err := json.Marshal(stored.Report)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	var detectionsJSON any
	if len(stored.Detections) > 0 {
		b, err := json.Marshal(stored.Detections)
		if err != nil {
			return nil, fmt.Errorf("encode detections: %w", err)
		}
		detectionsJSON = b
	}

	const q = `
INSERT INTO analyses (id, owner_id, image_url, location, report_json, detections_json, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);
`
	if _, err := r.db.ExecContext(ctx, q,
		stored.ID, stored.OwnerID, stored.ImageURL, stored.Location,
		reportJSON, detectionsJSON, stored.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *AnalysisRepository) Get(ctx context.Context, ownerID string, id domain.RecordID) (*domain.Record, error) {
	const q = `
SELECT id, owner_id, image_url, location, report_json, detections_json, created_at
FROM analyses
WHERE owner_id=$1 AND id=$2 LIMIT 1;
`
	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, ownerID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotAccessible
	}
	return rec, err
}

func (r *AnalysisRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, owner_id, image_url, location, report_json, detections_json, created_at
FROM analyses
WHERE owner_id=$1 ORDER BY created_at DESC LIMIT $2;
`
	rows, err := r.db.QueryContext(ctx, q, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.Record, error) {
	var (
		rec            domain.Record
		reportJSON     []byte
		detectionsJSON sql.NullString
	)
	if err := row.Scan(
		&rec.ID, &rec.OwnerID, &rec.ImageURL, &rec.Location,
		&reportJSON, &detectionsJSON, &rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(reportJSON, &rec.Report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	if detectionsJSON.Valid && detectionsJSON.String != "" {
		if err := json.Unmarshal([]byte(detectionsJSON.String), &rec.Detections); err != nil {
			return nil, fmt.Errorf("decode detections: %w", err)
		}
	}
	return &rec, nil
}
