package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"esg-assessment-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// AssessmentRepository stores assessments and their submitted reports.
// Responses and reports are kept as JSONB.
type AssessmentRepository struct {
	pool *pgxpool.Pool
}

func NewAssessmentRepository(pool *pgxpool.Pool) *AssessmentRepository {
	return &AssessmentRepository{pool: pool}
}

func (r *AssessmentRepository) SaveAssessment(ctx context.Context, record domain.AssessmentRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	responses, err := json.Marshal(record.Responses)
	if err != nil {
		return "", fmt.Errorf("marshal responses: %w", err)
	}

	var id string
	err = r.pool.QueryRow(ctx, `
		INSERT INTO assessments (id, owner_id, session_id, catalog_id, industry, responses, progress, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			session_id=EXCLUDED.session_id,
			industry=EXCLUDED.industry,
			responses=EXCLUDED.responses,
			progress=EXCLUDED.progress,
			updated_at=EXCLUDED.updated_at
		RETURNING id`,
		record.ID, record.OwnerID, record.SessionID, record.CatalogID, record.Industry,
		string(responses), record.Progress, record.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("save assessment: %w", err)
	}
	return id, nil
}

func (r *AssessmentRepository) GetAssessment(ctx context.Context, assessmentID string) (domain.AssessmentRecord, error) {
	if _, err := uuid.Parse(assessmentID); err != nil {
		return domain.AssessmentRecord{}, domain.ErrAssessmentNotFound
	}

	var (
		record    domain.AssessmentRecord
		responses []byte
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, session_id, catalog_id, industry, responses, progress, updated_at
		FROM assessments WHERE id=$1`, assessmentID,
	).Scan(&record.ID, &record.OwnerID, &record.SessionID, &record.CatalogID, &record.Industry,
		&responses, &record.Progress, &record.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.AssessmentRecord{}, domain.ErrAssessmentNotFound
	}
	if err != nil {
		return domain.AssessmentRecord{}, fmt.Errorf("load assessment: %w", err)
	}
	if err := json.Unmarshal(responses, &record.Responses); err != nil {
		return domain.AssessmentRecord{}, fmt.Errorf("unmarshal responses: %w", err)
	}
	return record, nil
}

// SaveReport appends a report to the owning assessment's history.
func (r *AssessmentRepository) SaveReport(ctx context.Context, report domain.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO reports (id, assessment_id, owner_id, overall_score, data, generated_at)
		SELECT $1, a.id, a.owner_id, $3, $4::jsonb, $5 FROM assessments a WHERE a.id=$2`,
		uuid.NewString(), report.AssessmentID, report.Score.OverallScore, string(data), report.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAssessmentNotFound
	}
	return nil
}

// ListReports returns an owner's reports, newest first.
func (r *AssessmentRepository) ListReports(ctx context.Context, ownerID string) ([]domain.Report, error) {
	rows, err := r.pool.Query(ctx, `SELECT data FROM reports WHERE owner_id=$1 ORDER BY generated_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []domain.Report
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		var report domain.Report
		if err := json.Unmarshal(raw, &report); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
		out = append(out, report)
	}
	return out, rows.Err()
}
