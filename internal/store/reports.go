package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fightmetrics/predict-api/internal/models"
)

// ErrNoReport reports that no evaluation has been stored yet.
var ErrNoReport = errors.New("no evaluation report stored")

// ReportStore archives evaluation reports in PostgreSQL as jsonb so
// the API can serve the latest one without re-running the pipeline.
type ReportStore struct {
	pg PgPool
}

func NewReportStore(pg PgPool) *ReportStore {
	return &ReportStore{pg: pg}
}

func (s *ReportStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pg.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS evaluation_reports (
			run_id       TEXT PRIMARY KEY,
			generated_at TIMESTAMPTZ NOT NULL,
			report       JSONB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create evaluation_reports table: %w", err)
	}
	return nil
}

func (s *ReportStore) Save(ctx context.Context, report *models.EvaluationReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = s.pg.Exec(ctx, `
		INSERT INTO evaluation_reports (run_id, generated_at, report)
		VALUES ($1, $2, $3)
		ON CONFLICT (run_id) DO NOTHING
	`, report.RunID, report.GeneratedAt, payload)
	if err != nil {
		return fmt.Errorf("save report %s: %w", report.RunID, err)
	}
	return nil
}

// Latest returns the most recently generated report, ErrNoReport when
// none exists.
func (s *ReportStore) Latest(ctx context.Context) (*models.EvaluationReport, error) {
	row := s.pg.QueryRow(ctx, `
		SELECT report FROM evaluation_reports
		ORDER BY generated_at DESC
		LIMIT 1
	`)
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoReport
		}
		return nil, fmt.Errorf("load latest report: %w", err)
	}
	var report models.EvaluationReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &report, nil
}
