package store

import (
	"context"
	"fmt"

	"github.com/fightmetrics/predict-api/internal/models"
)

// FighterStore keeps fighter profiles in PostgreSQL. Profiles are the
// mutable side of the data model: physical attributes get corrected
// upstream and the rating column is rewritten after each rating run.
type FighterStore struct {
	pg PgPool
}

func NewFighterStore(pg PgPool) *FighterStore {
	return &FighterStore{pg: pg}
}

func (s *FighterStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pg.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS fighters (
			first_name TEXT NOT NULL,
			last_name  TEXT NOT NULL,
			dob        TEXT NOT NULL DEFAULT '',
			height_cm  TEXT NOT NULL DEFAULT '',
			reach_in   TEXT NOT NULL DEFAULT '',
			stance     TEXT NOT NULL DEFAULT '',
			rating     DOUBLE PRECISION NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (first_name, last_name)
		)
	`)
	if err != nil {
		return fmt.Errorf("create fighters table: %w", err)
	}
	return nil
}

// LoadAll returns every stored profile.
func (s *FighterStore) LoadAll(ctx context.Context) ([]models.FighterProfile, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT first_name, last_name, dob, height_cm, reach_in, stance, rating
		FROM fighters
	`)
	if err != nil {
		return nil, fmt.Errorf("load fighters: %w", err)
	}
	defer rows.Close()

	var profiles []models.FighterProfile
	for rows.Next() {
		var p models.FighterProfile
		if err := rows.Scan(&p.FirstName, &p.LastName, &p.DateOfBirth, &p.Height, &p.Reach, &p.Stance, &p.Rating); err != nil {
			return nil, fmt.Errorf("scan fighter: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Upsert inserts or refreshes one profile. The rating column is left
// alone on conflict; ratings are owned by ApplyRatings.
func (s *FighterStore) Upsert(ctx context.Context, p models.FighterProfile) error {
	_, err := s.pg.Exec(ctx, `
		INSERT INTO fighters (first_name, last_name, dob, height_cm, reach_in, stance)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (first_name, last_name) DO UPDATE SET
			dob = EXCLUDED.dob,
			height_cm = EXCLUDED.height_cm,
			reach_in = EXCLUDED.reach_in,
			stance = EXCLUDED.stance,
			updated_at = now()
	`, p.FirstName, p.LastName, p.DateOfBirth, p.Height, p.Reach, p.Stance)
	if err != nil {
		return fmt.Errorf("upsert fighter %s %s: %w", p.FirstName, p.LastName, err)
	}
	return nil
}

// ApplyRatings writes computed ratings back by full name. Names with
// no profile row are skipped; a rating for an unknown fighter is not
// an error, it just has nowhere to live.
func (s *FighterStore) ApplyRatings(ctx context.Context, ratings map[string]float64) error {
	for name, rating := range ratings {
		_, err := s.pg.Exec(ctx, `
			UPDATE fighters SET rating = $1, updated_at = now()
			WHERE TRIM(first_name || ' ' || last_name) = $2
		`, rating, name)
		if err != nil {
			return fmt.Errorf("apply rating for %s: %w", name, err)
		}
	}
	return nil
}

// TopRated returns the leaderboard, ties broken by name for stable
// output.
func (s *FighterStore) TopRated(ctx context.Context, limit int) ([]models.RatedFighter, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT TRIM(first_name || ' ' || last_name) AS name, rating
		FROM fighters
		WHERE rating > 0
		ORDER BY rating DESC, name ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	defer rows.Close()

	var out []models.RatedFighter
	for rows.Next() {
		var rf models.RatedFighter
		if err := rows.Scan(&rf.Name, &rf.Rating); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		out = append(out, rf)
	}
	return out, rows.Err()
}
