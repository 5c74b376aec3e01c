package store

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/fightmetrics/predict-api/internal/models"
)

// FightStore reads the append-only fight log from ClickHouse. Writes
// go through the ingest worker pool's batch path, not through here.
type FightStore struct {
	ch driver.Conn
}

func NewFightStore(ch driver.Conn) *FightStore {
	return &FightStore{ch: ch}
}

// EnsureSchema creates the fight log table if needed.
func (s *FightStore) EnsureSchema(ctx context.Context) error {
	if err := s.ch.Exec(ctx, `CREATE DATABASE IF NOT EXISTS fightstats`); err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	err := s.ch.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS fightstats.raw_fights (
			event_name        String,
			event_date        String,
			fighter_1         String,
			fighter_2         String,
			winner            String,
			method            String,
			round             String,
			round_time        String,
			f1_kd             String,
			f1_sig_str_landed String,
			f1_sig_str_att    String,
			f1_td_landed      String,
			f1_td_att         String,
			f1_sub_att        String,
			f1_ctrl           String,
			f2_kd             String,
			f2_sig_str_landed String,
			f2_sig_str_att    String,
			f2_td_landed      String,
			f2_td_att         String,
			f2_sub_att        String,
			f2_ctrl           String,
			ingested_at       DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree(ingested_at)
		ORDER BY (event_name, fighter_1, fighter_2)
	`)
	if err != nil {
		return fmt.Errorf("create raw_fights: %w", err)
	}
	return nil
}

// LoadAll returns every ingested fight. Chronological ordering is
// not attempted here: event dates are source-formatted strings the
// database cannot order; Normalize sorts after parsing.
func (s *FightStore) LoadAll(ctx context.Context) ([]models.Fight, error) {
	rows, err := s.ch.Query(ctx, `
		SELECT
			event_name, event_date, fighter_1, fighter_2, winner, method, round, round_time,
			f1_kd, f1_sig_str_landed, f1_sig_str_att, f1_td_landed, f1_td_att, f1_sub_att, f1_ctrl,
			f2_kd, f2_sig_str_landed, f2_sig_str_att, f2_td_landed, f2_td_att, f2_sub_att, f2_ctrl
		FROM fightstats.raw_fights FINAL
	`)
	if err != nil {
		return nil, fmt.Errorf("load fights: %w", err)
	}
	defer rows.Close()

	var fights []models.Fight
	for rows.Next() {
		var f models.Fight
		if err := rows.Scan(
			&f.EventName, &f.EventDate, &f.Fighter1, &f.Fighter2, &f.Winner, &f.Method, &f.Round, &f.RoundTime,
			&f.F1.Knockdowns, &f.F1.SigStrikesLanded, &f.F1.SigStrikesAttempts,
			&f.F1.TakedownsLanded, &f.F1.TakedownsAttempts, &f.F1.SubAttempts, &f.F1.ControlTime,
			&f.F2.Knockdowns, &f.F2.SigStrikesLanded, &f.F2.SigStrikesAttempts,
			&f.F2.TakedownsLanded, &f.F2.TakedownsAttempts, &f.F2.SubAttempts, &f.F2.ControlTime,
		); err != nil {
			return nil, fmt.Errorf("scan fight: %w", err)
		}
		fights = append(fights, f)
	}
	return fights, rows.Err()
}

// Count returns the number of stored fights, for the ready check.
func (s *FightStore) Count(ctx context.Context) (uint64, error) {
	row := s.ch.QueryRow(ctx, `SELECT count() FROM fightstats.raw_fights`)
	var n uint64
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count fights: %w", err)
	}
	return n, nil
}
