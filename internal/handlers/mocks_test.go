package handlers

import (
	"context"

	"github.com/fightmetrics/predict-api/internal/models"
	"github.com/fightmetrics/predict-api/internal/pipeline"
)

type mockQueue struct {
	enqueued []models.Fight
	full     bool
}

func (m *mockQueue) Enqueue(f models.Fight) bool {
	if m.full {
		return false
	}
	m.enqueued = append(m.enqueued, f)
	return true
}

func (m *mockQueue) QueueDepth() int { return len(m.enqueued) }

type mockRegistry struct {
	upserted []models.FighterProfile
	err      error
}

func (m *mockRegistry) Upsert(_ context.Context, p models.FighterProfile) error {
	if m.err != nil {
		return m.err
	}
	m.upserted = append(m.upserted, p)
	return nil
}

type mockPrediction struct {
	matchup    *models.MatchupPrediction
	matchupErr error

	leaderboard []models.RatedFighter
	report      *models.EvaluationReport
	reportErr   error

	refreshed  bool
	refreshErr error
	ready      bool
}

func (m *mockPrediction) PredictMatchup(f1, f2, modelName string) (*models.MatchupPrediction, error) {
	if m.matchupErr != nil {
		return nil, m.matchupErr
	}
	return m.matchup, nil
}

func (m *mockPrediction) Leaderboard(_ context.Context, limit int) ([]models.RatedFighter, error) {
	if limit < len(m.leaderboard) {
		return m.leaderboard[:limit], nil
	}
	return m.leaderboard, nil
}

func (m *mockPrediction) LatestReport(_ context.Context) (*models.EvaluationReport, error) {
	if m.reportErr != nil {
		return nil, m.reportErr
	}
	return m.report, nil
}

func (m *mockPrediction) Evaluate(_ context.Context, _ pipeline.Options) (*models.EvaluationReport, error) {
	if m.reportErr != nil {
		return nil, m.reportErr
	}
	return m.report, nil
}

func (m *mockPrediction) Refresh(_ context.Context, _ bool) error {
	if m.refreshErr != nil {
		return m.refreshErr
	}
	m.refreshed = true
	return nil
}

func (m *mockPrediction) Ready() bool { return m.ready }

func (m *mockPrediction) ModelNames() []string {
	return []string{"EloBaseline", "LogisticRegression", "BoostedStumps", "BernoulliNB"}
}
