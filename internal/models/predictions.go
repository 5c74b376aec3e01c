package models

import "time"

// Model training/reuse statuses reported per model.
const (
	ModelStatusTrained = "retrained"
	ModelStatusLoaded  = "loaded from cache"
)

// Prediction is the outcome of asking a model about a single bout.
// OK is false when the model cannot predict (unknown fighter); that
// is a normal answer, not an error. Probability is always expressed
// for the predicted winner, so it is >= 0.5 by construction.
type Prediction struct {
	Winner      string  `json:"winner,omitempty"`
	Probability float64 `json:"probability,omitempty"`
	OK          bool    `json:"ok"`
}

// PredictionRecord pairs a model's prediction with the actual result
// of an evaluated bout.
type PredictionRecord struct {
	Matchup         string  `json:"fight"`
	EventName       string  `json:"event"`
	PredictedWinner string  `json:"predicted_winner"`
	Probability     float64 `json:"probability"`
	ActualWinner    string  `json:"actual_winner"`
	Correct         bool    `json:"is_correct"`
}

// ModelReport summarizes one model's performance on the holdout.
type ModelReport struct {
	Accuracy       float64            `json:"accuracy"`
	Evaluated      int                `json:"fights_evaluated"`
	Eligible       int                `json:"fights_eligible"`
	Status         string             `json:"model_status"`
	Predictions    []PredictionRecord `json:"predictions"`
}

// EvaluationReport is the full output of one pipeline run.
type EvaluationReport struct {
	RunID       string                 `json:"run_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	LatestEvent string                 `json:"latest_event"`
	TestEvents  []string               `json:"test_events"`
	TrainFights int                    `json:"train_fights"`
	TestFights  int                    `json:"test_fights"`
	Models      map[string]ModelReport `json:"models"`
}

// MatchupPrediction is the response for an ad-hoc matchup query.
type MatchupPrediction struct {
	Fighter1    string  `json:"fighter_1"`
	Fighter2    string  `json:"fighter_2"`
	Model       string  `json:"model"`
	Winner      string  `json:"winner,omitempty"`
	Probability float64 `json:"probability,omitempty"`
	OK          bool    `json:"ok"`
}
