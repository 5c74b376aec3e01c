// Package model defines the uniform train/predict contract every
// predictor implements, plus the concrete models: the rating-only
// baseline and the learned classifiers. Models are variants of one
// capability contract; there is no hierarchy beyond the interface.
package model

import (
	"github.com/fightmetrics/predict-api/internal/logic"
	"github.com/fightmetrics/predict-api/internal/models"
)

// Model is the train/predict contract of the evaluation harness.
//
// Train is idempotent: calling it twice retrains from scratch and
// discards all prior state. Predict is deterministic given trained
// state and returns OK=false, not an error, when either fighter is
// unknown to the model. Snapshot/Restore carry the learned state
// across process restarts; Restore receives the same fight log and
// profile table Train would, so inference-time feature construction
// can be rebuilt without refitting.
type Model interface {
	Name() string
	Train(fights []logic.EnrichedFight, profiles *logic.ProfileTable) error
	Predict(fight logic.EnrichedFight) models.Prediction
	Snapshot() ([]byte, error)
	Restore(snapshot []byte, fights []logic.EnrichedFight, profiles *logic.ProfileTable) error
}

// Classifier is the minimal binary-classifier contract wrapped by
// learned models: fit on a feature matrix, then emit
// [P(class0), P(class1)] for a single vector. Implementations must
// be deterministic so accuracy reports are reproducible.
type Classifier interface {
	Fit(X [][]float64, y []int) error
	PredictProba(x []float64) [2]float64
	MarshalParams() ([]byte, error)
	UnmarshalParams(data []byte) error
}

// Roster returns the default model set evaluated by the pipeline.
func Roster(window int) []Model {
	return []Model{
		NewEloBaseline(),
		NewLogisticRegression(window),
		NewBoostedStumps(window),
		NewBernoulliNB(window),
	}
}

// pickWinner applies the shared decision rule: probability is always
// expressed for the predicted winner, so it is at least 0.5; an exact
// tie names the first-listed fighter.
func pickWinner(f1, f2 string, probF1 float64) models.Prediction {
	if probF1 >= 0.5 {
		return models.Prediction{Winner: f1, Probability: probF1, OK: true}
	}
	return models.Prediction{Winner: f2, Probability: 1 - probF1, OK: true}
}
