package model

import (
	"encoding/json"
	"fmt"

	"github.com/fightmetrics/predict-api/internal/logic"
	"github.com/fightmetrics/predict-api/internal/models"
)

// EloBaseline predicts straight from the rating table: no learned
// parameters, "training" is one chronological rating pass. It is the
// floor every learned model has to beat.
type EloBaseline struct {
	profiles *logic.ProfileTable
}

func NewEloBaseline() *EloBaseline {
	return &EloBaseline{}
}

func (m *EloBaseline) Name() string { return "EloBaseline" }

func (m *EloBaseline) Train(fights []logic.EnrichedFight, profiles *logic.ProfileTable) error {
	if profiles == nil || profiles.Len() == 0 {
		return logic.ErrMissingProfileSource
	}
	m.profiles = profiles.WithRatings(logic.ComputeRatings(fights))
	return nil
}

func (m *EloBaseline) Predict(fight logic.EnrichedFight) models.Prediction {
	if m.profiles == nil {
		return models.Prediction{}
	}
	p1, ok1 := m.profiles.Lookup(fight.Fighter1)
	p2, ok2 := m.profiles.Lookup(fight.Fighter2)
	if !ok1 || !ok2 {
		return models.Prediction{}
	}
	return pickWinner(fight.Fighter1, fight.Fighter2, logic.ExpectedScore(p1.Rating, p2.Rating))
}

type eloSnapshot struct {
	Ratings map[string]float64 `json:"ratings"`
}

func (m *EloBaseline) Snapshot() ([]byte, error) {
	if m.profiles == nil {
		return nil, fmt.Errorf("EloBaseline: snapshot before training")
	}
	ratings := make(map[string]float64, m.profiles.Len())
	for _, rf := range m.profiles.TopRated(m.profiles.Len()) {
		ratings[rf.Name] = rf.Rating
	}
	return json.Marshal(eloSnapshot{Ratings: ratings})
}

func (m *EloBaseline) Restore(snapshot []byte, _ []logic.EnrichedFight, profiles *logic.ProfileTable) error {
	if profiles == nil || profiles.Len() == 0 {
		return logic.ErrMissingProfileSource
	}
	var snap eloSnapshot
	if err := json.Unmarshal(snapshot, &snap); err != nil {
		return fmt.Errorf("EloBaseline: decode snapshot: %w", err)
	}
	m.profiles = profiles.WithRatings(snap.Ratings)
	return nil
}
