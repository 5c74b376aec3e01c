package model

import (
	"encoding/json"
	"fmt"

	"github.com/fightmetrics/predict-api/internal/logic"
	"github.com/fightmetrics/predict-api/internal/models"
)

// LearnedModel adapts any Classifier to the Model contract. Training
// runs the full derivation pipeline on the training fights only:
// ratings from a chronological Elo pass, profile table with those
// ratings merged, symmetric differential features, then one Fit. The
// feature builder is retained for inference-time construction on
// unseen matchups.
type LearnedModel struct {
	name    string
	window  int
	newClf  func() Classifier
	clf     Classifier
	builder *logic.FeatureBuilder
}

func NewLearnedModel(name string, window int, newClf func() Classifier) *LearnedModel {
	return &LearnedModel{name: name, window: window, newClf: newClf}
}

func NewLogisticRegression(window int) *LearnedModel {
	return NewLearnedModel("LogisticRegression", window, func() Classifier { return newLogistic() })
}

func NewBoostedStumps(window int) *LearnedModel {
	return NewLearnedModel("BoostedStumps", window, func() Classifier { return newStumps() })
}

func NewBernoulliNB(window int) *LearnedModel {
	return NewLearnedModel("BernoulliNB", window, func() Classifier { return newBernoulliNB() })
}

func (m *LearnedModel) Name() string { return m.name }

func (m *LearnedModel) Train(fights []logic.EnrichedFight, profiles *logic.ProfileTable) error {
	builder, err := m.prepare(fights, profiles)
	if err != nil {
		return err
	}
	set := builder.Dataset(fights)
	if len(set.X) == 0 {
		return fmt.Errorf("%s: no trainable fights in %d records", m.name, len(fights))
	}

	// Fresh classifier every time: retraining discards prior state.
	clf := m.newClf()
	if err := clf.Fit(set.X, set.Y); err != nil {
		return fmt.Errorf("%s: fit: %w", m.name, err)
	}
	m.clf = clf
	m.builder = builder
	return nil
}

func (m *LearnedModel) Predict(fight logic.EnrichedFight) models.Prediction {
	if m.clf == nil || m.builder == nil {
		return models.Prediction{}
	}
	vec, ok := m.builder.Vector(fight)
	if !ok {
		return models.Prediction{}
	}
	proba := m.clf.PredictProba(vec)
	return pickWinner(fight.Fighter1, fight.Fighter2, proba[1])
}

type learnedSnapshot struct {
	Columns []string        `json:"columns"`
	Params  json.RawMessage `json:"params"`
}

func (m *LearnedModel) Snapshot() ([]byte, error) {
	if m.clf == nil {
		return nil, fmt.Errorf("%s: snapshot before training", m.name)
	}
	params, err := m.clf.MarshalParams()
	if err != nil {
		return nil, fmt.Errorf("%s: marshal params: %w", m.name, err)
	}
	return json.Marshal(learnedSnapshot{Columns: models.FeatureColumns, Params: params})
}

func (m *LearnedModel) Restore(snapshot []byte, fights []logic.EnrichedFight, profiles *logic.ProfileTable) error {
	var snap learnedSnapshot
	if err := json.Unmarshal(snapshot, &snap); err != nil {
		return fmt.Errorf("%s: decode snapshot: %w", m.name, err)
	}
	// A snapshot fitted against a different column order would make
	// every prediction silently wrong; refuse it instead.
	if len(snap.Columns) != len(models.FeatureColumns) {
		return fmt.Errorf("%s: snapshot has %d feature columns, want %d", m.name, len(snap.Columns), len(models.FeatureColumns))
	}
	for i, col := range snap.Columns {
		if col != models.FeatureColumns[i] {
			return fmt.Errorf("%s: snapshot column %d is %q, want %q", m.name, i, col, models.FeatureColumns[i])
		}
	}

	builder, err := m.prepare(fights, profiles)
	if err != nil {
		return err
	}
	clf := m.newClf()
	if err := clf.UnmarshalParams(snap.Params); err != nil {
		return fmt.Errorf("%s: restore params: %w", m.name, err)
	}
	m.clf = clf
	m.builder = builder
	return nil
}

func (m *LearnedModel) prepare(fights []logic.EnrichedFight, profiles *logic.ProfileTable) (*logic.FeatureBuilder, error) {
	if profiles == nil || profiles.Len() == 0 {
		return nil, logic.ErrMissingProfileSource
	}
	rated := profiles.WithRatings(logic.ComputeRatings(fights))
	return logic.NewFeatureBuilder(fights, rated, m.window)
}
