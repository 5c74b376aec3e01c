package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fightmetrics/predict-api/internal/logic"
)

// dominanceLog is a log where Alice Ash beats everyone and Cara Cole
// loses to everyone, so every model should favor Alice in a fresh
// matchup.
func dominanceLog() []logic.EnrichedFight {
	return []logic.EnrichedFight{
		enriched("January 1, 2023", "Alice Ash", "Bob Burr", "Alice Ash"),
		enriched("February 1, 2023", "Bob Burr", "Cara Cole", "Bob Burr"),
		enriched("March 1, 2023", "Alice Ash", "Cara Cole", "Alice Ash"),
		enriched("April 1, 2023", "Alice Ash", "Bob Burr", "Alice Ash"),
		enriched("May 1, 2023", "Bob Burr", "Cara Cole", "Bob Burr"),
		enriched("June 1, 2023", "Alice Ash", "Cara Cole", "Alice Ash"),
		enriched("July 1, 2023", "Alice Ash", "Bob Burr", "Alice Ash"),
		enriched("August 1, 2023", "Bob Burr", "Cara Cole", "Bob Burr"),
		enriched("September 1, 2023", "Alice Ash", "Cara Cole", "Alice Ash"),
	}
}

func TestLearnedModelsTrainAndPredict(t *testing.T) {
	fights := dominanceLog()
	profiles := testProfiles()

	for _, m := range []Model{NewLogisticRegression(5), NewBoostedStumps(5), NewBernoulliNB(5)} {
		t.Run(m.Name(), func(t *testing.T) {
			if err := m.Train(fights, profiles); err != nil {
				t.Fatalf("Train failed: %v", err)
			}

			pred := m.Predict(enriched("October 1, 2023", "Alice Ash", "Cara Cole", ""))
			if !pred.OK {
				t.Fatal("Predict returned OK=false for known fighters")
			}
			if pred.Winner != "Alice Ash" {
				t.Errorf("predicted winner = %s, want Alice Ash", pred.Winner)
			}
			if pred.Probability < 0.5 {
				t.Errorf("probability = %v, want >= 0.5", pred.Probability)
			}
		})
	}
}

func TestLearnedModelUnknownFighter(t *testing.T) {
	m := NewLogisticRegression(5)
	if err := m.Train(dominanceLog(), testProfiles()); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	if pred := m.Predict(enriched("October 1, 2023", "Alice Ash", "Zed Zero", "")); pred.OK {
		t.Error("Predict should return OK=false for an unknown fighter")
	}
}

func TestLearnedModelPredictBeforeTrain(t *testing.T) {
	m := NewLogisticRegression(5)
	if pred := m.Predict(enriched("October 1, 2023", "Alice Ash", "Bob Burr", "")); pred.OK {
		t.Error("untrained model must not predict")
	}
}

func TestLearnedModelRetrainDiscardsState(t *testing.T) {
	fights := dominanceLog()
	profiles := testProfiles()

	m := NewLogisticRegression(5)
	if err := m.Train(fights, profiles); err != nil {
		t.Fatalf("first Train failed: %v", err)
	}
	first := m.Predict(enriched("October 1, 2023", "Alice Ash", "Cara Cole", ""))

	if err := m.Train(fights, profiles); err != nil {
		t.Fatalf("second Train failed: %v", err)
	}
	second := m.Predict(enriched("October 1, 2023", "Alice Ash", "Cara Cole", ""))

	if first != second {
		t.Errorf("retraining on identical data changed the prediction: %+v vs %+v", first, second)
	}
}

func TestLearnedModelSnapshotRoundTrip(t *testing.T) {
	fights := dominanceLog()
	profiles := testProfiles()

	m := NewBoostedStumps(5)
	if err := m.Train(fights, profiles); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	before := m.Predict(enriched("October 1, 2023", "Alice Ash", "Bob Burr", ""))

	snap, err := m.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	restored := NewBoostedStumps(5)
	if err := restored.Restore(snap, fights, profiles); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	after := restored.Predict(enriched("October 1, 2023", "Alice Ash", "Bob Burr", ""))

	if before != after {
		t.Errorf("prediction changed across snapshot round trip: %+v vs %+v", before, after)
	}
}

func TestLearnedModelRestoreRejectsColumnMismatch(t *testing.T) {
	fights := dominanceLog()
	profiles := testProfiles()

	m := NewLogisticRegression(5)
	if err := m.Train(fights, profiles); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	snap, err := m.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}

	var decoded learnedSnapshot
	if err := json.Unmarshal(snap, &decoded); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	decoded.Columns[0] = "bogus_column"
	tampered, _ := json.Marshal(decoded)

	restored := NewLogisticRegression(5)
	err = restored.Restore(tampered, fights, profiles)
	if err == nil || !strings.Contains(err.Error(), "bogus_column") {
		t.Errorf("Restore accepted a column mismatch, err = %v", err)
	}
}
