package model

import (
	"math/rand"
	"testing"
)

// separableData builds a symmetric, linearly separable set: label 1
// rows lean positive on the first feature, and every row's negation
// appears with the opposite label, mirroring the augmented training
// sets the classifiers actually see.
func separableData(n int) (X [][]float64, y []int) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < n; i++ {
		row := []float64{
			1 + rng.Float64()*2,
			rng.Float64() - 0.5,
			rng.Float64() - 0.5,
		}
		X = append(X, row)
		y = append(y, 1)
		X = append(X, []float64{-row[0], -row[1], -row[2]})
		y = append(y, 0)
	}
	return X, y
}

func classifiers() map[string]func() Classifier {
	return map[string]func() Classifier{
		"logistic":    func() Classifier { return newLogistic() },
		"stumps":      func() Classifier { return newStumps() },
		"bernoulliNB": func() Classifier { return newBernoulliNB() },
	}
}

func TestClassifiersLearnSeparablePattern(t *testing.T) {
	X, y := separableData(60)

	for name, newClf := range classifiers() {
		t.Run(name, func(t *testing.T) {
			clf := newClf()
			if err := clf.Fit(X, y); err != nil {
				t.Fatalf("Fit failed: %v", err)
			}

			pos := clf.PredictProba([]float64{2, 0.1, -0.1})
			if pos[1] <= 0.5 {
				t.Errorf("positive sample: P(1) = %v, want > 0.5", pos[1])
			}
			neg := clf.PredictProba([]float64{-2, -0.1, 0.1})
			if neg[1] >= 0.5 {
				t.Errorf("negative sample: P(1) = %v, want < 0.5", neg[1])
			}
		})
	}
}

func TestClassifiersProbabilitiesSumToOne(t *testing.T) {
	X, y := separableData(30)
	probe := []float64{0.5, -0.2, 0.3}

	for name, newClf := range classifiers() {
		t.Run(name, func(t *testing.T) {
			clf := newClf()
			if err := clf.Fit(X, y); err != nil {
				t.Fatalf("Fit failed: %v", err)
			}
			p := clf.PredictProba(probe)
			if sum := p[0] + p[1]; sum < 0.999 || sum > 1.001 {
				t.Errorf("probabilities sum to %v", sum)
			}
			if p[0] < 0 || p[1] < 0 {
				t.Errorf("negative probability: %v", p)
			}
		})
	}
}

func TestClassifiersDeterministic(t *testing.T) {
	X, y := separableData(30)
	probe := []float64{1.5, 0.2, -0.4}

	for name, newClf := range classifiers() {
		t.Run(name, func(t *testing.T) {
			a, b := newClf(), newClf()
			if err := a.Fit(X, y); err != nil {
				t.Fatalf("Fit failed: %v", err)
			}
			if err := b.Fit(X, y); err != nil {
				t.Fatalf("Fit failed: %v", err)
			}
			if a.PredictProba(probe) != b.PredictProba(probe) {
				t.Error("two fits on identical data disagree")
			}
		})
	}
}

func TestClassifiersParamsRoundTrip(t *testing.T) {
	X, y := separableData(30)
	probe := []float64{1.5, 0.2, -0.4}

	for name, newClf := range classifiers() {
		t.Run(name, func(t *testing.T) {
			clf := newClf()
			if err := clf.Fit(X, y); err != nil {
				t.Fatalf("Fit failed: %v", err)
			}
			params, err := clf.MarshalParams()
			if err != nil {
				t.Fatalf("MarshalParams failed: %v", err)
			}

			restored := newClf()
			if err := restored.UnmarshalParams(params); err != nil {
				t.Fatalf("UnmarshalParams failed: %v", err)
			}
			if clf.PredictProba(probe) != restored.PredictProba(probe) {
				t.Error("restored classifier disagrees with the original")
			}
		})
	}
}

func TestClassifiersRejectEmptyInput(t *testing.T) {
	for name, newClf := range classifiers() {
		t.Run(name, func(t *testing.T) {
			if err := newClf().Fit(nil, nil); err == nil {
				t.Error("Fit accepted an empty training set")
			}
		})
	}
}
