package model

import (
	"encoding/json"
	"fmt"
	"math"
)

const (
	logisticIters = 400
	logisticLR    = 0.15
)

// logistic is a binary logistic regression fitted by gradient descent
// on log-loss. Inputs are standardized with statistics learned at fit
// time; differential features span anything from fractions of a point
// to hundreds of rating points, and a shared learning rate needs them
// on one scale.
type logistic struct {
	Weights []float64 `json:"weights"` // Weights[0] is the bias
	Means   []float64 `json:"means"`
	Stds    []float64 `json:"stds"`
}

func newLogistic() *logistic { return &logistic{} }

func (l *logistic) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("logistic: %d samples, %d labels", len(X), len(y))
	}
	dims := len(X[0])
	l.Means, l.Stds = standardization(X)

	l.Weights = make([]float64, dims+1)
	n := float64(len(X))
	for iter := 0; iter < logisticIters; iter++ {
		for i, row := range X {
			x := l.scale(row)
			p := sigmoid(l.logit(x))
			// gradient of -[y*log(p)+(1-y)*log(1-p)] is (p-y)*x
			g := p - float64(y[i])
			l.Weights[0] -= logisticLR * g / n
			for k, v := range x {
				l.Weights[k+1] -= logisticLR * g * v / n
			}
		}
	}
	return nil
}

func (l *logistic) PredictProba(x []float64) [2]float64 {
	p := sigmoid(l.logit(l.scale(x)))
	return [2]float64{1 - p, p}
}

func (l *logistic) MarshalParams() ([]byte, error) { return json.Marshal(l) }

func (l *logistic) UnmarshalParams(data []byte) error { return json.Unmarshal(data, l) }

func (l *logistic) logit(x []float64) float64 {
	z := l.Weights[0]
	for k, v := range x {
		z += l.Weights[k+1] * v
	}
	return z
}

func (l *logistic) scale(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - l.Means[i]) / l.Stds[i]
	}
	return out
}

// standardization returns per-column mean and standard deviation,
// with zero-variance columns pinned to std 1 so they scale to zero
// instead of dividing by zero.
func standardization(X [][]float64) (means, stds []float64) {
	dims := len(X[0])
	means = make([]float64, dims)
	stds = make([]float64, dims)
	n := float64(len(X))
	for _, row := range X {
		for i, v := range row {
			means[i] += v
		}
	}
	for i := range means {
		means[i] /= n
	}
	for _, row := range X {
		for i, v := range row {
			d := v - means[i]
			stds[i] += d * d
		}
	}
	for i := range stds {
		stds[i] = math.Sqrt(stds[i] / n)
		if stds[i] == 0 {
			stds[i] = 1
		}
	}
	return means, stds
}

func sigmoid(z float64) float64 {
	if z > 20 {
		return 1
	}
	if z < -20 {
		return 0
	}
	return 1 / (1 + math.Exp(-z))
}
