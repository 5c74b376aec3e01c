package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// bernoulliNB is a Bernoulli naive Bayes over sign-binarized
// differentials: feature j becomes "is fighter A ahead on j". With
// Laplace smoothing the fit is a single counting pass.
type bernoulliNB struct {
	LogPrior [2]float64  `json:"log_prior"`
	LogProb  [2][]f2     `json:"log_prob"` // per class, per feature
}

type f2 struct {
	On  float64 `json:"on"`  // log P(x_j > 0 | class)
	Off float64 `json:"off"` // log P(x_j <= 0 | class)
}

func newBernoulliNB() *bernoulliNB { return &bernoulliNB{} }

func (b *bernoulliNB) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("bernoulliNB: %d samples, %d labels", len(X), len(y))
	}
	dims := len(X[0])

	var classCount [2]float64
	var on [2][]float64
	on[0] = make([]float64, dims)
	on[1] = make([]float64, dims)

	for i, row := range X {
		c := y[i]
		classCount[c]++
		for j, v := range row {
			if v > 0 {
				on[c][j]++
			}
		}
	}

	total := classCount[0] + classCount[1]
	for c := 0; c < 2; c++ {
		b.LogPrior[c] = math.Log((classCount[c] + 1) / (total + 2))
		b.LogProb[c] = make([]f2, dims)
		for j := 0; j < dims; j++ {
			p := (on[c][j] + 1) / (classCount[c] + 2)
			b.LogProb[c][j] = f2{On: math.Log(p), Off: math.Log(1 - p)}
		}
	}
	return nil
}

func (b *bernoulliNB) PredictProba(x []float64) [2]float64 {
	var logPost [2]float64
	for c := 0; c < 2; c++ {
		logPost[c] = b.LogPrior[c]
		for j, v := range x {
			if j >= len(b.LogProb[c]) {
				break
			}
			if v > 0 {
				logPost[c] += b.LogProb[c][j].On
			} else {
				logPost[c] += b.LogProb[c][j].Off
			}
		}
	}
	// Normalize in probability space, guarding against underflow.
	m := math.Max(logPost[0], logPost[1])
	p0 := math.Exp(logPost[0] - m)
	p1 := math.Exp(logPost[1] - m)
	return [2]float64{p0 / (p0 + p1), p1 / (p0 + p1)}
}

func (b *bernoulliNB) MarshalParams() ([]byte, error) { return json.Marshal(b) }

func (b *bernoulliNB) UnmarshalParams(data []byte) error { return json.Unmarshal(data, b) }
