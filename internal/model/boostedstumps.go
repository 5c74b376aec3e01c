package model

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

const (
	stumpRounds     = 100
	stumpShrinkage  = 0.1
	stumpThresholds = 16
)

// stump is a depth-1 regression tree on one feature.
type stump struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      float64 `json:"left"`  // value when x <= threshold
	Right     float64 `json:"right"` // value when x > threshold
}

// stumps is gradient boosting of decision stumps on logistic loss.
// Each round fits a stump to the current residuals and takes a
// Newton step per leaf. Thresholds come from feature quantiles; there
// is no sampling anywhere, so fitting is fully deterministic.
type stumps struct {
	Prior float64 `json:"prior"`
	Trees []stump `json:"trees"`
}

func newStumps() *stumps { return &stumps{} }

func (s *stumps) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("stumps: %d samples, %d labels", len(X), len(y))
	}
	n := len(X)
	dims := len(X[0])

	pos := 0
	for _, v := range y {
		pos += v
	}
	// Log-odds prior; the augmented training set is balanced, so this
	// is normally zero.
	s.Prior = math.Log(float64(pos)+1) - math.Log(float64(n-pos)+1)
	s.Trees = nil

	candidates := make([][]float64, dims)
	for j := 0; j < dims; j++ {
		candidates[j] = quantileThresholds(X, j, stumpThresholds)
	}

	score := make([]float64, n)
	for i := range score {
		score[i] = s.Prior
	}

	grad := make([]float64, n)
	hess := make([]float64, n)
	for round := 0; round < stumpRounds; round++ {
		for i := range X {
			p := sigmoid(score[i])
			grad[i] = float64(y[i]) - p
			hess[i] = p * (1 - p)
		}

		best, ok := bestStump(X, grad, hess, candidates)
		if !ok {
			break
		}
		best.Left *= stumpShrinkage
		best.Right *= stumpShrinkage
		s.Trees = append(s.Trees, best)

		for i, row := range X {
			if row[best.Feature] <= best.Threshold {
				score[i] += best.Left
			} else {
				score[i] += best.Right
			}
		}
	}
	return nil
}

func (s *stumps) PredictProba(x []float64) [2]float64 {
	score := s.Prior
	for _, t := range s.Trees {
		if x[t.Feature] <= t.Threshold {
			score += t.Left
		} else {
			score += t.Right
		}
	}
	p := sigmoid(score)
	return [2]float64{1 - p, p}
}

func (s *stumps) MarshalParams() ([]byte, error) { return json.Marshal(s) }

func (s *stumps) UnmarshalParams(data []byte) error { return json.Unmarshal(data, s) }

// bestStump scans every (feature, threshold) candidate and keeps the
// split with the largest gradient-gain. Leaf values are Newton steps
// sum(grad)/sum(hess).
func bestStump(X [][]float64, grad, hess []float64, candidates [][]float64) (stump, bool) {
	var best stump
	bestGain := 0.0
	found := false

	var totalG, totalH float64
	for i := range grad {
		totalG += grad[i]
		totalH += hess[i]
	}

	for j, thresholds := range candidates {
		for _, thr := range thresholds {
			var leftG, leftH float64
			for i, row := range X {
				if row[j] <= thr {
					leftG += grad[i]
					leftH += hess[i]
				}
			}
			rightG := totalG - leftG
			rightH := totalH - leftH
			if leftH < 1e-12 || rightH < 1e-12 {
				continue
			}
			gain := leftG*leftG/leftH + rightG*rightG/rightH
			if gain > bestGain {
				bestGain = gain
				best = stump{Feature: j, Threshold: thr, Left: leftG / leftH, Right: rightG / rightH}
				found = true
			}
		}
	}
	return best, found
}

// quantileThresholds returns up to max split points drawn from the
// sorted distinct values of column j.
func quantileThresholds(X [][]float64, j, max int) []float64 {
	values := make([]float64, 0, len(X))
	for _, row := range X {
		values = append(values, row[j])
	}
	sort.Float64s(values)

	distinct := values[:0:0]
	for i, v := range values {
		if i == 0 || v != values[i-1] {
			distinct = append(distinct, v)
		}
	}
	if len(distinct) < 2 {
		return nil
	}

	if len(distinct) <= max {
		out := make([]float64, 0, len(distinct)-1)
		for i := 0; i+1 < len(distinct); i++ {
			out = append(out, (distinct[i]+distinct[i+1])/2)
		}
		return out
	}

	out := make([]float64, 0, max)
	step := float64(len(distinct)) / float64(max+1)
	for k := 1; k <= max; k++ {
		out = append(out, distinct[int(float64(k)*step)])
	}
	return out
}
