package logic

import (
	"math"

	"github.com/fightmetrics/predict-api/internal/models"
)

// Elo parameters. Every fighter starts at InitialRating; K bounds how
// far a single result can move a rating.
const (
	InitialRating = 1500.0
	KFactor       = 32.0
)

// ExpectedScore returns the probability that a fighter rated ra beats
// one rated rb under the Elo model.
func ExpectedScore(ra, rb float64) float64 {
	return 1 / (1 + math.Pow(10, (rb-ra)/400))
}

// ComputeRatings replays fights in chronological order and returns
// the final rating per fighter. The input is assumed normalized;
// callers that cannot guarantee order should pass the output of
// Normalize, which sorts. No-contest bouts and upcoming bouts leave
// both ratings untouched: a fight that produced no result carries no
// skill information. The function carries no state between calls.
func ComputeRatings(fights []EnrichedFight) map[string]float64 {
	ratings := make(map[string]float64)
	for _, f := range fights {
		if _, ok := ratings[f.Fighter1]; !ok {
			ratings[f.Fighter1] = InitialRating
		}
		if _, ok := ratings[f.Fighter2]; !ok {
			ratings[f.Fighter2] = InitialRating
		}

		r1 := ratings[f.Fighter1]
		r2 := ratings[f.Fighter2]

		switch f.Winner {
		case f.Fighter1:
			ratings[f.Fighter1], ratings[f.Fighter2] = updateWinLoss(r1, r2)
		case f.Fighter2:
			ratings[f.Fighter2], ratings[f.Fighter1] = updateWinLoss(r2, r1)
		case models.OutcomeDraw:
			ratings[f.Fighter1], ratings[f.Fighter2] = updateDraw(r1, r2)
		}
	}
	return ratings
}

// updateWinLoss shifts winner and loser by the same amount in
// opposite directions, keeping the update zero-sum.
func updateWinLoss(winner, loser float64) (newWinner, newLoser float64) {
	change := KFactor * (1 - ExpectedScore(winner, loser))
	return winner + change, loser - change
}

// updateDraw moves each side toward 0.5 relative to its own
// expectation. The two deltas are symmetric and opposite in sign.
func updateDraw(r1, r2 float64) (new1, new2 float64) {
	return r1 + KFactor*(0.5-ExpectedScore(r1, r2)),
		r2 + KFactor*(0.5-ExpectedScore(r2, r1))
}

// RatingOrDefault looks a fighter up in a rating table, falling back
// to the initial rating for unseen names.
func RatingOrDefault(ratings map[string]float64, name string) float64 {
	if r, ok := ratings[name]; ok {
		return r
	}
	return InitialRating
}
