package logic

import (
	"errors"
	"math"
	"time"

	"github.com/fightmetrics/predict-api/internal/models"
)

// ErrMissingProfileSource aborts a pipeline run: without the fighter
// profile table no feature can be built at all. Contrast with a
// single fighter missing from the table, which only skips that one
// bout.
var ErrMissingProfileSource = errors.New("fighter profile source missing")

// DebutLayoffDays stands in for days-since-last-fight when a fighter
// has no prior bouts, roughly a year and a half.
const DebutLayoffDays = 547

// FeatureBuilder turns matchups into differential feature vectors.
// The per-fighter history index is built once at construction, not
// once per fight; on a multi-thousand-fight log that is the
// difference between linear and quadratic work.
type FeatureBuilder struct {
	profiles    *ProfileTable
	index       map[string][]EnrichedFight
	window      int
	stanceIndex int
}

// NewFeatureBuilder prepares a builder over the given fight log and
// profile table. The profile table is the one required data source;
// its absence is structural and fails fast.
func NewFeatureBuilder(fights []EnrichedFight, profiles *ProfileTable, window int) (*FeatureBuilder, error) {
	if profiles == nil || profiles.Len() == 0 {
		return nil, ErrMissingProfileSource
	}
	if window <= 0 {
		window = DefaultWindow
	}
	b := &FeatureBuilder{
		profiles:    profiles,
		index:       BuildHistoryIndex(fights),
		window:      window,
		stanceIndex: -1,
	}
	for i, col := range models.FeatureColumns {
		if col == models.StanceMismatchColumn {
			b.stanceIndex = i
			break
		}
	}
	return b, nil
}

// Dataset builds the training set: for every fight with a definitive
// outcome and both fighters on file, two rows are emitted: the
// winner-minus-loser vector labeled 1 and its negation labeled 0,
// with the stance-mismatch indicator copied rather than negated.
// The output is therefore class-balanced and order-invariant by
// construction. Fights referencing unknown fighters are counted and
// skipped, never fatal.
func (b *FeatureBuilder) Dataset(fights []EnrichedFight) *models.FeatureSet {
	set := &models.FeatureSet{Columns: models.FeatureColumns}
	for _, f := range fights {
		if !f.HasDefinitiveOutcome() {
			continue
		}
		winner := f.Winner
		loser := f.OpponentOf(winner)

		vec, ok := b.vectorFor(winner, loser, f)
		if !ok {
			set.SkippedFights++
			continue
		}

		set.X = append(set.X, vec)
		set.Y = append(set.Y, 1)
		set.Meta = append(set.Meta, models.FightMeta{
			EventName: f.EventName, EventDate: f.EventDate,
			Fighter1: winner, Fighter2: loser, Winner: winner,
		})

		set.X = append(set.X, b.negate(vec))
		set.Y = append(set.Y, 0)
		set.Meta = append(set.Meta, models.FightMeta{
			EventName: f.EventName, EventDate: f.EventDate,
			Fighter1: loser, Fighter2: winner, Winner: winner,
		})
	}
	return set
}

// Vector builds the fighter-1-minus-fighter-2 feature vector for a
// single bout, for inference. ok is false when either fighter is
// missing from the profile table.
func (b *FeatureBuilder) Vector(f EnrichedFight) ([]float64, bool) {
	return b.vectorFor(f.Fighter1, f.Fighter2, f)
}

func (b *FeatureBuilder) vectorFor(a, bName string, f EnrichedFight) ([]float64, bool) {
	pa, ok1 := b.profiles.Lookup(a)
	pb, ok2 := b.profiles.Lookup(bName)
	if !ok1 || !ok2 {
		return nil, false
	}

	histA := b.index[a]
	histB := b.index[bName]
	statsA := AggregateHistory(a, f.Date, histA, nil, b.window)
	statsB := AggregateHistory(bName, f.Date, histB, nil, b.window)
	// Opponent strength comes from the rating column already merged
	// into the profile table, so recompute it against that table.
	statsA.AvgOpponentRating = b.avgOpponentRating(a, f, histA)
	statsB.AvgOpponentRating = b.avgOpponentRating(bName, f, histB)

	layoffA := layoffDays(f, histA)
	layoffB := layoffDays(f, histB)

	values := map[string]float64{
		"age_diff":    ageAt(pa, f.Date) - ageAt(pb, f.Date),
		"height_diff": pa.HeightCm - pb.HeightCm,
		"reach_diff":  pa.ReachIn - pb.ReachIn,
		"rating_diff": pa.Rating - pb.Rating,

		"days_since_last_fight_diff": float64(layoffA - layoffB),
		"win_streak_diff":            float64(WinStreak(a, f.Date, histA) - WinStreak(bName, f.Date, histB)),
		"fights_last_year_diff":      float64(statsA.FightsLastYear - statsB.FightsLastYear),

		"finish_rate_diff":          statsA.FinishRate - statsB.FinishRate,
		"ko_rate_diff":              statsA.KORate - statsB.KORate,
		"sig_str_per_min_diff":      statsA.SigStrPerMin - statsB.SigStrPerMin,
		"td_accuracy_diff":          statsA.TakedownAccuracy - statsB.TakedownAccuracy,
		"sub_attempts_per_min_diff": statsA.SubAttemptsPerMin - statsB.SubAttemptsPerMin,
		"control_time_diff":         statsA.ControlTimePerMin - statsB.ControlTimePerMin,

		"sig_str_defense_diff":     statsA.SigStrAccuracy - statsB.SigStrAccuracy,
		"td_defense_diff":          statsA.TakedownDefense - statsB.TakedownDefense,
		"knockdowns_absorbed_diff": statsA.KnockdownsAbsorbedPerFight - statsB.KnockdownsAbsorbedPerFight,

		models.StanceMismatchColumn: stanceMismatch(pa.Stance, pb.Stance),
	}

	vec := make([]float64, len(models.FeatureColumns))
	for i, col := range models.FeatureColumns {
		v := values[col]
		// Missing attributes surface as NaN differentials; they are
		// zeroed here, after all differentials are computed, so a row
		// with one missing field still participates fully.
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		vec[i] = v
	}
	return vec, true
}

func (b *FeatureBuilder) avgOpponentRating(name string, f EnrichedFight, history []EnrichedFight) float64 {
	past := make([]EnrichedFight, 0, len(history))
	for _, h := range history {
		if h.Date.Before(f.Date) {
			past = append(past, h)
		}
	}
	if len(past) > b.window {
		past = past[len(past)-b.window:]
	}
	if len(past) == 0 {
		return InitialRating
	}
	var total float64
	for _, h := range past {
		if opp, ok := b.profiles.Lookup(h.OpponentOf(name)); ok {
			total += opp.Rating
		} else {
			total += InitialRating
		}
	}
	return total / float64(len(past))
}

func (b *FeatureBuilder) negate(vec []float64) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		if i == b.stanceIndex {
			out[i] = v
			continue
		}
		out[i] = -v
	}
	return out
}

func layoffDays(f EnrichedFight, history []EnrichedFight) int {
	if days, ok := DaysSinceLastFight(f.Date, history); ok {
		return days
	}
	return DebutLayoffDays
}

// ageAt returns age in years at a date, NaN when the birth date is
// unknown.
func ageAt(p Fighter, at time.Time) float64 {
	if !p.HasDOB {
		return math.NaN()
	}
	return at.Sub(p.DOB).Hours() / 24 / 365.25
}

func stanceMismatch(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0
	}
	if s1 != s2 {
		return 1
	}
	return 0
}
