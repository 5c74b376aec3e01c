package logic

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// RoundDurationSeconds is the assumed length of a round when deriving
// total fight time. Real round lengths vary by bout type; a uniform
// five minutes is a known approximation carried over from the data
// source, applied to every bout alike.
const RoundDurationSeconds = 300

// DefaultWindow is the number of most recent fights considered when
// summarizing a fighter's short-term form.
const DefaultWindow = 5

// HistoryStats summarizes a fighter's last-N fights strictly before a
// reference date. Rates fall back to neutral values when their
// denominator is zero: accuracy ratios to 0.5, per-minute rates to 0,
// average opponent rating to the initial rating.
type HistoryStats struct {
	Fights int
	Wins   int

	FinishRate           float64
	FirstRoundFinishRate float64
	KORate               float64

	KnockdownsPerFight         float64
	KnockdownsAbsorbedPerFight float64

	SigStrPerMin      float64
	SubAttemptsPerMin float64
	ControlTimePerMin float64

	SigStrAccuracy   float64
	TakedownAccuracy float64
	TakedownDefense  float64

	AvgOpponentRating float64
	FightsLastYear    int
}

// BuildHistoryIndex groups fights by participant, each slice sorted
// ascending by date. Building the index once per pipeline run keeps
// per-fight feature construction from rescanning the whole fight log
// for every bout.
func BuildHistoryIndex(fights []EnrichedFight) map[string][]EnrichedFight {
	index := make(map[string][]EnrichedFight)
	for _, f := range fights {
		index[f.Fighter1] = append(index[f.Fighter1], f)
		index[f.Fighter2] = append(index[f.Fighter2], f)
	}
	for name := range index {
		h := index[name]
		sort.SliceStable(h, func(i, j int) bool { return h[i].Date.Before(h[j].Date) })
		index[name] = h
	}
	return index
}

// AggregateHistory computes windowed form statistics for a fighter as
// of a date. Only fights strictly before asOf count; appending a
// fight dated on or after asOf to the history never changes the
// result. A fighter with no prior fights gets the neutral default
// record rather than an error; debuts must still be predictable.
// Pure function: the input slice is never mutated.
func AggregateHistory(name string, asOf time.Time, history []EnrichedFight, ratings map[string]float64, window int) HistoryStats {
	if window <= 0 {
		window = DefaultWindow
	}

	past := make([]EnrichedFight, 0, len(history))
	for _, f := range history {
		if f.Date.Before(asOf) {
			past = append(past, f)
		}
	}
	sort.SliceStable(past, func(i, j int) bool { return past[i].Date.Before(past[j].Date) })

	stats := HistoryStats{AvgOpponentRating: InitialRating}

	oneYearAgo := asOf.AddDate(0, 0, -365)
	for _, f := range past {
		if !f.Date.Before(oneYearAgo) {
			stats.FightsLastYear++
		}
	}

	recent := past
	if len(recent) > window {
		recent = recent[len(recent)-window:]
	}
	stats.Fights = len(recent)
	if stats.Fights == 0 {
		stats.SigStrAccuracy = 0.5
		stats.TakedownAccuracy = 0.5
		stats.TakedownDefense = 0.5
		return stats
	}

	var (
		finishes, firstRoundFinishes, koWins            int
		kdScored, kdAbsorbed                            int
		strLanded, strAttempted, tdLanded, tdAttempted  int
		subAttempts, ctrlSeconds, fightSeconds          int
		totalOppRating                                  float64
	)

	for _, f := range recent {
		own, opp := f.StatsFor(name)

		if f.Winner == name {
			stats.Wins++
			if !isDecision(f.Method) {
				finishes++
				if strings.TrimSpace(f.Round) == "1" {
					firstRoundFinishes++
				}
			}
			if strings.Contains(f.Method, "KO") {
				koWins++
			}
		}

		kdScored += intSafe(own.Knockdowns)
		kdAbsorbed += intSafe(opp.Knockdowns)
		strLanded += intSafe(own.SigStrikesLanded)
		strAttempted += intSafe(own.SigStrikesAttempts)
		tdLanded += intSafe(own.TakedownsLanded)
		tdAttempted += intSafe(own.TakedownsAttempts)
		subAttempts += intSafe(own.SubAttempts)
		ctrlSeconds += mmssSeconds(own.ControlTime)

		if rounds := intSafe(f.Round); rounds > 0 {
			fightSeconds += (rounds-1)*RoundDurationSeconds + mmssSeconds(f.RoundTime)
		}

		totalOppRating += RatingOrDefault(ratings, f.OpponentOf(name))
	}

	n := float64(stats.Fights)
	stats.KnockdownsPerFight = float64(kdScored) / n
	stats.KnockdownsAbsorbedPerFight = float64(kdAbsorbed) / n
	stats.AvgOpponentRating = totalOppRating / n

	if stats.Wins > 0 {
		w := float64(stats.Wins)
		stats.FinishRate = float64(finishes) / w
		stats.FirstRoundFinishRate = float64(firstRoundFinishes) / w
		stats.KORate = float64(koWins) / w
	}

	if minutes := float64(fightSeconds) / 60; minutes > 0 {
		stats.SigStrPerMin = float64(strLanded) / minutes
		stats.SubAttemptsPerMin = float64(subAttempts) / minutes
		stats.ControlTimePerMin = float64(ctrlSeconds) / minutes
	}

	stats.SigStrAccuracy = ratioOrHalf(strLanded, strAttempted)
	stats.TakedownAccuracy = ratioOrHalf(tdLanded, tdAttempted)
	if tdAttempted > 0 {
		stats.TakedownDefense = 1 - stats.TakedownAccuracy
	} else {
		stats.TakedownDefense = 0.5
	}

	return stats
}

// WinStreak counts consecutive wins walking back from the fight
// immediately before asOf.
func WinStreak(name string, asOf time.Time, history []EnrichedFight) int {
	streak := 0
	for i := len(history) - 1; i >= 0; i-- {
		f := history[i]
		if !f.Date.Before(asOf) {
			continue
		}
		if f.Winner != name {
			break
		}
		streak++
	}
	return streak
}

// DaysSinceLastFight returns the layoff before asOf, or (0, false)
// for a debut.
func DaysSinceLastFight(asOf time.Time, history []EnrichedFight) (int, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Date.Before(asOf) {
			return int(asOf.Sub(history[i].Date).Hours() / 24), true
		}
	}
	return 0, false
}

func isDecision(method string) bool {
	return strings.Contains(method, "Decision")
}

// intSafe parses scraped integer cells, treating "--", "", and any
// other junk as zero.
func intSafe(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// mmssSeconds parses "m:ss" durations; anything malformed is zero.
func mmssSeconds(s string) int {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	mins, err1 := strconv.Atoi(parts[0])
	secs, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0
	}
	return mins*60 + secs
}

func ratioOrHalf(num, den int) float64 {
	if den == 0 {
		return 0.5
	}
	return float64(num) / float64(den)
}
