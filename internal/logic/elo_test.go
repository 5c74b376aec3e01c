package logic

import (
	"math"
	"testing"
	"time"

	"github.com/fightmetrics/predict-api/internal/models"
)

func fightOn(date, f1, f2, winner string) EnrichedFight {
	d, err := time.Parse(EventDateLayout, date)
	if err != nil {
		panic(err)
	}
	return EnrichedFight{
		Fight: models.Fight{
			EventName: "Event " + date,
			EventDate: date,
			Fighter1:  f1,
			Fighter2:  f2,
			Winner:    winner,
		},
		Date: d,
	}
}

func TestExpectedScore(t *testing.T) {
	tests := []struct {
		name string
		ra   float64
		rb   float64
		want float64
	}{
		{"equal ratings", 1500, 1500, 0.5},
		{"400 points ahead", 1900, 1500, 10.0 / 11.0},
		{"400 points behind", 1500, 1900, 1.0 / 11.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpectedScore(tt.ra, tt.rb)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ExpectedScore(%v, %v) = %v, want %v", tt.ra, tt.rb, got, tt.want)
			}
		})
	}
}

func TestExpectedScoreComplement(t *testing.T) {
	// The two sides of any matchup must sum to 1.
	pairs := [][2]float64{{1500, 1500}, {1700, 1450}, {1200, 2100}}
	for _, p := range pairs {
		sum := ExpectedScore(p[0], p[1]) + ExpectedScore(p[1], p[0])
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("ExpectedScore(%v,%v) + reverse = %v, want 1", p[0], p[1], sum)
		}
	}
}

func TestComputeRatingsWinLoss(t *testing.T) {
	fights := []EnrichedFight{fightOn("May 1, 2024", "Alice Ash", "Bob Burr", "Alice Ash")}
	ratings := ComputeRatings(fights)

	wantShift := KFactor * 0.5
	if got := ratings["Alice Ash"]; math.Abs(got-(InitialRating+wantShift)) > 1e-9 {
		t.Errorf("winner rating = %v, want %v", got, InitialRating+wantShift)
	}
	if got := ratings["Bob Burr"]; math.Abs(got-(InitialRating-wantShift)) > 1e-9 {
		t.Errorf("loser rating = %v, want %v", got, InitialRating-wantShift)
	}
}

func TestComputeRatingsZeroSum(t *testing.T) {
	fights := []EnrichedFight{
		fightOn("May 1, 2024", "Alice Ash", "Bob Burr", "Alice Ash"),
		fightOn("June 1, 2024", "Bob Burr", "Cara Cole", "Bob Burr"),
		fightOn("July 1, 2024", "Alice Ash", "Cara Cole", "Alice Ash"),
		fightOn("August 1, 2024", "Alice Ash", "Bob Burr", models.OutcomeDraw),
	}
	ratings := ComputeRatings(fights)

	var total float64
	for _, r := range ratings {
		total += r
	}
	want := InitialRating * float64(len(ratings))
	if math.Abs(total-want) > 1e-6 {
		t.Errorf("total rating mass = %v, want %v", total, want)
	}
}

func TestComputeRatingsDraw(t *testing.T) {
	// A draw between unequal fighters moves the underdog up and the
	// favorite down.
	fights := []EnrichedFight{
		fightOn("May 1, 2024", "Alice Ash", "Bob Burr", "Alice Ash"),
		fightOn("June 1, 2024", "Alice Ash", "Bob Burr", models.OutcomeDraw),
	}
	ratings := ComputeRatings(fights)

	afterWin := InitialRating + KFactor*0.5
	if ratings["Alice Ash"] >= afterWin {
		t.Errorf("favorite rating after draw = %v, want below %v", ratings["Alice Ash"], afterWin)
	}
	if ratings["Bob Burr"] <= InitialRating-KFactor*0.5 {
		t.Errorf("underdog rating after draw = %v, want above %v", ratings["Bob Burr"], InitialRating-KFactor*0.5)
	}
}

func TestComputeRatingsDrawEqualRatingsNoChange(t *testing.T) {
	fights := []EnrichedFight{fightOn("May 1, 2024", "Alice Ash", "Bob Burr", models.OutcomeDraw)}
	ratings := ComputeRatings(fights)

	for name, r := range ratings {
		if math.Abs(r-InitialRating) > 1e-9 {
			t.Errorf("%s rating after even draw = %v, want %v", name, r, InitialRating)
		}
	}
}

func TestComputeRatingsNoContest(t *testing.T) {
	fights := []EnrichedFight{
		fightOn("May 1, 2024", "Alice Ash", "Bob Burr", "Alice Ash"),
		fightOn("June 1, 2024", "Alice Ash", "Bob Burr", models.OutcomeNoContest),
	}
	withNC := ComputeRatings(fights)
	withoutNC := ComputeRatings(fights[:1])

	for name := range withoutNC {
		if withNC[name] != withoutNC[name] {
			t.Errorf("%s rating changed by no-contest: %v vs %v", name, withNC[name], withoutNC[name])
		}
	}
}

func TestComputeRatingsPure(t *testing.T) {
	fights := []EnrichedFight{
		fightOn("May 1, 2024", "Alice Ash", "Bob Burr", "Alice Ash"),
		fightOn("June 1, 2024", "Bob Burr", "Cara Cole", "Bob Burr"),
	}
	first := ComputeRatings(fights)
	second := ComputeRatings(fights)

	if len(first) != len(second) {
		t.Fatalf("rating table size changed between calls: %d vs %d", len(first), len(second))
	}
	for name, r := range first {
		if second[name] != r {
			t.Errorf("%s rating differs between identical calls: %v vs %v", name, r, second[name])
		}
	}
}

func TestRatingOrDefault(t *testing.T) {
	ratings := map[string]float64{"Alice Ash": 1650}
	if got := RatingOrDefault(ratings, "Alice Ash"); got != 1650 {
		t.Errorf("known fighter = %v, want 1650", got)
	}
	if got := RatingOrDefault(ratings, "Nobody"); got != InitialRating {
		t.Errorf("unknown fighter = %v, want %v", got, InitialRating)
	}
}
