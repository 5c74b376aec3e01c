package logic

import (
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/fightmetrics/predict-api/internal/models"
)

func builderFixture(t *testing.T) (*FeatureBuilder, []EnrichedFight) {
	t.Helper()
	fights := []EnrichedFight{
		fightOn("January 1, 2024", "Alice Ash", "Bob Burr", "Alice Ash"),
		fightOn("February 1, 2024", "Bob Burr", "Cara Cole", "Bob Burr"),
		fightOn("March 1, 2024", "Alice Ash", "Cara Cole", "Alice Ash"),
	}
	profiles := BuildProfileTable(profileRows())
	b, err := NewFeatureBuilder(fights, profiles, 5)
	if err != nil {
		t.Fatalf("NewFeatureBuilder failed: %v", err)
	}
	return b, fights
}

func TestFeatureColumnsSortedAndFixed(t *testing.T) {
	if !sort.StringsAreSorted(models.FeatureColumns) {
		t.Error("feature columns must be sorted so vector layout is reproducible")
	}
	seen := make(map[string]bool)
	for _, c := range models.FeatureColumns {
		if seen[c] {
			t.Errorf("duplicate column %q", c)
		}
		seen[c] = true
	}
	if !seen[models.StanceMismatchColumn] {
		t.Errorf("%s missing from column list", models.StanceMismatchColumn)
	}
}

func TestNewFeatureBuilderRequiresProfiles(t *testing.T) {
	_, err := NewFeatureBuilder(nil, BuildProfileTable(nil), 5)
	if !errors.Is(err, ErrMissingProfileSource) {
		t.Errorf("err = %v, want ErrMissingProfileSource", err)
	}
}

func TestDatasetBalancedAugmentation(t *testing.T) {
	b, fights := builderFixture(t)
	set := b.Dataset(fights)

	if len(set.X) != 2*len(fights) {
		t.Fatalf("rows = %d, want %d (two per decided fight)", len(set.X), 2*len(fights))
	}
	ones, zeros := 0, 0
	for _, y := range set.Y {
		if y == 1 {
			ones++
		} else {
			zeros++
		}
	}
	if ones != zeros {
		t.Errorf("labels unbalanced: %d ones, %d zeros", ones, zeros)
	}

	stanceIdx := sort.SearchStrings(models.FeatureColumns, models.StanceMismatchColumn)
	for i := 0; i < len(set.X); i += 2 {
		win, mirror := set.X[i], set.X[i+1]
		for j := range win {
			if j == stanceIdx {
				if mirror[j] != win[j] {
					t.Errorf("row %d col %d: stance mismatch negated, %v vs %v", i, j, mirror[j], win[j])
				}
				continue
			}
			if mirror[j] != -win[j] {
				t.Errorf("row %d col %d: mirror = %v, want %v", i, j, mirror[j], -win[j])
			}
		}
	}
}

func TestDatasetWinnerRowPositive(t *testing.T) {
	b, fights := builderFixture(t)
	set := b.Dataset(fights)

	for i, meta := range set.Meta {
		if set.Y[i] == 1 && meta.Fighter1 != meta.Winner {
			t.Errorf("row %d: label 1 row must be winner-oriented, got %s vs winner %s", i, meta.Fighter1, meta.Winner)
		}
		if set.Y[i] == 0 && meta.Fighter1 == meta.Winner {
			t.Errorf("row %d: label 0 row oriented on the winner", i)
		}
	}
}

func TestDatasetSkipsUndecidedAndUnknown(t *testing.T) {
	b, fights := builderFixture(t)

	draw := fightOn("April 1, 2024", "Alice Ash", "Bob Burr", models.OutcomeDraw)
	unknown := fightOn("April 1, 2024", "Alice Ash", "Zed Zero", "Alice Ash")
	set := b.Dataset(append(fights, draw, unknown))

	if len(set.X) != 2*len(fights) {
		t.Errorf("rows = %d, want %d (draw and unknown-fighter bouts excluded)", len(set.X), 2*len(fights))
	}
	if set.SkippedFights != 1 {
		t.Errorf("SkippedFights = %d, want 1 (only the unknown fighter counts)", set.SkippedFights)
	}
}

func TestVectorNoNaNs(t *testing.T) {
	b, _ := builderFixture(t)

	// Cara Cole has no height, reach or DOB on file.
	bout := fightOn("April 1, 2024", "Cara Cole", "Alice Ash", "")
	vec, ok := b.Vector(bout)
	if !ok {
		t.Fatal("Vector refused a bout with both fighters on file")
	}
	for i, v := range vec {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("column %s = %v, want finite", models.FeatureColumns[i], v)
		}
	}
}

func TestVectorAntisymmetric(t *testing.T) {
	b, _ := builderFixture(t)

	ab := fightOn("April 1, 2024", "Alice Ash", "Bob Burr", "")
	ba := fightOn("April 1, 2024", "Bob Burr", "Alice Ash", "")
	vecAB, ok1 := b.Vector(ab)
	vecBA, ok2 := b.Vector(ba)
	if !ok1 || !ok2 {
		t.Fatal("Vector failed on known fighters")
	}

	stanceIdx := sort.SearchStrings(models.FeatureColumns, models.StanceMismatchColumn)
	for i := range vecAB {
		if i == stanceIdx {
			if vecAB[i] != vecBA[i] {
				t.Errorf("stance mismatch differs by orientation: %v vs %v", vecAB[i], vecBA[i])
			}
			continue
		}
		if math.Abs(vecAB[i]+vecBA[i]) > 1e-9 {
			t.Errorf("column %s not antisymmetric: %v vs %v", models.FeatureColumns[i], vecAB[i], vecBA[i])
		}
	}
}

func TestVectorUnknownFighter(t *testing.T) {
	b, _ := builderFixture(t)
	if _, ok := b.Vector(fightOn("April 1, 2024", "Alice Ash", "Zed Zero", "")); ok {
		t.Error("Vector should refuse a bout with an unlisted fighter")
	}
}

func TestVectorStanceMismatch(t *testing.T) {
	b, _ := builderFixture(t)
	stanceIdx := sort.SearchStrings(models.FeatureColumns, models.StanceMismatchColumn)

	// Orthodox vs Southpaw.
	mixed, _ := b.Vector(fightOn("April 1, 2024", "Alice Ash", "Bob Burr", ""))
	if mixed[stanceIdx] != 1 {
		t.Errorf("opposed stances = %v, want 1", mixed[stanceIdx])
	}

	// Cara Cole's stance is unknown: indicator stays 0.
	unknown, _ := b.Vector(fightOn("April 1, 2024", "Alice Ash", "Cara Cole", ""))
	if unknown[stanceIdx] != 0 {
		t.Errorf("unknown stance = %v, want 0", unknown[stanceIdx])
	}
}

func TestVectorUsesDebutLayoff(t *testing.T) {
	profiles := BuildProfileTable(profileRows())
	b, err := NewFeatureBuilder(nil, profiles, 5)
	if err != nil {
		t.Fatalf("NewFeatureBuilder failed: %v", err)
	}

	idx := sort.SearchStrings(models.FeatureColumns, "days_since_last_fight_diff")
	vec, ok := b.Vector(fightOn("April 1, 2024", "Alice Ash", "Bob Burr", ""))
	if !ok {
		t.Fatal("Vector failed")
	}
	// Both debut: identical stand-in layoffs cancel.
	if vec[idx] != 0 {
		t.Errorf("debut layoff diff = %v, want 0", vec[idx])
	}
}
