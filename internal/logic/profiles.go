package logic

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fightmetrics/predict-api/internal/models"
)

// Fighter is a cleaned profile row. Missing or unparseable numeric
// attributes are NaN so they can flow through differentials and be
// zeroed in one place by the feature builder.
type Fighter struct {
	Name     string
	HeightCm float64
	ReachIn  float64
	Stance   string
	DOB      time.Time
	HasDOB   bool
	Rating   float64
}

// ProfileTable indexes cleaned fighter profiles by full name.
// Duplicate full names are collapsed with a first-occurrence-wins
// policy; that policy lives here and nowhere else, so every code
// path resolving a fighter resolves the same row.
type ProfileTable struct {
	fighters map[string]Fighter
	order    []string
}

// BuildProfileTable cleans and indexes raw profile rows. Rows whose
// full name is empty are dropped. A zero stored rating means "never
// rated" and falls back to the initial rating.
func BuildProfileTable(rows []models.FighterProfile) *ProfileTable {
	t := &ProfileTable{fighters: make(map[string]Fighter, len(rows))}
	for _, row := range rows {
		name := row.FullName()
		if name == "" {
			continue
		}
		if _, dup := t.fighters[name]; dup {
			// First occurrence wins.
			continue
		}
		f := Fighter{
			Name:     name,
			HeightCm: cleanNumeric(row.Height),
			ReachIn:  cleanNumeric(row.Reach),
			Stance:   strings.TrimSpace(row.Stance),
			Rating:   row.Rating,
		}
		if f.Rating == 0 {
			f.Rating = InitialRating
		}
		if dob, err := time.Parse(DOBLayout, strings.TrimSpace(row.DateOfBirth)); err == nil {
			f.DOB = dob
			f.HasDOB = true
		}
		t.fighters[name] = f
		t.order = append(t.order, name)
	}
	return t
}

// Lookup returns the profile for a full name.
func (t *ProfileTable) Lookup(name string) (Fighter, bool) {
	f, ok := t.fighters[name]
	return f, ok
}

// Len returns the number of distinct fighters in the table.
func (t *ProfileTable) Len() int {
	return len(t.order)
}

// WithRatings returns a copy of the table with the given rating map
// merged in. Fighters absent from the map keep the initial rating.
// The receiver is left untouched so one table can serve several
// models trained on different splits.
func (t *ProfileTable) WithRatings(ratings map[string]float64) *ProfileTable {
	out := &ProfileTable{
		fighters: make(map[string]Fighter, len(t.fighters)),
		order:    append([]string(nil), t.order...),
	}
	for name, f := range t.fighters {
		if r, ok := ratings[name]; ok {
			f.Rating = r
		} else {
			f.Rating = InitialRating
		}
		out.fighters[name] = f
	}
	return out
}

// TopRated returns the n highest-rated fighters, ties broken by name
// for deterministic output.
func (t *ProfileTable) TopRated(n int) []models.RatedFighter {
	ranked := make([]models.RatedFighter, 0, len(t.order))
	for _, name := range t.order {
		ranked = append(ranked, models.RatedFighter{Name: name, Rating: t.fighters[name].Rating})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Rating != ranked[j].Rating {
			return ranked[i].Rating > ranked[j].Rating
		}
		return ranked[i].Name < ranked[j].Name
	})
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// cleanNumeric strips everything but digits and the decimal point
// before parsing, mirroring how the scraped columns mix units into
// values ("187 cm", "74.5 in."). Returns NaN when nothing numeric
// remains.
func cleanNumeric(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
