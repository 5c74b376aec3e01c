package logic

import (
	"fmt"
	"sort"
	"time"

	"github.com/fightmetrics/predict-api/internal/models"
)

// Date layouts used by the source pages. Event pages spell the month
// out in full; fighter pages abbreviate it. Both must be parsed
// independently.
const (
	EventDateLayout = "January 2, 2006"
	DOBLayout       = "Jan 2, 2006"
)

// EnrichedFight is a fight record with its event date parsed once up
// front. The raw record is embedded unchanged; enrichment never
// mutates shared input slices, so the same fight list can be handed
// to any number of models without aliasing surprises.
type EnrichedFight struct {
	models.Fight
	Date time.Time
}

// Normalize parses event dates and returns fights stably sorted in
// ascending chronological order. An unparseable event date fails the
// whole call: chronological order is the correctness invariant of
// everything downstream, and a record whose position in time is
// unknown cannot be placed safely.
func Normalize(fights []models.Fight) ([]EnrichedFight, error) {
	enriched := make([]EnrichedFight, 0, len(fights))
	for i, f := range fights {
		d, err := time.Parse(EventDateLayout, f.EventDate)
		if err != nil {
			return nil, fmt.Errorf("fight %d (%s vs %s, event %q): bad event date %q: %w",
				i, f.Fighter1, f.Fighter2, f.EventName, f.EventDate, err)
		}
		enriched = append(enriched, EnrichedFight{Fight: f, Date: d})
	}
	sort.SliceStable(enriched, func(i, j int) bool {
		return enriched[i].Date.Before(enriched[j].Date)
	})
	return enriched, nil
}

// EventsInOrder returns the unique event names of an already sorted
// fight list, in first-appearance order.
func EventsInOrder(fights []EnrichedFight) []string {
	seen := make(map[string]bool, len(fights))
	events := make([]string, 0, len(fights))
	for _, f := range fights {
		if !seen[f.EventName] {
			seen[f.EventName] = true
			events = append(events, f.EventName)
		}
	}
	return events
}
