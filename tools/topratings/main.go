// Quick look at the rating list without a database: reads a fights
// CSV, replays the rating updates, prints the top of the table.
package main

import (
	"flag"
	"fmt"
	"log"
	"sort"

	"github.com/fightmetrics/predict-api/internal/logic"
	"github.com/fightmetrics/predict-api/internal/store"
)

func main() {
	fightsPath := flag.String("fights", "data/fights.csv", "path to the fights CSV export")
	top := flag.Int("top", 10, "number of fighters to print")
	flag.Parse()

	raw, err := store.ReadFightsCSV(*fightsPath)
	if err != nil {
		log.Fatalf("read fights: %v", err)
	}
	fights, err := logic.Normalize(raw)
	if err != nil {
		log.Fatalf("normalize: %v", err)
	}

	ratings := logic.ComputeRatings(fights)

	type entry struct {
		name   string
		rating float64
	}
	entries := make([]entry, 0, len(ratings))
	for name, rating := range ratings {
		entries = append(entries, entry{name, rating})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].rating != entries[j].rating {
			return entries[i].rating > entries[j].rating
		}
		return entries[i].name < entries[j].name
	})

	fmt.Printf("Top %d rated fighters (%d fights, %d fighters)\n", *top, len(fights), len(entries))
	for i, e := range entries {
		if i >= *top {
			break
		}
		fmt.Printf("%2d. %-30s %8.1f\n", i+1, e.name, e.rating)
	}
}
