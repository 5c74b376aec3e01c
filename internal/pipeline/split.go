package pipeline

import (
	"math/rand"

	"github.com/fightmetrics/predict-api/internal/logic"
)

// ChronologicalSplit holds out the most recent numTestEvents events
// as the test set. The split never cuts inside an event and never
// shuffles: predicting future events from past ones is the only
// evaluation that mirrors deployment. Input must already be sorted
// (Normalize output).
func ChronologicalSplit(fights []logic.EnrichedFight, numTestEvents int) (train, test []logic.EnrichedFight, testEvents []string) {
	events := logic.EventsInOrder(fights)
	if numTestEvents > len(events) {
		numTestEvents = len(events)
	}
	if numTestEvents < 1 {
		numTestEvents = 1
		if len(events) == 0 {
			return nil, nil, nil
		}
	}

	holdout := make(map[string]bool, numTestEvents)
	testEvents = events[len(events)-numTestEvents:]
	for _, e := range testEvents {
		holdout[e] = true
	}

	for _, f := range fights {
		if holdout[f.EventName] {
			test = append(test, f)
		} else {
			train = append(train, f)
		}
	}
	return train, test, testEvents
}

// Fold is one cross-validation partition.
type Fold struct {
	Train      []logic.EnrichedFight
	Test       []logic.EnrichedFight
	TestEvents []string
}

// EventKFold partitions whole events across k folds so one event's
// fights never straddle a fold boundary, then reserves the most
// recent holdoutEvents events inside each fold for testing. The
// event shuffle is seeded, so a fixed seed reproduces the exact
// folds and therefore the exact accuracy numbers.
func EventKFold(fights []logic.EnrichedFight, k, holdoutEvents int, seed int64) []Fold {
	events := logic.EventsInOrder(fights)
	if k < 2 || len(events) < k {
		return nil
	}
	if holdoutEvents < 1 {
		holdoutEvents = 1
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(events))

	folds := make([]Fold, 0, k)
	for i := 0; i < k; i++ {
		// Events in positions i, i+k, i+2k... of the permutation are
		// withheld from this fold entirely; the rest form the fold.
		withheld := make(map[string]bool)
		for pos := i; pos < len(perm); pos += k {
			withheld[events[perm[pos]]] = true
		}

		var foldFights []logic.EnrichedFight
		for _, f := range fights {
			if !withheld[f.EventName] {
				foldFights = append(foldFights, f)
			}
		}
		if len(foldFights) == 0 {
			continue
		}

		train, test, testEvents := ChronologicalSplit(foldFights, holdoutEvents)
		folds = append(folds, Fold{Train: train, Test: test, TestEvents: testEvents})
	}
	return folds
}
