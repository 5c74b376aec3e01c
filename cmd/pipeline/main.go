// The pipeline command runs the evaluation harness offline against
// CSV exports, without the API server or ClickHouse. With -redis it
// reuses and refreshes the same model cache the server reads.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fightmetrics/predict-api/internal/model"
	"github.com/fightmetrics/predict-api/internal/modelcache"
	"github.com/fightmetrics/predict-api/internal/pipeline"
	"github.com/fightmetrics/predict-api/internal/store"
)

func main() {
	fightsPath := flag.String("fights", "data/fights.csv", "path to the fights CSV export")
	fightersPath := flag.String("fighters", "data/fighters.csv", "path to the fighters CSV export")
	testEvents := flag.Int("test-events", 1, "number of most recent events to hold out")
	window := flag.Int("window", 5, "number of past fights aggregated per fighter")
	kfold := flag.Int("kfold", 0, "run event-partitioned cross-validation with this many folds instead of a single holdout")
	seed := flag.Int64("seed", 42, "shuffle seed for cross-validation folds")
	forceRetrain := flag.Bool("force-retrain", false, "ignore cached models and retrain")
	redisURL := flag.String("redis", "", "Redis URL for the model cache (empty disables caching)")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	fights, err := store.ReadFightsCSV(*fightsPath)
	if err != nil {
		sugar.Fatalw("Failed to read fights", "error", err)
	}
	fighters, err := store.ReadFightersCSV(*fightersPath)
	if err != nil {
		sugar.Fatalw("Failed to read fighters", "error", err)
	}
	sugar.Infow("Data loaded", "fights", len(fights), "fighters", len(fighters))

	var cache *modelcache.Cache
	if *redisURL != "" {
		opts, err := redis.ParseURL(*redisURL)
		if err != nil {
			sugar.Fatalw("Failed to parse Redis URL", "error", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		cache = modelcache.New(rdb)
	}

	ctx := context.Background()
	p := pipeline.New(model.Roster(*window), cache, logger)

	if *kfold > 0 {
		folds, err := p.RunKFold(ctx, fights, fighters, *kfold, *testEvents, *seed)
		if err != nil {
			sugar.Fatalw("Cross-validation failed", "error", err)
		}
		pipeline.RenderFolds(os.Stdout, folds)
		return
	}

	report, err := p.Run(ctx, fights, fighters, pipeline.Options{
		TestEvents:   *testEvents,
		Window:       *window,
		ForceRetrain: *forceRetrain,
	})
	if err != nil {
		sugar.Fatalw("Evaluation failed", "error", err)
	}
	pipeline.RenderSummary(os.Stdout, report)
}
