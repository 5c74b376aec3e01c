package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/fightmetrics/predict-api/internal/logic"
	"github.com/fightmetrics/predict-api/internal/model"
	"github.com/fightmetrics/predict-api/internal/modelcache"
	"github.com/fightmetrics/predict-api/internal/models"
)

// Prometheus metrics
var (
	runsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fightstats_pipeline_runs_total",
		Help: "Total number of evaluation pipeline runs",
	})

	modelAccuracy = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fightstats_model_accuracy_percent",
		Help: "Holdout accuracy of each model from the latest run",
	}, []string{"model"})

	fightsEvaluated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fightstats_fights_evaluated_total",
		Help: "Total fights evaluated across pipeline runs",
	})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fightstats_pipeline_run_duration_seconds",
		Help:    "Duration of evaluation pipeline runs",
		Buckets: prometheus.DefBuckets,
	})
)

// phase tracks where a run is; Idle -> DataLoaded -> Training or
// Loaded -> Evaluated -> Reported.
type phase int

const (
	phaseIdle phase = iota
	phaseDataLoaded
	phaseTraining
	phaseLoaded
	phaseEvaluated
	phaseReported
)

// Options tunes a single evaluation run.
type Options struct {
	TestEvents   int
	Window       int
	ForceRetrain bool
}

// Pipeline orchestrates loading, splitting, training (or reusing),
// evaluating and reporting across a set of models. The cache is
// optional; without one every run retrains.
type Pipeline struct {
	models []model.Model
	cache  *modelcache.Cache
	logger *zap.SugaredLogger
	phase  phase
}

func New(mods []model.Model, cache *modelcache.Cache, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		models: mods,
		cache:  cache,
		logger: logger.Sugar(),
	}
}

// Run executes one full evaluation: chronological split, train or
// load each model, score it on the held-out events, and assemble the
// report. Per-entity problems (skipped fights, unknown fighters)
// reduce coverage and are counted; only structural problems (no
// profiles, unparseable dates, an empty test set) abort the run.
func (p *Pipeline) Run(ctx context.Context, rawFights []models.Fight, rawProfiles []models.FighterProfile, opts Options) (*models.EvaluationReport, error) {
	start := time.Now()
	runsTotal.Inc()
	p.phase = phaseIdle

	if opts.TestEvents <= 0 {
		opts.TestEvents = 1
	}

	fights, err := logic.Normalize(rawFights)
	if err != nil {
		return nil, fmt.Errorf("normalize fights: %w", err)
	}
	if len(fights) == 0 {
		return nil, fmt.Errorf("no fight data available")
	}
	profiles := logic.BuildProfileTable(rawProfiles)
	if profiles.Len() == 0 {
		return nil, logic.ErrMissingProfileSource
	}
	p.phase = phaseDataLoaded

	train, test, testEvents := ChronologicalSplit(fights, opts.TestEvents)
	latestEvent := fights[len(fights)-1].EventName

	eligible := make([]logic.EnrichedFight, 0, len(test))
	for _, f := range test {
		if f.HasDefinitiveOutcome() {
			eligible = append(eligible, f)
		}
	}
	if len(eligible) == 0 {
		return nil, fmt.Errorf("no fights with definitive outcomes in the test set")
	}

	p.logger.Infow("Data loaded and split",
		"trainFights", len(train),
		"testFights", len(test),
		"eligible", len(eligible),
		"testEvents", testEvents,
	)

	reuse, reason := false, "no cache configured"
	if p.cache != nil && !opts.ForceRetrain {
		reuse, reason = p.cache.CanReuse(ctx, p.modelNames(), latestEvent)
	} else if opts.ForceRetrain {
		reason = "retrain forced"
	}
	p.logger.Infow("Model reuse decision", "reuse", reuse, "reason", reason)

	report := &models.EvaluationReport{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		LatestEvent: latestEvent,
		TestEvents:  testEvents,
		TrainFights: len(train),
		TestFights:  len(test),
		Models:      make(map[string]models.ModelReport, len(p.models)),
	}

	for _, m := range p.models {
		status := models.ModelStatusTrained
		if reuse {
			p.phase = phaseLoaded
			if err := p.restore(ctx, m, train, profiles); err != nil {
				p.logger.Warnw("Failed to load cached model, retraining", "model", m.Name(), "error", err)
				reuse = false
			} else {
				status = models.ModelStatusLoaded
			}
		}
		if status == models.ModelStatusTrained {
			p.phase = phaseTraining
			if err := m.Train(train, profiles); err != nil {
				return nil, fmt.Errorf("train %s: %w", m.Name(), err)
			}
		}

		mr := p.evaluate(m, eligible)
		mr.Status = status
		report.Models[m.Name()] = mr
		modelAccuracy.WithLabelValues(m.Name()).Set(mr.Accuracy)
		fightsEvaluated.Add(float64(mr.Evaluated))

		p.logger.Infow("Model evaluated",
			"model", m.Name(),
			"accuracy", fmt.Sprintf("%.2f%%", mr.Accuracy),
			"evaluated", mr.Evaluated,
			"eligible", mr.Eligible,
			"status", status,
		)
	}
	p.phase = phaseEvaluated

	// When retraining happened, refresh the stored artifacts from the
	// full dataset so the next run can reuse them. Persistence is
	// best-effort; a dead cache must not fail an otherwise good run.
	if !reuse && p.cache != nil {
		if err := p.TrainAndStore(ctx, rawFights, rawProfiles); err != nil {
			p.logger.Warnw("Failed to persist trained models", "error", err)
		}
	}

	p.phase = phaseReported
	runDuration.Observe(time.Since(start).Seconds())
	return report, nil
}

// TrainAndStore trains every model on the complete dataset and saves
// the snapshots plus the latest-event marker.
func (p *Pipeline) TrainAndStore(ctx context.Context, rawFights []models.Fight, rawProfiles []models.FighterProfile) error {
	if p.cache == nil {
		return fmt.Errorf("no model cache configured")
	}
	fights, err := logic.Normalize(rawFights)
	if err != nil {
		return fmt.Errorf("normalize fights: %w", err)
	}
	if len(fights) == 0 {
		return fmt.Errorf("no fight data available")
	}
	profiles := logic.BuildProfileTable(rawProfiles)
	if profiles.Len() == 0 {
		return logic.ErrMissingProfileSource
	}

	for _, m := range p.models {
		if err := m.Train(fights, profiles); err != nil {
			return fmt.Errorf("train %s on full dataset: %w", m.Name(), err)
		}
		snap, err := m.Snapshot()
		if err != nil {
			return fmt.Errorf("snapshot %s: %w", m.Name(), err)
		}
		if err := p.cache.SaveSnapshot(ctx, m.Name(), snap); err != nil {
			return err
		}
	}

	latestEvent := fights[len(fights)-1].EventName
	if err := p.cache.SetLastTrainedEvent(ctx, latestEvent); err != nil {
		return err
	}
	p.logger.Infow("Models trained and stored", "latestEvent", latestEvent, "models", len(p.models))
	return nil
}

// FoldResult is per-model accuracy for one cross-validation fold.
type FoldResult struct {
	Fold       int                `json:"fold"`
	TestEvents []string           `json:"test_events"`
	Accuracy   map[string]float64 `json:"accuracy"`
	Evaluated  map[string]int     `json:"evaluated"`
}

// RunKFold cross-validates by event: events are partitioned across k
// folds with a seeded shuffle and each fold reserves its most recent
// holdoutEvents events for testing. No artifacts are cached.
func (p *Pipeline) RunKFold(ctx context.Context, rawFights []models.Fight, rawProfiles []models.FighterProfile, k, holdoutEvents int, seed int64) ([]FoldResult, error) {
	fights, err := logic.Normalize(rawFights)
	if err != nil {
		return nil, fmt.Errorf("normalize fights: %w", err)
	}
	profiles := logic.BuildProfileTable(rawProfiles)
	if profiles.Len() == 0 {
		return nil, logic.ErrMissingProfileSource
	}

	folds := EventKFold(fights, k, holdoutEvents, seed)
	if len(folds) == 0 {
		return nil, fmt.Errorf("cannot build %d folds from %d fights", k, len(fights))
	}

	results := make([]FoldResult, 0, len(folds))
	for i, fold := range folds {
		fr := FoldResult{
			Fold:       i + 1,
			TestEvents: fold.TestEvents,
			Accuracy:   make(map[string]float64, len(p.models)),
			Evaluated:  make(map[string]int, len(p.models)),
		}

		eligible := make([]logic.EnrichedFight, 0, len(fold.Test))
		for _, f := range fold.Test {
			if f.HasDefinitiveOutcome() {
				eligible = append(eligible, f)
			}
		}

		for _, m := range p.models {
			if err := m.Train(fold.Train, profiles); err != nil {
				return nil, fmt.Errorf("fold %d: train %s: %w", i+1, m.Name(), err)
			}
			mr := p.evaluate(m, eligible)
			fr.Accuracy[m.Name()] = mr.Accuracy
			fr.Evaluated[m.Name()] = mr.Evaluated
		}
		results = append(results, fr)
		p.logger.Infow("Fold evaluated", "fold", i+1, "testEvents", fold.TestEvents, "accuracy", fr.Accuracy)
	}
	return results, nil
}

// evaluate scores one model on the eligible test fights. Bouts the
// model cannot predict (unknown fighter) are recorded but drop out
// of the accuracy denominator; the evaluated/eligible pair in the
// report makes that reduced coverage visible instead of hiding it.
func (p *Pipeline) evaluate(m model.Model, eligible []logic.EnrichedFight) models.ModelReport {
	mr := models.ModelReport{Eligible: len(eligible)}
	correct := 0

	for _, f := range eligible {
		pred := m.Predict(f)
		rec := models.PredictionRecord{
			Matchup:      f.Fighter1 + " vs. " + f.Fighter2,
			EventName:    f.EventName,
			ActualWinner: f.Winner,
		}
		if pred.OK {
			mr.Evaluated++
			rec.PredictedWinner = pred.Winner
			rec.Probability = pred.Probability
			rec.Correct = pred.Winner == f.Winner
			if rec.Correct {
				correct++
			}
		}
		mr.Predictions = append(mr.Predictions, rec)
	}

	if mr.Evaluated > 0 {
		mr.Accuracy = float64(correct) / float64(mr.Evaluated) * 100
	}
	return mr
}

func (p *Pipeline) restore(ctx context.Context, m model.Model, train []logic.EnrichedFight, profiles *logic.ProfileTable) error {
	snap, err := p.cache.LoadSnapshot(ctx, m.Name())
	if err != nil {
		return err
	}
	return m.Restore(snap, train, profiles)
}

func (p *Pipeline) modelNames() []string {
	names := make([]string, 0, len(p.models))
	for _, m := range p.models {
		names = append(names, m.Name())
	}
	return names
}
