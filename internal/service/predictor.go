// Package service owns the serving-side prediction state: models
// trained on the full fight log, refreshed from storage, queried by
// the HTTP handlers.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fightmetrics/predict-api/internal/logic"
	"github.com/fightmetrics/predict-api/internal/model"
	"github.com/fightmetrics/predict-api/internal/modelcache"
	"github.com/fightmetrics/predict-api/internal/models"
	"github.com/fightmetrics/predict-api/internal/pipeline"
	"github.com/fightmetrics/predict-api/internal/store"
)

// ErrUnknownModel reports a model name outside the roster.
var ErrUnknownModel = fmt.Errorf("unknown model")

// ErrNotReady reports that no data has been loaded yet.
var ErrNotReady = fmt.Errorf("prediction service not ready: no data loaded")

// Predictor serves matchup predictions from models trained on the
// complete ingested history. Refresh replaces the trained state
// atomically; readers hold the lock only long enough to grab the
// current model set.
type Predictor struct {
	fights   *store.FightStore
	fighters *store.FighterStore
	reports  *store.ReportStore
	cache    *modelcache.Cache
	logger   *zap.SugaredLogger

	window      int
	activeModel string

	mu          sync.RWMutex
	roster      []model.Model
	latestEvent string
	ready       bool
}

type Deps struct {
	Fights   *store.FightStore
	Fighters *store.FighterStore
	Reports  *store.ReportStore
	Cache    *modelcache.Cache
	Logger   *zap.Logger
	Window   int
	Active   string
}

func NewPredictor(d Deps) *Predictor {
	return &Predictor{
		fights:      d.Fights,
		fighters:    d.Fighters,
		reports:     d.Reports,
		cache:       d.Cache,
		logger:      d.Logger.Sugar(),
		window:      d.Window,
		activeModel: d.Active,
	}
}

// Refresh reloads the fight log and profiles from storage and brings
// every model up to date, restoring cached snapshots when they still
// cover the latest event and retraining otherwise. Safe to call
// concurrently with predictions.
func (s *Predictor) Refresh(ctx context.Context, forceRetrain bool) error {
	rawFights, rawProfiles, err := s.loadAll(ctx)
	if err != nil {
		return err
	}

	fights, err := logic.Normalize(rawFights)
	if err != nil {
		return fmt.Errorf("normalize fights: %w", err)
	}
	if len(fights) == 0 {
		return fmt.Errorf("no fight data ingested yet")
	}
	profiles := logic.BuildProfileTable(rawProfiles)
	if profiles.Len() == 0 {
		return logic.ErrMissingProfileSource
	}
	latestEvent := fights[len(fights)-1].EventName

	roster := model.Roster(s.window)
	reuse, reason := false, "retrain forced"
	if s.cache != nil && !forceRetrain {
		reuse, reason = s.cache.CanReuse(ctx, names(roster), latestEvent)
	}
	s.logger.Infow("Refreshing prediction service",
		"fights", len(fights), "profiles", profiles.Len(),
		"latestEvent", latestEvent, "reuse", reuse, "reason", reason,
	)

	for _, m := range roster {
		restored := false
		if reuse {
			snap, err := s.cache.LoadSnapshot(ctx, m.Name())
			if err == nil {
				if err := m.Restore(snap, fights, profiles); err == nil {
					restored = true
				} else {
					s.logger.Warnw("Snapshot restore failed, retraining", "model", m.Name(), "error", err)
				}
			}
		}
		if !restored {
			if err := m.Train(fights, profiles); err != nil {
				return fmt.Errorf("train %s: %w", m.Name(), err)
			}
			if s.cache != nil {
				if snap, err := m.Snapshot(); err == nil {
					if err := s.cache.SaveSnapshot(ctx, m.Name(), snap); err != nil {
						s.logger.Warnw("Failed to cache snapshot", "model", m.Name(), "error", err)
					}
				}
			}
		}
	}
	if s.cache != nil && !reuse {
		if err := s.cache.SetLastTrainedEvent(ctx, latestEvent); err != nil {
			s.logger.Warnw("Failed to record last trained event", "error", err)
		}
	}

	// Write the rating column back so the leaderboard reflects the
	// full history. Best effort.
	if err := s.fighters.ApplyRatings(ctx, logic.ComputeRatings(fights)); err != nil {
		s.logger.Warnw("Failed to write ratings back", "error", err)
	}

	s.mu.Lock()
	s.roster = roster
	s.latestEvent = latestEvent
	s.ready = true
	s.mu.Unlock()
	return nil
}

// PredictMatchup asks one model about a hypothetical bout between two
// named fighters, dated today. An empty model name selects the
// configured active model.
func (s *Predictor) PredictMatchup(fighter1, fighter2, modelName string) (*models.MatchupPrediction, error) {
	s.mu.RLock()
	roster := s.roster
	ready := s.ready
	s.mu.RUnlock()

	if !ready {
		return nil, ErrNotReady
	}
	if modelName == "" {
		modelName = s.activeModel
	}

	var chosen model.Model
	for _, m := range roster {
		if m.Name() == modelName {
			chosen = m
			break
		}
	}
	if chosen == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, modelName)
	}

	bout := logic.EnrichedFight{
		Fight: models.Fight{
			EventName: "Hypothetical Matchup",
			EventDate: time.Now().UTC().Format(logic.EventDateLayout),
			Fighter1:  fighter1,
			Fighter2:  fighter2,
		},
		Date: time.Now().UTC(),
	}

	pred := chosen.Predict(bout)
	return &models.MatchupPrediction{
		Fighter1:    fighter1,
		Fighter2:    fighter2,
		Model:       modelName,
		Winner:      pred.Winner,
		Probability: pred.Probability,
		OK:          pred.OK,
	}, nil
}

// Evaluate runs the full holdout evaluation on current storage
// contents, archives the report, and returns it.
func (s *Predictor) Evaluate(ctx context.Context, opts pipeline.Options) (*models.EvaluationReport, error) {
	rawFights, rawProfiles, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	p := pipeline.New(model.Roster(opts.Window), s.cache, s.logger.Desugar())
	report, err := p.Run(ctx, rawFights, rawProfiles, opts)
	if err != nil {
		return nil, err
	}
	if s.reports != nil {
		if err := s.reports.Save(ctx, report); err != nil {
			s.logger.Warnw("Failed to archive evaluation report", "error", err)
		}
	}
	return report, nil
}

// Leaderboard returns the top rated fighters from storage.
func (s *Predictor) Leaderboard(ctx context.Context, limit int) ([]models.RatedFighter, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.fighters.TopRated(ctx, limit)
}

// LatestReport returns the most recent archived evaluation.
func (s *Predictor) LatestReport(ctx context.Context) (*models.EvaluationReport, error) {
	return s.reports.Latest(ctx)
}

// Ready reports whether models are trained and serving.
func (s *Predictor) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// ModelNames lists the roster, for the API surface.
func (s *Predictor) ModelNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return names(s.roster)
}

// loadAll pulls the fight log and profile table in parallel; they live
// in different databases.
func (s *Predictor) loadAll(ctx context.Context) ([]models.Fight, []models.FighterProfile, error) {
	var (
		rawFights   []models.Fight
		rawProfiles []models.FighterProfile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if rawFights, err = s.fights.LoadAll(gctx); err != nil {
			return fmt.Errorf("load fights: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if rawProfiles, err = s.fighters.LoadAll(gctx); err != nil {
			return fmt.Errorf("load fighters: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return rawFights, rawProfiles, nil
}

func names(roster []model.Model) []string {
	out := make([]string, 0, len(roster))
	for _, m := range roster {
		out = append(out, m.Name())
	}
	return out
}
