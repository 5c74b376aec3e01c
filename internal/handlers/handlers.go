package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fightmetrics/predict-api/internal/models"
	"github.com/fightmetrics/predict-api/internal/pipeline"
)

// MaxBodySize limits the size of request bodies to 1MB
const MaxBodySize = 1048576

// IngestQueue defines the interface for the fight ingestion worker pool
type IngestQueue interface {
	Enqueue(f models.Fight) bool
	QueueDepth() int
}

// FighterRegistry is the profile-store surface the API writes to.
type FighterRegistry interface {
	Upsert(ctx context.Context, p models.FighterProfile) error
}

// PredictionService is the serving-side surface backed by the trained
// model roster.
type PredictionService interface {
	PredictMatchup(fighter1, fighter2, modelName string) (*models.MatchupPrediction, error)
	Leaderboard(ctx context.Context, limit int) ([]models.RatedFighter, error)
	LatestReport(ctx context.Context) (*models.EvaluationReport, error)
	Evaluate(ctx context.Context, opts pipeline.Options) (*models.EvaluationReport, error)
	Refresh(ctx context.Context, forceRetrain bool) error
	Ready() bool
	ModelNames() []string
}

type Config struct {
	WorkerPool IngestQueue
	Fighters   FighterRegistry
	Prediction PredictionService
	Postgres   *pgxpool.Pool
	ClickHouse driver.Conn
	Redis      *redis.Client
	Logger     *zap.Logger

	AllowedOrigins []string
	TestEvents     int
	HistoryWindow  int
}

type Handler struct {
	pool       IngestQueue
	fighters   FighterRegistry
	prediction PredictionService
	pg         *pgxpool.Pool
	ch         driver.Conn
	redis      *redis.Client
	logger     *zap.SugaredLogger
	validator  *validator.Validate

	allowedOrigins []string
	testEvents     int
	historyWindow  int
}

func New(cfg Config) *Handler {
	return &Handler{
		pool:           cfg.WorkerPool,
		fighters:       cfg.Fighters,
		prediction:     cfg.Prediction,
		pg:             cfg.Postgres,
		ch:             cfg.ClickHouse,
		redis:          cfg.Redis,
		logger:         cfg.Logger.Sugar(),
		validator:      validator.New(),
		allowedOrigins: cfg.AllowedOrigins,
		testEvents:     cfg.TestEvents,
		historyWindow:  cfg.HistoryWindow,
	}
}

// Router assembles the full API surface.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/ingest/fights", h.IngestFights)
		r.Post("/ingest/fighters", h.IngestFighters)

		r.Get("/predictions/matchup", h.PredictMatchup)
		r.Get("/predictions/models", h.ListModels)
		r.Post("/predictions/evaluate", h.RunEvaluation)
		r.Post("/models/refresh", h.RefreshModels)

		r.Get("/ratings/top", h.TopRatings)
		r.Get("/reports/latest", h.LatestReport)
	})

	return r
}
