// Package worker implements the buffered worker pool for async fight
// ingestion. It decouples HTTP request handling from ClickHouse
// writes: fights queue up, workers flush them in batches, and a
// graceful stop drains what is left.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fightmetrics/predict-api/internal/models"
)

// Prometheus metrics
var (
	fightsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fightstats_fights_ingested_total",
		Help: "Total number of fights accepted for ingestion",
	})

	fightsStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fightstats_fights_stored_total",
		Help: "Total number of fights written to ClickHouse",
	})

	fightsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fightstats_fights_failed_total",
		Help: "Total number of fights that failed to store",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fightstats_worker_queue_depth",
		Help: "Current depth of the ingest queue",
	})

	batchInsertDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fightstats_batch_insert_duration_seconds",
		Help:    "Duration of batch inserts to ClickHouse",
		Buckets: prometheus.DefBuckets,
	})

	fightsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fightstats_fights_dropped_total",
		Help: "Total number of fights dropped during shutdown",
	})
)

// Job is one fight waiting to be stored.
type Job struct {
	Fight      models.Fight
	ReceivedAt time.Time
}

// PoolConfig configures the ingest pool.
type PoolConfig struct {
	WorkerCount   int
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	ClickHouse    driver.Conn
	Redis         *redis.Client
	Logger        *zap.Logger
}

// Pool manages the ingest workers.
type Pool struct {
	config   PoolConfig
	jobQueue chan Job
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *zap.SugaredLogger
}

func NewPool(cfg PoolConfig) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 10000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = time.Second
	}

	return &Pool{
		config:   cfg,
		jobQueue: make(chan Job, cfg.QueueSize),
		logger:   cfg.Logger.Sugar(),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	go p.reportQueueDepth()

	p.logger.Infow("Ingest pool started",
		"workers", p.config.WorkerCount,
		"queueSize", p.config.QueueSize,
		"batchSize", p.config.BatchSize,
	)
}

// Stop gracefully shuts down the pool, flushing queued fights.
func (p *Pool) Stop() {
	p.logger.Info("Stopping ingest pool...")
	p.cancel()
	close(p.jobQueue)
	p.wg.Wait()
	p.logger.Info("Ingest pool stopped")
}

// Enqueue adds a fight to the queue. Blocks when the queue is full;
// returns false only when the pool is shutting down.
func (p *Pool) Enqueue(f models.Fight) bool {
	// Protect against sending on closed channel
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warnw("Failed to enqueue fight (pool stopped)", "error", r)
		}
	}()

	select {
	case p.jobQueue <- Job{Fight: f, ReceivedAt: time.Now()}:
		fightsIngested.Inc()
		return true
	case <-p.ctx.Done():
		fightsDropped.Inc()
		return false
	}
}

// QueueDepth returns the current queue size.
func (p *Pool) QueueDepth() int {
	return len(p.jobQueue)
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	batch := make([]Job, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		start := time.Now()
		if err := p.storeBatch(batch); err != nil {
			p.logger.Errorw("Batch insert failed", "worker", id, "batchSize", len(batch), "error", err)
			fightsFailed.Add(float64(len(batch)))
		} else {
			fightsStored.Add(float64(len(batch)))
		}
		batchInsertDuration.Observe(time.Since(start).Seconds())
		batch = batch[:0]
	}

	for {
		select {
		case job, ok := <-p.jobQueue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, job)
			if len(batch) >= p.config.BatchSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-p.ctx.Done():
			flush()
			return
		}
	}
}

// storeBatch writes one batch to ClickHouse and then updates the
// ingest bookkeeping in Redis.
func (p *Pool) storeBatch(batch []Job) error {
	ctx := context.Background()

	chBatch, err := p.config.ClickHouse.PrepareBatch(ctx, `
		INSERT INTO fightstats.raw_fights (
			event_name, event_date, fighter_1, fighter_2, winner, method, round, round_time,
			f1_kd, f1_sig_str_landed, f1_sig_str_att, f1_td_landed, f1_td_att, f1_sub_att, f1_ctrl,
			f2_kd, f2_sig_str_landed, f2_sig_str_att, f2_td_landed, f2_td_att, f2_sub_att, f2_ctrl
		)
	`)
	if err != nil {
		return err
	}

	for _, job := range batch {
		f := job.Fight
		err := chBatch.Append(
			f.EventName, f.EventDate, f.Fighter1, f.Fighter2, f.Winner, f.Method, f.Round, f.RoundTime,
			f.F1.Knockdowns, f.F1.SigStrikesLanded, f.F1.SigStrikesAttempts,
			f.F1.TakedownsLanded, f.F1.TakedownsAttempts, f.F1.SubAttempts, f.F1.ControlTime,
			f.F2.Knockdowns, f.F2.SigStrikesLanded, f.F2.SigStrikesAttempts,
			f.F2.TakedownsLanded, f.F2.TakedownsAttempts, f.F2.SubAttempts, f.F2.ControlTime,
		)
		if err != nil {
			p.logger.Warnw("Failed to append fight to batch", "error", err, "event", f.EventName)
		}
	}

	if err := chBatch.Send(); err != nil {
		return err
	}

	// Must copy because the worker loop reuses the batch slice.
	batchCopy := make([]Job, len(batch))
	copy(batchCopy, batch)
	go p.recordSideEffects(ctx, batchCopy)

	return nil
}

// recordSideEffects tracks per-event fight counts and the known
// fighter set in Redis. Best effort; the ClickHouse row is the source
// of truth.
func (p *Pool) recordSideEffects(ctx context.Context, batch []Job) {
	if p.config.Redis == nil {
		return
	}
	pipe := p.config.Redis.Pipeline()
	for _, job := range batch {
		f := job.Fight
		pipe.HIncrBy(ctx, "events:fight_counts", f.EventName, 1)
		pipe.SAdd(ctx, "fighters:known", f.Fighter1, f.Fighter2)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		p.logger.Warnw("Redis ingest bookkeeping failed", "error", err)
	}
}

func (p *Pool) reportQueueDepth() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			queueDepth.Set(float64(len(p.jobQueue)))
		case <-p.ctx.Done():
			return
		}
	}
}
