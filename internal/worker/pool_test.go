package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/fightmetrics/predict-api/internal/models"
)

// mockConn implements the slice of driver.Conn the pool touches and
// counts what got batched.
type mockConn struct {
	driver.Conn
	mu      sync.Mutex
	batches []*mockBatch
}

func (m *mockConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := &mockBatch{}
	m.batches = append(m.batches, b)
	return b, nil
}

func (m *mockConn) rowsSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, b := range m.batches {
		if b.IsSent() {
			total += b.Rows()
		}
	}
	return total
}

type mockBatch struct {
	mu       sync.Mutex
	appended int
	sentFlag bool
}

func (b *mockBatch) Append(v ...interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appended++
	return nil
}

func (b *mockBatch) AppendStruct(v interface{}) error { return nil }

func (b *mockBatch) Column(int) driver.BatchColumn { return nil }

func (b *mockBatch) IsSent() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sentFlag
}

func (b *mockBatch) Rows() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.appended
}

func (b *mockBatch) Send() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sentFlag = true
	return nil
}

func (b *mockBatch) Flush() error { return nil }

func (b *mockBatch) Abort() error { return nil }

func testFight(f1, f2 string) models.Fight {
	return models.Fight{
		EventName: "FM 1", EventDate: "January 6, 2024",
		Fighter1: f1, Fighter2: f2, Winner: f1,
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestPoolDefaults(t *testing.T) {
	p := NewPool(PoolConfig{Logger: zap.NewNop()})

	if p.config.WorkerCount != 2 {
		t.Errorf("WorkerCount = %d, want 2", p.config.WorkerCount)
	}
	if p.config.QueueSize != 10000 {
		t.Errorf("QueueSize = %d, want 10000", p.config.QueueSize)
	}
	if p.config.BatchSize != 500 {
		t.Errorf("BatchSize = %d, want 500", p.config.BatchSize)
	}
	if p.config.FlushInterval != time.Second {
		t.Errorf("FlushInterval = %v, want 1s", p.config.FlushInterval)
	}
}

func TestPoolFlushesOnBatchSize(t *testing.T) {
	conn := &mockConn{}
	p := NewPool(PoolConfig{
		WorkerCount:   1,
		BatchSize:     2,
		FlushInterval: time.Hour,
		ClickHouse:    conn,
		Logger:        zap.NewNop(),
	})
	p.Start(context.Background())
	defer p.Stop()

	if !p.Enqueue(testFight("Alice Ash", "Bob Burr")) {
		t.Fatal("first enqueue refused")
	}
	if !p.Enqueue(testFight("Cara Cole", "Dana Dee")) {
		t.Fatal("second enqueue refused")
	}

	waitFor(t, "batch flush", func() bool { return conn.rowsSent() == 2 })
}

func TestPoolFlushesOnInterval(t *testing.T) {
	conn := &mockConn{}
	p := NewPool(PoolConfig{
		WorkerCount:   1,
		BatchSize:     100,
		FlushInterval: 20 * time.Millisecond,
		ClickHouse:    conn,
		Logger:        zap.NewNop(),
	})
	p.Start(context.Background())
	defer p.Stop()

	p.Enqueue(testFight("Alice Ash", "Bob Burr"))

	// Batch size is far from reached; only the ticker can flush this.
	waitFor(t, "interval flush", func() bool { return conn.rowsSent() == 1 })
}

func TestPoolStopDrains(t *testing.T) {
	conn := &mockConn{}
	p := NewPool(PoolConfig{
		WorkerCount:   1,
		BatchSize:     100,
		FlushInterval: time.Hour,
		ClickHouse:    conn,
		Logger:        zap.NewNop(),
	})
	p.Start(context.Background())

	fights := []models.Fight{
		testFight("Alice Ash", "Bob Burr"),
		testFight("Cara Cole", "Dana Dee"),
		testFight("Alice Ash", "Cara Cole"),
	}
	for _, f := range fights {
		if !p.Enqueue(f) {
			t.Fatal("enqueue refused")
		}
	}

	waitFor(t, "queue drained", func() bool { return p.QueueDepth() == 0 })
	p.Stop()

	if got := conn.rowsSent(); got != len(fights) {
		t.Errorf("rows sent = %d, want %d after shutdown flush", got, len(fights))
	}
}

func TestPoolEnqueueAfterStop(t *testing.T) {
	p := NewPool(PoolConfig{
		WorkerCount: 1,
		ClickHouse:  &mockConn{},
		Logger:      zap.NewNop(),
	})
	p.Start(context.Background())
	p.Stop()

	if p.Enqueue(testFight("Alice Ash", "Bob Burr")) {
		t.Error("Enqueue succeeded on a stopped pool")
	}
}
