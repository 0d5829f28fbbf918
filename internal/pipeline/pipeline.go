package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/oil-spill-dashboard/internal/domain"
	"github.com/couchcryptid/oil-spill-dashboard/internal/observability"
)

// Extractor reads the raw dataset from its source.
type Extractor interface {
	Extract(ctx context.Context) (domain.RawTable, error)
}

// BatchLoader writes cleaned incidents to a downstream sink.
type BatchLoader interface {
	LoadBatch(ctx context.Context, incidents []domain.Incident) error
}

// maxPublishAttempts bounds retries of a single batch before it is dropped.
const maxPublishAttempts = 5

// Pipeline loads the dataset once and optionally publishes the cleaned rows.
type Pipeline struct {
	extractor Extractor
	preparer  *Preparer
	loader    BatchLoader // nil disables publishing
	logger    *slog.Logger
	metrics   *observability.Metrics
	batchSize int

	table atomic.Pointer[domain.Table]
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, p *Preparer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Pipeline{
		extractor: e,
		preparer:  p,
		loader:    l,
		logger:    logger,
		metrics:   metrics,
		batchSize: batchSize,
	}
}

// CheckReadiness returns nil once the dataset has been loaded.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.table.Load() == nil {
		return errors.New("dataset has not been loaded yet")
	}
	return nil
}

// Table returns the cleaned dataset. ok is false before Load succeeds.
func (p *Pipeline) Table() (domain.Table, bool) {
	t := p.table.Load()
	if t == nil {
		return domain.Table{}, false
	}
	return *t, true
}

// Load extracts and prepares the dataset. Any error is fatal to the caller;
// nothing is kept from a failed load.
func (p *Pipeline) Load(ctx context.Context) (domain.Table, error) {
	start := time.Now()

	raw, err := p.extractor.Extract(ctx)
	if err != nil {
		return domain.Table{}, fmt.Errorf("extract: %w", err)
	}
	t, err := p.preparer.Prepare(ctx, raw)
	if err != nil {
		return domain.Table{}, fmt.Errorf("prepare: %w", err)
	}

	p.table.Store(&t)
	p.metrics.LoadDuration.Observe(time.Since(start).Seconds())
	p.metrics.DatasetRows.Set(float64(t.Len()))
	p.metrics.DatasetLoaded.Set(1)
	for col, n := range t.Report.Filled {
		p.metrics.CellsFilled.WithLabelValues(col).Add(float64(n))
	}

	p.logger.Info("dataset loaded",
		"source", t.Source,
		"rows", t.Len(),
		"stages", p.preparer.Stages(),
		"gallons_median", t.Report.GallonsMedian,
		"duration", time.Since(start),
	)
	return t, nil
}

// Run loads the dataset and, when a loader is configured, publishes it.
func (p *Pipeline) Run(ctx context.Context) error {
	t, err := p.Load(ctx)
	if err != nil {
		return err
	}
	p.Publish(ctx, t)
	return nil
}

// Publish writes t to the loader in batches. A batch that still fails after
// retrying is logged and skipped. It returns the number of incidents written.
func (p *Pipeline) Publish(ctx context.Context, t domain.Table) int {
	if p.loader == nil {
		return 0
	}
	p.logger.Info("publishing incidents", "rows", t.Len(), "batch_size", p.batchSize)

	published := 0
	for start := 0; start < len(t.Rows); start += p.batchSize {
		end := min(start+p.batchSize, len(t.Rows))
		batch := t.Rows[start:end]
		if !p.publishBatch(ctx, batch) {
			if ctx.Err() != nil {
				break
			}
			continue
		}
		published += len(batch)
	}

	p.logger.Info("publish finished", "published", published, "rows", t.Len())
	return published
}

// PublishAsync runs Publish in its own goroutine. The returned channel
// receives the published count and is closed once Publish has returned.
func (p *Pipeline) PublishAsync(ctx context.Context, t domain.Table) <-chan int {
	done := make(chan int, 1)
	go func() {
		defer close(done)
		done <- p.Publish(ctx, t)
	}()
	return done
}

// publishBatch retries one batch with exponential backoff.
func (p *Pipeline) publishBatch(ctx context.Context, batch []domain.Incident) bool {
	// Start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for attempt := 1; ; attempt++ {
		err := p.loader.LoadBatch(ctx, batch)
		if err == nil {
			p.metrics.IncidentsPublished.Add(float64(len(batch)))
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("publish batch failed", "error", err, "attempt", attempt, "batch_size", len(batch))
		if attempt == maxPublishAttempts {
			p.metrics.PublishErrors.Inc()
			return false
		}
		if !sleepWithContext(ctx, backoff) {
			return false
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
