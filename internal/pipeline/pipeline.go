package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/couchcryptid/water-quality-etl/internal/domain"
	"github.com/couchcryptid/water-quality-etl/internal/observability"
)

// ErrRunInProgress is returned when Run is called while another run is active.
var ErrRunInProgress = errors.New("pipeline run already in progress")

// Extractor reads every raw survey row from the source.
type Extractor interface {
	Extract(ctx context.Context) ([]domain.RawRecord, error)
	Source() string
}

// Transformer cleans raw rows into classified records.
type Transformer interface {
	Transform(ctx context.Context, raws []domain.RawRecord, summary *domain.RunSummary) ([]domain.Record, error)
}

// Loader persists the cleaned dataset, replacing any previous artifact.
type Loader interface {
	Load(ctx context.Context, records []domain.Record) error
	Destination() string
}

// Publisher announces a completed run, e.g. by mirroring the artifact or
// emitting a notification. Failures never fail the run.
type Publisher interface {
	Publish(ctx context.Context, summary domain.RunSummary) error
	Name() string
}

// Publish retry schedule.
const (
	publishAttempts   = 3
	publishBackoff    = 200 * time.Millisecond
	publishMaxBackoff = 2 * time.Second
)

// Pipeline orchestrates one extract-transform-load run over the survey file.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loader      Loader
	publishers  []Publisher
	locality    string
	logger      *slog.Logger
	metrics     *observability.Metrics

	runMu sync.Mutex
	ready atomic.Bool

	lastMu  sync.RWMutex
	last    domain.RunSummary
	hasLast bool
}

// New creates a Pipeline with the given stages and observability.
// locality is recorded on run summaries.
func New(e Extractor, t Transformer, l Loader, locality string, logger *slog.Logger, metrics *observability.Metrics, publishers ...Publisher) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		publishers:  publishers,
		locality:    locality,
		logger:      logger,
		metrics:     metrics,
	}
}

// CheckReadiness returns nil once a run has completed successfully,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not completed a run yet")
	}
	return nil
}

// LastRun returns the summary of the most recent successful run.
func (p *Pipeline) LastRun() (domain.RunSummary, bool) {
	p.lastMu.RLock()
	defer p.lastMu.RUnlock()
	return p.last, p.hasLast
}

// Run executes a single extract-transform-load pass. Fatal errors leave any
// previous artifact untouched. Runs never overlap: a concurrent call returns
// ErrRunInProgress.
func (p *Pipeline) Run(ctx context.Context) (domain.RunSummary, error) {
	if !p.runMu.TryLock() {
		return domain.RunSummary{}, ErrRunInProgress
	}
	defer p.runMu.Unlock()

	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	summary := domain.StartRun(p.extractor.Source(), p.loader.Destination(), p.locality)
	logger := p.logger.With("run_id", summary.ID)
	logger.Info("pipeline run started", "source", summary.Source, "locality", summary.Locality)

	records, err := p.extractAndTransform(ctx, &summary)
	if err != nil {
		return p.fail(logger, summary, err)
	}

	if err := p.loader.Load(ctx, records); err != nil {
		return p.fail(logger, summary, fmt.Errorf("load: %w", err))
	}

	summary = summary.Finish(records)
	p.recordSuccess(summary)
	logger.Info("pipeline run finished",
		"rows_read", summary.RowsRead,
		"rows_written", summary.RowsWritten,
		"dropped_date", summary.DroppedDate,
		"dropped_locality", summary.DroppedLocality,
		"dropped_coordinate", summary.DroppedCoordinate,
		"dropped_geofence", summary.DroppedGeofence,
		"imputed", summary.Imputed,
		"approved", summary.Approved,
		"rejected", summary.Rejected,
		"artifact", summary.Artifact,
		"duration", summary.Duration(),
	)

	p.publish(ctx, logger, summary)
	return summary, nil
}

func (p *Pipeline) extractAndTransform(ctx context.Context, summary *domain.RunSummary) ([]domain.Record, error) {
	raws, err := p.extractor.Extract(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := p.transformer.Transform(ctx, raws, summary)
	if err != nil {
		return nil, fmt.Errorf("transform: %w", err)
	}
	return records, nil
}

func (p *Pipeline) fail(logger *slog.Logger, summary domain.RunSummary, err error) (domain.RunSummary, error) {
	p.metrics.RunsTotal.WithLabelValues("failed").Inc()
	logger.Error("pipeline run failed", "error", err, "rows_read", summary.RowsRead)
	return summary, err
}

func (p *Pipeline) recordSuccess(summary domain.RunSummary) {
	p.metrics.RunsTotal.WithLabelValues("success").Inc()
	p.metrics.RowsWritten.Add(float64(summary.RowsWritten))
	p.metrics.RunDuration.Observe(summary.Duration().Seconds())
	p.metrics.LastSuccess.Set(float64(summary.FinishedAt.Unix()))
	for param, n := range summary.Violations {
		p.metrics.Violations.WithLabelValues(string(param)).Add(float64(n))
	}

	p.lastMu.Lock()
	p.last, p.hasLast = summary, true
	p.lastMu.Unlock()
	p.ready.Store(true)
}

// publish hands the summary to every publisher, retrying transient failures
// with exponential backoff. The artifact already exists, so errors are only logged.
func (p *Pipeline) publish(ctx context.Context, logger *slog.Logger, summary domain.RunSummary) {
	for _, pub := range p.publishers {
		backoff := publishBackoff
		var err error
		for attempt := 1; attempt <= publishAttempts; attempt++ {
			if err = pub.Publish(ctx, summary); err == nil {
				break
			}
			if attempt == publishAttempts || !retry.SleepWithContext(ctx, backoff) {
				break
			}
			backoff = retry.NextBackoff(backoff, publishMaxBackoff)
		}
		if err != nil {
			p.metrics.PublishErrors.WithLabelValues(pub.Name()).Inc()
			logger.Warn("publish failed", "publisher", pub.Name(), "error", err)
			continue
		}
		logger.Debug("run published", "publisher", pub.Name())
	}
}
