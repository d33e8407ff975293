package propagation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/skytrack/passpredict/internal/metrics"
	"github.com/skytrack/passpredict/internal/timesys"
	"github.com/skytrack/passpredict/internal/tle"
)

// propCache holds preinitialized propagators for a specific TLE dataset.
// Immutable after construction; safe for concurrent reads. The contained
// Propagators are only handed out one batch at a time through the pool.
type propCache struct {
	props     []*Propagator
	fetchedAt time.Time
}

// Orchestrator drives keyframe generation across whole TLE datasets.
type Orchestrator struct {
	store   *tle.Store
	pool    *WorkerPool
	config  Config
	logger  *slog.Logger
	cache   atomic.Pointer[propCache]
	cacheMu sync.Mutex // serializes cache rebuilds
	batchMu sync.Mutex // serializes batches over the cached propagators
}

// NewOrchestrator creates a batch-propagation orchestrator.
func NewOrchestrator(store *tle.Store, config Config, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		store:  store,
		pool:   NewWorkerPool(config.Workers, logger),
		config: config,
		logger: logger,
	}
}

// cachedProps returns preinitialized propagators for the given dataset,
// rebuilding the cache if the dataset has changed (double-checked locking).
func (o *Orchestrator) cachedProps(ds *tle.Dataset) []*Propagator {
	if c := o.cache.Load(); c != nil && c.fetchedAt.Equal(ds.FetchedAt) {
		return c.props
	}

	o.cacheMu.Lock()
	defer o.cacheMu.Unlock()

	if c := o.cache.Load(); c != nil && c.fetchedAt.Equal(ds.FetchedAt) {
		return c.props
	}

	props := make([]*Propagator, 0, len(ds.Satellites))
	seen := make(map[int]bool, len(ds.Satellites))
	var skipped int
	for i := range ds.Satellites {
		elem := &ds.Satellites[i]
		if seen[elem.CatalogNumber] {
			continue
		}
		sp, err := NewFromElements(elem)
		if err != nil {
			o.logger.Warn("propagator init failed", "catalog", elem.CatalogNumber, "error", err)
			skipped++
			continue
		}
		seen[elem.CatalogNumber] = true
		props = append(props, sp)
	}

	o.logger.Info("propagator cache rebuilt",
		"cached", len(props),
		"skipped", skipped,
		"dataset_fetched_at", ds.FetchedAt.UTC().Format(time.RFC3339),
	)
	o.cache.Store(&propCache{props: props, fetchedAt: ds.FetchedAt})
	return props
}

// PropagateToTime generates a single keyframe at the given target time
// using the current TLE dataset from the store.
func (o *Orchestrator) PropagateToTime(ctx context.Context, targetTime time.Time) (*Keyframe, error) {
	ds := o.store.Get()
	if ds == nil {
		return nil, fmt.Errorf("no TLE dataset loaded")
	}

	props := o.cachedProps(ds)
	jd := timesys.FromTime(targetTime)

	o.logger.Debug("propagating",
		"satellite_count", len(props),
		"target_time", targetTime.UTC().Format(time.RFC3339),
		"workers", o.config.Workers,
	)

	o.batchMu.Lock()
	start := time.Now()
	states, successCount, errorCount := o.pool.PropagateBatch(ctx, props, jd)
	duration := time.Since(start)
	o.batchMu.Unlock()

	metrics.RecordPropagation(duration, successCount, errorCount)

	o.logger.Debug("propagation complete",
		"success", successCount,
		"errors", errorCount,
		"duration_ms", duration.Milliseconds(),
	)

	return &Keyframe{
		Timestamp:  targetTime,
		JD:         jd,
		Satellites: states,
	}, nil
}

// GenerateKeyframes generates keyframes from startTime over the configured
// horizon at the configured step interval.
func (o *Orchestrator) GenerateKeyframes(ctx context.Context, startTime time.Time) ([]*Keyframe, error) {
	if o.store.Get() == nil {
		return nil, fmt.Errorf("no TLE dataset loaded")
	}

	numFrames := int(o.config.Horizon/o.config.Step) + 1
	keyframes := make([]*Keyframe, 0, numFrames)

	for i := 0; i < numFrames; i++ {
		select {
		case <-ctx.Done():
			return keyframes, ctx.Err()
		default:
		}

		targetTime := startTime.Add(time.Duration(i) * o.config.Step)
		kf, err := o.PropagateToTime(ctx, targetTime)
		if err != nil {
			return keyframes, fmt.Errorf("keyframe %d at %s: %w", i, targetTime.Format(time.RFC3339), err)
		}
		keyframes = append(keyframes, kf)
	}

	return keyframes, nil
}
