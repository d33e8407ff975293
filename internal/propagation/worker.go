package propagation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/skytrack/passpredict/internal/transform"
)

// propagateJob is a unit of work for the worker pool.
type propagateJob struct {
	prop *Propagator
	jd   float64
	gmst float64 // precomputed GMST for the target instant
}

// propagateResult is the output of a single satellite propagation.
type propagateResult struct {
	state   SatelliteState
	err     error
	catalog int
}

// WorkerPool manages a fixed number of goroutines for parallel propagation.
// Each satellite's Propagator is handed to exactly one worker per batch, so
// the deep-space integrator state is never touched concurrently.
type WorkerPool struct {
	workers int
	logger  *slog.Logger
}

// NewWorkerPool creates a worker pool with the given number of workers.
func NewWorkerPool(workers int, logger *slog.Logger) *WorkerPool {
	return &WorkerPool{
		workers: workers,
		logger:  logger,
	}
}

// PropagateBatch propagates all satellites to the target Julian Date and
// rotates the states into ECEF. Failed satellites are logged and skipped;
// the success and failure counts are returned alongside the states.
func (wp *WorkerPool) PropagateBatch(ctx context.Context, props []*Propagator, jd float64) ([]SatelliteState, int, int) {
	if len(props) == 0 {
		return nil, 0, 0
	}

	// GMST is the same for every satellite in the batch.
	gmst := transform.GMST(jd)

	jobs := make(chan propagateJob, wp.workers*2)
	results := make(chan propagateResult, wp.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < wp.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				result := propagateSingle(job)
				select {
				case results <- result:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, prop := range props {
			job := propagateJob{prop: prop, jd: jd, gmst: gmst}
			select {
			case jobs <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	states := make([]SatelliteState, 0, len(props))
	var successCount, errorCount int

	for result := range results {
		if result.err != nil {
			errorCount++
			wp.logger.Warn("propagation failed",
				"catalog", result.catalog,
				"error", result.err,
			)
			continue
		}
		successCount++
		states = append(states, result.state)
	}

	return states, successCount, errorCount
}

// propagateSingle runs one satellite to the target time and transforms the
// state to ECEF.
func propagateSingle(job propagateJob) propagateResult {
	teme, err := job.prop.PropagateJD(job.jd)
	if err != nil {
		return propagateResult{catalog: job.prop.Catalog(), err: err}
	}

	ecef := transform.TEMEToECEFWithGMST(teme, job.gmst)
	if !transform.ValidateECEF(ecef) {
		return propagateResult{
			catalog: job.prop.Catalog(),
			err: fmt.Errorf("catalog %d: unreasonable ECEF state at JD %.6f", job.prop.Catalog(), job.jd),
		}
	}

	return propagateResult{
		catalog: job.prop.Catalog(),
		state: SatelliteState{
			Catalog:      job.prop.Catalog(),
			PositionECEF: [3]float64{ecef.X, ecef.Y, ecef.Z},
			VelocityECEF: [3]float64{ecef.VX, ecef.VY, ecef.VZ},
		},
	}
}
