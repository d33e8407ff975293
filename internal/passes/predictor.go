// Package passes predicts when satellites are visible from a ground site.
//
// The predictor samples the prediction window at a fixed step, propagates,
// rotates into ECEF, and keeps the samples whose elevation clears the mask.
// Contiguous visible samples group into pass windows; rise and set times can
// optionally be refined by bisection.
package passes

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/skytrack/passpredict/internal/metrics"
	"github.com/skytrack/passpredict/internal/propagation"
	"github.com/skytrack/passpredict/internal/timesys"
	"github.com/skytrack/passpredict/internal/transform"
)

// Config controls a prediction run.
type Config struct {
	StartJD          float64 // UTC Julian Date to begin; 0 means TLE epoch
	DurationDays     float64 // span of prediction
	StepDays         float64 // sampling interval
	ElevationMaskRad float64 // minimum elevation to emit

	// RefineSeconds, when positive, bisects each window's rise and set
	// crossings down to this resolution.
	RefineSeconds float64
}

// DefaultConfig returns the standard one-day, one-minute scan.
func DefaultConfig() Config {
	return Config{
		StartJD:          0.0,
		DurationDays:     1.0,
		StepDays:         1.0 / 1440.0,
		ElevationMaskRad: 0.0,
	}
}

// Sample is one visible epoch.
type Sample struct {
	JD           float64
	Time         time.Time
	AzimuthRad   float64
	ElevationRad float64
	RangeM       float64
}

// Window is a contiguous run of visible samples: one pass over the site.
type Window struct {
	Rise        Sample
	Culmination Sample
	Set         Sample
	Samples     []Sample
}

// Duration returns the window length.
func (w *Window) Duration() time.Duration {
	return time.Duration((w.Set.JD - w.Rise.JD) * 86400.0 * float64(time.Second))
}

// Predict runs the sampling loop for a single satellite and returns every
// sample whose elevation exceeds the mask. A propagator fault terminates
// prediction for this satellite and is returned with the samples gathered so
// far discarded.
func Predict(ctx context.Context, prop *propagation.Propagator, site transform.Site, cfg Config) ([]Sample, error) {
	startJD := cfg.StartJD
	if startJD == 0.0 {
		startJD = prop.EpochJD()
	}
	endJD := startJD + cfg.DurationDays
	step := cfg.StepDays
	if step <= 0.0 {
		step = 1.0 / 1440.0
	}

	metrics.RecordPassPrediction()

	var samples []Sample
	n := 0
	for jd := startJD; jd < endJD; jd = startJD + float64(n)*step {
		n++
		if err := ctx.Err(); err != nil {
			return samples, err
		}

		obs, err := observe(prop, site, jd)
		if err != nil {
			return nil, fmt.Errorf("prediction aborted at JD %.6f: %w", jd, err)
		}

		if obs.ElevationRad > cfg.ElevationMaskRad {
			samples = append(samples, obs)
		}
	}

	return samples, nil
}

// Windows groups samples into passes. Samples more than 1.5 steps apart
// start a new window.
func Windows(samples []Sample, stepDays float64) []Window {
	if len(samples) == 0 {
		return nil
	}

	gap := 1.5 * stepDays
	var windows []Window
	start := 0
	for i := 1; i <= len(samples); i++ {
		if i == len(samples) || samples[i].JD-samples[i-1].JD > gap {
			windows = append(windows, makeWindow(samples[start:i]))
			start = i
		}
	}
	return windows
}

func makeWindow(samples []Sample) Window {
	w := Window{
		Rise:    samples[0],
		Set:     samples[len(samples)-1],
		Samples: samples,
	}
	w.Culmination = samples[0]
	for _, s := range samples[1:] {
		if s.ElevationRad > w.Culmination.ElevationRad {
			w.Culmination = s
		}
	}
	return w
}

// Refine tightens a window's rise and set times by bisecting the mask
// crossing on each side, down to cfg.RefineSeconds. The window's sample list
// is left at the scan resolution; only Rise and Set move.
func Refine(prop *propagation.Propagator, site transform.Site, w *Window, cfg Config) error {
	if cfg.RefineSeconds <= 0.0 {
		return nil
	}
	resDays := cfg.RefineSeconds / 86400.0

	rise, err := bisectCrossing(prop, site, w.Rise.JD-cfg.StepDays, w.Rise.JD, cfg.ElevationMaskRad, resDays)
	if err != nil {
		return err
	}
	w.Rise = rise

	set, err := bisectCrossing(prop, site, w.Set.JD+cfg.StepDays, w.Set.JD, cfg.ElevationMaskRad, resDays)
	if err != nil {
		return err
	}
	w.Set = set
	return nil
}

// bisectCrossing finds the mask crossing between a below-mask epoch and an
// above-mask epoch. The returned sample is the above-mask endpoint of the
// final bracket.
func bisectCrossing(prop *propagation.Propagator, site transform.Site, belowJD, aboveJD, mask, resDays float64) (Sample, error) {
	above, err := observe(prop, site, aboveJD)
	if err != nil {
		return Sample{}, err
	}
	for math.Abs(aboveJD-belowJD) > resDays {
		midJD := 0.5 * (belowJD + aboveJD)
		mid, err := observe(prop, site, midJD)
		if err != nil {
			return Sample{}, err
		}
		if mid.ElevationRad > mask {
			aboveJD = midJD
			above = mid
		} else {
			belowJD = midJD
		}
	}
	return above, nil
}

// observe propagates to jd and reduces the state to a topocentric sample.
func observe(prop *propagation.Propagator, site transform.Site, jd float64) (Sample, error) {
	teme, err := prop.PropagateJD(jd)
	if err != nil {
		return Sample{}, err
	}
	ecef := transform.TEMEToECEF(teme, jd)
	obs := transform.LookAngles(site, ecef.X, ecef.Y, ecef.Z)

	t, err := timesys.ToTime(jd)
	if err != nil {
		return Sample{}, err
	}

	return Sample{
		JD:           jd,
		Time:         t,
		AzimuthRad:   obs.AzimuthRad,
		ElevationRad: obs.ElevationRad,
		RangeM:       obs.RangeM,
	}, nil
}

// SatellitePasses holds one satellite's prediction outcome.
type SatellitePasses struct {
	Catalog int
	Windows []Window
	Err     error
}

// PredictAll fans the prediction out across satellites, one goroutine per
// satellite bounded by a semaphore. Each Propagator is owned by exactly one
// goroutine for the duration of its prediction.
func PredictAll(ctx context.Context, props []*propagation.Propagator, site transform.Site, cfg Config) []SatellitePasses {
	results := make([]SatellitePasses, len(props))
	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup

	for i, prop := range props {
		wg.Add(1)
		go func(idx int, prop *propagation.Propagator) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = SatellitePasses{Catalog: prop.Catalog(), Err: ctx.Err()}
				return
			}

			samples, err := Predict(ctx, prop, site, cfg)
			if err != nil {
				results[idx] = SatellitePasses{Catalog: prop.Catalog(), Err: err}
				return
			}
			windows := Windows(samples, cfg.StepDays)
			if cfg.RefineSeconds > 0.0 {
				for w := range windows {
					if err := Refine(prop, site, &windows[w], cfg); err != nil {
						results[idx] = SatellitePasses{Catalog: prop.Catalog(), Err: err}
						return
					}
				}
			}
			results[idx] = SatellitePasses{Catalog: prop.Catalog(), Windows: windows}
		}(i, prop)
	}

	wg.Wait()
	return results
}
