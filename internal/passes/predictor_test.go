package passes

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/skytrack/passpredict/internal/propagation"
	"github.com/skytrack/passpredict/internal/tle"
	"github.com/skytrack/passpredict/internal/transform"
)

const (
	issLine1 = "1 25544U 98067A   24075.50000000  .00002182  00000-0  40768-4 0  9991"
	issLine2 = "2 25544  51.6416  77.3721 0004537 150.2020 310.0000 15.50103472000003"

	deg2rad = math.Pi / 180.0
)

func issProp(t *testing.T) *propagation.Propagator {
	t.Helper()
	p := tle.Parser{Checksum: tle.ChecksumWarn}
	elem, err := p.ParseRecord("ISS (ZARYA)", issLine1, issLine2)
	if err != nil {
		t.Fatal(err)
	}
	prop, err := propagation.NewFromElements(&elem)
	if err != nil {
		t.Fatal(err)
	}
	return prop
}

// testSite is the reference ground station of the visibility scenario.
func testSite() transform.Site {
	return transform.NewSite(32.656465*deg2rad, 110.745166*deg2rad, 0.0)
}

// TestPredictVisibilityScenario runs the ISS over the reference site for one
// day at 60-second steps with a 10° mask and checks the emitted pass
// structure: a handful of windows, each 30 s – 12 min long with elevation
// rising monotonically to culmination and falling after it.
func TestPredictVisibilityScenario(t *testing.T) {
	prop := issProp(t)
	site := testSite()

	cfg := Config{
		StartJD:          0.0, // TLE epoch
		DurationDays:     1.0,
		StepDays:         60.0 / 86400.0,
		ElevationMaskRad: 10.0 * deg2rad,
	}

	samples, err := Predict(context.Background(), prop, site, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) == 0 {
		t.Fatal("no visible samples emitted")
	}

	for _, s := range samples {
		if s.ElevationRad <= cfg.ElevationMaskRad {
			t.Fatalf("sample at JD %.6f below mask: %.4f°", s.JD, s.ElevationRad/deg2rad)
		}
		if s.AzimuthRad < 0.0 || s.AzimuthRad >= 2.0*math.Pi {
			t.Fatalf("azimuth %.6f outside [0, 2π)", s.AzimuthRad)
		}
	}

	windows := Windows(samples, cfg.StepDays)
	if len(windows) < 2 || len(windows) > 8 {
		t.Fatalf("got %d pass windows, want a handful (2–8)", len(windows))
	}

	for i, w := range windows {
		dur := w.Duration() + time.Minute // endpoint samples, inclusive span
		if dur < 30*time.Second || dur > 12*time.Minute {
			t.Errorf("window %d duration %v outside [30s, 12m]", i, dur)
		}

		// Elevation must rise to the culmination, then fall.
		peak := 0
		for j, s := range w.Samples {
			if s.ElevationRad > w.Samples[peak].ElevationRad {
				peak = j
			}
		}
		for j := 1; j <= peak; j++ {
			if w.Samples[j].ElevationRad < w.Samples[j-1].ElevationRad {
				t.Errorf("window %d: elevation dipped before culmination at sample %d", i, j)
			}
		}
		for j := peak + 1; j < len(w.Samples); j++ {
			if w.Samples[j].ElevationRad > w.Samples[j-1].ElevationRad {
				t.Errorf("window %d: elevation rose after culmination at sample %d", i, j)
			}
		}
	}
}

func TestPredictMaskFiltering(t *testing.T) {
	prop := issProp(t)
	site := testSite()

	base := Config{DurationDays: 1.0, StepDays: 60.0 / 86400.0}

	masked := base
	masked.ElevationMaskRad = 10.0 * deg2rad

	all, err := Predict(context.Background(), prop, site, base)
	if err != nil {
		t.Fatal(err)
	}
	high, err := Predict(context.Background(), prop, site, masked)
	if err != nil {
		t.Fatal(err)
	}

	if len(high) >= len(all) {
		t.Errorf("mask did not reduce samples: %d vs %d", len(high), len(all))
	}
}

func TestPredictStartJDDefaultsToEpoch(t *testing.T) {
	prop := issProp(t)
	cfg := Config{DurationDays: 0.01, StepDays: 1.0 / 1440.0, ElevationMaskRad: -math.Pi / 2.0}

	samples, err := Predict(context.Background(), prop, testSite(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) == 0 {
		t.Fatal("no samples")
	}
	if math.Abs(samples[0].JD-prop.EpochJD()) > 1e-9 {
		t.Errorf("first sample JD %.9f, want TLE epoch %.9f", samples[0].JD, prop.EpochJD())
	}
}

func TestWindowsGrouping(t *testing.T) {
	step := 60.0 / 86400.0
	mk := func(jd, elDeg float64) Sample {
		return Sample{JD: jd, ElevationRad: elDeg * deg2rad}
	}

	samples := []Sample{
		mk(100.0, 11), mk(100.0+step, 25), mk(100.0+2*step, 12),
		// 30-minute gap: a new pass.
		mk(100.021, 15), mk(100.021+step, 18),
	}

	windows := Windows(samples, step)
	if len(windows) != 2 {
		t.Fatalf("got %d windows, want 2", len(windows))
	}
	if windows[0].Culmination.ElevationRad != 25*deg2rad {
		t.Errorf("window 0 culmination = %.1f°", windows[0].Culmination.ElevationRad/deg2rad)
	}
	if len(windows[0].Samples) != 3 || len(windows[1].Samples) != 2 {
		t.Errorf("window sizes %d/%d, want 3/2", len(windows[0].Samples), len(windows[1].Samples))
	}
	if Windows(nil, step) != nil {
		t.Error("Windows(nil) should be nil")
	}
}

// TestRefine tightens rise and set with bisection and verifies the refined
// crossings stay above the mask and move earlier/later than the coarse scan.
func TestRefine(t *testing.T) {
	prop := issProp(t)
	site := testSite()

	cfg := Config{
		DurationDays:     1.0,
		StepDays:         60.0 / 86400.0,
		ElevationMaskRad: 10.0 * deg2rad,
		RefineSeconds:    1.0,
	}

	samples, err := Predict(context.Background(), prop, site, cfg)
	if err != nil {
		t.Fatal(err)
	}
	windows := Windows(samples, cfg.StepDays)
	if len(windows) == 0 {
		t.Fatal("no windows to refine")
	}

	w := windows[0]
	coarseRise := w.Rise.JD
	coarseSet := w.Set.JD

	if err := Refine(prop, site, &w, cfg); err != nil {
		t.Fatal(err)
	}

	if w.Rise.JD > coarseRise || coarseRise-w.Rise.JD > cfg.StepDays {
		t.Errorf("refined rise %.8f not within one step before coarse rise %.8f", w.Rise.JD, coarseRise)
	}
	if w.Set.JD < coarseSet || w.Set.JD-coarseSet > cfg.StepDays {
		t.Errorf("refined set %.8f not within one step after coarse set %.8f", w.Set.JD, coarseSet)
	}
	if w.Rise.ElevationRad <= cfg.ElevationMaskRad {
		t.Errorf("refined rise elevation %.4f° below mask", w.Rise.ElevationRad/deg2rad)
	}
	if w.Set.ElevationRad <= cfg.ElevationMaskRad {
		t.Errorf("refined set elevation %.4f° below mask", w.Set.ElevationRad/deg2rad)
	}
}

func TestPredictAll(t *testing.T) {
	props := []*propagation.Propagator{issProp(t), issProp(t)}

	cfg := Config{
		DurationDays:     0.5,
		StepDays:         60.0 / 86400.0,
		ElevationMaskRad: 5.0 * deg2rad,
	}

	results := PredictAll(context.Background(), props, testSite(), cfg)
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	for i, res := range results {
		if res.Err != nil {
			t.Fatalf("result %d: %v", i, res.Err)
		}
		if res.Catalog != 25544 {
			t.Errorf("result %d catalog = %d", i, res.Catalog)
		}
	}
	// Identical inputs must give identical windows.
	if len(results[0].Windows) != len(results[1].Windows) {
		t.Errorf("window counts differ: %d vs %d", len(results[0].Windows), len(results[1].Windows))
	}
}

func TestWriteTable(t *testing.T) {
	samples := []Sample{
		{
			JD:           2460385.5000000000,
			Time:         time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC),
			AzimuthRad:   180.0 * deg2rad,
			ElevationRad: 42.1234 * deg2rad,
			RangeM:       850000.0,
		},
	}

	var sb strings.Builder
	if err := WriteTable(&sb, samples); err != nil {
		t.Fatal(err)
	}
	out := sb.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header + 1 row:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "JulianDate") {
		t.Errorf("missing header: %q", lines[0])
	}
	row := lines[1]
	for _, want := range []string{"2460385.5000000000", "2024", "42.1234", "180.0000"} {
		if !strings.Contains(row, want) {
			t.Errorf("row %q missing %q", row, want)
		}
	}
}

func TestWriteWindows(t *testing.T) {
	w := Window{
		Rise: Sample{JD: 2460385.0, Time: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)},
		Set:  Sample{JD: 2460385.0 + 300.0/86400.0, Time: time.Date(2024, 3, 15, 12, 5, 0, 0, time.UTC)},
		Culmination: Sample{
			JD: 2460385.0 + 150.0/86400.0, ElevationRad: 60.0 * deg2rad, AzimuthRad: 90.0 * deg2rad,
		},
	}

	var sb strings.Builder
	if err := WriteWindows(&sb, []Window{w}); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	for _, want := range []string{"2024-03-15 12:00:00", "2024-03-15 12:05:00", "60.0000"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
