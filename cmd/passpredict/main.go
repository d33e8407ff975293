// Command passpredict predicts satellite passes over a ground station from a
// TLE file and writes the visible samples as a text table.
//
// Configuration comes from a config file (YAML/TOML, see -config) with flag
// overrides for the common fields. With no -output the table goes to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/spf13/viper"

	"github.com/skytrack/passpredict/internal/passes"
	"github.com/skytrack/passpredict/internal/propagation"
	"github.com/skytrack/passpredict/internal/tle"
	"github.com/skytrack/passpredict/internal/transform"
)

const deg2rad = math.Pi / 180.0

func main() {
	os.Exit(run())
}

func run() int {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	var (
		configPath = flag.String("config", "", "path to config file")
		tlePath    = flag.String("tle", "", "TLE file or URL (overrides config)")
		catalog    = flag.Int("catalog", 0, "NORAD catalog number; 0 predicts every satellite")
		outPath    = flag.String("output", "", "output file; default stdout")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return 1
	}
	if *tlePath != "" {
		cfg.TLESource = *tlePath
	}
	if *catalog != 0 {
		cfg.Catalog = *catalog
	}
	if cfg.TLESource == "" {
		logger.Error("no TLE source configured; pass -tle or set tle.source")
		return 1
	}

	parser := tle.Parser{Logger: logger}
	if cfg.ChecksumWarn {
		parser.Checksum = tle.ChecksumWarn
	}
	loader := tle.Loader{Parser: parser}

	ctx := context.Background()
	ds, err := loader.Load(ctx, cfg.TLESource)
	if err != nil {
		logger.Error("loading TLE data", "source", cfg.TLESource, "error", err)
		return 1
	}
	logger.Info("TLE data loaded", "source", ds.Source, "satellites", len(ds.Satellites))

	site := transform.NewSite(cfg.SiteLatDeg*deg2rad, cfg.SiteLonDeg*deg2rad, cfg.SiteHeightM)

	var props []*propagation.Propagator
	if cfg.Catalog != 0 {
		elem := ds.ByCatalog(cfg.Catalog)
		if elem == nil {
			logger.Error("catalog number not found in TLE data", "catalog", cfg.Catalog)
			return 1
		}
		prop, err := propagation.NewFromElements(elem)
		if err != nil {
			logger.Error("propagator init failed", "catalog", cfg.Catalog, "error", err)
			return 1
		}
		props = append(props, prop)
	} else {
		for i := range ds.Satellites {
			prop, err := propagation.NewFromElements(&ds.Satellites[i])
			if err != nil {
				logger.Warn("skipping satellite", "catalog", ds.Satellites[i].CatalogNumber, "error", err)
				continue
			}
			props = append(props, prop)
		}
		if len(props) == 0 {
			logger.Error("no usable satellites in TLE data")
			return 1
		}
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			logger.Error("creating output file", "path", *outPath, "error", err)
			return 1
		}
		defer f.Close()
		out = f
	}

	predCfg := passes.Config{
		StartJD:          cfg.StartJD,
		DurationDays:     cfg.DurationDays,
		StepDays:         cfg.StepDays,
		ElevationMaskRad: cfg.MaskDeg * deg2rad,
		RefineSeconds:    cfg.RefineSeconds,
	}

	failed := 0
	for _, prop := range props {
		samples, err := passes.Predict(ctx, prop, site, predCfg)
		if err != nil {
			logger.Error("prediction failed", "catalog", prop.Catalog(), "error", err)
			failed++
			continue
		}

		windows := passes.Windows(samples, predCfg.StepDays)
		for i := range windows {
			if err := passes.Refine(prop, site, &windows[i], predCfg); err != nil {
				logger.Warn("rise/set refinement failed", "catalog", prop.Catalog(), "error", err)
			}
		}
		logger.Info("prediction complete",
			"catalog", prop.Catalog(),
			"regime", prop.Regime().String(),
			"visible_samples", len(samples),
			"passes", len(windows),
		)

		if len(props) > 1 {
			fmt.Fprintf(out, "# catalog %d\n", prop.Catalog())
		}
		if err := passes.WriteTable(out, samples); err != nil {
			logger.Error("writing output", "error", err)
			return 1
		}
	}

	if failed == len(props) {
		return 1
	}
	return 0
}

// config is the resolved CLI configuration.
type config struct {
	TLESource    string
	Catalog      int
	ChecksumWarn bool

	SiteLatDeg  float64
	SiteLonDeg  float64
	SiteHeightM float64

	StartJD       float64
	DurationDays  float64
	StepDays      float64
	MaskDeg       float64
	RefineSeconds float64
}

// loadConfig reads the config file (if any). Defaults: start at the TLE
// epoch, one day at one-minute steps, no elevation mask.
func loadConfig(path string) (config, error) {
	v := viper.New()
	v.SetDefault("tle.source", "")
	v.SetDefault("tle.checksum", "strict")
	v.SetDefault("catalog", 0)
	v.SetDefault("site.latitude_deg", 0.0)
	v.SetDefault("site.longitude_deg", 0.0)
	v.SetDefault("site.height_m", 0.0)
	v.SetDefault("prediction.start_jd", 0.0)
	v.SetDefault("prediction.duration_days", 1.0)
	v.SetDefault("prediction.step_days", 1.0/1440.0)
	v.SetDefault("prediction.elevation_mask_deg", 0.0)
	v.SetDefault("prediction.refine_seconds", 0.0)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	checksum := v.GetString("tle.checksum")
	if checksum != "strict" && checksum != "warn" {
		return config{}, fmt.Errorf("tle.checksum must be \"strict\" or \"warn\", got %q", checksum)
	}

	cfg := config{
		TLESource:     v.GetString("tle.source"),
		Catalog:       v.GetInt("catalog"),
		ChecksumWarn:  checksum == "warn",
		SiteLatDeg:    v.GetFloat64("site.latitude_deg"),
		SiteLonDeg:    v.GetFloat64("site.longitude_deg"),
		SiteHeightM:   v.GetFloat64("site.height_m"),
		StartJD:       v.GetFloat64("prediction.start_jd"),
		DurationDays:  v.GetFloat64("prediction.duration_days"),
		StepDays:      v.GetFloat64("prediction.step_days"),
		MaskDeg:       v.GetFloat64("prediction.elevation_mask_deg"),
		RefineSeconds: v.GetFloat64("prediction.refine_seconds"),
	}

	if cfg.SiteLatDeg < -90.0 || cfg.SiteLatDeg > 90.0 {
		return config{}, fmt.Errorf("site.latitude_deg %.4f out of range", cfg.SiteLatDeg)
	}
	if cfg.DurationDays <= 0.0 {
		return config{}, fmt.Errorf("prediction.duration_days must be positive")
	}
	if cfg.StepDays <= 0.0 {
		return config{}, fmt.Errorf("prediction.step_days must be positive")
	}
	return cfg, nil
}
