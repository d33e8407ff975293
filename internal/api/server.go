// Package api serves pass predictions over HTTP for the daemon.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/skytrack/passpredict/internal/auth"
	"github.com/skytrack/passpredict/internal/health"
	"github.com/skytrack/passpredict/internal/metrics"
	"github.com/skytrack/passpredict/internal/passes"
	"github.com/skytrack/passpredict/internal/propagation"
	"github.com/skytrack/passpredict/internal/timesys"
	"github.com/skytrack/passpredict/internal/tle"
	"github.com/skytrack/passpredict/internal/transform"
)

const deg2rad = 3.14159265358979 / 180.0

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	store      *tle.Store
	orch       *propagation.Orchestrator
	logger     *slog.Logger
}

// NewServer creates a configured HTTP server.
func NewServer(addr string, logger *slog.Logger, authCfg auth.Config, store *tle.Store, orch *propagation.Orchestrator) *Server {
	s := &Server{store: store, orch: orch, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz(store))
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /api/v1/tle/metadata", s.handleTLEMetadata)
	mux.HandleFunc("GET /api/v1/passes", s.handlePasses)
	mux.HandleFunc("GET /api/v1/propagate", s.handlePropagate)

	// Middleware chain: metrics -> logging -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(authCfg)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = metrics.Middleware(handler)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// HTTPServer returns the underlying *http.Server for external control.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) handleTLEMetadata(w http.ResponseWriter, r *http.Request) {
	ds := s.store.Get()
	if ds == nil {
		writeError(w, http.StatusServiceUnavailable, "no TLE dataset loaded")
		return
	}
	writeJSON(w, map[string]any{
		"source":     ds.Source,
		"fetched_at": ds.FetchedAt.UTC().Format(time.RFC3339),
		"satellites": len(ds.Satellites),
		"epoch_min":  ds.EpochRange.Min.UTC().Format(time.RFC3339),
		"epoch_max":  ds.EpochRange.Max.UTC().Format(time.RFC3339),
	})
}

// passWindow is the JSON shape of a predicted pass.
type passWindow struct {
	Rise            time.Time `json:"rise"`
	Set             time.Time `json:"set"`
	Culmination     time.Time `json:"culmination"`
	DurationSeconds float64   `json:"duration_seconds"`
	MaxElevationDeg float64   `json:"max_elevation_deg"`
	RiseAzimuthDeg  float64   `json:"rise_azimuth_deg"`
	SetAzimuthDeg   float64   `json:"set_azimuth_deg"`
}

func (s *Server) handlePasses(w http.ResponseWriter, r *http.Request) {
	ds := s.store.Get()
	if ds == nil {
		writeError(w, http.StatusServiceUnavailable, "no TLE dataset loaded")
		return
	}

	q := r.URL.Query()

	catalog, err := strconv.Atoi(q.Get("catalog"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "catalog must be an integer")
		return
	}
	elem := ds.ByCatalog(catalog)
	if elem == nil {
		writeError(w, http.StatusNotFound, "catalog number not in dataset")
		return
	}

	lat, err1 := strconv.ParseFloat(q.Get("lat"), 64)
	lon, err2 := strconv.ParseFloat(q.Get("lon"), 64)
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "lat and lon are required, in degrees")
		return
	}
	alt := 0.0
	if v := q.Get("alt_m"); v != "" {
		if alt, err = strconv.ParseFloat(v, 64); err != nil {
			writeError(w, http.StatusBadRequest, "alt_m must be a number")
			return
		}
	}

	cfg := passes.DefaultConfig()
	cfg.StartJD = timesys.FromTime(time.Now().UTC())
	cfg.RefineSeconds = 1.0
	if v := q.Get("hours"); v != "" {
		hours, err := strconv.ParseFloat(v, 64)
		if err != nil || hours <= 0 || hours > 168 {
			writeError(w, http.StatusBadRequest, "hours must be in (0, 168]")
			return
		}
		cfg.DurationDays = hours / 24.0
	}
	if v := q.Get("min_elevation"); v != "" {
		minEl, err := strconv.ParseFloat(v, 64)
		if err != nil || minEl < 0 || minEl >= 90 {
			writeError(w, http.StatusBadRequest, "min_elevation must be in [0, 90) degrees")
			return
		}
		cfg.ElevationMaskRad = minEl * deg2rad
	}

	prop, err := propagation.NewFromElements(elem)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	site := transform.NewSite(lat*deg2rad, lon*deg2rad, alt)

	samples, err := passes.Predict(r.Context(), prop, site, cfg)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	windows := passes.Windows(samples, cfg.StepDays)
	out := make([]passWindow, 0, len(windows))
	for i := range windows {
		if err := passes.Refine(prop, site, &windows[i], cfg); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		win := &windows[i]
		out = append(out, passWindow{
			Rise:            win.Rise.Time.UTC(),
			Set:             win.Set.Time.UTC(),
			Culmination:     win.Culmination.Time.UTC(),
			DurationSeconds: win.Duration().Seconds(),
			MaxElevationDeg: win.Culmination.ElevationRad / deg2rad,
			RiseAzimuthDeg:  win.Rise.AzimuthRad / deg2rad,
			SetAzimuthDeg:   win.Set.AzimuthRad / deg2rad,
		})
	}

	writeJSON(w, map[string]any{
		"catalog": catalog,
		"passes":  out,
	})
}

// handlePropagate returns the ECEF state of every satellite in the dataset
// at the requested time (RFC 3339; default now).
func (s *Server) handlePropagate(w http.ResponseWriter, r *http.Request) {
	target := time.Now().UTC()
	if v := r.URL.Query().Get("time"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "time must be RFC 3339")
			return
		}
		target = t.UTC()
	}

	kf, err := s.orch.PropagateToTime(r.Context(), target)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	type state struct {
		Catalog  int        `json:"catalog"`
		Position [3]float64 `json:"position_ecef_m"`
		Velocity [3]float64 `json:"velocity_ecef_ms"`
	}
	out := make([]state, 0, len(kf.Satellites))
	for _, sat := range kf.Satellites {
		out = append(out, state{Catalog: sat.Catalog, Position: sat.PositionECEF, Velocity: sat.VelocityECEF})
	}
	writeJSON(w, map[string]any{
		"time":       kf.Timestamp.Format(time.RFC3339Nano),
		"jd":         kf.JD,
		"satellites": out,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

// probePath returns true for probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", r.RemoteAddr,
			)
		})
	}
}
