package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/skytrack/passpredict/internal/auth"
	"github.com/skytrack/passpredict/internal/propagation"
	"github.com/skytrack/passpredict/internal/tle"
)

const (
	issLine1 = "1 25544U 98067A   24075.50000000  .00002182  00000-0  40768-4 0  9991"
	issLine2 = "2 25544  51.6416  77.3721 0004537 150.2020 310.0000 15.50103472000003"
)

func testServer(t *testing.T, authCfg auth.Config) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	p := tle.Parser{Checksum: tle.ChecksumWarn, Logger: logger}
	elem, err := p.ParseRecord("ISS (ZARYA)", issLine1, issLine2)
	if err != nil {
		t.Fatal(err)
	}

	store := tle.NewStore()
	store.Set(&tle.Dataset{
		Source:     "test",
		FetchedAt:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		EpochRange: tle.EpochRange{Min: elem.Epoch(), Max: elem.Epoch()},
		Satellites: []tle.MeanElements{elem},
	})

	orch := propagation.NewOrchestrator(store, propagation.Config{Workers: 2}, logger)
	return NewServer(":0", logger, authCfg, store, orch)
}

func get(t *testing.T, srv *Server, url string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	if header != nil {
		req.Header = header
	}
	rec := httptest.NewRecorder()
	srv.HTTPServer().Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	srv := testServer(t, auth.Config{})

	if rec := get(t, srv, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("/healthz = %d", rec.Code)
	}
	if rec := get(t, srv, "/readyz", nil); rec.Code != http.StatusOK {
		t.Errorf("/readyz = %d", rec.Code)
	}
}

func TestTLEMetadata(t *testing.T) {
	srv := testServer(t, auth.Config{})

	rec := get(t, srv, "/api/v1/tle/metadata", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["satellites"] != float64(1) {
		t.Errorf("satellites = %v", body["satellites"])
	}
}

func TestPassesEndpoint(t *testing.T) {
	srv := testServer(t, auth.Config{})

	// Predictions start "now", which is far from the 2024 TLE epoch, but the
	// request must still return structurally valid JSON.
	rec := get(t, srv, "/api/v1/passes?catalog=25544&lat=32.656465&lon=110.745166&hours=6&min_elevation=10", nil)
	if rec.Code != http.StatusOK && rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec.Code == http.StatusOK {
		var body struct {
			Catalog int               `json:"catalog"`
			Passes  []json.RawMessage `json:"passes"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatal(err)
		}
		if body.Catalog != 25544 {
			t.Errorf("catalog = %d", body.Catalog)
		}
	}
}

func TestPassesEndpointValidation(t *testing.T) {
	srv := testServer(t, auth.Config{})

	tests := []struct {
		name string
		url  string
		code int
	}{
		{"missing catalog", "/api/v1/passes?lat=1&lon=2", http.StatusBadRequest},
		{"unknown catalog", "/api/v1/passes?catalog=999&lat=1&lon=2", http.StatusNotFound},
		{"missing site", "/api/v1/passes?catalog=25544", http.StatusBadRequest},
		{"bad hours", "/api/v1/passes?catalog=25544&lat=1&lon=2&hours=-3", http.StatusBadRequest},
		{"bad mask", "/api/v1/passes?catalog=25544&lat=1&lon=2&min_elevation=95", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := get(t, srv, tt.url, nil); rec.Code != tt.code {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.code, rec.Body.String())
			}
		})
	}
}

func TestPropagateEndpoint(t *testing.T) {
	srv := testServer(t, auth.Config{})

	rec := get(t, srv, "/api/v1/propagate?time=2024-03-15T12:30:00Z", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Satellites []struct {
			Catalog  int        `json:"catalog"`
			Position [3]float64 `json:"position_ecef_m"`
		} `json:"satellites"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Satellites) != 1 || body.Satellites[0].Catalog != 25544 {
		t.Fatalf("satellites = %+v", body.Satellites)
	}
}

func TestAuthMiddleware(t *testing.T) {
	srv := testServer(t, auth.Config{Enabled: true, Token: "sesame"})

	// Probe paths stay public.
	if rec := get(t, srv, "/healthz", nil); rec.Code != http.StatusOK {
		t.Errorf("/healthz with auth = %d", rec.Code)
	}

	if rec := get(t, srv, "/api/v1/tle/metadata", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated request = %d, want 401", rec.Code)
	}

	h := http.Header{}
	h.Set("Authorization", "Bearer sesame")
	if rec := get(t, srv, "/api/v1/tle/metadata", h); rec.Code != http.StatusOK {
		t.Errorf("authenticated request = %d, want 200", rec.Code)
	}

	h.Set("Authorization", "Bearer wrong")
	if rec := get(t, srv, "/api/v1/tle/metadata", h); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", rec.Code)
	}
}
