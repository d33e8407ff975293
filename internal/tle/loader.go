package tle

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// Loader reads a TLE dataset from a local file or an HTTP(S) URL.
type Loader struct {
	Parser     Parser
	HTTPClient *http.Client
}

// Load reads the named source into a Dataset. Sources beginning with
// "http://" or "https://" are fetched over the network; everything else is
// treated as a file path. Records that fail to parse are skipped with a
// warning, matching the per-record error policy.
func (l *Loader) Load(ctx context.Context, source string) (*Dataset, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, err = l.fetch(ctx, source)
	} else {
		data, err = os.ReadFile(source)
		if err != nil {
			err = fmt.Errorf("reading TLE file: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}

	elements, parseErrs, err := l.Parser.ParseAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		if len(parseErrs) > 0 {
			return nil, fmt.Errorf("no valid TLE records in %s (first error: %w)", source, parseErrs[0])
		}
		return nil, fmt.Errorf("no TLE records in %s", source)
	}

	logger := l.Parser.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(parseErrs) > 0 {
		logger.Warn("TLE source contained bad records",
			"source", source,
			"good", len(elements),
			"bad", len(parseErrs),
		)
	}

	ds := &Dataset{
		Source:     source,
		FetchedAt:  time.Now().UTC(),
		Satellites: elements,
	}
	ds.EpochRange.Min = elements[0].Epoch()
	ds.EpochRange.Max = ds.EpochRange.Min
	for i := 1; i < len(elements); i++ {
		epoch := elements[i].Epoch()
		if epoch.Before(ds.EpochRange.Min) {
			ds.EpochRange.Min = epoch
		}
		if epoch.After(ds.EpochRange.Max) {
			ds.EpochRange.Max = epoch
		}
	}
	return ds, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	client := l.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching TLE data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}
