package matrix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hamk-uas/logistics-sim/sim"
)

// ORSProvider fetches matrices from the OpenRouteService /v2/matrix endpoint.
// Large location sets are split into BlockSize×BlockSize requests.
type ORSProvider struct {
	baseURL    string
	profile    string
	apiKey     string
	blockSize  int
	maxRetries int
	backoff    time.Duration
	session    *http.Client
}

// NewORSProvider validates cfg and returns a provider using apiKey.
func NewORSProvider(apiKey string, cfg sim.ORSConfig) (*ORSProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("ORS API key is required (set %s)", cfg.APIKeyEnv)
	}
	if cfg.BlockSize <= 0 {
		return nil, fmt.Errorf("ORS block size must be positive, got %d", cfg.BlockSize)
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openrouteservice.org"
	}
	profile := cfg.Profile
	if profile == "" {
		profile = "driving-car"
	}
	return &ORSProvider{
		baseURL:    baseURL,
		profile:    profile,
		apiKey:     apiKey,
		blockSize:  cfg.BlockSize,
		maxRetries: max(cfg.MaxRetries, 0),
		backoff:    200 * time.Millisecond,
		session:    &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Sources      []int       `json:"sources"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// Matrix implements Provider.
func (o *ORSProvider) Matrix(ctx context.Context, coords []sim.Coordinates) (*sim.Matrix, error) {
	n := len(coords)
	m := sim.NewMatrix(n)
	for src := 0; src < n; src += o.blockSize {
		srcEnd := min(src+o.blockSize, n)
		for dst := 0; dst < n; dst += o.blockSize {
			dstEnd := min(dst+o.blockSize, n)
			logrus.Debugf("ORS matrix block sources [%d,%d) destinations [%d,%d)", src, srcEnd, dst, dstEnd)
			if err := o.fetchBlock(ctx, coords, src, srcEnd, dst, dstEnd, m); err != nil {
				return nil, fmt.Errorf("ORS matrix block [%d,%d)x[%d,%d): %w", src, srcEnd, dst, dstEnd, err)
			}
		}
	}
	return m, nil
}

// fetchBlock requests one block and writes it into m. Durations are converted
// from seconds to minutes.
func (o *ORSProvider) fetchBlock(ctx context.Context, coords []sim.Coordinates, src, srcEnd, dst, dstEnd int, m *sim.Matrix) error {
	body := matrixRequest{Metrics: []string{"distance", "duration"}}
	for i := src; i < srcEnd; i++ {
		body.Sources = append(body.Sources, len(body.Locations))
		body.Locations = append(body.Locations, []float64{coords[i].Lon, coords[i].Lat})
	}
	for j := dst; j < dstEnd; j++ {
		body.Destinations = append(body.Destinations, len(body.Locations))
		body.Locations = append(body.Locations, []float64{coords[j].Lon, coords[j].Lat})
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal matrix request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return fmt.Errorf("decode matrix response: %w", err)
	}
	rows, cols := srcEnd-src, dstEnd-dst
	if len(mr.Distances) != rows || len(mr.Durations) != rows {
		return fmt.Errorf("expected %d source rows; got distances=%d durations=%d", rows, len(mr.Distances), len(mr.Durations))
	}
	for r := 0; r < rows; r++ {
		if len(mr.Distances[r]) != cols || len(mr.Durations[r]) != cols {
			return fmt.Errorf("row %d has %d/%d columns, want %d", r, len(mr.Distances[r]), len(mr.Durations[r]), cols)
		}
		for c := 0; c < cols; c++ {
			meters, seconds := mr.Distances[r][c], mr.Durations[r][c]
			if meters == nil || seconds == nil {
				return fmt.Errorf("no route between locations %d and %d", src+r, dst+c)
			}
			m.Distances[src+r][dst+c] = *meters
			m.Durations[src+r][dst+c] = *seconds / 60
		}
	}
	return nil
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

func (o *ORSProvider) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (o *ORSProvider) do(req *http.Request) (*http.Response, error) {
	resp, err := o.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429 and 5xx) with
// exponential backoff while respecting context cancellation.
func (o *ORSProvider) doWithRetry(ctx context.Context, makeReq func() (*http.Request, error)) (*http.Response, error) {
	attempts := o.maxRetries + 1
	backoff := o.backoff
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}
		resp, err := o.do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}
		var netErr net.Error
		if !retry && errors.As(err, &netErr) {
			retry = true
		}
		if !retry || attempt == attempts {
			return nil, lastErr
		}
		logrus.Warnf("ORS request failed (attempt %d/%d), retrying in %s: %v", attempt, attempts, backoff, err)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		backoff *= 2
	}
	return nil, lastErr
}
