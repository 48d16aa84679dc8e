// Package yahoo provides the Yahoo Finance chart-API adapter for the
// fetch orchestrator, including the rate-limit classification the
// orchestrator relies on.
package yahoo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/raywind/Kronos/pkg/fetch"
	"github.com/raywind/Kronos/pkg/marketdata"
	"github.com/raywind/Kronos/pkg/ratelimit"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// Provider is the cooldown-tracker name for Yahoo Finance.
const Provider = "yahoo"

const defaultBaseURL = "https://query2.finance.yahoo.com"

// Prometheus metrics for provider requests.
var (
	providerRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kronos_provider_requests_total",
		Help: "Total provider requests by provider and status",
	}, []string{"provider", "status"})

	providerRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kronos_provider_request_duration_seconds",
		Help:    "Provider request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"provider"})
)

// APIError represents a non-rate-limit provider error.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo api error (status %d): %s", e.StatusCode, e.Message)
}

// Client fetches candle data from the Yahoo Finance v8 chart API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	tracker    *ratelimit.Tracker
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL overrides the Yahoo endpoint (for testing).
	BaseURL string

	// UserAgent identifies the caller. Yahoo rejects empty agents.
	UserAgent string

	// Timeout per HTTP request.
	Timeout time.Duration

	// Tracker optionally shares rate-limit cooldowns across
	// processes. Nil disables cooldown gating.
	Tracker *ratelimit.Tracker
}

// New creates a Yahoo Finance client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		tracker:    cfg.Tracker,
		logger:     log.With().Str("component", "yahoo-client").Logger(),
	}, nil
}

// FetchFunc returns a fetch function for one symbol and interval,
// suitable for handing to an orchestrator.
func (c *Client) FetchFunc(symbol, interval string) fetch.Func[marketdata.Candle] {
	return func(ctx context.Context, batch fetch.DateRange) ([]marketdata.Candle, error) {
		return c.FetchCandles(ctx, symbol, interval, batch)
	}
}

// FetchCandles fetches the candles for one symbol over one batch
// range. Rate limits (HTTP 429 and Yahoo's 999) come back wrapping
// fetch.ErrRateLimited; everything else is terminal.
func (c *Client) FetchCandles(ctx context.Context, symbol, interval string, batch fetch.DateRange) ([]marketdata.Candle, error) {
	if c.tracker != nil {
		allowed, remaining, err := c.tracker.ShouldAllowRequest(ctx, Provider)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Cooldown check failed - proceeding anyway")
		} else if !allowed {
			return nil, fmt.Errorf("provider cooldown active (%v remaining): %w",
				remaining.Round(time.Second), fetch.ErrRateLimited)
		}
	}

	start := time.Now()
	defer func() {
		providerRequestDuration.WithLabelValues(Provider).Observe(time.Since(start).Seconds())
	}()

	req, err := c.buildRequest(ctx, symbol, interval, batch)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("symbol", symbol).
		Str("interval", interval).
		Stringer("range", batch).
		Msg("Fetching candles")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		providerRequestsTotal.WithLabelValues(Provider, "network_error").Inc()
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	providerRequestsTotal.WithLabelValues(Provider, strconv.Itoa(resp.StatusCode)).Inc()

	if isRateLimited(resp.StatusCode) {
		retryAfter := parseRetryAfter(resp.Header)
		if c.tracker != nil {
			if err := c.tracker.MarkLimited(ctx, Provider, retryAfter); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to record cooldown")
			}
		}
		return nil, fmt.Errorf("yahoo returned status %d: %w", resp.StatusCode, fetch.ErrRateLimited)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	candles, err := parseChart(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("symbol", symbol).
		Stringer("range", batch).
		Int("candles", len(candles)).
		Msg("Batch fetched")

	return candles, nil
}

// buildRequest assembles the chart-API request. period2 is exclusive,
// so the batch end is pushed one day forward to include it.
func (c *Client) buildRequest(ctx context.Context, symbol, interval string, batch fetch.DateRange) (*http.Request, error) {
	q := url.Values{}
	q.Set("period1", strconv.FormatInt(batch.Start.Unix(), 10))
	q.Set("period2", strconv.FormatInt(batch.End.AddDate(0, 0, 1).Unix(), 10))
	q.Set("interval", interval)
	q.Set("events", "history")

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	return req, nil
}

// isRateLimited classifies a status code as a rate limit. Yahoo uses
// 429 and occasionally the non-standard 999.
func isRateLimited(status int) bool {
	return status == http.StatusTooManyRequests || status == 999
}

// parseRetryAfter reads a Retry-After header in seconds. Returns 0
// when absent or malformed, which lets the tracker fall back to its
// default cooldown.
func parseRetryAfter(headers http.Header) time.Duration {
	v := headers.Get("Retry-After")
	if v == "" {
		return 0
	}
	seconds, err := strconv.Atoi(v)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// parseChart extracts candles from a chart-API response body. Rows
// with a null close (holidays, halted sessions) are skipped.
func parseChart(body []byte) ([]marketdata.Candle, error) {
	if chartErr := gjson.GetBytes(body, "chart.error"); chartErr.Exists() && chartErr.Type != gjson.Null {
		return nil, &APIError{
			StatusCode: http.StatusOK,
			Message:    chartErr.Get("description").String(),
		}
	}

	result := gjson.GetBytes(body, "chart.result.0")
	if !result.Exists() {
		return nil, fmt.Errorf("malformed chart response: no result")
	}

	timestamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	for _, series := range [][]gjson.Result{opens, highs, lows, closes, volumes} {
		if len(series) != len(timestamps) {
			return nil, fmt.Errorf("malformed chart response: quote series length %d != %d timestamps",
				len(series), len(timestamps))
		}
	}

	candles := make([]marketdata.Candle, 0, len(timestamps))
	for i, ts := range timestamps {
		if closes[i].Type == gjson.Null {
			continue
		}

		candle := marketdata.Candle{
			Timestamp: time.Unix(ts.Int(), 0).UTC(),
			Open:      decimal.NewFromFloat(opens[i].Float()),
			High:      decimal.NewFromFloat(highs[i].Float()),
			Low:       decimal.NewFromFloat(lows[i].Float()),
			Close:     decimal.NewFromFloat(closes[i].Float()),
			Volume:    decimal.NewFromFloat(volumes[i].Float()),
		}
		candle.Amount = candle.Close.Mul(candle.Volume)
		candles = append(candles, candle)
	}

	return candles, nil
}
