// Package testutil provides testing utilities for the Kronos fetch
// toolkit.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
)

// MockChart is a configurable mock of the Yahoo Finance chart API.
type MockChart struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	// Tracking
	RequestCount int
	LastQuery    url.Values
}

// NewMockChart creates a new mock chart server.
func NewMockChart() *MockChart {
	mock := &MockChart{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")

		mock.mu.Lock()
		mock.RequestCount++
		mock.LastQuery = r.URL.Query()
		handler, exists := mock.handlers[symbol]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.notFoundHandler(w, symbol)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockChart) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockChart) Close() {
	m.server.Close()
}

// Reset clears all tracking counters and handlers.
func (m *MockChart) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastQuery = nil
	m.handlers = make(map[string]http.HandlerFunc)
}

// Requests returns the number of requests received so far.
func (m *MockChart) Requests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// SetHandler installs a custom handler for a symbol.
func (m *MockChart) SetHandler(symbol string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[symbol] = handler
}

// RespondWithCandles makes the symbol return daily candles starting at
// startUnix, one per day, with closes counting up from basePrice.
func (m *MockChart) RespondWithCandles(symbol string, startUnix int64, days int, basePrice float64) {
	const daySeconds = 86400

	var timestamps, opens, highs, lows, closes, volumes []string
	for i := 0; i < days; i++ {
		price := basePrice + float64(i)
		timestamps = append(timestamps, fmt.Sprintf("%d", startUnix+int64(i)*daySeconds))
		opens = append(opens, fmt.Sprintf("%.2f", price-0.5))
		highs = append(highs, fmt.Sprintf("%.2f", price+1))
		lows = append(lows, fmt.Sprintf("%.2f", price-1))
		closes = append(closes, fmt.Sprintf("%.2f", price))
		volumes = append(volumes, "1000")
	}

	body := ChartJSON(timestamps, opens, highs, lows, closes, volumes)
	m.SetHandler(symbol, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, body)
	})
}

// RespondWithStatus makes the symbol return a bare HTTP status, with
// an optional Retry-After header in seconds.
func (m *MockChart) RespondWithStatus(symbol string, status int, retryAfter int) {
	m.SetHandler(symbol, func(w http.ResponseWriter, r *http.Request) {
		if retryAfter > 0 {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
		}
		w.WriteHeader(status)
	})
}

// RespondWithChartError makes the symbol return a 200 whose body
// carries a chart-level error, the way Yahoo reports unknown symbols.
func (m *MockChart) RespondWithChartError(symbol, code, description string) {
	m.SetHandler(symbol, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"chart":{"result":null,"error":{"code":%q,"description":%q}}}`, code, description)
	})
}

func (m *MockChart) notFoundHandler(w http.ResponseWriter, symbol string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	fmt.Fprintf(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted: %s"}}}`, symbol)
}

// ChartJSON assembles a chart-API response body from raw JSON value
// strings, so tests can inject nulls.
func ChartJSON(timestamps, opens, highs, lows, closes, volumes []string) string {
	return fmt.Sprintf(`{
  "chart": {
    "result": [{
      "meta": {"currency": "USD"},
      "timestamp": [%s],
      "indicators": {
        "quote": [{
          "open": [%s],
          "high": [%s],
          "low": [%s],
          "close": [%s],
          "volume": [%s]
        }]
      }
    }],
    "error": null
  }
}`,
		strings.Join(timestamps, ","),
		strings.Join(opens, ","),
		strings.Join(highs, ","),
		strings.Join(lows, ","),
		strings.Join(closes, ","),
		strings.Join(volumes, ","))
}
