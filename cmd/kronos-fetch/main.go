// Command kronos-fetch downloads historical candle data through the
// rate-limited fetch orchestrator and prints it as a summary or CSV.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raywind/Kronos/internal/config"
	"github.com/raywind/Kronos/pkg/cache"
	"github.com/raywind/Kronos/pkg/fetch"
	"github.com/raywind/Kronos/pkg/logging"
	"github.com/raywind/Kronos/pkg/marketdata"
	"github.com/raywind/Kronos/pkg/ratelimit"
	"github.com/raywind/Kronos/pkg/yahoo"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		symbol     = flag.String("symbol", "GC=F", "instrument symbol")
		startStr   = flag.String("start", "", "range start (YYYY-MM-DD)")
		endStr     = flag.String("end", "", "range end (YYYY-MM-DD, defaults to today)")
		period     = flag.String("period", "daily", `data period ("daily" or a minute count)`)
		daysBack   = flag.Int("days", 500, "days back from the end date when -start is unset")
		csvOut     = flag.Bool("csv", false, "write fetched candles as CSV to stdout")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LoggingConfig())

	interval, err := yahoo.MapInterval(*period)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid period")
	}

	dateRange, err := parseRange(*startStr, *endStr, *daysBack)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid date range")
	}

	// Ctrl-C cancels cleanly; the orchestrator hands back whatever
	// was already fetched.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is optional: without it, caching and shared cooldowns are
	// simply disabled.
	var tracker *ratelimit.Tracker
	var manager *cache.Manager

	redisAddr := getEnv("REDIS_URL", cfg.Redis.Addr)
	if redisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Str("addr", redisAddr).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()

		tracker = ratelimit.NewTracker(redisClient, logging.NewLogger("ratelimit"))
		manager = cache.NewManager(redisClient)
		logger.Info().Str("addr", redisAddr).Msg("Connected to Redis")
	}

	client, err := yahoo.New(yahoo.Config{
		UserAgent: getEnv("USER_AGENT", cfg.Yahoo.UserAgent),
		Timeout:   cfg.Yahoo.Timeout,
		Tracker:   tracker,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Yahoo client")
	}

	fetchFn := client.FetchFunc(*symbol, interval)
	if manager != nil {
		fetchFn = cache.Cached(fetchFn, manager, *symbol, interval, cfg.Cache.TTL)
	}

	orch, err := fetch.NewOrchestrator(cfg.Policy(), fetchFn)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create orchestrator")
	}

	logger.Info().
		Str("symbol", *symbol).
		Str("interval", interval).
		Stringer("range", dateRange).
		Msg("Starting fetch")

	res, fetchErr := orch.Fetch(ctx, dateRange)

	series := marketdata.FillAmount(marketdata.Merge(res.Records))

	if fetchErr != nil {
		var exhausted *fetch.ExhaustedError
		if errors.As(fetchErr, &exhausted) {
			logger.Error().
				Stringer("failed_batch", exhausted.Batch).
				Int("partial_candles", len(series)).
				Msg("Fetch exhausted retries and fallback - partial data only")
		} else {
			logger.Error().Err(fetchErr).Int("partial_candles", len(series)).Msg("Fetch failed")
		}
	}

	if res.Cancelled {
		logger.Warn().Int("partial_candles", len(series)).Msg("Fetch cancelled")
	}

	if *csvOut {
		if err := writeCSV(os.Stdout, series); err != nil {
			logger.Fatal().Err(err).Msg("Failed to write CSV")
		}
	} else if len(series) > 0 {
		logger.Info().
			Int("candles", len(series)).
			Time("first", series[0].Timestamp).
			Time("last", series[len(series)-1].Timestamp).
			Bool("fell_back", res.FellBack).
			Msg("Fetch result")
	}

	if fetchErr != nil {
		os.Exit(1)
	}
}

// parseRange resolves the requested date range: explicit start/end
// when given, otherwise daysBack days ending today.
func parseRange(startStr, endStr string, daysBack int) (fetch.DateRange, error) {
	end := time.Now().UTC()
	if endStr != "" {
		var err error
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return fetch.DateRange{}, fmt.Errorf("parse end date: %w", err)
		}
	}

	var start time.Time
	if startStr != "" {
		var err error
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return fetch.DateRange{}, fmt.Errorf("parse start date: %w", err)
		}
	} else {
		if daysBack <= 0 {
			return fetch.DateRange{}, fmt.Errorf("days must be > 0 (got %d)", daysBack)
		}
		start = end.AddDate(0, 0, -(daysBack - 1))
	}

	return fetch.NewDateRange(start, end)
}

// writeCSV emits the series as one row per candle.
func writeCSV(w io.Writer, series []marketdata.Candle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamps", "open", "high", "low", "close", "volume", "amount"}); err != nil {
		return err
	}

	for _, c := range series {
		record := []string{
			c.Timestamp.Format(time.RFC3339),
			c.Open.String(),
			c.High.String(),
			c.Low.String(),
			c.Close.String(),
			c.Volume.String(),
			c.Amount.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
