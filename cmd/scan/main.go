package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ZoneWatch/internal/di"
	domrepo "ZoneWatch/internal/domain/repository"
	internalrepo "ZoneWatch/internal/repository"
	"ZoneWatch/internal/usecase"
	"ZoneWatch/pkg/config"
	xhttp "ZoneWatch/pkg/http"
	applogger "ZoneWatch/pkg/logger"
	xutil "ZoneWatch/pkg/util"
)

// scan runs detection over a symbol universe and writes per-symbol outcome counts as CSV.
func main() {
	configPath := flag.String("config", "", "config file path (defaults only when empty)")
	symbolsFlag := flag.String("symbols", "", "comma separated symbols, overrides the config list")
	symbolsCSV := flag.String("symbols-csv", "", "CSV file to read symbols from")
	column := flag.String("column", "Symbol", "symbol column in -symbols-csv")
	interval := flag.String("interval", "1wk", "candle interval")
	period := flag.String("period", "5y", "lookback period")
	from := flag.String("from", "", "range start, overrides -period")
	to := flag.String("to", "", "range end")
	source := flag.String("source", "yahoo", "candle source: yahoo or clickhouse")
	out := flag.String("out", "", "output CSV path (stdout when empty)")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	logger, err := di.ProvideLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	symbols, err := loadSymbols(*symbolsFlag, *symbolsCSV, *column, cfg.Monitor.Symbols)
	if err != nil {
		log.Fatalf("symbols: %v", err)
	}
	iv := domrepo.Interval(*interval)
	if !domrepo.IsValidInterval(iv) {
		log.Fatalf("unsupported interval %q", *interval)
	}
	f, t, err := xhttp.ParseOptionalRange(*from, *to)
	if err != nil {
		log.Fatalf("range: %v", err)
	}
	rng := domrepo.FetchRange{Period: *period, From: f, To: t}

	var src domrepo.CandleSource
	switch *source {
	case "yahoo":
		src = di.ProvideYahooClient(cfg, di.ProvideRateLimiter(), logger)
	case "clickhouse":
		cfg.ClickHouse.Enabled = true
		ch, err := di.ProvideClickHouseClient(cfg)
		if err != nil {
			log.Fatalf("clickhouse: %v", err)
		}
		defer ch.Close()
		store := internalrepo.NewCHCandleStore(ch, cfg.ClickHouse.Database)
		store.SetLogger(logger)
		src = store
	default:
		log.Fatalf("unknown source %q", *source)
	}

	reg, err := di.ProvideZoneRegistry(cfg)
	if err != nil {
		log.Fatalf("thresholds: %v", err)
	}
	analyzer := usecase.NewZoneAnalyzer(src, reg, di.ProvideMetrics(), logger, cfg.Monitor.Workers)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("scan started",
		applogger.Int("symbols", len(symbols)),
		applogger.String("interval", string(iv)),
		applogger.String("source", *source))
	results := analyzer.AnalyzeUniverse(ctx, symbols, iv, rng)

	var w io.Writer = os.Stdout
	if *out != "" {
		fh, err := os.Create(*out)
		if err != nil {
			log.Fatalf("create %s: %v", *out, err)
		}
		defer fh.Close()
		w = fh
	}
	if err := usecase.WriteOutcomeCSV(w, results); err != nil {
		log.Fatalf("write csv: %v", err)
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	logger.Info("scan finished", applogger.Int("symbols", len(results)), applogger.Int("failed", failed))
}

func loadSymbols(list, csvPath, column string, fallback []string) ([]string, error) {
	switch {
	case list != "":
		return xutil.SplitSymbols(list), nil
	case csvPath != "":
		fh, err := os.Open(csvPath)
		if err != nil {
			return nil, err
		}
		defer fh.Close()
		return usecase.ReadSymbolsCSV(fh, column)
	}
	return fallback, nil
}
