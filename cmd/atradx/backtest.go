package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/raykavin/atradx/pkg/config"
	"github.com/raykavin/atradx/pkg/core"
	"github.com/raykavin/atradx/pkg/exchange"
	"github.com/raykavin/atradx/pkg/logger"
	"github.com/raykavin/atradx/pkg/logger/zerolog"
	"github.com/raykavin/atradx/pkg/monitoring"
	"github.com/raykavin/atradx/pkg/notification"
	"github.com/raykavin/atradx/pkg/report"
	"github.com/raykavin/atradx/pkg/storage"
	"github.com/raykavin/atradx/pkg/strategy"
	"github.com/raykavin/atradx/pkg/trend"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/xhit/go-str2duration/v2"
)

var (
	period     string
	returnsDir string
	noProgress bool
)

func buildBacktestCmd() *cobra.Command {
	backtestCmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay CSV candles through the strategy and report its signals",
		RunE:  runBacktest,
	}

	backtestCmd.Flags().StringVarP(&period, "period", "p", "", "Only replay the last period of each pair (e.g. 90d)")
	backtestCmd.Flags().StringVarP(&returnsDir, "returns", "r", "", "Directory where leg returns are saved per pair (overrides report.returns_dir)")
	backtestCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Hide the progress bar")

	return backtestCmd
}

// signalStore is a journal that can be closed
type signalStore interface {
	core.SignalStorage
	Close() error
}

func runBacktest(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := zerolog.NewWithWriter(os.Stderr, cfg.Log.Level, cfg.Log.TimeFormat, cfg.Log.Colored, cfg.Log.JSON)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	feed, err := loadFeed(cfg.Feed)
	if err != nil {
		return err
	}

	metrics := monitoring.NewMetrics()
	emitters := trend.MultiEmitter{
		storage.NewJournal(store, log),
		notification.NewLog(log),
		metrics,
	}

	runner := strategy.NewRunner(log)

	if cfg.Telegram.Enabled {
		telegram, err := notification.NewTelegram(cfg.Telegram,
			notification.WithStatusProvider(runner),
			notification.WithSignalStorage(store),
			notification.WithTelegramLogger(log),
		)
		if err != nil {
			return err
		}
		telegram.Start()
		defer telegram.Stop()
		emitters = append(emitters, notification.NewNotifier(telegram, notification.WithLogger(log)))
	}

	for _, pair := range cfg.Feed.Pairs {
		controller, err := strategy.NewController(pair.Pair, cfg.Strategy, emitters,
			strategy.WithLogger(log),
			strategy.WithHistorySize(cfg.Feed.HistorySize),
			strategy.WithErrorHandler(metrics.RecordError),
		)
		if err != nil {
			return err
		}
		if err := runner.Add(pair.Pair, controller); err != nil {
			return err
		}
	}
	runner.Start()

	log.WithFields(map[string]any{
		"pairs":   len(cfg.Feed.Pairs),
		"candles": feed.Len(),
		"warmup":  cfg.Strategy.WarmupPeriod(),
	}).Info("starting backtest")

	last := make(map[string]core.Candle)
	subscribers := []core.CandleSubscriber{
		runner,
		metrics,
		candleFunc(func(c core.Candle) { last[c.Pair] = c }),
	}
	if !noProgress {
		bar := progressbar.Default(int64(feed.Len()))
		subscribers = append(subscribers, candleFunc(func(core.Candle) {
			if err := bar.Add(1); err != nil {
				log.Warnf("update progressbar fail: %v", err)
			}
		}))
	}

	// the journal may hold signals of earlier runs
	runStart := time.Now()
	if err := feed.Replay(cmd.Context(), subscribers...); err != nil {
		return fmt.Errorf("replay interrupted: %w", err)
	}
	metrics.Update(runner.Status())

	signals, err := store.Signals(core.WithCreatedAfter(runStart))
	if err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), cfg.Report, signals, last, log)

	dir := returnsDir
	if dir == "" {
		dir = cfg.Report.ReturnsDir
	}
	if dir != "" {
		if err := saveReturns(dir, report.Summarize(signals, last)); err != nil {
			return err
		}
	}

	if cfg.Metrics.Enabled && cfg.Metrics.File != "" {
		if err := metrics.WriteToFile(cfg.Metrics.File); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	return nil
}

func openStorage(cfg config.StorageConfig) (signalStore, error) {
	switch cfg.Driver {
	case config.StorageBuntDB:
		return storage.FromFile(cfg.Path)
	case config.StoragePostgres:
		return storage.FromPostgres(cfg.DSN, storage.DefaultConfig())
	default:
		return storage.FromMemory()
	}
}

func loadFeed(cfg config.FeedConfig) (*exchange.CSVFeed, error) {
	feeds := make([]exchange.PairFeed, 0, len(cfg.Pairs))
	for _, pair := range cfg.Pairs {
		timeframe := pair.Timeframe
		if timeframe == "" {
			timeframe = cfg.Timeframe
		}
		feeds = append(feeds, exchange.PairFeed{Pair: pair.Pair, File: pair.File, Timeframe: timeframe})
	}

	feed, err := exchange.NewCSVFeed(cfg.Timeframe, feeds...)
	if err != nil {
		return nil, err
	}

	if period != "" {
		duration, err := str2duration.ParseDuration(period)
		if err != nil {
			return nil, fmt.Errorf("invalid period %q: %w", period, err)
		}
		feed.Limit(duration)
	}

	return feed, nil
}

func printReport(out io.Writer, cfg config.ReportConfig, signals []*core.Signal, last map[string]core.Candle, log logger.Logger) {
	fmt.Fprintln(out, "------ SIGNALS -------")
	report.WriteSignals(out, signals)

	summaries := report.Summarize(signals, last)
	fmt.Fprintln(out, "------ SUMMARY -------")
	report.WriteSummaries(out, summaries)

	returns := make([]float64, 0)
	for _, summary := range summaries {
		returns = append(returns, summary.Returns()...)
	}

	fmt.Fprintln(out, "------ RETURN (%) -------")
	if err := report.WriteHistogram(out, returns, 15); err != nil {
		log.WithError(err).Warn("failed to plot returns")
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "------ CONFIDENCE INTERVAL (%.0f%%) -------\n", cfg.Confidence*100)
	for _, summary := range summaries {
		returns := summary.Returns()
		if len(returns) == 0 {
			continue
		}

		mean := report.Bootstrap(returns, report.Mean, cfg.BootstrapSamples, cfg.Confidence)
		payoff := report.Bootstrap(returns, report.Payoff, cfg.BootstrapSamples, cfg.Confidence)
		profitFactor := report.Bootstrap(returns, report.ProfitFactor, cfg.BootstrapSamples, cfg.Confidence)

		fmt.Fprintf(out, "| %s |\n", summary.Pair)
		fmt.Fprintf(out, "RETURN:      %.2f%% (%.2f%% ~ %.2f%%)\n", mean.Mean, mean.Lower, mean.Upper)
		fmt.Fprintf(out, "PAYOFF:      %.2f (%.2f ~ %.2f)\n", payoff.Mean, payoff.Lower, payoff.Upper)
		fmt.Fprintf(out, "PROF.FACTOR: %.2f (%.2f ~ %.2f)\n", profitFactor.Mean, profitFactor.Lower, profitFactor.Upper)
	}
}

func saveReturns(dir string, summaries []report.Summary) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, summary := range summaries {
		if err := summary.SaveReturns(filepath.Join(dir, summary.Pair+".csv")); err != nil {
			return err
		}
	}
	return nil
}

type candleFunc func(core.Candle)

func (f candleFunc) OnCandle(c core.Candle) { f(c) }
