package main

import (
	"fmt"
	"os"

	"github.com/raykavin/atradx/pkg/config"
	"github.com/raykavin/atradx/pkg/logger/zerolog"
	"github.com/raykavin/atradx/pkg/optimizer"
	"github.com/spf13/cobra"
)

var (
	iterations  int
	parallelism int
	metricName  string
	minimize    bool
	topN        int
	seed        int64
	resultsFile string
)

func buildOptimizeCmd() *cobra.Command {
	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "Search the strategy parameters that score best on the CSV feed",
		RunE:  runOptimize,
	}

	optimizeCmd.Flags().IntVarP(&iterations, "iterations", "n", 100, "Number of parameter sets to evaluate")
	optimizeCmd.Flags().IntVarP(&parallelism, "parallel", "j", 1, "Number of parallel evaluations")
	optimizeCmd.Flags().StringVarP(&metricName, "metric", "m", string(optimizer.MetricSQN), "Metric to optimize")
	optimizeCmd.Flags().BoolVar(&minimize, "minimize", false, "Minimize the metric instead of maximizing it")
	optimizeCmd.Flags().IntVarP(&topN, "top", "t", 10, "Number of results to display")
	optimizeCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 draws a new one)")
	optimizeCmd.Flags().StringVarP(&resultsFile, "output", "o", "", "Save every result to a CSV file")
	optimizeCmd.Flags().StringVarP(&period, "period", "p", "", "Only replay the last period of each pair (e.g. 90d)")

	return optimizeCmd
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	metric, err := optimizer.ParseMetric(metricName)
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := zerolog.NewWithWriter(os.Stderr, cfg.Log.Level, cfg.Log.TimeFormat, cfg.Log.Colored, cfg.Log.JSON)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	feed, err := loadFeed(cfg.Feed)
	if err != nil {
		return err
	}

	options := []optimizer.Option{
		optimizer.WithIterations(iterations),
		optimizer.WithParallelism(parallelism),
		optimizer.WithLogger(log),
	}
	if seed != 0 {
		options = append(options, optimizer.WithSeed(seed))
	}

	search, err := optimizer.NewRandomSearch(optimizer.DefaultParameters(), options...)
	if err != nil {
		return err
	}

	evaluator := optimizer.NewBacktestEvaluator(feed, cfg.Strategy, cfg.Feed.HistorySize)
	results, err := search.Optimize(cmd.Context(), evaluator, metric, !minimize)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "=== Top %d results by %s ===\n", min(topN, len(results)), metric)
	optimizer.WriteResults(cmd.OutOrStdout(), results, metric, topN)

	if resultsFile != "" {
		if err := optimizer.SaveResultsToCSV(results, resultsFile); err != nil {
			return err
		}
		log.WithField("file", resultsFile).Info("results saved")
	}
	return nil
}
