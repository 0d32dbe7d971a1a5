package optimizer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

func parameterNames(results []*Result) []string {
	names := lo.Uniq(lo.FlatMap(results, func(r *Result, _ int) []string { return lo.Keys(r.Parameters) }))
	sort.Strings(names)
	return names
}

// WriteResults renders the first topN results as a table. Results must
// already be sorted.
func WriteResults(w io.Writer, results []*Result, metric MetricName, topN int) {
	if topN > 0 && topN < len(results) {
		results = results[:topN]
	}

	names := parameterNames(results)
	header := append([]string{"#", string(metric)}, names...)
	header = append(header, string(MetricSignalCount), "duration")

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)

	for i, result := range results {
		row := []string{strconv.Itoa(i + 1), fmt.Sprintf("%.4f", result.Metrics[metric])}
		for _, name := range names {
			row = append(row, strconv.FormatFloat(result.Parameters[name], 'g', 6, 64))
		}
		row = append(row,
			strconv.FormatFloat(result.Metrics[MetricSignalCount], 'f', 0, 64),
			result.Duration.Round(time.Millisecond).String(),
		)
		table.Append(row)
	}
	table.Render()
}

// SaveResultsToCSV writes every parameter and metric of the results
func SaveResultsToCSV(results []*Result, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	names := parameterNames(results)
	header := append([]string{"rank", "duration"}, names...)
	for _, metric := range Metrics {
		header = append(header, string(metric))
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, result := range results {
		row := []string{strconv.Itoa(i + 1), result.Duration.String()}
		for _, name := range names {
			row = append(row, strconv.FormatFloat(result.Parameters[name], 'f', 4, 64))
		}
		for _, metric := range Metrics {
			row = append(row, strconv.FormatFloat(result.Metrics[metric], 'f', 4, 64))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
