package report

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/atradx/pkg/core"
	"github.com/samber/lo"
)

// Summary collects the outcome of the legs of one pair
type Summary struct {
	Pair             string
	Signals          int
	WinLong          []float64
	WinLongPercent   []float64
	WinShort         []float64
	WinShortPercent  []float64
	LoseLong         []float64
	LoseLongPercent  []float64
	LoseShort        []float64
	LoseShortPercent []float64
}

// NewSummary classifies the legs of a pair into wins and losses
func NewSummary(pair string, signals int, legs []Leg) Summary {
	s := Summary{Pair: pair, Signals: signals}
	for _, leg := range legs {
		s.Add(leg)
	}
	return s
}

// Add records the outcome of one leg. Flat legs count as wins.
func (s *Summary) Add(leg Leg) {
	profit, percent := leg.Profit(), leg.Return()*100

	switch {
	case leg.Direction == core.DirectionLong && profit >= 0:
		s.WinLong = append(s.WinLong, profit)
		s.WinLongPercent = append(s.WinLongPercent, percent)
	case leg.Direction == core.DirectionLong:
		s.LoseLong = append(s.LoseLong, profit)
		s.LoseLongPercent = append(s.LoseLongPercent, percent)
	case profit >= 0:
		s.WinShort = append(s.WinShort, profit)
		s.WinShortPercent = append(s.WinShortPercent, percent)
	default:
		s.LoseShort = append(s.LoseShort, profit)
		s.LoseShortPercent = append(s.LoseShortPercent, percent)
	}
}

// Win returns the profit of every winning leg
func (s Summary) Win() []float64 {
	return concat(s.WinLong, s.WinShort)
}

// WinPercent returns the percentage return of every winning leg
func (s Summary) WinPercent() []float64 {
	return concat(s.WinLongPercent, s.WinShortPercent)
}

// Lose returns the profit of every losing leg
func (s Summary) Lose() []float64 {
	return concat(s.LoseLong, s.LoseShort)
}

// LosePercent returns the percentage return of every losing leg
func (s Summary) LosePercent() []float64 {
	return concat(s.LoseLongPercent, s.LoseShortPercent)
}

// Returns returns the percentage return of every leg
func (s Summary) Returns() []float64 {
	return concat(s.WinPercent(), s.LosePercent())
}

// Legs returns the number of legs
func (s Summary) Legs() int {
	return len(s.Win()) + len(s.Lose())
}

// Profit returns the total price change captured for one unit
func (s Summary) Profit() float64 {
	return lo.Sum(s.Win()) + lo.Sum(s.Lose())
}

// SQN returns the System Quality Number of the percentage returns,
// sqrt(n) * mean / standard deviation
func (s Summary) SQN() float64 {
	returns := s.Returns()
	n := float64(len(returns))
	if n == 0 {
		return 0
	}

	mean := lo.Sum(returns) / n
	variance := lo.SumBy(returns, func(r float64) float64 { return math.Pow(r-mean, 2) }) / n
	if variance == 0 {
		return 0
	}

	return math.Sqrt(n) * mean / math.Sqrt(variance)
}

// Payoff returns the average win divided by the average loss
func (s Summary) Payoff() float64 {
	win, lose := s.WinPercent(), s.LosePercent()
	if len(win) == 0 || len(lose) == 0 {
		return 0
	}

	avgLoss := lo.Sum(lose) / float64(len(lose))
	if avgLoss == 0 {
		return 0
	}
	return (lo.Sum(win) / float64(len(win))) / math.Abs(avgLoss)
}

// ProfitFactor returns gross gains divided by gross losses
func (s Summary) ProfitFactor() float64 {
	grossLoss := lo.Sum(s.LosePercent())
	if grossLoss == 0 {
		return 0
	}
	return lo.Sum(s.WinPercent()) / math.Abs(grossLoss)
}

// WinPercentage returns the share of winning legs in percent
func (s Summary) WinPercentage() float64 {
	if s.Legs() == 0 {
		return 0
	}
	return float64(len(s.Win())) / float64(s.Legs()) * 100
}

// String renders the summary as a two column table
func (s Summary) String() string {
	tableString := &strings.Builder{}
	table := tablewriter.NewWriter(tableString)

	table.AppendBulk([][]string{
		{"Pair", s.Pair},
		{"Signals", strconv.Itoa(s.Signals)},
		{"Legs", strconv.Itoa(s.Legs())},
		{"Win", strconv.Itoa(len(s.Win()))},
		{"Loss", strconv.Itoa(len(s.Lose()))},
		{"% Win", fmt.Sprintf("%.1f", s.WinPercentage())},
		{"Payoff", fmt.Sprintf("%.1f", s.Payoff()*100)},
		{"Pr.Fact", fmt.Sprintf("%.1f", s.ProfitFactor()*100)},
		{"SQN", fmt.Sprintf("%.2f", s.SQN())},
		{"Profit", fmt.Sprintf("%.4f", s.Profit())},
	})
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	table.Render()

	return tableString.String()
}

// SaveReturns writes the percentage return of every leg, one per line
func (s Summary) SaveReturns(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, value := range s.Returns() {
		if _, err = fmt.Fprintf(file, "%.4f\n", value); err != nil {
			return err
		}
	}
	return nil
}

func concat(a, b []float64) []float64 {
	out := make([]float64, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}
