package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/atradx/pkg/core"
)

// WriteSignals renders the signals as a table
func WriteSignals(w io.Writer, signals []*core.Signal) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Time", "Pair", "Direction", "Price", "Stop", "Transition"})
	table.SetAutoWrapText(false)

	for _, s := range signals {
		stop := "-"
		if !s.IsInitial() {
			stop = fmt.Sprintf("%.8g", s.Stop)
		}
		table.Append([]string{
			strconv.FormatInt(s.ID, 10),
			s.Time.UTC().Format("2006-01-02 15:04"),
			s.Pair,
			string(s.Direction),
			fmt.Sprintf("%.8g", s.Price),
			stop,
			fmt.Sprintf("%s -> %s", s.From, s.To),
		})
	}
	table.Render()
}

// WriteSummaries renders one row per pair
func WriteSummaries(w io.Writer, summaries []Summary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Pair", "Signals", "Legs", "Win", "Loss", "% Win", "Payoff", "SQN", "Profit"})
	table.SetFooterAlignment(tablewriter.ALIGN_RIGHT)

	var signals, legs, wins, losses int
	for _, s := range summaries {
		signals += s.Signals
		legs += s.Legs()
		wins += len(s.Win())
		losses += len(s.Lose())
		table.Append([]string{
			s.Pair,
			strconv.Itoa(s.Signals),
			strconv.Itoa(s.Legs()),
			strconv.Itoa(len(s.Win())),
			strconv.Itoa(len(s.Lose())),
			fmt.Sprintf("%.1f %%", s.WinPercentage()),
			fmt.Sprintf("%.3f", s.Payoff()),
			fmt.Sprintf("%.2f", s.SQN()),
			fmt.Sprintf("%.4f", s.Profit()),
		})
	}

	winRate := 0.0
	if legs > 0 {
		winRate = float64(wins) / float64(legs) * 100
	}
	table.SetFooter([]string{"TOTAL", strconv.Itoa(signals), strconv.Itoa(legs),
		strconv.Itoa(wins), strconv.Itoa(losses), fmt.Sprintf("%.1f %%", winRate), "", "", ""})
	table.Render()
}
