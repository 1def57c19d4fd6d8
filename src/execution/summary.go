package execution

import (
	"fmt"
	"io"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"

	"mtf-trader/src/models"
)

// Summary aggregates the closed round trips of one session. Commission is
// charged on the notional of both the entry and the exit fill.
type Summary struct {
	TotalTrades    int
	WinningTrades  int
	LosingTrades   int
	WinRate        float64
	TotalPnl       float64
	TotalReturnPct float64
	SharpeRatio    float64
	MaxDrawdownPct float64
	InitialCapital float64
	FinalEquity    float64
}

func Summarize(ledger *models.Ledger, initialCapital, commission float64) Summary {
	summary := Summary{
		InitialCapital: initialCapital,
		FinalEquity:    initialCapital,
	}

	if ledger == nil {
		return summary
	}

	trips := ledger.RoundTrips()
	summary.TotalTrades = len(trips)

	var returns []float64
	equity := initialCapital
	peak := initialCapital

	for _, trip := range trips {
		fees := commission * trip.Quantity * (trip.EntryPrice + *trip.ExitPrice)
		pnl := *trip.Pnl - fees

		summary.TotalPnl += pnl
		if pnl > 0 {
			summary.WinningTrades++
		} else if pnl < 0 {
			summary.LosingTrades++
		}

		returns = append(returns, *trip.ReturnPct)

		equity += pnl
		if equity > peak {
			peak = equity
		}

		if peak > 0 {
			drawdown := (peak - equity) / peak * 100
			if drawdown > summary.MaxDrawdownPct {
				summary.MaxDrawdownPct = drawdown
			}
		}
	}

	summary.FinalEquity = equity

	if summary.TotalTrades > 0 {
		summary.WinRate = float64(summary.WinningTrades) / float64(summary.TotalTrades) * 100
	}

	if initialCapital > 0 {
		summary.TotalReturnPct = summary.TotalPnl / initialCapital * 100
	}

	if len(returns) > 1 {
		mean, _ := stats.Mean(returns)
		stdDev, _ := stats.StandardDeviationSample(returns)
		if stdDev > 0 {
			summary.SharpeRatio = mean / stdDev
		}
	}

	return summary
}

// Render writes the summary as a two-column table.
func (s Summary) Render(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetBorder(false)

	table.Append([]string{"Initial Capital", fmt.Sprintf("%.2f", s.InitialCapital)})
	table.Append([]string{"Final Equity", fmt.Sprintf("%.2f", s.FinalEquity)})
	table.Append([]string{"Total Trades", fmt.Sprintf("%d", s.TotalTrades)})
	table.Append([]string{"Win Rate", fmt.Sprintf("%.2f%%", s.WinRate)})
	table.Append([]string{"Total PnL", fmt.Sprintf("%.2f", s.TotalPnl)})
	table.Append([]string{"Total Return", fmt.Sprintf("%.2f%%", s.TotalReturnPct)})
	table.Append([]string{"Sharpe Ratio", fmt.Sprintf("%.2f", s.SharpeRatio)})
	table.Append([]string{"Max Drawdown", fmt.Sprintf("%.2f%%", s.MaxDrawdownPct)})

	table.Render()
}
