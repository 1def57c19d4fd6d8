package matcher

import (
	"fmt"
	"io"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"

	"mtf-trader/src/models"
)

// ReportStats aggregates per-match diagnostics.
type ReportStats struct {
	MeanTimeDeltaSec   float64
	MedianTimeDeltaSec float64
	MaxTimeDeltaSec    float64
	MeanPriceDeltaPct  float64
}

func (r *Report) Stats() ReportStats {
	if len(r.Matches) == 0 {
		return ReportStats{}
	}

	timeDeltas := make([]float64, len(r.Matches))
	priceDeltas := make([]float64, len(r.Matches))
	for i, m := range r.Matches {
		timeDeltas[i] = absDuration(m.TimeDelta).Seconds()
		priceDeltas[i] = m.PriceDeltaPct
	}

	mean, _ := stats.Mean(timeDeltas)
	median, _ := stats.Median(timeDeltas)
	max, _ := stats.Max(timeDeltas)
	meanPrice, _ := stats.Mean(priceDeltas)

	return ReportStats{
		MeanTimeDeltaSec:   mean,
		MedianTimeDeltaSec: median,
		MaxTimeDeltaSec:    max,
		MeanPriceDeltaPct:  meanPrice,
	}
}

const sampleLimit = 10

// Render prints the reconciliation summary, aggregate diagnostics and a
// sample of matched and unmatched records.
func (r *Report) Render(w io.Writer) {
	summary := tablewriter.NewWriter(w)
	summary.SetHeader([]string{"Metric", "Value"})
	summary.SetBorder(false)
	summary.Append([]string{"Tolerance Window", r.Window.String()})
	summary.Append([]string{"Matched", fmt.Sprintf("%d", r.MatchedCount())})
	summary.Append([]string{"Unmatched Candidate", fmt.Sprintf("%d", len(r.UnmatchedCandidate))})
	summary.Append([]string{"Unmatched Reference", fmt.Sprintf("%d", len(r.UnmatchedReference))})
	summary.Append([]string{"Match Rate", fmt.Sprintf("%.1f%%", r.MatchRate())})

	st := r.Stats()
	summary.Append([]string{"Mean Time Delta", fmt.Sprintf("%.0fs", st.MeanTimeDeltaSec)})
	summary.Append([]string{"Median Time Delta", fmt.Sprintf("%.0fs", st.MedianTimeDeltaSec)})
	summary.Append([]string{"Max Time Delta", fmt.Sprintf("%.0fs", st.MaxTimeDeltaSec)})
	summary.Append([]string{"Mean Price Delta", fmt.Sprintf("%.3f%%", st.MeanPriceDeltaPct)})
	summary.Render()

	if r.MatchRate() < 50 && r.MatchedCount()+len(r.UnmatchedCandidate) > 0 {
		fmt.Fprintln(w, "\nWARNING: low match rate")
	}

	if len(r.Matches) > 0 {
		fmt.Fprintln(w, "\nSample matched trades:")

		matched := tablewriter.NewWriter(w)
		matched.SetHeader([]string{"Side", "Candidate Time", "Reference Time", "Time Delta", "Price Delta"})
		matched.SetBorder(false)

		for i, m := range r.Matches {
			if i >= sampleLimit {
				break
			}

			matched.Append([]string{
				string(m.Candidate.Side),
				m.Candidate.Timestamp.Format(time.RFC3339),
				m.Reference.Timestamp.Format(time.RFC3339),
				fmt.Sprintf("%.0fs", absDuration(m.TimeDelta).Seconds()),
				fmt.Sprintf("%.3f%%", m.PriceDeltaPct),
			})
		}

		matched.Render()
	}

	renderUnmatched(w, "Sample unmatched candidate trades:", r.UnmatchedCandidate)
	renderUnmatched(w, "Sample unmatched reference trades:", r.UnmatchedReference)
}

func renderUnmatched(w io.Writer, title string, records []*models.TradeRecord) {
	if len(records) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s\n", title)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Side", "Timestamp", "Entry Price"})
	table.SetBorder(false)

	for i, r := range records {
		if i >= sampleLimit {
			break
		}

		table.Append([]string{
			string(r.Side),
			r.Timestamp.Format(time.RFC3339),
			fmt.Sprintf("%.2f", r.EntryPrice),
		})
	}

	table.Render()
}
