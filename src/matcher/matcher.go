package matcher

import (
	"math"
	"time"

	"mtf-trader/src/models"
)

// Match pairs one candidate record with one reference record of the same
// side whose timestamps sit within the tolerance window.
type Match struct {
	Candidate     *models.TradeRecord
	Reference     *models.TradeRecord
	TimeDelta     time.Duration
	PriceDeltaPct float64
}

type Report struct {
	Matches            []Match
	UnmatchedCandidate []*models.TradeRecord
	UnmatchedReference []*models.TradeRecord
	Window             time.Duration
}

// MatchLedgers reconciles a candidate trade log (e.g. live) against a
// reference log (e.g. backtest). Matching is greedy: each candidate record,
// in ledger order, takes the first still-unused same-side reference record
// within the window. This is order-dependent and does not minimize the total
// time delta across all pairs; it is a diagnostic report, not an audit.
func MatchLedgers(candidate, reference []*models.TradeRecord, window time.Duration) *Report {
	report := &Report{Window: window}
	used := make([]bool, len(reference))

	for _, c := range candidate {
		matched := false

		for i, r := range reference {
			if used[i] || r.Side != c.Side {
				continue
			}

			delta := c.Timestamp.Sub(r.Timestamp)
			if absDuration(delta) > window {
				continue
			}

			priceDeltaPct := 0.0
			if c.EntryPrice != 0 {
				priceDeltaPct = math.Abs(c.EntryPrice-r.EntryPrice) / c.EntryPrice * 100
			}

			report.Matches = append(report.Matches, Match{
				Candidate:     c,
				Reference:     r,
				TimeDelta:     delta,
				PriceDeltaPct: priceDeltaPct,
			})

			used[i] = true
			matched = true
			break
		}

		if !matched {
			report.UnmatchedCandidate = append(report.UnmatchedCandidate, c)
		}
	}

	for i, r := range reference {
		if !used[i] {
			report.UnmatchedReference = append(report.UnmatchedReference, r)
		}
	}

	return report
}

func (r *Report) MatchedCount() int {
	return len(r.Matches)
}

// MatchRate is matched pairs over the candidate record count.
func (r *Report) MatchRate() float64 {
	total := len(r.Matches) + len(r.UnmatchedCandidate)
	if total == 0 {
		return 0
	}

	return float64(len(r.Matches)) / float64(total) * 100
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}

	return d
}
