package forecast

import "math"

// scenarioFactors scale the aggregate inflow/outflow summary only; this is
// a deliberate simplification over re-walking the months.
var scenarioFactors = []struct {
	name    string
	inflow  float64
	outflow float64
}{
	{"optimistic", 1.2, 0.8},
	{"pessimistic", 0.8, 1.2},
	{"conservative", 0.9, 1.1},
}

func buildScenarios(opening, totalIn, totalOut float64) []Scenario {
	out := make([]Scenario, 0, len(scenarioFactors))
	for _, f := range scenarioFactors {
		in := round2(totalIn * f.inflow)
		outflow := round2(totalOut * f.outflow)
		net := round2(in - outflow)
		out = append(out, Scenario{
			Name:             f.name,
			TotalInflows:     in,
			TotalOutflows:    outflow,
			NetCashFlow:      net,
			ProjectedClosing: round2(opening + net),
		})
	}
	return out
}

func buildRecommendations(months []MonthProjection, minBalance float64) []Recommendation {
	var out []Recommendation
	for _, m := range months {
		if m.ClosingBalance < 0 {
			out = append(out, Recommendation{
				Type:     "cash_shortage",
				Priority: "high",
				Year:     m.Year,
				Month:    m.Month,
				Amount:   m.ClosingBalance,
				Message:  "projected negative cash balance; arrange financing or defer outflows",
			})
		}
	}
	if minBalance > excessCashThreshold {
		out = append(out, Recommendation{
			Type:     "excess_cash",
			Priority: "medium",
			Amount:   minBalance,
			Message:  "cash floor exceeds operating needs; consider short-term investment",
		})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
