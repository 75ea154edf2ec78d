package budget

import "time"

// ForecastLine projects one account's full-year outcome from its YTD run
// rate.
type ForecastLine struct {
	AccountID         int64   `json:"account_id"`
	AccountCode       string  `json:"account_code"`
	AccountName       string  `json:"account_name"`
	Category          string  `json:"category"`
	ActualYTD         float64 `json:"actual_ytd"`
	MonthlyRunRate    float64 `json:"monthly_run_rate"`
	ProjectedTotal    float64 `json:"projected_total"`
	TotalBudget       float64 `json:"total_budget"`
	ProjectedVariance float64 `json:"projected_variance"`
}

// ForecastReport extrapolates the remaining budget year from YTD actuals.
type ForecastReport struct {
	BudgetID      int64          `json:"budget_id"`
	BudgetName    string         `json:"budget_name"`
	AsOf          time.Time      `json:"as_of"`
	MonthsElapsed int            `json:"months_elapsed"`
	Lines         []ForecastLine `json:"lines"`
}

// ComputeForecast projects each line by carrying the average monthly actual
// forward through December. With no elapsed months the projection is zero.
func ComputeForecast(b Budget, actuals map[int64]float64, asOf time.Time) ForecastReport {
	elapsed := monthsElapsed(b, asOf)
	report := ForecastReport{BudgetID: b.ID, BudgetName: b.Name, AsOf: asOf, MonthsElapsed: elapsed}
	for _, line := range b.Lines {
		fl := ForecastLine{
			AccountID:   line.AccountID,
			AccountCode: line.AccountCode,
			AccountName: line.AccountName,
			Category:    line.Category,
			ActualYTD:   round2(actuals[line.AccountID]),
			TotalBudget: round2(line.TotalBudget),
		}
		if elapsed > 0 {
			fl.MonthlyRunRate = round2(fl.ActualYTD / float64(elapsed))
			fl.ProjectedTotal = round2(fl.ActualYTD + fl.MonthlyRunRate*float64(12-elapsed))
		}
		fl.ProjectedVariance = round2(fl.ProjectedTotal - fl.TotalBudget)
		report.Lines = append(report.Lines, fl)
	}
	return report
}
