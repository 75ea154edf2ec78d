package budget

import (
	"math"
	"sort"
	"time"

	"github.com/aurum-erp/aurum-erp/internal/accounting/accounts"
)

// VarianceStatus classifies a line or category against its plan.
type VarianceStatus string

const (
	StatusOnTrack     VarianceStatus = "on_track"
	StatusFavorable   VarianceStatus = "favorable"
	StatusUnfavorable VarianceStatus = "unfavorable"
)

// varianceThresholdPct is the band within which a variance is on track.
const varianceThresholdPct = 10

// LineVariance compares one budget line's YTD plan against YTD actuals.
type LineVariance struct {
	AccountID   int64          `json:"account_id"`
	AccountCode string         `json:"account_code"`
	AccountName string         `json:"account_name"`
	Category    string         `json:"category"`
	BudgetYTD   float64        `json:"budget_ytd"`
	ActualYTD   float64        `json:"actual_ytd"`
	Variance    float64        `json:"variance"`
	VariancePct float64        `json:"variance_pct"`
	Status      VarianceStatus `json:"status"`
}

// CategoryVariance aggregates line variances sharing a category.
type CategoryVariance struct {
	Category    string         `json:"category"`
	BudgetYTD   float64        `json:"budget_ytd"`
	ActualYTD   float64        `json:"actual_ytd"`
	Variance    float64        `json:"variance"`
	VariancePct float64        `json:"variance_pct"`
	Status      VarianceStatus `json:"status"`
}

// VarianceReport is the full YTD budget-versus-actual comparison.
type VarianceReport struct {
	BudgetID      int64              `json:"budget_id"`
	BudgetName    string             `json:"budget_name"`
	AsOf          time.Time          `json:"as_of"`
	MonthsElapsed int                `json:"months_elapsed"`
	Lines         []LineVariance     `json:"lines"`
	Categories    []CategoryVariance `json:"categories"`
	TotalBudget   float64            `json:"total_budget"`
	TotalActual   float64            `json:"total_actual"`
}

// Classify applies the threshold band and the account-type direction rule:
// above plan is favorable for revenue, below plan is favorable for
// everything else.
func Classify(accType accounts.AccountType, variancePct float64) VarianceStatus {
	if math.Abs(variancePct) <= varianceThresholdPct {
		return StatusOnTrack
	}
	if accType == accounts.AccountTypeRevenue {
		if variancePct > 0 {
			return StatusFavorable
		}
		return StatusUnfavorable
	}
	if variancePct < 0 {
		return StatusFavorable
	}
	return StatusUnfavorable
}

// monthsElapsed clamps the as-of month to the budget year.
func monthsElapsed(b Budget, asOf time.Time) int {
	if asOf.Before(b.StartDate) {
		return 0
	}
	if asOf.Year() > b.BudgetYear {
		return 12
	}
	return int(asOf.Month())
}

// ComputeVariance compares a budget's lines against directed YTD actuals,
// keyed by account id. Variance = actual − budget; the percentage is zero
// when the plan is zero.
func ComputeVariance(b Budget, actuals map[int64]float64, asOf time.Time) VarianceReport {
	elapsed := monthsElapsed(b, asOf)
	report := VarianceReport{BudgetID: b.ID, BudgetName: b.Name, AsOf: asOf, MonthsElapsed: elapsed}

	type catAgg struct {
		budget  float64
		actual  float64
		revenue bool
		mixed   bool
	}
	cats := make(map[string]*catAgg)

	for _, line := range b.Lines {
		var planned float64
		if elapsed > 0 {
			planned = line.Monthly.Through(time.Month(elapsed))
		}
		actual := actuals[line.AccountID]
		lv := LineVariance{
			AccountID:   line.AccountID,
			AccountCode: line.AccountCode,
			AccountName: line.AccountName,
			Category:    line.Category,
			BudgetYTD:   round2(planned),
			ActualYTD:   round2(actual),
			Variance:    round2(actual - planned),
		}
		if lv.BudgetYTD != 0 {
			lv.VariancePct = round2(lv.Variance / lv.BudgetYTD * 100)
		}
		lv.Status = Classify(line.AccountType, lv.VariancePct)
		report.Lines = append(report.Lines, lv)
		report.TotalBudget += lv.BudgetYTD
		report.TotalActual += lv.ActualYTD

		agg, ok := cats[line.Category]
		if !ok {
			agg = &catAgg{revenue: line.AccountType == accounts.AccountTypeRevenue}
			cats[line.Category] = agg
		} else if agg.revenue != (line.AccountType == accounts.AccountTypeRevenue) {
			agg.mixed = true
		}
		agg.budget += lv.BudgetYTD
		agg.actual += lv.ActualYTD
	}

	for name, agg := range cats {
		cv := CategoryVariance{
			Category:  name,
			BudgetYTD: round2(agg.budget),
			ActualYTD: round2(agg.actual),
			Variance:  round2(agg.actual - agg.budget),
		}
		if cv.BudgetYTD != 0 {
			cv.VariancePct = round2(cv.Variance / cv.BudgetYTD * 100)
		}
		// A category mixing revenue and non-revenue accounts is judged
		// as spending.
		catType := accounts.AccountTypeExpense
		if agg.revenue && !agg.mixed {
			catType = accounts.AccountTypeRevenue
		}
		cv.Status = Classify(catType, cv.VariancePct)
		report.Categories = append(report.Categories, cv)
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		return report.Categories[i].Category < report.Categories[j].Category
	})

	report.TotalBudget = round2(report.TotalBudget)
	report.TotalActual = round2(report.TotalActual)
	return report
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
