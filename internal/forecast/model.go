package forecast

import (
	"errors"
	"time"
)

var (
	// ErrInvalidRange occurs when the horizon is empty or reversed.
	ErrInvalidRange = errors.New("forecast: invalid date range")
	// ErrHorizonTooLong bounds the month loop beyond the caller's end date.
	ErrHorizonTooLong = errors.New("forecast: horizon exceeds month limit")
)

// maxMonths bounds the projection loop.
const maxMonths = 120

// excessCashThreshold is the horizon-minimum balance above which idle cash
// is flagged, in base currency.
const excessCashThreshold = 100000

// defaultSalesGrowthRate scales prior-year sales when no rate is given.
const defaultSalesGrowthRate = 0.05

// Options tunes forecast generation.
type Options struct {
	// SalesGrowthRate scales same-month prior-year sales. Nil means the
	// default of 0.05; an explicit zero projects flat sales.
	SalesGrowthRate *float64
}

func (o Options) growthRate() float64 {
	if o.SalesGrowthRate == nil {
		return defaultSalesGrowthRate
	}
	return *o.SalesGrowthRate
}

// OpenInvoice is an uncollected receivable supplied by the invoicing side.
type OpenInvoice struct {
	ID      int64
	Total   float64
	DueDate time.Time
}

// CollectionProbability maps days overdue to the likelihood an invoice is
// collected, falling with age.
func CollectionProbability(daysOverdue int) float64 {
	switch {
	case daysOverdue <= 0:
		return 0.95
	case daysOverdue <= 30:
		return 0.85
	case daysOverdue <= 60:
		return 0.70
	case daysOverdue <= 90:
		return 0.50
	default:
		return 0.25
	}
}

// Inflows breaks down projected cash in for one month.
type Inflows struct {
	ReceivablesCollection float64 `json:"receivables_collection"`
	SalesRevenue          float64 `json:"sales_revenue"`
	OtherIncome           float64 `json:"other_income"`
	Total                 float64 `json:"total"`
}

// Outflows breaks down projected cash out for one month. Capital
// expenditure and loan payments are explicit placeholders pending real
// schedules.
type Outflows struct {
	PayablesPayment    float64 `json:"payables_payment"`
	OperatingExpenses  float64 `json:"operating_expenses"`
	CapitalExpenditure float64 `json:"capital_expenditure"`
	LoanPayments       float64 `json:"loan_payments"`
	TaxPayments        float64 `json:"tax_payments"`
	Total              float64 `json:"total"`
}

// MonthProjection is one month of the forecast walk.
type MonthProjection struct {
	Year           int      `json:"year"`
	Month          int      `json:"month"`
	Inflows        Inflows  `json:"inflows"`
	Outflows       Outflows `json:"outflows"`
	NetCashFlow    float64  `json:"net_cash_flow"`
	OpeningBalance float64  `json:"opening_balance"`
	ClosingBalance float64  `json:"closing_balance"`
}

// Scenario scales the aggregate summary; months are not re-walked.
type Scenario struct {
	Name             string  `json:"name"`
	TotalInflows     float64 `json:"total_inflows"`
	TotalOutflows    float64 `json:"total_outflows"`
	NetCashFlow      float64 `json:"net_cash_flow"`
	ProjectedClosing float64 `json:"projected_closing"`
}

// Recommendation flags a condition worth acting on.
type Recommendation struct {
	Type     string  `json:"type"`
	Priority string  `json:"priority"`
	Year     int     `json:"year,omitempty"`
	Month    int     `json:"month,omitempty"`
	Amount   float64 `json:"amount"`
	Message  string  `json:"message"`
}

// Forecast is the full projection over a horizon.
type Forecast struct {
	Start           time.Time         `json:"start"`
	End             time.Time         `json:"end"`
	OpeningBalance  float64           `json:"opening_balance"`
	Months          []MonthProjection `json:"months"`
	TotalInflows    float64           `json:"total_inflows"`
	TotalOutflows   float64           `json:"total_outflows"`
	MinBalance      float64           `json:"min_balance"`
	MaxBalance      float64           `json:"max_balance"`
	Scenarios       []Scenario        `json:"scenarios"`
	Recommendations []Recommendation  `json:"recommendations"`
}
