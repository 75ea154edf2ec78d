package budget

import (
	"time"

	"github.com/aurum-erp/aurum-erp/internal/accounting/accounts"
)

// Status enumerates budget lifecycle states.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusApproved   Status = "approved"
	StatusSuperseded Status = "superseded"
)

// Budget is an annual plan. Revisions form a chain through ParentBudgetID;
// creating a revision supersedes the original.
type Budget struct {
	ID             int64
	Name           string
	BudgetYear     int
	StartDate      time.Time
	EndDate        time.Time
	Status         Status
	Currency       string
	ParentBudgetID *int64
	RevisionNumber int
	Reason         string
	CreatedBy      int64
	ApprovedBy     *int64
	ApprovedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Lines          []BudgetLine
}

// BudgetLine plans one account's spending or earning across twelve months.
type BudgetLine struct {
	ID           int64
	BudgetID     int64
	AccountID    int64
	Category     string
	Subcategory  string
	CostCenterID *int64
	Department   string
	Monthly      MonthlyAmounts
	TotalBudget  float64
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Denormalised from the account on read.
	AccountCode string
	AccountName string
	AccountType accounts.AccountType
}

// MonthlyAmounts carries the twelve named monthly figures of a budget line.
type MonthlyAmounts struct {
	January   float64 `json:"january"`
	February  float64 `json:"february"`
	March     float64 `json:"march"`
	April     float64 `json:"april"`
	May       float64 `json:"may"`
	June      float64 `json:"june"`
	July      float64 `json:"july"`
	August    float64 `json:"august"`
	September float64 `json:"september"`
	October   float64 `json:"october"`
	November  float64 `json:"november"`
	December  float64 `json:"december"`
}

func (m MonthlyAmounts) array() [12]float64 {
	return [12]float64{m.January, m.February, m.March, m.April, m.May, m.June,
		m.July, m.August, m.September, m.October, m.November, m.December}
}

// Amount returns the figure for one calendar month.
func (m MonthlyAmounts) Amount(month time.Month) float64 {
	return m.array()[int(month)-1]
}

// Set assigns the figure for one calendar month.
func (m *MonthlyAmounts) Set(month time.Month, v float64) {
	switch month {
	case time.January:
		m.January = v
	case time.February:
		m.February = v
	case time.March:
		m.March = v
	case time.April:
		m.April = v
	case time.May:
		m.May = v
	case time.June:
		m.June = v
	case time.July:
		m.July = v
	case time.August:
		m.August = v
	case time.September:
		m.September = v
	case time.October:
		m.October = v
	case time.November:
		m.November = v
	case time.December:
		m.December = v
	}
}

// Total sums all twelve months.
func (m MonthlyAmounts) Total() float64 {
	return m.Through(time.December)
}

// Through sums January up to and including the given month.
func (m MonthlyAmounts) Through(month time.Month) float64 {
	var total float64
	arr := m.array()
	for i := 0; i < int(month); i++ {
		total += arr[i]
	}
	return total
}
