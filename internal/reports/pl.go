package reports

import (
	"time"
)

// ProfitAndLossRow is one revenue or expense account's net amount over the
// period.
type ProfitAndLossRow struct {
	AccountID int64   `json:"accountId"`
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
}

// ProfitAndLossTotals carries the period result. ProfitMargin is zero when
// there is no income, not a division error.
type ProfitAndLossTotals struct {
	TotalIncome   float64 `json:"totalIncome"`
	TotalExpenses float64 `json:"totalExpenses"`
	NetProfit     float64 `json:"netProfit"`
	ProfitMargin  float64 `json:"profitMargin"`
}

// ProfitAndLoss reports revenue against expenses over a period.
type ProfitAndLoss struct {
	From      time.Time           `json:"from"`
	To        time.Time           `json:"to"`
	ProjectID *int64              `json:"projectId,omitempty"`
	Income    []ProfitAndLossRow  `json:"income"`
	Expenses  []ProfitAndLossRow  `json:"expenses"`
	Totals    ProfitAndLossTotals `json:"totals"`
}
