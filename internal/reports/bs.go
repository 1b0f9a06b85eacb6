package reports

import (
	"time"
)

// BalanceSheetRow summarises one account's balance as of the report date.
type BalanceSheetRow struct {
	AccountID int64   `json:"accountId,omitempty"`
	Code      string  `json:"code,omitempty"`
	Name      string  `json:"name"`
	Balance   float64 `json:"balance"`
}

// BalanceSheetSection groups accounts of one category.
type BalanceSheetSection struct {
	Label    string            `json:"label"`
	Accounts []BalanceSheetRow `json:"accounts"`
	Total    float64           `json:"total"`
}

// BalanceSheetTotals carries the closure check. IsBalanced uses Epsilon; an
// imbalance is surfaced as data, never as an error.
type BalanceSheetTotals struct {
	TotalAssets               float64 `json:"totalAssets"`
	TotalLiabilities          float64 `json:"totalLiabilities"`
	TotalEquity               float64 `json:"totalEquity"`
	TotalLiabilitiesAndEquity float64 `json:"totalLiabilitiesAndEquity"`
	IsBalanced                bool    `json:"isBalanced"`
	Difference                float64 `json:"difference"`
}

// BalanceSheet partitions accounts into assets vs liabilities and equity as
// of a single date. The equity section carries a synthetic current-period
// profit line so the identity holds while revenue and expense ledgers remain
// open (no fiscal-year close mechanism exists).
type BalanceSheet struct {
	AsOn               time.Time           `json:"asOn"`
	ProjectID          *int64              `json:"projectId,omitempty"`
	CurrentAssets      BalanceSheetSection `json:"currentAssets"`
	FixedAssets        BalanceSheetSection `json:"fixedAssets"`
	CurrentLiabilities BalanceSheetSection `json:"currentLiabilities"`
	LongTermLiabilities BalanceSheetSection `json:"longTermLiabilities"`
	Equity             BalanceSheetSection `json:"equity"`
	Totals             BalanceSheetTotals  `json:"totals"`
}
