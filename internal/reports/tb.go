package reports

import (
	"time"

	"github.com/ledgerline/ledgerline/internal/coa"
)

// Epsilon is the tolerance for "is balanced" comparisons. Voucher-level
// balance is enforced exactly at entry; report totals accumulate float
// rounding and get this slack.
const Epsilon = 0.01

// TrialBalanceRow is one account's closing balance classified into a debit or
// credit column.
type TrialBalanceRow struct {
	AccountID int64    `json:"accountId"`
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	Category  coa.Category `json:"category"`
	Debit     float64  `json:"debit"`
	Credit    float64  `json:"credit"`
}

// TrialBalance lists every account with activity or a balance in the window.
// A nonzero Difference indicates a defect in the posting layer; it is
// reported as data so the report stays viewable.
type TrialBalance struct {
	From        time.Time        `json:"from"`
	To          time.Time        `json:"to"`
	ProjectID   *int64           `json:"projectId,omitempty"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  float64          `json:"totalDebit"`
	TotalCredit float64          `json:"totalCredit"`
	IsBalanced  bool             `json:"isBalanced"`
	Difference  float64          `json:"difference"`
}

// classifyClosing splits a closing balance into debit/credit columns relative
// to the account's normal side.
func classifyClosing(side coa.NormalSide, closing float64) (debit, credit float64) {
	onNormal := closing >= 0
	amount := closing
	if amount < 0 {
		amount = -amount
	}
	if (side == coa.SideDebit) == onNormal {
		return amount, 0
	}
	return 0, amount
}
