package ledger

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/coa"
)

// Entry is one account-side effect of a voucher: its debit or credit leg.
// Exactly one of Debit and Credit is non-zero.
type Entry struct {
	ID          int64
	AccountID   int64
	VoucherID   uuid.UUID
	VoucherNo   string
	Date        time.Time
	Debit       float64
	Credit      float64
	Particulars string
	ProjectID   *int64
	CreatedAt   time.Time
}

// Contribution returns the entry's signed effect on a balance held on the
// given normal side.
func (e Entry) Contribution(side coa.NormalSide) float64 {
	if side == coa.SideCredit {
		return e.Credit - e.Debit
	}
	return e.Debit - e.Credit
}

// InitialBalance is a manually entered opening balance for an account as of a
// date, used as the aggregation baseline. Amount is expressed on the
// account's normal side.
type InitialBalance struct {
	ID        int64
	AccountID int64
	ProjectID *int64
	AsOf      time.Time
	Amount    float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Row is one ledger statement line with the balance after applying it.
type Row struct {
	Entry
	RunningBalance float64
}

// Statement is the aggregated ledger for one account over a date window.
type Statement struct {
	Account        coa.Account
	From           time.Time
	To             time.Time
	OpeningBalance float64
	Rows           []Row
	TotalDebit     float64
	TotalCredit    float64
	ClosingBalance float64
}

// ErrInitialBalanceNotFound indicates no baseline exists for the account.
var ErrInitialBalanceNotFound = errors.New("ledger: initial balance not found")
