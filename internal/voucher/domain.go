package voucher

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/coa"
)

// Type discriminates the four postable voucher shapes.
type Type string

const (
	TypeDebit   Type = "DEBIT"
	TypeCredit  Type = "CREDIT"
	TypeContra  Type = "CONTRA"
	TypeJournal Type = "JOURNAL"
)

// Prefix returns the voucher number prefix for the type.
func (t Type) Prefix() string {
	switch t {
	case TypeDebit:
		return "DV"
	case TypeCredit:
		return "CV"
	case TypeContra:
		return "CN"
	case TypeJournal:
		return "JV"
	}
	return ""
}

// Valid reports whether t is a known voucher type.
func (t Type) Valid() bool {
	return t.Prefix() != ""
}

// ContraClass describes how a contra voucher moved money between the entity's
// own cash and bank accounts.
type ContraClass string

const (
	ContraDeposit    ContraClass = "DEPOSIT"
	ContraWithdrawal ContraClass = "WITHDRAWAL"
	ContraTransfer   ContraClass = "TRANSFER"
)

// Voucher is a single recorded financial transaction. One struct carries all
// four variants; Type selects which fields are meaningful. Amount drives
// DEBIT, CREDIT, and CONTRA vouchers; JOURNAL vouchers carry independently
// entered DrAmount and CrAmount that must agree before confirmation.
type Voucher struct {
	ID        uuid.UUID
	Type      Type
	Number    *string
	Date      time.Time
	Narration string
	ProjectID *int64
	Confirmed bool

	DebitAccountID  int64
	CreditAccountID int64
	Amount          float64

	DrAmount        float64
	CrAmount        float64
	DebitProjectID  *int64
	CreditProjectID *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DebitAmount returns the amount posted to the debit leg.
func (v Voucher) DebitAmount() float64 {
	if v.Type == TypeJournal {
		return v.DrAmount
	}
	return v.Amount
}

// CreditAmount returns the amount posted to the credit leg.
func (v Voucher) CreditAmount() float64 {
	if v.Type == TypeJournal {
		return v.CrAmount
	}
	return v.Amount
}

// Classify resolves a contra voucher's movement class from the two accounts'
// kinds. Money moves from the credit leg to the debit leg.
func Classify(from, to coa.Kind) ContraClass {
	switch {
	case from == coa.KindCash && to == coa.KindBank:
		return ContraDeposit
	case from == coa.KindBank && to == coa.KindCash:
		return ContraWithdrawal
	default:
		return ContraTransfer
	}
}

var (
	// ErrNotFound indicates the voucher id does not resolve.
	ErrNotFound = errors.New("voucher: not found")
	// ErrAlreadyPosted indicates a confirm or edit attempt on a posted voucher.
	ErrAlreadyPosted = errors.New("voucher: already posted")
	// ErrDeleteConfirmed requires the destructive flag for posted vouchers.
	ErrDeleteConfirmed = errors.New("voucher: deleting a posted voucher is destructive and must be forced")
	// ErrIdempotencyConflict indicates the caller's idempotency key was already used.
	ErrIdempotencyConflict = errors.New("voucher: idempotent request already processed")
)

// ValidationError is a client-fixable input rejection. It is always returned
// before any persistence write.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("voucher: %s: %s", e.Field, e.Message)
}

// ErrorField identifies the offending input field.
func (e ValidationError) ErrorField() string {
	return e.Field
}

// amountsEqual compares two currency amounts after normalising to two decimal
// places, mirroring how amounts are stored.
func amountsEqual(a, b float64) bool {
	return fmt.Sprintf("%.2f", a) == fmt.Sprintf("%.2f", b)
}

// FiscalYear returns the fiscal year label for a date given the month the
// fiscal year starts in. The label is the starting calendar year.
func FiscalYear(date time.Time, startMonth time.Month) int {
	if date.Month() >= startMonth {
		return date.Year()
	}
	return date.Year() - 1
}

// FormatNumber renders the sequential voucher number, e.g. DV-2025-0042.
func FormatNumber(t Type, fiscalYear int, seq int64) string {
	return fmt.Sprintf("%s-%d-%04d", t.Prefix(), fiscalYear, seq)
}
