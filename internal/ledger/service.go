package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/ledgerline/ledgerline/internal/coa"
)

// Registry is the slice of the account registry the aggregator needs.
type Registry interface {
	Resolve(ctx context.Context, id int64) (coa.Account, error)
}

// Service replays posted entries chronologically to produce running and
// closing balances. It never mutates entries; the posting engine owns writes.
type Service struct {
	repo     Repository
	registry Registry
}

// NewService constructs the aggregator.
func NewService(repo Repository, registry Registry) *Service {
	return &Service{repo: repo, registry: registry}
}

// Statement computes the ledger for one account over [from, to], optionally
// scoped to a project. A window with no entries yields the opening balance as
// both opening and closing with an empty row list.
func (s *Service) Statement(ctx context.Context, accountID int64, projectID *int64, from, to time.Time) (Statement, error) {
	account, err := s.registry.Resolve(ctx, accountID)
	if err != nil {
		return Statement{}, err
	}

	// The baseline is the latest initial balance dated at or before the
	// window start. Inception windows (zero from) use the window end so a
	// recorded opening balance is still picked up.
	baselineCutoff := from
	if from.IsZero() {
		baselineCutoff = to
	}
	opening := 0.0
	ib, err := s.repo.LatestInitialBalance(ctx, accountID, projectID, baselineCutoff)
	switch {
	case err == nil:
		opening = ib.Amount
	case errors.Is(err, ErrInitialBalanceNotFound):
		// no baseline, opening stays zero
	default:
		return Statement{}, err
	}

	entries, err := s.repo.EntriesInWindow(ctx, accountID, projectID, from, to)
	if err != nil {
		return Statement{}, err
	}

	st := Statement{
		Account:        account,
		From:           from,
		To:             to,
		OpeningBalance: opening,
		ClosingBalance: opening,
	}
	balance := opening
	for _, e := range entries {
		balance += e.Contribution(account.NormalSide)
		st.Rows = append(st.Rows, Row{Entry: e, RunningBalance: balance})
		st.TotalDebit += e.Debit
		st.TotalCredit += e.Credit
	}
	st.ClosingBalance = balance
	return st, nil
}

// SetInitialBalance records or replaces the opening baseline for an account.
func (s *Service) SetInitialBalance(ctx context.Context, accountID int64, projectID *int64, asOf time.Time, amount float64) (InitialBalance, error) {
	account, err := s.registry.Resolve(ctx, accountID)
	if err != nil {
		return InitialBalance{}, err
	}
	if !account.Postable() {
		return InitialBalance{}, coa.ErrNotPostable
	}
	return s.repo.UpsertInitialBalance(ctx, InitialBalance{
		AccountID: accountID,
		ProjectID: projectID,
		AsOf:      asOf,
		Amount:    amount,
	})
}
