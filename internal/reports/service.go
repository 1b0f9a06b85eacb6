package reports

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ledgerline/ledgerline/internal/coa"
	"github.com/ledgerline/ledgerline/internal/ledger"
)

// Aggregator is the ledger aggregation contract every report is built on.
// Reports never take a second computation path, so they cannot diverge from
// the ledger.
type Aggregator interface {
	Statement(ctx context.Context, accountID int64, projectID *int64, from, to time.Time) (ledger.Statement, error)
}

// Registry lists the postable accounts reports iterate over.
type Registry interface {
	ListPostable(ctx context.Context) ([]coa.Account, error)
}

// maxConcurrentAccounts bounds the per-account fan-out.
const maxConcurrentAccounts = 8

// Service compiles trial balance, balance sheet, and profit & loss reports
// from repeated aggregator calls. Nothing is precomputed or cached; every run
// replays the entry stream.
type Service struct {
	agg      Aggregator
	registry Registry
}

// NewService constructs the report compiler.
func NewService(agg Aggregator, registry Registry) *Service {
	return &Service{agg: agg, registry: registry}
}

// statements aggregates every postable account over the window concurrently,
// preserving account order.
func (s *Service) statements(ctx context.Context, projectID *int64, from, to time.Time) ([]coa.Account, []ledger.Statement, error) {
	accounts, err := s.registry.ListPostable(ctx)
	if err != nil {
		return nil, nil, err
	}
	results := make([]ledger.Statement, len(accounts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentAccounts)
	for i, account := range accounts {
		i, account := i, account
		g.Go(func() error {
			st, err := s.agg.Statement(ctx, account.ID, projectID, from, to)
			if err != nil {
				return err
			}
			results[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return accounts, results, nil
}

// TrialBalance lists every postable account with activity or a nonzero
// closing balance in the window and checks column totals.
func (s *Service) TrialBalance(ctx context.Context, from, to time.Time, projectID *int64) (TrialBalance, error) {
	accounts, stmts, err := s.statements(ctx, projectID, from, to)
	if err != nil {
		return TrialBalance{}, err
	}
	tb := TrialBalance{From: from, To: to, ProjectID: projectID}
	for i, account := range accounts {
		st := stmts[i]
		if len(st.Rows) == 0 && st.ClosingBalance == 0 {
			continue
		}
		debit, credit := classifyClosing(account.NormalSide, st.ClosingBalance)
		tb.Rows = append(tb.Rows, TrialBalanceRow{
			AccountID: account.ID,
			Code:      account.Code,
			Name:      account.Name,
			Category:  account.Category,
			Debit:     debit,
			Credit:    credit,
		})
		tb.TotalDebit += debit
		tb.TotalCredit += credit
	}
	sort.Slice(tb.Rows, func(i, j int) bool { return tb.Rows[i].Code < tb.Rows[j].Code })
	tb.Difference = math.Abs(tb.TotalDebit - tb.TotalCredit)
	tb.IsBalanced = tb.Difference < Epsilon
	return tb, nil
}

// BalanceSheet aggregates every account from inception through asOn and
// partitions the balances by category.
func (s *Service) BalanceSheet(ctx context.Context, asOn time.Time, projectID *int64) (BalanceSheet, error) {
	accounts, stmts, err := s.statements(ctx, projectID, time.Time{}, asOn)
	if err != nil {
		return BalanceSheet{}, err
	}
	bs := BalanceSheet{
		AsOn:                asOn,
		ProjectID:           projectID,
		CurrentAssets:       BalanceSheetSection{Label: "Current Assets"},
		FixedAssets:         BalanceSheetSection{Label: "Fixed Assets"},
		CurrentLiabilities:  BalanceSheetSection{Label: "Current Liabilities"},
		LongTermLiabilities: BalanceSheetSection{Label: "Long Term Liabilities"},
		Equity:              BalanceSheetSection{Label: "Equity"},
	}
	var profit float64
	for i, account := range accounts {
		st := stmts[i]
		if len(st.Rows) == 0 && st.ClosingBalance == 0 {
			continue
		}
		row := BalanceSheetRow{
			AccountID: account.ID,
			Code:      account.Code,
			Name:      account.Name,
			Balance:   st.ClosingBalance,
		}
		switch account.Category {
		case coa.CategoryCurrentAsset:
			appendRow(&bs.CurrentAssets, row)
		case coa.CategoryFixedAsset:
			appendRow(&bs.FixedAssets, row)
		case coa.CategoryCurrentLiability:
			appendRow(&bs.CurrentLiabilities, row)
		case coa.CategoryLongTermLiability:
			appendRow(&bs.LongTermLiabilities, row)
		case coa.CategoryEquity:
			appendRow(&bs.Equity, row)
		case coa.CategoryRevenue:
			profit += st.ClosingBalance
		case coa.CategoryExpense:
			profit -= st.ClosingBalance
		}
	}
	// Revenue and expense ledgers stay open (no fiscal close); their net
	// result belongs to equity for the identity to hold.
	if profit != 0 {
		appendRow(&bs.Equity, BalanceSheetRow{Name: "Current Period Profit", Balance: profit})
	}

	bs.Totals.TotalAssets = bs.CurrentAssets.Total + bs.FixedAssets.Total
	bs.Totals.TotalLiabilities = bs.CurrentLiabilities.Total + bs.LongTermLiabilities.Total
	bs.Totals.TotalEquity = bs.Equity.Total
	bs.Totals.TotalLiabilitiesAndEquity = bs.Totals.TotalLiabilities + bs.Totals.TotalEquity
	bs.Totals.Difference = math.Abs(bs.Totals.TotalAssets - bs.Totals.TotalLiabilitiesAndEquity)
	bs.Totals.IsBalanced = bs.Totals.Difference < Epsilon
	return bs, nil
}

func appendRow(section *BalanceSheetSection, row BalanceSheetRow) {
	section.Accounts = append(section.Accounts, row)
	section.Total += row.Balance
}

// ProfitAndLoss reports revenue and expense activity over the window.
func (s *Service) ProfitAndLoss(ctx context.Context, from, to time.Time, projectID *int64) (ProfitAndLoss, error) {
	accounts, stmts, err := s.statements(ctx, projectID, from, to)
	if err != nil {
		return ProfitAndLoss{}, err
	}
	pl := ProfitAndLoss{From: from, To: to, ProjectID: projectID}
	for i, account := range accounts {
		st := stmts[i]
		if account.Category != coa.CategoryRevenue && account.Category != coa.CategoryExpense {
			continue
		}
		if len(st.Rows) == 0 && st.ClosingBalance == 0 {
			continue
		}
		row := ProfitAndLossRow{
			AccountID: account.ID,
			Code:      account.Code,
			Name:      account.Name,
			Amount:    st.ClosingBalance,
		}
		if account.Category == coa.CategoryRevenue {
			pl.Income = append(pl.Income, row)
			pl.Totals.TotalIncome += row.Amount
		} else {
			pl.Expenses = append(pl.Expenses, row)
			pl.Totals.TotalExpenses += row.Amount
		}
	}
	sort.Slice(pl.Income, func(i, j int) bool { return pl.Income[i].Code < pl.Income[j].Code })
	sort.Slice(pl.Expenses, func(i, j int) bool { return pl.Expenses[i].Code < pl.Expenses[j].Code })
	pl.Totals.NetProfit = pl.Totals.TotalIncome - pl.Totals.TotalExpenses
	if pl.Totals.TotalIncome != 0 {
		pl.Totals.ProfitMargin = pl.Totals.NetProfit / pl.Totals.TotalIncome * 100
	}
	return pl, nil
}
