package ledger

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/coa"
)

type memoryLedgerRepo struct {
	entries  []Entry
	balances []InitialBalance
	nextID   int64
}

func (r *memoryLedgerRepo) EntriesInWindow(ctx context.Context, accountID int64, projectID *int64, from, to time.Time) ([]Entry, error) {
	var out []Entry
	for _, e := range r.entries {
		if e.AccountID != accountID {
			continue
		}
		if e.Date.Before(from) || e.Date.After(to) {
			continue
		}
		if projectID != nil && (e.ProjectID == nil || *e.ProjectID != *projectID) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].VoucherNo < out[j].VoucherNo
	})
	return out, nil
}

func (r *memoryLedgerRepo) LatestInitialBalance(ctx context.Context, accountID int64, projectID *int64, asOf time.Time) (InitialBalance, error) {
	found := InitialBalance{}
	ok := false
	for _, ib := range r.balances {
		if ib.AccountID != accountID || ib.AsOf.After(asOf) {
			continue
		}
		if projectID != nil && (ib.ProjectID == nil || *ib.ProjectID != *projectID) {
			continue
		}
		if !ok || ib.AsOf.After(found.AsOf) {
			found = ib
			ok = true
		}
	}
	if !ok {
		return InitialBalance{}, ErrInitialBalanceNotFound
	}
	return found, nil
}

func (r *memoryLedgerRepo) UpsertInitialBalance(ctx context.Context, ib InitialBalance) (InitialBalance, error) {
	for i, existing := range r.balances {
		if existing.AccountID == ib.AccountID && existing.AsOf.Equal(ib.AsOf) {
			r.balances[i].Amount = ib.Amount
			return r.balances[i], nil
		}
	}
	r.nextID++
	ib.ID = r.nextID
	r.balances = append(r.balances, ib)
	return ib, nil
}

type staticRegistry map[int64]coa.Account

func (r staticRegistry) Resolve(ctx context.Context, id int64) (coa.Account, error) {
	account, ok := r[id]
	if !ok {
		return coa.Account{}, coa.ErrAccountNotFound
	}
	return account, nil
}

func day(d int) time.Time {
	return time.Date(2025, time.January, d, 0, 0, 0, 0, time.UTC)
}

func ledgerFixture() (staticRegistry, *memoryLedgerRepo) {
	registry := staticRegistry{
		1: {ID: 1, Code: "1101", Name: "Cash", NormalSide: coa.SideDebit, Category: coa.CategoryCurrentAsset, IsActive: true},
		2: {ID: 2, Code: "4101", Name: "Sales", NormalSide: coa.SideCredit, Category: coa.CategoryRevenue, IsActive: true},
		3: {ID: 3, Code: "1000", Name: "Assets", IsGroup: true, NormalSide: coa.SideDebit, Category: coa.CategoryCurrentAsset, IsActive: true},
	}
	return registry, &memoryLedgerRepo{}
}

func TestStatementRunningBalanceDebitAccount(t *testing.T) {
	registry, repo := ledgerFixture()
	repo.entries = []Entry{
		{AccountID: 1, VoucherNo: "CV-2025-0001", Date: day(2), Debit: 1000, Particulars: "sale"},
		{AccountID: 1, VoucherNo: "DV-2025-0001", Date: day(5), Credit: 300, Particulars: "rent"},
	}
	svc := NewService(repo, registry)

	st, err := svc.Statement(context.Background(), 1, nil, day(1), day(31))
	require.NoError(t, err)
	require.Equal(t, 0.0, st.OpeningBalance)
	require.Len(t, st.Rows, 2)
	require.Equal(t, 1000.0, st.Rows[0].RunningBalance)
	require.Equal(t, 700.0, st.Rows[1].RunningBalance)
	require.Equal(t, 1000.0, st.TotalDebit)
	require.Equal(t, 300.0, st.TotalCredit)
	require.Equal(t, 700.0, st.ClosingBalance)
}

func TestStatementCreditAccountArithmetic(t *testing.T) {
	registry, repo := ledgerFixture()
	repo.entries = []Entry{
		{AccountID: 2, VoucherNo: "CV-2025-0001", Date: day(2), Credit: 1000},
		{AccountID: 2, VoucherNo: "JV-2025-0001", Date: day(10), Debit: 200},
	}
	svc := NewService(repo, registry)

	st, err := svc.Statement(context.Background(), 2, nil, day(1), day(31))
	require.NoError(t, err)
	require.Equal(t, 1000.0, st.Rows[0].RunningBalance)
	require.Equal(t, 800.0, st.Rows[1].RunningBalance)
	require.Equal(t, 800.0, st.ClosingBalance)
}

func TestStatementOrdersByDateThenVoucherNo(t *testing.T) {
	registry, repo := ledgerFixture()
	repo.entries = []Entry{
		{AccountID: 1, VoucherNo: "CV-2025-0002", Date: day(3), Debit: 10},
		{AccountID: 1, VoucherNo: "CV-2025-0001", Date: day(3), Debit: 20},
		{AccountID: 1, VoucherNo: "CV-2025-0003", Date: day(1), Debit: 5},
	}
	svc := NewService(repo, registry)

	st, err := svc.Statement(context.Background(), 1, nil, day(1), day(31))
	require.NoError(t, err)
	require.Equal(t, "CV-2025-0003", st.Rows[0].VoucherNo)
	require.Equal(t, "CV-2025-0001", st.Rows[1].VoucherNo)
	require.Equal(t, "CV-2025-0002", st.Rows[2].VoucherNo)
}

func TestStatementOpeningBaseline(t *testing.T) {
	registry, repo := ledgerFixture()
	repo.balances = []InitialBalance{
		{AccountID: 1, AsOf: day(1), Amount: 500},
		{AccountID: 1, AsOf: day(10), Amount: 900},
	}
	repo.entries = []Entry{
		{AccountID: 1, VoucherNo: "CV-2025-0001", Date: day(12), Debit: 100},
	}
	svc := NewService(repo, registry)

	// The latest baseline at or before the window start wins.
	st, err := svc.Statement(context.Background(), 1, nil, day(11), day(31))
	require.NoError(t, err)
	require.Equal(t, 900.0, st.OpeningBalance)
	require.Equal(t, 1000.0, st.ClosingBalance)

	st, err = svc.Statement(context.Background(), 1, nil, day(5), day(9))
	require.NoError(t, err)
	require.Equal(t, 500.0, st.OpeningBalance)
	require.Empty(t, st.Rows)
	require.Equal(t, 500.0, st.ClosingBalance)
}

func TestStatementInceptionWindowPicksUpBaseline(t *testing.T) {
	registry, repo := ledgerFixture()
	repo.balances = []InitialBalance{{AccountID: 1, AsOf: day(1), Amount: 250}}
	svc := NewService(repo, registry)

	st, err := svc.Statement(context.Background(), 1, nil, time.Time{}, day(31))
	require.NoError(t, err)
	require.Equal(t, 250.0, st.OpeningBalance)
	require.Equal(t, 250.0, st.ClosingBalance)
}

func TestStatementProjectScoped(t *testing.T) {
	registry, repo := ledgerFixture()
	p1, p2 := int64(1), int64(2)
	repo.entries = []Entry{
		{AccountID: 1, VoucherNo: "CV-2025-0001", Date: day(2), Debit: 100, ProjectID: &p1},
		{AccountID: 1, VoucherNo: "CV-2025-0002", Date: day(3), Debit: 40, ProjectID: &p2},
	}
	svc := NewService(repo, registry)

	st, err := svc.Statement(context.Background(), 1, &p1, day(1), day(31))
	require.NoError(t, err)
	require.Len(t, st.Rows, 1)
	require.Equal(t, 100.0, st.ClosingBalance)
}

func TestStatementUnknownAccount(t *testing.T) {
	registry, repo := ledgerFixture()
	svc := NewService(repo, registry)

	_, err := svc.Statement(context.Background(), 404, nil, day(1), day(31))
	require.ErrorIs(t, err, coa.ErrAccountNotFound)
}

func TestSetInitialBalance(t *testing.T) {
	registry, repo := ledgerFixture()
	svc := NewService(repo, registry)

	ib, err := svc.SetInitialBalance(context.Background(), 1, nil, day(1), 750)
	require.NoError(t, err)
	require.Equal(t, 750.0, ib.Amount)

	// Re-entering the same date replaces the amount.
	ib, err = svc.SetInitialBalance(context.Background(), 1, nil, day(1), 800)
	require.NoError(t, err)
	require.Equal(t, 800.0, ib.Amount)
	require.Len(t, repo.balances, 1)

	_, err = svc.SetInitialBalance(context.Background(), 3, nil, day(1), 10)
	require.ErrorIs(t, err, coa.ErrNotPostable)
}

func TestFormatBalanceSuffix(t *testing.T) {
	require.Equal(t, "1,000.00 Dr", FormatBalance(1000, coa.SideDebit))
	require.Equal(t, "1,000.00 Cr", FormatBalance(-1000, coa.SideDebit))
	require.Equal(t, "250.50 Cr", FormatBalance(250.5, coa.SideCredit))
	require.Equal(t, "250.50 Dr", FormatBalance(-250.5, coa.SideCredit))
}
