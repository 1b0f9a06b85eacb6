package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads ledger entries and manages initial balances. Entries are
// written exclusively by the posting engine.
type Repository interface {
	// EntriesInWindow returns the account's entries with date in [from, to],
	// ordered by (date ASC, voucher_no ASC). The ordering is the tie-break
	// contract that makes replay deterministic.
	EntriesInWindow(ctx context.Context, accountID int64, projectID *int64, from, to time.Time) ([]Entry, error)
	// LatestInitialBalance returns the initial balance with the newest as-of
	// date not after asOf, or ErrInitialBalanceNotFound.
	LatestInitialBalance(ctx context.Context, accountID int64, projectID *int64, asOf time.Time) (InitialBalance, error)
	UpsertInitialBalance(ctx context.Context, ib InitialBalance) (InitialBalance, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the Postgres-backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) EntriesInWindow(ctx context.Context, accountID int64, projectID *int64, from, to time.Time) ([]Entry, error) {
	const q = `SELECT id, account_id, voucher_id, voucher_no, date, debit, credit, particulars, project_id, created_at
FROM ledger_entries
WHERE account_id=$1 AND date BETWEEN $2 AND $3 AND ($4::bigint IS NULL OR project_id=$4)
ORDER BY date ASC, voucher_no ASC`
	rows, err := r.db.Query(ctx, q, accountID, from, to, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.VoucherID, &e.VoucherNo, &e.Date, &e.Debit, &e.Credit, &e.Particulars, &e.ProjectID, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) LatestInitialBalance(ctx context.Context, accountID int64, projectID *int64, asOf time.Time) (InitialBalance, error) {
	const q = `SELECT id, account_id, project_id, as_of, amount, created_at, updated_at
FROM initial_balances
WHERE account_id=$1 AND as_of <= $2 AND ($3::bigint IS NULL OR project_id=$3)
ORDER BY as_of DESC LIMIT 1`
	var ib InitialBalance
	err := r.db.QueryRow(ctx, q, accountID, asOf, projectID).
		Scan(&ib.ID, &ib.AccountID, &ib.ProjectID, &ib.AsOf, &ib.Amount, &ib.CreatedAt, &ib.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return InitialBalance{}, ErrInitialBalanceNotFound
		}
		return InitialBalance{}, err
	}
	return ib, nil
}

func (r *repository) UpsertInitialBalance(ctx context.Context, ib InitialBalance) (InitialBalance, error) {
	const q = `INSERT INTO initial_balances (account_id, project_id, as_of, amount)
VALUES ($1,$2,$3,$4)
ON CONFLICT (account_id, COALESCE(project_id, 0), as_of)
DO UPDATE SET amount=EXCLUDED.amount, updated_at=NOW()
RETURNING id, account_id, project_id, as_of, amount, created_at, updated_at`
	var out InitialBalance
	err := r.db.QueryRow(ctx, q, ib.AccountID, ib.ProjectID, ib.AsOf, ib.Amount).
		Scan(&out.ID, &out.AccountID, &out.ProjectID, &out.AsOf, &out.Amount, &out.CreatedAt, &out.UpdatedAt)
	return out, err
}
