package coa

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists chart of accounts nodes.
type Repository interface {
	List(ctx context.Context) ([]Account, error)
	Get(ctx context.Context, id int64) (Account, error)
	Insert(ctx context.Context, a Account) (Account, error)
	Update(ctx context.Context, a Account) (Account, error)
	HasPostings(ctx context.Context, accountID int64) (bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the Postgres-backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, code, name, parent_id, is_group, normal_side, category, kind, is_active, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Code, &a.Name, &a.ParentID, &a.IsGroup, &a.NormalSide, &a.Category, &a.Kind, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) List(ctx context.Context) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) Insert(ctx context.Context, a Account) (Account, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO accounts (code, name, parent_id, is_group, normal_side, category, kind, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING `+accountColumns,
		a.Code, a.Name, a.ParentID, a.IsGroup, a.NormalSide, a.Category, a.Kind, a.IsActive)
	inserted, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, ErrDuplicateCode
		}
		return Account{}, err
	}
	return inserted, nil
}

func (r *repository) Update(ctx context.Context, a Account) (Account, error) {
	row := r.db.QueryRow(ctx, `UPDATE accounts
SET code=$2, name=$3, parent_id=$4, normal_side=$5, category=$6, kind=$7, is_active=$8, updated_at=NOW()
WHERE id=$1 RETURNING `+accountColumns,
		a.ID, a.Code, a.Name, a.ParentID, a.NormalSide, a.Category, a.Kind, a.IsActive)
	updated, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, ErrDuplicateCode
		}
		return Account{}, err
	}
	return updated, nil
}

func (r *repository) HasPostings(ctx context.Context, accountID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE account_id=$1)`, accountID).Scan(&exists)
	return exists, err
}
