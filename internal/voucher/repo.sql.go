package voucher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerline/ledgerline/internal/ledger"
	"github.com/ledgerline/ledgerline/internal/platform/db"
)

// Repository persists vouchers, their ledger entries, and sequence state.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations available inside a posting transaction.
type TxRepository interface {
	InsertVoucher(ctx context.Context, v Voucher) (Voucher, error)
	UpdateVoucher(ctx context.Context, v Voucher) error
	GetVoucherForUpdate(ctx context.Context, id uuid.UUID) (Voucher, error)
	DeleteVoucher(ctx context.Context, id uuid.UUID) error
	MarkPosted(ctx context.Context, id uuid.UUID, number string) error
	NextSequence(ctx context.Context, t Type, fiscalYear int) (int64, error)
	InsertEntries(ctx context.Context, entries []ledger.Entry) error
	DeleteEntriesByVoucher(ctx context.Context, voucherID uuid.UUID) error
	RecordIdempotencyKey(ctx context.Context, key string) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes fn within a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("voucher repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

const voucherColumns = `id, type, number, date, narration, project_id, confirmed,
debit_account_id, credit_account_id, amount, dr_amount, cr_amount,
debit_project_id, credit_project_id, created_at, updated_at`

func scanVoucher(row pgx.Row) (Voucher, error) {
	var v Voucher
	err := row.Scan(&v.ID, &v.Type, &v.Number, &v.Date, &v.Narration, &v.ProjectID, &v.Confirmed,
		&v.DebitAccountID, &v.CreditAccountID, &v.Amount, &v.DrAmount, &v.CrAmount,
		&v.DebitProjectID, &v.CreditProjectID, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

// Get returns a voucher by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Voucher, error) {
	v, err := scanVoucher(r.pool.QueryRow(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Voucher{}, ErrNotFound
		}
		return Voucher{}, err
	}
	return v, nil
}

// List returns vouchers newest first, optionally filtered by type.
func (r *Repository) List(ctx context.Context, t *Type) ([]Voucher, error) {
	const q = `SELECT ` + voucherColumns + ` FROM vouchers
WHERE ($1::text IS NULL OR type=$1) ORDER BY date DESC, created_at DESC`
	rows, err := r.pool.Query(ctx, q, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var vouchers []Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, err
		}
		vouchers = append(vouchers, v)
	}
	return vouchers, rows.Err()
}

func (r *txRepository) InsertVoucher(ctx context.Context, v Voucher) (Voucher, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO vouchers
(id, type, number, date, narration, project_id, confirmed, debit_account_id, credit_account_id, amount, dr_amount, cr_amount, debit_project_id, credit_project_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
RETURNING `+voucherColumns,
		v.ID, v.Type, v.Number, v.Date, v.Narration, v.ProjectID, v.Confirmed,
		v.DebitAccountID, v.CreditAccountID, toNumeric(v.Amount), toNumeric(v.DrAmount), toNumeric(v.CrAmount),
		v.DebitProjectID, v.CreditProjectID)
	return scanVoucher(row)
}

func (r *txRepository) UpdateVoucher(ctx context.Context, v Voucher) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE vouchers
SET date=$2, narration=$3, project_id=$4, debit_account_id=$5, credit_account_id=$6,
amount=$7, dr_amount=$8, cr_amount=$9, debit_project_id=$10, credit_project_id=$11, updated_at=NOW()
WHERE id=$1`,
		v.ID, v.Date, v.Narration, v.ProjectID, v.DebitAccountID, v.CreditAccountID,
		toNumeric(v.Amount), toNumeric(v.DrAmount), toNumeric(v.CrAmount),
		v.DebitProjectID, v.CreditProjectID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *txRepository) GetVoucherForUpdate(ctx context.Context, id uuid.UUID) (Voucher, error) {
	v, err := scanVoucher(r.tx.QueryRow(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Voucher{}, ErrNotFound
		}
		return Voucher{}, err
	}
	return v, nil
}

func (r *txRepository) DeleteVoucher(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM vouchers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *txRepository) MarkPosted(ctx context.Context, id uuid.UUID, number string) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE vouchers SET confirmed=TRUE, number=$2, updated_at=NOW() WHERE id=$1`, id, number)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// NextSequence allocates the next voucher number for (type, fiscal year). The
// upsert increments under the row lock, so concurrent postings of the same
// type and year serialise here and can never share a sequence value.
func (r *txRepository) NextSequence(ctx context.Context, t Type, fiscalYear int) (int64, error) {
	var seq int64
	err := r.tx.QueryRow(ctx, `INSERT INTO voucher_sequences (voucher_type, fiscal_year, last_seq)
VALUES ($1,$2,1)
ON CONFLICT (voucher_type, fiscal_year)
DO UPDATE SET last_seq = voucher_sequences.last_seq + 1
RETURNING last_seq`, t, fiscalYear).Scan(&seq)
	return seq, err
}

func (r *txRepository) InsertEntries(ctx context.Context, entries []ledger.Entry) error {
	for _, e := range entries {
		if _, err := r.tx.Exec(ctx, `INSERT INTO ledger_entries
(account_id, voucher_id, voucher_no, date, debit, credit, particulars, project_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			e.AccountID, e.VoucherID, e.VoucherNo, e.Date, toNumeric(e.Debit), toNumeric(e.Credit), e.Particulars, e.ProjectID); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) DeleteEntriesByVoucher(ctx context.Context, voucherID uuid.UUID) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM ledger_entries WHERE voucher_id=$1`, voucherID)
	return err
}

func (r *txRepository) RecordIdempotencyKey(ctx context.Context, key string) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO idempotency_keys (key, created_at) VALUES ($1,$2)`, key, time.Now())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrIdempotencyConflict
		}
		return err
	}
	return nil
}

// toNumeric normalises amounts to two decimal places on the way into NUMERIC
// columns.
func toNumeric(v float64) any {
	return fmt.Sprintf("%.2f", v)
}
