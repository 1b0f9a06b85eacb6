package voucher

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerline/ledgerline/internal/coa"
	"github.com/ledgerline/ledgerline/internal/ledger"
)

// Registry is the slice of the account registry the posting engine needs.
type Registry interface {
	Resolve(ctx context.Context, id int64) (coa.Account, error)
}

// RepositoryPort abstracts transactional repository behaviour.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id uuid.UUID) (Voucher, error)
	List(ctx context.Context, t *Type) ([]Voucher, error)
}

// Recorder counts posted vouchers for observability.
type Recorder interface {
	VoucherPosted(voucherType string)
}

// Policy carries posting policy knobs from configuration.
type Policy struct {
	AllowFutureDates     bool
	FiscalYearStartMonth time.Month
}

// Service validates vouchers and turns each confirmed one into exactly two
// ledger entries, atomically, with a race-free sequential number.
type Service struct {
	repo     RepositoryPort
	registry Registry
	metrics  Recorder
	policy   Policy
	now      func() time.Time
}

// NewService constructs the posting engine.
func NewService(repo RepositoryPort, registry Registry, metrics Recorder, policy Policy) *Service {
	if policy.FiscalYearStartMonth < time.January || policy.FiscalYearStartMonth > time.December {
		policy.FiscalYearStartMonth = time.January
	}
	return &Service{repo: repo, registry: registry, metrics: metrics, policy: policy, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateInput groups the fields required to record a voucher.
type CreateInput struct {
	Type            Type
	Date            time.Time
	Narration       string
	ProjectID       *int64
	DebitAccountID  int64
	CreditAccountID int64
	Amount          float64
	DrAmount        float64
	CrAmount        float64
	DebitProjectID  *int64
	CreditProjectID *int64

	// Confirm posts the voucher immediately instead of saving a draft.
	Confirm bool
	// IdempotencyKey, when set, guards against duplicate submission.
	IdempotencyKey string
}

func isMoneyAccount(k coa.Kind) bool {
	return k == coa.KindCash || k == coa.KindBank
}

func isExpenseOrAsset(c coa.Category) bool {
	switch c {
	case coa.CategoryExpense, coa.CategoryCurrentAsset, coa.CategoryFixedAsset:
		return true
	}
	return false
}

// validate enforces the acceptance rules for all four variants. It runs before
// any persistence write and again at confirmation time, which is the actual
// correctness boundary.
func (s *Service) validate(ctx context.Context, in CreateInput) error {
	if !in.Type.Valid() {
		return ValidationError{Field: "type", Message: "unknown voucher type"}
	}
	if in.Date.IsZero() {
		return ValidationError{Field: "date", Message: "date is required"}
	}
	if !s.policy.AllowFutureDates && in.Date.After(s.now()) {
		return ValidationError{Field: "date", Message: "date must not be in the future"}
	}
	if in.DebitAccountID == in.CreditAccountID {
		return ValidationError{Field: "credit_account_id", Message: "debit and credit accounts must differ"}
	}

	debit, err := s.resolveLeg(ctx, "debit_account_id", in.DebitAccountID)
	if err != nil {
		return err
	}
	credit, err := s.resolveLeg(ctx, "credit_account_id", in.CreditAccountID)
	if err != nil {
		return err
	}

	if in.Type == TypeJournal {
		if in.DrAmount <= 0 {
			return ValidationError{Field: "dr_amount", Message: "amount must be positive"}
		}
		if in.CrAmount <= 0 {
			return ValidationError{Field: "cr_amount", Message: "amount must be positive"}
		}
		if !amountsEqual(in.DrAmount, in.CrAmount) {
			return ValidationError{Field: "cr_amount", Message: "debit and credit amounts must be equal"}
		}
	} else if in.Amount <= 0 {
		return ValidationError{Field: "amount", Message: "amount must be positive"}
	}

	switch in.Type {
	case TypeDebit:
		if !isExpenseOrAsset(debit.Category) {
			return ValidationError{Field: "debit_account_id", Message: "must be an expense or asset account"}
		}
		if !isMoneyAccount(credit.Kind) {
			return ValidationError{Field: "credit_account_id", Message: "must be a cash or bank account"}
		}
	case TypeCredit:
		if !isMoneyAccount(debit.Kind) {
			return ValidationError{Field: "debit_account_id", Message: "must be a cash or bank account"}
		}
		if credit.Category != coa.CategoryRevenue {
			return ValidationError{Field: "credit_account_id", Message: "must be an income account"}
		}
	case TypeContra:
		if !isMoneyAccount(debit.Kind) {
			return ValidationError{Field: "debit_account_id", Message: "must be a cash or bank account"}
		}
		if !isMoneyAccount(credit.Kind) {
			return ValidationError{Field: "credit_account_id", Message: "must be a cash or bank account"}
		}
	}
	return nil
}

func (s *Service) resolveLeg(ctx context.Context, field string, accountID int64) (coa.Account, error) {
	account, err := s.registry.Resolve(ctx, accountID)
	if err != nil {
		if errors.Is(err, coa.ErrAccountNotFound) {
			return coa.Account{}, ValidationError{Field: field, Message: "unknown account"}
		}
		return coa.Account{}, err
	}
	if !account.Postable() {
		return coa.Account{}, ValidationError{Field: field, Message: "account cannot receive postings"}
	}
	return account, nil
}

func fromInput(in CreateInput) Voucher {
	return Voucher{
		ID:              uuid.New(),
		Type:            in.Type,
		Date:            in.Date,
		Narration:       in.Narration,
		ProjectID:       in.ProjectID,
		DebitAccountID:  in.DebitAccountID,
		CreditAccountID: in.CreditAccountID,
		Amount:          in.Amount,
		DrAmount:        in.DrAmount,
		CrAmount:        in.CrAmount,
		DebitProjectID:  in.DebitProjectID,
		CreditProjectID: in.CreditProjectID,
	}
}

func toInput(v Voucher) CreateInput {
	return CreateInput{
		Type:            v.Type,
		Date:            v.Date,
		Narration:       v.Narration,
		ProjectID:       v.ProjectID,
		DebitAccountID:  v.DebitAccountID,
		CreditAccountID: v.CreditAccountID,
		Amount:          v.Amount,
		DrAmount:        v.DrAmount,
		CrAmount:        v.CrAmount,
		DebitProjectID:  v.DebitProjectID,
		CreditProjectID: v.CreditProjectID,
	}
}

// buildEntries produces the voucher's two ledger entries, one per leg.
func buildEntries(v Voucher) []ledger.Entry {
	number := ""
	if v.Number != nil {
		number = *v.Number
	}
	debitProject := v.ProjectID
	creditProject := v.ProjectID
	if v.Type == TypeJournal {
		if v.DebitProjectID != nil {
			debitProject = v.DebitProjectID
		}
		if v.CreditProjectID != nil {
			creditProject = v.CreditProjectID
		}
	}
	return []ledger.Entry{
		{
			AccountID:   v.DebitAccountID,
			VoucherID:   v.ID,
			VoucherNo:   number,
			Date:        v.Date,
			Debit:       v.DebitAmount(),
			Particulars: v.Narration,
			ProjectID:   debitProject,
		},
		{
			AccountID:   v.CreditAccountID,
			VoucherID:   v.ID,
			VoucherNo:   number,
			Date:        v.Date,
			Credit:      v.CreditAmount(),
			Particulars: v.Narration,
			ProjectID:   creditProject,
		},
	}
}

// post allocates the sequential number and writes both ledger entries.
// It must run inside the voucher's transaction.
func (s *Service) post(ctx context.Context, tx TxRepository, v *Voucher) error {
	fy := FiscalYear(v.Date, s.policy.FiscalYearStartMonth)
	seq, err := tx.NextSequence(ctx, v.Type, fy)
	if err != nil {
		return err
	}
	number := FormatNumber(v.Type, fy, seq)
	if err := tx.MarkPosted(ctx, v.ID, number); err != nil {
		return err
	}
	v.Number = &number
	v.Confirmed = true
	return tx.InsertEntries(ctx, buildEntries(*v))
}

// Create records a voucher; with Confirm set it is validated, numbered, and
// posted in the same transaction.
func (s *Service) Create(ctx context.Context, in CreateInput) (Voucher, error) {
	if err := s.validate(ctx, in); err != nil {
		return Voucher{}, err
	}
	v := fromInput(in)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if in.IdempotencyKey != "" {
			if err := tx.RecordIdempotencyKey(ctx, in.IdempotencyKey); err != nil {
				return err
			}
		}
		inserted, err := tx.InsertVoucher(ctx, v)
		if err != nil {
			return err
		}
		v = inserted
		if in.Confirm {
			return s.post(ctx, tx, &v)
		}
		return nil
	})
	if err != nil {
		return Voucher{}, err
	}
	if v.Confirmed && s.metrics != nil {
		s.metrics.VoucherPosted(string(v.Type))
	}
	return v, nil
}

// Confirm posts a previously saved draft. Re-confirming a posted voucher is
// rejected, never duplicated.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (Voucher, error) {
	var v Voucher
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetVoucherForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.Confirmed {
			return ErrAlreadyPosted
		}
		if err := s.validate(ctx, toInput(current)); err != nil {
			return err
		}
		v = current
		return s.post(ctx, tx, &v)
	})
	if err != nil {
		return Voucher{}, err
	}
	if s.metrics != nil {
		s.metrics.VoucherPosted(string(v.Type))
	}
	return v, nil
}

// Update edits a draft. Posted vouchers are final.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in CreateInput) (Voucher, error) {
	if err := s.validate(ctx, in); err != nil {
		return Voucher{}, err
	}
	var v Voucher
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetVoucherForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.Confirmed {
			return ErrAlreadyPosted
		}
		next := fromInput(in)
		next.ID = current.ID
		next.CreatedAt = current.CreatedAt
		if err := tx.UpdateVoucher(ctx, next); err != nil {
			return err
		}
		v = next
		return nil
	})
	if err != nil {
		return Voucher{}, err
	}
	return v, nil
}

// Delete removes a voucher. Drafts delete freely; deleting a posted voucher
// also removes both ledger entries atomically and requires force, since
// reports generated afterwards will observe the changed totals.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, force bool) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetVoucherForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.Confirmed && !force {
			return ErrDeleteConfirmed
		}
		if err := tx.DeleteEntriesByVoucher(ctx, current.ID); err != nil {
			return err
		}
		return tx.DeleteVoucher(ctx, current.ID)
	})
}

// Get returns a voucher by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Voucher, error) {
	return s.repo.Get(ctx, id)
}

// List returns vouchers, optionally filtered by type.
func (s *Service) List(ctx context.Context, t *Type) ([]Voucher, error) {
	return s.repo.List(ctx, t)
}

// ClassifyContra resolves the movement class for a contra voucher from the
// registry's account kinds. Money moves from the credit leg to the debit leg.
func (s *Service) ClassifyContra(ctx context.Context, v Voucher) (ContraClass, error) {
	from, err := s.registry.Resolve(ctx, v.CreditAccountID)
	if err != nil {
		return "", err
	}
	to, err := s.registry.Resolve(ctx, v.DebitAccountID)
	if err != nil {
		return "", err
	}
	return Classify(from.Kind, to.Kind), nil
}
