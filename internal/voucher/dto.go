package voucher

import (
	"time"

	"github.com/google/uuid"
)

type createRequest struct {
	Type            string  `json:"type" validate:"required,oneof=DEBIT CREDIT CONTRA JOURNAL"`
	Date            string  `json:"date" validate:"required,datetime=2006-01-02"`
	Narration       string  `json:"narration" validate:"max=500"`
	ProjectID       *int64  `json:"projectId"`
	DebitAccountID  int64   `json:"debitAccountId" validate:"required"`
	CreditAccountID int64   `json:"creditAccountId" validate:"required"`
	Amount          float64 `json:"amount"`
	DrAmount        float64 `json:"drAmount"`
	CrAmount        float64 `json:"crAmount"`
	DebitProjectID  *int64  `json:"debitProjectId"`
	CreditProjectID *int64  `json:"creditProjectId"`
	Confirm         bool    `json:"confirm"`
}

func (req createRequest) toInput(date time.Time, idempotencyKey string) CreateInput {
	return CreateInput{
		Type:            Type(req.Type),
		Date:            date,
		Narration:       req.Narration,
		ProjectID:       req.ProjectID,
		DebitAccountID:  req.DebitAccountID,
		CreditAccountID: req.CreditAccountID,
		Amount:          req.Amount,
		DrAmount:        req.DrAmount,
		CrAmount:        req.CrAmount,
		DebitProjectID:  req.DebitProjectID,
		CreditProjectID: req.CreditProjectID,
		Confirm:         req.Confirm,
		IdempotencyKey:  idempotencyKey,
	}
}

type voucherResponse struct {
	ID              uuid.UUID `json:"id"`
	Type            Type      `json:"type"`
	Number          *string   `json:"voucherNumber"`
	Date            string    `json:"date"`
	Narration       string    `json:"narration"`
	ProjectID       *int64    `json:"projectId,omitempty"`
	Confirmed       bool      `json:"confirmed"`
	DebitAccountID  int64     `json:"debitAccountId"`
	CreditAccountID int64     `json:"creditAccountId"`
	Amount          float64   `json:"amount,omitempty"`
	DrAmount        float64   `json:"drAmount,omitempty"`
	CrAmount        float64   `json:"crAmount,omitempty"`
	DebitProjectID  *int64    `json:"debitProjectId,omitempty"`
	CreditProjectID *int64    `json:"creditProjectId,omitempty"`
	ContraClass     string    `json:"contraClass,omitempty"`
}

func toResponse(v Voucher, contraClass ContraClass) voucherResponse {
	return voucherResponse{
		ID:              v.ID,
		Type:            v.Type,
		Number:          v.Number,
		Date:            v.Date.Format("2006-01-02"),
		Narration:       v.Narration,
		ProjectID:       v.ProjectID,
		Confirmed:       v.Confirmed,
		DebitAccountID:  v.DebitAccountID,
		CreditAccountID: v.CreditAccountID,
		Amount:          v.Amount,
		DrAmount:        v.DrAmount,
		CrAmount:        v.CrAmount,
		DebitProjectID:  v.DebitProjectID,
		CreditProjectID: v.CreditProjectID,
		ContraClass:     string(contraClass),
	}
}
