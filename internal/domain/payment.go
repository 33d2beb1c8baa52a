package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanPayment is a single repayment event against a loan's principal.
// Rows are append-only except for explicit retroactive corrections, which
// recompute the owning loan's paid total from scratch.
type LoanPayment struct {
	ID               string          `json:"payment_id" db:"payment_id"`
	LoanID           int64           `json:"loan_id" db:"loan_id"`
	PaymentDate      time.Time       `json:"payment_date" db:"payment_date"`
	Amount           decimal.Decimal `json:"payment_amount" db:"payment_amount"`
	Interest         decimal.Decimal `json:"interest_amount" db:"interest_amount"`
	AmountLeft       decimal.Decimal `json:"amount_left" db:"amount_left"`
	AssetDescription *string         `json:"asset_description,omitempty" db:"asset_description"`
}

// DTOs for requests and responses

type RecordPaymentRequest struct {
	Amount           decimal.Decimal `json:"payment_amount" validate:"required"`
	Interest         decimal.Decimal `json:"interest_amount"`
	AssetDescription string          `json:"asset_description" validate:"omitempty"`
	PaymentDate      string          `json:"payment_date" validate:"omitempty"`
}

type EditPaymentRequest struct {
	Amount           decimal.Decimal `json:"payment_amount" validate:"required"`
	Interest         decimal.Decimal `json:"interest_amount"`
	AssetDescription string          `json:"asset_description" validate:"omitempty"`
	PaymentDate      string          `json:"payment_date" validate:"omitempty"`
}
