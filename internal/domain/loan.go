package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	LoanStatusPending   = "Pending"
	LoanStatusCompleted = "Completed"
)

// Loan is a ledger record of principal lent against pledged assets.
// The due amount is the principal only; interest is tracked per payment
// and never accumulates into the due amount.
type Loan struct {
	ID          int64           `json:"loan_id" db:"loan_id"`
	CustomerID  int64           `json:"customer_id" db:"customer_id"`
	ReferenceID *string         `json:"reference_id,omitempty" db:"reference_id"`
	Amount      decimal.Decimal `json:"loan_amount" db:"loan_amount"`
	AmountPaid  decimal.Decimal `json:"loan_amount_paid" db:"loan_amount_paid"`
	Status      string          `json:"loan_status" db:"loan_status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// AmountDue returns the outstanding balance on the loan.
func (l *Loan) AmountDue() decimal.Decimal {
	return l.Amount.Sub(l.AmountPaid)
}

// Settled reports whether the loan is fully repaid.
func (l *Loan) Settled() bool {
	return l.AmountDue().LessThanOrEqual(decimal.Zero)
}

// Asset is an item (e.g. a gold ornament) pledged as collateral for a loan
type Asset struct {
	ID          int64           `json:"asset_id" db:"asset_id"`
	LoanID      int64           `json:"loan_id" db:"loan_id"`
	Description string          `json:"description" db:"description"`
	Weight      decimal.Decimal `json:"weight" db:"weight"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

type AssetInput struct {
	Description string          `json:"description" validate:"required"`
	Weight      decimal.Decimal `json:"weight" validate:"required"`
}

type CreateLoanRequest struct {
	CustomerID    int64           `json:"customer_id" validate:"required,gt=0"`
	Amount        decimal.Decimal `json:"loan_amount" validate:"required"`
	LoanDate      string          `json:"loan_date" validate:"omitempty"`
	BaseReference string          `json:"base_reference" validate:"omitempty,alphanum"`
	Assets        []AssetInput    `json:"assets" validate:"required,min=1,dive"`
}

type CreateLoanResponse struct {
	Loan   *Loan    `json:"loan"`
	Assets []*Asset `json:"assets"`
}

type UpdateAssetsRequest struct {
	Assets []AssetInput `json:"assets" validate:"required,min=1,dive"`
}

type LoanDetailResponse struct {
	Loan     *Loan          `json:"loan"`
	Assets   []*Asset       `json:"assets"`
	Payments []*LoanPayment `json:"payments"`
}
