package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanSummary is one row of the loan_view projection: a loan joined with
// its assets and payments, with aggregate weight, interest and due amount.
type LoanSummary struct {
	LoanID            int64           `json:"loan_id" db:"loan_id"`
	CustomerID        int64           `json:"customer_id" db:"customer_id"`
	LoanDate          time.Time       `json:"loan_date" db:"loan_date"`
	AssetDescriptions string          `json:"asset_descriptions" db:"asset_descriptions"`
	TotalWeight       decimal.Decimal `json:"total_weight" db:"total_weight"`
	Amount            decimal.Decimal `json:"loan_amount" db:"loan_amount"`
	AmountPaid        decimal.Decimal `json:"loan_amount_paid" db:"loan_amount_paid"`
	AmountDue         decimal.Decimal `json:"loan_amount_due" db:"loan_amount_due"`
	InterestPaid      decimal.Decimal `json:"interest_paid" db:"interest_paid"`
	Status            string          `json:"loan_status" db:"loan_status"`
}

// LoanFilter narrows reporting queries. Zero values mean "no filter".
type LoanFilter struct {
	Year   int
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

// SummaryStats are the ledger-wide aggregates shown on the home screen.
type SummaryStats struct {
	TotalCustomers int64           `json:"total_customers" db:"total_customers"`
	TotalLoanDue   decimal.Decimal `json:"total_loan_due" db:"total_loan_due"`
}

// CustomerTotals aggregates one customer's loans.
type CustomerTotals struct {
	CustomerID  int64           `json:"customer_id" db:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_loan_amount" db:"total_loan_amount"`
	TotalDue    decimal.Decimal `json:"total_loan_due" db:"total_loan_due"`
}
