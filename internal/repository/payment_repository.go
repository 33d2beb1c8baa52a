package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/pawnledger/ledger-engine/internal/domain"
	apperrors "github.com/pawnledger/ledger-engine/pkg/errors"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Settle appends the payment row and moves the loan's paid total in the
// same transaction, so the ledger and the balance can never disagree.
// The guarded UPDATE aborts when another writer touched the loan between
// the caller's read and this call.
func (r *paymentRepository) Settle(ctx context.Context, payment *domain.LoanPayment, expectedPaid, newPaid decimal.Decimal, status string) error {
	insertQuery := `
		INSERT INTO loan_payments (payment_id, loan_id, payment_date, payment_amount, interest_amount, amount_left, asset_description)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	updateQuery := `
		UPDATE loans
		SET loan_amount_paid = ?, loan_status = ?, updated_at = ?
		WHERE loan_id = ? AND loan_amount_paid = ?
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, insertQuery,
		payment.ID,
		payment.LoanID,
		payment.PaymentDate,
		payment.Amount,
		payment.Interest,
		payment.AmountLeft,
		payment.AssetDescription,
	)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, updateQuery, newPaid, status, time.Now(), payment.LoanID, expectedPaid)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected != 1 {
		return fmt.Errorf("loan %d changed concurrently, settlement aborted", payment.LoanID)
	}

	return tx.Commit()
}

// UpdateAndRecompute is the one place the paid total is derived by
// re-aggregation instead of an incremental move. Editing a historical
// payment invalidates the running total, so it is rebuilt from the rows.
func (r *paymentRepository) UpdateAndRecompute(ctx context.Context, payment *domain.LoanPayment) error {
	updatePayment := `
		UPDATE loan_payments
		SET payment_date = ?, payment_amount = ?, interest_amount = ?, asset_description = ?
		WHERE payment_id = ?
	`
	updateLoan := `
		UPDATE loans
		SET loan_amount_paid = ?, loan_status = ?, updated_at = ?
		WHERE loan_id = ?
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var loan domain.Loan
	err = tx.GetContext(ctx, &loan,
		`SELECT loan_id, customer_id, reference_id, loan_amount, loan_amount_paid, loan_status, created_at, updated_at FROM loans WHERE loan_id = ?`,
		payment.LoanID,
	)
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, updatePayment,
		payment.PaymentDate,
		payment.Amount,
		payment.Interest,
		payment.AssetDescription,
		payment.ID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected != 1 {
		return apperrors.WrapPaymentNotFound(payment.ID)
	}

	var totalPaid decimal.Decimal
	err = tx.GetContext(ctx, &totalPaid,
		`SELECT IFNULL(SUM(payment_amount), 0) FROM loan_payments WHERE loan_id = ?`,
		payment.LoanID,
	)
	if err != nil {
		return err
	}

	if totalPaid.GreaterThan(loan.Amount) {
		return apperrors.WrapPaymentExceedsDue(loan.Amount.StringFixed(2), totalPaid.StringFixed(2))
	}

	status := domain.LoanStatusPending
	if loan.Amount.Sub(totalPaid).LessThanOrEqual(decimal.Zero) {
		status = domain.LoanStatusCompleted
	}

	payment.AmountLeft = loan.Amount.Sub(totalPaid)
	_, err = tx.ExecContext(ctx,
		`UPDATE loan_payments SET amount_left = ? WHERE payment_id = ?`,
		payment.AmountLeft, payment.ID,
	)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, updateLoan, totalPaid, status, time.Now(), payment.LoanID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *paymentRepository) GetByID(ctx context.Context, paymentID string) (*domain.LoanPayment, error) {
	query := `
		SELECT payment_id, loan_id, payment_date, payment_amount, interest_amount, amount_left, asset_description
		FROM loan_payments
		WHERE payment_id = ?
	`

	var payment domain.LoanPayment
	if err := r.db.GetContext(ctx, &payment, query, paymentID); err != nil {
		return nil, err
	}

	return &payment, nil
}

func (r *paymentRepository) GetByLoanID(ctx context.Context, loanID int64) ([]*domain.LoanPayment, error) {
	query := `
		SELECT payment_id, loan_id, payment_date, payment_amount, interest_amount, amount_left, asset_description
		FROM loan_payments
		WHERE loan_id = ?
		ORDER BY payment_date ASC
	`

	var payments []*domain.LoanPayment
	if err := r.db.SelectContext(ctx, &payments, query, loanID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) GetTotalPaid(ctx context.Context, loanID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.GetContext(ctx, &total,
		`SELECT IFNULL(SUM(payment_amount), 0) FROM loan_payments WHERE loan_id = ?`,
		loanID,
	)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
