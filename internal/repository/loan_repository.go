package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pawnledger/ledger-engine/internal/domain"
	apperrors "github.com/pawnledger/ledger-engine/pkg/errors"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) CreateWithAssets(ctx context.Context, loan *domain.Loan, assets []*domain.Asset) error {
	loanQuery := `
		INSERT INTO loans (customer_id, reference_id, loan_amount, loan_amount_paid, loan_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	assetQuery := `
		INSERT INTO assets (loan_id, description, weight, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	res, err := tx.ExecContext(ctx, loanQuery,
		loan.CustomerID,
		loan.ReferenceID,
		loan.Amount,
		loan.AmountPaid,
		loan.Status,
		loan.CreatedAt,
		now,
	)
	if err != nil {
		return err
	}
	if loan.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	loan.UpdatedAt = now

	for _, asset := range assets {
		res, err = tx.ExecContext(ctx, assetQuery,
			loan.ID,
			asset.Description,
			asset.Weight,
			now,
			now,
		)
		if err != nil {
			return err
		}
		if asset.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		asset.LoanID = loan.ID
		asset.CreatedAt = now
		asset.UpdatedAt = now
	}

	return tx.Commit()
}

func (r *loanRepository) GetByID(ctx context.Context, loanID int64) (*domain.Loan, error) {
	query := `
		SELECT loan_id, customer_id, reference_id, loan_amount, loan_amount_paid, loan_status, created_at, updated_at
		FROM loans
		WHERE loan_id = ?
	`

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, loanID); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) ListReferenceIDs(ctx context.Context, pattern string) ([]string, error) {
	query := `
		SELECT reference_id
		FROM loans
		WHERE reference_id LIKE ?
		ORDER BY reference_id DESC
	`

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, pattern); err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *loanRepository) GetAssets(ctx context.Context, loanID int64) ([]*domain.Asset, error) {
	query := `
		SELECT asset_id, loan_id, description, weight, created_at, updated_at
		FROM assets
		WHERE loan_id = ?
		ORDER BY asset_id
	`

	var assets []*domain.Asset
	if err := r.db.SelectContext(ctx, &assets, query, loanID); err != nil {
		return nil, err
	}

	return assets, nil
}

func (r *loanRepository) ReplaceAssets(ctx context.Context, loanID int64, assets []*domain.Asset) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM assets WHERE loan_id = ?`, loanID); err != nil {
		return err
	}

	now := time.Now()
	for _, asset := range assets {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO assets (loan_id, description, weight, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			loanID, asset.Description, asset.Weight, now, now,
		)
		if err != nil {
			return err
		}
		if asset.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		asset.LoanID = loanID
		asset.CreatedAt = now
		asset.UpdatedAt = now
	}

	return tx.Commit()
}

// Delete removes the loan, its assets and its payments in one transaction.
// A loan with recorded payments must be fully settled first; this keeps the
// policy at the data layer rather than in whatever UI sits in front of it.
func (r *loanRepository) Delete(ctx context.Context, loanID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var loan domain.Loan
	err = tx.GetContext(ctx, &loan,
		`SELECT loan_id, customer_id, reference_id, loan_amount, loan_amount_paid, loan_status, created_at, updated_at FROM loans WHERE loan_id = ?`,
		loanID,
	)
	if err != nil {
		return err
	}

	var paymentCount int
	err = tx.GetContext(ctx, &paymentCount, `SELECT COUNT(*) FROM loan_payments WHERE loan_id = ?`, loanID)
	if err != nil {
		return err
	}

	if paymentCount > 0 && !loan.Settled() {
		return apperrors.WrapLoanNotSettled(loanID)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM loan_payments WHERE loan_id = ?`, loanID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM assets WHERE loan_id = ?`, loanID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM loans WHERE loan_id = ?`, loanID); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *loanRepository) ListIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, `SELECT loan_id FROM loans ORDER BY loan_id`); err != nil {
		return nil, err
	}
	return ids, nil
}
