package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/pawnledger/ledger-engine/internal/domain"
)

type reportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) LoansForCustomer(ctx context.Context, customerID int64, filter domain.LoanFilter) ([]*domain.LoanSummary, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT loan_id, customer_id, loan_date, asset_descriptions, total_weight,
		       loan_amount, loan_amount_paid, loan_amount_due, interest_paid, loan_status
		FROM loan_view
		WHERE customer_id = ?
	`)
	args := []interface{}{customerID}

	if filter.Year > 0 {
		sb.WriteString(` AND CAST(strftime('%Y', loan_date) AS INTEGER) = ?`)
		args = append(args, filter.Year)
	}
	if !filter.From.IsZero() {
		sb.WriteString(` AND loan_date >= ?`)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		sb.WriteString(` AND loan_date <= ?`)
		args = append(args, filter.To)
	}

	sb.WriteString(` ORDER BY loan_date DESC`)

	if filter.Limit > 0 {
		sb.WriteString(` LIMIT ? OFFSET ?`)
		args = append(args, filter.Limit, filter.Offset)
	}

	var summaries []*domain.LoanSummary
	if err := r.db.SelectContext(ctx, &summaries, sb.String(), args...); err != nil {
		return nil, err
	}

	return summaries, nil
}

func (r *reportRepository) SummaryStats(ctx context.Context, year int) (*domain.SummaryStats, error) {
	query := `
		SELECT COUNT(DISTINCT customer_id) AS total_customers,
		       IFNULL(SUM(loan_amount - loan_amount_paid), 0) AS total_loan_due
		FROM loans
	`
	args := []interface{}{}

	if year > 0 {
		query += ` WHERE CAST(strftime('%Y', created_at) AS INTEGER) = ?`
		args = append(args, year)
	}

	var stats domain.SummaryStats
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, err
	}

	return &stats, nil
}

func (r *reportRepository) CustomerTotals(ctx context.Context, customerID int64) (*domain.CustomerTotals, error) {
	query := `
		SELECT ? AS customer_id,
		       IFNULL(SUM(loan_amount), 0) AS total_loan_amount,
		       IFNULL(SUM(loan_amount - loan_amount_paid), 0) AS total_loan_due
		FROM loans
		WHERE customer_id = ?
	`

	var totals domain.CustomerTotals
	if err := r.db.GetContext(ctx, &totals, query, customerID, customerID); err != nil {
		return nil, err
	}

	return &totals, nil
}
