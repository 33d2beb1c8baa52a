package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Schema statements are idempotent so that opening an existing database
// file leaves its data untouched.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		customer_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		account_number TEXT UNIQUE,
		phone TEXT UNIQUE,
		address TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS loans (
		loan_id INTEGER PRIMARY KEY AUTOINCREMENT,
		customer_id INTEGER NOT NULL REFERENCES customers(customer_id),
		reference_id TEXT UNIQUE,
		loan_amount DECIMAL(12,2) NOT NULL,
		loan_amount_paid DECIMAL(12,2) NOT NULL DEFAULT 0,
		loan_status TEXT NOT NULL DEFAULT 'Pending',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS assets (
		asset_id INTEGER PRIMARY KEY AUTOINCREMENT,
		loan_id INTEGER NOT NULL REFERENCES loans(loan_id),
		description TEXT NOT NULL,
		weight DECIMAL(12,2) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS loan_payments (
		payment_id TEXT PRIMARY KEY,
		loan_id INTEGER NOT NULL REFERENCES loans(loan_id),
		payment_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		payment_amount DECIMAL(12,2) NOT NULL,
		interest_amount DECIMAL(12,2) NOT NULL DEFAULT 0,
		amount_left DECIMAL(12,2) NOT NULL,
		asset_description TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS system_users (
		user_id INTEGER PRIMARY KEY CHECK (user_id = 1),
		password_hash TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_loans_customer ON loans(customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_assets_loan ON assets(loan_id)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_loan ON loan_payments(loan_id)`,
	`CREATE VIEW IF NOT EXISTS loan_view AS
		SELECT
			l.loan_id AS loan_id,
			l.customer_id AS customer_id,
			l.created_at AS loan_date,
			IFNULL(GROUP_CONCAT(a.description), 'N/A') AS asset_descriptions,
			IFNULL((SELECT SUM(weight) FROM assets WHERE loan_id = l.loan_id), 0) AS total_weight,
			l.loan_amount AS loan_amount,
			l.loan_amount_paid AS loan_amount_paid,
			(l.loan_amount - l.loan_amount_paid) AS loan_amount_due,
			IFNULL((SELECT SUM(interest_amount) FROM loan_payments WHERE loan_id = l.loan_id), 0) AS interest_paid,
			l.loan_status AS loan_status
		FROM loans l
		LEFT JOIN assets a ON a.loan_id = l.loan_id
		GROUP BY l.loan_id`,
}

// InitSchema creates all tables, indexes and the loan_view projection.
func InitSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
