package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pawnledger/ledger-engine/internal/domain"
)

type customerRepository struct {
	db *sqlx.DB
}

func NewCustomerRepository(db *sqlx.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (name, account_number, phone, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	res, err := r.db.ExecContext(ctx, query,
		customer.Name,
		customer.AccountNumber,
		customer.Phone,
		customer.Address,
		now,
		now,
	)
	if err != nil {
		return err
	}

	customer.ID, err = res.LastInsertId()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	return err
}

func (r *customerRepository) GetByID(ctx context.Context, customerID int64) (*domain.Customer, error) {
	query := `
		SELECT customer_id, name, account_number, phone, address, created_at, updated_at
		FROM customers
		WHERE customer_id = ?
	`

	var customer domain.Customer
	if err := r.db.GetContext(ctx, &customer, query, customerID); err != nil {
		return nil, err
	}

	return &customer, nil
}

func (r *customerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	query := `
		UPDATE customers
		SET name = ?, phone = ?, address = ?, updated_at = ?
		WHERE customer_id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		customer.Name,
		customer.Phone,
		customer.Address,
		time.Now(),
		customer.ID,
	)

	return err
}

func (r *customerRepository) List(ctx context.Context, year int) ([]*domain.Customer, error) {
	query := `
		SELECT customer_id, name, account_number, phone, address, created_at, updated_at
		FROM customers
		ORDER BY name
	`
	args := []interface{}{}

	if year > 0 {
		query = `
			SELECT DISTINCT c.customer_id, c.name, c.account_number, c.phone, c.address, c.created_at, c.updated_at
			FROM customers c
			JOIN loans l ON l.customer_id = c.customer_id
			WHERE CAST(strftime('%Y', l.created_at) AS INTEGER) = ?
			ORDER BY c.name
		`
		args = append(args, year)
	}

	var customers []*domain.Customer
	if err := r.db.SelectContext(ctx, &customers, query, args...); err != nil {
		return nil, err
	}

	return customers, nil
}

func (r *customerRepository) CreateBatch(ctx context.Context, customers []*domain.Customer) error {
	query := `
		INSERT INTO customers (name, account_number, phone, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for _, customer := range customers {
		res, err := tx.ExecContext(ctx, query,
			customer.Name,
			customer.AccountNumber,
			customer.Phone,
			customer.Address,
			now,
			now,
		)
		if err != nil {
			return err
		}
		if customer.ID, err = res.LastInsertId(); err != nil {
			return err
		}
		customer.CreatedAt = now
		customer.UpdatedAt = now
	}

	return tx.Commit()
}
