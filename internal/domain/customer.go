package domain

import (
	"time"
)

// Customer represents a customer who pledges assets against loans
type Customer struct {
	ID            int64     `json:"customer_id" db:"customer_id"`
	Name          string    `json:"name" db:"name"`
	AccountNumber *string   `json:"account_number,omitempty" db:"account_number"`
	Phone         *string   `json:"phone,omitempty" db:"phone"`
	Address       string    `json:"address" db:"address"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// DTOs for requests and responses

type RegisterCustomerRequest struct {
	Name          string `json:"name" validate:"required,min=2"`
	AccountNumber string `json:"account_number" validate:"omitempty,numeric,min=10,max=20"`
	Phone         string `json:"phone" validate:"omitempty,len=10,numeric"`
	Address       string `json:"address" validate:"omitempty,min=5"`
}

type UpdateCustomerRequest struct {
	Name    string `json:"name" validate:"required,min=2"`
	Phone   string `json:"phone" validate:"omitempty,len=10,numeric"`
	Address string `json:"address" validate:"omitempty,min=5"`
}

// ImportRowError describes why a single CSV row was rejected
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult summarizes a CSV customer import
type ImportResult struct {
	Imported int              `json:"imported"`
	Rejected []ImportRowError `json:"rejected,omitempty"`
}
