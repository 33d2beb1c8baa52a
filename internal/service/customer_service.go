package service

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/pawnledger/ledger-engine/internal/domain"
	"github.com/pawnledger/ledger-engine/internal/repository"
	apperrors "github.com/pawnledger/ledger-engine/pkg/errors"
)

var (
	phonePattern   = regexp.MustCompile(`^\d{10}$`)
	accountPattern = regexp.MustCompile(`^\d{10,20}$`)
)

// CustomerService manages customer registration, edits and CSV bulk import.
type CustomerService struct {
	CustomerRepo repository.CustomerRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{CustomerRepo: customerRepo}
}

// Register creates a single customer from a validated request.
func (s *CustomerService) Register(ctx context.Context, request *domain.RegisterCustomerRequest) (*domain.Customer, error) {
	customer := &domain.Customer{
		Name:    strings.TrimSpace(request.Name),
		Address: strings.TrimSpace(request.Address),
	}
	if request.AccountNumber != "" {
		account := request.AccountNumber
		customer.AccountNumber = &account
	}
	if request.Phone != "" {
		phone := request.Phone
		customer.Phone = &phone
	}

	if err := s.CustomerRepo.Create(ctx, customer); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.WrapDuplicateCustomer(err)
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	return customer, nil
}

// Get retrieves one customer.
func (s *CustomerService) Get(ctx context.Context, customerID int64) (*domain.Customer, error) {
	customer, err := s.CustomerRepo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.WrapCustomerNotFound(customerID)
		}
		return nil, apperrors.WrapDatabaseError(err)
	}
	return customer, nil
}

// Update overwrites a customer's mutable fields. The account number is
// fixed at registration and never changes.
func (s *CustomerService) Update(ctx context.Context, customerID int64, request *domain.UpdateCustomerRequest) (*domain.Customer, error) {
	customer, err := s.Get(ctx, customerID)
	if err != nil {
		return nil, err
	}

	customer.Name = strings.TrimSpace(request.Name)
	customer.Address = strings.TrimSpace(request.Address)
	customer.Phone = nil
	if request.Phone != "" {
		phone := request.Phone
		customer.Phone = &phone
	}

	if err := s.CustomerRepo.Update(ctx, customer); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.WrapDuplicateCustomer(err)
		}
		return nil, apperrors.WrapDatabaseError(err)
	}

	return customer, nil
}

// List returns customers ordered by name; year > 0 keeps only customers
// with a loan created in that year.
func (s *CustomerService) List(ctx context.Context, year int) ([]*domain.Customer, error) {
	customers, err := s.CustomerRepo.List(ctx, year)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(err)
	}
	return customers, nil
}

// ImportCSV bulk-loads customers from rows of
// [name, account_number, phone, address]. Invalid rows are rejected
// individually and reported; all valid rows are written in a single
// transaction, so a database failure imports nothing.
func (s *CustomerService) ImportCSV(ctx context.Context, r io.Reader) (*domain.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	result := &domain.ImportResult{}
	var pending []*domain.Customer
	seenAccounts := map[string]bool{}
	seenPhones := map[string]bool{}

	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			result.Rejected = append(result.Rejected, domain.ImportRowError{Row: row, Reason: err.Error()})
			continue
		}

		customer, reason := parseImportRow(record)
		if reason == "" {
			if customer.AccountNumber != nil && seenAccounts[*customer.AccountNumber] {
				reason = "duplicate account number in file"
			} else if customer.Phone != nil && seenPhones[*customer.Phone] {
				reason = "duplicate phone in file"
			}
		}
		if reason != "" {
			result.Rejected = append(result.Rejected, domain.ImportRowError{Row: row, Reason: reason})
			continue
		}

		if customer.AccountNumber != nil {
			seenAccounts[*customer.AccountNumber] = true
		}
		if customer.Phone != nil {
			seenPhones[*customer.Phone] = true
		}
		pending = append(pending, customer)
	}

	if len(pending) > 0 {
		if err := s.CustomerRepo.CreateBatch(ctx, pending); err != nil {
			if repository.IsUniqueViolation(err) {
				return nil, apperrors.WrapDuplicateCustomer(err)
			}
			return nil, apperrors.WrapImportFailed(err)
		}
	}

	result.Imported = len(pending)
	return result, nil
}

func parseImportRow(record []string) (*domain.Customer, string) {
	if len(record) < 4 {
		return nil, fmt.Sprintf("expected at least 4 columns, got %d", len(record))
	}

	name := strings.TrimSpace(record[0])
	account := strings.TrimSpace(record[1])
	phone := strings.TrimSpace(record[2])
	address := strings.TrimSpace(record[3])

	if len(name) < 2 {
		return nil, "name must be at least 2 characters"
	}
	if account != "" && !accountPattern.MatchString(account) {
		return nil, "account number must be 10-20 digits"
	}
	if phone != "" && !phonePattern.MatchString(phone) {
		return nil, "phone must be exactly 10 digits"
	}
	if address != "" && len(address) < 5 {
		return nil, "address must be at least 5 characters"
	}

	customer := &domain.Customer{Name: name, Address: address}
	if account != "" {
		customer.AccountNumber = &account
	}
	if phone != "" {
		customer.Phone = &phone
	}

	return customer, ""
}
