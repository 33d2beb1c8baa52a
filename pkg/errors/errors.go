package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrDuplicateCustomer   = errors.New("customer with this account number or phone already exists")
	ErrDuplicateReference  = errors.New("reference id already exists")
	ErrInvalidLoanAmount   = errors.New("invalid loan amount")
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidPayment      = errors.New("invalid payment amount")
	ErrPaymentExceedsDue   = errors.New("payment exceeds total due amount")
	ErrLoanNotSettled      = errors.New("loan has payments and is not fully settled")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountLocked       = errors.New("too many failed login attempts")
	ErrNoAssets            = errors.New("loan requires at least one pledged asset")
	ErrInvalidAssetWeight  = errors.New("asset weight must be greater than zero")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeCustomerNotFound   = "CUSTOMER_NOT_FOUND"
	ErrCodeLoanNotFound       = "LOAN_NOT_FOUND"
	ErrCodePaymentNotFound    = "PAYMENT_NOT_FOUND"
	ErrCodeDuplicateCustomer  = "DUPLICATE_CUSTOMER"
	ErrCodeDuplicateReference = "DUPLICATE_REFERENCE"
	ErrCodeInvalidLoanAmount  = "INVALID_LOAN_AMOUNT"
	ErrCodeInvalidDate        = "INVALID_DATE"
	ErrCodeInvalidPayment     = "INVALID_PAYMENT_AMOUNT"
	ErrCodePaymentExceedsDue  = "PAYMENT_EXCEEDS_DUE"
	ErrCodeLoanNotSettled     = "LOAN_NOT_SETTLED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeAccountLocked      = "ACCOUNT_LOCKED"
	ErrCodeNoAssets           = "NO_ASSETS"
	ErrCodeInvalidAssetWeight = "INVALID_ASSET_WEIGHT"
	ErrCodeImportFailed       = "IMPORT_FAILED"
	ErrCodeDatabaseError      = "DATABASE_ERROR"
	ErrCodeCacheError         = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapCustomerNotFound(customerID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeCustomerNotFound,
		fmt.Sprintf("Customer with ID %d not found", customerID),
		ErrCustomerNotFound,
	)
}

func WrapLoanNotFound(loanID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %d not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapPaymentNotFound(paymentID string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentNotFound,
		fmt.Sprintf("Payment with ID %s not found", paymentID),
		ErrPaymentNotFound,
	)
}

func WrapDuplicateCustomer(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateCustomer,
		"A customer with this account number or phone already exists",
		errors.Join(ErrDuplicateCustomer, err),
	)
}

func WrapDuplicateReference(referenceID string) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateReference,
		fmt.Sprintf("Reference ID %s already exists", referenceID),
		ErrDuplicateReference,
	)
}

func WrapPaymentExceedsDue(due, attempted string) *BusinessError {
	return NewBusinessError(
		ErrCodePaymentExceedsDue,
		fmt.Sprintf("Payment of %s exceeds amount due %s", attempted, due),
		ErrPaymentExceedsDue,
	)
}

func WrapInvalidPayment(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPayment,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidPayment,
	)
}

func WrapLoanNotSettled(loanID int64) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotSettled,
		fmt.Sprintf("Loan with ID %d has recorded payments and an outstanding balance; settle it before deleting", loanID),
		ErrLoanNotSettled,
	)
}

func WrapInvalidLoanAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidLoanAmount,
		fmt.Sprintf("Invalid loan amount: %s", amount),
		ErrInvalidLoanAmount,
	)
}

func WrapInvalidDate(value string, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidDate,
		fmt.Sprintf("Unrecognized date: %s", value),
		errors.Join(ErrInvalidDate, err),
	)
}

func WrapNoAssets() *BusinessError {
	return NewBusinessError(
		ErrCodeNoAssets,
		"A loan requires at least one pledged asset",
		ErrNoAssets,
	)
}

func WrapInvalidAssetWeight(description string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidAssetWeight,
		fmt.Sprintf("Asset %q must have a weight greater than zero", description),
		ErrInvalidAssetWeight,
	)
}

func WrapInvalidCredentials() *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidCredentials,
		"Incorrect password",
		ErrInvalidCredentials,
	)
}

func WrapAccountLocked(window string) *BusinessError {
	return NewBusinessError(
		ErrCodeAccountLocked,
		fmt.Sprintf("Too many failed login attempts; locked for %s", window),
		ErrAccountLocked,
	)
}

func WrapImportFailed(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeImportFailed,
		"customer import failed, no rows were written",
		err,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}
