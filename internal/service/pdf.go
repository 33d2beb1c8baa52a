package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/pawnledger/ledger-engine/internal/domain"
	apperrors "github.com/pawnledger/ledger-engine/pkg/errors"
)

const reportDateLayout = "02-01-2006 15:04:05"

// WriteCustomerReportPDF renders every loan of a customer, with assets and
// payment history, into a PDF in the configured output directory. The
// generated file path is returned.
func (s *ReportService) WriteCustomerReportPDF(ctx context.Context, customerID int64) (string, error) {
	customer, err := s.CustomerRepo.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperrors.WrapCustomerNotFound(customerID)
		}
		return "", apperrors.WrapDatabaseError(err)
	}

	loans, err := s.LoansForCustomer(ctx, customerID, domain.LoanFilter{})
	if err != nil {
		return "", err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Customer Loan Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Name: %s", customer.Name), "", 1, "L", false, 0, "")
	if customer.AccountNumber != nil {
		pdf.CellFormat(0, 8, fmt.Sprintf("Account Number: %s", *customer.AccountNumber), "", 1, "L", false, 0, "")
	}
	if customer.Phone != nil {
		pdf.CellFormat(0, 8, fmt.Sprintf("Phone: %s", *customer.Phone), "", 1, "L", false, 0, "")
	}
	if customer.Address != "" {
		pdf.CellFormat(0, 8, fmt.Sprintf("Address: %s", customer.Address), "", 1, "L", false, 0, "")
	}

	for _, loan := range loans {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 8, "Loan Details", "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 8, fmt.Sprintf("Loan Date: %s", loan.LoanDate.Format(reportDateLayout)), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 8, fmt.Sprintf("Total Weight: %s g", loan.TotalWeight.StringFixed(2)), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 8, fmt.Sprintf("Loan Amount: Rs. %s", loan.Amount.StringFixed(2)), "", 1, "L", false, 0, "")
		pdf.CellFormat(0, 8, fmt.Sprintf("Amount Due: Rs. %s", loan.AmountDue.StringFixed(2)), "", 1, "L", false, 0, "")

		s.writeLoanAssets(ctx, pdf, loan.LoanID)
		s.writeLoanPayments(ctx, pdf, loan.LoanID)

		pdf.Ln(4)
		pdf.CellFormat(0, 4, strings.Repeat("_", 50), "", 1, "L", false, 0, "")
	}

	filename := fmt.Sprintf("customer_loan_report_%s_%s.pdf",
		sanitizeFilename(customer.Name),
		time.Now().Format("20060102_150405"),
	)
	path := filepath.Join(s.config.Report.OutputDir, filename)

	if err := pdf.OutputFileAndClose(path); err != nil {
		// Primary write failed (bad characters in the name, permissions
		// on the chosen dir); retry once with an opaque filename in the
		// working directory.
		fallback := fmt.Sprintf("customer_loan_report_%s.pdf", uuid.NewString())
		if fbErr := pdf.OutputFileAndClose(fallback); fbErr != nil {
			return "", fmt.Errorf("writing report: %w", err)
		}
		return fallback, nil
	}

	return path, nil
}

func (s *ReportService) writeLoanAssets(ctx context.Context, pdf *fpdf.Fpdf, loanID int64) {
	pdf.Ln(3)
	pdf.CellFormat(0, 8, "Assets:", "", 1, "L", false, 0, "")

	assets, err := s.LoanRepo.GetAssets(ctx, loanID)
	if err != nil || len(assets) == 0 {
		pdf.CellFormat(0, 8, "No assets found", "", 1, "L", false, 0, "")
		return
	}

	for _, asset := range assets {
		pdf.CellFormat(0, 8, fmt.Sprintf("- %s: %s g", asset.Description, asset.Weight.StringFixed(2)), "", 1, "L", false, 0, "")
	}
}

func (s *ReportService) writeLoanPayments(ctx context.Context, pdf *fpdf.Fpdf, loanID int64) {
	pdf.Ln(3)
	pdf.CellFormat(0, 8, "Payment History:", "", 1, "L", false, 0, "")

	payments, err := s.PaymentRepo.GetByLoanID(ctx, loanID)
	if err != nil || len(payments) == 0 {
		pdf.CellFormat(0, 8, "No payments recorded", "", 1, "L", false, 0, "")
		return
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, payment := range payments {
		attribution := "N/A"
		if payment.AssetDescription != nil {
			attribution = *payment.AssetDescription
		}
		pdf.MultiCell(0, 6, fmt.Sprintf(
			"Date: %s\nAsset: %s\nAmount Paid: Rs. %s\nInterest Paid: Rs. %s\nRemaining Amount: Rs. %s",
			payment.PaymentDate.Format(reportDateLayout),
			attribution,
			payment.Amount.StringFixed(2),
			payment.Interest.StringFixed(2),
			payment.AmountLeft.StringFixed(2),
		), "", "L", false)
		pdf.Ln(2)
	}
	pdf.SetFont("Helvetica", "", 12)
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
}
