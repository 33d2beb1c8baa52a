package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/pawnledger/ledger-engine/internal/domain"
	"github.com/pawnledger/ledger-engine/internal/service"
	"github.com/pawnledger/ledger-engine/pkg/response"
)

type LedgerHandler struct {
	service   *service.LedgerService
	validator *validator.Validate
}

func NewLedgerHandler(service *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		service:   service,
		validator: validator.New(),
	}
}

func (h *LedgerHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLoanRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		response.BadRequest(w, "invalid loan", err)
		return
	}

	loan, assets, err := h.service.CreateLoan(r.Context(), &req)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, domain.CreateLoanResponse{Loan: loan, Assets: assets})
}

func (h *LedgerHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathID(r, "loanId")
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	detail, err := h.service.GetLoanDetail(r.Context(), loanID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, detail)
}

func (h *LedgerHandler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathID(r, "loanId")
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	if err := h.service.DeleteLoan(r.Context(), loanID); err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, map[string]int64{"deleted_loan_id": loanID})
}

func (h *LedgerHandler) UpdateAssets(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathID(r, "loanId")
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	var req domain.UpdateAssetsRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		response.BadRequest(w, "invalid assets", err)
		return
	}

	assets, err := h.service.UpdateLoanAssets(r.Context(), loanID, &req)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, assets)
}

func (h *LedgerHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathID(r, "loanId")
	if err != nil {
		response.BadRequest(w, "invalid loan id", err)
		return
	}

	var req domain.RecordPaymentRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		response.BadRequest(w, "invalid payment", err)
		return
	}

	payment, err := h.service.RecordPayment(r.Context(), loanID, &req)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, payment)
}

func (h *LedgerHandler) EditPayment(w http.ResponseWriter, r *http.Request) {
	paymentID := mux.Vars(r)["paymentId"]
	if paymentID == "" {
		response.BadRequest(w, "invalid payment id", nil)
		return
	}

	var req domain.EditPaymentRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		response.BadRequest(w, "invalid payment", err)
		return
	}

	payment, err := h.service.EditPayment(r.Context(), paymentID, &req)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, payment)
}
