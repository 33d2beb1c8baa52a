package handler

import (
	"net/http"

	"github.com/pawnledger/ledger-engine/internal/domain"
	"github.com/pawnledger/ledger-engine/internal/service"
	"github.com/pawnledger/ledger-engine/pkg/response"
	"github.com/pawnledger/ledger-engine/pkg/utils"
)

type ReportHandler struct {
	service *service.ReportService
}

func NewReportHandler(service *service.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		response.BadRequest(w, "invalid year", err)
		return
	}

	stats, err := h.service.SummaryStats(r.Context(), year)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, stats)
}

func (h *ReportHandler) CustomerLoans(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "customerId")
	if err != nil {
		response.BadRequest(w, "invalid customer id", err)
		return
	}

	filter, err := loanFilterFromQuery(r)
	if err != nil {
		response.BadRequest(w, "invalid filter", err)
		return
	}

	loans, err := h.service.LoansForCustomer(r.Context(), customerID, filter)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, loans)
}

func (h *ReportHandler) CustomerTotals(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "customerId")
	if err != nil {
		response.BadRequest(w, "invalid customer id", err)
		return
	}

	totals, err := h.service.CustomerTotals(r.Context(), customerID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, totals)
}

// CustomerPDF writes the loan report to disk and returns the file path.
func (h *ReportHandler) CustomerPDF(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "customerId")
	if err != nil {
		response.BadRequest(w, "invalid customer id", err)
		return
	}

	path, err := h.service.WriteCustomerReportPDF(r.Context(), customerID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, map[string]string{"report": path})
}

func loanFilterFromQuery(r *http.Request) (domain.LoanFilter, error) {
	var filter domain.LoanFilter
	var err error

	if filter.Year, err = queryInt(r, "year"); err != nil {
		return filter, err
	}
	if filter.Limit, err = queryInt(r, "limit"); err != nil {
		return filter, err
	}
	if filter.Offset, err = queryInt(r, "offset"); err != nil {
		return filter, err
	}

	if raw := r.URL.Query().Get("from"); raw != "" {
		if filter.From, err = utils.ParseDate(raw); err != nil {
			return filter, err
		}
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		if filter.To, err = utils.ParseDate(raw); err != nil {
			return filter, err
		}
	}

	return filter, nil
}
