package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/pawnledger/ledger-engine/internal/domain"
	"github.com/pawnledger/ledger-engine/internal/service"
	"github.com/pawnledger/ledger-engine/pkg/response"
)

type CustomerHandler struct {
	service   *service.CustomerService
	validator *validator.Validate
}

func NewCustomerHandler(service *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		service:   service,
		validator: validator.New(),
	}
}

func (h *CustomerHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterCustomerRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		response.BadRequest(w, "invalid customer", err)
		return
	}

	customer, err := h.service.Register(r.Context(), &req)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, customer)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "customerId")
	if err != nil {
		response.BadRequest(w, "invalid customer id", err)
		return
	}

	customer, err := h.service.Get(r.Context(), customerID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, customer)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	customerID, err := pathID(r, "customerId")
	if err != nil {
		response.BadRequest(w, "invalid customer id", err)
		return
	}

	var req domain.UpdateCustomerRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		response.BadRequest(w, "invalid customer", err)
		return
	}

	customer, err := h.service.Update(r.Context(), customerID, &req)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, customer)
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year")
	if err != nil {
		response.BadRequest(w, "invalid year", err)
		return
	}

	customers, err := h.service.List(r.Context(), year)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, customers)
}

// Import bulk-loads customers from a CSV request body.
func (h *CustomerHandler) Import(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ImportCSV(r.Context(), r.Body)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, result)
}
