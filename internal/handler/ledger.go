package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"lendbook/internal/domain"
	"lendbook/internal/service"
	"lendbook/pkg/response"
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

// CreateMember handles POST /api/v1/members
func (h *LedgerHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var request domain.CreateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "invalid member request", err)
		return
	}

	member, err := h.service.CreateMember(r.Context(), SessionFrom(r.Context()), &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, member)
}

// ListMembers handles GET /api/v1/members
func (h *LedgerHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListMembers(r.Context(), SessionFrom(r.Context()))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, list)
}

// GetMember handles GET /api/v1/members/{memberId}
func (h *LedgerHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFrom(r)
	if err != nil {
		response.BadRequest(w, "invalid member id", err)
		return
	}

	member, err := h.service.GetMember(r.Context(), SessionFrom(r.Context()), memberID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, member)
}

// DeleteMember handles DELETE /api/v1/members/{memberId}
func (h *LedgerHandler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFrom(r)
	if err != nil {
		response.BadRequest(w, "invalid member id", err)
		return
	}

	if err := h.service.DeleteMember(r.Context(), SessionFrom(r.Context()), memberID); err != nil {
		response.FromError(w, err)
		return
	}

	response.NoContent(w)
}

// RecordPayment handles POST /api/v1/members/{memberId}/payments
func (h *LedgerHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFrom(r)
	if err != nil {
		response.BadRequest(w, "invalid member id", err)
		return
	}

	var request domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "invalid payment request", err)
		return
	}

	resp, err := h.service.RecordPayment(r.Context(), SessionFrom(r.Context()), memberID, &request)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, resp)
}

// MemberTransactions handles GET /api/v1/members/{memberId}/transactions
func (h *LedgerHandler) MemberTransactions(w http.ResponseWriter, r *http.Request) {
	memberID, err := memberIDFrom(r)
	if err != nil {
		response.BadRequest(w, "invalid member id", err)
		return
	}

	transactions, err := h.service.MemberTransactions(r.Context(), SessionFrom(r.Context()), memberID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, transactions)
}

// ListTransactions handles GET /api/v1/transactions
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.service.ListTransactions(r.Context(), SessionFrom(r.Context()))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Success(w, transactions)
}

func memberIDFrom(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)["memberId"])
}
