package handlers

import (
	"net/http"

	"github.com/oapi-codegen/runtime"
	"github.com/retailbank/ledger/internal/api"
)

// LookupDepositAccount handles GET /api/v1/deposits?account_number=
//
// Tellers confirm the holder before crediting cash.
func (h *Handler) LookupDepositAccount(w http.ResponseWriter, r *http.Request) {
	var accountNumber string
	if err := runtime.BindQueryParameter("form", true, true, "account_number", r.URL.Query(), &accountNumber); err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorCodeValidation, "account_number is required")
		return
	}

	owner, err := h.accounts.LookupAccount(r.Context(), accountNumber)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.AccountLookup{
		AccountNumber: owner.AccountNumber,
		FullName:      owner.FullName,
		Username:      owner.Username,
		Currency:      string(owner.Currency),
		Status:        string(owner.Status),
	})
}

// CreateDeposit handles POST /api/v1/deposits
func (h *Handler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	var body api.DepositRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	account, err := h.accounts.Deposit(r.Context(), body.AccountNumber, body.Amount)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccount(account))
}
