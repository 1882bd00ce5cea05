package handlers

import (
	"net/http"

	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/retailbank/ledger/internal/api"
	"github.com/retailbank/ledger/internal/models"
	"github.com/retailbank/ledger/internal/service"
)

// ListAccounts handles GET /api/v1/accounts
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	accounts, err := h.accounts.ListAccounts(r.Context(), identity.UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccounts(accounts))
}

// CreateAccount handles POST /api/v1/accounts
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var body api.CreateAccountRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	account, err := h.accounts.CreateAccount(
		r.Context(),
		identity.UserID,
		models.Currency(body.Currency),
		models.AccountType(body.AccountType),
	)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccount(account))
}

// SetPrimaryAccount handles PATCH /api/v1/accounts/{accountNumber}/primary
func (h *Handler) SetPrimaryAccount(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	account, err := h.accounts.SetPrimary(r.Context(), identity.UserID, r.PathValue("accountNumber"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccount(account))
}

// UpdateAccountVerification handles PATCH /api/v1/accounts/{accountId}/verification
func (h *Handler) UpdateAccountVerification(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var accountID openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "accountId", r.PathValue("accountId"), &accountID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorCodeValidation, "invalid account id")
		return
	}

	var body api.VerificationRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	update := service.KYCUpdate{
		KYCSubmitted:      body.KYCSubmitted,
		KYCVerified:       body.KYCVerified,
		VerificationDate:  dateToTime(body.VerificationDate),
		VerificationNotes: body.VerificationNotes,
	}

	account, err := h.accounts.VerifyKYC(r.Context(), accountID, update, identity.UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccount(account))
}
