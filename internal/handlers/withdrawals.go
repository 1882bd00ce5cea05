package handlers

import (
	"net/http"

	"github.com/retailbank/ledger/internal/api"
)

// InitiateWithdrawal handles POST /api/v1/withdrawals/initiate
func (h *Handler) InitiateWithdrawal(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var body api.WithdrawalRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	pending, err := h.withdrawals.Initiate(r.Context(), identity.UserID, body.AccountNumber, body.Amount)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPendingWithdrawal(pending))
}

// ConfirmWithdrawal handles POST /api/v1/withdrawals/confirm
func (h *Handler) ConfirmWithdrawal(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var body api.ConfirmWithdrawalRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	account, txn, err := h.withdrawals.VerifyUsernameAndWithdraw(r.Context(), identity.UserID, body.Username)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, api.MovementResult{
		Transaction: toTransaction(txn),
		Balance:     formatAmount(account.Balance),
	})
}
