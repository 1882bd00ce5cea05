package handlers

import (
	"net/http"

	"github.com/retailbank/ledger/internal/api"
	"github.com/retailbank/ledger/internal/service"
)

// InitiateTransfer handles POST /api/v1/transfers/initiate
func (h *Handler) InitiateTransfer(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var body api.TransferRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	pending, err := h.transfers.Initiate(r.Context(), identity.UserID, service.TransferRequest{
		SenderAccountNumber:   body.SenderAccountNumber,
		ReceiverAccountNumber: body.ReceiverAccountNumber,
		Description:           body.Description,
		Amount:                body.Amount,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPendingTransfer(pending))
}

// VerifyTransferSecurityQuestion handles POST /api/v1/transfers/verify-security-question
func (h *Handler) VerifyTransferSecurityQuestion(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var body api.SecurityAnswerRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	pending, err := h.transfers.VerifySecurityQuestion(r.Context(), identity.UserID, body.Answer)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toPendingTransfer(pending))
}

// VerifyTransferOTP handles POST /api/v1/transfers/verify-otp
func (h *Handler) VerifyTransferOTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var body api.OTPRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	txn, err := h.transfers.VerifyOTPAndCommit(r.Context(), identity.UserID, body.OTP)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransaction(txn))
}
