package handlers

import (
	"net/http"

	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/retailbank/ledger/internal/api"
)

func bindCardID(w http.ResponseWriter, r *http.Request) (openapi_types.UUID, bool) {
	var cardID openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "cardId", r.PathValue("cardId"), &cardID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorCodeValidation, "invalid card id")
		return cardID, false
	}
	return cardID, true
}

// ListVirtualCards handles GET /api/v1/virtual-cards
func (h *Handler) ListVirtualCards(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	cards, err := h.cards.ListCards(r.Context(), identity.UserID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCards(cards))
}

// IssueVirtualCard handles POST /api/v1/virtual-cards
func (h *Handler) IssueVirtualCard(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var body api.IssueCardRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	card, err := h.cards.IssueCard(r.Context(), identity.UserID, body.BankAccountNumber)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCard(card))
}

// GetVirtualCard handles GET /api/v1/virtual-cards/{cardId}
func (h *Handler) GetVirtualCard(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	cardID, ok := bindCardID(w, r)
	if !ok {
		return
	}

	card, err := h.cards.GetCard(r.Context(), identity.UserID, cardID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCard(card))
}

// DeleteVirtualCard handles DELETE /api/v1/virtual-cards/{cardId}
func (h *Handler) DeleteVirtualCard(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	cardID, ok := bindCardID(w, r)
	if !ok {
		return
	}

	if err := h.cards.DeleteCard(r.Context(), identity.UserID, cardID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TopUpVirtualCard handles POST /api/v1/virtual-cards/{cardId}/top-up
func (h *Handler) TopUpVirtualCard(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}
	cardID, ok := bindCardID(w, r)
	if !ok {
		return
	}

	var body api.TopUpRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	card, err := h.cards.TopUp(r.Context(), identity.UserID, cardID, body.Amount)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCard(card))
}
