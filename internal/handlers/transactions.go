package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	"github.com/retailbank/ledger/internal/api"
	"github.com/retailbank/ledger/internal/models"
	"github.com/retailbank/ledger/internal/notify"
)

const reportQueued = "queued"

func bindListTransactionsParams(r *http.Request) (api.ListTransactionsParams, error) {
	var params api.ListTransactionsParams
	query := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "start_date", query, &params.StartDate); err != nil {
		return params, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "end_date", query, &params.EndDate); err != nil {
		return params, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "account_number", query, &params.AccountNumber); err != nil {
		return params, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "page", query, &params.Page); err != nil {
		return params, err
	}

	return params, nil
}

// ListTransactions handles GET /api/v1/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	params, err := bindListTransactionsParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorCodeValidation, err.Error())
		return
	}

	filter := models.TransactionFilter{
		StartDate: dateToTime(params.StartDate),
		EndDate:   dateToTime(params.EndDate),
	}
	if params.AccountNumber != nil {
		filter.AccountNumber = *params.AccountNumber
	}

	page := 1
	if params.Page != nil {
		page = *params.Page
	}

	result, err := h.journal.Query(r.Context(), identity.UserID, filter, page)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionPage(result))
}

// RequestTransactionReport handles POST /api/v1/transactions/reports
//
// Rendering and delivery happen downstream; the request is only queued here.
func (h *Handler) RequestTransactionReport(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(w, r)
	if !ok {
		return
	}

	var body api.ReportRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	req := notify.ReportRequest{
		ID:            uuid.New(),
		UserID:        identity.UserID,
		StartDate:     dateToTime(body.StartDate),
		EndDate:       dateToTime(body.EndDate),
		AccountNumber: body.AccountNumber,
		RequestedAt:   time.Now().UTC(),
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		writeError(w, http.StatusBadRequest, api.ErrorCodeValidation, "end_date must not be before start_date")
		return
	}

	if err := h.reports.RequestTransactionReport(r.Context(), req); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, api.ReportAccepted{ID: req.ID, Status: reportQueued})
}
