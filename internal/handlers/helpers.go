package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/retailbank/ledger/internal/api"
	"github.com/retailbank/ledger/internal/middleware"
	"github.com/retailbank/ledger/internal/models"
	"github.com/retailbank/ledger/internal/service"
	"github.com/shopspring/decimal"
)

// maxBodyBytes caps request bodies; every ledger request is a small JSON object
const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	//nolint:errcheck // Best effort response writing
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code api.ErrorCode, message string) {
	writeJSON(w, status, api.Error{Error: code, Message: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, api.ErrorCodeValidation, "request body must be a valid JSON object")
		return false
	}
	return true
}

// caller returns the authenticated identity, answering 401 when there is none
func caller(w http.ResponseWriter, r *http.Request) (middleware.Identity, bool) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, api.ErrorCodeUnauthorized, "missing caller identity")
	}
	return identity, ok
}

func statusForCode(code string) int {
	switch code {
	case service.ErrCodeInsufficientFunds:
		return http.StatusPaymentRequired
	case service.ErrCodeForbidden, service.ErrCodeAccountNotVerified:
		return http.StatusForbidden
	case service.ErrCodeAccountNotFound, service.ErrCodeCardNotFound:
		return http.StatusNotFound
	case service.ErrCodeDuplicateAccount, service.ErrCodeAlreadyVerified,
		service.ErrCodeCardLimitExceeded, service.ErrCodeNonZeroBalance:
		return http.StatusConflict
	case service.ErrCodeInternalError, service.ErrCodeConfig:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// writeServiceError maps service errors to appropriate HTTP responses
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var svcErr *service.ServiceError
	if !errors.As(err, &svcErr) {
		h.logger.Error("unexpected error", "error", err, "method", r.Method, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, api.ErrorCodeInternalError, "internal error")
		return
	}

	status := statusForCode(svcErr.Code)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err, "code", svcErr.Code, "method", r.Method, "path", r.URL.Path)
		writeError(w, status, api.ErrorCode(svcErr.Code), "internal error")
		return
	}

	writeError(w, status, api.ErrorCode(svcErr.Code), svcErr.Message)
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func dateToTime(d *openapi_types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func toAccount(a *models.Account) api.Account {
	return api.Account{
		ID:               a.ID,
		AccountNumber:    a.AccountNumber,
		Balance:          formatAmount(a.Balance),
		Currency:         string(a.Currency),
		AccountType:      string(a.AccountType),
		Status:           string(a.Status),
		IsPrimary:        a.IsPrimary,
		InterestRate:     a.InterestRate.StringFixed(4),
		KYCSubmitted:     a.KYCSubmitted,
		KYCVerified:      a.KYCVerified,
		FullyActivated:   a.FullyActivated,
		VerificationDate: a.VerificationDate,
		CreatedAt:        a.CreatedAt,
	}
}

func toAccounts(accounts []*models.Account) []api.Account {
	out := make([]api.Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccount(a))
	}
	return out
}

func toTransaction(t *models.Transaction) api.Transaction {
	return api.Transaction{
		ID:                t.ID,
		Type:              string(t.Type),
		Status:            string(t.Status),
		Amount:            formatAmount(t.Amount),
		Description:       t.Description,
		SenderAccountID:   t.SenderAccountID,
		ReceiverAccountID: t.ReceiverAccountID,
		CreatedAt:         t.CreatedAt,
	}
}

func toTransactionPage(p *models.TransactionPage) api.TransactionPage {
	items := make([]api.Transaction, 0, len(p.Items))
	for _, t := range p.Items {
		items = append(items, toTransaction(t))
	}
	return api.TransactionPage{
		Items:      items,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalCount: p.TotalCount,
		TotalPages: p.TotalPages,
	}
}

func toPendingTransfer(p *models.PendingTransfer) api.PendingTransfer {
	return api.PendingTransfer{
		Token:                 p.Token,
		Stage:                 string(p.Stage),
		SenderAccountNumber:   p.SenderAccountNumber,
		ReceiverAccountNumber: p.ReceiverAccountNumber,
		Amount:                formatAmount(p.Amount),
		Description:           p.Description,
		ExpiresAt:             p.ExpiresAt,
	}
}

func toPendingWithdrawal(p *models.PendingWithdrawal) api.PendingWithdrawal {
	return api.PendingWithdrawal{
		Token:         p.Token,
		AccountNumber: p.AccountNumber,
		Amount:        formatAmount(p.Amount),
		ExpiresAt:     p.ExpiresAt,
	}
}

func toCard(c *models.VirtualCard) api.VirtualCard {
	return api.VirtualCard{
		ID:            c.ID,
		CardNumber:    c.CardNumber,
		CVV:           c.CVV,
		ExpiryDate:    openapi_types.Date{Time: c.ExpiryDate},
		Balance:       formatAmount(c.Balance),
		Status:        string(c.Status),
		BankAccountID: c.BankAccountID,
		CreatedAt:     c.CreatedAt,
	}
}

func toCards(cards []*models.VirtualCard) []api.VirtualCard {
	out := make([]api.VirtualCard, 0, len(cards))
	for _, c := range cards {
		out = append(out, toCard(c))
	}
	return out
}
