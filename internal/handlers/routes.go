package handlers

import (
	"log/slog"
	"net/http"

	"github.com/retailbank/ledger/internal/api"
	"github.com/retailbank/ledger/internal/config"
	"github.com/retailbank/ledger/internal/db"
	"github.com/retailbank/ledger/internal/identifier"
	"github.com/retailbank/ledger/internal/middleware"
	"github.com/retailbank/ledger/internal/models"
	"github.com/retailbank/ledger/internal/notify"
	"github.com/retailbank/ledger/internal/repository"
	"github.com/retailbank/ledger/internal/service"
)

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(
	database *db.DB,
	cfg *config.Config,
	workflows service.PendingStore,
	notifier *notify.Notifier,
	logger *slog.Logger,
) (http.Handler, error) {
	generator := identifier.NewGenerator(&cfg.Identifier)

	accountService := service.NewAccountService(database, generator, notifier, logger)
	journalService := service.NewJournalService(database, cfg.Ledger.PageSize)
	transferService := service.NewTransferService(database, workflows, notifier,
		cfg.Ledger.PendingOperationTTL, cfg.Ledger.OTPTTL, logger)
	withdrawalService := service.NewWithdrawalService(database, accountService, workflows,
		cfg.Ledger.PendingOperationTTL, logger)
	cardService := service.NewCardService(database, generator, notifier, cfg.Ledger.MaxVirtualCards, logger)

	handler := NewHandler(
		accountService,
		journalService,
		transferService,
		withdrawalService,
		cardService,
		notifier,
		database,
		logger,
	)

	mux := http.NewServeMux()
	api.RegisterDocsRoutes(mux)
	handler.RegisterRoutes(mux)

	doc, err := api.GetSwagger()
	if err != nil {
		return nil, err
	}
	validate, err := middleware.ValidateRequests(doc, logger)
	if err != nil {
		return nil, err
	}

	var finalHandler http.Handler = mux

	idempotencyRepo := repository.NewIdempotencyRepository(database)
	finalHandler = middleware.Idempotency(idempotencyRepo, logger)(finalHandler)
	finalHandler = validate(finalHandler)
	finalHandler = middleware.Authenticate([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer, logger)(finalHandler)

	return finalHandler, nil
}

// RegisterRoutes registers every ledger endpoint on mux. Staff only routes
// carry their role check; authentication happens in front of the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	tellerOnly := middleware.RequireRole(models.RoleTeller)
	executiveOnly := middleware.RequireRole(models.RoleAccountExecutive)

	mux.HandleFunc("GET /health", h.GetHealth)

	mux.HandleFunc("GET /api/v1/accounts", h.ListAccounts)
	mux.HandleFunc("POST /api/v1/accounts", h.CreateAccount)
	mux.HandleFunc("PATCH /api/v1/accounts/{accountNumber}/primary", h.SetPrimaryAccount)
	mux.Handle("PATCH /api/v1/accounts/{accountId}/verification",
		executiveOnly(http.HandlerFunc(h.UpdateAccountVerification)))

	mux.Handle("GET /api/v1/deposits", tellerOnly(http.HandlerFunc(h.LookupDepositAccount)))
	mux.Handle("POST /api/v1/deposits", tellerOnly(http.HandlerFunc(h.CreateDeposit)))

	mux.HandleFunc("POST /api/v1/withdrawals/initiate", h.InitiateWithdrawal)
	mux.HandleFunc("POST /api/v1/withdrawals/confirm", h.ConfirmWithdrawal)

	mux.HandleFunc("POST /api/v1/transfers/initiate", h.InitiateTransfer)
	mux.HandleFunc("POST /api/v1/transfers/verify-security-question", h.VerifyTransferSecurityQuestion)
	mux.HandleFunc("POST /api/v1/transfers/verify-otp", h.VerifyTransferOTP)

	mux.HandleFunc("GET /api/v1/transactions", h.ListTransactions)
	mux.HandleFunc("POST /api/v1/transactions/reports", h.RequestTransactionReport)

	mux.HandleFunc("GET /api/v1/virtual-cards", h.ListVirtualCards)
	mux.HandleFunc("POST /api/v1/virtual-cards", h.IssueVirtualCard)
	mux.HandleFunc("GET /api/v1/virtual-cards/{cardId}", h.GetVirtualCard)
	mux.HandleFunc("DELETE /api/v1/virtual-cards/{cardId}", h.DeleteVirtualCard)
	mux.HandleFunc("POST /api/v1/virtual-cards/{cardId}/top-up", h.TopUpVirtualCard)
}
