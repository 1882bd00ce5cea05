// Package handlers implements HTTP handlers for the ledger API.
package handlers

import (
	"log/slog"

	"github.com/retailbank/ledger/internal/service"
)

// Handler serves every ledger endpoint
type Handler struct {
	accounts      service.AccountManager
	journal       service.TransactionQuerier
	transfers     service.TransferProcessor
	withdrawals   service.WithdrawalProcessor
	cards         service.CardManager
	reports       service.ReportRequester
	healthChecker service.HealthChecker
	logger        *slog.Logger
}

// NewHandler creates a new Handler with injected service dependencies.
func NewHandler(
	accounts service.AccountManager,
	journal service.TransactionQuerier,
	transfers service.TransferProcessor,
	withdrawals service.WithdrawalProcessor,
	cards service.CardManager,
	reports service.ReportRequester,
	healthChecker service.HealthChecker,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		accounts:      accounts,
		journal:       journal,
		transfers:     transfers,
		withdrawals:   withdrawals,
		cards:         cards,
		reports:       reports,
		healthChecker: healthChecker,
		logger:        logger,
	}
}
