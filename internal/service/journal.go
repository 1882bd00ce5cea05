package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/db"
	"github.com/retailbank/ledger/internal/models"
	"github.com/retailbank/ledger/internal/repository"
	"github.com/shopspring/decimal"
)

// Entry describes a movement of funds to be written to the journal
type Entry struct {
	SenderID        *uuid.UUID
	ReceiverID      *uuid.UUID
	SenderAccount   *models.Account
	ReceiverAccount *models.Account
	Description     string
	Type            models.TransactionType
	Status          models.TransactionStatus
	Amount          decimal.Decimal
}

// validate checks an entry before any balance is touched
func (e Entry) validate() error {
	if !e.Amount.IsPositive() {
		return newError(ErrCodeValidation, "transaction amount must be greater than 0")
	}

	if e.Type == models.TransactionTypeTransfer {
		if e.SenderAccount == nil || e.ReceiverAccount == nil {
			return newError(ErrCodeValidation, "transfer requires sender and receiver accounts")
		}
		if e.SenderAccount.ID == e.ReceiverAccount.ID {
			return newError(ErrCodeSameAccount, "cannot transfer to the same account")
		}
		if e.SenderAccount.Currency != e.ReceiverAccount.Currency {
			return newError(ErrCodeCurrencyMismatch, "sender and receiver accounts must use the same currency")
		}
	}

	return nil
}

// recordEntry validates and inserts an entry through the given repository,
// so callers control the enclosing transaction
func recordEntry(ctx context.Context, transactionRepo repository.TransactionRepository, entry Entry) (*models.Transaction, error) {
	if err := entry.validate(); err != nil {
		return nil, err
	}

	status := entry.Status
	if status == "" {
		status = models.TransactionStatusCompleted
	}

	txn := &models.Transaction{
		ID:          uuid.New(),
		Amount:      entry.Amount,
		Type:        entry.Type,
		Status:      status,
		SenderID:    entry.SenderID,
		ReceiverID:  entry.ReceiverID,
		Description: entry.Description,
		CreatedAt:   time.Now(),
	}
	if entry.SenderAccount != nil {
		txn.SenderAccountID = &entry.SenderAccount.ID
	}
	if entry.ReceiverAccount != nil {
		txn.ReceiverAccountID = &entry.ReceiverAccount.ID
	}

	if err := transactionRepo.Create(ctx, txn); err != nil {
		return nil, internalError("failed to record transaction", err)
	}

	return txn, nil
}

// JournalService records and queries the transaction journal
type JournalService struct {
	db       *db.DB
	pageSize int
}

// NewJournalService creates a new JournalService
func NewJournalService(database *db.DB, pageSize int) *JournalService {
	return &JournalService{db: database, pageSize: pageSize}
}

// Record writes a standalone journal entry
func (s *JournalService) Record(ctx context.Context, entry Entry) (*models.Transaction, error) {
	return recordEntry(ctx, repository.NewTransactionRepository(s.db), entry)
}

// Query returns one page of the transactions the user sent or received
func (s *JournalService) Query(
	ctx context.Context,
	userID uuid.UUID,
	filter models.TransactionFilter,
	page int,
) (*models.TransactionPage, error) {
	return s.performQuery(ctx,
		repository.NewAccountRepository(s.db),
		repository.NewTransactionRepository(s.db),
		userID, filter, page,
	)
}

func (s *JournalService) performQuery(
	ctx context.Context,
	accountRepo repository.AccountRepository,
	transactionRepo repository.TransactionRepository,
	userID uuid.UUID,
	filter models.TransactionFilter,
	page int,
) (*models.TransactionPage, error) {
	if page < 1 {
		page = 1
	}

	result := &models.TransactionPage{
		Items:    []*models.Transaction{},
		Page:     page,
		PageSize: s.pageSize,
	}

	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, newError(ErrCodeValidation, "end_date must not be before start_date")
	}

	q := repository.TransactionQuery{
		UserID: userID,
		Limit:  s.pageSize,
	}

	if filter.StartDate != nil {
		from := startOfDay(*filter.StartDate)
		q.From = &from
	}
	if filter.EndDate != nil {
		until := startOfDay(*filter.EndDate).AddDate(0, 0, 1)
		q.Until = &until
	}

	if filter.AccountNumber != "" {
		account, err := accountRepo.FindByAccountNumber(ctx, filter.AccountNumber)
		if errors.Is(err, models.ErrNotFound) || (err == nil && account.UserID != userID) {
			return result, nil
		}
		if err != nil {
			return nil, internalError("failed to look up account", err)
		}
		q.AccountID = &account.ID
	}

	total, err := transactionRepo.CountForUser(ctx, q)
	if err != nil {
		return nil, internalError("failed to count transactions", err)
	}

	result.TotalCount = total
	result.TotalPages = (total + s.pageSize - 1) / s.pageSize

	// page is bounded by TotalPages before it is scaled into an offset
	if total == 0 || page > result.TotalPages {
		return result, nil
	}
	q.Offset = (page - 1) * s.pageSize

	items, err := transactionRepo.ListForUser(ctx, q)
	if err != nil {
		return nil, internalError("failed to list transactions", err)
	}
	result.Items = items

	return result, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
