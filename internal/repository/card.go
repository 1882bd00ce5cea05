package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/models"
	"github.com/shopspring/decimal"
)

const cardColumns = `
	id, user_id, bank_account_id, card_number, expiry_date, balance, status,
	created_at, updated_at`

// CardRepository defines the interface for virtual card data access.
// Lookups are scoped to the owning user.
type CardRepository interface {
	Create(ctx context.Context, card *models.VirtualCard) error
	FindByID(ctx context.Context, id, userID uuid.UUID) (*models.VirtualCard, error)
	FindByIDForUpdate(ctx context.Context, id, userID uuid.UUID) (*models.VirtualCard, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.VirtualCard, error)
	ExistsByCardNumber(ctx context.Context, cardNumber string) (bool, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	AdjustBalance(ctx context.Context, cardID uuid.UUID, delta decimal.Decimal) error
	Delete(ctx context.Context, cardID uuid.UUID) error
}

type cardRepository struct {
	db DBTX
}

// NewCardRepository creates a new CardRepository
func NewCardRepository(database DBTX) CardRepository {
	return &cardRepository{db: database}
}

func scanCard(row rowScanner, card *models.VirtualCard) error {
	return row.Scan(
		&card.ID,
		&card.UserID,
		&card.BankAccountID,
		&card.CardNumber,
		&card.ExpiryDate,
		&card.Balance,
		&card.Status,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
}

// Create inserts a card. A taken card number yields ErrDuplicateNumber.
func (r *cardRepository) Create(ctx context.Context, card *models.VirtualCard) error {
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}

	query := `
		INSERT INTO virtual_cards (id, user_id, bank_account_id, card_number, expiry_date, balance, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		card.ID,
		card.UserID,
		card.BankAccountID,
		card.CardNumber,
		card.ExpiryDate,
		card.Balance,
		card.Status,
	).Scan(&card.CreatedAt, &card.UpdatedAt)

	if _, ok := uniqueViolation(err); ok {
		return fmt.Errorf("card number: %w", models.ErrDuplicateNumber)
	}
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}

	return nil
}

func (r *cardRepository) findOne(ctx context.Context, query string, id, userID uuid.UUID) (*models.VirtualCard, error) {
	var card models.VirtualCard
	err := scanCard(r.db.QueryRowContext(ctx, query, id, userID), &card)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find card: %w", err)
	}

	return &card, nil
}

// FindByID retrieves one of the user's cards
func (r *cardRepository) FindByID(ctx context.Context, id, userID uuid.UUID) (*models.VirtualCard, error) {
	return r.findOne(ctx, `SELECT `+cardColumns+` FROM virtual_cards WHERE id = $1 AND user_id = $2`, id, userID)
}

// FindByIDForUpdate retrieves one of the user's cards and locks its row
func (r *cardRepository) FindByIDForUpdate(ctx context.Context, id, userID uuid.UUID) (*models.VirtualCard, error) {
	return r.findOne(ctx,
		`SELECT `+cardColumns+` FROM virtual_cards WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		id, userID,
	)
}

// ListByUser returns the user's cards, oldest first
func (r *cardRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.VirtualCard, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM virtual_cards WHERE user_id = $1 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close() //nolint:errcheck // close error is not actionable

	var cards []*models.VirtualCard
	for rows.Next() {
		var card models.VirtualCard
		if err := scanCard(rows, &card); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, &card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}

	return cards, nil
}

// ExistsByCardNumber reports whether the card number is already taken
func (r *cardRepository) ExistsByCardNumber(ctx context.Context, cardNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM virtual_cards WHERE card_number = $1)`,
		cardNumber,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check card number: %w", err)
	}
	return exists, nil
}

// CountByUser counts every card the user holds regardless of status
func (r *cardRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM virtual_cards WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return count, nil
}

// AdjustBalance adds delta to the card balance
func (r *cardRepository) AdjustBalance(ctx context.Context, cardID uuid.UUID, delta decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE virtual_cards SET balance = balance + $2, updated_at = NOW() WHERE id = $1`,
		cardID, delta,
	)
	if err != nil {
		return fmt.Errorf("failed to adjust card balance: %w", err)
	}

	return expectOneRow(result)
}

// Delete removes a card
func (r *cardRepository) Delete(ctx context.Context, cardID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM virtual_cards WHERE id = $1`, cardID)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	return expectOneRow(result)
}
