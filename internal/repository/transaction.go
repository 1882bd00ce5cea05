package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/models"
	"github.com/shopspring/decimal"
)

const transactionColumns = `
	id, amount, type, status, sender_id, receiver_id, sender_account_id,
	receiver_account_id, description, created_at`

// TransactionQuery selects a user's journal entries. From is inclusive and
// Until exclusive; AccountID restricts to entries touching that account.
type TransactionQuery struct {
	From      *time.Time
	Until     *time.Time
	AccountID *uuid.UUID
	UserID    uuid.UUID
	Limit     int
	Offset    int
}

// UserActivity is the number of journal entries a user took part in
type UserActivity struct {
	UserID uuid.UUID
	Count  int
}

// AccountNetChange is received minus sent for an account over a window
type AccountNetChange struct {
	AccountNumber string
	Net           decimal.Decimal
	AccountID     uuid.UUID
}

// TransactionRepository defines the interface for journal data access
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	ListForUser(ctx context.Context, q TransactionQuery) ([]*models.Transaction, error)
	CountForUser(ctx context.Context, q TransactionQuery) (int, error)
	ListLargeSince(ctx context.Context, since time.Time, threshold decimal.Decimal) ([]*models.Transaction, error)
	CountByUserSince(ctx context.Context, since time.Time, minCount int) ([]UserActivity, error)
	NetChangeSince(ctx context.Context, since time.Time, threshold decimal.Decimal) ([]AccountNetChange, error)
}

// transactionRepository implements TransactionRepository
type transactionRepository struct {
	db DBTX
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(database DBTX) TransactionRepository {
	return &transactionRepository{db: database}
}

func scanTransaction(row rowScanner, tx *models.Transaction) error {
	return row.Scan(
		&tx.ID,
		&tx.Amount,
		&tx.Type,
		&tx.Status,
		&tx.SenderID,
		&tx.ReceiverID,
		&tx.SenderAccountID,
		&tx.ReceiverAccountID,
		&tx.Description,
		&tx.CreatedAt,
	)
}

// Create inserts a journal entry. CreatedAt defaults to now when unset.
func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		tx.ID,
		tx.Amount,
		tx.Type,
		tx.Status,
		tx.SenderID,
		tx.ReceiverID,
		tx.SenderAccountID,
		tx.ReceiverAccountID,
		tx.Description,
		tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// FindByID retrieves a transaction by ID
func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var tx models.Transaction
	err := scanTransaction(
		r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id),
		&tx,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}

	return &tx, nil
}

func (q TransactionQuery) where() (string, []any) {
	clauses := []string{"(sender_id = $1 OR receiver_id = $1)"}
	args := []any{q.UserID}

	if q.From != nil {
		args = append(args, *q.From)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if q.Until != nil {
		args = append(args, *q.Until)
		clauses = append(clauses, fmt.Sprintf("created_at < $%d", len(args)))
	}
	if q.AccountID != nil {
		args = append(args, *q.AccountID)
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("(sender_account_id = $%d OR receiver_account_id = $%d)", n, n))
	}

	return strings.Join(clauses, " AND "), args
}

// ListForUser returns entries where the user is sender or receiver, newest first
func (r *transactionRepository) ListForUser(ctx context.Context, q TransactionQuery) ([]*models.Transaction, error) {
	where, args := q.where()
	args = append(args, q.Limit, q.Offset)

	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		transactionColumns, where, len(args)-1, len(args),
	)

	return r.list(ctx, query, args...)
}

// CountForUser counts the entries ListForUser would page over
func (r *transactionRepository) CountForUser(ctx context.Context, q TransactionQuery) (int, error) {
	where, args := q.where()

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE `+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

// ListLargeSince returns entries created since the given time with amount >= threshold
func (r *transactionRepository) ListLargeSince(ctx context.Context, since time.Time, threshold decimal.Decimal) ([]*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE created_at >= $1 AND amount >= $2
		ORDER BY created_at DESC`

	return r.list(ctx, query, since, threshold)
}

// CountByUserSince returns users involved in at least minCount entries since the given time.
// An entry where the user is both sender and receiver counts once.
func (r *transactionRepository) CountByUserSince(ctx context.Context, since time.Time, minCount int) ([]UserActivity, error) {
	query := `
		SELECT user_id, COUNT(*) FROM (
			SELECT id, sender_id AS user_id FROM transactions
			WHERE created_at >= $1 AND sender_id IS NOT NULL
			UNION
			SELECT id, receiver_id AS user_id FROM transactions
			WHERE created_at >= $1 AND receiver_id IS NOT NULL
		) involved
		GROUP BY user_id
		HAVING COUNT(*) >= $2
		ORDER BY COUNT(*) DESC
	`

	rows, err := r.db.QueryContext(ctx, query, since, minCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count user activity: %w", err)
	}
	defer rows.Close() //nolint:errcheck // close error is not actionable

	var activity []UserActivity
	for rows.Next() {
		var a UserActivity
		if err := rows.Scan(&a.UserID, &a.Count); err != nil {
			return nil, fmt.Errorf("failed to scan user activity: %w", err)
		}
		activity = append(activity, a)
	}

	return activity, rows.Err()
}

// NetChangeSince returns accounts whose received minus sent since the given
// time exceeds threshold in absolute value
func (r *transactionRepository) NetChangeSince(ctx context.Context, since time.Time, threshold decimal.Decimal) ([]AccountNetChange, error) {
	query := `
		SELECT account_id, account_number, net FROM (
			SELECT a.id AS account_id, a.account_number,
			       COALESCE(SUM(t.amount) FILTER (WHERE t.receiver_account_id = a.id), 0)
			     - COALESCE(SUM(t.amount) FILTER (WHERE t.sender_account_id = a.id), 0) AS net
			FROM bank_accounts a
			JOIN transactions t
			  ON t.sender_account_id = a.id OR t.receiver_account_id = a.id
			WHERE t.created_at >= $1
			GROUP BY a.id, a.account_number
		) changes
		WHERE ABS(net) > $2
		ORDER BY ABS(net) DESC
	`

	rows, err := r.db.QueryContext(ctx, query, since, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to compute net balance changes: %w", err)
	}
	defer rows.Close() //nolint:errcheck // close error is not actionable

	var changes []AccountNetChange
	for rows.Next() {
		var c AccountNetChange
		if err := rows.Scan(&c.AccountID, &c.AccountNumber, &c.Net); err != nil {
			return nil, fmt.Errorf("failed to scan net change: %w", err)
		}
		changes = append(changes, c)
	}

	return changes, rows.Err()
}

func (r *transactionRepository) list(ctx context.Context, query string, args ...any) ([]*models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close() //nolint:errcheck // close error is not actionable

	var txs []*models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := scanTransaction(rows, &tx); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txs, nil
}
