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

const (
	constraintAccountNumber   = "bank_accounts_account_number_key"
	constraintAccountCurrency = "bank_accounts_user_currency_type_key"
)

const accountColumns = `
	id, user_id, account_number, balance, currency, account_type, status, is_primary,
	kyc_submitted, kyc_verified, verified_by, verification_date, verification_notes,
	fully_activated, interest_rate, created_at, updated_at`

// AccountRepository defines the interface for bank account data access
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error)
	FindByAccountNumberForUpdate(ctx context.Context, accountNumber string) (*models.Account, error)
	FindWithOwner(ctx context.Context, accountNumber string) (*models.AccountOwner, error)
	ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Account, error)
	ListSavingsIDs(ctx context.Context) ([]uuid.UUID, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
	AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error
	UpdateInterestRate(ctx context.Context, accountID uuid.UUID, rate decimal.Decimal) error
	UpdateVerification(ctx context.Context, account *models.Account) error
	ClearPrimary(ctx context.Context, userID, exceptID uuid.UUID) error
	MarkPrimary(ctx context.Context, accountID uuid.UUID) error
}

// accountRepository implements AccountRepository
type accountRepository struct {
	db DBTX
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(database DBTX) AccountRepository {
	return &accountRepository{db: database}
}

func scanAccount(row rowScanner, account *models.Account) error {
	return row.Scan(
		&account.ID,
		&account.UserID,
		&account.AccountNumber,
		&account.Balance,
		&account.Currency,
		&account.AccountType,
		&account.Status,
		&account.IsPrimary,
		&account.KYCSubmitted,
		&account.KYCVerified,
		&account.VerifiedBy,
		&account.VerificationDate,
		&account.VerificationNotes,
		&account.FullyActivated,
		&account.InterestRate,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
}

// Create inserts a new account. A taken account number yields ErrDuplicateNumber,
// a second account of the same currency and type yields ErrDuplicateAccount.
func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	query := `
		INSERT INTO bank_accounts (
			id, user_id, account_number, balance, currency, account_type, status,
			is_primary, interest_rate
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		account.ID,
		account.UserID,
		account.AccountNumber,
		account.Balance,
		account.Currency,
		account.AccountType,
		account.Status,
		account.IsPrimary,
		account.InterestRate,
	).Scan(&account.CreatedAt, &account.UpdatedAt)

	if constraint, ok := uniqueViolation(err); ok {
		switch constraint {
		case constraintAccountNumber:
			return fmt.Errorf("account number %s: %w", account.AccountNumber, models.ErrDuplicateNumber)
		case constraintAccountCurrency:
			return models.ErrDuplicateAccount
		}
	}
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

func (r *accountRepository) findOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	var account models.Account
	err := scanAccount(r.db.QueryRowContext(ctx, query, arg), &account)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	return &account, nil
}

// FindByID retrieves an account by its UUID
func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM bank_accounts WHERE id = $1`, id)
}

// FindByIDForUpdate retrieves an account and locks its row until the transaction ends
func (r *accountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM bank_accounts WHERE id = $1 FOR UPDATE`, id)
}

// FindByAccountNumber retrieves an account by its account number
func (r *accountRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*models.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM bank_accounts WHERE account_number = $1`, accountNumber)
}

// FindByAccountNumberForUpdate retrieves an account by number and locks its row
func (r *accountRepository) FindByAccountNumberForUpdate(ctx context.Context, accountNumber string) (*models.Account, error) {
	return r.findOne(ctx,
		`SELECT `+accountColumns+` FROM bank_accounts WHERE account_number = $1 FOR UPDATE`,
		accountNumber,
	)
}

// FindWithOwner retrieves an account together with its holder's name and email
func (r *accountRepository) FindWithOwner(ctx context.Context, accountNumber string) (*models.AccountOwner, error) {
	query := `
		SELECT a.id, a.user_id, a.account_number, a.balance, a.currency, a.account_type,
		       a.status, a.is_primary, a.kyc_submitted, a.kyc_verified, a.verified_by,
		       a.verification_date, a.verification_notes, a.fully_activated,
		       a.interest_rate, a.created_at, a.updated_at,
		       u.username, u.full_name, u.email
		FROM bank_accounts a
		JOIN users u ON u.id = a.user_id
		WHERE a.account_number = $1
	`

	var owner models.AccountOwner
	a := &owner.Account
	err := r.db.QueryRowContext(ctx, query, accountNumber).Scan(
		&a.ID, &a.UserID, &a.AccountNumber, &a.Balance, &a.Currency, &a.AccountType,
		&a.Status, &a.IsPrimary, &a.KYCSubmitted, &a.KYCVerified, &a.VerifiedBy,
		&a.VerificationDate, &a.VerificationNotes, &a.FullyActivated,
		&a.InterestRate, &a.CreatedAt, &a.UpdatedAt,
		&owner.Username, &owner.FullName, &owner.Email,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account owner: %w", err)
	}

	return &owner, nil
}

// ExistsByAccountNumber reports whether the account number is already taken
func (r *accountRepository) ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM bank_accounts WHERE account_number = $1)`,
		accountNumber,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account number: %w", err)
	}
	return exists, nil
}

// ListByUser returns a user's accounts, primary first
func (r *accountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM bank_accounts
		WHERE user_id = $1
		ORDER BY is_primary DESC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close() //nolint:errcheck // close error is not actionable

	var accounts []*models.Account
	for rows.Next() {
		var account models.Account
		if err := scanAccount(rows, &account); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, &account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

// ListSavingsIDs returns the ids of every savings account
func (r *accountRepository) ListSavingsIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM bank_accounts WHERE account_type = $1 ORDER BY id`,
		models.AccountTypeSavings,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list savings accounts: %w", err)
	}
	defer rows.Close() //nolint:errcheck // close error is not actionable

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan account id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// CountByUser returns how many accounts a user holds
func (r *accountRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bank_accounts WHERE user_id = $1`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}

// AdjustBalance adds delta to the balance. The balance >= 0 check constraint
// rejects an adjustment that would overdraw the account.
func (r *accountRepository) AdjustBalance(ctx context.Context, accountID uuid.UUID, delta decimal.Decimal) error {
	query := `
		UPDATE bank_accounts
		SET balance = balance + $2,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, accountID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust account balance: %w", err)
	}

	return expectOneRow(result)
}

// UpdateInterestRate stores the rate last applied to the account
func (r *accountRepository) UpdateInterestRate(ctx context.Context, accountID uuid.UUID, rate decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bank_accounts SET interest_rate = $2, updated_at = NOW() WHERE id = $1`,
		accountID, rate,
	)
	if err != nil {
		return fmt.Errorf("failed to update interest rate: %w", err)
	}

	return expectOneRow(result)
}

// UpdateVerification persists the KYC and activation fields of an account
func (r *accountRepository) UpdateVerification(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE bank_accounts
		SET kyc_submitted = $2,
		    kyc_verified = $3,
		    verified_by = $4,
		    verification_date = $5,
		    verification_notes = $6,
		    fully_activated = $7,
		    status = $8,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.KYCSubmitted,
		account.KYCVerified,
		account.VerifiedBy,
		account.VerificationDate,
		account.VerificationNotes,
		account.FullyActivated,
		account.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to update verification: %w", err)
	}

	return expectOneRow(result)
}

// ClearPrimary unsets the primary flag on every account of the user except exceptID
func (r *accountRepository) ClearPrimary(ctx context.Context, userID, exceptID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE bank_accounts SET is_primary = FALSE, updated_at = NOW()
		 WHERE user_id = $1 AND id <> $2 AND is_primary`,
		userID, exceptID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear primary accounts: %w", err)
	}
	return nil
}

// MarkPrimary sets the primary flag on one account
func (r *accountRepository) MarkPrimary(ctx context.Context, accountID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bank_accounts SET is_primary = TRUE, updated_at = NOW() WHERE id = $1`,
		accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark primary account: %w", err)
	}

	return expectOneRow(result)
}

func expectOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
