package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_FindByAccountNumber(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)
	truncateTables(t, database)

	user := seedUser(t, database, "alice")
	seedAccount(t, database, user.ID, "0101001100000001", models.CurrencyUSD, models.AccountTypeCurrent, "1000.00")

	repo := NewAccountRepository(database)

	tests := []struct {
		name          string
		accountNumber string
		wantBalance   string
		wantErr       bool
	}{
		{
			name:          "existing account",
			accountNumber: "0101001100000001",
			wantBalance:   "1000.00",
		},
		{
			name:          "non-existent account",
			accountNumber: "9999999999999999",
			wantErr:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := repo.FindByAccountNumber(context.Background(), tt.accountNumber)

			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrNotFound)
				assert.Nil(t, account, "expected nil account")
				return
			}

			require.NoError(t, err, "unexpected error")
			require.NotNil(t, account, "expected account")

			assert.Equal(t, tt.accountNumber, account.AccountNumber, "account number mismatch")
			assert.True(t, decimal.RequireFromString(tt.wantBalance).Equal(account.Balance), "balance mismatch")
			assert.Equal(t, user.ID, account.UserID)
			assert.NotEqual(t, uuid.Nil, account.ID, "account ID should not be nil")
		})
	}
}

func TestAccountRepository_Create_Duplicates(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)
	truncateTables(t, database)

	user := seedUser(t, database, "bob")
	other := seedUser(t, database, "carol")
	seedAccount(t, database, user.ID, "0101001100000002", models.CurrencyUSD, models.AccountTypeCurrent, "0")

	repo := NewAccountRepository(database)

	t.Run("same currency and type for same user", func(t *testing.T) {
		err := repo.Create(context.Background(), &models.Account{
			UserID:        user.ID,
			AccountNumber: "0101001100000003",
			Currency:      models.CurrencyUSD,
			AccountType:   models.AccountTypeCurrent,
			Status:        models.AccountStatusInactive,
		})
		assert.ErrorIs(t, err, models.ErrDuplicateAccount)
	})

	t.Run("account number already taken", func(t *testing.T) {
		err := repo.Create(context.Background(), &models.Account{
			UserID:        other.ID,
			AccountNumber: "0101001100000002",
			Currency:      models.CurrencyGBP,
			AccountType:   models.AccountTypeSavings,
			Status:        models.AccountStatusInactive,
		})
		assert.ErrorIs(t, err, models.ErrDuplicateNumber)
	})

	t.Run("different type is allowed", func(t *testing.T) {
		err := repo.Create(context.Background(), &models.Account{
			UserID:        user.ID,
			AccountNumber: "0101001100000004",
			Currency:      models.CurrencyUSD,
			AccountType:   models.AccountTypeSavings,
			Status:        models.AccountStatusInactive,
		})
		assert.NoError(t, err)
	})
}

func TestAccountRepository_AdjustBalance(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)
	truncateTables(t, database)

	user := seedUser(t, database, "dave")
	account := seedAccount(t, database, user.ID, "0101001100000005", models.CurrencyUSD, models.AccountTypeCurrent, "100.00")

	repo := NewAccountRepository(database)
	ctx := context.Background()

	require.NoError(t, repo.AdjustBalance(ctx, account.ID, decimal.RequireFromString("-40.50")))

	updated, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("59.50").Equal(updated.Balance))

	err = repo.AdjustBalance(ctx, account.ID, decimal.RequireFromString("-60.00"))
	assert.Error(t, err, "check constraint must reject a negative balance")

	err = repo.AdjustBalance(ctx, uuid.New(), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAccountRepository_PrimaryFlag(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)
	truncateTables(t, database)

	user := seedUser(t, database, "erin")
	first := seedAccount(t, database, user.ID, "0101001100000006", models.CurrencyUSD, models.AccountTypeCurrent, "0")
	second := seedAccount(t, database, user.ID, "0101001200000007", models.CurrencyGBP, models.AccountTypeCurrent, "0")

	repo := NewAccountRepository(database)
	ctx := context.Background()

	require.NoError(t, repo.MarkPrimary(ctx, first.ID))

	require.NoError(t, repo.ClearPrimary(ctx, user.ID, second.ID))
	require.NoError(t, repo.MarkPrimary(ctx, second.ID))

	accounts, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	assert.Equal(t, second.ID, accounts[0].ID, "primary account is listed first")
	assert.True(t, accounts[0].IsPrimary)
	assert.False(t, accounts[1].IsPrimary)
}

func TestAccountRepository_UpdateVerification(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)
	truncateTables(t, database)

	user := seedUser(t, database, "frank")
	staff := seedUser(t, database, "staff")
	account := seedAccount(t, database, user.ID, "0101001100000008", models.CurrencyUSD, models.AccountTypeCurrent, "0")

	repo := NewAccountRepository(database)
	ctx := context.Background()

	verifiedAt := time.Now().UTC().Truncate(time.Second)
	account.KYCSubmitted = true
	account.KYCVerified = true
	account.VerifiedBy = &staff.ID
	account.VerificationDate = &verifiedAt
	account.VerificationNotes = "passport checked"
	account.FullyActivated = true
	account.Status = models.AccountStatusActive

	require.NoError(t, repo.UpdateVerification(ctx, account))

	updated, err := repo.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsVerified())
	assert.Equal(t, models.AccountStatusActive, updated.Status)
	require.NotNil(t, updated.VerifiedBy)
	assert.Equal(t, staff.ID, *updated.VerifiedBy)
	require.NotNil(t, updated.VerificationDate)
	assert.True(t, verifiedAt.Equal(*updated.VerificationDate))
	assert.Equal(t, "passport checked", updated.VerificationNotes)
}

func TestAccountRepository_FindWithOwner(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)
	truncateTables(t, database)

	user := seedUser(t, database, "grace")
	seedAccount(t, database, user.ID, "0101001300000009", models.CurrencyKES, models.AccountTypeSavings, "10.00")

	repo := NewAccountRepository(database)

	owner, err := repo.FindWithOwner(context.Background(), "0101001300000009")
	require.NoError(t, err)
	assert.Equal(t, "grace", owner.Username)
	assert.Equal(t, "grace@example.com", owner.Email)
	assert.Equal(t, models.CurrencyKES, owner.Currency)

	ids, err := repo.ListSavingsIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{owner.ID}, ids)
}

func TestAccountRepository_ConcurrentAdjustments(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)
	truncateTables(t, database)

	user := seedUser(t, database, "henry")
	account := seedAccount(t, database, user.ID, "0101001100000010", models.CurrencyUSD, models.AccountTypeCurrent, "0")

	repo := NewAccountRepository(database)
	amount := decimal.RequireFromString("12.34")
	const workers = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.AdjustBalance(context.Background(), account.ID, amount))
		}()
	}
	wg.Wait()

	updated, err := repo.FindByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.True(t, amount.Mul(decimal.NewFromInt(workers)).Equal(updated.Balance), "no update may be lost")
}
