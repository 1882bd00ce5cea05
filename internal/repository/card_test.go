package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardRepository_Lifecycle(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)
	truncateTables(t, database)

	owner := seedUser(t, database, "owner")
	stranger := seedUser(t, database, "stranger")
	account := seedAccount(t, database, owner.ID, "0101001100000017", models.CurrencyUSD, models.AccountTypeCurrent, "0")

	repo := NewCardRepository(database)
	ctx := context.Background()

	card := &models.VirtualCard{
		UserID:        owner.ID,
		BankAccountID: account.ID,
		CardNumber:    "4101000000000001",
		ExpiryDate:    time.Now().AddDate(3, 0, 0).UTC().Truncate(time.Second),
		Balance:       decimal.Zero,
		Status:        models.CardStatusActive,
	}
	require.NoError(t, repo.Create(ctx, card))
	assert.NotEqual(t, uuid.Nil, card.ID)

	t.Run("duplicate card number", func(t *testing.T) {
		dup := *card
		dup.ID = uuid.Nil
		assert.ErrorIs(t, repo.Create(ctx, &dup), models.ErrDuplicateNumber)
	})

	t.Run("scoped to owner", func(t *testing.T) {
		_, err := repo.FindByID(ctx, card.ID, stranger.ID)
		assert.ErrorIs(t, err, models.ErrNotFound)

		found, err := repo.FindByID(ctx, card.ID, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, card.CardNumber, found.CardNumber)
		assert.True(t, card.ExpiryDate.Equal(found.ExpiryDate))
	})

	t.Run("count and list", func(t *testing.T) {
		count, err := repo.CountByUser(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		exists, err := repo.ExistsByCardNumber(ctx, card.CardNumber)
		require.NoError(t, err)
		assert.True(t, exists)

		cards, err := repo.ListByUser(ctx, stranger.ID)
		require.NoError(t, err)
		assert.Empty(t, cards)
	})

	t.Run("adjust balance then delete", func(t *testing.T) {
		require.NoError(t, repo.AdjustBalance(ctx, card.ID, decimal.RequireFromString("7.25")))

		locked, err := repo.FindByIDForUpdate(ctx, card.ID, owner.ID)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("7.25").Equal(locked.Balance))

		require.NoError(t, repo.Delete(ctx, card.ID))
		assert.ErrorIs(t, repo.Delete(ctx, card.ID), models.ErrNotFound)
	})
}

func TestUserRepository_LockByID(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)
	truncateTables(t, database)

	user := seedUser(t, database, "locker")
	repo := NewUserRepository(database)
	ctx := context.Background()

	tx, err := database.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // test cleanup
	}()

	assert.NoError(t, NewUserRepository(tx).LockByID(ctx, user.ID))
	assert.ErrorIs(t, NewUserRepository(tx).LockByID(ctx, uuid.New()), models.ErrNotFound)

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCustomer, found.Role)
}
