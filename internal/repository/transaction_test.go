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

func TestTransactionRepository_Create(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)
	truncateTables(t, database)

	user := seedUser(t, database, "ivan")
	account := seedAccount(t, database, user.ID, "0101001100000011", models.CurrencyUSD, models.AccountTypeCurrent, "0")

	repo := NewTransactionRepository(database)

	tests := []struct {
		tx      *models.Transaction
		name    string
		wantErr bool
	}{
		{
			name: "deposit with receiver side only",
			tx: &models.Transaction{
				Amount:            decimal.RequireFromString("25.00"),
				Type:              models.TransactionTypeDeposit,
				Status:            models.TransactionStatusCompleted,
				ReceiverID:        &user.ID,
				ReceiverAccountID: &account.ID,
				Description:       "Cash deposit",
			},
		},
		{
			name: "transaction with pre-set ID",
			tx: &models.Transaction{
				ID:              uuid.New(),
				Amount:          decimal.RequireFromString("5.00"),
				Type:            models.TransactionTypeWithdrawal,
				Status:          models.TransactionStatusCompleted,
				SenderID:        &user.ID,
				SenderAccountID: &account.ID,
			},
		},
		{
			name: "zero amount rejected by constraint",
			tx: &models.Transaction{
				Amount: decimal.Zero,
				Type:   models.TransactionTypeDeposit,
				Status: models.TransactionStatusCompleted,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			presetID := tt.tx.ID
			err := repo.Create(context.Background(), tt.tx)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			if presetID != uuid.Nil {
				assert.Equal(t, presetID, tt.tx.ID, "pre-set ID must be kept")
			}

			stored, err := repo.FindByID(context.Background(), tt.tx.ID)
			require.NoError(t, err)
			assert.True(t, tt.tx.Amount.Equal(stored.Amount))
			assert.Equal(t, tt.tx.Type, stored.Type)
			assert.Equal(t, tt.tx.SenderAccountID, stored.SenderAccountID)
			assert.Equal(t, tt.tx.ReceiverAccountID, stored.ReceiverAccountID)
		})
	}
}

func TestTransactionRepository_FindByID_NotFound(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)

	repo := NewTransactionRepository(database)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTransactionRepository_ListForUser(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)
	truncateTables(t, database)

	alice := seedUser(t, database, "alice")
	bob := seedUser(t, database, "bob")
	aliceUSD := seedAccount(t, database, alice.ID, "0101001100000012", models.CurrencyUSD, models.AccountTypeCurrent, "0")
	aliceSavings := seedAccount(t, database, alice.ID, "0101001100000013", models.CurrencyUSD, models.AccountTypeSavings, "0")
	bobUSD := seedAccount(t, database, bob.ID, "0101001100000014", models.CurrencyUSD, models.AccountTypeCurrent, "0")

	repo := NewTransactionRepository(database)
	ctx := context.Background()
	base := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

	entries := []*models.Transaction{
		{
			Amount: decimal.NewFromInt(10), Type: models.TransactionTypeDeposit, Status: models.TransactionStatusCompleted,
			ReceiverID: &alice.ID, ReceiverAccountID: &aliceUSD.ID, CreatedAt: base,
		},
		{
			Amount: decimal.NewFromInt(20), Type: models.TransactionTypeTransfer, Status: models.TransactionStatusCompleted,
			SenderID: &alice.ID, SenderAccountID: &aliceUSD.ID, ReceiverID: &bob.ID, ReceiverAccountID: &bobUSD.ID,
			CreatedAt: base.Add(24 * time.Hour),
		},
		{
			Amount: decimal.NewFromInt(1), Type: models.TransactionTypeInterest, Status: models.TransactionStatusCompleted,
			ReceiverID: &alice.ID, ReceiverAccountID: &aliceSavings.ID, CreatedAt: base.Add(48 * time.Hour),
		},
		{
			Amount: decimal.NewFromInt(99), Type: models.TransactionTypeDeposit, Status: models.TransactionStatusCompleted,
			ReceiverID: &bob.ID, ReceiverAccountID: &bobUSD.ID, CreatedAt: base.Add(72 * time.Hour),
		},
	}
	for _, e := range entries {
		require.NoError(t, repo.Create(ctx, e))
	}

	t.Run("sender or receiver, newest first", func(t *testing.T) {
		q := TransactionQuery{UserID: alice.ID, Limit: 10}
		txs, err := repo.ListForUser(ctx, q)
		require.NoError(t, err)
		require.Len(t, txs, 3)
		assert.Equal(t, models.TransactionTypeInterest, txs[0].Type)
		assert.Equal(t, models.TransactionTypeDeposit, txs[2].Type)

		count, err := repo.CountForUser(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("date range", func(t *testing.T) {
		q := TransactionQuery{
			UserID: alice.ID,
			From:   timePtr(base.Add(24 * time.Hour)),
			Until:  timePtr(base.Add(48 * time.Hour)),
			Limit:  10,
		}
		txs, err := repo.ListForUser(ctx, q)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, models.TransactionTypeTransfer, txs[0].Type)
	})

	t.Run("account filter", func(t *testing.T) {
		q := TransactionQuery{UserID: alice.ID, AccountID: uuidPtr(aliceSavings.ID), Limit: 10}
		txs, err := repo.ListForUser(ctx, q)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, models.TransactionTypeInterest, txs[0].Type)
	})

	t.Run("pagination", func(t *testing.T) {
		txs, err := repo.ListForUser(ctx, TransactionQuery{UserID: alice.ID, Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, models.TransactionTypeDeposit, txs[0].Type)
	})
}

func TestTransactionRepository_ActivityQueries(t *testing.T) {
	database := setupTestDB(t)
	defer cleanupTestDB(t, database)
	truncateTables(t, database)

	alice := seedUser(t, database, "alice")
	bob := seedUser(t, database, "bob")
	aliceUSD := seedAccount(t, database, alice.ID, "0101001100000015", models.CurrencyUSD, models.AccountTypeCurrent, "0")
	bobUSD := seedAccount(t, database, bob.ID, "0101001100000016", models.CurrencyUSD, models.AccountTypeCurrent, "0")

	repo := NewTransactionRepository(database)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &models.Transaction{
		Amount: decimal.NewFromInt(15000), Type: models.TransactionTypeTransfer, Status: models.TransactionStatusCompleted,
		SenderID: &alice.ID, SenderAccountID: &aliceUSD.ID, ReceiverID: &bob.ID, ReceiverAccountID: &bobUSD.ID,
		CreatedAt: now.Add(-time.Hour),
	}))
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.Transaction{
			Amount: decimal.NewFromInt(5), Type: models.TransactionTypeDeposit, Status: models.TransactionStatusCompleted,
			ReceiverID: &alice.ID, ReceiverAccountID: &aliceUSD.ID, CreatedAt: now.Add(-time.Minute),
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.Transaction{
		Amount: decimal.NewFromInt(50000), Type: models.TransactionTypeDeposit, Status: models.TransactionStatusCompleted,
		ReceiverID: &bob.ID, ReceiverAccountID: &bobUSD.ID, CreatedAt: now.Add(-72 * time.Hour),
	}))

	since := now.Add(-24 * time.Hour)
	threshold := decimal.NewFromInt(10000)

	large, err := repo.ListLargeSince(ctx, since, threshold)
	require.NoError(t, err)
	require.Len(t, large, 1, "entries outside the window are ignored")
	assert.True(t, decimal.NewFromInt(15000).Equal(large[0].Amount))

	active, err := repo.CountByUserSince(ctx, since, 4)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, alice.ID, active[0].UserID)
	assert.Equal(t, 4, active[0].Count)

	changes, err := repo.NetChangeSince(ctx, since, threshold)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	byAccount := map[string]decimal.Decimal{}
	for _, c := range changes {
		byAccount[c.AccountNumber] = c.Net
	}
	assert.True(t, decimal.NewFromInt(15000).Equal(byAccount[bobUSD.AccountNumber]))
	assert.True(t, decimal.NewFromInt(-14985).Equal(byAccount[aliceUSD.AccountNumber]))
}
