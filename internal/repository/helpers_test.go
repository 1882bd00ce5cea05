package repository

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/config"
	"github.com/retailbank/ledger/internal/db"
	"github.com/retailbank/ledger/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	t.Setenv("JWT_SECRET", "repository-test-secret")
	t.Setenv("CVV_SECRET_KEY", "repository-test-cvv")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	logger := cfg.Logger.NewLogger("repository-test")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	database, err := db.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		t.Skipf("skipping: test database unavailable: %v", err)
	}

	if err := database.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return database
}

func cleanupTestDB(t *testing.T, database *db.DB) {
	t.Helper()
	if err := database.Close(); err != nil {
		log.Printf("failed to close test database: %v", err)
	}
}

func truncateTables(t *testing.T, database *db.DB) {
	t.Helper()

	_, err := database.ExecContext(context.Background(), `
		TRUNCATE TABLE idempotency_keys, virtual_cards, transactions, bank_accounts, users CASCADE
	`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

func seedUser(t *testing.T, database DBTX, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		FullName: "Test " + username,
	}
	require.NoError(t, NewUserRepository(database).Create(context.Background(), user))
	return user
}

func seedAccount(
	t *testing.T,
	database DBTX,
	userID uuid.UUID,
	number string,
	currency models.Currency,
	accountType models.AccountType,
	balance string,
) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:        userID,
		AccountNumber: number,
		Balance:       decimal.RequireFromString(balance),
		Currency:      currency,
		AccountType:   accountType,
		Status:        models.AccountStatusInactive,
	}
	require.NoError(t, NewAccountRepository(database).Create(context.Background(), account))
	return account
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func uuidPtr(id uuid.UUID) *uuid.UUID {
	return &id
}
