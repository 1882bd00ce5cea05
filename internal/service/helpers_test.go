package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/models"
	"github.com/retailbank/ledger/internal/notify"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// dec builds a decimal from a literal
func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// decEq matches a decimal argument by value rather than representation
func decEq(s string) any {
	want := dec(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

func assertServiceErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var svcErr *ServiceError
	if assert.ErrorAs(t, err, &svcErr) {
		assert.Equal(t, code, svcErr.Code)
	}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (n *recordingNotifier) Notify(_ context.Context, event notify.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) types() []notify.EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.EventType, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

func (n *recordingNotifier) last() notify.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.events[len(n.events)-1]
}

type stubGenerator struct {
	accountNumbers []string
	cardNumbers    []string
	err            error
}

func (g *stubGenerator) AccountNumber(models.Currency) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	if len(g.accountNumbers) == 0 {
		return "", errors.New("no account numbers left")
	}
	n := g.accountNumbers[0]
	g.accountNumbers = g.accountNumbers[1:]
	return n, nil
}

func (g *stubGenerator) CardNumber() (string, error) {
	if g.err != nil {
		return "", g.err
	}
	if len(g.cardNumbers) == 0 {
		return "", errors.New("no card numbers left")
	}
	n := g.cardNumbers[0]
	g.cardNumbers = g.cardNumbers[1:]
	return n, nil
}

func (g *stubGenerator) CVV(string, time.Time) string {
	return "123"
}

func verifiedAccount(userID uuid.UUID, number string, balance string, currency models.Currency) *models.Account {
	return &models.Account{
		ID:             uuid.New(),
		UserID:         userID,
		AccountNumber:  number,
		Balance:        dec(balance),
		Currency:       currency,
		AccountType:    models.AccountTypeCurrent,
		Status:         models.AccountStatusActive,
		KYCSubmitted:   true,
		KYCVerified:    true,
		FullyActivated: true,
	}
}
