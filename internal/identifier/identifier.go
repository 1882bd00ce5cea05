// Package identifier generates checksummed account and card numbers and derives card CVVs.
package identifier

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/retailbank/ledger/internal/config"
	"github.com/retailbank/ledger/internal/models"
)

const (
	// AccountNumberLength is the length of an account number including its check digit
	AccountNumberLength = 16
	// CardNumberLength is the length of a card number including its check digit
	CardNumberLength = 16
	// ExpiryFormat is the MMYY layout mixed into the CVV digest
	ExpiryFormat = "0106"
)

// ConfigError reports identifier settings that cannot produce a valid number
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("identifier config %s: %s", e.Field, e.Reason)
}

// Generator builds account and card identifiers from the bank's configured codes
type Generator struct {
	random io.Reader
	cfg    config.IdentifierConfig
}

// NewGenerator creates a Generator backed by crypto/rand
func NewGenerator(cfg *config.IdentifierConfig) *Generator {
	return &Generator{cfg: *cfg, random: rand.Reader}
}

func (g *Generator) currencyCode(currency models.Currency) string {
	switch currency {
	case models.CurrencyUSD:
		return g.cfg.CurrencyCodeUSD
	case models.CurrencyGBP:
		return g.cfg.CurrencyCodeGBP
	case models.CurrencyKES:
		return g.cfg.CurrencyCodeKES
	}
	return ""
}

// AccountNumber returns bank code, branch code and currency code followed by
// random digits and a Luhn check digit. Uniqueness is the caller's concern.
func (g *Generator) AccountNumber(currency models.Currency) (string, error) {
	code := g.currencyCode(currency)
	if code == "" {
		return "", &ConfigError{Field: "currency", Reason: fmt.Sprintf("no code mapped for %q", currency)}
	}

	prefix := g.cfg.BankCode + g.cfg.BranchCode + code
	return g.build(prefix, AccountNumberLength, "account prefix")
}

// CardNumber returns a card number built from the configured prefix and card code
func (g *Generator) CardNumber() (string, error) {
	return g.build(g.cfg.CardPrefix+g.cfg.CardCode, CardNumberLength, "card prefix")
}

// CVV derives the card verification value for a card and its expiry
func (g *Generator) CVV(cardNumber string, expiry time.Time) string {
	return ComputeCVV(cardNumber, expiry.Format(ExpiryFormat), g.cfg.CVVSecretKey)
}

func (g *Generator) build(prefix string, length int, field string) (string, error) {
	if !isDigits(prefix) {
		return "", &ConfigError{Field: field, Reason: "must contain only digits"}
	}
	if len(prefix) >= length {
		return "", &ConfigError{
			Field:  field,
			Reason: fmt.Sprintf("length %d leaves no room in a %d digit number", len(prefix), length),
		}
	}

	var sb strings.Builder
	sb.WriteString(prefix)

	ten := big.NewInt(10)
	for sb.Len() < length-1 {
		n, err := rand.Int(g.random, ten)
		if err != nil {
			return "", fmt.Errorf("failed to read random digit: %w", err)
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}

	partial := sb.String()
	sb.WriteByte(byte('0' + LuhnCheckDigit(partial)))

	return sb.String(), nil
}

// LuhnCheckDigit returns the digit that makes partial+digit pass the Luhn check.
// The rightmost digit of partial is doubled since it lands in an even position
// once the check digit is appended.
func LuhnCheckDigit(partial string) int {
	sum := 0
	double := true

	for i := len(partial) - 1; i >= 0; i-- {
		digit := int(partial[i] - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}

	return (10 - sum%10) % 10
}

// ValidateLuhn validates a full number, check digit included, using the Luhn algorithm
func ValidateLuhn(number string) error {
	if len(number) < 2 || !isDigits(number) {
		return fmt.Errorf("invalid number: must be at least 2 digits")
	}

	sum := 0
	isSecond := false

	for i := len(number) - 1; i >= 0; i-- {
		digit := int(number[i] - '0')

		if isSecond {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}

		sum += digit
		isSecond = !isSecond
	}

	if sum%10 != 0 {
		return fmt.Errorf("invalid number: failed Luhn check")
	}

	return nil
}

// ComputeCVV is HMAC-SHA256(secret, cardNumber||expiryMMYY) read as a decimal
// integer, keeping its first three digits.
func ComputeCVV(cardNumber, expiryMMYY, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(cardNumber + expiryMMYY))
	digest := hex.EncodeToString(mac.Sum(nil))

	n, _ := new(big.Int).SetString(digest, 16)
	digits := n.String()
	if len(digits) > 3 {
		digits = digits[:3]
	}

	return strings.Repeat("0", 3-len(digits)) + digits
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
