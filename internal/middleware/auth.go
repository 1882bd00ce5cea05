package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/retailbank/ledger/internal/models"
)

// publicPaths are served without a bearer token
var publicPaths = []string{
	"/health",
	"/docs",
}

// Claims are the bearer token claims issued by the identity service.
// Subject carries the user id.
type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller of a request
type Identity struct {
	Role   models.Role
	UserID uuid.UUID
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying the caller
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFrom returns the caller stored by Authenticate
func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	//nolint:errcheck // Best effort response writing
	json.NewEncoder(w).Encode(errorResponse{Error: code, Message: message})
}

// Authenticate verifies HS256 bearer tokens and stores the caller in the request context
func Authenticate(secret []byte, issuer string, logger *slog.Logger) func(http.Handler) http.Handler {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			identity, err := parseIdentity(parser, secret, raw)
			if err != nil {
				logger.Debug("rejected bearer token", "error", err, "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid bearer token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

func parseIdentity(parser *jwt.Parser, secret []byte, raw string) (Identity, error) {
	claims := &Claims{}
	if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}); err != nil {
		return Identity{}, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, errors.New("subject is not a user id")
	}

	role := claims.Role
	if role == "" {
		role = models.RoleCustomer
	}

	return Identity{UserID: userID, Role: role}, nil
}

// RequireRole rejects callers whose role is not one of roles
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFrom(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing caller identity")
				return
			}
			if !slices.Contains(roles, identity.Role) {
				writeError(w, http.StatusForbidden, "forbidden", "role is not permitted to perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isPublicPath(path string) bool {
	if path == "/" {
		return true
	}
	for _, public := range publicPaths {
		if strings.HasPrefix(path, public) {
			return true
		}
	}
	return false
}
