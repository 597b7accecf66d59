package transport

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/rpggio/syncus/internal/domain/party"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type roleKey struct{}

// RoleResolver resolves a party role from a bearer token.
type RoleResolver interface {
	ResolveRole(ctx context.Context, token string) (party.Role, error)
}

// RoleFromContext returns the party role from context, if present.
func RoleFromContext(ctx context.Context) (party.Role, bool) {
	role, ok := ctx.Value(roleKey{}).(party.Role)
	return role, ok
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(resolver RoleResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			role, err := resolver.ResolveRole(r.Context(), token)
			if err != nil || role == "" {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), roleKey{}, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HashToken returns the hex sha256 of a bearer token, as stored in config.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// KeyResolver maps hashed bearer tokens to party roles.
type KeyResolver struct {
	keys map[string]party.Role
}

// NewKeyResolver creates a resolver from token hashes.
func NewKeyResolver(hashes map[string]party.Role) *KeyResolver {
	keys := make(map[string]party.Role, len(hashes))
	for h, role := range hashes {
		keys[strings.ToLower(strings.TrimSpace(h))] = role
	}
	return &KeyResolver{keys: keys}
}

// ResolveRole implements RoleResolver.
func (r *KeyResolver) ResolveRole(_ context.Context, token string) (party.Role, error) {
	role, ok := r.keys[HashToken(token)]
	if !ok {
		return "", ErrUnauthorized
	}
	return role, nil
}
