package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/syncus/internal/domain/party"
)

type contextKey int

const roleKey contextKey = iota

// getRole extracts the caller's party role from context.
func getRole(ctx context.Context) party.Role {
	v, _ := ctx.Value(roleKey).(party.Role)
	return v
}

// RoleResolver resolves a party role from a bearer token.
type RoleResolver interface {
	ResolveRole(ctx context.Context, token string) (party.Role, error)
}

// authMiddleware implements bearer token authentication as MCP middleware.
func authMiddleware(resolver RoleResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Skip auth for protocol methods
			if method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("unauthorized: missing headers")
			}

			auth := extra.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				return nil, fmt.Errorf("unauthorized: missing bearer token")
			}

			role, err := resolver.ResolveRole(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("unauthorized: %w", err)
			}

			ctx = context.WithValue(ctx, roleKey, role)
			return next(ctx, method, req)
		}
	}
}

// noAuthMiddleware serves every request as the configured role.
func noAuthMiddleware(role party.Role) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			ctx = context.WithValue(ctx, roleKey, role)
			return next(ctx, method, req)
		}
	}
}
