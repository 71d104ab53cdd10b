package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/medira-his/medira/internal/shared"
)

// Authenticator resolves bearer tokens into request principals. A missing,
// expired or revoked token leaves the context without a principal; the gates
// downstream fail closed with 401. Authentication itself never denies.
type Authenticator struct {
	logger *slog.Logger
	tokens *TokenStore
	repo   Repository
}

// NewAuthenticator constructs the authentication middleware.
func NewAuthenticator(logger *slog.Logger, tokens *TokenStore, repo Repository) *Authenticator {
	return &Authenticator{logger: logger, tokens: tokens, repo: repo}
}

// Middleware attaches the principal to the request context when a valid
// bearer token is presented.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := a.tokens.Claims(r.Context(), token)
		if err != nil {
			if !errors.Is(err, shared.ErrTokenRevoked) && a.logger != nil {
				a.logger.Error("resolve token", slog.Any("error", err))
			}
			next.ServeHTTP(w, r)
			return
		}

		user, err := a.repo.FindByID(r.Context(), claims.PrincipalID)
		if err != nil || !user.IsActive {
			if err != nil && !errors.Is(err, shared.ErrNotFound) && a.logger != nil {
				a.logger.Error("load principal", slog.Any("error", err))
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := shared.ContextWithPrincipal(r.Context(), Principal(user, claims.Abilities))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
