package rbac

import (
	"log/slog"
	"net/http"

	"github.com/medira-his/medira/internal/platform/httpx"
	"github.com/medira-his/medira/internal/shared"
)

// AuditRecorder receives security denial events from the gates. Satisfied by
// *shared.AuditLogger.
type AuditRecorder interface {
	RecordAsync(log shared.AuditLog)
}

// Middleware wires the request gates for HTTP handlers. The capability gate
// decides once per request, synchronously, before any business logic runs;
// a denial is terminal.
type Middleware struct {
	Logger *slog.Logger
	Audit  AuditRecorder
}

// RequireAbility allows the request through when the principal's issued
// token carries the given ability. No principal means 401; so does a token
// without the ability. The request body and target branch are not inspected
// here.
func (m Middleware) RequireAbility(ability string) func(http.Handler) http.Handler {
	return m.requireAbility(ability, false)
}

// RequirePharmacist is the one gate with a role-code fallback: pharmacists
// whose token predates the ability rollout are still admitted when their
// role code matches.
func (m Middleware) RequirePharmacist() func(http.Handler) http.Handler {
	return m.requireAbility(AbilityPharmacist, true)
}

func (m Middleware) requireAbility(ability string, pharmacistFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := shared.PrincipalFromContext(r.Context())
			if p == nil {
				httpx.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if p.HasAbility(ability) {
				next.ServeHTTP(w, r)
				return
			}
			if pharmacistFallback && p.RoleCode == RolePharmacist {
				next.ServeHTTP(w, r)
				return
			}
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		})
	}
}

// RequireAnyAbility admits the request when the token carries at least one
// of the listed abilities.
func (m Middleware) RequireAnyAbility(abilities ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := shared.PrincipalFromContext(r.Context())
			if p == nil {
				httpx.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			for _, a := range abilities {
				if p.HasAbility(a) {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		})
	}
}
