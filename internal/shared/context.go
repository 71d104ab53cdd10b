package shared

import "context"

// Principal is the authenticated actor attached to a request.
type Principal struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	RoleCode  int      `json:"role_code"`
	RoleName  string   `json:"role_name"`
	BranchID  *int64   `json:"branch_id,omitempty"`
	Abilities []string `json:"abilities"`
}

// HasAbility reports whether the issued token carries the given ability.
func (p *Principal) HasAbility(ability string) bool {
	if p == nil {
		return false
	}
	for _, a := range p.Abilities {
		if a == ability {
			return true
		}
	}
	return false
}

type principalContextKey struct{}

type branchScopeContextKey struct{}

// ContextWithPrincipal stores the authenticated principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal, or nil when unauthenticated.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// ContextWithBranchScope records the branch id a request is allowed to touch.
// Set by the branch-isolation gate so handlers never re-derive it.
func ContextWithBranchScope(ctx context.Context, branchID int64) context.Context {
	return context.WithValue(ctx, branchScopeContextKey{}, branchID)
}

// BranchScopeFromContext returns the injected branch id. ok is false for
// super-role requests that did not name a branch.
func BranchScopeFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(branchScopeContextKey{}).(int64)
	return id, ok
}
