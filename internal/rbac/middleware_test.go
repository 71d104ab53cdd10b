package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/medira-his/medira/internal/shared"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestWithPrincipal(p *shared.Principal) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/staff", nil)
	if p != nil {
		req = req.WithContext(shared.ContextWithPrincipal(req.Context(), p))
	}
	return req
}

func TestRequireAbilityUnauthenticated(t *testing.T) {
	m := Middleware{}
	gate := m.RequireAbility(AbilityAdmin)(okHandler())

	res := httptest.NewRecorder()
	gate.ServeHTTP(res, requestWithPrincipal(nil))
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}

func TestRequireAbilityAllowsAndDenies(t *testing.T) {
	m := Middleware{}
	gate := m.RequireAbility(AbilityCashier)(okHandler())

	cashier := &shared.Principal{ID: 9, RoleCode: RoleCashier, Abilities: []string{AbilityCashier}}
	res := httptest.NewRecorder()
	gate.ServeHTTP(res, requestWithPrincipal(cashier))
	if res.Code != http.StatusOK {
		t.Fatalf("cashier expected 200, got %d", res.Code)
	}

	doctor := &shared.Principal{ID: 10, RoleCode: RoleDoctor, Abilities: []string{AbilityDoctor}}
	res = httptest.NewRecorder()
	gate.ServeHTTP(res, requestWithPrincipal(doctor))
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("doctor expected 401, got %d", res.Code)
	}
}

// A pharmacist whose token predates the ability rollout passes the
// pharmacist gate on role code alone, and no other gate.
func TestPharmacistRoleCodeFallback(t *testing.T) {
	m := Middleware{}
	pharmacist := &shared.Principal{ID: 3, RoleCode: RolePharmacist, Abilities: nil}

	res := httptest.NewRecorder()
	m.RequirePharmacist()(okHandler()).ServeHTTP(res, requestWithPrincipal(pharmacist))
	if res.Code != http.StatusOK {
		t.Fatalf("pharmacist gate expected 200, got %d", res.Code)
	}

	for _, ability := range []string{AbilityAdmin, AbilityDoctor, AbilityCashier, AbilitySuperAdmin} {
		res := httptest.NewRecorder()
		m.RequireAbility(ability)(okHandler()).ServeHTTP(res, requestWithPrincipal(pharmacist))
		if res.Code != http.StatusUnauthorized {
			t.Fatalf("gate %s expected 401, got %d", ability, res.Code)
		}
	}
}

func TestRequireAnyAbility(t *testing.T) {
	m := Middleware{}
	gate := m.RequireAnyAbility(AbilityAdmin, AbilitySuperAdmin)(okHandler())

	admin := &shared.Principal{ID: 1, RoleCode: RoleBranchAdmin, Abilities: []string{AbilityAdmin}}
	res := httptest.NewRecorder()
	gate.ServeHTTP(res, requestWithPrincipal(admin))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	patient := &shared.Principal{ID: 2, RoleCode: RolePatient, Abilities: []string{AbilityPatient}}
	res = httptest.NewRecorder()
	gate.ServeHTTP(res, requestWithPrincipal(patient))
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
}
