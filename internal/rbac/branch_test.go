package rbac

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/medira-his/medira/internal/shared"
)

type stubBranches struct {
	existing map[int64]bool
	calls    int
}

func (s *stubBranches) ExistsByID(ctx context.Context, id int64) (bool, error) {
	s.calls++
	return s.existing[id], nil
}

func newBranchRouter(m Middleware, branches BranchChecker, captured *int64) http.Handler {
	r := chi.NewRouter()
	r.Route("/branches/{branchID}", func(r chi.Router) {
		r.Use(m.RequireBranchScope(branches, DefaultBranchSource))
		r.Get("/patients", func(w http.ResponseWriter, req *http.Request) {
			if captured != nil {
				if id, ok := shared.BranchScopeFromContext(req.Context()); ok {
					*captured = id
				}
			}
			w.WriteHeader(http.StatusOK)
		})
	})
	r.Route("/appointments", func(r chi.Router) {
		r.Use(m.RequireBranchScope(branches, BranchSource{QueryParam: "branch_id", BodyField: "branch_id"}))
		r.Get("/", func(w http.ResponseWriter, req *http.Request) { w.WriteHeader(http.StatusOK) })
		r.Post("/", func(w http.ResponseWriter, req *http.Request) { w.WriteHeader(http.StatusCreated) })
	})
	return r
}

func branchID(id int64) *int64 { return &id }

func serve(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)
	return res
}

func decodeEnvelope(t *testing.T, res *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestCrossBranchDenied(t *testing.T) {
	branches := &stubBranches{existing: map[int64]bool{5: true, 7: true}}
	router := newBranchRouter(Middleware{}, branches, nil)

	cashier := &shared.Principal{ID: 42, RoleCode: RoleCashier, BranchID: branchID(5), Abilities: []string{AbilityCashier}}
	req := httptest.NewRequest(http.MethodGet, "/branches/7/patients", nil)
	req = req.WithContext(shared.ContextWithPrincipal(req.Context(), cashier))

	res := serve(t, router, req)
	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}
	body := decodeEnvelope(t, res)
	if body["status"] != float64(http.StatusForbidden) {
		t.Fatalf("status not mirrored in body: %v", body)
	}
}

type recordingAudit struct {
	mu      sync.Mutex
	records []shared.AuditLog
}

func (a *recordingAudit) RecordAsync(log shared.AuditLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, log)
}

func (a *recordingAudit) all() []shared.AuditLog {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]shared.AuditLog(nil), a.records...)
}

func TestCrossBranchDenialAudited(t *testing.T) {
	branches := &stubBranches{existing: map[int64]bool{5: true, 7: true}}
	audit := &recordingAudit{}
	router := newBranchRouter(Middleware{Audit: audit}, branches, nil)

	cashier := &shared.Principal{ID: 42, RoleCode: RoleCashier, BranchID: branchID(5), Abilities: []string{AbilityCashier}}
	req := httptest.NewRequest(http.MethodGet, "/branches/7/patients", nil)
	req = req.WithContext(shared.ContextWithPrincipal(req.Context(), cashier))

	if res := serve(t, router, req); res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}

	records := audit.all()
	if len(records) != 1 {
		t.Fatalf("expected one audit record, got %d", len(records))
	}
	rec := records[0]
	if rec.Action != "branch.denied" || rec.Entity != "branch" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.ActorID != 42 {
		t.Fatalf("actor id = %d", rec.ActorID)
	}
	if rec.EntityID != "7" {
		t.Fatalf("entity id = %q", rec.EntityID)
	}
	if rec.Meta["own_branch"] != int64(5) || rec.Meta["requested_branch"] != int64(7) {
		t.Fatalf("branch ids not recorded: %v", rec.Meta)
	}
	if rec.Meta["path"] != "/branches/7/patients" {
		t.Fatalf("path not recorded: %v", rec.Meta)
	}
	if remote, _ := rec.Meta["remote"].(string); remote == "" {
		t.Fatalf("remote address not recorded: %v", rec.Meta)
	}
}

// An allowed same-branch request must not generate a denial record.
func TestOwnBranchAccessNotAudited(t *testing.T) {
	branches := &stubBranches{existing: map[int64]bool{5: true}}
	audit := &recordingAudit{}
	router := newBranchRouter(Middleware{Audit: audit}, branches, nil)

	nurse := &shared.Principal{ID: 4, RoleCode: RoleNurse, BranchID: branchID(5), Abilities: []string{AbilityNurse}}
	req := httptest.NewRequest(http.MethodGet, "/branches/5/patients", nil)
	req = req.WithContext(shared.ContextWithPrincipal(req.Context(), nurse))

	if res := serve(t, router, req); res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if got := audit.all(); len(got) != 0 {
		t.Fatalf("expected no audit records, got %d", len(got))
	}
}

func TestCrossBranchDenialIdempotent(t *testing.T) {
	branches := &stubBranches{existing: map[int64]bool{5: true, 7: true}}
	router := newBranchRouter(Middleware{}, branches, nil)
	cashier := &shared.Principal{ID: 42, RoleCode: RoleCashier, BranchID: branchID(5), Abilities: []string{AbilityCashier}}

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/branches/7/patients", nil)
		req = req.WithContext(shared.ContextWithPrincipal(req.Context(), cashier))
		if res := serve(t, router, req); res.Code != http.StatusForbidden {
			t.Fatalf("attempt %d: expected 403, got %d", i, res.Code)
		}
	}
}

func TestSuperRoleNonexistentBranch(t *testing.T) {
	branches := &stubBranches{existing: map[int64]bool{1: true}}
	router := newBranchRouter(Middleware{}, branches, nil)

	super := &shared.Principal{ID: 1, RoleCode: RoleSuperAdmin, Abilities: Abilities(RoleSuperAdmin)}
	req := httptest.NewRequest(http.MethodGet, "/branches/99/patients", nil)
	req = req.WithContext(shared.ContextWithPrincipal(req.Context(), super))

	if res := serve(t, router, req); res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestSuperRoleWithoutBranchAllowed(t *testing.T) {
	branches := &stubBranches{}
	router := newBranchRouter(Middleware{}, branches, nil)

	super := &shared.Principal{ID: 1, RoleCode: RoleSuperAdmin, Abilities: Abilities(RoleSuperAdmin)}
	req := httptest.NewRequest(http.MethodGet, "/appointments/", nil)
	req = req.WithContext(shared.ContextWithPrincipal(req.Context(), super))

	if res := serve(t, router, req); res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if branches.calls != 0 {
		t.Fatalf("no branch named, expected no existence lookups, got %d", branches.calls)
	}
}

func TestNoBranchAssignedDenied(t *testing.T) {
	branches := &stubBranches{}
	router := newBranchRouter(Middleware{}, branches, nil)

	// Branch-restricted role with no owning branch: denied even without an
	// explicit branch parameter.
	doctor := &shared.Principal{ID: 8, RoleCode: RoleDoctor, Abilities: []string{AbilityDoctor}}
	req := httptest.NewRequest(http.MethodGet, "/appointments/", nil)
	req = req.WithContext(shared.ContextWithPrincipal(req.Context(), doctor))

	if res := serve(t, router, req); res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}
}

func TestUnauthenticatedNoBranchResolution(t *testing.T) {
	branches := &stubBranches{existing: map[int64]bool{7: true}}
	router := newBranchRouter(Middleware{}, branches, nil)

	req := httptest.NewRequest(http.MethodGet, "/branches/7/patients", nil)
	res := serve(t, router, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if branches.calls != 0 {
		t.Fatalf("expected no branch lookups for anonymous caller, got %d", branches.calls)
	}
}

func TestOwnBranchInjectedIntoContext(t *testing.T) {
	branches := &stubBranches{existing: map[int64]bool{5: true}}
	var got int64
	router := newBranchRouter(Middleware{}, branches, &got)

	nurse := &shared.Principal{ID: 4, RoleCode: RoleNurse, BranchID: branchID(5), Abilities: []string{AbilityNurse}}
	req := httptest.NewRequest(http.MethodGet, "/branches/5/patients", nil)
	req = req.WithContext(shared.ContextWithPrincipal(req.Context(), nurse))

	if res := serve(t, router, req); res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if got != 5 {
		t.Fatalf("expected branch 5 injected, got %d", got)
	}
}

func TestBranchFromBody(t *testing.T) {
	branches := &stubBranches{existing: map[int64]bool{5: true, 6: true}}
	router := newBranchRouter(Middleware{}, branches, nil)

	cashier := &shared.Principal{ID: 42, RoleCode: RoleCashier, BranchID: branchID(5), Abilities: []string{AbilityCashier}}
	req := httptest.NewRequest(http.MethodPost, "/appointments/", strings.NewReader(`{"branch_id":6,"doctor_id":2}`))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(shared.ContextWithPrincipal(req.Context(), cashier))

	if res := serve(t, router, req); res.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for body branch mismatch, got %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/appointments/", strings.NewReader(`{"branch_id":5,"doctor_id":2}`))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(shared.ContextWithPrincipal(req.Context(), cashier))
	if res := serve(t, router, req); res.Code != http.StatusCreated {
		t.Fatalf("expected 201 for own branch, got %d", res.Code)
	}
}
