package branches_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/medira-his/medira/internal/masterdata/branches"
	"github.com/medira-his/medira/internal/platform/httpx"
	"github.com/medira-his/medira/internal/rbac"
	"github.com/medira-his/medira/internal/shared"
)

type stubRepo struct {
	createErr error
	updateErr error
}

func (s *stubRepo) List(ctx context.Context, f branches.ListFilters) ([]branches.Branch, int, error) {
	return nil, 0, nil
}

func (s *stubRepo) Get(ctx context.Context, id int64) (branches.Branch, error) {
	return branches.Branch{}, shared.ErrNotFound
}

func (s *stubRepo) ExistsByID(ctx context.Context, id int64) (bool, error) { return true, nil }

func (s *stubRepo) Create(ctx context.Context, b branches.Branch) (branches.Branch, error) {
	if s.createErr != nil {
		return branches.Branch{}, s.createErr
	}
	b.ID = 1
	return b, nil
}

func (s *stubRepo) Update(ctx context.Context, id int64, b branches.Branch) error {
	return s.updateErr
}

func (s *stubRepo) Delete(ctx context.Context, id int64) error { return nil }

func asSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := &shared.Principal{ID: 1, RoleCode: rbac.RoleSuperAdmin, Abilities: rbac.Abilities(rbac.RoleSuperAdmin)}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), p)))
	})
}

func newBranchRouter(t *testing.T, repo branches.Repository) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := branches.NewHandler(logger, branches.NewService(repo), rbac.Middleware{})
	r := chi.NewRouter()
	r.Use(asSuperAdmin)
	r.Route("/branches", handler.MountRoutes)
	return r
}

func postJSON(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func envelope(t *testing.T, res *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(res.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

// A storage failure must come back as a bare 500 envelope. The driver error
// carries host and port detail that must never reach the client.
func TestCreateStorageFailureNotLeaked(t *testing.T) {
	repo := &stubRepo{createErr: errors.New(`connect to database "medira" at 10.0.0.5:5432: connection refused`)}
	router := newBranchRouter(t, repo)

	res := postJSON(t, router, http.MethodPost, "/branches/", `{"code":"BR-09","name":"North Clinic"}`)
	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", res.Code, res.Body.String())
	}
	body := envelope(t, res)
	if body["message"] != "internal error" {
		t.Fatalf("expected bare internal error message, got %v", body)
	}
	if strings.Contains(res.Body.String(), "10.0.0.5") {
		t.Fatalf("driver detail leaked: %s", res.Body.String())
	}
}

func TestUpdateStorageFailureNotLeaked(t *testing.T) {
	repo := &stubRepo{updateErr: errors.New(`connect to database "medira" at 10.0.0.5:5432: connection refused`)}
	router := newBranchRouter(t, repo)

	res := postJSON(t, router, http.MethodPut, "/branches/3", `{"code":"BR-09","name":"North Clinic"}`)
	if res.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", res.Code, res.Body.String())
	}
	if body := envelope(t, res); body["message"] != "internal error" {
		t.Fatalf("expected bare internal error message, got %v", body)
	}
}

func TestCreateValidationRejected(t *testing.T) {
	router := newBranchRouter(t, &stubRepo{})

	res := postJSON(t, router, http.MethodPost, "/branches/", `{"code":"","name":"North Clinic"}`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", res.Code, res.Body.String())
	}
	if body := envelope(t, res); body["status"] != float64(http.StatusBadRequest) {
		t.Fatalf("status not mirrored in body: %v", body)
	}
}

func TestCreateDuplicateCode(t *testing.T) {
	repo := &stubRepo{createErr: httpx.ErrDuplicate}
	router := newBranchRouter(t, repo)

	res := postJSON(t, router, http.MethodPost, "/branches/", `{"code":"BR-09","name":"North Clinic"}`)
	if res.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", res.Code, res.Body.String())
	}
}

func TestUpdateMissingBranch(t *testing.T) {
	repo := &stubRepo{updateErr: shared.ErrNotFound}
	router := newBranchRouter(t, repo)

	res := postJSON(t, router, http.MethodPut, "/branches/99", `{"code":"BR-09","name":"North Clinic"}`)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", res.Code, res.Body.String())
	}
}
