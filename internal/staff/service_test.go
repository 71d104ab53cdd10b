package staff_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/medira-his/medira/internal/platform/httpx"
	"github.com/medira-his/medira/internal/rbac"
	"github.com/medira-his/medira/internal/shared"
	"github.com/medira-his/medira/internal/staff"
	_ "github.com/medira-his/medira/testing"
)

type stubStaffRepo struct {
	lastForm   staff.CreateForm
	lastHash   string
	active     map[int64]bool
	deleted    []int64
	createdIDs int64
}

func newStubStaffRepo() *stubStaffRepo {
	return &stubStaffRepo{active: map[int64]bool{}}
}

func (s *stubStaffRepo) Create(_ context.Context, form staff.CreateForm, passwordHash string) (staff.Member, error) {
	s.lastForm = form
	s.lastHash = passwordHash
	s.createdIDs++
	s.active[s.createdIDs] = true
	return staff.Member{ID: s.createdIDs, RoleCode: form.RoleCode, RoleName: rbac.RoleName(form.RoleCode), BranchID: form.BranchID, IsActive: true}, nil
}

func (s *stubStaffRepo) List(_ context.Context, _ int64, _ staff.ListFilters) ([]staff.Member, int, error) {
	return nil, 0, nil
}

func (s *stubStaffRepo) Get(_ context.Context, id int64) (staff.Member, error) {
	if _, ok := s.active[id]; !ok {
		return staff.Member{}, shared.ErrNotFound
	}
	return staff.Member{ID: id, IsActive: s.active[id]}, nil
}

func (s *stubStaffRepo) Update(_ context.Context, _ int64, _ staff.UpdateForm) error {
	return nil
}

func (s *stubStaffRepo) SetActive(_ context.Context, id int64, active bool) error {
	if _, ok := s.active[id]; !ok {
		return shared.ErrNotFound
	}
	s.active[id] = active
	return nil
}

func (s *stubStaffRepo) Delete(_ context.Context, id int64) error {
	if _, ok := s.active[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.active, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func validForm() staff.CreateForm {
	return staff.CreateForm{
		Name:      "Dr. Silva",
		Email:     "silva@clinic.test",
		Password:  "longenough",
		RoleCode:  rbac.RoleDoctor,
		BranchID:  5,
		Specialty: "cardiology",
	}
}

func TestCreateHashesPassword(t *testing.T) {
	repo := newStubStaffRepo()
	svc := staff.NewService(repo)

	member, err := svc.Create(context.Background(), validForm())
	require.NoError(t, err)
	require.Equal(t, "doctor", member.RoleName)
	require.NotEqual(t, "longenough", repo.lastHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.lastHash), []byte("longenough")))
}

func TestCreateRejectsPatientRole(t *testing.T) {
	svc := staff.NewService(newStubStaffRepo())
	form := validForm()
	form.RoleCode = rbac.RolePatient
	_, err := svc.Create(context.Background(), form)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRejectsSuperAdminRole(t *testing.T) {
	svc := staff.NewService(newStubStaffRepo())
	form := validForm()
	form.RoleCode = rbac.RoleSuperAdmin
	_, err := svc.Create(context.Background(), form)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDisableIsDefaultRemoval(t *testing.T) {
	repo := newStubStaffRepo()
	svc := staff.NewService(repo)

	member, err := svc.Create(context.Background(), validForm())
	require.NoError(t, err)

	require.NoError(t, svc.Disable(context.Background(), member.ID))
	require.False(t, repo.active[member.ID])
	require.Empty(t, repo.deleted)

	require.NoError(t, svc.Enable(context.Background(), member.ID))
	require.True(t, repo.active[member.ID])
}

func TestDeleteUnknownStaff(t *testing.T) {
	svc := staff.NewService(newStubStaffRepo())
	require.ErrorIs(t, svc.Delete(context.Background(), 404), shared.ErrNotFound)
}
