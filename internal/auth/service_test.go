package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/medira-his/medira/internal/auth"
	"github.com/medira-his/medira/internal/rbac"
	"github.com/medira-his/medira/internal/shared"
	_ "github.com/medira-his/medira/testing"
)

type stubRepo struct {
	usersByEmail    map[string]*auth.User
	usersByID       map[int64]*auth.User
	patientsByPhone map[string]*auth.PatientLink
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if u, ok := s.usersByEmail[email]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	if u, ok := s.usersByID[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubRepo) FindPatientByPhone(ctx context.Context, phone string) (*auth.PatientLink, error) {
	if p, ok := s.patientsByPhone[phone]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthenticateEmailPath(t *testing.T) {
	repo := &stubRepo{
		usersByEmail: map[string]*auth.User{
			"doc@clinic.test": {ID: 3, Email: "doc@clinic.test", PasswordHash: hash(t, "correctpass"), RoleCode: rbac.RoleDoctor, RoleName: "doctor", IsActive: true},
		},
	}
	svc := auth.NewService(repo)

	user, abilities, err := svc.Authenticate(context.Background(), "doc@clinic.test", "correctpass")
	require.NoError(t, err)
	require.EqualValues(t, 3, user.ID)
	require.Equal(t, []string{rbac.AbilityDoctor}, abilities)
}

func TestAuthenticateUnknownEmailDistinctFromWrongSecret(t *testing.T) {
	repo := &stubRepo{
		usersByEmail: map[string]*auth.User{
			"doc@clinic.test": {ID: 3, Email: "doc@clinic.test", PasswordHash: hash(t, "correctpass"), RoleCode: rbac.RoleDoctor, IsActive: true},
		},
	}
	svc := auth.NewService(repo)

	_, _, err := svc.Authenticate(context.Background(), "nobody@clinic.test", "correctpass")
	require.ErrorIs(t, err, shared.ErrPrincipalNotFound)

	_, _, err = svc.Authenticate(context.Background(), "doc@clinic.test", "wrongpass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticatePhonePath(t *testing.T) {
	repo := &stubRepo{
		usersByID: map[int64]*auth.User{
			7: {ID: 7, PasswordHash: hash(t, "patientpass"), RoleCode: rbac.RolePatient, RoleName: "patient", IsActive: true},
		},
		patientsByPhone: map[string]*auth.PatientLink{
			"0771234567": {ID: 11, UserID: 7, Phone: "0771234567"},
		},
	}
	svc := auth.NewService(repo)

	user, abilities, err := svc.Authenticate(context.Background(), "0771234567", "patientpass")
	require.NoError(t, err)
	require.EqualValues(t, 7, user.ID)
	require.Equal(t, []string{rbac.AbilityPatient}, abilities)
}

func TestAuthenticatePhoneUnknown(t *testing.T) {
	svc := auth.NewService(&stubRepo{})
	_, _, err := svc.Authenticate(context.Background(), "0779999999", "whatever1")
	require.ErrorIs(t, err, shared.ErrPrincipalNotFound)
}

func TestAuthenticateBrokenPatientLink(t *testing.T) {
	repo := &stubRepo{
		patientsByPhone: map[string]*auth.PatientLink{
			"0771234567": {ID: 11, UserID: 404, Phone: "0771234567"},
		},
	}
	svc := auth.NewService(repo)
	_, _, err := svc.Authenticate(context.Background(), "0771234567", "patientpass")
	require.ErrorIs(t, err, shared.ErrPrincipalNotFound)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	repo := &stubRepo{
		usersByEmail: map[string]*auth.User{
			"gone@clinic.test": {ID: 9, Email: "gone@clinic.test", PasswordHash: hash(t, "correctpass"), RoleCode: rbac.RoleCashier, IsActive: false},
		},
	}
	svc := auth.NewService(repo)
	_, _, err := svc.Authenticate(context.Background(), "gone@clinic.test", "correctpass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
