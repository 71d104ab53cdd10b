package patients_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/medira-his/medira/internal/patients"
	"github.com/medira-his/medira/internal/platform/httpx"
	"github.com/medira-his/medira/internal/shared"
	_ "github.com/medira-his/medira/testing"
)

type stubPatientRepo struct {
	phones   map[string]bool
	lastHash string
	nextID   int64
}

func newStubPatientRepo() *stubPatientRepo {
	return &stubPatientRepo{phones: map[string]bool{}, nextID: 1}
}

func (s *stubPatientRepo) Register(_ context.Context, form patients.RegisterForm, passwordHash string) (patients.Patient, error) {
	if s.phones[form.Phone] {
		return patients.Patient{}, httpx.ErrDuplicate
	}
	s.phones[form.Phone] = true
	s.lastHash = passwordHash
	id := s.nextID
	s.nextID++
	return patients.Patient{ID: id, UserID: id + 100, Name: form.Name, Email: form.Email, Phone: form.Phone, BranchID: form.BranchID}, nil
}

func (s *stubPatientRepo) List(_ context.Context, _ int64, _ patients.ListFilters) ([]patients.Patient, int, error) {
	return nil, 0, nil
}

func (s *stubPatientRepo) Get(_ context.Context, _ int64) (patients.Patient, error) {
	return patients.Patient{}, shared.ErrNotFound
}

func (s *stubPatientRepo) Update(_ context.Context, _ int64, _ patients.UpdateForm) error {
	return nil
}

func validRegisterForm() patients.RegisterForm {
	return patients.RegisterForm{
		Name:     "Nimal Perera",
		Email:    "nimal@example.test",
		Phone:    "0771234567",
		Password: "longenough",
		BranchID: 5,
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	repo := newStubPatientRepo()
	svc := patients.NewService(repo)

	patient, err := svc.Register(context.Background(), validRegisterForm())
	require.NoError(t, err)
	require.EqualValues(t, 5, patient.BranchID)
	require.NotEqual(t, "longenough", repo.lastHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.lastHash), []byte("longenough")))
}

func TestRegisterDuplicatePhone(t *testing.T) {
	repo := newStubPatientRepo()
	svc := patients.NewService(repo)

	_, err := svc.Register(context.Background(), validRegisterForm())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), validRegisterForm())
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestRegisterValidation(t *testing.T) {
	svc := patients.NewService(newStubPatientRepo())

	form := validRegisterForm()
	form.Password = "short"
	_, err := svc.Register(context.Background(), form)
	require.ErrorIs(t, err, httpx.ErrValidation)

	form = validRegisterForm()
	form.Email = "not-an-email"
	_, err = svc.Register(context.Background(), form)
	require.ErrorIs(t, err, httpx.ErrValidation)

	form = validRegisterForm()
	form.BranchID = 0
	_, err = svc.Register(context.Background(), form)
	require.ErrorIs(t, err, httpx.ErrValidation)
}
