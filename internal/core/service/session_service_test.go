package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/froker/lending-system/internal/core/domain"
	"github.com/froker/lending-system/internal/core/ports"
)

type stubUserRepo struct {
	users map[string]*domain.User
	seq   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email || u.Name == user.Name {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	copy := cloneUser(user)
	copy.ID = fmt.Sprintf("user_%d", r.seq)
	r.users[copy.ID] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByName(_ context.Context, name string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Name == name {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) SetRefreshToken(_ context.Context, id, token string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.RefreshToken = token
	return nil
}

func (r *stubUserRepo) RotateRefreshToken(_ context.Context, id, oldToken, newToken string) error {
	u, ok := r.users[id]
	if !ok || u.RefreshToken != oldToken {
		return domain.ErrUnauthorized
	}
	u.RefreshToken = newToken
	return nil
}

func (r *stubUserRepo) ClearRefreshToken(_ context.Context, id string) error {
	if u, ok := r.users[id]; ok {
		u.RefreshToken = ""
	}
	return nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *stubUserRepo) ApplyBorrow(_ context.Context, id string, borrowedAmount, purchasePower float64) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.BorrowedAmount = borrowedAmount
	u.PurchasePower = purchasePower
	return nil
}

type stubReplayGuard struct {
	rotated map[string]bool
}

func newStubReplayGuard() *stubReplayGuard {
	return &stubReplayGuard{rotated: make(map[string]bool)}
}

func (g *stubReplayGuard) IsRotated(_ context.Context, token string) (bool, error) {
	return g.rotated[token], nil
}

func (g *stubReplayGuard) MarkRotated(_ context.Context, token string) error {
	g.rotated[token] = true
	return nil
}

var testPolicy = domain.UnderwritingPolicy{MinAge: 20, MinMonthlySalary: 25000}

func newSessionService(repo *stubUserRepo, guard ports.ReplayGuard) *SessionService {
	codec := NewTokenCodec("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	return NewSessionService(repo, NewPasswordHasher(bcrypt.MinCost), codec, guard, testPolicy, zerolog.Nop())
}

func validRegistration() ports.RegisterInput {
	return ports.RegisterInput{
		PhoneNumber:   "9876543210",
		Email:         "Alice@Example.com",
		Name:          "alice",
		Password:      "s3cret",
		DateOfBirth:   "01.06.1990",
		MonthlySalary: 40000,
	}
}

func TestSessionService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newSessionService(repo, newStubReplayGuard())

	user, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Status != domain.StatusApproved {
		t.Fatalf("expected Approved, got %s", user.Status)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email not lowercased: %s", user.Email)
	}
	if user.PurchasePower != 20000 {
		t.Fatalf("expected purchase power 20000, got %f", user.PurchasePower)
	}
	if user.BorrowedAmount != 0 {
		t.Fatalf("expected zero borrowed amount, got %f", user.BorrowedAmount)
	}
	if user.PasswordHash == "s3cret" || user.PasswordHash == "" {
		t.Fatalf("password must be stored as a hash")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.DateOfRegistration.IsZero() {
		t.Fatalf("registration date not set")
	}
}

func TestSessionService_Register_Validation(t *testing.T) {
	svc := newSessionService(newStubUserRepo(), newStubReplayGuard())

	cases := []struct {
		name   string
		mutate func(*ports.RegisterInput)
	}{
		{"missing name", func(in *ports.RegisterInput) { in.Name = "" }},
		{"missing password", func(in *ports.RegisterInput) { in.Password = "" }},
		{"email without at sign", func(in *ports.RegisterInput) { in.Email = "alice.example.com" }},
		{"short phone", func(in *ports.RegisterInput) { in.PhoneNumber = "12345" }},
		{"non numeric phone", func(in *ports.RegisterInput) { in.PhoneNumber = "98765x3210" }},
		{"negative salary", func(in *ports.RegisterInput) { in.MonthlySalary = -1 }},
	}
	for _, tc := range cases {
		in := validRegistration()
		tc.mutate(&in)
		if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestSessionService_Register_DuplicateEmail(t *testing.T) {
	svc := newSessionService(newStubUserRepo(), newStubReplayGuard())

	if _, err := svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	in := validRegistration()
	in.Name = "someone else"
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestSessionService_Register_DuplicateName(t *testing.T) {
	svc := newSessionService(newStubUserRepo(), newStubReplayGuard())

	if _, err := svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	in := validRegistration()
	in.Email = "other@example.com"
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestSessionService_Register_RejectedIsPersisted(t *testing.T) {
	repo := newStubUserRepo()
	svc := newSessionService(repo, newStubReplayGuard())

	in := validRegistration()
	in.DateOfBirth = "01.06.2015"

	user, err := svc.Register(context.Background(), in)
	if !errors.Is(err, domain.ErrApplicationRejected) {
		t.Fatalf("expected ErrApplicationRejected, got %v", err)
	}
	if user == nil || user.Status != domain.StatusRejected {
		t.Fatalf("rejected application must still be returned with its status: %+v", user)
	}

	// The rejection is on record: the account exists in the store.
	stored, err := repo.FindByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("rejected user not persisted: %v", err)
	}
	if stored.Status != domain.StatusRejected {
		t.Fatalf("expected persisted Rejected status, got %s", stored.Status)
	}
}

func TestSessionService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := newSessionService(repo, newStubReplayGuard())

	created, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, pair, err := svc.Login(context.Background(), "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}
	if user.ID != created.ID {
		t.Fatalf("unexpected user: %+v", user)
	}

	stored, _ := repo.FindByID(context.Background(), created.ID)
	if stored.RefreshToken != pair.RefreshToken {
		t.Fatalf("refresh token not persisted")
	}
}

func TestSessionService_Login_OverwritesPriorSession(t *testing.T) {
	repo := newStubUserRepo()
	svc := newSessionService(repo, newStubReplayGuard())

	created, _ := svc.Register(context.Background(), validRegistration())
	_, first, err := svc.Login(context.Background(), "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("first login failed: %v", err)
	}
	_, second, err := svc.Login(context.Background(), "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}

	stored, _ := repo.FindByID(context.Background(), created.ID)
	if stored.RefreshToken != second.RefreshToken {
		t.Fatalf("second login should own the stored refresh token")
	}

	// The first session's refresh token is no longer trusted.
	if _, err := svc.Refresh(context.Background(), first.RefreshToken); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for superseded token, got %v", err)
	}
}

func TestSessionService_Login_Failures(t *testing.T) {
	svc := newSessionService(newStubUserRepo(), newStubReplayGuard())

	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "pass"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	_, _ = svc.Register(context.Background(), validRegistration())
	if _, _, err := svc.Login(context.Background(), "alice@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSessionService_Refresh_RotatesToken(t *testing.T) {
	repo := newStubUserRepo()
	svc := newSessionService(repo, newStubReplayGuard())

	created, _ := svc.Register(context.Background(), validRegistration())
	_, first, err := svc.Login(context.Background(), "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	second, err := svc.Refresh(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatalf("refresh must issue a new refresh token")
	}

	stored, _ := repo.FindByID(context.Background(), created.ID)
	if stored.RefreshToken != second.RefreshToken {
		t.Fatalf("rotated token not persisted")
	}

	// Reusing the rotated-out token must fail.
	if _, err := svc.Refresh(context.Background(), first.RefreshToken); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for reused token, got %v", err)
	}

	// The current token still works.
	if _, err := svc.Refresh(context.Background(), second.RefreshToken); err != nil {
		t.Fatalf("refresh with current token failed: %v", err)
	}
}

func TestSessionService_Refresh_InvalidToken(t *testing.T) {
	svc := newSessionService(newStubUserRepo(), newStubReplayGuard())

	if _, err := svc.Refresh(context.Background(), "not-a-token"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for empty token, got %v", err)
	}
}

func TestSessionService_Logout_Idempotent(t *testing.T) {
	repo := newStubUserRepo()
	svc := newSessionService(repo, newStubReplayGuard())

	created, _ := svc.Register(context.Background(), validRegistration())
	_, _, _ = svc.Login(context.Background(), "alice@example.com", "s3cret")

	if err := svc.Logout(context.Background(), created.ID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	stored, _ := repo.FindByID(context.Background(), created.ID)
	if stored.RefreshToken != "" {
		t.Fatalf("refresh token not cleared")
	}

	// Second logout is a no-op, not an error.
	if err := svc.Logout(context.Background(), created.ID); err != nil {
		t.Fatalf("second logout failed: %v", err)
	}
}

func TestSessionService_ChangePassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newSessionService(repo, newStubReplayGuard())

	created, _ := svc.Register(context.Background(), validRegistration())

	if err := svc.ChangePassword(context.Background(), created.ID, "wrong", "newpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), created.ID, "s3cret", "newpass"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "alice@example.com", "s3cret"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password should no longer work, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "alice@example.com", "newpass"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}
