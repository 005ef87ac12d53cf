package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/puntadaestudio/puntada-backend/pkg/auth"
	"github.com/puntadaestudio/puntada-backend/pkg/auth/session"
	"github.com/puntadaestudio/puntada-backend/pkg/config"
	"github.com/puntadaestudio/puntada-backend/pkg/db/models"
	"github.com/puntadaestudio/puntada-backend/pkg/enums"
	pkgerrors "github.com/puntadaestudio/puntada-backend/pkg/errors"
)

type stubUserRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
}

func (s *stubUserRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
	return user, nil
}

func (s *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (stubHasher) Verify(password, encoded string) (bool, error) {
	return encoded == "hashed:"+password, nil
}

type stubSessions struct {
	generated []string
	revoked   []string
}

func (s *stubSessions) Generate(_ context.Context, accessID string) (string, error) {
	s.generated = append(s.generated, accessID)
	return "refresh-" + accessID, nil
}

func (s *stubSessions) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	if provided != "refresh-"+oldAccessID {
		return "", "", session.ErrInvalidRefreshToken
	}
	newID := uuid.NewString()
	return newID, "refresh-" + newID, nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testAuthService(t *testing.T) (Service, *stubUserRepo, *stubSessions) {
	t.Helper()
	repo := newStubUserRepo()
	sessions := &stubSessions{}
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		Hasher:         stubHasher{},
		SessionManager: sessions,
		JWTConfig: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "puntada-test",
			ExpirationMinutes: 15,
		},
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc, repo, sessions
}

func TestRegisterCreatesCustomerAndIssuesTokens(t *testing.T) {
	t.Parallel()

	svc, repo, _ := testAuthService(t)
	sess, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "Lucia@Example.com",
		Password: "aguja-e-hilo",
		FullName: "Lucía Fernández",
		Phone:    "+5491122334455",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if sess.Identity.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role, got %s", sess.Identity.Role)
	}
	if sess.AccessToken == "" || sess.RefreshToken == "" {
		t.Fatal("expected both tokens issued")
	}
	if _, ok := repo.byEmail["lucia@example.com"]; !ok {
		t.Fatal("expected email normalized to lowercase")
	}
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	t.Parallel()

	svc, _, _ := testAuthService(t)
	req := RegisterRequest{Email: "lucia@example.com", Password: "aguja-e-hilo"}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}

	_, err := svc.Register(context.Background(), req)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	t.Parallel()

	svc, _, _ := testAuthService(t)
	if _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "lucia@example.com",
		Password: "aguja-e-hilo",
	}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "lucia@example.com",
		Password: "otra-clave",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}

func TestLoginIssuesParseableAccessToken(t *testing.T) {
	t.Parallel()

	svc, _, _ := testAuthService(t)
	reg, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "lucia@example.com",
		Password: "aguja-e-hilo",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	sess, err := svc.Login(context.Background(), LoginRequest{
		Email:    "lucia@example.com",
		Password: "aguja-e-hilo",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	cfg := config.JWTConfig{Secret: "test-secret", Issuer: "puntada-test", ExpirationMinutes: 15}
	claims, err := pkgAuth.ParseAccessToken(cfg, sess.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken returned error: %v", err)
	}
	if claims.UserID != reg.Identity.ID {
		t.Fatalf("expected user id %s in claims, got %s", reg.Identity.ID, claims.UserID)
	}
}

func TestRefreshRotatesTokenPair(t *testing.T) {
	t.Parallel()

	svc, _, _ := testAuthService(t)
	sess, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "lucia@example.com",
		Password: "aguja-e-hilo",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	rotated, err := svc.Refresh(context.Background(), sess.AccessToken, sess.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if rotated.RefreshToken == sess.RefreshToken {
		t.Fatal("expected a new refresh token after rotation")
	}

	_, err = svc.Refresh(context.Background(), sess.AccessToken, "refresh-forged")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected UNAUTHORIZED for forged refresh token, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()

	svc, _, sessions := testAuthService(t)
	if err := svc.Logout(context.Background(), "access-1"); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "access-1" {
		t.Fatalf("expected access-1 revoked, got %v", sessions.revoked)
	}
}

func TestIdentityUnknownUserIsNotFound(t *testing.T) {
	t.Parallel()

	svc, _, _ := testAuthService(t)
	_, err := svc.Identity(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
