package user

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	migration "Foodgram/cmd/database/migrate"
	"Foodgram/domain"
	"Foodgram/internal/database"
	"Foodgram/pkg/jwt"

	"github.com/google/uuid"
)

func newTestService(t *testing.T) (UserService, UserRepository, jwt.JWTService) {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "user_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migration.Migrate(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	repo := NewUserRepository(db)
	jwtService := jwt.NewJWTService("test-secret")
	return NewUserService(repo, jwtService), repo, jwtService
}

func register(email, username string) domain.RegisterRequest {
	return domain.RegisterRequest{
		Email:     email,
		Username:  username,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "correct-horse",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, repo, jwtService := newTestService(t)

	res, err := svc.Register(ctx, register(" Ada@Foodgram.test ", "ada"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.Email != "ada@foodgram.test" || res.Username != "ada" || res.IsSubscribed {
		t.Fatalf("register response = %+v", res)
	}

	stored, err := repo.GetUserByID(ctx, res.ID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.Password == "correct-horse" || stored.Role != domain.RoleUser {
		t.Fatalf("stored user = %+v", stored)
	}

	login, err := svc.Login(ctx, domain.LoginRequest{Email: "ADA@foodgram.test", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	userID, role, err := jwtService.GetUserIDByToken(login.AuthToken)
	if err != nil || userID != res.ID || role != domain.RoleUser {
		t.Fatalf("token claims = %q %q %v", userID, role, err)
	}

	if _, err := svc.Login(ctx, domain.LoginRequest{Email: "ada@foodgram.test", Password: "nope"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password = %v", err)
	}
	if _, err := svc.Login(ctx, domain.LoginRequest{Email: "ghost@foodgram.test", Password: "nope"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email = %v", err)
	}
}

func TestRegisterRejectsTakenIdentity(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	if _, err := svc.Register(ctx, register("ada@foodgram.test", "ada")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, register("ADA@foodgram.test", "other")); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("taken email = %v", err)
	}
	if _, err := svc.Register(ctx, register("new@foodgram.test", "ada")); !errors.Is(err, domain.ErrUsernameTaken) || !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("taken username = %v", err)
	}
}

// staleCheckRepository reports every identity as free on its first check, as a
// registration that raced another insert would observe.
type staleCheckRepository struct {
	UserRepository
	checked bool
}

func (r *staleCheckRepository) CheckEmailOrUsername(ctx context.Context, email, username string) (bool, bool, error) {
	if !r.checked {
		r.checked = true
		return false, false, nil
	}
	return r.UserRepository.CheckEmailOrUsername(ctx, email, username)
}

func TestRegisterRaceReportsCollidingKey(t *testing.T) {
	ctx := context.Background()
	svc, repo, jwtService := newTestService(t)

	if _, err := svc.Register(ctx, register("ada@foodgram.test", "ada")); err != nil {
		t.Fatalf("register: %v", err)
	}

	racing := NewUserService(&staleCheckRepository{UserRepository: repo}, jwtService)
	if _, err := racing.Register(ctx, register("new@foodgram.test", "ada")); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("username race = %v, want username taken", err)
	}

	racing = NewUserService(&staleCheckRepository{UserRepository: repo}, jwtService)
	if _, err := racing.Register(ctx, register("ada@foodgram.test", "fresh")); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("email race = %v, want email taken", err)
	}
}

func TestSetPassword(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	created, err := svc.Register(ctx, register("ada@foodgram.test", "ada"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	wrong := domain.SetPasswordRequest{CurrentPassword: "not-it", NewPassword: "battery-staple"}
	if err := svc.SetPassword(ctx, created.ID, wrong); !errors.Is(err, domain.ErrInvalidCredentials) || !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("wrong current password = %v", err)
	}

	change := domain.SetPasswordRequest{CurrentPassword: "correct-horse", NewPassword: "battery-staple"}
	if err := svc.SetPassword(ctx, created.ID, change); err != nil {
		t.Fatalf("set password: %v", err)
	}
	if _, err := svc.Login(ctx, domain.LoginRequest{Email: "ada@foodgram.test", Password: "correct-horse"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", err)
	}
	if _, err := svc.Login(ctx, domain.LoginRequest{Email: "ada@foodgram.test", Password: "battery-staple"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	if err := svc.SetPassword(ctx, "", change); !errors.Is(err, domain.ErrAuthenticationRequired) {
		t.Fatalf("anonymous = %v", err)
	}
	if err := svc.SetPassword(ctx, uuid.NewString(), change); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("unknown user = %v", err)
	}
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	created, err := svc.Register(ctx, register("ada@foodgram.test", "ada"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	got, err := svc.GetUser(ctx, created.ID)
	if err != nil || got.Username != "ada" {
		t.Fatalf("get user = %+v, %v", got, err)
	}
	if _, err := svc.GetUser(ctx, uuid.NewString()); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("missing user = %v", err)
	}
	upper, err := svc.GetUser(ctx, strings.ToUpper(created.ID))
	if err != nil || upper.ID != created.ID {
		t.Fatalf("upper-case id = %+v, %v", upper, err)
	}
	if _, err := svc.GetUser(ctx, "42"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("malformed id = %v", err)
	}
}

func TestGetUsersPagesByUsername(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	for _, name := range []string{"carol", "alice", "bob"} {
		if _, err := svc.Register(ctx, register(name+"@foodgram.test", name)); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	users, total, err := svc.GetUsers(ctx, 1, 2)
	if err != nil {
		t.Fatalf("get users: %v", err)
	}
	if total != 3 || len(users) != 2 || users[0].Username != "alice" || users[1].Username != "bob" {
		t.Fatalf("page 1 = %+v of %d", users, total)
	}
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)

	if err := svc.EnsureAdmin(ctx, "", "ignored"); err != nil {
		t.Fatalf("disabled bootstrap: %v", err)
	}
	if err := svc.EnsureAdmin(ctx, "root@foodgram.test", "admin-password"); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	admin, err := repo.GetUserByEmail(ctx, "root@foodgram.test")
	if err != nil || admin.Role != domain.RoleAdmin || admin.Username != "root" {
		t.Fatalf("admin = %+v, %v", admin, err)
	}
	if err := svc.EnsureAdmin(ctx, "root@foodgram.test", "admin-password"); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}

	if _, err := svc.Register(ctx, register("ada@foodgram.test", "ada")); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.EnsureAdmin(ctx, "ada@foodgram.test", ""); err != nil {
		t.Fatalf("promote: %v", err)
	}
	promoted, _ := repo.GetUserByEmail(ctx, "ada@foodgram.test")
	if promoted.Role != domain.RoleAdmin {
		t.Fatalf("ada was not promoted: %+v", promoted)
	}
}
