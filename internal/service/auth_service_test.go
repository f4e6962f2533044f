package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"student-qr/backend/config"
	"student-qr/backend/internal/dto"
	"student-qr/backend/internal/model"
	"student-qr/backend/pkg/jwt"
)

// ── helpers ──

type memoryBlacklist struct {
	revoked map[string]time.Duration
}

func newMemoryBlacklist() *memoryBlacklist {
	return &memoryBlacklist{revoked: make(map[string]time.Duration)}
}

func (b *memoryBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	b.revoked[jti] = ttl
	return nil
}

func (b *memoryBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := b.revoked[jti]
	return ok, nil
}

func testAuthConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:               "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:          15 * time.Minute,
			RefreshTokenTTLDefault:  24 * time.Hour,
			RefreshTokenTTLRemember: 7 * 24 * time.Hour,
			SeedUsers: config.SeedUsers{
				AdminPassword:   "admin123",
				TeacherPassword: "teacher123",
			},
		},
	}
}

func setupAuthService() (AuthService, *testRepos, *jwt.Manager, *memoryBlacklist) {
	cfg := testAuthConfig()
	r := newTestRepos()
	mgr := jwt.NewManager(&cfg.Auth)
	bl := newMemoryBlacklist()
	return NewAuthService(cfg, r.repo, mgr, bl, nop), r, mgr, bl
}

func addUser(t *testing.T, r *testRepos, username, password, role string, enabled bool) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	u := &model.User{Username: username, PasswordHash: string(hash), Role: role, Enabled: enabled}
	_ = r.users.Create(context.Background(), u)
	return u
}

// ── Login ──

func TestLogin_Success(t *testing.T) {
	svc, r, mgr, _ := setupAuthService()
	addUser(t, r, "teacher", "teacher123", model.RoleTeacher, true)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "teacher", Password: "teacher123"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" || resp.ExpiresIn != 900 {
		t.Errorf("unexpected token response %+v", resp)
	}
	if resp.User.Role != model.RoleTeacher || resp.User.LastLoginAt == "" {
		t.Errorf("unexpected user %+v", resp.User)
	}

	claims, err := mgr.ParseToken(resp.AccessToken)
	if err != nil || claims.Role != model.RoleTeacher || claims.TokenType != jwt.TokenTypeAccess {
		t.Errorf("unexpected access claims %+v (%v)", claims, err)
	}
}

func TestLogin_Failures(t *testing.T) {
	svc, r, _, _ := setupAuthService()
	addUser(t, r, "teacher", "teacher123", model.RoleTeacher, true)
	addUser(t, r, "gone", "gone1234", model.RoleUser, false)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"wrong password", "teacher", "nope", ErrInvalidCredentials},
		{"unknown user", "ghost", "teacher123", ErrInvalidCredentials},
		{"disabled", "gone", "gone1234", ErrUserDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, &dto.LoginRequest{Username: tt.username, Password: tt.password})
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

// ── Refresh ──

func TestRefresh(t *testing.T) {
	svc, r, mgr, bl := setupAuthService()
	u := addUser(t, r, "admin", "admin123", model.RoleAdmin, true)
	ctx := context.Background()

	refresh, _ := mgr.GenerateRefreshToken(u.UserID, u.Username, u.Role, true)
	resp, err := svc.Refresh(ctx, refresh)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	claims, _ := mgr.ParseToken(resp.RefreshToken)
	if claims == nil || !claims.RememberMe {
		t.Error("remember-me should carry over to the new refresh token")
	}

	access, _ := mgr.GenerateAccessToken(u.UserID, u.Username, u.Role)
	if _, err := svc.Refresh(ctx, access); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access tokens must not refresh, got %v", err)
	}
	if _, err := svc.Refresh(ctx, "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}

	revoked, _ := mgr.GenerateRefreshToken(u.UserID, u.Username, u.Role, false)
	rc, _ := mgr.ParseToken(revoked)
	_ = bl.BlacklistToken(ctx, rc.ID, time.Hour)
	if _, err := svc.Refresh(ctx, revoked); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("revoked token should be rejected, got %v", err)
	}
}

// ── Logout / Me ──

func TestLogout_BlacklistsJTI(t *testing.T) {
	svc, _, mgr, bl := setupAuthService()
	token, _ := mgr.GenerateAccessToken("user-1", "admin", model.RoleAdmin)
	claims, _ := mgr.ParseToken(token)

	if err := svc.Logout(context.Background(), claims); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	ttl, ok := bl.revoked[claims.ID]
	if !ok || ttl <= 0 || ttl > 15*time.Minute {
		t.Errorf("unexpected blacklist entry ok=%v ttl=%v", ok, ttl)
	}
}

func TestLogout_NoBlacklist(t *testing.T) {
	cfg := testAuthConfig()
	svc := NewAuthService(cfg, newTestRepos().repo, jwt.NewManager(&cfg.Auth), nil, nop)
	if err := svc.Logout(context.Background(), &jwt.Claims{}); err != nil {
		t.Errorf("logout without a blacklist should succeed, got %v", err)
	}
}

func TestMe(t *testing.T) {
	svc, r, _, _ := setupAuthService()
	u := addUser(t, r, "user", "user1234", model.RoleUser, true)

	me, err := svc.Me(context.Background(), u.UserID)
	if err != nil || me.Username != "user" {
		t.Errorf("unexpected Me %+v (%v)", me, err)
	}
	if _, err := svc.Me(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

// ── SeedUsers ──

func TestSeedUsers(t *testing.T) {
	svc, r, _, _ := setupAuthService()
	ctx := context.Background()

	n, err := svc.SeedUsers(ctx)
	if err != nil {
		t.Fatalf("SeedUsers: %v", err)
	}
	// the user account has no configured password
	if n != 2 || len(r.users.users) != 2 {
		t.Fatalf("expected 2 seeded users, got %d", n)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{Username: "admin", Password: "admin123"}); err != nil {
		t.Errorf("seeded admin cannot log in: %v", err)
	}

	n, _ = svc.SeedUsers(ctx)
	if n != 0 {
		t.Errorf("a populated table must not be seeded again, got %d", n)
	}
}
