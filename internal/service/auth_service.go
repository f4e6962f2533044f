package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"student-qr/backend/config"
	"student-qr/backend/internal/dto"
	"student-qr/backend/internal/model"
	"student-qr/backend/internal/repository"
	"student-qr/backend/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserDisabled       = errors.New("account is disabled")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService authentication use cases
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	// Logout revokes the access token until it would expire.
	Logout(ctx context.Context, claims *jwt.Claims) error
	Me(ctx context.Context, userID string) (*dto.UserResponse, error)
	// SeedUsers creates the default admin, teacher and user accounts on an empty users table.
	SeedUsers(ctx context.Context) (int, error)
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates an AuthService. blacklist may be nil.
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. look up the account
	user, err := s.repo.User.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("get user failed", zap.Error(err))
		return nil, err
	}

	// 2. verify the password (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Enabled {
		return nil, ErrUserDisabled
	}

	// 3. issue the token pair
	resp, err := s.issueTokens(user, req.RememberMe)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.repo.User.UpdateLastLogin(ctx, user.UserID, now); err != nil {
		s.logger.Warn("update last login failed", zap.String("user_id", user.UserID), zap.Error(err))
	} else {
		user.LastLoginAt = &now
		resp.User = *toUserResponse(user)
	}

	s.logger.Info("user logged in", zap.String("username", user.Username), zap.String("role", user.Role))
	return resp, nil
}

// ────────────────────── Refresh ──────────────────────

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidToken
	}
	if s.blacklist != nil {
		if revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID); err == nil && revoked {
			return nil, ErrInvalidToken
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		s.logger.Error("get user failed", zap.Error(err))
		return nil, err
	}
	if !user.Enabled {
		return nil, ErrUserDisabled
	}

	return s.issueTokens(user, claims.RememberMe)
}

func (s *authService) issueTokens(user *model.User, rememberMe bool) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Username, user.Role)
	if err != nil {
		s.logger.Error("generate access token failed", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Username, user.Role, rememberMe)
	if err != nil {
		s.logger.Error("generate refresh token failed", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         *toUserResponse(user),
	}, nil
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.blacklist == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		// the token still expires on its own
		s.logger.Warn("blacklist token failed", zap.String("jti", claims.ID), zap.Error(err))
	}
	return nil
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("get user failed", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── SeedUsers ──────────────────────

func (s *authService) SeedUsers(ctx context.Context) (int, error) {
	count, err := s.repo.User.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	seeds := []struct {
		username, fullName, role, password string
	}{
		{"admin", "Administrator", model.RoleAdmin, s.cfg.Auth.SeedUsers.AdminPassword},
		{"teacher", "Teacher", model.RoleTeacher, s.cfg.Auth.SeedUsers.TeacherPassword},
		{"user", "User", model.RoleUser, s.cfg.Auth.SeedUsers.UserPassword},
	}

	created := 0
	for _, seed := range seeds {
		if seed.password == "" {
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.password), bcrypt.DefaultCost)
		if err != nil {
			return created, err
		}
		user := &model.User{
			Username:     seed.username,
			PasswordHash: string(hash),
			FullName:     seed.fullName,
			Role:         seed.role,
			Enabled:      true,
		}
		if err := s.repo.User.Create(ctx, user); err != nil {
			return created, err
		}
		created++
		s.logger.Info("default user created", zap.String("username", seed.username), zap.String("role", seed.role))
	}
	return created, nil
}

// ── conversion ──

func toUserResponse(u *model.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:       u.UserID,
		Username: u.Username,
		FullName: u.FullName,
		Role:     u.Role,
	}
	if u.Email != nil {
		resp.Email = *u.Email
	}
	if u.LastLoginAt != nil {
		resp.LastLoginAt = formatTime(*u.LastLoginAt)
	}
	return resp
}
