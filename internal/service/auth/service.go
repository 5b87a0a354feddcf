package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aafiyacare/homecare-api/internal/model"
	"github.com/aafiyacare/homecare-api/internal/repository"
	"github.com/aafiyacare/homecare-api/pkg/auth"
	"github.com/aafiyacare/homecare-api/pkg/errors"
	"github.com/aafiyacare/homecare-api/pkg/logger"
	"github.com/aafiyacare/homecare-api/pkg/security"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 15 * time.Minute
	bcryptCost       = 12
)

type Servicer interface {
	Login(ctx context.Context, email, password string) (*model.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*model.TokenResponse, error)
	Register(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	ValidateToken(token string) (*model.TokenClaims, error)
}

type Service struct {
	userRepo repository.UserRepository
	jwtSvc   auth.JWTService
	hasher   security.PasswordHasher
	logger   *logger.Logger
}

func NewService(userRepo repository.UserRepository, jwtSvc auth.JWTService, log *logger.Logger) *Service {
	return &Service{
		userRepo: userRepo,
		jwtSvc:   jwtSvc,
		hasher:   security.NewBcryptHasher(bcryptCost),
		logger:   log.WithComponent("auth"),
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (*model.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	if user.Status != model.UserStatusActive {
		return nil, model.ErrAccountLocked
	}

	if user.LockedUntil != nil {
		if user.LockedUntil.After(time.Now()) {
			return nil, model.ErrAccountLocked
		}
		user.LockedUntil = nil
		user.FailedLoginAttempts = 0
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.recordFailedAttempt(ctx, user)
		return nil, model.ErrInvalidCredentials
	}

	now := time.Now()
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error(err, "failed to record login", "user_id", user.ID.String())
	}

	return s.generateTokens(user)
}

func (s *Service) recordFailedAttempt(ctx context.Context, user *model.User) {
	user.FailedLoginAttempts++
	if user.FailedLoginAttempts >= maxLoginAttempts {
		until := time.Now().Add(lockoutDuration)
		user.LockedUntil = &until
		user.FailedLoginAttempts = 0
		s.logger.Warn("account locked after repeated failures", "user_id", user.ID.String())
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error(err, "failed to record login attempt", "user_id", user.ID.String())
	}
}

func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, model.ErrInvalidToken
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, model.ErrInvalidToken
	}
	if user.Status != model.UserStatusActive {
		return nil, model.ErrAccountLocked
	}

	return s.generateTokens(user)
}

func (s *Service) ValidateToken(token string) (*model.TokenClaims, error) {
	return s.jwtSvc.ValidateToken(token)
}

// Register creates a staff account with a hashed password.
func (s *Service) Register(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if existing, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, errors.NewConflict("email already registered", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		},
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         req.Role,
		Status:       model.UserStatusActive,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *Service) generateTokens(user *model.User) (*model.TokenResponse, error) {
	accessToken, err := s.jwtSvc.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtSvc.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &model.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtSvc.AccessTokenTTL().Seconds()),
		TokenType:    "Bearer",
	}, nil
}
