package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/medisync/hms-api/internal/config"
	"github.com/medisync/hms-api/internal/model"
	"github.com/medisync/hms-api/internal/repository"
	apperrors "github.com/medisync/hms-api/pkg/errors"
	"github.com/medisync/hms-api/pkg/security"
)

type Service struct {
	users  repository.UserRepository
	hasher security.PasswordHasher
	cfg    config.JWTConfig
}

func NewService(users repository.UserRepository, hasher security.PasswordHasher, cfg config.JWTConfig) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		cfg:    cfg,
	}
}

// Register creates a user with a hashed password. Role assignment is the
// caller's responsibility (handlers restrict who may create which role).
func (s *Service) Register(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.BadRequest("invalid password", err)
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
		FullName:     req.FullName,
		Phone:        req.Phone,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized(fmt.Errorf("account disabled"))
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	return s.issueTokens(user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	claims, err := s.parseToken(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	user, err := s.users.Get(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized(err)
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized(fmt.Errorf("account disabled"))
	}
	return s.issueTokens(user)
}

// ValidateToken verifies an access token and returns its claims.
func (s *Service) ValidateToken(token string) (*model.TokenClaims, error) {
	return s.parseToken(token, s.cfg.Secret)
}

func (s *Service) issueTokens(user *model.User) (*model.TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(time.Duration(s.cfg.ExpiryHours) * time.Hour)
	refreshExpiry := now.Add(time.Duration(s.cfg.RefreshExpiryHours) * time.Hour)

	access, err := s.signToken(user, accessExpiry, s.cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, err := s.signToken(user, refreshExpiry, s.cfg.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessExpiry,
	}, nil
}

func (s *Service) signToken(user *model.User, expiry time.Time, secret string) (string, error) {
	claims := &model.TokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *Service) parseToken(tokenStr, secret string) (*model.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &model.TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*model.TokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
