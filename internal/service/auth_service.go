package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
	"github.com/agencyos/agencyos/internal/repository"
	"github.com/agencyos/agencyos/pkg/auth"
)

// AuthService handles registration, login, and token refresh.
type AuthService struct {
	store     repository.Store
	tokens    *auth.TokenManager
	passwords *auth.PasswordManager
}

func NewAuthService(store repository.Store, tokens *auth.TokenManager, passwords *auth.PasswordManager) *AuthService {
	return &AuthService{store: store, tokens: tokens, passwords: passwords}
}

type RegisterInput struct {
	Email              string  `json:"email" binding:"required"`
	Password           string  `json:"password" binding:"required"`
	Name               string  `json:"name" binding:"required"`
	Role               string  `json:"role" binding:"required"`
	CapacityHrsPerWeek *float64 `json:"capacityHrsPerWeek"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

type AuthResult struct {
	User   *domain.User `json:"user"`
	Tokens TokenPair    `json:"tokens"`
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := auth.ValidateEmail(email); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if err := s.passwords.ValidatePassword(input.Password); err != nil {
		return nil, apperr.Validation(err.Error())
	}
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}

	if _, err := s.store.Users().GetByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("email already registered")
	}

	hash, err := s.passwords.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:                 uuid.NewString(),
		Email:              email,
		Name:               name,
		Role:               role,
		PasswordHash:       hash,
		CapacityHrsPerWeek: input.CapacityHrsPerWeek,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, apperr.Internal(err)
	}
	return s.issueTokens(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		// Same error for unknown email and bad password.
		return nil, apperr.Authentication("invalid credentials")
	}
	if err := s.passwords.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperr.Authentication("invalid credentials")
	}
	return s.issueTokens(user)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	accessToken, expiresIn, err := s.tokens.RefreshAccessToken(refreshToken)
	if err != nil {
		return nil, apperr.Authentication("invalid refresh token")
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// Me returns the caller's own account.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.store.Users().GetByID(ctx, userID)
}

func (s *AuthService) issueTokens(user *domain.User) (*AuthResult, error) {
	access, refresh, expiresIn, err := s.tokens.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &AuthResult{
		User: user,
		Tokens: TokenPair{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresIn:    expiresIn,
		},
	}, nil
}
