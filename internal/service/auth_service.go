package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"lendbook/internal/auth"
	"lendbook/internal/domain"
	"lendbook/internal/repository"
	customError "lendbook/pkg/errors"
)

// AuthService handles account registration and login.
type AuthService struct {
	userRepo repository.UserRepository
	jwt      *auth.JWTManager
}

func NewAuthService(userRepo repository.UserRepository, jwt *auth.JWTManager) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		jwt:      jwt,
	}
}

// Register creates a new account and returns it with a signed session token.
func (s *AuthService) Register(ctx context.Context, request *domain.RegisterRequest) (*domain.AuthResponse, error) {
	existing, err := s.userRepo.GetByEmail(ctx, request.Email)
	if err == nil && existing != nil {
		return nil, customError.WrapEmailTaken(request.Email)
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, customError.WrapPersistence(err)
	}

	hash, err := auth.HashPassword(request.Password)
	if err != nil {
		return nil, customError.WrapPersistence(err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        request.Email,
		Name:         request.Name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, customError.WrapPersistence(err)
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, customError.WrapPersistence(err)
	}

	return &domain.AuthResponse{User: user, Token: token}, nil
}

// Login verifies credentials and returns the account with a session token.
func (s *AuthService) Login(ctx context.Context, request *domain.LoginRequest) (*domain.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, request.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapBadCredentials()
		}
		return nil, customError.WrapPersistence(err)
	}

	if !auth.CheckPassword(user.PasswordHash, request.Password) {
		return nil, customError.WrapBadCredentials()
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		return nil, customError.WrapPersistence(err)
	}

	return &domain.AuthResponse{User: user, Token: token}, nil
}
