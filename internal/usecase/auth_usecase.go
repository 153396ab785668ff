package usecase

import (
	"context"
	"strings"

	"github.com/opsboard/opsboard/internal/domain"
	"github.com/opsboard/opsboard/internal/ports"
)

// LoginRequest represents the login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued session token and the authenticated user.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        *domain.User `json:"user"`
}

// AuthUseCase handles authentication. Password verification failures and
// unknown emails both surface as ErrInvalidCredentials so the response does
// not reveal which accounts exist.
type AuthUseCase struct {
	userRepo        ports.UserRepository
	passwordService ports.PasswordService
	tokenService    ports.TokenService
}

// NewAuthUseCase creates a new auth use case
func NewAuthUseCase(userRepo ports.UserRepository, passwordService ports.PasswordService, tokenService ports.TokenService) *AuthUseCase {
	return &AuthUseCase{
		userRepo:        userRepo,
		passwordService: passwordService,
		tokenService:    tokenService,
	}
}

// Login verifies credentials and issues an access token.
func (uc *AuthUseCase) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := uc.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := uc.passwordService.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := uc.tokenService.GenerateAccessToken(user.Actor())
	if err != nil {
		return nil, err
	}

	return &LoginResponse{AccessToken: token, User: user}, nil
}

// GetUser loads the full user record behind an actor.
func (uc *AuthUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return uc.userRepo.FindByID(ctx, id)
}
