package services

import (
	"context"
	"errors"
	"fmt"

	"admin-restful/auth"
	"admin-restful/models"
	"admin-restful/repositories"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthService checks passwords and hands verified users to the token issuer.
type AuthService interface {
	Login(ctx context.Context, input *LoginInput) (string, *models.User, error)
}

type authService struct {
	users  repositories.UserRepository
	tokens *auth.TokenManager
}

var _ AuthService = (*authService)(nil)

func NewAuthService(users repositories.UserRepository, tokens *auth.TokenManager) AuthService {
	return &authService{users: users, tokens: tokens}
}

func (s *authService) Login(ctx context.Context, input *LoginInput) (string, *models.User, error) {
	if err := validateInput(input); err != nil {
		return "", nil, err
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Avoid revealing whether the user exists
			return "", nil, ErrInvalidLogin
		}
		return "", nil, fmt.Errorf("look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return "", nil, ErrInvalidLogin
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
