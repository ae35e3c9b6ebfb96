package auth

import (
	"context"
	"errors"
	"fmt"

	"admin-restful/models"

	"gorm.io/gorm"
)

// PrincipalStore loads a user together with its role and the role's
// permissions.
type PrincipalStore interface {
	FindByIDWithRole(ctx context.Context, id uint) (*models.User, error)
}

// Authenticator turns a raw token into a principal.
type Authenticator struct {
	tokens *TokenManager
	users  PrincipalStore
}

func NewAuthenticator(tokens *TokenManager, users PrincipalStore) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Tokens returns the TokenManager used for verification.
func (a *Authenticator) Tokens() *TokenManager {
	return a.tokens
}

// Verify validates token and resolves the principal it names. The returned
// user always has its role permissions loaded, as of this call.
func (a *Authenticator) Verify(ctx context.Context, token string) (*models.User, error) {
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	user, err := a.users.FindByIDWithRole(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("auth: load user %d: %w", claims.UserID, err)
	}
	return user, nil
}
