package auth

import (
	"errors"
	"fmt"
	"time"

	"admin-restful/models"

	"github.com/golang-jwt/jwt/v4"
)

// TokenTTL is the lifetime of every access token.
const TokenTTL = 60 * time.Minute

// Claims is the signed payload of an access token.
type Claims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenManager issues and parses HS256 access tokens. It holds no state
// besides the signing key, so revoking tokens early means rotating the key.
type TokenManager struct {
	key []byte
	now func() time.Time
}

// NewTokenManager returns a TokenManager signing with secret.
func NewTokenManager(secret []byte) (*TokenManager, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: empty signing key")
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &TokenManager{key: key, now: time.Now}, nil
}

// WithClock returns a copy of m that reads the current time from now.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	clone := *m
	clone.now = now
	return &clone
}

// Issue creates a signed token for an already authenticated user.
func (m *TokenManager) Issue(user *models.User) (string, error) {
	if user == nil || user.ID == 0 {
		return "", errors.New("auth: cannot issue token for unsaved user")
	}
	now := m.now()
	claims := &Claims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Parse checks the signature and expiry of tokenString and returns its claims.
//
// Expiry is evaluated against the manager's clock rather than jwt.TimeFunc,
// and a token whose expiry equals the current time is already expired.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrUnauthenticated
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	claims := &Claims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	if claims.ExpiresAt == nil || claims.UserID == 0 {
		return nil, fmt.Errorf("%w: missing required claims", ErrInvalidCredential)
	}
	if !m.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrCredentialExpired
	}
	return claims, nil
}
