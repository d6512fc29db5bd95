package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/o1egl/paseto"
)

const (
	// Set expiration times for access and refresh tokens.
	AccessTokenExpiry  = 24 * time.Hour
	RefreshTokenExpiry = 7 * 24 * time.Hour
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrWrongTokenKind = errors.New("wrong kind of token")
	ErrInvalidKeyLen  = errors.New("symmetric key must be 32 bytes long")
)

// TokenKind tells access tokens from refresh tokens.
type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// TokenClaims struct represents the data in the token (UserID, Role, Kind, Expiry).
type TokenClaims struct {
	UserID string    `json:"userId"`
	Role   string    `json:"role"`
	Kind   TokenKind `json:"kind"`
	Expiry time.Time `json:"expiry"`
}

// TokenMaker issues and checks PASETO v2 local tokens.
type TokenMaker struct {
	key []byte
	now func() time.Time
}

func NewTokenMaker(symmetricKey string) (*TokenMaker, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKeyLen, len(symmetricKey))
	}
	return &TokenMaker{key: []byte(symmetricKey), now: time.Now}, nil
}

// GenerateTokens generates both the access token and refresh token for the given user ID and role.
func (m *TokenMaker) GenerateTokens(userID, role string) (accessToken, refreshToken string, err error) {
	accessToken, err = m.generate(userID, role, AccessToken, AccessTokenExpiry)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = m.generate(userID, role, RefreshToken, RefreshTokenExpiry)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// GenerateAccessToken generates only the access token for a user.
func (m *TokenMaker) GenerateAccessToken(userID, role string) (string, error) {
	return m.generate(userID, role, AccessToken, AccessTokenExpiry)
}

func (m *TokenMaker) generate(userID, role string, kind TokenKind, expiry time.Duration) (string, error) {
	claims := TokenClaims{
		UserID: userID,
		Role:   role,
		Kind:   kind,
		Expiry: m.now().Add(expiry),
	}
	token, err := paseto.NewV2().Encrypt(m.key, claims, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// ValidateToken decrypts the token and rejects it once expired or when it is
// not of the expected kind.
func (m *TokenMaker) ValidateToken(tokenString string, kind TokenKind) (*TokenClaims, error) {
	var claims TokenClaims
	if err := paseto.NewV2().Decrypt(tokenString, m.key, &claims, nil); err != nil {
		return nil, fmt.Errorf("failed to decrypt token: %w", err)
	}
	if claims.Kind != kind {
		return nil, ErrWrongTokenKind
	}
	if m.now().After(claims.Expiry) {
		return nil, ErrTokenExpired
	}
	return &claims, nil
}
