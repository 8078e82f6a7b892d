package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/recipebook/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the registered claims plus the numeric user id. Subject
// carries the same id in decimal form.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid"`
}

// TokenManager signs and verifies HS256 session tokens.
type TokenManager struct {
	secret   []byte
	issuer   string
	validity time.Duration
	now      func() time.Time
}

func NewTokenManager(secret []byte, issuer string, validity time.Duration) *TokenManager {
	return &TokenManager{secret: secret, issuer: issuer, validity: validity, now: time.Now}
}

// Generate signs a token for userID with a fresh random token id and
// returns both. Nothing is persisted here.
func (m *TokenManager) Generate(userID int64) (string, string, error) {
	tokenID := uuid.NewString()
	now := m.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   strconv.FormatInt(userID, 10),
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.validity)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", "", err
	}

	return tokenString, tokenID, nil
}

// Parse verifies signature, algorithm, issuer and expiry and returns the
// claims. Every failure, including missing uid or jti, wraps
// common.ErrInvalidToken.
func (m *TokenManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	if err := claims.check(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	return claims, nil
}

func (c *Claims) check() error {
	if c.ID == "" {
		return errors.New("missing jti")
	}
	if c.UserID <= 0 {
		return errors.New("missing uid")
	}
	if c.Subject != strconv.FormatInt(c.UserID, 10) {
		return errors.New("sub does not match uid")
	}
	return nil
}
