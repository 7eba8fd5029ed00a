// Package auth issues and validates the signed identity tokens carried in the
// Authorization header.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/gophnet/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload: registered claims (iat, exp) plus the caller's
// identity as it was when the token was issued.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Name   string `json:"name"`
}

// Identity is the subset of a user embedded into a token.
type Identity struct {
	UserID string
	Role   string
	Name   string
}

// TokenService signs and verifies HS256 tokens with a secret fixed at
// construction. Validation is stateless: claims may be stale relative to the
// stored user.
type TokenService struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewTokenService(secretKey string, validity time.Duration) *TokenService {
	return &TokenService{secret: []byte(secretKey), validity: validity, now: time.Now}
}

// WithClock returns a copy of the service that reads time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	c := *s
	c.now = now
	return &c
}

// Issue returns a token for id valid from now for the configured window.
func (s *TokenService) Issue(id Identity) (string, error) {
	issuedAt := s.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.validity)),
		},
		UserID: id.UserID,
		Role:   id.Role,
		Name:   id.Name,
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Validate verifies the signature and expiry of tokenString. It returns
// common.ErrTokenExpired once now >= exp and common.ErrInvalidToken for any
// other defect.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
