package auth

import (
	"errors"
	"time"

	autherrors "go-leave/internal/auth/errors"
	"go-leave/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the caller identity the leave service trusts. Tokens are
// issued by the college identity provider with a shared HMAC secret.
type Claims struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Department   string `json:"department"`
	Position     string `json:"position"`
	Role         string `json:"role"`
	jwt.RegisteredClaims
}

func (c Claims) Actor() domain.Actor {
	return domain.Actor{
		EmployeeID: c.EmployeeID,
		Name:       c.EmployeeName,
		Department: c.Department,
		Position:   c.Position,
		Role:       c.Role,
	}
}

type Tokens struct {
	secret []byte
}

func NewTokens(secret string) *Tokens {
	return &Tokens{secret: []byte(secret)}
}

func (t *Tokens) Sign(actor domain.Actor, expiry time.Duration) (string, error) {
	if len(t.secret) == 0 {
		return "", autherrors.ErrSigningKeyMissing
	}
	now := time.Now()
	claims := Claims{
		EmployeeID:   actor.EmployeeID,
		EmployeeName: actor.Name,
		Department:   actor.Department,
		Position:     actor.Position,
		Role:         actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.EmployeeID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies raw and returns its claims. Only HMAC signatures are
// accepted, and never against an empty key.
func (t *Tokens) Parse(raw string) (*Claims, error) {
	if len(t.secret) == 0 {
		return nil, autherrors.ErrInvalidToken
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, autherrors.ErrTokenExpired
		}
		return nil, autherrors.ErrInvalidToken.WithCause(err)
	}
	if !token.Valid {
		return nil, autherrors.ErrInvalidToken
	}
	if claims.EmployeeID == "" {
		return nil, autherrors.ErrMissingClaim
	}
	return claims, nil
}
