package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the local session token.
type Claims struct {
	UserID      string `json:"uid"`
	TenantID    string `json:"tid"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	PayrollRole string `json:"prole"`
	EmployeeID  string `json:"eid,omitempty"`
	PINVerified bool   `json:"pinVerified"`
	jwt.RegisteredClaims
}

func (c Claims) UserContext() UserContext {
	return UserContext{
		UserID:      c.UserID,
		TenantID:    c.TenantID,
		Email:       c.Email,
		Role:        c.Role,
		PayrollRole: c.PayrollRole,
		EmployeeID:  c.EmployeeID,
		PINVerified: c.PINVerified,
	}
}

func GenerateToken(secret string, claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseToken(secret, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, &TokenError{Reason: ReasonMissing}
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, classify(err)
	}
	if claims.UserID == "" || claims.TenantID == "" {
		return nil, &TokenError{Reason: ReasonMissingClaims}
	}
	return claims, nil
}

// classify maps jwt validation failures onto rejection reasons.
func classify(err error) *TokenError {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return &TokenError{Reason: ReasonExpired, Err: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return &TokenError{Reason: ReasonInvalidSignature, Err: err}
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return &TokenError{Reason: ReasonInvalidIssuer, Err: err}
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return &TokenError{Reason: ReasonInvalidAudience, Err: err}
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return &TokenError{Reason: ReasonMissingClaims, Err: err}
	default:
		return &TokenError{Reason: ReasonMalformed, Err: err}
	}
}
