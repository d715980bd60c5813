package auth

import "errors"

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPIN         = errors.New("invalid PIN")
	ErrPINFormat          = errors.New("PIN must be exactly 6 digits")
	ErrPINAlreadySet      = errors.New("PIN already set")
	ErrUserNotFound       = errors.New("user not found")
	ErrTenantNotFound     = errors.New("tenant not linked")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrPINSetupRequired   = errors.New("PIN setup required")
	ErrEmailInUse         = errors.New("email already belongs to another account")
)

// Token rejection reasons, returned to clients verbatim.
const (
	ReasonMissing          = "token_missing"
	ReasonExpired          = "token_expired"
	ReasonMalformed        = "token_malformed"
	ReasonInvalidSignature = "invalid_signature"
	ReasonInvalidIssuer    = "invalid_issuer"
	ReasonInvalidAudience  = "invalid_audience"
	ReasonMissingClaims    = "missing_claims"
)

type TokenError struct {
	Reason string
	Err    error
}

func (e *TokenError) Error() string {
	if e.Err != nil {
		return "token rejected: " + e.Reason + ": " + e.Err.Error()
	}
	return "token rejected: " + e.Reason
}

func (e *TokenError) Unwrap() error {
	return ErrInvalidToken
}
