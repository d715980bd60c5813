package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type Service struct {
	Store      UserStore
	SSO        SSOConfig
	Secret     string
	SessionTTL time.Duration
}

func NewService(store UserStore, sso SSOConfig, secret string, ttl time.Duration) *Service {
	return &Service{Store: store, SSO: sso, Secret: secret, SessionTTL: ttl}
}

// HandleSSO verifies an HR portal token, provisions the user and issues a
// session. Users without a PIN receive a pending session.
func (s *Service) HandleSSO(ctx context.Context, token string) (SSOResult, error) {
	profile, err := VerifySSOToken(s.SSO, token)
	if err != nil {
		return SSOResult{}, err
	}
	tenantID, err := s.Store.ResolveTenant(ctx, profile.OrgID)
	if err != nil {
		return SSOResult{}, err
	}
	profile.TenantID = tenantID

	user, outcome, err := s.Store.UpsertFromSSO(ctx, profile)
	if err != nil {
		return SSOResult{}, fmt.Errorf("provision user: %w", err)
	}
	session, err := s.issue(ctx, user, user.HasPIN())
	if err != nil {
		return SSOResult{}, err
	}
	if err := s.Store.TouchLastLogin(ctx, user.ID); err != nil {
		slog.Warn("update last login failed", "userId", user.ID, "err", err)
	}
	return SSOResult{
		User:        user,
		Token:       session,
		NeedsPIN:    !user.HasPIN(),
		RedirectTo:  RedirectFor(user),
		Provisioned: outcome,
	}, nil
}

// SetupPIN stores the caller's first PIN and returns a fully verified session.
func (s *Service) SetupPIN(ctx context.Context, caller UserContext, pin string) (User, string, error) {
	if err := ValidatePIN(pin); err != nil {
		return User{}, "", err
	}
	user, err := s.Store.FindByID(ctx, caller.UserID)
	if err != nil {
		return User{}, "", err
	}
	if user.HasPIN() {
		return User{}, "", ErrPINAlreadySet
	}
	hash, err := HashPIN(pin)
	if err != nil {
		return User{}, "", fmt.Errorf("hash pin: %w", err)
	}
	if err := s.Store.SetPIN(ctx, user.ID, hash); err != nil {
		return User{}, "", err
	}
	user.PINHash = hash
	session, err := s.issue(ctx, user, true)
	return user, session, err
}

// PINStatus reveals whether the account exists and has a PIN.
func (s *Service) PINStatus(ctx context.Context, email string) (bool, error) {
	user, err := s.Store.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return false, err
	}
	return user.HasPIN(), nil
}

// LoginPIN checks format before touching the store so malformed input never
// reaches the hash comparison.
func (s *Service) LoginPIN(ctx context.Context, email, pin string) (User, string, error) {
	if err := ValidatePIN(pin); err != nil {
		return User{}, "", err
	}
	user, err := s.Store.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, ErrUserNotFound) {
		return User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return User{}, "", err
	}
	if !user.HasPIN() {
		return User{}, "", ErrInvalidCredentials
	}
	if err := CheckPIN(user.PINHash, pin); err != nil {
		return User{}, "", ErrInvalidPIN
	}
	if err := s.Store.TouchLastLogin(ctx, user.ID); err != nil {
		slog.Warn("update last login failed", "userId", user.ID, "err", err)
	}
	session, err := s.issue(ctx, user, true)
	return user, session, err
}

func (s *Service) ParseSession(token string) (UserContext, error) {
	claims, err := ParseToken(s.Secret, token)
	if err != nil {
		return UserContext{}, err
	}
	return claims.UserContext(), nil
}

func (s *Service) issue(ctx context.Context, user User, pinVerified bool) (string, error) {
	employeeID, err := s.Store.EmployeeIDForEmail(ctx, user.OrgID, user.Email)
	if err != nil {
		slog.Warn("resolve employee for session failed", "userId", user.ID, "err", err)
	}
	token, err := GenerateToken(s.Secret, Claims{
		UserID:      user.ID,
		TenantID:    user.OrgID,
		Email:       user.Email,
		Role:        user.Role,
		PayrollRole: user.PayrollRole,
		EmployeeID:  employeeID,
		PINVerified: pinVerified,
	}, s.SessionTTL)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}
