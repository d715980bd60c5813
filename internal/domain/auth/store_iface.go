package auth

import "context"

type UserStore interface {
	ResolveTenant(ctx context.Context, orgID string) (string, error)
	UpsertFromSSO(ctx context.Context, profile SSOProfile) (User, string, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	SetPIN(ctx context.Context, userID, hash string) error
	TouchLastLogin(ctx context.Context, userID string) error
	EmployeeIDForEmail(ctx context.Context, tenantID, email string) (string, error)
}
