package employee

import (
	"context"
	"time"
)

type StoreAPI interface {
	Count(ctx context.Context, tenantID string) (int, error)
	List(ctx context.Context, tenantID string, limit, offset int) ([]Employee, error)
	Get(ctx context.Context, tenantID, employeeID string) (Employee, error)
	Create(ctx context.Context, tenantID string, input NewEmployee) (Employee, error)
	ListCompensation(ctx context.Context, tenantID, employeeID string) ([]Compensation, error)
	EffectiveCompensation(ctx context.Context, tenantID, employeeID string, at time.Time) (*Compensation, error)
	CreateCompensation(ctx context.Context, tenantID, employeeID string, input NewCompensation) (Compensation, error)
}
