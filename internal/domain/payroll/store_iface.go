package payroll

import (
	"context"
	"time"

	"payrollsuite/internal/domain/leave"
)

// ReadStore backs the tiered read paths. Each method maps to one of the
// database access functions for a visibility tier.
type ReadStore interface {
	ItemsFull(ctx context.Context, tenantID, cycleID string) ([]Payslip, error)
	ItemsForEmail(ctx context.Context, tenantID, email string) ([]Payslip, error)
	CycleAggregate(ctx context.Context, tenantID, cycleID string) (Aggregate, error)
	TenantCounts(ctx context.Context, tenantID string) (TenantCounts, error)
}

type StoreAPI interface {
	ReadStore
	InTenant(ctx context.Context, tenantID string, fn func(ctx context.Context) error) error
	Settings(ctx context.Context, tenantID string) (Settings, error)
	SaveSettings(ctx context.Context, tenantID string, settings Settings) (Settings, error)
	CreateCycle(ctx context.Context, tenantID string, month, year int, createdBy string) (Cycle, error)
	CountCycles(ctx context.Context, tenantID string) (int, error)
	ListCycles(ctx context.Context, tenantID string, limit, offset int) ([]Cycle, error)
	GetCycle(ctx context.Context, tenantID, cycleID string, forUpdate bool) (Cycle, error)
	AutoComplete(ctx context.Context, tenantID string, now time.Time) (int64, error)
	SetStatus(ctx context.Context, tenantID, cycleID, status, actorID string) (Cycle, error)
	ReplaceItems(ctx context.Context, tenantID, cycleID string, lines []Line) error
	ClearItems(ctx context.Context, tenantID, cycleID string) error
	SetTotals(ctx context.Context, tenantID, cycleID string, totals Aggregate) error
	EmployeeInputs(ctx context.Context, tenantID string, asOf time.Time) ([]EmployeeInput, error)
	Item(ctx context.Context, tenantID, itemID string) (Payslip, error)
}

// LOPSource supplies loss-of-pay data for a period.
type LOPSource interface {
	LOPRequests(ctx context.Context, tenantID string, from, to time.Time) ([]leave.LOPRequest, error)
	LOPMarks(ctx context.Context, tenantID string, from, to time.Time) ([]leave.LOPMark, error)
}
