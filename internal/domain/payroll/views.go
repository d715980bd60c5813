package payroll

import (
	"context"

	"payrollsuite/internal/domain/auth"
)

// View is the payroll read path for one visibility tier.
type View interface {
	CyclePayslips(ctx context.Context, rs ReadStore, caller auth.UserContext, cycleID string) ([]Payslip, error)
	CycleSummary(ctx context.Context, rs ReadStore, caller auth.UserContext, cycle Cycle) (CycleSummary, error)
	Stats(ctx context.Context, rs ReadStore, caller auth.UserContext) (Stats, error)
}

func ViewFor(tier auth.Tier) View {
	switch tier {
	case auth.TierFull:
		return fullView{}
	case auth.TierAggregate:
		return aggregateView{}
	case auth.TierSelf:
		return selfView{}
	default:
		return noView{}
	}
}

func summarize(ctx context.Context, rs ReadStore, caller auth.UserContext, cycle Cycle) (CycleSummary, error) {
	agg, err := rs.CycleAggregate(ctx, caller.TenantID, cycle.ID)
	if err != nil {
		return CycleSummary{}, err
	}
	return CycleSummary{CycleID: cycle.ID, Month: cycle.Month, Year: cycle.Year, Status: cycle.Status, Aggregate: agg}, nil
}

func tenantStats(ctx context.Context, rs ReadStore, caller auth.UserContext, tier auth.Tier) (Stats, error) {
	counts, err := rs.TenantCounts(ctx, caller.TenantID)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Tier: tier.String(), EmployeeCount: &counts.Employees, CycleCount: &counts.Cycles}
	if counts.Last != nil {
		summary, err := summarize(ctx, rs, caller, *counts.Last)
		if err != nil {
			return Stats{}, err
		}
		stats.LastCycle = &summary
	}
	return stats, nil
}

type fullView struct{}

func (fullView) CyclePayslips(ctx context.Context, rs ReadStore, caller auth.UserContext, cycleID string) ([]Payslip, error) {
	return rs.ItemsFull(ctx, caller.TenantID, cycleID)
}

func (fullView) CycleSummary(ctx context.Context, rs ReadStore, caller auth.UserContext, cycle Cycle) (CycleSummary, error) {
	return summarize(ctx, rs, caller, cycle)
}

func (fullView) Stats(ctx context.Context, rs ReadStore, caller auth.UserContext) (Stats, error) {
	return tenantStats(ctx, rs, caller, auth.TierFull)
}

// aggregateView never returns a per-employee row.
type aggregateView struct{}

func (aggregateView) CyclePayslips(context.Context, ReadStore, auth.UserContext, string) ([]Payslip, error) {
	return nil, auth.ErrForbidden
}

func (aggregateView) CycleSummary(ctx context.Context, rs ReadStore, caller auth.UserContext, cycle Cycle) (CycleSummary, error) {
	return summarize(ctx, rs, caller, cycle)
}

func (aggregateView) Stats(ctx context.Context, rs ReadStore, caller auth.UserContext) (Stats, error) {
	return tenantStats(ctx, rs, caller, auth.TierAggregate)
}

// selfView only sees rows whose employee email is the caller's.
type selfView struct{}

func (selfView) CyclePayslips(ctx context.Context, rs ReadStore, caller auth.UserContext, cycleID string) ([]Payslip, error) {
	own, err := rs.ItemsForEmail(ctx, caller.TenantID, caller.Email)
	if err != nil {
		return nil, err
	}
	out := []Payslip{}
	for _, p := range own {
		if p.CycleID == cycleID && caller.Owns("", p.Email) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (selfView) CycleSummary(context.Context, ReadStore, auth.UserContext, Cycle) (CycleSummary, error) {
	return CycleSummary{}, auth.ErrForbidden
}

func (selfView) Stats(ctx context.Context, rs ReadStore, caller auth.UserContext) (Stats, error) {
	stats := Stats{Tier: auth.TierSelf.String()}
	own, err := rs.ItemsForEmail(ctx, caller.TenantID, caller.Email)
	if err != nil {
		return Stats{}, err
	}
	for _, p := range own {
		if !caller.Owns("", p.Email) {
			continue
		}
		stats.MyLatestPayslip = &PayslipSummary{
			PayslipID: p.ID, Month: p.Month, Year: p.Year, Status: p.CycleStatus,
			PaidDays: p.PaidDays, GrossSalary: p.GrossSalary, NetSalary: p.NetSalary,
		}
		break
	}
	return stats, nil
}

type noView struct{}

func (noView) CyclePayslips(context.Context, ReadStore, auth.UserContext, string) ([]Payslip, error) {
	return nil, auth.ErrForbidden
}

func (noView) CycleSummary(context.Context, ReadStore, auth.UserContext, Cycle) (CycleSummary, error) {
	return CycleSummary{}, auth.ErrForbidden
}

func (noView) Stats(context.Context, ReadStore, auth.UserContext) (Stats, error) {
	return Stats{}, auth.ErrForbidden
}
