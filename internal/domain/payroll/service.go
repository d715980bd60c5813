package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"payrollsuite/internal/domain/audit"
	"payrollsuite/internal/domain/auth"
	"payrollsuite/internal/domain/leave"
)

type Service struct {
	Store StoreAPI
	LOP   LOPSource
	audit audit.Recorder
	now   func() time.Time
}

func NewService(store StoreAPI, lop LOPSource, recorder audit.Recorder) *Service {
	return &Service{Store: store, LOP: lop, audit: recorder, now: time.Now}
}

// RequestMeta identifies the request an audit entry belongs to.
type RequestMeta struct {
	RequestID string
	IP        string
}

func (s *Service) record(ctx context.Context, caller auth.UserContext, meta RequestMeta, action, entityType, entityID string, details map[string]any) {
	s.audit.Log(ctx, audit.Entry{
		TenantID: caller.TenantID, ActorID: caller.UserID, Action: action,
		EntityType: entityType, EntityID: entityID, RequestID: meta.RequestID, IP: meta.IP,
		Details: details,
	})
}

func ValidatePeriod(month, year int) error {
	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return ErrInvalidPeriod
	}
	return nil
}

func canReadCycles(caller auth.UserContext) bool {
	return caller.Can(auth.CapPayrollReadAll) || caller.Can(auth.CapPayrollReadTotals)
}

func (s *Service) CreateCycle(ctx context.Context, caller auth.UserContext, meta RequestMeta, month, year int) (Cycle, error) {
	if !caller.Can(auth.CapPayrollCreate) {
		return Cycle{}, auth.ErrForbidden
	}
	if err := ValidatePeriod(month, year); err != nil {
		return Cycle{}, err
	}
	cycle, err := s.Store.CreateCycle(ctx, caller.TenantID, month, year, caller.UserID)
	if err != nil {
		return Cycle{}, err
	}
	s.record(ctx, caller, meta, audit.ActionCycleCreate, "payroll_cycle", cycle.ID,
		map[string]any{"month": month, "year": year})
	return cycle, nil
}

// AutoCompleteTenant closes every cycle of tenantID whose month has passed.
func (s *Service) AutoCompleteTenant(ctx context.Context, tenantID string) (int64, error) {
	n, err := s.Store.AutoComplete(ctx, tenantID, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		slog.Info("payroll cycles auto-completed", "tenantId", tenantID, "count", n)
	}
	return n, nil
}

// autoComplete runs ahead of cycle reads. Failures are logged; the read
// continues with whatever state is stored.
func (s *Service) autoComplete(ctx context.Context, tenantID string) {
	if _, err := s.AutoCompleteTenant(ctx, tenantID); err != nil {
		slog.Warn("payroll auto-complete failed", "tenantId", tenantID, "err", err)
	}
}

func (s *Service) ListCycles(ctx context.Context, caller auth.UserContext, limit, offset int) ([]Cycle, int, error) {
	if !canReadCycles(caller) {
		return nil, 0, auth.ErrForbidden
	}
	s.autoComplete(ctx, caller.TenantID)
	total, err := s.Store.CountCycles(ctx, caller.TenantID)
	if err != nil {
		return nil, 0, err
	}
	list, err := s.Store.ListCycles(ctx, caller.TenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *Service) GetCycle(ctx context.Context, caller auth.UserContext, cycleID string) (Cycle, error) {
	if !canReadCycles(caller) {
		return Cycle{}, auth.ErrForbidden
	}
	s.autoComplete(ctx, caller.TenantID)
	return s.Store.GetCycle(ctx, caller.TenantID, cycleID, false)
}

// CycleSummary returns totals for one cycle to the full and aggregate tiers.
func (s *Service) CycleSummary(ctx context.Context, caller auth.UserContext, cycleID string) (CycleSummary, error) {
	view := ViewFor(auth.ResolveTier(caller))
	cycle, err := s.GetCycle(ctx, caller, cycleID)
	if err != nil {
		return CycleSummary{}, err
	}
	return view.CycleSummary(ctx, s.Store, caller, cycle)
}

// compute builds lines for every employee with compensation effective by the
// end of the cycle's month.
func (s *Service) compute(ctx context.Context, tenantID string, cycle Cycle) ([]Line, error) {
	from, to := leave.MonthBounds(cycle.Year, cycle.Month)
	settings, err := s.Store.Settings(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	employees, err := s.Store.EmployeeInputs(ctx, tenantID, to)
	if err != nil {
		return nil, fmt.Errorf("load employees: %w", err)
	}
	requests, err := s.LOP.LOPRequests(ctx, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load lop requests: %w", err)
	}
	marks, err := s.LOP.LOPMarks(ctx, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load lop attendance: %w", err)
	}
	lop := LOPDaysByEmployee(requests, marks, from, to)

	lines := make([]Line, 0, len(employees))
	for _, e := range employees {
		lines = append(lines, Compute(ComputeInput{
			Year: cycle.Year, Month: cycle.Month, LOPDays: lop[e.EmployeeID], Employee: e, Settings: settings,
		}))
	}
	return lines, nil
}

func (s *Service) Preview(ctx context.Context, caller auth.UserContext, meta RequestMeta, cycleID string) (Preview, error) {
	if !caller.Can(auth.CapPayrollReadAll) {
		return Preview{}, auth.ErrForbidden
	}
	var out Preview
	err := s.Store.InTenant(ctx, caller.TenantID, func(ctx context.Context) error {
		cycle, err := s.Store.GetCycle(ctx, caller.TenantID, cycleID, false)
		if err != nil {
			return err
		}
		lines, err := s.compute(ctx, caller.TenantID, cycle)
		if err != nil {
			return err
		}
		out = Preview{Cycle: cycle, Lines: lines, Totals: Totals(lines)}
		return nil
	})
	if err != nil {
		return Preview{}, err
	}
	s.record(ctx, caller, meta, audit.ActionCyclePreview, "payroll_cycle", cycleID,
		map[string]any{"employeeCount": out.Totals.EmployeeCount})
	return out, nil
}

// Submit moves a draft to pending approval and persists its computed items.
func (s *Service) Submit(ctx context.Context, caller auth.UserContext, meta RequestMeta, cycleID string) (Cycle, error) {
	if !caller.Can(auth.CapPayrollSubmit) {
		return Cycle{}, auth.ErrForbidden
	}
	var out Cycle
	var totals Aggregate
	err := s.Store.InTenant(ctx, caller.TenantID, func(ctx context.Context) error {
		cycle, next, err := s.lockForAction(ctx, caller.TenantID, cycleID, ActionSubmit)
		if err != nil {
			return err
		}
		if totals, err = s.persistComputation(ctx, caller.TenantID, cycle); err != nil {
			return err
		}
		out, err = s.Store.SetStatus(ctx, caller.TenantID, cycleID, next, caller.UserID)
		return err
	})
	if err != nil {
		return Cycle{}, err
	}
	s.record(ctx, caller, meta, audit.ActionCycleSubmit, "payroll_cycle", cycleID,
		map[string]any{"employeeCount": totals.EmployeeCount, "totalNet": totals.TotalNet})
	return out, nil
}

func (s *Service) Approve(ctx context.Context, caller auth.UserContext, meta RequestMeta, cycleID string) (Cycle, error) {
	if !caller.Can(auth.CapPayrollApprove) {
		return Cycle{}, auth.ErrForbidden
	}
	var out Cycle
	err := s.Store.InTenant(ctx, caller.TenantID, func(ctx context.Context) error {
		_, next, err := s.lockForAction(ctx, caller.TenantID, cycleID, ActionApprove)
		if err != nil {
			return err
		}
		out, err = s.Store.SetStatus(ctx, caller.TenantID, cycleID, next, caller.UserID)
		return err
	})
	if err != nil {
		return Cycle{}, err
	}
	s.record(ctx, caller, meta, audit.ActionCycleApprove, "payroll_cycle", cycleID, nil)
	return out, nil
}

// Reject returns a cycle to draft and discards its items.
func (s *Service) Reject(ctx context.Context, caller auth.UserContext, meta RequestMeta, cycleID string) (Cycle, error) {
	if !caller.Can(auth.CapPayrollApprove) {
		return Cycle{}, auth.ErrForbidden
	}
	var out Cycle
	var from string
	err := s.Store.InTenant(ctx, caller.TenantID, func(ctx context.Context) error {
		cycle, next, err := s.lockForAction(ctx, caller.TenantID, cycleID, ActionReject)
		if err != nil {
			return err
		}
		from = cycle.Status
		if err := s.Store.ClearItems(ctx, caller.TenantID, cycleID); err != nil {
			return err
		}
		out, err = s.Store.SetStatus(ctx, caller.TenantID, cycleID, next, caller.UserID)
		return err
	})
	if err != nil {
		return Cycle{}, err
	}
	s.record(ctx, caller, meta, audit.ActionCycleReject, "payroll_cycle", cycleID, map[string]any{"from": from})
	return out, nil
}

// Process recomputes an approved cycle and completes it. The move to
// processing commits first so a failed computation leaves the cycle in failed
// rather than approved.
func (s *Service) Process(ctx context.Context, caller auth.UserContext, meta RequestMeta, cycleID string) (Cycle, error) {
	if !caller.Can(auth.CapPayrollProcess) {
		return Cycle{}, auth.ErrForbidden
	}
	err := s.Store.InTenant(ctx, caller.TenantID, func(ctx context.Context) error {
		_, next, err := s.lockForAction(ctx, caller.TenantID, cycleID, ActionProcess)
		if err != nil {
			return err
		}
		_, err = s.Store.SetStatus(ctx, caller.TenantID, cycleID, next, caller.UserID)
		return err
	})
	if err != nil {
		return Cycle{}, err
	}

	var out Cycle
	var totals Aggregate
	err = s.Store.InTenant(ctx, caller.TenantID, func(ctx context.Context) error {
		current, err := s.Store.GetCycle(ctx, caller.TenantID, cycleID, true)
		if err != nil {
			return err
		}
		if current.Status != StatusProcessing {
			return &StateError{Action: ActionProcess, Current: current.Status}
		}
		if totals, err = s.persistComputation(ctx, caller.TenantID, current); err != nil {
			return err
		}
		out, err = s.Store.SetStatus(ctx, caller.TenantID, cycleID, StatusCompleted, caller.UserID)
		return err
	})
	if errors.Is(err, ErrInvalidTransition) {
		// Another writer moved the cycle on between the two transactions.
		return Cycle{}, err
	}
	if err != nil {
		slog.Error("payroll processing failed", "tenantId", caller.TenantID, "cycleId", cycleID, "err", err)
		s.markFailed(ctx, caller, meta, cycleID, err)
		return Cycle{}, fmt.Errorf("process payroll cycle: %w", err)
	}
	s.record(ctx, caller, meta, audit.ActionCycleProcess, "payroll_cycle", cycleID,
		map[string]any{"status": StatusCompleted, "employeeCount": totals.EmployeeCount, "totalNet": totals.TotalNet})
	return out, nil
}

// markFailed runs detached from the request so a cancelled caller cannot leave
// the cycle stuck in processing.
func (s *Service) markFailed(ctx context.Context, caller auth.UserContext, meta RequestMeta, cycleID string, cause error) {
	ctx = context.WithoutCancel(ctx)
	err := s.Store.InTenant(ctx, caller.TenantID, func(ctx context.Context) error {
		_, err := s.Store.SetStatus(ctx, caller.TenantID, cycleID, StatusFailed, caller.UserID)
		return err
	})
	if err != nil {
		slog.Error("mark payroll cycle failed", "cycleId", cycleID, "err", err)
	}
	s.record(ctx, caller, meta, audit.ActionCycleProcess, "payroll_cycle", cycleID,
		map[string]any{"status": StatusFailed, "error": cause.Error()})
}

func (s *Service) lockForAction(ctx context.Context, tenantID, cycleID, action string) (Cycle, string, error) {
	cycle, err := s.Store.GetCycle(ctx, tenantID, cycleID, true)
	if err != nil {
		return Cycle{}, "", err
	}
	next, err := NextStatus(action, cycle.Status)
	if err != nil {
		return Cycle{}, "", err
	}
	return cycle, next, nil
}

func (s *Service) persistComputation(ctx context.Context, tenantID string, cycle Cycle) (Aggregate, error) {
	lines, err := s.compute(ctx, tenantID, cycle)
	if err != nil {
		return Aggregate{}, err
	}
	if err := s.Store.ReplaceItems(ctx, tenantID, cycle.ID, lines); err != nil {
		return Aggregate{}, err
	}
	totals := Totals(lines)
	if err := s.Store.SetTotals(ctx, tenantID, cycle.ID, totals); err != nil {
		return Aggregate{}, err
	}
	return totals, nil
}

// CyclePayslips returns the items of a cycle visible at the caller's tier.
func (s *Service) CyclePayslips(ctx context.Context, caller auth.UserContext, meta RequestMeta, cycleID string) ([]Payslip, error) {
	tier := auth.ResolveTier(caller)
	view := ViewFor(tier)
	if tier == auth.TierFull {
		if _, err := s.Store.GetCycle(ctx, caller.TenantID, cycleID, false); err != nil {
			return nil, err
		}
	}
	items, err := view.CyclePayslips(ctx, s.Store, caller, cycleID)
	if err != nil {
		return nil, err
	}
	s.record(ctx, caller, meta, audit.ActionPayslipsRead, "payroll_cycle", cycleID,
		map[string]any{"tier": tier.String(), "count": len(items)})
	return items, nil
}

// MyPayslips lists the caller's own payslips, newest first.
func (s *Service) MyPayslips(ctx context.Context, caller auth.UserContext, meta RequestMeta) ([]Payslip, error) {
	if !caller.Can(auth.CapPayslipReadOwn) {
		return nil, auth.ErrForbidden
	}
	all, err := s.Store.ItemsForEmail(ctx, caller.TenantID, caller.Email)
	if err != nil {
		return nil, err
	}
	out := []Payslip{}
	for _, p := range all {
		if caller.Owns(p.EmployeeID, p.Email) {
			out = append(out, p)
		}
	}
	s.record(ctx, caller, meta, audit.ActionPayslipsRead, "payslip", "", map[string]any{"tier": "self", "count": len(out)})
	return out, nil
}

func (s *Service) Stats(ctx context.Context, caller auth.UserContext) (Stats, error) {
	return ViewFor(auth.ResolveTier(caller)).Stats(ctx, s.Store, caller)
}

// PayslipPDF renders a payslip for its owner or for a full-tier caller.
func (s *Service) PayslipPDF(ctx context.Context, caller auth.UserContext, meta RequestMeta, payslipID string) (Payslip, []byte, error) {
	full := caller.Can(auth.CapPayrollReadAll)
	p, err := s.Store.Item(ctx, caller.TenantID, payslipID)
	switch {
	case errors.Is(err, ErrPayslipNotFound) && !full:
		return Payslip{}, nil, auth.ErrForbidden
	case err != nil:
		return Payslip{}, nil, err
	}
	if !full && !caller.Owns(p.EmployeeID, p.Email) {
		return Payslip{}, nil, auth.ErrForbidden
	}
	body, err := RenderPayslipPDF(p)
	if err != nil {
		return Payslip{}, nil, err
	}
	s.record(ctx, caller, meta, audit.ActionPayslipDownload, "payroll_item", p.ID,
		map[string]any{"employeeId": p.EmployeeID, "month": p.Month, "year": p.Year})
	return p, body, nil
}

func (s *Service) Register(ctx context.Context, caller auth.UserContext, meta RequestMeta, cycleID, format string) (Export, error) {
	if !caller.Can(auth.CapReportsExport) {
		return Export{}, auth.ErrForbidden
	}
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return Export{}, ErrUnsupportedFormat
	}
	cycle, err := s.Store.GetCycle(ctx, caller.TenantID, cycleID, false)
	if err != nil {
		return Export{}, err
	}
	items, err := s.Store.ItemsFull(ctx, caller.TenantID, cycleID)
	if err != nil {
		return Export{}, err
	}
	export, err := RenderRegister(cycle, items, format)
	if err != nil {
		return Export{}, err
	}
	s.record(ctx, caller, meta, audit.ActionRegisterExport, "payroll_cycle", cycleID,
		map[string]any{"format": format, "rows": len(items)})
	return export, nil
}

func (s *Service) Settings(ctx context.Context, caller auth.UserContext) (Settings, error) {
	if !caller.Can(auth.CapPayrollReadAll) && !caller.Can(auth.CapPayrollSettingsWrite) {
		return Settings{}, auth.ErrForbidden
	}
	return s.Store.Settings(ctx, caller.TenantID)
}

func (s *Service) SaveSettings(ctx context.Context, caller auth.UserContext, meta RequestMeta, in Settings) (Settings, error) {
	if !caller.Can(auth.CapPayrollSettingsWrite) {
		return Settings{}, auth.ErrForbidden
	}
	if in.PFRate < 0 || in.PFRate > 100 || in.PTRate < 0 || in.TDSThreshold < 0 {
		return Settings{}, ErrInvalidSettings
	}
	out, err := s.Store.SaveSettings(ctx, caller.TenantID, in)
	if err != nil {
		return Settings{}, err
	}
	s.record(ctx, caller, meta, audit.ActionSettingsUpdate, "payroll_settings", caller.TenantID,
		map[string]any{"pfRate": out.PFRate, "ptRate": out.PTRate, "tdsThreshold": out.TDSThreshold})
	return out, nil
}
