package employee

import (
	"context"
	"errors"
	"time"

	"payrollsuite/internal/domain/audit"
	"payrollsuite/internal/domain/auth"
)

type Service struct {
	store StoreAPI
	audit audit.Recorder
}

func NewService(store StoreAPI, recorder audit.Recorder) *Service {
	return &Service{store: store, audit: recorder}
}

// RequestMeta identifies the request an audit entry belongs to.
type RequestMeta struct {
	RequestID string
	IP        string
}

// CanReadSensitive reports whether caller sees unmasked employee records.
func CanReadSensitive(caller auth.UserContext) bool {
	return caller.Can(auth.CapEmployeeReadSensitive)
}

// List returns one page of the directory, masked unless caller holds the
// sensitive-read capability.
func (s *Service) List(ctx context.Context, caller auth.UserContext, meta RequestMeta, limit, offset int) ([]Employee, int, error) {
	if !caller.Can(auth.CapEmployeeRead) {
		return nil, 0, auth.ErrForbidden
	}
	total, err := s.store.Count(ctx, caller.TenantID)
	if err != nil {
		return nil, 0, err
	}
	list, err := s.store.List(ctx, caller.TenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	masked := !CanReadSensitive(caller)
	if masked {
		list = MaskAll(list)
	}
	s.audit.Log(ctx, audit.Entry{
		TenantID: caller.TenantID, ActorID: caller.UserID, Action: audit.ActionEmployeeList,
		EntityType: "employee", RequestID: meta.RequestID, IP: meta.IP,
		Details: map[string]any{"count": len(list), "masked": masked},
	})
	return list, total, nil
}

// Get returns a full record to HR or to the employee it belongs to.
func (s *Service) Get(ctx context.Context, caller auth.UserContext, meta RequestMeta, employeeID string) (Employee, error) {
	e, err := s.authorizedEmployee(ctx, caller, employeeID)
	if err != nil {
		return Employee{}, err
	}
	s.audit.Log(ctx, audit.Entry{
		TenantID: caller.TenantID, ActorID: caller.UserID, Action: audit.ActionEmployeeRead,
		EntityType: "employee", EntityID: e.ID, RequestID: meta.RequestID, IP: meta.IP,
	})
	return e, nil
}

func (s *Service) Create(ctx context.Context, caller auth.UserContext, meta RequestMeta, input NewEmployee) (Employee, error) {
	if !caller.Can(auth.CapEmployeeWrite) {
		return Employee{}, auth.ErrForbidden
	}
	e, err := s.store.Create(ctx, caller.TenantID, input)
	if err != nil {
		return Employee{}, err
	}
	s.audit.Log(ctx, audit.Entry{
		TenantID: caller.TenantID, ActorID: caller.UserID, Action: audit.ActionEmployeeCreate,
		EntityType: "employee", EntityID: e.ID, RequestID: meta.RequestID, IP: meta.IP,
		Details: map[string]any{"employeeCode": e.EmployeeCode},
	})
	return e, nil
}

func (s *Service) Compensation(ctx context.Context, caller auth.UserContext, meta RequestMeta, employeeID string) (CompensationHistory, error) {
	e, err := s.authorizedEmployee(ctx, caller, employeeID)
	if err != nil {
		return CompensationHistory{}, err
	}
	history, err := s.store.ListCompensation(ctx, caller.TenantID, e.ID)
	if err != nil {
		return CompensationHistory{}, err
	}
	s.audit.Log(ctx, audit.Entry{
		TenantID: caller.TenantID, ActorID: caller.UserID, Action: audit.ActionCompensationRead,
		EntityType: "employee", EntityID: e.ID, RequestID: meta.RequestID, IP: meta.IP,
	})
	return CompensationHistory{Current: Effective(history, time.Now()), History: history}, nil
}

func (s *Service) AddCompensation(ctx context.Context, caller auth.UserContext, meta RequestMeta, employeeID string, input NewCompensation) (Compensation, error) {
	if !caller.Can(auth.CapCompensationWrite) {
		return Compensation{}, auth.ErrForbidden
	}
	if input.Basic+input.HRA+input.SpecialAllowance > input.CTC {
		return Compensation{}, ErrInvalidCompensation
	}
	c, err := s.store.CreateCompensation(ctx, caller.TenantID, employeeID, input)
	if err != nil {
		return Compensation{}, err
	}
	s.audit.Log(ctx, audit.Entry{
		TenantID: caller.TenantID, ActorID: caller.UserID, Action: audit.ActionCompensationCreate,
		EntityType: "employee", EntityID: employeeID, RequestID: meta.RequestID, IP: meta.IP,
		Details: map[string]any{"effectiveFrom": c.EffectiveFrom.Format("2006-01-02")},
	})
	return c, nil
}

// authorizedEmployee hides existence from callers who could not read the
// record anyway.
func (s *Service) authorizedEmployee(ctx context.Context, caller auth.UserContext, employeeID string) (Employee, error) {
	hr := CanReadSensitive(caller)
	if !hr && caller.EmployeeID != "" && caller.EmployeeID != employeeID {
		return Employee{}, auth.ErrForbidden
	}
	e, err := s.store.Get(ctx, caller.TenantID, employeeID)
	if err != nil {
		if !hr && errors.Is(err, ErrNotFound) {
			return Employee{}, auth.ErrForbidden
		}
		return Employee{}, err
	}
	if !hr && !caller.Owns(e.ID, e.Email) {
		return Employee{}, auth.ErrForbidden
	}
	return e, nil
}
