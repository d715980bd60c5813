package leave

import (
	"context"
	"fmt"

	"payrollsuite/internal/domain/audit"
	"payrollsuite/internal/domain/auth"
)

type Service struct {
	Store StoreAPI
	audit audit.Recorder
}

func NewService(store StoreAPI, recorder audit.Recorder) *Service {
	return &Service{Store: store, audit: recorder}
}

type RequestMeta struct {
	RequestID string
	IP        string
}

// RequestLeave files a leave request for the caller's own employee record.
func (s *Service) RequestLeave(ctx context.Context, caller auth.UserContext, meta RequestMeta, input NewRequest) (Request, error) {
	if caller.EmployeeID == "" {
		return Request{}, ErrNoEmployee
	}
	computed, err := CalculateRequestDays(input.StartDate, input.EndDate, input.StartHalf, input.EndHalf)
	if err != nil {
		return Request{}, err
	}
	switch {
	case input.Days == 0:
		input.Days = computed
	case input.Days > computed:
		return Request{}, ErrDaysExceedRange
	}

	req, err := s.Store.CreateRequest(ctx, caller.TenantID, caller.EmployeeID, input)
	if err != nil {
		return Request{}, fmt.Errorf("create leave request: %w", err)
	}
	s.audit.Log(ctx, audit.Entry{
		TenantID: caller.TenantID, ActorID: caller.UserID, Action: audit.ActionLeaveRequest,
		EntityType: "leave_request", EntityID: req.ID, RequestID: meta.RequestID, IP: meta.IP,
		Details: map[string]any{"leaveType": req.LeaveType, "days": req.Days},
	})
	return req, nil
}

func (s *Service) ListMine(ctx context.Context, caller auth.UserContext, limit, offset int) ([]Request, error) {
	if caller.EmployeeID == "" {
		return []Request{}, nil
	}
	return s.Store.ListRequests(ctx, caller.TenantID, caller.EmployeeID, limit, offset)
}

func (s *Service) SummaryFor(ctx context.Context, caller auth.UserContext, year int) (Summary, error) {
	summary := Summary{Year: year, Rows: []SummaryRow{}}
	if caller.EmployeeID == "" {
		return summary, nil
	}
	rows, err := s.Store.Summary(ctx, caller.TenantID, caller.EmployeeID, year)
	if err != nil {
		return Summary{}, err
	}
	summary.Rows = rows
	for _, row := range rows {
		switch row.Status {
		case StatusApproved:
			summary.Totals.Approved += row.Days
			if row.LeaveType == TypeLossOfPay {
				summary.Totals.LOP += row.Days
			}
		case StatusPending:
			summary.Totals.Pending += row.Days
		}
	}
	return summary, nil
}

func (s *Service) AttendanceFor(ctx context.Context, caller auth.UserContext, year, month int) ([]AttendanceRecord, error) {
	if caller.EmployeeID == "" {
		return []AttendanceRecord{}, nil
	}
	from, to := MonthBounds(year, month)
	return s.Store.Attendance(ctx, caller.TenantID, caller.EmployeeID, from, to)
}

func (s *Service) Approve(ctx context.Context, caller auth.UserContext, meta RequestMeta, requestID string) (Request, error) {
	return s.decide(ctx, caller, meta, requestID, StatusApproved, audit.ActionLeaveApprove)
}

func (s *Service) Reject(ctx context.Context, caller auth.UserContext, meta RequestMeta, requestID string) (Request, error) {
	return s.decide(ctx, caller, meta, requestID, StatusRejected, audit.ActionLeaveReject)
}

func (s *Service) decide(ctx context.Context, caller auth.UserContext, meta RequestMeta, requestID, status, action string) (Request, error) {
	if !caller.Can(auth.CapLeaveApprove) {
		return Request{}, auth.ErrForbidden
	}
	current, err := s.Store.GetRequest(ctx, caller.TenantID, requestID)
	if err != nil {
		return Request{}, err
	}
	if caller.EmployeeID != "" && current.EmployeeID == caller.EmployeeID && !caller.Superadmin {
		return Request{}, ErrSelfApproval
	}
	req, err := s.Store.Decide(ctx, caller.TenantID, requestID, caller.UserID, status)
	if err != nil {
		return Request{}, err
	}
	s.audit.Log(ctx, audit.Entry{
		TenantID: caller.TenantID, ActorID: caller.UserID, Action: action,
		EntityType: "leave_request", EntityID: req.ID, RequestID: meta.RequestID, IP: meta.IP,
		Details: map[string]any{"employeeId": req.EmployeeID, "days": req.Days},
	})
	return req, nil
}
