package leavehandler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrollsuite/internal/domain/auth"
	"payrollsuite/internal/domain/leave"
	"payrollsuite/internal/transport/http/middleware"
)

type fakeService struct {
	Service
	requested  leave.NewRequest
	summaryYr  int
	attendance [2]int
	decided    []string
}

func (f *fakeService) RequestLeave(_ context.Context, _ auth.UserContext, _ leave.RequestMeta, input leave.NewRequest) (leave.Request, error) {
	f.requested = input
	return leave.Request{ID: "l1", LeaveType: input.LeaveType, Status: leave.StatusPending, Days: 1}, nil
}

func (f *fakeService) SummaryFor(_ context.Context, _ auth.UserContext, year int) (leave.Summary, error) {
	f.summaryYr = year
	return leave.Summary{Year: year, Rows: []leave.SummaryRow{}}, nil
}

func (f *fakeService) AttendanceFor(_ context.Context, _ auth.UserContext, year, month int) ([]leave.AttendanceRecord, error) {
	f.attendance = [2]int{year, month}
	return []leave.AttendanceRecord{}, nil
}

func (f *fakeService) Approve(_ context.Context, caller auth.UserContext, _ leave.RequestMeta, id string) (leave.Request, error) {
	if id == "own" {
		return leave.Request{}, leave.ErrSelfApproval
	}
	f.decided = append(f.decided, "approve:"+id)
	return leave.Request{ID: id, Status: leave.StatusApproved}, nil
}

func (f *fakeService) Reject(_ context.Context, _ auth.UserContext, _ leave.RequestMeta, id string) (leave.Request, error) {
	f.decided = append(f.decided, "reject:"+id)
	return leave.Request{ID: id, Status: leave.StatusRejected}, nil
}

var (
	employee = auth.UserContext{UserID: "u1", TenantID: "t1", Role: auth.RoleEmployee, EmployeeID: "e1", PINVerified: true}
	manager  = auth.UserContext{UserID: "u2", TenantID: "t1", Role: auth.RoleManager, EmployeeID: "e2", PINVerified: true}
)

func do(svc *fakeService, user auth.UserContext, method, target, body string) *httptest.ResponseRecorder {
	h := NewHandler(svc)
	h.now = func() time.Time { return time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRequestLeave(t *testing.T) {
	svc := &fakeService{}
	rr := do(svc, employee, http.MethodPost, "/leave-requests/me",
		`{"leaveType":"loss_of_pay","startDate":"2024-02-05","endDate":"2024-02-06","endHalf":true}`)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, leave.TypeLossOfPay, svc.requested.LeaveType)
	assert.Equal(t, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), svc.requested.StartDate)
	assert.True(t, svc.requested.EndHalf)
}

func TestRequestLeaveValidation(t *testing.T) {
	rr := do(&fakeService{}, employee, http.MethodPost, "/leave-requests/me",
		`{"leaveType":"vacation","startDate":"2024-02-06","endDate":"2024-02-05"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `"field":"leaveType"`)
	assert.Contains(t, body, `"field":"startDate"`)
	assert.Contains(t, body, `"field":"endDate"`)
}

func TestSummaryAndAttendanceDefaults(t *testing.T) {
	svc := &fakeService{}

	require.Equal(t, http.StatusOK, do(svc, employee, http.MethodGet, "/leave-summary/me", "").Code)
	assert.Equal(t, 2024, svc.summaryYr)

	require.Equal(t, http.StatusOK, do(svc, employee, http.MethodGet, "/attendance/me?month=2", "").Code)
	assert.Equal(t, [2]int{2024, 2}, svc.attendance)

	assert.Equal(t, http.StatusBadRequest, do(svc, employee, http.MethodGet, "/attendance/me?month=13", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(svc, employee, http.MethodGet, "/leave-summary/me?year=abc", "").Code)
}

func TestDecisions(t *testing.T) {
	svc := &fakeService{}

	assert.Equal(t, http.StatusForbidden, do(svc, employee, http.MethodPost, "/leave-requests/l1/approve", "").Code)
	assert.Equal(t, http.StatusOK, do(svc, manager, http.MethodPost, "/leave-requests/l1/approve", "").Code)
	assert.Equal(t, http.StatusOK, do(svc, manager, http.MethodPost, "/leave-requests/l2/reject", "").Code)
	assert.Equal(t, http.StatusForbidden, do(svc, manager, http.MethodPost, "/leave-requests/own/approve", "").Code)
	assert.Equal(t, []string{"approve:l1", "reject:l2"}, svc.decided)
}
