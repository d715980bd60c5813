package leavehandler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"payrollsuite/internal/domain/auth"
	"payrollsuite/internal/domain/leave"
	"payrollsuite/internal/transport/http/api"
	"payrollsuite/internal/transport/http/middleware"
	"payrollsuite/internal/transport/http/shared"
)

type Service interface {
	RequestLeave(ctx context.Context, caller auth.UserContext, meta leave.RequestMeta, input leave.NewRequest) (leave.Request, error)
	ListMine(ctx context.Context, caller auth.UserContext, limit, offset int) ([]leave.Request, error)
	SummaryFor(ctx context.Context, caller auth.UserContext, year int) (leave.Summary, error)
	AttendanceFor(ctx context.Context, caller auth.UserContext, year, month int) ([]leave.AttendanceRecord, error)
	Approve(ctx context.Context, caller auth.UserContext, meta leave.RequestMeta, requestID string) (leave.Request, error)
	Reject(ctx context.Context, caller auth.UserContext, meta leave.RequestMeta, requestID string) (leave.Request, error)
}

type Handler struct {
	Service Service
	now     func() time.Time
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service, now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	own := middleware.RequireCapability(auth.CapLeaveRequestOwn)
	r.With(own).Get("/leave-requests/me", h.handleListMine)
	r.With(own).Post("/leave-requests/me", h.handleRequest)
	r.With(own).Get("/leave-summary/me", h.handleSummary)
	r.With(middleware.RequireCapability(auth.CapAttendanceReadOwn)).Get("/attendance/me", h.handleAttendance)
	r.With(middleware.RequireCapability(auth.CapLeaveApprove)).Post("/leave-requests/{requestID}/approve", h.handleApprove)
	r.With(middleware.RequireCapability(auth.CapLeaveApprove)).Post("/leave-requests/{requestID}/reject", h.handleReject)
}

type leaveRequestPayload struct {
	LeaveType string  `json:"leaveType" validate:"required,oneof=casual sick earned loss_of_pay"`
	StartDate string  `json:"startDate" validate:"required"`
	EndDate   string  `json:"endDate" validate:"required"`
	StartHalf bool    `json:"startHalf"`
	EndHalf   bool    `json:"endHalf"`
	Days      float64 `json:"days" validate:"gte=0"`
	Reason    string  `json:"reason" validate:"max=500"`
}

func requestMeta(r *http.Request) leave.RequestMeta {
	return leave.RequestMeta{RequestID: shared.GetRequestID(r), IP: middleware.ClientIP(r)}
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)
	requests, err := h.Service.ListMine(r.Context(), user, page.Limit, page.Offset)
	if err != nil {
		api.FromError(w, err, shared.GetRequestID(r))
		return
	}
	api.Success(w, requests, shared.GetRequestID(r))
}

func (h *Handler) handleRequest(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := shared.GetRequestID(r)
	var payload leaveRequestPayload
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(&payload)
	var start, end time.Time
	if payload.StartDate != "" {
		start, _ = v.Date("startDate", payload.StartDate)
	}
	if payload.EndDate != "" {
		end, _ = v.Date("endDate", payload.EndDate)
	}
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, requestID) {
		return
	}

	created, err := h.Service.RequestLeave(r.Context(), user, requestMeta(r), leave.NewRequest{
		LeaveType: payload.LeaveType,
		StartDate: start,
		EndDate:   end,
		StartHalf: payload.StartHalf,
		EndHalf:   payload.EndHalf,
		Days:      payload.Days,
		Reason:    payload.Reason,
	})
	if err != nil {
		api.FromError(w, err, requestID)
		return
	}
	api.Created(w, created, requestID)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := shared.GetRequestID(r)
	year, ok := shared.QueryInt(r, "year", h.now().Year())
	if !ok || year < 2000 || year > 2100 {
		api.FailValidation(w, []api.FieldIssue{{Field: "year", Reason: "must be between 2000 and 2100"}}, requestID)
		return
	}
	summary, err := h.Service.SummaryFor(r.Context(), user, year)
	if err != nil {
		api.FromError(w, err, requestID)
		return
	}
	api.Success(w, summary, requestID)
}

func (h *Handler) handleAttendance(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := shared.GetRequestID(r)
	now := h.now()
	v := shared.NewValidator()
	month, ok := shared.QueryInt(r, "month", int(now.Month()))
	if !ok || month < 1 || month > 12 {
		v.Add("month", "must be between 1 and 12")
	}
	year, ok := shared.QueryInt(r, "year", now.Year())
	if !ok || year < 2000 || year > 2100 {
		v.Add("year", "must be between 2000 and 2100")
	}
	if v.Reject(w, requestID) {
		return
	}
	records, err := h.Service.AttendanceFor(r.Context(), user, year, month)
	if err != nil {
		api.FromError(w, err, requestID)
		return
	}
	api.Success(w, records, requestID)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Approve)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.Service.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn func(context.Context, auth.UserContext, leave.RequestMeta, string) (leave.Request, error)) {
	user, _ := middleware.GetUser(r.Context())
	decided, err := fn(r.Context(), user, requestMeta(r), chi.URLParam(r, "requestID"))
	if err != nil {
		api.FromError(w, err, shared.GetRequestID(r))
		return
	}
	api.Success(w, decided, shared.GetRequestID(r))
}
