package payrollhandler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"payrollsuite/internal/domain/auth"
	"payrollsuite/internal/domain/payroll"
	"payrollsuite/internal/transport/http/api"
	"payrollsuite/internal/transport/http/middleware"
	"payrollsuite/internal/transport/http/shared"
)

// Service is the payroll surface exposed over HTTP.
type Service interface {
	CreateCycle(ctx context.Context, caller auth.UserContext, meta payroll.RequestMeta, month, year int) (payroll.Cycle, error)
	ListCycles(ctx context.Context, caller auth.UserContext, limit, offset int) ([]payroll.Cycle, int, error)
	GetCycle(ctx context.Context, caller auth.UserContext, cycleID string) (payroll.Cycle, error)
	CycleSummary(ctx context.Context, caller auth.UserContext, cycleID string) (payroll.CycleSummary, error)
	Preview(ctx context.Context, caller auth.UserContext, meta payroll.RequestMeta, cycleID string) (payroll.Preview, error)
	Submit(ctx context.Context, caller auth.UserContext, meta payroll.RequestMeta, cycleID string) (payroll.Cycle, error)
	Approve(ctx context.Context, caller auth.UserContext, meta payroll.RequestMeta, cycleID string) (payroll.Cycle, error)
	Reject(ctx context.Context, caller auth.UserContext, meta payroll.RequestMeta, cycleID string) (payroll.Cycle, error)
	Process(ctx context.Context, caller auth.UserContext, meta payroll.RequestMeta, cycleID string) (payroll.Cycle, error)
	CyclePayslips(ctx context.Context, caller auth.UserContext, meta payroll.RequestMeta, cycleID string) ([]payroll.Payslip, error)
	MyPayslips(ctx context.Context, caller auth.UserContext, meta payroll.RequestMeta) ([]payroll.Payslip, error)
	PayslipPDF(ctx context.Context, caller auth.UserContext, meta payroll.RequestMeta, payslipID string) (payroll.Payslip, []byte, error)
	Stats(ctx context.Context, caller auth.UserContext) (payroll.Stats, error)
	Settings(ctx context.Context, caller auth.UserContext) (payroll.Settings, error)
	SaveSettings(ctx context.Context, caller auth.UserContext, meta payroll.RequestMeta, in payroll.Settings) (payroll.Settings, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	readCycles := middleware.RequireAnyCapability(auth.CapPayrollReadAll, auth.CapPayrollReadTotals)

	r.Route("/payroll-cycles", func(r chi.Router) {
		r.With(middleware.RequireCapability(auth.CapPayrollCreate)).Post("/", h.handleCreateCycle)
		r.With(readCycles).Get("/", h.handleListCycles)
		r.With(readCycles).Get("/{cycleID}", h.handleGetCycle)
		r.With(readCycles).Get("/{cycleID}/summary", h.handleCycleSummary)
		r.With(middleware.RequireCapability(auth.CapPayrollReadAll)).Get("/{cycleID}/preview", h.handlePreview)
		r.Get("/{cycleID}/payslips", h.handleCyclePayslips)
		r.With(middleware.RequireCapability(auth.CapPayrollSubmit)).Post("/{cycleID}/submit", h.transition(h.Service.Submit))
		r.With(middleware.RequireCapability(auth.CapPayrollApprove)).Post("/{cycleID}/approve", h.transition(h.Service.Approve))
		r.With(middleware.RequireCapability(auth.CapPayrollApprove)).Post("/{cycleID}/reject", h.transition(h.Service.Reject))
		r.With(middleware.RequireCapability(auth.CapPayrollProcess)).Post("/{cycleID}/process", h.transition(h.Service.Process))
	})

	r.With(middleware.RequireCapability(auth.CapPayslipReadOwn)).Get("/payslips", h.handleMyPayslips)
	r.Get("/payslips/{payslipID}/pdf", h.handlePayslipPDF)
	r.Get("/stats", h.handleStats)

	r.With(middleware.RequireAnyCapability(auth.CapPayrollReadAll, auth.CapPayrollSettingsWrite)).Get("/payroll-settings", h.handleGetSettings)
	r.With(middleware.RequireCapability(auth.CapPayrollSettingsWrite)).Post("/payroll-settings", h.handleSaveSettings)
}

type createCycleRequest struct {
	Month int `json:"month" validate:"required,min=1,max=12"`
	Year  int `json:"year" validate:"required,min=2000,max=2100"`
}

type cycleList struct {
	Cycles []payroll.Cycle `json:"cycles"`
	Total  int             `json:"total"`
}

func requestMeta(r *http.Request) payroll.RequestMeta {
	return payroll.RequestMeta{RequestID: shared.GetRequestID(r), IP: middleware.ClientIP(r)}
}

func (h *Handler) handleCreateCycle(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload createCycleRequest
	if !shared.DecodeAndValidate(w, r, &payload) {
		return
	}
	cycle, err := h.Service.CreateCycle(r.Context(), user, requestMeta(r), payload.Month, payload.Year)
	if err != nil {
		api.FromError(w, err, shared.GetRequestID(r))
		return
	}
	api.Created(w, cycle, shared.GetRequestID(r))
}

func (h *Handler) handleListCycles(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 24, 120)
	cycles, total, err := h.Service.ListCycles(r.Context(), user, page.Limit, page.Offset)
	if err != nil {
		api.FromError(w, err, shared.GetRequestID(r))
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, cycleList{Cycles: cycles, Total: total}, shared.GetRequestID(r))
}

func (h *Handler) handleGetCycle(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	cycle, err := h.Service.GetCycle(r.Context(), user, chi.URLParam(r, "cycleID"))
	if err != nil {
		api.FromError(w, err, shared.GetRequestID(r))
		return
	}
	api.Success(w, cycle, shared.GetRequestID(r))
}

func (h *Handler) handleCycleSummary(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	summary, err := h.Service.CycleSummary(r.Context(), user, chi.URLParam(r, "cycleID"))
	if err != nil {
		api.FromError(w, err, shared.GetRequestID(r))
		return
	}
	api.Success(w, summary, shared.GetRequestID(r))
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	preview, err := h.Service.Preview(r.Context(), user, requestMeta(r), chi.URLParam(r, "cycleID"))
	if err != nil {
		api.FromError(w, err, shared.GetRequestID(r))
		return
	}
	api.Success(w, preview, shared.GetRequestID(r))
}

type transitionFunc func(ctx context.Context, caller auth.UserContext, meta payroll.RequestMeta, cycleID string) (payroll.Cycle, error)

// transition serves the state-machine actions, which share request and response shapes.
func (h *Handler) transition(fn transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := middleware.GetUser(r.Context())
		cycle, err := fn(r.Context(), user, requestMeta(r), chi.URLParam(r, "cycleID"))
		if err != nil {
			api.FromError(w, err, shared.GetRequestID(r))
			return
		}
		api.Success(w, cycle, shared.GetRequestID(r))
	}
}

func (h *Handler) handleCyclePayslips(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	items, err := h.Service.CyclePayslips(r.Context(), user, requestMeta(r), chi.URLParam(r, "cycleID"))
	if err != nil {
		api.FromError(w, err, shared.GetRequestID(r))
		return
	}
	api.Success(w, items, shared.GetRequestID(r))
}

func (h *Handler) handleMyPayslips(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	items, err := h.Service.MyPayslips(r.Context(), user, requestMeta(r))
	if err != nil {
		api.FromError(w, err, shared.GetRequestID(r))
		return
	}
	api.Success(w, items, shared.GetRequestID(r))
}

func (h *Handler) handlePayslipPDF(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	payslip, body, err := h.Service.PayslipPDF(r.Context(), user, requestMeta(r), chi.URLParam(r, "payslipID"))
	if err != nil {
		api.FromError(w, err, shared.GetRequestID(r))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", payroll.PayslipFilename(payslip)))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		slog.Warn("payslip pdf write failed", "payslip_id", payslip.ID, "error", err)
	}
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	stats, err := h.Service.Stats(r.Context(), user)
	if err != nil {
		api.FromError(w, err, shared.GetRequestID(r))
		return
	}
	api.Success(w, stats, shared.GetRequestID(r))
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	settings, err := h.Service.Settings(r.Context(), user)
	if err != nil {
		api.FromError(w, err, shared.GetRequestID(r))
		return
	}
	api.Success(w, settings, shared.GetRequestID(r))
}

func (h *Handler) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	var payload payroll.Settings
	if !shared.DecodeAndValidate(w, r, &payload) {
		return
	}
	settings, err := h.Service.SaveSettings(r.Context(), user, requestMeta(r), payload)
	if err != nil {
		api.FromError(w, err, shared.GetRequestID(r))
		return
	}
	api.Success(w, settings, shared.GetRequestID(r))
}
