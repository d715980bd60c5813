package employeeshandler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"payrollsuite/internal/domain/auth"
	"payrollsuite/internal/domain/employee"
	"payrollsuite/internal/transport/http/api"
	"payrollsuite/internal/transport/http/middleware"
	"payrollsuite/internal/transport/http/shared"
)

type Service interface {
	List(ctx context.Context, caller auth.UserContext, meta employee.RequestMeta, limit, offset int) ([]employee.Employee, int, error)
	Get(ctx context.Context, caller auth.UserContext, meta employee.RequestMeta, employeeID string) (employee.Employee, error)
	Create(ctx context.Context, caller auth.UserContext, meta employee.RequestMeta, input employee.NewEmployee) (employee.Employee, error)
	Compensation(ctx context.Context, caller auth.UserContext, meta employee.RequestMeta, employeeID string) (employee.CompensationHistory, error)
	AddCompensation(ctx context.Context, caller auth.UserContext, meta employee.RequestMeta, employeeID string, input employee.NewCompensation) (employee.Compensation, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequireCapability(auth.CapEmployeeRead)).Get("/", h.handleList)
		r.With(middleware.RequireCapability(auth.CapEmployeeWrite)).Post("/", h.handleCreate)
		r.Get("/{employeeID}", h.handleGet)
		r.Get("/{employeeID}/compensation", h.handleCompensation)
		r.With(middleware.RequireCapability(auth.CapCompensationWrite)).Post("/{employeeID}/compensation", h.handleAddCompensation)
	})
}

type createEmployeeRequest struct {
	employee.NewEmployee
	JoinedOn string `json:"joinedOn"`
}

type addCompensationRequest struct {
	employee.NewCompensation
	EffectiveFrom string `json:"effectiveFrom"`
}

type employeeList struct {
	Employees []employee.Employee `json:"employees"`
	Total     int                 `json:"total"`
}

func requestMeta(r *http.Request) employee.RequestMeta {
	return employee.RequestMeta{RequestID: shared.GetRequestID(r), IP: middleware.ClientIP(r)}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 100, 500)
	list, total, err := h.Service.List(r.Context(), user, requestMeta(r), page.Limit, page.Offset)
	if err != nil {
		api.FromError(w, err, shared.GetRequestID(r))
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, employeeList{Employees: list, Total: total}, shared.GetRequestID(r))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := shared.GetRequestID(r)
	var payload createEmployeeRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(&payload.NewEmployee)
	if payload.JoinedOn != "" {
		if joined, ok := v.Date("joinedOn", payload.JoinedOn); ok {
			payload.NewEmployee.JoinedOn = &joined
		}
	}
	if v.Reject(w, requestID) {
		return
	}

	created, err := h.Service.Create(r.Context(), user, requestMeta(r), payload.NewEmployee)
	if err != nil {
		api.FromError(w, err, requestID)
		return
	}
	api.Created(w, created, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	found, err := h.Service.Get(r.Context(), user, requestMeta(r), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.FromError(w, err, shared.GetRequestID(r))
		return
	}
	api.Success(w, found, shared.GetRequestID(r))
}

func (h *Handler) handleCompensation(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	history, err := h.Service.Compensation(r.Context(), user, requestMeta(r), chi.URLParam(r, "employeeID"))
	if err != nil {
		api.FromError(w, err, shared.GetRequestID(r))
		return
	}
	api.Success(w, history, shared.GetRequestID(r))
}

func (h *Handler) handleAddCompensation(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := shared.GetRequestID(r)
	var payload addCompensationRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(&payload.NewCompensation)
	v.Required("effectiveFrom", payload.EffectiveFrom, "is required")
	if payload.EffectiveFrom != "" {
		if from, ok := v.Date("effectiveFrom", payload.EffectiveFrom); ok {
			payload.NewCompensation.EffectiveFrom = from
		}
	}
	if v.Reject(w, requestID) {
		return
	}

	comp, err := h.Service.AddCompensation(r.Context(), user, requestMeta(r), chi.URLParam(r, "employeeID"), payload.NewCompensation)
	if err != nil {
		api.FromError(w, err, requestID)
		return
	}
	api.Created(w, comp, requestID)
}
