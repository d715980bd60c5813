package reportshandler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"payrollsuite/internal/domain/auth"
	"payrollsuite/internal/domain/payroll"
	"payrollsuite/internal/transport/http/api"
	"payrollsuite/internal/transport/http/middleware"
	"payrollsuite/internal/transport/http/shared"
)

type RegisterExporter interface {
	Register(ctx context.Context, caller auth.UserContext, meta payroll.RequestMeta, cycleID, format string) (payroll.Export, error)
}

type Handler struct {
	Exporter RegisterExporter
}

func NewHandler(exporter RegisterExporter) *Handler {
	return &Handler{Exporter: exporter}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.With(middleware.RequireCapability(auth.CapReportsExport)).Get("/payroll-register", h.handlePayrollRegister)
	})
}

func (h *Handler) handlePayrollRegister(w http.ResponseWriter, r *http.Request) {
	requestID := shared.GetRequestID(r)
	user, _ := middleware.GetUser(r.Context())

	cycleID := strings.TrimSpace(r.URL.Query().Get("cycle_id"))
	if cycleID == "" {
		api.FailValidation(w, []api.FieldIssue{{Field: "cycle_id", Reason: "is required"}}, requestID)
		return
	}
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))

	export, err := h.Exporter.Register(r.Context(), user, payroll.RequestMeta{RequestID: requestID, IP: middleware.ClientIP(r)}, cycleID, format)
	if err != nil {
		api.FromError(w, err, requestID)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Body); err != nil {
		slog.Warn("payroll register write failed", "cycle_id", cycleID, "error", err)
	}
}
