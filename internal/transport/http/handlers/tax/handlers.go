package taxhandler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"payrollsuite/internal/domain/auth"
	"payrollsuite/internal/domain/tax"
	"payrollsuite/internal/transport/http/api"
	"payrollsuite/internal/transport/http/middleware"
	"payrollsuite/internal/transport/http/shared"
)

type Service interface {
	Declarations(ctx context.Context, caller auth.UserContext) ([]tax.Declaration, error)
	Declare(ctx context.Context, caller auth.UserContext, meta tax.RequestMeta, in tax.DeclarationInput) (tax.Declaration, error)
	Documents(ctx context.Context, caller auth.UserContext, financialYear string) ([]tax.Document, error)
}

type Handler struct {
	Service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	own := middleware.RequireCapability(auth.CapTaxDeclarationOwn)
	r.With(own).Get("/tax-declarations", h.handleList)
	r.With(own).Post("/tax-declarations", h.handleDeclare)
	r.With(own).Get("/tax-documents", h.handleDocuments)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	list, err := h.Service.Declarations(r.Context(), user)
	if err != nil {
		api.FromError(w, err, shared.GetRequestID(r))
		return
	}
	api.Success(w, list, shared.GetRequestID(r))
}

func (h *Handler) handleDeclare(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := shared.GetRequestID(r)
	var payload tax.DeclarationInput
	if !shared.DecodeAndValidate(w, r, &payload) {
		return
	}
	payload.FinancialYear = strings.TrimSpace(payload.FinancialYear)
	saved, err := h.Service.Declare(r.Context(), user, tax.RequestMeta{RequestID: requestID, IP: middleware.ClientIP(r)}, payload)
	if err != nil {
		api.FromError(w, err, requestID)
		return
	}
	api.Success(w, saved, requestID)
}

func (h *Handler) handleDocuments(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	docs, err := h.Service.Documents(r.Context(), user, strings.TrimSpace(r.URL.Query().Get("financial_year")))
	if err != nil {
		api.FromError(w, err, shared.GetRequestID(r))
		return
	}
	api.Success(w, docs, shared.GetRequestID(r))
}
