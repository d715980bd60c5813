package tax

import (
	"context"

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

func (s *Service) Declarations(ctx context.Context, caller auth.UserContext) ([]Declaration, error) {
	if !caller.Can(auth.CapTaxDeclarationOwn) {
		return nil, auth.ErrForbidden
	}
	if caller.EmployeeID == "" {
		return []Declaration{}, nil
	}
	return s.Store.ListDeclarations(ctx, caller.TenantID, caller.EmployeeID)
}

// Declare creates or replaces the caller's declaration for a financial year.
func (s *Service) Declare(ctx context.Context, caller auth.UserContext, meta RequestMeta, in DeclarationInput) (Declaration, error) {
	if !caller.Can(auth.CapTaxDeclarationOwn) {
		return Declaration{}, auth.ErrForbidden
	}
	if caller.EmployeeID == "" {
		return Declaration{}, ErrNoEmployee
	}
	if err := ValidateFinancialYear(in.FinancialYear); err != nil {
		return Declaration{}, err
	}
	if in.Section80C < 0 || in.Section80D < 0 || in.HRAExemption < 0 || in.OtherDeductions < 0 {
		return Declaration{}, ErrNegativeAmount
	}
	d, err := s.Store.UpsertDeclaration(ctx, caller.TenantID, caller.EmployeeID, in)
	if err != nil {
		return Declaration{}, err
	}
	s.audit.Log(ctx, audit.Entry{
		TenantID: caller.TenantID, ActorID: caller.UserID, Action: audit.ActionTaxDeclarationWrite,
		EntityType: "tax_declaration", EntityID: d.ID, RequestID: meta.RequestID, IP: meta.IP,
		Details: map[string]any{"financialYear": d.FinancialYear, "total": d.TotalDeductions()},
	})
	return d, nil
}

func (s *Service) Documents(ctx context.Context, caller auth.UserContext, financialYear string) ([]Document, error) {
	if !caller.Can(auth.CapTaxDeclarationOwn) {
		return nil, auth.ErrForbidden
	}
	if financialYear != "" {
		if err := ValidateFinancialYear(financialYear); err != nil {
			return nil, err
		}
	}
	if caller.EmployeeID == "" {
		return []Document{}, nil
	}
	return s.Store.ListDocuments(ctx, caller.TenantID, caller.EmployeeID, financialYear)
}
