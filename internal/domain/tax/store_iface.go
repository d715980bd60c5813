package tax

import "context"

type StoreAPI interface {
	ListDeclarations(ctx context.Context, tenantID, employeeID string) ([]Declaration, error)
	UpsertDeclaration(ctx context.Context, tenantID, employeeID string, input DeclarationInput) (Declaration, error)
	ListDocuments(ctx context.Context, tenantID, employeeID, financialYear string) ([]Document, error)
}
