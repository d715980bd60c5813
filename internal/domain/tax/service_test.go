package tax

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrollsuite/internal/domain/audit"
	"payrollsuite/internal/domain/auth"
)

type fakeStore struct {
	declarations map[string]Declaration
	documents    []Document
}

func (f *fakeStore) ListDeclarations(_ context.Context, _ string, employeeID string) ([]Declaration, error) {
	out := []Declaration{}
	for _, d := range f.declarations {
		if d.EmployeeID == employeeID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertDeclaration(_ context.Context, _ string, employeeID string, in DeclarationInput) (Declaration, error) {
	d := Declaration{ID: employeeID + "/" + in.FinancialYear, EmployeeID: employeeID, FinancialYear: in.FinancialYear,
		Section80C: in.Section80C, Section80D: in.Section80D, HRAExemption: in.HRAExemption, OtherDeductions: in.OtherDeductions}
	f.declarations[d.ID] = d
	return d, nil
}

func (f *fakeStore) ListDocuments(_ context.Context, _ string, employeeID, fy string) ([]Document, error) {
	out := []Document{}
	for _, d := range f.documents {
		if d.EmployeeID == employeeID && (fy == "" || d.FinancialYear == fy) {
			out = append(out, d)
		}
	}
	return out, nil
}

type recorder struct{ entries []audit.Entry }

func (r *recorder) Log(_ context.Context, e audit.Entry) { r.entries = append(r.entries, e) }

var employee = auth.UserContext{UserID: "u1", TenantID: "t1", Role: auth.RoleEmployee, EmployeeID: "e1"}

func TestDeclareUpserts(t *testing.T) {
	store := &fakeStore{declarations: map[string]Declaration{}}
	rec := &recorder{}
	svc := NewService(store, rec)
	ctx := context.Background()

	_, err := svc.Declare(ctx, employee, RequestMeta{}, DeclarationInput{FinancialYear: "2024-25", Section80C: 100000})
	require.NoError(t, err)
	d, err := svc.Declare(ctx, employee, RequestMeta{}, DeclarationInput{FinancialYear: "2024-25", Section80C: 150000, Section80D: 25000})
	require.NoError(t, err)
	assert.Equal(t, 175000.0, d.TotalDeductions())

	list, err := svc.Declarations(ctx, employee)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 150000.0, list[0].Section80C)
	assert.Len(t, rec.entries, 2)
}

func TestDeclareRejectsBadInput(t *testing.T) {
	svc := NewService(&fakeStore{declarations: map[string]Declaration{}}, &recorder{})
	ctx := context.Background()

	_, err := svc.Declare(ctx, employee, RequestMeta{}, DeclarationInput{FinancialYear: "2024-26"})
	assert.ErrorIs(t, err, ErrInvalidFinancialYear)

	_, err = svc.Declare(ctx, employee, RequestMeta{}, DeclarationInput{FinancialYear: "2024-25", Section80D: -1})
	assert.ErrorIs(t, err, ErrNegativeAmount)

	unlinked := employee
	unlinked.EmployeeID = ""
	_, err = svc.Declare(ctx, unlinked, RequestMeta{}, DeclarationInput{FinancialYear: "2024-25"})
	assert.ErrorIs(t, err, ErrNoEmployee)
}

func TestDocumentsOnlyOwn(t *testing.T) {
	store := &fakeStore{documents: []Document{
		{ID: "d1", EmployeeID: "e1", FinancialYear: "2024-25"},
		{ID: "d2", EmployeeID: "e2", FinancialYear: "2024-25"},
		{ID: "d3", EmployeeID: "e1", FinancialYear: "2023-24"},
	}}
	svc := NewService(store, &recorder{})

	docs, err := svc.Documents(context.Background(), employee, "2024-25")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "d1", docs[0].ID)

	all, err := svc.Documents(context.Background(), employee, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
