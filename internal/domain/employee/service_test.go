package employee

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payrollsuite/internal/domain/audit"
	"payrollsuite/internal/domain/auth"
)

type fakeStore struct {
	employees    []Employee
	compensation map[string][]Compensation
}

func (f *fakeStore) Count(context.Context, string) (int, error) { return len(f.employees), nil }

func (f *fakeStore) List(context.Context, string, int, int) ([]Employee, error) {
	return append([]Employee(nil), f.employees...), nil
}

func (f *fakeStore) Get(_ context.Context, _ string, id string) (Employee, error) {
	for _, e := range f.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return Employee{}, ErrNotFound
}

func (f *fakeStore) Create(_ context.Context, tenantID string, input NewEmployee) (Employee, error) {
	for _, e := range f.employees {
		if e.EmployeeCode == input.EmployeeCode {
			return Employee{}, ErrDuplicateCode
		}
	}
	e := Employee{ID: "new", TenantID: tenantID, EmployeeCode: input.EmployeeCode, Email: input.Email}
	f.employees = append(f.employees, e)
	return e, nil
}

func (f *fakeStore) ListCompensation(_ context.Context, _ string, id string) ([]Compensation, error) {
	return f.compensation[id], nil
}

func (f *fakeStore) EffectiveCompensation(_ context.Context, _ string, id string, at time.Time) (*Compensation, error) {
	return Effective(f.compensation[id], at), nil
}

func (f *fakeStore) CreateCompensation(_ context.Context, _ string, id string, input NewCompensation) (Compensation, error) {
	c := Compensation{ID: "c-new", EmployeeID: id, EffectiveFrom: input.EffectiveFrom, CTC: input.CTC, Basic: input.Basic}
	f.compensation[id] = append(f.compensation[id], c)
	return c, nil
}

type recorder struct{ entries []audit.Entry }

func (r *recorder) Log(_ context.Context, e audit.Entry) { r.entries = append(r.entries, e) }

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func newFixture() (*Service, *fakeStore, *recorder) {
	store := &fakeStore{
		employees: []Employee{
			{ID: "e1", EmployeeCode: "E001", Email: "ann@example.com", BankAccount: "111122223333", CTC: ptr(600000)},
			{ID: "e2", EmployeeCode: "E002", Email: "bob@example.com", PAN: "ABCDE1234F", NetSalary: ptr(40000)},
		},
		compensation: map[string][]Compensation{
			"e1": {
				{ID: "c1", EmployeeID: "e1", EffectiveFrom: date(2024, 1, 1), CTC: 500000},
				{ID: "c2", EmployeeID: "e1", EffectiveFrom: date(2025, 4, 1), CTC: 600000},
				{ID: "c3", EmployeeID: "e1", EffectiveFrom: date(2999, 1, 1), CTC: 900000},
			},
		},
	}
	rec := &recorder{}
	return NewService(store, rec), store, rec
}

var (
	hr       = auth.UserContext{UserID: "u-hr", TenantID: "t1", Role: auth.RoleHR, Email: "hr@example.com"}
	director = auth.UserContext{UserID: "u-dir", TenantID: "t1", Role: auth.RoleDirector, Email: "dir@example.com"}
	ann      = auth.UserContext{UserID: "u-ann", TenantID: "t1", Role: auth.RoleEmployee, Email: "ann@example.com", EmployeeID: "e1"}
)

func TestListMasksForNonHR(t *testing.T) {
	svc, _, rec := newFixture()
	ctx := context.Background()

	full, total, err := svc.List(ctx, hr, RequestMeta{}, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, "111122223333", full[0].BankAccount)
	require.NotNil(t, full[0].CTC)

	masked, _, err := svc.List(ctx, director, RequestMeta{}, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, "XXXXXX3333", masked[0].BankAccount)
	assert.Nil(t, masked[0].CTC)
	assert.Nil(t, masked[1].NetSalary)
	assert.Equal(t, "XXXXXX234F", masked[1].PAN)

	_, _, err = svc.List(ctx, ann, RequestMeta{}, 50, 0)
	assert.ErrorIs(t, err, auth.ErrForbidden)

	require.Len(t, rec.entries, 2)
	assert.Equal(t, audit.ActionEmployeeList, rec.entries[1].Action)
}

func TestGetRequiresHROrOwnership(t *testing.T) {
	svc, _, _ := newFixture()
	ctx := context.Background()

	e, err := svc.Get(ctx, ann, RequestMeta{}, "e1")
	require.NoError(t, err)
	assert.Equal(t, "111122223333", e.BankAccount, "own record is not masked")

	_, err = svc.Get(ctx, ann, RequestMeta{}, "e2")
	assert.ErrorIs(t, err, auth.ErrForbidden)

	_, err = svc.Get(ctx, director, RequestMeta{}, "e1")
	assert.ErrorIs(t, err, auth.ErrForbidden)

	_, err = svc.Get(ctx, hr, RequestMeta{}, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(ctx, director, RequestMeta{}, "missing")
	assert.ErrorIs(t, err, auth.ErrForbidden)

	byEmail := auth.UserContext{UserID: "u-bob", TenantID: "t1", Role: auth.RoleEmployee, Email: "BOB@example.com"}
	_, err = svc.Get(ctx, byEmail, RequestMeta{}, "e2")
	assert.NoError(t, err)
}

func TestCreateDuplicateCode(t *testing.T) {
	svc, _, _ := newFixture()
	_, err := svc.Create(context.Background(), hr, RequestMeta{}, NewEmployee{EmployeeCode: "E001", FirstName: "X", Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateCode)

	_, err = svc.Create(context.Background(), director, RequestMeta{}, NewEmployee{EmployeeCode: "E009"})
	assert.ErrorIs(t, err, auth.ErrForbidden)
}

func TestCompensationHistory(t *testing.T) {
	svc, _, _ := newFixture()
	history, err := svc.Compensation(context.Background(), ann, RequestMeta{}, "e1")
	require.NoError(t, err)
	require.NotNil(t, history.Current)
	assert.Equal(t, "c2", history.Current.ID, "future-dated rows are not yet in force")
	assert.Len(t, history.History, 3)
}

func TestAddCompensationValidatesComponents(t *testing.T) {
	svc, _, _ := newFixture()
	_, err := svc.AddCompensation(context.Background(), hr, RequestMeta{}, "e1", NewCompensation{
		EffectiveFrom: date(2026, 1, 1), CTC: 100, Basic: 90, HRA: 20,
	})
	assert.ErrorIs(t, err, ErrInvalidCompensation)

	_, err = svc.AddCompensation(context.Background(), ann, RequestMeta{}, "e1", NewCompensation{CTC: 100})
	assert.ErrorIs(t, err, auth.ErrForbidden)

	c, err := svc.AddCompensation(context.Background(), hr, RequestMeta{}, "e1", NewCompensation{
		EffectiveFrom: date(2026, 1, 1), CTC: 1200000, Basic: 50000,
	})
	require.NoError(t, err)
	assert.Equal(t, "c-new", c.ID)
}

func TestEffective(t *testing.T) {
	history := []Compensation{
		{ID: "a", EffectiveFrom: date(2025, 1, 1)},
		{ID: "b", EffectiveFrom: date(2025, 6, 1)},
	}
	assert.Nil(t, Effective(history, date(2024, 12, 31)))
	assert.Equal(t, "a", Effective(history, date(2025, 5, 31)).ID)
	assert.Equal(t, "b", Effective(history, date(2025, 6, 1)).ID)
}
