package employee

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"payrollsuite/internal/platform/crypto"
	"payrollsuite/internal/platform/db"
)

type Store struct {
	DB     *pgxpool.Pool
	Crypto *crypto.Service
}

func NewStore(pool *pgxpool.Pool, sealer *crypto.Service) *Store {
	return &Store{DB: pool, Crypto: sealer}
}

// employeeSelect joins the compensation in force today and the latest
// payroll net so HR reads carry every figure masking has to strip.
const employeeSelect = `
  SELECT e.id::text, e.tenant_id::text, e.employee_code, e.first_name, e.last_name, e.email,
         e.department, e.designation, e.bank_account_enc, e.ifsc, e.pan_enc, e.aadhaar_enc,
         c.ctc, c.basic, c.basic + c.hra + c.special_allowance, n.net_salary,
         e.status, e.joined_on, e.created_at, e.updated_at
  FROM employees e
  LEFT JOIN LATERAL (
    SELECT ctc, basic, hra, special_allowance
    FROM compensation_structures cs
    WHERE cs.employee_id = e.id AND cs.effective_from <= CURRENT_DATE
    ORDER BY cs.effective_from DESC
    LIMIT 1
  ) c ON true
  LEFT JOIN LATERAL (
    SELECT pi.net_salary
    FROM payroll_items pi
    JOIN payroll_cycles pc ON pc.id = pi.payroll_cycle_id
    WHERE pi.employee_id = e.id
    ORDER BY pc.year DESC, pc.month DESC
    LIMIT 1
  ) n ON true`

func (s *Store) scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	var bankEnc, panEnc, aadhaarEnc []byte
	err := row.Scan(&e.ID, &e.TenantID, &e.EmployeeCode, &e.FirstName, &e.LastName, &e.Email,
		&e.Department, &e.Designation, &bankEnc, &e.IFSC, &panEnc, &aadhaarEnc,
		&e.CTC, &e.BasicSalary, &e.GrossSalary, &e.NetSalary,
		&e.Status, &e.JoinedOn, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return Employee{}, err
	}
	e.BankAccount = s.open(bankEnc, e.ID, "bank_account")
	e.PAN = s.open(panEnc, e.ID, "pan")
	e.Aadhaar = s.open(aadhaarEnc, e.ID, "aadhaar")
	return e, nil
}

func (s *Store) open(value []byte, employeeID, field string) string {
	plain, err := s.Crypto.OpenString(value)
	if err != nil {
		slog.Warn("decrypt employee field failed", "employeeId", employeeID, "field", field, "err", err)
		return ""
	}
	return plain
}

func (s *Store) Count(ctx context.Context, tenantID string) (int, error) {
	var total int
	err := db.WithTenant(ctx, s.DB, tenantID, func(ctx context.Context) error {
		return db.Conn(ctx, s.DB).QueryRow(ctx, "SELECT COUNT(1) FROM employees WHERE tenant_id = $1", tenantID).Scan(&total)
	})
	return total, err
}

func (s *Store) List(ctx context.Context, tenantID string, limit, offset int) ([]Employee, error) {
	out := []Employee{}
	err := db.WithTenant(ctx, s.DB, tenantID, func(ctx context.Context) error {
		rows, err := db.Conn(ctx, s.DB).Query(ctx, employeeSelect+`
      WHERE e.tenant_id = $1
      ORDER BY e.employee_code
      LIMIT $2 OFFSET $3`, tenantID, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			e, err := s.scanEmployee(rows)
			if err != nil {
				return err
			}
			out = append(out, e)
		}
		return rows.Err()
	})
	return out, err
}

func (s *Store) Get(ctx context.Context, tenantID, employeeID string) (Employee, error) {
	var out Employee
	err := db.WithTenant(ctx, s.DB, tenantID, func(ctx context.Context) error {
		e, err := s.scanEmployee(db.Conn(ctx, s.DB).QueryRow(ctx, employeeSelect+`
      WHERE e.tenant_id = $1 AND e.id::text = $2`, tenantID, employeeID))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		out = e
		return err
	})
	return out, err
}

func (s *Store) Create(ctx context.Context, tenantID string, input NewEmployee) (Employee, error) {
	bankEnc, err := s.Crypto.SealString(input.BankAccount)
	if err != nil {
		return Employee{}, err
	}
	panEnc, err := s.Crypto.SealString(input.PAN)
	if err != nil {
		return Employee{}, err
	}
	aadhaarEnc, err := s.Crypto.SealString(input.Aadhaar)
	if err != nil {
		return Employee{}, err
	}

	var out Employee
	err = db.WithTenant(ctx, s.DB, tenantID, func(ctx context.Context) error {
		var id string
		err := db.Conn(ctx, s.DB).QueryRow(ctx, `
      INSERT INTO employees (tenant_id, employee_code, first_name, last_name, email, department, designation,
                             bank_account_enc, ifsc, pan_enc, aadhaar_enc, joined_on)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
      RETURNING id::text
    `, tenantID, input.EmployeeCode, input.FirstName, input.LastName, input.Email, input.Department,
			input.Designation, bankEnc, input.IFSC, panEnc, aadhaarEnc, input.JoinedOn).Scan(&id)
		if db.IsUniqueViolation(err) {
			return ErrDuplicateCode
		}
		if err != nil {
			return err
		}
		out, err = s.Get(ctx, tenantID, id)
		return err
	})
	return out, err
}

const compensationColumns = `id::text, employee_id::text, effective_from, ctc, basic, hra, special_allowance, created_at`

func scanCompensation(row pgx.Row) (Compensation, error) {
	var c Compensation
	err := row.Scan(&c.ID, &c.EmployeeID, &c.EffectiveFrom, &c.CTC, &c.Basic, &c.HRA, &c.SpecialAllowance, &c.CreatedAt)
	return c, err
}

func (s *Store) ListCompensation(ctx context.Context, tenantID, employeeID string) ([]Compensation, error) {
	out := []Compensation{}
	err := db.WithTenant(ctx, s.DB, tenantID, func(ctx context.Context) error {
		rows, err := db.Conn(ctx, s.DB).Query(ctx, `
      SELECT `+compensationColumns+`
      FROM compensation_structures
      WHERE tenant_id = $1 AND employee_id::text = $2
      ORDER BY effective_from DESC`, tenantID, employeeID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			c, err := scanCompensation(rows)
			if err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	return out, err
}

// EffectiveCompensation returns nil when nothing has taken effect by at.
func (s *Store) EffectiveCompensation(ctx context.Context, tenantID, employeeID string, at time.Time) (*Compensation, error) {
	var out *Compensation
	err := db.WithTenant(ctx, s.DB, tenantID, func(ctx context.Context) error {
		c, err := scanCompensation(db.Conn(ctx, s.DB).QueryRow(ctx, `
      SELECT `+compensationColumns+`
      FROM compensation_structures
      WHERE tenant_id = $1 AND employee_id::text = $2 AND effective_from <= $3
      ORDER BY effective_from DESC
      LIMIT 1`, tenantID, employeeID, at))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		out = &c
		return nil
	})
	return out, err
}

func (s *Store) CreateCompensation(ctx context.Context, tenantID, employeeID string, input NewCompensation) (Compensation, error) {
	var out Compensation
	err := db.WithTenant(ctx, s.DB, tenantID, func(ctx context.Context) error {
		c, err := scanCompensation(db.Conn(ctx, s.DB).QueryRow(ctx, `
      INSERT INTO compensation_structures (tenant_id, employee_id, effective_from, ctc, basic, hra, special_allowance)
      SELECT $1, e.id, $3, $4, $5, $6, $7
      FROM employees e
      WHERE e.tenant_id = $1 AND e.id::text = $2
      RETURNING `+compensationColumns,
			tenantID, employeeID, input.EffectiveFrom, input.CTC, input.Basic, input.HRA, input.SpecialAllowance))
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return ErrNotFound
		case db.IsUniqueViolation(err):
			return ErrDuplicateCompensation
		}
		out = c
		return err
	})
	return out, err
}
