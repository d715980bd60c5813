package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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

func (s *Store) InTenant(ctx context.Context, tenantID string, fn func(ctx context.Context) error) error {
	return db.WithTenant(ctx, s.DB, tenantID, fn)
}

func (s *Store) Settings(ctx context.Context, tenantID string) (Settings, error) {
	out := DefaultSettings()
	err := s.InTenant(ctx, tenantID, func(ctx context.Context) error {
		err := db.Conn(ctx, s.DB).QueryRow(ctx, `
      SELECT pf_rate, pt_rate, tds_threshold, updated_at
      FROM payroll_settings WHERE tenant_id = $1`, tenantID).
			Scan(&out.PFRate, &out.PTRate, &out.TDSThreshold, &out.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			out = DefaultSettings()
			return nil
		}
		return err
	})
	return out, err
}

func (s *Store) SaveSettings(ctx context.Context, tenantID string, in Settings) (Settings, error) {
	var out Settings
	err := s.InTenant(ctx, tenantID, func(ctx context.Context) error {
		return db.Conn(ctx, s.DB).QueryRow(ctx, `
      INSERT INTO payroll_settings (tenant_id, pf_rate, pt_rate, tds_threshold)
      VALUES ($1,$2,$3,$4)
      ON CONFLICT (tenant_id) DO UPDATE
      SET pf_rate = EXCLUDED.pf_rate, pt_rate = EXCLUDED.pt_rate,
          tds_threshold = EXCLUDED.tds_threshold, updated_at = now()
      RETURNING pf_rate, pt_rate, tds_threshold, updated_at`,
			tenantID, in.PFRate, in.PTRate, in.TDSThreshold).
			Scan(&out.PFRate, &out.PTRate, &out.TDSThreshold, &out.UpdatedAt)
	})
	return out, err
}

const cycleColumns = `id::text, tenant_id::text, month, year, status, total_amount, employee_count,
  COALESCE(created_by::text, ''), submitted_at, COALESCE(approved_by::text, ''), approved_at, processed_at, created_at`

func scanCycle(row pgx.Row) (Cycle, error) {
	var c Cycle
	err := row.Scan(&c.ID, &c.TenantID, &c.Month, &c.Year, &c.Status, &c.TotalAmount, &c.EmployeeCount,
		&c.CreatedBy, &c.SubmittedAt, &c.ApprovedBy, &c.ApprovedAt, &c.ProcessedAt, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Cycle{}, ErrCycleNotFound
	}
	return c, err
}

func (s *Store) CreateCycle(ctx context.Context, tenantID string, month, year int, createdBy string) (Cycle, error) {
	var out Cycle
	err := s.InTenant(ctx, tenantID, func(ctx context.Context) error {
		c, err := scanCycle(db.Conn(ctx, s.DB).QueryRow(ctx, `
      INSERT INTO payroll_cycles (tenant_id, month, year, created_by)
      VALUES ($1,$2,$3,NULLIF($4, '')::uuid)
      RETURNING `+cycleColumns, tenantID, month, year, createdBy))
		if db.IsUniqueViolation(err) {
			return ErrDuplicateCycle
		}
		out = c
		return err
	})
	return out, err
}

func (s *Store) CountCycles(ctx context.Context, tenantID string) (int, error) {
	var total int
	err := s.InTenant(ctx, tenantID, func(ctx context.Context) error {
		return db.Conn(ctx, s.DB).QueryRow(ctx, "SELECT COUNT(1) FROM payroll_cycles WHERE tenant_id = $1", tenantID).Scan(&total)
	})
	return total, err
}

func (s *Store) ListCycles(ctx context.Context, tenantID string, limit, offset int) ([]Cycle, error) {
	out := []Cycle{}
	err := s.InTenant(ctx, tenantID, func(ctx context.Context) error {
		rows, err := db.Conn(ctx, s.DB).Query(ctx, `
      SELECT `+cycleColumns+`
      FROM payroll_cycles
      WHERE tenant_id = $1
      ORDER BY year DESC, month DESC
      LIMIT $2 OFFSET $3`, tenantID, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			c, err := scanCycle(rows)
			if err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	return out, err
}

func (s *Store) GetCycle(ctx context.Context, tenantID, cycleID string, forUpdate bool) (Cycle, error) {
	query := `SELECT ` + cycleColumns + ` FROM payroll_cycles WHERE tenant_id = $1 AND id::text = $2`
	if forUpdate {
		query += " FOR UPDATE"
	}
	var out Cycle
	err := s.InTenant(ctx, tenantID, func(ctx context.Context) error {
		c, err := scanCycle(db.Conn(ctx, s.DB).QueryRow(ctx, query, tenantID, cycleID))
		out = c
		return err
	})
	return out, err
}

// AutoComplete closes every non-terminal cycle whose month is before now's.
func (s *Store) AutoComplete(ctx context.Context, tenantID string, now time.Time) (int64, error) {
	var affected int64
	err := s.InTenant(ctx, tenantID, func(ctx context.Context) error {
		tag, err := db.Conn(ctx, s.DB).Exec(ctx, `
      UPDATE payroll_cycles
      SET status = $2, processed_at = COALESCE(processed_at, now()), updated_at = now()
      WHERE tenant_id = $1
        AND status NOT IN ($2, $3)
        AND (year, month) < ($4::int, $5::int)`,
			tenantID, StatusCompleted, StatusFailed, now.Year(), int(now.Month()))
		affected = tag.RowsAffected()
		return err
	})
	return affected, err
}

// SetStatus stamps the timestamp that belongs to the new status.
func (s *Store) SetStatus(ctx context.Context, tenantID, cycleID, status, actorID string) (Cycle, error) {
	var out Cycle
	err := s.InTenant(ctx, tenantID, func(ctx context.Context) error {
		c, err := scanCycle(db.Conn(ctx, s.DB).QueryRow(ctx, `
      UPDATE payroll_cycles
      SET status = $3,
          submitted_at = CASE WHEN $3 = 'pending_approval' THEN now() ELSE submitted_at END,
          approved_by = CASE WHEN $3 = 'approved' THEN NULLIF($4, '')::uuid
                             WHEN $3 = 'draft' THEN NULL ELSE approved_by END,
          approved_at = CASE WHEN $3 = 'approved' THEN now()
                             WHEN $3 = 'draft' THEN NULL ELSE approved_at END,
          processed_at = CASE WHEN $3 IN ('completed', 'failed') THEN now() ELSE processed_at END,
          updated_at = now()
      WHERE tenant_id = $1 AND id::text = $2
      RETURNING `+cycleColumns, tenantID, cycleID, status, actorID))
		out = c
		return err
	})
	return out, err
}

func (s *Store) ReplaceItems(ctx context.Context, tenantID, cycleID string, lines []Line) error {
	return s.InTenant(ctx, tenantID, func(ctx context.Context) error {
		q := db.Conn(ctx, s.DB)
		if _, err := q.Exec(ctx, "DELETE FROM payroll_items WHERE tenant_id = $1 AND payroll_cycle_id::text = $2", tenantID, cycleID); err != nil {
			return fmt.Errorf("clear items: %w", err)
		}
		for _, l := range lines {
			warnings, err := json.Marshal(l.Warnings)
			if err != nil {
				return err
			}
			if _, err := q.Exec(ctx, `
        INSERT INTO payroll_items (tenant_id, payroll_cycle_id, employee_id, total_working_days, lop_days, paid_days,
                                   basic, hra, special_allowance, gross_salary, pf, esi, pt, tds,
                                   total_deductions, net_salary, warnings_json)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
				tenantID, cycleID, l.EmployeeID, l.TotalWorkingDays, l.LOPDays, l.PaidDays,
				l.Basic, l.HRA, l.SpecialAllowance, l.GrossSalary, l.PF, l.ESI, l.PT, l.TDS,
				l.TotalDeductions, l.NetSalary, warnings); err != nil {
				return fmt.Errorf("insert item for employee %s: %w", l.EmployeeID, err)
			}
		}
		return nil
	})
}

func (s *Store) ClearItems(ctx context.Context, tenantID, cycleID string) error {
	return s.InTenant(ctx, tenantID, func(ctx context.Context) error {
		q := db.Conn(ctx, s.DB)
		if _, err := q.Exec(ctx, "DELETE FROM payroll_items WHERE tenant_id = $1 AND payroll_cycle_id::text = $2", tenantID, cycleID); err != nil {
			return err
		}
		_, err := q.Exec(ctx, `
      UPDATE payroll_cycles SET total_amount = 0, employee_count = 0, updated_at = now()
      WHERE tenant_id = $1 AND id::text = $2`, tenantID, cycleID)
		return err
	})
}

func (s *Store) SetTotals(ctx context.Context, tenantID, cycleID string, totals Aggregate) error {
	return s.InTenant(ctx, tenantID, func(ctx context.Context) error {
		_, err := db.Conn(ctx, s.DB).Exec(ctx, `
      UPDATE payroll_cycles SET total_amount = $3, employee_count = $4, updated_at = now()
      WHERE tenant_id = $1 AND id::text = $2`, tenantID, cycleID, totals.TotalNet, totals.EmployeeCount)
		return err
	})
}

// EmployeeInputs lists active employees with the compensation in force on asOf.
// Employees without one are left out.
func (s *Store) EmployeeInputs(ctx context.Context, tenantID string, asOf time.Time) ([]EmployeeInput, error) {
	out := []EmployeeInput{}
	err := s.InTenant(ctx, tenantID, func(ctx context.Context) error {
		rows, err := db.Conn(ctx, s.DB).Query(ctx, `
      SELECT e.id::text, e.employee_code, trim(e.first_name || ' ' || e.last_name), e.email,
             e.bank_account_enc, c.basic, c.hra, c.special_allowance
      FROM employees e
      JOIN LATERAL (
        SELECT basic, hra, special_allowance
        FROM compensation_structures cs
        WHERE cs.employee_id = e.id AND cs.effective_from <= $2
        ORDER BY cs.effective_from DESC
        LIMIT 1
      ) c ON true
      WHERE e.tenant_id = $1 AND e.status = 'active'
      ORDER BY e.employee_code`, tenantID, asOf)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var in EmployeeInput
			var bankEnc []byte
			if err := rows.Scan(&in.EmployeeID, &in.EmployeeCode, &in.EmployeeName, &in.Email,
				&bankEnc, &in.Basic, &in.HRA, &in.SpecialAllowance); err != nil {
				return err
			}
			in.HasBankAccount = len(bankEnc) > 0
			out = append(out, in)
		}
		return rows.Err()
	})
	return out, err
}

const payslipColumns = `id::text, payroll_cycle_id::text, employee_id::text, employee_code, employee_name, email,
  bank_account_enc, ifsc, pan_enc, month, year, cycle_status, total_working_days, lop_days, paid_days,
  basic, hra, special_allowance, gross_salary, pf, esi, pt, tds, total_deductions, net_salary, warnings_json`

func (s *Store) scanPayslip(row pgx.Row) (Payslip, error) {
	var p Payslip
	var bankEnc, panEnc, warnings []byte
	err := row.Scan(&p.ID, &p.CycleID, &p.EmployeeID, &p.EmployeeCode, &p.EmployeeName, &p.Email,
		&bankEnc, &p.IFSC, &panEnc, &p.Month, &p.Year, &p.CycleStatus, &p.TotalWorkingDays, &p.LOPDays, &p.PaidDays,
		&p.Basic, &p.HRA, &p.SpecialAllowance, &p.GrossSalary, &p.PF, &p.ESI, &p.PT, &p.TDS,
		&p.TotalDeductions, &p.NetSalary, &warnings)
	if err != nil {
		return Payslip{}, err
	}
	if p.BankAccount, err = s.Crypto.OpenString(bankEnc); err != nil {
		slog.Warn("decrypt bank account failed", "employeeId", p.EmployeeID, "err", err)
		p.BankAccount = ""
	}
	if p.PAN, err = s.Crypto.OpenString(panEnc); err != nil {
		slog.Warn("decrypt pan failed", "employeeId", p.EmployeeID, "err", err)
		p.PAN = ""
	}
	p.Warnings = []string{}
	if len(warnings) > 0 {
		if err := json.Unmarshal(warnings, &p.Warnings); err != nil {
			slog.Warn("payslip warnings unmarshal failed", "payslipId", p.ID, "err", err)
		}
	}
	return p, nil
}

func (s *Store) queryPayslips(ctx context.Context, tenantID, query string, args ...any) ([]Payslip, error) {
	out := []Payslip{}
	err := s.InTenant(ctx, tenantID, func(ctx context.Context) error {
		rows, err := db.Conn(ctx, s.DB).Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			p, err := s.scanPayslip(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	return out, err
}

func (s *Store) ItemsFull(ctx context.Context, tenantID, cycleID string) ([]Payslip, error) {
	return s.queryPayslips(ctx, tenantID, `SELECT `+payslipColumns+` FROM payroll_items_full($1::uuid, $2::uuid)`, tenantID, cycleID)
}

func (s *Store) ItemsForEmail(ctx context.Context, tenantID, email string) ([]Payslip, error) {
	return s.queryPayslips(ctx, tenantID, `SELECT `+payslipColumns+` FROM payroll_items_for_email($1::uuid, $2)`, tenantID, email)
}

func (s *Store) Item(ctx context.Context, tenantID, itemID string) (Payslip, error) {
	var out Payslip
	err := s.InTenant(ctx, tenantID, func(ctx context.Context) error {
		var cycleID string
		err := db.Conn(ctx, s.DB).QueryRow(ctx, `
      SELECT payroll_cycle_id::text FROM payroll_items WHERE tenant_id = $1 AND id::text = $2`,
			tenantID, itemID).Scan(&cycleID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPayslipNotFound
		}
		if err != nil {
			return err
		}
		p, err := s.scanPayslip(db.Conn(ctx, s.DB).QueryRow(ctx, `
      SELECT `+payslipColumns+` FROM payroll_items_full($1::uuid, $2::uuid) WHERE id::text = $3`,
			tenantID, cycleID, itemID))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPayslipNotFound
		}
		out = p
		return err
	})
	return out, err
}

func (s *Store) CycleAggregate(ctx context.Context, tenantID, cycleID string) (Aggregate, error) {
	var out Aggregate
	err := s.InTenant(ctx, tenantID, func(ctx context.Context) error {
		return db.Conn(ctx, s.DB).QueryRow(ctx, `
      SELECT employee_count, total_gross, total_deductions, total_net, average_net
      FROM payroll_cycle_aggregate($1::uuid, $2::uuid)`, tenantID, cycleID).
			Scan(&out.EmployeeCount, &out.TotalGross, &out.TotalDeductions, &out.TotalNet, &out.AverageNet)
	})
	return out, err
}

func (s *Store) TenantCounts(ctx context.Context, tenantID string) (TenantCounts, error) {
	var out TenantCounts
	err := s.InTenant(ctx, tenantID, func(ctx context.Context) error {
		q := db.Conn(ctx, s.DB)
		if err := q.QueryRow(ctx, `
      SELECT (SELECT COUNT(1) FROM employees WHERE tenant_id = $1 AND status = 'active'),
             (SELECT COUNT(1) FROM payroll_cycles WHERE tenant_id = $1)`, tenantID).
			Scan(&out.Employees, &out.Cycles); err != nil {
			return err
		}
		last, err := scanCycle(q.QueryRow(ctx, `
      SELECT `+cycleColumns+` FROM payroll_cycles
      WHERE tenant_id = $1
      ORDER BY year DESC, month DESC
      LIMIT 1`, tenantID))
		switch {
		case errors.Is(err, ErrCycleNotFound):
			return nil
		case err != nil:
			return err
		}
		out.Last = &last
		return nil
	})
	return out, err
}
