package leave

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"payrollsuite/internal/platform/db"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

const requestColumns = `id::text, employee_id::text, leave_type, start_date, end_date, days, reason, status,
  COALESCE(approver_id::text, ''), decided_at, created_at`

func scanRequest(row pgx.Row) (Request, error) {
	var r Request
	err := row.Scan(&r.ID, &r.EmployeeID, &r.LeaveType, &r.StartDate, &r.EndDate, &r.Days, &r.Reason, &r.Status,
		&r.ApproverID, &r.DecidedAt, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrNotFound
	}
	return r, err
}

func (s *Store) CreateRequest(ctx context.Context, tenantID, employeeID string, input NewRequest) (Request, error) {
	var out Request
	err := db.WithTenant(ctx, s.DB, tenantID, func(ctx context.Context) error {
		r, err := scanRequest(db.Conn(ctx, s.DB).QueryRow(ctx, `
      INSERT INTO leave_requests (tenant_id, employee_id, leave_type, start_date, end_date, days, reason)
      VALUES ($1,$2,$3,$4,$5,$6,$7)
      RETURNING `+requestColumns,
			tenantID, employeeID, input.LeaveType, input.StartDate, input.EndDate, input.Days, input.Reason))
		out = r
		return err
	})
	return out, err
}

func (s *Store) ListRequests(ctx context.Context, tenantID, employeeID string, limit, offset int) ([]Request, error) {
	out := []Request{}
	err := db.WithTenant(ctx, s.DB, tenantID, func(ctx context.Context) error {
		rows, err := db.Conn(ctx, s.DB).Query(ctx, `
      SELECT `+requestColumns+`
      FROM leave_requests
      WHERE tenant_id = $1 AND employee_id::text = $2
      ORDER BY start_date DESC
      LIMIT $3 OFFSET $4`, tenantID, employeeID, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			r, err := scanRequest(rows)
			if err != nil {
				return err
			}
			out = append(out, r)
		}
		return rows.Err()
	})
	return out, err
}

func (s *Store) GetRequest(ctx context.Context, tenantID, requestID string) (Request, error) {
	var out Request
	err := db.WithTenant(ctx, s.DB, tenantID, func(ctx context.Context) error {
		r, err := scanRequest(db.Conn(ctx, s.DB).QueryRow(ctx, `
      SELECT `+requestColumns+` FROM leave_requests WHERE tenant_id = $1 AND id::text = $2`, tenantID, requestID))
		out = r
		return err
	})
	return out, err
}

// Decide moves a pending request to status. A request that is no longer
// pending yields a StateError naming its current status.
func (s *Store) Decide(ctx context.Context, tenantID, requestID, approverID, status string) (Request, error) {
	var out Request
	err := db.WithTenant(ctx, s.DB, tenantID, func(ctx context.Context) error {
		q := db.Conn(ctx, s.DB)
		current, err := scanRequest(q.QueryRow(ctx, `
      SELECT `+requestColumns+` FROM leave_requests WHERE tenant_id = $1 AND id::text = $2 FOR UPDATE`, tenantID, requestID))
		if err != nil {
			return err
		}
		if current.Status != StatusPending {
			return &StateError{Current: current.Status}
		}
		out, err = scanRequest(q.QueryRow(ctx, `
      UPDATE leave_requests
      SET status = $3, approver_id = NULLIF($4, '')::uuid, decided_at = now()
      WHERE tenant_id = $1 AND id::text = $2
      RETURNING `+requestColumns, tenantID, requestID, status, approverID))
		return err
	})
	return out, err
}

func (s *Store) Summary(ctx context.Context, tenantID, employeeID string, year int) ([]SummaryRow, error) {
	out := []SummaryRow{}
	err := db.WithTenant(ctx, s.DB, tenantID, func(ctx context.Context) error {
		rows, err := db.Conn(ctx, s.DB).Query(ctx, `
      SELECT leave_type, status, COALESCE(SUM(days), 0), COUNT(1)
      FROM leave_requests
      WHERE tenant_id = $1 AND employee_id::text = $2 AND EXTRACT(YEAR FROM start_date) = $3
      GROUP BY leave_type, status
      ORDER BY leave_type, status`, tenantID, employeeID, year)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var row SummaryRow
			if err := rows.Scan(&row.LeaveType, &row.Status, &row.Days, &row.Count); err != nil {
				return err
			}
			out = append(out, row)
		}
		return rows.Err()
	})
	return out, err
}

func (s *Store) Attendance(ctx context.Context, tenantID, employeeID string, from, to time.Time) ([]AttendanceRecord, error) {
	out := []AttendanceRecord{}
	err := db.WithTenant(ctx, s.DB, tenantID, func(ctx context.Context) error {
		rows, err := db.Conn(ctx, s.DB).Query(ctx, `
      SELECT id::text, employee_id::text, date, status, is_lop
      FROM attendance_records
      WHERE tenant_id = $1 AND employee_id::text = $2 AND date BETWEEN $3 AND $4
      ORDER BY date`, tenantID, employeeID, from, to)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var rec AttendanceRecord
			if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.Date, &rec.Status, &rec.IsLOP); err != nil {
				return err
			}
			out = append(out, rec)
		}
		return rows.Err()
	})
	return out, err
}

// LOPRequests lists approved loss-of-pay requests overlapping [from, to].
func (s *Store) LOPRequests(ctx context.Context, tenantID string, from, to time.Time) ([]LOPRequest, error) {
	out := []LOPRequest{}
	err := db.WithTenant(ctx, s.DB, tenantID, func(ctx context.Context) error {
		rows, err := db.Conn(ctx, s.DB).Query(ctx, `
      SELECT employee_id::text, start_date, end_date, days
      FROM leave_requests
      WHERE tenant_id = $1 AND leave_type = $2 AND status = $3
        AND start_date <= $5 AND end_date >= $4`,
			tenantID, TypeLossOfPay, StatusApproved, from, to)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var r LOPRequest
			if err := rows.Scan(&r.EmployeeID, &r.StartDate, &r.EndDate, &r.Days); err != nil {
				return err
			}
			out = append(out, r)
		}
		return rows.Err()
	})
	return out, err
}

func (s *Store) LOPMarks(ctx context.Context, tenantID string, from, to time.Time) ([]LOPMark, error) {
	out := []LOPMark{}
	err := db.WithTenant(ctx, s.DB, tenantID, func(ctx context.Context) error {
		rows, err := db.Conn(ctx, s.DB).Query(ctx, `
      SELECT employee_id::text, date
      FROM attendance_records
      WHERE tenant_id = $1 AND is_lop AND date BETWEEN $2 AND $3`, tenantID, from, to)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var m LOPMark
			if err := rows.Scan(&m.EmployeeID, &m.Date); err != nil {
				return err
			}
			out = append(out, m)
		}
		return rows.Err()
	})
	return out, err
}
