package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

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

const userColumns = `id::text, email, name, org_id::text, COALESCE(hr_user_id, ''), role, payroll_role,
  COALESCE(pin_hash, ''), pin_set_at, last_login, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.OrgID, &u.HRUserID, &u.Role, &u.PayrollRole,
		&u.PINHash, &u.PINSetAt, &u.LastLogin, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return u, err
}

// ResolveTenant accepts either the local tenant id or the HR portal's org id.
func (s *Store) ResolveTenant(ctx context.Context, orgID string) (string, error) {
	var tenantID string
	err := db.Conn(ctx, s.DB).QueryRow(ctx, `
    SELECT id::text FROM tenants
    WHERE id::text = $1 OR hr_org_id = $1
    ORDER BY (id::text = $1) DESC
    LIMIT 1
  `, orgID).Scan(&tenantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrTenantNotFound
	}
	return tenantID, err
}

// UpsertFromSSO reconciles a verified SSO identity with the users table. The
// lookup and write share one transaction serialized per external id and per
// email, always locked in that order.
func (s *Store) UpsertFromSSO(ctx context.Context, p SSOProfile) (User, string, error) {
	var (
		out     User
		outcome string
	)
	err := db.InTx(ctx, s.DB, func(ctx context.Context) error {
		q := db.Conn(ctx, s.DB)
		if _, err := q.Exec(ctx, "SELECT pg_advisory_xact_lock(1, hashtext($1))", p.HRUserID); err != nil {
			return fmt.Errorf("lock external id: %w", err)
		}
		if _, err := q.Exec(ctx, "SELECT pg_advisory_xact_lock(2, hashtext(lower($1)))", p.Email); err != nil {
			return fmt.Errorf("lock email: %w", err)
		}

		user, err := scanUser(q.QueryRow(ctx, `
      UPDATE users
      SET email = $2, name = $3, org_id = $4, role = $5, payroll_role = $6, updated_at = now()
      WHERE hr_user_id = $1
      RETURNING `+userColumns,
			p.HRUserID, p.Email, p.Name, p.TenantID, p.Role, p.PayrollRole))
		if err == nil {
			out, outcome = user, ProvisionUpdated
			return nil
		}
		if !errors.Is(err, ErrUserNotFound) {
			return fmt.Errorf("update by external id: %w", emailConflict(err))
		}

		existing, err := scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1) FOR UPDATE`, p.Email))
		switch {
		case err == nil:
			if existing.HRUserID != "" && existing.HRUserID != p.HRUserID {
				slog.Warn("sso relinking user to a different external id",
					"userId", existing.ID, "previousHrUserId", existing.HRUserID, "hrUserId", p.HRUserID)
			}
			user, err = scanUser(q.QueryRow(ctx, `
        UPDATE users
        SET hr_user_id = $2, name = $3, org_id = $4, role = $5, payroll_role = $6, updated_at = now()
        WHERE id = $1
        RETURNING `+userColumns,
				existing.ID, p.HRUserID, p.Name, p.TenantID, p.Role, p.PayrollRole))
			if err != nil {
				return fmt.Errorf("link by email: %w", err)
			}
			out, outcome = user, ProvisionLinked
			return nil
		case !errors.Is(err, ErrUserNotFound):
			return fmt.Errorf("lookup by email: %w", err)
		}

		user, err = scanUser(q.QueryRow(ctx, `
      INSERT INTO users (email, name, org_id, hr_user_id, role, payroll_role)
      VALUES ($1,$2,$3,$4,$5,$6)
      RETURNING `+userColumns,
			p.Email, p.Name, p.TenantID, p.HRUserID, p.Role, p.PayrollRole))
		if err != nil {
			return fmt.Errorf("insert user: %w", emailConflict(err))
		}
		out, outcome = user, ProvisionCreated
		return nil
	})
	return out, outcome, err
}

func emailConflict(err error) error {
	if db.IsUniqueViolation(err) {
		return ErrEmailInUse
	}
	return err
}

func (s *Store) FindByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(db.Conn(ctx, s.DB).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
}

func (s *Store) FindByID(ctx context.Context, id string) (User, error) {
	return scanUser(db.Conn(ctx, s.DB).QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id::text = $1`, id))
}

// SetPIN stores the hash only while none exists.
func (s *Store) SetPIN(ctx context.Context, userID, hash string) error {
	tag, err := db.Conn(ctx, s.DB).Exec(ctx, `
    UPDATE users SET pin_hash = $2, pin_set_at = now(), updated_at = now()
    WHERE id::text = $1 AND pin_hash IS NULL
  `, userID, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPINAlreadySet
	}
	return nil
}

func (s *Store) TouchLastLogin(ctx context.Context, userID string) error {
	_, err := db.Conn(ctx, s.DB).Exec(ctx, "UPDATE users SET last_login = now() WHERE id::text = $1", userID)
	return err
}

func (s *Store) EmployeeIDForEmail(ctx context.Context, tenantID, email string) (string, error) {
	var id string
	err := db.WithTenant(ctx, s.DB, tenantID, func(ctx context.Context) error {
		return db.Conn(ctx, s.DB).QueryRow(ctx, `
      SELECT id::text FROM employees WHERE tenant_id::text = $1 AND lower(email) = lower($2)
    `, tenantID, email).Scan(&id)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return id, err
}
