package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"payrollsuite/internal/platform/config"
)

// Seed makes sure the configured tenant and its payroll settings row exist.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	tenantID, err := ensureTenant(ctx, pool, cfg.SeedTenantName, cfg.SeedTenantHROrgID)
	if err != nil {
		return err
	}
	return WithTenant(ctx, pool, tenantID, func(ctx context.Context) error {
		_, err := Conn(ctx, pool).Exec(ctx, "INSERT INTO payroll_settings (tenant_id) VALUES ($1) ON CONFLICT (tenant_id) DO NOTHING", tenantID)
		return err
	})
}

func ensureTenant(ctx context.Context, pool *pgxpool.Pool, name, hrOrgID string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM tenants WHERE name = $1", name).Scan(&id)
	if err == nil {
		if strings.TrimSpace(hrOrgID) != "" {
			_, err = pool.Exec(ctx, "UPDATE tenants SET hr_org_id = $1 WHERE id = $2 AND hr_org_id IS NULL", hrOrgID, id)
		}
		return id, err
	}
	if !IsNoRows(err) {
		return "", err
	}

	err = pool.QueryRow(ctx, "INSERT INTO tenants (name, hr_org_id) VALUES ($1, NULLIF($2, '')) RETURNING id", name, hrOrgID).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}
