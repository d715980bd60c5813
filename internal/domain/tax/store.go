package tax

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"payrollsuite/internal/platform/db"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{DB: pool}
}

const declarationColumns = `id::text, employee_id::text, financial_year, section_80c, section_80d,
  hra_exemption, other_deductions, updated_at`

func (s *Store) ListDeclarations(ctx context.Context, tenantID, employeeID string) ([]Declaration, error) {
	out := []Declaration{}
	err := db.WithTenant(ctx, s.DB, tenantID, func(ctx context.Context) error {
		rows, err := db.Conn(ctx, s.DB).Query(ctx, `
      SELECT `+declarationColumns+`
      FROM tax_declarations
      WHERE tenant_id = $1 AND employee_id::text = $2
      ORDER BY financial_year DESC`, tenantID, employeeID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var d Declaration
			if err := rows.Scan(&d.ID, &d.EmployeeID, &d.FinancialYear, &d.Section80C, &d.Section80D,
				&d.HRAExemption, &d.OtherDeductions, &d.UpdatedAt); err != nil {
				return err
			}
			out = append(out, d)
		}
		return rows.Err()
	})
	return out, err
}

func (s *Store) UpsertDeclaration(ctx context.Context, tenantID, employeeID string, in DeclarationInput) (Declaration, error) {
	var d Declaration
	err := db.WithTenant(ctx, s.DB, tenantID, func(ctx context.Context) error {
		return db.Conn(ctx, s.DB).QueryRow(ctx, `
      INSERT INTO tax_declarations (tenant_id, employee_id, financial_year, section_80c, section_80d,
                                    hra_exemption, other_deductions)
      VALUES ($1,$2,$3,$4,$5,$6,$7)
      ON CONFLICT (employee_id, financial_year) DO UPDATE
      SET section_80c = EXCLUDED.section_80c, section_80d = EXCLUDED.section_80d,
          hra_exemption = EXCLUDED.hra_exemption, other_deductions = EXCLUDED.other_deductions,
          updated_at = now()
      RETURNING `+declarationColumns,
			tenantID, employeeID, in.FinancialYear, in.Section80C, in.Section80D, in.HRAExemption, in.OtherDeductions).
			Scan(&d.ID, &d.EmployeeID, &d.FinancialYear, &d.Section80C, &d.Section80D,
				&d.HRAExemption, &d.OtherDeductions, &d.UpdatedAt)
	})
	return d, err
}

func (s *Store) ListDocuments(ctx context.Context, tenantID, employeeID, financialYear string) ([]Document, error) {
	query := `
    SELECT id::text, employee_id::text, financial_year, document_type, file_url, created_at
    FROM tax_documents
    WHERE tenant_id = $1 AND employee_id::text = $2`
	args := []any{tenantID, employeeID}
	if financialYear != "" {
		query += " AND financial_year = $3"
		args = append(args, financialYear)
	}
	query += " ORDER BY created_at DESC"

	out := []Document{}
	err := db.WithTenant(ctx, s.DB, tenantID, func(ctx context.Context) error {
		rows, err := db.Conn(ctx, s.DB).Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var d Document
			if err := rows.Scan(&d.ID, &d.EmployeeID, &d.FinancialYear, &d.DocumentType, &d.FileURL, &d.CreatedAt); err != nil {
				return err
			}
			out = append(out, d)
		}
		return rows.Err()
	})
	return out, err
}
