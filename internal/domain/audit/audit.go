package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"payrollsuite/internal/platform/db"
)

const (
	ActionSSOLogin            = "auth.sso_login"
	ActionPINSetup            = "auth.pin_setup"
	ActionPINLogin            = "auth.pin_login"
	ActionEmployeeList        = "employee.list"
	ActionEmployeeRead        = "employee.read"
	ActionEmployeeCreate      = "employee.create"
	ActionCompensationRead    = "compensation.read"
	ActionCompensationCreate  = "compensation.create"
	ActionCycleCreate         = "payroll_cycle.create"
	ActionCycleSubmit         = "payroll_cycle.submit"
	ActionCycleApprove        = "payroll_cycle.approve"
	ActionCycleReject         = "payroll_cycle.reject"
	ActionCycleProcess        = "payroll_cycle.process"
	ActionCyclePreview        = "payroll_cycle.preview"
	ActionPayslipsRead        = "payslip.list"
	ActionPayslipDownload     = "payslip.download"
	ActionRegisterExport      = "payroll_register.export"
	ActionSettingsUpdate      = "payroll_settings.update"
	ActionLeaveRequest        = "leave.request"
	ActionLeaveApprove        = "leave.approve"
	ActionLeaveReject         = "leave.reject"
	ActionTaxDeclarationWrite = "tax_declaration.upsert"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Entry is one audit record to append.
type Entry struct {
	TenantID   string
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	RequestID  string
	IP         string
	Details    any
}

type Filter struct {
	Action     string
	EntityType string
	ActorUser  string
}

// Recorder appends audit entries without failing the caller.
type Recorder interface {
	Log(ctx context.Context, entry Entry)
}

type Service struct {
	DB *pgxpool.Pool
	// OnFailure is invoked whenever a write is dropped.
	OnFailure func()
}

func New(pool *pgxpool.Pool) *Service {
	return &Service{DB: pool}
}

func (s *Service) Record(ctx context.Context, e Entry) error {
	var details []byte
	if e.Details != nil {
		payload, err := json.Marshal(e.Details)
		if err != nil {
			return err
		}
		details = payload
	}

	return db.WithTenant(ctx, s.DB, e.TenantID, func(ctx context.Context) error {
		_, err := db.Conn(ctx, s.DB).Exec(ctx, `
      INSERT INTO audit_logs (tenant_id, actor_id, action, entity_type, entity_id, details_json, request_id, ip)
      VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7, $8)
    `, e.TenantID, e.ActorID, e.Action, e.EntityType, e.EntityID, details, e.RequestID, e.IP)
		return err
	})
}

// Log writes e and swallows failures after logging them.
func (s *Service) Log(ctx context.Context, e Entry) {
	if err := s.Record(ctx, e); err != nil {
		slog.Warn("audit log failed", "action", e.Action, "tenantId", e.TenantID, "err", err)
		if s.OnFailure != nil {
			s.OnFailure()
		}
	}
}

func (s *Service) Count(ctx context.Context, tenantID string, filter Filter) (int, error) {
	query, args := buildBaseQuery("SELECT COUNT(1)", tenantID, filter)
	var total int
	err := db.WithTenant(ctx, s.DB, tenantID, func(ctx context.Context) error {
		return db.Conn(ctx, s.DB).QueryRow(ctx, query, args...).Scan(&total)
	})
	return total, err
}

func (s *Service) List(ctx context.Context, tenantID string, filter Filter, includeDetails bool, limit, offset int) ([]Event, error) {
	selectCols := "id::text, COALESCE(actor_id::text, ''), action, entity_type, entity_id, request_id, ip, created_at"
	if includeDetails {
		selectCols += ", details_json"
	}
	query, args := buildBaseQuery("SELECT "+selectCols, tenantID, filter)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	out := []Event{}
	err := db.WithTenant(ctx, s.DB, tenantID, func(ctx context.Context) error {
		rows, err := db.Conn(ctx, s.DB).Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var evt Event
			dest := []any{&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt}
			if includeDetails {
				dest = append(dest, &evt.Details)
			}
			if err := rows.Scan(dest...); err != nil {
				return err
			}
			out = append(out, evt)
		}
		return rows.Err()
	})
	return out, err
}

func buildBaseQuery(prefix, tenantID string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_logs WHERE tenant_id::text = $1"
	args := []any{tenantID}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", len(args)+1)
		args = append(args, filter.Action)
	}
	if filter.EntityType != "" {
		query += fmt.Sprintf(" AND entity_type = $%d", len(args)+1)
		args = append(args, filter.EntityType)
	}
	if filter.ActorUser != "" {
		query += fmt.Sprintf(" AND actor_id::text = $%d", len(args)+1)
		args = append(args, filter.ActorUser)
	}
	return query, args
}
