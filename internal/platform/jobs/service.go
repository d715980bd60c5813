package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const JobPayrollAutoComplete = "payroll_auto_complete"

// Sweeper closes the stale payroll cycles of one tenant.
type Sweeper interface {
	AutoCompleteTenant(ctx context.Context, tenantID string) (int64, error)
}

type Service struct {
	DB       *pgxpool.Pool
	Payroll  Sweeper
	Interval time.Duration

	queue       chan job
	listTenants func(context.Context) ([]string, error)
}

type job struct {
	Type     string
	TenantID string
	Run      func(context.Context) (any, error)
}

func New(db *pgxpool.Pool, payroll Sweeper, interval time.Duration) *Service {
	s := &Service{
		DB:       db,
		Payroll:  payroll,
		Interval: interval,
		queue:    make(chan job, 128),
	}
	s.listTenants = s.queryTenants
	return s
}

// Start runs the worker and, when Interval is positive, the auto-complete
// schedule. Both stop with ctx.
func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
	if s.Interval > 0 {
		go s.scheduleAutoComplete(ctx, s.Interval)
	}
}

func (s *Service) Enqueue(jobType, tenantID string, run func(context.Context) (any, error)) {
	select {
	case s.queue <- job{Type: jobType, TenantID: tenantID, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType, "tenantId", tenantID)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType, tenantID string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, TenantID: tenantID, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "tenantId", j.TenantID, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (any, error) {
	runID := s.startRun(ctx, j)

	details, err := j.Run(ctx)
	status := "completed"
	if err != nil {
		status = "failed"
	}
	s.finishRun(ctx, runID, status, details)
	return details, err
}

func (s *Service) startRun(ctx context.Context, j job) string {
	if s.DB == nil {
		return ""
	}
	var tenant any
	if j.TenantID != "" {
		tenant = j.TenantID
	}
	runID := ""
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (tenant_id, job_type, status)
    VALUES ($1,$2,$3)
    RETURNING id
  `, tenant, j.Type, "running").Scan(&runID); err != nil {
		slog.Warn("job run insert failed", "err", err)
	}
	return runID
}

func (s *Service) finishRun(ctx context.Context, runID, status string, details any) {
	if s.DB == nil || runID == "" {
		return
	}
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		slog.Warn("job details marshal failed", "err", err)
		detailsJSON = []byte("{}")
	}
	if _, err := s.DB.Exec(ctx, `
    UPDATE job_runs
    SET status = $1, details_json = $2, completed_at = now()
    WHERE id = $3
  `, status, detailsJSON, runID); err != nil {
		slog.Warn("job run update failed", "err", err)
	}
}

func (s *Service) scheduleAutoComplete(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.enqueueAutoComplete(ctx)
		}
	}
}

// enqueueAutoComplete queues one sweep per tenant.
func (s *Service) enqueueAutoComplete(ctx context.Context) {
	tenants, err := s.listTenants(ctx)
	if err != nil {
		slog.Warn("auto-complete scheduler tenant lookup failed", "err", err)
		return
	}
	for _, tenantID := range tenants {
		tenant := tenantID
		s.Enqueue(JobPayrollAutoComplete, tenant, func(ctx context.Context) (any, error) {
			n, err := s.Payroll.AutoCompleteTenant(ctx, tenant)
			return map[string]any{"completed": n}, err
		})
	}
}

func (s *Service) queryTenants(ctx context.Context) ([]string, error) {
	rows, err := s.DB.Query(ctx, `SELECT id FROM tenants`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
