package leave

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateRequest(ctx context.Context, tenantID, employeeID string, input NewRequest) (Request, error)
	ListRequests(ctx context.Context, tenantID, employeeID string, limit, offset int) ([]Request, error)
	GetRequest(ctx context.Context, tenantID, requestID string) (Request, error)
	Decide(ctx context.Context, tenantID, requestID, approverID, status string) (Request, error)
	Summary(ctx context.Context, tenantID, employeeID string, year int) ([]SummaryRow, error)
	Attendance(ctx context.Context, tenantID, employeeID string, from, to time.Time) ([]AttendanceRecord, error)
	LOPRequests(ctx context.Context, tenantID string, from, to time.Time) ([]LOPRequest, error)
	LOPMarks(ctx context.Context, tenantID string, from, to time.Time) ([]LOPMark, error)
}
