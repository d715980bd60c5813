package leave

import "time"

type Request struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	LeaveType  string     `json:"leaveType"`
	StartDate  time.Time  `json:"startDate"`
	EndDate    time.Time  `json:"endDate"`
	Days       float64    `json:"days"`
	Reason     string     `json:"reason"`
	Status     string     `json:"status"`
	ApproverID string     `json:"approverId,omitempty"`
	DecidedAt  *time.Time `json:"decidedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type NewRequest struct {
	LeaveType string    `json:"leaveType"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	StartHalf bool      `json:"startHalf"`
	EndHalf   bool      `json:"endHalf"`
	// Days overrides the computed count for partial days.
	Days   float64 `json:"days"`
	Reason string  `json:"reason"`
}

type AttendanceRecord struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Date       time.Time `json:"date"`
	Status     string    `json:"status"`
	IsLOP      bool      `json:"isLop"`
}

// SummaryRow is the day total for one leave type and status.
type SummaryRow struct {
	LeaveType string  `json:"leaveType"`
	Status    string  `json:"status"`
	Days      float64 `json:"days"`
	Count     int     `json:"count"`
}

type Summary struct {
	Year   int          `json:"year"`
	Rows   []SummaryRow `json:"rows"`
	Totals struct {
		Approved float64 `json:"approved"`
		Pending  float64 `json:"pending"`
		LOP      float64 `json:"lossOfPay"`
	} `json:"totals"`
}

// LOPRequest is an approved loss-of-pay request overlapping a payroll month.
type LOPRequest struct {
	EmployeeID string
	StartDate  time.Time
	EndDate    time.Time
	Days       float64
}

// LOPMark is an attendance day flagged as loss of pay.
type LOPMark struct {
	EmployeeID string
	Date       time.Time
}
