package payroll

import "time"

type Cycle struct {
	ID            string     `json:"id"`
	TenantID      string     `json:"tenantId"`
	Month         int        `json:"month"`
	Year          int        `json:"year"`
	Status        string     `json:"status"`
	TotalAmount   float64    `json:"totalAmount"`
	EmployeeCount int        `json:"employeeCount"`
	CreatedBy     string     `json:"createdBy,omitempty"`
	SubmittedAt   *time.Time `json:"submittedAt,omitempty"`
	ApprovedBy    string     `json:"approvedBy,omitempty"`
	ApprovedAt    *time.Time `json:"approvedAt,omitempty"`
	ProcessedAt   *time.Time `json:"processedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Settings are the tenant-configurable statutory parameters.
type Settings struct {
	PFRate       float64    `json:"pfRate" validate:"gte=0,lte=100"`
	PTRate       float64    `json:"ptRate" validate:"gte=0"`
	TDSThreshold float64    `json:"tdsThreshold" validate:"gte=0"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{PFRate: DefaultPFRate, PTRate: DefaultPTRate, TDSThreshold: DefaultTDSThreshold}
}

// EmployeeInput is what computation needs to know about one employee.
type EmployeeInput struct {
	EmployeeID       string
	EmployeeCode     string
	EmployeeName     string
	Email            string
	HasBankAccount   bool
	Basic            float64
	HRA              float64
	SpecialAllowance float64
}

type ComputeInput struct {
	Year     int
	Month    int
	LOPDays  float64
	Employee EmployeeInput
	Settings Settings
}

// Line is one employee's computed payroll for a month.
type Line struct {
	EmployeeID       string   `json:"employeeId"`
	EmployeeCode     string   `json:"employeeCode"`
	EmployeeName     string   `json:"employeeName"`
	TotalWorkingDays int      `json:"totalWorkingDays"`
	LOPDays          float64  `json:"lopDays"`
	PaidDays         float64  `json:"paidDays"`
	AdjustmentRatio  float64  `json:"adjustmentRatio"`
	MonthlyGross     float64  `json:"monthlyGross"`
	Basic            float64  `json:"basic"`
	HRA              float64  `json:"hra"`
	SpecialAllowance float64  `json:"specialAllowance"`
	GrossSalary      float64  `json:"grossSalary"`
	PF               float64  `json:"pf"`
	ESI              float64  `json:"esi"`
	PT               float64  `json:"pt"`
	TDS              float64  `json:"tds"`
	TotalDeductions  float64  `json:"totalDeductions"`
	NetSalary        float64  `json:"netSalary"`
	Warnings         []string `json:"warnings"`
}

// Payslip is a persisted payroll item joined with its employee and cycle.
type Payslip struct {
	ID               string   `json:"id"`
	CycleID          string   `json:"cycleId"`
	EmployeeID       string   `json:"employeeId"`
	EmployeeCode     string   `json:"employeeCode"`
	EmployeeName     string   `json:"employeeName"`
	Email            string   `json:"email"`
	BankAccount      string   `json:"bankAccount,omitempty"`
	IFSC             string   `json:"ifsc,omitempty"`
	PAN              string   `json:"pan,omitempty"`
	Month            int      `json:"month"`
	Year             int      `json:"year"`
	CycleStatus      string   `json:"cycleStatus"`
	TotalWorkingDays int      `json:"totalWorkingDays"`
	LOPDays          float64  `json:"lopDays"`
	PaidDays         float64  `json:"paidDays"`
	Basic            float64  `json:"basic"`
	HRA              float64  `json:"hra"`
	SpecialAllowance float64  `json:"specialAllowance"`
	GrossSalary      float64  `json:"grossSalary"`
	PF               float64  `json:"pf"`
	ESI              float64  `json:"esi"`
	PT               float64  `json:"pt"`
	TDS              float64  `json:"tds"`
	TotalDeductions  float64  `json:"totalDeductions"`
	NetSalary        float64  `json:"netSalary"`
	Warnings         []string `json:"warnings"`
}

// Aggregate carries totals only; it has no per-employee figure.
type Aggregate struct {
	EmployeeCount   int     `json:"employeeCount"`
	TotalGross      float64 `json:"totalGross"`
	TotalDeductions float64 `json:"totalDeductions"`
	TotalNet        float64 `json:"totalNet"`
	AverageNet      float64 `json:"averageNet"`
}

type CycleSummary struct {
	CycleID string `json:"cycleId"`
	Month   int    `json:"month"`
	Year    int    `json:"year"`
	Status  string `json:"status"`
	Aggregate
}

type PayslipSummary struct {
	PayslipID   string  `json:"payslipId"`
	Month       int     `json:"month"`
	Year        int     `json:"year"`
	Status      string  `json:"status"`
	PaidDays    float64 `json:"paidDays"`
	GrossSalary float64 `json:"grossSalary"`
	NetSalary   float64 `json:"netSalary"`
}

// TenantCounts are the directory-wide counts behind the dashboard.
type TenantCounts struct {
	Employees int
	Cycles    int
	Last      *Cycle
}

type Stats struct {
	Tier            string          `json:"tier"`
	EmployeeCount   *int            `json:"employeeCount,omitempty"`
	CycleCount      *int            `json:"cycleCount,omitempty"`
	LastCycle       *CycleSummary   `json:"lastCycle,omitempty"`
	MyLatestPayslip *PayslipSummary `json:"myLatestPayslip,omitempty"`
}

// Preview is the unpersisted computation for a cycle.
type Preview struct {
	Cycle  Cycle     `json:"cycle"`
	Lines  []Line    `json:"lines"`
	Totals Aggregate `json:"totals"`
}

// Export is a rendered payroll register.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}
