package employee

import "time"

const (
	StatusActive     = "active"
	StatusInactive   = "inactive"
	StatusTerminated = "terminated"
)

type Employee struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenantId"`
	EmployeeCode string     `json:"employeeCode"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	Department   string     `json:"department"`
	Designation  string     `json:"designation"`
	BankAccount  string     `json:"bankAccount"`
	IFSC         string     `json:"ifsc"`
	PAN          string     `json:"pan"`
	Aadhaar      string     `json:"aadhaar"`
	CTC          *float64   `json:"ctc"`
	BasicSalary  *float64   `json:"basicSalary"`
	GrossSalary  *float64   `json:"grossSalary"`
	NetSalary    *float64   `json:"netSalary"`
	Status       string     `json:"status"`
	JoinedOn     *time.Time `json:"joinedOn,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

type NewEmployee struct {
	EmployeeCode string     `json:"employeeCode" validate:"required,max=32"`
	FirstName    string     `json:"firstName" validate:"required,max=100"`
	LastName     string     `json:"lastName" validate:"max=100"`
	Email        string     `json:"email" validate:"required,email"`
	Department   string     `json:"department" validate:"max=100"`
	Designation  string     `json:"designation" validate:"max=100"`
	BankAccount  string     `json:"bankAccount" validate:"omitempty,numeric,min=6,max=20"`
	IFSC         string     `json:"ifsc" validate:"omitempty,len=11,alphanum"`
	PAN          string     `json:"pan" validate:"omitempty,len=10,alphanum"`
	Aadhaar      string     `json:"aadhaar" validate:"omitempty,numeric,len=12"`
	JoinedOn     *time.Time `json:"-"`
}

// Compensation is one version of an employee's pay. CTC is annual; the
// components are monthly.
type Compensation struct {
	ID               string    `json:"id"`
	EmployeeID       string    `json:"employeeId"`
	EffectiveFrom    time.Time `json:"effectiveFrom"`
	CTC              float64   `json:"ctc"`
	Basic            float64   `json:"basic"`
	HRA              float64   `json:"hra"`
	SpecialAllowance float64   `json:"specialAllowance"`
	CreatedAt        time.Time `json:"createdAt"`
}

// MonthlyGross is the sum of the monthly components.
func (c Compensation) MonthlyGross() float64 {
	return c.Basic + c.HRA + c.SpecialAllowance
}

type NewCompensation struct {
	EffectiveFrom    time.Time `json:"-"`
	CTC              float64   `json:"ctc" validate:"gte=0"`
	Basic            float64   `json:"basic" validate:"gte=0"`
	HRA              float64   `json:"hra" validate:"gte=0"`
	SpecialAllowance float64   `json:"specialAllowance" validate:"gte=0"`
}

// CompensationHistory lists every version newest first, with the one in
// force today.
type CompensationHistory struct {
	Current *Compensation  `json:"current"`
	History []Compensation `json:"history"`
}

// Effective returns the latest version starting on or before at.
func Effective(history []Compensation, at time.Time) *Compensation {
	var best *Compensation
	for i := range history {
		c := history[i]
		if c.EffectiveFrom.After(at) {
			continue
		}
		if best == nil || c.EffectiveFrom.After(best.EffectiveFrom) {
			best = &history[i]
		}
	}
	return best
}
