package tax

import "time"

type Declaration struct {
	ID              string    `json:"id"`
	EmployeeID      string    `json:"employeeId"`
	FinancialYear   string    `json:"financialYear"`
	Section80C      float64   `json:"section80c"`
	Section80D      float64   `json:"section80d"`
	HRAExemption    float64   `json:"hraExemption"`
	OtherDeductions float64   `json:"otherDeductions"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TotalDeductions sums every declared head.
func (d Declaration) TotalDeductions() float64 {
	return d.Section80C + d.Section80D + d.HRAExemption + d.OtherDeductions
}

type DeclarationInput struct {
	FinancialYear   string  `json:"financialYear" validate:"required"`
	Section80C      float64 `json:"section80c" validate:"gte=0"`
	Section80D      float64 `json:"section80d" validate:"gte=0"`
	HRAExemption    float64 `json:"hraExemption" validate:"gte=0"`
	OtherDeductions float64 `json:"otherDeductions" validate:"gte=0"`
}

type Document struct {
	ID            string    `json:"id"`
	EmployeeID    string    `json:"employeeId"`
	FinancialYear string    `json:"financialYear"`
	DocumentType  string    `json:"documentType"`
	FileURL       string    `json:"fileUrl"`
	CreatedAt     time.Time `json:"createdAt"`
}
