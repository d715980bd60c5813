package payroll

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// RenderPayslipPDF draws a single payslip into memory.
func RenderPayslipPDF(p Payslip) ([]byte, error) {
	period := time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", p.EmployeeName, p.EmployeeCode))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", p.Email))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s", period.Format("January 2006")))
	pdf.Ln(7)
	if p.BankAccount != "" {
		pdf.Cell(0, 8, fmt.Sprintf("Bank account: %s  IFSC: %s", p.BankAccount, p.IFSC))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Days: %d  LOP: %.1f  Paid: %.1f", p.TotalWorkingDays, p.LOPDays, p.PaidDays))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(95, 8, "Earnings")
	pdf.Cell(95, 8, "Deductions")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	earnings := [][2]string{
		{"Basic", money(p.Basic)},
		{"HRA", money(p.HRA)},
		{"Special allowance", money(p.SpecialAllowance)},
		{"", ""},
	}
	deductions := [][2]string{
		{"Provident fund", money(p.PF)},
		{"ESI", money(p.ESI)},
		{"Professional tax", money(p.PT)},
		{"TDS", money(p.TDS)},
	}
	for i := range earnings {
		pdf.CellFormat(60, 7, earnings[i][0], "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, earnings[i][1], "", 0, "R", false, 0, "")
		pdf.CellFormat(60, 7, deductions[i][0], "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, deductions[i][1], "", 1, "R", false, 0, "")
	}
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(60, 8, "Gross", "T", 0, "L", false, 0, "")
	pdf.CellFormat(35, 8, money(p.GrossSalary), "T", 0, "R", false, 0, "")
	pdf.CellFormat(60, 8, "Total deductions", "T", 0, "L", false, 0, "")
	pdf.CellFormat(35, 8, money(p.TotalDeductions), "T", 1, "R", false, 0, "")
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, fmt.Sprintf("Net pay: %s", money(p.NetSalary)))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render payslip: %w", err)
	}
	return buf.Bytes(), nil
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// PayslipFilename is the download name for p.
func PayslipFilename(p Payslip) string {
	return fmt.Sprintf("payslip-%s-%04d-%02d.pdf", p.EmployeeCode, p.Year, p.Month)
}
