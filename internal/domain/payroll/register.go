package payroll

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var registerHeader = []string{
	"Employee Code", "Employee Name", "Email", "Bank Account", "IFSC", "PAN",
	"Working Days", "LOP Days", "Paid Days",
	"Basic", "HRA", "Special Allowance", "Gross", "PF", "ESI", "PT", "TDS",
	"Total Deductions", "Net Salary", "Warnings",
}

func registerRow(p Payslip) []string {
	return []string{
		textCell(p.EmployeeCode), textCell(p.EmployeeName), textCell(p.Email), p.BankAccount, p.IFSC, p.PAN,
		strconv.Itoa(p.TotalWorkingDays), formatDays(p.LOPDays), formatDays(p.PaidDays),
		money(p.Basic), money(p.HRA), money(p.SpecialAllowance), money(p.GrossSalary),
		money(p.PF), money(p.ESI), money(p.PT), money(p.TDS),
		money(p.TotalDeductions), money(p.NetSalary), strings.Join(p.Warnings, ";"),
	}
}

// textCell quotes free text that a spreadsheet would otherwise evaluate as a formula.
func textCell(v string) string {
	if v != "" && strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return "'" + v
	}
	return v
}

func formatDays(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderRegister writes the cycle's payroll register in the requested format.
func RenderRegister(cycle Cycle, items []Payslip, format string) (Export, error) {
	base := fmt.Sprintf("payroll-register-%04d-%02d", cycle.Year, cycle.Month)
	switch format {
	case FormatCSV:
		body, err := registerCSV(items)
		if err != nil {
			return Export{}, err
		}
		return Export{Filename: base + ".csv", ContentType: "text/csv", Body: body}, nil
	case FormatXLSX:
		body, err := registerXLSX(cycle, items)
		if err != nil {
			return Export{}, err
		}
		return Export{
			Filename:    base + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Body:        body,
		}, nil
	default:
		return Export{}, ErrUnsupportedFormat
	}
}

func registerCSV(items []Payslip) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(registerHeader); err != nil {
		return nil, err
	}
	for _, p := range items {
		if err := writer.Write(registerRow(p)); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func registerXLSX(cycle Cycle, items []Payslip) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("%04d-%02d", cycle.Year, cycle.Month)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	header := make([]any, len(registerHeader))
	for i, h := range registerHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, p := range items {
		row := []any{
			p.EmployeeCode, p.EmployeeName, p.Email, p.BankAccount, p.IFSC, p.PAN,
			p.TotalWorkingDays, p.LOPDays, p.PaidDays,
			p.Basic, p.HRA, p.SpecialAllowance, p.GrossSalary, p.PF, p.ESI, p.PT, p.TDS,
			p.TotalDeductions, p.NetSalary, strings.Join(p.Warnings, ";"),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write register workbook: %w", err)
	}
	return buf.Bytes(), nil
}
