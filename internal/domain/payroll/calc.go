package payroll

import (
	"math"
	"time"
)

// DaysInMonth counts calendar days, not business days.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Compute produces one employee's payroll line. Gross is prorated through the
// daily rate and every monetary result is rounded to two decimals.
func Compute(in ComputeInput) Line {
	totalDays := DaysInMonth(in.Year, in.Month)
	lop := math.Max(0, in.LOPDays)
	paid := math.Max(0, float64(totalDays)-lop)
	ratio := paid / float64(totalDays)

	e := in.Employee
	monthlyGross := e.Basic + e.HRA + e.SpecialAllowance
	dailyRate := monthlyGross / float64(totalDays)
	adjustedGross := round2(dailyRate * paid)

	pf := round2(e.Basic * ratio * in.Settings.PFRate / 100)
	esi := 0.0
	if adjustedGross <= ESIGrossCeiling {
		esi = round2(adjustedGross * ESIRate / 100)
	}
	pt := round2(in.Settings.PTRate)
	tds := 0.0
	if annual := adjustedGross * 12; annual > in.Settings.TDSThreshold {
		tds = round2((annual - in.Settings.TDSThreshold) * TDSSlabRate / 100 / 12)
	}
	deductions := round2(pf + esi + pt + tds)
	net := round2(adjustedGross - deductions)

	warnings := []string{}
	if !e.HasBankAccount {
		warnings = append(warnings, WarningMissingBank)
	}
	if net < 0 {
		warnings = append(warnings, WarningNegativeNet)
	}

	return Line{
		EmployeeID:       e.EmployeeID,
		EmployeeCode:     e.EmployeeCode,
		EmployeeName:     e.EmployeeName,
		TotalWorkingDays: totalDays,
		LOPDays:          lop,
		PaidDays:         paid,
		AdjustmentRatio:  ratio,
		MonthlyGross:     round2(monthlyGross),
		Basic:            round2(e.Basic * ratio),
		HRA:              round2(e.HRA * ratio),
		SpecialAllowance: round2(e.SpecialAllowance * ratio),
		GrossSalary:      adjustedGross,
		PF:               pf,
		ESI:              esi,
		PT:               pt,
		TDS:              tds,
		TotalDeductions:  deductions,
		NetSalary:        net,
		Warnings:         warnings,
	}
}

// Totals sums lines into an aggregate.
func Totals(lines []Line) Aggregate {
	var agg Aggregate
	for _, l := range lines {
		agg.EmployeeCount++
		agg.TotalGross += l.GrossSalary
		agg.TotalDeductions += l.TotalDeductions
		agg.TotalNet += l.NetSalary
	}
	agg.TotalGross = round2(agg.TotalGross)
	agg.TotalDeductions = round2(agg.TotalDeductions)
	agg.TotalNet = round2(agg.TotalNet)
	if agg.EmployeeCount > 0 {
		agg.AverageNet = round2(agg.TotalNet / float64(agg.EmployeeCount))
	}
	return agg
}
