package calculator

import (
	"github.com/cmlabs-hris/hris-core/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// Payroll aggregates a salary record's inputs:
//
//	totalEarnings   = basic + every allowance line + bonus
//	totalDeductions = every deduction line
//	netPay          = totalEarnings - totalDeductions
//
// No rounding or clamping is applied; netPay may be negative.
func Payroll(basic decimal.Decimal, allowances payroll.Allowances, deductions payroll.Deductions, bonus decimal.Decimal) payroll.Totals {
	earnings := basic.Add(sum(allowances.Components())).Add(bonus)
	deducted := sum(deductions.Components())

	return payroll.Totals{
		TotalEarnings:   earnings,
		TotalDeductions: deducted,
		NetPay:          earnings.Sub(deducted),
	}
}

// SalaryTotals is Payroll applied to the inputs of a record.
func SalaryTotals(r payroll.SalaryRecord) payroll.Totals {
	return Payroll(r.BasicSalary, r.Allowances, r.Deductions, r.Bonus)
}

func sum(components []payroll.Component) decimal.Decimal {
	total := decimal.Zero
	for _, c := range components {
		total = total.Add(c.Amount)
	}
	return total
}
