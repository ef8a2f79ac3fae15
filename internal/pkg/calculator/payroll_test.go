package calculator

import (
	"testing"

	"github.com/cmlabs-hris/hris-core/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func TestPayroll(t *testing.T) {
	t.Run("full breakdown", func(t *testing.T) {
		totals := Payroll(
			d("50000"),
			payroll.Allowances{HRA: d("5000"), Conveyance: d("1000"), Medical: d("500")},
			payroll.Deductions{PF: d("1800"), Tax: d("3000"), ProfessionalTax: d("200")},
			d("2000"),
		)

		assertDecimal(t, "58500", totals.TotalEarnings)
		assertDecimal(t, "5000", totals.TotalDeductions)
		assertDecimal(t, "53500", totals.NetPay)
	})

	t.Run("all optional components zero", func(t *testing.T) {
		totals := Payroll(d("30000"), payroll.Allowances{}, payroll.Deductions{}, decimal.Zero)

		assertDecimal(t, "30000", totals.TotalEarnings)
		assertDecimal(t, "0", totals.TotalDeductions)
		assertDecimal(t, "30000", totals.NetPay)
	})

	t.Run("every line is counted", func(t *testing.T) {
		totals := Payroll(
			d("1"),
			payroll.Allowances{HRA: d("2"), Conveyance: d("4"), Medical: d("8"), Special: d("16")},
			payroll.Deductions{PF: d("1"), Tax: d("2"), ProfessionalTax: d("4"), Loan: d("8"), Other: d("16")},
			d("32"),
		)

		assertDecimal(t, "63", totals.TotalEarnings)
		assertDecimal(t, "31", totals.TotalDeductions)
		assertDecimal(t, "32", totals.NetPay)
	})

	t.Run("negative net pay is not clamped", func(t *testing.T) {
		totals := Payroll(d("1000"), payroll.Allowances{}, payroll.Deductions{Loan: d("1500.50")}, decimal.Zero)

		assertDecimal(t, "-500.50", totals.NetPay)
	})

	t.Run("fractional amounts keep their precision", func(t *testing.T) {
		totals := Payroll(d("0.1"), payroll.Allowances{Special: d("0.2")}, payroll.Deductions{Other: d("0.3")}, decimal.Zero)

		assertDecimal(t, "0.3", totals.TotalEarnings)
		assertDecimal(t, "0", totals.NetPay)
	})
}

func TestPayroll_NetPayLaw(t *testing.T) {
	inputs := []payroll.SalaryRecord{
		{BasicSalary: d("12345.67"), Bonus: d("89.01"), Allowances: payroll.Allowances{HRA: d("10")}, Deductions: payroll.Deductions{Tax: d("999.99")}},
		{BasicSalary: d("0")},
		{BasicSalary: d("100"), Deductions: payroll.Deductions{PF: d("50"), Other: d("75")}},
	}

	for _, in := range inputs {
		totals := SalaryTotals(in)
		assert.True(t, totals.NetPay.Equal(totals.TotalEarnings.Sub(totals.TotalDeductions)))
		assert.True(t, totals.Equal(SalaryTotals(in)))
	}
}
