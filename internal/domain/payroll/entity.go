package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// Component is one named earning or deduction line.
type Component struct {
	Name   string
	Amount decimal.Decimal
}

// Allowances groups the fixed set of allowance lines. Zero value means every line is 0.
type Allowances struct {
	HRA        decimal.Decimal
	Conveyance decimal.Decimal
	Medical    decimal.Decimal
	Special    decimal.Decimal
}

// Components enumerates the allowance lines in a stable order.
func (a Allowances) Components() []Component {
	return []Component{
		{Name: "hra", Amount: a.HRA},
		{Name: "conveyance", Amount: a.Conveyance},
		{Name: "medical", Amount: a.Medical},
		{Name: "special", Amount: a.Special},
	}
}

// Deductions groups the fixed set of deduction lines. Zero value means every line is 0.
type Deductions struct {
	PF              decimal.Decimal
	Tax             decimal.Decimal
	ProfessionalTax decimal.Decimal
	Loan            decimal.Decimal
	Other           decimal.Decimal
}

// Components enumerates the deduction lines in a stable order.
func (d Deductions) Components() []Component {
	return []Component{
		{Name: "pf", Amount: d.PF},
		{Name: "tax", Amount: d.Tax},
		{Name: "professional_tax", Amount: d.ProfessionalTax},
		{Name: "loan", Amount: d.Loan},
		{Name: "other", Amount: d.Other},
	}
}

// Totals are the derived figures of a salary record.
type Totals struct {
	TotalEarnings   decimal.Decimal
	TotalDeductions decimal.Decimal
	NetPay          decimal.Decimal
}

// Equal compares numerically, so 100 and 100.00 are the same amount.
func (t Totals) Equal(o Totals) bool {
	return t.TotalEarnings.Equal(o.TotalEarnings) &&
		t.TotalDeductions.Equal(o.TotalDeductions) &&
		t.NetPay.Equal(o.NetPay)
}

type SalaryStatus string

const (
	SalaryStatusDraft SalaryStatus = "draft"
	SalaryStatusPaid  SalaryStatus = "paid"
)

// SalaryRecord is one employee's pay for one (month, year) period.
type SalaryRecord struct {
	ID          string
	EmployeeID  string
	CompanyID   string
	PeriodMonth int
	PeriodYear  int

	BasicSalary decimal.Decimal
	Allowances  Allowances
	Deductions  Deductions
	Bonus       decimal.Decimal

	// Derived on every write.
	Totals

	Status    SalaryStatus
	PaidAt    *time.Time
	PaidBy    *string
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PeriodSummary totals all salary records of a company for one period.
type PeriodSummary struct {
	PeriodMonth     int
	PeriodYear      int
	TotalEmployees  int
	TotalBasic      decimal.Decimal
	TotalBonus      decimal.Decimal
	TotalEarnings   decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNetPay     decimal.Decimal
	DraftCount      int
	PaidCount       int
}
