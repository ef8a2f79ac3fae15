package payroll

import (
	"github.com/cmlabs-hris/hris-core/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// AllowancesInput carries the allowance lines of a request. Absent lines default to 0.
type AllowancesInput struct {
	HRA        *decimal.Decimal `json:"hra,omitempty"`
	Conveyance *decimal.Decimal `json:"conveyance,omitempty"`
	Medical    *decimal.Decimal `json:"medical,omitempty"`
	Special    *decimal.Decimal `json:"special,omitempty"`
}

// DeductionsInput carries the deduction lines of a request. Absent lines default to 0.
type DeductionsInput struct {
	PF              *decimal.Decimal `json:"pf,omitempty"`
	Tax             *decimal.Decimal `json:"tax,omitempty"`
	ProfessionalTax *decimal.Decimal `json:"professional_tax,omitempty"`
	Loan            *decimal.Decimal `json:"loan,omitempty"`
	Other           *decimal.Decimal `json:"other,omitempty"`
}

// ApplyTo overwrites the lines that are present in the input.
func (in *AllowancesInput) ApplyTo(a *Allowances) {
	if in == nil {
		return
	}
	setIfPresent(&a.HRA, in.HRA)
	setIfPresent(&a.Conveyance, in.Conveyance)
	setIfPresent(&a.Medical, in.Medical)
	setIfPresent(&a.Special, in.Special)
}

// ApplyTo overwrites the lines that are present in the input.
func (in *DeductionsInput) ApplyTo(d *Deductions) {
	if in == nil {
		return
	}
	setIfPresent(&d.PF, in.PF)
	setIfPresent(&d.Tax, in.Tax)
	setIfPresent(&d.ProfessionalTax, in.ProfessionalTax)
	setIfPresent(&d.Loan, in.Loan)
	setIfPresent(&d.Other, in.Other)
}

func setIfPresent(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}

func (in *AllowancesInput) validate(errs validator.ValidationErrors) validator.ValidationErrors {
	if in == nil {
		return errs
	}
	errs = nonNegative(errs, "allowances.hra", in.HRA)
	errs = nonNegative(errs, "allowances.conveyance", in.Conveyance)
	errs = nonNegative(errs, "allowances.medical", in.Medical)
	return nonNegative(errs, "allowances.special", in.Special)
}

func (in *DeductionsInput) validate(errs validator.ValidationErrors) validator.ValidationErrors {
	if in == nil {
		return errs
	}
	errs = nonNegative(errs, "deductions.pf", in.PF)
	errs = nonNegative(errs, "deductions.tax", in.Tax)
	errs = nonNegative(errs, "deductions.professional_tax", in.ProfessionalTax)
	errs = nonNegative(errs, "deductions.loan", in.Loan)
	return nonNegative(errs, "deductions.other", in.Other)
}

func nonNegative(errs validator.ValidationErrors, field string, v *decimal.Decimal) validator.ValidationErrors {
	if v != nil && v.IsNegative() {
		errs = append(errs, validator.ValidationError{Field: field, Message: "must be non-negative"})
	}
	return errs
}

type CreateSalaryRecordRequest struct {
	EmployeeID  string           `json:"employee_id" validate:"required"`
	PeriodMonth int              `json:"period_month" validate:"min=1,max=12"`
	PeriodYear  int              `json:"period_year" validate:"min=2000,max=9999"`
	BasicSalary *decimal.Decimal `json:"basic_salary"`
	Allowances  *AllowancesInput `json:"allowances,omitempty"`
	Deductions  *DeductionsInput `json:"deductions,omitempty"`
	Bonus       *decimal.Decimal `json:"bonus,omitempty"`
	Notes       *string          `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (r *CreateSalaryRecordRequest) Validate() error {
	errs, err := validator.Merge(nil, validator.Struct(r))
	if err != nil {
		return err
	}

	if r.BasicSalary == nil {
		errs = append(errs, validator.ValidationError{Field: "basic_salary", Message: "is required"})
	}
	errs = nonNegative(errs, "basic_salary", r.BasicSalary)
	errs = nonNegative(errs, "bonus", r.Bonus)
	errs = r.Allowances.validate(errs)
	errs = r.Deductions.validate(errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateSalaryRecordRequest changes only the provided inputs; totals are always re-derived.
type UpdateSalaryRecordRequest struct {
	ID          string           `json:"-"`
	BasicSalary *decimal.Decimal `json:"basic_salary,omitempty"`
	Allowances  *AllowancesInput `json:"allowances,omitempty"`
	Deductions  *DeductionsInput `json:"deductions,omitempty"`
	Bonus       *decimal.Decimal `json:"bonus,omitempty"`
	Notes       *string          `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

func (r *UpdateSalaryRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "is required"})
	}

	errs, err := validator.Merge(errs, validator.Struct(r))
	if err != nil {
		return err
	}

	errs = nonNegative(errs, "basic_salary", r.BasicSalary)
	errs = nonNegative(errs, "bonus", r.Bonus)
	errs = r.Allowances.validate(errs)
	errs = r.Deductions.validate(errs)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SalaryFilter struct {
	PeriodMonth *int    `json:"period_month,omitempty"`
	PeriodYear  *int    `json:"period_year,omitempty"`
	Status      *string `json:"status,omitempty"`
	EmployeeID  *string `json:"employee_id,omitempty"`
	Page        int     `json:"page"`
	Limit       int     `json:"limit"`
	SortBy      string  `json:"sort_by"`    // period, net_pay, created_at
	SortOrder   string  `json:"sort_order"` // asc, desc
}

func (f *SalaryFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{Field: "page", Message: "page must be a positive number"})
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must be a positive number"})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must not exceed 100"})
	}
	if f.PeriodMonth != nil && (*f.PeriodMonth < 1 || *f.PeriodMonth > 12) {
		errs = append(errs, validator.ValidationError{Field: "period_month", Message: "must be between 1 and 12"})
	}
	if f.Status != nil && *f.Status != string(SalaryStatusDraft) && *f.Status != string(SalaryStatusPaid) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "must be 'draft' or 'paid'"})
	}
	if f.SortBy == "" {
		f.SortBy = "period"
	} else if !validator.IsInSlice(f.SortBy, []string{"period", "net_pay", "created_at"}) {
		errs = append(errs, validator.ValidationError{Field: "sort_by", Message: "sort_by must be one of: period, net_pay, created_at"})
	}
	if f.SortOrder == "" {
		f.SortOrder = "desc"
	} else if f.SortOrder != "asc" && f.SortOrder != "desc" {
		errs = append(errs, validator.ValidationError{Field: "sort_order", Message: "sort_order must be one of: asc, desc"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AllowancesResponse struct {
	HRA        decimal.Decimal `json:"hra"`
	Conveyance decimal.Decimal `json:"conveyance"`
	Medical    decimal.Decimal `json:"medical"`
	Special    decimal.Decimal `json:"special"`
}

type DeductionsResponse struct {
	PF              decimal.Decimal `json:"pf"`
	Tax             decimal.Decimal `json:"tax"`
	ProfessionalTax decimal.Decimal `json:"professional_tax"`
	Loan            decimal.Decimal `json:"loan"`
	Other           decimal.Decimal `json:"other"`
}

type SalaryRecordResponse struct {
	ID              string             `json:"id"`
	EmployeeID      string             `json:"employee_id"`
	CompanyID       string             `json:"company_id"`
	PeriodMonth     int                `json:"period_month"`
	PeriodYear      int                `json:"period_year"`
	BasicSalary     decimal.Decimal    `json:"basic_salary"`
	Allowances      AllowancesResponse `json:"allowances"`
	Deductions      DeductionsResponse `json:"deductions"`
	Bonus           decimal.Decimal    `json:"bonus"`
	TotalEarnings   decimal.Decimal    `json:"total_earnings"`
	TotalDeductions decimal.Decimal    `json:"total_deductions"`
	NetPay          decimal.Decimal    `json:"net_pay"`
	Status          string             `json:"status"`
	PaidAt          *string            `json:"paid_at,omitempty"`
	PaidBy          *string            `json:"paid_by,omitempty"`
	Notes           *string            `json:"notes,omitempty"`
	CreatedAt       string             `json:"created_at"`
	UpdatedAt       string             `json:"updated_at"`
}

type ListSalaryRecordResponse struct {
	Data       []SalaryRecordResponse `json:"data"`
	TotalCount int64                  `json:"total_count"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

type PeriodSummaryResponse struct {
	PeriodMonth     int             `json:"period_month"`
	PeriodYear      int             `json:"period_year"`
	TotalEmployees  int             `json:"total_employees"`
	TotalBasic      decimal.Decimal `json:"total_basic_salary"`
	TotalBonus      decimal.Decimal `json:"total_bonus"`
	TotalEarnings   decimal.Decimal `json:"total_earnings"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNetPay     decimal.Decimal `json:"total_net_pay"`
	DraftCount      int             `json:"draft_count"`
	PaidCount       int             `json:"paid_count"`
}
