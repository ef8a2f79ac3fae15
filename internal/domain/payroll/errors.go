package payroll

import "errors"

var (
	ErrSalaryRecordNotFound      = errors.New("salary record not found")
	ErrSalaryRecordAlreadyExists = errors.New("salary record already exists for this period")
	ErrSalaryRecordAlreadyPaid   = errors.New("salary record already paid, cannot modify")
	ErrInvalidPeriod             = errors.New("invalid payroll period")
)
