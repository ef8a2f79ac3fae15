package payroll

import "context"

// SalaryRepository defines data access methods for salary records.
// All methods include companyID parameter to prevent cross-company data access attacks.
type SalaryRepository interface {
	// Create fails with ErrSalaryRecordAlreadyExists when the employee already has a record for the period.
	Create(ctx context.Context, record SalaryRecord) (SalaryRecord, error)
	GetByID(ctx context.Context, id string, companyID string) (SalaryRecord, error)
	GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int, companyID string) (SalaryRecord, error)
	// Update replaces the whole record, derived totals included.
	Update(ctx context.Context, record SalaryRecord) (SalaryRecord, error)
	// UpdateDerived writes only the totals, and only while every stored input amount
	// still equals record's. It reports whether a row was written.
	UpdateDerived(ctx context.Context, record SalaryRecord) (bool, error)
	List(ctx context.Context, filter SalaryFilter, companyID string) ([]SalaryRecord, int64, error)
	Delete(ctx context.Context, id string, companyID string) error

	// Summary aggregates the stored totals of a period.
	Summary(ctx context.Context, companyID string, month, year int) (PeriodSummary, error)

	// Scan walks every record of every company in ID order, afterID exclusive.
	Scan(ctx context.Context, afterID string, limit int) ([]SalaryRecord, error)
}
