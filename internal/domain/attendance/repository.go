package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// All methods include companyID parameter to prevent cross-company data access attacks.
type AttendanceRepository interface {
	// Create creates a new attendance record
	Create(ctx context.Context, record AttendanceRecord) (AttendanceRecord, error)

	// GetByID retrieves attendance by ID with company isolation
	GetByID(ctx context.Context, id string, companyID string) (AttendanceRecord, error)

	// GetByEmployeeAndDate retrieves attendance for specific employee on specific date.
	// Returns nil when there is none.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*AttendanceRecord, error)

	// GetOpenSession returns the latest record of the employee that has a check-in but no check-out
	GetOpenSession(ctx context.Context, employeeID string, companyID string) (AttendanceRecord, error)

	// Update replaces an existing attendance record
	Update(ctx context.Context, record AttendanceRecord) (AttendanceRecord, error)

	// UpdateDerived writes only WorkHours, and only while the stored check-in and
	// check-out times still equal record's. It reports whether a row was written.
	UpdateDerived(ctx context.Context, record AttendanceRecord) (bool, error)

	// List retrieves attendance records with filters and pagination
	List(ctx context.Context, filter AttendanceFilter, companyID string) ([]AttendanceRecord, int64, error)

	Delete(ctx context.Context, id string, companyID string) error

	// Scan walks every record of every company in ID order, afterID exclusive.
	Scan(ctx context.Context, afterID string, limit int) ([]AttendanceRecord, error)
}
