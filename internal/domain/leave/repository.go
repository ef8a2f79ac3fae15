package leave

import (
	"context"
)

// LeaveRequestRepository - interface for leave_requests storage.
// All methods include companyID parameter to prevent cross-company data access.
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string, companyID string) (LeaveRequest, error)
	// Update replaces the whole request, derived fields included.
	Update(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	// UpdateDerived writes only TotalDays, and only while the stored dates still equal
	// request's. It reports whether a row was written.
	UpdateDerived(ctx context.Context, request LeaveRequest) (bool, error)
	List(ctx context.Context, filter LeaveRequestFilter, companyID string) ([]LeaveRequest, int64, error)
	Delete(ctx context.Context, id string, companyID string) error

	// Scan walks every request of every company in ID order, afterID exclusive.
	Scan(ctx context.Context, afterID string, limit int) ([]LeaveRequest, error)
}
