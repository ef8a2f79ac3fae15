package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// CheckIn opens today's session for the authenticated employee
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)

	// CheckOut closes the open session of the authenticated employee
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)

	// CorrectAttendance is the administrative correction path (manager/owner)
	CorrectAttendance(ctx context.Context, req CorrectAttendanceRequest) (AttendanceResponse, error)

	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
	DeleteAttendance(ctx context.Context, id string) error

	// GetMonthlySummary totals work hours and statuses for one employee and month
	GetMonthlySummary(ctx context.Context, req MonthlySummaryRequest) (MonthlySummaryResponse, error)
}
