package leave

import (
	"time"
)

type LeaveType string

const (
	LeaveTypeAnnual    LeaveType = "annual"
	LeaveTypeSick      LeaveType = "sick"
	LeaveTypeCasual    LeaveType = "casual"
	LeaveTypeMaternity LeaveType = "maternity"
	LeaveTypePaternity LeaveType = "paternity"
	LeaveTypeUnpaid    LeaveType = "unpaid"
	LeaveTypeEmergency LeaveType = "emergency"
)

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending   LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved  LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected  LeaveRequestStatus = "rejected"
	LeaveRequestStatusCancelled LeaveRequestStatus = "cancelled"
)

// Attachment is owned by its leave request and serialized inline with it.
type Attachment struct {
	Name       string
	URL        string
	UploadedAt time.Time
}

// LeaveRequest entity
type LeaveRequest struct {
	ID         string
	EmployeeID string
	CompanyID  string
	LeaveType  LeaveType

	StartDate time.Time
	EndDate   time.Time
	// TotalDays is the inclusive day count, derived from StartDate and EndDate on every write.
	TotalDays int

	Reason      *string
	Attachments []Attachment

	Status          LeaveRequestStatus
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectionReason *string

	CancelledBy *string
	CancelledAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
