package leave

import (
	"github.com/cmlabs-hris/hris-core/internal/pkg/validator"
)

type AttachmentInput struct {
	Name string `json:"name" validate:"required,max=255"`
	URL  string `json:"url" validate:"required,url"`
}

// CreateLeaveRequestRequest. EmployeeID defaults to the caller's employee.
// StartDate/EndDate accept YYYY-MM-DD or RFC3339. An end date before the start
// date is accepted; the day count is taken over the absolute span.
type CreateLeaveRequestRequest struct {
	EmployeeID  *string           `json:"employee_id,omitempty"`
	LeaveType   string            `json:"leave_type" validate:"required,oneof=annual sick casual maternity paternity unpaid emergency"`
	StartDate   string            `json:"start_date"`
	EndDate     string            `json:"end_date"`
	Reason      *string           `json:"reason,omitempty" validate:"omitempty,max=1000"`
	Attachments []AttachmentInput `json:"attachments,omitempty" validate:"omitempty,dive"`
}

func (r *CreateLeaveRequestRequest) Validate() error {
	errs, err := validator.Merge(nil, validator.Struct(r))
	if err != nil {
		return err
	}

	if r.EmployeeID != nil && validator.IsEmpty(*r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must not be empty",
		})
	}

	if validator.IsEmpty(r.StartDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date is required",
		})
	} else if _, valid := validator.ParseDateOrDateTime(r.StartDate); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be YYYY-MM-DD or an RFC3339 timestamp",
		})
	}

	if validator.IsEmpty(r.EndDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date is required",
		})
	} else if _, valid := validator.ParseDateOrDateTime(r.EndDate); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be YYYY-MM-DD or an RFC3339 timestamp",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateLeaveRequestRequest edits a pending request. Nil fields are left untouched.
type UpdateLeaveRequestRequest struct {
	ID        string  `json:"-"`
	LeaveType *string `json:"leave_type,omitempty" validate:"omitempty,oneof=annual sick casual maternity paternity unpaid emergency"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	Reason    *string `json:"reason,omitempty" validate:"omitempty,max=1000"`
}

func (r *UpdateLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	errs, err := validator.Merge(errs, validator.Struct(r))
	if err != nil {
		return err
	}

	if r.StartDate != nil {
		if _, valid := validator.ParseDateOrDateTime(*r.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be YYYY-MM-DD or an RFC3339 timestamp",
			})
		}
	}
	if r.EndDate != nil {
		if _, valid := validator.ParseDateOrDateTime(*r.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be YYYY-MM-DD or an RFC3339 timestamp",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RejectLeaveRequestRequest struct {
	RequestID       string `json:"-"`
	RejectionReason string `json:"rejection_reason"`
}

func (r *RejectLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if validator.IsEmpty(r.RejectionReason) {
		errs = append(errs, validator.ValidationError{
			Field:   "rejection_reason",
			Message: "rejection_reason is required",
		})
	}
	if len(r.RejectionReason) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "rejection_reason",
			Message: "rejection_reason must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AddAttachmentRequest struct {
	RequestID string `json:"-"`
	AttachmentInput
}

func (r *AddAttachmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	errs, err := validator.Merge(errs, validator.Struct(r.AttachmentInput))
	if err != nil {
		return err
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AttachmentResponse struct {
	Name       string `json:"name"`
	URL        string `json:"url"`
	UploadedAt string `json:"uploaded_at"`
}

type LeaveRequestResponse struct {
	ID              string               `json:"id"`
	EmployeeID      string               `json:"employee_id"`
	CompanyID       string               `json:"company_id"`
	LeaveType       string               `json:"leave_type"`
	StartDate       string               `json:"start_date"`
	EndDate         string               `json:"end_date"`
	TotalDays       int                  `json:"total_days"`
	Reason          *string              `json:"reason,omitempty"`
	Attachments     []AttachmentResponse `json:"attachments"`
	Status          string               `json:"status"`
	ApprovedBy      *string              `json:"approved_by,omitempty"`
	ApprovedAt      *string              `json:"approved_at,omitempty"`
	RejectionReason *string              `json:"rejection_reason,omitempty"`
	CancelledBy     *string              `json:"cancelled_by,omitempty"`
	CancelledAt     *string              `json:"cancelled_at,omitempty"`
	CreatedAt       string               `json:"created_at"`
	UpdatedAt       string               `json:"updated_at"`
}

type LeaveRequestFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	LeaveType  *string `json:"leave_type,omitempty"`
	Status     *string `json:"status,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // overlaps from, YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // overlaps until, YYYY-MM-DD

	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	SortBy    string `json:"sort_by"`    // start_date, created_at, total_days, status
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *LeaveRequestFilter) Validate() error {
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

	if f.Status != nil {
		validStatuses := []string{"pending", "approved", "rejected", "cancelled"}
		if !validator.IsInSlice(*f.Status, validStatuses) {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: pending, approved, rejected, cancelled",
			})
		}
	}
	if f.LeaveType != nil {
		validTypes := []string{"annual", "sick", "casual", "maternity", "paternity", "unpaid", "emergency"}
		if !validator.IsInSlice(*f.LeaveType, validTypes) {
			errs = append(errs, validator.ValidationError{
				Field:   "leave_type",
				Message: "leave_type must be one of: annual, sick, casual, maternity, paternity, unpaid, emergency",
			})
		}
	}
	if f.StartDate != nil {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
		}
	}
	if f.EndDate != nil {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
		}
	}

	if f.SortBy == "" {
		f.SortBy = "created_at"
	} else if !validator.IsInSlice(f.SortBy, []string{"start_date", "created_at", "total_days", "status"}) {
		errs = append(errs, validator.ValidationError{
			Field:   "sort_by",
			Message: "sort_by must be one of: start_date, created_at, total_days, status",
		})
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

type ListLeaveRequestResponse struct {
	TotalCount int64                  `json:"total_count"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
	Showing    string                 `json:"showing"`
	Requests   []LeaveRequestResponse `json:"requests"`
}
