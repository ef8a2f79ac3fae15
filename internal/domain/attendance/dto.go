package attendance

import (
	"strings"

	"github.com/cmlabs-hris/hris-core/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	Latitude      *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	SourceAddress *string  `json:"-"`
}

func (r *CheckInRequest) Validate() error {
	errs, err := validator.Merge(nil, validator.Struct(r))
	if err != nil {
		return err
	}
	errs = append(errs, validatePair(r.Latitude, r.Longitude)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CheckOutRequest struct {
	Latitude      *float64 `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude,omitempty" validate:"omitempty,longitude"`
	SourceAddress *string  `json:"-"`
}

func (r *CheckOutRequest) Validate() error {
	errs, err := validator.Merge(nil, validator.Struct(r))
	if err != nil {
		return err
	}
	errs = append(errs, validatePair(r.Latitude, r.Longitude)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// validatePair requires latitude and longitude to be sent together.
func validatePair(lat, lng *float64) validator.ValidationErrors {
	if (lat == nil) != (lng == nil) {
		return validator.ValidationErrors{{
			Field:   "latitude",
			Message: "latitude and longitude must be provided together",
		}}
	}
	return nil
}

// CorrectAttendanceRequest lets a manager fix a record. Nil fields are left untouched;
// ClearCheckOut removes a wrongly recorded check-out.
type CorrectAttendanceRequest struct {
	ID                string   `json:"-"`
	Date              *string  `json:"date,omitempty"`           // YYYY-MM-DD
	CheckInTime       *string  `json:"check_in_time,omitempty"`  // RFC3339
	CheckOutTime      *string  `json:"check_out_time,omitempty"` // RFC3339
	ClearCheckOut     bool     `json:"clear_check_out,omitempty"`
	CheckInLatitude   *float64 `json:"check_in_latitude,omitempty" validate:"omitempty,latitude"`
	CheckInLongitude  *float64 `json:"check_in_longitude,omitempty" validate:"omitempty,longitude"`
	CheckOutLatitude  *float64 `json:"check_out_latitude,omitempty" validate:"omitempty,latitude"`
	CheckOutLongitude *float64 `json:"check_out_longitude,omitempty" validate:"omitempty,longitude"`
	Status            *string  `json:"status,omitempty" validate:"omitempty,oneof=present absent half-day late leave"`
	Notes             *string  `json:"notes,omitempty" validate:"omitempty,max=500"`
}

func (r *CorrectAttendanceRequest) Validate() error {
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

	if r.Date != nil {
		if _, valid := validator.IsValidDate(*r.Date); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "date",
				Message: "date must be in YYYY-MM-DD format",
			})
		}
	}
	if r.CheckInTime != nil {
		if _, valid := validator.IsValidDateTime(*r.CheckInTime); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "check_in_time",
				Message: "check_in_time must be an RFC3339 timestamp",
			})
		}
	}
	if r.CheckOutTime != nil {
		if _, valid := validator.IsValidDateTime(*r.CheckOutTime); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "check_out_time",
				Message: "check_out_time must be an RFC3339 timestamp",
			})
		}
		if r.ClearCheckOut {
			errs = append(errs, validator.ValidationError{
				Field:   "clear_check_out",
				Message: "clear_check_out cannot be combined with check_out_time",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type GeolocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type CheckPointResponse struct {
	Time          *string              `json:"time,omitempty"`
	Geolocation   *GeolocationResponse `json:"geolocation,omitempty"`
	SourceAddress *string              `json:"source_address,omitempty"`
}

type AttendanceResponse struct {
	ID         string             `json:"id"`
	EmployeeID string             `json:"employee_id"`
	CompanyID  string             `json:"company_id"`
	Date       string             `json:"date"`
	CheckIn    CheckPointResponse `json:"check_in"`
	CheckOut   CheckPointResponse `json:"check_out"`
	Status     string             `json:"status"`
	WorkHours  *decimal.Decimal   `json:"work_hours"`
	Notes      *string            `json:"notes,omitempty"`
	CreatedAt  string             `json:"created_at"`
	UpdatedAt  string             `json:"updated_at"`
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

type AttendanceFilter struct {
	// Search & Filter
	EmployeeID *string `json:"employee_id,omitempty"`
	Date       *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, check_in_time, check_out_time, status, work_hours
	SortOrder string `json:"sort_order"` // asc, desc
}

var validSortFields = []string{"date", "check_in_time", "check_out_time", "status", "work_hours"}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	// Page validation
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	// Limit validation
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: present, absent, half-day, late, leave",
		})
	}

	for field, value := range map[string]*string{"date": f.Date, "start_date": f.StartDate, "end_date": f.EndDate} {
		if value != nil && *value != "" {
			if _, valid := validator.IsValidDate(*value); !valid {
				errs = append(errs, validator.ValidationError{
					Field:   field,
					Message: field + " must be in YYYY-MM-DD format",
				})
			}
		}
	}

	if f.SortBy != "" {
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: " + strings.Join(validSortFields, ", "),
			})
		}
	} else {
		f.SortBy = "date"
	}

	if f.SortOrder != "" {
		f.SortOrder = strings.ToLower(f.SortOrder)
		if f.SortOrder != "asc" && f.SortOrder != "desc" {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc" // newest first
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MonthlySummaryRequest struct {
	EmployeeID string `json:"employee_id"`
	Month      int    `json:"month" validate:"min=1,max=12"`
	Year       int    `json:"year" validate:"min=2000,max=9999"`
}

func (r *MonthlySummaryRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	errs, err := validator.Merge(errs, validator.Struct(r))
	if err != nil {
		return err
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MonthlySummaryResponse struct {
	EmployeeID     string          `json:"employee_id"`
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	DaysRecorded   int             `json:"days_recorded"`
	DaysPresent    int             `json:"days_present"`
	DaysLate       int             `json:"days_late"`
	DaysHalfDay    int             `json:"days_half_day"`
	DaysAbsent     int             `json:"days_absent"`
	DaysLeave      int             `json:"days_leave"`
	TotalWorkHours decimal.Decimal `json:"total_work_hours"`
}
