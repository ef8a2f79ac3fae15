package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core/internal/domain/user"
	"github.com/cmlabs-hris/hris-core/internal/pkg/jwt"
	"github.com/shopspring/decimal"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	logger   *slog.Logger
	location *time.Location
	now      func() time.Time
}

// NewAttendanceService builds the service. The repository is expected to apply the
// lifecycle hook on writes; loc decides which calendar day a check-in belongs to.
func NewAttendanceService(attendanceRepository attendance.AttendanceRepository, logger *slog.Logger, loc *time.Location) attendance.AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepository,
		logger:               logger,
		location:             loc,
		now:                  time.Now,
	}
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.UTC().Format(time.RFC3339)
	return &format
}

func (a *AttendanceServiceImpl) today() (time.Time, time.Time) {
	nowUTC := a.now().UTC()
	local := nowUTC.In(a.location)
	return nowUTC, time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func checkPoint(at time.Time, lat, lng *float64, sourceAddress *string) attendance.CheckPoint {
	cp := attendance.CheckPoint{Time: &at, SourceAddress: sourceAddress}
	if lat != nil && lng != nil {
		cp.Location = &attendance.Geolocation{Latitude: *lat, Longitude: *lng}
	}
	return cp
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if principal.EmployeeID == "" {
		return attendance.AttendanceResponse{}, attendance.ErrEmployeeIDRequired
	}

	nowUTC, date := a.today()

	existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, principal.EmployeeID, date, principal.CompanyID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	// A record without a check-in (e.g. marked absent in advance) is reused.
	if existing != nil {
		if existing.CheckIn.Time != nil {
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
		}
		existing.CheckIn = checkPoint(nowUTC, req.Latitude, req.Longitude, req.SourceAddress)
		existing.Status = attendance.StatusPresent
		updated, err := a.AttendanceRepository.Update(ctx, *existing)
		if err != nil {
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance: %w", err)
		}
		return mapAttendanceToResponse(updated), nil
	}

	created, err := a.AttendanceRepository.Create(ctx, attendance.AttendanceRecord{
		EmployeeID: principal.EmployeeID,
		CompanyID:  principal.CompanyID,
		Date:       date,
		CheckIn:    checkPoint(nowUTC, req.Latitude, req.Longitude, req.SourceAddress),
		Status:     attendance.StatusPresent,
	})
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			return attendance.AttendanceResponse{}, err
		}
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	a.logger.InfoContext(ctx, "employee checked in",
		slog.String("attendance_id", created.ID),
		slog.String("employee_id", created.EmployeeID),
	)

	return mapAttendanceToResponse(created), nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if principal.EmployeeID == "" {
		return attendance.AttendanceResponse{}, attendance.ErrEmployeeIDRequired
	}

	nowUTC, date := a.today()

	open, err := a.AttendanceRepository.GetOpenSession(ctx, principal.EmployeeID, principal.CompanyID)
	if err != nil {
		if !errors.Is(err, attendance.ErrNotCheckedIn) {
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to get open session: %w", err)
		}
		todays, getErr := a.AttendanceRepository.GetByEmployeeAndDate(ctx, principal.EmployeeID, date, principal.CompanyID)
		if getErr != nil {
			return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", getErr)
		}
		if todays != nil && todays.CheckOut.Time != nil {
			return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedOut
		}
		return attendance.AttendanceResponse{}, attendance.ErrNotCheckedIn
	}

	open.CheckOut = checkPoint(nowUTC, req.Latitude, req.Longitude, req.SourceAddress)

	updated, err := a.AttendanceRepository.Update(ctx, open)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	a.logger.InfoContext(ctx, "employee checked out",
		slog.String("attendance_id", updated.ID),
		slog.String("employee_id", updated.EmployeeID),
		slog.Any("work_hours", updated.WorkHours),
	)

	return mapAttendanceToResponse(updated), nil
}

// CorrectAttendance implements attendance.AttendanceService.
// This allows managers/owners to fix attendance data like wrong check times.
func (a *AttendanceServiceImpl) CorrectAttendance(ctx context.Context, req attendance.CorrectAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !principal.CanApprove() {
		return attendance.AttendanceResponse{}, user.ErrManagerAccessRequired
	}

	rec, err := a.AttendanceRepository.GetByID(ctx, req.ID, principal.CompanyID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if req.Date != nil {
		d, _ := time.Parse("2006-01-02", *req.Date)
		rec.Date = d
	}
	if req.CheckInTime != nil {
		t, _ := time.Parse(time.RFC3339, *req.CheckInTime)
		t = t.UTC()
		rec.CheckIn.Time = &t
	}
	if req.CheckInLatitude != nil && req.CheckInLongitude != nil {
		rec.CheckIn.Location = &attendance.Geolocation{Latitude: *req.CheckInLatitude, Longitude: *req.CheckInLongitude}
	}
	if req.ClearCheckOut {
		rec.CheckOut = attendance.CheckPoint{}
	}
	if req.CheckOutTime != nil {
		t, _ := time.Parse(time.RFC3339, *req.CheckOutTime)
		t = t.UTC()
		rec.CheckOut.Time = &t
	}
	if req.CheckOutLatitude != nil && req.CheckOutLongitude != nil {
		rec.CheckOut.Location = &attendance.Geolocation{Latitude: *req.CheckOutLatitude, Longitude: *req.CheckOutLongitude}
	}
	if req.Status != nil {
		rec.Status = attendance.Status(*req.Status)
	}
	if req.Notes != nil {
		rec.Notes = req.Notes
	}

	updated, err := a.AttendanceRepository.Update(ctx, rec)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	a.logger.InfoContext(ctx, "attendance corrected",
		slog.String("attendance_id", updated.ID),
		slog.String("corrected_by", principal.UserID),
	)

	return mapAttendanceToResponse(updated), nil
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec, err := a.AttendanceRepository.GetByID(ctx, id, principal.CompanyID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !principal.CanAccessEmployee(rec.EmployeeID) {
		return attendance.AttendanceResponse{}, attendance.ErrAttendanceNotFound
	}

	return mapAttendanceToResponse(rec), nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	// Employees only ever see their own records.
	if !principal.Role.IsManager() {
		if principal.EmployeeID == "" {
			return attendance.ListAttendanceResponse{}, attendance.ErrEmployeeIDRequired
		}
		filter.EmployeeID = &principal.EmployeeID
	}

	records, total, err := a.AttendanceRepository.List(ctx, filter, principal.CompanyID)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	// Map to response
	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, mapAttendanceToResponse(rec))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

// DeleteAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) DeleteAttendance(ctx context.Context, id string) error {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return err
	}
	if !principal.CanApprove() {
		return user.ErrManagerAccessRequired
	}

	if err := a.AttendanceRepository.Delete(ctx, id, principal.CompanyID); err != nil {
		return err
	}

	a.logger.InfoContext(ctx, "attendance deleted",
		slog.String("attendance_id", id),
		slog.String("deleted_by", principal.UserID),
	)
	return nil
}

// GetMonthlySummary implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMonthlySummary(ctx context.Context, req attendance.MonthlySummaryRequest) (attendance.MonthlySummaryResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return attendance.MonthlySummaryResponse{}, err
	}
	if req.EmployeeID == "" {
		req.EmployeeID = principal.EmployeeID
	}
	if err := req.Validate(); err != nil {
		return attendance.MonthlySummaryResponse{}, err
	}
	if !principal.CanAccessEmployee(req.EmployeeID) {
		return attendance.MonthlySummaryResponse{}, user.ErrInsufficientPermissions
	}

	first := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	start := first.Format("2006-01-02")
	end := first.AddDate(0, 1, -1).Format("2006-01-02")

	summary := attendance.MonthlySummary{
		EmployeeID:     req.EmployeeID,
		Month:          req.Month,
		Year:           req.Year,
		TotalWorkHours: decimal.Zero,
	}

	filter := attendance.AttendanceFilter{
		EmployeeID: &req.EmployeeID,
		StartDate:  &start,
		EndDate:    &end,
		Limit:      100,
		SortBy:     "date",
		SortOrder:  "asc",
	}
	for page := 1; ; page++ {
		filter.Page = page
		records, total, err := a.AttendanceRepository.List(ctx, filter, principal.CompanyID)
		if err != nil {
			return attendance.MonthlySummaryResponse{}, fmt.Errorf("failed to list attendances: %w", err)
		}
		for _, rec := range records {
			addToSummary(&summary, rec)
		}
		if len(records) == 0 || int64(page*filter.Limit) >= total {
			break
		}
	}

	return attendance.MonthlySummaryResponse{
		EmployeeID:     summary.EmployeeID,
		Month:          summary.Month,
		Year:           summary.Year,
		DaysRecorded:   summary.DaysRecorded,
		DaysPresent:    summary.DaysPresent,
		DaysLate:       summary.DaysLate,
		DaysHalfDay:    summary.DaysHalfDay,
		DaysAbsent:     summary.DaysAbsent,
		DaysLeave:      summary.DaysLeave,
		TotalWorkHours: summary.TotalWorkHours,
	}, nil
}

func addToSummary(s *attendance.MonthlySummary, rec attendance.AttendanceRecord) {
	s.DaysRecorded++
	switch rec.Status {
	case attendance.StatusPresent:
		s.DaysPresent++
	case attendance.StatusLate:
		s.DaysLate++
	case attendance.StatusHalfDay:
		s.DaysHalfDay++
	case attendance.StatusAbsent:
		s.DaysAbsent++
	case attendance.StatusLeave:
		s.DaysLeave++
	}
	if rec.WorkHours != nil {
		s.TotalWorkHours = s.TotalWorkHours.Add(*rec.WorkHours)
	}
}

func mapCheckPoint(cp attendance.CheckPoint) attendance.CheckPointResponse {
	resp := attendance.CheckPointResponse{
		Time:          timePtrToString(cp.Time),
		SourceAddress: cp.SourceAddress,
	}
	if cp.Location != nil {
		resp.Geolocation = &attendance.GeolocationResponse{
			Latitude:  cp.Location.Latitude,
			Longitude: cp.Location.Longitude,
		}
	}
	return resp
}

// mapAttendanceToResponse converts an AttendanceRecord entity to AttendanceResponse
func mapAttendanceToResponse(rec attendance.AttendanceRecord) attendance.AttendanceResponse {
	return attendance.AttendanceResponse{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,
		CompanyID:  rec.CompanyID,
		Date:       rec.Date.Format("2006-01-02"),
		CheckIn:    mapCheckPoint(rec.CheckIn),
		CheckOut:   mapCheckPoint(rec.CheckOut),
		Status:     string(rec.Status),
		WorkHours:  rec.WorkHours,
		Notes:      rec.Notes,
		CreatedAt:  rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  rec.UpdatedAt.Format(time.RFC3339),
	}
}
