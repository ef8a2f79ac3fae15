package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core/internal/domain/leave"
	"github.com/cmlabs-hris/hris-core/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-core/internal/domain/user"
	"github.com/cmlabs-hris/hris-core/internal/pkg/i18n"
	"github.com/cmlabs-hris/hris-core/internal/pkg/validator"
)

type errorMapping struct {
	err       error
	status    int
	messageID string
}

var errorMappings = []errorMapping{
	// Access errors
	{user.ErrInvalidClaims, http.StatusUnauthorized, "error.invalid_claims"},
	{user.ErrCompanyIDRequired, http.StatusUnauthorized, "error.company_id_required"},
	{user.ErrManagerAccessRequired, http.StatusForbidden, "error.manager_access_required"},
	{user.ErrInsufficientPermissions, http.StatusForbidden, "error.insufficient_permissions"},

	// Attendance domain errors
	{attendance.ErrAttendanceNotFound, http.StatusNotFound, "attendance.not_found"},
	{attendance.ErrAlreadyCheckedIn, http.StatusConflict, "attendance.already_checked_in"},
	{attendance.ErrNotCheckedIn, http.StatusBadRequest, "attendance.not_checked_in"},
	{attendance.ErrAlreadyCheckedOut, http.StatusConflict, "attendance.already_checked_out"},
	{attendance.ErrEmployeeIDRequired, http.StatusForbidden, "attendance.employee_id_required"},

	// Leave domain errors
	{leave.ErrLeaveRequestNotFound, http.StatusNotFound, "leave.not_found"},
	{leave.ErrLeaveRequestAlreadyProcessed, http.StatusConflict, "leave.already_processed"},
	{leave.ErrLeaveRequestNotCancellable, http.StatusConflict, "leave.not_cancellable"},
	{leave.ErrLeaveRequestNotEditable, http.StatusConflict, "leave.not_editable"},

	// Payroll domain errors
	{payroll.ErrSalaryRecordNotFound, http.StatusNotFound, "payroll.not_found"},
	{payroll.ErrSalaryRecordAlreadyExists, http.StatusConflict, "payroll.already_exists"},
	{payroll.ErrSalaryRecordAlreadyPaid, http.StatusConflict, "payroll.already_paid"},
	{payroll.ErrInvalidPeriod, http.StatusBadRequest, "payroll.invalid_period"},
}

// HandleError maps domain errors to HTTP responses, with the message in the request's locale.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, i18n.T(ctx, "error.validation_failed"), validationErrs.ToMap())
		return
	}

	for _, m := range errorMappings {
		if !errors.Is(err, m.err) {
			continue
		}
		message := i18n.T(ctx, m.messageID)
		switch m.status {
		case http.StatusUnauthorized:
			Unauthorized(w, message)
		case http.StatusForbidden:
			Forbidden(w, message)
		case http.StatusNotFound:
			NotFound(w, message)
		case http.StatusConflict:
			Conflict(w, message)
		default:
			BadRequest(w, message, nil)
		}
		return
	}

	slog.ErrorContext(ctx, "unhandled error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	InternalServerError(w, i18n.T(ctx, "error.internal"))
}
