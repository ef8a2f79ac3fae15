// Package lifecycle runs the derivations of every record type right before the record
// is written. The repositories in this package wrap a storage backend so that no
// create or update reaches storage without its derived fields recomputed.
package lifecycle

import (
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core/internal/domain/leave"
	"github.com/cmlabs-hris/hris-core/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-core/internal/pkg/calculator"
	"github.com/shopspring/decimal"
)

// Hook is the before-commit transform. It keeps no state besides the logger and is
// safe for concurrent use.
type Hook struct {
	logger *slog.Logger
}

func NewHook(logger *slog.Logger) *Hook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hook{logger: logger}
}

// storedPrecision is the coarsest timestamp precision among the backends (mongo keeps
// milliseconds). Inputs are cut to it so the derived fields match what is read back.
const storedPrecision = time.Millisecond

func truncateTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	tt := t.Truncate(storedPrecision)
	return &tt
}

// BeforeCommitAttendance sets WorkHours from the check-in and check-out times.
// WorkHours is cleared when either time is missing.
func (h *Hook) BeforeCommitAttendance(r *attendance.AttendanceRecord) {
	r.CheckIn.Time = truncateTime(r.CheckIn.Time)
	r.CheckOut.Time = truncateTime(r.CheckOut.Time)
	r.WorkHours = DeriveWorkHours(*r)

	h.logger.Debug("derived attendance fields",
		slog.String("record", "attendance"),
		slog.String("id", r.ID),
		slog.Any("work_hours", r.WorkHours),
	)
}

// BeforeCommitLeave sets TotalDays from the start and end dates, whatever else changed.
func (h *Hook) BeforeCommitLeave(r *leave.LeaveRequest) {
	r.StartDate = r.StartDate.Truncate(storedPrecision)
	r.EndDate = r.EndDate.Truncate(storedPrecision)
	r.TotalDays = DeriveTotalDays(*r)

	h.logger.Debug("derived leave fields",
		slog.String("record", "leave_request"),
		slog.String("id", r.ID),
		slog.Int("total_days", r.TotalDays),
	)
}

// BeforeCommitSalary sets TotalEarnings, TotalDeductions and NetPay from the current inputs.
func (h *Hook) BeforeCommitSalary(r *payroll.SalaryRecord) {
	r.Totals = calculator.SalaryTotals(*r)

	h.logger.Debug("derived salary fields",
		slog.String("record", "salary"),
		slog.String("id", r.ID),
		slog.String("total_earnings", r.TotalEarnings.String()),
		slog.String("total_deductions", r.TotalDeductions.String()),
		slog.String("net_pay", r.NetPay.String()),
	)
}

// StaleAttendance reports whether the stored WorkHours differ from a fresh derivation.
func (h *Hook) StaleAttendance(r attendance.AttendanceRecord) bool {
	want := DeriveWorkHours(r)
	switch {
	case want == nil && r.WorkHours == nil:
		return false
	case want == nil || r.WorkHours == nil:
		return true
	default:
		return !want.Equal(*r.WorkHours)
	}
}

// StaleLeave reports whether the stored TotalDays differ from a fresh derivation.
func (h *Hook) StaleLeave(r leave.LeaveRequest) bool {
	return r.TotalDays != DeriveTotalDays(r)
}

// StaleSalary reports whether the stored totals differ from a fresh derivation.
func (h *Hook) StaleSalary(r payroll.SalaryRecord) bool {
	return !r.Totals.Equal(calculator.SalaryTotals(r))
}

// DeriveWorkHours computes WorkHours at stored precision without touching r.
func DeriveWorkHours(r attendance.AttendanceRecord) *decimal.Decimal {
	return calculator.WorkHours(truncateTime(r.CheckIn.Time), truncateTime(r.CheckOut.Time))
}

// DeriveTotalDays computes TotalDays at stored precision without touching r.
func DeriveTotalDays(r leave.LeaveRequest) int {
	return calculator.LeaveDays(r.StartDate.Truncate(storedPrecision), r.EndDate.Truncate(storedPrecision))
}
