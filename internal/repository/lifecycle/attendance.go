package lifecycle

import (
	"context"

	"github.com/cmlabs-hris/hris-core/internal/domain/attendance"
)

type attendanceRepository struct {
	attendance.AttendanceRepository
	hook *Hook
}

// NewAttendanceRepository wraps next so that Create and Update derive WorkHours first.
// Reads pass straight through.
func NewAttendanceRepository(next attendance.AttendanceRepository, hook *Hook) attendance.AttendanceRepository {
	return &attendanceRepository{AttendanceRepository: next, hook: hook}
}

func (r *attendanceRepository) Create(ctx context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	r.hook.BeforeCommitAttendance(&record)
	return r.AttendanceRepository.Create(ctx, record)
}

func (r *attendanceRepository) Update(ctx context.Context, record attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	r.hook.BeforeCommitAttendance(&record)
	return r.AttendanceRepository.Update(ctx, record)
}

// UpdateDerived re-derives WorkHours from record's times, which are passed on
// unchanged so the backend can match them against what is stored.
func (r *attendanceRepository) UpdateDerived(ctx context.Context, record attendance.AttendanceRecord) (bool, error) {
	record.WorkHours = DeriveWorkHours(record)
	return r.AttendanceRepository.UpdateDerived(ctx, record)
}
