package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core/internal/domain/leave"
	"github.com/cmlabs-hris/hris-core/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-core/internal/repository/lifecycle"
)

const reconcileBatchSize = 200

// ReconcileJobs re-derives stored derived fields that no longer match their inputs,
// e.g. rows written by tools that bypass the lifecycle hook. The repositories passed in
// must be the hooked ones so each fix goes through the same derivation as a normal write.
// A fix only touches the derived fields and is dropped when the inputs changed after the scan.
type ReconcileJobs struct {
	attendanceRepo attendance.AttendanceRepository
	leaveRepo      leave.LeaveRequestRepository
	salaryRepo     payroll.SalaryRepository
	hook           *lifecycle.Hook
	logger         *slog.Logger
}

func NewReconcileJobs(
	attendanceRepo attendance.AttendanceRepository,
	leaveRepo leave.LeaveRequestRepository,
	salaryRepo payroll.SalaryRepository,
	hook *lifecycle.Hook,
	logger *slog.Logger,
) *ReconcileJobs {
	return &ReconcileJobs{
		attendanceRepo: attendanceRepo,
		leaveRepo:      leaveRepo,
		salaryRepo:     salaryRepo,
		hook:           hook,
		logger:         logger,
	}
}

func (j *ReconcileJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("reconcile_derived_fields", interval, j.ReconcileAll)
}

// ReconcileAll runs every reconciliation and joins their errors.
func (j *ReconcileJobs) ReconcileAll(ctx context.Context) error {
	return errors.Join(
		j.ReconcileAttendance(ctx),
		j.ReconcileLeave(ctx),
		j.ReconcileSalaries(ctx),
	)
}

func (j *ReconcileJobs) ReconcileAttendance(ctx context.Context) error {
	scanned, fixed, skipped := 0, 0, 0
	afterID := ""
	for {
		batch, err := j.attendanceRepo.Scan(ctx, afterID, reconcileBatchSize)
		if err != nil {
			return fmt.Errorf("failed to scan attendances: %w", err)
		}
		for _, rec := range batch {
			scanned++
			if !j.hook.StaleAttendance(rec) {
				continue
			}
			ok, err := j.attendanceRepo.UpdateDerived(ctx, rec)
			if err != nil {
				j.logger.ErrorContext(ctx, "failed to reconcile attendance",
					slog.String("attendance_id", rec.ID),
					slog.Any("error", err),
				)
				continue
			}
			if !ok {
				// changed or deleted since the scan; the next write derives it
				skipped++
				continue
			}
			fixed++
		}
		if len(batch) < reconcileBatchSize {
			break
		}
		afterID = batch[len(batch)-1].ID
	}

	j.logger.InfoContext(ctx, "attendance reconciled", slog.Int("scanned", scanned), slog.Int("fixed", fixed), slog.Int("skipped", skipped))
	return nil
}

func (j *ReconcileJobs) ReconcileLeave(ctx context.Context) error {
	scanned, fixed, skipped := 0, 0, 0
	afterID := ""
	for {
		batch, err := j.leaveRepo.Scan(ctx, afterID, reconcileBatchSize)
		if err != nil {
			return fmt.Errorf("failed to scan leave requests: %w", err)
		}
		for _, req := range batch {
			scanned++
			if !j.hook.StaleLeave(req) {
				continue
			}
			ok, err := j.leaveRepo.UpdateDerived(ctx, req)
			if err != nil {
				j.logger.ErrorContext(ctx, "failed to reconcile leave request",
					slog.String("leave_request_id", req.ID),
					slog.Any("error", err),
				)
				continue
			}
			if !ok {
				// changed or deleted since the scan; the next write derives it
				skipped++
				continue
			}
			fixed++
		}
		if len(batch) < reconcileBatchSize {
			break
		}
		afterID = batch[len(batch)-1].ID
	}

	j.logger.InfoContext(ctx, "leave requests reconciled", slog.Int("scanned", scanned), slog.Int("fixed", fixed), slog.Int("skipped", skipped))
	return nil
}

// ReconcileSalaries also repairs paid records: the totals must always agree with the
// stored inputs, whatever the record's status.
func (j *ReconcileJobs) ReconcileSalaries(ctx context.Context) error {
	scanned, fixed, skipped := 0, 0, 0
	afterID := ""
	for {
		batch, err := j.salaryRepo.Scan(ctx, afterID, reconcileBatchSize)
		if err != nil {
			return fmt.Errorf("failed to scan salary records: %w", err)
		}
		for _, rec := range batch {
			scanned++
			if !j.hook.StaleSalary(rec) {
				continue
			}
			ok, err := j.salaryRepo.UpdateDerived(ctx, rec)
			if err != nil {
				j.logger.ErrorContext(ctx, "failed to reconcile salary record",
					slog.String("salary_record_id", rec.ID),
					slog.Any("error", err),
				)
				continue
			}
			if !ok {
				// changed or deleted since the scan; the next write derives it
				skipped++
				continue
			}
			fixed++
		}
		if len(batch) < reconcileBatchSize {
			break
		}
		afterID = batch[len(batch)-1].ID
	}

	j.logger.InfoContext(ctx, "salary records reconciled", slog.Int("scanned", scanned), slog.Int("fixed", fixed), slog.Int("skipped", skipped))
	return nil
}
