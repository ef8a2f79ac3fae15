package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-core/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-core/internal/domain/user"
	"github.com/cmlabs-hris/hris-core/internal/pkg/jwt"
	"github.com/shopspring/decimal"
)

type SalaryServiceImpl struct {
	salaryRepo payroll.SalaryRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewSalaryService builds the service. Totals are derived by the repository's lifecycle hook.
func NewSalaryService(salaryRepo payroll.SalaryRepository, logger *slog.Logger) payroll.SalaryService {
	return &SalaryServiceImpl{
		salaryRepo: salaryRepo,
		logger:     logger,
		now:        time.Now,
	}
}

func requireManager(ctx context.Context) (user.Principal, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return user.Principal{}, err
	}
	if !principal.Role.HasPermission(user.PermissionPayrollManage) {
		return user.Principal{}, user.ErrManagerAccessRequired
	}
	return principal, nil
}

func decimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// ========== RECORDS ==========

func (s *SalaryServiceImpl) CreateSalaryRecord(ctx context.Context, req payroll.CreateSalaryRecordRequest) (payroll.SalaryRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryRecordResponse{}, err
	}

	principal, err := requireManager(ctx)
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}

	_, err = s.salaryRepo.GetByEmployeePeriod(ctx, req.EmployeeID, req.PeriodMonth, req.PeriodYear, principal.CompanyID)
	if err == nil {
		return payroll.SalaryRecordResponse{}, payroll.ErrSalaryRecordAlreadyExists
	}
	if !errors.Is(err, payroll.ErrSalaryRecordNotFound) {
		return payroll.SalaryRecordResponse{}, fmt.Errorf("failed to check existing salary record: %w", err)
	}

	record := payroll.SalaryRecord{
		EmployeeID:  req.EmployeeID,
		CompanyID:   principal.CompanyID,
		PeriodMonth: req.PeriodMonth,
		PeriodYear:  req.PeriodYear,
		BasicSalary: decimalOrZero(req.BasicSalary),
		Bonus:       decimalOrZero(req.Bonus),
		Status:      payroll.SalaryStatusDraft,
		Notes:       req.Notes,
	}
	req.Allowances.ApplyTo(&record.Allowances)
	req.Deductions.ApplyTo(&record.Deductions)

	created, err := s.salaryRepo.Create(ctx, record)
	if err != nil {
		if errors.Is(err, payroll.ErrSalaryRecordAlreadyExists) {
			return payroll.SalaryRecordResponse{}, err
		}
		return payroll.SalaryRecordResponse{}, fmt.Errorf("failed to create salary record: %w", err)
	}

	s.logger.InfoContext(ctx, "salary record created",
		slog.String("salary_record_id", created.ID),
		slog.String("employee_id", created.EmployeeID),
		slog.String("net_pay", created.NetPay.String()),
	)

	return mapSalaryRecordToResponse(created), nil
}

func (s *SalaryServiceImpl) UpdateSalaryRecord(ctx context.Context, req payroll.UpdateSalaryRecordRequest) (payroll.SalaryRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SalaryRecordResponse{}, err
	}

	principal, err := requireManager(ctx)
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}

	record, err := s.salaryRepo.GetByID(ctx, req.ID, principal.CompanyID)
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}
	if record.Status == payroll.SalaryStatusPaid {
		return payroll.SalaryRecordResponse{}, payroll.ErrSalaryRecordAlreadyPaid
	}

	if req.BasicSalary != nil {
		record.BasicSalary = *req.BasicSalary
	}
	if req.Bonus != nil {
		record.Bonus = *req.Bonus
	}
	if req.Notes != nil {
		record.Notes = req.Notes
	}
	req.Allowances.ApplyTo(&record.Allowances)
	req.Deductions.ApplyTo(&record.Deductions)

	updated, err := s.salaryRepo.Update(ctx, record)
	if err != nil {
		return payroll.SalaryRecordResponse{}, fmt.Errorf("failed to update salary record: %w", err)
	}
	return mapSalaryRecordToResponse(updated), nil
}

func (s *SalaryServiceImpl) GetSalaryRecord(ctx context.Context, id string) (payroll.SalaryRecordResponse, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}

	record, err := s.salaryRepo.GetByID(ctx, id, principal.CompanyID)
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}
	if !principal.CanAccessEmployee(record.EmployeeID) {
		return payroll.SalaryRecordResponse{}, payroll.ErrSalaryRecordNotFound
	}
	return mapSalaryRecordToResponse(record), nil
}

func (s *SalaryServiceImpl) ListSalaryRecords(ctx context.Context, filter payroll.SalaryFilter) (payroll.ListSalaryRecordResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListSalaryRecordResponse{}, err
	}

	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return payroll.ListSalaryRecordResponse{}, err
	}
	if !principal.Role.HasPermission(user.PermissionPayrollViewAll) {
		if principal.EmployeeID == "" {
			return payroll.ListSalaryRecordResponse{}, user.ErrInsufficientPermissions
		}
		filter.EmployeeID = &principal.EmployeeID
	}

	records, total, err := s.salaryRepo.List(ctx, filter, principal.CompanyID)
	if err != nil {
		return payroll.ListSalaryRecordResponse{}, fmt.Errorf("failed to list salary records: %w", err)
	}

	data := make([]payroll.SalaryRecordResponse, 0, len(records))
	for _, r := range records {
		data = append(data, mapSalaryRecordToResponse(r))
	}

	return payroll.ListSalaryRecordResponse{
		Data:       data,
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

func (s *SalaryServiceImpl) MarkPaid(ctx context.Context, id string) (payroll.SalaryRecordResponse, error) {
	principal, err := requireManager(ctx)
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}

	record, err := s.salaryRepo.GetByID(ctx, id, principal.CompanyID)
	if err != nil {
		return payroll.SalaryRecordResponse{}, err
	}
	if record.Status == payroll.SalaryStatusPaid {
		return payroll.SalaryRecordResponse{}, payroll.ErrSalaryRecordAlreadyPaid
	}

	paidAt := s.now().UTC()
	record.Status = payroll.SalaryStatusPaid
	record.PaidAt = &paidAt
	record.PaidBy = &principal.UserID

	updated, err := s.salaryRepo.Update(ctx, record)
	if err != nil {
		return payroll.SalaryRecordResponse{}, fmt.Errorf("failed to mark salary record paid: %w", err)
	}

	s.logger.InfoContext(ctx, "salary record paid",
		slog.String("salary_record_id", updated.ID),
		slog.String("paid_by", principal.UserID),
	)
	return mapSalaryRecordToResponse(updated), nil
}

func (s *SalaryServiceImpl) DeleteSalaryRecord(ctx context.Context, id string) error {
	principal, err := requireManager(ctx)
	if err != nil {
		return err
	}

	record, err := s.salaryRepo.GetByID(ctx, id, principal.CompanyID)
	if err != nil {
		return err
	}
	if record.Status == payroll.SalaryStatusPaid {
		return payroll.ErrSalaryRecordAlreadyPaid
	}

	return s.salaryRepo.Delete(ctx, id, principal.CompanyID)
}

// ========== SUMMARY ==========

func (s *SalaryServiceImpl) GetPeriodSummary(ctx context.Context, month, year int) (payroll.PeriodSummaryResponse, error) {
	if month < 1 || month > 12 || year < 1 {
		return payroll.PeriodSummaryResponse{}, payroll.ErrInvalidPeriod
	}

	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return payroll.PeriodSummaryResponse{}, err
	}
	if !principal.Role.HasPermission(user.PermissionPayrollViewAll) {
		return payroll.PeriodSummaryResponse{}, user.ErrManagerAccessRequired
	}

	summary, err := s.salaryRepo.Summary(ctx, principal.CompanyID, month, year)
	if err != nil {
		return payroll.PeriodSummaryResponse{}, fmt.Errorf("failed to get period summary: %w", err)
	}

	return payroll.PeriodSummaryResponse{
		PeriodMonth:     summary.PeriodMonth,
		PeriodYear:      summary.PeriodYear,
		TotalEmployees:  summary.TotalEmployees,
		TotalBasic:      summary.TotalBasic,
		TotalBonus:      summary.TotalBonus,
		TotalEarnings:   summary.TotalEarnings,
		TotalDeductions: summary.TotalDeductions,
		TotalNetPay:     summary.TotalNetPay,
		DraftCount:      summary.DraftCount,
		PaidCount:       summary.PaidCount,
	}, nil
}

func mapSalaryRecordToResponse(r payroll.SalaryRecord) payroll.SalaryRecordResponse {
	var paidAt *string
	if r.PaidAt != nil {
		s := r.PaidAt.UTC().Format(time.RFC3339)
		paidAt = &s
	}

	return payroll.SalaryRecordResponse{
		ID:          r.ID,
		EmployeeID:  r.EmployeeID,
		CompanyID:   r.CompanyID,
		PeriodMonth: r.PeriodMonth,
		PeriodYear:  r.PeriodYear,
		BasicSalary: r.BasicSalary,
		Allowances: payroll.AllowancesResponse{
			HRA:        r.Allowances.HRA,
			Conveyance: r.Allowances.Conveyance,
			Medical:    r.Allowances.Medical,
			Special:    r.Allowances.Special,
		},
		Deductions: payroll.DeductionsResponse{
			PF:              r.Deductions.PF,
			Tax:             r.Deductions.Tax,
			ProfessionalTax: r.Deductions.ProfessionalTax,
			Loan:            r.Deductions.Loan,
			Other:           r.Deductions.Other,
		},
		Bonus:           r.Bonus,
		TotalEarnings:   r.TotalEarnings,
		TotalDeductions: r.TotalDeductions,
		NetPay:          r.NetPay,
		Status:          string(r.Status),
		PaidAt:          paidAt,
		PaidBy:          r.PaidBy,
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
