package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-core/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-core/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type salaryRepository struct {
	db *database.DB
}

func NewSalaryRepository(db *database.DB) payroll.SalaryRepository {
	return &salaryRepository{db: db}
}

const salaryColumns = `
	id, employee_id, company_id, period_month, period_year, basic_salary,
	allowance_hra, allowance_conveyance, allowance_medical, allowance_special,
	deduction_pf, deduction_tax, deduction_prof_tax, deduction_loan, deduction_other,
	bonus, total_earnings, total_deductions, net_pay,
	status, paid_at, paid_by, notes, created_at, updated_at`

func scanSalaryRecord(row rowScanner) (payroll.SalaryRecord, error) {
	var (
		rec    payroll.SalaryRecord
		status string
	)
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.CompanyID, &rec.PeriodMonth, &rec.PeriodYear, &rec.BasicSalary,
		&rec.Allowances.HRA, &rec.Allowances.Conveyance, &rec.Allowances.Medical, &rec.Allowances.Special,
		&rec.Deductions.PF, &rec.Deductions.Tax, &rec.Deductions.ProfessionalTax, &rec.Deductions.Loan, &rec.Deductions.Other,
		&rec.Bonus, &rec.TotalEarnings, &rec.TotalDeductions, &rec.NetPay,
		&status, &rec.PaidAt, &rec.PaidBy, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return payroll.SalaryRecord{}, err
	}
	rec.Status = payroll.SalaryStatus(status)
	return rec, nil
}

func isPeriodConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.ConstraintName == "uk_salary_employee_period"
}

// Create implements payroll.SalaryRepository.
func (s *salaryRepository) Create(ctx context.Context, record payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		INSERT INTO salary_records (
			employee_id, company_id, period_month, period_year, basic_salary,
			allowance_hra, allowance_conveyance, allowance_medical, allowance_special,
			deduction_pf, deduction_tax, deduction_prof_tax, deduction_loan, deduction_other,
			bonus, total_earnings, total_deductions, net_pay,
			status, paid_at, paid_by, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING ` + salaryColumns

	created, err := scanSalaryRecord(q.QueryRow(ctx, query,
		record.EmployeeID, record.CompanyID, record.PeriodMonth, record.PeriodYear, record.BasicSalary,
		record.Allowances.HRA, record.Allowances.Conveyance, record.Allowances.Medical, record.Allowances.Special,
		record.Deductions.PF, record.Deductions.Tax, record.Deductions.ProfessionalTax, record.Deductions.Loan, record.Deductions.Other,
		record.Bonus, record.TotalEarnings, record.TotalDeductions, record.NetPay,
		string(record.Status), record.PaidAt, record.PaidBy, record.Notes,
	))
	if err != nil {
		if isPeriodConflict(err) {
			return payroll.SalaryRecord{}, payroll.ErrSalaryRecordAlreadyExists
		}
		return payroll.SalaryRecord{}, fmt.Errorf("failed to create salary record: %w", err)
	}

	return created, nil
}

// GetByID implements payroll.SalaryRepository.
func (s *salaryRepository) GetByID(ctx context.Context, id string, companyID string) (payroll.SalaryRecord, error) {
	if !isUUID(id) {
		return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
	}
	q := GetQuerier(ctx, s.db)

	query := `SELECT ` + salaryColumns + ` FROM salary_records WHERE id = $1 AND company_id = $2`

	rec, err := scanSalaryRecord(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
		}
		return payroll.SalaryRecord{}, fmt.Errorf("failed to get salary record: %w", err)
	}
	return rec, nil
}

// GetByEmployeePeriod implements payroll.SalaryRepository.
func (s *salaryRepository) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int, companyID string) (payroll.SalaryRecord, error) {
	q := GetQuerier(ctx, s.db)

	query := `SELECT ` + salaryColumns + `
		FROM salary_records
		WHERE employee_id = $1 AND period_month = $2 AND period_year = $3 AND company_id = $4`

	rec, err := scanSalaryRecord(q.QueryRow(ctx, query, employeeID, month, year, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
		}
		return payroll.SalaryRecord{}, fmt.Errorf("failed to get salary record by period: %w", err)
	}
	return rec, nil
}

// Update implements payroll.SalaryRepository.
func (s *salaryRepository) Update(ctx context.Context, record payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	if !isUUID(record.ID) {
		return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
	}
	q := GetQuerier(ctx, s.db)

	query := `
		UPDATE salary_records SET
			employee_id = $3, period_month = $4, period_year = $5, basic_salary = $6,
			allowance_hra = $7, allowance_conveyance = $8, allowance_medical = $9, allowance_special = $10,
			deduction_pf = $11, deduction_tax = $12, deduction_prof_tax = $13, deduction_loan = $14, deduction_other = $15,
			bonus = $16, total_earnings = $17, total_deductions = $18, net_pay = $19,
			status = $20, paid_at = $21, paid_by = $22, notes = $23,
			updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING ` + salaryColumns

	updated, err := scanSalaryRecord(q.QueryRow(ctx, query,
		record.ID, record.CompanyID,
		record.EmployeeID, record.PeriodMonth, record.PeriodYear, record.BasicSalary,
		record.Allowances.HRA, record.Allowances.Conveyance, record.Allowances.Medical, record.Allowances.Special,
		record.Deductions.PF, record.Deductions.Tax, record.Deductions.ProfessionalTax, record.Deductions.Loan, record.Deductions.Other,
		record.Bonus, record.TotalEarnings, record.TotalDeductions, record.NetPay,
		string(record.Status), record.PaidAt, record.PaidBy, record.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
		}
		if isPeriodConflict(err) {
			return payroll.SalaryRecord{}, payroll.ErrSalaryRecordAlreadyExists
		}
		return payroll.SalaryRecord{}, fmt.Errorf("failed to update salary record: %w", err)
	}
	return updated, nil
}

// List implements payroll.SalaryRepository.
func (s *salaryRepository) List(ctx context.Context, filter payroll.SalaryFilter, companyID string) ([]payroll.SalaryRecord, int64, error) {
	q := GetQuerier(ctx, s.db)

	baseWhere := "company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.PeriodMonth != nil {
		baseWhere += fmt.Sprintf(" AND period_month = $%d", argIdx)
		args = append(args, *filter.PeriodMonth)
		argIdx++
	}
	if filter.PeriodYear != nil {
		baseWhere += fmt.Sprintf(" AND period_year = $%d", argIdx)
		args = append(args, *filter.PeriodYear)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM salary_records WHERE `+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count salary records: %w", err)
	}

	dir := sortDirection(filter.SortOrder)
	orderBy := fmt.Sprintf("period_year %s, period_month %s", dir, dir)
	switch filter.SortBy {
	case "net_pay":
		orderBy = "net_pay " + dir
	case "created_at":
		orderBy = "created_at " + dir
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM salary_records
		WHERE %s
		ORDER BY %s, id
		LIMIT $%d OFFSET $%d
	`, salaryColumns, baseWhere, orderBy, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query salary records: %w", err)
	}
	defer rows.Close()

	var records []payroll.SalaryRecord
	for rows.Next() {
		rec, err := scanSalaryRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan salary record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate salary records: %w", err)
	}

	return records, total, nil
}

// Delete implements payroll.SalaryRepository.
func (s *salaryRepository) Delete(ctx context.Context, id string, companyID string) error {
	if !isUUID(id) {
		return payroll.ErrSalaryRecordNotFound
	}
	q := GetQuerier(ctx, s.db)

	tag, err := q.Exec(ctx, `DELETE FROM salary_records WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete salary record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrSalaryRecordNotFound
	}
	return nil
}

// Summary implements payroll.SalaryRepository.
func (s *salaryRepository) Summary(ctx context.Context, companyID string, month, year int) (payroll.PeriodSummary, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT
			COUNT(DISTINCT employee_id),
			COALESCE(SUM(basic_salary), 0),
			COALESCE(SUM(bonus), 0),
			COALESCE(SUM(total_earnings), 0),
			COALESCE(SUM(total_deductions), 0),
			COALESCE(SUM(net_pay), 0),
			COUNT(*) FILTER (WHERE status = 'draft'),
			COUNT(*) FILTER (WHERE status = 'paid')
		FROM salary_records
		WHERE company_id = $1 AND period_month = $2 AND period_year = $3`

	summary := payroll.PeriodSummary{PeriodMonth: month, PeriodYear: year}
	err := q.QueryRow(ctx, query, companyID, month, year).Scan(
		&summary.TotalEmployees,
		&summary.TotalBasic,
		&summary.TotalBonus,
		&summary.TotalEarnings,
		&summary.TotalDeductions,
		&summary.TotalNetPay,
		&summary.DraftCount,
		&summary.PaidCount,
	)
	if err != nil {
		return payroll.PeriodSummary{}, fmt.Errorf("failed to summarize salary records: %w", err)
	}

	return summary, nil
}

// Scan implements payroll.SalaryRepository.
func (s *salaryRepository) Scan(ctx context.Context, afterID string, limit int) ([]payroll.SalaryRecord, error) {
	q := GetQuerier(ctx, s.db)

	query := `SELECT ` + salaryColumns + `
		FROM salary_records
		WHERE ($1 = '' OR id::text > $1)
		ORDER BY id::text
		LIMIT $2`

	rows, err := q.Query(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to scan salary records: %w", err)
	}
	defer rows.Close()

	var records []payroll.SalaryRecord
	for rows.Next() {
		rec, err := scanSalaryRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan salary record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateDerived implements payroll.SalaryRepository.
func (s *salaryRepository) UpdateDerived(ctx context.Context, record payroll.SalaryRecord) (bool, error) {
	if !isUUID(record.ID) {
		return false, nil
	}
	q := GetQuerier(ctx, s.db)

	query := `
		UPDATE salary_records SET
			total_earnings = $3, total_deductions = $4, net_pay = $5,
			updated_at = NOW()
		WHERE id = $1 AND company_id = $2
			AND basic_salary = $6 AND bonus = $7
			AND allowance_hra = $8 AND allowance_conveyance = $9 AND allowance_medical = $10 AND allowance_special = $11
			AND deduction_pf = $12 AND deduction_tax = $13 AND deduction_prof_tax = $14
			AND deduction_loan = $15 AND deduction_other = $16`

	tag, err := q.Exec(ctx, query,
		record.ID, record.CompanyID,
		record.TotalEarnings, record.TotalDeductions, record.NetPay,
		record.BasicSalary, record.Bonus,
		record.Allowances.HRA, record.Allowances.Conveyance, record.Allowances.Medical, record.Allowances.Special,
		record.Deductions.PF, record.Deductions.Tax, record.Deductions.ProfessionalTax,
		record.Deductions.Loan, record.Deductions.Other,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update salary totals: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
