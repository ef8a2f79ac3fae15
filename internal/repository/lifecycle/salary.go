package lifecycle

import (
	"context"

	"github.com/cmlabs-hris/hris-core/internal/domain/payroll"
)

type salaryRepository struct {
	payroll.SalaryRepository
	hook *Hook
}

// NewSalaryRepository wraps next so that Create and Update derive the totals first.
func NewSalaryRepository(next payroll.SalaryRepository, hook *Hook) payroll.SalaryRepository {
	return &salaryRepository{SalaryRepository: next, hook: hook}
}

func (r *salaryRepository) Create(ctx context.Context, record payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	r.hook.BeforeCommitSalary(&record)
	return r.SalaryRepository.Create(ctx, record)
}

func (r *salaryRepository) Update(ctx context.Context, record payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	r.hook.BeforeCommitSalary(&record)
	return r.SalaryRepository.Update(ctx, record)
}

func (r *salaryRepository) UpdateDerived(ctx context.Context, record payroll.SalaryRecord) (bool, error) {
	r.hook.BeforeCommitSalary(&record)
	return r.SalaryRepository.UpdateDerived(ctx, record)
}
