package postgresql_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/cmlabs-hris/hris-core/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-core/internal/repository/lifecycle"
	"github.com/cmlabs-hris/hris-core/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalaryRepository_TotalsAndUniquePeriod(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := lifecycle.NewSalaryRepository(
		postgresql.NewSalaryRepository(setup.DB),
		lifecycle.NewHook(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	record := payroll.SalaryRecord{
		EmployeeID:  "emp-1",
		CompanyID:   "company-1",
		PeriodMonth: 3,
		PeriodYear:  2024,
		BasicSalary: decimal.NewFromInt(50000),
		Allowances:  payroll.Allowances{HRA: decimal.NewFromInt(5000), Conveyance: decimal.NewFromInt(1000), Medical: decimal.NewFromInt(500)},
		Deductions:  payroll.Deductions{PF: decimal.NewFromInt(3000), Tax: decimal.NewFromInt(2000)},
		Bonus:       decimal.NewFromInt(2000),
		Status:      payroll.SalaryStatusDraft,
	}

	created, err := repo.Create(ctx, record)
	require.NoError(t, err)
	assert.True(t, created.TotalEarnings.Equal(decimal.NewFromInt(58500)))
	assert.True(t, created.TotalDeductions.Equal(decimal.NewFromInt(5000)))
	assert.True(t, created.NetPay.Equal(decimal.NewFromInt(53500)))

	_, err = repo.Create(ctx, record)
	assert.ErrorIs(t, err, payroll.ErrSalaryRecordAlreadyExists)

	byPeriod, err := repo.GetByEmployeePeriod(ctx, "emp-1", 3, 2024, "company-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byPeriod.ID)

	summary, err := repo.Summary(ctx, "company-1", 3, 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalEmployees)
	assert.True(t, summary.TotalNetPay.Equal(decimal.NewFromInt(53500)))
	assert.Equal(t, 1, summary.DraftCount)

	_, err = repo.GetByEmployeePeriod(ctx, "emp-1", 4, 2024, "company-1")
	assert.ErrorIs(t, err, payroll.ErrSalaryRecordNotFound)
}
