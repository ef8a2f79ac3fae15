package mongodb

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimal128RoundTrip(t *testing.T) {
	for _, s := range []string{"0", "58500", "0.01", "-1250.75", "123456789.123456789"} {
		d := decimal.RequireFromString(s)
		v, err := toDecimal128(d)
		require.NoError(t, err)
		back, err := fromDecimal128(v)
		require.NoError(t, err)
		assert.True(t, d.Equal(back), "%s came back as %s", s, back)
	}
}

func TestAttendanceDoc_GeoPointOrder(t *testing.T) {
	in := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	wh := decimal.RequireFromString("8.50")
	rec := attendance.AttendanceRecord{
		ID:   "id-1",
		Date: time.Date(2024, 3, 10, 15, 4, 5, 0, time.UTC),
		CheckIn: attendance.CheckPoint{
			Time:     &in,
			Location: &attendance.Geolocation{Latitude: -6.2, Longitude: 106.8},
		},
		Status:    attendance.StatusPresent,
		WorkHours: &wh,
	}

	doc, err := toAttendanceDoc(rec)
	require.NoError(t, err)
	require.NotNil(t, doc.CheckIn.Location)
	assert.Equal(t, "Point", doc.CheckIn.Location.Type)
	assert.Equal(t, []float64{106.8, -6.2}, doc.CheckIn.Location.Coordinates)
	assert.Nil(t, doc.CheckOut.Location)
	assert.Equal(t, 0, doc.Date.Hour())

	back, err := doc.toDomain()
	require.NoError(t, err)
	assert.Equal(t, rec.CheckIn.Location, back.CheckIn.Location)
	require.NotNil(t, back.WorkHours)
	assert.True(t, wh.Equal(*back.WorkHours))
}

func TestAttendanceDoc_NoWorkHours(t *testing.T) {
	doc, err := toAttendanceDoc(attendance.AttendanceRecord{Status: attendance.StatusAbsent})
	require.NoError(t, err)
	assert.Nil(t, doc.WorkHours)

	back, err := doc.toDomain()
	require.NoError(t, err)
	assert.Nil(t, back.WorkHours)
	assert.True(t, back.CheckIn.IsZero())
}

func TestSalaryDoc_RoundTrip(t *testing.T) {
	rec := payroll.SalaryRecord{
		ID:          "id-1",
		PeriodMonth: 3,
		PeriodYear:  2024,
		BasicSalary: decimal.NewFromInt(50000),
		Allowances:  payroll.Allowances{HRA: decimal.NewFromInt(5000)},
		Deductions:  payroll.Deductions{Tax: decimal.RequireFromString("2000.50")},
		Totals: payroll.Totals{
			TotalEarnings:   decimal.NewFromInt(55000),
			TotalDeductions: decimal.RequireFromString("2000.50"),
			NetPay:          decimal.RequireFromString("52999.50"),
		},
		Status: payroll.SalaryStatusDraft,
	}

	doc, err := toSalaryDoc(rec)
	require.NoError(t, err)
	back, err := doc.toDomain()
	require.NoError(t, err)

	assert.True(t, rec.BasicSalary.Equal(back.BasicSalary))
	assert.True(t, rec.Allowances.HRA.Equal(back.Allowances.HRA))
	assert.True(t, back.Allowances.Special.IsZero())
	assert.True(t, rec.Totals.Equal(back.Totals))
}

// Integration tests run against TEST_MONGODB_URI and are skipped without it.
func newTestMongo(t *testing.T) *MongoDB {
	t.Helper()
	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI not set")
	}

	ctx := context.Background()
	db, err := NewMongoDB(ctx, uri, "hris_core_test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	require.NoError(t, db.Drop(ctx))
	t.Cleanup(func() { _ = db.Close(context.Background()) })
	return db
}

func TestSalaryRepository_Mongo(t *testing.T) {
	db := newTestMongo(t)
	ctx := context.Background()

	repo, err := NewSalaryRepository(ctx, db)
	require.NoError(t, err)

	rec := payroll.SalaryRecord{
		EmployeeID:  "emp-1",
		CompanyID:   "company-1",
		PeriodMonth: 3,
		PeriodYear:  2024,
		BasicSalary: decimal.NewFromInt(30000),
		Totals: payroll.Totals{
			TotalEarnings: decimal.NewFromInt(30000),
			NetPay:        decimal.NewFromInt(30000),
		},
		Status: payroll.SalaryStatusDraft,
	}
	created, err := repo.Create(ctx, rec)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = repo.Create(ctx, rec)
	assert.ErrorIs(t, err, payroll.ErrSalaryRecordAlreadyExists)

	summary, err := repo.Summary(ctx, "company-1", 3, 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalEmployees)
	assert.True(t, summary.TotalNetPay.Equal(decimal.NewFromInt(30000)))

	_, err = repo.GetByID(ctx, created.ID, "company-2")
	assert.ErrorIs(t, err, payroll.ErrSalaryRecordNotFound)
}

func TestAttendanceRepository_MongoOpenSession(t *testing.T) {
	db := newTestMongo(t)
	ctx := context.Background()

	repo, err := NewAttendanceRepository(ctx, db)
	require.NoError(t, err)

	in := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	created, err := repo.Create(ctx, attendance.AttendanceRecord{
		EmployeeID: "emp-1",
		CompanyID:  "company-1",
		Date:       in,
		CheckIn:    attendance.CheckPoint{Time: &in},
		Status:     attendance.StatusPresent,
	})
	require.NoError(t, err)

	open, err := repo.GetOpenSession(ctx, "emp-1", "company-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, open.ID)

	same, err := repo.GetByEmployeeAndDate(ctx, "emp-1", in, "company-1")
	require.NoError(t, err)
	require.NotNil(t, same)

	none, err := repo.GetByEmployeeAndDate(ctx, "emp-1", in.AddDate(0, 0, 1), "company-1")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSalaryRepository_MongoUpdateDerivedIsGuarded(t *testing.T) {
	db := newTestMongo(t)
	ctx := context.Background()

	repo, err := NewSalaryRepository(ctx, db)
	require.NoError(t, err)

	created, err := repo.Create(ctx, payroll.SalaryRecord{
		EmployeeID:  "emp-1",
		CompanyID:   "company-1",
		PeriodMonth: 3,
		PeriodYear:  2024,
		BasicSalary: decimal.NewFromInt(30000),
		Bonus:       decimal.NewFromInt(500),
		Status:      payroll.SalaryStatusDraft,
	})
	require.NoError(t, err)

	snapshot := created
	edited := created
	edited.Bonus = decimal.NewFromInt(1000)
	_, err = repo.Update(ctx, edited)
	require.NoError(t, err)

	snapshot.Totals = payroll.Totals{TotalEarnings: decimal.NewFromInt(30500), NetPay: decimal.NewFromInt(30500)}
	ok, err := repo.UpdateDerived(ctx, snapshot)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.GetByID(ctx, created.ID, "company-1")
	require.NoError(t, err)
	assert.True(t, got.Bonus.Equal(decimal.NewFromInt(1000)))

	got.Totals = payroll.Totals{TotalEarnings: decimal.NewFromInt(31000), NetPay: decimal.NewFromInt(31000)}
	ok, err = repo.UpdateDerived(ctx, got)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = repo.GetByID(ctx, created.ID, "company-1")
	require.NoError(t, err)
	assert.True(t, got.NetPay.Equal(decimal.NewFromInt(31000)))
}
