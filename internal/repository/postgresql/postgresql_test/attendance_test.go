package postgresql_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core/internal/repository/lifecycle"
	"github.com/cmlabs-hris/hris-core/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceRepository_CheckInCheckOut(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := lifecycle.NewAttendanceRepository(
		postgresql.NewAttendanceRepository(setup.DB),
		lifecycle.NewHook(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	in := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	out := time.Date(2024, 3, 10, 17, 30, 0, 0, time.UTC)

	created, err := repo.Create(ctx, attendance.AttendanceRecord{
		EmployeeID: "emp-1",
		CompanyID:  "company-1",
		Date:       in,
		CheckIn: attendance.CheckPoint{
			Time:     &in,
			Location: &attendance.Geolocation{Latitude: -6.2, Longitude: 106.8},
		},
		Status: attendance.StatusPresent,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Nil(t, created.WorkHours)
	require.NotNil(t, created.CheckIn.Location)
	assert.InDelta(t, -6.2, created.CheckIn.Location.Latitude, 1e-9)

	open, err := repo.GetOpenSession(ctx, "emp-1", "company-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, open.ID)

	open.CheckOut.Time = &out
	updated, err := repo.Update(ctx, open)
	require.NoError(t, err)
	require.NotNil(t, updated.WorkHours)
	assert.True(t, updated.WorkHours.Equal(decimal.RequireFromString("8.50")))

	_, err = repo.GetOpenSession(ctx, "emp-1", "company-1")
	assert.True(t, errors.Is(err, attendance.ErrNotCheckedIn))

	// Same employee and day is rejected.
	_, err = repo.Create(ctx, attendance.AttendanceRecord{
		EmployeeID: "emp-1",
		CompanyID:  "company-1",
		Date:       in,
		CheckIn:    attendance.CheckPoint{Time: &in},
		Status:     attendance.StatusPresent,
	})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)
}

func TestAttendanceRepository_ListAndDelete(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewAttendanceRepository(setup.DB)

	for day := 1; day <= 3; day++ {
		d := time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC)
		_, err := repo.Create(ctx, attendance.AttendanceRecord{
			EmployeeID: "emp-1",
			CompanyID:  "company-1",
			Date:       d,
			Status:     attendance.StatusAbsent,
		})
		require.NoError(t, err)
	}

	records, total, err := repo.List(ctx, attendance.AttendanceFilter{Page: 1, Limit: 2, SortOrder: "asc"}, "company-1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Date.Day())

	_, total, err = repo.List(ctx, attendance.AttendanceFilter{Page: 1, Limit: 10}, "company-2")
	require.NoError(t, err)
	assert.Zero(t, total)

	require.NoError(t, repo.Delete(ctx, records[0].ID, "company-1"))
	assert.ErrorIs(t, repo.Delete(ctx, records[0].ID, "company-1"), attendance.ErrAttendanceNotFound)

	_, err = repo.GetByID(ctx, "not-a-uuid", "company-1")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestAttendanceRepository_UpdateDerivedIsGuarded(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	raw := postgresql.NewAttendanceRepository(setup.DB)

	in := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	out := time.Date(2024, 3, 10, 17, 0, 0, 0, time.UTC)
	wrong := decimal.RequireFromString("1.00")

	created, err := raw.Create(ctx, attendance.AttendanceRecord{
		EmployeeID: "emp-1",
		CompanyID:  "company-1",
		Date:       in,
		CheckIn:    attendance.CheckPoint{Time: &in},
		CheckOut:   attendance.CheckPoint{Time: &out},
		Status:     attendance.StatusPresent,
		WorkHours:  &wrong,
	})
	require.NoError(t, err)

	// a snapshot taken before someone moved the check-out
	snapshot := created
	later := out.Add(time.Hour)
	moved := created
	moved.CheckOut.Time = &later
	_, err = raw.Update(ctx, moved)
	require.NoError(t, err)

	fixed := decimal.RequireFromString("8.00")
	snapshot.WorkHours = &fixed
	ok, err := raw.UpdateDerived(ctx, snapshot)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := raw.GetByID(ctx, created.ID, "company-1")
	require.NoError(t, err)
	assert.True(t, got.CheckOut.Time.Equal(later))

	got.WorkHours = &fixed
	ok, err = raw.UpdateDerived(ctx, got)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = raw.GetByID(ctx, created.ID, "company-1")
	require.NoError(t, err)
	require.NotNil(t, got.WorkHours)
	assert.True(t, got.WorkHours.Equal(fixed))
}
