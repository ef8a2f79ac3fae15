package attendance

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core/internal/domain/user"
	"github.com/cmlabs-hris/hris-core/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-core/internal/repository/lifecycle"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepo is an in-memory attendance.AttendanceRepository.
type memoryRepo struct {
	seq     int
	records map[string]attendance.AttendanceRecord
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: map[string]attendance.AttendanceRecord{}}
}

func (m *memoryRepo) Create(_ context.Context, rec attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	for _, r := range m.records {
		if r.CompanyID == rec.CompanyID && r.EmployeeID == rec.EmployeeID && r.Date.Equal(rec.Date) {
			return attendance.AttendanceRecord{}, attendance.ErrAlreadyCheckedIn
		}
	}
	m.seq++
	rec.ID = "att-" + strconv.Itoa(m.seq)
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id, companyID string) (attendance.AttendanceRecord, error) {
	rec, ok := m.records[id]
	if !ok || rec.CompanyID != companyID {
		return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
	}
	return rec, nil
}

func (m *memoryRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time, companyID string) (*attendance.AttendanceRecord, error) {
	for _, r := range m.records {
		if r.CompanyID == companyID && r.EmployeeID == employeeID && r.Date.Equal(date) {
			return &r, nil
		}
	}
	return nil, nil
}

func (m *memoryRepo) GetOpenSession(_ context.Context, employeeID, companyID string) (attendance.AttendanceRecord, error) {
	for _, r := range m.records {
		if r.CompanyID == companyID && r.EmployeeID == employeeID && r.CheckIn.Time != nil && r.CheckOut.Time == nil {
			return r, nil
		}
	}
	return attendance.AttendanceRecord{}, attendance.ErrNotCheckedIn
}

func (m *memoryRepo) Update(_ context.Context, rec attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	if _, ok := m.records[rec.ID]; !ok {
		return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
	}
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *memoryRepo) UpdateDerived(_ context.Context, rec attendance.AttendanceRecord) (bool, error) {
	stored, ok := m.records[rec.ID]
	if !ok {
		return false, nil
	}
	stored.WorkHours = rec.WorkHours
	m.records[rec.ID] = stored
	return true, nil
}

func (m *memoryRepo) List(_ context.Context, filter attendance.AttendanceFilter, companyID string) ([]attendance.AttendanceRecord, int64, error) {
	var out []attendance.AttendanceRecord
	for _, r := range m.records {
		if r.CompanyID != companyID {
			continue
		}
		if filter.EmployeeID != nil && r.EmployeeID != *filter.EmployeeID {
			continue
		}
		day := r.Date.Format("2006-01-02")
		if filter.StartDate != nil && day < *filter.StartDate {
			continue
		}
		if filter.EndDate != nil && day > *filter.EndDate {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	total := int64(len(out))
	from := (filter.Page - 1) * filter.Limit
	if from > len(out) {
		from = len(out)
	}
	to := min(from+filter.Limit, len(out))
	return out[from:to], total, nil
}

func (m *memoryRepo) Delete(_ context.Context, id, companyID string) error {
	rec, ok := m.records[id]
	if !ok || rec.CompanyID != companyID {
		return attendance.ErrAttendanceNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *memoryRepo) Scan(context.Context, string, int) ([]attendance.AttendanceRecord, error) {
	return nil, nil
}

var tokens = jwt.NewJWTService("test-secret", "1h")

func ctxAs(t *testing.T, role user.Role, employeeID string) context.Context {
	t.Helper()
	tokenString, _, err := tokens.GenerateAccessToken("user-"+employeeID, employeeID, "company-1", role)
	require.NoError(t, err)
	token, err := tokens.JWTAuth().Decode(tokenString)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func newTestService(repo *memoryRepo, clock *time.Time) *AttendanceServiceImpl {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewAttendanceService(
		lifecycle.NewAttendanceRepository(repo, lifecycle.NewHook(logger)),
		logger,
		time.UTC,
	).(*AttendanceServiceImpl)
	svc.now = func() time.Time { return *clock }
	return svc
}

func TestCheckInCheckOut_DerivesWorkHours(t *testing.T) {
	repo := newMemoryRepo()
	clock := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &clock)
	ctx := ctxAs(t, user.RoleEmployee, "emp-1")

	lat, lng := -6.2, 106.8
	in, err := svc.CheckIn(ctx, attendance.CheckInRequest{Latitude: &lat, Longitude: &lng})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", in.Date)
	assert.Nil(t, in.WorkHours)
	require.NotNil(t, in.CheckIn.Geolocation)
	assert.Equal(t, lat, in.CheckIn.Geolocation.Latitude)

	_, err = svc.CheckIn(ctx, attendance.CheckInRequest{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	clock = clock.Add(8*time.Hour + 30*time.Minute)
	out, err := svc.CheckOut(ctx, attendance.CheckOutRequest{})
	require.NoError(t, err)
	require.NotNil(t, out.WorkHours)
	assert.True(t, out.WorkHours.Equal(decimal.RequireFromString("8.50")))

	_, err = svc.CheckOut(ctx, attendance.CheckOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestCheckOut_WithoutCheckIn(t *testing.T) {
	clock := time.Date(2024, 3, 10, 17, 0, 0, 0, time.UTC)
	svc := newTestService(newMemoryRepo(), &clock)

	_, err := svc.CheckOut(ctxAs(t, user.RoleEmployee, "emp-1"), attendance.CheckOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestCheckIn_RequiresEmployee(t *testing.T) {
	clock := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(newMemoryRepo(), &clock)

	_, err := svc.CheckIn(ctxAs(t, user.RoleOwner, ""), attendance.CheckInRequest{})
	assert.ErrorIs(t, err, attendance.ErrEmployeeIDRequired)
}

func TestCheckIn_HalfLocationRejected(t *testing.T) {
	clock := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(newMemoryRepo(), &clock)

	lat := 1.0
	_, err := svc.CheckIn(ctxAs(t, user.RoleEmployee, "emp-1"), attendance.CheckInRequest{Latitude: &lat})
	assert.Error(t, err)
}

func TestCorrectAttendance(t *testing.T) {
	repo := newMemoryRepo()
	clock := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &clock)

	in, err := svc.CheckIn(ctxAs(t, user.RoleEmployee, "emp-1"), attendance.CheckInRequest{})
	require.NoError(t, err)

	out := "2024-03-10T13:30:00Z"
	req := attendance.CorrectAttendanceRequest{ID: in.ID, CheckOutTime: &out}

	_, err = svc.CorrectAttendance(ctxAs(t, user.RoleEmployee, "emp-1"), req)
	assert.ErrorIs(t, err, user.ErrManagerAccessRequired)

	corrected, err := svc.CorrectAttendance(ctxAs(t, user.RoleManager, "mgr-1"), req)
	require.NoError(t, err)
	require.NotNil(t, corrected.WorkHours)
	assert.True(t, corrected.WorkHours.Equal(decimal.RequireFromString("4.5")))

	// Removing the check-out clears the derived hours again.
	cleared, err := svc.CorrectAttendance(ctxAs(t, user.RoleManager, "mgr-1"), attendance.CorrectAttendanceRequest{ID: in.ID, ClearCheckOut: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.WorkHours)
}

func TestListAttendance_EmployeeSeesOwnOnly(t *testing.T) {
	repo := newMemoryRepo()
	clock := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &clock)

	_, err := svc.CheckIn(ctxAs(t, user.RoleEmployee, "emp-1"), attendance.CheckInRequest{})
	require.NoError(t, err)
	_, err = svc.CheckIn(ctxAs(t, user.RoleEmployee, "emp-2"), attendance.CheckInRequest{})
	require.NoError(t, err)

	own, err := svc.ListAttendance(ctxAs(t, user.RoleEmployee, "emp-1"), attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, own.TotalCount)
	assert.Equal(t, "1-1 of 1", own.Showing)

	all, err := svc.ListAttendance(ctxAs(t, user.RoleManager, "mgr-1"), attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.TotalCount)

	_, err = svc.GetAttendance(ctxAs(t, user.RoleEmployee, "emp-2"), own.Attendances[0].ID)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestGetMonthlySummary(t *testing.T) {
	repo := newMemoryRepo()
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &clock)
	ctx := ctxAs(t, user.RoleEmployee, "emp-1")

	for day := 0; day < 3; day++ {
		clock = time.Date(2024, 3, 1+day, 9, 0, 0, 0, time.UTC)
		_, err := svc.CheckIn(ctx, attendance.CheckInRequest{})
		require.NoError(t, err)
		clock = clock.Add(8 * time.Hour)
		_, err = svc.CheckOut(ctx, attendance.CheckOutRequest{})
		require.NoError(t, err)
	}
	// Outside the month.
	clock = time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	_, err := svc.CheckIn(ctx, attendance.CheckInRequest{})
	require.NoError(t, err)

	summary, err := svc.GetMonthlySummary(ctx, attendance.MonthlySummaryRequest{Month: 3, Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, "emp-1", summary.EmployeeID)
	assert.Equal(t, 3, summary.DaysRecorded)
	assert.Equal(t, 3, summary.DaysPresent)
	assert.True(t, summary.TotalWorkHours.Equal(decimal.NewFromInt(24)))

	_, err = svc.GetMonthlySummary(ctx, attendance.MonthlySummaryRequest{EmployeeID: "emp-2", Month: 3, Year: 2024})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
}

func TestDeleteAttendance_ManagerOnly(t *testing.T) {
	repo := newMemoryRepo()
	clock := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := newTestService(repo, &clock)

	in, err := svc.CheckIn(ctxAs(t, user.RoleEmployee, "emp-1"), attendance.CheckInRequest{})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteAttendance(ctxAs(t, user.RoleEmployee, "emp-1"), in.ID), user.ErrManagerAccessRequired)
	require.NoError(t, svc.DeleteAttendance(ctxAs(t, user.RoleOwner, ""), in.ID))
	assert.ErrorIs(t, svc.DeleteAttendance(ctxAs(t, user.RoleOwner, ""), in.ID), attendance.ErrAttendanceNotFound)
}
