package leave

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-core/internal/domain/leave"
	"github.com/cmlabs-hris/hris-core/internal/domain/user"
	"github.com/cmlabs-hris/hris-core/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-core/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-core/internal/repository/lifecycle"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	seq      int
	requests map[string]leave.LeaveRequest
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{requests: map[string]leave.LeaveRequest{}}
}

func (m *memoryRepo) Create(_ context.Context, r leave.LeaveRequest) (leave.LeaveRequest, error) {
	m.seq++
	r.ID = "lr-" + strconv.Itoa(m.seq)
	m.requests[r.ID] = r
	return r, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id, companyID string) (leave.LeaveRequest, error) {
	r, ok := m.requests[id]
	if !ok || r.CompanyID != companyID {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return r, nil
}

func (m *memoryRepo) Update(_ context.Context, r leave.LeaveRequest) (leave.LeaveRequest, error) {
	if _, ok := m.requests[r.ID]; !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	m.requests[r.ID] = r
	return r, nil
}

func (m *memoryRepo) UpdateDerived(_ context.Context, r leave.LeaveRequest) (bool, error) {
	stored, ok := m.requests[r.ID]
	if !ok {
		return false, nil
	}
	stored.TotalDays = r.TotalDays
	m.requests[r.ID] = stored
	return true, nil
}

func (m *memoryRepo) List(_ context.Context, filter leave.LeaveRequestFilter, companyID string) ([]leave.LeaveRequest, int64, error) {
	var out []leave.LeaveRequest
	for _, r := range m.requests {
		if r.CompanyID == companyID && (filter.EmployeeID == nil || r.EmployeeID == *filter.EmployeeID) {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memoryRepo) Delete(_ context.Context, id, companyID string) error {
	if _, err := m.GetByID(context.Background(), id, companyID); err != nil {
		return err
	}
	delete(m.requests, id)
	return nil
}

func (m *memoryRepo) Scan(context.Context, string, int) ([]leave.LeaveRequest, error) {
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

func newTestService() (*LeaveServiceImpl, *memoryRepo) {
	repo := newMemoryRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewLeaveService(lifecycle.NewLeaveRequestRepository(repo, lifecycle.NewHook(logger)), logger).(*LeaveServiceImpl)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC) }
	return svc, repo
}

func createRequest(t *testing.T, svc *LeaveServiceImpl, employeeID, start, end string) leave.LeaveRequestResponse {
	t.Helper()
	resp, err := svc.CreateLeaveRequest(ctxAs(t, user.RoleEmployee, employeeID), leave.CreateLeaveRequestRequest{
		LeaveType: "annual",
		StartDate: start,
		EndDate:   end,
	})
	require.NoError(t, err)
	return resp
}

func TestCreateLeaveRequest_DerivesTotalDays(t *testing.T) {
	svc, _ := newTestService()

	cases := []struct {
		name       string
		start, end string
		want       int
	}{
		{"same day", "2024-03-10", "2024-03-10", 1},
		{"three days", "2024-03-10", "2024-03-12", 3},
		{"leap year", "2024-02-28", "2024-03-01", 3},
		{"inverted", "2024-03-12", "2024-03-10", 3},
		{"partial day rounds up", "2024-03-10T00:00:00Z", "2024-03-11T01:00:00Z", 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp := createRequest(t, svc, "emp-1", c.start, c.end)
			assert.Equal(t, c.want, resp.TotalDays)
			assert.Equal(t, "pending", resp.Status)
			assert.Equal(t, "emp-1", resp.EmployeeID)
		})
	}
}

func TestCreateLeaveRequest_Validation(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateLeaveRequest(ctxAs(t, user.RoleEmployee, "emp-1"), leave.CreateLeaveRequestRequest{
		LeaveType: "sabbatical",
		StartDate: "2024-03-10",
	})
	var ve validator.ValidationErrors
	require.ErrorAs(t, err, &ve)
	m := ve.ToMap()
	assert.Contains(t, m, "leave_type")
	assert.Contains(t, m, "end_date")
}

func TestCreateLeaveRequest_OnBehalfRequiresManager(t *testing.T) {
	svc, _ := newTestService()
	other := "emp-2"
	req := leave.CreateLeaveRequestRequest{EmployeeID: &other, LeaveType: "sick", StartDate: "2024-03-10", EndDate: "2024-03-10"}

	_, err := svc.CreateLeaveRequest(ctxAs(t, user.RoleEmployee, "emp-1"), req)
	assert.ErrorIs(t, err, user.ErrManagerAccessRequired)

	resp, err := svc.CreateLeaveRequest(ctxAs(t, user.RoleManager, "mgr-1"), req)
	require.NoError(t, err)
	assert.Equal(t, "emp-2", resp.EmployeeID)
}

func TestUpdateLeaveRequest_RederivesTotalDays(t *testing.T) {
	svc, _ := newTestService()
	created := createRequest(t, svc, "emp-1", "2024-03-10", "2024-03-10")

	end := "2024-03-14"
	updated, err := svc.UpdateLeaveRequest(ctxAs(t, user.RoleEmployee, "emp-1"), leave.UpdateLeaveRequestRequest{ID: created.ID, EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.TotalDays)
}

func TestApproveRejectCancel(t *testing.T) {
	svc, _ := newTestService()
	created := createRequest(t, svc, "emp-1", "2024-03-10", "2024-03-12")

	_, err := svc.ApproveLeaveRequest(ctxAs(t, user.RoleEmployee, "emp-1"), created.ID)
	assert.ErrorIs(t, err, user.ErrManagerAccessRequired)

	approved, err := svc.ApproveLeaveRequest(ctxAs(t, user.RoleManager, "mgr-1"), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "approved", approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "user-mgr-1", *approved.ApprovedBy)
	assert.Equal(t, 3, approved.TotalDays)

	_, err = svc.RejectLeaveRequest(ctxAs(t, user.RoleManager, "mgr-1"), leave.RejectLeaveRequestRequest{RequestID: created.ID, RejectionReason: "late"})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)

	end := "2024-03-20"
	_, err = svc.UpdateLeaveRequest(ctxAs(t, user.RoleEmployee, "emp-1"), leave.UpdateLeaveRequestRequest{ID: created.ID, EndDate: &end})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotEditable)

	cancelled, err := svc.CancelLeaveRequest(ctxAs(t, user.RoleEmployee, "emp-1"), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)

	_, err = svc.CancelLeaveRequest(ctxAs(t, user.RoleEmployee, "emp-1"), created.ID)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotCancellable)
}

func TestRejectLeaveRequest(t *testing.T) {
	svc, _ := newTestService()
	created := createRequest(t, svc, "emp-1", "2024-03-10", "2024-03-10")

	rejected, err := svc.RejectLeaveRequest(ctxAs(t, user.RoleOwner, ""), leave.RejectLeaveRequestRequest{RequestID: created.ID, RejectionReason: "peak season"})
	require.NoError(t, err)
	assert.Equal(t, "rejected", rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "peak season", *rejected.RejectionReason)
}

func TestAddAttachment(t *testing.T) {
	svc, _ := newTestService()
	created := createRequest(t, svc, "emp-1", "2024-03-10", "2024-03-10")

	resp, err := svc.AddAttachment(ctxAs(t, user.RoleEmployee, "emp-1"), leave.AddAttachmentRequest{
		RequestID:       created.ID,
		AttachmentInput: leave.AttachmentInput{Name: "note.pdf", URL: "https://files.example.com/note.pdf"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Attachments, 1)
	assert.Equal(t, "2024-03-01T08:00:00Z", resp.Attachments[0].UploadedAt)

	_, err = svc.AddAttachment(ctxAs(t, user.RoleEmployee, "emp-1"), leave.AddAttachmentRequest{
		RequestID:       created.ID,
		AttachmentInput: leave.AttachmentInput{Name: "x", URL: "not a url"},
	})
	assert.Error(t, err)
}

func TestGetAndList_Isolation(t *testing.T) {
	svc, _ := newTestService()
	mine := createRequest(t, svc, "emp-1", "2024-03-10", "2024-03-10")
	createRequest(t, svc, "emp-2", "2024-03-10", "2024-03-10")

	_, err := svc.GetLeaveRequest(ctxAs(t, user.RoleEmployee, "emp-2"), mine.ID)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)

	list, err := svc.ListLeaveRequests(ctxAs(t, user.RoleEmployee, "emp-1"), leave.LeaveRequestFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.TotalCount)

	all, err := svc.ListLeaveRequests(ctxAs(t, user.RoleManager, "mgr-1"), leave.LeaveRequestFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.TotalCount)
}

func TestDeleteLeaveRequest(t *testing.T) {
	svc, repo := newTestService()
	created := createRequest(t, svc, "emp-1", "2024-03-10", "2024-03-10")

	_, err := svc.ApproveLeaveRequest(ctxAs(t, user.RoleManager, "mgr-1"), created.ID)
	require.NoError(t, err)

	err = svc.DeleteLeaveRequest(ctxAs(t, user.RoleEmployee, "emp-1"), created.ID)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotEditable)

	require.NoError(t, svc.DeleteLeaveRequest(ctxAs(t, user.RoleManager, "mgr-1"), created.ID))
	assert.Empty(t, repo.requests)
}
