package postgresql_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-core/internal/domain/leave"
	"github.com/cmlabs-hris/hris-core/internal/repository/lifecycle"
	"github.com/cmlabs-hris/hris-core/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaveRequestRepository_DerivesTotalDays(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := lifecycle.NewLeaveRequestRepository(
		postgresql.NewLeaveRequestRepository(setup.DB),
		lifecycle.NewHook(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	created, err := repo.Create(ctx, leave.LeaveRequest{
		EmployeeID: "emp-1",
		CompanyID:  "company-1",
		LeaveType:  leave.LeaveTypeAnnual,
		StartDate:  time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
		Status:     leave.LeaveRequestStatusPending,
		Attachments: []leave.Attachment{
			{Name: "note.pdf", URL: "https://files.example.com/note.pdf", UploadedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, created.TotalDays)
	require.Len(t, created.Attachments, 1)
	assert.Equal(t, "note.pdf", created.Attachments[0].Name)

	created.EndDate = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	updated, err := repo.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.TotalDays)

	fetched, err := repo.GetByID(ctx, created.ID, "company-1")
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.TotalDays)

	_, err = repo.GetByID(ctx, created.ID, "company-2")
	assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
}

func TestLeaveRequestRepository_ListOverlap(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveRequestRepository(setup.DB)

	for _, day := range []int{1, 10, 20} {
		_, err := repo.Create(ctx, leave.LeaveRequest{
			EmployeeID: "emp-1",
			CompanyID:  "company-1",
			LeaveType:  leave.LeaveTypeSick,
			StartDate:  time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2024, 3, day+1, 0, 0, 0, 0, time.UTC),
			TotalDays:  2,
			Status:     leave.LeaveRequestStatusPending,
		})
		require.NoError(t, err)
	}

	from, until := "2024-03-02", "2024-03-10"
	requests, total, err := repo.List(ctx, leave.LeaveRequestFilter{StartDate: &from, EndDate: &until, Page: 1, Limit: 10}, "company-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, requests, 2)

	page, err := repo.Scan(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	rest, err := repo.Scan(ctx, page[1].ID, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}
