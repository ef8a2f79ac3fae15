package lifecycle

import (
	"context"

	"github.com/cmlabs-hris/hris-core/internal/domain/leave"
)

type leaveRequestRepository struct {
	leave.LeaveRequestRepository
	hook *Hook
}

// NewLeaveRequestRepository wraps next so that Create and Update derive TotalDays first.
func NewLeaveRequestRepository(next leave.LeaveRequestRepository, hook *Hook) leave.LeaveRequestRepository {
	return &leaveRequestRepository{LeaveRequestRepository: next, hook: hook}
}

func (r *leaveRequestRepository) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.hook.BeforeCommitLeave(&request)
	return r.LeaveRequestRepository.Create(ctx, request)
}

func (r *leaveRequestRepository) Update(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.hook.BeforeCommitLeave(&request)
	return r.LeaveRequestRepository.Update(ctx, request)
}

// UpdateDerived re-derives TotalDays from request's dates, which are passed on unchanged.
func (r *leaveRequestRepository) UpdateDerived(ctx context.Context, request leave.LeaveRequest) (bool, error) {
	request.TotalDays = DeriveTotalDays(request)
	return r.LeaveRequestRepository.UpdateDerived(ctx, request)
}
