package leave

import (
	"context"
)

type LeaveService interface {
	CreateLeaveRequest(ctx context.Context, req CreateLeaveRequestRequest) (LeaveRequestResponse, error)
	UpdateLeaveRequest(ctx context.Context, req UpdateLeaveRequestRequest) (LeaveRequestResponse, error)
	ApproveLeaveRequest(ctx context.Context, requestID string) (LeaveRequestResponse, error)
	RejectLeaveRequest(ctx context.Context, req RejectLeaveRequestRequest) (LeaveRequestResponse, error)
	CancelLeaveRequest(ctx context.Context, requestID string) (LeaveRequestResponse, error)
	AddAttachment(ctx context.Context, req AddAttachmentRequest) (LeaveRequestResponse, error)
	GetLeaveRequest(ctx context.Context, requestID string) (LeaveRequestResponse, error)
	ListLeaveRequests(ctx context.Context, filter LeaveRequestFilter) (ListLeaveRequestResponse, error)
	DeleteLeaveRequest(ctx context.Context, requestID string) error
}
