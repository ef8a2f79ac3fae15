package leave

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/hris-core/internal/domain/leave"
	"github.com/cmlabs-hris/hris-core/internal/domain/user"
	"github.com/cmlabs-hris/hris-core/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-core/internal/pkg/validator"
)

type LeaveServiceImpl struct {
	leave.LeaveRequestRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewLeaveService builds the service. TotalDays is derived by the repository's lifecycle hook.
func NewLeaveService(leaveRequestRepository leave.LeaveRequestRepository, logger *slog.Logger) leave.LeaveService {
	return &LeaveServiceImpl{
		LeaveRequestRepository: leaveRequestRepository,
		logger:                 logger,
		now:                    time.Now,
	}
}

// CreateLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) CreateLeaveRequest(ctx context.Context, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	employeeID := principal.EmployeeID
	if req.EmployeeID != nil {
		employeeID = *req.EmployeeID
	}
	if employeeID == "" {
		return leave.LeaveRequestResponse{}, validator.ValidationErrors{{Field: "employee_id", Message: "employee_id is required"}}
	}
	// Filing on behalf of someone else is a manager action.
	if !principal.CanAccessEmployee(employeeID) {
		return leave.LeaveRequestResponse{}, user.ErrManagerAccessRequired
	}

	startDate, _ := validator.ParseDateOrDateTime(req.StartDate)
	endDate, _ := validator.ParseDateOrDateTime(req.EndDate)
	now := s.now().UTC()

	attachments := make([]leave.Attachment, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		attachments = append(attachments, leave.Attachment{Name: a.Name, URL: a.URL, UploadedAt: now})
	}

	created, err := s.LeaveRequestRepository.Create(ctx, leave.LeaveRequest{
		EmployeeID:  employeeID,
		CompanyID:   principal.CompanyID,
		LeaveType:   leave.LeaveType(req.LeaveType),
		StartDate:   startDate,
		EndDate:     endDate,
		Reason:      req.Reason,
		Attachments: attachments,
		Status:      leave.LeaveRequestStatusPending,
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	s.logger.InfoContext(ctx, "leave request created",
		slog.String("leave_request_id", created.ID),
		slog.String("employee_id", created.EmployeeID),
		slog.Int("total_days", created.TotalDays),
	)

	return mapLeaveRequestToResponse(created), nil
}

// UpdateLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) UpdateLeaveRequest(ctx context.Context, req leave.UpdateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	_, request, err := s.load(ctx, req.ID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if request.Status != leave.LeaveRequestStatusPending {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotEditable
	}

	if req.LeaveType != nil {
		request.LeaveType = leave.LeaveType(*req.LeaveType)
	}
	if req.StartDate != nil {
		request.StartDate, _ = validator.ParseDateOrDateTime(*req.StartDate)
	}
	if req.EndDate != nil {
		request.EndDate, _ = validator.ParseDateOrDateTime(*req.EndDate)
	}
	if req.Reason != nil {
		request.Reason = req.Reason
	}

	updated, err := s.LeaveRequestRepository.Update(ctx, request)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to update leave request: %w", err)
	}
	return mapLeaveRequestToResponse(updated), nil
}

// ApproveLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) ApproveLeaveRequest(ctx context.Context, requestID string) (leave.LeaveRequestResponse, error) {
	principal, request, err := s.load(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !principal.CanApprove() {
		return leave.LeaveRequestResponse{}, user.ErrManagerAccessRequired
	}
	if request.Status != leave.LeaveRequestStatusPending {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestAlreadyProcessed
	}

	approvedAt := s.now().UTC()
	request.Status = leave.LeaveRequestStatusApproved
	request.ApprovedBy = &principal.UserID
	request.ApprovedAt = &approvedAt

	updated, err := s.LeaveRequestRepository.Update(ctx, request)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to update leave request: %w", err)
	}

	s.logger.InfoContext(ctx, "leave request approved",
		slog.String("leave_request_id", updated.ID),
		slog.String("approved_by", principal.UserID),
	)
	return mapLeaveRequestToResponse(updated), nil
}

// RejectLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) RejectLeaveRequest(ctx context.Context, req leave.RejectLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	principal, request, err := s.load(ctx, req.RequestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !principal.CanApprove() {
		return leave.LeaveRequestResponse{}, user.ErrManagerAccessRequired
	}
	if request.Status != leave.LeaveRequestStatusPending {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestAlreadyProcessed
	}

	rejectedAt := s.now().UTC()
	request.Status = leave.LeaveRequestStatusRejected
	request.ApprovedBy = &principal.UserID
	request.ApprovedAt = &rejectedAt
	request.RejectionReason = &req.RejectionReason

	updated, err := s.LeaveRequestRepository.Update(ctx, request)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to update leave request: %w", err)
	}

	s.logger.InfoContext(ctx, "leave request rejected",
		slog.String("leave_request_id", updated.ID),
		slog.String("rejected_by", principal.UserID),
	)
	return mapLeaveRequestToResponse(updated), nil
}

// CancelLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) CancelLeaveRequest(ctx context.Context, requestID string) (leave.LeaveRequestResponse, error) {
	principal, request, err := s.load(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	if request.Status != leave.LeaveRequestStatusPending && request.Status != leave.LeaveRequestStatusApproved {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotCancellable
	}

	cancelledAt := s.now().UTC()
	request.Status = leave.LeaveRequestStatusCancelled
	request.CancelledBy = &principal.UserID
	request.CancelledAt = &cancelledAt

	updated, err := s.LeaveRequestRepository.Update(ctx, request)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to update leave request: %w", err)
	}
	return mapLeaveRequestToResponse(updated), nil
}

// AddAttachment implements leave.LeaveService.
func (s *LeaveServiceImpl) AddAttachment(ctx context.Context, req leave.AddAttachmentRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	_, request, err := s.load(ctx, req.RequestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if request.Status != leave.LeaveRequestStatusPending {
		return leave.LeaveRequestResponse{}, leave.ErrLeaveRequestNotEditable
	}

	request.Attachments = append(request.Attachments, leave.Attachment{
		Name:       req.Name,
		URL:        req.URL,
		UploadedAt: s.now().UTC(),
	})

	updated, err := s.LeaveRequestRepository.Update(ctx, request)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to update leave request: %w", err)
	}
	return mapLeaveRequestToResponse(updated), nil
}

// GetLeaveRequest implements leave.LeaveService.
func (s *LeaveServiceImpl) GetLeaveRequest(ctx context.Context, requestID string) (leave.LeaveRequestResponse, error) {
	_, request, err := s.load(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return mapLeaveRequestToResponse(request), nil
}

// ListLeaveRequests implements leave.LeaveService.
func (s *LeaveServiceImpl) ListLeaveRequests(ctx context.Context, filter leave.LeaveRequestFilter) (leave.ListLeaveRequestResponse, error) {
	if err := filter.Validate(); err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}

	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}
	// Employees only ever see their own requests.
	if !principal.Role.IsManager() {
		if principal.EmployeeID == "" {
			return leave.ListLeaveRequestResponse{}, user.ErrInsufficientPermissions
		}
		filter.EmployeeID = &principal.EmployeeID
	}

	requests, total, err := s.LeaveRequestRepository.List(ctx, filter, principal.CompanyID)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	responses := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, mapLeaveRequestToResponse(r))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return leave.ListLeaveRequestResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Requests:   responses,
	}, nil
}

// DeleteLeaveRequest implements leave.LeaveService.
// Employees may withdraw their own pending requests; managers may delete any.
func (s *LeaveServiceImpl) DeleteLeaveRequest(ctx context.Context, requestID string) error {
	principal, request, err := s.load(ctx, requestID)
	if err != nil {
		return err
	}
	if !principal.CanApprove() && request.Status != leave.LeaveRequestStatusPending {
		return leave.ErrLeaveRequestNotEditable
	}

	if err := s.LeaveRequestRepository.Delete(ctx, request.ID, principal.CompanyID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "leave request deleted",
		slog.String("leave_request_id", request.ID),
		slog.String("deleted_by", principal.UserID),
	)
	return nil
}

// load fetches a request the caller is allowed to see. Requests of other employees
// read as not found for non-managers.
func (s *LeaveServiceImpl) load(ctx context.Context, requestID string) (user.Principal, leave.LeaveRequest, error) {
	principal, err := jwt.PrincipalFromContext(ctx)
	if err != nil {
		return user.Principal{}, leave.LeaveRequest{}, err
	}

	request, err := s.LeaveRequestRepository.GetByID(ctx, requestID, principal.CompanyID)
	if err != nil {
		return user.Principal{}, leave.LeaveRequest{}, err
	}
	if !principal.CanAccessEmployee(request.EmployeeID) {
		return user.Principal{}, leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return principal, request, nil
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func mapLeaveRequestToResponse(r leave.LeaveRequest) leave.LeaveRequestResponse {
	attachments := make([]leave.AttachmentResponse, 0, len(r.Attachments))
	for _, a := range r.Attachments {
		attachments = append(attachments, leave.AttachmentResponse{
			Name:       a.Name,
			URL:        a.URL,
			UploadedAt: a.UploadedAt.UTC().Format(time.RFC3339),
		})
	}

	return leave.LeaveRequestResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		CompanyID:       r.CompanyID,
		LeaveType:       string(r.LeaveType),
		StartDate:       r.StartDate.UTC().Format(time.RFC3339),
		EndDate:         r.EndDate.UTC().Format(time.RFC3339),
		TotalDays:       r.TotalDays,
		Reason:          r.Reason,
		Attachments:     attachments,
		Status:          string(r.Status),
		ApprovedBy:      r.ApprovedBy,
		ApprovedAt:      timePtrToString(r.ApprovedAt),
		RejectionReason: r.RejectionReason,
		CancelledBy:     r.CancelledBy,
		CancelledAt:     timePtrToString(r.CancelledAt),
		CreatedAt:       r.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
