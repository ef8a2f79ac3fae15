package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-core/internal/domain/leave"
	"github.com/cmlabs-hris/hris-core/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepository struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepository{db: db}
}

const leaveRequestColumns = `
	id, employee_id, company_id, leave_type, start_date, end_date, total_days,
	reason, attachments, status, approved_by, approved_at, rejection_reason,
	cancelled_by, cancelled_at, created_at, updated_at`

// attachmentRow is the JSONB shape of one attachment.
type attachmentRow struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func encodeAttachments(in []leave.Attachment) ([]byte, error) {
	rows := make([]attachmentRow, 0, len(in))
	for _, a := range in {
		rows = append(rows, attachmentRow{Name: a.Name, URL: a.URL, UploadedAt: a.UploadedAt})
	}
	return json.Marshal(rows)
}

func scanLeaveRequest(row rowScanner) (leave.LeaveRequest, error) {
	var (
		req         leave.LeaveRequest
		leaveType   string
		status      string
		attachments []byte
	)
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.CompanyID, &leaveType, &req.StartDate, &req.EndDate, &req.TotalDays,
		&req.Reason, &attachments, &status, &req.ApprovedBy, &req.ApprovedAt, &req.RejectionReason,
		&req.CancelledBy, &req.CancelledAt, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	req.LeaveType = leave.LeaveType(leaveType)
	req.Status = leave.LeaveRequestStatus(status)

	var rows []attachmentRow
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &rows); err != nil {
			return leave.LeaveRequest{}, fmt.Errorf("decode attachments: %w", err)
		}
	}
	for _, a := range rows {
		req.Attachments = append(req.Attachments, leave.Attachment{Name: a.Name, URL: a.URL, UploadedAt: a.UploadedAt})
	}

	return req, nil
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	attachments, err := encodeAttachments(request.Attachments)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to encode attachments: %w", err)
	}

	query := `
		INSERT INTO leave_requests (
			employee_id, company_id, leave_type, start_date, end_date, total_days,
			reason, attachments, status, approved_by, approved_at, rejection_reason,
			cancelled_by, cancelled_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + leaveRequestColumns

	created, err := scanLeaveRequest(q.QueryRow(ctx, query,
		request.EmployeeID, request.CompanyID, string(request.LeaveType), request.StartDate, request.EndDate, request.TotalDays,
		request.Reason, attachments, string(request.Status), request.ApprovedBy, request.ApprovedAt, request.RejectionReason,
		request.CancelledBy, request.CancelledAt,
	))
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return created, nil
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) GetByID(ctx context.Context, id string, companyID string) (leave.LeaveRequest, error) {
	if !isUUID(id) {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE id = $1 AND company_id = $2`

	req, err := scanLeaveRequest(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}

	return req, nil
}

// Update implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) Update(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	if !isUUID(request.ID) {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	q := GetQuerier(ctx, r.db)

	attachments, err := encodeAttachments(request.Attachments)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to encode attachments: %w", err)
	}

	query := `
		UPDATE leave_requests SET
			leave_type = $3, start_date = $4, end_date = $5, total_days = $6,
			reason = $7, attachments = $8, status = $9,
			approved_by = $10, approved_at = $11, rejection_reason = $12,
			cancelled_by = $13, cancelled_at = $14,
			updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING ` + leaveRequestColumns

	updated, err := scanLeaveRequest(q.QueryRow(ctx, query,
		request.ID, request.CompanyID,
		string(request.LeaveType), request.StartDate, request.EndDate, request.TotalDays,
		request.Reason, attachments, string(request.Status),
		request.ApprovedBy, request.ApprovedAt, request.RejectionReason,
		request.CancelledBy, request.CancelledAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("failed to update leave request: %w", err)
	}

	return updated, nil
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) List(ctx context.Context, filter leave.LeaveRequestFilter, companyID string) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	// Build WHERE clause
	baseWhere := "company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.LeaveType != nil && *filter.LeaveType != "" {
		baseWhere += fmt.Sprintf(" AND leave_type = $%d", argIdx)
		args = append(args, *filter.LeaveType)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	// Date filters select requests overlapping the window.
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND end_date::date >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND start_date::date <= $%d::date", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM leave_requests WHERE `+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	orderByField := "created_at"
	switch filter.SortBy {
	case "start_date":
		orderByField = "start_date"
	case "total_days":
		orderByField = "total_days"
	case "status":
		orderByField = "status"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM leave_requests
		WHERE %s
		ORDER BY %s %s, id
		LIMIT $%d OFFSET $%d
	`, leaveRequestColumns, baseWhere, orderByField, sortDirection(filter.SortOrder), argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate leave requests: %w", err)
	}

	return requests, total, nil
}

// Delete implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) Delete(ctx context.Context, id string, companyID string) error {
	if !isUUID(id) {
		return leave.ErrLeaveRequestNotFound
	}
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM leave_requests WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete leave request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

// Scan implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) Scan(ctx context.Context, afterID string, limit int) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + `
		FROM leave_requests
		WHERE ($1 = '' OR id::text > $1)
		ORDER BY id::text
		LIMIT $2`

	rows, err := q.Query(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to scan leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// UpdateDerived implements leave.LeaveRequestRepository.
func (r *leaveRequestRepository) UpdateDerived(ctx context.Context, request leave.LeaveRequest) (bool, error) {
	if !isUUID(request.ID) {
		return false, nil
	}
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE leave_requests SET total_days = $3, updated_at = NOW()
		WHERE id = $1 AND company_id = $2 AND start_date = $4 AND end_date = $5`,
		request.ID, request.CompanyID, request.TotalDays, request.StartDate, request.EndDate,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update leave request total days: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
