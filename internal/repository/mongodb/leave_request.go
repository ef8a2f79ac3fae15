package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-core/internal/domain/leave"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type attachmentDoc struct {
	Name       string    `bson:"name"`
	URL        string    `bson:"url"`
	UploadedAt time.Time `bson:"uploaded_at"`
}

type leaveRequestDoc struct {
	ID              string          `bson:"_id"`
	EmployeeID      string          `bson:"employee_id"`
	CompanyID       string          `bson:"company_id"`
	LeaveType       string          `bson:"leave_type"`
	StartDate       time.Time       `bson:"start_date"`
	EndDate         time.Time       `bson:"end_date"`
	TotalDays       int             `bson:"total_days"`
	Reason          *string         `bson:"reason,omitempty"`
	Attachments     []attachmentDoc `bson:"attachments"`
	Status          string          `bson:"status"`
	ApprovedBy      *string         `bson:"approved_by,omitempty"`
	ApprovedAt      *time.Time      `bson:"approved_at,omitempty"`
	RejectionReason *string         `bson:"rejection_reason,omitempty"`
	CancelledBy     *string         `bson:"cancelled_by,omitempty"`
	CancelledAt     *time.Time      `bson:"cancelled_at,omitempty"`
	CreatedAt       time.Time       `bson:"created_at"`
	UpdatedAt       time.Time       `bson:"updated_at"`
}

func toLeaveRequestDoc(req leave.LeaveRequest) leaveRequestDoc {
	attachments := make([]attachmentDoc, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		attachments = append(attachments, attachmentDoc{Name: a.Name, URL: a.URL, UploadedAt: a.UploadedAt})
	}
	return leaveRequestDoc{
		ID:              req.ID,
		EmployeeID:      req.EmployeeID,
		CompanyID:       req.CompanyID,
		LeaveType:       string(req.LeaveType),
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		TotalDays:       req.TotalDays,
		Reason:          req.Reason,
		Attachments:     attachments,
		Status:          string(req.Status),
		ApprovedBy:      req.ApprovedBy,
		ApprovedAt:      req.ApprovedAt,
		RejectionReason: req.RejectionReason,
		CancelledBy:     req.CancelledBy,
		CancelledAt:     req.CancelledAt,
		CreatedAt:       req.CreatedAt,
		UpdatedAt:       req.UpdatedAt,
	}
}

func (d leaveRequestDoc) toDomain() leave.LeaveRequest {
	req := leave.LeaveRequest{
		ID:              d.ID,
		EmployeeID:      d.EmployeeID,
		CompanyID:       d.CompanyID,
		LeaveType:       leave.LeaveType(d.LeaveType),
		StartDate:       d.StartDate,
		EndDate:         d.EndDate,
		TotalDays:       d.TotalDays,
		Reason:          d.Reason,
		Status:          leave.LeaveRequestStatus(d.Status),
		ApprovedBy:      d.ApprovedBy,
		ApprovedAt:      d.ApprovedAt,
		RejectionReason: d.RejectionReason,
		CancelledBy:     d.CancelledBy,
		CancelledAt:     d.CancelledAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	for _, a := range d.Attachments {
		req.Attachments = append(req.Attachments, leave.Attachment{Name: a.Name, URL: a.URL, UploadedAt: a.UploadedAt})
	}
	return req
}

type leaveRequestRepository struct {
	coll *mongo.Collection
}

// NewLeaveRequestRepository ensures the leave_requests indexes exist.
func NewLeaveRequestRepository(ctx context.Context, db *MongoDB) (leave.LeaveRequestRepository, error) {
	coll := db.Collection("leave_requests")

	if _, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "employee_id", Value: 1}}},
		{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "start_date", Value: 1}, {Key: "end_date", Value: 1}}},
	}); err != nil {
		return nil, fmt.Errorf("create leave_requests indexes: %w", err)
	}

	return &leaveRequestRepository{coll: coll}, nil
}

func (r *leaveRequestRepository) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	id, err := newID()
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	now := time.Now().UTC()
	request.ID = id
	request.CreatedAt = now
	request.UpdatedAt = now

	doc := toLeaveRequestDoc(request)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("insert leave request: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *leaveRequestRepository) GetByID(ctx context.Context, id string, companyID string) (leave.LeaveRequest, error) {
	var doc leaveRequestDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "company_id": companyID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("find leave request: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *leaveRequestRepository) Update(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	request.UpdatedAt = time.Now().UTC()
	doc := toLeaveRequestDoc(request)

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": request.ID, "company_id": request.CompanyID}, doc)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("replace leave request: %w", err)
	}
	if res.MatchedCount == 0 {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return doc.toDomain(), nil
}

func (r *leaveRequestRepository) List(ctx context.Context, filter leave.LeaveRequestFilter, companyID string) ([]leave.LeaveRequest, int64, error) {
	query := bson.M{"company_id": companyID}
	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		query["employee_id"] = *filter.EmployeeID
	}
	if filter.LeaveType != nil && *filter.LeaveType != "" {
		query["leave_type"] = *filter.LeaveType
	}
	if filter.Status != nil && *filter.Status != "" {
		query["status"] = *filter.Status
	}
	// Date filters select requests overlapping the window.
	if filter.StartDate != nil && *filter.StartDate != "" {
		if d, err := time.Parse("2006-01-02", *filter.StartDate); err == nil {
			query["end_date"] = bson.M{"$gte": d}
		}
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		if d, err := time.Parse("2006-01-02", *filter.EndDate); err == nil {
			query["start_date"] = bson.M{"$lt": d.AddDate(0, 0, 1)}
		}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count leave requests: %w", err)
	}

	sortField := "created_at"
	switch filter.SortBy {
	case "start_date", "total_days", "status":
		sortField = filter.SortBy
	}
	sort := bson.D{{Key: sortField, Value: sortDirection(filter.SortOrder)}, {Key: "_id", Value: 1}}

	cursor, err := r.coll.Find(ctx, query, pageOptions(filter.Page, filter.Limit, sort))
	if err != nil {
		return nil, 0, fmt.Errorf("find leave requests: %w", err)
	}
	var docs []leaveRequestDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode leave requests: %w", err)
	}

	requests := make([]leave.LeaveRequest, 0, len(docs))
	for _, doc := range docs {
		requests = append(requests, doc.toDomain())
	}
	return requests, total, nil
}

func (r *leaveRequestRepository) Delete(ctx context.Context, id string, companyID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "company_id": companyID})
	if err != nil {
		return fmt.Errorf("delete leave request: %w", err)
	}
	if res.DeletedCount == 0 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

func (r *leaveRequestRepository) Scan(ctx context.Context, afterID string, limit int) ([]leave.LeaveRequest, error) {
	cursor, err := r.coll.Find(ctx, scanFilter(afterID), scanOptions(limit))
	if err != nil {
		return nil, fmt.Errorf("scan leave requests: %w", err)
	}
	var docs []leaveRequestDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode leave requests: %w", err)
	}

	requests := make([]leave.LeaveRequest, 0, len(docs))
	for _, doc := range docs {
		requests = append(requests, doc.toDomain())
	}
	return requests, nil
}

func (r *leaveRequestRepository) UpdateDerived(ctx context.Context, request leave.LeaveRequest) (bool, error) {
	filter := bson.M{
		"_id":        request.ID,
		"company_id": request.CompanyID,
		"start_date": request.StartDate,
		"end_date":   request.EndDate,
	}
	update := bson.M{"$set": bson.M{"total_days": request.TotalDays, "updated_at": time.Now().UTC()}}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("update leave request total days: %w", err)
	}
	return res.MatchedCount > 0, nil
}
