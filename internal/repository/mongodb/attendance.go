package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-core/internal/domain/attendance"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// geoPoint is a GeoJSON point. Coordinates are [longitude, latitude].
type geoPoint struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

type checkPointDoc struct {
	Time          *time.Time `bson:"time,omitempty"`
	Location      *geoPoint  `bson:"location,omitempty"`
	SourceAddress *string    `bson:"source_address,omitempty"`
}

type attendanceDoc struct {
	ID         string           `bson:"_id"`
	EmployeeID string           `bson:"employee_id"`
	CompanyID  string           `bson:"company_id"`
	Date       time.Time        `bson:"date"`
	CheckIn    checkPointDoc    `bson:"check_in"`
	CheckOut   checkPointDoc    `bson:"check_out"`
	Status     string           `bson:"status"`
	WorkHours  *bson.Decimal128 `bson:"work_hours,omitempty"`
	Notes      *string          `bson:"notes,omitempty"`
	CreatedAt  time.Time        `bson:"created_at"`
	UpdatedAt  time.Time        `bson:"updated_at"`
}

func toCheckPointDoc(c attendance.CheckPoint) checkPointDoc {
	doc := checkPointDoc{Time: c.Time, SourceAddress: c.SourceAddress}
	if c.Location != nil {
		doc.Location = &geoPoint{
			Type:        "Point",
			Coordinates: []float64{c.Location.Longitude, c.Location.Latitude},
		}
	}
	return doc
}

func (d checkPointDoc) toDomain() attendance.CheckPoint {
	c := attendance.CheckPoint{Time: d.Time, SourceAddress: d.SourceAddress}
	if d.Location != nil && len(d.Location.Coordinates) == 2 {
		c.Location = &attendance.Geolocation{
			Longitude: d.Location.Coordinates[0],
			Latitude:  d.Location.Coordinates[1],
		}
	}
	return c
}

func toAttendanceDoc(rec attendance.AttendanceRecord) (attendanceDoc, error) {
	doc := attendanceDoc{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,
		CompanyID:  rec.CompanyID,
		Date:       dayStart(rec.Date),
		CheckIn:    toCheckPointDoc(rec.CheckIn),
		CheckOut:   toCheckPointDoc(rec.CheckOut),
		Status:     string(rec.Status),
		Notes:      rec.Notes,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
	if rec.WorkHours != nil {
		wh, err := toDecimal128(*rec.WorkHours)
		if err != nil {
			return attendanceDoc{}, err
		}
		doc.WorkHours = &wh
	}
	return doc, nil
}

func (d attendanceDoc) toDomain() (attendance.AttendanceRecord, error) {
	rec := attendance.AttendanceRecord{
		ID:         d.ID,
		EmployeeID: d.EmployeeID,
		CompanyID:  d.CompanyID,
		Date:       d.Date.UTC(),
		CheckIn:    d.CheckIn.toDomain(),
		CheckOut:   d.CheckOut.toDomain(),
		Status:     attendance.Status(d.Status),
		Notes:      d.Notes,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
	if d.WorkHours != nil {
		wh, err := fromDecimal128(*d.WorkHours)
		if err != nil {
			return attendance.AttendanceRecord{}, err
		}
		rec.WorkHours = &wh
	}
	return rec, nil
}

type attendanceRepository struct {
	coll *mongo.Collection
}

// NewAttendanceRepository ensures the attendances indexes exist.
func NewAttendanceRepository(ctx context.Context, db *MongoDB) (attendance.AttendanceRepository, error) {
	coll := db.Collection("attendances")

	if _, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "employee_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "check_in.location", Value: "2dsphere"}}},
	}); err != nil {
		return nil, fmt.Errorf("create attendances indexes: %w", err)
	}

	return &attendanceRepository{coll: coll}, nil
}

func (r *attendanceRepository) decodeOne(res *mongo.SingleResult, notFound error) (attendance.AttendanceRecord, error) {
	var doc attendanceDoc
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return attendance.AttendanceRecord{}, notFound
		}
		return attendance.AttendanceRecord{}, fmt.Errorf("find attendance: %w", err)
	}
	return doc.toDomain()
}

func (r *attendanceRepository) decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]attendance.AttendanceRecord, error) {
	var docs []attendanceDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode attendances: %w", err)
	}
	records := make([]attendance.AttendanceRecord, 0, len(docs))
	for _, doc := range docs {
		rec, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *attendanceRepository) Create(ctx context.Context, rec attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	id, err := newID()
	if err != nil {
		return attendance.AttendanceRecord{}, err
	}
	now := time.Now().UTC()
	rec.ID = id
	rec.CreatedAt = now
	rec.UpdatedAt = now

	doc, err := toAttendanceDoc(rec)
	if err != nil {
		return attendance.AttendanceRecord{}, err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return attendance.AttendanceRecord{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.AttendanceRecord{}, fmt.Errorf("insert attendance: %w", err)
	}
	return doc.toDomain()
}

func (r *attendanceRepository) GetByID(ctx context.Context, id string, companyID string) (attendance.AttendanceRecord, error) {
	res := r.coll.FindOne(ctx, bson.M{"_id": id, "company_id": companyID})
	return r.decodeOne(res, attendance.ErrAttendanceNotFound)
}

func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*attendance.AttendanceRecord, error) {
	res := r.coll.FindOne(ctx, bson.M{
		"employee_id": employeeID,
		"company_id":  companyID,
		"date":        dayStart(date),
	})
	rec, err := r.decodeOne(res, attendance.ErrAttendanceNotFound)
	if errors.Is(err, attendance.ErrAttendanceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *attendanceRepository) GetOpenSession(ctx context.Context, employeeID string, companyID string) (attendance.AttendanceRecord, error) {
	res := r.coll.FindOne(ctx,
		bson.M{
			"employee_id":    employeeID,
			"company_id":     companyID,
			"check_in.time":  bson.M{"$exists": true},
			"check_out.time": bson.M{"$exists": false},
		},
		options.FindOne().SetSort(bson.D{{Key: "check_in.time", Value: -1}}),
	)
	return r.decodeOne(res, attendance.ErrNotCheckedIn)
}

func (r *attendanceRepository) Update(ctx context.Context, rec attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	rec.UpdatedAt = time.Now().UTC()
	doc, err := toAttendanceDoc(rec)
	if err != nil {
		return attendance.AttendanceRecord{}, err
	}

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": rec.ID, "company_id": rec.CompanyID}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return attendance.AttendanceRecord{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.AttendanceRecord{}, fmt.Errorf("replace attendance: %w", err)
	}
	if res.MatchedCount == 0 {
		return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
	}
	return doc.toDomain()
}

func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter, companyID string) ([]attendance.AttendanceRecord, int64, error) {
	query := bson.M{"company_id": companyID}
	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		query["employee_id"] = *filter.EmployeeID
	}
	if filter.Status != nil && *filter.Status != "" {
		query["status"] = *filter.Status
	}

	dateRange := bson.M{}
	if filter.Date != nil && *filter.Date != "" {
		if d, err := time.Parse("2006-01-02", *filter.Date); err == nil {
			query["date"] = d
		}
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		if d, err := time.Parse("2006-01-02", *filter.StartDate); err == nil {
			dateRange["$gte"] = d
		}
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		if d, err := time.Parse("2006-01-02", *filter.EndDate); err == nil {
			dateRange["$lte"] = d
		}
	}
	if len(dateRange) > 0 {
		if _, exact := query["date"]; !exact {
			query["date"] = dateRange
		}
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count attendances: %w", err)
	}

	sortField := "date"
	switch filter.SortBy {
	case "check_in_time":
		sortField = "check_in.time"
	case "check_out_time":
		sortField = "check_out.time"
	case "status", "work_hours":
		sortField = filter.SortBy
	}
	sort := bson.D{{Key: sortField, Value: sortDirection(filter.SortOrder)}, {Key: "_id", Value: 1}}

	cursor, err := r.coll.Find(ctx, query, pageOptions(filter.Page, filter.Limit, sort))
	if err != nil {
		return nil, 0, fmt.Errorf("find attendances: %w", err)
	}
	records, err := r.decodeAll(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *attendanceRepository) Delete(ctx context.Context, id string, companyID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "company_id": companyID})
	if err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	if res.DeletedCount == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

func (r *attendanceRepository) Scan(ctx context.Context, afterID string, limit int) ([]attendance.AttendanceRecord, error) {
	cursor, err := r.coll.Find(ctx, scanFilter(afterID), scanOptions(limit))
	if err != nil {
		return nil, fmt.Errorf("scan attendances: %w", err)
	}
	return r.decodeAll(ctx, cursor)
}

func (r *attendanceRepository) UpdateDerived(ctx context.Context, rec attendance.AttendanceRecord) (bool, error) {
	doc, err := toAttendanceDoc(rec)
	if err != nil {
		return false, err
	}

	filter := bson.M{
		"_id":            rec.ID,
		"company_id":     rec.CompanyID,
		"check_in.time":  doc.CheckIn.Time,
		"check_out.time": doc.CheckOut.Time,
	}
	update := bson.M{"$set": bson.M{"work_hours": doc.WorkHours, "updated_at": time.Now().UTC()}}
	if doc.WorkHours == nil {
		update = bson.M{
			"$set":   bson.M{"updated_at": time.Now().UTC()},
			"$unset": bson.M{"work_hours": ""},
		}
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("update attendance work hours: %w", err)
	}
	return res.MatchedCount > 0, nil
}
