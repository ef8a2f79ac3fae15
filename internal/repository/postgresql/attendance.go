package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	id, employee_id, company_id, date,
	check_in_time, check_in_latitude, check_in_longitude, check_in_source_address,
	check_out_time, check_out_latitude, check_out_longitude, check_out_source_address,
	status, work_hours, notes, created_at, updated_at`

func scanAttendance(row rowScanner) (attendance.AttendanceRecord, error) {
	var (
		rec            attendance.AttendanceRecord
		inLat, inLng   *float64
		outLat, outLng *float64
		status         string
		workHours      decimal.NullDecimal
	)
	err := row.Scan(
		&rec.ID, &rec.EmployeeID, &rec.CompanyID, &rec.Date,
		&rec.CheckIn.Time, &inLat, &inLng, &rec.CheckIn.SourceAddress,
		&rec.CheckOut.Time, &outLat, &outLng, &rec.CheckOut.SourceAddress,
		&status, &workHours, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return attendance.AttendanceRecord{}, err
	}

	rec.Status = attendance.Status(status)
	rec.CheckIn.Location = geolocation(inLat, inLng)
	rec.CheckOut.Location = geolocation(outLat, outLng)
	if workHours.Valid {
		rec.WorkHours = &workHours.Decimal
	}
	return rec, nil
}

func geolocation(lat, lng *float64) *attendance.Geolocation {
	if lat == nil || lng == nil {
		return nil
	}
	return &attendance.Geolocation{Latitude: *lat, Longitude: *lng}
}

func latLng(g *attendance.Geolocation) (*float64, *float64) {
	if g == nil {
		return nil, nil
	}
	return &g.Latitude, &g.Longitude
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, rec attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	inLat, inLng := latLng(rec.CheckIn.Location)
	outLat, outLng := latLng(rec.CheckOut.Location)

	query := `
		INSERT INTO attendances (
			employee_id, company_id, date,
			check_in_time, check_in_latitude, check_in_longitude, check_in_source_address,
			check_out_time, check_out_latitude, check_out_longitude, check_out_source_address,
			status, work_hours, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + attendanceColumns

	created, err := scanAttendance(q.QueryRow(ctx, query,
		rec.EmployeeID, rec.CompanyID, rec.Date,
		rec.CheckIn.Time, inLat, inLng, rec.CheckIn.SourceAddress,
		rec.CheckOut.Time, outLat, outLng, rec.CheckOut.SourceAddress,
		string(rec.Status), rec.WorkHours, rec.Notes,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.ConstraintName == "uk_attendance_employee_date" {
			return attendance.AttendanceRecord{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return created, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string, companyID string) (attendance.AttendanceRecord, error) {
	if !isUUID(id) {
		return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
	}
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE id = $1 AND company_id = $2`

	rec, err := scanAttendance(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to get attendance: %w", err)
	}

	return rec, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1 AND date = $2 AND company_id = $3`

	rec, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date.Format("2006-01-02"), companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by date: %w", err)
	}

	return &rec, nil
}

// GetOpenSession implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetOpenSession(ctx context.Context, employeeID string, companyID string) (attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1
		  AND company_id = $2
		  AND check_in_time IS NOT NULL
		  AND check_out_time IS NULL
		ORDER BY check_in_time DESC
		LIMIT 1`

	rec, err := scanAttendance(q.QueryRow(ctx, query, employeeID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceRecord{}, attendance.ErrNotCheckedIn
		}
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to get open session: %w", err)
	}

	return rec, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, rec attendance.AttendanceRecord) (attendance.AttendanceRecord, error) {
	if !isUUID(rec.ID) {
		return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
	}
	q := GetQuerier(ctx, a.db)

	inLat, inLng := latLng(rec.CheckIn.Location)
	outLat, outLng := latLng(rec.CheckOut.Location)

	query := `
		UPDATE attendances SET
			date = $3,
			check_in_time = $4, check_in_latitude = $5, check_in_longitude = $6, check_in_source_address = $7,
			check_out_time = $8, check_out_latitude = $9, check_out_longitude = $10, check_out_source_address = $11,
			status = $12, work_hours = $13, notes = $14,
			updated_at = NOW()
		WHERE id = $1 AND company_id = $2
		RETURNING ` + attendanceColumns

	updated, err := scanAttendance(q.QueryRow(ctx, query,
		rec.ID, rec.CompanyID, rec.Date,
		rec.CheckIn.Time, inLat, inLng, rec.CheckIn.SourceAddress,
		rec.CheckOut.Time, outLat, outLng, rec.CheckOut.SourceAddress,
		string(rec.Status), rec.WorkHours, rec.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceRecord{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceRecord{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	return updated, nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter, companyID string) ([]attendance.AttendanceRecord, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "company_id = $1"
	args := []interface{}{companyID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Date != nil && *filter.Date != "" {
		baseWhere += fmt.Sprintf(" AND date = $%d", argIdx)
		args = append(args, *filter.Date)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM attendances WHERE `+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	orderByField := "date"
	switch filter.SortBy {
	case "check_in_time":
		orderByField = "check_in_time"
	case "check_out_time":
		orderByField = "check_out_time"
	case "status":
		orderByField = "status"
	case "work_hours":
		orderByField = "work_hours"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendances
		WHERE %s
		ORDER BY %s %s, id
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, baseWhere, orderByField, sortDirection(filter.SortOrder), argIdx, argIdx+1)

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
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.AttendanceRecord
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendances: %w", err)
	}

	return records, total, nil
}

// Delete implements attendance.AttendanceRepository.
func (a *attendanceRepository) Delete(ctx context.Context, id string, companyID string) error {
	if !isUUID(id) {
		return attendance.ErrAttendanceNotFound
	}
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendances WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// Scan implements attendance.AttendanceRepository.
func (a *attendanceRepository) Scan(ctx context.Context, afterID string, limit int) ([]attendance.AttendanceRecord, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE ($1 = '' OR id::text > $1)
		ORDER BY id::text
		LIMIT $2`

	rows, err := q.Query(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to scan attendances: %w", err)
	}
	defer rows.Close()

	var records []attendance.AttendanceRecord
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateDerived implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpdateDerived(ctx context.Context, rec attendance.AttendanceRecord) (bool, error) {
	if !isUUID(rec.ID) {
		return false, nil
	}
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `
		UPDATE attendances SET work_hours = $3, updated_at = NOW()
		WHERE id = $1 AND company_id = $2
			AND check_in_time IS NOT DISTINCT FROM $4
			AND check_out_time IS NOT DISTINCT FROM $5`,
		rec.ID, rec.CompanyID, rec.WorkHours, rec.CheckIn.Time, rec.CheckOut.Time,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update attendance work hours: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
