package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half-day"
	StatusLate    Status = "late"
	StatusLeave   Status = "leave"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusHalfDay, StatusLate, StatusLeave:
		return true
	}
	return false
}

// Geolocation is a point coordinate pair.
type Geolocation struct {
	Latitude  float64
	Longitude float64
}

// CheckPoint is one side of an attendance session. It has no identity of its own
// and is always stored inline with its record.
type CheckPoint struct {
	Time          *time.Time
	Location      *Geolocation
	SourceAddress *string
}

// IsZero reports whether nothing was recorded for this side of the session.
func (c CheckPoint) IsZero() bool {
	return c.Time == nil && c.Location == nil && c.SourceAddress == nil
}

type AttendanceRecord struct {
	ID         string
	EmployeeID string
	CompanyID  string
	Date       time.Time
	CheckIn    CheckPoint
	CheckOut   CheckPoint
	Status     Status
	// WorkHours is derived from CheckIn.Time and CheckOut.Time on every write.
	WorkHours *decimal.Decimal
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MonthlySummary aggregates derived work hours for one employee over a month.
type MonthlySummary struct {
	EmployeeID     string
	Month          int
	Year           int
	DaysRecorded   int
	DaysPresent    int
	DaysLate       int
	DaysHalfDay    int
	DaysAbsent     int
	DaysLeave      int
	TotalWorkHours decimal.Decimal
}
