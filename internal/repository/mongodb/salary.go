package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-core/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type allowancesDoc struct {
	HRA        bson.Decimal128 `bson:"hra"`
	Conveyance bson.Decimal128 `bson:"conveyance"`
	Medical    bson.Decimal128 `bson:"medical"`
	Special    bson.Decimal128 `bson:"special"`
}

type deductionsDoc struct {
	PF              bson.Decimal128 `bson:"pf"`
	Tax             bson.Decimal128 `bson:"tax"`
	ProfessionalTax bson.Decimal128 `bson:"professional_tax"`
	Loan            bson.Decimal128 `bson:"loan"`
	Other           bson.Decimal128 `bson:"other"`
}

type salaryDoc struct {
	ID              string          `bson:"_id"`
	EmployeeID      string          `bson:"employee_id"`
	CompanyID       string          `bson:"company_id"`
	PeriodMonth     int             `bson:"period_month"`
	PeriodYear      int             `bson:"period_year"`
	BasicSalary     bson.Decimal128 `bson:"basic_salary"`
	Allowances      allowancesDoc   `bson:"allowances"`
	Deductions      deductionsDoc   `bson:"deductions"`
	Bonus           bson.Decimal128 `bson:"bonus"`
	TotalEarnings   bson.Decimal128 `bson:"total_earnings"`
	TotalDeductions bson.Decimal128 `bson:"total_deductions"`
	NetPay          bson.Decimal128 `bson:"net_pay"`
	Status          string          `bson:"status"`
	PaidAt          *time.Time      `bson:"paid_at,omitempty"`
	PaidBy          *string         `bson:"paid_by,omitempty"`
	Notes           *string         `bson:"notes,omitempty"`
	CreatedAt       time.Time       `bson:"created_at"`
	UpdatedAt       time.Time       `bson:"updated_at"`
}

// decimalCodec converts a batch of amounts and remembers the first failure.
type decimalCodec struct {
	err error
}

func (c *decimalCodec) to(d decimal.Decimal) bson.Decimal128 {
	if c.err != nil {
		return bson.Decimal128{}
	}
	v, err := toDecimal128(d)
	c.err = err
	return v
}

func (c *decimalCodec) from(v bson.Decimal128) decimal.Decimal {
	if c.err != nil {
		return decimal.Decimal{}
	}
	d, err := fromDecimal128(v)
	c.err = err
	return d
}

func toSalaryDoc(r payroll.SalaryRecord) (salaryDoc, error) {
	var c decimalCodec
	doc := salaryDoc{
		ID:          r.ID,
		EmployeeID:  r.EmployeeID,
		CompanyID:   r.CompanyID,
		PeriodMonth: r.PeriodMonth,
		PeriodYear:  r.PeriodYear,
		BasicSalary: c.to(r.BasicSalary),
		Allowances: allowancesDoc{
			HRA:        c.to(r.Allowances.HRA),
			Conveyance: c.to(r.Allowances.Conveyance),
			Medical:    c.to(r.Allowances.Medical),
			Special:    c.to(r.Allowances.Special),
		},
		Deductions: deductionsDoc{
			PF:              c.to(r.Deductions.PF),
			Tax:             c.to(r.Deductions.Tax),
			ProfessionalTax: c.to(r.Deductions.ProfessionalTax),
			Loan:            c.to(r.Deductions.Loan),
			Other:           c.to(r.Deductions.Other),
		},
		Bonus:           c.to(r.Bonus),
		TotalEarnings:   c.to(r.TotalEarnings),
		TotalDeductions: c.to(r.TotalDeductions),
		NetPay:          c.to(r.NetPay),
		Status:          string(r.Status),
		PaidAt:          r.PaidAt,
		PaidBy:          r.PaidBy,
		Notes:           r.Notes,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	return doc, c.err
}

func (d salaryDoc) toDomain() (payroll.SalaryRecord, error) {
	var c decimalCodec
	r := payroll.SalaryRecord{
		ID:          d.ID,
		EmployeeID:  d.EmployeeID,
		CompanyID:   d.CompanyID,
		PeriodMonth: d.PeriodMonth,
		PeriodYear:  d.PeriodYear,
		BasicSalary: c.from(d.BasicSalary),
		Allowances: payroll.Allowances{
			HRA:        c.from(d.Allowances.HRA),
			Conveyance: c.from(d.Allowances.Conveyance),
			Medical:    c.from(d.Allowances.Medical),
			Special:    c.from(d.Allowances.Special),
		},
		Deductions: payroll.Deductions{
			PF:              c.from(d.Deductions.PF),
			Tax:             c.from(d.Deductions.Tax),
			ProfessionalTax: c.from(d.Deductions.ProfessionalTax),
			Loan:            c.from(d.Deductions.Loan),
			Other:           c.from(d.Deductions.Other),
		},
		Bonus: c.from(d.Bonus),
		Totals: payroll.Totals{
			TotalEarnings:   c.from(d.TotalEarnings),
			TotalDeductions: c.from(d.TotalDeductions),
			NetPay:          c.from(d.NetPay),
		},
		Status:    payroll.SalaryStatus(d.Status),
		PaidAt:    d.PaidAt,
		PaidBy:    d.PaidBy,
		Notes:     d.Notes,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	return r, c.err
}

type salaryRepository struct {
	coll *mongo.Collection
}

// NewSalaryRepository ensures the salary_records indexes exist, including the
// one-record-per-period unique index.
func NewSalaryRepository(ctx context.Context, db *MongoDB) (payroll.SalaryRepository, error) {
	coll := db.Collection("salary_records")

	if _, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "company_id", Value: 1},
				{Key: "employee_id", Value: 1},
				{Key: "period_month", Value: 1},
				{Key: "period_year", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("uk_salary_employee_period"),
		},
		{Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "period_year", Value: 1}, {Key: "period_month", Value: 1}}},
	}); err != nil {
		return nil, fmt.Errorf("create salary_records indexes: %w", err)
	}

	return &salaryRepository{coll: coll}, nil
}

func (s *salaryRepository) findOne(ctx context.Context, filter bson.M) (payroll.SalaryRecord, error) {
	var doc salaryDoc
	err := s.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
	}
	if err != nil {
		return payroll.SalaryRecord{}, fmt.Errorf("find salary record: %w", err)
	}
	return doc.toDomain()
}

func (s *salaryRepository) decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]payroll.SalaryRecord, error) {
	var docs []salaryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode salary records: %w", err)
	}
	records := make([]payroll.SalaryRecord, 0, len(docs))
	for _, doc := range docs {
		rec, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *salaryRepository) Create(ctx context.Context, record payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	id, err := newID()
	if err != nil {
		return payroll.SalaryRecord{}, err
	}
	now := time.Now().UTC()
	record.ID = id
	record.CreatedAt = now
	record.UpdatedAt = now

	doc, err := toSalaryDoc(record)
	if err != nil {
		return payroll.SalaryRecord{}, err
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return payroll.SalaryRecord{}, payroll.ErrSalaryRecordAlreadyExists
		}
		return payroll.SalaryRecord{}, fmt.Errorf("insert salary record: %w", err)
	}
	return doc.toDomain()
}

func (s *salaryRepository) GetByID(ctx context.Context, id string, companyID string) (payroll.SalaryRecord, error) {
	return s.findOne(ctx, bson.M{"_id": id, "company_id": companyID})
}

func (s *salaryRepository) GetByEmployeePeriod(ctx context.Context, employeeID string, month, year int, companyID string) (payroll.SalaryRecord, error) {
	return s.findOne(ctx, bson.M{
		"employee_id":  employeeID,
		"period_month": month,
		"period_year":  year,
		"company_id":   companyID,
	})
}

func (s *salaryRepository) Update(ctx context.Context, record payroll.SalaryRecord) (payroll.SalaryRecord, error) {
	record.UpdatedAt = time.Now().UTC()
	doc, err := toSalaryDoc(record)
	if err != nil {
		return payroll.SalaryRecord{}, err
	}

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": record.ID, "company_id": record.CompanyID}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return payroll.SalaryRecord{}, payroll.ErrSalaryRecordAlreadyExists
		}
		return payroll.SalaryRecord{}, fmt.Errorf("replace salary record: %w", err)
	}
	if res.MatchedCount == 0 {
		return payroll.SalaryRecord{}, payroll.ErrSalaryRecordNotFound
	}
	return doc.toDomain()
}

func (s *salaryRepository) List(ctx context.Context, filter payroll.SalaryFilter, companyID string) ([]payroll.SalaryRecord, int64, error) {
	query := bson.M{"company_id": companyID}
	if filter.PeriodMonth != nil {
		query["period_month"] = *filter.PeriodMonth
	}
	if filter.PeriodYear != nil {
		query["period_year"] = *filter.PeriodYear
	}
	if filter.Status != nil && *filter.Status != "" {
		query["status"] = *filter.Status
	}
	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		query["employee_id"] = *filter.EmployeeID
	}

	total, err := s.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count salary records: %w", err)
	}

	dir := sortDirection(filter.SortOrder)
	sort := bson.D{{Key: "period_year", Value: dir}, {Key: "period_month", Value: dir}}
	switch filter.SortBy {
	case "net_pay", "created_at":
		sort = bson.D{{Key: filter.SortBy, Value: dir}}
	}
	sort = append(sort, bson.E{Key: "_id", Value: 1})

	cursor, err := s.coll.Find(ctx, query, pageOptions(filter.Page, filter.Limit, sort))
	if err != nil {
		return nil, 0, fmt.Errorf("find salary records: %w", err)
	}
	records, err := s.decodeAll(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (s *salaryRepository) Delete(ctx context.Context, id string, companyID string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "company_id": companyID})
	if err != nil {
		return fmt.Errorf("delete salary record: %w", err)
	}
	if res.DeletedCount == 0 {
		return payroll.ErrSalaryRecordNotFound
	}
	return nil
}

type periodSummaryDoc struct {
	Employees       []string        `bson:"employees"`
	TotalBasic      bson.Decimal128 `bson:"total_basic"`
	TotalBonus      bson.Decimal128 `bson:"total_bonus"`
	TotalEarnings   bson.Decimal128 `bson:"total_earnings"`
	TotalDeductions bson.Decimal128 `bson:"total_deductions"`
	TotalNetPay     bson.Decimal128 `bson:"total_net_pay"`
	DraftCount      int             `bson:"draft_count"`
	PaidCount       int             `bson:"paid_count"`
}

func countStatus(status payroll.SalaryStatus) bson.M {
	return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", string(status)}}, 1, 0}}}
}

func (s *salaryRepository) Summary(ctx context.Context, companyID string, month, year int) (payroll.PeriodSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"company_id": companyID, "period_month": month, "period_year": year}}},
		{{Key: "$group", Value: bson.M{
			"_id":              nil,
			"employees":        bson.M{"$addToSet": "$employee_id"},
			"total_basic":      bson.M{"$sum": "$basic_salary"},
			"total_bonus":      bson.M{"$sum": "$bonus"},
			"total_earnings":   bson.M{"$sum": "$total_earnings"},
			"total_deductions": bson.M{"$sum": "$total_deductions"},
			"total_net_pay":    bson.M{"$sum": "$net_pay"},
			"draft_count":      countStatus(payroll.SalaryStatusDraft),
			"paid_count":       countStatus(payroll.SalaryStatusPaid),
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return payroll.PeriodSummary{}, fmt.Errorf("aggregate salary records: %w", err)
	}
	var docs []periodSummaryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return payroll.PeriodSummary{}, fmt.Errorf("decode salary summary: %w", err)
	}

	summary := payroll.PeriodSummary{PeriodMonth: month, PeriodYear: year}
	if len(docs) == 0 {
		return summary, nil
	}

	var c decimalCodec
	doc := docs[0]
	summary.TotalEmployees = len(doc.Employees)
	summary.TotalBasic = c.from(doc.TotalBasic)
	summary.TotalBonus = c.from(doc.TotalBonus)
	summary.TotalEarnings = c.from(doc.TotalEarnings)
	summary.TotalDeductions = c.from(doc.TotalDeductions)
	summary.TotalNetPay = c.from(doc.TotalNetPay)
	summary.DraftCount = doc.DraftCount
	summary.PaidCount = doc.PaidCount
	return summary, c.err
}

func (s *salaryRepository) Scan(ctx context.Context, afterID string, limit int) ([]payroll.SalaryRecord, error) {
	cursor, err := s.coll.Find(ctx, scanFilter(afterID), scanOptions(limit))
	if err != nil {
		return nil, fmt.Errorf("scan salary records: %w", err)
	}
	return s.decodeAll(ctx, cursor)
}

func (s *salaryRepository) UpdateDerived(ctx context.Context, record payroll.SalaryRecord) (bool, error) {
	doc, err := toSalaryDoc(record)
	if err != nil {
		return false, err
	}

	filter := bson.M{
		"_id":          record.ID,
		"company_id":   record.CompanyID,
		"basic_salary": doc.BasicSalary,
		"bonus":        doc.Bonus,

		"allowances.hra":              doc.Allowances.HRA,
		"allowances.conveyance":       doc.Allowances.Conveyance,
		"allowances.medical":          doc.Allowances.Medical,
		"allowances.special":          doc.Allowances.Special,
		"deductions.pf":               doc.Deductions.PF,
		"deductions.tax":              doc.Deductions.Tax,
		"deductions.professional_tax": doc.Deductions.ProfessionalTax,
		"deductions.loan":             doc.Deductions.Loan,
		"deductions.other":            doc.Deductions.Other,
	}
	update := bson.M{"$set": bson.M{
		"total_earnings":   doc.TotalEarnings,
		"total_deductions": doc.TotalDeductions,
		"net_pay":          doc.NetPay,
		"updated_at":       time.Now().UTC(),
	}}

	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("update salary totals: %w", err)
	}
	return res.MatchedCount > 0, nil
}
