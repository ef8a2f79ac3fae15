package payroll

import "context"

type SalaryService interface {
	CreateSalaryRecord(ctx context.Context, req CreateSalaryRecordRequest) (SalaryRecordResponse, error)
	UpdateSalaryRecord(ctx context.Context, req UpdateSalaryRecordRequest) (SalaryRecordResponse, error)
	GetSalaryRecord(ctx context.Context, id string) (SalaryRecordResponse, error)
	ListSalaryRecords(ctx context.Context, filter SalaryFilter) (ListSalaryRecordResponse, error)
	// MarkPaid finalizes a draft record; paid records can no longer be changed.
	MarkPaid(ctx context.Context, id string) (SalaryRecordResponse, error)
	DeleteSalaryRecord(ctx context.Context, id string) error
	GetPeriodSummary(ctx context.Context, month, year int) (PeriodSummaryResponse, error)
}
