package http

import (
	"net/http"

	"github.com/cmlabs-hris/hris-core/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-core/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-core/internal/pkg/i18n"
	"github.com/go-chi/chi/v5"
)

type SalaryHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	MarkPaid(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type salaryHandlerImpl struct {
	salaryService payroll.SalaryService
}

func NewSalaryHandler(salaryService payroll.SalaryService) SalaryHandler {
	return &salaryHandlerImpl{
		salaryService: salaryService,
	}
}

// Create implements SalaryHandler.
func (h *salaryHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateSalaryRecordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.salaryService.CreateSalaryRecord(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Created(w, i18n.T(r.Context(), "payroll.created"), result)
}

// List implements SalaryHandler.
func (h *salaryHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := payroll.SalaryFilter{
		PeriodMonth: queryInt(r, "month"),
		PeriodYear:  queryInt(r, "year"),
		Status:      queryString(r, "status"),
		EmployeeID:  queryString(r, "employee_id"),
		SortBy:      r.URL.Query().Get("sort_by"),
		SortOrder:   r.URL.Query().Get("sort_order"),
	}
	filter.Page, filter.Limit = pagination(r)

	results, err := h.salaryService.ListSalaryRecords(r.Context(), filter)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMeta(w, results.Data, response.NewMeta(results.Page, results.Limit, results.TotalCount))
}

// Summary implements SalaryHandler.
func (h *salaryHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	var month, year int
	if m := queryInt(r, "month"); m != nil {
		month = *m
	}
	if y := queryInt(r, "year"); y != nil {
		year = *y
	}

	result, err := h.salaryService.GetPeriodSummary(r.Context(), month, year)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, result)
}

// Get implements SalaryHandler.
func (h *salaryHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.salaryService.GetSalaryRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, result)
}

// Update implements SalaryHandler.
func (h *salaryHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req payroll.UpdateSalaryRecordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.salaryService.UpdateSalaryRecord(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, i18n.T(r.Context(), "payroll.updated"), result)
}

// MarkPaid implements SalaryHandler.
func (h *salaryHandlerImpl) MarkPaid(w http.ResponseWriter, r *http.Request) {
	result, err := h.salaryService.MarkPaid(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, i18n.T(r.Context(), "payroll.paid"), result)
}

// Delete implements SalaryHandler.
func (h *salaryHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.salaryService.DeleteSalaryRecord(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, i18n.T(r.Context(), "payroll.deleted"), nil)
}
