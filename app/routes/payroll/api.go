package payroll

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"swadiq-lms/app/models"
	"swadiq-lms/app/routes/auth"
	"swadiq-lms/app/routes/helpers"
	"swadiq-lms/app/services"
)

type Handler struct {
	svc *services.Service
}

func NewHandler(svc *services.Service) *Handler {
	return &Handler{svc: svc}
}

type approveRequest struct {
	AttendanceID string `json:"attendance_id" validate:"required,uuid"`
	BonusAmount  int64  `json:"bonus_amount" validate:"gte=0"`
}

type rejectRequest struct {
	AttendanceID string `json:"attendance_id" validate:"required,uuid"`
	Reason       string `json:"reason" validate:"required,max=1000"`
}

type closeRequest struct {
	Month int `json:"month" validate:"required,min=1,max=12"`
	Year  int `json:"year" validate:"required,min=2000,max=9999"`
}

type salaryRequest struct {
	TeacherID    string `json:"teacher_id" validate:"required,uuid"`
	Month        int    `json:"month" validate:"required,min=1,max=12"`
	Year         int    `json:"year" validate:"required,min=2000,max=9999"`
	TotalClasses int    `json:"total_classes" validate:"gte=0"`
	TotalAmount  int64  `json:"total_amount" validate:"gte=0"`
	BonusAmount  int64  `json:"bonus_amount" validate:"gte=0"`
	Notes        string `json:"notes" validate:"max=2000"`
}

type payRateRequest struct {
	Scope         string     `json:"scope" validate:"required,oneof=teacher course"`
	ScopeID       string     `json:"scope_id" validate:"required,uuid"`
	Amount        int64      `json:"amount" validate:"required,gt=0"`
	EffectiveFrom *time.Time `json:"effective_from"`
}

// ApproveAPI approves a completed attendance record with an optional bonus
func (h *Handler) ApproveAPI(c *fiber.Ctx) error {
	var req approveRequest
	if err := helpers.ParseBody(c, &req); err != nil {
		return helpers.ValidationError(c, err)
	}
	record, err := h.svc.Approve(c.UserContext(), auth.CurrentActor(c), req.AttendanceID, req.BonusAmount)
	if err != nil {
		return helpers.ServiceError(c, err, "approve attendance")
	}
	return helpers.Success(c, "attendance", record)
}

// RejectAPI rejects a completed attendance record
func (h *Handler) RejectAPI(c *fiber.Ctx) error {
	var req rejectRequest
	if err := helpers.ParseBody(c, &req); err != nil {
		return helpers.ValidationError(c, err)
	}
	record, err := h.svc.Reject(c.UserContext(), auth.CurrentActor(c), req.AttendanceID, req.Reason)
	if err != nil {
		return helpers.ServiceError(c, err, "reject attendance")
	}
	return helpers.Success(c, "attendance", record)
}

func (h *Handler) MarkPaidAPI(c *fiber.Ctx) error {
	id, ok := helpers.UUIDParam(c, "id")
	if !ok {
		return nil
	}
	record, err := h.svc.MarkPaid(c.UserContext(), auth.CurrentActor(c), id)
	if err != nil {
		return helpers.ServiceError(c, err, "mark attendance paid")
	}
	return helpers.Success(c, "attendance", record)
}

// ReviewQueueAPI lists attendance across teachers, completed records by default
func (h *Handler) ReviewQueueAPI(c *fiber.Ctx) error {
	teacherID, ok := helpers.UUIDQuery(c, "teacher_id")
	if !ok {
		return nil
	}
	filter := models.AttendanceFilter{
		TeacherID: teacherID,
		Status:    models.AttendanceStatus(c.Query("status", string(models.AttendanceCompleted))),
		Limit:     c.QueryInt("limit", 200),
	}
	if filter.Status == "all" {
		filter.Status = ""
	}
	records, err := h.svc.ListAttendance(c.UserContext(), auth.CurrentActor(c), filter)
	if err != nil {
		return helpers.ServiceError(c, err, "list review queue")
	}
	return helpers.Success(c, "attendance", records)
}

// MonthlyTotalAPI returns the attendance-derived total of one teacher and month
func (h *Handler) MonthlyTotalAPI(c *fiber.Ctx) error {
	month, year := helpers.MonthQuery(c, h.svc.Location())
	teacherID, ok := helpers.UUIDQuery(c, "teacher_id")
	if !ok {
		return nil
	}
	total, err := h.svc.ComputeMonthlyTotal(c.UserContext(), auth.CurrentActor(c), teacherID, month, year)
	if err != nil {
		return helpers.ServiceError(c, err, "compute monthly total")
	}
	return helpers.Success(c, "total", total)
}

// CloseMonthAPI freezes a finished month into the ledger
func (h *Handler) CloseMonthAPI(c *fiber.Ctx) error {
	var req closeRequest
	if err := helpers.ParseBody(c, &req); err != nil {
		return helpers.ValidationError(c, err)
	}
	summary, err := h.svc.CloseMonth(c.UserContext(), auth.CurrentActor(c), req.Month, req.Year)
	if err != nil {
		return helpers.ServiceError(c, err, "close month")
	}
	return helpers.Success(c, "close", summary)
}

func (h *Handler) ReconciliationAPI(c *fiber.Ctx) error {
	month, year := helpers.MonthQuery(c, h.svc.Location())
	rows, err := h.svc.ReconcileMonth(c.UserContext(), auth.CurrentActor(c), month, year)
	if err != nil {
		return helpers.ServiceError(c, err, "reconcile month")
	}
	return c.JSON(fiber.Map{
		"success":        true,
		"pay_model":      h.svc.PayModel(),
		"reconciliation": rows,
	})
}

func (h *Handler) ListSalariesAPI(c *fiber.Ctx) error {
	teacherID, ok := helpers.UUIDQuery(c, "teacher_id")
	if !ok {
		return nil
	}
	records, err := h.svc.ListMonthlySalaries(c.UserContext(), auth.CurrentActor(c),
		teacherID, c.QueryInt("month", 0), c.QueryInt("year", 0))
	if err != nil {
		return helpers.ServiceError(c, err, "list salaries")
	}
	return helpers.Success(c, "salaries", records)
}

// UpsertSalaryAPI creates or replaces an unpaid ledger entry
func (h *Handler) UpsertSalaryAPI(c *fiber.Ctx) error {
	var req salaryRequest
	if err := helpers.ParseBody(c, &req); err != nil {
		return helpers.ValidationError(c, err)
	}
	record, err := h.svc.UpsertMonthlySalary(c.UserContext(), auth.CurrentActor(c), services.MonthlySalaryInput{
		TeacherID:    req.TeacherID,
		Month:        req.Month,
		Year:         req.Year,
		TotalClasses: req.TotalClasses,
		TotalAmount:  req.TotalAmount,
		BonusAmount:  req.BonusAmount,
		Notes:        req.Notes,
	})
	if err != nil {
		return helpers.ServiceError(c, err, "upsert salary")
	}
	return helpers.Success(c, "salary", record)
}

// PaySalaryAPI confirms disbursement and settles the month's approved attendance
func (h *Handler) PaySalaryAPI(c *fiber.Ctx) error {
	id, ok := helpers.UUIDParam(c, "id")
	if !ok {
		return nil
	}
	summary, err := h.svc.PayMonthlySalary(c.UserContext(), auth.CurrentActor(c), id)
	if err != nil {
		return helpers.ServiceError(c, err, "pay salary")
	}
	return helpers.Success(c, "payment", summary)
}

func (h *Handler) CancelSalaryAPI(c *fiber.Ctx) error {
	id, ok := helpers.UUIDParam(c, "id")
	if !ok {
		return nil
	}
	record, err := h.svc.CancelMonthlySalary(c.UserContext(), auth.CurrentActor(c), id)
	if err != nil {
		return helpers.ServiceError(c, err, "cancel salary")
	}
	return helpers.Success(c, "salary", record)
}

func (h *Handler) SetPayRateAPI(c *fiber.Ctx) error {
	var req payRateRequest
	if err := helpers.ParseBody(c, &req); err != nil {
		return helpers.ValidationError(c, err)
	}
	rate, err := h.svc.SetPayRate(c.UserContext(), auth.CurrentActor(c), services.PayRateInput{
		Scope:         models.PayRateScope(req.Scope),
		ScopeID:       req.ScopeID,
		Amount:        req.Amount,
		EffectiveFrom: req.EffectiveFrom,
	})
	if err != nil {
		return helpers.ServiceError(c, err, "set pay rate")
	}
	return helpers.SuccessWithCode(c, fiber.StatusCreated, "pay_rate", rate)
}
