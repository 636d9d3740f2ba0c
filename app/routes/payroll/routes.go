package payroll

import (
	"github.com/gofiber/fiber/v2"
)

// SetupPayrollRoutes registers the admin review, ledger and rate endpoints.
// Capability checks happen in the service layer.
func SetupPayrollRoutes(app fiber.Router, h *Handler, authMiddleware fiber.Handler) {
	admin := app.Group("/api/admin", authMiddleware)

	attendance := admin.Group("/attendance")
	attendance.Get("/", h.ReviewQueueAPI)
	attendance.Post("/approve", h.ApproveAPI)
	attendance.Post("/reject", h.RejectAPI)
	attendance.Post("/:id/pay", h.MarkPaidAPI)

	payroll := admin.Group("/payroll")
	payroll.Get("/total", h.MonthlyTotalAPI)
	payroll.Post("/close", h.CloseMonthAPI)
	payroll.Get("/reconciliation", h.ReconciliationAPI)

	salaries := admin.Group("/salaries")
	salaries.Get("/", h.ListSalariesAPI)
	salaries.Post("/", h.UpsertSalaryAPI)
	salaries.Post("/:id/pay", h.PaySalaryAPI)
	salaries.Post("/:id/cancel", h.CancelSalaryAPI)

	admin.Post("/pay-rates", h.SetPayRateAPI)
}
