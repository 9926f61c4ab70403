package http

import (
	"github.com/labstack/echo/v4"

	"homeloan-backend/internal/adapter/middleware"
)

type Handlers struct {
	Health *Handler
	Loans  *LoanHandler
	EMI    *EMIHandler
	Admin  *AdminHandler
}

// Register mounts the API. mw runs on every /api route, in order; it must
// start with authentication since the admin group checks the caller's role.
func Register(e *echo.Echo, h Handlers, mw ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)

	api := e.Group("/api", mw...)

	loans := api.Group("/loans")
	loans.POST("/apply", h.Loans.Apply)
	loans.GET("/my-loans", h.Loans.MyLoans)
	loans.GET("/:loan_id", h.Loans.GetLoan)

	emi := api.Group("/emi")
	emi.GET("/schedule/:loan_id", h.EMI.Schedule)
	emi.GET("/pending", h.EMI.Pending)
	emi.PUT("/:installment_id/pay", h.EMI.Pay)

	admin := api.Group("/admin", middleware.RequireAdmin())
	admin.GET("/dashboard", h.Admin.Dashboard)
	admin.GET("/loans", h.Admin.ListLoans)
	admin.GET("/loans/pending", h.Admin.Pending)
	admin.PUT("/loans/:loan_id/status", h.Admin.UpdateStatus)
	admin.PUT("/loans/:loan_id/approve", h.Admin.Approve)
	admin.PUT("/loans/:loan_id/reject", h.Admin.Reject)
}
