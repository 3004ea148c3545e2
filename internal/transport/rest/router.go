package rest

import (
	"log/slog"

	"github.com/frahmantamala/workforce-portal/internal/approval"
	"github.com/frahmantamala/workforce-portal/internal/audit"
	"github.com/frahmantamala/workforce-portal/internal/auth"
	"github.com/frahmantamala/workforce-portal/internal/expense"
	"github.com/frahmantamala/workforce-portal/internal/ledger"
	"github.com/frahmantamala/workforce-portal/internal/metrics"
	"github.com/frahmantamala/workforce-portal/internal/notification"
	"github.com/frahmantamala/workforce-portal/internal/preference"
	"github.com/frahmantamala/workforce-portal/internal/timesheet"
	"github.com/frahmantamala/workforce-portal/internal/transport/middleware"
	"github.com/frahmantamala/workforce-portal/internal/transport/swagger"
	"github.com/frahmantamala/workforce-portal/internal/user"
	"github.com/go-chi/chi"
)

const APIPrefix = "/api/v1"

type Handlers struct {
	Auth         *auth.Handler
	User         *user.Handler
	Timesheet    *timesheet.Handler
	Expense      *expense.Handler
	Approval     *approval.Handler
	Notification *notification.Handler
	Preference   *preference.Handler
	Audit        *audit.Handler
	Health       *HealthHandler
}

type Options struct {
	AllowedOrigins []string
	// Metrics is exposed on MetricsPath when set.
	Metrics     *metrics.Recorder
	MetricsPath string
	SpecPath    string
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware(opts.Metrics))

	if opts.SpecPath != "" {
		router.Get(swagger.SpecURL, swagger.SpecHandler(opts.SpecPath))
		router.Handle("/swagger/*", swagger.Handler())
	}
	if opts.Metrics != nil && opts.MetricsPath != "" {
		router.Handle(opts.MetricsPath, opts.Metrics.Handler())
	}

	router.Route(APIPrefix, func(r chi.Router) {
		r.Get("/health", h.Health.Health)
		r.Get("/ping", h.Health.Ping)

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(middleware.ActorContext)

			pr.Get("/users/me", h.User.GetCurrentUser)

			pr.Route("/timesheets", func(tr chi.Router) {
				tr.Get("/", h.Timesheet.ListTimesheets)
				tr.Get("/{id}", h.Timesheet.GetTimesheet)
				tr.Post("/{id}/save", h.Approval.Timesheet(ledger.ActionSave))
				tr.Post("/{id}/submit", h.Approval.Timesheet(ledger.ActionSubmit))

				tr.Group(func(mr chi.Router) {
					mr.Use(h.Auth.RequireRole(auth.RoleManager, auth.RoleAdmin))
					mr.Post("/{id}/approve", h.Approval.Timesheet(ledger.ActionApprove))
					mr.Post("/{id}/reject", h.Approval.Timesheet(ledger.ActionReject))
				})
			})

			pr.Route("/expense-reports", func(er chi.Router) {
				er.Get("/", h.Expense.ListReports)
				er.Get("/{id}", h.Expense.GetReport)
				er.Post("/{id}/submit", h.Approval.SubmitExpenseReport)
			})

			pr.Route("/expense-lines", func(lr chi.Router) {
				lr.Use(h.Auth.RequireRole(auth.RoleManager, auth.RoleAdmin))
				lr.Post("/{id}/approve", h.Approval.ExpenseLine(ledger.ActionApprove))
				lr.Post("/{id}/reject", h.Approval.ExpenseLine(ledger.ActionReject))
			})

			pr.Route("/notifications", func(nr chi.Router) {
				nr.Get("/", h.Notification.List)
				nr.Get("/unread-count", h.Notification.UnreadCount)
				nr.Patch("/{id}/read", h.Notification.MarkRead)
				nr.Delete("/{id}", h.Notification.Delete)
			})

			pr.Get("/preferences", h.Preference.GetPreferences)
			pr.Put("/preferences", h.Preference.UpdatePreferences)

			pr.Group(func(ar chi.Router) {
				ar.Use(h.Auth.RequireRole(auth.RoleManager, auth.RoleAdmin))
				ar.Get("/audit", h.Audit.History)
			})
		})
	})
}
