package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/tajhr/hrpay-backend-go/internal/handler/http/middleware"
	"github.com/tajhr/hrpay-backend-go/internal/pkg/jwt"
)

type RouterConfig struct {
	AppName        string
	AppVersion     string
	Environment    string
	AllowedOrigins []string
}

func NewRouter(
	cfg RouterConfig,
	jwtService jwt.Service,
	employeeHandler EmployeeHandler,
	attendanceHandler AttendanceHandler,
	loanHandler LoanHandler,
	payrollHandler PayrollHandler,
	taxHandler TaxHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.AppName),
		slog.String("version", cfg.AppVersion),
		slog.String("env", cfg.Environment),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Device webhook: authenticated by service token like every other
		// route, the device gateway holds one.
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", employeeHandler.ListEmployees)
				r.Post("/", employeeHandler.CreateEmployee)
				r.Get("/{id}", employeeHandler.GetEmployee)
				r.Put("/{id}", employeeHandler.UpdateEmployee)
				r.Delete("/{id}", employeeHandler.TerminateEmployee)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", attendanceHandler.ListAttendance)
				r.Post("/punches", attendanceHandler.RecordPunch)
				r.Post("/reconcile", attendanceHandler.Reconcile)
				r.Patch("/{id}", attendanceHandler.CorrectAttendance)
				r.Delete("/{id}", attendanceHandler.DeleteAttendance)
			})

			r.Route("/loans", func(r chi.Router) {
				r.Get("/", loanHandler.ListEmployeeLoans)
				r.Post("/", loanHandler.CreateLoan)
				r.Get("/deduction-preview", loanHandler.PreviewDeduction)
				r.Get("/{id}", loanHandler.GetLoan)
				r.Post("/{id}/approve", loanHandler.ApproveLoan)
				r.Post("/{id}/reject", loanHandler.RejectLoan)
				r.Post("/{id}/disburse", loanHandler.DisburseLoan)
				r.Post("/{id}/payments", loanHandler.RecordPayment)
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Get("/", payrollHandler.ListPayroll)
				r.Post("/generate", payrollHandler.GeneratePayroll)
				r.Post("/recompute", payrollHandler.RecomputePayroll)
				r.Post("/finalize", payrollHandler.FinalizePayroll)
				r.Post("/mark-paid", payrollHandler.MarkPaid)
				r.Get("/summary", payrollHandler.PayrollSummary)
				r.Get("/{id}", payrollHandler.GetPayroll)
				r.Patch("/{id}", payrollHandler.ManualEdit)
				r.Delete("/{id}", payrollHandler.DeletePayroll)
				r.Get("/{id}/payslip", payrollHandler.DownloadPayslip)
			})

			r.Route("/tax-slabs", func(r chi.Router) {
				r.Get("/", taxHandler.ListSlabs)
				r.Put("/", taxHandler.ReplaceSlabs)
			})
		})

		// SSE cannot carry an Authorization header from EventSource, so the
		// live feed sits outside the verifier group.
		r.Get("/attendance/live", attendanceHandler.StreamLiveFeed)
	})

	return r
}
