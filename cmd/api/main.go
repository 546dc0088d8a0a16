package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tajhr/hrpay-backend-go/internal/config"
	appHTTP "github.com/tajhr/hrpay-backend-go/internal/handler/http"
	"github.com/tajhr/hrpay-backend-go/internal/pkg/cron"
	"github.com/tajhr/hrpay-backend-go/internal/pkg/database"
	"github.com/tajhr/hrpay-backend-go/internal/pkg/jwt"
	"github.com/tajhr/hrpay-backend-go/internal/pkg/sse"
	"github.com/tajhr/hrpay-backend-go/internal/repository/postgresql"
	attendanceService "github.com/tajhr/hrpay-backend-go/internal/service/attendance"
	employeeService "github.com/tajhr/hrpay-backend-go/internal/service/employee"
	leaveService "github.com/tajhr/hrpay-backend-go/internal/service/leave"
	loanService "github.com/tajhr/hrpay-backend-go/internal/service/loan"
	payrollService "github.com/tajhr/hrpay-backend-go/internal/service/payroll"
	taxService "github.com/tajhr/hrpay-backend-go/internal/service/tax"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		os.Exit(1)
	}
	defer db.Close()

	employeeRepo := postgresql.NewEmployeeRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRepo := postgresql.NewLeaveRepository(db)
	loanRepo := postgresql.NewLoanRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	taxSlabRepo := postgresql.NewTaxSlabRepository(db)

	jwtSvc := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiration)
	if cfg.App.Env == "development" {
		if token, _, err := jwtSvc.GenerateServiceToken("dev", "admin"); err == nil {
			slog.Info("development service token issued", "token", token)
		}
	}

	hub := sse.NewHub()

	taxSvc := taxService.NewResolver(taxSlabRepo, taxService.DefaultSurcharge())
	if err := taxSvc.SeedDefaults(context.Background()); err != nil {
		fmt.Println("Error seeding tax slabs:", err)
		os.Exit(1)
	}

	attendanceSvc := attendanceService.NewAttendanceService(db, attendanceRepo, employeeRepo, hub, attendanceService.Config{
		DeviceUTCOffset:     cfg.Attendance.DeviceUTCOffset,
		GraceMinutes:        cfg.Attendance.GraceMinutes,
		HalfDayMinMinutes:   cfg.Attendance.HalfDayMinMinutes,
		DefaultBreakMinutes: cfg.Attendance.DefaultBreakMinutes,
	})
	leaveSvc := leaveService.NewLeaveService(leaveRepo)
	loanSvc := loanService.NewLoanService(db, loanRepo, employeeRepo)
	employeeSvc := employeeService.NewEmployeeService(db, employeeRepo)

	engine := payrollService.NewEngine(payrollService.EngineConfig{
		EOBIAmount:        cfg.Payroll.EOBIAmount,
		ProvidentFundRate: cfg.Payroll.ProvidentFundRate,
	}, taxSvc)
	payrollSvc := payrollService.NewPayrollService(db, payrollRepo, employeeRepo, engine, attendanceSvc, leaveSvc, loanSvc)

	scheduler := cron.NewScheduler()
	cron.NewPayrollJobs(payrollRepo, payrollSvc).RegisterJobs(scheduler, cfg.Cron.PayrollRecomputeInterval)
	cron.NewLoanJobs(loanSvc, cfg.Cron.LoanGracePeriod).RegisterJobs(scheduler, cfg.Cron.LoanOverdueInterval)
	cron.NewAttendanceJobs(attendanceSvc).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	employeeHandler := appHTTP.NewEmployeeHandler(employeeSvc)
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc, hub)
	loanHandler := appHTTP.NewLoanHandler(loanSvc, employeeSvc)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	taxHandler := appHTTP.NewTaxHandler(taxSvc)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AppName:        cfg.App.Name,
			AppVersion:     cfg.App.Version,
			Environment:    cfg.App.Env,
			AllowedOrigins: cfg.App.AllowedOrigins,
		},
		jwtSvc,
		employeeHandler,
		attendanceHandler,
		loanHandler,
		payrollHandler,
		taxHandler,
	)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server starting", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
