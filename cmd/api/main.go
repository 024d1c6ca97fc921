package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-edu/eduops-backend/internal/config"
	appHTTP "github.com/cmlabs-edu/eduops-backend/internal/handler/http"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/cron"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/database"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/email"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/jwt"
	"github.com/cmlabs-edu/eduops-backend/internal/pkg/sse"
	"github.com/cmlabs-edu/eduops-backend/internal/repository/postgresql"
	accountService "github.com/cmlabs-edu/eduops-backend/internal/service/account"
	attendanceService "github.com/cmlabs-edu/eduops-backend/internal/service/attendance"
	leaveService "github.com/cmlabs-edu/eduops-backend/internal/service/leave"
	payrollService "github.com/cmlabs-edu/eduops-backend/internal/service/payroll"
	recruitmentService "github.com/cmlabs-edu/eduops-backend/internal/service/recruitment"
	timetableService "github.com/cmlabs-edu/eduops-backend/internal/service/timetable"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	dsn := cfg.DatabaseURL()
	if cfg.Database.MigrateOnBoot {
		if err := database.RunMigrations(dsn); err != nil {
			return err
		}
	}

	db, err := database.NewPostgreSQLDB(dsn, database.PoolConfig{MaxConns: cfg.Database.MaxConns})
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	tx := postgresql.NewTransactor(db)
	userRepo := postgresql.NewUserRepository(db)
	resetRepo := postgresql.NewPasswordResetRepository(db)
	officerRepo := postgresql.NewOfficerRepository(db)
	assignmentRepo := postgresql.NewAssignmentRepository(db)
	periodRepo := postgresql.NewPeriodRepository(db)
	leaveRepo := postgresql.NewLeaveApplicationRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	jobPostingRepo := postgresql.NewJobPostingRepository(db)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	emailService, err := email.NewEmailService(email.Config{
		APIKey:      cfg.SendGrid.APIKey,
		FromName:    cfg.SendGrid.FromName,
		FromAddress: cfg.SendGrid.FromAddress,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize email service: %w", err)
	}
	hub := sse.NewHub()

	substituteSvc := timetableService.NewSubstituteService(officerRepo, assignmentRepo, periodRepo)
	leaveSvc := leaveService.NewLeaveService(tx, leaveRepo, officerRepo, substituteSvc, hub)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, officerRepo)
	payrollSvc := payrollService.NewPayrollService(tx, payrollRepo, officerRepo, attendanceRepo, nil)
	accountSvc := accountService.NewAccountService(tx, userRepo, resetRepo, emailService, JWTService, accountService.Config{
		ResetURL:      cfg.Account.ResetURL,
		ResetTokenTTL: cfg.Account.ResetTokenTTL,
	})
	recruitmentSvc := recruitmentService.NewRecruitmentService(tx, jobPostingRepo)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AppName:        cfg.App.Name,
			Version:        cfg.App.Version,
			Env:            cfg.App.Env,
			AllowedOrigins: cfg.App.AllowedOrigins,
			LogLevel:       cfg.SlogLevel(),
		},
		JWTService,
		appHTTP.Handlers{
			Account:     appHTTP.NewAccountHandler(accountSvc),
			Leave:       appHTTP.NewLeaveHandler(leaveSvc),
			Substitute:  appHTTP.NewSubstituteHandler(substituteSvc),
			Attendance:  appHTTP.NewAttendanceHandler(attendanceSvc),
			Payroll:     appHTTP.NewPayrollHandler(payrollSvc),
			Recruitment: appHTTP.NewRecruitmentHandler(recruitmentSvc),
			Events:      appHTTP.NewEventsHandler(hub, cfg.App.SSEKeepAlive),
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		scheduler := cron.NewScheduler()
		cron.NewAttendanceJobs(attendanceSvc, cfg.Cron.StaleShiftInterval).RegisterJobs(scheduler)
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Open event streams end when the process is signalled.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
