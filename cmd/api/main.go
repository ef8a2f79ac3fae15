package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-core/internal/config"
	"github.com/cmlabs-hris/hris-core/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-core/internal/domain/leave"
	"github.com/cmlabs-hris/hris-core/internal/domain/payroll"
	appHTTP "github.com/cmlabs-hris/hris-core/internal/handler/http"
	"github.com/cmlabs-hris/hris-core/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-core/internal/pkg/database"
	"github.com/cmlabs-hris/hris-core/internal/pkg/i18n"
	"github.com/cmlabs-hris/hris-core/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-core/internal/repository/lifecycle"
	"github.com/cmlabs-hris/hris-core/internal/repository/mongodb"
	"github.com/cmlabs-hris/hris-core/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-core/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/hris-core/internal/service/leave"
	payrollService "github.com/cmlabs-hris/hris-core/internal/service/payroll"
	"github.com/go-chi/httplog/v3"
)

// repositories are the raw storage backends, before the lifecycle hook is applied.
type repositories struct {
	attendance attendance.AttendanceRepository
	leave      leave.LeaveRequestRepository
	salary     payroll.SalaryRepository
	close      func(ctx context.Context) error
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "development")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-core"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repos.close(closeCtx); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	// Every write goes through the hook, so derived fields are set before storage sees the record.
	hook := lifecycle.NewHook(logger)
	attendanceRepo := lifecycle.NewAttendanceRepository(repos.attendance, hook)
	leaveRequestRepo := lifecycle.NewLeaveRequestRepository(repos.leave, hook)
	salaryRepo := lifecycle.NewSalaryRepository(repos.salary, hook)

	translator, err := i18n.NewTranslator(cfg.App.DefaultLocale)
	if err != nil {
		return fmt.Errorf("loading translations: %w", err)
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, logger, cfg.Location())
	leaveSvc := leaveService.NewLeaveService(leaveRequestRepo, logger)
	salarySvc := payrollService.NewSalaryService(salaryRepo, logger)

	scheduler := cron.NewScheduler(logger)
	if cfg.Reconcile.Enabled {
		cron.NewReconcileJobs(attendanceRepo, leaveRequestRepo, salaryRepo, hook, logger).
			RegisterJobs(scheduler, cfg.Reconcile.Interval)
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:         logger,
			LogLevel:       cfg.SlogLevel(),
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			JWTService:     JWTService,
			Translator:     translator,
		},
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewLeaveHandler(leaveSvc),
		appHTTP.NewSalaryHandler(salarySvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server running", slog.String("addr", server.Addr), slog.String("storage", cfg.Storage.Backend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories, error) {
	switch cfg.Storage.Backend {
	case config.BackendMongoDB:
		db, err := mongodb.NewMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database, logger)
		if err != nil {
			return repositories{}, fmt.Errorf("connecting to mongodb: %w", err)
		}
		repos := repositories{close: db.Close}
		if repos.attendance, err = mongodb.NewAttendanceRepository(ctx, db); err != nil {
			return repositories{}, errors.Join(err, db.Close(ctx))
		}
		if repos.leave, err = mongodb.NewLeaveRequestRepository(ctx, db); err != nil {
			return repositories{}, errors.Join(err, db.Close(ctx))
		}
		if repos.salary, err = mongodb.NewSalaryRepository(ctx, db); err != nil {
			return repositories{}, errors.Join(err, db.Close(ctx))
		}
		return repos, nil

	default:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			return repositories{}, fmt.Errorf("connecting to database: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := db.Migrate(ctx, logger); err != nil {
				db.Close()
				return repositories{}, fmt.Errorf("running migrations: %w", err)
			}
		}
		return repositories{
			attendance: postgresql.NewAttendanceRepository(db),
			leave:      postgresql.NewLeaveRequestRepository(db),
			salary:     postgresql.NewSalaryRepository(db),
			close: func(context.Context) error {
				db.Close()
				return nil
			},
		}, nil
	}
}
