package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tempoworks/tempo-backend/internal/auth"
	authhandler "github.com/tempoworks/tempo-backend/internal/auth/handler"
	"github.com/tempoworks/tempo-backend/internal/auth/jwt"
	authservice "github.com/tempoworks/tempo-backend/internal/auth/service"
	csvevents "github.com/tempoworks/tempo-backend/internal/csvimport/events"
	csvhandler "github.com/tempoworks/tempo-backend/internal/csvimport/handler"
	csvrepo "github.com/tempoworks/tempo-backend/internal/csvimport/repository"
	csvservice "github.com/tempoworks/tempo-backend/internal/csvimport/service"
	reporthandler "github.com/tempoworks/tempo-backend/internal/report/handler"
	reportrepo "github.com/tempoworks/tempo-backend/internal/report/repository"
	rosterhandler "github.com/tempoworks/tempo-backend/internal/roster/handler"
	rosterrepo "github.com/tempoworks/tempo-backend/internal/roster/repository"
	rosterservice "github.com/tempoworks/tempo-backend/internal/roster/service"
	tsevents "github.com/tempoworks/tempo-backend/internal/timesheet/events"
	tshandler "github.com/tempoworks/tempo-backend/internal/timesheet/handler"
	tsrepo "github.com/tempoworks/tempo-backend/internal/timesheet/repository"
	tsservice "github.com/tempoworks/tempo-backend/internal/timesheet/service"
	"github.com/tempoworks/tempo-backend/pkg/config"
	"github.com/tempoworks/tempo-backend/pkg/database"
	"github.com/tempoworks/tempo-backend/pkg/httputil"
	"github.com/tempoworks/tempo-backend/pkg/logger"
	"github.com/tempoworks/tempo-backend/pkg/messaging"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithValidation("timesheet-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("timesheet-service", cfg.Server.Environment)
	log.Info().Msg("starting Timesheet Service")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Initialize event publishers
	timesheetPublisher, err := tsevents.NewTimesheetEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create timesheet event publisher")
	}
	importPublisher, err := csvevents.NewImportEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create import event publisher")
	}

	// Initialize repositories
	employeeRepo := rosterrepo.NewEmployeeRepository(db)
	projectRepo := rosterrepo.NewProjectRepository(db)
	stageRepo := rosterrepo.NewStageRepository(db)
	timesheetRepo := tsrepo.NewTimesheetRepository(db)
	approvalRepo := tsrepo.NewApprovalRepository(db)
	importLogRepo := csvrepo.NewImportLogRepository(db)
	reportRepo := reportrepo.NewReportRepository(db)

	// Initialize services
	jwtManager := jwt.NewManager(&cfg.JWT)
	authService := authservice.NewAuthService(employeeRepo, jwtManager, log)
	rosterService := rosterservice.NewRosterService(employeeRepo, projectRepo, stageRepo, log)
	timesheetService := tsservice.NewTimesheetService(db, timesheetRepo, approvalRepo, timesheetPublisher, log)
	importService := csvservice.NewImportService(
		db, &cfg.Import,
		employeeRepo, projectRepo, stageRepo,
		timesheetRepo, approvalRepo, importLogRepo,
		importPublisher, log,
	)

	// Initialize handlers
	authHandler := authhandler.NewAuthHandler(authService, log)
	employeeHandler := rosterhandler.NewEmployeeHandler(rosterService, log)
	projectHandler := rosterhandler.NewProjectHandler(rosterService, log)
	stageHandler := rosterhandler.NewStageHandler(rosterService, log)
	timesheetHandler := tshandler.NewTimesheetHandler(timesheetService, log)
	approvalHandler := tshandler.NewApprovalHandler(timesheetService, log)
	importHandler := csvhandler.NewImportHandler(importService, log)
	reportHandler := reporthandler.NewReportHandler(reportRepo, log)

	authenticated := auth.Middleware(jwtManager)
	reviewers := auth.RequireRole("LEVEL2", "LEVEL3")
	admins := auth.RequireRole("LEVEL3")

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "timesheet-service",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public
		r.Post("/auth/login", authHandler.Login)

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(authenticated)

			r.Get("/auth/me", authHandler.Me)

			// Roster
			r.Route("/employees", func(r chi.Router) {
				r.Get("/", employeeHandler.List)
				r.Get("/{id}", employeeHandler.Get)
				r.With(admins).Post("/", employeeHandler.Create)
				r.With(admins).Put("/{id}", employeeHandler.Update)
				r.With(admins).Delete("/{id}", employeeHandler.Delete)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projectHandler.List)
				r.Get("/{id}", projectHandler.Get)
				r.With(reviewers).Post("/", projectHandler.Create)
				r.With(reviewers).Put("/{id}", projectHandler.Update)
				r.With(admins).Delete("/{id}", projectHandler.Delete)
			})

			r.Route("/stages", func(r chi.Router) {
				r.Get("/", stageHandler.List)
				r.Get("/{id}", stageHandler.Get)
				r.With(reviewers).Post("/", stageHandler.Create)
				r.With(reviewers).Put("/{id}", stageHandler.Update)
				r.With(reviewers).Delete("/{id}", stageHandler.Delete)
			})

			// Timesheets and approval workflow
			r.Route("/timesheets", func(r chi.Router) {
				r.Get("/", timesheetHandler.List)
				r.Post("/", timesheetHandler.Create)
				r.Post("/batch-submit", timesheetHandler.BatchSubmit)
				r.With(reviewers).Post("/batch-approve", approvalHandler.BatchApprove)
				r.Get("/{id}", timesheetHandler.Get)
				r.Put("/{id}", timesheetHandler.Update)
				r.Delete("/{id}", timesheetHandler.Delete)
				r.Post("/{id}/submit", timesheetHandler.Submit)
				r.Get("/{id}/approval", approvalHandler.Get)
				r.With(reviewers).Post("/{id}/approve", approvalHandler.Approve)
				r.With(reviewers).Post("/{id}/reject", approvalHandler.Reject)
				r.With(admins).Post("/{id}/reset-to-submitted", approvalHandler.ResetToSubmitted)
			})

			r.With(reviewers).Get("/approvals/pending", approvalHandler.ListPending)

			// CSV import/export
			r.Route("/csv", func(r chi.Router) {
				r.With(reviewers).Post("/import/validate", importHandler.Validate)
				r.With(reviewers).Post("/import/execute", importHandler.Execute)
				r.With(reviewers).Get("/import/logs", importHandler.ListLogs)
				r.With(reviewers).Get("/import/logs/{id}", importHandler.GetLog)
				r.Get("/template/{entity}", importHandler.Template)
				r.With(reviewers).Get("/export/{entity}", importHandler.Export)
			})

			// Reports
			r.With(reviewers).Get("/reports/hours", reportHandler.Hours)
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
