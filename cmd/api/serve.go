package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/booking-api/internal/availability"
	"github.com/jwalitptl/booking-api/internal/booking"
	appointmentHandler "github.com/jwalitptl/booking-api/internal/handler/appointment"
	bookingHandler "github.com/jwalitptl/booking-api/internal/handler/booking"
	dashboardHandler "github.com/jwalitptl/booking-api/internal/handler/dashboard"
	doctorHandler "github.com/jwalitptl/booking-api/internal/handler/doctor"
	formHandler "github.com/jwalitptl/booking-api/internal/handler/form"
	"github.com/jwalitptl/booking-api/internal/handler/health"
	hospitalHandler "github.com/jwalitptl/booking-api/internal/handler/hospital"
	patientHandler "github.com/jwalitptl/booking-api/internal/handler/patient"
	registrationHandler "github.com/jwalitptl/booking-api/internal/handler/registration"
	userHandler "github.com/jwalitptl/booking-api/internal/handler/user"
	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/internal/registration"
	"github.com/jwalitptl/booking-api/internal/repository/postgres"
	"github.com/jwalitptl/booking-api/internal/router"
	"github.com/jwalitptl/booking-api/internal/service/appointment"
	"github.com/jwalitptl/booking-api/internal/service/dashboard"
	"github.com/jwalitptl/booking-api/internal/service/doctor"
	"github.com/jwalitptl/booking-api/internal/service/form"
	"github.com/jwalitptl/booking-api/internal/service/hospital"
	"github.com/jwalitptl/booking-api/internal/service/patient"
	"github.com/jwalitptl/booking-api/internal/service/user"
	"github.com/jwalitptl/booking-api/internal/session"
	"github.com/jwalitptl/booking-api/pkg/metrics"
	"github.com/jwalitptl/booking-api/pkg/security"
)

func serveCmd() *cobra.Command {
	var withOutbox bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), withOutbox)
		},
	}
	cmd.Flags().BoolVar(&withOutbox, "outbox", true, "also run the outbox publisher in this process")
	return cmd
}

func runServer(parent context.Context, withOutbox bool) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg, log := a.cfg, a.log

	loc, err := cfg.Booking.Location()
	if err != nil {
		return err
	}
	grid, err := cfg.Booking.Grid()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New("booking", reg)

	// Repositories
	userRepo := postgres.NewUserRepository(a.db)
	hospitalRepo := postgres.NewHospitalRepository(a.db)
	doctorRepo := postgres.NewDoctorRepository(a.db)
	scheduleRepo := postgres.NewScheduleRepository(a.db)
	appointmentRepo := postgres.NewAppointmentRepository(a.db)
	patientRepo := postgres.NewPatientRepository(a.db)
	formRepo := postgres.NewFormRepository(a.db)
	registrationRepo := postgres.NewRegistrationRepository(a.db)

	source := availability.NewScheduleSource(scheduleRepo, grid, loc)

	// Services
	userSvc := user.NewService(userRepo, log)
	hospitalSvc := hospital.NewService(hospitalRepo)
	doctorSvc := doctor.NewService(doctorRepo, source, cfg.Cache.TTL, loc, log, m)
	scheduleSvc := doctor.NewScheduleService(scheduleRepo, doctorRepo, hospitalRepo)
	appointmentSvc := appointment.NewService(appointmentRepo, doctorRepo, hospitalRepo, source, loc, log, m)
	patientSvc := patient.NewService(patientRepo)
	formSvc := form.NewService(formRepo)
	dashboardSvc := dashboard.NewService(appointmentRepo, doctorRepo, hospitalRepo, cfg.Dashboard.Timeout, cfg.Dashboard.UpcomingLimit, loc, log)
	registrationSvc := registration.NewService(registrationRepo, security.NewBcryptHasher(0), log, m)

	handlers := router.Handlers{
		Health: health.NewHandler(map[string]health.Check{
			"database": a.db.PingContext,
			"redis":    a.broker.Ping,
		}, reg),
		Hospital:     hospitalHandler.NewHandler(hospitalSvc),
		Doctor:       doctorHandler.NewHandler(doctorSvc, scheduleSvc),
		Registration: registrationHandler.NewHandler(registrationSvc),
		Form:         formHandler.NewHandler(formSvc),
		Booking: bookingHandler.NewHandler(
			booking.NewStore(cfg.Booking.WizardTTL),
			appointmentSvc,
			doctorSvc,
			source,
			m,
			bookingHandler.Config{Location: loc, Days: cfg.Booking.ModalDays},
		),
		Appointment: appointmentHandler.NewHandler(appointmentSvc),
		Dashboard:   dashboardHandler.NewHandler(dashboardSvc),
		Patient:     patientHandler.NewHandler(patientSvc),
		User:        userHandler.NewHandler(userSvc),
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		cors.AllowOrigins = cfg.CORS.AllowedOrigins
	}

	verifier := session.NewVerifier(session.Config{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		Leeway:   cfg.Auth.Leeway,
	})

	r := router.NewRouter(verifier, handlers, m, *log.Zerolog(), router.RouterConfig{
		Mode:           cfg.Server.Mode,
		RateLimit:      rate.Limit(cfg.RateLimit.RPS),
		RateBurst:      cfg.RateLimit.Burst,
		RequestTimeout: cfg.Server.RequestTimeout,
		CORSConfig:     cors,
	})
	r.Setup()

	if withOutbox {
		processor, cleanup := outboxWorkers(a, m)
		go processor.Start(ctx)
		go cleanup.Start(ctx)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited properly")
	return nil
}
