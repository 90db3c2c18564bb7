package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventsnap/config"
	_ "eventsnap/docs"
	"eventsnap/internal/adapters/auth"
	"eventsnap/internal/adapters/email"
	"eventsnap/internal/adapters/geocode"
	httpdelivery "eventsnap/internal/delivery/http"
	"eventsnap/internal/delivery/http/controllers"
	"eventsnap/internal/delivery/http/middleware"
	"eventsnap/internal/repository/postgres"
	"eventsnap/internal/services"
)

// @title EventSnap API
// @version 1.0
// @description Event management with portable snapshot export, merge-import and reset.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("opening database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("database unreachable", "err", err)
		os.Exit(1)
	}

	eventRepo := postgres.NewEventRepository(db)
	attendeeRepo := postgres.NewAttendeeRepository(db)
	roomRepo := postgres.NewRoomRepository(db)
	meetingRepo := postgres.NewMeetingRepository(db)
	maintenanceRepo := postgres.NewMaintenanceRepository(db)

	hasher := auth.NewBcryptHasher(0)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	geocoder := geocode.NewNominatimGeocoder(&http.Client{Timeout: 10 * time.Second}, cfg.GeocoderBase)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureTLS,
		},
	})
	if err != nil {
		logger.Error("creating mailer", "err", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())

	eventService := services.NewEventService(eventRepo, hasher, cfg.ContextTimeout)
	attendeeService := services.NewAttendeeService(eventRepo, attendeeRepo, cfg.ContextTimeout)
	roomService := services.NewRoomService(eventRepo, roomRepo, cfg.ContextTimeout)
	meetingService := services.NewMeetingService(eventRepo, roomRepo, meetingRepo, attendeeRepo, emailService, cfg.ContextTimeout)
	snapshotService := services.NewSnapshotService(eventRepo, roomRepo, attendeeRepo, meetingRepo, maintenanceRepo, geocoder, logger, cfg.ContextTimeout)

	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Event:    controllers.NewEventController(logger, eventService),
		Attendee: controllers.NewAttendeeController(logger, attendeeService),
		Room:     controllers.NewRoomController(logger, roomService),
		Meeting:  controllers.NewMeetingController(logger, meetingService),
		Snapshot: controllers.NewSnapshotController(logger, snapshotService),
	}, verifier)

	handler := middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, mux))
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
	logger.Info("stopped")
}
