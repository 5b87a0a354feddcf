package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/time/rate"

	"github.com/aafiyacare/homecare-api/internal/config"
	"github.com/aafiyacare/homecare-api/internal/email"
	authHandler "github.com/aafiyacare/homecare-api/internal/handler/auth"
	clinicianHandler "github.com/aafiyacare/homecare-api/internal/handler/clinician"
	consentHandler "github.com/aafiyacare/homecare-api/internal/handler/consent"
	episodeHandler "github.com/aafiyacare/homecare-api/internal/handler/episode"
	healthHandler "github.com/aafiyacare/homecare-api/internal/handler/health"
	patientHandler "github.com/aafiyacare/homecare-api/internal/handler/patient"
	reportHandler "github.com/aafiyacare/homecare-api/internal/handler/report"
	visitHandler "github.com/aafiyacare/homecare-api/internal/handler/visit"
	"github.com/aafiyacare/homecare-api/internal/middleware"
	"github.com/aafiyacare/homecare-api/internal/repository/postgres"
	"github.com/aafiyacare/homecare-api/internal/router"
	authService "github.com/aafiyacare/homecare-api/internal/service/auth"
	clinicianService "github.com/aafiyacare/homecare-api/internal/service/clinician"
	consentService "github.com/aafiyacare/homecare-api/internal/service/consent"
	episodeService "github.com/aafiyacare/homecare-api/internal/service/episode"
	eventService "github.com/aafiyacare/homecare-api/internal/service/event"
	patientService "github.com/aafiyacare/homecare-api/internal/service/patient"
	reportService "github.com/aafiyacare/homecare-api/internal/service/report"
	visitService "github.com/aafiyacare/homecare-api/internal/service/visit"
	"github.com/aafiyacare/homecare-api/internal/validation"
	"github.com/aafiyacare/homecare-api/pkg/auth"
	"github.com/aafiyacare/homecare-api/pkg/logger"
	"github.com/aafiyacare/homecare-api/pkg/metrics"
	"github.com/aafiyacare/homecare-api/pkg/security"
	pkgvalidator "github.com/aafiyacare/homecare-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:   logger.ParseLevel(cfg.Logging.Level),
		Service: "aafiya-api",
		Console: cfg.Logging.Console,
	})

	if err := pkgvalidator.RegisterCustomValidators(); err != nil {
		log.Fatal(err, "failed to register request validators")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	// A bad rule catalog is a deployment error; refuse to serve with a
	// partial rule set.
	catalog, err := validation.NewDefaultCatalog(cfg.Engine.DisabledRules)
	if err != nil {
		log.Fatal(err, "failed to build validation catalog")
	}
	validator := validation.NewValidator(catalog)

	encryptor, err := security.NewAESEncryptor([]byte(cfg.Security.EncryptionKey))
	if err != nil {
		log.Fatal(err, "failed to initialize care plan encryption")
	}

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        cfg.JWT.Secret,
		Issuer:        cfg.JWT.Issuer,
		AccessExpiry:  cfg.JWT.Expiry,
		RefreshExpiry: cfg.JWT.RefreshExpiry,
	})

	m := metrics.NewMetrics("aafiya", "api")

	patientRepo := postgres.NewPatientRepository(db)
	contactRepo := postgres.NewContactRepository(db)
	episodeRepo := postgres.NewEpisodeRepository(db)
	visitRepo := postgres.NewVisitRepository(db)
	clinicianRepo := postgres.NewClinicianRepository(db)
	consentRepo := postgres.NewConsentRepository(db)
	userRepo := postgres.NewUserRepository(db)
	reportRepo := postgres.NewReportRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	events := eventService.NewService(outboxRepo)

	cacheTTL := cfg.Engine.CacheTTL
	if !cfg.Engine.CacheEnabled {
		cacheTTL = 0
	}
	patientSvc := patientService.NewService(patientRepo, contactRepo, validator, events, m, log, patientService.Options{
		CacheTTL:         cacheTTL,
		BatchConcurrency: cfg.Engine.BatchConcurrency,
	})
	episodeSvc := episodeService.NewService(episodeRepo, patientRepo, encryptor, events, log)
	visitSvc := visitService.NewService(visitRepo, patientRepo, clinicianRepo, episodeRepo, events, log)
	clinicianSvc := clinicianService.NewService(clinicianRepo)
	consentSvc := consentService.NewService(consentRepo, patientRepo, events, log)
	authSvc := authService.NewService(userRepo, jwtSvc, log)

	mailer := email.NewService(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, log)
	reportSvc := reportService.NewService(reportRepo, patientSvc, mailer, events, cfg.Compliance.DefaultRecipients, log)

	authMW := middleware.NewAuthMiddleware(jwtSvc)

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.Security.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Security.AllowedOrigins
	}
	if len(cfg.Security.AllowedMethods) > 0 {
		corsConfig.AllowMethods = cfg.Security.AllowedMethods
	}
	if len(cfg.Security.AllowedHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.Security.AllowedHeaders
	}

	var rateLimit *middleware.RateLimiterConfig
	if cfg.RateLimit.Enabled {
		rateLimit = &middleware.RateLimiterConfig{
			Rate:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			Burst: cfg.RateLimit.Burst,
		}
	}

	metricsPath := ""
	if cfg.Monitoring.PrometheusEnabled {
		metricsPath = cfg.Monitoring.MetricsPath
	}

	r := router.New(log, authMW, authHandler.NewHandler(authSvc), healthHandler.NewHandler(db), []router.Handler{
		patientHandler.NewHandler(patientSvc),
		episodeHandler.NewHandler(episodeSvc),
		visitHandler.NewHandler(visitSvc),
		clinicianHandler.NewHandler(clinicianSvc),
		consentHandler.NewHandler(consentSvc),
		reportHandler.NewHandler(reportSvc),
	}, router.Config{
		CORS:        corsConfig,
		RateLimit:   rateLimit,
		MetricsPath: metricsPath,
	})

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go func() {
		log.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err, "server forced to shut down")
	}
	log.Info("server stopped")
}
