package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gamehost/siteadmin/src/config"
	"github.com/gamehost/siteadmin/src/database"
	"github.com/gamehost/siteadmin/src/handlers"
	"github.com/gamehost/siteadmin/src/logging"
	"github.com/gamehost/siteadmin/src/middleware"
	"github.com/gamehost/siteadmin/src/models"
	"github.com/gamehost/siteadmin/src/repositories/postgres"
	"github.com/gamehost/siteadmin/src/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logging
	logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	log.Info().
		Int("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Str("version", version).
		Msg("starting server")

	if cfg.JWTSecretGenerated {
		log.Warn().Msg("JWT_SECRET not set, using a random secret; sessions will not survive a restart")
	}

	// Initialize database; a broken schema is fatal
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.New(ctx, cfg.DatabaseURL(), database.Options{MaxConns: cfg.DBMaxConns})
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	log.Info().Msg("database connected")

	jwtManager, err := middleware.NewJWTManager(cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize JWT secret")
	}

	// Initialize encryption (optional, empty key disables)
	encryptor, err := services.NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize encryption")
	}
	var cipher postgres.Cipher
	if encryptor != nil {
		cipher = encryptor
		log.Info().Msg("credential encryption enabled (AES-256-GCM)")
	} else {
		log.Info().Msg("credential encryption disabled (ENCRYPTION_KEY not set)")
	}

	// Repositories
	pool := db.GetPool()
	adminRepo := postgres.NewAdminRepository(pool)
	credentialRepo := postgres.NewCredentialRepository(pool, cipher)
	subscriberRepo := postgres.NewSubscriberRepository(pool)
	planRepo := postgres.NewPlanRepository(pool)

	// Services
	prober := services.NewProber(services.ProberConfig{
		CtrlPanelURL:      cfg.CtrlPanelURL,
		HetrixToolsAPIURL: cfg.HetrixToolsAPIURL,
		Timeout:           cfg.ProbeTimeout,
	})
	mirror := services.NewEnvMirror(cfg.EnvFilePaths...)
	mailer := services.NewMailer(cfg.ProbeTimeout)
	settingsService := services.NewSettingsService(credentialRepo, prober, mirror)
	adminService := services.NewAdminService(adminRepo)
	newsletterService := services.NewNewsletterService(subscriberRepo, mailer)
	planService := services.NewPlanService(planRepo)

	// Rebuild the mail transport whenever SMTP settings are saved
	settingsService.OnSave(models.KindZohoMail, func(_ context.Context, rec *models.CredentialRecord) {
		configureMailer(mailer, rec)
	})

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	bootstrap(startupCtx, cfg, adminService, planService, settingsService, credentialRepo, mailer)
	cancel()

	// Background workers run until shutdown cancels appCtx
	appCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	reconciler := services.NewMirrorReconciler(settingsService, cfg.MirrorReconcileInterval)
	reconciler.Start(appCtx)

	// Create Gin router
	router := gin.New()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handlers.SetupRoutes(router, handlers.Routes{
		Health:        handlers.NewHealthHandler(db, version),
		Admin:         handlers.NewAdminHandler(adminService, jwtManager, cfg.CookieSecure),
		Settings:      handlers.NewSettingsHandler(settingsService),
		Newsletter:    handlers.NewNewsletterHandler(newsletterService),
		Plans:         handlers.NewPlanHandler(planService),
		AdminAuth:     middleware.AdminAuthMiddleware(jwtManager),
		AuthRateLimit: middleware.AuthRateLimitMiddleware(appCtx, cfg.AuthRateLimitPerMinute, cfg.AuthRateLimitBurst),
	})

	// Probes can take up to PROBE_TIMEOUT, so the write timeout leaves room for them
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.ProbeTimeout + 30*time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Int("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	stopWorkers()
	reconciler.Stop()

	// Graceful shutdown with timeout
	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server shut down successfully")
}

// bootstrap runs the first-boot and startup tasks. Failures are logged; none
// of them prevents the API from serving.
func bootstrap(
	ctx context.Context,
	cfg *config.Config,
	adminService *services.AdminService,
	planService *services.PlanService,
	settingsService *services.SettingsService,
	credentials interface {
		GetCurrent(ctx context.Context, kind models.CredentialKind) (*models.CredentialRecord, error)
	},
	mailer *services.Mailer,
) {
	// Auto-seed admin user on first run (if ADMIN_EMAIL, ADMIN_USERNAME and ADMIN_PASSWORD are set)
	created, err := adminService.EnsureBootstrapAdmin(ctx, cfg.AdminEmail, cfg.AdminUsername, cfg.AdminPassword)
	switch {
	case err != nil:
		log.Error().Err(err).Msg("failed to create initial admin user")
	case created:
		log.Info().Str("username", cfg.AdminUsername).Msg("initial admin user created")
	}

	if n, err := planService.SeedFromFile(ctx, cfg.PlansSeedFile); err != nil {
		log.Error().Err(err).Msg("failed to seed plan catalog")
	} else if n > 0 {
		log.Info().Int("count", n).Msg("plan catalog seeded")
	}

	// Mail transport from the stored SMTP credential, if any
	rec, err := credentials.GetCurrent(ctx, models.KindZohoMail)
	if err != nil {
		log.Error().Err(err).Msg("failed to load SMTP settings")
	} else if rec != nil {
		configureMailer(mailer, rec)
	} else {
		log.Warn().Msg("SMTP settings not configured - newsletter sending disabled")
	}

	if err := settingsService.Reconcile(ctx); err != nil {
		log.Error().Err(err).Msg("failed to reconcile env mirror")
	}
}

func configureMailer(mailer *services.Mailer, rec *models.CredentialRecord) {
	smtp, err := services.SMTPSettingsFromFields(rec.Fields)
	if err != nil {
		log.Error().Err(err).Msg("stored SMTP settings are invalid")
		return
	}
	mailer.Configure(smtp)
	log.Info().Str("host", smtp.Host).Int("port", smtp.Port).Msg("mail transport configured")
}
