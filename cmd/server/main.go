// @title Guest Registration API
// @version 1.0
// @description Invitation-based registration for capacity-limited events.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"guestregistration/config"
	_ "guestregistration/docs"
	"guestregistration/internal/adapters/artifacts"
	"guestregistration/internal/adapters/auth"
	"guestregistration/internal/adapters/email"
	"guestregistration/internal/adapters/queue"
	"guestregistration/internal/adapters/sheets"
	deliveryhttp "guestregistration/internal/delivery/http"
	"guestregistration/internal/delivery/http/controllers"
	"guestregistration/internal/delivery/http/middleware"
	"guestregistration/internal/domain"
	"guestregistration/internal/repository/memory"
	"guestregistration/internal/repository/postgres"
	"guestregistration/internal/services"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger := config.NewLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage
	uow, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	// Side effects
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		logger.Error("failed to parse email templates", "err", err)
		os.Exit(1)
	}
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.AWSRegion,
			AccessKeyID:        cfg.AWSAccessKeyID,
			SecretAccessKey:    cfg.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to create mailer", "provider", cfg.EmailProvider, "err", err)
		os.Exit(1)
	}
	var sheetSyncer domain.RegistrantSheetSyncer
	if cfg.SheetWebhookURL != "" {
		sheetSyncer = sheets.NewWebhookSyncer(&http.Client{Timeout: 10 * time.Second}, cfg.SheetWebhookURL)
	}
	handler := services.NewSideEffectRunner(
		services.NewEmailService(mailer, renderer, logger),
		artifacts.NewQRRenderer(cfg.QRCodeSize),
		artifacts.NewCalendarRenderer(cfg.EmailFromAddress, cfg.CalendarUIDDomain),
		sheetSyncer,
		logger,
	)

	local := services.NewAsyncDispatcher(handler, logger, cfg.DispatchWorkers, cfg.DispatchQueueSize)
	var dispatcher domain.SideEffectDispatcher = local
	consumerDone := make(chan struct{})
	var broker *queue.Dispatcher
	if cfg.DispatchMode == "amqp" {
		broker = queue.NewDispatcher(cfg.RabbitMQURL, local, logger)
		dispatcher = broker
		go func() {
			defer close(consumerDone)
			if err := queue.NewConsumer(cfg.RabbitMQURL, handler, logger).Run(ctx); err != nil {
				logger.Error("side effect consumer stopped", "err", err)
			}
		}()
	} else {
		close(consumerDone)
	}

	// Core
	ids, err := services.NewIdentifierIssuer(cfg.SnowflakeNode)
	if err != nil {
		logger.Error("failed to create identifier issuer", "err", err)
		os.Exit(1)
	}
	ledger := services.NewInvitationLedger(cfg.InvitationTTL)
	registrations := services.NewRegistrationService(uow, ledger, ids, dispatcher, logger, cfg.SubmitTimeout)

	if mem, ok := uow.(*memory.Store); ok {
		seedDemo(ctx, mem, ledger, cfg, logger)
	}

	// HTTP
	var scripter redis.Scripter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "err", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		scripter = rdb
	}
	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Enabled:        cfg.RateLimitEnabled,
		Prefix:         "guestregistration:ratelimit",
		Capacity:       cfg.RateLimitCapacity,
		RefillTokens:   cfg.RateLimitRefillTokens,
		RefillInterval: cfg.RateLimitRefillInterval,
		TTL:            cfg.RateLimitTTL,
	}, scripter, logger)

	router := deliveryhttp.NewRouter(deliveryhttp.RouterDeps{
		Logger:            logger,
		Registrations:     controllers.NewRegistrationController(logger, registrations),
		RateLimiter:       limiter,
		StaffVerifier:     auth.NewJWTVerifier(cfg.JWTSecret, domain.RoleStaff),
		AllowedOrigins:    cfg.AllowedOrigins,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment, "store", cfg.StoreDriver, "dispatch", cfg.DispatchMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
	<-consumerDone
	if broker != nil {
		if err := broker.Close(shutdownCtx); err != nil {
			logger.Warn("broker publish buffer not drained before timeout", "err", err)
		}
	}
	if err := local.Close(shutdownCtx); err != nil {
		logger.Warn("side effect queue not drained before timeout", "err", err)
	}
	logger.Info("server stopped")
}

// openStore returns the unit of work for the configured driver and a func
// releasing its resources.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.UnitOfWork, func(), error) {
	if cfg.StoreDriver == "memory" {
		logger.Warn("using in-memory store; data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return nil, nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if cfg.RunMigrations {
		if err := postgres.RunMigrations(db, logger); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}
	return postgres.NewUnitOfWork(db), func() { _ = db.Close() }, nil
}

// seedDemo gives the in-memory store one open event and one invitation so the
// service can be exercised locally without a database.
func seedDemo(ctx context.Context, store *memory.Store, ledger *services.InvitationLedger, cfg *config.Config, logger *slog.Logger) {
	startsAt := time.Now().Add(14 * 24 * time.Hour).Truncate(time.Hour)
	event := store.PutEvent(domain.Event{
		Name:             "Demo Evening",
		Location:         "Main Hall",
		StartsAt:         startsAt,
		EndsAt:           startsAt.Add(3 * time.Hour),
		Capacity:         50,
		WaitlistEnabled:  true,
		RegistrationOpen: true,
	})
	var inv *domain.Invitation
	err := store.Do(ctx, func(ctx context.Context, st domain.Stores) error {
		var err error
		inv, err = ledger.Issue(ctx, st.Invitations(), event.ID, "guest@example.com")
		return err
	})
	if err != nil {
		logger.Warn("failed to seed demo invitation", "err", err)
		return
	}
	logger.Info("seeded demo event", "event_id", event.ID, "invitation_link", cfg.InvitationBaseURL+inv.Token)
}
