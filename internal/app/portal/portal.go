// Package portal собирает HTTP-сервер портала WAHS: сверку PayPal IPN,
// регистрацию на конгресс, членство и административную панель.
package portal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/wahs-congress/internal/authz"
	"github.com/magabrotheeeer/wahs-congress/internal/cache"
	"github.com/magabrotheeeer/wahs-congress/internal/config"
	"github.com/magabrotheeeer/wahs-congress/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/jwt"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/sl"
	"github.com/magabrotheeeer/wahs-congress/internal/metrics"
	"github.com/magabrotheeeer/wahs-congress/internal/migrations"
	"github.com/magabrotheeeer/wahs-congress/internal/notify"
	"github.com/magabrotheeeer/wahs-congress/internal/paypal"
	"github.com/magabrotheeeer/wahs-congress/internal/pricing"
	services "github.com/magabrotheeeer/wahs-congress/internal/services/auth"
	"github.com/magabrotheeeer/wahs-congress/internal/services/membership"
	"github.com/magabrotheeeer/wahs-congress/internal/services/reconcile"
	"github.com/magabrotheeeer/wahs-congress/internal/services/registration"
	"github.com/magabrotheeeer/wahs-congress/internal/storage/repository"
)

const (
	formRate  = rate.Limit(5)
	formBurst = 20
)

// App HTTP-приложение портала.
type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	cache      *cache.Cache
	conn       *amqp.Connection
	ch         *amqp.Channel
	dispatcher *notify.Dispatcher
}

// New поднимает зависимости и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "portal.New"

	if cfg.CookieSecret == "" || cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("%s: session cookie secret and jwt secret key are required", op)
	}
	policy, err := pricing.New(cfg.Pricing)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = services.SeedAdmins(ctx, logger, db, cfg.Admin.Emails, cfg.Admin.Password); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	dispatcher := notify.NewAMQP(logger, ch, cfg.PublishTimeout)

	engine := reconcile.New(logger, db, paypal.NewClient(cfg.PayPalVerifyURL(), cfg.VerifyTimeout), policy,
		reconcile.Options{
			AllowUnmatchedAmounts: cfg.AllowUnmatchedAmounts,
			Locker:                cacheRedis,
			Dispatcher:            dispatcher,
			Recorder:              metrics.NewReconciliation(prometheus.DefaultRegisterer),
		})
	adminPolicy := authz.NewPolicy(cfg.Admin.Emails)
	membershipService := membership.New(logger, db, dispatcher, cfg.PayPal.Links, adminPolicy)
	registrationService := registration.New(logger, db, membershipService, policy, cacheRedis, dispatcher, cfg.PayPal.Links)
	authService := services.NewAuthService(db, jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL))

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Pricing:      policy,
		Reconcile:    engine,
		Registration: registrationService,
		Membership:   membershipService,
		Auth:         authService,
		Sessions:     middlewarectx.NewSessions(cfg.Session),
		Policy:       adminPolicy,
		Storage:      db,
		Limiter:      rate.NewLimiter(formRate, formBurst),
		DefaultYear:  cfg.CongressYear,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		db:         db,
		cache:      cacheRedis,
		conn:       conn,
		ch:         ch,
		dispatcher: dispatcher,
	}, nil
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливается.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return err
}

func (a *App) close() {
	// письма, поставленные в очередь до остановки, должны уйти
	a.dispatcher.Wait()
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
}
