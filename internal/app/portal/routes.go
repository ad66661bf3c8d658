package portal

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	_ "github.com/magabrotheeeer/wahs-congress/docs"
	"github.com/magabrotheeeer/wahs-congress/internal/authz"
	membersList "github.com/magabrotheeeer/wahs-congress/internal/http/handlers/admin/members/list"
	membersUpdate "github.com/magabrotheeeer/wahs-congress/internal/http/handlers/admin/members/update"
	"github.com/magabrotheeeer/wahs-congress/internal/http/handlers/admin/registrations/confirm"
	registrationsList "github.com/magabrotheeeer/wahs-congress/internal/http/handlers/admin/registrations/list"
	"github.com/magabrotheeeer/wahs-congress/internal/http/handlers/admin/registrations/withdraw"
	"github.com/magabrotheeeer/wahs-congress/internal/http/handlers/admin/transactions"
	"github.com/magabrotheeeer/wahs-congress/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/wahs-congress/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/wahs-congress/internal/http/handlers/health"
	"github.com/magabrotheeeer/wahs-congress/internal/http/handlers/paypal/ipn"
	pricingList "github.com/magabrotheeeer/wahs-congress/internal/http/handlers/pricing/list"
	"github.com/magabrotheeeer/wahs-congress/internal/http/handlers/pricing/tier"
	"github.com/magabrotheeeer/wahs-congress/internal/http/handlers/registration/check"
	"github.com/magabrotheeeer/wahs-congress/internal/http/handlers/registration/create"
	"github.com/magabrotheeeer/wahs-congress/internal/http/handlers/registration/member"
	"github.com/magabrotheeeer/wahs-congress/internal/http/handlers/wahs/me"
	"github.com/magabrotheeeer/wahs-congress/internal/http/handlers/wahs/register"
	"github.com/magabrotheeeer/wahs-congress/internal/http/middlewarectx"
	"github.com/magabrotheeeer/wahs-congress/internal/http/response"
	"github.com/magabrotheeeer/wahs-congress/internal/pricing"
	services "github.com/magabrotheeeer/wahs-congress/internal/services/auth"
	"github.com/magabrotheeeer/wahs-congress/internal/services/membership"
	"github.com/magabrotheeeer/wahs-congress/internal/services/reconcile"
	"github.com/magabrotheeeer/wahs-congress/internal/services/registration"
	"github.com/magabrotheeeer/wahs-congress/internal/storage/repository"
)

// Deps зависимости маршрутов.
type Deps struct {
	Pricing      *pricing.Policy
	Reconcile    *reconcile.Engine
	Registration *registration.Service
	Membership   *membership.Service
	Auth         *services.AuthService
	Sessions     *middlewarectx.Sessions
	Policy       *authz.Policy
	Storage      *repository.Storage
	Gatherer     prometheus.Gatherer
	// Limiter ограничивает публичные формы; nil отключает ограничение.
	Limiter     *rate.Limiter
	DefaultYear int
}

// RegisterRoutes регистрирует все маршруты портала.
func RegisterRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)
	r.MethodNotAllowed(methodNotAllowed)

	var ready health.ReadyFunc
	if d.Storage != nil {
		ready = func() error { return repository.CheckDatabaseReady(d.Storage) }
	}
	r.Get("/health", health.New(logger, ready).ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		// PayPal вызывает без сессии и ждёт 200 на любой исход
		r.Post("/webhooks/paypal-ipn", ipn.New(logger, d.Reconcile).ServeHTTP)

		r.Get("/pricing", pricingList.New(logger, d.Pricing).ServeHTTP)
		r.Get("/pricing/{tier}", tier.New(logger, d.Pricing).ServeHTTP)
		r.Get("/registrations/check", check.New(logger, d.Registration, d.DefaultYear).ServeHTTP)
		r.Post("/logout", logout.New(logger, d.Sessions).ServeHTTP)

		// Публичные формы
		r.Group(func(r chi.Router) {
			if d.Limiter != nil {
				r.Use(middlewarectx.RateLimitMiddleware(logger, d.Limiter))
			}
			r.Post("/congress/{year}/registrations", create.New(logger, d.Registration).ServeHTTP)
			r.Post("/congress/{year}/registrations/member", member.New(logger, d.Registration).ServeHTTP)
			r.Post("/wahs/register", register.New(logger, d.Membership).ServeHTTP)
			r.Post("/login", login.New(logger, d.Auth, d.Sessions).ServeHTTP)
		})

		// Группа с сессией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.AuthMiddleware(d.Sessions, d.Auth, logger))
			r.Get("/wahs/me", me.New(logger, d.Membership).ServeHTTP)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.AdminMiddleware(d.Policy, logger))
				r.Get("/members", membersList.New(logger, d.Membership).ServeHTTP)
				r.Patch("/members/{id}", membersUpdate.New(logger, d.Membership).ServeHTTP)
				r.Get("/registrations", registrationsList.New(logger, d.Registration).ServeHTTP)
				r.Patch("/registrations/{id}/payment", confirm.New(logger, d.Registration).ServeHTTP)
				r.Delete("/registrations/{id}", withdraw.New(logger, d.Registration).ServeHTTP)
				r.Get("/transactions", transactions.New(logger, d.Storage).ServeHTTP)
			})
		})
	})

	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

// methodNotAllowed отвечает JSON-ом вместо текста chi по умолчанию.
func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusMethodNotAllowed)
	render.JSON(w, r, response.Error("method not allowed"))
}
