package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wahs-congress/internal/authz"
	"github.com/magabrotheeeer/wahs-congress/internal/http/response"
)

// AdminPolicy решает, является ли пользователь администратором.
type AdminPolicy interface {
	IsAdmin(ctx context.Context, id authz.Identity) bool
}

// AdminMiddleware пропускает только администраторов. Должен стоять после AuthMiddleware.
func AdminMiddleware(policy AdminPolicy, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AdminMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			id, ok := IdentityFrom(r.Context())
			if !ok {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("not authenticated"))
				return
			}
			if !policy.IsAdmin(r.Context(), id) {
				log.Warn("admin access denied", slog.String("email", id.Email))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
