// Package middlewarectx содержит HTTP middleware для аутентификации по сессионной
// cookie, проверки прав администратора и ограничения частоты запросов.
//
// AuthMiddleware берёт JWT из сессии (или из заголовка Authorization), проверяет
// его и кладёт пользователя в контекст запроса.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/wahs-congress/internal/authz"
	"github.com/magabrotheeeer/wahs-congress/internal/http/response"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// IdentityKey ключ пользователя запроса в контексте.
const IdentityKey Key = "identity"

// TokenValidator проверяет JWT.
type TokenValidator interface {
	ValidateToken(token string) (authz.Identity, error)
}

// TokenSource достаёт JWT из запроса.
type TokenSource interface {
	Token(r *http.Request) (string, error)
}

// WithIdentity возвращает контекст с пользователем запроса.
func WithIdentity(ctx context.Context, id authz.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// IdentityFrom возвращает пользователя запроса.
func IdentityFrom(ctx context.Context) (authz.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(authz.Identity)
	return id, ok
}

// AuthMiddleware возвращает HTTP middleware, который требует действующий JWT.
// При отсутствии или невалидности токена отвечает 401 Unauthorized.
func AuthMiddleware(sessions TokenSource, validator TokenValidator, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AuthMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token := ""
			if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimPrefix(authHeader, "Bearer ")
			} else if t, err := sessions.Token(r); err == nil {
				token = t
			}
			if token == "" {
				log.Info("missing session")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("not authenticated"))
				return
			}

			id, err := validator.ValidateToken(token)
			if err != nil {
				log.Info("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired session"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
