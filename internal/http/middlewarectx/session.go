package middlewarectx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/magabrotheeeer/wahs-congress/internal/config"
)

const tokenKey = "token"

// ErrNoSession в запросе нет сессии с токеном.
var ErrNoSession = errors.New("no session")

// Sessions подписанная cookie-сессия, в которой хранится JWT.
type Sessions struct {
	store *sessions.CookieStore
	name  string
}

// NewSessions создаёт хранилище сессий поверх cookie.
func NewSessions(cfg config.Session) *Sessions {
	store := sessions.NewCookieStore([]byte(cfg.CookieSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	name := cfg.CookieName
	if name == "" {
		name = "wahs_session"
	}
	return &Sessions{store: store, name: name}
}

// Save записывает токен в сессию.
func (s *Sessions) Save(w http.ResponseWriter, r *http.Request, token string) error {
	const op = "middlewarectx.Sessions.Save"
	sess, err := s.store.Get(r, s.name)
	if err != nil && sess == nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	sess.Values[tokenKey] = token
	if err = sess.Save(r, w); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Clear удаляет сессионную cookie.
func (s *Sessions) Clear(w http.ResponseWriter, r *http.Request) error {
	const op = "middlewarectx.Sessions.Clear"
	sess, err := s.store.Get(r, s.name)
	if err != nil && sess == nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	sess.Values = map[any]any{}
	sess.Options.MaxAge = -1
	if err = sess.Save(r, w); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Token возвращает JWT из сессии запроса.
func (s *Sessions) Token(r *http.Request) (string, error) {
	sess, err := s.store.Get(r, s.name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoSession, err)
	}
	token, ok := sess.Values[tokenKey].(string)
	if !ok || token == "" {
		return "", ErrNoSession
	}
	return token, nil
}
