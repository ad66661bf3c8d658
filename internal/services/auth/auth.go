// Package services содержит логику аутентификации по email и паролю.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/wahs-congress/internal/authz"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/jwt"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/password"
	"github.com/magabrotheeeer/wahs-congress/internal/models"
	"github.com/magabrotheeeer/wahs-congress/internal/storage/repository"
)

// ErrInvalidCredentials неверный email или пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository описывает контракт для поиска учётных записей.
type UserRepository interface {
	// GetUserByEmail возвращает пользователя по email или repository.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthService отвечает за вход и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Login проверяет пароль пользователя и выпускает JWT.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (string, *models.User, error) {
	const op = "services.Login"
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	token, err := s.jwtMaker.GenerateToken(user.UUID, user.Email, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// ValidateToken проверяет JWT и возвращает пользователя запроса.
func (s *AuthService) ValidateToken(token string) (authz.Identity, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return authz.Identity{}, err
	}
	return authz.Identity{
		UserUID: claims.UserUID,
		Email:   claims.Email,
		Role:    claims.Role,
	}, nil
}

// AdminSeeder создаёт учётные записи администраторов.
type AdminSeeder interface {
	EnsureAdmin(ctx context.Context, email, passwordHash string) error
}

// SeedAdmins закрепляет за каждым адресом из emails учётную запись с ролью admin
// и паролем rawPassword. Без пароля ничего не делает.
func SeedAdmins(ctx context.Context, log *slog.Logger, seeder AdminSeeder, emails []string, rawPassword string) error {
	const op = "services.SeedAdmins"
	if rawPassword == "" {
		if len(emails) > 0 {
			log.Warn("admin password is not set, admin accounts are not seeded", slog.String("op", op))
		}
		return nil
	}
	hash, err := password.GetHash(rawPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, e := range emails {
		email := strings.ToLower(strings.TrimSpace(e))
		if email == "" {
			continue
		}
		if err = seeder.EnsureAdmin(ctx, email, hash); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		log.Info("admin account ensured", slog.String("op", op), slog.String("email", email))
	}
	return nil
}
