package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/wahs-congress/internal/models"
)

// RegisterMember в одной транзакции создаёт учётную запись и заявку на членство
// в статусе pending. Возвращает идентификаторы пользователя и членства.
func (s *Storage) RegisterMember(ctx context.Context, user models.User, member models.Member) (string, string, error) {
	const op = "storage.RegisterMember"
	select {
	case <-ctx.Done():
		return "", "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var userID, memberID string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query := `INSERT INTO users (email, full_name, password_hash, role)
				  VALUES ($1, $2, $3, $4)
				  RETURNING uid`
		if err := tx.QueryRowContext(ctx, query,
			user.Email, user.FullName, user.PasswordHash, user.Role).Scan(&userID); err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyExists
			}
			return err
		}

		query = `INSERT INTO wahs_members (user_id, email, full_name, institution, country,
				     membership_type, membership_status)
				 VALUES ($1, $2, $3, $4, $5, $6, 'pending')
				 RETURNING id`
		return tx.QueryRowContext(ctx, query,
			userID, member.Email, member.FullName, member.Institution, member.Country,
			member.MembershipType).Scan(&memberID)
	})
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return userID, memberID, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, full_name, password_hash, role, created_at
			  FROM users
			  WHERE email = $1`
	u := &models.User{}
	if err := s.DB.QueryRowContext(ctx, query, email).Scan(
		&u.UUID, &u.Email, &u.FullName, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, scanErr(err))
	}
	return u, nil
}

// EnsureAdmin создаёт учётную запись администратора или переводит существующую
// в роль admin. Пароль всегда заменяется переданным хешем.
func (s *Storage) EnsureAdmin(ctx context.Context, email, passwordHash string) error {
	const op = "storage.EnsureAdmin"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (email, full_name, password_hash, role)
			  VALUES ($1, $1, $2, 'admin')
			  ON CONFLICT (email) DO UPDATE
			  SET password_hash = EXCLUDED.password_hash,
			      role = 'admin'`
	if _, err := s.DB.ExecContext(ctx, query, email, passwordHash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
