package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/wahs-congress/internal/models"
)

const memberColumns = `id, user_id, email, full_name, institution, country, membership_type,
	membership_status, joined_at, expires_at, paypal_transaction_id, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*models.Member, error) {
	var (
		m         models.Member
		userID    sql.NullString
		expiresAt sql.NullTime
		txnID     sql.NullString
	)
	if err := row.Scan(&m.ID, &userID, &m.Email, &m.FullName, &m.Institution, &m.Country,
		&m.MembershipType, &m.MembershipStatus, &m.JoinedAt, &expiresAt, &txnID, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.UserID = ptrString(userID)
	m.ExpiresAt = ptrTime(expiresAt)
	m.PayPalTransactionID = ptrString(txnID)
	return &m, nil
}

// FindPendingMember возвращает самую свежую заявку в статусе pending для email.
func (s *Storage) FindPendingMember(ctx context.Context, email string) (*models.Member, error) {
	const op = "storage.FindPendingMember"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + memberColumns + `
			  FROM wahs_members
			  WHERE email = $1 AND membership_status = 'pending'
			  ORDER BY joined_at DESC
			  LIMIT 1`
	m, err := scanMember(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, scanErr(err))
	}
	return m, nil
}

// LatestMember возвращает запись о членстве для email: активную, если она есть,
// иначе самую свежую в любом статусе.
func (s *Storage) LatestMember(ctx context.Context, email string) (*models.Member, error) {
	const op = "storage.LatestMember"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + memberColumns + `
			  FROM wahs_members
			  WHERE email = $1
			  ORDER BY (membership_status = 'active') DESC, joined_at DESC
			  LIMIT 1`
	m, err := scanMember(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, scanErr(err))
	}
	return m, nil
}

// GetMember возвращает запись о членстве по id.
func (s *Storage) GetMember(ctx context.Context, id string) (*models.Member, error) {
	const op = "storage.GetMember"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + memberColumns + ` FROM wahs_members WHERE id = $1`
	m, err := scanMember(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, scanErr(err))
	}
	return m, nil
}

// ListMembers возвращает членов с фильтром по статусу и типу, новые сверху.
func (s *Storage) ListMembers(ctx context.Context, filter models.MemberFilter) ([]*models.Member, error) {
	const op = "storage.ListMembers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var (
		where []string
		args  []any
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("membership_status = $%d", len(args)))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("membership_type = $%d", len(args)))
	}
	query := `SELECT ` + memberColumns + ` FROM wahs_members`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY joined_at DESC"

	return s.queryMembers(ctx, op, query, args...)
}

// UpdateMemberStatus устанавливает статус и срок действия членства.
func (s *Storage) UpdateMemberStatus(ctx context.Context, id string, status models.MembershipStatus, expiresAt *time.Time) (*models.Member, error) {
	const op = "storage.UpdateMemberStatus"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE wahs_members
			  SET membership_status = $1,
			      expires_at = COALESCE($2, expires_at),
			      reminder_sent_at = CASE WHEN $1 = 'active' THEN NULL ELSE reminder_sent_at END,
			      updated_at = NOW()
			  WHERE id = $3
			  RETURNING ` + memberColumns
	var exp sql.NullTime
	if expiresAt != nil {
		exp = sql.NullTime{Time: *expiresAt, Valid: true}
	}
	m, err := scanMember(s.DB.QueryRowContext(ctx, query, status, exp, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, scanErr(err))
	}
	return m, nil
}

// ExpireMembers переводит в expired активные членства, срок которых истёк к now.
func (s *Storage) ExpireMembers(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.ExpireMembers"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE wahs_members
			  SET membership_status = 'expired',
			      updated_at = NOW()
			  WHERE membership_status = 'active'
			    AND expires_at IS NOT NULL
			    AND expires_at < $1`
	res, err := s.DB.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return n, nil
}

// FindMembersDueReminder находит активные членства с expires_at в [now, until),
// которым ещё не отправлялось напоминание.
func (s *Storage) FindMembersDueReminder(ctx context.Context, now, until time.Time) ([]*models.Member, error) {
	const op = "storage.FindMembersDueReminder"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + memberColumns + `
			  FROM wahs_members
			  WHERE membership_status = 'active'
			    AND reminder_sent_at IS NULL
			    AND expires_at >= $1
			    AND expires_at < $2
			  ORDER BY expires_at`
	return s.queryMembers(ctx, op, query, now, until)
}

// MarkReminded отмечает, что напоминание об окончании членства отправлено.
// Отметка сбрасывается при следующей активации членства.
func (s *Storage) MarkReminded(ctx context.Context, id string, at time.Time) error {
	const op = "storage.MarkReminded"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE wahs_members SET reminder_sent_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

func (s *Storage) queryMembers(ctx context.Context, op, query string, args ...any) ([]*models.Member, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
