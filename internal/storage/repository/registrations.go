package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/wahs-congress/internal/models"
)

const registrationColumns = `id, email, full_name, institution, country, congress_year, ticket_type,
	is_wahs_member, amount_paid, paypal_transaction_id, withdrawn, created_at`

func scanRegistration(row rowScanner) (*models.Registration, error) {
	var (
		r     models.Registration
		txnID sql.NullString
	)
	if err := row.Scan(&r.ID, &r.Email, &r.FullName, &r.Institution, &r.Country, &r.CongressYear,
		&r.TicketType, &r.IsWAHSMember, &r.AmountPaid, &txnID, &r.Withdrawn, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.PayPalTransactionID = ptrString(txnID)
	return &r, nil
}

// CreateRegistration создаёт регистрацию, если для (email, congress_year) нет
// действующей. Проверка и вставка выполняются в одной транзакции, но без
// ограничения уровня БД: гарантия best-effort.
func (s *Storage) CreateRegistration(ctx context.Context, r models.Registration) (string, error) {
	const op = "storage.CreateRegistration"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		query := `SELECT EXISTS (
				      SELECT 1 FROM congress_registrations
				      WHERE email = $1 AND congress_year = $2 AND NOT withdrawn
				  )`
		if err := tx.QueryRowContext(ctx, query, r.Email, r.CongressYear).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrAlreadyRegistered
		}

		query = `INSERT INTO congress_registrations (email, full_name, institution, country,
				     congress_year, ticket_type, is_wahs_member, amount_paid)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				 RETURNING id`
		return tx.QueryRowContext(ctx, query, r.Email, r.FullName, r.Institution, r.Country,
			r.CongressYear, r.TicketType, r.IsWAHSMember, r.AmountPaid).Scan(&newID)
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// FindRegistration возвращает действующую регистрацию email на конгресс года year.
func (s *Storage) FindRegistration(ctx context.Context, email string, year int) (*models.Registration, error) {
	const op = "storage.FindRegistration"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + registrationColumns + `
			  FROM congress_registrations
			  WHERE email = $1 AND congress_year = $2 AND NOT withdrawn
			  ORDER BY created_at DESC
			  LIMIT 1`
	r, err := scanRegistration(s.DB.QueryRowContext(ctx, query, email, year))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, scanErr(err))
	}
	return r, nil
}

// FindUnpaidRegistration возвращает самую свежую неоплаченную платную регистрацию email.
// Бесплатные регистрации членов ассоциации не могут быть целью платежа.
func (s *Storage) FindUnpaidRegistration(ctx context.Context, email string) (*models.Registration, error) {
	const op = "storage.FindUnpaidRegistration"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + registrationColumns + `
			  FROM congress_registrations
			  WHERE email = $1
			    AND amount_paid = 0
			    AND ticket_type <> 'wahs_member'
			    AND NOT withdrawn
			  ORDER BY created_at DESC
			  LIMIT 1`
	r, err := scanRegistration(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, scanErr(err))
	}
	return r, nil
}

// GetRegistration возвращает регистрацию по id.
func (s *Storage) GetRegistration(ctx context.Context, id string) (*models.Registration, error) {
	const op = "storage.GetRegistration"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + registrationColumns + ` FROM congress_registrations WHERE id = $1`
	r, err := scanRegistration(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, scanErr(err))
	}
	return r, nil
}

// ListRegistrations возвращает регистрации на конгресс; year = 0 означает все годы.
func (s *Storage) ListRegistrations(ctx context.Context, year int) ([]*models.Registration, error) {
	const op = "storage.ListRegistrations"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + registrationColumns + `
			  FROM congress_registrations
			  WHERE $1 = 0 OR congress_year = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Registration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// WithdrawRegistration помечает регистрацию отозванной.
func (s *Storage) WithdrawRegistration(ctx context.Context, id string) error {
	const op = "storage.WithdrawRegistration"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	res, err := s.DB.ExecContext(ctx,
		`UPDATE congress_registrations SET withdrawn = TRUE WHERE id = $1 AND NOT withdrawn`, id)
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
