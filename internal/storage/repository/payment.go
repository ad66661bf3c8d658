package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/wahs-congress/internal/models"
)

// TransactionRecorded сообщает, использован ли txnID хотя бы в одной записи:
// в журнале, в членстве или в регистрации.
func (s *Storage) TransactionRecorded(ctx context.Context, txnID string) (bool, error) {
	const op = "storage.TransactionRecorded"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT
			      EXISTS (SELECT 1 FROM payment_transactions WHERE txn_id = $1)
			   OR EXISTS (SELECT 1 FROM wahs_members WHERE paypal_transaction_id = $1)
			   OR EXISTS (SELECT 1 FROM congress_registrations WHERE paypal_transaction_id = $1)`
	var recorded bool
	if err := s.DB.QueryRowContext(ctx, query, txnID).Scan(&recorded); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return recorded, nil
}

// ActivateMember в одной транзакции записывает платёж в журнал и переводит
// членство из pending в active. Повторный txnID даёт ErrTransactionClaimed,
// членство не в pending даёт ErrStateChanged.
func (s *Storage) ActivateMember(ctx context.Context, memberID string, p models.Payment, expiresAt time.Time) error {
	const op = "storage.ActivateMember"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := claimTransaction(ctx, tx, models.RecordMembership, memberID, p); err != nil {
			return err
		}
		query := `UPDATE wahs_members
				  SET membership_status = 'active',
				      paypal_transaction_id = $1,
				      expires_at = $2,
				      reminder_sent_at = NULL,
				      updated_at = NOW()
				  WHERE id = $3 AND membership_status = 'pending'`
		res, err := tx.ExecContext(ctx, query, nullString(p.TxnID), expiresAt, memberID)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrTransactionClaimed
			}
			return err
		}
		return expectOneRow(res)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ConfirmRegistration в одной транзакции записывает платёж в журнал и проставляет
// сумму оплаты регистрации. Обновляются только неоплаченные платные регистрации.
func (s *Storage) ConfirmRegistration(ctx context.Context, registrationID string, p models.Payment) error {
	const op = "storage.ConfirmRegistration"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := claimTransaction(ctx, tx, models.RecordRegistration, registrationID, p); err != nil {
			return err
		}
		query := `UPDATE congress_registrations
				  SET amount_paid = $1,
				      paypal_transaction_id = $2
				  WHERE id = $3
				    AND amount_paid = 0
				    AND ticket_type <> 'wahs_member'
				    AND NOT withdrawn`
		res, err := tx.ExecContext(ctx, query, p.Amount, nullString(p.TxnID), registrationID)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrTransactionClaimed
			}
			return err
		}
		return expectOneRow(res)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListTransactions возвращает журнал платежей, новые сверху.
func (s *Storage) ListTransactions(ctx context.Context, limit int) ([]*models.PaymentTransaction, error) {
	const op = "storage.ListTransactions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT txn_id, record_kind, record_id, payer_email, amount, source, created_at
			  FROM payment_transactions
			  ORDER BY created_at DESC
			  LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.PaymentTransaction
	for rows.Next() {
		var t models.PaymentTransaction
		if err = rows.Scan(&t.TxnID, &t.RecordKind, &t.RecordID, &t.PayerEmail,
			&t.Amount, &t.Source, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// claimTransaction вставляет txnID в журнал; пустой txnID пропускается.
func claimTransaction(ctx context.Context, tx *sql.Tx, kind models.RecordKind, recordID string, p models.Payment) error {
	if p.TxnID == "" {
		return nil
	}
	query := `INSERT INTO payment_transactions (txn_id, record_kind, record_id, payer_email, amount, source)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (txn_id) DO NOTHING`
	res, err := tx.ExecContext(ctx, query, p.TxnID, kind, recordID, p.PayerEmail, p.Amount, p.Source)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTransactionClaimed
	}
	return nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStateChanged
	}
	return nil
}

func scanErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
