package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentSource происхождение записи в журнале транзакций.
type PaymentSource string

const (
	// SourcePayPal — платёж подтверждён уведомлением PayPal IPN.
	SourcePayPal PaymentSource = "paypal"
	// SourceManual — оплата подтверждена администратором вручную.
	SourceManual PaymentSource = "manual"
)

// RecordKind тип записи, которую закрывает платёж.
type RecordKind string

const (
	RecordMembership   RecordKind = "membership"
	RecordRegistration RecordKind = "registration"
)

// Payment платёж, применяемый к записи членства или регистрации.
// Пустой TxnID допустим: такой платёж не попадает в журнал.
type Payment struct {
	TxnID      string
	PayerEmail string
	Amount     decimal.Decimal
	Source     PaymentSource
}

// PaymentTransaction строка журнала payment_transactions.
type PaymentTransaction struct {
	TxnID      string          `json:"txn_id"`
	RecordKind RecordKind      `json:"record_kind"`
	RecordID   string          `json:"record_id"`
	PayerEmail string          `json:"payer_email"`
	Amount     decimal.Decimal `json:"amount"`
	Source     PaymentSource   `json:"source"`
	CreatedAt  time.Time       `json:"created_at"`
}
