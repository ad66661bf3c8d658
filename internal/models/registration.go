package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketType тип билета на конгресс.
type TicketType string

const (
	// TicketRegular — обычный платный билет.
	TicketRegular TicketType = "regular"
	// TicketStudent — студенческий платный билет.
	TicketStudent TicketType = "student"
	// TicketWAHSMember — бесплатный билет для действующих членов ассоциации.
	TicketWAHSMember TicketType = "wahs_member"
)

// Paid сообщает, предполагает ли билет оплату.
func (t TicketType) Paid() bool {
	return t == TicketRegular || t == TicketStudent
}

// Registration представляет регистрацию на конгресс определённого года.
// AmountPaid равен нулю до оплаты; для wahs_member всегда ноль.
type Registration struct {
	ID                  string          `json:"id"`
	Email               string          `json:"email"`
	FullName            string          `json:"full_name"`
	Institution         string          `json:"institution,omitempty"`
	Country             string          `json:"country,omitempty"`
	CongressYear        int             `json:"congress_year"`
	TicketType          TicketType      `json:"ticket_type"`
	IsWAHSMember        bool            `json:"is_wahs_member"`
	AmountPaid          decimal.Decimal `json:"amount_paid"`
	PayPalTransactionID *string         `json:"paypal_transaction_id,omitempty"`
	Withdrawn           bool            `json:"withdrawn"`
	CreatedAt           time.Time       `json:"created_at"`
}

// DummyRegistration используется для приёма данных платной регистрации из JSON-запроса.
type DummyRegistration struct {
	FullName    string `json:"full_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Institution string `json:"institution,omitempty"`
	Country     string `json:"country,omitempty"`
	TicketType  string `json:"ticket_type" validate:"required,oneof=regular student"`
}

// MemberClaim данные, с которыми член ассоциации регистрируется бесплатно.
type MemberClaim struct {
	FullName     string `json:"full_name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Institution  string `json:"institution" validate:"required"`
	Country      string `json:"country" validate:"required"`
	CongressYear int    `json:"congress_year"`
}

// ManualPayment данные ручного подтверждения оплаты администратором.
type ManualPayment struct {
	AmountPaid          string `json:"amount_paid" validate:"required"`
	PayPalTransactionID string `json:"paypal_transaction_id,omitempty"`
}
