// Package models содержит доменные структуры ассоциации: членство, регистрации
// на конгресс, учётные записи и уведомления.
package models

import "time"

// MembershipType тип членства в ассоциации.
type MembershipType string

const (
	// MembershipProfessional — профессиональное членство.
	MembershipProfessional MembershipType = "professional"
	// MembershipStudent — студенческое членство.
	MembershipStudent MembershipType = "student"
)

// Valid сообщает, является ли тип членства известным.
func (t MembershipType) Valid() bool {
	return t == MembershipProfessional || t == MembershipStudent
}

// MembershipStatus статус членства.
type MembershipStatus string

const (
	// StatusPending — заявка создана, взнос не оплачен.
	StatusPending MembershipStatus = "pending"
	// StatusActive — взнос оплачен.
	StatusActive MembershipStatus = "active"
	// StatusExpired — срок членства истёк.
	StatusExpired MembershipStatus = "expired"
)

// Valid сообщает, является ли статус известным.
func (s MembershipStatus) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusExpired:
		return true
	}
	return false
}

// Member представляет запись о членстве в ассоциации.
// ExpiresAt — единственное поле "действительно до"; nil означает бессрочно.
// PayPalTransactionID устанавливается не более одного раза, при активации.
type Member struct {
	ID                  string           `json:"id"`
	UserID              *string          `json:"user_id,omitempty"`
	Email               string           `json:"email"`
	FullName            string           `json:"full_name"`
	Institution         string           `json:"institution,omitempty"`
	Country             string           `json:"country,omitempty"`
	MembershipType      MembershipType   `json:"membership_type"`
	MembershipStatus    MembershipStatus `json:"membership_status"`
	JoinedAt            time.Time        `json:"joined_at"`
	ExpiresAt           *time.Time       `json:"expires_at,omitempty"`
	PayPalTransactionID *string          `json:"paypal_transaction_id,omitempty"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// MemberFilter параметры выборки членов для административной панели.
type MemberFilter struct {
	Status MembershipStatus // Пустое значение — без фильтра
	Type   MembershipType   // Пустое значение — без фильтра
}

// DummyMemberApplication используется для приёма заявки на членство из JSON-запроса.
type DummyMemberApplication struct {
	FullName       string `json:"full_name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	Institution    string `json:"institution,omitempty"`
	Country        string `json:"country,omitempty"`
	MembershipType string `json:"membership_type" validate:"required,oneof=professional student"`
}
