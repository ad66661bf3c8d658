package models

import "time"

// NotificationKind вид письма, которое отправляет sender.
type NotificationKind string

const (
	NotifyMembershipWelcome     NotificationKind = "membership_welcome"
	NotifyMembershipActivated   NotificationKind = "membership_activated"
	NotifyMembershipExpiring    NotificationKind = "membership_expiring"
	NotifyRegistrationConfirmed NotificationKind = "registration_confirmed"
)

// Notification сообщение в очереди уведомлений.
type Notification struct {
	Kind           NotificationKind `json:"kind"`
	Email          string           `json:"email"`
	Name           string           `json:"name"`
	MembershipType MembershipType   `json:"membership_type,omitempty"`
	TicketType     TicketType       `json:"ticket_type,omitempty"`
	CongressYear   int              `json:"congress_year,omitempty"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
}

// EmailMessage готовое к отправке письмо.
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}
