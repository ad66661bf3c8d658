package paypal

import (
	"errors"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
)

// StatusCompleted единственный статус платежа, который подлежит сверке.
const StatusCompleted = "Completed"

// ErrInvalidAmount сумма в уведомлении отсутствует или не является числом.
var ErrInvalidAmount = errors.New("invalid amount")

// Notification поля IPN, нужные для сверки.
type Notification struct {
	PaymentStatus string
	PayerEmail    string
	TxnID         string
	RawAmount     string
}

// ParseNotification разбирает form-urlencoded тело IPN.
// Email приводится к нижнему регистру, сумма берётся из mc_gross или payment_gross.
func ParseNotification(rawBody []byte) (Notification, error) {
	values, err := url.ParseQuery(string(rawBody))
	if err != nil {
		return Notification{}, err
	}
	amount := values.Get("mc_gross")
	if amount == "" {
		amount = values.Get("payment_gross")
	}
	return Notification{
		PaymentStatus: strings.TrimSpace(values.Get("payment_status")),
		PayerEmail:    strings.ToLower(strings.TrimSpace(values.Get("payer_email"))),
		TxnID:         strings.TrimSpace(values.Get("txn_id")),
		RawAmount:     amount,
	}, nil
}

// Amount возвращает сумму платежа. Символ валюты, пробелы и разделители
// тысяч отбрасываются, так что "$1,250.00" и "1250" дают одно значение.
func (n Notification) Amount() (decimal.Decimal, error) {
	s := strings.TrimSpace(n.RawAmount)
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSuffix(s, "USD")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
