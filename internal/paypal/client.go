// Package paypal проверяет подлинность уведомлений PayPal IPN и разбирает их поля.
package paypal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// ProductionVerifyURL адрес проверки IPN в боевом окружении.
	ProductionVerifyURL = "https://ipnpb.paypal.com/cgi-bin/webscr"
	// SandboxVerifyURL адрес проверки IPN в песочнице.
	SandboxVerifyURL = "https://ipnpb.sandbox.paypal.com/cgi-bin/webscr"

	verifyPrefix   = "cmd=_notify-validate&"
	verifiedToken  = "VERIFIED"
	maxVerifyReply = 1 << 10
)

// ErrNotVerified PayPal ответил чем-то кроме VERIFIED.
var ErrNotVerified = errors.New("ipn not verified")

// Client отправляет тело уведомления обратно в PayPal для проверки.
// Одна попытка на вызов: повторы обеспечивает сам PayPal.
type Client struct {
	verifyURL  string
	httpClient *http.Client
}

// NewClient создаёт клиент проверки IPN.
func NewClient(verifyURL string, timeout time.Duration) *Client {
	if verifyURL == "" {
		verifyURL = ProductionVerifyURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		verifyURL:  verifyURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Verify возвращает nil, если PayPal подтвердил rawBody литералом VERIFIED.
// ErrNotVerified означает ответ с другим содержимым; любая другая ошибка транспортная.
func (c *Client) Verify(ctx context.Context, rawBody []byte) error {
	const op = "paypal.Verify"

	body := make([]byte, 0, len(verifyPrefix)+len(rawBody))
	body = append(body, verifyPrefix...)
	body = append(body, rawBody...)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "wahs-congress-ipn")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}
	reply, err := io.ReadAll(io.LimitReader(resp.Body, maxVerifyReply))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if string(reply) != verifiedToken {
		return ErrNotVerified
	}
	return nil
}
