package sender

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wahs-congress/internal/config"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/mailjet"
	"github.com/magabrotheeeer/wahs-congress/internal/lib/smtp"
)

func TestNewMailer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("smtp by default", func(t *testing.T) {
		m, err := NewMailer(&config.Config{}, logger)
		require.NoError(t, err)
		assert.IsType(t, &smtp.Mailer{}, m)
	})

	t.Run("mailjet", func(t *testing.T) {
		cfg := &config.Config{EmailProvider: "mailjet"}
		cfg.Mailjet = config.Mailjet{PublicKey: "pub", PrivateKey: "priv", Sender: "noreply@iwahs.org"}
		m, err := NewMailer(cfg, logger)
		require.NoError(t, err)
		assert.IsType(t, &mailjet.Mailer{}, m)
	})

	t.Run("mailjet without keys", func(t *testing.T) {
		_, err := NewMailer(&config.Config{EmailProvider: "mailjet"}, logger)
		assert.ErrorIs(t, err, mailjet.ErrNotConfigured)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewMailer(&config.Config{EmailProvider: "pigeon"}, logger)
		assert.Error(t, err)
	})
}
