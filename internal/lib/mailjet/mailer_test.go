package mailjet

import (
	"context"
	"errors"
	"testing"

	mailjet "github.com/mailjet/mailjet-apiv3-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/wahs-congress/internal/config"
	"github.com/magabrotheeeer/wahs-congress/internal/models"
)

type fakeClient struct {
	got *mailjet.MessagesV31
	err error
}

func (f *fakeClient) SendMailV31(data *mailjet.MessagesV31) (*mailjet.ResultsV31, error) {
	f.got = data
	if f.err != nil {
		return nil, f.err
	}
	return &mailjet.ResultsV31{}, nil
}

func TestNew_RequiresKeys(t *testing.T) {
	_, err := New(config.Mailjet{PublicKey: "pub"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	m, err := New(config.Mailjet{PublicKey: "pub", PrivateKey: "priv", Sender: "noreply@iwahs.org"})
	require.NoError(t, err)
	assert.Equal(t, "noreply@iwahs.org", m.sender)
}

func TestMailer_Send(t *testing.T) {
	client := &fakeClient{}
	m := NewWithClient(client, "noreply@iwahs.org")

	err := m.Send(context.Background(), models.EmailMessage{
		To:      "a@x.com",
		ToName:  "Ann",
		Subject: "Registration confirmed",
		Text:    "See you in Seoul",
		HTML:    "<p>See you in Seoul</p>",
	})
	require.NoError(t, err)

	require.NotNil(t, client.got)
	require.Len(t, client.got.Info, 1)
	info := client.got.Info[0]
	assert.Equal(t, "noreply@iwahs.org", info.From.Email)
	assert.Equal(t, "WAHS", info.From.Name)
	require.Len(t, *info.To, 1)
	assert.Equal(t, "a@x.com", (*info.To)[0].Email)
	assert.Equal(t, "Ann", (*info.To)[0].Name)
	assert.Equal(t, "Registration confirmed", info.Subject)
	assert.Equal(t, "See you in Seoul", info.TextPart)
	assert.Equal(t, "<p>See you in Seoul</p>", info.HTMLPart)
}

func TestMailer_SendError(t *testing.T) {
	m := NewWithClient(&fakeClient{err: errors.New("401 unauthorized")}, "noreply@iwahs.org")
	err := m.Send(context.Background(), models.EmailMessage{To: "a@x.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401 unauthorized")
}
