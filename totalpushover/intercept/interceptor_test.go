package intercept

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boogah/total-pushover/totalpushover"
	"github.com/boogah/total-pushover/totalpushover/pushover"
)

type fakeSender struct {
	sent  []pushover.Message
	err   error
	panic bool
}

func (f *fakeSender) Send(_ context.Context, m pushover.Message) error {
	f.sent = append(f.sent, m)
	if f.panic {
		panic("boom")
	}
	return f.err
}

func newInterceptor(creds totalpushover.Credentials, sender Sender) (*Interceptor, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cfg := totalpushover.Config{Credentials: creds}
	return New(cfg, sender, zerolog.New(buf)), buf
}

func TestFilterMailPassThrough(t *testing.T) {
	mail := totalpushover.Mail{
		To:      []string{"admin@example.com"},
		Subject: "Reset your password",
		Message: "<p>Click here</p>",
		Headers: []string{"X-Test: 1"},
		Extra:   map[string]interface{}{"priority": "high"},
	}

	for name, creds := range map[string]totalpushover.Credentials{
		"both empty":    {},
		"token missing": {UserKey: "usr456"},
		"user missing":  {APIToken: "tok123"},
	} {
		t.Run(name, func(t *testing.T) {
			sender := &fakeSender{}
			i, logs := newInterceptor(creds, sender)

			got, proceed := i.FilterMail(context.Background(), mail)
			assert.True(t, proceed)
			assert.Equal(t, mail, got)
			assert.Empty(t, sender.sent)
			assert.Empty(t, logs.String())
		})
	}
}

func TestFilterMailForwards(t *testing.T) {
	sender := &fakeSender{}
	i, _ := newInterceptor(totalpushover.Credentials{APIToken: "tok123", UserKey: "usr456"}, sender)

	got, proceed := i.FilterMail(context.Background(), totalpushover.Mail{
		Subject: "Alert",
		Message: "<script>x</script>Server down",
	})
	assert.False(t, proceed)
	assert.Equal(t, totalpushover.Mail{}, got)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, map[string]string{
		"token":   "tok123",
		"user":    "usr456",
		"title":   "Alert",
		"message": "Server down",
	}, sender.sent[0].Form())
}

func TestFilterMailTransportFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("dial tcp: connection refused")}
	i, logs := newInterceptor(totalpushover.Credentials{APIToken: "tok", UserKey: "usr"}, sender)

	_, proceed := i.FilterMail(context.Background(), totalpushover.Mail{Subject: "Down"})
	assert.False(t, proceed)
	assert.Len(t, sender.sent, 1)
	assert.Contains(t, logs.String(), "Pushover notification failed: dial tcp: connection refused")
	assert.Contains(t, logs.String(), `"level":"error"`)
}

func TestFilterMailSenderPanic(t *testing.T) {
	sender := &fakeSender{panic: true}
	i, logs := newInterceptor(totalpushover.Credentials{APIToken: "tok", UserKey: "usr"}, sender)

	var proceed bool
	assert.NotPanics(t, func() {
		_, proceed = i.FilterMail(context.Background(), totalpushover.Mail{Subject: "Down"})
	})
	assert.False(t, proceed)
	assert.Contains(t, logs.String(), "sender panicked")
}

func TestPlan(t *testing.T) {
	assert.Nil(t, Plan(totalpushover.Credentials{}, totalpushover.Mail{Subject: "x"}))

	msg := Plan(
		totalpushover.Credentials{APIToken: " tok\n123 ", UserKey: "<b>usr456</b>"},
		totalpushover.Mail{Subject: "Disk <i>full</i>\n on web-1", Message: `<b onclick="x()">95%</b> used`},
	)
	require.NotNil(t, msg)
	assert.Equal(t, "tok 123", msg.Token)
	assert.Equal(t, "usr456", msg.User)
	assert.Equal(t, "Disk full on web-1", msg.Title)
	assert.Equal(t, "<b>95%</b> used", msg.Message)
}
