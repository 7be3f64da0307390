// Package intercept turns outgoing mail into Pushover notifications.
package intercept

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/boogah/total-pushover/totalpushover"
	"github.com/boogah/total-pushover/totalpushover/metrics"
	"github.com/boogah/total-pushover/totalpushover/pushover"
	"github.com/boogah/total-pushover/totalpushover/sanitize"
)

var errPanic = errors.New("sender panicked")

// Sender delivers a Pushover message.
type Sender interface {
	Send(ctx context.Context, m pushover.Message) error
}

// Plan returns the notification to send for mail, or nil when the credentials
// are incomplete and the mail should go out normally.
func Plan(creds totalpushover.Credentials, mail totalpushover.Mail) *pushover.Message {
	if !creds.Enabled() {
		return nil
	}
	return &pushover.Message{
		Token:   sanitize.Text(creds.APIToken),
		User:    sanitize.Text(creds.UserKey),
		Title:   sanitize.Text(mail.Subject),
		Message: sanitize.Markup(mail.Message),
	}
}

// Interceptor is the outgoing-mail filter.
type Interceptor struct {
	Credentials totalpushover.Credentials
	Sender      Sender
	Logger      zerolog.Logger
}

// New creates an Interceptor from cfg, posting through sender.
func New(cfg totalpushover.Config, sender Sender, logger zerolog.Logger) *Interceptor {
	return &Interceptor{
		Credentials: cfg.Credentials,
		Sender:      sender,
		Logger:      logger.With().Str("module", "interceptor").Logger(),
	}
}

// FilterMail returns mail unchanged and true when credentials are missing.
// Otherwise it posts the notification and returns false, telling the host to
// drop the mail, whether or not the post succeeded.
func (i *Interceptor) FilterMail(ctx context.Context, mail totalpushover.Mail) (totalpushover.Mail, bool) {
	msg := Plan(i.Credentials, mail)
	if msg == nil {
		return mail, true
	}

	i.send(ctx, *msg)
	return totalpushover.Mail{}, false
}

func (i *Interceptor) send(ctx context.Context, msg pushover.Message) {
	defer func() {
		if r := recover(); r != nil {
			metrics.ObserveNotification(metrics.SourceMail, errPanic)
			i.Logger.Error().Interface("panic", r).Str("title", msg.Title).Msg("Pushover notification failed: sender panicked")
		}
	}()

	err := i.Sender.Send(ctx, msg)
	metrics.ObserveNotification(metrics.SourceMail, err)
	if err != nil {
		i.Logger.Err(err).Str("title", msg.Title).Msgf("Pushover notification failed: %s", err)
		return
	}
	i.Logger.Debug().Str("title", msg.Title).Msg("Mail forwarded to Pushover")
}
