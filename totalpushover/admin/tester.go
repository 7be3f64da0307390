// Package admin holds the plugin's admin-screen behavior: the test
// notification, the one-shot result banner and the "Test" action link.
package admin

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/boogah/total-pushover/totalpushover"
	"github.com/boogah/total-pushover/totalpushover/intercept"
	"github.com/boogah/total-pushover/totalpushover/metrics"
	"github.com/boogah/total-pushover/totalpushover/notice"
	"github.com/boogah/total-pushover/totalpushover/pushover"
	"github.com/boogah/total-pushover/totalpushover/sanitize"
)

// Canned test notification.
const (
	TestTitle   = "Total Pushover Test Successful"
	TestMessage = "This is a test notification from Total Pushover. If you are reading this, your configuration is working."
)

// ErrNotConfigured is returned by Tester.Run when a credential is missing.
var ErrNotConfigured = errors.New("admin: pushover credentials are not configured")

// Tester sends the test notification and records the outcome for Notices.
type Tester struct {
	Credentials totalpushover.Credentials
	Sender      intercept.Sender
	Store       notice.Store
	Logger      zerolog.Logger
}

// Run sends the test notification unless credentials are missing and stores
// the resulting notice state. The returned error describes why the test
// failed; the state has already been stored.
func (t *Tester) Run(ctx context.Context) error {
	logger := t.Logger.With().Str("module", "tester").Logger()

	err := t.send(ctx)
	state := notice.Success
	if err != nil {
		state = notice.Error
		logger.Warn().Err(err).Msg("Test notification failed.")
	} else {
		logger.Info().Msg("Test notification sent.")
	}

	if serr := t.Store.Set(ctx, totalpushover.NoticeKey, state, totalpushover.NoticeTTL); serr != nil {
		logger.Err(serr).Str("state", string(state)).Msg("Error storing notice state.")
	}
	return err
}

func (t *Tester) send(ctx context.Context) error {
	if !t.Credentials.Enabled() {
		return ErrNotConfigured
	}
	err := t.Sender.Send(ctx, pushover.Message{
		Token:   sanitize.Text(t.Credentials.APIToken),
		User:    sanitize.Text(t.Credentials.UserKey),
		Title:   TestTitle,
		Message: TestMessage,
	})
	metrics.ObserveNotification(metrics.SourceTest, err)
	return err
}
