package admin

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/boogah/total-pushover/totalpushover"
	"github.com/boogah/total-pushover/totalpushover/notice"
)

// Banner messages.
const (
	SuccessNotice = "Pushover test notification sent successfully."
	ErrorNotice   = "Pushover test notification failed. Check your API token and user key."
)

// Banner is a dismissible admin notice.
type Banner struct {
	Kind        notice.State
	Message     string
	Dismissible bool
}

// Notices renders the banner left behind by the last Tester run.
type Notices struct {
	Store  notice.Store
	Logger zerolog.Logger
}

// Render returns the pending banner and clears it, or nil if there is none.
func (n *Notices) Render(ctx context.Context) *Banner {
	state, ok, err := n.Store.GetAndClear(ctx, totalpushover.NoticeKey)
	if err != nil {
		n.Logger.Err(err).Str("module", "notices").Msg("Error reading notice state.")
		return nil
	}
	if !ok {
		return nil
	}

	switch state {
	case notice.Success:
		return &Banner{Kind: notice.Success, Message: SuccessNotice, Dismissible: true}
	case notice.Error:
		return &Banner{Kind: notice.Error, Message: ErrorNotice, Dismissible: true}
	default:
		return nil
	}
}
