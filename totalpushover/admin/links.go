package admin

import (
	"net/url"

	"github.com/boogah/total-pushover/totalpushover"
)

// ActionLink is one entry of a plugin's action-link row.
type ActionLink struct {
	Label string
	URL   string
}

// TestURL returns current with the test trigger parameter set.
func TestURL(current *url.URL) string {
	u := *current
	q := u.Query()
	q.Set(totalpushover.TestQueryParam, totalpushover.TestQueryValue)
	u.RawQuery = q.Encode()
	return u.String()
}

// PrependTestLink returns a new row with a "Test" link pointing at current
// placed before links.
func PrependTestLink(links []ActionLink, current *url.URL) []ActionLink {
	out := make([]ActionLink, 0, len(links)+1)
	out = append(out, ActionLink{Label: "Test", URL: TestURL(current)})
	return append(out, links...)
}
