// Package hook dispatches outgoing mail to registered filters before it is
// handed to the mail transport.
package hook

import (
	"context"
	"sort"
	"sync"

	"github.com/boogah/total-pushover/totalpushover"
)

// DefaultPriority is used by filters that do not care about ordering.
const DefaultPriority = 10

// MailFilter inspects an outgoing mail. Returning false suppresses the send.
type MailFilter interface {
	FilterMail(ctx context.Context, mail totalpushover.Mail) (totalpushover.Mail, bool)
}

// MailFilterFunc adapts a function to MailFilter.
type MailFilterFunc func(ctx context.Context, mail totalpushover.Mail) (totalpushover.Mail, bool)

// FilterMail calls f.
func (f MailFilterFunc) FilterMail(ctx context.Context, mail totalpushover.Mail) (totalpushover.Mail, bool) {
	return f(ctx, mail)
}

// MailHook runs an outgoing mail through its filters. *Dispatcher implements
// it.
type MailHook interface {
	ApplyMail(ctx context.Context, mail totalpushover.Mail) (totalpushover.Mail, bool)
}

type registration struct {
	priority int
	filter   MailFilter
}

// Dispatcher runs MailFilters in ascending priority, then registration order.
// It is safe for concurrent use.
type Dispatcher struct {
	mu      sync.RWMutex
	filters []registration
}

// Register adds f at the given priority.
func (d *Dispatcher) Register(priority int, f MailFilter) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.filters = append(d.filters, registration{priority: priority, filter: f})
	sort.SliceStable(d.filters, func(i, j int) bool {
		return d.filters[i].priority < d.filters[j].priority
	})
}

// Len returns the number of registered filters.
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.filters)
}

// ApplyMail passes mail through every filter, each one receiving the previous
// one's output. It stops at the first filter that suppresses the send and
// returns false.
func (d *Dispatcher) ApplyMail(ctx context.Context, mail totalpushover.Mail) (totalpushover.Mail, bool) {
	d.mu.RLock()
	filters := make([]registration, len(d.filters))
	copy(filters, d.filters)
	d.mu.RUnlock()

	for _, r := range filters {
		var proceed bool
		mail, proceed = r.filter.FilterMail(ctx, mail)
		if !proceed {
			return totalpushover.Mail{}, false
		}
	}
	return mail, true
}
