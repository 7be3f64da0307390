package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Notification sources.
const (
	SourceMail = "mail"
	SourceTest = "test"
)

// Notification results.
const (
	ResultSent   = "sent"
	ResultFailed = "failed"
)

var (
	Notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "totalpushover_notifications_total",
		Help: "Total number of Pushover notifications attempted, by source and result",
	}, []string{"source", "result"})
	MailDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "totalpushover_mail_decisions_total",
		Help: "Total number of outgoing mails seen by the hook, by decision",
	}, []string{"transport", "decision"})
)

func init() {
	prometheus.MustRegister(Notifications, MailDecisions)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveNotification counts one notification attempt.
func ObserveNotification(source string, err error) {
	result := ResultSent
	if err != nil {
		result = ResultFailed
	}
	Notifications.WithLabelValues(source, result).Inc()
}

// ObserveDecision counts one hook decision made on behalf of transport.
func ObserveDecision(transport string, proceed bool) {
	decision := "suppressed"
	if proceed {
		decision = "proceed"
	}
	MailDecisions.WithLabelValues(transport, decision).Inc()
}
