package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clientpro_messages_sent_total",
		Help: "Outbound messages accepted by the SMS provider.",
	})
	MessagesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clientpro_messages_failed_total",
		Help: "Outbound messages that exhausted retries or failed permanently.",
	})
	MessagesRetried = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clientpro_messages_retried_total",
		Help: "Delivery attempts that failed and were rescheduled.",
	})
	RepliesReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clientpro_replies_received_total",
		Help: "Inbound messages correlated to a prior outbound message.",
	})
	OptOuts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clientpro_opt_outs_total",
		Help: "Inbound STOP-keyword messages that deactivated a client.",
	})
	InboundDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clientpro_inbound_dropped_total",
		Help: "Inbound messages with no matching agent or client.",
	})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
