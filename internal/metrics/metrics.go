package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	OrdersSubmitted  prometheus.Counter
	BroadcastSent    prometheus.Counter
	BroadcastDropped prometheus.Counter
	PrintAttempts    prometheus.Counter
	PrintFailures    prometheus.Counter
	PrintJobsQueued  prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	ordersSubmitted := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_orders_submitted_total"})
	broadcastSent := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_broadcast_sent_total"})
	broadcastDropped := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_broadcast_dropped_total"})
	printAttempts := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_print_attempts_total"})
	printFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_print_failures_total"})
	printJobsQueued := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_print_jobs_queued_total"})

	r.MustRegister(ordersSubmitted, broadcastSent, broadcastDropped, printAttempts, printFailures, printJobsQueued)
	return &Registry{
		reg:              r,
		OrdersSubmitted:  ordersSubmitted,
		BroadcastSent:    broadcastSent,
		BroadcastDropped: broadcastDropped,
		PrintAttempts:    printAttempts,
		PrintFailures:    printFailures,
		PrintJobsQueued:  printJobsQueued,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
