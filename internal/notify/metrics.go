package notify

import "github.com/prometheus/client_golang/prometheus"

var deliveriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "ytptube",
		Subsystem: "notify",
		Name:      "deliveries_total",
		Help:      "Total webhook delivery attempts by event and outcome",
	},
	[]string{"event", "outcome"},
)

func init() {
	prometheus.MustRegister(deliveriesTotal)
}

func recordDelivery(event string, ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	deliveriesTotal.WithLabelValues(event, outcome).Inc()
}
