package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ItemsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotdeal_items_processed_total",
			Help: "Listing items examined, per crawler",
		},
		[]string{"crawler"},
	)
	ItemsSaved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotdeal_items_saved_total",
			Help: "New product records persisted, per crawler",
		},
		[]string{"crawler"},
	)
	ItemsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotdeal_items_skipped_total",
			Help: "Items skipped because they were already persisted, per crawler",
		},
		[]string{"crawler"},
	)
	ItemsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotdeal_items_failed_total",
			Help: "Items dropped by detail-fetch or persist failures, per crawler",
		},
		[]string{"crawler"},
	)
)

func Start(port string) {
	prometheus.MustRegister(ItemsProcessed, ItemsSaved, ItemsSkipped, ItemsFailed)
	http.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(":"+port, nil)
}
