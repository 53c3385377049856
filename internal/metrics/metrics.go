package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodgram_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Domain Metrics
	RecipeMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_recipe_mutations_total",
			Help: "Total number of committed recipe mutations",
		},
		[]string{"operation"}, // "create", "update", "delete"
	)

	SocialRelations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_social_relations_total",
			Help: "Total number of committed favorite, cart and follow changes",
		},
		[]string{"relation", "operation"}, // relation: "favorite", "cart", "follow"; operation: "add", "remove"
	)

	ShoppingListBuilds = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodgram_shopping_list_builds_total",
			Help: "Total number of aggregated shopping lists",
		},
	)

	CatalogLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodgram_catalog_loaded_total",
			Help: "Total number of catalog rows created by bulk loads",
		},
		[]string{"kind"}, // "ingredient", "tag"
	)
)

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordRecipeMutation(operation string) {
	RecipeMutations.WithLabelValues(operation).Inc()
}

func RecordSocialRelation(relation, operation string) {
	SocialRelations.WithLabelValues(relation, operation).Inc()
}

func RecordCatalogLoad(kind string, created int) {
	CatalogLoaded.WithLabelValues(kind).Add(float64(created))
}
