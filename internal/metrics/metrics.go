package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PublicRequests counts public-serving resolutions by outcome (hit / miss).
var PublicRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "pagebox",
	Name:      "public_requests_total",
	Help:      "Public site requests by resolution outcome.",
}, []string{"outcome"})

// SiteUploads counts accepted upload batches.
var SiteUploads = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "pagebox",
	Name:      "site_uploads_total",
	Help:      "Upload batches accepted by the orchestrator.",
})

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}
