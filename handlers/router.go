package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/portfolio-cms/content-api/internal/content/service"
	"github.com/portfolio-cms/content-api/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	AppName string
	Service *service.Service
	// DatabaseURLSet reports whether a connection string was configured, for /test.
	DatabaseURLSet bool
	// Media enables the /api/media routes when non-nil.
	Media *MediaHandler
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// NewRouter builds the HTTP surface of the content API.
func NewRouter(opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.RequestMetrics(), middleware.CORS())

	RegisterDiagnostics(r, opts.AppName, opts.Service.Store(), opts.DatabaseURLSet)
	RegisterContentRoutes(r, opts.Service)
	RegisterSwagger(r, opts.AppName, opts.Media != nil)
	if opts.Media != nil {
		opts.Media.Register(r)
	}

	g := opts.Gatherer
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
	return r
}
