package router

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aafiyacare/homecare-api/internal/middleware"
	"github.com/aafiyacare/homecare-api/pkg/logger"
)

// Handler mounts a set of routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// AuthHandler splits its routes across the public and protected groups.
type AuthHandler interface {
	RegisterRoutes(*gin.RouterGroup)
	RegisterProtectedRoutes(*gin.RouterGroup)
}

type Config struct {
	CORS        middleware.CORSConfig
	RateLimit   *middleware.RateLimiterConfig
	MaxBodySize int64
	Timeout     time.Duration
	MetricsPath string
}

type Router struct {
	engine  *gin.Engine
	authMW  *middleware.AuthMiddleware
	authH   AuthHandler
	healthH Handler
	apiH    []Handler
	metrics *routerMetrics
	config  Config
}

// New assembles the HTTP surface. The handlers in api are mounted
// behind JWT authentication; health and auth login/refresh stay open.
func New(log *logger.Logger, authMW *middleware.AuthMiddleware, authH AuthHandler, healthH Handler, api []Handler, config Config) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	if config.Timeout <= 0 {
		config.Timeout = middleware.DefaultTimeoutConfig().Duration
	}
	if config.MaxBodySize <= 0 {
		config.MaxBodySize = middleware.DefaultSizeLimitConfig().MaxBodySize
	}

	r := &Router{
		engine:  engine,
		authMW:  authMW,
		authH:   authH,
		healthH: healthH,
		apiH:    api,
		metrics: newRouterMetrics(),
		config:  config,
	}

	engine.Use(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.ErrorHandler(log),
		r.requestMetrics(),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORS),
		middleware.Compress(middleware.DefaultCompressConfig()),
		middleware.SizeLimit(middleware.SizeLimitConfig{MaxBodySize: config.MaxBodySize}),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.Timeout}),
	)
	if config.RateLimit != nil {
		engine.Use(middleware.NewRateLimiter(*config.RateLimit).RateLimit())
	}

	r.setup()
	return r
}

func (r *Router) setup() {
	root := r.engine.Group("")
	r.healthH.RegisterRoutes(root)
	if r.config.MetricsPath != "" {
		r.engine.GET(r.config.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	api := r.engine.Group("/api/v1")
	r.authH.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(r.authMW.Authenticate())
	r.authH.RegisterProtectedRoutes(protected)
	for _, h := range r.apiH {
		h.RegisterRoutes(protected)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

var (
	metricsOnce   sync.Once
	sharedMetrics *routerMetrics
)

// newRouterMetrics registers the HTTP metrics exactly once; routers
// built after the first share the same collectors.
func newRouterMetrics() *routerMetrics {
	metricsOnce.Do(func() {
		sharedMetrics = &routerMetrics{
			requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "aafiya",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			}, []string{"method", "path", "status"}),
			requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "aafiya",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			}, []string{"method", "path", "status"}),
		}
	})
	return sharedMetrics
}

// requestMetrics labels by route template, not raw path, so ids do not
// explode the cardinality.
func (r *Router) requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
