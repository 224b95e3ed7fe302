package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/medisync/hms-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// AuthHandler registers both public and token-protected routes, so it needs
// the auth middleware.
type AuthHandler interface {
	RegisterRoutes(*gin.RouterGroup, *middleware.AuthMiddleware)
}

// SettingsHandler additionally owns the /settings group.
type SettingsHandler interface {
	Handler
	RegisterSettingsRoutes(*gin.RouterGroup)
}

type EngineHandler interface {
	RegisterRoutes(*gin.Engine)
}

type Config struct {
	RateLimitEnabled bool
	RateLimitRPS     float64
	RateLimitBurst   int
	RequestTimeout   time.Duration
	CORSConfig       middleware.CORSConfig
}

type Router struct {
	engine        *gin.Engine
	auth          *middleware.AuthMiddleware
	authH         AuthHandler
	userH         Handler
	doctorH       Handler
	patientH      Handler
	appointmentH  Handler
	medicineH     SettingsHandler
	prescriptionH Handler
	invoiceH      Handler
	analyticsH    Handler
	healthH       EngineHandler
	metrics       *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

var (
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	requestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
)

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH AuthHandler,
	userH Handler,
	doctorH Handler,
	patientH Handler,
	appointmentH Handler,
	medicineH SettingsHandler,
	prescriptionH Handler,
	invoiceH Handler,
	analyticsH Handler,
	healthH EngineHandler,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:        engine,
		auth:          auth,
		authH:         authH,
		userH:         userH,
		doctorH:       doctorH,
		patientH:      patientH,
		appointmentH:  appointmentH,
		medicineH:     medicineH,
		prescriptionH: prescriptionH,
		invoiceH:      invoiceH,
		analyticsH:    analyticsH,
		healthH:       healthH,
		metrics: &routerMetrics{
			requestDuration: requestDuration,
			requestTotal:    requestTotal,
		},
	}

	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
		middleware.Timeout(timeout),
		middleware.CORS(config.CORSConfig),
	)

	if config.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(config.RateLimitRPS, config.RateLimitBurst)
		engine.Use(limiter.RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.healthH.RegisterRoutes(r.engine)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.authH.RegisterRoutes(api.Group("/auth"), r.auth)

	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.userH.RegisterRoutes(protected.Group("/users"))
	r.doctorH.RegisterRoutes(protected.Group("/doctors"))
	r.patientH.RegisterRoutes(protected.Group("/patients"))
	r.appointmentH.RegisterRoutes(protected.Group("/appointments"))
	r.medicineH.RegisterRoutes(protected.Group("/medicines"))
	r.medicineH.RegisterSettingsRoutes(protected.Group("/settings"))
	r.prescriptionH.RegisterRoutes(protected.Group("/prescriptions"))
	r.invoiceH.RegisterRoutes(protected.Group("/invoices"))
	r.analyticsH.RegisterRoutes(protected.Group("/analytics"))
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
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
