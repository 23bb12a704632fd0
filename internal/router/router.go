package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/rodhonsys/saude-escolar-api/internal/handler"
	accounth "github.com/rodhonsys/saude-escolar-api/internal/handler/account"
	audith "github.com/rodhonsys/saude-escolar-api/internal/handler/audit"
	authh "github.com/rodhonsys/saude-escolar-api/internal/handler/auth"
	maternityh "github.com/rodhonsys/saude-escolar-api/internal/handler/maternity"
	personh "github.com/rodhonsys/saude-escolar-api/internal/handler/person"
	unith "github.com/rodhonsys/saude-escolar-api/internal/handler/unit"
	visith "github.com/rodhonsys/saude-escolar-api/internal/handler/visit"
	"github.com/rodhonsys/saude-escolar-api/internal/middleware"
	"github.com/rodhonsys/saude-escolar-api/internal/model"
	"github.com/rodhonsys/saude-escolar-api/pkg/access"
)

type Router struct {
	engine     *gin.Engine
	auth       *middleware.AuthMiddleware
	authH      *authh.Handler
	personH    *personh.Handler
	visitH     *visith.Handler
	maternityH *maternityh.Handler
	accountH   *accounth.Handler
	unitH      *unith.Handler
	auditH     *audith.Handler
	h          *handler.Handler
	metrics    *routerMetrics
	timeout    time.Duration
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

type RouterConfig struct {
	RateLimit     rate.Limit
	RateBurst     int
	CORSConfig    middleware.CORSConfig
	MetricsPrefix string
	Timeout       time.Duration
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH *authh.Handler,
	personH *personh.Handler,
	visitH *visith.Handler,
	maternityH *maternityh.Handler,
	accountH *accounth.Handler,
	unitH *unith.Handler,
	auditH *audith.Handler,
	h *handler.Handler,
	config RouterConfig,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	r := &Router{
		engine:     engine,
		auth:       auth,
		authH:      authH,
		personH:    personH,
		visitH:     visitH,
		maternityH: maternityH,
		accountH:   accountH,
		unitH:      unitH,
		auditH:     auditH,
		h:          h,
		metrics:    initRouterMetrics(config.MetricsPrefix),
		timeout:    config.Timeout,
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
	)
	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

// Setup wires the route tree. Guard rules, in order of evaluation, live
// in pkg/access; here each group only names the roles it admits. The
// change-password route is the single one reachable while a password
// change is pending.
//
// The request timeout applies per group, not globally: the session watch
// stream stays open until the client disconnects or the monitor forces a
// sign-out, so its group carries no deadline.
func (r *Router) Setup() {
	handler.RegisterValidations()

	bounded := middleware.Timeout(middleware.TimeoutConfig{Duration: r.timeout})

	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	r.setupHealthCheck(api)

	// Public routes
	public := api.Group("", bounded)
	r.authH.RegisterPublicRoutes(public)

	// Session routes: authenticated, reachable during a pending password
	// change so the holder can set the definitive password and leave.
	session := api.Group("", bounded)
	session.Use(
		r.auth.Authenticate(),
		r.auth.Guard(access.Route{Name: "session", PasswordChangeRoute: true}),
	)
	r.authH.RegisterProtectedRoutes(session)

	// Session watch: same guard as the session group, no timeout.
	watch := api.Group("")
	watch.Use(
		r.auth.Authenticate(),
		r.auth.Guard(access.Route{Name: "session", PasswordChangeRoute: true}),
	)
	r.authH.RegisterWatchRoute(watch)

	// Clinical routes: any staff role of the unit.
	clinical := api.Group("", bounded)
	clinical.Use(
		r.auth.Authenticate(),
		r.auth.Guard(access.Route{
			Name:         "clinical",
			AllowedRoles: []string{model.RoleNurse, model.RoleAssistant, model.RoleManager},
		}),
	)
	r.personH.RegisterRoutes(clinical)
	r.visitH.RegisterRoutes(clinical)
	r.maternityH.RegisterRoutes(clinical)
	r.auditH.RegisterRoutes(clinical)

	// Admin routes: root only. Role "root" passes the guard's immunity
	// rule; the allowlist shuts out everyone else.
	admin := api.Group("/admin", bounded)
	admin.Use(
		r.auth.Authenticate(),
		r.auth.Guard(access.Route{Name: "admin", AllowedRoles: []string{model.RoleRoot}}),
	)
	r.accountH.RegisterRoutes(admin)
	r.unitH.RegisterRoutes(admin)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", r.h.MetricsHandler)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
