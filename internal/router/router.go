package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/booking-api/internal/middleware"
	"github.com/jwalitptl/booking-api/pkg/metrics"
)

// Handler mounts routes that need a session.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// PublicHandler also has routes open to anonymous callers.
type PublicHandler interface {
	Handler
	RegisterPublicRoutes(*gin.RouterGroup)
}

type Handlers struct {
	Health       Handler
	Hospital     Handler
	Doctor       PublicHandler
	Registration PublicHandler
	Form         Handler
	Booking      Handler
	Appointment  Handler
	Dashboard    Handler
	Patient      Handler
	User         Handler
}

type RouterConfig struct {
	Mode           string
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout time.Duration
	CORSConfig     middleware.CORSConfig
}

type Router struct {
	engine   *gin.Engine
	verifier middleware.TokenVerifier
	handlers Handlers
}

func NewRouter(
	verifier middleware.TokenVerifier,
	handlers Handlers,
	m *metrics.Metrics,
	log zerolog.Logger,
	config RouterConfig,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	middleware.RegisterValidators()

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})

	// Order matters: request id first so every later log line carries it.
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(),
		middleware.Metrics(m),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
		middleware.SizeLimit(middleware.DefaultSizeLimitConfig()),
		rateLimiter.RateLimit(),
		middleware.Timeout(config.RequestTimeout),
	)

	return &Router{
		engine:   engine,
		verifier: verifier,
		handlers: handlers,
	}
}

func (r *Router) Setup() {
	api := r.engine.Group("/api/v1")

	r.handlers.Health.RegisterRoutes(api)

	public := api.Group("", middleware.Locale())
	r.handlers.Hospital.RegisterRoutes(public)
	r.handlers.Doctor.RegisterPublicRoutes(public)
	r.handlers.Registration.RegisterPublicRoutes(public)

	// Locale runs again after auth so the session's preference applies.
	protected := api.Group("", middleware.Authenticate(r.verifier), middleware.Locale())
	r.handlers.User.RegisterRoutes(protected)
	r.handlers.Patient.RegisterRoutes(protected)
	r.handlers.Doctor.RegisterRoutes(protected)
	r.handlers.Registration.RegisterRoutes(protected)
	r.handlers.Form.RegisterRoutes(protected)
	r.handlers.Booking.RegisterRoutes(protected)
	r.handlers.Appointment.RegisterRoutes(protected)
	r.handlers.Dashboard.RegisterRoutes(protected)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
