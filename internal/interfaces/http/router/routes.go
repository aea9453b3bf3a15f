package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pymeboard/backend/internal/infrastructure/auth"
	"github.com/pymeboard/backend/internal/infrastructure/logger"
	"github.com/pymeboard/backend/internal/interfaces/http/dto"
	"github.com/pymeboard/backend/internal/interfaces/http/handler"
	"github.com/pymeboard/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag/v2"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted by NewEngine. Nil handlers are skipped.
type Handlers struct {
	System   *handler.SystemHandler
	Identity *handler.IdentityHandler
	Currency *handler.CurrencyHandler
	Client   *handler.ClientHandler
}

// EngineConfig carries the settings of the global middleware chain
type EngineConfig struct {
	ServiceName    string
	APIVersion     string
	Logger         *zap.Logger
	CORS           middleware.CORSConfig
	TrustedProxies []string
	MaxBodySize    int64
	RateLimiter    *middleware.RateLimiter // nil disables rate limiting
	Tracing        bool
	Profiling      bool
	Meter          metric.Meter // nil disables HTTP metrics
	Docs           middleware.DocsConfig
	Verifier       *auth.TokenVerifier
}

// NewEngine builds the gin engine with the middleware chain, the operational
// endpoints and the versioned API.
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	httpMetrics, err := middleware.HTTPMetrics(cfg.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	// Order matters: the request id must exist before logging and tracing read it.
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.Tracing(cfg.ServiceName, cfg.Tracing),
		middleware.TraceAttributes(),
		httpMetrics,
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	if h.System != nil {
		engine.GET("/health", h.System.Health)
		engine.NoRoute(h.System.NoRoute)
	}

	docs := engine.Group("", middleware.DocsProtection(cfg.Docs))
	docs.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	docs.GET("/openapi.json", openAPIDocument)

	version := cfg.APIVersion
	if version == "" {
		version = "v1"
	}
	r := NewRouter(engine, WithAPIVersion(version))
	if h.System != nil {
		r.Register(SystemRoutes(h.System))
	}
	if h.Identity != nil {
		r.Register(IdentityRoutes(h.Identity))
	}
	if h.Currency != nil {
		r.Register(CurrencyRoutes(h.Currency))
	}
	if h.Client != nil {
		r.Register(ClientRoutes(h.Client,
			middleware.JWTAuth(cfg.Verifier, log),
			middleware.ProfilingLabels(cfg.Profiling),
		))
	}
	r.Setup()

	return engine, nil
}

// SystemRoutes declares the unauthenticated service endpoints
func SystemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "/system").
		GET("/info", h.GetSystemInfo).
		GET("/ping", h.Ping)
}

// IdentityRoutes declares the RUT and phone tools. They are pure and public.
func IdentityRoutes(h *handler.IdentityHandler) *DomainGroup {
	group := NewDomainGroup("identity", "/identity")
	group.Group("rut", "/rut").
		POST("/format", h.FormatRut).
		POST("/validate", h.ValidateRut)
	group.Group("phone", "/phone").
		POST("/normalize", h.NormalizePhone)
	return group
}

// CurrencyRoutes declares the CLP/UF conversion endpoint
func CurrencyRoutes(h *handler.CurrencyHandler) *DomainGroup {
	return NewDomainGroup("currency", "/currency").
		GET("/convert", h.Convert)
}

// ClientRoutes declares the client registry. guards run before every route,
// normally authentication followed by profiling labels.
func ClientRoutes(h *handler.ClientHandler, guards ...gin.HandlerFunc) *DomainGroup {
	return NewDomainGroup("clients", "/clients").
		Use(guards...).
		GET("", h.List).
		POST("", h.Create).
		GET("/stats", h.Stats).
		GET("/rut-exists", h.RutExists).
		POST("/import", h.Import).
		GET("/export", h.Export).
		POST("/export/archive", h.Archive).
		GET("/:id", h.Get).
		PUT("/:id", h.Update).
		DELETE("/:id", h.Delete)
}

func openAPIDocument(c *gin.Context) {
	doc, err := swag.ReadDoc()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeNotFound, "Documentación no disponible", middleware.GetRequestID(c)))
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
}
