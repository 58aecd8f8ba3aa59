package http

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanqian/cwa-weatherboard/internal/infra/config"
)

const indexTemplate = "index.html"

//go:embed templates/*.html
var templateFS embed.FS

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, clock clockwork.Clock) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.SetHTMLTemplate(template.Must(template.New("").ParseFS(templateFS, "templates/*.html")))
	router.Use(
		gin.Recovery(),
		requestIDMiddleware(),
		requestLogger(handler.logger, clock),
		corsMiddleware(cfg.HTTP.AllowOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/", handler.Index)
	router.GET("/healthz", handler.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api", rateLimitMiddleware(cfg.HTTP.RateLimit, clock, handler.logger))
	{
		api.GET("/all_locations_forecast", handler.AllLocationsForecast)
		api.GET("/typhoon_warning", handler.TyphoonWarning)
		api.GET("/alerts", handler.ActiveAlerts)
		api.GET("/imagery", handler.Imagery)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger, clock clockwork.Clock) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := clock.Now()
		c.Next()
		latency := clock.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds(), "request_id", c.GetString(requestIDKey))
	}
}
