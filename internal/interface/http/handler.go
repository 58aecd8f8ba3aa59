package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/cwa-weatherboard/internal/domain/alert"
	"github.com/yanqian/cwa-weatherboard/internal/domain/cyclone"
	"github.com/yanqian/cwa-weatherboard/internal/domain/forecast"
	"github.com/yanqian/cwa-weatherboard/internal/domain/imagery"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	alertSvc    alert.Service
	forecastSvc forecast.Service
	cycloneSvc  cyclone.Service
	imagerySvc  imagery.Service
	logger      *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(alertSvc alert.Service, forecastSvc forecast.Service, cycloneSvc cyclone.Service, imagerySvc imagery.Service, logger *slog.Logger) *Handler {
	return &Handler{
		alertSvc:    alertSvc,
		forecastSvc: forecastSvc,
		cycloneSvc:  cycloneSvc,
		imagerySvc:  imagerySvc,
		logger:      logger.With("component", "http.handler"),
	}
}

// Index renders the dashboard page with imagery links and active alerts.
func (h *Handler) Index(c *gin.Context) {
	links := h.imagerySvc.Current()
	alerts := h.alertSvc.Active(c.Request.Context())
	c.HTML(http.StatusOK, indexTemplate, gin.H{
		"RadarURL":     links.RadarURL,
		"SatelliteURL": links.SatelliteURL,
		"Alerts":       alerts,
	})
}

// AllLocationsForecast returns the short range forecast for every county.
func (h *Handler) AllLocationsForecast(c *gin.Context) {
	q := forecast.Query{LocationNames: splitQuery(c.QueryArray("locationName"))}
	results, err := h.forecastSvc.AllLocations(c.Request.Context(), q)
	if err != nil {
		abortWithError(c, fromAppError(err, forecastMessages))
		return
	}
	c.JSON(http.StatusOK, results)
}

// TyphoonWarning returns tropical cyclone tracks; an empty list means no storm.
func (h *Handler) TyphoonWarning(c *gin.Context) {
	typhoons, err := h.cycloneSvc.Tracks(c.Request.Context())
	if err != nil {
		abortWithError(c, fromAppError(err, cycloneMessages))
		return
	}
	c.JSON(http.StatusOK, typhoons)
}

// ActiveAlerts returns the alerts shown on the dashboard.
func (h *Handler) ActiveAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, h.alertSvc.Active(c.Request.Context()))
}

// Imagery returns the current radar and satellite links.
func (h *Handler) Imagery(c *gin.Context) {
	c.JSON(http.StatusOK, h.imagerySvc.Current())
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// splitQuery accepts both repeated and comma separated values.
func splitQuery(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
