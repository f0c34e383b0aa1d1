package main

import (
	"errors"
	"net/http"
	"net/url"
	"saa-api/internal/providers/fmi"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is returned with every non-2xx status
type ErrorResponse struct {
	Error string `json:"error" example:"failed to get observations"`
}

// handleGetObservations godoc
// @Summary Latest station observations
// @Description One GeoJSON Point per weather station with the latest air temperature (t2m, °C) and 10 minute mean wind speed (ws, m/s). Missing readings are null.
// @Tags weather
// @Produce json
// @Success 200 {object} map[string]interface{} "GeoJSON FeatureCollection"
// @Failure 502 {object} ErrorResponse
// @Failure 504 {object} ErrorResponse
// @Router /api/observations [get]
func (app *App) handleGetObservations(c *gin.Context) {
	fc, err := app.observationService.GetObservations(c.Request.Context())
	if err != nil {
		app.respondUpstreamError(c, "failed to get observations", err)
		return
	}

	c.JSON(http.StatusOK, fc)
}

// handleGetForecast godoc
// @Summary HARMONIE temperature forecast grid
// @Description One GeoJSON Point per grid point and forecast time (6 h steps) over Finland with the forecast air temperature (t2m, °C).
// @Tags weather
// @Produce json
// @Success 200 {object} map[string]interface{} "GeoJSON FeatureCollection"
// @Failure 502 {object} ErrorResponse
// @Failure 504 {object} ErrorResponse
// @Router /api/forecast [get]
func (app *App) handleGetForecast(c *gin.Context) {
	fc, err := app.forecastService.GetForecast(c.Request.Context())
	if err != nil {
		app.respondUpstreamError(c, "failed to get forecast", err)
		return
	}

	c.JSON(http.StatusOK, fc)
}

func (app *App) respondUpstreamError(c *gin.Context, message string, err error) {
	status := upstreamErrorStatus(err)

	app.logger.Error(message,
		"status", status,
		"request_id", c.GetString(requestIDKey),
		"error", err,
	)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}

// upstreamErrorStatus maps a failure talking to FMI onto the status returned to the caller
func upstreamErrorStatus(err error) int {
	var urlErr *url.Error
	switch {
	case fmi.IsTimeout(err):
		return http.StatusGatewayTimeout
	case errors.Is(err, fmi.ErrUpstreamStatus),
		errors.Is(err, fmi.ErrMalformedResponse),
		errors.As(err, &urlErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
