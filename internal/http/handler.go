package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/geomag-api/internal/adapter/store"
	"go.ngs.io/geomag-api/internal/domain"
	"go.ngs.io/geomag-api/internal/logger"
	"go.ngs.io/geomag-api/internal/usecase"
)

// Handler handles HTTP requests for geomagnetic field values.
type Handler struct {
	fieldUC *usecase.FieldUseCase
}

// NewHandler creates a new HTTP handler.
func NewHandler(fieldUC *usecase.FieldUseCase) *Handler {
	return &Handler{
		fieldUC: fieldUC,
	}
}

// GetField handles GET /v1/field.
func (h *Handler) GetField(c *gin.Context) {
	pos, err := parsePosition(c)
	if err != nil {
		writeError(c, err)
		return
	}
	date, err := dateParam(c, "date")
	if err != nil {
		writeError(c, err)
		return
	}

	response, err := h.fieldUC.Spot(c.Request.Context(), usecase.SpotRequest{
		Model:    c.Query("model"),
		Date:     date,
		Position: pos,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetSeries handles GET /v1/field/series.
func (h *Handler) GetSeries(c *gin.Context) {
	pos, err := parsePosition(c)
	if err != nil {
		writeError(c, err)
		return
	}
	start, err := dateParam(c, "start")
	if err != nil {
		writeError(c, err)
		return
	}
	end, err := dateParam(c, "end")
	if err != nil {
		writeError(c, err)
		return
	}

	response, err := h.fieldUC.Series(c.Request.Context(), usecase.SeriesRequest{
		Model:     c.Query("model"),
		StartDate: start,
		EndDate:   end,
		Position:  pos,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetGrid handles GET /v1/field/grid.
func (h *Handler) GetGrid(c *gin.Context) {
	frame, err := domain.ParseFrame(c.Query("frame"))
	if err != nil {
		writeError(c, fmt.Errorf("%w: %v", usecase.ErrInvalidRequest, err))
		return
	}
	ref, err := usecase.ParseHeightReference(c.Query("height_ref"))
	if err != nil {
		writeError(c, err)
		return
	}
	alt, err := floatParam(c, "alt", 0, false)
	if err != nil {
		writeError(c, err)
		return
	}
	date, err := dateParam(c, "date")
	if err != nil {
		writeError(c, err)
		return
	}
	lat, err := rangeParam(c, "lat")
	if err != nil {
		writeError(c, err)
		return
	}
	lon, err := rangeParam(c, "lon")
	if err != nil {
		writeError(c, err)
		return
	}

	response, err := h.fieldUC.Grid(c.Request.Context(), usecase.GridRequest{
		Model: c.Query("model"),
		Date:  date,
		Lat:   lat,
		Lon:   lon,
		Position: usecase.Position{
			Altitude:  alt,
			Frame:     frame,
			HeightRef: ref,
		},
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetModels handles GET /v1/models.
func (h *Handler) GetModels(c *gin.Context) {
	models, err := h.fieldUC.Models()
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"models":  models,
		"count":   len(models),
		"default": h.fieldUC.Config().DefaultModel,
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// parsePosition reads lat/lon (decimal, or lat_deg/lat_min and
// lon_deg/lon_min), alt, frame and height_ref.
func parsePosition(c *gin.Context) (usecase.Position, error) {
	var pos usecase.Position

	frame, err := domain.ParseFrame(c.Query("frame"))
	if err != nil {
		return pos, fmt.Errorf("%w: %v", usecase.ErrInvalidRequest, err)
	}
	pos.Frame = frame

	if pos.HeightRef, err = usecase.ParseHeightReference(c.Query("height_ref")); err != nil {
		return pos, err
	}
	if pos.Lat, err = angleParam(c, "lat"); err != nil {
		return pos, err
	}
	if pos.Lon, err = angleParam(c, "lon"); err != nil {
		return pos, err
	}
	if pos.Altitude, err = floatParam(c, "alt", 0, false); err != nil {
		return pos, err
	}
	return pos, nil
}

// angleParam reads <name> in decimal degrees, or <name>_deg with an
// optional <name>_min.
func angleParam(c *gin.Context, name string) (float64, error) {
	if _, ok := c.GetQuery(name); ok {
		return floatParam(c, name, 0, true)
	}
	if _, ok := c.GetQuery(name + "_deg"); !ok {
		return 0, fmt.Errorf("%w: %s (or %s_deg) parameter is required", usecase.ErrInvalidRequest, name, name)
	}
	deg, err := floatParam(c, name+"_deg", 0, true)
	if err != nil {
		return 0, err
	}
	minutes, err := floatParam(c, name+"_min", 0, false)
	if err != nil {
		return 0, err
	}
	if minutes <= -60 || minutes >= 60 {
		return 0, fmt.Errorf("%w: %s_min %g outside (-60, 60)", usecase.ErrInvalidRequest, name, minutes)
	}
	if deg != 0 && minutes < 0 {
		return 0, fmt.Errorf("%w: negative %s_min is only allowed with zero degrees", usecase.ErrInvalidRequest, name)
	}
	return domain.DegMinToDecimal(deg, minutes), nil
}

func floatParam(c *gin.Context, name string, def float64, required bool) (float64, error) {
	s, ok := c.GetQuery(name)
	if !ok || s == "" {
		if required {
			return 0, fmt.Errorf("%w: %s parameter is required", usecase.ErrInvalidRequest, name)
		}
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s: %v", usecase.ErrInvalidRequest, name, err)
	}
	return v, nil
}

func dateParam(c *gin.Context, name string) (float64, error) {
	s := c.Query(name)
	if s == "" {
		return 0, fmt.Errorf("%w: %s parameter is required", usecase.ErrInvalidRequest, name)
	}
	return domain.ParseDate(s)
}

// rangeParam reads <name>_start, <name>_step and <name>_end.
func rangeParam(c *gin.Context, name string) (usecase.Range, error) {
	var r usecase.Range
	var err error
	if r.Start, err = floatParam(c, name+"_start", 0, true); err != nil {
		return r, err
	}
	if r.Step, err = floatParam(c, name+"_step", 0, true); err != nil {
		return r, err
	}
	if r.End, err = floatParam(c, name+"_end", 0, true); err != nil {
		return r, err
	}
	return r, nil
}

// writeError maps use case and domain errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrModelNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrInvalidRequest),
		errors.Is(err, usecase.ErrDateOutOfRange),
		errors.Is(err, domain.ErrDomain),
		errors.Is(err, domain.ErrAltitudeRange):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		logger.L().Error("request_failed", "path", c.Request.URL.Path, "err", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
