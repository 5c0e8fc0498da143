package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ta346/greenzone-web/internal/anomaly"
	"github.com/ta346/greenzone-web/internal/apperrors"
)

// Handler wires the HTTP transport to the anomaly service.
type Handler struct {
	anomalySvc *anomaly.Service
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(svc *anomaly.Service, logger *slog.Logger) *Handler {
	return &Handler{
		anomalySvc: svc,
		logger:     logger.With("component", "server.handler"),
	}
}

// anomalyRequest is the request body of the anomaly endpoint. Pointer fields
// distinguish absent keys from zero values: every field is required.
type anomalyRequest struct {
	SelectedProvince        *string `json:"selectedProvince"`
	SelectedSoum            *string `json:"selectedSoum"`
	SelectedVegetationIndex *string `json:"selectedVegetationIndex"`
	SelectedYear            *string `json:"selectedYear"`
	GrazingOnly             *bool   `json:"grazingOnly"`
}

func (r anomalyRequest) complete() bool {
	return r.SelectedProvince != nil &&
		r.SelectedSoum != nil &&
		r.SelectedVegetationIndex != nil &&
		r.SelectedYear != nil &&
		r.GrazingOnly != nil
}

// FetchAnomalyMapData handles POST /api/fetch_anomaly_map_data.
func (h *Handler) FetchAnomalyMapData(c *gin.Context) {
	var req anomalyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "malformed request body", err))
		return
	}
	if !req.complete() {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "Missing required fields in the request.", nil))
		return
	}

	fc, err := h.anomalySvc.MapData(c.Request.Context(), anomaly.Query{
		Province:    *req.SelectedProvince,
		Soum:        *req.SelectedSoum,
		Index:       *req.SelectedVegetationIndex,
		Year:        *req.SelectedYear,
		GrazingOnly: *req.GrazingOnly,
	})
	if err != nil {
		status := http.StatusInternalServerError
		code := "anomaly_failed"
		switch {
		case apperrors.IsCode(err, "invalid_input"):
			status = http.StatusBadRequest
			code = "invalid_request"
		case apperrors.IsCode(err, "unknown_region"):
			status = http.StatusNotFound
			code = "unknown_region"
		case apperrors.IsCode(err, "store_error"):
			status = http.StatusBadGateway
			code = "store_error"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, fc)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
