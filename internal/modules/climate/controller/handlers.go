package controller

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"

	"climate-server/internal/modules/climate/types"
	"climate-server/internal/modules/climate/views"
	"climate-server/internal/utils"
)

var indexRoutes = []views.Route{
	{Path: apiPrefix + "/precipitation", Description: "date and precipitation of every observation"},
	{Path: apiPrefix + "/stations", Description: "station ids"},
	{Path: apiPrefix + "/tobs", Description: "last twelve months of temperature readings for the most active station"},
	{Path: apiPrefix + "/<start>", Description: "min, max and average temperature on or after start"},
	{Path: apiPrefix + "/<start>/<end>", Description: "min, max and average temperature between start and end, inclusive"},
}

func (c *climateControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		utils.WriteError(w, http.StatusNotFound, types.KindNotFound, "no route for "+r.URL.Path)
		return
	}
	var buf bytes.Buffer
	if err := views.RenderIndex(&buf, &views.IndexData{Title: "Hawaii climate API", Routes: indexRoutes}); err != nil {
		slog.Error("index template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, types.KindInternal, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("index: write response failed", "error", err)
	}
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	series, err := c.service.Precipitation(r.Context())
	if err != nil {
		writeServiceError(w, r, "precipitation", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, series)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	ids, err := c.service.Stations(r.Context())
	if err != nil {
		writeServiceError(w, r, "stations", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, ids)
}

func (c *climateControllerImpl) handleTOBS(w http.ResponseWriter, r *http.Request) {
	series, err := c.service.TemperatureObservations(r.Context())
	if err != nil {
		writeServiceError(w, r, "tobs", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, series)
}

// handleTemperatureSummary serves both /{start} and /{start}/{end}.
func (c *climateControllerImpl) handleTemperatureSummary(w http.ResponseWriter, r *http.Request) {
	dates, err := parseDateRange(r.PathValue("start"), r.PathValue("end"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, types.KindBadRequest, err.Error())
		return
	}
	summary, err := c.service.TemperatureSummary(r.Context(), dates.Start, dates.End)
	if err != nil {
		writeServiceError(w, r, "temperature summary", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}

func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, types.ErrNoDataInRange):
		utils.WriteError(w, http.StatusNotFound, types.KindNoDataInRange, "no temperature observations in the requested range")
	case errors.Is(err, context.DeadlineExceeded):
		slog.Warn(op+": request timed out", "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusServiceUnavailable, types.KindStoreUnavailable, "store query timed out")
	default:
		slog.Error(op+" failed", "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, types.KindInternal, "failed to query climate data")
	}
}
