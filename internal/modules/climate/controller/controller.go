package controller

import (
	"net/http"

	"climate-server/internal/modules/climate/service"
)

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	service *service.Service
}

func NewClimateController(service *service.Service) ClimateController {
	return &climateControllerImpl{service: service}
}

const apiPrefix = "/api/v1.0"

func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleIndex)
	mux.HandleFunc("GET "+apiPrefix+"/precipitation", c.handlePrecipitation)
	mux.HandleFunc("GET "+apiPrefix+"/stations", c.handleStations)
	mux.HandleFunc("GET "+apiPrefix+"/tobs", c.handleTOBS)
	mux.HandleFunc("GET "+apiPrefix+"/{start}", c.handleTemperatureSummary)
	mux.HandleFunc("GET "+apiPrefix+"/{start}/{end}", c.handleTemperatureSummary)
}
