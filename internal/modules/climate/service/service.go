package service

import (
	"context"
	"errors"

	"climate-server/internal/modules/climate/query"
	"climate-server/internal/modules/climate/repository"
	"climate-server/internal/modules/climate/types"
)

// Service answers the climate API operations from a ClimateRepository.
type Service struct {
	repository repository.ClimateRepository
	// cutoff pins the trailing-window start; empty derives it from the data.
	cutoff string
}

func NewService(repository repository.ClimateRepository, cutoff string) *Service {
	return &Service{repository: repository, cutoff: cutoff}
}

// Precipitation returns one {date, prcp} entry per observation.
func (s *Service) Precipitation(ctx context.Context) ([]types.Precipitation, error) {
	obs, err := s.repository.AllObservations(ctx)
	if err != nil {
		return nil, err
	}
	return query.PrecipitationSeries(obs), nil
}

func (s *Service) Stations(ctx context.Context) ([]string, error) {
	stations, err := s.repository.AllStations(ctx)
	if err != nil {
		return nil, err
	}
	return query.StationIDs(stations), nil
}

// TemperatureObservations returns the trailing-window temperature series of
// the station with the most observations. An empty dataset yields an empty
// series.
func (s *Service) TemperatureObservations(ctx context.Context) ([]types.TemperatureObservation, error) {
	obs, err := s.repository.AllObservations(ctx)
	if err != nil {
		return nil, err
	}
	station, err := query.MostActiveStation(obs)
	if errors.Is(err, types.ErrNoData) {
		return []types.TemperatureObservation{}, nil
	}
	if err != nil {
		return nil, err
	}
	cutoff := s.cutoff
	if cutoff == "" {
		cutoff, err = query.TrailingWindowCutoff(obs)
		if err != nil {
			return nil, err
		}
	}
	return query.TemperatureSeries(obs, station, cutoff), nil
}

// TemperatureSummary aggregates temperatures on or after start, and on or
// before end when end is not empty. Dates must already be validated.
func (s *Service) TemperatureSummary(ctx context.Context, start, end string) (types.TemperatureSummary, error) {
	var (
		obs []types.Observation
		err error
	)
	if end == "" {
		obs, err = s.repository.ObservationsSince(ctx, start)
	} else {
		obs, err = s.repository.ObservationsInRange(ctx, start, end)
	}
	if err != nil {
		return types.TemperatureSummary{}, err
	}
	return query.SummarizeTemperatures(obs)
}
