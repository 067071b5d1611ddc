package repository

import (
	"context"
	"fmt"

	"climate-server/internal/modules/climate/types"
)

// Snapshot holds both tables in memory. It is built once at startup and never
// modified afterwards, so it is safe for concurrent use without locking.
type Snapshot struct {
	observations []types.Observation
	stations     []types.Station
}

// Load reads every observation and station from src into a Snapshot.
func Load(ctx context.Context, src ClimateRepository) (*Snapshot, error) {
	obs, err := src.AllObservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}
	stations, err := src.AllStations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stations: %w", err)
	}
	return &Snapshot{observations: obs, stations: stations}, nil
}

// Counts reports the number of observation and station records held.
func (s *Snapshot) Counts() (observations int, stations int) {
	return len(s.observations), len(s.stations)
}

func (s *Snapshot) AllObservations(ctx context.Context) ([]types.Observation, error) {
	return s.filter(ctx, func(types.Observation) bool { return true })
}

func (s *Snapshot) AllStations(ctx context.Context) ([]types.Station, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]types.Station, len(s.stations))
	copy(out, s.stations)
	return out, nil
}

func (s *Snapshot) ObservationsSince(ctx context.Context, start string) ([]types.Observation, error) {
	return s.filter(ctx, func(o types.Observation) bool { return o.Date >= start })
}

func (s *Snapshot) ObservationsInRange(ctx context.Context, start, end string) ([]types.Observation, error) {
	return s.filter(ctx, func(o types.Observation) bool { return o.Date >= start && o.Date <= end })
}

func (s *Snapshot) filter(ctx context.Context, keep func(types.Observation) bool) ([]types.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]types.Observation, 0)
	for _, o := range s.observations {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out, nil
}
