package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	"climate-server/internal/modules/climate/types"
)

//go:embed sql/get-observations.sql
var getObservationsSQL string

//go:embed sql/get-observations-since.sql
var getObservationsSinceSQL string

//go:embed sql/get-observations-in-range.sql
var getObservationsInRangeSQL string

//go:embed sql/get-stations.sql
var getStationsSQL string

// ClimateRepository is read-only access to the observation and station
// tables. Results come back in store insertion order. Date bounds are
// inclusive YYYY-MM-DD strings.
type ClimateRepository interface {
	AllObservations(ctx context.Context) ([]types.Observation, error)
	AllStations(ctx context.Context) ([]types.Station, error)
	ObservationsSince(ctx context.Context, start string) ([]types.Observation, error)
	ObservationsInRange(ctx context.Context, start, end string) ([]types.Observation, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ClimateRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) AllObservations(ctx context.Context) ([]types.Observation, error) {
	return r.queryObservations(ctx, "all", getObservationsSQL)
}

func (r *repositoryImpl) ObservationsSince(ctx context.Context, start string) ([]types.Observation, error) {
	return r.queryObservations(ctx, "since", getObservationsSinceSQL, start)
}

func (r *repositoryImpl) ObservationsInRange(ctx context.Context, start, end string) ([]types.Observation, error) {
	return r.queryObservations(ctx, "range", getObservationsInRangeSQL, start, end)
}

func (r *repositoryImpl) queryObservations(ctx context.Context, name, query string, args ...any) ([]types.Observation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query observations (%s): %w", name, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close observation rows", "query", name, "error", err)
		}
	}()
	out := make([]types.Observation, 0)
	for rows.Next() {
		var (
			o          types.Observation
			prcp, tobs sql.NullFloat64
		)
		if err := rows.Scan(&o.Station, &o.Date, &prcp, &tobs); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		o.Prcp = floatPtr(prcp)
		o.TOBS = floatPtr(tobs)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate observations (%s): %w", name, err)
	}
	return out, nil
}

func (r *repositoryImpl) AllStations(ctx context.Context) ([]types.Station, error) {
	rows, err := r.db.QueryContext(ctx, getStationsSQL)
	if err != nil {
		return nil, fmt.Errorf("query stations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close stations rows", "error", err)
		}
	}()
	out := make([]types.Station, 0)
	for rows.Next() {
		var (
			s             types.Station
			name          sql.NullString
			lat, lon, elv sql.NullFloat64
		)
		if err := rows.Scan(&s.Station, &name, &lat, &lon, &elv); err != nil {
			return nil, fmt.Errorf("scan station: %w", err)
		}
		if name.Valid {
			s.Name = &name.String
		}
		s.Latitude = floatPtr(lat)
		s.Longitude = floatPtr(lon)
		s.Elevation = floatPtr(elv)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stations: %w", err)
	}
	return out, nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
