// Package query computes the derived climate results from observation and
// station records. Every function is pure and keeps the input order.
package query

import (
	"fmt"
	"math"
	"time"

	"climate-server/internal/modules/climate/types"
)

// trailingWindowDays is the length of the temperature window ending at the
// most recent reading.
const trailingWindowDays = 365

func PrecipitationSeries(obs []types.Observation) []types.Precipitation {
	out := make([]types.Precipitation, 0, len(obs))
	for _, o := range obs {
		out = append(out, types.Precipitation{Date: o.Date, Prcp: o.Prcp})
	}
	return out
}

// StationIDs returns the id of every station record, duplicates included.
func StationIDs(stations []types.Station) []string {
	out := make([]string, 0, len(stations))
	for _, s := range stations {
		out = append(out, s.Station)
	}
	return out
}

// MostActiveStation returns the station with the most observations. Ties go
// to the lexically smallest station id.
func MostActiveStation(obs []types.Observation) (string, error) {
	if len(obs) == 0 {
		return "", types.ErrNoData
	}
	counts := make(map[string]int)
	for _, o := range obs {
		counts[o.Station]++
	}
	var best string
	bestCount := -1
	for station, n := range counts {
		if n > bestCount || (n == bestCount && station < best) {
			best, bestCount = station, n
		}
	}
	return best, nil
}

// TrailingWindowCutoff returns the date 365 days before the latest
// observation date.
func TrailingWindowCutoff(obs []types.Observation) (string, error) {
	if len(obs) == 0 {
		return "", types.ErrNoData
	}
	latest := obs[0].Date
	for _, o := range obs[1:] {
		if o.Date > latest {
			latest = o.Date
		}
	}
	t, err := time.Parse(types.DateLayout, latest)
	if err != nil {
		return "", fmt.Errorf("latest observation date %q: %w", latest, err)
	}
	return t.AddDate(0, 0, -trailingWindowDays).Format(types.DateLayout), nil
}

// TemperatureSeries returns the temperature readings of station on or after
// cutoff. Observations without a temperature are skipped.
func TemperatureSeries(obs []types.Observation, station, cutoff string) []types.TemperatureObservation {
	out := make([]types.TemperatureObservation, 0)
	for _, o := range obs {
		if o.Station != station || o.Date < cutoff || o.TOBS == nil {
			continue
		}
		out = append(out, types.TemperatureObservation{Station: o.Station, Date: o.Date, TOBS: *o.TOBS})
	}
	return out
}

// SummarizeTemperatures reports min, max and mean temperature over obs,
// ignoring observations without a temperature. Station is taken from the
// first observation that contributes. The mean is rounded half away from
// zero to one decimal and kept within [TMin, TMax].
func SummarizeTemperatures(obs []types.Observation) (types.TemperatureSummary, error) {
	var (
		sum     float64
		n       int
		summary types.TemperatureSummary
	)
	for _, o := range obs {
		if o.TOBS == nil {
			continue
		}
		t := *o.TOBS
		if n == 0 {
			summary.Station = o.Station
			summary.TMin, summary.TMax = t, t
		}
		summary.TMin = math.Min(summary.TMin, t)
		summary.TMax = math.Max(summary.TMax, t)
		sum += t
		n++
	}
	if n == 0 {
		return types.TemperatureSummary{}, types.ErrNoDataInRange
	}
	avg := roundTenths(sum / float64(n))
	summary.TAvg = math.Min(math.Max(avg, summary.TMin), summary.TMax)
	return summary, nil
}

func roundTenths(v float64) float64 {
	return math.Round(v*10) / 10
}
