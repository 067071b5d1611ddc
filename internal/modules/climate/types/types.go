package types

// DateLayout is the only accepted calendar date format, for store values and
// request parameters alike. Dates in this layout sort lexically.
const DateLayout = "2006-01-02"

// Observation is one station's reading on a given date. Either measurement
// may be missing in the source data.
type Observation struct {
	Station string
	Date    string
	Prcp    *float64
	TOBS    *float64
}

// Station metadata. Only Station is used by the queries.
type Station struct {
	Station   string
	Name      *string
	Latitude  *float64
	Longitude *float64
	Elevation *float64
}

type Precipitation struct {
	Date string   `json:"date"`
	Prcp *float64 `json:"prcp"`
}

type TemperatureObservation struct {
	Station string  `json:"station"`
	Date    string  `json:"date"`
	TOBS    float64 `json:"tobs"`
}

type TemperatureSummary struct {
	Station string  `json:"station"`
	TMin    float64 `json:"tmin"`
	TMax    float64 `json:"tmax"`
	TAvg    float64 `json:"tavg"`
}
