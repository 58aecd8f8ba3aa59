package forecast

import "time"

// Period is one forecast time window with the element values merged into it.
type Period struct {
	StartTime string            `json:"startTime"`
	EndTime   string            `json:"endTime"`
	Data      map[string]string `json:"data"`

	start, end time.Time
}

// LocationForecast holds the earliest periods for a single county or city.
type LocationForecast struct {
	LocationName string   `json:"locationName"`
	Forecasts    []Period `json:"forecasts"`
}

// Query narrows an aggregation request.
type Query struct {
	LocationNames []string
}

// Config wires runtime settings for the forecast domain.
type Config struct {
	Dataset        string
	Timeout        time.Duration
	Elements       []string
	MaxPeriods     int
	PreferredOrder []string
	Location       *time.Location
}
