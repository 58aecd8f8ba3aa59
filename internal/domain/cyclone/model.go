package cyclone

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const (
	// NotAvailable is the upstream placeholder for a missing reading.
	NotAvailable = "N/A"
	// UnknownName is used when a storm carries no typhoonName.
	UnknownName = "未知熱帶氣旋"
)

// Measure is an integer reading that may be explicitly unavailable.
// The zero value is an available reading of 0.
type Measure struct {
	value       int
	unavailable bool
}

// Value builds an available reading.
func Value(v int) Measure { return Measure{value: v} }

// Unavailable is the sentinel reading.
var Unavailable = Measure{unavailable: true}

// Int returns the reading and whether it is available.
func (m Measure) Int() (int, bool) {
	if m.unavailable {
		return 0, false
	}
	return m.value, true
}

func (m Measure) Available() bool { return !m.unavailable }

func (m Measure) String() string {
	if m.unavailable {
		return NotAvailable
	}
	return strconv.Itoa(m.value)
}

// MarshalJSON writes a number, or "N/A" for the sentinel.
func (m Measure) MarshalJSON() ([]byte, error) {
	if m.unavailable {
		return json.Marshal(NotAvailable)
	}
	return []byte(strconv.Itoa(m.value)), nil
}

// UnmarshalJSON accepts what MarshalJSON writes.
func (m *Measure) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != NotAvailable {
			return fmt.Errorf("cyclone: unexpected measure %q", s)
		}
		*m = Unavailable
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Value(v)
	return nil
}

// Fix is an analysed position and intensity of a storm.
type Fix struct {
	Time              string         `json:"time"`
	Latitude          float64        `json:"latitude"`
	Longitude         float64        `json:"longitude"`
	MaxWindSpeed      Measure        `json:"maxWindSpeed"`
	MaxGustSpeed      Measure        `json:"maxGustSpeed"`
	Pressure          Measure        `json:"pressure"`
	MovingSpeed       Measure        `json:"movingSpeed"`
	MovingDirection   string         `json:"movingDirection"`
	Radius15Ms        Measure        `json:"radius15Ms"`
	QuadrantRadii15Ms map[string]int `json:"quadrantRadii15Ms"`
}

// ForecastFix is a predicted position and intensity of a storm.
type ForecastFix struct {
	ForecastTime string  `json:"forecastTime"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	MaxWindSpeed Measure `json:"maxWindSpeed"`
	Pressure     Measure `json:"pressure"`
	Radius15Ms   Measure `json:"radius15Ms"`
}

// Typhoon is one storm with its analysis track and forecast points, both in
// upstream order.
type Typhoon struct {
	TyphoonName    string        `json:"typhoonName"`
	Year           string        `json:"year"`
	AnalysisFixes  []Fix         `json:"analysisFixes"`
	ForecastPoints []ForecastFix `json:"forecastPoints"`
}

// PointError describes one fix point dropped during reconstruction.
type PointError struct {
	Storm string
	Kind  string // "analysis" or "forecast"
	Time  string
	Err   error
}

func (e PointError) Error() string {
	return fmt.Sprintf("%s %s point %q: %v", e.Storm, e.Kind, e.Time, e.Err)
}

func (e PointError) Unwrap() error { return e.Err }

// Stats summarises a reconstruction run.
type Stats struct {
	Storms   int
	Analysis int
	Forecast int
	Failures []PointError
}

// Config wires runtime settings for the cyclone domain.
type Config struct {
	Dataset string
	Timeout time.Duration
}
