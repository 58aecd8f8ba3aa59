// Package imagery derives the latest CWA radar and satellite image links.
// CWA publishes both products every ten minutes with some delay, so the
// links point at the newest frame that is expected to exist.
package imagery

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	DefaultRadarURLTemplate     = "https://www.cwa.gov.tw/Data/radar/CV1_3600_%s.png"
	DefaultSatelliteURLTemplate = "https://www.cwa.gov.tw/Data/satellite/LCC_TRGB_2750/LCC_TRGB_2750-%s.jpg"

	radarLead       = 10 * time.Minute
	satelliteLead   = 20 * time.Minute
	radarLayout     = "200601021504"
	satelliteLayout = "2006-01-02-15-04"
)

// Links are the derived image URLs and the frame times they refer to.
type Links struct {
	RadarURL      string    `json:"radarUrl"`
	SatelliteURL  string    `json:"satelliteUrl"`
	RadarTime     time.Time `json:"radarTime"`
	SatelliteTime time.Time `json:"satelliteTime"`
}

// Config wires runtime settings for imagery derivation.
type Config struct {
	RadarURLTemplate     string
	SatelliteURLTemplate string
	Location             *time.Location
}

// Frame subtracts lead from now and floors the result to a ten minute mark.
// Seconds and below are zeroed.
func Frame(now time.Time, lead time.Duration) time.Time {
	t := now.Add(-lead)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute()-t.Minute()%10, 0, 0, t.Location())
}

// Derive computes the image links for now, which must already be in the
// civil timezone the image names use.
func Derive(now time.Time, radarTemplate, satelliteTemplate string) Links {
	radar := Frame(now, radarLead)
	satellite := Frame(now, satelliteLead)
	return Links{
		RadarURL:      fmt.Sprintf(radarTemplate, radar.Format(radarLayout)),
		SatelliteURL:  fmt.Sprintf(satelliteTemplate, satellite.Format(satelliteLayout)),
		RadarTime:     radar,
		SatelliteTime: satellite,
	}
}

// Service derives links for the current instant.
type Service interface {
	Current() Links
}

type service struct {
	cfg   Config
	clock clockwork.Clock
}

// NewService wires up imagery derivation.
func NewService(cfg Config, clock clockwork.Clock) Service {
	if cfg.RadarURLTemplate == "" {
		cfg.RadarURLTemplate = DefaultRadarURLTemplate
	}
	if cfg.SatelliteURLTemplate == "" {
		cfg.SatelliteURLTemplate = DefaultSatelliteURLTemplate
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &service{cfg: cfg, clock: clock}
}

func (s *service) Current() Links {
	return Derive(s.clock.Now().In(s.cfg.Location), s.cfg.RadarURLTemplate, s.cfg.SatelliteURLTemplate)
}
