package imagery

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taipei = time.FixedZone("Asia/Taipei", 8*60*60)

func TestDerive(t *testing.T) {
	now := time.Date(2024, 7, 1, 14, 37, 42, 500, taipei)
	links := Derive(now, DefaultRadarURLTemplate, DefaultSatelliteURLTemplate)

	assert.Equal(t, "https://www.cwa.gov.tw/Data/radar/CV1_3600_202407011420.png", links.RadarURL)
	assert.Equal(t, "https://www.cwa.gov.tw/Data/satellite/LCC_TRGB_2750/LCC_TRGB_2750-2024-07-01-14-10.jpg", links.SatelliteURL)
	assert.Equal(t, time.Date(2024, 7, 1, 14, 20, 0, 0, taipei), links.RadarTime)
	assert.Equal(t, time.Date(2024, 7, 1, 14, 10, 0, 0, taipei), links.SatelliteTime)
}

func TestFrameCrossesMidnight(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 5, 0, 0, taipei)
	assert.Equal(t, time.Date(2023, 12, 31, 23, 50, 0, 0, taipei), Frame(now, radarLead))
	assert.Equal(t, time.Date(2023, 12, 31, 23, 40, 0, 0, taipei), Frame(now, satelliteLead))
}

func TestFrameOnBoundary(t *testing.T) {
	now := time.Date(2024, 7, 1, 14, 30, 0, 0, taipei)
	assert.Equal(t, time.Date(2024, 7, 1, 14, 20, 0, 0, taipei), Frame(now, radarLead))
	assert.Equal(t, time.Date(2024, 7, 1, 14, 10, 0, 0, taipei), Frame(now, satelliteLead))
}

func TestFrameIsAlignedAndBehindNow(t *testing.T) {
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, taipei)
	for i := 0; i < 24*60; i += 7 {
		now := start.Add(time.Duration(i)*time.Minute + 13*time.Second)
		for _, lead := range []time.Duration{radarLead, satelliteLead} {
			f := Frame(now, lead)
			require.Zero(t, f.Minute()%10)
			require.Zero(t, f.Second())
			require.False(t, f.After(now.Add(-lead)))
			require.True(t, now.Add(-lead).Sub(f) < 10*time.Minute)
		}
	}
}

func TestServiceUsesClockInLocation(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 7, 1, 6, 37, 0, 0, time.UTC)) // 14:37 in Taipei
	svc := NewService(Config{
		RadarURLTemplate: "https://example.test/radar/%s.png",
		Location:         taipei,
	}, clock)

	links := svc.Current()
	assert.Equal(t, "https://example.test/radar/202407011420.png", links.RadarURL)
	assert.Equal(t, "https://www.cwa.gov.tw/Data/satellite/LCC_TRGB_2750/LCC_TRGB_2750-2024-07-01-14-10.jpg", links.SatelliteURL)

	clock.Advance(10 * time.Minute)
	assert.Equal(t, "https://example.test/radar/202407011430.png", svc.Current().RadarURL)
}
