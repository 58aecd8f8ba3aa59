package alert

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yanqian/cwa-weatherboard/pkg/jsonx"
	"github.com/yanqian/cwa-weatherboard/pkg/util"
)

const significanceWarning = "特報"

// escalatingPhenomena lift a warning-level hazard from yellow to orange.
var escalatingPhenomena = []string{"豪雨", "陸上強風"}

// ErrNoRecords means the payload lacks records.location.
var ErrNoRecords = errors.New("payload has no records.location")

type document struct {
	Records *struct {
		Location []json.RawMessage `json:"location"`
	} `json:"records"`
}

type locationWire struct {
	LocationName     jsonx.Value `json:"locationName"`
	HazardConditions *struct {
		Hazards []json.RawMessage `json:"hazards"`
	} `json:"hazardConditions"`
}

type hazardWire struct {
	Info struct {
		Phenomena    jsonx.Value `json:"phenomena"`
		Significance jsonx.Value `json:"significance"`
	} `json:"info"`
	ValidTime struct {
		StartTime jsonx.Value `json:"startTime"`
		EndTime   jsonx.Value `json:"endTime"`
	} `json:"validTime"`
}

// Normalize extracts the hazards active at now from a W-C0033-001 document.
// Bad hazards are skipped and counted in Stats; only a missing or
// undecodable records.location path is returned as an error.
func Normalize(doc []byte, now time.Time, loc *time.Location) ([]Alert, Stats, error) {
	var stats Stats

	var raw document
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, stats, fmt.Errorf("decode alert payload: %w", err)
	}
	if raw.Records == nil || raw.Records.Location == nil {
		return nil, stats, ErrNoRecords
	}

	alerts := make([]Alert, 0)
	for _, rawLoc := range raw.Records.Location {
		stats.Locations++
		var location locationWire
		if err := json.Unmarshal(rawLoc, &location); err != nil || location.HazardConditions == nil {
			continue
		}
		for _, rawHazard := range location.HazardConditions.Hazards {
			stats.Hazards++
			alert, ok := normalizeHazard(location.LocationName, rawHazard, now, loc, &stats)
			if !ok {
				continue
			}
			alerts = append(alerts, alert)
		}
	}

	sortAlerts(alerts)
	stats.Active = len(alerts)
	return alerts, stats, nil
}

func normalizeHazard(locationName jsonx.Value, data json.RawMessage, now time.Time, loc *time.Location, stats *Stats) (Alert, bool) {
	var hazard hazardWire
	if err := json.Unmarshal(data, &hazard); err != nil {
		stats.MissingFields++
		return Alert{}, false
	}

	fields := []jsonx.Value{
		locationName,
		hazard.Info.Phenomena,
		hazard.Info.Significance,
		hazard.ValidTime.StartTime,
		hazard.ValidTime.EndTime,
	}
	for _, f := range fields {
		if !f.Present() {
			stats.MissingFields++
			return Alert{}, false
		}
	}

	startText := hazard.ValidTime.StartTime.Text()
	endText := hazard.ValidTime.EndTime.Text()
	start, errStart := parseTimestamp(hazard.ValidTime.StartTime, loc)
	end, errEnd := parseTimestamp(hazard.ValidTime.EndTime, loc)
	if errStart != nil || errEnd != nil {
		stats.BadTimestamp++
		return Alert{}, false
	}
	if !IsActive(start, end, now) {
		stats.Inactive++
		return Alert{}, false
	}

	name := locationName.Text()
	phenomena := hazard.Info.Phenomena.Text()
	significance := hazard.Info.Significance.Text()

	return Alert{
		IssueTime: startText,
		Title:     fmt.Sprintf("%s - %s%s", name, phenomena, significance),
		Info: fmt.Sprintf("發布對象：%s\n現象：%s\n等級：%s\n生效時間：%s\n結束時間：%s",
			name, phenomena, significance, startText, endText),
		Severity: Classify(phenomena, significance),
		start:    start,
	}, true
}

func parseTimestamp(v jsonx.Value, loc *time.Location) (time.Time, error) {
	if !v.IsString() {
		return time.Time{}, errors.New("timestamp is not a string")
	}
	return util.ParseLocal(v.Text(), loc)
}

// IsActive reports whether now falls in the half-open window [start, end).
func IsActive(start, end, now time.Time) bool {
	return !now.Before(start) && now.Before(end)
}

// Classify maps a hazard to its display severity.
func Classify(phenomena, significance string) Severity {
	if significance == significanceWarning {
		for _, p := range escalatingPhenomena {
			if strings.Contains(phenomena, p) {
				return SeverityOrange
			}
		}
	}
	return SeverityYellow
}

// sortAlerts orders by severity then issue time, both descending. Issue
// times compare as instants; equal instants fall back to the raw string.
func sortAlerts(alerts []Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if !a.start.Equal(b.start) {
			return a.start.After(b.start)
		}
		return a.IssueTime > b.IssueTime
	})
}
