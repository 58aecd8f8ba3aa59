package forecast

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/yanqian/cwa-weatherboard/pkg/jsonx"
	"github.com/yanqian/cwa-weatherboard/pkg/util"
)

// ErrNoRecords means the payload lacks records.location.
var ErrNoRecords = errors.New("payload has no records.location")

type document struct {
	Records *struct {
		Location *[]locationWire `json:"location"`
	} `json:"records"`
}

type locationWire struct {
	LocationName   *string        `json:"locationName"`
	WeatherElement *[]elementWire `json:"weatherElement"`
}

type elementWire struct {
	ElementName *string     `json:"elementName"`
	Time        *[]timeWire `json:"time"`
}

type timeWire struct {
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Parameter *struct {
		ParameterName jsonx.Value `json:"parameterName"`
	} `json:"parameter"`
}

type periodKey struct {
	start, end string
}

func (k periodKey) String() string { return k.start + "-" + k.end }

// Aggregate turns an F-C0032-001 document into per-location forecasts
// holding at most maxPeriods earliest periods, ordered by preferred.
func Aggregate(doc []byte, maxPeriods int, preferred []string, loc *time.Location) ([]LocationForecast, error) {
	var raw document
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("decode forecast payload: %w", err)
	}
	if raw.Records == nil || raw.Records.Location == nil {
		return nil, ErrNoRecords
	}

	results := make([]LocationForecast, 0, len(*raw.Records.Location))
	for i, l := range *raw.Records.Location {
		lf, err := aggregateLocation(l, maxPeriods, loc)
		if err != nil {
			return nil, fmt.Errorf("location %d: %w", i, err)
		}
		results = append(results, lf)
	}

	SortByPreference(results, preferred)
	return results, nil
}

func aggregateLocation(l locationWire, maxPeriods int, loc *time.Location) (LocationForecast, error) {
	if l.LocationName == nil {
		return LocationForecast{}, errors.New("missing locationName")
	}
	if l.WeatherElement == nil {
		return LocationForecast{}, fmt.Errorf("%s: missing weatherElement", *l.LocationName)
	}

	periods := make(map[periodKey]*Period)
	for _, el := range *l.WeatherElement {
		if el.ElementName == nil || el.Time == nil {
			return LocationForecast{}, fmt.Errorf("%s: element missing elementName or time", *l.LocationName)
		}
		for _, tw := range *el.Time {
			if tw.StartTime == nil || tw.EndTime == nil || tw.Parameter == nil || tw.Parameter.ParameterName.Absent() {
				return LocationForecast{}, fmt.Errorf("%s/%s: incomplete time entry", *l.LocationName, *el.ElementName)
			}
			key := periodKey{start: *tw.StartTime, end: *tw.EndTime}
			p, ok := periods[key]
			if !ok {
				p = &Period{StartTime: key.start, EndTime: key.end, Data: make(map[string]string)}
				periods[key] = p
			}
			p.Data[*el.ElementName] = tw.Parameter.ParameterName.Text()
		}
	}

	ordered := make([]*Period, 0, len(periods))
	for _, p := range periods {
		ordered = append(ordered, p)
	}
	sortPeriods(ordered, loc)

	if maxPeriods > 0 && len(ordered) > maxPeriods {
		ordered = ordered[:maxPeriods]
	}
	forecasts := make([]Period, 0, len(ordered))
	for _, p := range ordered {
		forecasts = append(forecasts, *p)
	}
	return LocationForecast{LocationName: *l.LocationName, Forecasts: forecasts}, nil
}

// sortPeriods orders chronologically by (start, end). When any timestamp of
// the location fails to parse, every period falls back to raw key order,
// which is only chronological for fixed-width zero-padded timestamps.
func sortPeriods(periods []*Period, loc *time.Location) {
	allParsed := true
	for _, p := range periods {
		start, errS := util.ParseLocal(p.StartTime, loc)
		end, errE := util.ParseLocal(p.EndTime, loc)
		if errS != nil || errE != nil {
			allParsed = false
			continue
		}
		p.start, p.end = start, end
	}

	sort.SliceStable(periods, func(i, j int) bool {
		a, b := periods[i], periods[j]
		if allParsed {
			if !a.start.Equal(b.start) {
				return a.start.Before(b.start)
			}
			if !a.end.Equal(b.end) {
				return a.end.Before(b.end)
			}
		}
		return periodKey{a.StartTime, a.EndTime}.String() < periodKey{b.StartTime, b.EndTime}.String()
	})
}

// SortByPreference orders locations by their index in preferred; unlisted
// locations follow all listed ones, alphabetically.
func SortByPreference(locations []LocationForecast, preferred []string) {
	rank := make(map[string]int, len(preferred))
	for i, name := range preferred {
		if _, dup := rank[name]; !dup {
			rank[name] = i
		}
	}
	indexOf := func(name string) int {
		if i, ok := rank[name]; ok {
			return i
		}
		return len(preferred)
	}

	sort.SliceStable(locations, func(i, j int) bool {
		a, b := indexOf(locations[i].LocationName), indexOf(locations[j].LocationName)
		if a != b {
			return a < b
		}
		return locations[i].LocationName < locations[j].LocationName
	})
}
