package cyclone

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang/geo/s2"

	"github.com/yanqian/cwa-weatherboard/pkg/jsonx"
)

// ErrNoCyclones means the payload lacks records.tropicalCyclones.tropicalCyclone,
// which upstream does whenever no storm is active.
var ErrNoCyclones = errors.New("payload has no records.tropicalCyclones.tropicalCyclone")

const defaultCoordinate = "0,0"

type document struct {
	Records *struct {
		TropicalCyclones *struct {
			TropicalCyclone *[]json.RawMessage `json:"tropicalCyclone"`
		} `json:"tropicalCyclones"`
	} `json:"records"`
}

type stormWire struct {
	TyphoonName  jsonx.Value `json:"typhoonName"`
	Year         jsonx.Value `json:"year"`
	AnalysisData *fixList    `json:"analysisData"`
	ForecastData *fixList    `json:"forecastData"`
}

type fixList struct {
	Fix []json.RawMessage `json:"fix"`
}

type fixWire struct {
	FixTime         jsonx.Value `json:"fixTime"`
	Coordinate      jsonx.Value `json:"coordinate"`
	MaxWindSpeed    jsonx.Value `json:"maxWindSpeed"`
	MaxGustSpeed    jsonx.Value `json:"maxGustSpeed"`
	Pressure        jsonx.Value `json:"pressure"`
	MovingSpeed     jsonx.Value `json:"movingSpeed"`
	MovingDirection jsonx.Value `json:"movingDirection"`
	CircleOf15Ms    *circleWire `json:"circleOf15Ms"`
}

type circleWire struct {
	Radius        jsonx.Value `json:"radius"`
	QuadrantRadii *struct {
		Radius []struct {
			Dir   jsonx.Value `json:"dir"`
			Value jsonx.Value `json:"value"`
		} `json:"radius"`
	} `json:"quadrantRadii"`
}

func (c *circleWire) radius() jsonx.Value {
	if c == nil {
		return jsonx.Value{}
	}
	return c.Radius
}

// Reconstruct turns a W-C0034-005 document into storm tracks. A fix point
// that fails to parse is dropped and reported in Stats.Failures; it never
// affects its siblings or the enclosing storm.
func Reconstruct(doc []byte) ([]Typhoon, Stats, error) {
	var stats Stats

	var raw document
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, stats, fmt.Errorf("decode cyclone payload: %w", err)
	}
	if raw.Records == nil || raw.Records.TropicalCyclones == nil || raw.Records.TropicalCyclones.TropicalCyclone == nil {
		return nil, stats, ErrNoCyclones
	}

	storms := *raw.Records.TropicalCyclones.TropicalCyclone
	typhoons := make([]Typhoon, 0, len(storms))
	for i, rs := range storms {
		var sw stormWire
		if err := json.Unmarshal(rs, &sw); err != nil {
			return nil, stats, fmt.Errorf("storm %d: %w", i, err)
		}
		stats.Storms++

		t := Typhoon{
			TyphoonName:    sw.TyphoonName.StringOr(UnknownName),
			Year:           sw.Year.StringOr(NotAvailable),
			AnalysisFixes:  []Fix{},
			ForecastPoints: []ForecastFix{},
		}

		if sw.AnalysisData != nil {
			for _, rf := range sw.AnalysisData.Fix {
				fix, fixTime, err := parseAnalysisFix(rf)
				if err != nil {
					stats.Failures = append(stats.Failures, PointError{Storm: t.TyphoonName, Kind: "analysis", Time: fixTime, Err: err})
					continue
				}
				t.AnalysisFixes = append(t.AnalysisFixes, fix)
				stats.Analysis++
			}
		}
		if sw.ForecastData != nil {
			for _, rf := range sw.ForecastData.Fix {
				fix, fixTime, err := parseForecastFix(rf)
				if err != nil {
					stats.Failures = append(stats.Failures, PointError{Storm: t.TyphoonName, Kind: "forecast", Time: fixTime, Err: err})
					continue
				}
				t.ForecastPoints = append(t.ForecastPoints, fix)
				stats.Forecast++
			}
		}

		typhoons = append(typhoons, t)
	}
	return typhoons, stats, nil
}

func decodeFix(rf json.RawMessage) (fixWire, string, error) {
	var fw fixWire
	if err := json.Unmarshal(rf, &fw); err != nil {
		return fw, "", err
	}
	return fw, fw.FixTime.StringOr(""), nil
}

func parseAnalysisFix(rf json.RawMessage) (Fix, string, error) {
	fw, fixTime, err := decodeFix(rf)
	if err != nil {
		return Fix{}, fixTime, err
	}

	lon, lat, err := ParseCoordinate(fw.Coordinate)
	if err != nil {
		return Fix{}, fixTime, err
	}
	quadrants, err := parseQuadrants(fw.CircleOf15Ms)
	if err != nil {
		return Fix{}, fixTime, err
	}

	fix := Fix{
		Time:              fixTime,
		Latitude:          lat,
		Longitude:         lon,
		MovingDirection:   fw.MovingDirection.StringOr(NotAvailable),
		QuadrantRadii15Ms: quadrants,
	}
	fields := []struct {
		name string
		in   jsonx.Value
		out  *Measure
	}{
		{"maxWindSpeed", fw.MaxWindSpeed, &fix.MaxWindSpeed},
		{"maxGustSpeed", fw.MaxGustSpeed, &fix.MaxGustSpeed},
		{"pressure", fw.Pressure, &fix.Pressure},
		{"movingSpeed", fw.MovingSpeed, &fix.MovingSpeed},
		{"circleOf15Ms.radius", fw.CircleOf15Ms.radius(), &fix.Radius15Ms},
	}
	for _, f := range fields {
		if *f.out, err = ParseMeasure(f.in); err != nil {
			return Fix{}, fixTime, fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return fix, fixTime, nil
}

func parseForecastFix(rf json.RawMessage) (ForecastFix, string, error) {
	fw, fixTime, err := decodeFix(rf)
	if err != nil {
		return ForecastFix{}, fixTime, err
	}

	lon, lat, err := ParseCoordinate(fw.Coordinate)
	if err != nil {
		return ForecastFix{}, fixTime, err
	}

	fix := ForecastFix{ForecastTime: fixTime, Latitude: lat, Longitude: lon}
	if fix.Radius15Ms, err = ParseMeasure(fw.CircleOf15Ms.radius()); err != nil {
		return ForecastFix{}, fixTime, fmt.Errorf("circleOf15Ms.radius: %w", err)
	}
	if fix.MaxWindSpeed, err = ParseMeasure(fw.MaxWindSpeed); err != nil {
		return ForecastFix{}, fixTime, fmt.Errorf("maxWindSpeed: %w", err)
	}
	if fix.Pressure, err = ParseMeasure(fw.Pressure); err != nil {
		return ForecastFix{}, fixTime, fmt.Errorf("pressure: %w", err)
	}
	return fix, fixTime, nil
}

// ParseCoordinate decodes an upstream "lon,lat" string. An absent value
// decodes as 0,0. Out of range positions are rejected.
func ParseCoordinate(v jsonx.Value) (lon, lat float64, err error) {
	text := defaultCoordinate
	if !v.Absent() {
		if !v.IsString() {
			return 0, 0, errors.New("coordinate is not a string")
		}
		text = v.Text()
	}

	lonStr, latStr, ok := strings.Cut(text, ",")
	if !ok || strings.Contains(latStr, ",") {
		return 0, 0, fmt.Errorf("coordinate %q is not lon,lat", text)
	}
	if lon, err = strconv.ParseFloat(strings.TrimSpace(lonStr), 64); err != nil {
		return 0, 0, fmt.Errorf("coordinate longitude: %w", err)
	}
	if lat, err = strconv.ParseFloat(strings.TrimSpace(latStr), 64); err != nil {
		return 0, 0, fmt.Errorf("coordinate latitude: %w", err)
	}
	if !s2.LatLngFromDegrees(lat, lon).IsValid() {
		return 0, 0, fmt.Errorf("coordinate %q out of range", text)
	}
	return lon, lat, nil
}

// ParseMeasure decodes a numeric reading. The sentinel stays unavailable,
// an absent value is 0, numbers and numeric strings are truncated to int.
func ParseMeasure(v jsonx.Value) (Measure, error) {
	switch v.Kind() {
	case jsonx.KindAbsent:
		return Value(0), nil
	case jsonx.KindString:
		if v.Text() == NotAvailable {
			return Unavailable, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v.Text()))
		if err != nil {
			return Measure{}, fmt.Errorf("%q is not an integer", v.Text())
		}
		return Value(n), nil
	case jsonx.KindNumber:
		if n, err := strconv.Atoi(v.Text()); err == nil {
			return Value(n), nil
		}
		f, err := strconv.ParseFloat(v.Text(), 64)
		if err != nil || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
			return Measure{}, fmt.Errorf("%s is not a usable number", v.Text())
		}
		return Value(int(f)), nil
	default:
		return Measure{}, fmt.Errorf("unexpected %s value", kindName(v.Kind()))
	}
}

func parseQuadrants(c *circleWire) (map[string]int, error) {
	out := make(map[string]int)
	if c == nil || c.QuadrantRadii == nil {
		return out, nil
	}
	for _, qr := range c.QuadrantRadii.Radius {
		if !qr.Dir.Present() || !qr.Value.Present() || qr.Value.Equals(NotAvailable) {
			continue
		}
		m, err := ParseMeasure(qr.Value)
		if err != nil {
			return nil, fmt.Errorf("quadrant %s: %w", qr.Dir.Text(), err)
		}
		n, _ := m.Int()
		out[qr.Dir.Text()] = n
	}
	return out, nil
}

func kindName(k jsonx.Kind) string {
	switch k {
	case jsonx.KindNull:
		return "null"
	case jsonx.KindBool:
		return "boolean"
	default:
		return "non-scalar"
	}
}
