package alert

import (
	"encoding/json"
	"fmt"
	"time"
)

// Severity ranks how prominently an alert is displayed.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityYellow
	SeverityOrange
	// SeverityRed is part of the ordering but no classification rule emits it yet.
	SeverityRed
)

var severityNames = map[Severity]string{
	SeverityUnknown: "unknown",
	SeverityYellow:  "yellow",
	SeverityOrange:  "orange",
	SeverityRed:     "red",
}

// Rank is the sort weight: red 3, orange 2, yellow 1, anything else 0.
func (s Severity) Rank() int {
	if _, ok := severityNames[s]; !ok {
		return 0
	}
	return int(s)
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return severityNames[SeverityUnknown]
}

// MarshalJSON writes the severity as its colour name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the colour names produced by MarshalJSON.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for sev, n := range severityNames {
		if n == name {
			*s = sev
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", name)
}

// Alert is a hazard announcement active at the time of the request.
type Alert struct {
	IssueTime string   `json:"issueTime"`
	Title     string   `json:"title"`
	Info      string   `json:"info"`
	Severity  Severity `json:"severity"`

	start time.Time
}

// Stats summarizes what happened to the upstream hazards during normalization.
type Stats struct {
	Locations     int
	Hazards       int
	MissingFields int
	BadTimestamp  int
	Inactive      int
	Active        int
}

// Config wires runtime settings for the alert domain.
type Config struct {
	Dataset  string
	Timeout  time.Duration
	Location *time.Location
}
