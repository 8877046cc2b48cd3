package model

import "time"

// Kind selects which widget is rendered.
type Kind string

const (
	KindTemperature Kind = "temperature"
	KindCloudCover  Kind = "cloud"
)

// ParseKind accepts the query/flag spelling of a widget kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "", "temperature", "temp":
		return KindTemperature, true
	case "cloud", "clouds", "cloud_cover":
		return KindCloudCover, true
	}
	return "", false
}

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Location is a resolved geocoding result.
type Location struct {
	Name       string     `json:"name"`
	Country    string     `json:"country,omitempty"`
	Timezone   string     `json:"timezone,omitempty"`
	Coordinate Coordinate `json:"coordinate"`
}

// Sample is one reading. A nil Value means the reading could not be fetched.
type Sample struct {
	Label   string    `json:"label"`
	Year    int       `json:"year,omitempty"`
	Time    time.Time `json:"time"`
	Value   *float64  `json:"value"`
	Current bool      `json:"current,omitempty"`
}

// Series is everything a widget needs to render.
type Series struct {
	City     string   `json:"city"`
	Kind     Kind     `json:"kind"`
	Unit     string   `json:"unit"`
	Location Location `json:"location"`
	Samples  []Sample `json:"samples"`
}
