package model

// GeocodingResponse is the body of the Open-Meteo geocoding search endpoint.
type GeocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
		Timezone  string  `json:"timezone"`
	} `json:"results"`
}

// HourlyResponse is the body shared by the archive and forecast endpoints.
// Missing hours come back as JSON null, hence the pointers.
type HourlyResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Hourly    struct {
		Time          []string   `json:"time"`
		Temperature2m []*float64 `json:"temperature_2m"`
		CloudCover    []*float64 `json:"cloud_cover"`
	} `json:"hourly"`
}

// HourlySeries is one hourly metric extracted from an HourlyResponse.
type HourlySeries struct {
	Times  []string   `json:"times"`
	Values []*float64 `json:"values"`
}

// Metric returns the hourly values for name, or false if the body has none.
func (r *HourlyResponse) Metric(name string) ([]*float64, bool) {
	switch name {
	case MetricTemperature:
		return r.Hourly.Temperature2m, r.Hourly.Temperature2m != nil
	case MetricCloudCover:
		return r.Hourly.CloudCover, r.Hourly.CloudCover != nil
	}
	return nil, false
}

const (
	MetricTemperature = "temperature_2m"
	MetricCloudCover  = "cloud_cover"
)
