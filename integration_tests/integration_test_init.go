package integrationtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/fakhrymubarak/weather-stripes/internal/handler"
	"github.com/fakhrymubarak/weather-stripes/internal/middleware"
	"github.com/fakhrymubarak/weather-stripes/internal/model"
	"github.com/fakhrymubarak/weather-stripes/internal/repository"
	"github.com/fakhrymubarak/weather-stripes/internal/service"
)

const currentTemperature = 21.5

// cityZone is the timezone the mock geocoder reports for every city.
var cityZone, _ = time.LoadLocation("Europe/Berlin")

// cityToday is the city-local date that keys cached forecasts.
func cityToday() string {
	return time.Now().In(cityZone).Format("2006-01-02")
}

// upstreamCalls counts requests per Open-Meteo endpoint.
type upstreamCalls struct {
	geocode  atomic.Int32
	archive  atomic.Int32
	forecast atomic.Int32
}

// archiveTemperature is the value the mock archive reports for every hour
// of a day in year.
func archiveTemperature(year int) float64 {
	return float64(year - 2000)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func hourlyBody(metric string, times []string, values []*float64) map[string]interface{} {
	return map[string]interface{}{
		"latitude":  52.52,
		"longitude": 13.41,
		"timezone":  "Europe/Berlin",
		"hourly": map[string]interface{}{
			"time": times,
			metric: values,
		},
	}
}

func hoursFrom(start time.Time, n int) []string {
	times := make([]string, n)
	for h := 0; h < n; h++ {
		times[h] = start.Add(time.Duration(h) * time.Hour).Format("2006-01-02T15:04")
	}
	return times
}

// mockOpenMeteo serves the geocoding, archive and forecast endpoints.
// "Atlantis" has no geocoding result and "Broken" makes geocoding fail.
func mockOpenMeteo(calls *upstreamCalls) *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/search", func(w http.ResponseWriter, r *http.Request) {
		calls.geocode.Add(1)
		switch r.URL.Query().Get("name") {
		case "Atlantis":
			writeJSON(w, http.StatusOK, map[string]interface{}{"generationtime_ms": 0.5})
		case "Broken":
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": true, "reason": "geocoder unavailable"})
		default:
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"results": []map[string]interface{}{{
					"name":      r.URL.Query().Get("name"),
					"latitude":  52.52,
					"longitude": 13.41,
					"country":   "Germany",
					"timezone":  "Europe/Berlin",
				}},
			})
		}
	})

	mux.HandleFunc("/v1/archive", func(w http.ResponseWriter, r *http.Request) {
		calls.archive.Add(1)
		q := r.URL.Query()
		day, err := time.Parse("2006-01-02", q.Get("start_date"))
		if err != nil || q.Get("end_date") != q.Get("start_date") {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": true, "reason": "invalid date"})
			return
		}
		v := archiveTemperature(day.Year())
		values := make([]*float64, 24)
		for h := range values {
			values[h] = &v
		}
		writeJSON(w, http.StatusOK, hourlyBody(q.Get("hourly"), hoursFrom(day, 24), values))
	})

	mux.HandleFunc("/v1/forecast", func(w http.ResponseWriter, r *http.Request) {
		calls.forecast.Add(1)
		q := r.URL.Query()
		days, err := strconv.Atoi(q.Get("forecast_days"))
		if err != nil || days < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": true, "reason": "invalid forecast_days"})
			return
		}
		now := time.Now().In(cityZone)
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		values := make([]*float64, 24*days)
		for h := range values {
			v := currentTemperature
			if q.Get("hourly") == model.MetricCloudCover {
				v = float64(h * 2 % 101)
			}
			values[h] = &v
		}
		writeJSON(w, http.StatusOK, hourlyBody(q.Get("hourly"), hoursFrom(midnight, 24*days), values))
	})

	return httptest.NewServer(mux)
}

// setupIntegrationTestServer wires the real repository, service, handler and
// rate limiter the same way the binary does. Config must already point at
// the mock upstream.
func setupIntegrationTestServer() *httptest.Server {
	repo := repository.NewOpenMeteoRepository()
	svc := service.NewStripeService(repo)
	h := handler.NewWidgetHandler(svc)

	mux := http.NewServeMux()
	mux.Handle("/widget", middleware.RateLimitMiddleware(http.HandlerFunc(h.HandleWidget)))
	mux.HandleFunc("/healthz", h.HandleHealth)
	return httptest.NewServer(mux)
}
