package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fakhrymubarak/weather-stripes/internal/config"
	"github.com/fakhrymubarak/weather-stripes/internal/model"
	"github.com/fakhrymubarak/weather-stripes/internal/redis"
	redisv9 "github.com/redis/go-redis/v9"
)

// Custom error types
var (
	ErrCityNotFound   = errors.New("city not found")
	ErrExternalAPI    = errors.New("external API error")
	ErrMissingReading = errors.New("reading not available")
)

const dateLayout = "2006-01-02"

// Cache is the subset of the Redis client the repository needs.
type Cache interface {
	Get(ctx context.Context, key string) *redisv9.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisv9.StatusCmd
}

// OpenMeteoRepository defines access to the Open-Meteo geocoding, archive and forecast APIs.
type OpenMeteoRepository interface {
	Geocode(ctx context.Context, city string) (*model.Location, error)
	HourlyArchive(ctx context.Context, coord model.Coordinate, day time.Time, metric string) (*model.HourlySeries, error)
	HourlyForecast(ctx context.Context, coord model.Coordinate, today time.Time, metric string, days int) (*model.HourlySeries, error)
}

type openMeteoRepository struct {
	cache      Cache
	httpClient *http.Client

	geocodingURL string
	archiveURL   string
	forecastURL  string
	timezone     string
	apiKey       string
}

// NewOpenMeteoRepository creates a repository backed by the shared Redis client.
// An optional http.Client replaces the default one (tests inject mocks here).
func NewOpenMeteoRepository(httpClient ...*http.Client) OpenMeteoRepository {
	client := &http.Client{Timeout: config.GetHTTPTimeout()}
	if len(httpClient) > 0 && httpClient[0] != nil {
		client = httpClient[0]
	}
	return &openMeteoRepository{
		cache:        redis.GetClient(),
		httpClient:   client,
		geocodingURL: config.GetGeocodingURL(),
		archiveURL:   config.GetArchiveURL(),
		forecastURL:  config.GetForecastURL(),
		timezone:     config.GetTimezone(),
		apiKey:       config.GetOpenMeteoAPIKey(),
	}
}

// Geocode resolves a city name to the first matching location.
func (r *openMeteoRepository) Geocode(ctx context.Context, city string) (*model.Location, error) {
	name := strings.TrimSpace(city)
	if name == "" {
		return nil, fmt.Errorf("%w: empty city name", ErrCityNotFound)
	}

	cacheKey := "geocode:" + strings.ToLower(name)
	var loc model.Location
	if r.getFromCache(ctx, cacheKey, &loc) {
		return &loc, nil
	}

	q := url.Values{}
	q.Set("name", name)
	q.Set("count", "1")

	var data model.GeocodingResponse
	if err := r.fetchJSON(ctx, r.geocodingURL, q, &data); err != nil {
		return nil, err
	}
	if len(data.Results) == 0 {
		return nil, fmt.Errorf("%w: no coordinates found for city: %s", ErrCityNotFound, name)
	}

	first := data.Results[0]
	loc = model.Location{
		Name:     first.Name,
		Country:  first.Country,
		Timezone: first.Timezone,
		Coordinate: model.Coordinate{
			Latitude:  first.Latitude,
			Longitude: first.Longitude,
		},
	}
	r.setCache(ctx, cacheKey, loc, config.GetCacheExpiration("geocode_expiration"))
	return &loc, nil
}

// HourlyArchive returns one day of hourly historical values.
func (r *openMeteoRepository) HourlyArchive(ctx context.Context, coord model.Coordinate, day time.Time, metric string) (*model.HourlySeries, error) {
	date := day.Format(dateLayout)
	cacheKey := fmt.Sprintf("archive:%.4f:%.4f:%s:%s", coord.Latitude, coord.Longitude, date, metric)
	var series model.HourlySeries
	if r.getFromCache(ctx, cacheKey, &series) {
		return &series, nil
	}

	q := r.coordinateQuery(coord, metric)
	q.Set("start_date", date)
	q.Set("end_date", date)

	s, err := r.fetchHourly(ctx, r.archiveURL, q, metric)
	if err != nil {
		return nil, err
	}
	r.setCache(ctx, cacheKey, s, config.GetCacheExpiration("archive_expiration"))
	return s, nil
}

// HourlyForecast returns the hourly forecast for the next days, starting today at 00:00.
// today is the city-local date; it keys the cache so a forecast never
// outlives the day it starts on.
func (r *openMeteoRepository) HourlyForecast(ctx context.Context, coord model.Coordinate, today time.Time, metric string, days int) (*model.HourlySeries, error) {
	cacheKey := fmt.Sprintf("forecast:%.4f:%.4f:%s:%s:%d", coord.Latitude, coord.Longitude, today.Format("2006-01-02"), metric, days)
	var series model.HourlySeries
	if r.getFromCache(ctx, cacheKey, &series) {
		return &series, nil
	}

	q := r.coordinateQuery(coord, metric)
	q.Set("forecast_days", strconv.Itoa(days))

	s, err := r.fetchHourly(ctx, r.forecastURL, q, metric)
	if err != nil {
		return nil, err
	}
	r.setCache(ctx, cacheKey, s, config.GetCacheExpiration(""))
	return s, nil
}

func (r *openMeteoRepository) coordinateQuery(coord model.Coordinate, metric string) url.Values {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(coord.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(coord.Longitude, 'f', -1, 64))
	q.Set("hourly", metric)
	if r.timezone != "" {
		q.Set("timezone", r.timezone)
	}
	return q
}

func (r *openMeteoRepository) fetchHourly(ctx context.Context, endpoint string, q url.Values, metric string) (*model.HourlySeries, error) {
	var data model.HourlyResponse
	if err := r.fetchJSON(ctx, endpoint, q, &data); err != nil {
		return nil, err
	}
	values, ok := data.Metric(metric)
	if !ok {
		return nil, fmt.Errorf("%w: response has no hourly %s", ErrMissingReading, metric)
	}
	return &model.HourlySeries{Times: data.Hourly.Time, Values: values}, nil
}

// fetchJSON performs a GET against endpoint and decodes the body into dst.
func (r *openMeteoRepository) fetchJSON(ctx context.Context, endpoint string, q url.Values, dst interface{}) error {
	if r.apiKey != "" {
		q.Set("apikey", r.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExternalAPI, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrExternalAPI, resp.StatusCode, errorReason(resp.Body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrExternalAPI, err)
	}
	return nil
}

// errorReason extracts the "reason" field Open-Meteo puts in error bodies.
func errorReason(body io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(body, 4<<10))
	var apiErr struct {
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Reason != "" {
		return apiErr.Reason
	}
	return strings.TrimSpace(string(raw))
}

// getFromCache decodes a cached value into dst. Any cache error counts as a miss.
func (r *openMeteoRepository) getFromCache(ctx context.Context, key string, dst interface{}) bool {
	if r.cache == nil {
		return false
	}
	val, err := r.cache.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redisv9.Nil) {
			config.GetLogger().Debugw("cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(val), dst); err != nil {
		return false
	}
	return true
}

// setCache stores v as JSON; failures are logged and otherwise ignored.
func (r *openMeteoRepository) setCache(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if r.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, key, b, ttl).Err(); err != nil {
		config.GetLogger().Debugw("cache write failed", "key", key, "error", err)
	}
}
