package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/fakhrymubarak/weather-stripes/internal/config"
	"github.com/fakhrymubarak/weather-stripes/internal/model"
	"github.com/fakhrymubarak/weather-stripes/internal/repository"
	"golang.org/x/sync/errgroup"
)

var ErrUnknownKind = errors.New("unknown widget kind")

const hourLayout = "2006-01-02T15:04"

type StripeServiceInterface interface {
	GetSeries(ctx context.Context, city string, kind model.Kind) (*model.Series, error)
}

// StripeService turns a city name into the samples for one widget.
// Only geocoding failures are returned; every other fetch degrades to a
// sample with a nil value.
type StripeService struct {
	Repo         repository.OpenMeteoRepository
	Now          func() time.Time
	HistoryYears int
	Concurrency  int
	ForecastDays int
}

func NewStripeService(repo ...repository.OpenMeteoRepository) *StripeService {
	var r repository.OpenMeteoRepository
	if len(repo) > 0 && repo[0] != nil {
		r = repo[0]
	} else {
		r = repository.NewOpenMeteoRepository()
	}
	return &StripeService{
		Repo:         r,
		Now:          time.Now,
		HistoryYears: config.GetHistoryYears(),
		Concurrency:  config.GetHistoryConcurrency(),
		ForecastDays: config.GetForecastDays(),
	}
}

func (s *StripeService) GetSeries(ctx context.Context, city string, kind model.Kind) (*model.Series, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	switch kind {
	case model.KindTemperature:
		return s.TemperatureSeries(ctx, city)
	case model.KindCloudCover:
		return s.CloudCoverSeries(ctx, city)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// TemperatureSeries returns the current temperature followed by the
// temperature at the same day and hour in each of the previous years,
// newest first.
func (s *StripeService) TemperatureSeries(ctx context.Context, city string) (*model.Series, error) {
	loc, err := s.Repo.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	now := s.localNow(city, loc)
	years := s.historyYears()
	samples := make([]model.Sample, years+1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency(years))
	for i := 1; i <= years; i++ {
		i := i
		g.Go(func() error {
			samples[i] = s.historicalTemperature(gctx, city, loc.Coordinate, now, now.Year()-i)
			return nil
		})
	}
	_ = g.Wait()

	samples[0] = s.currentTemperature(ctx, city, loc.Coordinate, now)

	return &model.Series{
		City:     city,
		Kind:     model.KindTemperature,
		Unit:     "°C",
		Location: *loc,
		Samples:  samples,
	}, nil
}

func (s *StripeService) historicalTemperature(ctx context.Context, city string, coord model.Coordinate, now time.Time, year int) model.Sample {
	day := sameDayIn(year, now)
	sample := model.Sample{Label: strconv.Itoa(year), Year: year, Time: day}

	series, err := s.Repo.HourlyArchive(ctx, coord, day, model.MetricTemperature)
	if err == nil {
		sample.Value, err = valueAt(series, now.Hour())
	}
	if err != nil {
		config.GetLogger().Warnw("Failed to fetch historical weather data",
			"city", city, "year", year, "date", day.Format("2006-01-02"), "hour", now.Hour(), "error", err)
	}
	return sample
}

// currentTemperature reads the previous hour of today's forecast because the
// current hour is not always populated yet.
func (s *StripeService) currentTemperature(ctx context.Context, city string, coord model.Coordinate, now time.Time) model.Sample {
	hour := now.Hour() - 1
	if hour < 0 {
		hour = 0
	}
	sample := model.Sample{
		Label:   strconv.Itoa(now.Year()),
		Year:    now.Year(),
		Time:    startOfHour(now),
		Current: true,
	}

	series, err := s.Repo.HourlyForecast(ctx, coord, now, model.MetricTemperature, 1)
	if err == nil {
		sample.Value, err = valueAt(series, hour)
	}
	if err != nil {
		config.GetLogger().Warnw("Failed to fetch current weather data", "city", city, "hour", hour, "error", err)
	}
	return sample
}

// CloudCoverSeries returns one sample per forecast hour starting today at
// midnight.
func (s *StripeService) CloudCoverSeries(ctx context.Context, city string) (*model.Series, error) {
	loc, err := s.Repo.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	now := s.localNow(city, loc)
	days := s.forecastDays()
	series := &model.Series{
		City:     city,
		Kind:     model.KindCloudCover,
		Unit:     "%",
		Location: *loc,
	}

	forecast, err := s.Repo.HourlyForecast(ctx, loc.Coordinate, now, model.MetricCloudCover, days)
	if err != nil {
		config.GetLogger().Warnw("Failed to fetch cloud cover forecast", "city", city, "days", days, "error", err)
		series.Samples = placeholderHours(now, days)
		return series, nil
	}

	series.Samples = make([]model.Sample, 0, len(forecast.Times))
	for i, ts := range forecast.Times {
		t, err := time.ParseInLocation(hourLayout, ts, now.Location())
		if err != nil {
			config.GetLogger().Warnw("Skipping unparseable forecast time", "city", city, "time", ts, "error", err)
			continue
		}
		var v *float64
		if i < len(forecast.Values) {
			v = forecast.Values[i]
		}
		series.Samples = append(series.Samples, hourSample(t, v, now))
	}
	return series, nil
}

func placeholderHours(now time.Time, days int) []model.Sample {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	samples := make([]model.Sample, 0, 24*days)
	for h := 0; h < 24*days; h++ {
		samples = append(samples, hourSample(midnight.Add(time.Duration(h)*time.Hour), nil, now))
	}
	return samples
}

func hourSample(t time.Time, v *float64, now time.Time) model.Sample {
	return model.Sample{
		Label:   t.Format("Mon 15:04"),
		Time:    t,
		Value:   v,
		Current: t.Equal(startOfHour(now)),
	}
}

// sameDayIn returns now's month, day and hour in the given year. The 29th of
// February falls back to the 28th in common years.
func sameDayIn(year int, now time.Time) time.Time {
	day := now.Day()
	if last := time.Date(year, now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day(); day > last {
		day = last
	}
	return time.Date(year, now.Month(), day, now.Hour(), 0, 0, 0, now.Location())
}

func startOfHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

func valueAt(series *model.HourlySeries, idx int) (*float64, error) {
	if series == nil || idx < 0 || idx >= len(series.Values) {
		n := 0
		if series != nil {
			n = len(series.Values)
		}
		return nil, fmt.Errorf("%w: hour %d not in %d values", repository.ErrMissingReading, idx, n)
	}
	if series.Values[idx] == nil {
		return nil, fmt.Errorf("%w: hour %d is null", repository.ErrMissingReading, idx)
	}
	return series.Values[idx], nil
}

func (s *StripeService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// localNow returns the current time in the city's timezone, which is the zone
// the hourly arrays are reported in. An unknown zone keeps the process clock.
func (s *StripeService) localNow(city string, loc *model.Location) time.Time {
	now := s.now()
	if loc == nil || loc.Timezone == "" {
		return now
	}
	tz, err := time.LoadLocation(loc.Timezone)
	if err != nil {
		config.GetLogger().Warnw("Unknown city timezone, using process clock",
			"city", city, "timezone", loc.Timezone, "error", err)
		return now
	}
	return now.In(tz)
}

func (s *StripeService) historyYears() int {
	if s.HistoryYears > 0 {
		return s.HistoryYears
	}
	return 9
}

func (s *StripeService) concurrency(years int) int {
	if s.Concurrency > 0 {
		return s.Concurrency
	}
	return years
}

func (s *StripeService) forecastDays() int {
	if s.ForecastDays > 0 {
		return s.ForecastDays
	}
	return 2
}
