package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fakhrymubarak/weather-stripes/internal/model"
	"github.com/fakhrymubarak/weather-stripes/internal/repository"
)

// Mock repository for testing
type mockOpenMeteoRepository struct {
	mu sync.Mutex

	geocodeErr  error
	timezone    string
	archive     map[int][]*float64 // year -> hourly values
	archiveErr  map[int]error
	forecast    map[string]*model.HourlySeries
	forecastErr error

	archiveDays  []time.Time
	forecastDays []time.Time
	inFlight     int
	maxInFlight  int
}

func (m *mockOpenMeteoRepository) Geocode(ctx context.Context, city string) (*model.Location, error) {
	if m.geocodeErr != nil {
		return nil, m.geocodeErr
	}
	return &model.Location{Name: city, Timezone: m.timezone, Coordinate: model.Coordinate{Latitude: 48.14, Longitude: 11.58}}, nil
}

func (m *mockOpenMeteoRepository) HourlyArchive(ctx context.Context, coord model.Coordinate, day time.Time, metric string) (*model.HourlySeries, error) {
	m.mu.Lock()
	m.archiveDays = append(m.archiveDays, day)
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight--
	if err := m.archiveErr[day.Year()]; err != nil {
		return nil, err
	}
	return &model.HourlySeries{Values: m.archive[day.Year()]}, nil
}

func (m *mockOpenMeteoRepository) HourlyForecast(ctx context.Context, coord model.Coordinate, today time.Time, metric string, days int) (*model.HourlySeries, error) {
	m.mu.Lock()
	m.forecastDays = append(m.forecastDays, today)
	m.mu.Unlock()
	if m.forecastErr != nil {
		return nil, m.forecastErr
	}
	s, ok := m.forecast[metric]
	if !ok {
		return nil, repository.ErrMissingReading
	}
	return s, nil
}

func f(v float64) *float64 { return &v }

// hourly returns 24 values where hour h reads base+h.
func hourly(base float64) []*float64 {
	out := make([]*float64, 24)
	for h := range out {
		out[h] = f(base + float64(h))
	}
	return out
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newMockRepo() *mockOpenMeteoRepository {
	archive := map[int][]*float64{}
	for y := 2015; y <= 2024; y++ {
		archive[y] = hourly(float64(y - 2000))
	}
	return &mockOpenMeteoRepository{
		archive:    archive,
		archiveErr: map[int]error{},
		forecast: map[string]*model.HourlySeries{
			model.MetricTemperature: {Values: hourly(-5)},
		},
	}
}

func TestStripeService_TemperatureSeries(t *testing.T) {
	repo := newMockRepo()
	repo.archiveErr[2019] = repository.ErrExternalAPI
	repo.archive[2021][14] = nil

	svc := &StripeService{
		Repo:         repo,
		Now:          fixedClock(time.Date(2025, time.March, 10, 14, 25, 0, 0, time.UTC)),
		HistoryYears: 9,
	}

	series, err := svc.TemperatureSeries(context.Background(), "München")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(series.Samples) != 10 {
		t.Fatalf("Expected 10 samples, got %d", len(series.Samples))
	}

	current := series.Samples[0]
	if !current.Current || current.Year != 2025 {
		t.Errorf("Expected current sample first, got %+v", current)
	}
	// Previous hour (13) of the forecast: -5 + 13.
	if current.Value == nil || *current.Value != 8 {
		t.Errorf("Expected current value 8, got %v", current.Value)
	}

	for i, s := range series.Samples[1:] {
		wantYear := 2024 - i
		if s.Year != wantYear || s.Label != fmt.Sprint(wantYear) {
			t.Errorf("sample %d: expected year %d, got %+v", i+1, wantYear, s)
		}
		switch wantYear {
		case 2019, 2021:
			if s.Value != nil {
				t.Errorf("year %d: expected missing value, got %v", wantYear, *s.Value)
			}
		default:
			want := float64(wantYear-2000) + 14
			if s.Value == nil || *s.Value != want {
				t.Errorf("year %d: expected %v, got %v", wantYear, want, s.Value)
			}
		}
	}
	if series.Unit != "°C" || series.Kind != model.KindTemperature || series.City != "München" {
		t.Errorf("unexpected series header %+v", series)
	}
}

func TestStripeService_TemperatureSeries_CityTimezone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatal(err)
	}
	repo := newMockRepo()
	repo.timezone = "Asia/Tokyo"
	svc := &StripeService{
		Repo: repo,
		// 07:00 on the 11th in Tokyo
		Now:          fixedClock(time.Date(2025, time.January, 10, 22, 0, 0, 0, time.UTC)),
		HistoryYears: 2,
	}

	series, err := svc.TemperatureSeries(context.Background(), "Tokyo")
	if err != nil {
		t.Fatal(err)
	}

	// Previous Tokyo hour (6) of the forecast: -5 + 6.
	if v := series.Samples[0].Value; v == nil || *v != 1 {
		t.Errorf("Expected current value 1, got %v", v)
	}
	for i, s := range series.Samples[1:] {
		year := 2024 - i
		want := float64(year-2000) + 7
		if s.Value == nil || *s.Value != want {
			t.Errorf("year %d: expected Tokyo hour 7 reading %v, got %v", year, want, s.Value)
		}
	}
	for _, day := range repo.archiveDays {
		if day.Location().String() != "Asia/Tokyo" || day.Month() != time.January || day.Day() != 11 || day.Hour() != 7 {
			t.Errorf("Expected archive day January 11 07:00 in Tokyo, got %s", day)
		}
	}
	if len(repo.forecastDays) != 1 || repo.forecastDays[0].Format("2006-01-02") != "2025-01-11" {
		t.Errorf("Expected forecast for Tokyo date 2025-01-11, got %v", repo.forecastDays)
	}
	if got := series.Samples[0].Time; !got.Equal(time.Date(2025, time.January, 11, 7, 0, 0, 0, tokyo)) {
		t.Errorf("Expected current sample at 07:00 Tokyo, got %s", got)
	}
}

func TestStripeService_TemperatureSeries_UnknownTimezone(t *testing.T) {
	repo := newMockRepo()
	repo.timezone = "Mars/Olympus_Mons"
	svc := &StripeService{
		Repo:         repo,
		Now:          fixedClock(time.Date(2025, time.January, 10, 22, 0, 0, 0, time.UTC)),
		HistoryYears: 1,
	}

	series, err := svc.TemperatureSeries(context.Background(), "Nowhere")
	if err != nil {
		t.Fatal(err)
	}
	if v := series.Samples[1].Value; v == nil || *v != 24+22 {
		t.Errorf("Expected process-clock hour 22 reading, got %v", v)
	}
}

func TestStripeService_TemperatureSeries_FetchesConcurrently(t *testing.T) {
	repo := newMockRepo()
	svc := &StripeService{
		Repo:         repo,
		Now:          fixedClock(time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)),
		HistoryYears: 9,
		Concurrency:  3,
	}

	if _, err := svc.TemperatureSeries(context.Background(), "Berlin"); err != nil {
		t.Fatal(err)
	}
	if len(repo.archiveDays) != 9 {
		t.Fatalf("Expected 9 archive fetches, got %d", len(repo.archiveDays))
	}
	if repo.maxInFlight < 2 || repo.maxInFlight > 3 {
		t.Errorf("Expected between 2 and 3 concurrent fetches, got %d", repo.maxInFlight)
	}
}

func TestStripeService_TemperatureSeries_GeocodeFailure(t *testing.T) {
	repo := newMockRepo()
	repo.geocodeErr = fmt.Errorf("%w: no coordinates found for city: Atlantis", repository.ErrCityNotFound)
	svc := &StripeService{Repo: repo, Now: time.Now}

	_, err := svc.TemperatureSeries(context.Background(), "Atlantis")
	if !errors.Is(err, repository.ErrCityNotFound) {
		t.Fatalf("Expected ErrCityNotFound, got %v", err)
	}
	if len(repo.archiveDays) != 0 {
		t.Errorf("Expected no archive fetches after geocoding failed, got %d", len(repo.archiveDays))
	}
}

func TestStripeService_TemperatureSeries_Midnight(t *testing.T) {
	repo := newMockRepo()
	svc := &StripeService{
		Repo:         repo,
		Now:          fixedClock(time.Date(2025, time.January, 2, 0, 10, 0, 0, time.UTC)),
		HistoryYears: 1,
	}

	series, err := svc.TemperatureSeries(context.Background(), "Oslo")
	if err != nil {
		t.Fatal(err)
	}
	if v := series.Samples[0].Value; v == nil || *v != -5 {
		t.Errorf("Expected hour 0 of the forecast at midnight, got %v", v)
	}
}

func TestStripeService_TemperatureSeries_ForecastFailure(t *testing.T) {
	repo := newMockRepo()
	repo.forecastErr = repository.ErrExternalAPI
	svc := &StripeService{
		Repo:         repo,
		Now:          fixedClock(time.Date(2025, time.May, 5, 12, 0, 0, 0, time.UTC)),
		HistoryYears: 2,
	}

	series, err := svc.TemperatureSeries(context.Background(), "Rome")
	if err != nil {
		t.Fatalf("Expected forecast failure to be non-fatal, got %v", err)
	}
	if series.Samples[0].Value != nil {
		t.Errorf("Expected missing current value, got %v", *series.Samples[0].Value)
	}
	if series.Samples[1].Value == nil {
		t.Error("Expected historical value to survive a forecast failure")
	}
}

func TestStripeService_CloudCoverSeries(t *testing.T) {
	times := make([]string, 48)
	values := make([]*float64, 48)
	start := time.Date(2025, time.April, 7, 0, 0, 0, 0, time.UTC)
	for h := range times {
		times[h] = start.Add(time.Duration(h) * time.Hour).Format("2006-01-02T15:04")
		values[h] = f(float64(h * 2))
	}
	values[5] = nil

	repo := newMockRepo()
	repo.forecast[model.MetricCloudCover] = &model.HourlySeries{Times: times, Values: values}
	svc := &StripeService{
		Repo:         repo,
		Now:          fixedClock(time.Date(2025, time.April, 7, 10, 42, 0, 0, time.UTC)),
		ForecastDays: 2,
	}

	series, err := svc.CloudCoverSeries(context.Background(), "Hamburg")
	if err != nil {
		t.Fatal(err)
	}
	if len(series.Samples) != 48 {
		t.Fatalf("Expected 48 hourly samples, got %d", len(series.Samples))
	}
	if series.Samples[5].Value != nil {
		t.Error("Expected null reading to stay missing")
	}
	if v := series.Samples[47].Value; v == nil || *v != 94 {
		t.Errorf("Expected last reading 94, got %v", v)
	}
	if series.Samples[0].Label != "Mon 00:00" {
		t.Errorf("Expected label Mon 00:00, got %s", series.Samples[0].Label)
	}
	for i, s := range series.Samples {
		if s.Current != (i == 10) {
			t.Errorf("sample %d: Current = %v", i, s.Current)
		}
	}
}

func TestStripeService_CloudCoverSeries_CityTimezone(t *testing.T) {
	times := make([]string, 48)
	values := make([]*float64, 48)
	for h := range times {
		times[h] = time.Date(2025, time.January, 11, h, 0, 0, 0, time.UTC).Format("2006-01-02T15:04")
		values[h] = f(float64(h))
	}

	repo := newMockRepo()
	repo.timezone = "Asia/Tokyo"
	repo.forecast[model.MetricCloudCover] = &model.HourlySeries{Times: times, Values: values}
	svc := &StripeService{
		Repo:         repo,
		Now:          fixedClock(time.Date(2025, time.January, 10, 22, 30, 0, 0, time.UTC)),
		ForecastDays: 2,
	}

	series, err := svc.CloudCoverSeries(context.Background(), "Tokyo")
	if err != nil {
		t.Fatal(err)
	}
	if series.Samples[0].Label != "Sat 00:00" {
		t.Errorf("Expected label Sat 00:00, got %s", series.Samples[0].Label)
	}
	if loc := series.Samples[0].Time.Location().String(); loc != "Asia/Tokyo" {
		t.Errorf("Expected sample times in Asia/Tokyo, got %s", loc)
	}
	for i, s := range series.Samples {
		if s.Current != (i == 7) {
			t.Errorf("sample %d: Current = %v", i, s.Current)
		}
	}
	if len(repo.forecastDays) != 1 || repo.forecastDays[0].Format("2006-01-02") != "2025-01-11" {
		t.Errorf("Expected forecast for Tokyo date 2025-01-11, got %v", repo.forecastDays)
	}
}

func TestStripeService_CloudCoverSeries_PlaceholdersInCityTimezone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatal(err)
	}
	repo := newMockRepo()
	repo.timezone = "Asia/Tokyo"
	repo.forecastErr = repository.ErrExternalAPI
	svc := &StripeService{
		Repo:         repo,
		Now:          fixedClock(time.Date(2025, time.January, 10, 22, 0, 0, 0, time.UTC)),
		ForecastDays: 1,
	}

	series, err := svc.CloudCoverSeries(context.Background(), "Tokyo")
	if err != nil {
		t.Fatal(err)
	}
	if got := series.Samples[0].Time; !got.Equal(time.Date(2025, time.January, 11, 0, 0, 0, 0, tokyo)) {
		t.Errorf("Expected placeholders from Tokyo midnight, got %s", got)
	}
	if !series.Samples[7].Current {
		t.Error("Expected the 07:00 placeholder to be current")
	}
}

func TestStripeService_CloudCoverSeries_ForecastFailure(t *testing.T) {
	repo := newMockRepo()
	repo.forecastErr = repository.ErrExternalAPI
	svc := &StripeService{
		Repo:         repo,
		Now:          fixedClock(time.Date(2025, time.April, 7, 10, 0, 0, 0, time.UTC)),
		ForecastDays: 2,
	}

	series, err := svc.CloudCoverSeries(context.Background(), "Hamburg")
	if err != nil {
		t.Fatalf("Expected placeholder series, got %v", err)
	}
	if len(series.Samples) != 48 {
		t.Fatalf("Expected 48 placeholders, got %d", len(series.Samples))
	}
	for _, s := range series.Samples {
		if s.Value != nil {
			t.Fatalf("Expected placeholder values to be missing, got %v", *s.Value)
		}
	}
}

func TestStripeService_GetSeries(t *testing.T) {
	repo := newMockRepo()
	repo.forecast[model.MetricCloudCover] = &model.HourlySeries{Times: []string{"2025-04-07T00:00"}, Values: []*float64{f(12)}}
	svc := &StripeService{Repo: repo, Now: fixedClock(time.Date(2025, time.April, 7, 3, 0, 0, 0, time.UTC)), HistoryYears: 1}

	tests := []struct {
		kind    model.Kind
		wantErr error
		want    int
	}{
		{model.KindTemperature, nil, 2},
		{model.KindCloudCover, nil, 1},
		{model.Kind("humidity"), ErrUnknownKind, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			series, err := svc.GetSeries(context.Background(), "Bremen", tt.kind)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(series.Samples) != tt.want {
				t.Errorf("Expected %d samples, got %d", tt.want, len(series.Samples))
			}
		})
	}
}

func TestSameDayIn(t *testing.T) {
	leap := time.Date(2024, time.February, 29, 18, 0, 0, 0, time.UTC)
	tests := []struct {
		year int
		want time.Time
	}{
		{2023, time.Date(2023, time.February, 28, 18, 0, 0, 0, time.UTC)},
		{2020, time.Date(2020, time.February, 29, 18, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		if got := sameDayIn(tt.year, leap); !got.Equal(tt.want) {
			t.Errorf("sameDayIn(%d) = %s; want %s", tt.year, got, tt.want)
		}
	}
}

func TestValueAt(t *testing.T) {
	series := &model.HourlySeries{Values: []*float64{f(1), nil}}
	if v, err := valueAt(series, 0); err != nil || *v != 1 {
		t.Errorf("valueAt(0) = %v, %v", v, err)
	}
	for _, idx := range []int{1, 2, -1} {
		if _, err := valueAt(series, idx); !errors.Is(err, repository.ErrMissingReading) {
			t.Errorf("valueAt(%d) err = %v; want ErrMissingReading", idx, err)
		}
	}
	if _, err := valueAt(nil, 0); !errors.Is(err, repository.ErrMissingReading) {
		t.Errorf("valueAt(nil) err = %v", err)
	}
}

func TestNewStripeService_NilRepo(t *testing.T) {
	svc := NewStripeService(nil)
	if svc == nil || svc.Repo == nil {
		t.Fatal("Expected service with a default repository")
	}
	if svc.HistoryYears != 9 || svc.ForecastDays != 2 {
		t.Errorf("Expected configured defaults, got %+v", svc)
	}
}
