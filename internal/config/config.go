package config

import (
	"flag"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var once sync.Once
var logger *zap.SugaredLogger
var loggerOnce sync.Once

// isTestRun returns true if the current process is a Go test binary.
func isTestRun() bool {
	return flag.Lookup("test.v") != nil || filepath.Ext(os.Args[0]) == ".test"
}

func initConfig() {
	once.Do(func() {
		setDefaults()

		root, err := getProjectRoot()
		if err != nil {
			GetLogger().Warnw("Error finding project root, using defaults", "error", err)
			return
		}
		viper.SetConfigType("yaml")

		viper.SetConfigName("config")
		viper.AddConfigPath(root)
		if err = viper.ReadInConfig(); err != nil {
			GetLogger().Warnw("Error reading config file", "error", err)
		}

		if isTestRun() {
			viper.SetConfigName("config_test")
			if err = viper.MergeInConfig(); err != nil {
				GetLogger().Warnw("Error reading test config file", "error", err)
			}
		}
	})
}

func setDefaults() {
	viper.SetDefault("openmeteo.geocoding_url", "https://geocoding-api.open-meteo.com/v1/search")
	viper.SetDefault("openmeteo.archive_url", "https://archive-api.open-meteo.com/v1/archive")
	viper.SetDefault("openmeteo.forecast_url", "https://api.open-meteo.com/v1/forecast")
	viper.SetDefault("openmeteo.timezone", "auto")
	viper.SetDefault("openmeteo.http_timeout", "10s")
	viper.SetDefault("widget.default_city", "München")
	viper.SetDefault("widget.history_years", 9)
	viper.SetDefault("widget.history_concurrency", 9)
	viper.SetDefault("widget.forecast_days", 2)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("cache.expiration", "10m")
	viper.SetDefault("cache.geocode_expiration", "24h")
	viper.SetDefault("cache.archive_expiration", "720h")
	viper.SetDefault("server.port", "8080")
}

func getProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

func GetGeocodingURL() string {
	initConfig()
	return viper.GetString("openmeteo.geocoding_url")
}

func GetArchiveURL() string {
	initConfig()
	return viper.GetString("openmeteo.archive_url")
}

func GetForecastURL() string {
	initConfig()
	return viper.GetString("openmeteo.forecast_url")
}

// GetTimezone is passed as the timezone parameter so hourly arrays are
// indexed in the city's local time.
func GetTimezone() string {
	initConfig()
	return viper.GetString("openmeteo.timezone")
}

// GetOpenMeteoAPIKey is only needed for the commercial endpoints.
func GetOpenMeteoAPIKey() string {
	_ = godotenv.Load()
	return os.Getenv("OPEN_METEO_API_KEY")
}

func GetHTTPTimeout() time.Duration {
	initConfig()
	return parseDuration(viper.GetString("openmeteo.http_timeout"), 10*time.Second)
}

func GetDefaultCity() string {
	initConfig()
	if city := os.Getenv("WIDGET_CITY"); city != "" {
		return city
	}
	return viper.GetString("widget.default_city")
}

func GetHistoryYears() int {
	initConfig()
	if n := viper.GetInt("widget.history_years"); n > 0 {
		return n
	}
	return 9
}

func GetHistoryConcurrency() int {
	initConfig()
	if n := viper.GetInt("widget.history_concurrency"); n > 0 {
		return n
	}
	return GetHistoryYears()
}

func GetForecastDays() int {
	initConfig()
	if n := viper.GetInt("widget.forecast_days"); n > 0 {
		return n
	}
	return 2
}

func GetRedisAddr() string {
	initConfig()
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return viper.GetString("redis.addr")
}

func GetServerPort() string {
	initConfig()
	serverPort := viper.GetString("server.port")
	return serverPort
}

// GetCacheExpiration returns the TTL for the given cache key under "cache.".
// An empty key selects the forecast TTL.
func GetCacheExpiration(key string) time.Duration {
	initConfig()
	if key == "" {
		return parseDuration(viper.GetString("cache.expiration"), 10*time.Minute)
	}
	return parseDuration(viper.GetString("cache."+key), 10*time.Minute)
}

func GetServerTimeout(key string) time.Duration {
	initConfig()
	return parseDuration(viper.GetString("server."+key), 15*time.Second)
}

// ReloadConfigForTest resets the config singleton and reloads Viper config. Use only in tests.
func ReloadConfigForTest() {
	once = sync.Once{}
	initConfig()
}

func GetLogger() *zap.SugaredLogger {
	loggerOnce.Do(func() {
		l, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		logger = l.Sugar()
	})
	return logger
}

// GetRateLimiterCleanupTimeout returns the rate limiter cleanup timeout as a time.Duration.
// Defaults to 3m if not set or invalid.
func GetRateLimiterCleanupTimeout() time.Duration {
	initConfig()
	return parseDuration(viper.GetString("rate_limiter.cleanup_timeout"), 3*time.Minute)
}

// GetGlobalRateLimiterConfig returns the per-minute rate and burst for the global rate limiter.
func GetGlobalRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.global.rate")
	if rate == 0 {
		rate = 10
	}
	burst = viper.GetInt("rate_limiter.global.burst")
	if burst == 0 {
		burst = 10
	}
	return
}

// GetParamRateLimiterConfig returns the per-minute rate and burst for the per-city rate limiter.
func GetParamRateLimiterConfig() (rate float64, burst int) {
	initConfig()
	rate = viper.GetFloat64("rate_limiter.param.rate")
	if rate == 0 {
		rate = 2
	}
	burst = viper.GetInt("rate_limiter.param.burst")
	if burst == 0 {
		burst = 2
	}
	return
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
