package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration of the application. Values are read by viper
// from a config file or environment variables.
type Config struct {
	Environment        string        `mapstructure:"ENVIRONMENT"`
	ServerAddress      string        `mapstructure:"SERVER_ADDRESS"`
	NominatimBaseURL   string        `mapstructure:"NOMINATIM_BASE_URL"`
	NominatimUserAgent string        `mapstructure:"NOMINATIM_USER_AGENT"`
	RedisAddress       string        `mapstructure:"REDIS_ADDRESS"`
	GeocodeCacheTTL    time.Duration `mapstructure:"GEOCODE_CACHE_TTL"`
	ImageUploadURL     string        `mapstructure:"IMAGE_UPLOAD_URL"`
	ImageMaxBytes      int64         `mapstructure:"IMAGE_MAX_BYTES"`
	DashboardBaseURL   string        `mapstructure:"DASHBOARD_BASE_URL"`
	DebounceWait       time.Duration `mapstructure:"DEBOUNCE_WAIT"`
}

// LoadConfig reads configuration from the file at path, with environment
// variables taking precedence.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
