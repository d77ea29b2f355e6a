package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type HTTPServer struct {
	Port string `mapstructure:"port"`
}

type BCCh struct {
	BaseURL        string `mapstructure:"base_url"`
	User           string `mapstructure:"user"`
	Pass           string `mapstructure:"pass"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type Rates struct {
	// Series maps a currency code to the BCCh series identifier queried
	// for it. The keys are the full supported currency set.
	Series           map[string]string `mapstructure:"series"`
	StalenessSeconds int               `mapstructure:"staleness_seconds"`
	RefreshSeconds   int               `mapstructure:"refresh_seconds"`
	FallbackDays     int               `mapstructure:"fallback_days"`
	ObsCacheMaxItems int64             `mapstructure:"obs_cache_max_items"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type AppConfig struct {
	HTTPServer HTTPServer `mapstructure:"http_server"`
	BCCh       BCCh       `mapstructure:"bcch"`
	Rates      Rates      `mapstructure:"rates"`
	Logging    Logging    `mapstructure:"logging"`
}

func Init() (*AppConfig, error) {
	var cfg AppConfig

	// .env is optional; credentials may come from the real environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	viper.SetDefault("http_server.port", "3001")
	viper.SetDefault("bcch.base_url", "https://si3.bcentral.cl/SieteRestWS/SieteRestWS.ashx")
	viper.SetDefault("bcch.timeout_seconds", 10)
	viper.SetDefault("rates.series", map[string]string{
		"USD": "F073.TCO.PRE.Z.D",
		"EUR": "F073.TCO.PRE.EUR.D",
	})
	viper.SetDefault("rates.staleness_seconds", 1800)
	viper.SetDefault("rates.refresh_seconds", 1800)
	viper.SetDefault("rates.fallback_days", 7)
	viper.SetDefault("rates.obs_cache_max_items", 1024)
	viper.SetDefault("logging.level", "info")

	// http server env vars
	_ = viper.BindEnv("http_server.port", "PORT")

	// bcch env vars; absent credentials are not validated here and show up
	// as upstream failures on the first fetch
	_ = viper.BindEnv("bcch.user", "BCCH_API_USER")
	_ = viper.BindEnv("bcch.pass", "BCCH_API_PASS")
	_ = viper.BindEnv("bcch.timeout_seconds", "HTTP_CLIENT_TIMEOUT_SECONDS")

	// logging env vars
	_ = viper.BindEnv("logging.level", "LOG_LEVEL")

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &cfg, nil
}
