package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	AirVisual AirVisualConfig `yaml:"airvisual" mapstructure:"airvisual"`
	Places    PlacesConfig    `yaml:"places" mapstructure:"places"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Prefetch  PrefetchConfig  `yaml:"prefetch" mapstructure:"prefetch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// CacheConfig configures the daily cache backend.
type CacheConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	Dir    string `yaml:"dir" mapstructure:"dir"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// AirVisualConfig holds AirVisual API settings.
type AirVisualConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	CallBudget  int    `yaml:"call_budget" mapstructure:"call_budget"`
}

// PlacesConfig holds OSM place search settings.
type PlacesConfig struct {
	NominatimBaseURL string `yaml:"nominatim_base_url" mapstructure:"nominatim_base_url"`
	OverpassBaseURL  string `yaml:"overpass_base_url" mapstructure:"overpass_base_url"`
	TimeoutSecs      int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// SearchConfig caps per-category result counts.
type SearchConfig struct {
	Attractions int `yaml:"attractions" mapstructure:"attractions"`
	Hotels      int `yaml:"hotels" mapstructure:"hotels"`
	Restaurants int `yaml:"restaurants" mapstructure:"restaurants"`
	Shopping    int `yaml:"shopping" mapstructure:"shopping"`
}

// PrefetchConfig configures the daily cache warm-up run.
type PrefetchConfig struct {
	Provinces   []string `yaml:"provinces" mapstructure:"provinces"`
	Concurrency int      `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("AIRTRIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("cache.driver", "file")
	v.SetDefault("cache.dir", "cache")
	v.SetDefault("cache.dsn", "")
	// Registered empty so the env override is visible to Unmarshal.
	v.SetDefault("airvisual.key", "")
	v.SetDefault("airvisual.base_url", "https://api.airvisual.com/v2")
	v.SetDefault("airvisual.timeout_secs", 15)
	v.SetDefault("airvisual.call_budget", 10000)
	v.SetDefault("places.nominatim_base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("places.overpass_base_url", "https://overpass-api.de/api/interpreter")
	v.SetDefault("places.timeout_secs", 10)
	v.SetDefault("search.attractions", 6)
	v.SetDefault("search.hotels", 6)
	v.SetDefault("search.restaurants", 6)
	v.SetDefault("search.shopping", 4)
	v.SetDefault("prefetch.provinces", []string{
		"กรุงเทพมหานคร", "เชียงใหม่", "ภูเก็ต", "ชลบุรี", "กระบี่",
		"สุราษฎร์ธานี", "เชียงราย", "ขอนแก่น", "นครราชสีมา", "อุบลราชธานี",
	})
	v.SetDefault("prefetch.concurrency", 3)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
