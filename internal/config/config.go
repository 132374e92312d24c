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
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Map     MapConfig     `yaml:"map" mapstructure:"map"`
	Tiles   TilesConfig   `yaml:"tiles" mapstructure:"tiles"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// DataConfig locates the raw geospatial sources.
type DataConfig struct {
	DeathsPath string `yaml:"deaths_path" mapstructure:"deaths_path"`
	PumpsPath  string `yaml:"pumps_path" mapstructure:"pumps_path"`
	AreasPath  string `yaml:"areas_path" mapstructure:"areas_path"`

	// Declared coordinate reference system per source. The point
	// workbooks ship as WGS84; the boundary shapefile may carry
	// projected coordinates depending on how it was exported.
	DeathsCRS string `yaml:"deaths_crs" mapstructure:"deaths_crs"`
	PumpsCRS  string `yaml:"pumps_crs" mapstructure:"pumps_crs"`
	AreasCRS  string `yaml:"areas_crs" mapstructure:"areas_crs"`
}

// MapConfig configures map composition defaults.
type MapConfig struct {
	DefaultBasemap string `yaml:"default_basemap" mapstructure:"default_basemap"`
	DefaultZoom    int    `yaml:"default_zoom" mapstructure:"default_zoom"`
	StylesPath     string `yaml:"styles_path" mapstructure:"styles_path"`
}

// TilesConfig configures the basemap tile proxy.
type TilesConfig struct {
	CacheSize    int     `yaml:"cache_size" mapstructure:"cache_size"`
	CacheTTLMins int     `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
	UpstreamRPS  float64 `yaml:"upstream_rps" mapstructure:"upstream_rps"`
}

// ServerConfig configures the dashboard HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("BROADSTREET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.deaths_path", "data/cholera_deaths.xlsx")
	v.SetDefault("data.pumps_path", "data/pumps.xlsx")
	v.SetDefault("data.areas_path", "data/polys.shp")
	v.SetDefault("data.deaths_crs", "EPSG:4326")
	v.SetDefault("data.pumps_crs", "EPSG:4326")
	v.SetDefault("data.areas_crs", "EPSG:4326")
	v.SetDefault("map.default_basemap", "osm")
	v.SetDefault("map.default_zoom", 16)
	v.SetDefault("tiles.cache_size", 2000)
	v.SetDefault("tiles.cache_ttl_mins", 60)
	v.SetDefault("tiles.upstream_rps", 10)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("metrics.enabled", true)

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
