// Package config loads the geofencer configuration from file, environment,
// and defaults, and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/geofencer/internal/monitor"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Monitor MonitorConfig `yaml:"monitor" mapstructure:"monitor"`
	Replay  ReplayConfig  `yaml:"replay" mapstructure:"replay"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures region and event persistence.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// MonitorConfig configures the monitoring coordinator.
type MonitorConfig struct {
	// Mode is "native" or "software".
	Mode string `yaml:"mode" mapstructure:"mode"`
	// Capacity caps the natively armed working set.
	Capacity int `yaml:"capacity" mapstructure:"capacity"`
	// Strategy is "none", "coarse", or "continuous".
	Strategy string `yaml:"strategy" mapstructure:"strategy"`
	// Authorization is "while_in_use" or "always"; empty derives it from
	// the mode.
	Authorization string `yaml:"authorization" mapstructure:"authorization"`

	// Continuous feed tuning.
	DistanceFilterM  float64 `yaml:"distance_filter_m" mapstructure:"distance_filter_m"`
	DesiredAccuracyM float64 `yaml:"desired_accuracy_m" mapstructure:"desired_accuracy_m"`
	ActivityType     string  `yaml:"activity_type" mapstructure:"activity_type"`
	AutoPause        bool    `yaml:"auto_pause" mapstructure:"auto_pause"`
	AllowBackground  bool    `yaml:"allow_background" mapstructure:"allow_background"`
}

// ToMonitor converts the file representation into a monitor.Config.
func (m MonitorConfig) ToMonitor() (monitor.Config, error) {
	cfg := monitor.Config{
		Mode:     monitor.Mode(m.Mode),
		Capacity: m.Capacity,
		Strategy: monitor.Strategy(m.Strategy),
		Continuous: monitor.ContinuousOptions{
			DistanceFilter:  m.DistanceFilterM,
			DesiredAccuracy: m.DesiredAccuracyM,
			ActivityType:    m.ActivityType,
			AutoPause:       m.AutoPause,
			AllowBackground: m.AllowBackground,
		},
	}

	switch m.Authorization {
	case "":
	case "while_in_use":
		cfg.RequiredAuthorization = monitor.AuthorizationWhileInUse
	case "always":
		cfg.RequiredAuthorization = monitor.AuthorizationAlways
	default:
		return monitor.Config{}, eris.Errorf("config: unknown authorization level %q", m.Authorization)
	}

	return cfg, nil
}

// ReplayConfig configures the track replay position source.
type ReplayConfig struct {
	// IntervalMS is the simulated delivery interval between samples.
	IntervalMS int `yaml:"interval_ms" mapstructure:"interval_ms"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging. Verbosity maps onto the level: "silent"
// raises it to error, "verbose" lowers it to debug.
type LogConfig struct {
	Level     string `yaml:"level" mapstructure:"level"`
	Format    string `yaml:"format" mapstructure:"format"`
	Verbosity string `yaml:"verbosity" mapstructure:"verbosity"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GEOFENCER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "geofencer.db")
	v.SetDefault("monitor.mode", "native")
	v.SetDefault("monitor.capacity", monitor.DefaultCapacity)
	v.SetDefault("monitor.strategy", "continuous")
	v.SetDefault("replay.interval_ms", 1000)
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
	switch cfg.Verbosity {
	case "silent":
		level = zapcore.ErrorLevel
	case "verbose":
		level = zapcore.DebugLevel
	case "":
	default:
		return eris.Errorf("config: unknown verbosity %q", cfg.Verbosity)
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
