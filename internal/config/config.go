// Package config loads service configuration from the environment, with an
// optional config file and .env overlay for local development.
package config

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Config struct {
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Facility FacilityConfig `mapstructure:"facility"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// FacilityConfig identifies the parking facility on receipts.
type FacilityConfig struct {
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
	TaxID   string `mapstructure:"tax_id"`
}

type PricingConfig struct {
	// DefaultCourtesyMinutes applies when neither the rate row nor its
	// config carries a courtesy allowance.
	DefaultCourtesyMinutes int  `mapstructure:"default_courtesy_minutes"`
	AutoApplyEnabled       bool `mapstructure:"auto_apply_enabled"`
}

func Load(log *zap.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, relying on environment variables")
	}

	v := viper.New()
	v.SetEnvPrefix("VAGAPARK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("database.url", "file:vagapark.db")
	v.SetDefault("redis.addr", "")
	v.SetDefault("facility.name", "Vagapark")
	v.SetDefault("facility.address", "")
	v.SetDefault("facility.tax_id", "")
	v.SetDefault("pricing.default_courtesy_minutes", 0)
	v.SetDefault("pricing.auto_apply_enabled", true)

	v.SetConfigName("vagapark")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/vagapark")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	} else {
		v.OnConfigChange(func(e fsnotify.Event) {
			log.Info("config file changed", zap.String("file", e.Name))
		})
		v.WatchConfig()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var Module = fx.Module("config",
	fx.Provide(Load),
)
