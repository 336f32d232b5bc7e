// This file defines the configuration structure for the application.
package config

import (
	// use Viper for loading the config.yml file.
	"log"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/vrsandeep/manga-sync/internal/httpclient"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Port     int `mapstructure:"port"`
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Sync struct {
		Cron         string        `mapstructure:"cron"`
		CacheTTL     time.Duration `mapstructure:"cache_ttl"`
		GracePeriod  time.Duration `mapstructure:"grace_period"`
		MockProvider bool          `mapstructure:"mock_provider"` // registers the offline mockread.local provider
	} `mapstructure:"sync"`
	HTTP struct {
		Timeout           time.Duration `mapstructure:"timeout"`
		UserAgent         string        `mapstructure:"user_agent"`
		RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	} `mapstructure:"http"`
	Auth struct {
		KeyPath       string `mapstructure:"key_path"`
		WarnAgeDays   int    `mapstructure:"warn_age_days"`
		RotateAgeDays int    `mapstructure:"rotate_age_days"`
		Disabled      bool   `mapstructure:"disabled"`
	} `mapstructure:"auth"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 7783)
	v.SetDefault("database.path", "./manga-sync.db")
	v.SetDefault("sync.cron", "0 0 0 * * *")
	v.SetDefault("sync.cache_ttl", "24h")
	v.SetDefault("sync.grace_period", "30s")
	v.SetDefault("sync.mock_provider", false)
	v.SetDefault("http.timeout", "30s")
	v.SetDefault("http.user_agent", httpclient.DefaultUserAgent)
	v.SetDefault("http.requests_per_second", 2.0)
	v.SetDefault("auth.key_path", "./secret/key.pub")
	v.SetDefault("auth.warn_age_days", 90)
	v.SetDefault("auth.rotate_age_days", 365)
	v.SetDefault("auth.disabled", false)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("yml")
	v.AddConfigPath(".")

	// e.g., MANGASYNC_SYNC_CRON overrides the `sync.cron` key.
	v.SetEnvPrefix("MANGASYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

func read(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// Load reads configuration from a file named "config.yml" in the
// current directory and unmarshals it into a Config struct.
func Load() (*Config, error) {
	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return nil, err
		}
	}
	return read(v)
}

// Watch re-reads config.yml whenever it changes on disk and hands the new
// configuration to onChange. It is a no-op when no config file exists.
func Watch(onChange func(*Config)) {
	v := newViper()
	if err := v.ReadInConfig(); err != nil {
		log.Printf("Config watch disabled: %v", err)
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := read(v)
		if err != nil {
			log.Printf("Ignoring invalid config change in %s: %v", e.Name, err)
			return
		}
		log.Printf("Configuration reloaded from %s", e.Name)
		onChange(cfg)
	})
	v.WatchConfig()
}
