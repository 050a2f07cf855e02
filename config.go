package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"edrisobaric/internal/acquire"
	"edrisobaric/internal/profile"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Dataset    DatasetConfig    `mapstructure:"dataset"`
	Collection CollectionConfig `mapstructure:"collection"`
	Provider   ProviderConfig   `mapstructure:"provider"`
	Contact    ContactConfig    `mapstructure:"contact"`
	Response   ResponseConfig   `mapstructure:"response"`
	Cache      CacheConfig      `mapstructure:"cache"`
	CORS       CORSConfig       `mapstructure:"cors"`
}

type ServerConfig struct {
	BindHost  string  `mapstructure:"bind_host"`
	Port      string  `mapstructure:"port"`
	BaseURL   string  `mapstructure:"base_url"`
	RateLimit float64 `mapstructure:"rate_limit"`
	LogLevel  string  `mapstructure:"log_level"`
	LogDir    string  `mapstructure:"log_dir"`
}

type DatasetConfig struct {
	File            string `mapstructure:"file"`
	Time            string `mapstructure:"time"`
	APIURL          string `mapstructure:"api_url"`
	AvailableURL    string `mapstructure:"available_url"`
	DataPath        string `mapstructure:"data_path"`
	DownloadTimeout string `mapstructure:"download_timeout"`
}

type CollectionConfig struct {
	ID          string `mapstructure:"id"`
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	LicenseURL  string `mapstructure:"license_url"`
	DocsURL     string `mapstructure:"docs_url"`
}

type ProviderConfig struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

type ContactConfig struct {
	Email      string `mapstructure:"email"`
	Phone      string `mapstructure:"phone"`
	PostalCode string `mapstructure:"postal_code"`
	City       string `mapstructure:"city"`
	Address    string `mapstructure:"address"`
	Country    string `mapstructure:"country"`
}

type ResponseConfig struct {
	Shape           string `mapstructure:"shape"`
	TemperatureUnit string `mapstructure:"temperature_unit"`
}

type CacheConfig struct {
	Size int `mapstructure:"size"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

var AppConfig Config

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"file":      "dataset.file",
	"time":      "dataset.time",
	"api_url":   "dataset.api_url",
	"data_path": "dataset.data_path",
	"base_url":  "server.base_url",
	"bind_host": "server.bind_host",
	"port":      "server.port",
}

// newFlagSet declares the command-line flags.
func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("edrisobaric", pflag.ContinueOnError)
	fs.String("file", "", "Local grib file to read data from. Default will fetch file from API.")
	fs.String("time", "", "Timestamp to fetch data for. Must be in format 2024-01-24T18:00:00Z, where time matches an available production. See <"+acquire.DefaultAvailableURL+"> for available files. They are produced every 3rd hour.")
	fs.String("base_url", "http://localhost:5000/", "Base URL for API, with a trailing slash.")
	fs.String("bind_host", "127.0.0.1", "Which host to bind to. Use 0.0.0.0 when running in container.")
	fs.String("port", "5000", "Which port to listen on.")
	fs.String("api_url", acquire.DefaultAPIURL, "URL to download grib file from. gs://bucket/object reads from Cloud Storage.")
	fs.String("data_path", acquire.DefaultDataPath, "Where to store data files.")
	fs.String("config", "", "Path to a YAML configuration file.")
	return fs
}

// LoadConfig reads config.yaml (or configPath), environment variables
// prefixed EDR_ and the given flags into AppConfig. A missing config file is
// not an error unless configPath names it.
func LoadConfig(configPath string, flags *pflag.FlagSet) error {
	viper.Reset()
	viper.SetConfigType("yaml")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("..")
	}

	// Set default values
	setDefaults()

	// Enable environment variable override
	viper.SetEnvPrefix("EDR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := viper.BindPFlag(key, f); err != nil {
					return fmt.Errorf("error binding flag %s: %w", name, err)
				}
			}
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := normalize(&cfg); err != nil {
		return err
	}
	AppConfig = cfg
	return nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.bind_host", "127.0.0.1")
	viper.SetDefault("server.port", "5000")
	viper.SetDefault("server.base_url", "http://localhost:5000/")
	viper.SetDefault("server.rate_limit", 20)
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("server.log_dir", "logs")

	// Dataset defaults
	viper.SetDefault("dataset.file", "")
	viper.SetDefault("dataset.time", "")
	viper.SetDefault("dataset.api_url", acquire.DefaultAPIURL)
	viper.SetDefault("dataset.available_url", acquire.DefaultAvailableURL)
	viper.SetDefault("dataset.data_path", acquire.DefaultDataPath)
	viper.SetDefault("dataset.download_timeout", acquire.DefaultTimeout.String())

	// Metadata defaults
	viper.SetDefault("collection.id", "isobaric")
	viper.SetDefault("collection.title", "IsobaricGRIB - GRIB files")
	viper.SetDefault("collection.description",
		"Temperature and wind forecasts for a set of isobaric layers (i.e. altitudes having the same pressure), "+
			"read from GRIB2 files produced every 3 hours.")
	viper.SetDefault("collection.license_url", "https://creativecommons.org/licenses/by/4.0/")
	viper.SetDefault("collection.docs_url", "https://api.met.no/weatherapi/isobaricgrib/1.0/documentation")
	viper.SetDefault("provider.name", "Meteorologisk institutt / The Norwegian Meteorological Institute")
	viper.SetDefault("provider.url", "https://api.met.no/")
	viper.SetDefault("contact.email", "api-users-request@lists.met.no")
	viper.SetDefault("contact.phone", "+47.22963000")
	viper.SetDefault("contact.postal_code", "0313")
	viper.SetDefault("contact.city", "Oslo")
	viper.SetDefault("contact.address", "Henrik Mohns plass 1")
	viper.SetDefault("contact.country", "Norway")

	// Response defaults
	viper.SetDefault("response.shape", "derived")
	viper.SetDefault("response.temperature_unit", "celsius")
	viper.SetDefault("cache.size", profile.DefaultCacheSize)
	viper.SetDefault("cors.allowed_origins", []string{"*"})
}

func normalize(cfg *Config) error {
	if cfg.Server.BaseURL != "" && !strings.HasSuffix(cfg.Server.BaseURL, "/") {
		cfg.Server.BaseURL += "/"
	}
	if cfg.Collection.ID == "" {
		return errors.New("collection.id must not be empty")
	}
	if cfg.Server.RateLimit <= 0 {
		return fmt.Errorf("server.rate_limit must be positive, got %v", cfg.Server.RateLimit)
	}
	if _, err := cfg.DownloadTimeout(); err != nil {
		return err
	}
	if _, err := cfg.CoverageOptions(); err != nil {
		return err
	}
	if cfg.Dataset.File != "" {
		cfg.Dataset.File = filepath.Clean(cfg.Dataset.File)
	}
	return nil
}
