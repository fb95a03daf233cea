package models

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type OutputConfig struct {
	Format string `mapstructure:"format"` // csv, parquet, postgres or kafka
	Path   string `mapstructure:"path"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type KafkaConfig struct {
	BrokerList  string `mapstructure:"broker_list"`
	TopicPrefix string `mapstructure:"topic_prefix"`
}

type CloudStorageConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	BucketName string `mapstructure:"bucket_name"`
	Region     string `mapstructure:"region"`
	Prefix     string `mapstructure:"prefix"`
}

type Config struct {
	GoogleAPIKey  string `mapstructure:"google_api_key"`
	WeatherAPIKey string `mapstructure:"weather_api_key"`

	// Country qualifies origin, destination and city in provider queries,
	// e.g. "Ikeja, Lagos, Nigeria".
	Country string `mapstructure:"country"`

	// Timezone is the single IANA zone all captured timestamps are expressed
	// in, regardless of city.
	Timezone string `mapstructure:"timezone"`

	IntervalMinutes int  `mapstructure:"interval_minutes"`
	Cycles          int  `mapstructure:"cycles"` // 0 runs until terminated
	Simulate        bool `mapstructure:"simulate"`
	Verbose         bool `mapstructure:"verbose"`

	Routes     []Route `mapstructure:"routes"`
	RoutesFile string  `mapstructure:"routes_file"`

	Output       OutputConfig       `mapstructure:"output"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Kafka        KafkaConfig        `mapstructure:"kafka"`
	CloudStorage CloudStorageConfig `mapstructure:"cloud_storage"`

	APIPort string `mapstructure:"api_port"`
}

// LoadConfig initializes and reads the configuration using Viper
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Default config location
		viper.AddConfigPath("examples")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	viper.SetDefault("country", "Nigeria")
	viper.SetDefault("timezone", "Africa/Lagos")
	viper.SetDefault("interval_minutes", 15)
	viper.SetDefault("output.format", "csv")
	viper.SetDefault("output.path", "data")
	viper.SetDefault("kafka.topic_prefix", "observations")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetEnvPrefix("ROADPULSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	decoderConfigOption := viper.DecoderConfigOption(func(config *mapstructure.DecoderConfig) {
		config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			config.DecodeHook,
			mapstructure.StringToTimeDurationHookFunc(),
		)
	})
	if err := viper.Unmarshal(&config, decoderConfigOption); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	if config.RoutesFile != "" && len(config.Routes) == 0 {
		if err := config.LoadRouteCatalog(config.RoutesFile); err != nil {
			return nil, fmt.Errorf("error loading route catalog: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadRouteCatalog reads a tab-separated route catalog with columns
// name, origin, destination, city. A header line is expected and skipped.
func (cfg *Config) LoadRouteCatalog(filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = '\t'
	reader.Read()

	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if len(fields) < 4 {
			return fmt.Errorf("route catalog line needs 4 columns, got %d", len(fields))
		}
		cfg.Routes = append(cfg.Routes, Route{
			Name:        fields[0],
			Origin:      fields[1],
			Destination: fields[2],
			City:        fields[3],
		})
	}

	return nil
}

func (cfg *Config) Validate() error {
	if len(cfg.Routes) == 0 {
		return fmt.Errorf("no routes configured")
	}
	seen := make(map[string]bool, len(cfg.Routes))
	for _, r := range cfg.Routes {
		if r.Name == "" || r.Origin == "" || r.Destination == "" || r.City == "" {
			return fmt.Errorf("route %q is missing a field", r.Name)
		}
		if seen[r.Name] {
			return fmt.Errorf("duplicate route name %q", r.Name)
		}
		seen[r.Name] = true
	}
	if cfg.IntervalMinutes <= 0 {
		return fmt.Errorf("interval_minutes must be positive, got %d", cfg.IntervalMinutes)
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	switch cfg.Output.Format {
	case "csv", "parquet", "postgres", "kafka":
	default:
		return fmt.Errorf("unsupported output format: %s", cfg.Output.Format)
	}
	return nil
}

// Interval returns the inter-cycle sleep as a duration.
func (cfg *Config) Interval() time.Duration {
	return time.Duration(cfg.IntervalMinutes) * time.Minute
}
