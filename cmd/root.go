package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roadpulse/roadpulse/internal/api"
	"github.com/roadpulse/roadpulse/internal/cloudwriter"
	"github.com/roadpulse/roadpulse/internal/enrich"
	"github.com/roadpulse/roadpulse/internal/models"
	"github.com/roadpulse/roadpulse/internal/providers"
	"github.com/roadpulse/roadpulse/internal/scheduler"
	"github.com/roadpulse/roadpulse/internal/store"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "roadpulse",
	Short: "Collects road-travel and weather observations for a fixed route catalog",
	Long:  `roadpulse periodically observes travel conditions on a configured set of city routes, enriches each observation with current weather and derived congestion features, and appends the result to a per-city dataset.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}

		if cfg.Verbose {
			log.Logger = log.Logger.Level(zerolog.DebugLevel)
		} else {
			log.Logger = log.Logger.Level(zerolog.InfoLevel)
		}

		return run(cfg)
	},
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is examples/config.json)")

	rootCmd.Flags().Int("interval-minutes", 15, "Minutes between observation cycles")
	rootCmd.Flags().Int("cycles", 0, "Run a bounded number of cycles and exit (0 runs until terminated)")
	rootCmd.Flags().Bool("simulate", false, "Use simulated providers instead of external APIs")
	rootCmd.Flags().String("routes-file", "", "Tab-separated route catalog file")
	rootCmd.Flags().String("output-format", "csv", "Dataset output: csv, parquet, postgres or kafka")
	rootCmd.Flags().String("output-path", "data", "Directory for file-based datasets")
	rootCmd.Flags().String("api-port", "", "Port for the health/status/metrics endpoint (empty disables it)")
	rootCmd.Flags().Bool("verbose", false, "Enable debug logging")

	viper.BindPFlag("interval_minutes", rootCmd.Flags().Lookup("interval-minutes"))
	viper.BindPFlag("cycles", rootCmd.Flags().Lookup("cycles"))
	viper.BindPFlag("simulate", rootCmd.Flags().Lookup("simulate"))
	viper.BindPFlag("routes_file", rootCmd.Flags().Lookup("routes-file"))
	viper.BindPFlag("output.format", rootCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output.path", rootCmd.Flags().Lookup("output-path"))
	viper.BindPFlag("api_port", rootCmd.Flags().Lookup("api-port"))
	viper.BindPFlag("verbose", rootCmd.Flags().Lookup("verbose"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
}

func run(cfg *models.Config) error {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	traffic, weather := buildProviders(cfg)

	recordStore, err := buildStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closer, ok := recordStore.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				log.Error().Err(err).Msg("error closing record store")
			}
		}
	}()

	engine := enrich.NewEngine(loc)
	sched := scheduler.New(cfg.Routes, traffic, weather, engine, recordStore, cfg.Interval())

	if cfg.APIPort != "" {
		app := api.New(sched)
		go func() {
			if err := app.Listen(":" + cfg.APIPort); err != nil {
				log.Error().Err(err).Msg("api server stopped")
			}
		}()
		defer app.Shutdown()
	}

	if cfg.Cycles > 0 {
		return sched.RunN(ctx, cfg.Cycles, true)
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	return nil
}

func buildProviders(cfg *models.Config) (providers.TrafficProvider, providers.WeatherProvider) {
	if cfg.Simulate {
		log.Info().Msg("using simulated providers")
		return providers.NewSimulatedTrafficProvider(), providers.NewSimulatedWeatherProvider()
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: 30 * time.Second}
	return providers.NewGoogleDirectionsProvider(httpClient, cfg.GoogleAPIKey, cfg.Country),
		providers.NewOpenWeatherProvider(httpClient, cfg.WeatherAPIKey, cfg.Country)
}

func buildStore(ctx context.Context, cfg *models.Config) (store.RecordStore, error) {
	switch cfg.Output.Format {
	case "csv":
		csvStore := store.NewCSVStore(cfg.Output.Path)
		if !cfg.CloudStorage.Enabled {
			return csvStore, nil
		}
		uploader, err := cloudwriter.NewS3Uploader(ctx, cfg.CloudStorage.Region, cfg.CloudStorage.BucketName)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 uploader: %w", err)
		}
		return store.NewMirroredCSVStore(csvStore, uploader, cfg.CloudStorage.Prefix), nil
	case "parquet":
		return store.NewParquetStore(cfg.Output.Path), nil
	case "postgres":
		return store.NewPostgresStore(ctx, cfg.Database)
	case "kafka":
		return store.NewKafkaStore(cfg.Kafka)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", cfg.Output.Format)
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
