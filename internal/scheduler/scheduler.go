// Package scheduler drives the observation loop: for every configured route,
// query traffic and weather, enrich, persist; sleep; repeat.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/roadpulse/roadpulse/internal/enrich"
	"github.com/roadpulse/roadpulse/internal/models"
	"github.com/roadpulse/roadpulse/internal/providers"
	"github.com/roadpulse/roadpulse/internal/store"
)

// Status is a snapshot of the loop's progress, served by the status endpoint.
type Status struct {
	LastCycleStart   time.Time `json:"last_cycle_start"`
	LastCycleEnd     time.Time `json:"last_cycle_end"`
	CyclesRun        int       `json:"cycles_run"`
	RecordsStored    int       `json:"records_stored"`
	ProviderFailures int       `json:"provider_failures"`
	StoreFailures    int       `json:"store_failures"`
}

// Scheduler runs observation cycles over a fixed route catalog. Routes are
// processed sequentially within a cycle; one route's failure never aborts the
// rest of the cycle, and no failure is fatal to the loop.
type Scheduler struct {
	routes   []models.Route
	traffic  providers.TrafficProvider
	weather  providers.WeatherProvider
	engine   *enrich.Engine
	store    store.RecordStore
	interval time.Duration

	cron *gocron.Scheduler

	mu     sync.Mutex
	status Status
}

func New(routes []models.Route, traffic providers.TrafficProvider, weather providers.WeatherProvider, engine *enrich.Engine, recordStore store.RecordStore, interval time.Duration) *Scheduler {
	return &Scheduler{
		routes:   routes,
		traffic:  traffic,
		weather:  weather,
		engine:   engine,
		store:    recordStore,
		interval: interval,
	}
}

// Start schedules the periodic cycle and returns immediately. Stop halts it;
// a cycle in flight finishes its current route first.
func (s *Scheduler) Start() error {
	if len(s.routes) == 0 {
		log.Warn().Msg("no routes configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	s.cron = gocron.NewScheduler(time.UTC)
	_, err := s.cron.Every(minutes).Minutes().Do(func() {
		s.RunCycle(context.Background())
	})
	if err != nil {
		return err
	}

	s.cron.StartAsync()
	log.Info().Int("routes", len(s.routes)).Int("interval_minutes", minutes).Msg("scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunN runs a bounded number of cycles separated by the configured interval,
// for one-shot invocations and tests. Cancellation is honored between routes.
func (s *Scheduler) RunN(ctx context.Context, n int, showProgress bool) error {
	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.Default(int64(n), "cycles")
	}

	for i := 0; i < n; i++ {
		s.RunCycle(ctx)
		if bar != nil {
			bar.Add(1)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i == n-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.interval):
		}
	}
	return nil
}

// RunCycle performs one pass over all configured routes.
func (s *Scheduler) RunCycle(ctx context.Context) {
	start := time.Now()
	s.mu.Lock()
	s.status.LastCycleStart = start
	s.mu.Unlock()

	log.Info().Int("routes", len(s.routes)).Msg("observation cycle started")

	for _, route := range s.routes {
		if ctx.Err() != nil {
			log.Warn().Err(ctx.Err()).Msg("observation cycle interrupted")
			return
		}
		s.observeRoute(ctx, route)
	}

	cyclesTotal.Inc()
	s.mu.Lock()
	s.status.CyclesRun++
	s.status.LastCycleEnd = time.Now()
	s.mu.Unlock()

	log.Info().Dur("elapsed", time.Since(start)).Msg("observation cycle completed")
}

func (s *Scheduler) observeRoute(ctx context.Context, route models.Route) {
	now := time.Now()

	traffic, err := s.traffic.Query(ctx, route, now)
	if err != nil {
		s.countProviderFailure(err, "traffic")
		log.Error().Err(err).Str("route", route.Name).Msg("traffic query failed, skipping route this cycle")
		return
	}

	// A weather failure is absorbed: the record is still produced, with
	// weather columns left empty.
	weather, err := s.weather.Query(ctx, route.City)
	if err != nil {
		s.countProviderFailure(err, "weather")
		log.Warn().Err(err).Str("city", route.City).Msg("weather query failed, recording without weather")
		weather = nil
	}

	rec, err := s.engine.Enrich(route, traffic, weather, now)
	if err != nil {
		if errors.Is(err, enrich.ErrMissingTraffic) {
			log.Warn().Str("route", route.Name).Msg("no traffic observation, skipping route this cycle")
		} else {
			log.Error().Err(err).Str("route", route.Name).Msg("enrichment failed")
		}
		return
	}

	// At-most-once: a failed append is logged and the record for this
	// route and cycle is lost, never retried or queued.
	if err := s.store.Append(ctx, route.City, rec); err != nil {
		storeFailuresTotal.Inc()
		s.mu.Lock()
		s.status.StoreFailures++
		s.mu.Unlock()
		log.Error().Err(err).Str("route", route.Name).Str("city", route.City).Msg("dataset append failed, record lost")
		return
	}

	recordsStoredTotal.Inc()
	s.mu.Lock()
	s.status.RecordsStored++
	s.mu.Unlock()

	log.Info().
		Str("route", route.Name).
		Str("city", route.City).
		Int("duration_in_traffic_secs", traffic.DurationInTraffic).
		Msg("observation recorded")
}

func (s *Scheduler) countProviderFailure(err error, fallback string) {
	name := fallback
	var pe *providers.ProviderError
	if errors.As(err, &pe) {
		name = pe.Provider
	}
	providerFailuresTotal.WithLabelValues(name).Inc()
	s.mu.Lock()
	s.status.ProviderFailures++
	s.mu.Unlock()
}

// Status returns a copy of the current loop status.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
