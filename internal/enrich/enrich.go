// Package enrich joins one traffic observation and one optional weather
// observation for a route into a normalized observation record, computing the
// derived temporal and congestion features.
package enrich

import (
	"errors"
	"time"

	"github.com/lucsky/cuid"
	"github.com/roadpulse/roadpulse/internal/models"
)

// ErrMissingTraffic means no traffic observation was available for the cycle,
// so no record is produced for the route.
var ErrMissingTraffic = errors.New("missing traffic observation")

// Engine builds observation records. All captured timestamps are expressed in
// a single fixed zone, the system's region of operation.
type Engine struct {
	loc *time.Location
}

func NewEngine(loc *time.Location) *Engine {
	return &Engine{loc: loc}
}

// Enrich merges route identity, the traffic observation, the weather
// observation when present and the derived fields into one record. It is a
// pure transform apart from the generated record ID: the derived fields are
// deterministic functions of the inputs.
func (e *Engine) Enrich(route models.Route, traffic *models.TrafficObservation, weather *models.WeatherObservation, captureTime time.Time) (*models.ObservationRecord, error) {
	if traffic == nil {
		return nil, ErrMissingTraffic
	}

	local := captureTime.In(e.loc)
	hour := local.Hour()
	weekday := local.Weekday()

	return &models.ObservationRecord{
		RecordID: cuid.New(),
		Route:    route,
		Traffic:  *traffic,
		Weather:  weather,

		Timestamp:       local.Format(time.RFC3339),
		DayOfWeek:       weekday.String(),
		IsWeekend:       weekday == time.Saturday || weekday == time.Sunday,
		HourOfDay:       hour,
		IsPeakHour:      IsPeakHour(hour),
		TimePeriod:      TimePeriod(hour),
		TrafficRatio:    TrafficRatio(traffic.DurationInTraffic, traffic.DurationNoTraffic),
		RouteComplexity: RouteComplexity(traffic.StepCount, traffic.DistanceMeters),
	}, nil
}

// IsPeakHour reports whether the hour falls in the morning [6,10] or evening
// [16,20] peak window, both inclusive.
func IsPeakHour(hour int) bool {
	return (hour >= 6 && hour <= 10) || (hour >= 16 && hour <= 20)
}

// TimePeriod buckets an hour of day into Morning [5,12), Afternoon [12,16),
// Evening [16,20) or Night.
func TimePeriod(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "Morning"
	case hour >= 12 && hour < 16:
		return "Afternoon"
	case hour >= 16 && hour < 20:
		return "Evening"
	default:
		return "Night"
	}
}

// TrafficRatio is the congestion multiplier: duration in traffic over
// free-flow duration. Undefined when the free-flow duration is zero, in which
// case the field stays absent rather than dividing by zero.
func TrafficRatio(inTraffic, noTraffic int) *float64 {
	if noTraffic == 0 {
		return nil
	}
	ratio := float64(inTraffic) / float64(noTraffic)
	return &ratio
}

// RouteComplexity is the number of navigation steps per kilometer.
func RouteComplexity(stepCount, distanceMeters int) float64 {
	if distanceMeters <= 0 {
		return 0
	}
	return float64(stepCount) / (float64(distanceMeters) / 1000)
}
