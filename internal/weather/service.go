package weather

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ForecastDaysAhead is how far ahead the forecast route looks.
const ForecastDaysAhead = 3

// DefaultSunDaysAhead is the sun route offset when the client sends none.
const DefaultSunDaysAhead = 4

// MaxSunDaysAhead bounds the sun route offset in either direction.
const MaxSunDaysAhead = 365

// Provider defines the interface for weather data providers.
type Provider interface {
	// GetCurrentWeather fetches current weather for a city.
	GetCurrentWeather(ctx context.Context, city string) (*Observation, error)

	// GetForecast fetches the multi-day forecast for a city.
	GetForecast(ctx context.Context, city string) (*Forecast, error)

	// Name returns the provider name for logging.
	Name() string
}

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Provider is the weather data provider.
	Provider Provider

	// Logger for service operations.
	Logger zerolog.Logger

	// Location decides which calendar date "today" is and how forecast
	// timestamps map onto dates (default: UTC).
	Location *time.Location

	// Now returns the current time (default: time.Now).
	Now func() time.Time
}

// Service reshapes provider data into client-facing reports.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	provider Provider
	logger   zerolog.Logger
	location *time.Location
	now      func() time.Time
}

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
		location: location,
		now:      now,
	}
}

// CurrentWeather returns current conditions for a city with temperatures in
// whole degrees Celsius.
func (s *Service) CurrentWeather(ctx context.Context, city string) (*CurrentReport, error) {
	if err := ValidateCity(city); err != nil {
		return nil, err
	}

	obs, err := s.fetchWeather(ctx, city)
	if err != nil {
		return nil, err
	}

	name := obs.City
	if name == "" {
		name = city
	}

	return &CurrentReport{
		City:        name,
		Description: obs.Description,
		Icon:        obs.Icon,
		TempC:       RoundCelsius(KelvinToCelsius(obs.Temperature)),
		FeelsC:      RoundCelsius(KelvinToCelsius(obs.FeelsLike)),
	}, nil
}

// ForecastForDay returns the earliest forecast entry falling on the calendar
// date daysAhead days after today.
func (s *Service) ForecastForDay(ctx context.Context, city string, daysAhead int) (*DayForecast, error) {
	if err := ValidateCity(city); err != nil {
		return nil, err
	}

	today := s.now().In(s.location)
	target := time.Date(today.Year(), today.Month(), today.Day()+daysAhead, 0, 0, 0, 0, s.location)

	s.logger.Debug().
		Str("city", city).
		Str("target_date", target.Format(time.DateOnly)).
		Str("provider", s.provider.Name()).
		Msg("fetching forecast from provider")

	forecast, err := s.provider.GetForecast(ctx, city)
	if err != nil {
		s.logFailure(err, city, "failed to fetch forecast")
		return nil, err
	}

	entry, ok := earliestOnDate(forecast.Entries, target, s.location)
	if !ok {
		return nil, ErrNoForecastForDate
	}

	return &DayForecast{
		Date:        target,
		TempC:       RoundCelsius(KelvinToCelsius(entry.Temperature)),
		Description: entry.Description,
	}, nil
}

// SunTimes returns today's sunrise and sunset shifted by daysAhead whole days.
// The clock time stays the same; the shift does not model seasonal drift.
func (s *Service) SunTimes(ctx context.Context, city string, daysAhead int) (*SunTimes, error) {
	if err := ValidateCity(city); err != nil {
		return nil, err
	}
	if daysAhead < -MaxSunDaysAhead || daysAhead > MaxSunDaysAhead {
		return nil, ErrDaysAheadRange
	}

	obs, err := s.fetchWeather(ctx, city)
	if err != nil {
		return nil, err
	}

	return &SunTimes{
		Sunrise: obs.Sunrise.UTC().AddDate(0, 0, daysAhead),
		Sunset:  obs.Sunset.UTC().AddDate(0, 0, daysAhead),
	}, nil
}

func (s *Service) fetchWeather(ctx context.Context, city string) (*Observation, error) {
	s.logger.Debug().
		Str("city", city).
		Str("provider", s.provider.Name()).
		Msg("fetching weather from provider")

	obs, err := s.provider.GetCurrentWeather(ctx, city)
	if err != nil {
		s.logFailure(err, city, "failed to fetch weather")
		return nil, err
	}
	return obs, nil
}

// logFailure logs provider errors. Unknown cities are a client mistake, not
// a provider fault, so they stay at debug.
func (s *Service) logFailure(err error, city, msg string) {
	event := s.logger.Error()
	if errors.Is(err, ErrCityNotFound) {
		event = s.logger.Debug()
	}
	event.Err(err).
		Str("city", city).
		Str("provider", s.provider.Name()).
		Msg(msg)
}

// earliestOnDate picks the chronologically first entry whose timestamp falls
// on the same calendar date as target in loc. Upstream lists are already in
// time order, so this equals the first match in list order; for unordered
// input the earliest timestamp wins, not the earliest position.
func earliestOnDate(entries []ForecastEntry, target time.Time, loc *time.Location) (ForecastEntry, bool) {
	var (
		match ForecastEntry
		found bool
	)

	y, m, d := target.Date()
	for _, e := range entries {
		ey, em, ed := e.Time.In(loc).Date()
		if ey != y || em != m || ed != d {
			continue
		}
		if !found || e.Time.Before(match.Time) {
			match = e
			found = true
		}
	}

	return match, found
}

// ValidateCity rejects a missing or whitespace-only city.
func ValidateCity(city string) error {
	if strings.TrimSpace(city) == "" {
		return ErrEmptyCity
	}
	return nil
}
