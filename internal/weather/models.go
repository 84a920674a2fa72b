package weather

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"
)

// Weather errors.
var (
	ErrEmptyCity         = errors.New("city is required")
	ErrCityNotFound      = errors.New("city not found")
	ErrInvalidAPIKey     = errors.New("invalid API key")
	ErrNoForecastForDate = errors.New("no forecast for target date")
	ErrDaysAheadRange    = fmt.Errorf("days_ahead must be between %d and %d", -MaxSunDaysAhead, MaxSunDaysAhead)
)

// UpstreamError is returned when the provider answers with a status the relay
// has no dedicated mapping for.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	kind := "Server Error"
	if e.StatusCode < 500 {
		kind = "Client Error"
	}
	return fmt.Sprintf("%d %s: %s", e.StatusCode, kind, http.StatusText(e.StatusCode))
}

// AbsoluteZeroCelsius is 0 K expressed in degrees Celsius.
const AbsoluteZeroCelsius = 273.15

// KelvinToCelsius converts a Kelvin temperature to Celsius.
func KelvinToCelsius(k float64) float64 {
	return k - AbsoluteZeroCelsius
}

// RoundCelsius rounds to the nearest whole degree. Exact halves round to the
// even neighbour, so 0.5 becomes 0 and 1.5 becomes 2.
func RoundCelsius(c float64) int {
	return int(math.RoundToEven(c))
}

// Observation is the current weather reported for a city.
type Observation struct {
	// City is the name the provider resolved the query to.
	City string

	Description string
	Icon        string

	// Temperatures in Kelvin, as delivered by the provider.
	Temperature float64
	FeelsLike   float64

	// Sunrise and Sunset for the observation day, in UTC.
	Sunrise time.Time
	Sunset  time.Time
}

// Forecast is the series of forecast entries upstream returned for a city.
type Forecast struct {
	Entries []ForecastEntry
}

// ForecastEntry is a single forecast slot (3-hour resolution upstream).
type ForecastEntry struct {
	Time        time.Time
	Temperature float64 // Kelvin
	Description string
}

// CurrentReport is current weather reshaped for clients.
type CurrentReport struct {
	City        string
	Description string
	Icon        string
	TempC       int
	FeelsC      int
}

// DayForecast is the forecast entry picked for a target calendar date.
type DayForecast struct {
	// Date is midnight of the target date in the relay's time zone.
	Date        time.Time
	TempC       int
	Description string
}

// SunTimes holds sunrise and sunset shifted by a whole number of days.
type SunTimes struct {
	Sunrise time.Time
	Sunset  time.Time
}
