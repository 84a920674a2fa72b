package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/weatherbestie/weatherbestie/internal/api/models"
	"github.com/weatherbestie/weatherbestie/internal/api/response"
	"github.com/weatherbestie/weatherbestie/internal/weather"
)

const clockFormat = "15:04"

// WeatherService is the domain behavior the weather endpoints need.
type WeatherService interface {
	CurrentWeather(ctx context.Context, city string) (*weather.CurrentReport, error)
	ForecastForDay(ctx context.Context, city string, daysAhead int) (*weather.DayForecast, error)
	SunTimes(ctx context.Context, city string, daysAhead int) (*weather.SunTimes, error)
}

// WeatherHandler serves the relay endpoints.
type WeatherHandler struct {
	service WeatherService
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(service WeatherService) *WeatherHandler {
	return &WeatherHandler{service: service}
}

// GetCurrentWeather handles GET /api/weather.
func (h *WeatherHandler) GetCurrentWeather(w http.ResponseWriter, r *http.Request) {
	city, ok := requireCity(w, r)
	if !ok {
		return
	}

	report, err := h.service.CurrentWeather(r.Context(), city)
	if err != nil {
		writeServiceError(w, r, err, models.DetailWeatherFetchError)
		return
	}

	response.JSON(w, r, http.StatusOK, models.WeatherResponse{
		City:        report.City,
		Description: report.Description,
		Icon:        report.Icon,
		TempC:       report.TempC,
		FeelsC:      report.FeelsC,
	})
}

// GetForecast3 handles GET /api/forecast3.
func (h *WeatherHandler) GetForecast3(w http.ResponseWriter, r *http.Request) {
	city, ok := requireCity(w, r)
	if !ok {
		return
	}

	day, err := h.service.ForecastForDay(r.Context(), city, weather.ForecastDaysAhead)
	if err != nil {
		writeServiceError(w, r, err, models.DetailForecastFetchErr)
		return
	}

	response.JSON(w, r, http.StatusOK, models.ForecastResponse{
		Date:        day.Date.Format(time.DateOnly),
		TempC:       day.TempC,
		Description: day.Description,
	})
}

// GetSunTimes handles GET /api/sun.
func (h *WeatherHandler) GetSunTimes(w http.ResponseWriter, r *http.Request) {
	city, ok := requireCity(w, r)
	if !ok {
		return
	}

	daysAhead := weather.DefaultSunDaysAhead
	if values, present := r.URL.Query()["days_ahead"]; present && len(values) > 0 {
		n, err := strconv.Atoi(values[0])
		if err != nil {
			response.UnprocessableEntity(w, r, models.DetailDaysAheadInvalid)
			return
		}
		daysAhead = n
	}

	sun, err := h.service.SunTimes(r.Context(), city, daysAhead)
	if err != nil {
		writeServiceError(w, r, err, models.DetailSunFetchError)
		return
	}

	response.JSON(w, r, http.StatusOK, models.SunResponse{
		Sunrise: sun.Sunrise.UTC().Format(clockFormat),
		Sunset:  sun.Sunset.UTC().Format(clockFormat),
	})
}

// requireCity writes a 422 and reports false when the city parameter is
// missing or blank.
func requireCity(w http.ResponseWriter, r *http.Request) (string, bool) {
	city := r.URL.Query().Get("city")
	if err := weather.ValidateCity(city); err != nil {
		response.UnprocessableEntity(w, r, models.DetailCityRequired)
		return "", false
	}
	return city, true
}

// writeServiceError maps domain errors onto the error envelope. Anything
// unrecognized becomes a 500 carrying fetchPrefix and the cause.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fetchPrefix string) {
	switch {
	case errors.Is(err, weather.ErrEmptyCity):
		response.UnprocessableEntity(w, r, models.DetailCityRequired)
	case errors.Is(err, weather.ErrDaysAheadRange):
		response.UnprocessableEntity(w, r, err.Error())
	case errors.Is(err, weather.ErrCityNotFound):
		response.NotFound(w, r, models.DetailCityNotFound)
	case errors.Is(err, weather.ErrNoForecastForDate):
		response.NotFound(w, r, models.DetailNoForecast)
	case errors.Is(err, weather.ErrInvalidAPIKey):
		response.InternalError(w, r, models.DetailInvalidAPIKey)
	default:
		response.InternalError(w, r, fetchPrefix+": "+err.Error())
	}
}
