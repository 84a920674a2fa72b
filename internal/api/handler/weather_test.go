package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weatherbestie/weatherbestie/internal/api/handler"
	"github.com/weatherbestie/weatherbestie/internal/api/models"
	"github.com/weatherbestie/weatherbestie/internal/weather"
)

type fakeService struct {
	report   *weather.CurrentReport
	forecast *weather.DayForecast
	sun      *weather.SunTimes
	err      error

	gotCity string
	gotDays int
	calls   int
}

func (f *fakeService) CurrentWeather(_ context.Context, city string) (*weather.CurrentReport, error) {
	f.calls++
	f.gotCity = city
	return f.report, f.err
}

func (f *fakeService) ForecastForDay(_ context.Context, city string, daysAhead int) (*weather.DayForecast, error) {
	f.calls++
	f.gotCity = city
	f.gotDays = daysAhead
	return f.forecast, f.err
}

func (f *fakeService) SunTimes(_ context.Context, city string, daysAhead int) (*weather.SunTimes, error) {
	f.calls++
	f.gotCity = city
	f.gotDays = daysAhead
	return f.sun, f.err
}

func serve(h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, target, http.NoBody))
	return rec
}

func detailOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body models.ErrorDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

func TestGetCurrentWeather(t *testing.T) {
	svc := &fakeService{report: &weather.CurrentReport{
		City:        "London",
		Description: "clear sky",
		Icon:        "01d",
		TempC:       15,
		FeelsC:      14,
	}}
	h := handler.NewWeatherHandler(svc)

	rec := serve(h.GetCurrentWeather, "/api/weather?city=london")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "london", svc.gotCity)
	assert.JSONEq(t,
		`{"city":"London","description":"clear sky","icon":"01d","tempC":15,"feelsC":14}`,
		rec.Body.String())
}

func TestGetForecast3(t *testing.T) {
	svc := &fakeService{forecast: &weather.DayForecast{
		Date:        time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC),
		TempC:       30,
		Description: "sunny",
	}}
	h := handler.NewWeatherHandler(svc)

	rec := serve(h.GetForecast3, "/api/forecast3?city=Madrid")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, weather.ForecastDaysAhead, svc.gotDays)
	assert.JSONEq(t, `{"date":"2024-06-13","tempC":30,"description":"sunny"}`, rec.Body.String())
}

func TestGetSunTimes(t *testing.T) {
	sun := &weather.SunTimes{
		Sunrise: time.Unix(1700000000, 0).UTC().AddDate(0, 0, 4),
		Sunset:  time.Unix(1700030000, 0).UTC().AddDate(0, 0, 4),
	}

	t.Run("default days ahead", func(t *testing.T) {
		svc := &fakeService{sun: sun}
		rec := serve(handler.NewWeatherHandler(svc).GetSunTimes, "/api/sun?city=Oslo")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, weather.DefaultSunDaysAhead, svc.gotDays)
		assert.JSONEq(t, `{"sunrise":"22:13","sunset":"06:33"}`, rec.Body.String())
	})

	t.Run("explicit days ahead", func(t *testing.T) {
		svc := &fakeService{sun: sun}
		rec := serve(handler.NewWeatherHandler(svc).GetSunTimes, "/api/sun?city=Oslo&days_ahead=0")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 0, svc.gotDays)
	})

	t.Run("negative days ahead", func(t *testing.T) {
		svc := &fakeService{sun: sun}
		rec := serve(handler.NewWeatherHandler(svc).GetSunTimes, "/api/sun?city=Oslo&days_ahead=-2")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, -2, svc.gotDays)
	})
}

func TestGetSunTimes_InvalidDaysAhead(t *testing.T) {
	for _, raw := range []string{"abc", "1.5", ""} {
		t.Run(raw, func(t *testing.T) {
			svc := &fakeService{}
			rec := serve(handler.NewWeatherHandler(svc).GetSunTimes, "/api/sun?city=Oslo&days_ahead="+raw)

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Equal(t, "days_ahead must be an integer", detailOf(t, rec))
			assert.Zero(t, svc.calls)
		})
	}
}

func TestGetSunTimes_DaysAheadOutOfRange(t *testing.T) {
	svc := &fakeService{err: weather.ErrDaysAheadRange}
	rec := serve(handler.NewWeatherHandler(svc).GetSunTimes, "/api/sun?city=Oslo&days_ahead=400")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "days_ahead must be between -365 and 365", detailOf(t, rec))
	assert.Equal(t, 400, svc.gotDays)
}

func TestWeatherHandlers_CityRequired(t *testing.T) {
	svc := &fakeService{}
	h := handler.NewWeatherHandler(svc)

	for name, fn := range map[string]http.HandlerFunc{
		"weather":   h.GetCurrentWeather,
		"forecast3": h.GetForecast3,
		"sun":       h.GetSunTimes,
	} {
		for _, target := range []string{"/api/" + name, "/api/" + name + "?city=", "/api/" + name + "?city=%20%20"} {
			rec := serve(fn, target)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, target)
			assert.Equal(t, "city is required", detailOf(t, rec), target)
		}
	}
	assert.Zero(t, svc.calls, "the service is never reached without a city")
}

func TestWeatherHandlers_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail map[string]string
	}{
		{
			name:   "city not found",
			err:    weather.ErrCityNotFound,
			status: http.StatusNotFound,
			detail: map[string]string{"weather": "City not found", "forecast3": "City not found", "sun": "City not found"},
		},
		{
			name:   "invalid api key",
			err:    weather.ErrInvalidAPIKey,
			status: http.StatusInternalServerError,
			detail: map[string]string{"weather": "Invalid API key", "forecast3": "Invalid API key", "sun": "Invalid API key"},
		},
		{
			name:   "upstream failure",
			err:    &weather.UpstreamError{StatusCode: http.StatusServiceUnavailable},
			status: http.StatusInternalServerError,
			detail: map[string]string{
				"weather":   "Error fetching weather data: 503 Server Error: Service Unavailable",
				"forecast3": "Error fetching forecast data: 503 Server Error: Service Unavailable",
				"sun":       "Error fetching sun data: 503 Server Error: Service Unavailable",
			},
		},
		{
			name:   "network failure",
			err:    errors.New("executing request: connection refused"),
			status: http.StatusInternalServerError,
			detail: map[string]string{
				"weather":   "Error fetching weather data: executing request: connection refused",
				"forecast3": "Error fetching forecast data: executing request: connection refused",
				"sun":       "Error fetching sun data: executing request: connection refused",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handler.NewWeatherHandler(&fakeService{err: tt.err})

			for name, fn := range map[string]http.HandlerFunc{
				"weather":   h.GetCurrentWeather,
				"forecast3": h.GetForecast3,
				"sun":       h.GetSunTimes,
			} {
				rec := serve(fn, "/api/"+name+"?city=Atlantis")
				assert.Equal(t, tt.status, rec.Code, name)
				assert.Equal(t, tt.detail[name], detailOf(t, rec), name)
			}
		})
	}
}

func TestGetForecast3_NoForecastForDate(t *testing.T) {
	h := handler.NewWeatherHandler(&fakeService{err: weather.ErrNoForecastForDate})

	rec := serve(h.GetForecast3, "/api/forecast3?city=Lima")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No forecast for target date", detailOf(t, rec))
}
