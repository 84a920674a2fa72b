package models

import (
	"encoding/json"
	"net/http"
)

// Error messages returned to clients.
const (
	DetailCityNotFound      = "City not found"
	DetailNoForecast        = "No forecast for target date"
	DetailInvalidAPIKey     = "Invalid API key"
	DetailCityRequired      = "city is required"
	DetailDaysAheadInvalid  = "days_ahead must be an integer"
	DetailNotFound          = "Not Found"
	DetailMethodNotAllowed  = "Method Not Allowed"
	DetailInternalError     = "Internal Server Error"
	DetailTLSRequired       = "This endpoint requires HTTPS"
	DetailWeatherFetchError = "Error fetching weather data"
	DetailForecastFetchErr  = "Error fetching forecast data"
	DetailSunFetchError     = "Error fetching sun data"
)

// ErrorDetail is the error envelope of every failed request: {"detail": "..."}.
type ErrorDetail struct {
	// Status is the HTTP status code; it travels in the status line only.
	Status int `json:"-"`

	// RequestID is echoed in the X-Request-Id header.
	RequestID string `json:"-"`

	Detail string `json:"detail"`
}

// NewError creates an ErrorDetail with the given status and message.
func NewError(status int, requestID, detail string) *ErrorDetail {
	return &ErrorDetail{
		Status:    status,
		RequestID: requestID,
		Detail:    detail,
	}
}

// Write writes the ErrorDetail as JSON to the ResponseWriter.
func (e *ErrorDetail) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	if e.RequestID != "" {
		w.Header().Set("X-Request-Id", e.RequestID)
	}
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(e)
}

// NewInternalError creates a 500 Internal Server Error.
func NewInternalError(requestID, detail string) *ErrorDetail {
	return NewError(http.StatusInternalServerError, requestID, detail)
}

// NewForbidden creates a 403 Forbidden error.
func NewForbidden(requestID, detail string) *ErrorDetail {
	return NewError(http.StatusForbidden, requestID, detail)
}
