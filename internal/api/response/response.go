// Package response provides utilities for HTTP response handling.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/weatherbestie/weatherbestie/internal/api/middleware"
	"github.com/weatherbestie/weatherbestie/internal/api/models"
)

// JSON writes a JSON response with the given status code.
// Includes X-Request-Id header for correlation.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	requestID := middleware.GetRequestID(r.Context())
	if requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes an error envelope response.
func Error(w http.ResponseWriter, r *http.Request, status int, detail string) {
	models.NewError(status, middleware.GetRequestID(r.Context()), detail).Write(w)
}

// NotFound writes a 404 Not Found error response.
func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, http.StatusNotFound, detail)
}

// UnprocessableEntity writes a 422 response for a rejected query parameter.
func UnprocessableEntity(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, http.StatusUnprocessableEntity, detail)
}

// MethodNotAllowed writes a 405 Method Not Allowed error response.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Error(w, r, http.StatusMethodNotAllowed, models.DetailMethodNotAllowed)
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, r *http.Request, detail string) {
	Error(w, r, http.StatusInternalServerError, detail)
}
