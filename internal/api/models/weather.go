package models

// WeatherResponse is the body of GET /api/weather.
type WeatherResponse struct {
	City        string `json:"city"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	TempC       int    `json:"tempC"`
	FeelsC      int    `json:"feelsC"`
}

// ForecastResponse is the body of GET /api/forecast3.
type ForecastResponse struct {
	Date        string `json:"date"` // YYYY-MM-DD
	TempC       int    `json:"tempC"`
	Description string `json:"description"`
}

// SunResponse is the body of GET /api/sun. Times are HH:MM in UTC.
type SunResponse struct {
	Sunrise string `json:"sunrise"`
	Sunset  string `json:"sunset"`
}
