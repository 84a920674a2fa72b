package openweathermap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/weatherbestie/weatherbestie/internal/provider"
	"github.com/weatherbestie/weatherbestie/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "openweathermap"

	// DefaultBaseURL is the OpenWeatherMap API base URL.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	// DefaultTimeout bounds a single upstream call.
	DefaultTimeout = 10 * time.Second

	redacted = "REDACTED"
)

// ClientConfig holds configuration for the OpenWeatherMap client.
type ClientConfig struct {
	// APIKey is the OpenWeatherMap API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to OpenWeatherMap API).
	BaseURL string

	// Timeout is the per-request timeout (optional, defaults to 10 seconds).
	// Ignored when HTTPClient is set.
	Timeout time.Duration

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a traced client with Timeout.
	HTTPClient *http.Client

	// Registry receives call outcomes for the status endpoint (optional).
	Registry *provider.Registry

	// Metrics records call durations (optional).
	Metrics *provider.Metrics

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenWeatherMap API client. It never retries.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	registry   *provider.Registry
	metrics    *provider.Metrics
	logger     zerolog.Logger
}

// NewClient creates a new OpenWeatherMap client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	if cfg.Registry != nil {
		cfg.Registry.Register(ProviderName)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		registry:   cfg.Registry,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetCurrentWeather fetches current weather for a city.
func (c *Client) GetCurrentWeather(ctx context.Context, city string) (*weather.Observation, error) {
	var owmResp currentWeatherResponse
	if err := c.get(ctx, "weather", city, &owmResp); err != nil {
		return nil, err
	}
	return c.toObservation(&owmResp), nil
}

// GetForecast fetches the 5 day / 3 hour forecast for a city.
func (c *Client) GetForecast(ctx context.Context, city string) (*weather.Forecast, error) {
	var owmResp forecastResponse
	if err := c.get(ctx, "forecast", city, &owmResp); err != nil {
		return nil, err
	}
	return c.toForecast(&owmResp), nil
}

// get performs GET {baseURL}/{endpoint}?q={city}&appid={key} and decodes
// the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint, city string, out any) (err error) {
	start := time.Now()
	defer func() { c.observe(endpoint, time.Since(start), err) }()

	query := url.Values{}
	query.Set("q", city)
	query.Set("appid", c.apiKey)
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", redactError(err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", redactError(err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return weather.ErrCityNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return weather.ErrInvalidAPIKey
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &weather.UpstreamError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}

// observe feeds the registry and metrics. An unknown city is a valid answer
// from a healthy upstream.
func (c *Client) observe(operation string, duration time.Duration, err error) {
	failed := err != nil && !errors.Is(err, weather.ErrCityNotFound)

	var recorded error
	if failed {
		recorded = err
	}
	c.metrics.RecordRequest(ProviderName, operation, duration, recorded)

	c.logger.Debug().
		Str("provider", ProviderName).
		Str("operation", operation).
		Dur("duration", duration).
		AnErr("error", err).
		Msg("provider request completed")

	if c.registry == nil {
		return
	}

	wasHealthy := true
	if health := c.registry.GetHealth(ProviderName); health != nil {
		wasHealthy = health.IsHealthy()
	}

	switch {
	case failed:
		c.registry.RecordFailure(ProviderName, err)
		if wasHealthy {
			c.logger.Warn().
				Err(err).
				Str("provider", ProviderName).
				Str("operation", operation).
				Msg("provider marked degraded")
		}
	default:
		c.registry.RecordSuccess(ProviderName)
		if !wasHealthy {
			c.logger.Info().
				Str("provider", ProviderName).
				Msg("provider recovered")
		}
	}
}

// toObservation converts OpenWeatherMap response to domain model.
func (c *Client) toObservation(resp *currentWeatherResponse) *weather.Observation {
	obs := &weather.Observation{
		City:        resp.Name,
		Temperature: resp.Main.Temp,
		FeelsLike:   resp.Main.FeelsLike,
		Sunrise:     time.Unix(resp.Sys.Sunrise, 0).UTC(),
		Sunset:      time.Unix(resp.Sys.Sunset, 0).UTC(),
	}

	if len(resp.Weather) > 0 {
		obs.Description = resp.Weather[0].Description
		obs.Icon = resp.Weather[0].Icon
	}

	return obs
}

// toForecast converts OpenWeatherMap forecast response to domain model.
func (c *Client) toForecast(resp *forecastResponse) *weather.Forecast {
	forecast := &weather.Forecast{
		Entries: make([]weather.ForecastEntry, 0, len(resp.List)),
	}

	for _, item := range resp.List {
		entry := weather.ForecastEntry{
			Time:        time.Unix(item.Dt, 0).UTC(),
			Temperature: item.Main.Temp,
		}
		if len(item.Weather) > 0 {
			entry.Description = item.Weather[0].Description
		}
		forecast.Entries = append(forecast.Entries, entry)
	}

	return forecast
}

// redactError hides the API key carried in the query string of *url.Error.
func redactError(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	return &url.Error{Op: urlErr.Op, URL: redactURL(urlErr.URL), Err: urlErr.Err}
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return redacted
	}
	q := u.Query()
	if q.Has("appid") {
		q.Set("appid", redacted)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// OpenWeatherMap API response structures.

type conditionJSON struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type currentWeatherResponse struct {
	Weather []conditionJSON `json:"weather"`
	Main    struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
	} `json:"main"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
	Name string `json:"name"`
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []conditionJSON `json:"weather"`
	} `json:"list"`
}
