// Package weather provides the forecast and festival inputs for the daily
// insight pass.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gupta-labs/khata-sahayak/internal/application/ports"
)

var _ ports.WeatherService = (*OpenMeteo)(nil)

const (
	forecastURL  = "https://api.open-meteo.com/v1/forecast"
	forecastDays = 14
)

// OpenMeteo fetches a 14-day daily forecast from the Open-Meteo API.
// No API key required.
type OpenMeteo struct {
	httpClient *http.Client
	baseURL    string
}

func NewOpenMeteo() *OpenMeteo {
	return &OpenMeteo{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    forecastURL,
	}
}

type forecastResponse struct {
	Daily struct {
		Time             []string  `json:"time"`
		Temperature2mMax []float64 `json:"temperature_2m_max"`
		Temperature2mMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

// ForecastSummary returns a one-paragraph Hindi summary of the coming two
// weeks, as fed to the insight prompt.
func (o *OpenMeteo) ForecastSummary(ctx context.Context, latitude, longitude float64) (string, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%.4f", latitude))
	params.Set("longitude", fmt.Sprintf("%.4f", longitude))
	params.Add("daily", "temperature_2m_max")
	params.Add("daily", "temperature_2m_min")
	params.Set("timezone", "Asia/Kolkata")
	params.Set("forecast_days", fmt.Sprintf("%d", forecastDays))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("weather: build request: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("weather: fetch forecast: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("weather: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var forecast forecastResponse
	if err := json.Unmarshal(body, &forecast); err != nil {
		return "", fmt.Errorf("weather: parse forecast: %w", err)
	}
	if len(forecast.Daily.Temperature2mMax) == 0 || len(forecast.Daily.Temperature2mMin) == 0 {
		return "", fmt.Errorf("weather: forecast response has no daily data")
	}

	return fmt.Sprintf(
		"अगले %d दिनों का मौसम पूर्वानुमान:\n- तापमान: न्यूनतम %.1f°C से अधिकतम %.1f°C तक।",
		forecastDays,
		minOf(forecast.Daily.Temperature2mMin),
		maxOf(forecast.Daily.Temperature2mMax),
	), nil
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
