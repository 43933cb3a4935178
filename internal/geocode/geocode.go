// Package geocode resolves free-text addresses to coordinates through the
// Google geocoding HTTP API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	ReasonServiceUnavailable = "service unavailable"
	ReasonAddressNotFound    = "address not found"
)

// ResolutionError means the address could not be turned into coordinates.
// Reason distinguishes an unusable service (the user should enter
// coordinates manually) from an address the service does not know.
type ResolutionError struct {
	Reason string
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geocode: %s: %v", e.Reason, e.Err)
	}
	return "geocode: " + e.Reason
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Result is one resolved address.
type Result struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
}

// Client calls the geocoding API.
type Client struct {
	HTTPClient *http.Client
	Endpoint   string
	APIKey     string
}

// NewClient creates a geocoding client against the given endpoint.
func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	return &Client{
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		Endpoint: endpoint,
		APIKey:   apiKey,
	}
}

// geocodeResponse mirrors the wire format of the geocoding API.
type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Resolve issues one geocoding request and classifies the response. Any
// transport or API-key problem comes back as "service unavailable"; an
// unknown or malformed address as "address not found".
func (c *Client) Resolve(ctx context.Context, address string) (*Result, error) {
	reqURL := fmt.Sprintf("%s?address=%s&key=%s", c.Endpoint, url.QueryEscape(address), url.QueryEscape(c.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &ResolutionError{Reason: ReasonServiceUnavailable, Err: err}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &ResolutionError{Reason: ReasonServiceUnavailable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ResolutionError{
			Reason: ReasonServiceUnavailable,
			Err:    fmt.Errorf("geocoding API returned status %d", resp.StatusCode),
		}
	}

	var data geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, &ResolutionError{Reason: ReasonServiceUnavailable, Err: err}
	}

	switch data.Status {
	case "REQUEST_DENIED", "INVALID_REQUEST", "OVER_QUERY_LIMIT":
		return nil, &ResolutionError{
			Reason: ReasonServiceUnavailable,
			Err:    fmt.Errorf("geocoding API status %s", data.Status),
		}
	case "ZERO_RESULTS":
		return nil, &ResolutionError{Reason: ReasonAddressNotFound}
	}

	if len(data.Results) == 0 {
		return nil, &ResolutionError{Reason: ReasonAddressNotFound}
	}

	first := data.Results[0]
	// A missing formatted address, or one carrying the upstream placeholder
	// marker, means the response is malformed for our purposes.
	if first.FormattedAddress == "" || strings.Contains(first.FormattedAddress, "undefined") {
		return nil, &ResolutionError{Reason: ReasonAddressNotFound}
	}

	return &Result{
		Lat:              first.Geometry.Location.Lat,
		Lng:              first.Geometry.Location.Lng,
		FormattedAddress: first.FormattedAddress,
	}, nil
}
