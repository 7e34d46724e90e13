package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"roadside-rescue/internal/models"
)

// StaticLocator always returns the same answer.
type StaticLocator struct {
	Coords models.Coordinates
	Err    error
}

func (s StaticLocator) Locate(context.Context) (models.Coordinates, error) {
	return s.Coords, s.Err
}

// Unavailable is used when no location source is configured.
var Unavailable = StaticLocator{Err: &LocationError{Kind: PositionUnavailable, Err: errors.New("no location source configured")}}

// HTTPLocator asks an IP geolocation endpoint. It accepts both
// {"lat","lng"} and {"latitude","longitude"} payloads.
type HTTPLocator struct {
	URL    string
	Client *http.Client
}

func NewHTTPLocator(url string) *HTTPLocator {
	return &HTTPLocator{URL: url, Client: http.DefaultClient}
}

func (h *HTTPLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return models.Coordinates{}, &LocationError{Kind: Unknown, Err: err}
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return models.Coordinates{}, &LocationError{Kind: Timeout, Err: err}
		}
		return models.Coordinates{}, &LocationError{Kind: PositionUnavailable, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return models.Coordinates{}, &LocationError{Kind: PermissionDenied, Err: fmt.Errorf("locator returned %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return models.Coordinates{}, &LocationError{Kind: PositionUnavailable, Err: fmt.Errorf("locator returned %d", resp.StatusCode)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.Coordinates{}, &LocationError{Kind: PositionUnavailable, Err: err}
	}
	var body struct {
		Lat       *float64 `json:"lat"`
		Lng       *float64 `json:"lng"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return models.Coordinates{}, &LocationError{Kind: PositionUnavailable, Err: err}
	}

	lat, lng := body.Lat, body.Lng
	if lat == nil || lng == nil {
		lat, lng = body.Latitude, body.Longitude
	}
	if lat == nil || lng == nil {
		return models.Coordinates{}, &LocationError{Kind: PositionUnavailable, Err: errors.New("response has no coordinates")}
	}
	return models.Coordinates{Lat: *lat, Lng: *lng}, nil
}
