package maps

import (
	"context"
	"errors"
)

var ErrNoResults = errors.New("no geocoding results")

// Geocoder resolves coordinates to a human readable address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// NoopGeocoder is used when no maps API key is configured.
type NoopGeocoder struct{}

func (NoopGeocoder) ReverseGeocode(context.Context, float64, float64) (string, error) {
	return "", nil
}
